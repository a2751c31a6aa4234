package models

import (
	"time"

	"gorm.io/gorm"
)

// DigestRun is one archived aggregation, whether served or delivered.
type DigestRun struct {
	gorm.Model
	RunID       string    `gorm:"type:varchar(36);uniqueIndex;not null" json:"run_id"`
	Trigger     string    `gorm:"type:varchar(20);not null;index" json:"trigger"` // api/email/manual
	Delivered   string    `gorm:"type:varchar(100)" json:"delivered,omitempty"`
	Error       string    `gorm:"type:text" json:"error,omitempty"`
	Categories  int       `json:"categories"`
	CompletedAt time.Time `gorm:"index" json:"completed_at"`

	Articles []DigestArticle `gorm:"foreignKey:RunID;references:RunID" json:"articles,omitempty"`
}

// DigestArticle is a normalized article as it appeared in a run.
type DigestArticle struct {
	gorm.Model
	RunID       string `gorm:"type:varchar(36);not null;index" json:"run_id"`
	Position    int    `json:"position"`
	Category    string `gorm:"index" json:"category"`
	Emoji       string `json:"emoji"`
	Title       string `json:"title"`
	Summary     string `gorm:"type:text" json:"summary"`
	Author      string `json:"author"`
	URL         string `json:"url"`
	Image       string `json:"image"`
	PublishDate string `json:"publish_date"`
	Placeholder bool   `json:"placeholder"`
}

// TableName specifies the table name for DigestRun
func (DigestRun) TableName() string {
	return "digest_runs"
}

// TableName specifies the table name for DigestArticle
func (DigestArticle) TableName() string {
	return "digest_articles"
}
