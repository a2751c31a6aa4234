package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/JerryLinyx/newsdigest/models"
	"github.com/JerryLinyx/newsdigest/news"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrRunNotFound = errors.New("digest run not found")

// Archive persists aggregation runs in Postgres.
type Archive struct {
	db *gorm.DB
}

func NewArchive(db *gorm.DB) *Archive {
	return &Archive{db: db}
}

// RunInfo describes how a run was produced.
type RunInfo struct {
	Trigger   string
	Delivered string
	Error     string
}

// BuildRun converts an aggregation result into archive rows under a fresh run ID.
func BuildRun(res *news.AggregationResult, info RunInfo) models.DigestRun {
	runID := uuid.NewString()
	run := models.DigestRun{
		RunID:       runID,
		Trigger:     info.Trigger,
		Delivered:   info.Delivered,
		Error:       info.Error,
		Categories:  len(res.Entries),
		CompletedAt: res.CompletedAt,
	}
	for i, a := range res.Articles() {
		run.Articles = append(run.Articles, models.DigestArticle{
			RunID:       runID,
			Position:    i,
			Category:    a.Category,
			Emoji:       a.Emoji,
			Title:       a.Title,
			Summary:     a.Summary,
			Author:      a.Author,
			URL:         a.URL,
			Image:       a.Image,
			PublishDate: a.PublishDate,
			Placeholder: a.Placeholder,
		})
	}
	return run
}

// SaveRun stores the run and its articles in one transaction and returns the run ID.
func (a *Archive) SaveRun(ctx context.Context, res *news.AggregationResult, info RunInfo) (string, error) {
	run := BuildRun(res, info)
	err := a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&run).Error
	})
	if err != nil {
		return "", fmt.Errorf("saving digest run: %w", err)
	}
	return run.RunID, nil
}

// ListRuns returns the most recent runs without their articles.
func (a *Archive) ListRuns(ctx context.Context, limit int) ([]models.DigestRun, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var runs []models.DigestRun
	if err := a.db.WithContext(ctx).Order("completed_at DESC").Limit(limit).Find(&runs).Error; err != nil {
		return nil, err
	}
	return runs, nil
}

// GetRun loads a run with its articles in display order.
func (a *Archive) GetRun(ctx context.Context, runID string) (*models.DigestRun, error) {
	var run models.DigestRun
	err := a.db.WithContext(ctx).
		Preload("Articles", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("run_id = ?", runID).
		First(&run).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}
