package config

import (
	"fmt"
	"log"

	"github.com/JerryLinyx/newsdigest/models"
	"gorm.io/gorm"
)

// MigrateDB runs database migrations
func MigrateDB(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.DigestRun{},
		&models.DigestArticle{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	log.Println("Database migration completed successfully")
	return nil
}
