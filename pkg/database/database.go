package database

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"github.com/sefazor/giftregistry-backend/internal/config"
	"github.com/sefazor/giftregistry-backend/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase opens the configured database and migrates the schema.
func NewDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.URL)
	case "sqlite":
		dialector = sqlite.Open(cfg.URL)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.Driver == "sqlite" {
		// SQLite allows one writer; a single connection keeps conditional updates serialized.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if err := RunMigrations(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return db, nil
}

// NewMemoryDatabase returns a migrated in-memory SQLite database.
func NewMemoryDatabase() (*gorm.DB, error) {
	return NewDatabase(config.DatabaseConfig{Driver: "sqlite", URL: ":memory:"})
}

func RunMigrations(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.EventConfig{},
		&models.Guest{},
		&models.GiftItem{},
		&models.Contribution{},
		&models.VerificationDecision{},
		&models.Profile{},
		&models.RevokedToken{},
	)
}
