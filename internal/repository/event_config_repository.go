package repository

import (
	"context"
	"time"

	"github.com/sefazor/giftregistry-backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EventConfigRepository struct {
	db *gorm.DB
}

func NewEventConfigRepository(db *gorm.DB) *EventConfigRepository {
	return &EventConfigRepository{db: db}
}

func (r *EventConfigRepository) Get(ctx context.Context) (*models.EventConfig, error) {
	var cfg models.EventConfig
	err := r.db.WithContext(ctx).First(&cfg, "id = ?", models.EventConfigID).Error
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Upsert writes the singleton row in one statement.
func (r *EventConfigRepository) Upsert(ctx context.Context, cfg *models.EventConfig) error {
	now := time.Now()
	cfg.ID = models.EventConfigID
	cfg.UpdatedAt = now
	if cfg.CreatedAt.IsZero() {
		cfg.CreatedAt = now
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"event_date", "pix_key", "access_code", "welcome_message", "updated_at"}),
	}).Create(cfg).Error
}
