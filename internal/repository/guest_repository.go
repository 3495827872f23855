package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sefazor/giftregistry-backend/internal/models"
	"gorm.io/gorm"
)

type GuestRepository struct {
	db *gorm.DB
}

func NewGuestRepository(db *gorm.DB) *GuestRepository {
	return &GuestRepository{db: db}
}

func (r *GuestRepository) Create(ctx context.Context, guest *models.Guest) error {
	if guest.ID == "" {
		guest.ID = uuid.NewString()
	}
	return r.db.WithContext(ctx).Create(guest).Error
}

func (r *GuestRepository) GetBySessionID(ctx context.Context, sessionID string) (*models.Guest, error) {
	var guest models.Guest
	if err := r.db.WithContext(ctx).Where("session_id = ?", sessionID).First(&guest).Error; err != nil {
		return nil, err
	}
	return &guest, nil
}

// List returns every RSVP, newest first.
func (r *GuestRepository) List(ctx context.Context) ([]models.Guest, error) {
	var guests []models.Guest
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&guests).Error
	return guests, err
}
