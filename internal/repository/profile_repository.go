package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sefazor/giftregistry-backend/internal/models"
	"gorm.io/gorm"
)

type ProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) Create(ctx context.Context, p *models.Profile) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.UserID == "" {
		p.UserID = uuid.NewString()
	}
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *ProfileRepository) GetByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	var p models.Profile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProfileRepository) GetByEmail(ctx context.Context, email string) (*models.Profile, error) {
	var p models.Profile
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProfileRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Profile{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

// UpdateRole reports whether a profile with userID existed.
func (r *ProfileRepository) UpdateRole(ctx context.Context, userID string, role models.Role) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Profile{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{"role": string(role), "updated_at": time.Now()})
	return result.RowsAffected == 1, result.Error
}

func (r *ProfileRepository) List(ctx context.Context) ([]models.Profile, error) {
	var ps []models.Profile
	err := r.db.WithContext(ctx).Order("created_at ASC").Find(&ps).Error
	return ps, err
}
