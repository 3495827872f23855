package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sefazor/giftregistry-backend/internal/models"
	"gorm.io/gorm"
)

type GiftRepository struct {
	db *gorm.DB
}

func NewGiftRepository(db *gorm.DB) *GiftRepository {
	return &GiftRepository{db: db}
}

func (r *GiftRepository) Create(ctx context.Context, gift *models.GiftItem) error {
	if gift.ID == "" {
		gift.ID = uuid.NewString()
	}
	gift.IsSelected = false
	gift.SelectedBy = nil
	gift.SelectedAt = nil
	return r.db.WithContext(ctx).Create(gift).Error
}

func (r *GiftRepository) GetByID(ctx context.Context, id string) (*models.GiftItem, error) {
	var gift models.GiftItem
	if err := r.db.WithContext(ctx).First(&gift, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &gift, nil
}

// List returns the catalog in creation order.
func (r *GiftRepository) List(ctx context.Context) ([]models.GiftItem, error) {
	var gifts []models.GiftItem
	err := r.db.WithContext(ctx).Order("created_at ASC").Order("id ASC").Find(&gifts).Error
	return gifts, err
}

// ListSelected returns reserved gifts, most recent reservation first.
func (r *GiftRepository) ListSelected(ctx context.Context) ([]models.GiftItem, error) {
	var gifts []models.GiftItem
	err := r.db.WithContext(ctx).
		Where("is_selected = ?", true).
		Order("selected_at DESC").
		Find(&gifts).Error
	return gifts, err
}

func (r *GiftRepository) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.GiftItem{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// ClaimIfAvailable flips is_selected in a single conditional UPDATE.
// It reports true only for the caller whose statement matched the unselected row.
func (r *GiftRepository) ClaimIfAvailable(ctx context.Context, id string, claimant models.Claimant, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.GiftItem{}).
		Where("id = ? AND is_selected = ?", id, false).
		Updates(map[string]interface{}{
			"is_selected":       true,
			"selected_at":       at,
			"selected_by":       claimant.GuestID,
			"selected_by_name":  claimant.Name,
			"selected_by_phone": claimant.Phone,
			"updated_at":        at,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *GiftRepository) SetImageURL(ctx context.Context, id, imageURL string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.GiftItem{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"image_url": imageURL, "updated_at": time.Now()})
	return result.RowsAffected == 1, result.Error
}

// Delete removes the row and reports whether it existed. Guests are never touched.
func (r *GiftRepository) Delete(ctx context.Context, id string) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&models.GiftItem{}, "id = ?", id)
	return result.RowsAffected == 1, result.Error
}
