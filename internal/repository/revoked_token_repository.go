package repository

import (
	"context"
	"time"

	"github.com/sefazor/giftregistry-backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RevokedTokenRepository struct {
	db *gorm.DB
}

func NewRevokedTokenRepository(db *gorm.DB) *RevokedTokenRepository {
	return &RevokedTokenRepository{db: db}
}

// Revoke is idempotent.
func (r *RevokedTokenRepository) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.RevokedToken{JTI: jti, ExpiresAt: expiresAt}).Error
}

func (r *RevokedTokenRepository) IsRevoked(ctx context.Context, jti string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.RevokedToken{}).Where("jti = ?", jti).Count(&count).Error
	return count > 0, err
}

// PurgeExpired drops entries whose tokens would be rejected by expiry anyway.
func (r *RevokedTokenRepository) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("expires_at < ?", now).Delete(&models.RevokedToken{})
	return result.RowsAffected, result.Error
}
