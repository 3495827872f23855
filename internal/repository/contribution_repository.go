package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sefazor/giftregistry-backend/internal/models"
	"gorm.io/gorm"
)

type ContributionRepository struct {
	db *gorm.DB
}

func NewContributionRepository(db *gorm.DB) *ContributionRepository {
	return &ContributionRepository{db: db}
}

func (r *ContributionRepository) Create(ctx context.Context, c *models.Contribution) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.Status = models.StatusPending
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *ContributionRepository) GetByID(ctx context.Context, id string) (*models.Contribution, error) {
	var c models.Contribution
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns every contribution, newest first.
func (r *ContributionRepository) List(ctx context.Context) ([]models.Contribution, error) {
	var cs []models.Contribution
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&cs).Error
	return cs, err
}

// Transition moves a contribution to decision.Outcome when its current status is one of
// the outcome's predecessors, and appends decision to the log in the same transaction.
// It reports false when nothing matched.
func (r *ContributionRepository) Transition(ctx context.Context, id string, decision *models.VerificationDecision) (bool, error) {
	from := make([]string, 0, 2)
	for _, s := range decision.Outcome.Predecessors() {
		from = append(from, string(s))
	}
	if len(from) == 0 {
		return false, nil
	}

	changed := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Contribution{}).
			Where("id = ? AND status IN ?", id, from).
			Updates(map[string]interface{}{
				"status":     string(decision.Outcome),
				"updated_at": decision.DecidedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}
		decision.ContributionID = id
		if err := tx.Create(decision).Error; err != nil {
			return err
		}
		changed = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return changed, nil
}

// History returns the decision log of one contribution, oldest first.
func (r *ContributionRepository) History(ctx context.Context, id string) ([]models.VerificationDecision, error) {
	var ds []models.VerificationDecision
	err := r.db.WithContext(ctx).
		Where("contribution_id = ?", id).
		Order("decided_at ASC").
		Order("id ASC").
		Find(&ds).Error
	return ds, err
}
