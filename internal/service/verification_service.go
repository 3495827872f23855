package service

import (
	"context"
	"time"

	"github.com/sefazor/giftregistry-backend/internal/errs"
	"github.com/sefazor/giftregistry-backend/internal/models"
	"github.com/sefazor/giftregistry-backend/internal/repository"
)

// VerificationService drives pending -> verified|rejected, and verified <-> rejected.
type VerificationService struct {
	repo  *repository.ContributionRepository
	authz *Authorizer
	now   func() time.Time
}

func NewVerificationService(repo *repository.ContributionRepository, authz *Authorizer) *VerificationService {
	return &VerificationService{
		repo:  repo,
		authz: authz,
		now:   time.Now,
	}
}

// Decide records a moderator decision. Deciding the current state again is a no-op.
func (s *VerificationService) Decide(ctx context.Context, caller models.Identity, contributionID string, outcome models.VerificationStatus) error {
	profile, err := s.authz.Authorize(ctx, caller, OpDecideContribution)
	if err != nil {
		return err
	}
	if !outcome.IsOutcome() {
		return errs.Validation("outcome must be verified or rejected")
	}

	changed, err := s.repo.Transition(ctx, contributionID, &models.VerificationDecision{
		Outcome:     outcome,
		DecidedBy:   profile.UserID,
		DecidedRole: profile.Role,
		DecidedAt:   s.now(),
	})
	if err != nil {
		return errs.Storage(err, "decide contribution")
	}
	if changed {
		return nil
	}

	current, err := s.repo.GetByID(ctx, contributionID)
	if err != nil {
		return errs.FromDB(err, "contribution")
	}
	if current.Status == outcome {
		return nil
	}
	// Not reachable with the current transition table.
	return errs.Validation("cannot move contribution from %s to %s", current.Status, outcome)
}

// History returns the decision log of a contribution.
func (s *VerificationService) History(ctx context.Context, caller models.Identity, contributionID string) ([]models.VerificationDecision, error) {
	if _, err := s.authz.Authorize(ctx, caller, OpModerationRead); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetByID(ctx, contributionID); err != nil {
		return nil, errs.FromDB(err, "contribution")
	}
	ds, err := s.repo.History(ctx, contributionID)
	if err != nil {
		return nil, errs.Storage(err, "load history")
	}
	return ds, nil
}
