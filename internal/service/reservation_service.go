package service

import (
	"context"
	"strings"
	"time"

	"github.com/sefazor/giftregistry-backend/internal/errs"
	"github.com/sefazor/giftregistry-backend/internal/models"
	"github.com/sefazor/giftregistry-backend/internal/repository"
)

// ReservationService owns the exclusive claim of a gift.
type ReservationService struct {
	giftRepo *repository.GiftRepository
	now      func() time.Time
}

func NewReservationService(giftRepo *repository.GiftRepository) *ReservationService {
	return &ReservationService{
		giftRepo: giftRepo,
		now:      time.Now,
	}
}

// Reserve claims giftID for claimant with one conditional write.
//
// On a lost race or an already taken gift the result status is AlreadyReserved and the
// error matches errs.ErrAlreadyReserved. Nothing is retried; the caller should refresh the
// catalog before choosing another gift.
func (s *ReservationService) Reserve(ctx context.Context, giftID string, claimant models.Claimant) (models.ReservationResult, error) {
	result := models.ReservationResult{GiftID: giftID}

	claimant.Name = strings.TrimSpace(claimant.Name)
	claimant.Phone = strings.TrimSpace(claimant.Phone)
	switch {
	case giftID == "":
		return result, errs.Validation("gift id is required")
	case claimant.GuestID == "":
		return result, errs.Unauthenticated("guest session required")
	case claimant.Name == "":
		return result, errs.Validation("name is required")
	case claimant.Phone == "":
		return result, errs.Validation("phone is required")
	}

	won, err := s.giftRepo.ClaimIfAvailable(ctx, giftID, claimant, s.now())
	if err != nil {
		return result, errs.Storage(err, "reserve gift")
	}
	if won {
		result.Status = models.Reserved
		return result, nil
	}

	// The claim matched nothing: either the gift is gone or someone holds it.
	exists, err := s.giftRepo.Exists(ctx, giftID)
	if err != nil {
		return result, errs.Storage(err, "load gift")
	}
	if !exists {
		return result, errs.NotFound("gift %s not found", giftID)
	}
	result.Status = models.AlreadyReserved
	return result, errs.AlreadyReserved("gift %s is already reserved", giftID)
}
