package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sefazor/giftregistry-backend/internal/errs"
	"github.com/sefazor/giftregistry-backend/internal/models"
	"github.com/sefazor/giftregistry-backend/internal/repository"
	"github.com/sefazor/giftregistry-backend/pkg/jwt"
	"github.com/sefazor/giftregistry-backend/pkg/utils"
	"gorm.io/gorm"
)

// GuestPrincipal is the guest behind a validated session token.
type GuestPrincipal struct {
	GuestID   string
	SessionID string
}

type GuestService struct {
	guestRepo *repository.GuestRepository
	tokens    *jwt.Manager
	validator *utils.Validator
	ttl       time.Duration
	now       func() time.Time
}

func NewGuestService(guestRepo *repository.GuestRepository, tokens *jwt.Manager, validator *utils.Validator, ttl time.Duration) *GuestService {
	return &GuestService{
		guestRepo: guestRepo,
		tokens:    tokens,
		validator: validator,
		ttl:       ttl,
		now:       time.Now,
	}
}

// NewSessionID returns guest_<unix-millis>_<9 random chars>.
func NewSessionID(now time.Time) string {
	return fmt.Sprintf("guest_%d_%s", now.UnixMilli(), utils.GenerateRandomString(9))
}

// RegisterGuest stores the RSVP and issues the guest's session token.
// Repeated RSVPs with the same email are accepted.
func (s *GuestService) RegisterGuest(ctx context.Context, fullName, email, phone, accessCode string) (*models.GuestSession, error) {
	fullName = strings.TrimSpace(fullName)
	email = strings.TrimSpace(email)
	phone = strings.TrimSpace(phone)
	accessCode = strings.TrimSpace(accessCode)

	switch {
	case fullName == "":
		return nil, errs.Validation("full name is required")
	case email == "":
		return nil, errs.Validation("email is required")
	case phone == "":
		return nil, errs.Validation("phone is required")
	case accessCode == "":
		return nil, errs.Validation("access code is required")
	}
	if err := s.validator.Var(email, "email"); err != nil {
		return nil, errs.Validation("email is not valid")
	}

	now := s.now()
	guest := &models.Guest{
		FullName:       fullName,
		Email:          email,
		Phone:          phone,
		AccessCodeUsed: accessCode,
		SessionID:      NewSessionID(now),
		CreatedAt:      now,
	}
	if err := s.guestRepo.Create(ctx, guest); err != nil {
		return nil, errs.Storage(err, "create guest")
	}

	token, err := s.tokens.IssueGuestSession(guest.ID, guest.SessionID, s.ttl)
	if err != nil {
		return nil, err
	}
	return &models.GuestSession{
		Guest:        *guest,
		SessionToken: token,
	}, nil
}

// Authenticate validates a session token and checks its session id belongs to the guest it names.
func (s *GuestService) Authenticate(ctx context.Context, token string) (*GuestPrincipal, error) {
	claims, err := s.tokens.Parse(token, jwt.TypeGuestSession)
	if err != nil {
		return nil, errs.Unauthenticated("invalid guest session")
	}
	guest, err := s.guestRepo.GetBySessionID(ctx, claims.SessionID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.Unauthenticated("unknown guest session")
	}
	if err != nil {
		return nil, errs.Storage(err, "load guest")
	}
	if guest.ID != claims.Subject {
		return nil, errs.Unauthenticated("guest session mismatch")
	}
	return &GuestPrincipal{GuestID: guest.ID, SessionID: guest.SessionID}, nil
}

func (s *GuestService) List(ctx context.Context) ([]models.Guest, error) {
	guests, err := s.guestRepo.List(ctx)
	if err != nil {
		return nil, errs.Storage(err, "list guests")
	}
	return guests, nil
}
