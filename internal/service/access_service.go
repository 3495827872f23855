package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"github.com/sefazor/giftregistry-backend/internal/errs"
	"github.com/sefazor/giftregistry-backend/internal/models"
	"github.com/sefazor/giftregistry-backend/internal/repository"
	"github.com/sefazor/giftregistry-backend/pkg/jwt"
	"gorm.io/gorm"
)

// AccessPolicy decides whether a presented code admits a guest.
type AccessPolicy interface {
	Check(ctx context.Context, code string) error
}

// OpenAccessPolicy admits any non-empty code. The code is only recorded on the RSVP.
type OpenAccessPolicy struct{}

func (OpenAccessPolicy) Check(context.Context, string) error {
	return nil
}

// EventCodePolicy admits only the code stored in the event configuration.
type EventCodePolicy struct {
	eventRepo *repository.EventConfigRepository
}

func NewEventCodePolicy(eventRepo *repository.EventConfigRepository) *EventCodePolicy {
	return &EventCodePolicy{eventRepo: eventRepo}
}

func (p *EventCodePolicy) Check(ctx context.Context, code string) error {
	cfg, err := p.eventRepo.Get(ctx)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errs.NotFound("event is not configured")
	}
	if err != nil {
		return errs.Storage(err, "load event config")
	}
	if subtle.ConstantTimeCompare([]byte(strings.TrimSpace(cfg.AccessCode)), []byte(code)) != 1 {
		return errs.Authorization("invalid access code")
	}
	return nil
}

// NewAccessPolicy picks the policy for the ACCESS_CODE_ENFORCED setting.
func NewAccessPolicy(enforced bool, eventRepo *repository.EventConfigRepository) AccessPolicy {
	if enforced {
		return NewEventCodePolicy(eventRepo)
	}
	return OpenAccessPolicy{}
}

type AccessService struct {
	policy AccessPolicy
	tokens *jwt.Manager
	ttl    time.Duration
}

func NewAccessService(policy AccessPolicy, tokens *jwt.Manager, ttl time.Duration) *AccessService {
	return &AccessService{
		policy: policy,
		tokens: tokens,
		ttl:    ttl,
	}
}

// Admit checks code against the policy and returns a signed ticket for the RSVP step.
func (s *AccessService) Admit(ctx context.Context, code string) (*models.AccessTicket, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, errs.Validation("access code is required")
	}
	if err := s.policy.Check(ctx, code); err != nil {
		return nil, err
	}
	ticket, err := s.tokens.IssueAdmission(code, s.ttl)
	if err != nil {
		return nil, err
	}
	return &models.AccessTicket{
		Ticket:    ticket,
		ExpiresIn: int64(s.ttl.Seconds()),
	}, nil
}

// Redeem returns the access code carried by a ticket.
func (s *AccessService) Redeem(ticket string) (string, error) {
	claims, err := s.tokens.Parse(ticket, jwt.TypeAdmission)
	if err != nil {
		return "", errs.Unauthenticated("invalid admission ticket")
	}
	return claims.AccessCode, nil
}
