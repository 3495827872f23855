package service

import (
	"context"
	"errors"
	"strings"

	"github.com/sefazor/giftregistry-backend/internal/errs"
	"github.com/sefazor/giftregistry-backend/internal/models"
	"github.com/sefazor/giftregistry-backend/internal/repository"
	"gorm.io/gorm"
)

type EventService struct {
	eventRepo *repository.EventConfigRepository
}

func NewEventService(eventRepo *repository.EventConfigRepository) *EventService {
	return &EventService{eventRepo: eventRepo}
}

func (s *EventService) Get(ctx context.Context) (*models.EventConfig, error) {
	cfg, err := s.eventRepo.Get(ctx)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NotFound("event is not configured")
	}
	if err != nil {
		return nil, errs.Storage(err, "load event config")
	}
	return cfg, nil
}

// PublicInfo is the guest view of the configuration, without the access code.
func (s *EventService) PublicInfo(ctx context.Context) (*models.PublicEventInfo, error) {
	cfg, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	return &models.PublicEventInfo{
		EventDate:      cfg.EventDate,
		WelcomeMessage: cfg.WelcomeMessage,
		PixKey:         cfg.PixKey,
	}, nil
}

func (s *EventService) Upsert(ctx context.Context, req models.EventConfigRequest) (*models.EventConfig, error) {
	cfg := &models.EventConfig{
		EventDate:      req.EventDate,
		PixKey:         strings.TrimSpace(req.PixKey),
		AccessCode:     strings.TrimSpace(req.AccessCode),
		WelcomeMessage: strings.TrimSpace(req.WelcomeMessage),
	}
	switch {
	case cfg.EventDate.IsZero():
		return nil, errs.Validation("event date is required")
	case cfg.PixKey == "":
		return nil, errs.Validation("pix key is required")
	case cfg.AccessCode == "":
		return nil, errs.Validation("access code is required")
	}
	if err := s.eventRepo.Upsert(ctx, cfg); err != nil {
		return nil, errs.Storage(err, "save event config")
	}
	return s.Get(ctx)
}
