package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sefazor/giftregistry-backend/internal/middleware"
	"github.com/sefazor/giftregistry-backend/internal/models"
	"github.com/sefazor/giftregistry-backend/internal/service"
	"github.com/sefazor/giftregistry-backend/pkg/email"
	"github.com/sefazor/giftregistry-backend/pkg/utils"
	"go.uber.org/zap"
)

// AccessHandler serves the guest entry flow: access code, then RSVP.
type AccessHandler struct {
	access    *service.AccessService
	guests    *service.GuestService
	events    *service.EventService
	email     *email.EmailService
	validator *utils.Validator
	siteURL   string
	log       *zap.Logger
}

func NewAccessHandler(
	access *service.AccessService,
	guests *service.GuestService,
	events *service.EventService,
	emailService *email.EmailService,
	validator *utils.Validator,
	siteURL string,
	log *zap.Logger,
) *AccessHandler {
	return &AccessHandler{
		access:    access,
		guests:    guests,
		events:    events,
		email:     emailService,
		validator: validator,
		siteURL:   siteURL,
		log:       log,
	}
}

func (h *AccessHandler) Admit(c *fiber.Ctx) error {
	var req models.AccessRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	ticket, err := h.access.Admit(c.UserContext(), req.Code)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(models.SuccessResponse(ticket, "Access granted"))
}

func (h *AccessHandler) RegisterGuest(c *fiber.Ctx) error {
	var req models.RSVPRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, utils.Describe(err))
	}

	session, err := h.guests.RegisterGuest(c.UserContext(), req.FullName, req.Email, req.Phone, middleware.AccessCodeFrom(c))
	if err != nil {
		return respondError(c, h.log, err)
	}

	if h.email != nil {
		go h.sendConfirmation(session.Guest)
	}
	return c.Status(fiber.StatusCreated).JSON(models.SuccessResponse(session, "RSVP confirmed"))
}

// sendConfirmation runs detached from the request; failures are only logged.
func (h *AccessHandler) sendConfirmation(guest models.Guest) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	data := email.RSVPConfirmation{
		FullName: guest.FullName,
		Email:    guest.Email,
		SiteURL:  h.siteURL,
	}
	if info, err := h.events.PublicInfo(ctx); err == nil {
		data.EventDate = info.EventDate.Format("02/01/2006 15:04")
	}

	id, err := h.email.SendRSVPConfirmation(ctx, data)
	if err != nil {
		h.log.Warn("rsvp confirmation not sent", zap.String("guest_id", guest.ID), zap.Error(err))
		return
	}
	h.log.Info("rsvp confirmation sent", zap.String("guest_id", guest.ID), zap.String("email_id", id))
}

// PublicEventInfo returns the date, welcome message and pix key shown to guests.
func (h *AccessHandler) PublicEventInfo(c *fiber.Ctx) error {
	info, err := h.events.PublicInfo(c.UserContext())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(models.SuccessResponse(info, ""))
}
