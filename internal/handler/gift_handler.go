package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sefazor/giftregistry-backend/internal/middleware"
	"github.com/sefazor/giftregistry-backend/internal/models"
	"github.com/sefazor/giftregistry-backend/internal/service"
	"go.uber.org/zap"
)

type GiftHandler struct {
	gifts        *service.GiftService
	reservations *service.ReservationService
	log          *zap.Logger
}

func NewGiftHandler(gifts *service.GiftService, reservations *service.ReservationService, log *zap.Logger) *GiftHandler {
	return &GiftHandler{
		gifts:        gifts,
		reservations: reservations,
		log:          log,
	}
}

func (h *GiftHandler) ListGifts(c *fiber.Ctx) error {
	gifts, err := h.gifts.ListGifts(c.UserContext())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(models.SuccessResponse(gifts, ""))
}

// Reserve claims a gift for the guest behind the session token.
// A lost race answers 409 with status already_reserved in the body.
func (h *GiftHandler) Reserve(c *fiber.Ctx) error {
	var req models.ReserveRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	guest := middleware.GuestFrom(c)
	result, err := h.reservations.Reserve(c.UserContext(), c.Params("id"), models.Claimant{
		GuestID: guest.GuestID,
		Name:    req.Name,
		Phone:   req.Phone,
	})
	if err != nil {
		if result.Status == models.AlreadyReserved {
			status, code := StatusFor(err)
			return c.Status(status).JSON(models.Response{
				Success: false,
				Error:   "This gift has already been reserved",
				Code:    code,
				Data:    result,
			})
		}
		return respondError(c, h.log, err)
	}
	return c.JSON(models.SuccessResponse(result, "Gift reserved"))
}
