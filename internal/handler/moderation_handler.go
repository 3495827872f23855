package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sefazor/giftregistry-backend/internal/middleware"
	"github.com/sefazor/giftregistry-backend/internal/models"
	"github.com/sefazor/giftregistry-backend/internal/service"
	"go.uber.org/zap"
)

// ModerationHandler serves the read views and verification decisions for admins and moderators.
type ModerationHandler struct {
	admin        *service.AdminService
	verification *service.VerificationService
	log          *zap.Logger
}

func NewModerationHandler(admin *service.AdminService, verification *service.VerificationService, log *zap.Logger) *ModerationHandler {
	return &ModerationHandler{
		admin:        admin,
		verification: verification,
		log:          log,
	}
}

func (h *ModerationHandler) ListRSVPs(c *fiber.Ctx) error {
	guests, err := h.admin.ListRSVPs(c.UserContext(), middleware.IdentityFrom(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(models.SuccessResponse(guests, ""))
}

func (h *ModerationHandler) ListSelections(c *fiber.Ctx) error {
	selections, err := h.admin.ListSelections(c.UserContext(), middleware.IdentityFrom(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(models.SuccessResponse(selections, ""))
}

func (h *ModerationHandler) ListContributions(c *fiber.Ctx) error {
	contributions, err := h.admin.ListContributions(c.UserContext(), middleware.IdentityFrom(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(models.SuccessResponse(contributions, ""))
}

func (h *ModerationHandler) History(c *fiber.Ctx) error {
	history, err := h.verification.History(c.UserContext(), middleware.IdentityFrom(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(models.SuccessResponse(history, ""))
}

func (h *ModerationHandler) Decide(c *fiber.Ctx) error {
	var req models.DecisionRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	caller := middleware.IdentityFrom(c)
	if err := h.verification.Decide(c.UserContext(), caller, c.Params("id"), req.Outcome); err != nil {
		return respondError(c, h.log, err)
	}
	h.log.Info("contribution decided",
		zap.String("contribution_id", c.Params("id")),
		zap.String("outcome", string(req.Outcome)),
		zap.String("decided_by", caller.UserID),
	)
	return c.JSON(models.SuccessResponse(fiber.Map{
		"id":     c.Params("id"),
		"status": req.Outcome,
	}, "Decision recorded"))
}
