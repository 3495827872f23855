package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sefazor/giftregistry-backend/internal/models"
	"github.com/sefazor/giftregistry-backend/internal/service"
	"github.com/sefazor/giftregistry-backend/pkg/utils"
	"go.uber.org/zap"
)

type ContributionHandler struct {
	contributions *service.ContributionService
	validator     *utils.Validator
	log           *zap.Logger
}

func NewContributionHandler(contributions *service.ContributionService, validator *utils.Validator, log *zap.Logger) *ContributionHandler {
	return &ContributionHandler{
		contributions: contributions,
		validator:     validator,
		log:           log,
	}
}

// UploadReceipt accepts the multipart field "receipt".
func (h *ContributionHandler) UploadReceipt(c *fiber.Ctx) error {
	data, err := readFormFile(c, "receipt")
	if err != nil {
		return respondError(c, h.log, err)
	}
	upload, err := h.contributions.UploadReceipt(c.UserContext(), data)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(models.SuccessResponse(upload, "Receipt uploaded"))
}

func (h *ContributionHandler) Submit(c *fiber.Ctx) error {
	var req models.SubmitContributionRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, utils.Describe(err))
	}

	id, err := h.contributions.Submit(c.UserContext(), req.Amount, req.Name, req.Phone, req.ReceiptRef)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(models.SuccessResponse(fiber.Map{
		"id":     id,
		"status": models.StatusPending,
	}, "Contribution submitted"))
}

func (h *ContributionHandler) Get(c *fiber.Ctx) error {
	contribution, err := h.contributions.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(models.SuccessResponse(contribution.GuestView(), ""))
}

func (h *ContributionHandler) PixKey(c *fiber.Ctx) error {
	key, err := h.contributions.PixKey(c.UserContext())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(models.SuccessResponse(fiber.Map{"pix_key": key}, ""))
}
