package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sefazor/giftregistry-backend/internal/middleware"
	"github.com/sefazor/giftregistry-backend/internal/models"
	"github.com/sefazor/giftregistry-backend/internal/service"
	"go.uber.org/zap"
)

type AdminHandler struct {
	admin *service.AdminService
	log   *zap.Logger
}

func NewAdminHandler(admin *service.AdminService, log *zap.Logger) *AdminHandler {
	return &AdminHandler{
		admin: admin,
		log:   log,
	}
}

func (h *AdminHandler) GetEventConfig(c *fiber.Ctx) error {
	cfg, err := h.admin.GetEventConfig(c.UserContext(), middleware.IdentityFrom(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(models.SuccessResponse(cfg, ""))
}

func (h *AdminHandler) UpsertEventConfig(c *fiber.Ctx) error {
	var req models.EventConfigRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	cfg, err := h.admin.UpsertEventConfig(c.UserContext(), middleware.IdentityFrom(c), req)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(models.SuccessResponse(cfg, "Event configuration saved"))
}

func (h *AdminHandler) CreateGift(c *fiber.Ctx) error {
	var req models.CreateGiftRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	gift, err := h.admin.CreateGift(c.UserContext(), middleware.IdentityFrom(c), req)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(models.SuccessResponse(gift, "Gift created"))
}

func (h *AdminHandler) DeleteGift(c *fiber.Ctx) error {
	if err := h.admin.DeleteGift(c.UserContext(), middleware.IdentityFrom(c), c.Params("id")); err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(models.SuccessResponse(nil, "Gift deleted"))
}

// UploadGiftImage accepts the multipart field "image".
func (h *AdminHandler) UploadGiftImage(c *fiber.Ctx) error {
	data, err := readFormFile(c, "image")
	if err != nil {
		return respondError(c, h.log, err)
	}
	gift, err := h.admin.UploadGiftImage(c.UserContext(), middleware.IdentityFrom(c), c.Params("id"), data)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(models.SuccessResponse(gift, "Gift image uploaded"))
}

func (h *AdminHandler) ListProfiles(c *fiber.Ctx) error {
	profiles, err := h.admin.ListProfiles(c.UserContext(), middleware.IdentityFrom(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(models.SuccessResponse(profiles, ""))
}

func (h *AdminHandler) CreateProfile(c *fiber.Ctx) error {
	var req models.CreateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	profile, err := h.admin.CreateProfile(c.UserContext(), middleware.IdentityFrom(c), req)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(models.SuccessResponse(profile, "Profile created"))
}

func (h *AdminHandler) SetRole(c *fiber.Ctx) error {
	var req models.SetRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	profile, err := h.admin.SetRole(c.UserContext(), middleware.IdentityFrom(c), c.Params("userId"), req.Role)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(models.SuccessResponse(profile, "Role updated"))
}

// InviteQRCode renders a PNG; ?size= defaults to 256.
func (h *AdminHandler) InviteQRCode(c *fiber.Ctx) error {
	png, err := h.admin.InviteQRCode(c.UserContext(), middleware.IdentityFrom(c), c.QueryInt("size", 256))
	if err != nil {
		return respondError(c, h.log, err)
	}
	c.Set(fiber.HeaderContentType, "image/png")
	return c.Send(png)
}
