package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sefazor/giftregistry-backend/internal/middleware"
	"github.com/sefazor/giftregistry-backend/internal/models"
	"github.com/sefazor/giftregistry-backend/internal/service"
	"github.com/sefazor/giftregistry-backend/pkg/utils"
	"go.uber.org/zap"
)

type AuthHandler struct {
	auth      *service.AuthService
	validator *utils.Validator
	log       *zap.Logger
}

func NewAuthHandler(auth *service.AuthService, validator *utils.Validator, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		auth:      auth,
		validator: validator,
		log:       log,
	}
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, utils.Describe(err))
	}

	resp, err := h.auth.Login(c.UserContext(), req)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(models.SuccessResponse(resp, "Login successful"))
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	token := strings.TrimSpace(strings.TrimPrefix(c.Get(fiber.HeaderAuthorization), "Bearer "))
	if err := h.auth.SignOut(c.UserContext(), token); err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(models.SuccessResponse(nil, "Signed out"))
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	profile, err := h.auth.Me(c.UserContext(), middleware.IdentityFrom(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(models.SuccessResponse(profile, ""))
}
