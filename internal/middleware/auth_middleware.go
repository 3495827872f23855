package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sefazor/giftregistry-backend/internal/errs"
	"github.com/sefazor/giftregistry-backend/internal/models"
	"github.com/sefazor/giftregistry-backend/internal/service"
)

const (
	identityKey   = "identity"
	guestKey      = "guest"
	accessCodeKey = "accessCode"
)

func unauthorized(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(models.CodedErrorResponse("unauthenticated", msg))
}

func bearerToken(c *fiber.Ctx) (string, bool) {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	return token, token != ""
}

// IdentityAuth requires a privileged identity token and stores the caller's identity.
func IdentityAuth(auth *service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := bearerToken(c)
		if !ok {
			return unauthorized(c, "Authorization header is required")
		}
		identity, err := auth.CurrentIdentity(c.UserContext(), token)
		if err != nil {
			return unauthorized(c, errs.Message(err))
		}
		c.Locals(identityKey, *identity)
		return c.Next()
	}
}

// GuestSession requires the session token issued at RSVP.
func GuestSession(guests *service.GuestService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := bearerToken(c)
		if !ok {
			return unauthorized(c, "Guest session is required")
		}
		principal, err := guests.Authenticate(c.UserContext(), token)
		if err != nil {
			return unauthorized(c, errs.Message(err))
		}
		c.Locals(guestKey, *principal)
		return c.Next()
	}
}

// AdmissionTicket requires the ticket returned by the access step.
func AdmissionTicket(access *service.AccessService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := bearerToken(c)
		if !ok {
			return unauthorized(c, "Admission ticket is required")
		}
		code, err := access.Redeem(token)
		if err != nil {
			return unauthorized(c, errs.Message(err))
		}
		c.Locals(accessCodeKey, code)
		return c.Next()
	}
}

// IdentityFrom returns the identity stored by IdentityAuth, or the zero value.
func IdentityFrom(c *fiber.Ctx) models.Identity {
	identity, _ := c.Locals(identityKey).(models.Identity)
	return identity
}

// GuestFrom returns the principal stored by GuestSession, or the zero value.
func GuestFrom(c *fiber.Ctx) service.GuestPrincipal {
	principal, _ := c.Locals(guestKey).(service.GuestPrincipal)
	return principal
}

func AccessCodeFrom(c *fiber.Ctx) string {
	code, _ := c.Locals(accessCodeKey).(string)
	return code
}
