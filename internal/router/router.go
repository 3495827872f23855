package router

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sefazor/giftregistry-backend/internal/handler"
	"github.com/sefazor/giftregistry-backend/internal/middleware"
	"github.com/sefazor/giftregistry-backend/internal/models"
	"github.com/sefazor/giftregistry-backend/internal/service"
	"github.com/sefazor/giftregistry-backend/pkg/email"
	"github.com/sefazor/giftregistry-backend/pkg/utils"
	"go.uber.org/zap"
)

// Deps is everything the HTTP surface needs.
type Deps struct {
	Access        *service.AccessService
	Guests        *service.GuestService
	Events        *service.EventService
	Gifts         *service.GiftService
	Reservations  *service.ReservationService
	Contributions *service.ContributionService
	Verification  *service.VerificationService
	Admin         *service.AdminService
	Auth          *service.AuthService
	Email         *email.EmailService
	Validator     *utils.Validator
	Log           *zap.Logger

	AllowOrigins   string
	RateLimitMax   int
	MaxUploadBytes int
	PublicSiteURL  string
	// RequestLogging toggles the access log middleware.
	RequestLogging bool
}

func NewApp(d Deps) *fiber.App {
	bodyLimit := d.MaxUploadBytes + 1<<20
	app := fiber.New(fiber.Config{
		AppName:   "giftregistry",
		BodyLimit: bodyLimit,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			if code >= fiber.StatusInternalServerError {
				d.Log.Error("unhandled error", zap.String("path", c.Path()), zap.Error(err))
			}
			return c.Status(code).JSON(models.ErrorResponse(err.Error()))
		},
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     d.AllowOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PUT, DELETE",
		AllowCredentials: !strings.Contains(d.AllowOrigins, "*"),
	}))
	if d.RequestLogging {
		app.Use(logger.New())
	}

	entryLimiter := limiter.New(limiter.Config{
		Max:        d.RateLimitMax,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(models.CodedErrorResponse("rate_limited", "Too many requests"))
		},
	})

	accessHandler := handler.NewAccessHandler(d.Access, d.Guests, d.Events, d.Email, d.Validator, d.PublicSiteURL, d.Log)
	giftHandler := handler.NewGiftHandler(d.Gifts, d.Reservations, d.Log)
	contributionHandler := handler.NewContributionHandler(d.Contributions, d.Validator, d.Log)
	moderationHandler := handler.NewModerationHandler(d.Admin, d.Verification, d.Log)
	adminHandler := handler.NewAdminHandler(d.Admin, d.Log)
	authHandler := handler.NewAuthHandler(d.Auth, d.Validator, d.Log)

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(models.SuccessResponse(nil, "ok"))
	})

	api := app.Group("/api")

	// Guest entry
	api.Post("/access", entryLimiter, accessHandler.Admit)
	api.Post("/rsvp", entryLimiter, middleware.AdmissionTicket(d.Access), accessHandler.RegisterGuest)

	// Guest session routes
	guest := middleware.GuestSession(d.Guests)
	api.Get("/event", guest, accessHandler.PublicEventInfo)
	api.Get("/gifts", guest, giftHandler.ListGifts)
	api.Post("/gifts/:id/reserve", guest, giftHandler.Reserve)
	api.Post("/contributions/receipts", guest, contributionHandler.UploadReceipt)
	api.Post("/contributions", guest, contributionHandler.Submit)
	api.Get("/contributions/:id", guest, contributionHandler.Get)
	api.Get("/pix-key", guest, contributionHandler.PixKey)

	// Identity
	auth := api.Group("/auth")
	auth.Post("/login", entryLimiter, authHandler.Login)
	auth.Post("/logout", authHandler.Logout)
	auth.Get("/me", middleware.IdentityAuth(d.Auth), authHandler.Me)

	// Privileged routes. Roles are checked per operation inside the services.
	identity := middleware.IdentityAuth(d.Auth)

	admin := api.Group("/admin", identity)
	admin.Get("/event-config", adminHandler.GetEventConfig)
	admin.Put("/event-config", adminHandler.UpsertEventConfig)
	admin.Post("/gifts", adminHandler.CreateGift)
	admin.Delete("/gifts/:id", adminHandler.DeleteGift)
	admin.Post("/gifts/:id/image", adminHandler.UploadGiftImage)
	admin.Get("/profiles", adminHandler.ListProfiles)
	admin.Post("/profiles", adminHandler.CreateProfile)
	admin.Put("/profiles/:userId/role", adminHandler.SetRole)
	admin.Get("/invite-qr", adminHandler.InviteQRCode)

	moderation := api.Group("/moderation", identity)
	moderation.Get("/rsvps", moderationHandler.ListRSVPs)
	moderation.Get("/selections", moderationHandler.ListSelections)
	moderation.Get("/contributions", moderationHandler.ListContributions)
	moderation.Get("/contributions/:id/history", moderationHandler.History)
	moderation.Post("/contributions/:id/decision", moderationHandler.Decide)

	return app
}
