package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sefazor/giftregistry-backend/internal/config"
	"github.com/sefazor/giftregistry-backend/internal/repository"
	"github.com/sefazor/giftregistry-backend/internal/router"
	"github.com/sefazor/giftregistry-backend/internal/service"
	"github.com/sefazor/giftregistry-backend/pkg/database"
	"github.com/sefazor/giftregistry-backend/pkg/email"
	"github.com/sefazor/giftregistry-backend/pkg/jwt"
	"github.com/sefazor/giftregistry-backend/pkg/logger"
	"github.com/sefazor/giftregistry-backend/pkg/qrcode"
	"github.com/sefazor/giftregistry-backend/pkg/storage"
	"github.com/sefazor/giftregistry-backend/pkg/utils"
	"go.uber.org/zap"
)

func main() {
	// A missing .env is fine; the environment may already be set.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatalf("Error loading .env file: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLog, err := logger.New(cfg.Log.Level, cfg.Log.Dev)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer zapLog.Sync()

	if err := run(cfg, zapLog); err != nil {
		zapLog.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx := context.Background()

	db, err := database.NewDatabase(cfg.Database)
	if err != nil {
		return err
	}
	log.Info("database ready", zap.String("driver", cfg.Database.Driver))

	// Repositories
	eventRepo := repository.NewEventConfigRepository(db)
	guestRepo := repository.NewGuestRepository(db)
	giftRepo := repository.NewGiftRepository(db)
	contributionRepo := repository.NewContributionRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	revokedRepo := repository.NewRevokedTokenRepository(db)

	// Blob storage
	var blobs storage.BlobStore = storage.Unconfigured{}
	if cfg.BlobStoreConfigured() {
		r2, err := storage.NewR2Storage(ctx, cfg.R2)
		if err != nil {
			return err
		}
		blobs = r2
		log.Info("blob store ready", zap.String("bucket", cfg.R2.Bucket), zap.String("endpoint", cfg.R2.ResolvedEndpoint()))
	} else {
		log.Warn("blob store not configured; receipt and image uploads will fail")
	}

	// Email
	var emailService *email.EmailService
	if cfg.Email.ResendAPIKey != "" && cfg.Email.FromAddress != "" {
		emailService = email.NewEmailService(email.NewResendSender(cfg.Email.ResendAPIKey, cfg.Email.FromAddress, cfg.Email.FromName))
	} else {
		log.Warn("email not configured; rsvp confirmations are disabled")
	}

	tokens := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.Issuer)
	validator := utils.NewValidator()

	// Services
	authz := service.NewAuthorizer(service.NewRoleRegistry(profileRepo))
	events := service.NewEventService(eventRepo)
	guests := service.NewGuestService(guestRepo, tokens, validator, cfg.JWT.GuestSessionTTL)
	gifts := service.NewGiftService(giftRepo, blobs)
	contributions := service.NewContributionService(contributionRepo, eventRepo, blobs, service.ReceiptRules{
		MaxBytes:     cfg.MaxUploadBytes,
		AllowedTypes: cfg.AllowedUploadTypes,
	})
	authService := service.NewAuthService(profileRepo, revokedRepo, tokens, cfg.JWT.IdentityTTL)
	access := service.NewAccessService(service.NewAccessPolicy(cfg.AccessCodeEnforced, eventRepo), tokens, cfg.JWT.AdmissionTTL)

	created, err := authService.Bootstrap(ctx, cfg.Bootstrap)
	if err != nil {
		return err
	}
	if created {
		log.Info("bootstrap admin created", zap.String("email", cfg.Bootstrap.AdminEmail))
	}

	app := router.NewApp(router.Deps{
		Access:         access,
		Guests:         guests,
		Events:         events,
		Gifts:          gifts,
		Reservations:   service.NewReservationService(giftRepo),
		Contributions:  contributions,
		Verification:   service.NewVerificationService(contributionRepo, authz),
		Admin:          service.NewAdminService(authz, events, gifts, guests, contributions, profileRepo, qrcode.NewQRService(cfg.PublicSiteURL), validator),
		Auth:           authService,
		Email:          emailService,
		Validator:      validator,
		Log:            log,
		AllowOrigins:   cfg.CORSAllowOrigins,
		RateLimitMax:   cfg.RateLimitMax,
		MaxUploadBytes: cfg.MaxUploadBytes,
		PublicSiteURL:  cfg.PublicSiteURL,
		RequestLogging: true,
	})

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Info("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Error("shutdown failed", zap.Error(err))
		}
	}()

	log.Info("listening", zap.String("port", cfg.Port), zap.Bool("access_code_enforced", cfg.AccessCodeEnforced))
	return app.Listen(":" + cfg.Port)
}
