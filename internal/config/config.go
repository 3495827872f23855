package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type R2Config struct {
	AccountID       string `env:"ACCOUNT_ID"`
	AccessKeyID     string `env:"ACCESS_KEY_ID"`
	SecretAccessKey string `env:"SECRET_ACCESS_KEY"`
	Bucket          string `env:"BUCKET" envDefault:"receipts"`
	PublicURL       string `env:"PUBLIC_URL"`
	// Endpoint overrides the Cloudflare endpoint derived from AccountID, e.g. a local MinIO.
	Endpoint string `env:"ENDPOINT"`
	Region   string `env:"REGION" envDefault:"auto"`
}

// ResolvedEndpoint returns the S3 endpoint to talk to.
func (c R2Config) ResolvedEndpoint() string {
	if c.Endpoint != "" {
		return c.Endpoint
	}
	return fmt.Sprintf("https://%s.r2.cloudflarestorage.com", c.AccountID)
}

type DatabaseConfig struct {
	Driver string `env:"DRIVER" envDefault:"postgres"`
	URL    string `env:"URL"`
}

type JWTConfig struct {
	Secret          string        `env:"SECRET"`
	Issuer          string        `env:"ISSUER" envDefault:"giftregistry"`
	AdmissionTTL    time.Duration `env:"ADMISSION_TTL" envDefault:"30m"`
	GuestSessionTTL time.Duration `env:"GUEST_SESSION_TTL" envDefault:"720h"`
	IdentityTTL     time.Duration `env:"IDENTITY_TTL" envDefault:"168h"`
}

type EmailConfig struct {
	ResendAPIKey string `env:"RESEND_API_KEY"`
	FromAddress  string `env:"EMAIL_FROM_ADDRESS"`
	FromName     string `env:"EMAIL_FROM_NAME" envDefault:"Gift Registry"`
}

type BootstrapConfig struct {
	AdminEmail    string `env:"EMAIL"`
	AdminPassword string `env:"PASSWORD"`
	AdminName     string `env:"NAME" envDefault:"Administrator"`
}

type LogConfig struct {
	Level string `env:"LOG_LEVEL" envDefault:"info"`
	Dev   bool   `env:"LOG_DEV"`
}

type Config struct {
	Port               string   `env:"PORT" envDefault:"8080"`
	AccessCodeEnforced bool     `env:"ACCESS_CODE_ENFORCED"`
	CORSAllowOrigins   string   `env:"CORS_ALLOW_ORIGINS" envDefault:"http://localhost:5173"`
	RateLimitMax       int      `env:"RATE_LIMIT_MAX" envDefault:"20"`
	PublicSiteURL      string   `env:"PUBLIC_SITE_URL" envDefault:"http://localhost:5173"`
	MaxUploadBytes     int      `env:"MAX_UPLOAD_BYTES" envDefault:"10485760"`
	AllowedUploadTypes []string `env:"ALLOWED_UPLOAD_TYPES" envDefault:"image/jpeg,image/png,image/webp,application/pdf"`

	Database  DatabaseConfig  `envPrefix:"DATABASE_"`
	JWT       JWTConfig       `envPrefix:"JWT_"`
	R2        R2Config        `envPrefix:"R2_"`
	Email     EmailConfig
	Bootstrap BootstrapConfig `envPrefix:"BOOTSTRAP_ADMIN_"`
	Log       LogConfig
}

// LoadConfig parses the environment.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return errors.New("JWT_SECRET is not set")
	}
	if len(c.JWT.Secret) < 32 {
		return errors.New("JWT_SECRET must be at least 32 bytes")
	}
	switch c.Database.Driver {
	case "postgres":
		if c.Database.URL == "" {
			return errors.New("DATABASE_URL is not set")
		}
	case "sqlite":
		if c.Database.URL == "" {
			c.Database.URL = "giftregistry.db"
		}
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", c.Database.Driver)
	}
	return nil
}

// BlobStoreConfigured reports whether receipts can be stored.
func (c *Config) BlobStoreConfigured() bool {
	return c.R2.AccessKeyID != "" && c.R2.SecretAccessKey != "" && (c.R2.AccountID != "" || c.R2.Endpoint != "")
}
