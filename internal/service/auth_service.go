package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sefazor/giftregistry-backend/internal/config"
	"github.com/sefazor/giftregistry-backend/internal/errs"
	"github.com/sefazor/giftregistry-backend/internal/models"
	"github.com/sefazor/giftregistry-backend/internal/repository"
	"github.com/sefazor/giftregistry-backend/pkg/bcrypt"
	"github.com/sefazor/giftregistry-backend/pkg/jwt"
	"gorm.io/gorm"
)

// AuthService is the identity collaborator for privileged accounts.
type AuthService struct {
	profileRepo *repository.ProfileRepository
	revokedRepo *repository.RevokedTokenRepository
	tokens      *jwt.Manager
	ttl         time.Duration
}

func NewAuthService(
	profileRepo *repository.ProfileRepository,
	revokedRepo *repository.RevokedTokenRepository,
	tokens *jwt.Manager,
	ttl time.Duration,
) *AuthService {
	return &AuthService{
		profileRepo: profileRepo,
		revokedRepo: revokedRepo,
		tokens:      tokens,
		ttl:         ttl,
	}
}

func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	profile, err := s.profileRepo.GetByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.Unauthenticated("invalid email or password")
	}
	if err != nil {
		return nil, errs.Storage(err, "load profile")
	}
	// Profiles without a usable hash cannot sign in.
	if !bcrypt.VerifyHash(profile.PasswordHash) {
		return nil, errs.Unauthenticated("invalid email or password")
	}
	if err := bcrypt.ComparePassword(profile.PasswordHash, req.Password); err != nil {
		return nil, errs.Unauthenticated("invalid email or password")
	}

	token, err := s.tokens.IssueIdentity(profile.UserID, email, s.ttl)
	if err != nil {
		return nil, err
	}
	return &models.AuthResponse{
		Token:   token,
		Profile: *profile,
	}, nil
}

// CurrentIdentity validates an identity token and rejects signed-out ones.
func (s *AuthService) CurrentIdentity(ctx context.Context, token string) (*models.Identity, error) {
	claims, err := s.tokens.Parse(token, jwt.TypeIdentity)
	if err != nil {
		return nil, errs.Unauthenticated("invalid token")
	}
	revoked, err := s.revokedRepo.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, errs.Storage(err, "check token")
	}
	if revoked {
		return nil, errs.Unauthenticated("token was signed out")
	}
	return &models.Identity{UserID: claims.Subject, Email: claims.Email}, nil
}

// SignOut revokes the token until it would have expired.
func (s *AuthService) SignOut(ctx context.Context, token string) error {
	claims, err := s.tokens.Parse(token, jwt.TypeIdentity)
	if err != nil {
		return errs.Unauthenticated("invalid token")
	}
	if err := s.revokedRepo.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return errs.Storage(err, "revoke token")
	}
	if _, err := s.revokedRepo.PurgeExpired(ctx, time.Now()); err != nil {
		return errs.Storage(err, "purge revoked tokens")
	}
	return nil
}

func (s *AuthService) Me(ctx context.Context, identity models.Identity) (*models.Profile, error) {
	p, err := s.profileRepo.GetByUserID(ctx, identity.UserID)
	if err != nil {
		return nil, errs.FromDB(err, "profile")
	}
	return p, nil
}

// Bootstrap provisions the first admin from configuration when it does not exist yet.
func (s *AuthService) Bootstrap(ctx context.Context, cfg config.BootstrapConfig) (bool, error) {
	email := strings.ToLower(strings.TrimSpace(cfg.AdminEmail))
	if email == "" || cfg.AdminPassword == "" {
		return false, nil
	}
	exists, err := s.profileRepo.EmailExists(ctx, email)
	if err != nil {
		return false, errs.Storage(err, "check bootstrap admin")
	}
	if exists {
		return false, nil
	}
	hash, err := bcrypt.HashPassword(cfg.AdminPassword)
	if err != nil {
		return false, err
	}
	profile := &models.Profile{
		Role:         models.RoleAdmin,
		FullName:     cfg.AdminName,
		Email:        &email,
		PasswordHash: hash,
	}
	if err := s.profileRepo.Create(ctx, profile); err != nil {
		return false, errs.Storage(err, "create bootstrap admin")
	}
	return true, nil
}
