package service

import (
	"context"
	"errors"
	"strings"

	"github.com/sefazor/giftregistry-backend/internal/errs"
	"github.com/sefazor/giftregistry-backend/internal/models"
	"github.com/sefazor/giftregistry-backend/internal/repository"
	"github.com/sefazor/giftregistry-backend/pkg/bcrypt"
	"github.com/sefazor/giftregistry-backend/pkg/qrcode"
	"github.com/sefazor/giftregistry-backend/pkg/utils"
)

// AdminService is the role-gated surface for catalog, configuration, accounts and
// moderation reads. Each method authorizes before touching anything.
type AdminService struct {
	authz         *Authorizer
	events        *EventService
	gifts         *GiftService
	guests        *GuestService
	contributions *ContributionService
	profileRepo   *repository.ProfileRepository
	qr            *qrcode.QRService
	validator     *utils.Validator
}

func NewAdminService(
	authz *Authorizer,
	events *EventService,
	gifts *GiftService,
	guests *GuestService,
	contributions *ContributionService,
	profileRepo *repository.ProfileRepository,
	qr *qrcode.QRService,
	validator *utils.Validator,
) *AdminService {
	return &AdminService{
		authz:         authz,
		events:        events,
		gifts:         gifts,
		guests:        guests,
		contributions: contributions,
		profileRepo:   profileRepo,
		qr:            qr,
		validator:     validator,
	}
}

// validate checks request tags. Callers run it after Authorize.
func (s *AdminService) validate(req interface{}) error {
	if err := s.validator.Struct(req); err != nil {
		return errs.Validation("%s", utils.Describe(err))
	}
	return nil
}

func (s *AdminService) GetEventConfig(ctx context.Context, caller models.Identity) (*models.EventConfig, error) {
	if _, err := s.authz.Authorize(ctx, caller, OpManageEventConfig); err != nil {
		return nil, err
	}
	return s.events.Get(ctx)
}

func (s *AdminService) UpsertEventConfig(ctx context.Context, caller models.Identity, req models.EventConfigRequest) (*models.EventConfig, error) {
	if _, err := s.authz.Authorize(ctx, caller, OpManageEventConfig); err != nil {
		return nil, err
	}
	if err := s.validate(req); err != nil {
		return nil, err
	}
	return s.events.Upsert(ctx, req)
}

func (s *AdminService) CreateGift(ctx context.Context, caller models.Identity, req models.CreateGiftRequest) (*models.GiftItem, error) {
	if _, err := s.authz.Authorize(ctx, caller, OpManageCatalog); err != nil {
		return nil, err
	}
	if err := s.validate(req); err != nil {
		return nil, err
	}
	return s.gifts.CreateGift(ctx, req)
}

func (s *AdminService) DeleteGift(ctx context.Context, caller models.Identity, giftID string) error {
	if _, err := s.authz.Authorize(ctx, caller, OpManageCatalog); err != nil {
		return err
	}
	return s.gifts.DeleteGift(ctx, giftID)
}

func (s *AdminService) UploadGiftImage(ctx context.Context, caller models.Identity, giftID string, data []byte) (*models.GiftItem, error) {
	if _, err := s.authz.Authorize(ctx, caller, OpManageCatalog); err != nil {
		return nil, err
	}
	return s.gifts.AttachImage(ctx, giftID, data)
}

func (s *AdminService) CreateProfile(ctx context.Context, caller models.Identity, req models.CreateProfileRequest) (*models.Profile, error) {
	if _, err := s.authz.Authorize(ctx, caller, OpManageProfiles); err != nil {
		return nil, err
	}
	if err := s.validate(req); err != nil {
		return nil, err
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	name := strings.TrimSpace(req.FullName)
	switch {
	case name == "":
		return nil, errs.Validation("full name is required")
	case email == "":
		return nil, errs.Validation("email is required")
	case len(req.Password) < 8:
		return nil, errs.Validation("password must have at least 8 characters")
	case !req.Role.Valid():
		return nil, errs.Validation("unknown role %q", req.Role)
	}

	exists, err := s.profileRepo.EmailExists(ctx, email)
	if err != nil {
		return nil, errs.Storage(err, "check profile email")
	}
	if exists {
		return nil, errs.Validation("email already exists")
	}
	hash, err := bcrypt.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	profile := &models.Profile{
		Role:         req.Role,
		FullName:     name,
		Email:        &email,
		PasswordHash: hash,
	}
	if phone := strings.TrimSpace(req.Phone); phone != "" {
		profile.Phone = &phone
	}
	if err := s.profileRepo.Create(ctx, profile); err != nil {
		return nil, errs.Storage(err, "create profile")
	}
	return profile, nil
}

// SetRole changes another account's role. Admin profiles are never changed, including
// the caller's own; an admin may grant admin to a non-admin.
func (s *AdminService) SetRole(ctx context.Context, caller models.Identity, userID string, role models.Role) (*models.Profile, error) {
	admin, err := s.authz.Authorize(ctx, caller, OpManageProfiles)
	if err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, errs.Validation("unknown role %q", role)
	}
	if admin.UserID == userID {
		return nil, errs.Validation("cannot change your own role")
	}
	target, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, errs.FromDB(err, "profile")
	}
	if target.Role == models.RoleAdmin {
		return nil, errs.Authorization("role of admin %s cannot be changed", userID)
	}
	if target.Role == role {
		return target, nil
	}
	found, err := s.profileRepo.UpdateRole(ctx, userID, role)
	if err != nil {
		return nil, errs.Storage(err, "update role")
	}
	if !found {
		return nil, errs.NotFound("profile %s not found", userID)
	}
	p, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, errs.FromDB(err, "profile")
	}
	return p, nil
}

// InviteQRCode renders a PNG linking to the site with the current access code.
func (s *AdminService) InviteQRCode(ctx context.Context, caller models.Identity, size int) ([]byte, error) {
	if _, err := s.authz.Authorize(ctx, caller, OpInviteQR); err != nil {
		return nil, err
	}
	if size < 128 || size > 1024 {
		return nil, errs.Validation("size must be between 128 and 1024")
	}
	code := ""
	cfg, err := s.events.Get(ctx)
	switch {
	case err == nil:
		code = cfg.AccessCode
	case !errors.Is(err, errs.ErrNotFound):
		return nil, err
	}
	png, err := s.qr.GenerateInviteQR(code, size)
	if err != nil {
		return nil, err
	}
	return png, nil
}

func (s *AdminService) ListRSVPs(ctx context.Context, caller models.Identity) ([]models.Guest, error) {
	if _, err := s.authz.Authorize(ctx, caller, OpModerationRead); err != nil {
		return nil, err
	}
	return s.guests.List(ctx)
}

func (s *AdminService) ListSelections(ctx context.Context, caller models.Identity) ([]models.GiftSelection, error) {
	if _, err := s.authz.Authorize(ctx, caller, OpModerationRead); err != nil {
		return nil, err
	}
	return s.gifts.ListSelections(ctx)
}

func (s *AdminService) ListContributions(ctx context.Context, caller models.Identity) ([]models.ContributionView, error) {
	if _, err := s.authz.Authorize(ctx, caller, OpModerationRead); err != nil {
		return nil, err
	}
	return s.contributions.List(ctx)
}

func (s *AdminService) ListProfiles(ctx context.Context, caller models.Identity) ([]models.Profile, error) {
	if _, err := s.authz.Authorize(ctx, caller, OpManageProfiles); err != nil {
		return nil, err
	}
	ps, err := s.profileRepo.List(ctx)
	if err != nil {
		return nil, errs.Storage(err, "list profiles")
	}
	return ps, nil
}
