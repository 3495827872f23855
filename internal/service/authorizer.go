package service

import (
	"context"
	"errors"
	"slices"

	"github.com/sefazor/giftregistry-backend/internal/errs"
	"github.com/sefazor/giftregistry-backend/internal/models"
	"github.com/sefazor/giftregistry-backend/internal/repository"
	"gorm.io/gorm"
)

// Operation names a privileged action. Every privileged path goes through Authorizer.Authorize.
type Operation string

const (
	OpManageEventConfig  Operation = "event_config.manage"
	OpManageCatalog      Operation = "catalog.manage"
	OpManageProfiles     Operation = "profiles.manage"
	OpInviteQR           Operation = "invite.qr"
	OpModerationRead     Operation = "moderation.read"
	OpDecideContribution Operation = "contribution.decide"
)

var operationRoles = map[Operation][]models.Role{
	OpManageEventConfig:  {models.RoleAdmin},
	OpManageCatalog:      {models.RoleAdmin},
	OpManageProfiles:     {models.RoleAdmin},
	OpInviteQR:           {models.RoleAdmin},
	OpModerationRead:     {models.RoleAdmin, models.RoleModerator},
	OpDecideContribution: {models.RoleAdmin, models.RoleModerator},
}

// RoleRegistry maps an authenticated identity to its profile and role.
type RoleRegistry struct {
	profileRepo *repository.ProfileRepository
}

func NewRoleRegistry(profileRepo *repository.ProfileRepository) *RoleRegistry {
	return &RoleRegistry{profileRepo: profileRepo}
}

func (r *RoleRegistry) Resolve(ctx context.Context, identity models.Identity) (*models.Profile, error) {
	if identity.UserID == "" {
		return nil, errs.Unauthenticated("no identity")
	}
	profile, err := r.profileRepo.GetByUserID(ctx, identity.UserID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.Authorization("identity has no profile")
	}
	if err != nil {
		return nil, errs.Storage(err, "resolve role")
	}
	return profile, nil
}

type Authorizer struct {
	roles *RoleRegistry
}

func NewAuthorizer(roles *RoleRegistry) *Authorizer {
	return &Authorizer{roles: roles}
}

// Authorize resolves caller and checks its role against op. It never writes.
func (a *Authorizer) Authorize(ctx context.Context, caller models.Identity, op Operation) (*models.Profile, error) {
	allowed, ok := operationRoles[op]
	if !ok {
		return nil, errs.Authorization("unknown operation %s", op)
	}
	profile, err := a.roles.Resolve(ctx, caller)
	if err != nil {
		return nil, err
	}
	if !slices.Contains(allowed, profile.Role) {
		return nil, errs.Authorization("role %s may not perform %s", profile.Role, op)
	}
	return profile, nil
}
