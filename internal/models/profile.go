package models

import (
	"time"
)

type Role string

const (
	RoleAdmin     Role = "admin"
	RoleModerator Role = "moderator"
	RoleGuest     Role = "guest"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleModerator, RoleGuest:
		return true
	}
	return false
}

// Profile is a privileged account. Guests admitted through the access code have no profile.
type Profile struct {
	ID           string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID       string    `json:"user_id" gorm:"uniqueIndex;not null;type:varchar(36)"`
	Role         Role      `json:"role" gorm:"not null;default:'guest';type:varchar(16)"`
	FullName     string    `json:"full_name" gorm:"not null"`
	Email        *string   `json:"email,omitempty" gorm:"uniqueIndex"`
	Phone        *string   `json:"phone,omitempty"`
	PasswordHash string    `json:"-" gorm:"not null"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Identity is an authenticated caller as reported by the identity collaborator.
type Identity struct {
	UserID string
	Email  string
}

type CreateProfileRequest struct {
	FullName string `json:"full_name" validate:"required,notblank"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone"`
	Password string `json:"password" validate:"required,min=8"`
	Role     Role   `json:"role" validate:"required,oneof=admin moderator guest"`
}

type SetRoleRequest struct {
	Role Role `json:"role"`
}

type RevokedToken struct {
	JTI       string    `gorm:"primaryKey;type:varchar(36)"`
	ExpiresAt time.Time `gorm:"index;not null"`
}
