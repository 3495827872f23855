package models

import (
	"time"
)

// Guest is an RSVP record. Created once, never mutated.
type Guest struct {
	ID             string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	FullName       string    `json:"full_name" gorm:"not null"`
	Email          string    `json:"email" gorm:"not null;index"`
	Phone          string    `json:"phone" gorm:"not null"`
	AccessCodeUsed string    `json:"access_code_used" gorm:"not null"`
	SessionID      string    `json:"session_id" gorm:"uniqueIndex;not null"`
	CreatedAt      time.Time `json:"created_at" gorm:"index"`
}

func (Guest) TableName() string {
	return "rsvp"
}

type RSVPRequest struct {
	FullName string `json:"full_name" validate:"required,notblank"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"required,notblank"`
}

// GuestSession is returned after a successful RSVP.
type GuestSession struct {
	Guest        Guest  `json:"guest"`
	SessionToken string `json:"session_token"`
}
