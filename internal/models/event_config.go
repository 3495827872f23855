package models

import (
	"time"
)

// EventConfigID is the primary key of the only EventConfig row.
const EventConfigID = "event"

type EventConfig struct {
	ID             string    `json:"id" gorm:"primaryKey;type:varchar(32)"`
	EventDate      time.Time `json:"event_date" gorm:"not null"`
	PixKey         string    `json:"pix_key" gorm:"not null"`
	AccessCode     string    `json:"access_code" gorm:"not null"`
	WelcomeMessage string    `json:"welcome_message"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (EventConfig) TableName() string {
	return "event_config"
}

type EventConfigRequest struct {
	EventDate      time.Time `json:"event_date" validate:"required"`
	PixKey         string    `json:"pix_key" validate:"required,notblank"`
	AccessCode     string    `json:"access_code" validate:"required,notblank"`
	WelcomeMessage string    `json:"welcome_message"`
}

// PublicEventInfo is what guests see. It never carries the access code.
type PublicEventInfo struct {
	EventDate      time.Time `json:"event_date"`
	WelcomeMessage string    `json:"welcome_message"`
	PixKey         string    `json:"pix_key"`
}
