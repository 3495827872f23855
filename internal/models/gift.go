package models

import (
	"time"
)

type GiftItem struct {
	ID              string     `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name            string     `json:"name" gorm:"not null"`
	Description     *string    `json:"description,omitempty"`
	ImageURL        *string    `json:"image_url,omitempty"`
	SuggestedPrice  *float64   `json:"suggested_price,omitempty"`
	IsSelected      bool       `json:"is_selected" gorm:"not null;default:false;index"`
	SelectedBy      *string    `json:"selected_by,omitempty" gorm:"type:varchar(36)"`
	SelectedByName  *string    `json:"selected_by_name,omitempty"`
	SelectedByPhone *string    `json:"-"`
	SelectedAt      *time.Time `json:"selected_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at" gorm:"index"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func (GiftItem) TableName() string {
	return "gifts"
}

type CreateGiftRequest struct {
	Name           string   `json:"name" validate:"required,notblank"`
	Description    string   `json:"description"`
	SuggestedPrice *float64 `json:"suggested_price" validate:"omitempty,gte=0"`
}

type ReserveRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// Claimant identifies who is reserving a gift. GuestID comes from the verified session.
type Claimant struct {
	GuestID string
	Name    string
	Phone   string
}

type ReservationStatus string

const (
	Reserved        ReservationStatus = "reserved"
	AlreadyReserved ReservationStatus = "already_reserved"
)

type ReservationResult struct {
	Status ReservationStatus `json:"status"`
	GiftID string            `json:"gift_id"`
}

// GiftSelection is a moderation view of a reserved gift.
type GiftSelection struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Description    *string    `json:"description,omitempty"`
	SuggestedPrice *float64   `json:"suggested_price,omitempty"`
	SelectedBy     *string    `json:"selected_by,omitempty"`
	SelectedByName *string    `json:"selected_by_name,omitempty"`
	SelectedPhone  *string    `json:"selected_by_phone,omitempty"`
	SelectedAt     *time.Time `json:"selected_at,omitempty"`
}
