package models

import (
	"time"
)

type VerificationStatus string

const (
	StatusPending  VerificationStatus = "pending"
	StatusVerified VerificationStatus = "verified"
	StatusRejected VerificationStatus = "rejected"
)

// Predecessors lists the states from which s may be reached.
func (s VerificationStatus) Predecessors() []VerificationStatus {
	switch s {
	case StatusVerified:
		return []VerificationStatus{StatusPending, StatusRejected}
	case StatusRejected:
		return []VerificationStatus{StatusPending, StatusVerified}
	}
	return nil
}

// IsOutcome reports whether s is a decision a moderator can make.
func (s VerificationStatus) IsOutcome() bool {
	return s == StatusVerified || s == StatusRejected
}

type Contribution struct {
	ID               string             `json:"id" gorm:"primaryKey;type:varchar(36)"`
	ContributorName  string             `json:"contributor_name" gorm:"not null"`
	ContributorPhone *string            `json:"contributor_phone,omitempty"`
	Amount           float64            `json:"amount" gorm:"not null"`
	ReceiptRef       string             `json:"receipt_ref" gorm:"not null"`
	Status           VerificationStatus `json:"status" gorm:"not null;default:'pending';type:varchar(16);index"`
	CreatedAt        time.Time          `json:"created_at" gorm:"index"`
	UpdatedAt        time.Time          `json:"updated_at"`
}

func (Contribution) TableName() string {
	return "pix_contributions"
}

// VerificationDecision is one entry of a contribution's decision log.
type VerificationDecision struct {
	ID             uint               `json:"id" gorm:"primaryKey"`
	ContributionID string             `json:"contribution_id" gorm:"not null;index;type:varchar(36)"`
	Outcome        VerificationStatus `json:"outcome" gorm:"not null;type:varchar(16)"`
	DecidedBy      string             `json:"decided_by" gorm:"not null;type:varchar(36)"`
	DecidedRole    Role               `json:"decided_role" gorm:"not null;type:varchar(16)"`
	DecidedAt      time.Time          `json:"decided_at" gorm:"not null"`
}

// ContributionStatus is the guest-facing view of a contribution. It omits contact details.
type ContributionStatus struct {
	ID              string             `json:"id"`
	ContributorName string             `json:"contributor_name"`
	Amount          float64            `json:"amount"`
	Status          VerificationStatus `json:"status"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

func (c Contribution) GuestView() ContributionStatus {
	return ContributionStatus{
		ID:              c.ID,
		ContributorName: c.ContributorName,
		Amount:          c.Amount,
		Status:          c.Status,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}

type SubmitContributionRequest struct {
	Amount     float64 `json:"amount" validate:"required,gt=0"`
	Name       string  `json:"name" validate:"required,notblank"`
	Phone      string  `json:"phone"`
	ReceiptRef string  `json:"receipt_ref" validate:"required,notblank"`
}

type DecisionRequest struct {
	Outcome VerificationStatus `json:"outcome"`
}

// ContributionView is the moderation view with the receipt resolved to a URL.
type ContributionView struct {
	Contribution
	ReceiptURL string `json:"receipt_url"`
}

type ReceiptUpload struct {
	ReceiptRef string `json:"receipt_ref"`
	ReceiptURL string `json:"receipt_url"`
}
