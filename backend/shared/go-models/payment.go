package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusVerified PaymentStatus = "verified"
	PaymentStatusRejected PaymentStatus = "rejected"
)

type PaymentMethod string

const (
	PaymentMethodTransfer  PaymentMethod = "bank_transfer"
	PaymentMethodPromptPay PaymentMethod = "promptpay"
	PaymentMethodCash      PaymentMethod = "cash"
)

type Payment struct {
	Versioned

	ID           uuid.UUID     `json:"id"`
	ProjectID    uuid.UUID     `json:"project_id"`
	BillID       uuid.UUID     `json:"bill_id"`
	PaidBy       uuid.UUID     `json:"paid_by"`
	AmountSatang int64         `json:"amount_satang"`
	Method       PaymentMethod `json:"method"`
	SlipURL      *string       `json:"slip_url,omitempty"`
	Reference    *string       `json:"reference,omitempty"`
	Status       PaymentStatus `json:"status"`

	// Advisory result of automated slip reading; never decides on its own.
	SlipCheck *json.RawMessage `json:"slip_check,omitempty"`

	VerifiedBy   *uuid.UUID `json:"verified_by,omitempty"`
	VerifiedAt   *time.Time `json:"verified_at,omitempty"`
	RejectReason *string    `json:"reject_reason,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *Payment) GetID() string {
	return p.ID.String()
}

// SlipCheckResult is what the slip reader extracted from a transfer slip.
type SlipCheckResult struct {
	Readable      bool    `json:"readable"`
	AmountBaht    float64 `json:"amount_baht"`
	Reference     string  `json:"reference"`
	ReceiverName  string  `json:"receiver_name"`
	TransferredAt string  `json:"transferred_at"`
	AmountMatches bool    `json:"amount_matches"`
	Notes         string  `json:"notes,omitempty"`
}
