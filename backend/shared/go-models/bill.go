package models

import (
	"time"

	"github.com/google/uuid"
)

type BillType string

const (
	BillTypeCommonFee BillType = "common_fee"
	BillTypeWater     BillType = "water"
	BillTypeElectric  BillType = "electric"
	BillTypeParking   BillType = "parking"
	BillTypeOther     BillType = "other"
)

type BillStatus string

const (
	BillStatusPending             BillStatus = "pending"
	BillStatusPendingVerification BillStatus = "pending_verification"
	BillStatusPaid                BillStatus = "paid"
	BillStatusOverdue             BillStatus = "overdue"
	BillStatusCancelled           BillStatus = "cancelled"
)

var billTransitions = map[BillStatus][]BillStatus{
	BillStatusPending:             {BillStatusPendingVerification, BillStatusPaid, BillStatusOverdue, BillStatusCancelled},
	BillStatusOverdue:             {BillStatusPendingVerification, BillStatusPaid, BillStatusCancelled},
	BillStatusPendingVerification: {BillStatusPaid, BillStatusPending, BillStatusOverdue},
}

func (s BillStatus) CanTransitionTo(next BillStatus) bool {
	return containsStatus(billTransitions[s], next)
}

// Payable reports whether a resident may still submit payment.
func (s BillStatus) Payable() bool {
	return s == BillStatusPending || s == BillStatusOverdue
}

// Bill amounts are integer satang (1/100 baht).
type Bill struct {
	Versioned

	ID            uuid.UUID  `json:"id"`
	ProjectID     uuid.UUID  `json:"project_id"`
	UnitID        uuid.UUID  `json:"unit_id"`
	Type          BillType   `json:"type"`
	Description   string     `json:"description"`
	AmountSatang  int64      `json:"amount_satang"`
	BillingPeriod string     `json:"billing_period"` // YYYY-MM
	DueDate       time.Time  `json:"due_date"`
	Status        BillStatus `json:"status"`
	IssuedBy      uuid.UUID  `json:"issued_by"`
	PaidAt        *time.Time `json:"paid_at,omitempty"`

	StripePaymentIntentID *string `json:"stripe_payment_intent_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (b *Bill) GetID() string {
	return b.ID.String()
}
