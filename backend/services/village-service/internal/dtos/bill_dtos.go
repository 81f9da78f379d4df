package dtos

import (
	"github.com/google/uuid"

	"github.com/imkarn-it/my-village-sub003/backend/shared/go-models"
)

type BillQuery struct {
	PageQuery
	UnitID        *uuid.UUID
	Status        models.BillStatus
	Type          models.BillType
	BillingPeriod string
}

// CreateBillRequest issues a bill to UnitID, or to every unit of the
// project when AllUnits is set.
type CreateBillRequest struct {
	UnitID        *uuid.UUID      `json:"unit_id,omitempty" validate:"required_without=AllUnits"`
	AllUnits      bool            `json:"all_units"`
	Type          models.BillType `json:"type" validate:"required,oneof=common_fee water electric parking other"`
	Description   string          `json:"description" validate:"max=500,no_xss"`
	AmountSatang  int64           `json:"amount_satang" validate:"required,gt=0"`
	BillingPeriod string          `json:"billing_period" validate:"required,datetime=2006-01"`
	DueDate       string          `json:"due_date" validate:"required,datetime=2006-01-02"`
}

type IssueBillsResponse struct {
	Created int            `json:"created"`
	Bills   []*models.Bill `json:"bills"`
}

type BillStatusSummary struct {
	Status       models.BillStatus `json:"status"`
	Count        int               `json:"count"`
	AmountSatang int64             `json:"amount_satang"`
	Amount       string            `json:"amount"`
}

type BillSummaryResponse struct {
	Totals            []BillStatusSummary `json:"totals"`
	OutstandingSatang int64               `json:"outstanding_satang"`
	Outstanding       string              `json:"outstanding"`
	CollectedSatang   int64               `json:"collected_satang"`
	Collected         string              `json:"collected"`
}

type PaymentQuery struct {
	PageQuery
	BillID *uuid.UUID
	Status models.PaymentStatus
}

// SubmitPaymentRequest is a resident's proof of transfer. SlipImageBase64
// is only used for the automated slip check and is not stored.
type SubmitPaymentRequest struct {
	AmountSatang    int64                `json:"amount_satang" validate:"required,gt=0"`
	Method          models.PaymentMethod `json:"method" validate:"required,oneof=bank_transfer promptpay cash"`
	SlipURL         *string              `json:"slip_url,omitempty" validate:"omitempty,url"`
	Reference       *string              `json:"reference,omitempty" validate:"omitempty,max=100,no_xss"`
	SlipImageBase64 string               `json:"slip_image_base64,omitempty" validate:"omitempty,base64"`
	SlipImageType   string               `json:"slip_image_type,omitempty" validate:"omitempty,oneof=image/jpeg image/png image/webp"`
}

type PaymentResponse struct {
	Payment *models.Payment `json:"payment"`
	Bill    *models.Bill    `json:"bill"`
}

type PromptPayResponse struct {
	PaymentIntentID string `json:"payment_intent_id"`
	ClientSecret    string `json:"client_secret"`
	AmountSatang    int64  `json:"amount_satang"`
	Amount          string `json:"amount"`
	Currency        string `json:"currency"`
	Status          string `json:"status"`
	QRImageURL      string `json:"qr_image_url,omitempty"`
}
