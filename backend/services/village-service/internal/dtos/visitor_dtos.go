package dtos

import (
	"time"

	"github.com/google/uuid"

	"github.com/imkarn-it/my-village-sub003/backend/shared/go-models"
)

type VisitorQuery struct {
	PageQuery
	DateRange
	UnitID *uuid.UUID
	Status models.VisitorStatus
	Search string
}

// CreateVisitorRequest pre-registers a visitor. Residents always register
// for their own unit; the office must name the unit.
type CreateVisitorRequest struct {
	UnitID       *uuid.UUID `json:"unit_id,omitempty"`
	Name         string     `json:"name" validate:"required,max=200,no_xss"`
	Phone        *string    `json:"phone,omitempty" validate:"omitempty,thai_phone"`
	LicensePlate *string    `json:"license_plate,omitempty" validate:"omitempty,max=32,no_xss"`
	Purpose      string     `json:"purpose" validate:"max=500,no_xss"`
	ExpectedAt   *time.Time `json:"expected_at,omitempty"`
	ValidUntil   *time.Time `json:"valid_until,omitempty"`
}

type WalkInVisitorRequest struct {
	UnitID       uuid.UUID `json:"unit_id" validate:"required"`
	Name         string    `json:"name" validate:"required,max=200,no_xss"`
	Phone        *string   `json:"phone,omitempty" validate:"omitempty,thai_phone"`
	LicensePlate *string   `json:"license_plate,omitempty" validate:"omitempty,max=32,no_xss"`
	Purpose      string    `json:"purpose" validate:"max=500,no_xss"`
}

// VerifyVisitorRequest looks a pass up by its QR token and, when CheckIn is
// set, checks the visitor in in the same call.
type VerifyVisitorRequest struct {
	QRToken string `json:"qr_token" validate:"required,alphanum,max=64"`
	CheckIn bool   `json:"check_in"`
}

type VerifyVisitorResponse struct {
	Visitor     *models.Visitor `json:"visitor"`
	HouseNumber string          `json:"house_number"`
	Valid       bool            `json:"valid"`
	Reason      string          `json:"reason,omitempty"`
}
