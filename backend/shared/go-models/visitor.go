package models

import (
	"time"

	"github.com/google/uuid"
)

type VisitorStatus string

const (
	VisitorStatusExpected   VisitorStatus = "expected"
	VisitorStatusCheckedIn  VisitorStatus = "checked_in"
	VisitorStatusCheckedOut VisitorStatus = "checked_out"
	VisitorStatusCancelled  VisitorStatus = "cancelled"
	VisitorStatusExpired    VisitorStatus = "expired"
)

var visitorTransitions = map[VisitorStatus][]VisitorStatus{
	VisitorStatusExpected:  {VisitorStatusCheckedIn, VisitorStatusCancelled, VisitorStatusExpired},
	VisitorStatusCheckedIn: {VisitorStatusCheckedOut},
}

func (s VisitorStatus) CanTransitionTo(next VisitorStatus) bool {
	return containsStatus(visitorTransitions[s], next)
}

type Visitor struct {
	Versioned

	ID           uuid.UUID     `json:"id"`
	ProjectID    uuid.UUID     `json:"project_id"`
	UnitID       uuid.UUID     `json:"unit_id"`
	HostUserID   *uuid.UUID    `json:"host_user_id,omitempty"`
	Name         string        `json:"name"`
	Phone        *string       `json:"phone,omitempty"`
	LicensePlate *string       `json:"license_plate,omitempty"`
	Purpose      string        `json:"purpose"`
	QRToken      string        `json:"qr_token,omitempty"`
	ExpectedAt   *time.Time    `json:"expected_at,omitempty"`
	ValidUntil   *time.Time    `json:"valid_until,omitempty"`
	Status       VisitorStatus `json:"status"`
	IsWalkIn     bool          `json:"is_walk_in"`

	CheckInAt    *time.Time `json:"check_in_at,omitempty"`
	CheckOutAt   *time.Time `json:"check_out_at,omitempty"`
	CheckedInBy  *uuid.UUID `json:"checked_in_by,omitempty"`
	CheckedOutBy *uuid.UUID `json:"checked_out_by,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (v *Visitor) GetID() string {
	return v.ID.String()
}
