package dtos

import (
	"time"

	"github.com/google/uuid"

	"github.com/imkarn-it/my-village-sub003/backend/shared/go-models"
)

type CreateFacilityRequest struct {
	Name             string `json:"name" validate:"required,max=200,no_xss"`
	Description      string `json:"description" validate:"max=2000"`
	Capacity         int    `json:"capacity" validate:"required,min=1,max=1000"`
	OpenTime         string `json:"open_time" validate:"required,datetime=15:04"`
	CloseTime        string `json:"close_time" validate:"required,datetime=15:04"`
	MaxHours         int    `json:"max_hours" validate:"required,min=1,max=24"`
	RequiresApproval bool   `json:"requires_approval"`
	ClosedOnHolidays bool   `json:"closed_on_holidays"`
}

type UpdateFacilityRequest struct {
	Name             *string `json:"name,omitempty" validate:"omitempty,min=1,max=200,no_xss"`
	Description      *string `json:"description,omitempty" validate:"omitempty,max=2000"`
	Capacity         *int    `json:"capacity,omitempty" validate:"omitempty,min=1,max=1000"`
	OpenTime         *string `json:"open_time,omitempty" validate:"omitempty,datetime=15:04"`
	CloseTime        *string `json:"close_time,omitempty" validate:"omitempty,datetime=15:04"`
	MaxHours         *int    `json:"max_hours,omitempty" validate:"omitempty,min=1,max=24"`
	RequiresApproval *bool   `json:"requires_approval,omitempty"`
	ClosedOnHolidays *bool   `json:"closed_on_holidays,omitempty"`
	IsActive         *bool   `json:"is_active,omitempty"`
}

type TimeSlot struct {
	Start  time.Time            `json:"start"`
	End    time.Time            `json:"end"`
	Status models.BookingStatus `json:"status"`
}

// AvailabilityResponse describes one local day of a facility.
type AvailabilityResponse struct {
	FacilityID   string     `json:"facility_id"`
	Date         string     `json:"date"`
	TimeZone     string     `json:"timezone"`
	OpensAt      time.Time  `json:"opens_at"`
	ClosesAt     time.Time  `json:"closes_at"`
	Closed       bool       `json:"closed"`
	ClosedReason string     `json:"closed_reason,omitempty"`
	Busy         []TimeSlot `json:"busy"`
}

type BookingQuery struct {
	PageQuery
	DateRange
	FacilityID *uuid.UUID
	Status     models.BookingStatus
}

type CreateBookingRequest struct {
	FacilityID uuid.UUID `json:"facility_id" validate:"required"`
	StartTime  time.Time `json:"start_time" validate:"required"`
	EndTime    time.Time `json:"end_time" validate:"required,gtfield=StartTime"`
	Attendees  int       `json:"attendees" validate:"required,min=1"`
	Note       string    `json:"note" validate:"max=500,no_xss"`
}

type ReviewBookingRequest struct {
	Note string `json:"note,omitempty" validate:"max=500,no_xss"`
}

// BookingConflict is returned as error details when a slot is taken.
type BookingConflict struct {
	BookingID string               `json:"booking_id"`
	StartTime time.Time            `json:"start_time"`
	EndTime   time.Time            `json:"end_time"`
	Status    models.BookingStatus `json:"status"`
}

type CancelBookingRequest struct {
	Reason string `json:"reason,omitempty" validate:"max=500,no_xss"`
}
