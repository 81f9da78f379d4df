package models

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusApproved  BookingStatus = "approved"
	BookingStatusRejected  BookingStatus = "rejected"
	BookingStatusCancelled BookingStatus = "cancelled"
)

var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusPending:  {BookingStatusApproved, BookingStatusRejected, BookingStatusCancelled},
	BookingStatusApproved: {BookingStatusCancelled},
}

func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	return containsStatus(bookingTransitions[s], next)
}

// Holds reports whether a booking in this status blocks its time slot.
func (s BookingStatus) Holds() bool {
	return s == BookingStatusPending || s == BookingStatusApproved
}

type Booking struct {
	Versioned

	ID         uuid.UUID     `json:"id"`
	ProjectID  uuid.UUID     `json:"project_id"`
	FacilityID uuid.UUID     `json:"facility_id"`
	UserID     uuid.UUID     `json:"user_id"`
	UnitID     *uuid.UUID    `json:"unit_id,omitempty"`
	StartTime  time.Time     `json:"start_time"`
	EndTime    time.Time     `json:"end_time"`
	Attendees  int           `json:"attendees"`
	Note       string        `json:"note"`
	Status     BookingStatus `json:"status"`

	ReviewedBy   *uuid.UUID `json:"reviewed_by,omitempty"`
	ReviewNote   *string    `json:"review_note,omitempty"`
	ReviewedAt   *time.Time `json:"reviewed_at,omitempty"`
	CancelReason *string    `json:"cancel_reason,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (b *Booking) GetID() string {
	return b.ID.String()
}

// Overlaps uses half-open intervals so back-to-back bookings are allowed.
func (b *Booking) Overlaps(start, end time.Time) bool {
	return b.StartTime.Before(end) && start.Before(b.EndTime)
}
