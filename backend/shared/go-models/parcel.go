package models

import (
	"time"

	"github.com/google/uuid"
)

type ParcelStatus string

const (
	ParcelStatusReceived ParcelStatus = "received"
	ParcelStatusPickedUp ParcelStatus = "picked_up"
	ParcelStatusReturned ParcelStatus = "returned"
)

var parcelTransitions = map[ParcelStatus][]ParcelStatus{
	ParcelStatusReceived: {ParcelStatusPickedUp, ParcelStatusReturned},
}

func (s ParcelStatus) CanTransitionTo(next ParcelStatus) bool {
	return containsStatus(parcelTransitions[s], next)
}

type Parcel struct {
	Versioned

	ID             uuid.UUID    `json:"id"`
	ProjectID      uuid.UUID    `json:"project_id"`
	UnitID         uuid.UUID    `json:"unit_id"`
	RecipientName  string       `json:"recipient_name"`
	Carrier        string       `json:"carrier"`
	TrackingNumber *string      `json:"tracking_number,omitempty"`
	Note           *string      `json:"note,omitempty"`
	PhotoURL       *string      `json:"photo_url,omitempty"`
	Status         ParcelStatus `json:"status"`
	ReceivedBy     uuid.UUID    `json:"received_by"`
	ReceivedAt     time.Time    `json:"received_at"`

	PickedUpBy   *string    `json:"picked_up_by,omitempty"`
	PickedUpAt   *time.Time `json:"picked_up_at,omitempty"`
	HandedOverBy *uuid.UUID `json:"handed_over_by,omitempty"`
	RemindedAt   *time.Time `json:"reminded_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *Parcel) GetID() string {
	return p.ID.String()
}
