package models

import (
	"time"

	"github.com/google/uuid"
)

type Attendance struct {
	Versioned

	ID        uuid.UUID `json:"id"`
	ProjectID uuid.UUID `json:"project_id"`
	UserID    uuid.UUID `json:"user_id"`

	CheckInAt        time.Time `json:"check_in_at"`
	CheckInLat       float64   `json:"check_in_lat"`
	CheckInLng       float64   `json:"check_in_lng"`
	CheckInDistanceM float64   `json:"check_in_distance_m"`

	CheckOutAt        *time.Time `json:"check_out_at,omitempty"`
	CheckOutLat       *float64   `json:"check_out_lat,omitempty"`
	CheckOutLng       *float64   `json:"check_out_lng,omitempty"`
	CheckOutDistanceM *float64   `json:"check_out_distance_m,omitempty"`

	Note *string `json:"note,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (a *Attendance) GetID() string {
	return a.ID.String()
}

func (a *Attendance) IsOpen() bool {
	return a.CheckOutAt == nil
}
