package models

import (
	"time"

	"github.com/google/uuid"
)

// Facility is a bookable common area (pool, meeting room, court).
// OpenTime and CloseTime are "HH:MM" in the project's timezone.
type Facility struct {
	Versioned

	ID               uuid.UUID `json:"id"`
	ProjectID        uuid.UUID `json:"project_id"`
	Name             string    `json:"name"`
	Description      string    `json:"description"`
	Capacity         int       `json:"capacity"`
	OpenTime         string    `json:"open_time"`
	CloseTime        string    `json:"close_time"`
	MaxHours         int       `json:"max_hours"`
	RequiresApproval bool      `json:"requires_approval"`
	ClosedOnHolidays bool      `json:"closed_on_holidays"`
	IsActive         bool      `json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (f *Facility) GetID() string {
	return f.ID.String()
}
