package models

import (
	"time"

	"github.com/google/uuid"
)

// Project is a village / housing estate and the tenant boundary for all
// other records.
type Project struct {
	Versioned

	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	Code            string    `json:"code"`
	Address         string    `json:"address"`
	Latitude        float64   `json:"latitude"`
	Longitude       float64   `json:"longitude"`
	TimeZone        string    `json:"timezone"`
	GeofenceRadiusM int       `json:"geofence_radius_m"`
	ContactPhone    *string   `json:"contact_phone,omitempty"`
	ContactEmail    *string   `json:"contact_email,omitempty"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

func (p *Project) GetID() string {
	return p.ID.String()
}
