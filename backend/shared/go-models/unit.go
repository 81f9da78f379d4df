// go-models/unit.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// Unit is a house or condo unit inside a project. Residents and bills
// attach to a unit.
type Unit struct {
	Versioned

	ID          uuid.UUID `json:"id"`
	ProjectID   uuid.UUID `json:"project_id"`
	HouseNumber string    `json:"house_number"`
	Zone        string    `json:"zone"`
	OwnerName   string    `json:"owner_name"`
	AreaSqm     float64   `json:"area_sqm"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

func (u *Unit) GetID() string {
	return u.ID.String()
}
