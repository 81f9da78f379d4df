package models

import (
	"time"

	"github.com/google/uuid"
)

type PatrolCheckpoint struct {
	Versioned

	ID        uuid.UUID `json:"id"`
	ProjectID uuid.UUID `json:"project_id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	RadiusM   int       `json:"radius_m"`
	IsActive  bool      `json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *PatrolCheckpoint) GetID() string {
	return c.ID.String()
}

type PatrolLogStatus string

const (
	PatrolLogOK         PatrolLogStatus = "ok"
	PatrolLogOutOfRange PatrolLogStatus = "out_of_range"
)

type PatrolLog struct {
	ID           uuid.UUID       `json:"id"`
	ProjectID    uuid.UUID       `json:"project_id"`
	CheckpointID uuid.UUID       `json:"checkpoint_id"`
	GuardID      uuid.UUID       `json:"guard_id"`
	ScannedAt    time.Time       `json:"scanned_at"`
	Latitude     float64         `json:"latitude"`
	Longitude    float64         `json:"longitude"`
	DistanceM    float64         `json:"distance_m"`
	Status       PatrolLogStatus `json:"status"`
	Note         *string         `json:"note,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}
