package dtos

import (
	"github.com/google/uuid"

	"github.com/imkarn-it/my-village-sub003/backend/shared/go-models"
)

type AttendanceQuery struct {
	PageQuery
	DateRange
	UserID *uuid.UUID
}

type LocationRequest struct {
	Latitude  float64 `json:"latitude" validate:"latitude"`
	Longitude float64 `json:"longitude" validate:"longitude"`
	Note      *string `json:"note,omitempty" validate:"omitempty,max=500,no_xss"`
}

// LocationErrorDetails accompanies a location_inaccurate error.
type LocationErrorDetails struct {
	DistanceM float64 `json:"distance_m"`
	RadiusM   int     `json:"radius_m"`
}

type PatrolLogQuery struct {
	PageQuery
	DateRange
	GuardID      *uuid.UUID
	CheckpointID *uuid.UUID
	Status       models.PatrolLogStatus
}

type CreateCheckpointRequest struct {
	Name      string  `json:"name" validate:"required,max=200,no_xss"`
	Code      string  `json:"code,omitempty" validate:"omitempty,alphanum,max=32"`
	Latitude  float64 `json:"latitude" validate:"latitude"`
	Longitude float64 `json:"longitude" validate:"longitude"`
	RadiusM   int     `json:"radius_m,omitempty" validate:"omitempty,min=5,max=1000"`
}

type UpdateCheckpointRequest struct {
	Name      *string  `json:"name,omitempty" validate:"omitempty,min=1,max=200,no_xss"`
	Latitude  *float64 `json:"latitude,omitempty" validate:"omitempty,latitude"`
	Longitude *float64 `json:"longitude,omitempty" validate:"omitempty,longitude"`
	RadiusM   *int     `json:"radius_m,omitempty" validate:"omitempty,min=5,max=1000"`
	IsActive  *bool    `json:"is_active,omitempty"`
}

type PatrolScanRequest struct {
	Code      string  `json:"code" validate:"required,alphanum,max=32"`
	Latitude  float64 `json:"latitude" validate:"latitude"`
	Longitude float64 `json:"longitude" validate:"longitude"`
	Note      *string `json:"note,omitempty" validate:"omitempty,max=500,no_xss"`
}
