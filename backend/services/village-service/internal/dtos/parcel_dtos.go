package dtos

import (
	"github.com/google/uuid"

	"github.com/imkarn-it/my-village-sub003/backend/shared/go-models"
)

type ParcelQuery struct {
	PageQuery
	UnitID *uuid.UUID
	Status models.ParcelStatus
	Search string
}

type CreateParcelRequest struct {
	UnitID         uuid.UUID `json:"unit_id" validate:"required"`
	RecipientName  string    `json:"recipient_name" validate:"required,max=200,no_xss"`
	Carrier        string    `json:"carrier" validate:"required,max=100,no_xss"`
	TrackingNumber *string   `json:"tracking_number,omitempty" validate:"omitempty,max=100,no_xss"`
	Note           *string   `json:"note,omitempty" validate:"omitempty,max=500,no_xss"`
	PhotoURL       *string   `json:"photo_url,omitempty" validate:"omitempty,url"`
}

type PickupParcelRequest struct {
	PickedUpBy string `json:"picked_up_by" validate:"required,max=200,no_xss"`
}
