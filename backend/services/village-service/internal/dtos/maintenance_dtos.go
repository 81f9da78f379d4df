package dtos

import (
	"github.com/google/uuid"

	"github.com/imkarn-it/my-village-sub003/backend/shared/go-models"
)

type MaintenanceQuery struct {
	PageQuery
	DateRange
	Status     models.MaintenanceStatus
	Priority   models.MaintenancePriority
	Category   string
	AssigneeID *uuid.UUID
}

type CreateMaintenanceRequest struct {
	Title       string                     `json:"title" validate:"required,max=200,no_xss"`
	Description string                     `json:"description" validate:"required,max=5000"`
	Category    string                     `json:"category" validate:"required,max=64,no_xss"`
	Priority    models.MaintenancePriority `json:"priority,omitempty" validate:"omitempty,oneof=low medium high urgent"`
	ImageURLs   []string                   `json:"image_urls,omitempty" validate:"max=10,dive,url"`
}

// UpdateMaintenanceRequest is applied by the office. A resident may only
// send Status=cancelled on their own pending ticket.
type UpdateMaintenanceRequest struct {
	Status         *models.MaintenanceStatus   `json:"status,omitempty" validate:"omitempty,oneof=pending in_progress completed cancelled"`
	Priority       *models.MaintenancePriority `json:"priority,omitempty" validate:"omitempty,oneof=low medium high urgent"`
	AssigneeID     *uuid.UUID                  `json:"assignee_id,omitempty"`
	ResolutionNote *string                     `json:"resolution_note,omitempty" validate:"omitempty,max=2000"`
}
