package dtos

import (
	"github.com/google/uuid"

	"github.com/imkarn-it/my-village-sub003/backend/shared/go-models"
)

type UserQuery struct {
	PageQuery
	ProjectID *uuid.UUID
	UnitID    *uuid.UUID
	Role      models.UserRole
	Status    models.UserStatus
	Search    string
}

// CreateUserRequest is used by the office to add accounts directly. They
// start active. ProjectID is only honored for the super admin.
type CreateUserRequest struct {
	ProjectID *uuid.UUID      `json:"project_id,omitempty"`
	UnitID    *uuid.UUID      `json:"unit_id,omitempty"`
	Email     string          `json:"email" validate:"required,email,max=254"`
	Password  string          `json:"password" validate:"required,min=8,max=72"`
	FirstName string          `json:"first_name" validate:"required,max=100,no_xss"`
	LastName  string          `json:"last_name" validate:"max=100,no_xss"`
	Phone     string          `json:"phone" validate:"required,thai_phone"`
	IDCard    string          `json:"id_card,omitempty" validate:"omitempty,thai_id"`
	Role      models.UserRole `json:"role" validate:"required,oneof=admin staff resident"`
}

// UpdateUserRequest is a partial update. Role, Status and UnitID are
// office-only fields.
type UpdateUserRequest struct {
	FirstName *string            `json:"first_name,omitempty" validate:"omitempty,min=1,max=100,no_xss"`
	LastName  *string            `json:"last_name,omitempty" validate:"omitempty,max=100,no_xss"`
	Phone     *string            `json:"phone,omitempty" validate:"omitempty,thai_phone"`
	IDCard    *string            `json:"id_card,omitempty" validate:"omitempty,thai_id"`
	UnitID    *uuid.UUID         `json:"unit_id,omitempty"`
	Role      *models.UserRole   `json:"role,omitempty" validate:"omitempty,oneof=admin staff resident"`
	Status    *models.UserStatus `json:"status,omitempty" validate:"omitempty,oneof=active suspended"`
}

// ReasonRequest carries the free-text reason for rejections and
// cancellations.
type ReasonRequest struct {
	Reason string `json:"reason" validate:"required,max=500,no_xss"`
}
