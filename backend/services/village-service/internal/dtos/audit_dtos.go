package dtos

import (
	"github.com/google/uuid"

	"github.com/imkarn-it/my-village-sub003/backend/shared/go-models"
)

type AuditLogQuery struct {
	PageQuery
	DateRange
	ProjectID  *uuid.UUID
	ActorID    *uuid.UUID
	TargetID   *uuid.UUID
	Action     models.AuditAction
	TargetType models.AuditTargetType
}
