package services

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/imkarn-it/my-village-sub003/backend/services/village-service/internal/dtos"
	shared_dtos "github.com/imkarn-it/my-village-sub003/backend/shared/go-dtos"
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-models"
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-repositories"
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-utils"
)

// AuditEntry describes one state change. Details is marshalled to JSON.
type AuditEntry struct {
	ProjectID  *uuid.UUID
	ActorID    *uuid.UUID
	Action     models.AuditAction
	TargetType models.AuditTargetType
	TargetID   uuid.UUID
	Details    any
}

type AuditService struct {
	repo repositories.AuditLogRepository
}

func NewAuditService(repo repositories.AuditLogRepository) *AuditService {
	return &AuditService{repo: repo}
}

// Log records e. Failures are logged and never surface to the caller.
func (s *AuditService) Log(ctx context.Context, e AuditEntry) {
	entry := &models.AuditLog{
		ID:         uuid.New(),
		ProjectID:  e.ProjectID,
		ActorID:    e.ActorID,
		Action:     e.Action,
		TargetID:   e.TargetID,
		TargetType: e.TargetType,
	}
	if e.Details != nil {
		if raw, err := json.Marshal(e.Details); err == nil {
			msg := json.RawMessage(raw)
			entry.Details = &msg
		} else {
			utils.Logger.WithError(err).Warn("audit: failed to marshal details")
		}
	}
	if ip := utils.ClientIPFromContext(ctx); ip != "" {
		entry.IPAddress = &ip
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		utils.Logger.WithError(err).WithFields(logrus.Fields{
			"action":      e.Action,
			"target_type": e.TargetType,
			"target_id":   e.TargetID,
		}).Error("audit: failed to write entry")
	}
}

// record is shorthand for the common project-scoped entry.
func (s *AuditService) record(ctx context.Context, a Actor, action models.AuditAction, target models.AuditTargetType, id uuid.UUID, details any) {
	e := AuditEntry{
		ActorID:    a.userRef(),
		Action:     action,
		TargetType: target,
		TargetID:   id,
		Details:    details,
	}
	if a.ProjectID != uuid.Nil {
		e.ProjectID = a.projectRef()
	}
	s.Log(ctx, e)
}

// List returns audit entries. Project admins only ever see their own
// project; the super admin may filter on any project or none.
func (s *AuditService) List(ctx context.Context, a Actor, q dtos.AuditLogQuery) (shared_dtos.Page[*models.AuditLog], error) {
	page, size, limit, offset := utils.NormalizePage(q.Page, q.PageSize)

	f := repositories.AuditLogFilter{
		ProjectID:  q.ProjectID,
		ActorID:    q.ActorID,
		Action:     q.Action,
		TargetType: q.TargetType,
		TargetID:   q.TargetID,
		From:       q.From,
		To:         q.To,
		Limit:      limit,
		Offset:     offset,
	}
	if a.Role != models.RoleSuperAdmin {
		f.ProjectID = a.projectRef()
	}

	list, total, err := s.repo.List(ctx, f)
	if err != nil {
		return shared_dtos.Page[*models.AuditLog]{}, utils.Internal("Failed to list audit logs", err)
	}
	return shared_dtos.NewPage(list, total, page, size), nil
}
