package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/imkarn-it/my-village-sub003/backend/services/village-service/internal/dtos"
	shared_dtos "github.com/imkarn-it/my-village-sub003/backend/shared/go-dtos"
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-models"
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-repositories"
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-utils"
)

type MaintenanceService struct {
	repo          repositories.MaintenanceRepository
	users         repositories.UserRepository
	notifications *NotificationService
	audit         *AuditService
	now           func() time.Time
}

func NewMaintenanceService(
	repo repositories.MaintenanceRepository,
	users repositories.UserRepository,
	notifications *NotificationService,
	audit *AuditService,
) *MaintenanceService {
	return &MaintenanceService{repo: repo, users: users, notifications: notifications, audit: audit, now: time.Now}
}

func (s *MaintenanceService) Create(ctx context.Context, a Actor, req dtos.CreateMaintenanceRequest) (*models.MaintenanceRequest, error) {
	m := &models.MaintenanceRequest{
		ID:          uuid.New(),
		ProjectID:   a.ProjectID,
		ReporterID:  a.UserID,
		Title:       strings.TrimSpace(req.Title),
		Description: utils.SanitizeHTML(req.Description),
		Category:    strings.TrimSpace(req.Category),
		Priority:    req.Priority,
		Status:      models.MaintenanceStatusPending,
		ImageURLs:   req.ImageURLs,
	}
	if m.Priority == "" {
		m.Priority = models.PriorityMedium
	}
	if m.ImageURLs == nil {
		m.ImageURLs = []string{}
	}
	if a.IsResident() {
		unitID, err := residentUnit(ctx, s.users, a)
		if err != nil {
			return nil, err
		}
		m.UnitID = &unitID
	}

	if err := s.repo.Create(ctx, m); err != nil {
		return nil, utils.Internal("Failed to create maintenance request", err)
	}
	s.audit.record(ctx, a, models.AuditCreate, models.TargetMaintenance, m.ID, map[string]any{"title": m.Title, "priority": m.Priority})

	s.notifications.NotifyProjectRoles(ctx, Notice{
		ProjectID: a.ProjectID,
		Type:      models.NotificationMaintenance,
		Title:     "New maintenance request",
		Message:   m.Title,
		Link:      "/maintenance/" + m.ID.String(),
	}, models.RoleAdmin, models.RoleStaff)
	return m, nil
}

// List shows residents only their own tickets.
func (s *MaintenanceService) List(ctx context.Context, a Actor, q dtos.MaintenanceQuery) (shared_dtos.Page[*models.MaintenanceRequest], error) {
	page, size, limit, offset := utils.NormalizePage(q.Page, q.PageSize)
	f := repositories.MaintenanceFilter{
		ProjectID:  a.ProjectID,
		AssigneeID: q.AssigneeID,
		Status:     q.Status,
		Priority:   q.Priority,
		Category:   q.Category,
		From:       q.From,
		To:         q.To,
		Limit:      limit,
		Offset:     offset,
	}
	if a.IsResident() {
		f.ReporterID = a.userRef()
	}
	list, total, err := s.repo.List(ctx, f)
	if err != nil {
		return shared_dtos.Page[*models.MaintenanceRequest]{}, utils.Internal("Failed to list maintenance requests", err)
	}
	return shared_dtos.NewPage(list, total, page, size), nil
}

func (s *MaintenanceService) Get(ctx context.Context, a Actor, id uuid.UUID) (*models.MaintenanceRequest, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, utils.Internal("Failed to load maintenance request", err)
	}
	if m == nil || m.ProjectID != a.ProjectID || (a.IsResident() && m.ReporterID != a.UserID) {
		return nil, utils.NotFound("Maintenance request not found")
	}
	return m, nil
}

// Update changes status, priority, assignee or resolution note. Residents
// may only cancel their own pending ticket.
func (s *MaintenanceService) Update(ctx context.Context, a Actor, id uuid.UUID, req dtos.UpdateMaintenanceRequest) (*models.MaintenanceRequest, error) {
	if _, err := s.Get(ctx, a, id); err != nil {
		return nil, err
	}
	if a.IsResident() {
		onlyCancel := req.Status != nil && *req.Status == models.MaintenanceStatusCancelled &&
			req.Priority == nil && req.AssigneeID == nil && req.ResolutionNote == nil
		if !onlyCancel {
			return nil, utils.Forbidden("Residents can only cancel their own request")
		}
	}
	if req.AssigneeID != nil {
		assignee, err := s.users.GetByID(ctx, *req.AssigneeID)
		if err != nil {
			return nil, utils.Internal("Failed to load assignee", err)
		}
		if assignee == nil || assignee.ProjectID == nil || *assignee.ProjectID != a.ProjectID || assignee.Role == models.RoleResident {
			return nil, utils.BadRequest(utils.ErrCodeValidation, "Assignee must be staff of this project")
		}
	}

	var (
		updated       *models.MaintenanceRequest
		statusChanged bool
	)
	err := s.repo.UpdateWithRetry(ctx, id, func(m *models.MaintenanceRequest) error {
		statusChanged = false
		if req.Status != nil && *req.Status != m.Status {
			if a.IsResident() && m.Status != models.MaintenanceStatusPending {
				return invalidTransition("Maintenance request", m.Status, *req.Status)
			}
			if !m.Status.CanTransitionTo(*req.Status) {
				return invalidTransition("Maintenance request", m.Status, *req.Status)
			}
			m.Status = *req.Status
			statusChanged = true
			if m.Status == models.MaintenanceStatusCompleted {
				now := s.now()
				m.CompletedAt = &now
			}
		}
		if req.Priority != nil {
			m.Priority = *req.Priority
		}
		if req.AssigneeID != nil {
			m.AssigneeID = req.AssigneeID
		}
		if req.ResolutionNote != nil {
			note := utils.SanitizeHTML(*req.ResolutionNote)
			m.ResolutionNote = &note
		}
		updated = m
		return nil
	})
	if err != nil {
		return nil, mapUpdateErr(err, "Maintenance request")
	}

	s.audit.record(ctx, a, models.AuditUpdate, models.TargetMaintenance, id, req)

	if statusChanged && updated.ReporterID != a.UserID {
		email := MaintenanceStatusEmail(updated)
		s.notifications.NotifyUser(ctx, updated.ReporterID, Notice{
			ProjectID: updated.ProjectID,
			Type:      models.NotificationMaintenance,
			Title:     "Maintenance request updated",
			Message:   updated.Title + " is now " + strings.ReplaceAll(string(updated.Status), "_", " "),
			Link:      "/maintenance/" + updated.ID.String(),
			Email:     &email,
		})
	}
	if req.AssigneeID != nil && *req.AssigneeID != a.UserID {
		s.notifications.NotifyUser(ctx, *req.AssigneeID, Notice{
			ProjectID: updated.ProjectID,
			Type:      models.NotificationMaintenance,
			Title:     "Maintenance request assigned to you",
			Message:   updated.Title,
			Link:      "/maintenance/" + updated.ID.String(),
		})
	}
	return updated, nil
}

// Delete is reserved for admins; completed history is normally kept.
func (s *MaintenanceService) Delete(ctx context.Context, a Actor, id uuid.UUID) error {
	if !a.IsAdmin() {
		return utils.Forbidden("Only the juristic office can delete maintenance requests")
	}
	if _, err := s.Get(ctx, a, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapUpdateErr(err, "Maintenance request")
	}
	s.audit.record(ctx, a, models.AuditDelete, models.TargetMaintenance, id, nil)
	return nil
}
