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

const (
	defaultCheckpointRadiusM = 30
	checkpointCodeLength     = 8
)

type PatrolService struct {
	repo  repositories.PatrolRepository
	audit *AuditService
	now   func() time.Time
}

func NewPatrolService(repo repositories.PatrolRepository, audit *AuditService) *PatrolService {
	return &PatrolService{repo: repo, audit: audit, now: time.Now}
}

func (s *PatrolService) load(ctx context.Context, a Actor, id uuid.UUID) (*models.PatrolCheckpoint, error) {
	c, err := s.repo.GetCheckpoint(ctx, id)
	if err != nil {
		return nil, utils.Internal("Failed to load checkpoint", err)
	}
	if c == nil || c.ProjectID != a.ProjectID {
		return nil, utils.NotFound("Checkpoint not found")
	}
	return c, nil
}

func (s *PatrolService) ListCheckpoints(ctx context.Context, a Actor) ([]*models.PatrolCheckpoint, error) {
	list, err := s.repo.ListCheckpoints(ctx, a.ProjectID)
	if err != nil {
		return nil, utils.Internal("Failed to list checkpoints", err)
	}
	return list, nil
}

func (s *PatrolService) GetCheckpoint(ctx context.Context, a Actor, id uuid.UUID) (*models.PatrolCheckpoint, error) {
	return s.load(ctx, a, id)
}

// CreateCheckpoint generates a random code when none is given. Codes are
// printed on the QR tag at the checkpoint.
func (s *PatrolService) CreateCheckpoint(ctx context.Context, a Actor, req dtos.CreateCheckpointRequest) (*models.PatrolCheckpoint, error) {
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if code == "" {
		code = utils.NewQRToken()[:checkpointCodeLength]
	}
	radius := req.RadiusM
	if radius == 0 {
		radius = defaultCheckpointRadiusM
	}
	c := &models.PatrolCheckpoint{
		ID:        uuid.New(),
		ProjectID: a.ProjectID,
		Name:      strings.TrimSpace(req.Name),
		Code:      code,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		RadiusM:   radius,
		IsActive:  true,
	}
	if err := s.repo.CreateCheckpoint(ctx, c); err != nil {
		if repositories.IsUniqueViolation(err) {
			return nil, utils.Conflict("Checkpoint code already in use")
		}
		return nil, utils.Internal("Failed to create checkpoint", err)
	}
	s.audit.record(ctx, a, models.AuditCreate, models.TargetCheckpoint, c.ID, map[string]string{"code": c.Code})
	return c, nil
}

func (s *PatrolService) UpdateCheckpoint(ctx context.Context, a Actor, id uuid.UUID, req dtos.UpdateCheckpointRequest) (*models.PatrolCheckpoint, error) {
	if _, err := s.load(ctx, a, id); err != nil {
		return nil, err
	}
	var updated *models.PatrolCheckpoint
	err := s.repo.UpdateCheckpointWithRetry(ctx, id, func(c *models.PatrolCheckpoint) error {
		if req.Name != nil {
			c.Name = strings.TrimSpace(*req.Name)
		}
		if req.Latitude != nil {
			c.Latitude = *req.Latitude
		}
		if req.Longitude != nil {
			c.Longitude = *req.Longitude
		}
		if req.RadiusM != nil {
			c.RadiusM = *req.RadiusM
		}
		if req.IsActive != nil {
			c.IsActive = *req.IsActive
		}
		updated = c
		return nil
	})
	if err != nil {
		return nil, mapUpdateErr(err, "Checkpoint")
	}
	s.audit.record(ctx, a, models.AuditUpdate, models.TargetCheckpoint, id, req)
	return updated, nil
}

func (s *PatrolService) DeleteCheckpoint(ctx context.Context, a Actor, id uuid.UUID) error {
	if _, err := s.load(ctx, a, id); err != nil {
		return err
	}
	if err := s.repo.DeleteCheckpoint(ctx, id); err != nil {
		return utils.Internal("Failed to delete checkpoint", err)
	}
	s.audit.record(ctx, a, models.AuditDelete, models.TargetCheckpoint, id, nil)
	return nil
}

// Scan logs a guard's visit. Out-of-range scans are still recorded with
// status out_of_range so gaps in a round stay visible.
func (s *PatrolService) Scan(ctx context.Context, a Actor, req dtos.PatrolScanRequest) (*models.PatrolLog, error) {
	c, err := s.repo.GetCheckpointByCode(ctx, a.ProjectID, strings.ToUpper(strings.TrimSpace(req.Code)))
	if err != nil {
		return nil, utils.Internal("Failed to load checkpoint", err)
	}
	if c == nil || !c.IsActive {
		return nil, utils.NotFound("Checkpoint not found")
	}

	d, ok := utils.WithinRadius(c.Latitude, c.Longitude, req.Latitude, req.Longitude, c.RadiusM)
	status := models.PatrolLogOK
	if !ok {
		status = models.PatrolLogOutOfRange
	}
	l := &models.PatrolLog{
		ID:           uuid.New(),
		ProjectID:    a.ProjectID,
		CheckpointID: c.ID,
		GuardID:      a.UserID,
		ScannedAt:    s.now().UTC(),
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		DistanceM:    d,
		Status:       status,
		Note:         req.Note,
	}
	if err := s.repo.CreateLog(ctx, l); err != nil {
		return nil, utils.Internal("Failed to record patrol scan", err)
	}
	return l, nil
}

// ListLogs shows admins every guard and staff their own scans.
func (s *PatrolService) ListLogs(ctx context.Context, a Actor, q dtos.PatrolLogQuery) (shared_dtos.Page[*models.PatrolLog], error) {
	page, size, limit, offset := utils.NormalizePage(q.Page, q.PageSize)
	f := repositories.PatrolLogFilter{
		ProjectID:    a.ProjectID,
		GuardID:      q.GuardID,
		CheckpointID: q.CheckpointID,
		Status:       q.Status,
		From:         q.From,
		To:           q.To,
		Limit:        limit,
		Offset:       offset,
	}
	if !a.IsAdmin() {
		f.GuardID = a.userRef()
	}
	list, total, err := s.repo.ListLogs(ctx, f)
	if err != nil {
		return shared_dtos.Page[*models.PatrolLog]{}, utils.Internal("Failed to list patrol logs", err)
	}
	return shared_dtos.NewPage(list, total, page, size), nil
}
