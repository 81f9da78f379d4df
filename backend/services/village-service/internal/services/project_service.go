package services

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/imkarn-it/my-village-sub003/backend/services/village-service/internal/dtos"
	shared_dtos "github.com/imkarn-it/my-village-sub003/backend/shared/go-dtos"
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-models"
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-repositories"
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-utils"
)

type ProjectService struct {
	repo  repositories.ProjectRepository
	audit *AuditService
}

func NewProjectService(repo repositories.ProjectRepository, audit *AuditService) *ProjectService {
	return &ProjectService{repo: repo, audit: audit}
}

func (s *ProjectService) Create(ctx context.Context, a Actor, req dtos.CreateProjectRequest) (*models.Project, error) {
	p := &models.Project{
		ID:              uuid.New(),
		Name:            strings.TrimSpace(req.Name),
		Code:            strings.ToUpper(strings.TrimSpace(req.Code)),
		Address:         req.Address,
		Latitude:        req.Latitude,
		Longitude:       req.Longitude,
		TimeZone:        req.TimeZone,
		GeofenceRadiusM: req.GeofenceRadiusM,
		ContactPhone:    req.ContactPhone,
		ContactEmail:    req.ContactEmail,
	}
	if p.TimeZone == "" {
		p.TimeZone = utils.TimeZoneFor(p.Latitude, p.Longitude)
	}
	if p.GeofenceRadiusM == 0 {
		p.GeofenceRadiusM = utils.DefaultGeofenceRadiusM
	}
	if p.ContactPhone != nil {
		p.ContactPhone = utils.Ptr(utils.NormalizeThaiPhone(*p.ContactPhone))
	}

	if err := s.repo.Create(ctx, p); err != nil {
		if repositories.IsUniqueViolation(err) {
			return nil, utils.NewAppError(http.StatusConflict, utils.ErrCodeConflict, "Project code already in use", err)
		}
		return nil, utils.Internal("Failed to create project", err)
	}

	s.audit.Log(ctx, AuditEntry{
		ProjectID:  &p.ID,
		ActorID:    a.userRef(),
		Action:     models.AuditCreate,
		TargetType: models.TargetProject,
		TargetID:   p.ID,
		Details:    map[string]string{"code": p.Code, "timezone": p.TimeZone},
	})
	return p, nil
}

func (s *ProjectService) List(ctx context.Context, q dtos.PageQuery) (shared_dtos.Page[*models.Project], error) {
	page, size, limit, offset := utils.NormalizePage(q.Page, q.PageSize)
	list, total, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return shared_dtos.Page[*models.Project]{}, utils.Internal("Failed to list projects", err)
	}
	return shared_dtos.NewPage(list, total, page, size), nil
}

// Get is open to the super admin and to members of the project.
func (s *ProjectService) Get(ctx context.Context, a Actor, id uuid.UUID) (*models.Project, error) {
	if a.Role != models.RoleSuperAdmin && a.ProjectID != id {
		return nil, utils.NotFound("Project not found")
	}
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, utils.Internal("Failed to load project", err)
	}
	if p == nil {
		return nil, utils.NotFound("Project not found")
	}
	return p, nil
}

// Update lets the super admin or the project's own admin edit settings. A
// coordinate change without an explicit timezone re-derives the zone.
func (s *ProjectService) Update(ctx context.Context, a Actor, id uuid.UUID, req dtos.UpdateProjectRequest) (*models.Project, error) {
	if a.Role != models.RoleSuperAdmin && a.ProjectID != id {
		return nil, utils.NotFound("Project not found")
	}

	var updated *models.Project
	err := s.repo.UpdateWithRetry(ctx, id, func(p *models.Project) error {
		if req.Name != nil {
			p.Name = strings.TrimSpace(*req.Name)
		}
		if req.Address != nil {
			p.Address = *req.Address
		}
		moved := false
		if req.Latitude != nil {
			p.Latitude, moved = *req.Latitude, true
		}
		if req.Longitude != nil {
			p.Longitude, moved = *req.Longitude, true
		}
		switch {
		case req.TimeZone != nil:
			p.TimeZone = *req.TimeZone
		case moved:
			p.TimeZone = utils.TimeZoneFor(p.Latitude, p.Longitude)
		}
		if req.GeofenceRadiusM != nil {
			p.GeofenceRadiusM = *req.GeofenceRadiusM
		}
		if req.ContactPhone != nil {
			p.ContactPhone = utils.Ptr(utils.NormalizeThaiPhone(*req.ContactPhone))
		}
		if req.ContactEmail != nil {
			p.ContactEmail = req.ContactEmail
		}
		updated = p
		return nil
	})
	if err != nil {
		return nil, mapUpdateErr(err, "Project")
	}

	s.audit.Log(ctx, AuditEntry{
		ProjectID:  &id,
		ActorID:    a.userRef(),
		Action:     models.AuditUpdate,
		TargetType: models.TargetProject,
		TargetID:   id,
		Details:    req,
	})
	return updated, nil
}

func (s *ProjectService) Delete(ctx context.Context, a Actor, id uuid.UUID) error {
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return mapUpdateErr(err, "Project")
	}
	s.audit.Log(ctx, AuditEntry{
		ProjectID:  &id,
		ActorID:    a.userRef(),
		Action:     models.AuditDelete,
		TargetType: models.TargetProject,
		TargetID:   id,
	})
	return nil
}

// Location returns the project's time zone, used for day boundaries.
func (s *ProjectService) Location(ctx context.Context, id uuid.UUID) (*time.Location, *models.Project, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, utils.Internal("Failed to load project", err)
	}
	if p == nil {
		return nil, nil, utils.NotFound("Project not found")
	}
	return utils.LoadLocation(p.TimeZone), p, nil
}
