package services

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/imkarn-it/my-village-sub003/backend/services/village-service/internal/dtos"
	shared_dtos "github.com/imkarn-it/my-village-sub003/backend/shared/go-dtos"
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-models"
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-repositories"
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-utils"
)

type UnitService struct {
	repo  repositories.UnitRepository
	audit *AuditService
}

func NewUnitService(repo repositories.UnitRepository, audit *AuditService) *UnitService {
	return &UnitService{repo: repo, audit: audit}
}

var errHouseNumberTaken = utils.NewAppError(http.StatusConflict, utils.ErrCodeConflict, "House number already exists in this project", nil)

func (s *UnitService) load(ctx context.Context, a Actor, id uuid.UUID) (*models.Unit, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, utils.Internal("Failed to load unit", err)
	}
	if u == nil || u.ProjectID != a.ProjectID {
		return nil, utils.NotFound("Unit not found")
	}
	return u, nil
}

func (s *UnitService) List(ctx context.Context, a Actor, q dtos.UnitQuery) (shared_dtos.Page[*models.Unit], error) {
	page, size, limit, offset := utils.NormalizePage(q.Page, q.PageSize)
	list, total, err := s.repo.List(ctx, repositories.UnitFilter{
		ProjectID: a.ProjectID,
		Zone:      q.Zone,
		Search:    strings.TrimSpace(q.Search),
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		return shared_dtos.Page[*models.Unit]{}, utils.Internal("Failed to list units", err)
	}
	return shared_dtos.NewPage(list, total, page, size), nil
}

func (s *UnitService) Get(ctx context.Context, a Actor, id uuid.UUID) (*models.Unit, error) {
	return s.load(ctx, a, id)
}

func (s *UnitService) Create(ctx context.Context, a Actor, req dtos.CreateUnitRequest) (*models.Unit, error) {
	u := &models.Unit{
		ID:          uuid.New(),
		ProjectID:   a.ProjectID,
		HouseNumber: strings.TrimSpace(req.HouseNumber),
		Zone:        strings.TrimSpace(req.Zone),
		OwnerName:   strings.TrimSpace(req.OwnerName),
		AreaSqm:     req.AreaSqm,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		if repositories.IsUniqueViolation(err) {
			return nil, errHouseNumberTaken
		}
		return nil, utils.Internal("Failed to create unit", err)
	}
	s.audit.record(ctx, a, models.AuditCreate, models.TargetUnit, u.ID, map[string]string{"house_number": u.HouseNumber})
	return u, nil
}

func (s *UnitService) Update(ctx context.Context, a Actor, id uuid.UUID, req dtos.UpdateUnitRequest) (*models.Unit, error) {
	if _, err := s.load(ctx, a, id); err != nil {
		return nil, err
	}

	var updated *models.Unit
	err := s.repo.UpdateWithRetry(ctx, id, func(u *models.Unit) error {
		if req.HouseNumber != nil {
			u.HouseNumber = strings.TrimSpace(*req.HouseNumber)
		}
		if req.Zone != nil {
			u.Zone = strings.TrimSpace(*req.Zone)
		}
		if req.OwnerName != nil {
			u.OwnerName = strings.TrimSpace(*req.OwnerName)
		}
		if req.AreaSqm != nil {
			u.AreaSqm = *req.AreaSqm
		}
		updated = u
		return nil
	})
	if repositories.IsUniqueViolation(err) {
		return nil, errHouseNumberTaken
	}
	if err != nil {
		return nil, mapUpdateErr(err, "Unit")
	}
	s.audit.record(ctx, a, models.AuditUpdate, models.TargetUnit, id, req)
	return updated, nil
}

func (s *UnitService) Delete(ctx context.Context, a Actor, id uuid.UUID) error {
	if _, err := s.load(ctx, a, id); err != nil {
		return err
	}
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return mapUpdateErr(err, "Unit")
	}
	s.audit.record(ctx, a, models.AuditDelete, models.TargetUnit, id, nil)
	return nil
}
