package services

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/imkarn-it/my-village-sub003/backend/services/village-service/internal/constants"
	"github.com/imkarn-it/my-village-sub003/backend/services/village-service/internal/dtos"
	shared_dtos "github.com/imkarn-it/my-village-sub003/backend/shared/go-dtos"
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-models"
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-repositories"
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-utils"
)

type VisitorService struct {
	repo          repositories.VisitorRepository
	units         repositories.UnitRepository
	users         repositories.UserRepository
	notifications *NotificationService
	audit         *AuditService
	now           func() time.Time
}

func NewVisitorService(
	repo repositories.VisitorRepository,
	units repositories.UnitRepository,
	users repositories.UserRepository,
	notifications *NotificationService,
	audit *AuditService,
) *VisitorService {
	return &VisitorService{repo: repo, units: units, users: users, notifications: notifications, audit: audit, now: time.Now}
}

func (s *VisitorService) projectUnit(ctx context.Context, a Actor, unitID uuid.UUID) (*models.Unit, error) {
	unit, err := s.units.GetByID(ctx, unitID)
	if err != nil {
		return nil, utils.Internal("Failed to load unit", err)
	}
	if unit == nil || unit.ProjectID != a.ProjectID {
		return nil, utils.NotFound("Unit not found")
	}
	return unit, nil
}

// Create pre-registers a visitor and issues the QR pass token. The pass is
// valid from ExpectedAt (default now) for VisitorPassDefaultValidity unless
// ValidUntil says otherwise.
func (s *VisitorService) Create(ctx context.Context, a Actor, req dtos.CreateVisitorRequest) (*models.Visitor, error) {
	var unitID uuid.UUID
	if a.IsResident() {
		id, err := residentUnit(ctx, s.users, a)
		if err != nil {
			return nil, err
		}
		unitID = id
	} else {
		if req.UnitID == nil {
			return nil, utils.BadRequest(utils.ErrCodeValidation, "unit_id is required")
		}
		if _, err := s.projectUnit(ctx, a, *req.UnitID); err != nil {
			return nil, err
		}
		unitID = *req.UnitID
	}

	now := s.now()
	expected := now
	if req.ExpectedAt != nil {
		expected = req.ExpectedAt.UTC()
	}
	validUntil := expected.Add(constants.VisitorPassDefaultValidity)
	if req.ValidUntil != nil {
		validUntil = req.ValidUntil.UTC()
	}
	switch {
	case !validUntil.After(now):
		return nil, utils.BadRequest(utils.ErrCodeValidation, "Pass would already be expired")
	case !validUntil.After(expected):
		return nil, utils.BadRequest(utils.ErrCodeValidation, "valid_until must be after expected_at")
	case validUntil.Sub(expected) > constants.VisitorPassMaxValidity:
		return nil, utils.BadRequest(utils.ErrCodeValidation, "A pass may be valid for at most 7 days")
	}

	v := &models.Visitor{
		ID:           uuid.New(),
		ProjectID:    a.ProjectID,
		UnitID:       unitID,
		HostUserID:   a.userRef(),
		Name:         strings.TrimSpace(req.Name),
		Phone:        normalizedPhone(req.Phone),
		LicensePlate: upperTrim(req.LicensePlate),
		Purpose:      strings.TrimSpace(req.Purpose),
		QRToken:      utils.NewQRToken(),
		ExpectedAt:   &expected,
		ValidUntil:   &validUntil,
		Status:       models.VisitorStatusExpected,
	}
	if err := s.repo.Create(ctx, v); err != nil {
		return nil, utils.Internal("Failed to register visitor", err)
	}
	s.audit.record(ctx, a, models.AuditCreate, models.TargetVisitor, v.ID, map[string]any{"name": v.Name, "valid_until": validUntil})
	return v, nil
}

// WalkIn registers a visitor who arrived without a pass and checks them in
// straight away.
func (s *VisitorService) WalkIn(ctx context.Context, a Actor, req dtos.WalkInVisitorRequest) (*models.Visitor, error) {
	unit, err := s.projectUnit(ctx, a, req.UnitID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	v := &models.Visitor{
		ID:           uuid.New(),
		ProjectID:    a.ProjectID,
		UnitID:       unit.ID,
		Name:         strings.TrimSpace(req.Name),
		Phone:        normalizedPhone(req.Phone),
		LicensePlate: upperTrim(req.LicensePlate),
		Purpose:      strings.TrimSpace(req.Purpose),
		QRToken:      utils.NewQRToken(),
		Status:       models.VisitorStatusCheckedIn,
		IsWalkIn:     true,
		CheckInAt:    &now,
		CheckedInBy:  a.userRef(),
	}
	if err := s.repo.Create(ctx, v); err != nil {
		return nil, utils.Internal("Failed to register visitor", err)
	}
	s.audit.record(ctx, a, models.AuditCheckIn, models.TargetVisitor, v.ID, map[string]any{"walk_in": true, "unit": unit.HouseNumber})
	s.notifyArrival(ctx, v)
	return v, nil
}

func (s *VisitorService) List(ctx context.Context, a Actor, q dtos.VisitorQuery) (shared_dtos.Page[*models.Visitor], error) {
	page, size, limit, offset := utils.NormalizePage(q.Page, q.PageSize)
	f := repositories.VisitorFilter{
		ProjectID: a.ProjectID,
		UnitID:    q.UnitID,
		Status:    q.Status,
		Search:    strings.TrimSpace(q.Search),
		From:      q.From,
		To:        q.To,
		Limit:     limit,
		Offset:    offset,
	}
	if a.IsResident() {
		unitID, err := residentUnit(ctx, s.users, a)
		if err != nil {
			return shared_dtos.Page[*models.Visitor]{}, err
		}
		f.UnitID = &unitID
	}
	list, total, err := s.repo.List(ctx, f)
	if err != nil {
		return shared_dtos.Page[*models.Visitor]{}, utils.Internal("Failed to list visitors", err)
	}
	return shared_dtos.NewPage(list, total, page, size), nil
}

func (s *VisitorService) Get(ctx context.Context, a Actor, id uuid.UUID) (*models.Visitor, error) {
	v, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, utils.Internal("Failed to load visitor", err)
	}
	if v == nil || v.ProjectID != a.ProjectID {
		return nil, utils.NotFound("Visitor not found")
	}
	if a.IsResident() {
		unitID, err := residentUnit(ctx, s.users, a)
		if err != nil {
			return nil, err
		}
		if unitID != v.UnitID {
			return nil, utils.NotFound("Visitor not found")
		}
	}
	return v, nil
}

// QRCode renders the pass as a PNG while it can still be used.
func (s *VisitorService) QRCode(ctx context.Context, a Actor, id uuid.UUID) ([]byte, error) {
	v, err := s.Get(ctx, a, id)
	if err != nil {
		return nil, err
	}
	if v.Status != models.VisitorStatusExpected {
		return nil, invalidTransition("Visitor pass", v.Status, models.VisitorStatusCheckedIn)
	}
	png, err := utils.QRCodePNG(v.QRToken, constants.VisitorQRPixelSize)
	if err != nil {
		return nil, utils.Internal("Failed to render QR code", err)
	}
	return png, nil
}

// passProblem explains why an expected visitor cannot enter now, or "".
func passProblem(v *models.Visitor, now time.Time) string {
	switch {
	case v.Status != models.VisitorStatusExpected:
		return "Pass is " + strings.ReplaceAll(string(v.Status), "_", " ")
	case v.ValidUntil != nil && now.After(*v.ValidUntil):
		return "Pass has expired"
	}
	return ""
}

// Verify resolves a scanned QR token. With checkIn the visitor is checked in
// when the pass is usable.
func (s *VisitorService) Verify(ctx context.Context, a Actor, token string, checkIn bool) (*dtos.VerifyVisitorResponse, error) {
	v, err := s.repo.GetByQRToken(ctx, a.ProjectID, strings.TrimSpace(token))
	if err != nil {
		return nil, utils.Internal("Failed to look up pass", err)
	}
	if v == nil {
		return nil, utils.NotFound("Unknown visitor pass")
	}

	resp := &dtos.VerifyVisitorResponse{Visitor: v}
	if unit, err := s.units.GetByID(ctx, v.UnitID); err == nil && unit != nil {
		resp.HouseNumber = unit.HouseNumber
	}
	resp.Reason = passProblem(v, s.now())
	resp.Valid = resp.Reason == ""

	if checkIn && resp.Valid {
		checked, err := s.CheckIn(ctx, a, v.ID)
		if err != nil {
			return nil, err
		}
		resp.Visitor = checked
	}
	return resp, nil
}

func (s *VisitorService) CheckIn(ctx context.Context, a Actor, id uuid.UUID) (*models.Visitor, error) {
	if _, err := s.Get(ctx, a, id); err != nil {
		return nil, err
	}
	var updated *models.Visitor
	err := s.repo.UpdateWithRetry(ctx, id, func(v *models.Visitor) error {
		now := s.now()
		if problem := passProblem(v, now); problem != "" {
			return utils.NewAppError(http.StatusConflict, utils.ErrCodeInvalidTransition, problem, utils.ErrInvalidTransition)
		}
		v.Status = models.VisitorStatusCheckedIn
		v.CheckInAt = &now
		v.CheckedInBy = a.userRef()
		updated = v
		return nil
	})
	if err != nil {
		return nil, mapUpdateErr(err, "Visitor")
	}
	s.audit.record(ctx, a, models.AuditCheckIn, models.TargetVisitor, id, nil)
	s.notifyArrival(ctx, updated)
	return updated, nil
}

func (s *VisitorService) CheckOut(ctx context.Context, a Actor, id uuid.UUID) (*models.Visitor, error) {
	if _, err := s.Get(ctx, a, id); err != nil {
		return nil, err
	}
	var updated *models.Visitor
	err := s.repo.UpdateWithRetry(ctx, id, func(v *models.Visitor) error {
		if !v.Status.CanTransitionTo(models.VisitorStatusCheckedOut) {
			return invalidTransition("Visitor", v.Status, models.VisitorStatusCheckedOut)
		}
		now := s.now()
		v.Status = models.VisitorStatusCheckedOut
		v.CheckOutAt = &now
		v.CheckedOutBy = a.userRef()
		updated = v
		return nil
	})
	if err != nil {
		return nil, mapUpdateErr(err, "Visitor")
	}
	s.audit.record(ctx, a, models.AuditCheckOut, models.TargetVisitor, id, nil)
	return updated, nil
}

// Cancel withdraws a pass that has not been used yet.
func (s *VisitorService) Cancel(ctx context.Context, a Actor, id uuid.UUID) (*models.Visitor, error) {
	if _, err := s.Get(ctx, a, id); err != nil {
		return nil, err
	}
	var updated *models.Visitor
	err := s.repo.UpdateWithRetry(ctx, id, func(v *models.Visitor) error {
		if !v.Status.CanTransitionTo(models.VisitorStatusCancelled) {
			return invalidTransition("Visitor", v.Status, models.VisitorStatusCancelled)
		}
		v.Status = models.VisitorStatusCancelled
		updated = v
		return nil
	})
	if err != nil {
		return nil, mapUpdateErr(err, "Visitor")
	}
	s.audit.record(ctx, a, models.AuditUpdate, models.TargetVisitor, id, map[string]string{"status": string(models.VisitorStatusCancelled)})
	return updated, nil
}

// ExpireStale flips passes whose validity ended. Used by the scheduler.
func (s *VisitorService) ExpireStale(ctx context.Context) (int64, error) {
	return s.repo.ExpireStale(ctx, s.now())
}

func (s *VisitorService) notifyArrival(ctx context.Context, v *models.Visitor) {
	msg := v.Name + " has arrived at the gate."
	if v.LicensePlate != nil && *v.LicensePlate != "" {
		msg = v.Name + " (" + *v.LicensePlate + ") has arrived at the gate."
	}
	s.notifications.NotifyUnit(ctx, v.UnitID, Notice{
		ProjectID: v.ProjectID,
		Type:      models.NotificationVisitor,
		Title:     "Visitor arrived",
		Message:   msg,
		Link:      "/visitors/" + v.ID.String(),
		SMS:       "[" + utils.OrganizationName + "] " + msg,
	})
}

func normalizedPhone(p *string) *string {
	if p == nil || strings.TrimSpace(*p) == "" {
		return nil
	}
	n := utils.NormalizeThaiPhone(*p)
	return &n
}

func upperTrim(p *string) *string {
	if p == nil {
		return nil
	}
	s := strings.ToUpper(strings.TrimSpace(*p))
	if s == "" {
		return nil
	}
	return &s
}
