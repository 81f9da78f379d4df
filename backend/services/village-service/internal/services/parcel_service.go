package services

import (
	"context"
	"fmt"
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

type ParcelService struct {
	repo          repositories.ParcelRepository
	units         repositories.UnitRepository
	users         repositories.UserRepository
	notifications *NotificationService
	audit         *AuditService
	now           func() time.Time
}

func NewParcelService(
	repo repositories.ParcelRepository,
	units repositories.UnitRepository,
	users repositories.UserRepository,
	notifications *NotificationService,
	audit *AuditService,
) *ParcelService {
	return &ParcelService{repo: repo, units: units, users: users, notifications: notifications, audit: audit, now: time.Now}
}

// Create logs a parcel received at the gate and tells the unit's residents.
func (s *ParcelService) Create(ctx context.Context, a Actor, req dtos.CreateParcelRequest) (*models.Parcel, error) {
	unit, err := s.units.GetByID(ctx, req.UnitID)
	if err != nil {
		return nil, utils.Internal("Failed to load unit", err)
	}
	if unit == nil || unit.ProjectID != a.ProjectID {
		return nil, utils.NotFound("Unit not found")
	}

	p := &models.Parcel{
		ID:             uuid.New(),
		ProjectID:      a.ProjectID,
		UnitID:         unit.ID,
		RecipientName:  strings.TrimSpace(req.RecipientName),
		Carrier:        strings.TrimSpace(req.Carrier),
		TrackingNumber: req.TrackingNumber,
		Note:           req.Note,
		PhotoURL:       req.PhotoURL,
		Status:         models.ParcelStatusReceived,
		ReceivedBy:     a.UserID,
		ReceivedAt:     s.now(),
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, utils.Internal("Failed to record parcel", err)
	}
	s.audit.record(ctx, a, models.AuditCreate, models.TargetParcel, p.ID, map[string]string{"unit": unit.HouseNumber, "carrier": p.Carrier})

	msg := fmt.Sprintf("A parcel from %s for %s is waiting at the gate.", p.Carrier, p.RecipientName)
	s.notifications.NotifyUnit(ctx, unit.ID, Notice{
		ProjectID: a.ProjectID,
		Type:      models.NotificationParcel,
		Title:     "Parcel arrived",
		Message:   msg,
		Link:      "/parcels/" + p.ID.String(),
		SMS:       "[" + utils.OrganizationName + "] " + msg,
	})
	return p, nil
}

// List restricts residents to their own unit.
func (s *ParcelService) List(ctx context.Context, a Actor, q dtos.ParcelQuery) (shared_dtos.Page[*models.Parcel], error) {
	page, size, limit, offset := utils.NormalizePage(q.Page, q.PageSize)
	f := repositories.ParcelFilter{
		ProjectID: a.ProjectID,
		UnitID:    q.UnitID,
		Status:    q.Status,
		Search:    strings.TrimSpace(q.Search),
		Limit:     limit,
		Offset:    offset,
	}
	if a.IsResident() {
		unitID, err := residentUnit(ctx, s.users, a)
		if err != nil {
			return shared_dtos.Page[*models.Parcel]{}, err
		}
		f.UnitID = &unitID
	}
	list, total, err := s.repo.List(ctx, f)
	if err != nil {
		return shared_dtos.Page[*models.Parcel]{}, utils.Internal("Failed to list parcels", err)
	}
	return shared_dtos.NewPage(list, total, page, size), nil
}

func (s *ParcelService) Get(ctx context.Context, a Actor, id uuid.UUID) (*models.Parcel, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, utils.Internal("Failed to load parcel", err)
	}
	if p == nil || p.ProjectID != a.ProjectID {
		return nil, utils.NotFound("Parcel not found")
	}
	if a.IsResident() {
		unitID, err := residentUnit(ctx, s.users, a)
		if err != nil {
			return nil, err
		}
		if unitID != p.UnitID {
			return nil, utils.NotFound("Parcel not found")
		}
	}
	return p, nil
}

// Pickup hands the parcel over to pickedUpBy.
func (s *ParcelService) Pickup(ctx context.Context, a Actor, id uuid.UUID, pickedUpBy string) (*models.Parcel, error) {
	return s.close(ctx, a, id, models.ParcelStatusPickedUp, strings.TrimSpace(pickedUpBy))
}

// Return marks a parcel sent back to the carrier.
func (s *ParcelService) Return(ctx context.Context, a Actor, id uuid.UUID, reason string) (*models.Parcel, error) {
	return s.close(ctx, a, id, models.ParcelStatusReturned, strings.TrimSpace(reason))
}

func (s *ParcelService) close(ctx context.Context, a Actor, id uuid.UUID, next models.ParcelStatus, detail string) (*models.Parcel, error) {
	if _, err := s.Get(ctx, a, id); err != nil {
		return nil, err
	}

	var updated *models.Parcel
	err := s.repo.UpdateWithRetry(ctx, id, func(p *models.Parcel) error {
		if !p.Status.CanTransitionTo(next) {
			return invalidTransition("Parcel", p.Status, next)
		}
		now := s.now()
		p.Status = next
		p.HandedOverBy = a.userRef()
		p.PickedUpAt = &now
		if next == models.ParcelStatusPickedUp {
			p.PickedUpBy = &detail
		} else if detail != "" {
			p.Note = &detail
		}
		updated = p
		return nil
	})
	if err != nil {
		return nil, mapUpdateErr(err, "Parcel")
	}
	s.audit.record(ctx, a, models.AuditUpdate, models.TargetParcel, id, map[string]string{"status": string(next), "detail": detail})
	return updated, nil
}

// SendReminders nudges units whose parcels have waited longer than
// ParcelReminderAfter. It returns how many parcels were reminded.
func (s *ParcelService) SendReminders(ctx context.Context) (int, error) {
	parcels, err := s.repo.ListUncollected(ctx, s.now().Add(-constants.ParcelReminderAfter))
	if err != nil {
		return 0, err
	}

	type unitKey struct{ project, unit uuid.UUID }
	byUnit := make(map[unitKey]int)
	ids := make([]uuid.UUID, 0, len(parcels))
	for _, p := range parcels {
		byUnit[unitKey{p.ProjectID, p.UnitID}]++
		ids = append(ids, p.ID)
	}
	for k, n := range byUnit {
		s.notifications.NotifyUnit(ctx, k.unit, Notice{
			ProjectID: k.project,
			Type:      models.NotificationParcel,
			Title:     "Parcel reminder",
			Message:   fmt.Sprintf("%d parcel(s) are still waiting for you at the gate.", n),
			Link:      "/parcels?status=received",
		})
	}
	if err := s.repo.MarkReminded(ctx, ids); err != nil {
		return 0, err
	}
	return len(ids), nil
}
