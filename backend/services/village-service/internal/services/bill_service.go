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

type BillService struct {
	repo          repositories.BillRepository
	units         repositories.UnitRepository
	users         repositories.UserRepository
	projects      repositories.ProjectRepository
	notifications *NotificationService
	audit         *AuditService
	now           func() time.Time
}

func NewBillService(
	repo repositories.BillRepository,
	units repositories.UnitRepository,
	users repositories.UserRepository,
	projects repositories.ProjectRepository,
	notifications *NotificationService,
	audit *AuditService,
) *BillService {
	return &BillService{
		repo:          repo,
		units:         units,
		users:         users,
		projects:      projects,
		notifications: notifications,
		audit:         audit,
		now:           time.Now,
	}
}

// Issue creates one bill for req.UnitID or one per unit of the project and
// notifies each unit's residents.
func (s *BillService) Issue(ctx context.Context, a Actor, req dtos.CreateBillRequest) (*dtos.IssueBillsResponse, error) {
	due, err := time.Parse("2006-01-02", req.DueDate)
	if err != nil {
		return nil, utils.BadRequest(utils.ErrCodeValidation, "due_date must be YYYY-MM-DD")
	}
	if req.AmountSatang <= 0 {
		return nil, utils.BadRequest(utils.ErrCodeValidation, utils.ErrInvalidAmount.Error())
	}

	var units []*models.Unit
	if req.AllUnits {
		units, _, err = s.units.List(ctx, repositories.UnitFilter{ProjectID: a.ProjectID})
		if err != nil {
			return nil, utils.Internal("Failed to list units", err)
		}
		if len(units) == 0 {
			return nil, utils.BadRequest(utils.ErrCodeValidation, "Project has no units")
		}
	} else {
		unit, err := s.units.GetByID(ctx, *req.UnitID)
		if err != nil {
			return nil, utils.Internal("Failed to load unit", err)
		}
		if unit == nil || unit.ProjectID != a.ProjectID {
			return nil, utils.NotFound("Unit not found")
		}
		units = []*models.Unit{unit}
	}

	bills := make([]*models.Bill, 0, len(units))
	for _, u := range units {
		bills = append(bills, &models.Bill{
			ID:            uuid.New(),
			ProjectID:     a.ProjectID,
			UnitID:        u.ID,
			Type:          req.Type,
			Description:   strings.TrimSpace(req.Description),
			AmountSatang:  req.AmountSatang,
			BillingPeriod: req.BillingPeriod,
			DueDate:       due,
			Status:        models.BillStatusPending,
			IssuedBy:      a.UserID,
		})
	}
	if err := s.repo.CreateMany(ctx, bills); err != nil {
		return nil, utils.Internal("Failed to issue bills", err)
	}

	target := bills[0].ID
	if req.AllUnits {
		target = a.ProjectID
	}
	s.audit.record(ctx, a, models.AuditCreate, models.TargetBill, target, map[string]any{
		"count":          len(bills),
		"type":           req.Type,
		"amount_satang":  req.AmountSatang,
		"billing_period": req.BillingPeriod,
		"all_units":      req.AllUnits,
	})

	for i, b := range bills {
		email := BillIssuedEmail(b, units[i].HouseNumber)
		s.notifications.NotifyUnit(ctx, b.UnitID, Notice{
			ProjectID: b.ProjectID,
			Type:      models.NotificationBill,
			Title:     "New bill",
			Message:   strings.ReplaceAll(string(b.Type), "_", " ") + " " + b.BillingPeriod + ": " + utils.FormatCurrency(b.AmountSatang),
			Link:      "/bills/" + b.ID.String(),
			Email:     &email,
		})
	}
	return &dtos.IssueBillsResponse{Created: len(bills), Bills: bills}, nil
}

// List restricts residents to their own unit.
func (s *BillService) List(ctx context.Context, a Actor, q dtos.BillQuery) (shared_dtos.Page[*models.Bill], error) {
	page, size, limit, offset := utils.NormalizePage(q.Page, q.PageSize)
	f := repositories.BillFilter{
		ProjectID:     a.ProjectID,
		UnitID:        q.UnitID,
		Status:        q.Status,
		Type:          q.Type,
		BillingPeriod: q.BillingPeriod,
		Limit:         limit,
		Offset:        offset,
	}
	if a.IsResident() {
		unitID, err := residentUnit(ctx, s.users, a)
		if err != nil {
			return shared_dtos.Page[*models.Bill]{}, err
		}
		f.UnitID = &unitID
	}
	list, total, err := s.repo.List(ctx, f)
	if err != nil {
		return shared_dtos.Page[*models.Bill]{}, utils.Internal("Failed to list bills", err)
	}
	return shared_dtos.NewPage(list, total, page, size), nil
}

func (s *BillService) Get(ctx context.Context, a Actor, id uuid.UUID) (*models.Bill, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, utils.Internal("Failed to load bill", err)
	}
	if b == nil || b.ProjectID != a.ProjectID {
		return nil, utils.NotFound("Bill not found")
	}
	if a.IsResident() {
		unitID, err := residentUnit(ctx, s.users, a)
		if err != nil {
			return nil, err
		}
		if unitID != b.UnitID {
			return nil, utils.NotFound("Bill not found")
		}
	}
	return b, nil
}

// Summary totals bills per status. Residents see their own unit only.
func (s *BillService) Summary(ctx context.Context, a Actor, unitID *uuid.UUID) (*dtos.BillSummaryResponse, error) {
	if a.IsResident() {
		id, err := residentUnit(ctx, s.users, a)
		if err != nil {
			return nil, err
		}
		unitID = &id
	}
	rows, err := s.repo.Summary(ctx, a.ProjectID, unitID)
	if err != nil {
		return nil, utils.Internal("Failed to summarize bills", err)
	}
	return summarize(rows), nil
}

func summarize(rows []repositories.BillStatusTotal) *dtos.BillSummaryResponse {
	resp := &dtos.BillSummaryResponse{Totals: make([]dtos.BillStatusSummary, 0, len(rows))}
	for _, r := range rows {
		resp.Totals = append(resp.Totals, dtos.BillStatusSummary{
			Status:       r.Status,
			Count:        r.Count,
			AmountSatang: r.AmountSatang,
			Amount:       utils.FormatCurrency(r.AmountSatang),
		})
		switch r.Status {
		case models.BillStatusPending, models.BillStatusOverdue, models.BillStatusPendingVerification:
			resp.OutstandingSatang += r.AmountSatang
		case models.BillStatusPaid:
			resp.CollectedSatang += r.AmountSatang
		}
	}
	resp.Outstanding = utils.FormatCurrency(resp.OutstandingSatang)
	resp.Collected = utils.FormatCurrency(resp.CollectedSatang)
	return resp
}

// Cancel voids an unpaid bill.
func (s *BillService) Cancel(ctx context.Context, a Actor, id uuid.UUID) (*models.Bill, error) {
	if _, err := s.Get(ctx, a, id); err != nil {
		return nil, err
	}
	var updated *models.Bill
	err := s.repo.UpdateWithRetry(ctx, id, func(b *models.Bill) error {
		if b.Status == models.BillStatusPendingVerification || !b.Status.CanTransitionTo(models.BillStatusCancelled) {
			return invalidTransition("Bill", b.Status, models.BillStatusCancelled)
		}
		b.Status = models.BillStatusCancelled
		updated = b
		return nil
	})
	if err != nil {
		return nil, mapUpdateErr(err, "Bill")
	}
	s.audit.record(ctx, a, models.AuditUpdate, models.TargetBill, id, map[string]string{"status": string(models.BillStatusCancelled)})
	return updated, nil
}

// MarkOverdue flags pending bills whose due date has passed and notifies
// their units. Used by the scheduler.
func (s *BillService) MarkOverdue(ctx context.Context) (int, error) {
	today := s.now().UTC().Truncate(24 * time.Hour)
	bills, err := s.repo.MarkOverdue(ctx, today)
	if err != nil {
		return 0, err
	}
	for _, b := range bills {
		s.audit.Log(ctx, AuditEntry{
			ProjectID:  &b.ProjectID,
			Action:     models.AuditUpdate,
			TargetType: models.TargetBill,
			TargetID:   b.ID,
			Details:    map[string]string{"status": string(models.BillStatusOverdue), "by": "scheduler"},
		})
		s.notifications.NotifyUnit(ctx, b.UnitID, Notice{
			ProjectID: b.ProjectID,
			Type:      models.NotificationBill,
			Title:     "Bill overdue",
			Message:   b.BillingPeriod + " " + strings.ReplaceAll(string(b.Type), "_", " ") + " of " + utils.FormatCurrency(b.AmountSatang) + " is overdue.",
			Link:      "/bills/" + b.ID.String(),
		})
	}
	return len(bills), nil
}
