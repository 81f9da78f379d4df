package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
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

const slipCheckTimeout = 45 * time.Second

type PaymentService struct {
	repo          repositories.PaymentRepository
	bills         *BillService
	features      *FeatureService
	slips         *SlipCheckService
	notifications *NotificationService
	audit         *AuditService
	now           func() time.Time
}

func NewPaymentService(
	repo repositories.PaymentRepository,
	bills *BillService,
	features *FeatureService,
	slips *SlipCheckService,
	notifications *NotificationService,
	audit *AuditService,
) *PaymentService {
	return &PaymentService{
		repo:          repo,
		bills:         bills,
		features:      features,
		slips:         slips,
		notifications: notifications,
		audit:         audit,
		now:           time.Now,
	}
}

// Submit records a resident's payment for a bill and moves the bill to
// pending_verification in the same transaction. The office confirms it with
// Verify or Reject.
func (s *PaymentService) Submit(ctx context.Context, a Actor, billID uuid.UUID, req dtos.SubmitPaymentRequest) (*dtos.PaymentResponse, error) {
	bill, err := s.bills.Get(ctx, a, billID)
	if err != nil {
		return nil, err
	}
	if !bill.Status.Payable() {
		return nil, invalidTransition("Bill", bill.Status, models.BillStatusPendingVerification)
	}
	if req.AmountSatang != bill.AmountSatang {
		return nil, utils.BadRequest(utils.ErrCodeValidation, "Amount must equal the bill amount of "+utils.FormatCurrency(bill.AmountSatang))
	}

	var slip []byte
	if req.SlipImageBase64 != "" {
		slip, err = base64.StdEncoding.DecodeString(req.SlipImageBase64)
		if err != nil {
			return nil, utils.BadRequest(utils.ErrCodeValidation, "slip_image_base64 is not valid base64")
		}
		if len(slip) > constants.SlipImageMaxBytes {
			return nil, utils.BadRequest(utils.ErrCodeValidation, "Slip image is too large")
		}
	}

	p := &models.Payment{
		ID:           uuid.New(),
		ProjectID:    bill.ProjectID,
		BillID:       bill.ID,
		PaidBy:       a.UserID,
		AmountSatang: req.AmountSatang,
		Method:       req.Method,
		SlipURL:      req.SlipURL,
		Reference:    req.Reference,
		Status:       models.PaymentStatusPending,
	}
	updatedBill, err := s.repo.CreateWithBill(ctx, p, func(b *models.Bill) error {
		if !b.Status.Payable() {
			return invalidTransition("Bill", b.Status, models.BillStatusPendingVerification)
		}
		b.Status = models.BillStatusPendingVerification
		return nil
	})
	if err != nil {
		return nil, mapUpdateErr(err, "Bill")
	}
	s.audit.record(ctx, a, models.AuditCreate, models.TargetPayment, p.ID, map[string]any{
		"bill_id":       bill.ID,
		"amount_satang": p.AmountSatang,
		"method":        p.Method,
	})

	if len(slip) > 0 {
		s.checkSlip(ctx, p, slip, req.SlipImageType, bill.AmountSatang)
	}

	s.notifications.NotifyProjectRoles(ctx, Notice{
		ProjectID: bill.ProjectID,
		Type:      models.NotificationPayment,
		Title:     "Payment awaiting verification",
		Message:   utils.FormatCurrency(p.AmountSatang) + " for " + bill.BillingPeriod + " " + strings.ReplaceAll(string(bill.Type), "_", " "),
		Link:      "/admin/payments/" + p.ID.String(),
	}, models.RoleAdmin, models.RoleStaff)

	return &dtos.PaymentResponse{Payment: p, Bill: updatedBill}, nil
}

// checkSlip stores the advisory slip reading. Failures only get logged.
func (s *PaymentService) checkSlip(ctx context.Context, p *models.Payment, img []byte, mimeType string, expectedSatang int64) {
	if !s.slips.Enabled() {
		return
	}
	on, err := s.features.IsEnabled(ctx, p.ProjectID, models.FeatureSlipAICheck)
	if err != nil || !on {
		return
	}

	cctx, cancel := context.WithTimeout(ctx, slipCheckTimeout)
	defer cancel()
	result, err := s.slips.Check(cctx, img, mimeType, expectedSatang)
	if err != nil {
		utils.Logger.WithError(err).Warnf("payments: slip check failed for payment %s", p.ID)
		return
	}
	raw, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := s.repo.SetSlipCheck(ctx, p.ID, raw); err != nil {
		utils.Logger.WithError(err).Errorf("payments: failed to store slip check for payment %s", p.ID)
		return
	}
	msg := json.RawMessage(raw)
	p.SlipCheck = &msg
}

// List restricts residents to payments they made.
func (s *PaymentService) List(ctx context.Context, a Actor, q dtos.PaymentQuery) (shared_dtos.Page[*models.Payment], error) {
	page, size, limit, offset := utils.NormalizePage(q.Page, q.PageSize)
	f := repositories.PaymentFilter{
		ProjectID: a.ProjectID,
		BillID:    q.BillID,
		Status:    q.Status,
		Limit:     limit,
		Offset:    offset,
	}
	if a.IsResident() {
		f.PaidBy = a.userRef()
	}
	list, total, err := s.repo.List(ctx, f)
	if err != nil {
		return shared_dtos.Page[*models.Payment]{}, utils.Internal("Failed to list payments", err)
	}
	return shared_dtos.NewPage(list, total, page, size), nil
}

func (s *PaymentService) Get(ctx context.Context, a Actor, id uuid.UUID) (*models.Payment, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, utils.Internal("Failed to load payment", err)
	}
	if p == nil || p.ProjectID != a.ProjectID || (a.IsResident() && p.PaidBy != a.UserID) {
		return nil, utils.NotFound("Payment not found")
	}
	return p, nil
}

// Verify confirms a pending payment and marks its bill paid. Both rows
// change together or not at all.
func (s *PaymentService) Verify(ctx context.Context, a Actor, id uuid.UUID) (*dtos.PaymentResponse, error) {
	if _, err := s.Get(ctx, a, id); err != nil {
		return nil, err
	}
	now := s.now().UTC()

	payment, bill, err := s.repo.UpdateWithBill(ctx, id, func(p *models.Payment, b *models.Bill) error {
		if p.Status != models.PaymentStatusPending {
			return invalidTransition("Payment", p.Status, models.PaymentStatusVerified)
		}
		if b.Status != models.BillStatusPendingVerification {
			return invalidTransition("Bill", b.Status, models.BillStatusPaid)
		}
		p.Status = models.PaymentStatusVerified
		p.VerifiedBy = a.userRef()
		p.VerifiedAt = &now
		b.Status = models.BillStatusPaid
		b.PaidAt = &now
		return nil
	})
	if err != nil {
		return nil, mapUpdateErr(err, "Payment")
	}

	s.audit.record(ctx, a, models.AuditApprove, models.TargetPayment, id, map[string]any{"bill_id": bill.ID})
	email := PaymentVerifiedEmail(bill)
	s.notifications.NotifyUser(ctx, payment.PaidBy, Notice{
		ProjectID: bill.ProjectID,
		Type:      models.NotificationPayment,
		Title:     "Payment confirmed",
		Message:   "Your payment of " + utils.FormatCurrency(payment.AmountSatang) + " for " + bill.BillingPeriod + " was confirmed.",
		Link:      "/bills/" + bill.ID.String(),
		Email:     &email,
	})
	return &dtos.PaymentResponse{Payment: payment, Bill: bill}, nil
}

// Reject declines a pending payment. The bill becomes payable again, as
// overdue when its due date has already passed.
func (s *PaymentService) Reject(ctx context.Context, a Actor, id uuid.UUID, reason string) (*dtos.PaymentResponse, error) {
	if _, err := s.Get(ctx, a, id); err != nil {
		return nil, err
	}
	now := s.now().UTC()
	reason = strings.TrimSpace(reason)

	payment, bill, err := s.repo.UpdateWithBill(ctx, id, func(p *models.Payment, b *models.Bill) error {
		if p.Status != models.PaymentStatusPending {
			return invalidTransition("Payment", p.Status, models.PaymentStatusRejected)
		}
		next := models.BillStatusPending
		if b.DueDate.Before(now.Truncate(24 * time.Hour)) {
			next = models.BillStatusOverdue
		}
		if b.Status != models.BillStatusPendingVerification {
			return invalidTransition("Bill", b.Status, next)
		}
		p.Status = models.PaymentStatusRejected
		p.VerifiedBy = a.userRef()
		p.VerifiedAt = &now
		p.RejectReason = &reason
		b.Status = next
		return nil
	})
	if err != nil {
		return nil, mapUpdateErr(err, "Payment")
	}

	s.audit.record(ctx, a, models.AuditReject, models.TargetPayment, id, map[string]any{"bill_id": bill.ID, "reason": reason})
	email := PaymentRejectedEmail(bill, reason)
	s.notifications.NotifyUser(ctx, payment.PaidBy, Notice{
		ProjectID: bill.ProjectID,
		Type:      models.NotificationPayment,
		Title:     "Payment rejected",
		Message:   "Your payment for " + bill.BillingPeriod + " was rejected: " + reason,
		Link:      "/bills/" + bill.ID.String(),
		Email:     &email,
	})
	return &dtos.PaymentResponse{Payment: payment, Bill: bill}, nil
}
