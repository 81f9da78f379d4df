package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/paymentintent"

	"github.com/imkarn-it/my-village-sub003/backend/services/village-service/internal/config"
	"github.com/imkarn-it/my-village-sub003/backend/services/village-service/internal/constants"
	"github.com/imkarn-it/my-village-sub003/backend/services/village-service/internal/dtos"
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-models"
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-repositories"
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-utils"
)

// StripeService collects bill payments through Stripe PromptPay. A
// succeeded PaymentIntent settles the bill without office review.
type StripeService struct {
	cfg           *config.Config
	bills         *BillService
	billRepo      repositories.BillRepository
	payments      repositories.PaymentRepository
	users         repositories.UserRepository
	notifications *NotificationService
	audit         *AuditService

	newIntent func(*stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
	now       func() time.Time
}

func NewStripeService(
	cfg *config.Config,
	bills *BillService,
	billRepo repositories.BillRepository,
	payments repositories.PaymentRepository,
	users repositories.UserRepository,
	notifications *NotificationService,
	audit *AuditService,
) *StripeService {
	stripe.Key = cfg.StripeSecretKey
	return &StripeService{
		cfg:           cfg,
		bills:         bills,
		billRepo:      billRepo,
		payments:      payments,
		users:         users,
		notifications: notifications,
		audit:         audit,
		newIntent:     paymentintent.New,
		now:           time.Now,
	}
}

func (s *StripeService) Enabled() bool { return s.cfg.StripeSecretKey != "" }

func (s *StripeService) WebhookSecret() string { return s.cfg.StripeWebhookSecret }

// CreatePromptPay opens a confirmed PromptPay PaymentIntent for the bill and
// returns the QR code the resident scans in their banking app.
func (s *StripeService) CreatePromptPay(ctx context.Context, a Actor, billID uuid.UUID) (*dtos.PromptPayResponse, error) {
	if !s.Enabled() {
		return nil, utils.NewAppError(http.StatusServiceUnavailable, utils.ErrCodeExternalServiceFailure, "Online payment is not configured", nil)
	}
	bill, err := s.bills.Get(ctx, a, billID)
	if err != nil {
		return nil, err
	}
	if !bill.Status.Payable() {
		return nil, invalidTransition("Bill", bill.Status, models.BillStatusPaid)
	}
	payer, err := s.users.GetByID(ctx, a.UserID)
	if err != nil || payer == nil {
		return nil, utils.Internal("Failed to load payer", err)
	}

	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(bill.AmountSatang),
		Currency:           stripe.String(constants.StripeCurrencyTHB),
		PaymentMethodTypes: stripe.StringSlice([]string{"promptpay"}),
		PaymentMethodData: &stripe.PaymentIntentPaymentMethodDataParams{
			Type: stripe.String("promptpay"),
			BillingDetails: &stripe.PaymentIntentPaymentMethodDataBillingDetailsParams{
				Email: stripe.String(payer.Email),
				Name:  stripe.String(payer.FullName()),
			},
		},
		Confirm:     stripe.Bool(true),
		Description: stripe.String(fmt.Sprintf("%s %s %s", s.cfg.OrganizationName, bill.BillingPeriod, bill.Type)),
	}
	params.Context = ctx
	params.AddMetadata(constants.WebhookMetadataBillIDKey, bill.ID.String())
	params.AddMetadata(constants.WebhookMetadataProjectIDKey, bill.ProjectID.String())
	params.AddMetadata(constants.WebhookMetadataUserIDKey, a.UserID.String())
	params.AddMetadata(constants.WebhookMetadataGeneratedByKey, s.cfg.AppName)
	params.SetIdempotencyKey(fmt.Sprintf("promptpay-%s-v%d", bill.ID, bill.RowVersion))

	pi, err := s.newIntent(params)
	if err != nil {
		msg := err.Error()
		if stripeErr, ok := err.(*stripe.Error); ok {
			msg = stripeErr.Msg
		}
		utils.Logger.WithError(err).Errorf("stripe: PromptPay intent for bill %s failed", bill.ID)
		return nil, utils.NewAppError(http.StatusBadGateway, utils.ErrCodeExternalServiceFailure, "Payment provider error: "+msg, utils.ErrExternalServiceFailure)
	}

	err = s.billRepo.UpdateWithRetry(ctx, bill.ID, func(b *models.Bill) error {
		b.StripePaymentIntentID = &pi.ID
		return nil
	})
	if err != nil {
		utils.Logger.WithError(err).Warnf("stripe: could not store intent %s on bill %s", pi.ID, bill.ID)
	}
	s.audit.record(ctx, a, models.AuditUpdate, models.TargetBill, bill.ID, map[string]string{"payment_intent": pi.ID})

	resp := &dtos.PromptPayResponse{
		PaymentIntentID: pi.ID,
		ClientSecret:    pi.ClientSecret,
		AmountSatang:    pi.Amount,
		Amount:          utils.FormatCurrency(pi.Amount),
		Currency:        string(pi.Currency),
		Status:          string(pi.Status),
	}
	if pi.NextAction != nil && pi.NextAction.PromptPayDisplayQRCode != nil {
		resp.QRImageURL = pi.NextAction.PromptPayDisplayQRCode.ImageURLPNG
	}
	return resp, nil
}

// HandlePaymentIntentSucceeded records a verified PromptPay payment and
// marks the bill paid in one step. Replayed events are ignored. Money that
// arrives for a bill that can no longer be paid is recorded as a rejected
// payment and the office is asked to refund it; the error is not returned
// because Stripe retrying cannot change the outcome.
func (s *StripeService) HandlePaymentIntentSucceeded(ctx context.Context, pi *stripe.PaymentIntent) error {
	bill, err := s.billForIntent(ctx, pi)
	if err != nil || bill == nil {
		return err
	}
	seen, err := s.intentRecorded(ctx, bill.ProjectID, pi.ID)
	if err != nil {
		return err
	}
	if seen {
		utils.Logger.Infof("stripe: intent %s already recorded for bill %s; ignoring", pi.ID, bill.ID)
		return nil
	}

	payer, err := uuid.Parse(pi.Metadata[constants.WebhookMetadataUserIDKey])
	if err != nil {
		utils.Logger.Errorf("stripe: intent %s has no usable %s metadata", pi.ID, constants.WebhookMetadataUserIDKey)
		return nil
	}
	now := s.now().UTC()

	ref := pi.ID
	p := &models.Payment{
		ID:           uuid.New(),
		ProjectID:    bill.ProjectID,
		BillID:       bill.ID,
		PaidBy:       payer,
		AmountSatang: pi.Amount,
		Method:       models.PaymentMethodPromptPay,
		Reference:    &ref,
		Status:       models.PaymentStatusVerified,
		VerifiedAt:   &now,
	}
	updated, err := s.payments.CreateWithBill(ctx, p, func(b *models.Bill) error {
		if !b.Status.CanTransitionTo(models.BillStatusPaid) {
			return invalidTransition("Bill", b.Status, models.BillStatusPaid)
		}
		b.Status = models.BillStatusPaid
		b.PaidAt = &now
		b.StripePaymentIntentID = &pi.ID
		return nil
	})
	switch {
	case errors.Is(err, utils.ErrInvalidTransition):
		return s.recordUnsettled(ctx, bill, p)
	case err != nil:
		return fmt.Errorf("settle bill %s for intent %s: %w", bill.ID, pi.ID, err)
	}

	s.audit.Log(ctx, AuditEntry{
		ProjectID:  &updated.ProjectID,
		ActorID:    &payer,
		Action:     models.AuditCreate,
		TargetType: models.TargetPayment,
		TargetID:   p.ID,
		Details:    map[string]string{"payment_intent": pi.ID, "bill_id": updated.ID.String()},
	})
	s.supersedePending(ctx, updated, pi.ID, now)

	email := PaymentVerifiedEmail(updated)
	s.notifications.NotifyUnit(ctx, updated.UnitID, Notice{
		ProjectID: updated.ProjectID,
		Type:      models.NotificationPayment,
		Title:     "Payment received",
		Message:   "PromptPay payment of " + utils.FormatCurrency(pi.Amount) + " for " + updated.BillingPeriod + " was received.",
		Link:      "/bills/" + updated.ID.String(),
		Email:     &email,
	})
	return nil
}

func (s *StripeService) intentRecorded(ctx context.Context, projectID uuid.UUID, intentID string) (bool, error) {
	_, total, err := s.payments.List(ctx, repositories.PaymentFilter{
		ProjectID: projectID,
		Method:    models.PaymentMethodPromptPay,
		Reference: &intentID,
		Limit:     1,
	})
	if err != nil {
		return false, fmt.Errorf("look up payments for intent %s: %w", intentID, err)
	}
	return total > 0, nil
}

// recordUnsettled keeps a trace of money collected for a bill that is
// already paid or cancelled and tells the office to refund it.
func (s *StripeService) recordUnsettled(ctx context.Context, bill *models.Bill, p *models.Payment) error {
	reason := "Bill was " + string(bill.Status) + " when the PromptPay payment arrived; refund required"
	p.Status = models.PaymentStatusRejected
	p.RejectReason = &reason
	if err := s.payments.Create(ctx, p); err != nil {
		return fmt.Errorf("record unsettled payment for intent %s: %w", *p.Reference, err)
	}
	utils.Logger.Warnf("stripe: intent %s for %s bill %s needs a refund", *p.Reference, bill.Status, bill.ID)

	s.audit.Log(ctx, AuditEntry{
		ProjectID:  &bill.ProjectID,
		ActorID:    &p.PaidBy,
		Action:     models.AuditCreate,
		TargetType: models.TargetPayment,
		TargetID:   p.ID,
		Details:    map[string]any{"payment_intent": *p.Reference, "bill_id": bill.ID, "refund_required": true},
	})
	s.notifications.NotifyProjectRoles(ctx, Notice{
		ProjectID: bill.ProjectID,
		Type:      models.NotificationPayment,
		Title:     "PromptPay payment needs refund",
		Message:   utils.FormatCurrency(p.AmountSatang) + " arrived for a " + string(bill.Status) + " bill (" + bill.BillingPeriod + ").",
		Link:      "/admin/payments/" + p.ID.String(),
	}, models.RoleAdmin)
	return nil
}

// supersedePending rejects slip payments still waiting for review on a bill
// that PromptPay has just settled.
func (s *StripeService) supersedePending(ctx context.Context, bill *models.Bill, intentID string, now time.Time) {
	pending, _, err := s.payments.List(ctx, repositories.PaymentFilter{
		ProjectID: bill.ProjectID,
		BillID:    &bill.ID,
		Status:    models.PaymentStatusPending,
	})
	if err != nil {
		utils.Logger.WithError(err).Errorf("stripe: could not list pending payments for bill %s", bill.ID)
		return
	}
	reason := "Superseded by PromptPay payment " + intentID
	for _, p := range pending {
		err := s.payments.UpdateWithRetry(ctx, p.ID, func(cur *models.Payment) error {
			if cur.Status != models.PaymentStatusPending {
				return nil
			}
			cur.Status = models.PaymentStatusRejected
			cur.VerifiedAt = &now
			cur.RejectReason = &reason
			return nil
		})
		if err != nil {
			utils.Logger.WithError(err).Errorf("stripe: could not supersede payment %s", p.ID)
		}
	}
}

// HandlePaymentIntentFailed tells the payer the PromptPay attempt failed.
// The bill stays payable.
func (s *StripeService) HandlePaymentIntentFailed(ctx context.Context, pi *stripe.PaymentIntent) error {
	bill, err := s.billForIntent(ctx, pi)
	if err != nil || bill == nil {
		return err
	}
	reason := "payment failed"
	if pi.LastPaymentError != nil && pi.LastPaymentError.Msg != "" {
		reason = pi.LastPaymentError.Msg
	}
	utils.Logger.Warnf("stripe: intent %s for bill %s failed: %s", pi.ID, bill.ID, reason)

	payer, err := uuid.Parse(pi.Metadata[constants.WebhookMetadataUserIDKey])
	if err != nil {
		return nil
	}
	s.notifications.NotifyUser(ctx, payer, Notice{
		ProjectID: bill.ProjectID,
		Type:      models.NotificationPayment,
		Title:     "PromptPay payment failed",
		Message:   "Your PromptPay payment for " + bill.BillingPeriod + " did not go through: " + reason,
		Link:      "/bills/" + bill.ID.String(),
	})
	return nil
}

// billForIntent finds the bill by stored intent ID, falling back to the
// bill_id metadata. Intents not created by this service return nil.
func (s *StripeService) billForIntent(ctx context.Context, pi *stripe.PaymentIntent) (*models.Bill, error) {
	bill, err := s.billRepo.GetByPaymentIntent(ctx, pi.ID)
	if err != nil {
		return nil, err
	}
	if bill != nil {
		return bill, nil
	}
	id, err := uuid.Parse(pi.Metadata[constants.WebhookMetadataBillIDKey])
	if err != nil {
		utils.Logger.Debugf("stripe: ignoring intent %s without bill metadata", pi.ID)
		return nil, nil
	}
	bill, err = s.billRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if bill == nil {
		utils.Logger.Warnf("stripe: intent %s references unknown bill %s", pi.ID, id)
	}
	return bill, nil
}
