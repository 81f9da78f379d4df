package services

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82"

	"github.com/imkarn-it/my-village-sub003/backend/services/village-service/internal/config"
	"github.com/imkarn-it/my-village-sub003/backend/services/village-service/internal/constants"
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-models"
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-utils"
)

func newTestStripe(e *testEnv, secretKey string) *StripeService {
	cfg := &config.Config{
		OrganizationName:    "My Village",
		AppName:             "village-service",
		StripeSecretKey:     secretKey,
		StripeWebhookSecret: "whsec_test",
	}
	s := NewStripeService(cfg, e.billSvc, e.bills, e.payments, e.users, e.notifications, e.audit)
	s.now = func() time.Time { return e.now }
	return s
}

func succeededIntent(id string, bill *models.Bill, payer uuid.UUID) *stripe.PaymentIntent {
	return &stripe.PaymentIntent{
		ID:     id,
		Amount: bill.AmountSatang,
		Status: stripe.PaymentIntentStatusSucceeded,
		Metadata: map[string]string{
			constants.WebhookMetadataBillIDKey: bill.ID.String(),
			constants.WebhookMetadataUserIDKey: payer.String(),
		},
	}
}

func TestCreatePromptPayRequiresConfiguration(t *testing.T) {
	e := newTestEnv(t)
	bill := e.addBill(models.BillStatusPending, 150000, e.now)

	_, err := newTestStripe(e, "").CreatePromptPay(context.Background(), e.residentActor(), bill.ID)
	requireAppError(t, err, http.StatusServiceUnavailable, utils.ErrCodeExternalServiceFailure)
}

func TestCreatePromptPay(t *testing.T) {
	e := newTestEnv(t)
	bill := e.addBill(models.BillStatusPending, 150000, e.now)
	s := newTestStripe(e, "sk_test_123")

	var sent *stripe.PaymentIntentParams
	s.newIntent = func(p *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
		sent = p
		return &stripe.PaymentIntent{
			ID:           "pi_123",
			Amount:       *p.Amount,
			Currency:     stripe.Currency(*p.Currency),
			Status:       stripe.PaymentIntentStatusRequiresAction,
			ClientSecret: "pi_123_secret",
			NextAction: &stripe.PaymentIntentNextAction{
				PromptPayDisplayQRCode: &stripe.PaymentIntentNextActionPromptPayDisplayQRCode{
					ImageURLPNG: "https://qr.stripe.test/pi_123.png",
				},
			},
		}, nil
	}

	resp, err := s.CreatePromptPay(context.Background(), e.residentActor(), bill.ID)
	require.NoError(t, err)

	require.NotNil(t, sent)
	assert.Equal(t, int64(150000), *sent.Amount)
	assert.Equal(t, constants.StripeCurrencyTHB, *sent.Currency)
	assert.Equal(t, []*string{stripe.String("promptpay")}, sent.PaymentMethodTypes)
	assert.Equal(t, bill.ID.String(), sent.Metadata[constants.WebhookMetadataBillIDKey])
	assert.Equal(t, e.resident.ID.String(), sent.Metadata[constants.WebhookMetadataUserIDKey])
	require.NotNil(t, sent.IdempotencyKey)
	assert.Equal(t, "promptpay-"+bill.ID.String()+"-v0", *sent.IdempotencyKey)

	assert.Equal(t, "pi_123", resp.PaymentIntentID)
	assert.Equal(t, "https://qr.stripe.test/pi_123.png", resp.QRImageURL)
	assert.Equal(t, utils.FormatCurrency(150000), resp.Amount)
	require.NotNil(t, e.bill(bill.ID).StripePaymentIntentID)
	assert.Equal(t, "pi_123", *e.bill(bill.ID).StripePaymentIntentID)
	assert.Equal(t, models.BillStatusPending, e.bill(bill.ID).Status, "bill stays payable until the webhook")
}

func TestCreatePromptPayProviderError(t *testing.T) {
	e := newTestEnv(t)
	bill := e.addBill(models.BillStatusPending, 150000, e.now)
	s := newTestStripe(e, "sk_test_123")
	s.newIntent = func(*stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
		return nil, &stripe.Error{Msg: "PromptPay is unavailable", HTTPStatusCode: http.StatusBadRequest}
	}

	_, err := s.CreatePromptPay(context.Background(), e.residentActor(), bill.ID)
	requireAppError(t, err, http.StatusBadGateway, utils.ErrCodeExternalServiceFailure)
	assert.Nil(t, e.bill(bill.ID).StripePaymentIntentID)
}

func TestPaymentIntentSucceededSettlesBillOnce(t *testing.T) {
	e := newTestEnv(t)
	bill := e.addBill(models.BillStatusOverdue, 150000, e.now)
	s := newTestStripe(e, "sk_test_123")
	pi := succeededIntent("pi_ok", bill, e.resident.ID)

	require.NoError(t, s.HandlePaymentIntentSucceeded(context.Background(), pi))
	assert.Equal(t, models.BillStatusPaid, e.bill(bill.ID).Status)
	require.Len(t, e.payments.byID, 1)
	for _, p := range e.payments.byID {
		assert.Equal(t, models.PaymentStatusVerified, p.Status)
		assert.Equal(t, models.PaymentMethodPromptPay, p.Method)
		assert.Equal(t, e.resident.ID, p.PaidBy)
		require.NotNil(t, p.Reference)
		assert.Equal(t, "pi_ok", *p.Reference)
	}
	assert.Equal(t, []uuid.UUID{e.resident.ID}, e.notifs.recipients("Payment received"))

	// Stripe redelivers events; the second one is a no-op.
	require.NoError(t, s.HandlePaymentIntentSucceeded(context.Background(), pi))
	assert.Len(t, e.payments.byID, 1)
}

func TestPaymentIntentWithoutBillIsIgnored(t *testing.T) {
	e := newTestEnv(t)
	s := newTestStripe(e, "sk_test_123")

	err := s.HandlePaymentIntentSucceeded(context.Background(), &stripe.PaymentIntent{ID: "pi_foreign"})
	require.NoError(t, err)
	assert.Empty(t, e.payments.byID)
}

func TestPaymentIntentFailedNotifiesPayer(t *testing.T) {
	e := newTestEnv(t)
	bill := e.addBill(models.BillStatusPending, 150000, e.now)
	s := newTestStripe(e, "sk_test_123")
	pi := succeededIntent("pi_fail", bill, e.resident.ID)
	pi.Status = stripe.PaymentIntentStatusRequiresPaymentMethod
	pi.LastPaymentError = &stripe.Error{Msg: "QR code expired"}

	require.NoError(t, s.HandlePaymentIntentFailed(context.Background(), pi))
	assert.Equal(t, models.BillStatusPending, e.bill(bill.ID).Status)
	assert.Equal(t, []uuid.UUID{e.resident.ID}, e.notifs.recipients("PromptPay payment failed"))
}

func TestPaymentIntentForUnpayableBillIsRecordedForRefund(t *testing.T) {
	tests := []struct {
		name   string
		status models.BillStatus
	}{
		{"cancelled", models.BillStatusCancelled},
		{"paid at the office", models.BillStatusPaid},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := newTestEnv(t)
			bill := e.addBill(tc.status, 150000, e.now)
			s := newTestStripe(e, "sk_test_123")
			pi := succeededIntent("pi_late", bill, e.resident.ID)

			require.NoError(t, s.HandlePaymentIntentSucceeded(context.Background(), pi))
			assert.Equal(t, tc.status, e.bill(bill.ID).Status)
			require.Len(t, e.payments.byID, 1)
			for _, p := range e.payments.byID {
				assert.Equal(t, models.PaymentStatusRejected, p.Status)
				require.NotNil(t, p.RejectReason)
				assert.Contains(t, *p.RejectReason, "refund required")
				require.NotNil(t, p.Reference)
				assert.Equal(t, "pi_late", *p.Reference)
			}
			assert.Equal(t, []uuid.UUID{e.admin.ID}, e.notifs.recipients("PromptPay payment needs refund"))

			require.NoError(t, s.HandlePaymentIntentSucceeded(context.Background(), pi))
			assert.Len(t, e.payments.byID, 1)
		})
	}
}

func TestPaymentIntentSucceededStoreFailureIsRetryable(t *testing.T) {
	e := newTestEnv(t)
	bill := e.addBill(models.BillStatusPending, 150000, e.now)
	s := newTestStripe(e, "sk_test_123")
	e.payments.createErr = errors.New("connection reset")

	err := s.HandlePaymentIntentSucceeded(context.Background(), succeededIntent("pi_flaky", bill, e.resident.ID))
	require.Error(t, err)
	assert.Equal(t, models.BillStatusPending, e.bill(bill.ID).Status, "bill and payment are written together")
	assert.Empty(t, e.payments.byID)
}
