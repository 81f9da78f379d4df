package services

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imkarn-it/my-village-sub003/backend/services/village-service/internal/constants"
	"github.com/imkarn-it/my-village-sub003/backend/services/village-service/internal/dtos"
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-models"
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-utils"
)

func submitReq(amount int64) dtos.SubmitPaymentRequest {
	return dtos.SubmitPaymentRequest{
		AmountSatang: amount,
		Method:       models.PaymentMethodTransfer,
		Reference:    utils.Ptr("KBANK-0001"),
	}
}

func TestSubmitPayment(t *testing.T) {
	e := newTestEnv(t)
	bill := e.addBill(models.BillStatusOverdue, 150000, e.now.Add(-48*time.Hour))

	resp, err := e.paymentSvc.Submit(context.Background(), e.residentActor(), bill.ID, submitReq(150000))
	require.NoError(t, err)

	assert.Equal(t, models.PaymentStatusPending, resp.Payment.Status)
	assert.Equal(t, e.resident.ID, resp.Payment.PaidBy)
	assert.Equal(t, models.BillStatusPendingVerification, resp.Bill.Status)
	assert.Equal(t, models.BillStatusPendingVerification, e.bill(bill.ID).Status)
	assert.Contains(t, e.payments.byID, resp.Payment.ID)
	assert.Equal(t, []uuid.UUID{e.admin.ID}, e.notifs.recipients("Payment awaiting verification"))
	assert.Empty(t, e.payments.slipChecks, "slip reader is not configured")
}

func TestSubmitPaymentGuards(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	bill := e.addBill(models.BillStatusPending, 150000, e.now.Add(48*time.Hour))
	paid := e.addBill(models.BillStatusPaid, 150000, e.now)

	_, err := e.paymentSvc.Submit(ctx, e.residentActor(), bill.ID, submitReq(100000))
	requireAppError(t, err, http.StatusBadRequest, utils.ErrCodeValidation)

	_, err = e.paymentSvc.Submit(ctx, e.residentActor(), paid.ID, submitReq(150000))
	requireAppError(t, err, http.StatusConflict, utils.ErrCodeInvalidTransition)

	big := submitReq(150000)
	big.SlipImageBase64 = base64.StdEncoding.EncodeToString(make([]byte, constants.SlipImageMaxBytes+1))
	big.SlipImageType = "image/png"
	_, err = e.paymentSvc.Submit(ctx, e.residentActor(), bill.ID, big)
	requireAppError(t, err, http.StatusBadRequest, utils.ErrCodeValidation)

	assert.Equal(t, models.BillStatusPending, e.bill(bill.ID).Status)
	assert.Empty(t, e.payments.byID)
}

func TestSubmitPaymentLeavesBillWhenInsertFails(t *testing.T) {
	e := newTestEnv(t)
	bill := e.addBill(models.BillStatusOverdue, 5000, e.now.Add(-24*time.Hour))
	e.payments.createErr = errors.New("connection reset")

	_, err := e.paymentSvc.Submit(context.Background(), e.residentActor(), bill.ID, submitReq(5000))
	requireAppError(t, err, http.StatusInternalServerError, utils.ErrCodeInternal)
	assert.Equal(t, models.BillStatusOverdue, e.bill(bill.ID).Status)
	assert.Empty(t, e.payments.byID)
}

func TestVerifyPayment(t *testing.T) {
	e := newTestEnv(t)
	bill := e.addBill(models.BillStatusPendingVerification, 150000, e.now)
	p := e.addPayment(bill, models.PaymentStatusPending)

	resp, err := e.paymentSvc.Verify(context.Background(), e.adminActor(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusVerified, resp.Payment.Status)
	require.NotNil(t, resp.Payment.VerifiedBy)
	assert.Equal(t, e.admin.ID, *resp.Payment.VerifiedBy)
	assert.Equal(t, models.BillStatusPaid, e.bill(bill.ID).Status)
	require.NotNil(t, e.bill(bill.ID).PaidAt)
	assert.True(t, e.bill(bill.ID).PaidAt.Equal(e.now))

	require.Len(t, e.audits.entries, 1)
	assert.Equal(t, models.AuditApprove, e.audits.entries[0].Action)
	assert.Equal(t, []uuid.UUID{e.resident.ID}, e.notifs.recipients("Payment confirmed"))

	_, err = e.paymentSvc.Verify(context.Background(), e.adminActor(), p.ID)
	requireAppError(t, err, http.StatusConflict, utils.ErrCodeInvalidTransition)
}

func TestRejectPayment(t *testing.T) {
	tests := []struct {
		name string
		due  time.Duration
		want models.BillStatus
	}{
		{"before due date", 72 * time.Hour, models.BillStatusPending},
		{"past due date", -72 * time.Hour, models.BillStatusOverdue},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := newTestEnv(t)
			bill := e.addBill(models.BillStatusPendingVerification, 150000, e.now.Add(tc.due))
			p := e.addPayment(bill, models.PaymentStatusPending)

			resp, err := e.paymentSvc.Reject(context.Background(), e.adminActor(), p.ID, "  slip unreadable ")
			require.NoError(t, err)
			assert.Equal(t, models.PaymentStatusRejected, resp.Payment.Status)
			require.NotNil(t, resp.Payment.RejectReason)
			assert.Equal(t, "slip unreadable", *resp.Payment.RejectReason)
			assert.Equal(t, tc.want, e.bill(bill.ID).Status)
			assert.Equal(t, []uuid.UUID{e.resident.ID}, e.notifs.recipients("Payment rejected"))
		})
	}
}

func TestResidentCannotSeeOthersPayments(t *testing.T) {
	e := newTestEnv(t)
	bill := e.addBill(models.BillStatusPendingVerification, 1000, e.now)
	p := e.addPayment(bill, models.PaymentStatusPending)
	e.payments.byID[p.ID].PaidBy = uuid.New()

	_, err := e.paymentSvc.Get(context.Background(), e.residentActor(), p.ID)
	requireAppError(t, err, http.StatusNotFound, utils.ErrCodeNotFound)

	page, err := e.paymentSvc.List(context.Background(), e.residentActor(), dtos.PaymentQuery{})
	require.NoError(t, err)
	assert.Empty(t, page.Items)

	got, err := e.paymentSvc.Get(context.Background(), e.adminActor(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
}

func TestVerifyLeavesPaymentPendingWhenBillIsNotAwaitingReview(t *testing.T) {
	e := newTestEnv(t)
	bill := e.addBill(models.BillStatusPaid, 150000, e.now)
	p := e.addPayment(bill, models.PaymentStatusPending)

	_, err := e.paymentSvc.Verify(context.Background(), e.adminActor(), p.ID)
	requireAppError(t, err, http.StatusConflict, utils.ErrCodeInvalidTransition)
	assert.Equal(t, models.PaymentStatusPending, e.payments.byID[p.ID].Status)
	assert.Nil(t, e.payments.byID[p.ID].VerifiedBy)

	_, err = e.paymentSvc.Reject(context.Background(), e.adminActor(), p.ID, "duplicate")
	requireAppError(t, err, http.StatusConflict, utils.ErrCodeInvalidTransition)
	assert.Equal(t, models.PaymentStatusPending, e.payments.byID[p.ID].Status)
	assert.Equal(t, models.BillStatusPaid, e.bill(bill.ID).Status)
	assert.Empty(t, e.audits.entries)
}

func TestSlipVerifiedAfterPromptPaySettlesBillKeepsOnePayment(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	bill := e.addBill(models.BillStatusPending, 150000, e.now.Add(72*time.Hour))
	s := newTestStripe(e, "sk_test_123")

	slip, err := e.paymentSvc.Submit(ctx, e.residentActor(), bill.ID, submitReq(150000))
	require.NoError(t, err)
	require.NoError(t, s.HandlePaymentIntentSucceeded(ctx, succeededIntent("pi_race", bill, e.resident.ID)))
	assert.Equal(t, models.BillStatusPaid, e.bill(bill.ID).Status)

	_, err = e.paymentSvc.Verify(ctx, e.adminActor(), slip.Payment.ID)
	requireAppError(t, err, http.StatusConflict, utils.ErrCodeInvalidTransition)

	verified := e.payments.withStatus(bill.ID, models.PaymentStatusVerified)
	require.Len(t, verified, 1)
	assert.Equal(t, models.PaymentMethodPromptPay, verified[0].Method)

	superseded := e.payments.byID[slip.Payment.ID]
	assert.Equal(t, models.PaymentStatusRejected, superseded.Status)
	require.NotNil(t, superseded.RejectReason)
	assert.Contains(t, *superseded.RejectReason, "pi_race")
}
