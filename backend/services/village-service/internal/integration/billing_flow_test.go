//go:build (dev_test || staging_test) && integration

package integration

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imkarn-it/my-village-sub003/backend/services/village-service/internal/constants"
	"github.com/imkarn-it/my-village-sub003/backend/services/village-service/internal/dtos"
	"github.com/imkarn-it/my-village-sub003/backend/services/village-service/internal/routes"
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-models"
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-repositories"
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-utils"
)

func TestIssueSubmitVerifyBill(t *testing.T) {
	th := withT(t)
	adminToken := th.CreateJWT(admin)
	residentToken := th.CreateJWT(resident)
	due := time.Now().AddDate(0, 0, 14)

	var issued dtos.IssueBillsResponse
	th.DoJSON(th.BuildAuthRequest(http.MethodPost, routes.Bills, adminToken, dtos.CreateBillRequest{
		UnitID:        &unit.ID,
		Type:          models.BillTypeWater,
		Description:   "Water " + due.Format("2006-01"),
		AmountSatang:  45050,
		BillingPeriod: due.Format("2006-01"),
		DueDate:       due.Format("2006-01-02"),
	}), http.StatusCreated, &issued)
	require.Equal(t, 1, issued.Created)
	bill := issued.Bills[0]
	assert.Equal(t, models.BillStatusPending, bill.Status)

	var wrongAmount utils.ErrorResponse
	th.DoJSON(th.BuildAuthRequest(http.MethodPost, path(routes.BillPayments, bill.ID), residentToken, dtos.SubmitPaymentRequest{
		AmountSatang: 100, Method: models.PaymentMethodTransfer,
	}), http.StatusBadRequest, &wrongAmount)

	ref := "TRX" + utils.RandomNumericString(10)
	var submitted dtos.PaymentResponse
	th.DoJSON(th.BuildAuthRequest(http.MethodPost, path(routes.BillPayments, bill.ID), residentToken, dtos.SubmitPaymentRequest{
		AmountSatang: 45050, Method: models.PaymentMethodTransfer, Reference: &ref,
	}), http.StatusCreated, &submitted)
	assert.Equal(t, models.BillStatusPendingVerification, submitted.Bill.Status)
	assert.Equal(t, models.PaymentStatusPending, submitted.Payment.Status)

	var verified dtos.PaymentResponse
	th.DoJSON(th.BuildAuthRequest(http.MethodPost, path(routes.PaymentVerify, submitted.Payment.ID), adminToken, nil), http.StatusOK, &verified)
	assert.Equal(t, models.BillStatusPaid, verified.Bill.Status)
	assert.Equal(t, models.PaymentStatusVerified, verified.Payment.Status)

	var conflict utils.ErrorResponse
	th.DoJSON(th.BuildAuthRequest(http.MethodPost, path(routes.PaymentVerify, submitted.Payment.ID), adminToken, nil), http.StatusConflict, &conflict)
}

func TestResidentSeesOnlyOwnBills(t *testing.T) {
	th := withT(t)
	otherUnit := th.CreateTestUnit(project.ID)
	mine := th.CreateTestBill(project.ID, unit.ID, admin.ID, 120000)
	theirs := th.CreateTestBill(project.ID, otherUnit.ID, admin.ID, 120000)
	token := th.CreateJWT(resident)

	var got models.Bill
	th.DoJSON(th.BuildAuthRequest(http.MethodGet, path(routes.BillByID, mine.ID), token, nil), http.StatusOK, &got)
	assert.Equal(t, mine.ID, got.ID)

	var errBody utils.ErrorResponse
	th.DoJSON(th.BuildAuthRequest(http.MethodGet, path(routes.BillByID, theirs.ID), token, nil), http.StatusNotFound, &errBody)
}

func TestStripeWebhookSettlesBill(t *testing.T) {
	th := withT(t)
	if th.StripeWebhookSecret == "" {
		t.Skip("STRIPE_WEBHOOK_SECRET not configured")
	}
	bill := th.CreateTestBill(project.ID, unit.ID, admin.ID, 99000)
	intent := map[string]any{
		"id":       "pi_it_" + utils.RandomString(12),
		"object":   "payment_intent",
		"amount":   bill.AmountSatang,
		"currency": constants.StripeCurrencyTHB,
		"status":   "succeeded",
		"metadata": map[string]string{
			constants.WebhookMetadataBillIDKey: bill.ID.String(),
			constants.WebhookMetadataUserIDKey: resident.ID.String(),
		},
	}
	payload := th.MockStripeWebhookPayload("payment_intent.succeeded", intent)

	th.PostStripeWebhook(routes.StripeWebhook, payload)
	th.WaitForBillStatus(bill.ID, models.BillStatusPaid, 10*time.Second)

	// Redelivery must not record a second payment.
	th.PostStripeWebhook(routes.StripeWebhook, payload)
	payments, _, err := th.PaymentRepo.List(th.Ctx, repositories.PaymentFilter{ProjectID: project.ID, BillID: &bill.ID, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, payments, 1)
}
