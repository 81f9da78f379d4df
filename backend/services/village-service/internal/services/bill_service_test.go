package services

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imkarn-it/my-village-sub003/backend/services/village-service/internal/dtos"
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-models"
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-repositories"
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-utils"
)

func TestSummarizeSplitsOutstandingAndCollected(t *testing.T) {
	resp := summarize([]repositories.BillStatusTotal{
		{Status: models.BillStatusPending, Count: 2, AmountSatang: 300000},
		{Status: models.BillStatusOverdue, Count: 1, AmountSatang: 50000},
		{Status: models.BillStatusPendingVerification, Count: 1, AmountSatang: 10000},
		{Status: models.BillStatusPaid, Count: 3, AmountSatang: 450000},
		{Status: models.BillStatusCancelled, Count: 1, AmountSatang: 999},
	})

	require.Len(t, resp.Totals, 5)
	assert.Equal(t, int64(360000), resp.OutstandingSatang)
	assert.Equal(t, int64(450000), resp.CollectedSatang)
	assert.Equal(t, utils.FormatCurrency(360000), resp.Outstanding)
	assert.Equal(t, utils.FormatCurrency(450000), resp.Collected)
	assert.Equal(t, utils.FormatCurrency(999), resp.Totals[4].Amount)
}

func TestIssueToAllUnits(t *testing.T) {
	e := newTestEnv(t)
	second := &models.Unit{ID: uuid.New(), ProjectID: e.project.ID, HouseNumber: "99/2"}
	foreign := &models.Unit{ID: uuid.New(), ProjectID: uuid.New(), HouseNumber: "1/1"}
	e.units.list = append(e.units.list, second, foreign)

	resp, err := e.billSvc.Issue(context.Background(), e.adminActor(), dtos.CreateBillRequest{
		AllUnits:      true,
		Type:          models.BillTypeCommonFee,
		AmountSatang:  150000,
		BillingPeriod: "2025-04",
		DueDate:       "2025-04-30",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Created)
	require.Len(t, e.bills.byID, 2)
	for _, b := range e.bills.byID {
		assert.Equal(t, e.project.ID, b.ProjectID)
		assert.NotEqual(t, foreign.ID, b.UnitID)
		assert.Equal(t, models.BillStatusPending, b.Status)
		assert.Equal(t, "2025-04-30", b.DueDate.Format("2006-01-02"))
	}

	require.Len(t, e.audits.entries, 1, "bulk issue writes one audit entry")
	assert.Equal(t, e.project.ID, e.audits.entries[0].TargetID)
	assert.Equal(t, []uuid.UUID{e.resident.ID}, e.notifs.recipients("New bill"))
}

func TestIssueRejectsForeignUnitAndBadDate(t *testing.T) {
	e := newTestEnv(t)
	foreign := &models.Unit{ID: uuid.New(), ProjectID: uuid.New()}
	e.units.list = append(e.units.list, foreign)

	_, err := e.billSvc.Issue(context.Background(), e.adminActor(), dtos.CreateBillRequest{
		UnitID: &foreign.ID, Type: models.BillTypeWater, AmountSatang: 100, BillingPeriod: "2025-04", DueDate: "2025-04-30",
	})
	requireAppError(t, err, http.StatusNotFound, utils.ErrCodeNotFound)

	_, err = e.billSvc.Issue(context.Background(), e.adminActor(), dtos.CreateBillRequest{
		UnitID: &e.unit.ID, Type: models.BillTypeWater, AmountSatang: 100, BillingPeriod: "2025-04", DueDate: "30/04/2025",
	})
	requireAppError(t, err, http.StatusBadRequest, utils.ErrCodeValidation)
	assert.Empty(t, e.bills.byID)
}

func TestResidentOnlySeesOwnUnitBills(t *testing.T) {
	e := newTestEnv(t)
	own := e.addBill(models.BillStatusPending, 1000, e.now)
	other := e.addBill(models.BillStatusPending, 2000, e.now)
	e.bills.byID[other.ID].UnitID = uuid.New()

	page, err := e.billSvc.List(context.Background(), e.residentActor(), dtos.BillQuery{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, own.ID, page.Items[0].ID)

	_, err = e.billSvc.Get(context.Background(), e.residentActor(), other.ID)
	requireAppError(t, err, http.StatusNotFound, utils.ErrCodeNotFound)

	b, err := e.billSvc.Get(context.Background(), e.adminActor(), other.ID)
	require.NoError(t, err)
	assert.Equal(t, other.ID, b.ID)
}

func TestCancelBill(t *testing.T) {
	e := newTestEnv(t)
	pending := e.addBill(models.BillStatusPending, 1000, e.now)
	awaiting := e.addBill(models.BillStatusPendingVerification, 1000, e.now)
	paid := e.addBill(models.BillStatusPaid, 1000, e.now)

	b, err := e.billSvc.Cancel(context.Background(), e.adminActor(), pending.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BillStatusCancelled, b.Status)
	assert.Equal(t, models.BillStatusCancelled, e.bill(pending.ID).Status)

	_, err = e.billSvc.Cancel(context.Background(), e.adminActor(), awaiting.ID)
	requireAppError(t, err, http.StatusConflict, utils.ErrCodeInvalidTransition)

	_, err = e.billSvc.Cancel(context.Background(), e.adminActor(), paid.ID)
	requireAppError(t, err, http.StatusConflict, utils.ErrCodeInvalidTransition)
}

func TestMarkOverdue(t *testing.T) {
	e := newTestEnv(t)
	late := e.addBill(models.BillStatusPending, 1000, e.now.Add(-24*time.Hour))
	dueToday := e.addBill(models.BillStatusPending, 1000, e.now.Truncate(24*time.Hour))
	awaiting := e.addBill(models.BillStatusPendingVerification, 1000, e.now.Add(-72*time.Hour))

	n, err := e.billSvc.MarkOverdue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, models.BillStatusOverdue, e.bill(late.ID).Status)
	assert.Equal(t, models.BillStatusPending, e.bill(dueToday.ID).Status)
	assert.Equal(t, models.BillStatusPendingVerification, e.bill(awaiting.ID).Status)

	require.Len(t, e.audits.entries, 1)
	assert.Nil(t, e.audits.entries[0].ActorID)
	assert.Equal(t, []uuid.UUID{e.resident.ID}, e.notifs.recipients("Bill overdue"))
}
