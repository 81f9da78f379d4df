package controllers

import (
	"net/http"

	"github.com/imkarn-it/my-village-sub003/backend/services/village-service/internal/dtos"
	"github.com/imkarn-it/my-village-sub003/backend/services/village-service/internal/services"
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-models"
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-utils"
)

type BillController struct {
	billService    *services.BillService
	paymentService *services.PaymentService
	stripeService  *services.StripeService
}

func NewBillController(bs *services.BillService, ps *services.PaymentService, ss *services.StripeService) *BillController {
	return &BillController{billService: bs, paymentService: ps, stripeService: ss}
}

// GET /api/v1/bills?unit_id=&status=&type=&period=
func (c *BillController) ListHandler(w http.ResponseWriter, r *http.Request) {
	a, err := projectActor(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	q := newQueryReader(r)
	query := dtos.BillQuery{
		PageQuery:     q.page(),
		UnitID:        q.id("unit_id"),
		Status:        models.BillStatus(q.str("status")),
		Type:          models.BillType(q.str("type")),
		BillingPeriod: q.str("period"),
	}
	if q.err != nil {
		utils.HandleAppError(w, q.err)
		return
	}
	resp, err := c.billService.List(r.Context(), a, query)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// GET /api/v1/bills/summary?unit_id=
func (c *BillController) SummaryHandler(w http.ResponseWriter, r *http.Request) {
	a, err := projectActor(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	q := newQueryReader(r)
	unitID := q.id("unit_id")
	if q.err != nil {
		utils.HandleAppError(w, q.err)
		return
	}
	resp, err := c.billService.Summary(r.Context(), a, unitID)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// GET /api/v1/bills/{id}
func (c *BillController) GetHandler(w http.ResponseWriter, r *http.Request) {
	a, err := projectActor(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	b, err := c.billService.Get(r.Context(), a, id)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, b)
}

// POST /api/v1/bills
func (c *BillController) IssueHandler(w http.ResponseWriter, r *http.Request) {
	logger := utils.Logger.WithField("handler", "IssueBillsHandler")
	a, err := projectActor(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	var req dtos.CreateBillRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	resp, err := c.billService.Issue(r.Context(), a, req)
	if err != nil {
		logger.WithError(err).Error("Service call failed")
		utils.HandleAppError(w, err)
		return
	}
	logger.WithField("projectID", a.ProjectID).Infof("Issued %d %s bills for %s", resp.Created, req.Type, req.BillingPeriod)
	utils.RespondWithJSON(w, http.StatusCreated, resp)
}

// POST /api/v1/bills/{id}/cancel
func (c *BillController) CancelHandler(w http.ResponseWriter, r *http.Request) {
	a, err := projectActor(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	b, err := c.billService.Cancel(r.Context(), a, id)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, b)
}

// POST /api/v1/bills/{id}/payments
func (c *BillController) SubmitPaymentHandler(w http.ResponseWriter, r *http.Request) {
	a, err := projectActor(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	var req dtos.SubmitPaymentRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	resp, err := c.paymentService.Submit(r.Context(), a, id, req)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, resp)
}

// POST /api/v1/bills/{id}/promptpay
func (c *BillController) PromptPayHandler(w http.ResponseWriter, r *http.Request) {
	a, err := projectActor(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	resp, err := c.stripeService.CreatePromptPay(r.Context(), a, id)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, resp)
}
