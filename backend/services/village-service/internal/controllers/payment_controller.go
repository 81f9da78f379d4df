package controllers

import (
	"net/http"

	"github.com/imkarn-it/my-village-sub003/backend/services/village-service/internal/dtos"
	"github.com/imkarn-it/my-village-sub003/backend/services/village-service/internal/services"
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-models"
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-utils"
)

type PaymentController struct {
	paymentService *services.PaymentService
}

func NewPaymentController(s *services.PaymentService) *PaymentController {
	return &PaymentController{paymentService: s}
}

// GET /api/v1/payments?bill_id=&status=
func (c *PaymentController) ListHandler(w http.ResponseWriter, r *http.Request) {
	a, err := projectActor(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	q := newQueryReader(r)
	query := dtos.PaymentQuery{
		PageQuery: q.page(),
		BillID:    q.id("bill_id"),
		Status:    models.PaymentStatus(q.str("status")),
	}
	if q.err != nil {
		utils.HandleAppError(w, q.err)
		return
	}
	resp, err := c.paymentService.List(r.Context(), a, query)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// GET /api/v1/payments/{id}
func (c *PaymentController) GetHandler(w http.ResponseWriter, r *http.Request) {
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
	p, err := c.paymentService.Get(r.Context(), a, id)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, p)
}

// POST /api/v1/payments/{id}/verify
func (c *PaymentController) VerifyHandler(w http.ResponseWriter, r *http.Request) {
	logger := utils.Logger.WithField("handler", "VerifyPaymentHandler")
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
	resp, err := c.paymentService.Verify(r.Context(), a, id)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	logger.WithField("paymentID", id).WithField("billID", resp.Bill.ID).Info("Payment verified")
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// POST /api/v1/payments/{id}/reject
func (c *PaymentController) RejectHandler(w http.ResponseWriter, r *http.Request) {
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
	var req dtos.ReasonRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	resp, err := c.paymentService.Reject(r.Context(), a, id, req.Reason)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}
