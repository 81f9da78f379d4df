package controllers

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/imkarn-it/my-village-sub003/backend/services/village-service/internal/dtos"
	"github.com/imkarn-it/my-village-sub003/backend/services/village-service/internal/services"
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-models"
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-utils"
)

type VisitorController struct {
	visitorService *services.VisitorService
}

func NewVisitorController(s *services.VisitorService) *VisitorController {
	return &VisitorController{visitorService: s}
}

// GET /api/v1/visitors?unit_id=&status=&q=&from=&to=
func (c *VisitorController) ListHandler(w http.ResponseWriter, r *http.Request) {
	a, err := projectActor(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	q := newQueryReader(r)
	query := dtos.VisitorQuery{
		PageQuery: q.page(),
		DateRange: q.dateRange(),
		UnitID:    q.id("unit_id"),
		Status:    models.VisitorStatus(q.str("status")),
		Search:    q.str("q"),
	}
	if q.err != nil {
		utils.HandleAppError(w, q.err)
		return
	}
	resp, err := c.visitorService.List(r.Context(), a, query)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// GET /api/v1/visitors/{id}
func (c *VisitorController) GetHandler(w http.ResponseWriter, r *http.Request) {
	a, id, ok := c.actorAndID(w, r)
	if !ok {
		return
	}
	v, err := c.visitorService.Get(r.Context(), a, id)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, v)
}

// POST /api/v1/visitors
func (c *VisitorController) CreateHandler(w http.ResponseWriter, r *http.Request) {
	a, err := projectActor(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	var req dtos.CreateVisitorRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	v, err := c.visitorService.Create(r.Context(), a, req)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, v)
}

// POST /api/v1/visitors/walk-in
func (c *VisitorController) WalkInHandler(w http.ResponseWriter, r *http.Request) {
	a, err := projectActor(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	var req dtos.WalkInVisitorRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	v, err := c.visitorService.WalkIn(r.Context(), a, req)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, v)
}

// GET /api/v1/visitors/{id}/qr returns the pass as a PNG image.
func (c *VisitorController) QRCodeHandler(w http.ResponseWriter, r *http.Request) {
	a, id, ok := c.actorAndID(w, r)
	if !ok {
		return
	}
	png, err := c.visitorService.QRCode(r.Context(), a, id)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	w.Header().Set("Cache-Control", "private, no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

// POST /api/v1/visitors/verify
func (c *VisitorController) VerifyHandler(w http.ResponseWriter, r *http.Request) {
	logger := utils.Logger.WithField("handler", "VerifyVisitorHandler")
	a, err := projectActor(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	var req dtos.VerifyVisitorRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	resp, err := c.visitorService.Verify(r.Context(), a, req.QRToken, req.CheckIn)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	if !resp.Valid {
		logger.WithField("visitorID", resp.Visitor.ID).Infof("Pass rejected at gate: %s", resp.Reason)
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// POST /api/v1/visitors/{id}/checkin
func (c *VisitorController) CheckInHandler(w http.ResponseWriter, r *http.Request) {
	a, id, ok := c.actorAndID(w, r)
	if !ok {
		return
	}
	v, err := c.visitorService.CheckIn(r.Context(), a, id)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, v)
}

// POST /api/v1/visitors/{id}/checkout
func (c *VisitorController) CheckOutHandler(w http.ResponseWriter, r *http.Request) {
	a, id, ok := c.actorAndID(w, r)
	if !ok {
		return
	}
	v, err := c.visitorService.CheckOut(r.Context(), a, id)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, v)
}

// POST /api/v1/visitors/{id}/cancel
func (c *VisitorController) CancelHandler(w http.ResponseWriter, r *http.Request) {
	a, id, ok := c.actorAndID(w, r)
	if !ok {
		return
	}
	v, err := c.visitorService.Cancel(r.Context(), a, id)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, v)
}

func (c *VisitorController) actorAndID(w http.ResponseWriter, r *http.Request) (services.Actor, uuid.UUID, bool) {
	a, err := projectActor(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return a, uuid.Nil, false
	}
	id, err := pathID(r, "id")
	if err != nil {
		utils.HandleAppError(w, err)
		return a, uuid.Nil, false
	}
	return a, id, true
}
