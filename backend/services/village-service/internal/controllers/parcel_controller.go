package controllers

import (
	"net/http"

	"github.com/imkarn-it/my-village-sub003/backend/services/village-service/internal/dtos"
	"github.com/imkarn-it/my-village-sub003/backend/services/village-service/internal/services"
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-models"
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-utils"
)

type ParcelController struct {
	parcelService *services.ParcelService
}

func NewParcelController(s *services.ParcelService) *ParcelController {
	return &ParcelController{parcelService: s}
}

// GET /api/v1/parcels?unit_id=&status=&q=
func (c *ParcelController) ListHandler(w http.ResponseWriter, r *http.Request) {
	a, err := projectActor(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	q := newQueryReader(r)
	query := dtos.ParcelQuery{
		PageQuery: q.page(),
		UnitID:    q.id("unit_id"),
		Status:    models.ParcelStatus(q.str("status")),
		Search:    q.str("q"),
	}
	if q.err != nil {
		utils.HandleAppError(w, q.err)
		return
	}
	resp, err := c.parcelService.List(r.Context(), a, query)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// GET /api/v1/parcels/{id}
func (c *ParcelController) GetHandler(w http.ResponseWriter, r *http.Request) {
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
	p, err := c.parcelService.Get(r.Context(), a, id)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, p)
}

// POST /api/v1/parcels
func (c *ParcelController) CreateHandler(w http.ResponseWriter, r *http.Request) {
	a, err := projectActor(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	var req dtos.CreateParcelRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	p, err := c.parcelService.Create(r.Context(), a, req)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, p)
}

// POST /api/v1/parcels/{id}/pickup
func (c *ParcelController) PickupHandler(w http.ResponseWriter, r *http.Request) {
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
	var req dtos.PickupParcelRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	p, err := c.parcelService.Pickup(r.Context(), a, id, req.PickedUpBy)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, p)
}

// POST /api/v1/parcels/{id}/return
func (c *ParcelController) ReturnHandler(w http.ResponseWriter, r *http.Request) {
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
	p, err := c.parcelService.Return(r.Context(), a, id, req.Reason)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, p)
}
