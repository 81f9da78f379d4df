package controllers

import (
	"net/http"

	"github.com/imkarn-it/my-village-sub003/backend/services/village-service/internal/dtos"
	"github.com/imkarn-it/my-village-sub003/backend/services/village-service/internal/services"
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-utils"
)

type FacilityController struct {
	facilityService *services.FacilityService
}

func NewFacilityController(s *services.FacilityService) *FacilityController {
	return &FacilityController{facilityService: s}
}

// GET /api/v1/facilities
func (c *FacilityController) ListHandler(w http.ResponseWriter, r *http.Request) {
	a, err := projectActor(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	list, err := c.facilityService.List(r.Context(), a)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, list)
}

// GET /api/v1/facilities/{id}
func (c *FacilityController) GetHandler(w http.ResponseWriter, r *http.Request) {
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
	f, err := c.facilityService.Get(r.Context(), a, id)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, f)
}

// POST /api/v1/facilities
func (c *FacilityController) CreateHandler(w http.ResponseWriter, r *http.Request) {
	a, err := projectActor(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	var req dtos.CreateFacilityRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	f, err := c.facilityService.Create(r.Context(), a, req)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, f)
}

// PATCH /api/v1/facilities/{id}
func (c *FacilityController) UpdateHandler(w http.ResponseWriter, r *http.Request) {
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
	var req dtos.UpdateFacilityRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	f, err := c.facilityService.Update(r.Context(), a, id, req)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, f)
}

// DELETE /api/v1/facilities/{id}
func (c *FacilityController) DeleteHandler(w http.ResponseWriter, r *http.Request) {
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
	if err := c.facilityService.Delete(r.Context(), a, id); err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.ConfirmationResponse{Message: "Facility deleted", ID: id.String()})
}

// GET /api/v1/facilities/{id}/availability?date=YYYY-MM-DD
func (c *FacilityController) AvailabilityHandler(w http.ResponseWriter, r *http.Request) {
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
	date := r.URL.Query().Get("date")
	if date == "" {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "Query parameter 'date' is required", nil)
		return
	}
	resp, err := c.facilityService.Availability(r.Context(), a, id, date)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}
