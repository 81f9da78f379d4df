package controllers

import (
	"net/http"

	"github.com/imkarn-it/my-village-sub003/backend/services/village-service/internal/dtos"
	"github.com/imkarn-it/my-village-sub003/backend/services/village-service/internal/services"
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-models"
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-utils"
)

type MaintenanceController struct {
	maintenanceService *services.MaintenanceService
}

func NewMaintenanceController(s *services.MaintenanceService) *MaintenanceController {
	return &MaintenanceController{maintenanceService: s}
}

// GET /api/v1/maintenance?status=&priority=&category=&assignee_id=&from=&to=
func (c *MaintenanceController) ListHandler(w http.ResponseWriter, r *http.Request) {
	a, err := projectActor(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	q := newQueryReader(r)
	query := dtos.MaintenanceQuery{
		PageQuery:  q.page(),
		DateRange:  q.dateRange(),
		Status:     models.MaintenanceStatus(q.str("status")),
		Priority:   models.MaintenancePriority(q.str("priority")),
		Category:   q.str("category"),
		AssigneeID: q.id("assignee_id"),
	}
	if q.err != nil {
		utils.HandleAppError(w, q.err)
		return
	}
	resp, err := c.maintenanceService.List(r.Context(), a, query)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// GET /api/v1/maintenance/{id}
func (c *MaintenanceController) GetHandler(w http.ResponseWriter, r *http.Request) {
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
	m, err := c.maintenanceService.Get(r.Context(), a, id)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, m)
}

// POST /api/v1/maintenance
func (c *MaintenanceController) CreateHandler(w http.ResponseWriter, r *http.Request) {
	logger := utils.Logger.WithField("handler", "CreateMaintenanceHandler")
	a, err := projectActor(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	var req dtos.CreateMaintenanceRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	m, err := c.maintenanceService.Create(r.Context(), a, req)
	if err != nil {
		logger.WithError(err).Error("Service call failed")
		utils.HandleAppError(w, err)
		return
	}
	logger.WithField("requestID", m.ID).Info("Maintenance request created")
	utils.RespondWithJSON(w, http.StatusCreated, m)
}

// PATCH /api/v1/maintenance/{id}
func (c *MaintenanceController) UpdateHandler(w http.ResponseWriter, r *http.Request) {
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
	var req dtos.UpdateMaintenanceRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	m, err := c.maintenanceService.Update(r.Context(), a, id, req)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, m)
}

// DELETE /api/v1/maintenance/{id}
func (c *MaintenanceController) DeleteHandler(w http.ResponseWriter, r *http.Request) {
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
	if err := c.maintenanceService.Delete(r.Context(), a, id); err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.ConfirmationResponse{Message: "Maintenance request deleted", ID: id.String()})
}
