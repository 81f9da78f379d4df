package controllers

import (
	"net/http"

	"github.com/imkarn-it/my-village-sub003/backend/services/village-service/internal/dtos"
	"github.com/imkarn-it/my-village-sub003/backend/services/village-service/internal/services"
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-models"
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-utils"
)

type PatrolController struct {
	patrolService *services.PatrolService
}

func NewPatrolController(s *services.PatrolService) *PatrolController {
	return &PatrolController{patrolService: s}
}

// GET /api/v1/patrol/checkpoints
func (c *PatrolController) ListCheckpointsHandler(w http.ResponseWriter, r *http.Request) {
	a, err := projectActor(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	list, err := c.patrolService.ListCheckpoints(r.Context(), a)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, list)
}

// GET /api/v1/patrol/checkpoints/{id}
func (c *PatrolController) GetCheckpointHandler(w http.ResponseWriter, r *http.Request) {
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
	cp, err := c.patrolService.GetCheckpoint(r.Context(), a, id)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, cp)
}

// POST /api/v1/patrol/checkpoints
func (c *PatrolController) CreateCheckpointHandler(w http.ResponseWriter, r *http.Request) {
	a, err := projectActor(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	var req dtos.CreateCheckpointRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	cp, err := c.patrolService.CreateCheckpoint(r.Context(), a, req)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, cp)
}

// PATCH /api/v1/patrol/checkpoints/{id}
func (c *PatrolController) UpdateCheckpointHandler(w http.ResponseWriter, r *http.Request) {
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
	var req dtos.UpdateCheckpointRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	cp, err := c.patrolService.UpdateCheckpoint(r.Context(), a, id, req)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, cp)
}

// DELETE /api/v1/patrol/checkpoints/{id}
func (c *PatrolController) DeleteCheckpointHandler(w http.ResponseWriter, r *http.Request) {
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
	if err := c.patrolService.DeleteCheckpoint(r.Context(), a, id); err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.ConfirmationResponse{Message: "Checkpoint deleted", ID: id.String()})
}

// POST /api/v1/patrol/scan
func (c *PatrolController) ScanHandler(w http.ResponseWriter, r *http.Request) {
	a, err := projectActor(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	var req dtos.PatrolScanRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	l, err := c.patrolService.Scan(r.Context(), a, req)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	if l.Status == models.PatrolLogOutOfRange {
		utils.Logger.WithField("guardID", a.UserID).Warnf("Patrol scan %.0fm from checkpoint %s", l.DistanceM, l.CheckpointID)
	}
	utils.RespondWithJSON(w, http.StatusCreated, l)
}

// GET /api/v1/patrol/logs?guard_id=&checkpoint_id=&status=&from=&to=
func (c *PatrolController) ListLogsHandler(w http.ResponseWriter, r *http.Request) {
	a, err := projectActor(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	q := newQueryReader(r)
	query := dtos.PatrolLogQuery{
		PageQuery:    q.page(),
		DateRange:    q.dateRange(),
		GuardID:      q.id("guard_id"),
		CheckpointID: q.id("checkpoint_id"),
		Status:       models.PatrolLogStatus(q.str("status")),
	}
	if q.err != nil {
		utils.HandleAppError(w, q.err)
		return
	}
	resp, err := c.patrolService.ListLogs(r.Context(), a, query)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}
