package controllers

import (
	"net/http"

	"github.com/imkarn-it/my-village-sub003/backend/services/village-service/internal/dtos"
	"github.com/imkarn-it/my-village-sub003/backend/services/village-service/internal/services"
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-utils"
)

type AttendanceController struct {
	attendanceService *services.AttendanceService
}

func NewAttendanceController(s *services.AttendanceService) *AttendanceController {
	return &AttendanceController{attendanceService: s}
}

// POST /api/v1/attendance/check-in
func (c *AttendanceController) CheckInHandler(w http.ResponseWriter, r *http.Request) {
	logger := utils.Logger.WithField("handler", "AttendanceCheckInHandler")
	a, err := projectActor(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	var req dtos.LocationRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	att, err := c.attendanceService.CheckIn(r.Context(), a, req)
	if err != nil {
		logger.WithError(err).WithField("userID", a.UserID).Warn("Check-in refused")
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, att)
}

// POST /api/v1/attendance/check-out
func (c *AttendanceController) CheckOutHandler(w http.ResponseWriter, r *http.Request) {
	a, err := projectActor(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	var req dtos.LocationRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	att, err := c.attendanceService.CheckOut(r.Context(), a, req)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, att)
}

// GET /api/v1/attendance/current answers 204 when not checked in.
func (c *AttendanceController) CurrentHandler(w http.ResponseWriter, r *http.Request) {
	a, err := projectActor(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	att, err := c.attendanceService.Current(r.Context(), a)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	if att == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, att)
}

// GET /api/v1/attendance?user_id=&from=&to=
func (c *AttendanceController) ListHandler(w http.ResponseWriter, r *http.Request) {
	a, err := projectActor(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	q := newQueryReader(r)
	query := dtos.AttendanceQuery{PageQuery: q.page(), DateRange: q.dateRange(), UserID: q.id("user_id")}
	if q.err != nil {
		utils.HandleAppError(w, q.err)
		return
	}
	resp, err := c.attendanceService.List(r.Context(), a, query)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}
