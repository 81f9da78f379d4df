package controllers

import (
	"net/http"

	"github.com/imkarn-it/my-village-sub003/backend/services/village-service/internal/dtos"
	"github.com/imkarn-it/my-village-sub003/backend/services/village-service/internal/services"
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-models"
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-utils"
)

type BookingController struct {
	bookingService *services.BookingService
}

func NewBookingController(s *services.BookingService) *BookingController {
	return &BookingController{bookingService: s}
}

// GET /api/v1/bookings?facility_id=&status=&from=&to=
func (c *BookingController) ListHandler(w http.ResponseWriter, r *http.Request) {
	a, err := projectActor(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	q := newQueryReader(r)
	query := dtos.BookingQuery{
		PageQuery:  q.page(),
		DateRange:  q.dateRange(),
		FacilityID: q.id("facility_id"),
		Status:     models.BookingStatus(q.str("status")),
	}
	if q.err != nil {
		utils.HandleAppError(w, q.err)
		return
	}
	resp, err := c.bookingService.List(r.Context(), a, query)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// GET /api/v1/bookings/{id}
func (c *BookingController) GetHandler(w http.ResponseWriter, r *http.Request) {
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
	b, err := c.bookingService.Get(r.Context(), a, id)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, b)
}

// POST /api/v1/bookings
func (c *BookingController) CreateHandler(w http.ResponseWriter, r *http.Request) {
	logger := utils.Logger.WithField("handler", "CreateBookingHandler")
	a, err := projectActor(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	var req dtos.CreateBookingRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	b, err := c.bookingService.Create(r.Context(), a, req)
	if err != nil {
		logger.WithError(err).Info("Booking refused")
		utils.HandleAppError(w, err)
		return
	}
	logger.WithField("bookingID", b.ID).Infof("Booking created as %s", b.Status)
	utils.RespondWithJSON(w, http.StatusCreated, b)
}

// POST /api/v1/bookings/{id}/approve
func (c *BookingController) ApproveHandler(w http.ResponseWriter, r *http.Request) {
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
	var req dtos.ReviewBookingRequest
	if !decodeOptional(w, r, &req) {
		return
	}
	b, err := c.bookingService.Approve(r.Context(), a, id, req.Note)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, b)
}

// POST /api/v1/bookings/{id}/reject
func (c *BookingController) RejectHandler(w http.ResponseWriter, r *http.Request) {
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
	b, err := c.bookingService.Reject(r.Context(), a, id, req.Reason)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, b)
}

// POST /api/v1/bookings/{id}/cancel
func (c *BookingController) CancelHandler(w http.ResponseWriter, r *http.Request) {
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
	var req dtos.CancelBookingRequest
	if !decodeOptional(w, r, &req) {
		return
	}
	b, err := c.bookingService.Cancel(r.Context(), a, id, req.Reason)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, b)
}
