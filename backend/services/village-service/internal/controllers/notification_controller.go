package controllers

import (
	"net/http"

	"github.com/imkarn-it/my-village-sub003/backend/services/village-service/internal/dtos"
	"github.com/imkarn-it/my-village-sub003/backend/services/village-service/internal/services"
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-utils"
)

// NotificationController serves the caller's own notifications only.
type NotificationController struct {
	notificationService *services.NotificationService
}

func NewNotificationController(s *services.NotificationService) *NotificationController {
	return &NotificationController{notificationService: s}
}

// GET /api/v1/notifications?unread=true&page=&page_size=
func (c *NotificationController) ListHandler(w http.ResponseWriter, r *http.Request) {
	a, err := actorFrom(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	q := newQueryReader(r)
	query := dtos.NotificationQuery{PageQuery: q.page(), UnreadOnly: q.boolean("unread")}
	if q.err != nil {
		utils.HandleAppError(w, q.err)
		return
	}
	resp, err := c.notificationService.List(r.Context(), a.UserID, query)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// GET /api/v1/notifications/unread-count
func (c *NotificationController) UnreadCountHandler(w http.ResponseWriter, r *http.Request) {
	a, err := actorFrom(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	n, err := c.notificationService.UnreadCount(r.Context(), a.UserID)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.CountResponse{Count: n})
}

// POST /api/v1/notifications/{id}/read
func (c *NotificationController) MarkReadHandler(w http.ResponseWriter, r *http.Request) {
	a, err := actorFrom(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	if err := c.notificationService.MarkRead(r.Context(), a.UserID, id); err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.ConfirmationResponse{Message: "Marked as read", ID: id.String()})
}

// POST /api/v1/notifications/read-all
func (c *NotificationController) MarkAllReadHandler(w http.ResponseWriter, r *http.Request) {
	a, err := actorFrom(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	n, err := c.notificationService.MarkAllRead(r.Context(), a.UserID)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.MarkAllReadResponse{Updated: n})
}

// DELETE /api/v1/notifications/{id}
func (c *NotificationController) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	a, err := actorFrom(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	if err := c.notificationService.Delete(r.Context(), a.UserID, id); err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.ConfirmationResponse{Message: "Notification deleted", ID: id.String()})
}
