package controllers

import (
	"net/http"

	"github.com/imkarn-it/my-village-sub003/backend/services/village-service/internal/dtos"
	"github.com/imkarn-it/my-village-sub003/backend/services/village-service/internal/services"
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-models"
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-utils"
)

type UserController struct {
	userService *services.UserService
}

func NewUserController(s *services.UserService) *UserController {
	return &UserController{userService: s}
}

// GET /api/v1/users?status=&role=&unit_id=&q=
func (c *UserController) ListHandler(w http.ResponseWriter, r *http.Request) {
	a, err := actorFrom(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	q := newQueryReader(r)
	query := dtos.UserQuery{
		PageQuery: q.page(),
		ProjectID: q.id("project_id"),
		UnitID:    q.id("unit_id"),
		Role:      models.UserRole(q.str("role")),
		Status:    models.UserStatus(q.str("status")),
		Search:    q.str("q"),
	}
	if q.err != nil {
		utils.HandleAppError(w, q.err)
		return
	}
	resp, err := c.userService.List(r.Context(), a, query)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// GET /api/v1/users/{id}
func (c *UserController) GetHandler(w http.ResponseWriter, r *http.Request) {
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
	u, err := c.userService.Get(r.Context(), a, id)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, u)
}

// POST /api/v1/users
func (c *UserController) CreateHandler(w http.ResponseWriter, r *http.Request) {
	logger := utils.Logger.WithField("handler", "CreateUserHandler")
	a, err := actorFrom(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	var req dtos.CreateUserRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	u, err := c.userService.Create(r.Context(), a, req)
	if err != nil {
		logger.WithError(err).Warn("Service call failed")
		utils.HandleAppError(w, err)
		return
	}
	logger.WithField("userID", u.ID).Infof("Created %s account", u.Role)
	utils.RespondWithJSON(w, http.StatusCreated, u)
}

// PATCH /api/v1/users/{id}
func (c *UserController) UpdateHandler(w http.ResponseWriter, r *http.Request) {
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
	var req dtos.UpdateUserRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	u, err := c.userService.Update(r.Context(), a, id, req)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, u)
}

// POST /api/v1/users/{id}/approve
func (c *UserController) ApproveHandler(w http.ResponseWriter, r *http.Request) {
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
	u, err := c.userService.Approve(r.Context(), a, id)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, u)
}

// POST /api/v1/users/{id}/reject
func (c *UserController) RejectHandler(w http.ResponseWriter, r *http.Request) {
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
	var req dtos.ReasonRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	u, err := c.userService.Reject(r.Context(), a, id, req.Reason)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, u)
}

// DELETE /api/v1/users/{id}
func (c *UserController) DeleteHandler(w http.ResponseWriter, r *http.Request) {
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
	if err := c.userService.Delete(r.Context(), a, id); err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.ConfirmationResponse{Message: "User deleted", ID: id.String()})
}
