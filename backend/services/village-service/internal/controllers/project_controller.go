package controllers

import (
	"net/http"

	"github.com/imkarn-it/my-village-sub003/backend/services/village-service/internal/dtos"
	"github.com/imkarn-it/my-village-sub003/backend/services/village-service/internal/services"
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-models"
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-utils"
)

type ProjectController struct {
	projectService *services.ProjectService
	featureService *services.FeatureService
}

func NewProjectController(ps *services.ProjectService, fs *services.FeatureService) *ProjectController {
	return &ProjectController{projectService: ps, featureService: fs}
}

// GET /api/v1/admin/projects
func (c *ProjectController) ListHandler(w http.ResponseWriter, r *http.Request) {
	q := newQueryReader(r)
	page := q.page()
	if q.err != nil {
		utils.HandleAppError(w, q.err)
		return
	}
	resp, err := c.projectService.List(r.Context(), page)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// POST /api/v1/admin/projects
func (c *ProjectController) CreateHandler(w http.ResponseWriter, r *http.Request) {
	a, err := actorFrom(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	var req dtos.CreateProjectRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	p, err := c.projectService.Create(r.Context(), a, req)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.Logger.WithField("projectID", p.ID).Infof("Project %s created", p.Code)
	utils.RespondWithJSON(w, http.StatusCreated, p)
}

// GET /api/v1/admin/projects/{id}
func (c *ProjectController) GetHandler(w http.ResponseWriter, r *http.Request) {
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
	p, err := c.projectService.Get(r.Context(), a, id)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, p)
}

// PATCH /api/v1/admin/projects/{id}
func (c *ProjectController) UpdateHandler(w http.ResponseWriter, r *http.Request) {
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
	var req dtos.UpdateProjectRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	p, err := c.projectService.Update(r.Context(), a, id, req)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, p)
}

// DELETE /api/v1/admin/projects/{id}
func (c *ProjectController) DeleteHandler(w http.ResponseWriter, r *http.Request) {
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
	if err := c.projectService.Delete(r.Context(), a, id); err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.ConfirmationResponse{Message: "Project deleted", ID: id.String()})
}

// GET /api/v1/admin/projects/{id}/features
func (c *ProjectController) GetFeaturesHandler(w http.ResponseWriter, r *http.Request) {
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
	if _, err := c.projectService.Get(r.Context(), a, id); err != nil {
		utils.HandleAppError(w, err)
		return
	}
	resp, err := c.featureService.List(r.Context(), id)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// PUT /api/v1/admin/projects/{id}/features. Project admins may only
// change their own project.
func (c *ProjectController) UpdateFeaturesHandler(w http.ResponseWriter, r *http.Request) {
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
	if a.Role != models.RoleSuperAdmin && a.ProjectID != id {
		utils.HandleAppError(w, utils.Forbidden("Cannot change features of another project"))
		return
	}
	if _, err := c.projectService.Get(r.Context(), a, id); err != nil {
		utils.HandleAppError(w, err)
		return
	}
	var req dtos.UpdateFeaturesRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	resp, err := c.featureService.Update(r.Context(), a, id, req)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// GET /api/v1/features returns the caller's own project map.
func (c *ProjectController) MyFeaturesHandler(w http.ResponseWriter, r *http.Request) {
	a, err := projectActor(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	resp, err := c.featureService.List(r.Context(), a.ProjectID)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}
