package controllers

import (
	"net/http"

	"github.com/imkarn-it/my-village-sub003/backend/services/village-service/internal/dtos"
	"github.com/imkarn-it/my-village-sub003/backend/services/village-service/internal/services"
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-models"
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-utils"
)

type AuditController struct {
	auditService *services.AuditService
}

func NewAuditController(s *services.AuditService) *AuditController {
	return &AuditController{auditService: s}
}

// GET /api/v1/audit-logs?actor_id=&action=&target_type=&target_id=&from=&to=
func (c *AuditController) ListHandler(w http.ResponseWriter, r *http.Request) {
	a, err := actorFrom(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	q := newQueryReader(r)
	query := dtos.AuditLogQuery{
		PageQuery:  q.page(),
		DateRange:  q.dateRange(),
		ProjectID:  q.id("project_id"),
		ActorID:    q.id("actor_id"),
		TargetID:   q.id("target_id"),
		Action:     models.AuditAction(q.str("action")),
		TargetType: models.AuditTargetType(q.str("target_type")),
	}
	if q.err != nil {
		utils.HandleAppError(w, q.err)
		return
	}
	resp, err := c.auditService.List(r.Context(), a, query)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}
