package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/imkarn-it/my-village-sub003/backend/shared/go-models"
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-utils"
)

// FeatureChecker resolves a per-project toggle.
type FeatureChecker interface {
	IsEnabled(ctx context.Context, projectID uuid.UUID, key models.FeatureKey) (bool, error)
}

// RequireFeature answers 403 feature_disabled when key is off for the
// caller's project. Callers without a project (super admins) pass.
func RequireFeature(checker FeatureChecker, key models.FeatureKey) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			projectID := ProjectIDFromContext(r.Context())
			if projectID == uuid.Nil {
				next.ServeHTTP(w, r)
				return
			}

			enabled, err := checker.IsEnabled(r.Context(), projectID, key)
			if err != nil {
				utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal,
					"Could not evaluate feature", nil, err)
				return
			}
			if !enabled {
				utils.RespondErrorWithCode(w, http.StatusForbidden, utils.ErrCodeFeatureDisabled,
					"Feature '"+string(key)+"' is disabled for this project", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
