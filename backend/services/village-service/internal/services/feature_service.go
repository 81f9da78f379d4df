package services

import (
	"context"
	"fmt"
	"net/http"
	"sort"

	"github.com/google/uuid"
	"github.com/launchdarkly/go-sdk-common/v3/ldcontext"

	"github.com/imkarn-it/my-village-sub003/backend/services/village-service/internal/dtos"
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-models"
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-repositories"
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-utils"
)

const ldProjectKind = ldcontext.Kind("project")

// FlagEvaluator is satisfied by *ld.LDClient.
type FlagEvaluator interface {
	BoolVariation(key string, context ldcontext.Context, defaultVal bool) (bool, error)
}

// FeatureService resolves per-project toggles. A stored override wins;
// otherwise LaunchDarkly is asked with a "project" context, falling back to
// the built-in default.
type FeatureService struct {
	repo  repositories.ProjectFeatureRepository
	flags FlagEvaluator
	audit *AuditService
}

func NewFeatureService(repo repositories.ProjectFeatureRepository, flags FlagEvaluator, audit *AuditService) *FeatureService {
	return &FeatureService{repo: repo, flags: flags, audit: audit}
}

// IsEnabled implements middleware.FeatureChecker.
func (s *FeatureService) IsEnabled(ctx context.Context, projectID uuid.UUID, key models.FeatureKey) (bool, error) {
	if !key.Known() {
		return false, fmt.Errorf("unknown feature %q", key)
	}
	override, err := s.repo.Get(ctx, projectID, key)
	if err != nil {
		return false, err
	}
	if override != nil {
		return override.Enabled, nil
	}
	return s.flagDefault(projectID, key), nil
}

func (s *FeatureService) flagDefault(projectID uuid.UUID, key models.FeatureKey) bool {
	def := models.FeatureDefaults[key]
	if s.flags == nil {
		return def
	}
	val, err := s.flags.BoolVariation(string(key), ldcontext.NewWithKind(ldProjectKind, projectID.String()), def)
	if err != nil {
		utils.Logger.WithError(err).Debugf("features: LaunchDarkly lookup for %s failed, using default", key)
		return def
	}
	return val
}

// List returns every known toggle for the project.
func (s *FeatureService) List(ctx context.Context, projectID uuid.UUID) (*dtos.FeaturesResponse, error) {
	overrides, err := s.repo.ListByProject(ctx, projectID)
	if err != nil {
		return nil, utils.Internal("Failed to load features", err)
	}
	byKey := make(map[models.FeatureKey]bool, len(overrides))
	for _, o := range overrides {
		byKey[o.Key] = o.Enabled
	}

	resp := &dtos.FeaturesResponse{
		ProjectID: projectID.String(),
		Features:  make(map[models.FeatureKey]bool, len(models.FeatureDefaults)),
	}
	for key := range models.FeatureDefaults {
		state := dtos.FeatureState{Key: key}
		if v, ok := byKey[key]; ok {
			state.Enabled, state.Overridden = v, true
		} else {
			state.Enabled = s.flagDefault(projectID, key)
		}
		resp.Features[key] = state.Enabled
		resp.Details = append(resp.Details, state)
	}
	sort.Slice(resp.Details, func(i, j int) bool { return resp.Details[i].Key < resp.Details[j].Key })
	return resp, nil
}

// Update applies overrides; a nil value removes the override so the flag
// default applies again.
func (s *FeatureService) Update(ctx context.Context, a Actor, projectID uuid.UUID, req dtos.UpdateFeaturesRequest) (*dtos.FeaturesResponse, error) {
	for key := range req.Features {
		if !key.Known() {
			return nil, utils.BadRequest(utils.ErrCodeValidation, fmt.Sprintf("Unknown feature %q", key))
		}
	}

	for key, val := range req.Features {
		var err error
		if val == nil {
			err = s.repo.Delete(ctx, projectID, key)
		} else {
			err = s.repo.Upsert(ctx, &models.ProjectFeature{
				ProjectID: projectID,
				Key:       key,
				Enabled:   *val,
				UpdatedBy: a.userRef(),
			})
		}
		if err != nil {
			return nil, utils.NewAppError(http.StatusInternalServerError, utils.ErrCodeInternal, "Failed to update feature "+string(key), err)
		}
	}

	pid := projectID
	s.audit.Log(ctx, AuditEntry{
		ProjectID:  &pid,
		ActorID:    a.userRef(),
		Action:     models.AuditUpdate,
		TargetType: models.TargetFeature,
		TargetID:   projectID,
		Details:    req.Features,
	})
	return s.List(ctx, projectID)
}
