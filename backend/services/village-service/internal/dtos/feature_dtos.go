package dtos

import "github.com/imkarn-it/my-village-sub003/backend/shared/go-models"

// FeatureState is the effective value of one toggle and where it came from.
type FeatureState struct {
	Key        models.FeatureKey `json:"key"`
	Enabled    bool              `json:"enabled"`
	Overridden bool              `json:"overridden"`
}

type FeaturesResponse struct {
	ProjectID string                     `json:"project_id"`
	Features  map[models.FeatureKey]bool `json:"features"`
	Details   []FeatureState             `json:"details,omitempty"`
}

// UpdateFeaturesRequest sets (true/false) or clears (null) project overrides.
type UpdateFeaturesRequest struct {
	Features map[models.FeatureKey]*bool `json:"features" validate:"required,min=1"`
}
