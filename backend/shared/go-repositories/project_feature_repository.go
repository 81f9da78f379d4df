package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/imkarn-it/my-village-sub003/backend/shared/go-models"
)

type ProjectFeatureRepository interface {
	Get(ctx context.Context, projectID uuid.UUID, key models.FeatureKey) (*models.ProjectFeature, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]*models.ProjectFeature, error)
	Upsert(ctx context.Context, f *models.ProjectFeature) error
	Delete(ctx context.Context, projectID uuid.UUID, key models.FeatureKey) error
}

type projectFeatureRepo struct {
	db DB
}

func NewProjectFeatureRepository(db DB) ProjectFeatureRepository {
	return &projectFeatureRepo{db: db}
}

const selectProjectFeature = `SELECT project_id, key, enabled, updated_by, updated_at FROM project_features`

func (r *projectFeatureRepo) Get(ctx context.Context, projectID uuid.UUID, key models.FeatureKey) (*models.ProjectFeature, error) {
	row := r.db.QueryRow(ctx, selectProjectFeature+" WHERE project_id=$1 AND key=$2", projectID, key)
	f, err := scanProjectFeature(row)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return f, err
}

func (r *projectFeatureRepo) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*models.ProjectFeature, error) {
	rows, err := r.db.Query(ctx, selectProjectFeature+" WHERE project_id=$1 ORDER BY key", projectID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanProjectFeature)
}

func (r *projectFeatureRepo) Upsert(ctx context.Context, f *models.ProjectFeature) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO project_features (project_id, key, enabled, updated_by, updated_at)
		VALUES ($1,$2,$3,$4, NOW())
		ON CONFLICT (project_id, key)
		DO UPDATE SET enabled=EXCLUDED.enabled, updated_by=EXCLUDED.updated_by, updated_at=NOW()
		RETURNING updated_at
	`, f.ProjectID, f.Key, f.Enabled, f.UpdatedBy).Scan(&f.UpdatedAt)
}

func (r *projectFeatureRepo) Delete(ctx context.Context, projectID uuid.UUID, key models.FeatureKey) error {
	_, err := r.db.Exec(ctx, `DELETE FROM project_features WHERE project_id=$1 AND key=$2`, projectID, key)
	return err
}

func scanProjectFeature(row pgx.Row) (*models.ProjectFeature, error) {
	var f models.ProjectFeature
	if err := row.Scan(&f.ProjectID, &f.Key, &f.Enabled, &f.UpdatedBy, &f.UpdatedAt); err != nil {
		return nil, err
	}
	return &f, nil
}
