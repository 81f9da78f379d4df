package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"

	"github.com/imkarn-it/my-village-sub003/backend/shared/go-models"
)

type FacilityRepository interface {
	Create(ctx context.Context, f *models.Facility) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Facility, error)
	ListByProject(ctx context.Context, projectID uuid.UUID, activeOnly bool) ([]*models.Facility, error)
	UpdateIfVersion(ctx context.Context, f *models.Facility, expected int64) (pgconn.CommandTag, error)
	UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Facility) error) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type facilityRepo struct {
	*BaseVersionedRepo[*models.Facility]
	db DB
}

func NewFacilityRepository(db DB) FacilityRepository {
	r := &facilityRepo{db: db}
	r.BaseVersionedRepo = NewBaseRepo(db, baseSelectFacility()+" WHERE id=$1", r.scanFacility)
	return r
}

func (r *facilityRepo) Create(ctx context.Context, f *models.Facility) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO facilities (
			id, project_id, name, description, capacity, open_time, close_time,
			max_hours, requires_approval, closed_on_holidays, is_active,
			created_at, updated_at, row_version
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11, NOW(), NOW(), 1)
		RETURNING created_at, updated_at, row_version
	`,
		f.ID, f.ProjectID, f.Name, f.Description, f.Capacity, f.OpenTime, f.CloseTime,
		f.MaxHours, f.RequiresApproval, f.ClosedOnHolidays, f.IsActive,
	).Scan(&f.CreatedAt, &f.UpdatedAt, &f.RowVersion)
}

func (r *facilityRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Facility, error) {
	return r.BaseVersionedRepo.GetByID(ctx, id.String())
}

func (r *facilityRepo) ListByProject(ctx context.Context, projectID uuid.UUID, activeOnly bool) ([]*models.Facility, error) {
	q := baseSelectFacility() + " WHERE project_id=$1"
	if activeOnly {
		q += " AND is_active"
	}
	rows, err := r.db.Query(ctx, q+" ORDER BY name", projectID)
	if err != nil {
		return nil, err
	}
	return collect(rows, r.scanFacility)
}

func (r *facilityRepo) UpdateIfVersion(ctx context.Context, f *models.Facility, expected int64) (pgconn.CommandTag, error) {
	return r.db.Exec(ctx, `
		UPDATE facilities
		SET name=$1, description=$2, capacity=$3, open_time=$4, close_time=$5,
			max_hours=$6, requires_approval=$7, closed_on_holidays=$8, is_active=$9,
			updated_at=NOW(), row_version=row_version+1
		WHERE id=$10 AND row_version=$11
	`,
		f.Name, f.Description, f.Capacity, f.OpenTime, f.CloseTime,
		f.MaxHours, f.RequiresApproval, f.ClosedOnHolidays, f.IsActive,
		f.ID, expected,
	)
}

func (r *facilityRepo) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Facility) error) error {
	return r.BaseVersionedRepo.UpdateWithRetry(ctx, id.String(), mutate, r.UpdateIfVersion)
}

func (r *facilityRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM facilities WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func baseSelectFacility() string {
	return `
		SELECT id, project_id, name, description, capacity, open_time, close_time,
		max_hours, requires_approval, closed_on_holidays, is_active,
		created_at, updated_at, row_version
		FROM facilities`
}

func (r *facilityRepo) scanFacility(row pgx.Row) (*models.Facility, error) {
	var f models.Facility
	if err := row.Scan(
		&f.ID, &f.ProjectID, &f.Name, &f.Description, &f.Capacity, &f.OpenTime, &f.CloseTime,
		&f.MaxHours, &f.RequiresApproval, &f.ClosedOnHolidays, &f.IsActive,
		&f.CreatedAt, &f.UpdatedAt, &f.RowVersion,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &f, nil
}
