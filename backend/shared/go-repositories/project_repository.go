package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"

	"github.com/imkarn-it/my-village-sub003/backend/shared/go-models"
)

type ProjectRepository interface {
	Create(ctx context.Context, p *models.Project) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error)
	GetByCode(ctx context.Context, code string) (*models.Project, error)
	List(ctx context.Context, limit, offset int) ([]*models.Project, int, error)
	ListAll(ctx context.Context) ([]*models.Project, error)
	UpdateIfVersion(ctx context.Context, p *models.Project, expected int64) (pgconn.CommandTag, error)
	UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Project) error) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

type projectRepo struct {
	*BaseVersionedRepo[*models.Project]
	db DB
}

func NewProjectRepository(db DB) ProjectRepository {
	r := &projectRepo{db: db}
	selectStmt := baseSelectProject() + " WHERE id=$1 AND deleted_at IS NULL"
	r.BaseVersionedRepo = NewBaseRepo(db, selectStmt, r.scanProject)
	return r
}

func (r *projectRepo) Create(ctx context.Context, p *models.Project) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO projects (
			id, name, code, address, latitude, longitude, timezone,
			geofence_radius_m, contact_phone, contact_email,
			created_at, updated_at, row_version
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10, NOW(), NOW(), 1)
		RETURNING created_at, updated_at, row_version
	`,
		p.ID, p.Name, p.Code, p.Address, p.Latitude, p.Longitude, p.TimeZone,
		p.GeofenceRadiusM, p.ContactPhone, p.ContactEmail,
	).Scan(&p.CreatedAt, &p.UpdatedAt, &p.RowVersion)
}

func (r *projectRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	return r.BaseVersionedRepo.GetByID(ctx, id.String())
}

func (r *projectRepo) GetByCode(ctx context.Context, code string) (*models.Project, error) {
	row := r.db.QueryRow(ctx, baseSelectProject()+" WHERE UPPER(code)=UPPER($1) AND deleted_at IS NULL", code)
	return r.scanProject(row)
}

func (r *projectRepo) List(ctx context.Context, limit, offset int) ([]*models.Project, int, error) {
	var w whereClause
	w.addRaw("deleted_at IS NULL")

	total, err := w.count(ctx, r.db, "projects")
	if err != nil {
		return nil, 0, err
	}
	suffix, args := w.page(limit, offset)
	rows, err := r.db.Query(ctx, baseSelectProject()+w.String()+" ORDER BY name"+suffix, args...)
	if err != nil {
		return nil, 0, err
	}
	list, err := collect(rows, r.scanProject)
	return list, total, err
}

func (r *projectRepo) ListAll(ctx context.Context) ([]*models.Project, error) {
	rows, err := r.db.Query(ctx, baseSelectProject()+" WHERE deleted_at IS NULL ORDER BY name")
	if err != nil {
		return nil, err
	}
	return collect(rows, r.scanProject)
}

func (r *projectRepo) UpdateIfVersion(ctx context.Context, p *models.Project, expected int64) (pgconn.CommandTag, error) {
	return r.db.Exec(ctx, `
		UPDATE projects
		SET name=$1, address=$2, latitude=$3, longitude=$4, timezone=$5,
			geofence_radius_m=$6, contact_phone=$7, contact_email=$8,
			updated_at=NOW(), row_version=row_version+1
		WHERE id=$9 AND row_version=$10 AND deleted_at IS NULL
	`,
		p.Name, p.Address, p.Latitude, p.Longitude, p.TimeZone,
		p.GeofenceRadiusM, p.ContactPhone, p.ContactEmail,
		p.ID, expected,
	)
}

func (r *projectRepo) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Project) error) error {
	return r.BaseVersionedRepo.UpdateWithRetry(ctx, id.String(), mutate, r.UpdateIfVersion)
}

func (r *projectRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `UPDATE projects SET deleted_at=NOW() WHERE id=$1 AND deleted_at IS NULL`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func baseSelectProject() string {
	return `
		SELECT id, name, code, address, latitude, longitude, timezone,
		geofence_radius_m, contact_phone, contact_email,
		created_at, updated_at, deleted_at, row_version
		FROM projects`
}

func (r *projectRepo) scanProject(row pgx.Row) (*models.Project, error) {
	var p models.Project
	if err := row.Scan(
		&p.ID, &p.Name, &p.Code, &p.Address, &p.Latitude, &p.Longitude, &p.TimeZone,
		&p.GeofenceRadiusM, &p.ContactPhone, &p.ContactEmail,
		&p.CreatedAt, &p.UpdatedAt, &p.DeletedAt, &p.RowVersion,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}
