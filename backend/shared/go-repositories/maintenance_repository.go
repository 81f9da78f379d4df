package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"

	"github.com/imkarn-it/my-village-sub003/backend/shared/go-models"
)

type MaintenanceFilter struct {
	ProjectID  uuid.UUID
	ReporterID *uuid.UUID
	AssigneeID *uuid.UUID
	Status     models.MaintenanceStatus
	Priority   models.MaintenancePriority
	Category   string
	From       *time.Time
	To         *time.Time
	Limit      int
	Offset     int
}

type MaintenanceRepository interface {
	Create(ctx context.Context, m *models.MaintenanceRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.MaintenanceRequest, error)
	List(ctx context.Context, f MaintenanceFilter) ([]*models.MaintenanceRequest, int, error)
	UpdateIfVersion(ctx context.Context, m *models.MaintenanceRequest, expected int64) (pgconn.CommandTag, error)
	UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.MaintenanceRequest) error) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type maintenanceRepo struct {
	*BaseVersionedRepo[*models.MaintenanceRequest]
	db DB
}

func NewMaintenanceRepository(db DB) MaintenanceRepository {
	r := &maintenanceRepo{db: db}
	r.BaseVersionedRepo = NewBaseRepo(db, baseSelectMaintenance()+" WHERE id=$1", r.scanMaintenance)
	return r
}

func (r *maintenanceRepo) Create(ctx context.Context, m *models.MaintenanceRequest) error {
	if m.ImageURLs == nil {
		m.ImageURLs = []string{}
	}
	return r.db.QueryRow(ctx, `
		INSERT INTO maintenance_requests (
			id, project_id, unit_id, reporter_id, assignee_id, title, description,
			category, priority, status, image_urls,
			created_at, updated_at, row_version
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11, NOW(), NOW(), 1)
		RETURNING created_at, updated_at, row_version
	`,
		m.ID, m.ProjectID, m.UnitID, m.ReporterID, m.AssigneeID, m.Title, m.Description,
		m.Category, m.Priority, m.Status, m.ImageURLs,
	).Scan(&m.CreatedAt, &m.UpdatedAt, &m.RowVersion)
}

func (r *maintenanceRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.MaintenanceRequest, error) {
	return r.BaseVersionedRepo.GetByID(ctx, id.String())
}

func (r *maintenanceRepo) List(ctx context.Context, f MaintenanceFilter) ([]*models.MaintenanceRequest, int, error) {
	var w whereClause
	w.add("project_id = ?", f.ProjectID)
	if f.ReporterID != nil {
		w.add("reporter_id = ?", *f.ReporterID)
	}
	if f.AssigneeID != nil {
		w.add("assignee_id = ?", *f.AssigneeID)
	}
	if f.Status != "" {
		w.add("status = ?", f.Status)
	}
	if f.Priority != "" {
		w.add("priority = ?", f.Priority)
	}
	if f.Category != "" {
		w.add("category = ?", f.Category)
	}
	if f.From != nil {
		w.add("created_at >= ?", *f.From)
	}
	if f.To != nil {
		w.add("created_at < ?", *f.To)
	}

	total, err := w.count(ctx, r.db, "maintenance_requests")
	if err != nil {
		return nil, 0, err
	}
	suffix, args := w.page(f.Limit, f.Offset)
	rows, err := r.db.Query(ctx, baseSelectMaintenance()+w.String()+" ORDER BY created_at DESC"+suffix, args...)
	if err != nil {
		return nil, 0, err
	}
	list, err := collect(rows, r.scanMaintenance)
	return list, total, err
}

func (r *maintenanceRepo) UpdateIfVersion(ctx context.Context, m *models.MaintenanceRequest, expected int64) (pgconn.CommandTag, error) {
	return r.db.Exec(ctx, `
		UPDATE maintenance_requests
		SET assignee_id=$1, title=$2, description=$3, category=$4, priority=$5,
			status=$6, image_urls=$7, resolution_note=$8, completed_at=$9,
			updated_at=NOW(), row_version=row_version+1
		WHERE id=$10 AND row_version=$11
	`,
		m.AssigneeID, m.Title, m.Description, m.Category, m.Priority,
		m.Status, m.ImageURLs, m.ResolutionNote, m.CompletedAt,
		m.ID, expected,
	)
}

func (r *maintenanceRepo) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.MaintenanceRequest) error) error {
	return r.BaseVersionedRepo.UpdateWithRetry(ctx, id.String(), mutate, r.UpdateIfVersion)
}

func (r *maintenanceRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM maintenance_requests WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func baseSelectMaintenance() string {
	return `
		SELECT id, project_id, unit_id, reporter_id, assignee_id, title, description,
		category, priority, status, image_urls, resolution_note, completed_at,
		created_at, updated_at, row_version
		FROM maintenance_requests`
}

func (r *maintenanceRepo) scanMaintenance(row pgx.Row) (*models.MaintenanceRequest, error) {
	var m models.MaintenanceRequest
	if err := row.Scan(
		&m.ID, &m.ProjectID, &m.UnitID, &m.ReporterID, &m.AssigneeID, &m.Title, &m.Description,
		&m.Category, &m.Priority, &m.Status, &m.ImageURLs, &m.ResolutionNote, &m.CompletedAt,
		&m.CreatedAt, &m.UpdatedAt, &m.RowVersion,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}
