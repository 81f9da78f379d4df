package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"

	"github.com/imkarn-it/my-village-sub003/backend/shared/go-models"
)

type PatrolLogFilter struct {
	ProjectID    uuid.UUID
	GuardID      *uuid.UUID
	CheckpointID *uuid.UUID
	Status       models.PatrolLogStatus
	From         *time.Time
	To           *time.Time
	Limit        int
	Offset       int
}

type PatrolRepository interface {
	CreateCheckpoint(ctx context.Context, c *models.PatrolCheckpoint) error
	GetCheckpoint(ctx context.Context, id uuid.UUID) (*models.PatrolCheckpoint, error)
	GetCheckpointByCode(ctx context.Context, projectID uuid.UUID, code string) (*models.PatrolCheckpoint, error)
	ListCheckpoints(ctx context.Context, projectID uuid.UUID) ([]*models.PatrolCheckpoint, error)
	UpdateCheckpointWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.PatrolCheckpoint) error) error
	DeleteCheckpoint(ctx context.Context, id uuid.UUID) error

	CreateLog(ctx context.Context, l *models.PatrolLog) error
	ListLogs(ctx context.Context, f PatrolLogFilter) ([]*models.PatrolLog, int, error)
}

type patrolRepo struct {
	*BaseVersionedRepo[*models.PatrolCheckpoint]
	db DB
}

func NewPatrolRepository(db DB) PatrolRepository {
	r := &patrolRepo{db: db}
	r.BaseVersionedRepo = NewBaseRepo(db, baseSelectCheckpoint()+" WHERE id=$1", r.scanCheckpoint)
	return r
}

/* ---------- checkpoints ---------- */

func (r *patrolRepo) CreateCheckpoint(ctx context.Context, c *models.PatrolCheckpoint) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO patrol_checkpoints (
			id, project_id, name, code, latitude, longitude, radius_m, is_active,
			created_at, updated_at, row_version
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8, NOW(), NOW(), 1)
		RETURNING created_at, updated_at, row_version
	`, c.ID, c.ProjectID, c.Name, c.Code, c.Latitude, c.Longitude, c.RadiusM, c.IsActive,
	).Scan(&c.CreatedAt, &c.UpdatedAt, &c.RowVersion)
}

func (r *patrolRepo) GetCheckpoint(ctx context.Context, id uuid.UUID) (*models.PatrolCheckpoint, error) {
	return r.BaseVersionedRepo.GetByID(ctx, id.String())
}

func (r *patrolRepo) GetCheckpointByCode(ctx context.Context, projectID uuid.UUID, code string) (*models.PatrolCheckpoint, error) {
	row := r.db.QueryRow(ctx, baseSelectCheckpoint()+" WHERE project_id=$1 AND code=$2", projectID, code)
	return r.scanCheckpoint(row)
}

func (r *patrolRepo) ListCheckpoints(ctx context.Context, projectID uuid.UUID) ([]*models.PatrolCheckpoint, error) {
	rows, err := r.db.Query(ctx, baseSelectCheckpoint()+" WHERE project_id=$1 ORDER BY name", projectID)
	if err != nil {
		return nil, err
	}
	return collect(rows, r.scanCheckpoint)
}

func (r *patrolRepo) updateCheckpointIfVersion(ctx context.Context, c *models.PatrolCheckpoint, expected int64) (pgconn.CommandTag, error) {
	return r.db.Exec(ctx, `
		UPDATE patrol_checkpoints
		SET name=$1, code=$2, latitude=$3, longitude=$4, radius_m=$5, is_active=$6,
			updated_at=NOW(), row_version=row_version+1
		WHERE id=$7 AND row_version=$8
	`, c.Name, c.Code, c.Latitude, c.Longitude, c.RadiusM, c.IsActive, c.ID, expected)
}

func (r *patrolRepo) UpdateCheckpointWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.PatrolCheckpoint) error) error {
	return r.BaseVersionedRepo.UpdateWithRetry(ctx, id.String(), mutate, r.updateCheckpointIfVersion)
}

func (r *patrolRepo) DeleteCheckpoint(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM patrol_checkpoints WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

/* ---------- logs ---------- */

func (r *patrolRepo) CreateLog(ctx context.Context, l *models.PatrolLog) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO patrol_logs (
			id, project_id, checkpoint_id, guard_id, scanned_at, latitude, longitude,
			distance_m, status, note, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10, NOW())
		RETURNING created_at
	`,
		l.ID, l.ProjectID, l.CheckpointID, l.GuardID, l.ScannedAt, l.Latitude, l.Longitude,
		l.DistanceM, l.Status, l.Note,
	).Scan(&l.CreatedAt)
}

func (r *patrolRepo) ListLogs(ctx context.Context, f PatrolLogFilter) ([]*models.PatrolLog, int, error) {
	var w whereClause
	w.add("project_id = ?", f.ProjectID)
	if f.GuardID != nil {
		w.add("guard_id = ?", *f.GuardID)
	}
	if f.CheckpointID != nil {
		w.add("checkpoint_id = ?", *f.CheckpointID)
	}
	if f.Status != "" {
		w.add("status = ?", f.Status)
	}
	if f.From != nil {
		w.add("scanned_at >= ?", *f.From)
	}
	if f.To != nil {
		w.add("scanned_at < ?", *f.To)
	}

	total, err := w.count(ctx, r.db, "patrol_logs")
	if err != nil {
		return nil, 0, err
	}
	suffix, args := w.page(f.Limit, f.Offset)
	rows, err := r.db.Query(ctx, `
		SELECT id, project_id, checkpoint_id, guard_id, scanned_at, latitude, longitude,
		distance_m, status, note, created_at
		FROM patrol_logs`+w.String()+" ORDER BY scanned_at DESC"+suffix, args...)
	if err != nil {
		return nil, 0, err
	}
	list, err := collect(rows, scanPatrolLog)
	return list, total, err
}

/* ---------- internals ---------- */

func baseSelectCheckpoint() string {
	return `
		SELECT id, project_id, name, code, latitude, longitude, radius_m, is_active,
		created_at, updated_at, row_version
		FROM patrol_checkpoints`
}

func (r *patrolRepo) scanCheckpoint(row pgx.Row) (*models.PatrolCheckpoint, error) {
	var c models.PatrolCheckpoint
	if err := row.Scan(
		&c.ID, &c.ProjectID, &c.Name, &c.Code, &c.Latitude, &c.Longitude, &c.RadiusM, &c.IsActive,
		&c.CreatedAt, &c.UpdatedAt, &c.RowVersion,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func scanPatrolLog(row pgx.Row) (*models.PatrolLog, error) {
	var l models.PatrolLog
	if err := row.Scan(
		&l.ID, &l.ProjectID, &l.CheckpointID, &l.GuardID, &l.ScannedAt, &l.Latitude, &l.Longitude,
		&l.DistanceM, &l.Status, &l.Note, &l.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &l, nil
}
