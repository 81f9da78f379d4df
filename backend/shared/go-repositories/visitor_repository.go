package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"

	"github.com/imkarn-it/my-village-sub003/backend/shared/go-models"
)

type VisitorFilter struct {
	ProjectID uuid.UUID
	UnitID    *uuid.UUID
	Status    models.VisitorStatus
	Search    string
	From      *time.Time
	To        *time.Time
	Limit     int
	Offset    int
}

type VisitorRepository interface {
	Create(ctx context.Context, v *models.Visitor) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Visitor, error)
	GetByQRToken(ctx context.Context, projectID uuid.UUID, token string) (*models.Visitor, error)
	List(ctx context.Context, f VisitorFilter) ([]*models.Visitor, int, error)
	// ExpireStale flips expected visitors whose pass ended before now.
	ExpireStale(ctx context.Context, now time.Time) (int64, error)
	UpdateIfVersion(ctx context.Context, v *models.Visitor, expected int64) (pgconn.CommandTag, error)
	UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Visitor) error) error
}

type visitorRepo struct {
	*BaseVersionedRepo[*models.Visitor]
	db DB
}

func NewVisitorRepository(db DB) VisitorRepository {
	r := &visitorRepo{db: db}
	r.BaseVersionedRepo = NewBaseRepo(db, baseSelectVisitor()+" WHERE id=$1", r.scanVisitor)
	return r
}

func (r *visitorRepo) Create(ctx context.Context, v *models.Visitor) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO visitors (
			id, project_id, unit_id, host_user_id, name, phone, license_plate, purpose,
			qr_token, expected_at, valid_until, status, is_walk_in,
			check_in_at, checked_in_by, created_at, updated_at, row_version
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15, NOW(), NOW(), 1)
		RETURNING created_at, updated_at, row_version
	`,
		v.ID, v.ProjectID, v.UnitID, v.HostUserID, v.Name, v.Phone, v.LicensePlate, v.Purpose,
		v.QRToken, v.ExpectedAt, v.ValidUntil, v.Status, v.IsWalkIn,
		v.CheckInAt, v.CheckedInBy,
	).Scan(&v.CreatedAt, &v.UpdatedAt, &v.RowVersion)
}

func (r *visitorRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Visitor, error) {
	return r.BaseVersionedRepo.GetByID(ctx, id.String())
}

func (r *visitorRepo) GetByQRToken(ctx context.Context, projectID uuid.UUID, token string) (*models.Visitor, error) {
	row := r.db.QueryRow(ctx, baseSelectVisitor()+" WHERE project_id=$1 AND qr_token=$2", projectID, token)
	return r.scanVisitor(row)
}

func (r *visitorRepo) List(ctx context.Context, f VisitorFilter) ([]*models.Visitor, int, error) {
	var w whereClause
	w.add("project_id = ?", f.ProjectID)
	if f.UnitID != nil {
		w.add("unit_id = ?", *f.UnitID)
	}
	if f.Status != "" {
		w.add("status = ?", f.Status)
	}
	if f.Search != "" {
		w.add("(name ILIKE ? OR license_plate ILIKE ?)", "%"+f.Search+"%")
	}
	if f.From != nil {
		w.add("created_at >= ?", *f.From)
	}
	if f.To != nil {
		w.add("created_at < ?", *f.To)
	}

	total, err := w.count(ctx, r.db, "visitors")
	if err != nil {
		return nil, 0, err
	}
	suffix, args := w.page(f.Limit, f.Offset)
	rows, err := r.db.Query(ctx, baseSelectVisitor()+w.String()+" ORDER BY created_at DESC"+suffix, args...)
	if err != nil {
		return nil, 0, err
	}
	list, err := collect(rows, r.scanVisitor)
	return list, total, err
}

func (r *visitorRepo) ExpireStale(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE visitors
		SET status='expired', updated_at=NOW(), row_version=row_version+1
		WHERE status='expected' AND valid_until IS NOT NULL AND valid_until < $1
	`, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *visitorRepo) UpdateIfVersion(ctx context.Context, v *models.Visitor, expected int64) (pgconn.CommandTag, error) {
	return r.db.Exec(ctx, `
		UPDATE visitors
		SET name=$1, phone=$2, license_plate=$3, purpose=$4, expected_at=$5, valid_until=$6,
			status=$7, check_in_at=$8, check_out_at=$9, checked_in_by=$10, checked_out_by=$11,
			updated_at=NOW(), row_version=row_version+1
		WHERE id=$12 AND row_version=$13
	`,
		v.Name, v.Phone, v.LicensePlate, v.Purpose, v.ExpectedAt, v.ValidUntil,
		v.Status, v.CheckInAt, v.CheckOutAt, v.CheckedInBy, v.CheckedOutBy,
		v.ID, expected,
	)
}

func (r *visitorRepo) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Visitor) error) error {
	return r.BaseVersionedRepo.UpdateWithRetry(ctx, id.String(), mutate, r.UpdateIfVersion)
}

func baseSelectVisitor() string {
	return `
		SELECT id, project_id, unit_id, host_user_id, name, phone, license_plate, purpose,
		qr_token, expected_at, valid_until, status, is_walk_in,
		check_in_at, check_out_at, checked_in_by, checked_out_by,
		created_at, updated_at, row_version
		FROM visitors`
}

func (r *visitorRepo) scanVisitor(row pgx.Row) (*models.Visitor, error) {
	var v models.Visitor
	if err := row.Scan(
		&v.ID, &v.ProjectID, &v.UnitID, &v.HostUserID, &v.Name, &v.Phone, &v.LicensePlate, &v.Purpose,
		&v.QRToken, &v.ExpectedAt, &v.ValidUntil, &v.Status, &v.IsWalkIn,
		&v.CheckInAt, &v.CheckOutAt, &v.CheckedInBy, &v.CheckedOutBy,
		&v.CreatedAt, &v.UpdatedAt, &v.RowVersion,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &v, nil
}
