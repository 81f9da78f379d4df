package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"

	"github.com/imkarn-it/my-village-sub003/backend/shared/go-models"
)

type AttendanceFilter struct {
	ProjectID uuid.UUID
	UserID    *uuid.UUID
	From      *time.Time
	To        *time.Time
	Limit     int
	Offset    int
}

type AttendanceRepository interface {
	Create(ctx context.Context, a *models.Attendance) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Attendance, error)
	GetOpenByUser(ctx context.Context, userID uuid.UUID) (*models.Attendance, error)
	List(ctx context.Context, f AttendanceFilter) ([]*models.Attendance, int, error)
	UpdateIfVersion(ctx context.Context, a *models.Attendance, expected int64) (pgconn.CommandTag, error)
	UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Attendance) error) error
}

type attendanceRepo struct {
	*BaseVersionedRepo[*models.Attendance]
	db DB
}

func NewAttendanceRepository(db DB) AttendanceRepository {
	r := &attendanceRepo{db: db}
	r.BaseVersionedRepo = NewBaseRepo(db, baseSelectAttendance()+" WHERE id=$1", r.scanAttendance)
	return r
}

// Create relies on the partial unique index on (user_id) WHERE
// check_out_at IS NULL to reject a second open shift.
func (r *attendanceRepo) Create(ctx context.Context, a *models.Attendance) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO attendances (
			id, project_id, user_id, check_in_at, check_in_lat, check_in_lng,
			check_in_distance_m, note, created_at, updated_at, row_version
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8, NOW(), NOW(), 1)
		RETURNING created_at, updated_at, row_version
	`,
		a.ID, a.ProjectID, a.UserID, a.CheckInAt, a.CheckInLat, a.CheckInLng,
		a.CheckInDistanceM, a.Note,
	).Scan(&a.CreatedAt, &a.UpdatedAt, &a.RowVersion)
}

func (r *attendanceRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Attendance, error) {
	return r.BaseVersionedRepo.GetByID(ctx, id.String())
}

func (r *attendanceRepo) GetOpenByUser(ctx context.Context, userID uuid.UUID) (*models.Attendance, error) {
	row := r.db.QueryRow(ctx, baseSelectAttendance()+
		" WHERE user_id=$1 AND check_out_at IS NULL ORDER BY check_in_at DESC LIMIT 1", userID)
	return r.scanAttendance(row)
}

func (r *attendanceRepo) List(ctx context.Context, f AttendanceFilter) ([]*models.Attendance, int, error) {
	var w whereClause
	w.add("project_id = ?", f.ProjectID)
	if f.UserID != nil {
		w.add("user_id = ?", *f.UserID)
	}
	if f.From != nil {
		w.add("check_in_at >= ?", *f.From)
	}
	if f.To != nil {
		w.add("check_in_at < ?", *f.To)
	}

	total, err := w.count(ctx, r.db, "attendances")
	if err != nil {
		return nil, 0, err
	}
	suffix, args := w.page(f.Limit, f.Offset)
	rows, err := r.db.Query(ctx, baseSelectAttendance()+w.String()+" ORDER BY check_in_at DESC"+suffix, args...)
	if err != nil {
		return nil, 0, err
	}
	list, err := collect(rows, r.scanAttendance)
	return list, total, err
}

func (r *attendanceRepo) UpdateIfVersion(ctx context.Context, a *models.Attendance, expected int64) (pgconn.CommandTag, error) {
	return r.db.Exec(ctx, `
		UPDATE attendances
		SET check_out_at=$1, check_out_lat=$2, check_out_lng=$3, check_out_distance_m=$4,
			note=$5, updated_at=NOW(), row_version=row_version+1
		WHERE id=$6 AND row_version=$7
	`, a.CheckOutAt, a.CheckOutLat, a.CheckOutLng, a.CheckOutDistanceM, a.Note, a.ID, expected)
}

func (r *attendanceRepo) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Attendance) error) error {
	return r.BaseVersionedRepo.UpdateWithRetry(ctx, id.String(), mutate, r.UpdateIfVersion)
}

func baseSelectAttendance() string {
	return `
		SELECT id, project_id, user_id, check_in_at, check_in_lat, check_in_lng,
		check_in_distance_m, check_out_at, check_out_lat, check_out_lng,
		check_out_distance_m, note, created_at, updated_at, row_version
		FROM attendances`
}

func (r *attendanceRepo) scanAttendance(row pgx.Row) (*models.Attendance, error) {
	var a models.Attendance
	if err := row.Scan(
		&a.ID, &a.ProjectID, &a.UserID, &a.CheckInAt, &a.CheckInLat, &a.CheckInLng,
		&a.CheckInDistanceM, &a.CheckOutAt, &a.CheckOutLat, &a.CheckOutLng,
		&a.CheckOutDistanceM, &a.Note, &a.CreatedAt, &a.UpdatedAt, &a.RowVersion,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}
