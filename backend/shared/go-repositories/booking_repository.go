package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"

	"github.com/imkarn-it/my-village-sub003/backend/shared/go-models"
)

type BookingFilter struct {
	ProjectID  uuid.UUID
	FacilityID *uuid.UUID
	UserID     *uuid.UUID
	Status     models.BookingStatus
	From       *time.Time
	To         *time.Time
	Limit      int
	Offset     int
}

type BookingRepository interface {
	// CreateIfFree inserts b unless a pending/approved booking of the same
	// facility overlaps [b.StartTime, b.EndTime). The overlapping booking is
	// returned instead when there is one.
	CreateIfFree(ctx context.Context, b *models.Booking) (*models.Booking, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	List(ctx context.Context, f BookingFilter) ([]*models.Booking, int, error)
	ListHolding(ctx context.Context, facilityID uuid.UUID, from, to time.Time) ([]*models.Booking, error)
	UpdateIfVersion(ctx context.Context, b *models.Booking, expected int64) (pgconn.CommandTag, error)
	UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Booking) error) error
}

type bookingRepo struct {
	*BaseVersionedRepo[*models.Booking]
	db DB
}

func NewBookingRepository(db DB) BookingRepository {
	r := &bookingRepo{db: db}
	r.BaseVersionedRepo = NewBaseRepo(db, baseSelectBooking()+" WHERE id=$1", r.scanBooking)
	return r
}

func (r *bookingRepo) CreateIfFree(ctx context.Context, b *models.Booking) (conflict *models.Booking, err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil || conflict != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	// Serializes concurrent bookings of one facility.
	if _, err = tx.Exec(ctx, `SELECT id FROM facilities WHERE id=$1 FOR UPDATE`, b.FacilityID); err != nil {
		return nil, err
	}

	row := tx.QueryRow(ctx, baseSelectBooking()+`
		WHERE facility_id=$1 AND status IN ('pending','approved')
		  AND start_time < $3 AND end_time > $2
		ORDER BY start_time LIMIT 1`, b.FacilityID, b.StartTime, b.EndTime)
	conflict, err = r.scanBooking(row)
	if err != nil || conflict != nil {
		return conflict, err
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO bookings (
			id, project_id, facility_id, user_id, unit_id, start_time, end_time,
			attendees, note, status, created_at, updated_at, row_version
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10, NOW(), NOW(), 1)
		RETURNING created_at, updated_at, row_version
	`,
		b.ID, b.ProjectID, b.FacilityID, b.UserID, b.UnitID, b.StartTime, b.EndTime,
		b.Attendees, b.Note, b.Status,
	).Scan(&b.CreatedAt, &b.UpdatedAt, &b.RowVersion)
	return nil, err
}

func (r *bookingRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	return r.BaseVersionedRepo.GetByID(ctx, id.String())
}

func (r *bookingRepo) List(ctx context.Context, f BookingFilter) ([]*models.Booking, int, error) {
	var w whereClause
	w.add("project_id = ?", f.ProjectID)
	if f.FacilityID != nil {
		w.add("facility_id = ?", *f.FacilityID)
	}
	if f.UserID != nil {
		w.add("user_id = ?", *f.UserID)
	}
	if f.Status != "" {
		w.add("status = ?", f.Status)
	}
	if f.From != nil {
		w.add("end_time > ?", *f.From)
	}
	if f.To != nil {
		w.add("start_time < ?", *f.To)
	}

	total, err := w.count(ctx, r.db, "bookings")
	if err != nil {
		return nil, 0, err
	}
	suffix, args := w.page(f.Limit, f.Offset)
	rows, err := r.db.Query(ctx, baseSelectBooking()+w.String()+" ORDER BY start_time DESC"+suffix, args...)
	if err != nil {
		return nil, 0, err
	}
	list, err := collect(rows, r.scanBooking)
	return list, total, err
}

func (r *bookingRepo) ListHolding(ctx context.Context, facilityID uuid.UUID, from, to time.Time) ([]*models.Booking, error) {
	rows, err := r.db.Query(ctx, baseSelectBooking()+`
		WHERE facility_id=$1 AND status IN ('pending','approved')
		  AND start_time < $3 AND end_time > $2
		ORDER BY start_time`, facilityID, from, to)
	if err != nil {
		return nil, err
	}
	return collect(rows, r.scanBooking)
}

func (r *bookingRepo) UpdateIfVersion(ctx context.Context, b *models.Booking, expected int64) (pgconn.CommandTag, error) {
	return r.db.Exec(ctx, `
		UPDATE bookings
		SET status=$1, reviewed_by=$2, review_note=$3, reviewed_at=$4, cancel_reason=$5,
			updated_at=NOW(), row_version=row_version+1
		WHERE id=$6 AND row_version=$7
	`, b.Status, b.ReviewedBy, b.ReviewNote, b.ReviewedAt, b.CancelReason, b.ID, expected)
}

func (r *bookingRepo) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Booking) error) error {
	return r.BaseVersionedRepo.UpdateWithRetry(ctx, id.String(), mutate, r.UpdateIfVersion)
}

func baseSelectBooking() string {
	return `
		SELECT id, project_id, facility_id, user_id, unit_id, start_time, end_time,
		attendees, note, status, reviewed_by, review_note, reviewed_at, cancel_reason,
		created_at, updated_at, row_version
		FROM bookings`
}

func (r *bookingRepo) scanBooking(row pgx.Row) (*models.Booking, error) {
	var b models.Booking
	if err := row.Scan(
		&b.ID, &b.ProjectID, &b.FacilityID, &b.UserID, &b.UnitID, &b.StartTime, &b.EndTime,
		&b.Attendees, &b.Note, &b.Status, &b.ReviewedBy, &b.ReviewNote, &b.ReviewedAt, &b.CancelReason,
		&b.CreatedAt, &b.UpdatedAt, &b.RowVersion,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}
