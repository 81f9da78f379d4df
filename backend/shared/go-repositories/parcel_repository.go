package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"

	"github.com/imkarn-it/my-village-sub003/backend/shared/go-models"
)

type ParcelFilter struct {
	ProjectID uuid.UUID
	UnitID    *uuid.UUID
	Status    models.ParcelStatus
	Search    string
	Limit     int
	Offset    int
}

type ParcelRepository interface {
	Create(ctx context.Context, p *models.Parcel) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Parcel, error)
	List(ctx context.Context, f ParcelFilter) ([]*models.Parcel, int, error)
	// ListUncollected returns parcels still waiting at the gate that were
	// received before olderThan and have not been reminded since then.
	ListUncollected(ctx context.Context, olderThan time.Time) ([]*models.Parcel, error)
	MarkReminded(ctx context.Context, ids []uuid.UUID) error
	UpdateIfVersion(ctx context.Context, p *models.Parcel, expected int64) (pgconn.CommandTag, error)
	UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Parcel) error) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type parcelRepo struct {
	*BaseVersionedRepo[*models.Parcel]
	db DB
}

func NewParcelRepository(db DB) ParcelRepository {
	r := &parcelRepo{db: db}
	r.BaseVersionedRepo = NewBaseRepo(db, baseSelectParcel()+" WHERE id=$1", r.scanParcel)
	return r
}

func (r *parcelRepo) Create(ctx context.Context, p *models.Parcel) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO parcels (
			id, project_id, unit_id, recipient_name, carrier, tracking_number, note,
			photo_url, status, received_by, received_at,
			created_at, updated_at, row_version
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11, NOW(), NOW(), 1)
		RETURNING created_at, updated_at, row_version
	`,
		p.ID, p.ProjectID, p.UnitID, p.RecipientName, p.Carrier, p.TrackingNumber, p.Note,
		p.PhotoURL, p.Status, p.ReceivedBy, p.ReceivedAt,
	).Scan(&p.CreatedAt, &p.UpdatedAt, &p.RowVersion)
}

func (r *parcelRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Parcel, error) {
	return r.BaseVersionedRepo.GetByID(ctx, id.String())
}

func (r *parcelRepo) List(ctx context.Context, f ParcelFilter) ([]*models.Parcel, int, error) {
	var w whereClause
	w.add("project_id = ?", f.ProjectID)
	if f.UnitID != nil {
		w.add("unit_id = ?", *f.UnitID)
	}
	if f.Status != "" {
		w.add("status = ?", f.Status)
	}
	if f.Search != "" {
		w.add("(recipient_name ILIKE ? OR tracking_number ILIKE ?)", "%"+f.Search+"%")
	}

	total, err := w.count(ctx, r.db, "parcels")
	if err != nil {
		return nil, 0, err
	}
	suffix, args := w.page(f.Limit, f.Offset)
	rows, err := r.db.Query(ctx, baseSelectParcel()+w.String()+" ORDER BY received_at DESC"+suffix, args...)
	if err != nil {
		return nil, 0, err
	}
	list, err := collect(rows, r.scanParcel)
	return list, total, err
}

func (r *parcelRepo) ListUncollected(ctx context.Context, olderThan time.Time) ([]*models.Parcel, error) {
	rows, err := r.db.Query(ctx, baseSelectParcel()+`
		WHERE status='received' AND received_at < $1
		  AND (reminded_at IS NULL OR reminded_at < $1)
		ORDER BY project_id, unit_id`, olderThan)
	if err != nil {
		return nil, err
	}
	return collect(rows, r.scanParcel)
}

func (r *parcelRepo) MarkReminded(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.db.Exec(ctx, `UPDATE parcels SET reminded_at=NOW() WHERE id = ANY($1)`, ids)
	return err
}

func (r *parcelRepo) UpdateIfVersion(ctx context.Context, p *models.Parcel, expected int64) (pgconn.CommandTag, error) {
	return r.db.Exec(ctx, `
		UPDATE parcels
		SET recipient_name=$1, carrier=$2, tracking_number=$3, note=$4, photo_url=$5,
			status=$6, picked_up_by=$7, picked_up_at=$8, handed_over_by=$9,
			updated_at=NOW(), row_version=row_version+1
		WHERE id=$10 AND row_version=$11
	`,
		p.RecipientName, p.Carrier, p.TrackingNumber, p.Note, p.PhotoURL,
		p.Status, p.PickedUpBy, p.PickedUpAt, p.HandedOverBy,
		p.ID, expected,
	)
}

func (r *parcelRepo) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Parcel) error) error {
	return r.BaseVersionedRepo.UpdateWithRetry(ctx, id.String(), mutate, r.UpdateIfVersion)
}

func (r *parcelRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM parcels WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func baseSelectParcel() string {
	return `
		SELECT id, project_id, unit_id, recipient_name, carrier, tracking_number, note,
		photo_url, status, received_by, received_at, picked_up_by, picked_up_at,
		handed_over_by, reminded_at, created_at, updated_at, row_version
		FROM parcels`
}

func (r *parcelRepo) scanParcel(row pgx.Row) (*models.Parcel, error) {
	var p models.Parcel
	if err := row.Scan(
		&p.ID, &p.ProjectID, &p.UnitID, &p.RecipientName, &p.Carrier, &p.TrackingNumber, &p.Note,
		&p.PhotoURL, &p.Status, &p.ReceivedBy, &p.ReceivedAt, &p.PickedUpBy, &p.PickedUpAt,
		&p.HandedOverBy, &p.RemindedAt, &p.CreatedAt, &p.UpdatedAt, &p.RowVersion,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}
