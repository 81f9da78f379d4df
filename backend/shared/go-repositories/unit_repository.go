package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"

	"github.com/imkarn-it/my-village-sub003/backend/shared/go-models"
)

type UnitFilter struct {
	ProjectID uuid.UUID
	Zone      string
	Search    string
	Limit     int
	Offset    int
}

type UnitRepository interface {
	Create(ctx context.Context, u *models.Unit) error
	CreateMany(ctx context.Context, list []*models.Unit) error

	GetByID(ctx context.Context, id uuid.UUID) (*models.Unit, error)
	GetByHouseNumber(ctx context.Context, projectID uuid.UUID, houseNumber string) (*models.Unit, error)
	List(ctx context.Context, f UnitFilter) ([]*models.Unit, int, error)
	ListIDsByProject(ctx context.Context, projectID uuid.UUID) ([]uuid.UUID, error)

	UpdateIfVersion(ctx context.Context, u *models.Unit, expected int64) (pgconn.CommandTag, error)
	UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Unit) error) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

type unitRepo struct {
	*BaseVersionedRepo[*models.Unit]
	db DB
}

func NewUnitRepository(db DB) UnitRepository {
	r := &unitRepo{db: db}
	selectStmt := baseSelectUnit() + " WHERE id=$1 AND deleted_at IS NULL"
	r.BaseVersionedRepo = NewBaseRepo(db, selectStmt, r.scanUnit)
	return r
}

/* ---------- create ---------- */

func (r *unitRepo) Create(ctx context.Context, u *models.Unit) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO units (
			id, project_id, house_number, zone, owner_name, area_sqm,
			created_at, updated_at, row_version
		) VALUES ($1,$2,$3,$4,$5,$6, NOW(), NOW(), 1)
		RETURNING created_at, updated_at, row_version
	`, u.ID, u.ProjectID, u.HouseNumber, u.Zone, u.OwnerName, u.AreaSqm,
	).Scan(&u.CreatedAt, &u.UpdatedAt, &u.RowVersion)
}

func (r *unitRepo) CreateMany(ctx context.Context, list []*models.Unit) error {
	for _, u := range list {
		if err := r.Create(ctx, u); err != nil {
			return err
		}
	}
	return nil
}

/* ---------- reads ---------- */

func (r *unitRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Unit, error) {
	return r.BaseVersionedRepo.GetByID(ctx, id.String())
}

func (r *unitRepo) GetByHouseNumber(ctx context.Context, projectID uuid.UUID, houseNumber string) (*models.Unit, error) {
	row := r.db.QueryRow(ctx, baseSelectUnit()+
		" WHERE project_id=$1 AND house_number=$2 AND deleted_at IS NULL", projectID, houseNumber)
	return r.scanUnit(row)
}

func (r *unitRepo) List(ctx context.Context, f UnitFilter) ([]*models.Unit, int, error) {
	var w whereClause
	w.add("project_id = ?", f.ProjectID)
	w.addRaw("deleted_at IS NULL")
	if f.Zone != "" {
		w.add("zone = ?", f.Zone)
	}
	if f.Search != "" {
		w.add("(house_number ILIKE ? OR owner_name ILIKE ?)", "%"+f.Search+"%")
	}

	total, err := w.count(ctx, r.db, "units")
	if err != nil {
		return nil, 0, err
	}
	suffix, args := w.page(f.Limit, f.Offset)
	rows, err := r.db.Query(ctx, baseSelectUnit()+w.String()+" ORDER BY zone, house_number"+suffix, args...)
	if err != nil {
		return nil, 0, err
	}
	list, err := collect(rows, r.scanUnit)
	return list, total, err
}

func (r *unitRepo) ListIDsByProject(ctx context.Context, projectID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx, `SELECT id FROM units WHERE project_id=$1 AND deleted_at IS NULL ORDER BY house_number`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

/* ---------- update / delete ---------- */

func (r *unitRepo) UpdateIfVersion(ctx context.Context, u *models.Unit, expected int64) (pgconn.CommandTag, error) {
	return r.db.Exec(ctx, `
		UPDATE units
		SET house_number=$1, zone=$2, owner_name=$3, area_sqm=$4,
			updated_at=NOW(), row_version=row_version+1
		WHERE id=$5 AND row_version=$6 AND deleted_at IS NULL
	`, u.HouseNumber, u.Zone, u.OwnerName, u.AreaSqm, u.ID, expected)
}

func (r *unitRepo) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Unit) error) error {
	return r.BaseVersionedRepo.UpdateWithRetry(ctx, id.String(), mutate, r.UpdateIfVersion)
}

func (r *unitRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `UPDATE units SET deleted_at=NOW() WHERE id=$1 AND deleted_at IS NULL`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

/* ---------- internals ---------- */

func baseSelectUnit() string {
	return `
		SELECT id, project_id, house_number, zone, owner_name, area_sqm,
		created_at, updated_at, deleted_at, row_version
		FROM units`
}

func (r *unitRepo) scanUnit(row pgx.Row) (*models.Unit, error) {
	var u models.Unit
	if err := row.Scan(
		&u.ID, &u.ProjectID, &u.HouseNumber, &u.Zone, &u.OwnerName, &u.AreaSqm,
		&u.CreatedAt, &u.UpdatedAt, &u.DeletedAt, &u.RowVersion,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}
