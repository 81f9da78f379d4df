package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"

	"github.com/imkarn-it/my-village-sub003/backend/shared/go-models"
)

type BillFilter struct {
	ProjectID     uuid.UUID
	UnitID        *uuid.UUID
	Status        models.BillStatus
	Type          models.BillType
	BillingPeriod string
	Limit         int
	Offset        int
}

// BillStatusTotal is one row of the per-status summary.
type BillStatusTotal struct {
	Status       models.BillStatus
	Count        int
	AmountSatang int64
}

type BillRepository interface {
	Create(ctx context.Context, b *models.Bill) error
	// CreateMany inserts every bill or none.
	CreateMany(ctx context.Context, bills []*models.Bill) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Bill, error)
	GetByPaymentIntent(ctx context.Context, intentID string) (*models.Bill, error)
	List(ctx context.Context, f BillFilter) ([]*models.Bill, int, error)
	Summary(ctx context.Context, projectID uuid.UUID, unitID *uuid.UUID) ([]BillStatusTotal, error)
	// MarkOverdue flags pending bills due before the given date and returns them.
	MarkOverdue(ctx context.Context, before time.Time) ([]*models.Bill, error)
	UpdateIfVersion(ctx context.Context, b *models.Bill, expected int64) (pgconn.CommandTag, error)
	UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Bill) error) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type billRepo struct {
	*BaseVersionedRepo[*models.Bill]
	db DB
}

func NewBillRepository(db DB) BillRepository {
	r := &billRepo{db: db}
	r.BaseVersionedRepo = NewBaseRepo(db, baseSelectBill()+" WHERE id=$1", scanBill)
	return r
}

const insertBillSQL = `
	INSERT INTO bills (
		id, project_id, unit_id, type, description, amount_satang, billing_period,
		due_date, status, issued_by, created_at, updated_at, row_version
	) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10, NOW(), NOW(), 1)
	RETURNING created_at, updated_at, row_version
`

func insertBill(ctx context.Context, db DB, b *models.Bill) error {
	return db.QueryRow(ctx, insertBillSQL,
		b.ID, b.ProjectID, b.UnitID, b.Type, b.Description, b.AmountSatang, b.BillingPeriod,
		b.DueDate, b.Status, b.IssuedBy,
	).Scan(&b.CreatedAt, &b.UpdatedAt, &b.RowVersion)
}

func (r *billRepo) Create(ctx context.Context, b *models.Bill) error {
	return insertBill(ctx, r.db, b)
}

func (r *billRepo) CreateMany(ctx context.Context, bills []*models.Bill) (err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	for _, b := range bills {
		if err = insertBill(ctx, tx, b); err != nil {
			return err
		}
	}
	return nil
}

func (r *billRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Bill, error) {
	return r.BaseVersionedRepo.GetByID(ctx, id.String())
}

func (r *billRepo) GetByPaymentIntent(ctx context.Context, intentID string) (*models.Bill, error) {
	row := r.db.QueryRow(ctx, baseSelectBill()+" WHERE stripe_payment_intent_id=$1", intentID)
	return scanBill(row)
}

func (r *billRepo) List(ctx context.Context, f BillFilter) ([]*models.Bill, int, error) {
	var w whereClause
	w.add("project_id = ?", f.ProjectID)
	if f.UnitID != nil {
		w.add("unit_id = ?", *f.UnitID)
	}
	if f.Status != "" {
		w.add("status = ?", f.Status)
	}
	if f.Type != "" {
		w.add("type = ?", f.Type)
	}
	if f.BillingPeriod != "" {
		w.add("billing_period = ?", f.BillingPeriod)
	}

	total, err := w.count(ctx, r.db, "bills")
	if err != nil {
		return nil, 0, err
	}
	suffix, args := w.page(f.Limit, f.Offset)
	rows, err := r.db.Query(ctx, baseSelectBill()+w.String()+" ORDER BY due_date DESC, created_at DESC"+suffix, args...)
	if err != nil {
		return nil, 0, err
	}
	list, err := collect(rows, scanBill)
	return list, total, err
}

func (r *billRepo) Summary(ctx context.Context, projectID uuid.UUID, unitID *uuid.UUID) ([]BillStatusTotal, error) {
	var w whereClause
	w.add("project_id = ?", projectID)
	if unitID != nil {
		w.add("unit_id = ?", *unitID)
	}
	rows, err := r.db.Query(ctx, `
		SELECT status, COUNT(*), COALESCE(SUM(amount_satang), 0)
		FROM bills`+w.String()+`
		GROUP BY status ORDER BY status`, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []BillStatusTotal
	for rows.Next() {
		var t BillStatusTotal
		if err := rows.Scan(&t.Status, &t.Count, &t.AmountSatang); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *billRepo) MarkOverdue(ctx context.Context, before time.Time) ([]*models.Bill, error) {
	rows, err := r.db.Query(ctx, `
		UPDATE bills
		SET status='overdue', updated_at=NOW(), row_version=row_version+1
		WHERE status='pending' AND due_date < $1
		RETURNING id, project_id, unit_id, type, description, amount_satang, billing_period,
		due_date, status, issued_by, paid_at, stripe_payment_intent_id,
		created_at, updated_at, row_version
	`, before)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanBill)
}

func (r *billRepo) UpdateIfVersion(ctx context.Context, b *models.Bill, expected int64) (pgconn.CommandTag, error) {
	return updateBill(ctx, r.db, b, expected)
}

func updateBill(ctx context.Context, db DB, b *models.Bill, expected int64) (pgconn.CommandTag, error) {
	return db.Exec(ctx, `
		UPDATE bills
		SET type=$1, description=$2, amount_satang=$3, billing_period=$4, due_date=$5,
			status=$6, paid_at=$7, stripe_payment_intent_id=$8,
			updated_at=NOW(), row_version=row_version+1
		WHERE id=$9 AND row_version=$10
	`,
		b.Type, b.Description, b.AmountSatang, b.BillingPeriod, b.DueDate,
		b.Status, b.PaidAt, b.StripePaymentIntentID,
		b.ID, expected,
	)
}

func (r *billRepo) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Bill) error) error {
	return r.BaseVersionedRepo.UpdateWithRetry(ctx, id.String(), mutate, r.UpdateIfVersion)
}

func (r *billRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM bills WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func baseSelectBill() string {
	return `
		SELECT id, project_id, unit_id, type, description, amount_satang, billing_period,
		due_date, status, issued_by, paid_at, stripe_payment_intent_id,
		created_at, updated_at, row_version
		FROM bills`
}

func scanBill(row pgx.Row) (*models.Bill, error) {
	var b models.Bill
	if err := row.Scan(
		&b.ID, &b.ProjectID, &b.UnitID, &b.Type, &b.Description, &b.AmountSatang, &b.BillingPeriod,
		&b.DueDate, &b.Status, &b.IssuedBy, &b.PaidAt, &b.StripePaymentIntentID,
		&b.CreatedAt, &b.UpdatedAt, &b.RowVersion,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}
