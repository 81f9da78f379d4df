package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"

	"github.com/imkarn-it/my-village-sub003/backend/shared/go-models"
)

type PaymentFilter struct {
	ProjectID uuid.UUID
	BillID    *uuid.UUID
	PaidBy    *uuid.UUID
	Status    models.PaymentStatus
	Method    models.PaymentMethod
	Reference *string
	Limit     int
	Offset    int
}

type PaymentRepository interface {
	Create(ctx context.Context, p *models.Payment) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Payment, error)
	List(ctx context.Context, f PaymentFilter) ([]*models.Payment, int, error)
	SetSlipCheck(ctx context.Context, id uuid.UUID, result []byte) error
	UpdateIfVersion(ctx context.Context, p *models.Payment, expected int64) (pgconn.CommandTag, error)
	UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Payment) error) error
	// CreateWithBill locks the payment's bill, applies mutate to it and stores
	// the bill and the new payment in one transaction.
	CreateWithBill(ctx context.Context, p *models.Payment, mutate func(*models.Bill) error) (*models.Bill, error)
	// UpdateWithBill locks a payment and its bill, applies mutate to both and
	// writes them in one transaction. A mutate error leaves both untouched.
	UpdateWithBill(ctx context.Context, id uuid.UUID, mutate func(*models.Payment, *models.Bill) error) (*models.Payment, *models.Bill, error)
}

type paymentRepo struct {
	*BaseVersionedRepo[*models.Payment]
	db DB
}

func NewPaymentRepository(db DB) PaymentRepository {
	r := &paymentRepo{db: db}
	r.BaseVersionedRepo = NewBaseRepo(db, baseSelectPayment()+" WHERE id=$1", scanPayment)
	return r
}

func (r *paymentRepo) Create(ctx context.Context, p *models.Payment) error {
	return insertPayment(ctx, r.db, p)
}

func insertPayment(ctx context.Context, db DB, p *models.Payment) error {
	return db.QueryRow(ctx, `
		INSERT INTO payments (
			id, project_id, bill_id, paid_by, amount_satang, method, slip_url,
			reference, status, slip_check, verified_by, verified_at,
			created_at, updated_at, row_version
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12, NOW(), NOW(), 1)
		RETURNING created_at, updated_at, row_version
	`,
		p.ID, p.ProjectID, p.BillID, p.PaidBy, p.AmountSatang, p.Method, p.SlipURL,
		p.Reference, p.Status, jsonArg(p.SlipCheck), p.VerifiedBy, p.VerifiedAt,
	).Scan(&p.CreatedAt, &p.UpdatedAt, &p.RowVersion)
}

func (r *paymentRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	return r.BaseVersionedRepo.GetByID(ctx, id.String())
}

func (r *paymentRepo) List(ctx context.Context, f PaymentFilter) ([]*models.Payment, int, error) {
	var w whereClause
	w.add("project_id = ?", f.ProjectID)
	if f.BillID != nil {
		w.add("bill_id = ?", *f.BillID)
	}
	if f.PaidBy != nil {
		w.add("paid_by = ?", *f.PaidBy)
	}
	if f.Status != "" {
		w.add("status = ?", f.Status)
	}
	if f.Method != "" {
		w.add("method = ?", f.Method)
	}
	if f.Reference != nil {
		w.add("reference = ?", *f.Reference)
	}

	total, err := w.count(ctx, r.db, "payments")
	if err != nil {
		return nil, 0, err
	}
	suffix, args := w.page(f.Limit, f.Offset)
	rows, err := r.db.Query(ctx, baseSelectPayment()+w.String()+" ORDER BY created_at DESC"+suffix, args...)
	if err != nil {
		return nil, 0, err
	}
	list, err := collect(rows, scanPayment)
	return list, total, err
}

func (r *paymentRepo) SetSlipCheck(ctx context.Context, id uuid.UUID, result []byte) error {
	_, err := r.db.Exec(ctx, `UPDATE payments SET slip_check=$1, updated_at=NOW() WHERE id=$2`, result, id)
	return err
}

func (r *paymentRepo) UpdateIfVersion(ctx context.Context, p *models.Payment, expected int64) (pgconn.CommandTag, error) {
	return updatePayment(ctx, r.db, p, expected)
}

func updatePayment(ctx context.Context, db DB, p *models.Payment, expected int64) (pgconn.CommandTag, error) {
	return db.Exec(ctx, `
		UPDATE payments
		SET status=$1, verified_by=$2, verified_at=$3, reject_reason=$4,
			updated_at=NOW(), row_version=row_version+1
		WHERE id=$5 AND row_version=$6
	`, p.Status, p.VerifiedBy, p.VerifiedAt, p.RejectReason, p.ID, expected)
}

func (r *paymentRepo) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Payment) error) error {
	return r.BaseVersionedRepo.UpdateWithRetry(ctx, id.String(), mutate, r.UpdateIfVersion)
}

func (r *paymentRepo) CreateWithBill(ctx context.Context, p *models.Payment, mutate func(*models.Bill) error) (bill *models.Bill, err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	bill, err = scanBill(tx.QueryRow(ctx, baseSelectBill()+" WHERE id=$1 FOR UPDATE", p.BillID))
	if err != nil {
		return nil, err
	}
	if bill == nil {
		return nil, pgx.ErrNoRows
	}
	version := bill.RowVersion
	if err = mutate(bill); err != nil {
		return nil, err
	}
	if _, err = updateBill(ctx, tx, bill, version); err != nil {
		return nil, err
	}
	if err = insertPayment(ctx, tx, p); err != nil {
		return nil, err
	}
	bill.RowVersion = version + 1
	return bill, nil
}

func (r *paymentRepo) UpdateWithBill(
	ctx context.Context,
	id uuid.UUID,
	mutate func(*models.Payment, *models.Bill) error,
) (payment *models.Payment, bill *models.Bill, err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	payment, err = scanPayment(tx.QueryRow(ctx, baseSelectPayment()+" WHERE id=$1 FOR UPDATE", id))
	if err != nil {
		return nil, nil, err
	}
	if payment == nil {
		return nil, nil, pgx.ErrNoRows
	}
	bill, err = scanBill(tx.QueryRow(ctx, baseSelectBill()+" WHERE id=$1 FOR UPDATE", payment.BillID))
	if err != nil {
		return nil, nil, err
	}
	if bill == nil {
		return nil, nil, pgx.ErrNoRows
	}

	paymentVersion, billVersion := payment.RowVersion, bill.RowVersion
	if err = mutate(payment, bill); err != nil {
		return nil, nil, err
	}
	if _, err = updatePayment(ctx, tx, payment, paymentVersion); err != nil {
		return nil, nil, err
	}
	if _, err = updateBill(ctx, tx, bill, billVersion); err != nil {
		return nil, nil, err
	}
	payment.RowVersion = paymentVersion + 1
	bill.RowVersion = billVersion + 1
	return payment, bill, nil
}

func baseSelectPayment() string {
	return `
		SELECT id, project_id, bill_id, paid_by, amount_satang, method, slip_url,
		reference, status, slip_check, verified_by, verified_at, reject_reason,
		created_at, updated_at, row_version
		FROM payments`
}

func scanPayment(row pgx.Row) (*models.Payment, error) {
	var (
		p         models.Payment
		slipCheck []byte
	)
	if err := row.Scan(
		&p.ID, &p.ProjectID, &p.BillID, &p.PaidBy, &p.AmountSatang, &p.Method, &p.SlipURL,
		&p.Reference, &p.Status, &slipCheck, &p.VerifiedBy, &p.VerifiedAt, &p.RejectReason,
		&p.CreatedAt, &p.UpdatedAt, &p.RowVersion,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	p.SlipCheck = rawJSON(slipCheck)
	return &p, nil
}
