package repositories

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"

	"github.com/imkarn-it/my-village-sub003/backend/shared/go-models"
)

type UserFilter struct {
	ProjectID *uuid.UUID
	UnitID    *uuid.UUID
	Role      models.UserRole
	Status    models.UserStatus
	Search    string
	Limit     int
	Offset    int
}

type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, f UserFilter) ([]*models.User, int, error)
	ListByRoles(ctx context.Context, projectID uuid.UUID, roles ...models.UserRole) ([]*models.User, error)
	ListActiveByUnit(ctx context.Context, unitID uuid.UUID) ([]*models.User, error)

	UpdateIfVersion(ctx context.Context, u *models.User, expected int64) (pgconn.CommandTag, error)
	UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.User) error) error
	RecordLogin(ctx context.Context, id uuid.UUID) error
	RecordFailedLogin(ctx context.Context, id uuid.UUID, maxAttempts int, lockMinutes int) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

type userRepo struct {
	*BaseVersionedRepo[*models.User]
	db DB
}

func NewUserRepository(db DB) UserRepository {
	r := &userRepo{db: db}
	selectStmt := baseSelectUser() + " WHERE id=$1 AND deleted_at IS NULL"
	r.BaseVersionedRepo = NewBaseRepo(db, selectStmt, r.scanUser)
	return r
}

func (r *userRepo) Create(ctx context.Context, u *models.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	return r.db.QueryRow(ctx, `
		INSERT INTO users (
			id, project_id, unit_id, email, password_hash, first_name, last_name,
			phone, id_card_encrypted, role, status,
			created_at, updated_at, row_version
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11, NOW(), NOW(), 1)
		RETURNING created_at, updated_at, row_version
	`,
		u.ID, u.ProjectID, u.UnitID, u.Email, u.PasswordHash, u.FirstName, u.LastName,
		u.Phone, u.IDCardEncrypted, u.Role, u.Status,
	).Scan(&u.CreatedAt, &u.UpdatedAt, &u.RowVersion)
}

func (r *userRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.BaseVersionedRepo.GetByID(ctx, id.String())
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	row := r.db.QueryRow(ctx, baseSelectUser()+" WHERE email=$1 AND deleted_at IS NULL",
		strings.ToLower(strings.TrimSpace(email)))
	return r.scanUser(row)
}

func (r *userRepo) List(ctx context.Context, f UserFilter) ([]*models.User, int, error) {
	var w whereClause
	w.addRaw("deleted_at IS NULL")
	if f.ProjectID != nil {
		w.add("project_id = ?", *f.ProjectID)
	}
	if f.UnitID != nil {
		w.add("unit_id = ?", *f.UnitID)
	}
	if f.Role != "" {
		w.add("role = ?", f.Role)
	}
	if f.Status != "" {
		w.add("status = ?", f.Status)
	}
	if f.Search != "" {
		w.add("(email ILIKE ? OR first_name ILIKE ? OR last_name ILIKE ?)", "%"+f.Search+"%")
	}

	total, err := w.count(ctx, r.db, "users")
	if err != nil {
		return nil, 0, err
	}
	suffix, args := w.page(f.Limit, f.Offset)
	rows, err := r.db.Query(ctx, baseSelectUser()+w.String()+" ORDER BY created_at DESC"+suffix, args...)
	if err != nil {
		return nil, 0, err
	}
	list, err := collect(rows, r.scanUser)
	return list, total, err
}

func (r *userRepo) ListByRoles(ctx context.Context, projectID uuid.UUID, roles ...models.UserRole) ([]*models.User, error) {
	roleStrs := make([]string, 0, len(roles))
	for _, role := range roles {
		roleStrs = append(roleStrs, string(role))
	}
	rows, err := r.db.Query(ctx, baseSelectUser()+`
		WHERE project_id=$1 AND role = ANY($2) AND status='active' AND deleted_at IS NULL
		ORDER BY created_at`, projectID, roleStrs)
	if err != nil {
		return nil, err
	}
	return collect(rows, r.scanUser)
}

func (r *userRepo) ListActiveByUnit(ctx context.Context, unitID uuid.UUID) ([]*models.User, error) {
	rows, err := r.db.Query(ctx, baseSelectUser()+`
		WHERE unit_id=$1 AND role='resident' AND status='active' AND deleted_at IS NULL
		ORDER BY created_at`, unitID)
	if err != nil {
		return nil, err
	}
	return collect(rows, r.scanUser)
}

func (r *userRepo) UpdateIfVersion(ctx context.Context, u *models.User, expected int64) (pgconn.CommandTag, error) {
	return r.db.Exec(ctx, `
		UPDATE users
		SET unit_id=$1, first_name=$2, last_name=$3, phone=$4, id_card_encrypted=$5,
			role=$6, status=$7, reject_reason=$8, password_hash=$9,
			updated_at=NOW(), row_version=row_version+1
		WHERE id=$10 AND row_version=$11 AND deleted_at IS NULL
	`,
		u.UnitID, u.FirstName, u.LastName, u.Phone, u.IDCardEncrypted,
		u.Role, u.Status, u.RejectReason, u.PasswordHash,
		u.ID, expected,
	)
}

func (r *userRepo) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.User) error) error {
	return r.BaseVersionedRepo.UpdateWithRetry(ctx, id.String(), mutate, r.UpdateIfVersion)
}

func (r *userRepo) RecordLogin(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `
		UPDATE users
		SET last_login_at=NOW(), failed_login_attempts=0, locked_until=NULL
		WHERE id=$1`, id)
	return err
}

// RecordFailedLogin bumps the counter and locks the account once it
// reaches maxAttempts.
func (r *userRepo) RecordFailedLogin(ctx context.Context, id uuid.UUID, maxAttempts int, lockMinutes int) error {
	_, err := r.db.Exec(ctx, `
		UPDATE users
		SET failed_login_attempts = failed_login_attempts + 1,
			locked_until = CASE
				WHEN failed_login_attempts + 1 >= $2 THEN NOW() + make_interval(mins => $3)
				ELSE locked_until
			END
		WHERE id=$1`, id, maxAttempts, lockMinutes)
	return err
}

func (r *userRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `UPDATE users SET deleted_at=NOW(), updated_at=NOW() WHERE id=$1 AND deleted_at IS NULL`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func baseSelectUser() string {
	return `
		SELECT id, project_id, unit_id, email, password_hash, first_name, last_name,
		phone, id_card_encrypted, role, status, reject_reason,
		failed_login_attempts, locked_until, last_login_at,
		created_at, updated_at, deleted_at, row_version
		FROM users`
}

func (r *userRepo) scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	if err := row.Scan(
		&u.ID, &u.ProjectID, &u.UnitID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName,
		&u.Phone, &u.IDCardEncrypted, &u.Role, &u.Status, &u.RejectReason,
		&u.FailedLoginAttempts, &u.LockedUntil, &u.LastLoginAt,
		&u.CreatedAt, &u.UpdatedAt, &u.DeletedAt, &u.RowVersion,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}
