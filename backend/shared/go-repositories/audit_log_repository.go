// backend/shared/go-repositories/audit_log_repository.go
package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/imkarn-it/my-village-sub003/backend/shared/go-models"
)

type AuditLogFilter struct {
	ProjectID  *uuid.UUID
	ActorID    *uuid.UUID
	Action     models.AuditAction
	TargetType models.AuditTargetType
	TargetID   *uuid.UUID
	From       *time.Time
	To         *time.Time
	Limit      int
	Offset     int
}

type AuditLogRepository interface {
	Create(ctx context.Context, logEntry *models.AuditLog) error
	List(ctx context.Context, f AuditLogFilter) ([]*models.AuditLog, int, error)
}

type auditLogRepo struct {
	db DB
}

func NewAuditLogRepository(db DB) AuditLogRepository {
	return &auditLogRepo{db: db}
}

func (r *auditLogRepo) Create(ctx context.Context, logEntry *models.AuditLog) error {
	q := `
        INSERT INTO audit_logs (
            id, project_id, actor_id, action, target_id, target_type, details, ip_address, created_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
    `
	_, err := r.db.Exec(ctx, q,
		logEntry.ID,
		logEntry.ProjectID,
		logEntry.ActorID,
		logEntry.Action,
		logEntry.TargetID,
		logEntry.TargetType,
		jsonArg(logEntry.Details),
		logEntry.IPAddress,
	)
	return err
}

func (r *auditLogRepo) List(ctx context.Context, f AuditLogFilter) ([]*models.AuditLog, int, error) {
	var w whereClause
	if f.ProjectID != nil {
		w.add("project_id = ?", *f.ProjectID)
	}
	if f.ActorID != nil {
		w.add("actor_id = ?", *f.ActorID)
	}
	if f.Action != "" {
		w.add("action = ?", f.Action)
	}
	if f.TargetType != "" {
		w.add("target_type = ?", f.TargetType)
	}
	if f.TargetID != nil {
		w.add("target_id = ?", *f.TargetID)
	}
	if f.From != nil {
		w.add("created_at >= ?", *f.From)
	}
	if f.To != nil {
		w.add("created_at < ?", *f.To)
	}

	total, err := w.count(ctx, r.db, "audit_logs")
	if err != nil {
		return nil, 0, err
	}
	suffix, args := w.page(f.Limit, f.Offset)
	rows, err := r.db.Query(ctx, `
		SELECT id, project_id, actor_id, action, target_id, target_type, details, ip_address, created_at
		FROM audit_logs`+w.String()+" ORDER BY created_at DESC"+suffix, args...)
	if err != nil {
		return nil, 0, err
	}
	list, err := collect(rows, scanAuditLog)
	return list, total, err
}

func scanAuditLog(row pgx.Row) (*models.AuditLog, error) {
	var (
		a       models.AuditLog
		details []byte
	)
	if err := row.Scan(
		&a.ID, &a.ProjectID, &a.ActorID, &a.Action, &a.TargetID, &a.TargetType,
		&details, &a.IPAddress, &a.CreatedAt,
	); err != nil {
		return nil, err
	}
	a.Details = rawJSON(details)
	return &a, nil
}
