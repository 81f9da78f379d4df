package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/imkarn-it/my-village-sub003/backend/shared/go-models"
)

type NotificationRepository interface {
	// CreateMany inserts all rows in one batch.
	CreateMany(ctx context.Context, list []*models.Notification) error
	ListByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit, offset int) ([]*models.Notification, int, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int, error)
	MarkRead(ctx context.Context, userID, id uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
	PurgeReadBefore(ctx context.Context, before time.Time) (int64, error)
}

type notificationRepo struct {
	db DB
}

func NewNotificationRepository(db DB) NotificationRepository {
	return &notificationRepo{db: db}
}

func (r *notificationRepo) CreateMany(ctx context.Context, list []*models.Notification) error {
	if len(list) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, n := range list {
		batch.Queue(`
			INSERT INTO notifications (id, project_id, user_id, type, title, message, link, is_read, created_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7, FALSE, NOW())
		`, n.ID, n.ProjectID, n.UserID, n.Type, n.Title, n.Message, n.Link)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	br := tx.SendBatch(ctx, batch)
	for range list {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return err
		}
	}
	if err := br.Close(); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *notificationRepo) ListByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit, offset int) ([]*models.Notification, int, error) {
	var w whereClause
	w.add("user_id = ?", userID)
	if unreadOnly {
		w.addRaw("is_read = FALSE")
	}

	total, err := w.count(ctx, r.db, "notifications")
	if err != nil {
		return nil, 0, err
	}
	suffix, args := w.page(limit, offset)
	rows, err := r.db.Query(ctx, `
		SELECT id, project_id, user_id, type, title, message, link, is_read, read_at, created_at
		FROM notifications`+w.String()+" ORDER BY created_at DESC"+suffix, args...)
	if err != nil {
		return nil, 0, err
	}
	list, err := collect(rows, scanNotification)
	return list, total, err
}

func (r *notificationRepo) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM notifications WHERE user_id=$1 AND is_read = FALSE`, userID).Scan(&n)
	return n, err
}

func (r *notificationRepo) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE notifications SET is_read=TRUE, read_at=COALESCE(read_at, NOW())
		WHERE id=$1 AND user_id=$2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *notificationRepo) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE notifications SET is_read=TRUE, read_at=NOW()
		WHERE user_id=$1 AND is_read = FALSE`, userID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *notificationRepo) Delete(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM notifications WHERE id=$1 AND user_id=$2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *notificationRepo) PurgeReadBefore(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM notifications WHERE is_read = TRUE AND created_at < $1`, before)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func scanNotification(row pgx.Row) (*models.Notification, error) {
	var n models.Notification
	if err := row.Scan(
		&n.ID, &n.ProjectID, &n.UserID, &n.Type, &n.Title, &n.Message, &n.Link,
		&n.IsRead, &n.ReadAt, &n.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &n, nil
}
