package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tripdesk/crm-backend/internal/domain"
)

type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) (*domain.Notification, error)
	FindUnread(ctx context.Context, userID string) ([]domain.Notification, error)
	MarkRead(ctx context.Context, id int64) (*domain.Notification, error)
	// DeleteRead removes every already-read notification and returns the
	// number deleted. Used by the retention sweep.
	DeleteRead(ctx context.Context) (int64, error)
}

type notificationRepository struct {
	pool *pgxpool.Pool
}

func NewNotificationRepository(pool *pgxpool.Pool) NotificationRepository {
	return &notificationRepository{pool: pool}
}

const notificationCols = `id, user_id, type, title, description, logo, name, quotation_name,
	quotation_id, email, link, is_read, created_at`

func scanNotification(row pgx.Row) (*domain.Notification, error) {
	var n domain.Notification
	err := row.Scan(
		&n.ID, &n.UserID, &n.Type, &n.Title, &n.Description, &n.Logo, &n.Name,
		&n.QuotationName, &n.QuotationID, &n.Email, &n.Link, &n.IsRead, &n.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *notificationRepository) Create(ctx context.Context, n *domain.Notification) (*domain.Notification, error) {
	const q = `
		INSERT INTO notifications (user_id, type, title, description, logo, name,
			quotation_name, quotation_id, email, link)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + notificationCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanNotification(r.pool.QueryRow(ctx, q,
		n.UserID, n.Type, n.Title, n.Description, n.Logo, n.Name,
		n.QuotationName, n.QuotationID, n.Email, n.Link,
	))
}

func (r *notificationRepository) FindUnread(ctx context.Context, userID string) ([]domain.Notification, error) {
	const q = `SELECT ` + notificationCols + `
		FROM notifications
		WHERE user_id = $1 AND is_read = false
		ORDER BY created_at DESC`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []domain.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, *n)
	}
	return notifications, rows.Err()
}

func (r *notificationRepository) MarkRead(ctx context.Context, id int64) (*domain.Notification, error) {
	const q = `
		UPDATE notifications SET is_read = true WHERE id = $1
		RETURNING ` + notificationCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanNotification(r.pool.QueryRow(ctx, q, id))
}

func (r *notificationRepository) DeleteRead(ctx context.Context) (int64, error) {
	const q = `DELETE FROM notifications WHERE is_read = true`
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	result, err := r.pool.Exec(ctx, q)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
