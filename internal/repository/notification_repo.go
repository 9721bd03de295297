package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"lms-backend/internal/model"
	"lms-backend/pkg/apierror"
)

type NotificationRepository struct {
	pool *pgxpool.Pool
}

func NewNotificationRepository(pool *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{pool: pool}
}

func (r *NotificationRepository) Create(ctx context.Context, n model.Notification) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO notifications (id, user_id, title, message, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		n.ID, n.UserID, n.Title, n.Message, n.Status, n.CreatedAt)
	if err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}

func (r *NotificationRepository) FindByID(ctx context.Context, id string) (model.Notification, error) {
	var n model.Notification
	err := r.pool.QueryRow(ctx,
		`SELECT id, user_id, title, message, status, created_at FROM notifications WHERE id = $1`, id).
		Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &n.Status, &n.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Notification{}, apierror.NotFound("Notification not found")
	}
	if err != nil {
		return model.Notification{}, fmt.Errorf("find notification: %w", err)
	}
	return n, nil
}

func (r *NotificationRepository) UpdateStatus(ctx context.Context, id string, status string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE notifications SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("update notification status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apierror.NotFound("Notification not found")
	}
	return nil
}

func (r *NotificationRepository) List(ctx context.Context) ([]model.Notification, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, title, message, status, created_at FROM notifications ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	notifications := make([]model.Notification, 0)
	for rows.Next() {
		var n model.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &n.Status, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}
