package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/skilltracker/skilltracker-api/internal/models"
)

// NotificationRepository handles persistence of notifications.
type NotificationRepository struct {
	q sqlx.ExtContext
}

// NewNotificationRepository constructs the repository.
func NewNotificationRepository(q sqlx.ExtContext) *NotificationRepository {
	return &NotificationRepository{q: q}
}

// Create appends one notification row. Runs inside the transaction of the
// mutation that produced the event.
func (r *NotificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	if notification.ID == "" {
		notification.ID = uuid.NewString()
	}
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO notifications (id, user_id, message, is_read, created_at)
        VALUES (:id, :user_id, :message, :is_read, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.q, query, notification); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}

// FindByID returns a notification by its ID.
func (r *NotificationRepository) FindByID(ctx context.Context, id string) (*models.Notification, error) {
	const query = `SELECT id, user_id, message, is_read, created_at FROM notifications WHERE id = $1`
	var notification models.Notification
	if err := sqlx.GetContext(ctx, r.q, &notification, query, id); err != nil {
		return nil, err
	}
	return &notification, nil
}

// ListByUser returns a user's notifications, newest first.
func (r *NotificationRepository) ListByUser(ctx context.Context, userID string) ([]models.Notification, error) {
	const query = `SELECT id, user_id, message, is_read, created_at FROM notifications WHERE user_id = $1 ORDER BY created_at DESC`
	var notifications []models.Notification
	if err := sqlx.SelectContext(ctx, r.q, &notifications, query, userID); err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return notifications, nil
}

// CountUnreadByUser returns the number of unread notifications.
func (r *NotificationRepository) CountUnreadByUser(ctx context.Context, userID string) (int, error) {
	const query = `SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND is_read = FALSE`
	var count int
	if err := sqlx.GetContext(ctx, r.q, &count, query, userID); err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return count, nil
}

// MarkRead flips the read flag.
func (r *NotificationRepository) MarkRead(ctx context.Context, id string) error {
	const query = `UPDATE notifications SET is_read = TRUE WHERE id = $1`
	if _, err := r.q.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	return nil
}

// DeleteByUser removes all notifications addressed to a user.
func (r *NotificationRepository) DeleteByUser(ctx context.Context, userID string) error {
	const query = `DELETE FROM notifications WHERE user_id = $1`
	if _, err := r.q.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("delete user notifications: %w", err)
	}
	return nil
}
