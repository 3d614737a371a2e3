package service

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"github.com/skilltracker/skilltracker-api/internal/models"
	"github.com/skilltracker/skilltracker-api/internal/repository"
	appErrors "github.com/skilltracker/skilltracker-api/pkg/errors"
)

// NotificationService reads the notification feed. Rows are only ever
// written by the dispatcher inside mutation transactions; this service
// covers listing, the unread counter, and marking rows read.
type NotificationService struct {
	store   *repository.Store
	cache   *UnreadCountCache
	metrics *MetricsService
	logger  *zap.Logger
}

// NewNotificationService constructs NotificationService. cache and metrics
// may be nil.
func NewNotificationService(store *repository.Store, cache *UnreadCountCache, metrics *MetricsService, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{store: store, cache: cache, metrics: metrics, logger: logger}
}

// ListByUser returns a user's notifications, newest first.
func (s *NotificationService) ListByUser(ctx context.Context, userID string) ([]models.Notification, error) {
	notifications, err := s.store.Read().Notifications.ListByUser(ctx, userID)
	if err != nil {
		return nil, normalize(err, "failed to list notifications")
	}
	return notifications, nil
}

// CountUnread returns the unread counter, served from the cache when warm.
func (s *NotificationService) CountUnread(ctx context.Context, userID string) (int, error) {
	if count, ok := s.cache.Get(ctx, userID); ok {
		s.metrics.RecordCacheLookup(true)
		return count, nil
	}
	s.metrics.RecordCacheLookup(false)
	count, err := s.store.Read().Notifications.CountUnreadByUser(ctx, userID)
	if err != nil {
		return 0, normalize(err, "failed to count unread notifications")
	}
	s.cache.Set(ctx, userID, count)
	return count, nil
}

// MarkRead flips one notification's read flag. Only the addressee may do
// so.
func (s *NotificationService) MarkRead(ctx context.Context, notificationID, userID string) error {
	err := s.store.InTx(ctx, func(ctx context.Context, tx *repository.Tx) error {
		notification, err := tx.Notifications.FindByID(ctx, notificationID)
		if err != nil {
			if err == sql.ErrNoRows {
				return appErrors.NotFound("notification")
			}
			return err
		}
		if notification.UserID != userID {
			return appErrors.ErrNotOwner
		}
		if notification.IsRead {
			return nil
		}
		return tx.Notifications.MarkRead(ctx, notificationID)
	})
	if err != nil {
		return normalize(err, "failed to mark notification read")
	}
	s.cache.Invalidate(ctx, userID)
	return nil
}
