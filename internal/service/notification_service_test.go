package service

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/skilltracker/skilltracker-api/pkg/errors"
)

func notificationRows(id, userID string, read bool) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "user_id", "message", "is_read", "created_at"}).
		AddRow(id, userID, "hello", read, time.Now())
}

func TestCountUnreadFallsBackToDatabaseWithoutCache(t *testing.T) {
	store, mock, cleanup := newStoreMock(t)
	defer cleanup()

	svc := NewNotificationService(store, nil, nil, nil)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND is_read = FALSE")).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	count, err := svc.CountUnread(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkReadRejectsOtherUsersNotification(t *testing.T) {
	store, mock, cleanup := newStoreMock(t)
	defer cleanup()

	svc := NewNotificationService(store, nil, nil, nil)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM notifications WHERE id = $1")).
		WithArgs("n-1").
		WillReturnRows(notificationRows("n-1", "someone-else", false))
	mock.ExpectRollback()

	err := svc.MarkRead(context.Background(), "n-1", "user-1")
	assert.True(t, errors.Is(err, appErrors.ErrNotOwner))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkReadFlipsFlag(t *testing.T) {
	store, mock, cleanup := newStoreMock(t)
	defer cleanup()

	svc := NewNotificationService(store, nil, nil, nil)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM notifications WHERE id = $1")).
		WithArgs("n-1").
		WillReturnRows(notificationRows("n-1", "user-1", false))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE notifications SET is_read = TRUE")).
		WithArgs("n-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, svc.MarkRead(context.Background(), "n-1", "user-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkReadAlreadyReadIsNoOp(t *testing.T) {
	store, mock, cleanup := newStoreMock(t)
	defer cleanup()

	svc := NewNotificationService(store, nil, nil, nil)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM notifications WHERE id = $1")).
		WithArgs("n-1").
		WillReturnRows(notificationRows("n-1", "user-1", true))
	mock.ExpectCommit()

	require.NoError(t, svc.MarkRead(context.Background(), "n-1", "user-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUnreadCountCacheNilSafe(t *testing.T) {
	var cache *UnreadCountCache

	_, ok := cache.Get(context.Background(), "user-1")
	assert.False(t, ok)
	cache.Set(context.Background(), "user-1", 3)
	cache.Invalidate(context.Background(), "user-1")

	disabled := NewUnreadCountCache(nil, 0)
	_, ok = disabled.Get(context.Background(), "user-1")
	assert.False(t, ok)
}
