package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"

	appErrors "github.com/skilltracker/skilltracker-api/pkg/errors"
)

// Store opens transactions against the entity store. Every mutation runs
// its whole pipeline (checks, writes, derivations, notifications) inside
// one InTx call; a commit-race loser is retried once before surfacing
// CONSTRAINT_VIOLATION.
type Store struct {
	db      *sqlx.DB
	logger  *zap.Logger
	onRetry func()
}

// NewStore constructs the Store.
func NewStore(db *sqlx.DB, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{db: db, logger: logger}
}

// OnRetry installs a hook invoked once per transaction retry. Used for
// instrumentation.
func (s *Store) OnRetry(hook func()) {
	s.onRetry = hook
}

// Tx bundles the repositories bound to a single execution context, either
// one transaction or the bare connection pool for read-only paths.
type Tx struct {
	Users         *UserRepository
	Courses       *CourseRepository
	Contents      *ContentRepository
	Enrollments   *EnrollmentRepository
	Comments      *CommentRepository
	Notifications *NotificationRepository
}

func newTx(q sqlx.ExtContext) *Tx {
	return &Tx{
		Users:         NewUserRepository(q),
		Courses:       NewCourseRepository(q),
		Contents:      NewContentRepository(q),
		Enrollments:   NewEnrollmentRepository(q),
		Comments:      NewCommentRepository(q),
		Notifications: NewNotificationRepository(q),
	}
}

// Read returns repositories bound to the connection pool for single-query
// read paths that need no transaction.
func (s *Store) Read() *Tx {
	return newTx(s.db)
}

// InTx runs fn inside a serializable transaction. On a serialization
// failure or unique violation the unit of work is retried once from the
// top; a second loss surfaces as CONSTRAINT_VIOLATION.
func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context, tx *Tx) error) error {
	err := s.attempt(ctx, fn)
	if err == nil || !retryable(err) {
		return err
	}

	s.logger.Warn("transaction conflict, retrying", zap.Error(err))
	if s.onRetry != nil {
		s.onRetry()
	}

	if err := s.attempt(ctx, fn); err != nil {
		if retryable(err) {
			return appErrors.Wrap(err, appErrors.ErrConstraintViolation.Code,
				appErrors.ErrConstraintViolation.Status, appErrors.ErrConstraintViolation.Message)
		}
		return err
	}
	return nil
}

func (s *Store) attempt(ctx context.Context, fn func(ctx context.Context, tx *Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(ctx, newTx(tx)); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// retryable reports whether the error is a commit race that logical checks
// cannot prevent: serialization_failure or unique_violation.
func retryable(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return pqErr.Code == "40001" || pqErr.Code == "23505"
}
