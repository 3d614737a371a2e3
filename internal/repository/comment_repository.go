package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/skilltracker/skilltracker-api/internal/models"
)

// CommentRepository handles persistence of comments.
type CommentRepository struct {
	q sqlx.ExtContext
}

// NewCommentRepository constructs the repository.
func NewCommentRepository(q sqlx.ExtContext) *CommentRepository {
	return &CommentRepository{q: q}
}

// Create persists a new comment.
func (r *CommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if comment.ID == "" {
		comment.ID = uuid.NewString()
	}
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO comments (id, content_id, user_id, text, created_at)
        VALUES (:id, :content_id, :user_id, :text, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.q, query, comment); err != nil {
		return fmt.Errorf("create comment: %w", err)
	}
	return nil
}

// ListByContent returns the comments under a content item, oldest first.
func (r *CommentRepository) ListByContent(ctx context.Context, contentID string) ([]models.Comment, error) {
	const query = `SELECT id, content_id, user_id, text, created_at FROM comments WHERE content_id = $1 ORDER BY created_at`
	var comments []models.Comment
	if err := sqlx.SelectContext(ctx, r.q, &comments, query, contentID); err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return comments, nil
}

// DeleteByContent removes all comments under a content item.
func (r *CommentRepository) DeleteByContent(ctx context.Context, contentID string) error {
	const query = `DELETE FROM comments WHERE content_id = $1`
	if _, err := r.q.ExecContext(ctx, query, contentID); err != nil {
		return fmt.Errorf("delete content comments: %w", err)
	}
	return nil
}

// DeleteByUser removes all comments authored by a user.
func (r *CommentRepository) DeleteByUser(ctx context.Context, userID string) error {
	const query = `DELETE FROM comments WHERE user_id = $1`
	if _, err := r.q.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("delete user comments: %w", err)
	}
	return nil
}
