package service

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/skilltracker/skilltracker-api/internal/models"
	"github.com/skilltracker/skilltracker-api/internal/repository"
	appErrors "github.com/skilltracker/skilltracker-api/pkg/errors"
)

// CreateCommentRequest describes one comment under a content item.
type CreateCommentRequest struct {
	ContentID string `json:"content_id" validate:"required"`
	UserID    string `json:"user_id" validate:"required"`
	Text      string `json:"text" validate:"required"`
}

// CommentService posts comments and notifies the course manager, except
// when the manager comments under their own course.
type CommentService struct {
	store      *repository.Store
	dispatcher NotificationDispatcher
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewCommentService constructs CommentService.
func NewCommentService(store *repository.Store, validate *validator.Validate, logger *zap.Logger) *CommentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CommentService{store: store, validator: validate, logger: logger}
}

// Create posts one comment. The manager notification is written in the
// same transaction so a failed insert rolls the comment back too.
func (s *CommentService) Create(ctx context.Context, req CreateCommentRequest) (*models.Comment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid comment payload")
	}
	comment := &models.Comment{ContentID: req.ContentID, UserID: req.UserID, Text: req.Text}
	err := s.store.InTx(ctx, func(ctx context.Context, tx *repository.Tx) error {
		content, err := tx.Contents.FindByID(ctx, req.ContentID)
		if err != nil {
			if err == sql.ErrNoRows {
				return appErrors.NotFound("content")
			}
			return err
		}
		commenter, err := tx.Users.FindByID(ctx, req.UserID)
		if err != nil {
			if err == sql.ErrNoRows {
				return appErrors.NotFound("user")
			}
			return err
		}
		course, err := tx.Courses.FindByID(ctx, content.CourseID)
		if err != nil {
			return err
		}
		if err := tx.Comments.Create(ctx, comment); err != nil {
			return err
		}
		return s.dispatcher.CommentAdded(ctx, tx.Notifications, course, commenter)
	})
	if err != nil {
		return nil, normalize(err, "failed to create comment")
	}
	return comment, nil
}

// ListByContent returns the comments under a content item.
func (s *CommentService) ListByContent(ctx context.Context, contentID string) ([]models.Comment, error) {
	comments, err := s.store.Read().Comments.ListByContent(ctx, contentID)
	if err != nil {
		return nil, normalize(err, "failed to list comments")
	}
	return comments, nil
}
