package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/skilltracker/skilltracker-api/internal/models"
	"github.com/skilltracker/skilltracker-api/internal/repository"
	appErrors "github.com/skilltracker/skilltracker-api/pkg/errors"
)

// TaskPayload is the task side of the content variant.
type TaskPayload struct {
	Question string `json:"question" validate:"required,max=200"`
	Answer   string `json:"answer" validate:"required,max=200"`
}

// TheoryPayload is the theory side of the content variant.
type TheoryPayload struct {
	Text string `json:"text" validate:"required"`
}

// CreateContentRequest describes content creation. Exactly one payload
// must be present; the invariant checker rejects the rest.
type CreateContentRequest struct {
	CourseID string         `json:"course_id" validate:"required"`
	Title    string         `json:"title" validate:"required,max=200"`
	Deadline *time.Time     `json:"deadline,omitempty"`
	Task     *TaskPayload   `json:"task,omitempty"`
	Theory   *TheoryPayload `json:"theory,omitempty"`
}

// ContentService orchestrates course content: the tagged task/theory
// variant, draft-only creation, guarded updates, and cascading deletion.
type ContentService struct {
	store     *repository.Store
	checker   InvariantChecker
	guard     LifecycleGuard
	cascade   CascadeOrchestrator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewContentService constructs ContentService.
func NewContentService(store *repository.Store, validate *validator.Validate, logger *zap.Logger) *ContentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContentService{store: store, validator: validate, logger: logger}
}

// Create adds one content item to a draft course.
func (s *ContentService) Create(ctx context.Context, req CreateContentRequest) (*models.ContentDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid content payload")
	}
	if err := s.checker.ContentExclusivity(req.Task != nil, req.Theory != nil); err != nil {
		return nil, err
	}

	detail := &models.ContentDetail{}
	err := s.store.InTx(ctx, func(ctx context.Context, tx *repository.Tx) error {
		course, err := tx.Courses.FindByIDForUpdate(ctx, req.CourseID)
		if err != nil {
			if err == sql.ErrNoRows {
				return appErrors.NotFound("course")
			}
			return err
		}
		if err := s.guard.CheckContentCreate(course); err != nil {
			return err
		}
		if err := s.checker.ContentDeadline(req.Deadline, course.Deadline); err != nil {
			return err
		}

		content := models.Content{
			CourseID: req.CourseID,
			Title:    req.Title,
			Deadline: req.Deadline,
		}
		if req.Task != nil {
			task := &models.Task{Question: req.Task.Question, Answer: req.Task.Answer}
			if err := tx.Contents.CreateTask(ctx, task); err != nil {
				return err
			}
			content.TaskID = &task.ID
			detail.Task = task
		} else {
			theory := &models.Theory{Text: req.Theory.Text}
			if err := tx.Contents.CreateTheory(ctx, theory); err != nil {
				return err
			}
			content.TheoryID = &theory.ID
			detail.Theory = theory
		}
		if err := tx.Contents.Create(ctx, &content); err != nil {
			return err
		}
		detail.Content = content
		return nil
	})
	if err != nil {
		return nil, normalize(err, "failed to create content")
	}
	return detail, nil
}

// Update applies a partial content update, subject to the lifecycle guard.
// Payload edits must match the content's variant.
func (s *ContentService) Update(ctx context.Context, contentID string, update models.ContentUpdate) (*models.Content, error) {
	if update.Task != nil && update.Theory != nil {
		return nil, appErrors.ErrContentTypeAmbiguous
	}
	var content *models.Content
	err := s.store.InTx(ctx, func(ctx context.Context, tx *repository.Tx) error {
		var err error
		content, err = tx.Contents.FindByID(ctx, contentID)
		if err != nil {
			if err == sql.ErrNoRows {
				return appErrors.NotFound("content")
			}
			return err
		}
		course, err := tx.Courses.FindByIDForUpdate(ctx, content.CourseID)
		if err != nil {
			return err
		}
		if err := s.guard.CheckContentUpdate(course, update); err != nil {
			return err
		}
		if update.Deadline != nil {
			if err := s.checker.ContentDeadline(update.Deadline, course.Deadline); err != nil {
				return err
			}
		}
		if update.Task != nil {
			if content.TaskID == nil {
				return appErrors.Clone(appErrors.ErrValidation, "content does not wrap a task")
			}
			task := *update.Task
			task.ID = *content.TaskID
			if err := tx.Contents.UpdateTask(ctx, &task); err != nil {
				return err
			}
		}
		if update.Theory != nil {
			if content.TheoryID == nil {
				return appErrors.Clone(appErrors.ErrValidation, "content does not wrap a theory")
			}
			theory := *update.Theory
			theory.ID = *content.TheoryID
			if err := tx.Contents.UpdateTheory(ctx, &theory); err != nil {
				return err
			}
		}
		if err := tx.Contents.Update(ctx, contentID, update); err != nil {
			return err
		}
		content, err = tx.Contents.FindByID(ctx, contentID)
		return err
	})
	if err != nil {
		return nil, normalize(err, "failed to update content")
	}
	return content, nil
}

// Delete removes one content item with its comments, status rows, and
// owned payload.
func (s *ContentService) Delete(ctx context.Context, contentID string) error {
	err := s.store.InTx(ctx, func(ctx context.Context, tx *repository.Tx) error {
		content, err := tx.Contents.FindByID(ctx, contentID)
		if err != nil {
			if err == sql.ErrNoRows {
				return appErrors.NotFound("content")
			}
			return err
		}
		return s.cascade.DeleteContent(ctx, tx, content)
	})
	return normalize(err, "failed to delete content")
}

// FindByID loads one content item with its payload.
func (s *ContentService) FindByID(ctx context.Context, id string) (*models.ContentDetail, error) {
	read := s.store.Read()
	content, err := read.Contents.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NotFound("content")
		}
		return nil, normalize(err, "failed to load content")
	}
	detail := &models.ContentDetail{Content: *content}
	if content.TaskID != nil {
		if detail.Task, err = read.Contents.FindTask(ctx, *content.TaskID); err != nil {
			return nil, normalize(err, "failed to load task")
		}
	}
	if content.TheoryID != nil {
		if detail.Theory, err = read.Contents.FindTheory(ctx, *content.TheoryID); err != nil {
			return nil, normalize(err, "failed to load theory")
		}
	}
	return detail, nil
}

// ListByCourse returns the content rows of a course.
func (s *ContentService) ListByCourse(ctx context.Context, courseID string) ([]models.Content, error) {
	contents, err := s.store.Read().Contents.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, normalize(err, "failed to list contents")
	}
	return contents, nil
}
