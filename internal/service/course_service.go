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

// CreateCourseRequest describes course creation.
type CreateCourseRequest struct {
	ManagerID      string     `json:"manager_id" validate:"required"`
	Title          string     `json:"title" validate:"required,max=200"`
	Description    string     `json:"description"`
	Deadline       *time.Time `json:"deadline,omitempty"`
	PassingPercent int        `json:"passing_percent" validate:"gte=0,lte=100"`
}

// CourseService orchestrates the course lifecycle: creation, the one-way
// produce transition, restricted updates, and cascading deletion.
type CourseService struct {
	store      *repository.Store
	checker    InvariantChecker
	guard      LifecycleGuard
	dispatcher NotificationDispatcher
	cascade    CascadeOrchestrator
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewCourseService constructs CourseService.
func NewCourseService(store *repository.Store, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{store: store, validator: validate, logger: logger}
}

// Create registers a draft course owned by a manager-role user.
func (s *CourseService) Create(ctx context.Context, req CreateCourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}
	course := &models.Course{
		Title:          req.Title,
		Description:    req.Description,
		Deadline:       req.Deadline,
		PassingPercent: req.PassingPercent,
		ManagerID:      req.ManagerID,
	}
	err := s.store.InTx(ctx, func(ctx context.Context, tx *repository.Tx) error {
		if _, err := tx.Users.FindByID(ctx, req.ManagerID); err != nil {
			if err == sql.ErrNoRows {
				return appErrors.NotFound("user")
			}
			return err
		}
		roles, err := tx.Users.ListRoles(ctx, req.ManagerID)
		if err != nil {
			return err
		}
		if err := s.checker.CourseManager(roles); err != nil {
			return err
		}
		return tx.Courses.Create(ctx, course)
	})
	if err != nil {
		return nil, normalize(err, "failed to create course")
	}
	return course, nil
}

// Produce flips the course from draft to produced and notifies the
// manager. Producing an already-produced course is a no-op and never
// re-notifies. callerID, when set, must match the owning manager.
func (s *CourseService) Produce(ctx context.Context, courseID, callerID string) (*models.Course, error) {
	var course *models.Course
	err := s.store.InTx(ctx, func(ctx context.Context, tx *repository.Tx) error {
		var err error
		course, err = tx.Courses.FindByIDForUpdate(ctx, courseID)
		if err != nil {
			if err == sql.ErrNoRows {
				return appErrors.NotFound("course")
			}
			return err
		}
		if callerID != "" && course.ManagerID != callerID {
			return appErrors.ErrNotOwner
		}
		if !s.guard.Produce(course) {
			return nil
		}
		if err := tx.Courses.MarkProduced(ctx, courseID); err != nil {
			return err
		}
		course.IsProduced = true
		return s.dispatcher.CourseProduced(ctx, tx.Notifications, course)
	})
	if err != nil {
		return nil, normalize(err, "failed to produce course")
	}
	return course, nil
}

// Update applies a partial update, subject to the lifecycle guard and the
// deadline-ordering invariant.
func (s *CourseService) Update(ctx context.Context, courseID, callerID string, update models.CourseUpdate) (*models.Course, error) {
	if err := s.validator.Struct(update); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course update")
	}
	var course *models.Course
	err := s.store.InTx(ctx, func(ctx context.Context, tx *repository.Tx) error {
		var err error
		course, err = tx.Courses.FindByIDForUpdate(ctx, courseID)
		if err != nil {
			if err == sql.ErrNoRows {
				return appErrors.NotFound("course")
			}
			return err
		}
		if callerID != "" && course.ManagerID != callerID {
			return appErrors.ErrNotOwner
		}
		if err := s.guard.CheckCourseUpdate(course, update); err != nil {
			return err
		}
		if update.Deadline != nil {
			latest, err := tx.Contents.MaxDeadlineByCourse(ctx, courseID)
			if err != nil {
				return err
			}
			if err := s.checker.CourseDeadline(update.Deadline, latest); err != nil {
				return err
			}
		}
		if err := tx.Courses.Update(ctx, courseID, update); err != nil {
			return err
		}
		course, err = tx.Courses.FindByID(ctx, courseID)
		return err
	})
	if err != nil {
		return nil, normalize(err, "failed to update course")
	}
	return course, nil
}

// Delete removes a course with all dependents and notifies the manager.
func (s *CourseService) Delete(ctx context.Context, courseID, callerID string) error {
	err := s.store.InTx(ctx, func(ctx context.Context, tx *repository.Tx) error {
		course, err := tx.Courses.FindByIDForUpdate(ctx, courseID)
		if err != nil {
			if err == sql.ErrNoRows {
				return appErrors.NotFound("course")
			}
			return err
		}
		if callerID != "" && course.ManagerID != callerID {
			return appErrors.ErrNotOwner
		}
		return s.cascade.DeleteCourse(ctx, tx, course, true)
	})
	return normalize(err, "failed to delete course")
}

// FindByID loads one course.
func (s *CourseService) FindByID(ctx context.Context, id string) (*models.Course, error) {
	course, err := s.store.Read().Courses.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NotFound("course")
		}
		return nil, normalize(err, "failed to load course")
	}
	return course, nil
}

// ListByManager returns the courses a manager owns.
func (s *CourseService) ListByManager(ctx context.Context, managerID string) ([]models.Course, error) {
	courses, err := s.store.Read().Courses.ListByManager(ctx, managerID)
	if err != nil {
		return nil, normalize(err, "failed to list courses")
	}
	return courses, nil
}
