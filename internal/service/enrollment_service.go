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

// EnrollRequest describes an employee signing up for a course.
type EnrollRequest struct {
	CourseID   string `json:"course_id" validate:"required"`
	EmployeeID string `json:"employee_id" validate:"required"`
}

// EnrollmentService owns the enrollment lifecycle: sign-up with status
// seeding, per-content status transitions, and the completion derivation
// that fires the completion notification pair exactly once.
type EnrollmentService struct {
	store      *repository.Store
	checker    InvariantChecker
	calculator CompletionCalculator
	dispatcher NotificationDispatcher
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewEnrollmentService constructs EnrollmentService.
func NewEnrollmentService(store *repository.Store, validate *validator.Validate, logger *zap.Logger) *EnrollmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{store: store, validator: validate, logger: logger}
}

// Enroll signs an employee up for a produced course. One pending status row
// is seeded per existing content, and the course manager is notified in the
// same transaction.
func (s *EnrollmentService) Enroll(ctx context.Context, req EnrollRequest) (*models.Enrollment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid enrollment payload")
	}
	enrollment := &models.Enrollment{CourseID: req.CourseID, EmployeeID: req.EmployeeID}
	err := s.store.InTx(ctx, func(ctx context.Context, tx *repository.Tx) error {
		course, err := tx.Courses.FindByID(ctx, req.CourseID)
		if err != nil {
			if err == sql.ErrNoRows {
				return appErrors.NotFound("course")
			}
			return err
		}
		if err := s.checker.EnrollmentCourseProduced(course); err != nil {
			return err
		}
		if err := s.checker.SelfEnrollment(req.EmployeeID, course.ManagerID); err != nil {
			return err
		}
		employee, err := tx.Users.FindByID(ctx, req.EmployeeID)
		if err != nil {
			if err == sql.ErrNoRows {
				return appErrors.NotFound("user")
			}
			return err
		}
		roles, err := tx.Users.ListRoles(ctx, req.EmployeeID)
		if err != nil {
			return err
		}
		if err := s.checker.EnrollmentEmployee(roles); err != nil {
			return err
		}
		exists, err := tx.Enrollments.Exists(ctx, req.CourseID, req.EmployeeID)
		if err != nil {
			return err
		}
		if exists {
			return appErrors.Clone(appErrors.ErrConstraintViolation, "employee is already enrolled in this course")
		}
		if err := tx.Enrollments.Create(ctx, enrollment); err != nil {
			return err
		}
		contents, err := tx.Contents.ListByCourse(ctx, req.CourseID)
		if err != nil {
			return err
		}
		for _, content := range contents {
			status := models.EnrollmentContentStatus{
				EnrollmentID: enrollment.ID,
				ContentID:    content.ID,
			}
			if err := tx.Enrollments.CreateStatus(ctx, &status); err != nil {
				return err
			}
		}
		return s.dispatcher.EmployeeEnrolled(ctx, tx.Notifications, course, employee)
	})
	if err != nil {
		return nil, normalize(err, "failed to enroll employee")
	}
	return enrollment, nil
}

// UpdateContentStatus transitions one status row and re-derives completion.
// Completion is monotonic: once an enrollment is completed the derivation
// never runs again, so the notification pair fires at most once.
func (s *EnrollmentService) UpdateContentStatus(ctx context.Context, enrollmentID, contentID string, status models.ContentStatus) (*models.EnrollmentContentStatus, error) {
	if !status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown content status")
	}
	var updated *models.EnrollmentContentStatus
	err := s.store.InTx(ctx, func(ctx context.Context, tx *repository.Tx) error {
		enrollment, err := tx.Enrollments.FindByIDForUpdate(ctx, enrollmentID)
		if err != nil {
			if err == sql.ErrNoRows {
				return appErrors.NotFound("enrollment")
			}
			return err
		}
		if _, err := tx.Enrollments.FindStatus(ctx, enrollmentID, contentID); err != nil {
			if err == sql.ErrNoRows {
				return appErrors.NotFound("content status")
			}
			return err
		}
		if err := tx.Enrollments.UpdateStatus(ctx, enrollmentID, contentID, status); err != nil {
			return err
		}
		if updated, err = tx.Enrollments.FindStatus(ctx, enrollmentID, contentID); err != nil {
			return err
		}
		if enrollment.IsCompleted {
			return nil
		}
		total, done, err := tx.Enrollments.CountStatuses(ctx, enrollmentID)
		if err != nil {
			return err
		}
		course, err := tx.Courses.FindByID(ctx, enrollment.CourseID)
		if err != nil {
			return err
		}
		if !s.calculator.Passed(done, total, course.PassingPercent) {
			return nil
		}
		if err := tx.Enrollments.MarkCompleted(ctx, enrollmentID); err != nil {
			return err
		}
		employee, err := tx.Users.FindByID(ctx, enrollment.EmployeeID)
		if err != nil {
			return err
		}
		s.logger.Info("enrollment completed",
			zap.String("enrollment_id", enrollmentID),
			zap.String("course_id", course.ID),
		)
		return s.dispatcher.EnrollmentCompleted(ctx, tx.Notifications, course, employee)
	})
	if err != nil {
		return nil, normalize(err, "failed to update content status")
	}
	return updated, nil
}

// Delete removes an enrollment together with its status rows.
func (s *EnrollmentService) Delete(ctx context.Context, enrollmentID string) error {
	err := s.store.InTx(ctx, func(ctx context.Context, tx *repository.Tx) error {
		if _, err := tx.Enrollments.FindByID(ctx, enrollmentID); err != nil {
			if err == sql.ErrNoRows {
				return appErrors.NotFound("enrollment")
			}
			return err
		}
		if err := tx.Enrollments.DeleteStatusesByEnrollment(ctx, enrollmentID); err != nil {
			return err
		}
		return tx.Enrollments.Delete(ctx, enrollmentID)
	})
	return normalize(err, "failed to delete enrollment")
}

// FindByID loads one enrollment.
func (s *EnrollmentService) FindByID(ctx context.Context, id string) (*models.Enrollment, error) {
	enrollment, err := s.store.Read().Enrollments.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NotFound("enrollment")
		}
		return nil, normalize(err, "failed to load enrollment")
	}
	return enrollment, nil
}

// ListByCourse returns a course's enrollments.
func (s *EnrollmentService) ListByCourse(ctx context.Context, courseID string) ([]models.Enrollment, error) {
	enrollments, err := s.store.Read().Enrollments.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, normalize(err, "failed to list enrollments")
	}
	return enrollments, nil
}

// ListByEmployee returns an employee's enrollments.
func (s *EnrollmentService) ListByEmployee(ctx context.Context, employeeID string) ([]models.Enrollment, error) {
	enrollments, err := s.store.Read().Enrollments.ListByEmployee(ctx, employeeID)
	if err != nil {
		return nil, normalize(err, "failed to list enrollments")
	}
	return enrollments, nil
}

// Statuses returns the per-content status rows of an enrollment.
func (s *EnrollmentService) Statuses(ctx context.Context, enrollmentID string) ([]models.EnrollmentContentStatus, error) {
	statuses, err := s.store.Read().Enrollments.ListStatuses(ctx, enrollmentID)
	if err != nil {
		return nil, normalize(err, "failed to list content statuses")
	}
	return statuses, nil
}
