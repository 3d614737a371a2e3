package service

import (
	"time"

	"github.com/skilltracker/skilltracker-api/internal/models"
	appErrors "github.com/skilltracker/skilltracker-api/pkg/errors"
)

// InvariantChecker validates proposed mutations against the role,
// exclusivity, and deadline rules before anything is written. Each check
// judges the state as it would exist after the mutation: callers load the
// related rows inside the surrounding transaction and pass them in, so the
// checker itself stays pure and testable without a database.
type InvariantChecker struct{}

// RoleRemoval rejects a role deletion that would leave the user with zero
// roles.
func (InvariantChecker) RoleRemoval(remaining int) error {
	if remaining < 1 {
		return appErrors.ErrRoleRequired
	}
	return nil
}

// CourseManager requires the prospective owner to hold the manager role.
func (InvariantChecker) CourseManager(roles []models.RoleKind) error {
	if !hasRole(roles, models.RoleManager) {
		return appErrors.ErrManagerRoleRequired
	}
	return nil
}

// EnrollmentEmployee requires the enrollee to hold the employee role.
func (InvariantChecker) EnrollmentEmployee(roles []models.RoleKind) error {
	if !hasRole(roles, models.RoleEmployee) {
		return appErrors.ErrEmployeeRoleRequired
	}
	return nil
}

// SelfEnrollment rejects a manager enrolling in their own course,
// regardless of which roles they hold.
func (InvariantChecker) SelfEnrollment(employeeID, managerID string) error {
	if employeeID == managerID {
		return appErrors.ErrSelfEnrollmentForbidden
	}
	return nil
}

// EnrollmentCourseProduced permits enrollments only into produced courses.
func (InvariantChecker) EnrollmentCourseProduced(course *models.Course) error {
	if !course.IsProduced {
		return appErrors.ErrCourseNotProduced
	}
	return nil
}

// ContentExclusivity requires exactly one of the task/theory payloads.
func (InvariantChecker) ContentExclusivity(hasTask, hasTheory bool) error {
	switch {
	case hasTask && hasTheory:
		return appErrors.ErrContentTypeAmbiguous
	case !hasTask && !hasTheory:
		return appErrors.ErrContentTypeMissing
	}
	return nil
}

// CourseDeadline rejects a course deadline earlier than the latest content
// deadline. The error carries both timestamps.
func (InvariantChecker) CourseDeadline(proposed, latestContent *time.Time) error {
	if proposed == nil || latestContent == nil {
		return nil
	}
	if proposed.Before(*latestContent) {
		return appErrors.DeadlineTooEarly(*proposed, *latestContent)
	}
	return nil
}

// ContentDeadline is the symmetric check on content writes: a content
// deadline must not pass the course deadline, or the course-level ordering
// invariant would silently break.
func (InvariantChecker) ContentDeadline(contentDeadline, courseDeadline *time.Time) error {
	if contentDeadline == nil || courseDeadline == nil {
		return nil
	}
	if courseDeadline.Before(*contentDeadline) {
		return appErrors.DeadlineTooEarly(*courseDeadline, *contentDeadline)
	}
	return nil
}

func hasRole(roles []models.RoleKind, kind models.RoleKind) bool {
	for _, role := range roles {
		if role == kind {
			return true
		}
	}
	return false
}
