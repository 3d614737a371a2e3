package service

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skilltracker/skilltracker-api/internal/models"
	appErrors "github.com/skilltracker/skilltracker-api/pkg/errors"
)

func TestRoleRemovalKeepsLastRole(t *testing.T) {
	checker := InvariantChecker{}

	require.NoError(t, checker.RoleRemoval(1))
	require.NoError(t, checker.RoleRemoval(2))

	err := checker.RoleRemoval(0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrRoleRequired))
	assert.Equal(t, "User must have at least one role!", err.Error())
}

func TestCourseManagerRequiresManagerRole(t *testing.T) {
	checker := InvariantChecker{}

	require.NoError(t, checker.CourseManager([]models.RoleKind{models.RoleManager}))
	require.NoError(t, checker.CourseManager([]models.RoleKind{models.RoleEmployee, models.RoleManager}))

	err := checker.CourseManager([]models.RoleKind{models.RoleEmployee})
	assert.True(t, errors.Is(err, appErrors.ErrManagerRoleRequired))

	err = checker.CourseManager(nil)
	assert.True(t, errors.Is(err, appErrors.ErrManagerRoleRequired))
}

func TestEnrollmentEmployeeRequiresEmployeeRole(t *testing.T) {
	checker := InvariantChecker{}

	require.NoError(t, checker.EnrollmentEmployee([]models.RoleKind{models.RoleEmployee}))

	err := checker.EnrollmentEmployee([]models.RoleKind{models.RoleManager})
	assert.True(t, errors.Is(err, appErrors.ErrEmployeeRoleRequired))
}

func TestSelfEnrollmentForbidden(t *testing.T) {
	checker := InvariantChecker{}

	require.NoError(t, checker.SelfEnrollment("user-1", "user-2"))

	err := checker.SelfEnrollment("user-1", "user-1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrSelfEnrollmentForbidden))
	assert.Equal(t, "The manager cannot register for their own course!", err.Error())
}

func TestEnrollmentCourseProduced(t *testing.T) {
	checker := InvariantChecker{}

	require.NoError(t, checker.EnrollmentCourseProduced(&models.Course{IsProduced: true}))

	err := checker.EnrollmentCourseProduced(&models.Course{IsProduced: false})
	assert.True(t, errors.Is(err, appErrors.ErrCourseNotProduced))
}

func TestContentExclusivity(t *testing.T) {
	checker := InvariantChecker{}

	require.NoError(t, checker.ContentExclusivity(true, false))
	require.NoError(t, checker.ContentExclusivity(false, true))

	err := checker.ContentExclusivity(true, true)
	assert.True(t, errors.Is(err, appErrors.ErrContentTypeAmbiguous))

	err = checker.ContentExclusivity(false, false)
	assert.True(t, errors.Is(err, appErrors.ErrContentTypeMissing))
}

func TestCourseDeadlineOrdering(t *testing.T) {
	checker := InvariantChecker{}
	early := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	late := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, checker.CourseDeadline(nil, &late))
	require.NoError(t, checker.CourseDeadline(&late, nil))
	require.NoError(t, checker.CourseDeadline(&late, &early))
	require.NoError(t, checker.CourseDeadline(&late, &late))

	err := checker.CourseDeadline(&early, &late)
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrDeadlineTooEarly))
	assert.Contains(t, err.Error(), "Course deadline (2026-03-01T00:00:00Z) cannot be earlier than latest content deadline (2026-06-01T00:00:00Z)!")
}

func TestContentDeadlineOrdering(t *testing.T) {
	checker := InvariantChecker{}
	early := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	late := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, checker.ContentDeadline(&early, &late))
	require.NoError(t, checker.ContentDeadline(nil, &late))
	require.NoError(t, checker.ContentDeadline(&late, nil))

	err := checker.ContentDeadline(&late, &early)
	assert.True(t, errors.Is(err, appErrors.ErrDeadlineTooEarly))
}
