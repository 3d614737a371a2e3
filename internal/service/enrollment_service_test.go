package service

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/skilltracker/skilltracker-api/internal/models"
	"github.com/skilltracker/skilltracker-api/internal/repository"
	appErrors "github.com/skilltracker/skilltracker-api/pkg/errors"
)

func newStoreMock(t *testing.T) (*repository.Store, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return repository.NewStore(sqlx.NewDb(db, "sqlmock"), zap.NewNop()), mock, func() { db.Close() }
}

func courseRows(id, title string, produced bool, managerID string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "title", "description", "deadline", "passing_percent", "is_produced", "manager_id", "created_at"}).
		AddRow(id, title, "", nil, 75, produced, managerID, time.Now())
}

func userRows(id, username string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "given_name", "family_name", "username", "password_hash", "created_at"}).
		AddRow(id, "Jane", "Doe", username, "x", time.Now())
}

func TestEnrollSeedsStatusesAndNotifiesManager(t *testing.T) {
	store, mock, cleanup := newStoreMock(t)
	defer cleanup()

	svc := NewEnrollmentService(store, nil, nil)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, title, description, deadline, passing_percent, is_produced, manager_id, created_at FROM courses WHERE id = $1")).
		WithArgs("course-1").
		WillReturnRows(courseRows("course-1", "Go Basics", true, "manager-1"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, given_name, family_name, username, password_hash, created_at FROM users WHERE id = $1")).
		WithArgs("employee-1").
		WillReturnRows(userRows("employee-1", "jdoe"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT role FROM user_roles WHERE user_id = $1")).
		WithArgs("employee-1").
		WillReturnRows(sqlmock.NewRows([]string{"role"}).AddRow("employee"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM course_employees WHERE course_id = $1 AND employee_id = $2")).
		WithArgs("course-1", "employee-1").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO course_employees")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, course_id, title, deadline, created_at, task_id, theory_id FROM contents WHERE course_id = $1")).
		WithArgs("course-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "course_id", "title", "deadline", "created_at", "task_id", "theory_id"}).
			AddRow("content-1", "course-1", "Intro", nil, time.Now(), "task-1", nil).
			AddRow("content-2", "course-1", "Theory", nil, time.Now(), nil, "theory-1"))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO course_employee_contents")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO course_employee_contents")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO notifications")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	enrollment, err := svc.Enroll(context.Background(), EnrollRequest{CourseID: "course-1", EmployeeID: "employee-1"})
	require.NoError(t, err)
	assert.NotEmpty(t, enrollment.ID)
	assert.False(t, enrollment.IsCompleted)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollRejectsUnproducedCourse(t *testing.T) {
	store, mock, cleanup := newStoreMock(t)
	defer cleanup()

	svc := NewEnrollmentService(store, nil, nil)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, title, description, deadline, passing_percent, is_produced, manager_id, created_at FROM courses WHERE id = $1")).
		WithArgs("course-1").
		WillReturnRows(courseRows("course-1", "Go Basics", false, "manager-1"))
	mock.ExpectRollback()

	_, err := svc.Enroll(context.Background(), EnrollRequest{CourseID: "course-1", EmployeeID: "employee-1"})
	assert.True(t, errors.Is(err, appErrors.ErrCourseNotProduced))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollRejectsManagerSelfEnrollment(t *testing.T) {
	store, mock, cleanup := newStoreMock(t)
	defer cleanup()

	svc := NewEnrollmentService(store, nil, nil)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM courses WHERE id = $1")).
		WithArgs("course-1").
		WillReturnRows(courseRows("course-1", "Go Basics", true, "manager-1"))
	mock.ExpectRollback()

	_, err := svc.Enroll(context.Background(), EnrollRequest{CourseID: "course-1", EmployeeID: "manager-1"})
	assert.True(t, errors.Is(err, appErrors.ErrSelfEnrollmentForbidden))
	require.NoError(t, mock.ExpectationsWereMet())
}

func statusRows(id, enrollmentID, contentID string, status models.ContentStatus) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "course_employee_id", "content_id", "status", "updated_at"}).
		AddRow(id, enrollmentID, contentID, string(status), time.Now())
}

func enrollmentRows(id string, completed bool) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "course_id", "employee_id", "is_completed", "assigned_at"}).
		AddRow(id, "course-1", "employee-1", completed, time.Now())
}

func TestStatusUpdateCrossingThresholdCompletesOnce(t *testing.T) {
	store, mock, cleanup := newStoreMock(t)
	defer cleanup()

	svc := NewEnrollmentService(store, nil, nil)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM course_employees WHERE id = $1 FOR UPDATE")).
		WithArgs("enroll-1").
		WillReturnRows(enrollmentRows("enroll-1", false))
	mock.ExpectQuery(regexp.QuoteMeta("FROM course_employee_contents WHERE course_employee_id = $1 AND content_id = $2")).
		WithArgs("enroll-1", "content-2").
		WillReturnRows(statusRows("status-2", "enroll-1", "content-2", models.StatusPending))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE course_employee_contents SET status = $3")).
		WithArgs("enroll-1", "content-2", models.StatusDone, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM course_employee_contents WHERE course_employee_id = $1 AND content_id = $2")).
		WithArgs("enroll-1", "content-2").
		WillReturnRows(statusRows("status-2", "enroll-1", "content-2", models.StatusDone))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*), COUNT(*) FILTER (WHERE status = 'done') FROM course_employee_contents")).
		WithArgs("enroll-1").
		WillReturnRows(sqlmock.NewRows([]string{"count", "count"}).AddRow(2, 2))
	mock.ExpectQuery(regexp.QuoteMeta("FROM courses WHERE id = $1")).
		WithArgs("course-1").
		WillReturnRows(courseRows("course-1", "Go Basics", true, "manager-1"))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE course_employees SET is_completed = TRUE")).
		WithArgs("enroll-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = $1")).
		WithArgs("employee-1").
		WillReturnRows(userRows("employee-1", "jdoe"))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO notifications")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO notifications")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	status, err := svc.UpdateContentStatus(context.Background(), "enroll-1", "content-2", models.StatusDone)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDone, status.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStatusUpdateBelowThresholdDoesNotComplete(t *testing.T) {
	store, mock, cleanup := newStoreMock(t)
	defer cleanup()

	svc := NewEnrollmentService(store, nil, nil)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM course_employees WHERE id = $1 FOR UPDATE")).
		WithArgs("enroll-1").
		WillReturnRows(enrollmentRows("enroll-1", false))
	mock.ExpectQuery(regexp.QuoteMeta("FROM course_employee_contents WHERE course_employee_id = $1 AND content_id = $2")).
		WithArgs("enroll-1", "content-1").
		WillReturnRows(statusRows("status-1", "enroll-1", "content-1", models.StatusPending))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE course_employee_contents SET status = $3")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM course_employee_contents WHERE course_employee_id = $1 AND content_id = $2")).
		WithArgs("enroll-1", "content-1").
		WillReturnRows(statusRows("status-1", "enroll-1", "content-1", models.StatusDone))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*), COUNT(*) FILTER (WHERE status = 'done') FROM course_employee_contents")).
		WithArgs("enroll-1").
		WillReturnRows(sqlmock.NewRows([]string{"count", "count"}).AddRow(2, 1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM courses WHERE id = $1")).
		WithArgs("course-1").
		WillReturnRows(courseRows("course-1", "Go Basics", true, "manager-1"))
	mock.ExpectCommit()

	_, err := svc.UpdateContentStatus(context.Background(), "enroll-1", "content-1", models.StatusDone)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStatusUpdateSkipsDerivationWhenAlreadyCompleted(t *testing.T) {
	store, mock, cleanup := newStoreMock(t)
	defer cleanup()

	svc := NewEnrollmentService(store, nil, nil)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM course_employees WHERE id = $1 FOR UPDATE")).
		WithArgs("enroll-1").
		WillReturnRows(enrollmentRows("enroll-1", true))
	mock.ExpectQuery(regexp.QuoteMeta("FROM course_employee_contents WHERE course_employee_id = $1 AND content_id = $2")).
		WithArgs("enroll-1", "content-1").
		WillReturnRows(statusRows("status-1", "enroll-1", "content-1", models.StatusDone))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE course_employee_contents SET status = $3")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM course_employee_contents WHERE course_employee_id = $1 AND content_id = $2")).
		WithArgs("enroll-1", "content-1").
		WillReturnRows(statusRows("status-1", "enroll-1", "content-1", models.StatusIncorrect))
	mock.ExpectCommit()

	status, err := svc.UpdateContentStatus(context.Background(), "enroll-1", "content-1", models.StatusIncorrect)
	require.NoError(t, err)
	assert.Equal(t, models.StatusIncorrect, status.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStatusUpdateRejectsUnknownStatus(t *testing.T) {
	store, _, cleanup := newStoreMock(t)
	defer cleanup()

	svc := NewEnrollmentService(store, nil, nil)

	_, err := svc.UpdateContentStatus(context.Background(), "enroll-1", "content-1", models.ContentStatus("finished"))
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}
