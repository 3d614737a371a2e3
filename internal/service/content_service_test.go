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

func TestCreateContentRequiresExactlyOnePayload(t *testing.T) {
	store, _, cleanup := newStoreMock(t)
	defer cleanup()

	svc := NewContentService(store, nil, nil)

	_, err := svc.Create(context.Background(), CreateContentRequest{
		CourseID: "course-1",
		Title:    "Intro",
		Task:     &TaskPayload{Question: "q", Answer: "a"},
		Theory:   &TheoryPayload{Text: "t"},
	})
	assert.True(t, errors.Is(err, appErrors.ErrContentTypeAmbiguous))
	assert.Equal(t, "The task_id and theory_id fields cannot be filled in at the same time!", err.Error())

	_, err = svc.Create(context.Background(), CreateContentRequest{CourseID: "course-1", Title: "Intro"})
	assert.True(t, errors.Is(err, appErrors.ErrContentTypeMissing))
	assert.Equal(t, "One of the task_id or theory_id fields must be filled in!", err.Error())
}

func TestCreateContentBlockedOnProducedCourse(t *testing.T) {
	store, mock, cleanup := newStoreMock(t)
	defer cleanup()

	svc := NewContentService(store, nil, nil)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM courses WHERE id = $1 FOR UPDATE")).
		WithArgs("course-1").
		WillReturnRows(courseRows("course-1", "Go Basics", true, "manager-1"))
	mock.ExpectRollback()

	_, err := svc.Create(context.Background(), CreateContentRequest{
		CourseID: "course-1",
		Title:    "Late addition",
		Task:     &TaskPayload{Question: "q", Answer: "a"},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrImmutableAfterProduction))
	assert.Equal(t, "Cannot add content to a produced course!", err.Error())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateContentPersistsTaskVariant(t *testing.T) {
	store, mock, cleanup := newStoreMock(t)
	defer cleanup()

	svc := NewContentService(store, nil, nil)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM courses WHERE id = $1 FOR UPDATE")).
		WithArgs("course-1").
		WillReturnRows(courseRows("course-1", "Go Basics", false, "manager-1"))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO tasks")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO contents")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	detail, err := svc.Create(context.Background(), CreateContentRequest{
		CourseID: "course-1",
		Title:    "Intro",
		Task:     &TaskPayload{Question: "What is a goroutine?", Answer: "A lightweight thread"},
	})
	require.NoError(t, err)
	require.NotNil(t, detail.Task)
	assert.Nil(t, detail.Theory)
	assert.Equal(t, detail.Task.ID, *detail.TaskID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateContentRejectsDeadlinePastCourseDeadline(t *testing.T) {
	store, mock, cleanup := newStoreMock(t)
	defer cleanup()

	svc := NewContentService(store, nil, nil)
	courseDeadline := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	contentDeadline := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM courses WHERE id = $1 FOR UPDATE")).
		WithArgs("course-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "description", "deadline", "passing_percent", "is_produced", "manager_id", "created_at"}).
			AddRow("course-1", "Go Basics", "", courseDeadline, 75, false, "manager-1", time.Now()))
	mock.ExpectRollback()

	_, err := svc.Create(context.Background(), CreateContentRequest{
		CourseID: "course-1",
		Title:    "Intro",
		Deadline: &contentDeadline,
		Theory:   &TheoryPayload{Text: "t"},
	})
	assert.True(t, errors.Is(err, appErrors.ErrDeadlineTooEarly))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteContentCascadesThroughPayload(t *testing.T) {
	store, mock, cleanup := newStoreMock(t)
	defer cleanup()

	svc := NewContentService(store, nil, nil)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM contents WHERE id = $1")).
		WithArgs("content-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "course_id", "title", "deadline", "created_at", "task_id", "theory_id"}).
			AddRow("content-1", "course-1", "Intro", nil, time.Now(), nil, "theory-1"))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM comments WHERE content_id = $1")).
		WithArgs("content-1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM course_employee_contents WHERE content_id = $1")).
		WithArgs("content-1").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM contents WHERE id = $1")).
		WithArgs("content-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM theories WHERE id = $1")).
		WithArgs("theory-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, svc.Delete(context.Background(), "content-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}
