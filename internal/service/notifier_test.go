package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skilltracker/skilltracker-api/internal/models"
)

type fakeNotificationWriter struct {
	created []models.Notification
	err     error
}

func (f *fakeNotificationWriter) Create(_ context.Context, n *models.Notification) error {
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, *n)
	return nil
}

func TestCourseProducedMessage(t *testing.T) {
	writer := &fakeNotificationWriter{}
	dispatcher := NotificationDispatcher{}
	course := &models.Course{Title: "Go Basics", ManagerID: "manager-1"}

	require.NoError(t, dispatcher.CourseProduced(context.Background(), writer, course))
	require.Len(t, writer.created, 1)
	assert.Equal(t, "manager-1", writer.created[0].UserID)
	assert.Equal(t, `You have created and published the "Go Basics" course.`, writer.created[0].Message)
	assert.False(t, writer.created[0].IsRead)
}

func TestEmployeeEnrolledMessage(t *testing.T) {
	writer := &fakeNotificationWriter{}
	dispatcher := NotificationDispatcher{}
	course := &models.Course{Title: "Go Basics", ManagerID: "manager-1"}
	employee := &models.User{ID: "employee-1", Username: "jdoe"}

	require.NoError(t, dispatcher.EmployeeEnrolled(context.Background(), writer, course, employee))
	require.Len(t, writer.created, 1)
	assert.Equal(t, "manager-1", writer.created[0].UserID)
	assert.Equal(t, `User jdoe has signed up for your "Go Basics" course!`, writer.created[0].Message)
}

func TestCommentAddedNotifiesManager(t *testing.T) {
	writer := &fakeNotificationWriter{}
	dispatcher := NotificationDispatcher{}
	course := &models.Course{Title: "Go Basics", ManagerID: "manager-1"}
	commenter := &models.User{ID: "employee-1", Username: "jdoe"}

	require.NoError(t, dispatcher.CommentAdded(context.Background(), writer, course, commenter))
	require.Len(t, writer.created, 1)
	assert.Equal(t, `Under your course "Go Basics", user jdoe left a comment!`, writer.created[0].Message)
}

func TestCommentAddedSkipsManagerSelfComment(t *testing.T) {
	writer := &fakeNotificationWriter{}
	dispatcher := NotificationDispatcher{}
	course := &models.Course{Title: "Go Basics", ManagerID: "manager-1"}
	manager := &models.User{ID: "manager-1", Username: "boss"}

	require.NoError(t, dispatcher.CommentAdded(context.Background(), writer, course, manager))
	assert.Empty(t, writer.created)
}

func TestEnrollmentCompletedEmitsPair(t *testing.T) {
	writer := &fakeNotificationWriter{}
	dispatcher := NotificationDispatcher{}
	course := &models.Course{Title: "Go Basics", ManagerID: "manager-1"}
	employee := &models.User{ID: "employee-1", Username: "jdoe"}

	require.NoError(t, dispatcher.EnrollmentCompleted(context.Background(), writer, course, employee))
	require.Len(t, writer.created, 2)

	assert.Equal(t, "employee-1", writer.created[0].UserID)
	assert.Equal(t, `You have successfully completed the "Go Basics" course!`, writer.created[0].Message)

	assert.Equal(t, "manager-1", writer.created[1].UserID)
	assert.Equal(t, `The user jdoe has successfully completed your "Go Basics" course.`, writer.created[1].Message)
}

func TestCourseDeletedMessage(t *testing.T) {
	writer := &fakeNotificationWriter{}
	dispatcher := NotificationDispatcher{}
	course := &models.Course{Title: "Go Basics", ManagerID: "manager-1"}

	require.NoError(t, dispatcher.CourseDeleted(context.Background(), writer, course))
	require.Len(t, writer.created, 1)
	assert.Equal(t, `You have deleted your course "Go Basics"!`, writer.created[0].Message)
}

func TestDispatcherPropagatesWriteFailure(t *testing.T) {
	writer := &fakeNotificationWriter{err: assert.AnError}
	dispatcher := NotificationDispatcher{}
	course := &models.Course{Title: "Go Basics", ManagerID: "manager-1"}

	err := dispatcher.CourseProduced(context.Background(), writer, course)
	assert.ErrorIs(t, err, assert.AnError)
}
