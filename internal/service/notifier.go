package service

import (
	"context"
	"fmt"

	"github.com/skilltracker/skilltracker-api/internal/models"
)

// notificationWriter is the slice of the notification repository the
// dispatcher needs. Inserts run inside the triggering mutation's
// transaction; a failed insert fails the mutation.
type notificationWriter interface {
	Create(ctx context.Context, notification *models.Notification) error
}

// NotificationDispatcher fans domain events out into notification rows.
// Message templates follow the original wording of the system exactly.
type NotificationDispatcher struct{}

// CourseProduced notifies the manager about the publication. Fired only on
// the false→true transition.
func (NotificationDispatcher) CourseProduced(ctx context.Context, w notificationWriter, course *models.Course) error {
	message := fmt.Sprintf("You have created and published the %q course.", course.Title)
	return w.Create(ctx, &models.Notification{UserID: course.ManagerID, Message: message})
}

// EmployeeEnrolled notifies the course manager about a new enrollment.
func (NotificationDispatcher) EmployeeEnrolled(ctx context.Context, w notificationWriter, course *models.Course, employee *models.User) error {
	message := fmt.Sprintf("User %s has signed up for your %q course!", employee.Username, course.Title)
	return w.Create(ctx, &models.Notification{UserID: course.ManagerID, Message: message})
}

// CommentAdded notifies the course manager about a comment under their
// course. A manager commenting on their own course produces nothing.
func (NotificationDispatcher) CommentAdded(ctx context.Context, w notificationWriter, course *models.Course, commenter *models.User) error {
	if commenter.ID == course.ManagerID {
		return nil
	}
	message := fmt.Sprintf("Under your course %q, user %s left a comment!", course.Title, commenter.Username)
	return w.Create(ctx, &models.Notification{UserID: course.ManagerID, Message: message})
}

// EnrollmentCompleted emits the completion pair: one row for the employee,
// one for the manager. Fired only on the first threshold crossing.
func (NotificationDispatcher) EnrollmentCompleted(ctx context.Context, w notificationWriter, course *models.Course, employee *models.User) error {
	employeeMessage := fmt.Sprintf("You have successfully completed the %q course!", course.Title)
	if err := w.Create(ctx, &models.Notification{UserID: employee.ID, Message: employeeMessage}); err != nil {
		return err
	}
	managerMessage := fmt.Sprintf("The user %s has successfully completed your %q course.", employee.Username, course.Title)
	return w.Create(ctx, &models.Notification{UserID: course.ManagerID, Message: managerMessage})
}

// CourseDeleted notifies the manager that their course is gone.
func (NotificationDispatcher) CourseDeleted(ctx context.Context, w notificationWriter, course *models.Course) error {
	message := fmt.Sprintf("You have deleted your course %q!", course.Title)
	return w.Create(ctx, &models.Notification{UserID: course.ManagerID, Message: message})
}
