package service

import (
	"context"

	"github.com/skilltracker/skilltracker-api/internal/repository"

	"github.com/skilltracker/skilltracker-api/internal/models"
)

// CascadeOrchestrator removes dependent records in foreign-key order when
// a root entity goes away, replacing storage-engine cascades with explicit,
// auditable deletes. All methods run inside the caller's transaction.
type CascadeOrchestrator struct {
	dispatcher NotificationDispatcher
}

// DeleteContent removes one content row and everything hanging off it:
// comments, status rows, then the row itself and its exclusively-owned
// task or theory payload.
func (o CascadeOrchestrator) DeleteContent(ctx context.Context, tx *repository.Tx, content *models.Content) error {
	if err := tx.Comments.DeleteByContent(ctx, content.ID); err != nil {
		return err
	}
	if err := tx.Enrollments.DeleteStatusesByContent(ctx, content.ID); err != nil {
		return err
	}
	if err := tx.Contents.Delete(ctx, content.ID); err != nil {
		return err
	}
	if content.TaskID != nil {
		return tx.Contents.DeleteTask(ctx, *content.TaskID)
	}
	if content.TheoryID != nil {
		return tx.Contents.DeleteTheory(ctx, *content.TheoryID)
	}
	return nil
}

// DeleteCourse removes a course with its contents and enrollments, then
// notifies the manager. notify is off when the delete is itself part of a
// user cascade removing the manager.
func (o CascadeOrchestrator) DeleteCourse(ctx context.Context, tx *repository.Tx, course *models.Course, notify bool) error {
	contents, err := tx.Contents.ListByCourse(ctx, course.ID)
	if err != nil {
		return err
	}
	for i := range contents {
		if err := o.DeleteContent(ctx, tx, &contents[i]); err != nil {
			return err
		}
	}

	enrollments, err := tx.Enrollments.ListByCourse(ctx, course.ID)
	if err != nil {
		return err
	}
	for _, enrollment := range enrollments {
		if err := tx.Enrollments.DeleteStatusesByEnrollment(ctx, enrollment.ID); err != nil {
			return err
		}
		if err := tx.Enrollments.Delete(ctx, enrollment.ID); err != nil {
			return err
		}
	}

	if err := tx.Courses.Delete(ctx, course.ID); err != nil {
		return err
	}

	if notify {
		return o.dispatcher.CourseDeleted(ctx, tx.Notifications, course)
	}
	return nil
}

// DeleteUser removes a user together with their roles, owned courses,
// own enrollments, comments, and notifications. Owned courses are removed
// through the course path without the CourseDeleted notification, since
// its only recipient is the user being deleted.
func (o CascadeOrchestrator) DeleteUser(ctx context.Context, tx *repository.Tx, user *models.User) error {
	if err := tx.Users.DeleteRolesByUser(ctx, user.ID); err != nil {
		return err
	}

	courses, err := tx.Courses.ListByManager(ctx, user.ID)
	if err != nil {
		return err
	}
	for i := range courses {
		if err := o.DeleteCourse(ctx, tx, &courses[i], false); err != nil {
			return err
		}
	}

	enrollments, err := tx.Enrollments.ListByEmployee(ctx, user.ID)
	if err != nil {
		return err
	}
	for _, enrollment := range enrollments {
		if err := tx.Enrollments.DeleteStatusesByEnrollment(ctx, enrollment.ID); err != nil {
			return err
		}
		if err := tx.Enrollments.Delete(ctx, enrollment.ID); err != nil {
			return err
		}
	}

	if err := tx.Comments.DeleteByUser(ctx, user.ID); err != nil {
		return err
	}
	if err := tx.Notifications.DeleteByUser(ctx, user.ID); err != nil {
		return err
	}
	return tx.Users.Delete(ctx, user.ID)
}
