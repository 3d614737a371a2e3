package service

import (
	"github.com/skilltracker/skilltracker-api/internal/models"
	appErrors "github.com/skilltracker/skilltracker-api/pkg/errors"
)

// LifecycleGuard enforces the draft→produced state machine on a course and
// everything it owns. While draft all fields are writable; once produced a
// course accepts only description/deadline edits, its contents only
// deadline edits, and task/theory payloads freeze entirely. The guard runs
// before the physical write and rejections abort the whole mutation.
type LifecycleGuard struct{}

// Produce reports whether the transition fires. A second produce is a
// no-op: the state never regresses and the caller must not re-notify.
func (LifecycleGuard) Produce(course *models.Course) bool {
	return !course.IsProduced
}

// CheckCourseUpdate rejects any post-production write outside
// {description, deadline}, naming the offending field.
func (LifecycleGuard) CheckCourseUpdate(course *models.Course, update models.CourseUpdate) error {
	if !course.IsProduced {
		return nil
	}
	const msg = "Only description and deadline can be updated after course is produced!"
	if update.Title != nil {
		return appErrors.ImmutableAfterProduction("title", msg)
	}
	if update.PassingPercent != nil {
		return appErrors.ImmutableAfterProduction("passing_percent", msg)
	}
	return nil
}

// CheckContentCreate rejects adding content to a produced course; late
// inserts would desynchronise the already-seeded enrollment statuses.
func (LifecycleGuard) CheckContentCreate(course *models.Course) error {
	if course.IsProduced {
		return appErrors.ImmutableAfterProduction("contents", "Cannot add content to a produced course!")
	}
	return nil
}

// CheckContentUpdate rejects any post-production content write outside
// {deadline}, including payload edits.
func (LifecycleGuard) CheckContentUpdate(course *models.Course, update models.ContentUpdate) error {
	if !course.IsProduced {
		return nil
	}
	if update.Title != nil {
		return appErrors.ImmutableAfterProduction("title", "Only deadline can be updated after course is produced!")
	}
	if update.Task != nil {
		return appErrors.ImmutableAfterProduction("task", "Cannot update task after course is produced!")
	}
	if update.Theory != nil {
		return appErrors.ImmutableAfterProduction("theory", "Cannot update theory after course is produced!")
	}
	return nil
}
