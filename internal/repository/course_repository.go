package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/skilltracker/skilltracker-api/internal/models"
)

// CourseRepository handles persistence of courses.
type CourseRepository struct {
	q sqlx.ExtContext
}

// NewCourseRepository constructs the repository.
func NewCourseRepository(q sqlx.ExtContext) *CourseRepository {
	return &CourseRepository{q: q}
}

// Create persists a new course in draft state.
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	if course.ID == "" {
		course.ID = uuid.NewString()
	}
	if course.CreatedAt.IsZero() {
		course.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO courses (id, title, description, deadline, passing_percent, is_produced, manager_id, created_at)
        VALUES (:id, :title, :description, :deadline, :passing_percent, :is_produced, :manager_id, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.q, query, course); err != nil {
		return fmt.Errorf("create course: %w", err)
	}
	return nil
}

// FindByID returns a course by its ID.
func (r *CourseRepository) FindByID(ctx context.Context, id string) (*models.Course, error) {
	const query = `SELECT id, title, description, deadline, passing_percent, is_produced, manager_id, created_at FROM courses WHERE id = $1`
	var course models.Course
	if err := sqlx.GetContext(ctx, r.q, &course, query, id); err != nil {
		return nil, err
	}
	return &course, nil
}

// FindByIDForUpdate loads a course with a row lock so concurrent mutations
// of the same course serialize on it.
func (r *CourseRepository) FindByIDForUpdate(ctx context.Context, id string) (*models.Course, error) {
	const query = `SELECT id, title, description, deadline, passing_percent, is_produced, manager_id, created_at FROM courses WHERE id = $1 FOR UPDATE`
	var course models.Course
	if err := sqlx.GetContext(ctx, r.q, &course, query, id); err != nil {
		return nil, err
	}
	return &course, nil
}

// Update applies the non-nil fields of the update. The lifecycle guard has
// already rejected illegal fields before this runs.
func (r *CourseRepository) Update(ctx context.Context, id string, update models.CourseUpdate) error {
	var sets []string
	var args []interface{}
	if update.Title != nil {
		sets = append(sets, fmt.Sprintf("title = $%d", len(args)+1))
		args = append(args, *update.Title)
	}
	if update.Description != nil {
		sets = append(sets, fmt.Sprintf("description = $%d", len(args)+1))
		args = append(args, *update.Description)
	}
	if update.Deadline != nil {
		sets = append(sets, fmt.Sprintf("deadline = $%d", len(args)+1))
		args = append(args, *update.Deadline)
	}
	if update.PassingPercent != nil {
		sets = append(sets, fmt.Sprintf("passing_percent = $%d", len(args)+1))
		args = append(args, *update.PassingPercent)
	}
	if len(sets) == 0 {
		return nil
	}
	query := fmt.Sprintf("UPDATE courses SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args)+1)
	args = append(args, id)
	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update course: %w", err)
	}
	return nil
}

// MarkProduced flips the one-way draft→produced switch.
func (r *CourseRepository) MarkProduced(ctx context.Context, id string) error {
	const query = `UPDATE courses SET is_produced = TRUE WHERE id = $1`
	if _, err := r.q.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("produce course: %w", err)
	}
	return nil
}

// Delete removes the course row after its dependents are gone.
func (r *CourseRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM courses WHERE id = $1`
	if _, err := r.q.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	return nil
}

// ListByManager returns the courses owned by a manager.
func (r *CourseRepository) ListByManager(ctx context.Context, managerID string) ([]models.Course, error) {
	const query = `SELECT id, title, description, deadline, passing_percent, is_produced, manager_id, created_at FROM courses WHERE manager_id = $1 ORDER BY created_at`
	var courses []models.Course
	if err := sqlx.SelectContext(ctx, r.q, &courses, query, managerID); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}
