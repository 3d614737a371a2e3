package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/skilltracker/skilltracker-api/internal/models"
)

// EnrollmentRepository handles persistence of enrollments and their
// per-content status rows.
type EnrollmentRepository struct {
	q sqlx.ExtContext
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(q sqlx.ExtContext) *EnrollmentRepository {
	return &EnrollmentRepository{q: q}
}

// Create persists a new enrollment record.
func (r *EnrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	if enrollment.ID == "" {
		enrollment.ID = uuid.NewString()
	}
	if enrollment.AssignedAt.IsZero() {
		enrollment.AssignedAt = time.Now().UTC()
	}
	const query = `INSERT INTO course_employees (id, course_id, employee_id, is_completed, assigned_at)
        VALUES (:id, :course_id, :employee_id, :is_completed, :assigned_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.q, query, enrollment); err != nil {
		return fmt.Errorf("create enrollment: %w", err)
	}
	return nil
}

// FindByID returns an enrollment by its ID.
func (r *EnrollmentRepository) FindByID(ctx context.Context, id string) (*models.Enrollment, error) {
	const query = `SELECT id, course_id, employee_id, is_completed, assigned_at FROM course_employees WHERE id = $1`
	var enrollment models.Enrollment
	if err := sqlx.GetContext(ctx, r.q, &enrollment, query, id); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// FindByIDForUpdate loads an enrollment with a row lock so concurrent
// status updates serialize before the completion derivation runs.
func (r *EnrollmentRepository) FindByIDForUpdate(ctx context.Context, id string) (*models.Enrollment, error) {
	const query = `SELECT id, course_id, employee_id, is_completed, assigned_at FROM course_employees WHERE id = $1 FOR UPDATE`
	var enrollment models.Enrollment
	if err := sqlx.GetContext(ctx, r.q, &enrollment, query, id); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// Exists checks whether the employee is already enrolled in the course.
func (r *EnrollmentRepository) Exists(ctx context.Context, courseID, employeeID string) (bool, error) {
	const query = `SELECT 1 FROM course_employees WHERE course_id = $1 AND employee_id = $2 LIMIT 1`
	var exists int
	if err := sqlx.GetContext(ctx, r.q, &exists, query, courseID, employeeID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check enrollment: %w", err)
	}
	return true, nil
}

// MarkCompleted flips the derived completion flag.
func (r *EnrollmentRepository) MarkCompleted(ctx context.Context, id string) error {
	const query = `UPDATE course_employees SET is_completed = TRUE WHERE id = $1`
	if _, err := r.q.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("mark completed: %w", err)
	}
	return nil
}

// Delete removes one enrollment row.
func (r *EnrollmentRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM course_employees WHERE id = $1`
	if _, err := r.q.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete enrollment: %w", err)
	}
	return nil
}

// ListByCourse returns all enrollments of a course.
func (r *EnrollmentRepository) ListByCourse(ctx context.Context, courseID string) ([]models.Enrollment, error) {
	const query = `SELECT id, course_id, employee_id, is_completed, assigned_at FROM course_employees WHERE course_id = $1`
	var enrollments []models.Enrollment
	if err := sqlx.SelectContext(ctx, r.q, &enrollments, query, courseID); err != nil {
		return nil, fmt.Errorf("list course enrollments: %w", err)
	}
	return enrollments, nil
}

// ListByEmployee returns all enrollments of an employee.
func (r *EnrollmentRepository) ListByEmployee(ctx context.Context, employeeID string) ([]models.Enrollment, error) {
	const query = `SELECT id, course_id, employee_id, is_completed, assigned_at FROM course_employees WHERE employee_id = $1`
	var enrollments []models.Enrollment
	if err := sqlx.SelectContext(ctx, r.q, &enrollments, query, employeeID); err != nil {
		return nil, fmt.Errorf("list employee enrollments: %w", err)
	}
	return enrollments, nil
}

// CreateStatus seeds one pending status row for an (enrollment, content)
// pair.
func (r *EnrollmentRepository) CreateStatus(ctx context.Context, status *models.EnrollmentContentStatus) error {
	if status.ID == "" {
		status.ID = uuid.NewString()
	}
	if status.Status == "" {
		status.Status = models.StatusPending
	}
	if status.UpdatedAt.IsZero() {
		status.UpdatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO course_employee_contents (id, course_employee_id, content_id, status, updated_at)
        VALUES (:id, :course_employee_id, :content_id, :status, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.q, query, status); err != nil {
		return fmt.Errorf("create content status: %w", err)
	}
	return nil
}

// FindStatus returns the status row for an (enrollment, content) pair.
func (r *EnrollmentRepository) FindStatus(ctx context.Context, enrollmentID, contentID string) (*models.EnrollmentContentStatus, error) {
	const query = `SELECT id, course_employee_id, content_id, status, updated_at FROM course_employee_contents WHERE course_employee_id = $1 AND content_id = $2`
	var status models.EnrollmentContentStatus
	if err := sqlx.GetContext(ctx, r.q, &status, query, enrollmentID, contentID); err != nil {
		return nil, err
	}
	return &status, nil
}

// UpdateStatus transitions one status row.
func (r *EnrollmentRepository) UpdateStatus(ctx context.Context, enrollmentID, contentID string, status models.ContentStatus) error {
	const query = `UPDATE course_employee_contents SET status = $3, updated_at = $4 WHERE course_employee_id = $1 AND content_id = $2`
	if _, err := r.q.ExecContext(ctx, query, enrollmentID, contentID, status, time.Now().UTC()); err != nil {
		return fmt.Errorf("update content status: %w", err)
	}
	return nil
}

// ListStatuses returns all status rows of an enrollment.
func (r *EnrollmentRepository) ListStatuses(ctx context.Context, enrollmentID string) ([]models.EnrollmentContentStatus, error) {
	const query = `SELECT id, course_employee_id, content_id, status, updated_at FROM course_employee_contents WHERE course_employee_id = $1`
	var statuses []models.EnrollmentContentStatus
	if err := sqlx.SelectContext(ctx, r.q, &statuses, query, enrollmentID); err != nil {
		return nil, fmt.Errorf("list content statuses: %w", err)
	}
	return statuses, nil
}

// CountStatuses returns total rows and done rows for an enrollment, the
// two numbers the completion derivation needs.
func (r *EnrollmentRepository) CountStatuses(ctx context.Context, enrollmentID string) (total, done int, err error) {
	const query = `SELECT COUNT(*), COUNT(*) FILTER (WHERE status = 'done') FROM course_employee_contents WHERE course_employee_id = $1`
	row := r.q.QueryRowxContext(ctx, query, enrollmentID)
	if err := row.Scan(&total, &done); err != nil {
		return 0, 0, fmt.Errorf("count content statuses: %w", err)
	}
	return total, done, nil
}

// DeleteStatusesByContent removes all status rows referencing a content.
func (r *EnrollmentRepository) DeleteStatusesByContent(ctx context.Context, contentID string) error {
	const query = `DELETE FROM course_employee_contents WHERE content_id = $1`
	if _, err := r.q.ExecContext(ctx, query, contentID); err != nil {
		return fmt.Errorf("delete content statuses: %w", err)
	}
	return nil
}

// DeleteStatusesByEnrollment removes all status rows of an enrollment.
func (r *EnrollmentRepository) DeleteStatusesByEnrollment(ctx context.Context, enrollmentID string) error {
	const query = `DELETE FROM course_employee_contents WHERE course_employee_id = $1`
	if _, err := r.q.ExecContext(ctx, query, enrollmentID); err != nil {
		return fmt.Errorf("delete enrollment statuses: %w", err)
	}
	return nil
}
