package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/skilltracker/skilltracker-api/internal/models"
)

// ContentRepository handles persistence of contents and their task/theory
// payloads.
type ContentRepository struct {
	q sqlx.ExtContext
}

// NewContentRepository constructs the repository.
func NewContentRepository(q sqlx.ExtContext) *ContentRepository {
	return &ContentRepository{q: q}
}

// CreateTask persists a task payload.
func (r *ContentRepository) CreateTask(ctx context.Context, task *models.Task) error {
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	const query = `INSERT INTO tasks (id, question, answer) VALUES (:id, :question, :answer)`
	if _, err := sqlx.NamedExecContext(ctx, r.q, query, task); err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

// CreateTheory persists a theory payload.
func (r *ContentRepository) CreateTheory(ctx context.Context, theory *models.Theory) error {
	if theory.ID == "" {
		theory.ID = uuid.NewString()
	}
	const query = `INSERT INTO theories (id, text) VALUES (:id, :text)`
	if _, err := sqlx.NamedExecContext(ctx, r.q, query, theory); err != nil {
		return fmt.Errorf("create theory: %w", err)
	}
	return nil
}

// Create persists a content row referencing its payload.
func (r *ContentRepository) Create(ctx context.Context, content *models.Content) error {
	if content.ID == "" {
		content.ID = uuid.NewString()
	}
	if content.CreatedAt.IsZero() {
		content.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO contents (id, course_id, title, deadline, created_at, task_id, theory_id)
        VALUES (:id, :course_id, :title, :deadline, :created_at, :task_id, :theory_id)`
	if _, err := sqlx.NamedExecContext(ctx, r.q, query, content); err != nil {
		return fmt.Errorf("create content: %w", err)
	}
	return nil
}

// FindByID returns a content row by its ID.
func (r *ContentRepository) FindByID(ctx context.Context, id string) (*models.Content, error) {
	const query = `SELECT id, course_id, title, deadline, created_at, task_id, theory_id FROM contents WHERE id = $1`
	var content models.Content
	if err := sqlx.GetContext(ctx, r.q, &content, query, id); err != nil {
		return nil, err
	}
	return &content, nil
}

// FindTask returns a task payload by its ID.
func (r *ContentRepository) FindTask(ctx context.Context, id string) (*models.Task, error) {
	const query = `SELECT id, question, answer FROM tasks WHERE id = $1`
	var task models.Task
	if err := sqlx.GetContext(ctx, r.q, &task, query, id); err != nil {
		return nil, err
	}
	return &task, nil
}

// FindTheory returns a theory payload by its ID.
func (r *ContentRepository) FindTheory(ctx context.Context, id string) (*models.Theory, error) {
	const query = `SELECT id, text FROM theories WHERE id = $1`
	var theory models.Theory
	if err := sqlx.GetContext(ctx, r.q, &theory, query, id); err != nil {
		return nil, err
	}
	return &theory, nil
}

// Update applies the non-nil scalar fields of the update.
func (r *ContentRepository) Update(ctx context.Context, id string, update models.ContentUpdate) error {
	var sets []string
	var args []interface{}
	if update.Title != nil {
		sets = append(sets, fmt.Sprintf("title = $%d", len(args)+1))
		args = append(args, *update.Title)
	}
	if update.Deadline != nil {
		sets = append(sets, fmt.Sprintf("deadline = $%d", len(args)+1))
		args = append(args, *update.Deadline)
	}
	if len(sets) == 0 {
		return nil
	}
	query := fmt.Sprintf("UPDATE contents SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args)+1)
	args = append(args, id)
	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update content: %w", err)
	}
	return nil
}

// UpdateTask rewrites a task payload.
func (r *ContentRepository) UpdateTask(ctx context.Context, task *models.Task) error {
	const query = `UPDATE tasks SET question = $2, answer = $3 WHERE id = $1`
	if _, err := r.q.ExecContext(ctx, query, task.ID, task.Question, task.Answer); err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	return nil
}

// UpdateTheory rewrites a theory payload.
func (r *ContentRepository) UpdateTheory(ctx context.Context, theory *models.Theory) error {
	const query = `UPDATE theories SET text = $2 WHERE id = $1`
	if _, err := r.q.ExecContext(ctx, query, theory.ID, theory.Text); err != nil {
		return fmt.Errorf("update theory: %w", err)
	}
	return nil
}

// Delete removes a content row.
func (r *ContentRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM contents WHERE id = $1`
	if _, err := r.q.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete content: %w", err)
	}
	return nil
}

// DeleteTask removes an orphaned task payload.
func (r *ContentRepository) DeleteTask(ctx context.Context, id string) error {
	const query = `DELETE FROM tasks WHERE id = $1`
	if _, err := r.q.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

// DeleteTheory removes an orphaned theory payload.
func (r *ContentRepository) DeleteTheory(ctx context.Context, id string) error {
	const query = `DELETE FROM theories WHERE id = $1`
	if _, err := r.q.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete theory: %w", err)
	}
	return nil
}

// ListByCourse returns all content rows of a course in creation order.
func (r *ContentRepository) ListByCourse(ctx context.Context, courseID string) ([]models.Content, error) {
	const query = `SELECT id, course_id, title, deadline, created_at, task_id, theory_id FROM contents WHERE course_id = $1 ORDER BY created_at`
	var contents []models.Content
	if err := sqlx.SelectContext(ctx, r.q, &contents, query, courseID); err != nil {
		return nil, fmt.Errorf("list contents: %w", err)
	}
	return contents, nil
}

// MaxDeadlineByCourse returns the latest content deadline of a course, or
// nil when no content carries one.
func (r *ContentRepository) MaxDeadlineByCourse(ctx context.Context, courseID string) (*time.Time, error) {
	const query = `SELECT MAX(deadline) FROM contents WHERE course_id = $1`
	var deadline sql.NullTime
	if err := sqlx.GetContext(ctx, r.q, &deadline, query, courseID); err != nil {
		return nil, fmt.Errorf("max content deadline: %w", err)
	}
	if !deadline.Valid {
		return nil, nil
	}
	t := deadline.Time
	return &t, nil
}
