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

// UserRepository handles persistence of users and their role assignments.
type UserRepository struct {
	q sqlx.ExtContext
}

// NewUserRepository constructs the repository.
func NewUserRepository(q sqlx.ExtContext) *UserRepository {
	return &UserRepository{q: q}
}

// Create persists a new user record.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO users (id, given_name, family_name, username, password_hash, created_at)
        VALUES (:id, :given_name, :family_name, :username, :password_hash, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.q, query, user); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// FindByID returns a user by its ID.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	const query = `SELECT id, given_name, family_name, username, password_hash, created_at FROM users WHERE id = $1`
	var user models.User
	if err := sqlx.GetContext(ctx, r.q, &user, query, id); err != nil {
		return nil, err
	}
	return &user, nil
}

// Delete removes the user row. Dependents are removed by the cascade
// orchestrator before this is called.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM users WHERE id = $1`
	if _, err := r.q.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

// CreateRole assigns a role to a user.
func (r *UserRepository) CreateRole(ctx context.Context, role *models.UserRole) error {
	if role.ID == "" {
		role.ID = uuid.NewString()
	}
	const query = `INSERT INTO user_roles (id, user_id, role) VALUES (:id, :user_id, :role)`
	if _, err := sqlx.NamedExecContext(ctx, r.q, query, role); err != nil {
		return fmt.Errorf("create role: %w", err)
	}
	return nil
}

// DeleteRole removes one role assignment, reporting whether a row existed.
func (r *UserRepository) DeleteRole(ctx context.Context, userID string, kind models.RoleKind) (bool, error) {
	const query = `DELETE FROM user_roles WHERE user_id = $1 AND role = $2`
	res, err := r.q.ExecContext(ctx, query, userID, kind)
	if err != nil {
		return false, fmt.Errorf("delete role: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete role: %w", err)
	}
	return affected > 0, nil
}

// DeleteRolesByUser removes all role assignments of a user.
func (r *UserRepository) DeleteRolesByUser(ctx context.Context, userID string) error {
	const query = `DELETE FROM user_roles WHERE user_id = $1`
	if _, err := r.q.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("delete roles: %w", err)
	}
	return nil
}

// ListRoles returns the role kinds held by a user.
func (r *UserRepository) ListRoles(ctx context.Context, userID string) ([]models.RoleKind, error) {
	const query = `SELECT role FROM user_roles WHERE user_id = $1 ORDER BY role`
	var roles []models.RoleKind
	if err := sqlx.SelectContext(ctx, r.q, &roles, query, userID); err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	return roles, nil
}

// CountRoles returns the number of role assignments a user holds.
func (r *UserRepository) CountRoles(ctx context.Context, userID string) (int, error) {
	const query = `SELECT COUNT(*) FROM user_roles WHERE user_id = $1`
	var count int
	if err := sqlx.GetContext(ctx, r.q, &count, query, userID); err != nil {
		return 0, fmt.Errorf("count roles: %w", err)
	}
	return count, nil
}

// HasRole checks whether the user holds the given role kind.
func (r *UserRepository) HasRole(ctx context.Context, userID string, kind models.RoleKind) (bool, error) {
	const query = `SELECT 1 FROM user_roles WHERE user_id = $1 AND role = $2 LIMIT 1`
	var exists int
	if err := sqlx.GetContext(ctx, r.q, &exists, query, userID, kind); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check role: %w", err)
	}
	return true, nil
}
