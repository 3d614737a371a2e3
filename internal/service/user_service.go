package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/skilltracker/skilltracker-api/internal/models"
	"github.com/skilltracker/skilltracker-api/internal/repository"
	appErrors "github.com/skilltracker/skilltracker-api/pkg/errors"
)

// CreateUserRequest describes user creation. The password hash arrives
// pre-computed from the user-management collaborator; at least one initial
// role is required so the role-presence invariant holds from the first
// commit.
type CreateUserRequest struct {
	GivenName    string            `json:"given_name" validate:"required,max=50"`
	FamilyName   string            `json:"family_name" validate:"required,max=100"`
	Username     string            `json:"username" validate:"required,max=100"`
	PasswordHash string            `json:"password_hash" validate:"required,max=255"`
	Roles        []models.RoleKind `json:"roles" validate:"required,min=1"`
}

// UserService orchestrates user and role workflows.
type UserService struct {
	store     *repository.Store
	checker   InvariantChecker
	cascade   CascadeOrchestrator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewUserService constructs UserService.
func NewUserService(store *repository.Store, validate *validator.Validate, logger *zap.Logger) *UserService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{store: store, validator: validate, logger: logger}
}

// Create registers a new user with their initial roles.
func (s *UserService) Create(ctx context.Context, req CreateUserRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid user payload")
	}
	seen := make(map[models.RoleKind]bool, len(req.Roles))
	for _, kind := range req.Roles {
		if !kind.Valid() {
			return nil, appErrors.Clone(appErrors.ErrValidation, "unknown role kind")
		}
		if seen[kind] {
			return nil, appErrors.Clone(appErrors.ErrValidation, "duplicate role kind")
		}
		seen[kind] = true
	}

	user := &models.User{
		GivenName:    req.GivenName,
		FamilyName:   req.FamilyName,
		Username:     req.Username,
		PasswordHash: req.PasswordHash,
	}
	err := s.store.InTx(ctx, func(ctx context.Context, tx *repository.Tx) error {
		if err := tx.Users.Create(ctx, user); err != nil {
			return err
		}
		for _, kind := range req.Roles {
			if err := tx.Users.CreateRole(ctx, &models.UserRole{UserID: user.ID, Role: kind}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, normalize(err, "failed to create user")
	}
	return user, nil
}

// AddRole assigns an additional role to a user.
func (s *UserService) AddRole(ctx context.Context, userID string, kind models.RoleKind) (*models.UserRole, error) {
	if !kind.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown role kind")
	}
	role := &models.UserRole{UserID: userID, Role: kind}
	err := s.store.InTx(ctx, func(ctx context.Context, tx *repository.Tx) error {
		if _, err := tx.Users.FindByID(ctx, userID); err != nil {
			if err == sql.ErrNoRows {
				return appErrors.NotFound("user")
			}
			return err
		}
		held, err := tx.Users.HasRole(ctx, userID, kind)
		if err != nil {
			return err
		}
		if held {
			return appErrors.Clone(appErrors.ErrConstraintViolation, "user already holds the role")
		}
		return tx.Users.CreateRole(ctx, role)
	})
	if err != nil {
		return nil, normalize(err, "failed to add role")
	}
	return role, nil
}

// RemoveRole drops one role assignment, refusing to leave the user with
// none.
func (s *UserService) RemoveRole(ctx context.Context, userID string, kind models.RoleKind) error {
	if !kind.Valid() {
		return appErrors.Clone(appErrors.ErrValidation, "unknown role kind")
	}
	err := s.store.InTx(ctx, func(ctx context.Context, tx *repository.Tx) error {
		roles, err := tx.Users.ListRoles(ctx, userID)
		if err != nil {
			return err
		}
		if !hasRole(roles, kind) {
			return appErrors.NotFound("role")
		}
		if err := s.checker.RoleRemoval(len(roles) - 1); err != nil {
			return err
		}
		_, err = tx.Users.DeleteRole(ctx, userID, kind)
		return err
	})
	return normalize(err, "failed to remove role")
}

// Delete removes a user and cascades through everything they own.
func (s *UserService) Delete(ctx context.Context, userID string) error {
	err := s.store.InTx(ctx, func(ctx context.Context, tx *repository.Tx) error {
		user, err := tx.Users.FindByID(ctx, userID)
		if err != nil {
			if err == sql.ErrNoRows {
				return appErrors.NotFound("user")
			}
			return err
		}
		return s.cascade.DeleteUser(ctx, tx, user)
	})
	return normalize(err, "failed to delete user")
}

// FindByID loads one user.
func (s *UserService) FindByID(ctx context.Context, id string) (*models.User, error) {
	user, err := s.store.Read().Users.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NotFound("user")
		}
		return nil, normalize(err, "failed to load user")
	}
	return user, nil
}

// Roles lists the role kinds a user holds.
func (s *UserService) Roles(ctx context.Context, userID string) ([]models.RoleKind, error) {
	roles, err := s.store.Read().Users.ListRoles(ctx, userID)
	if err != nil {
		return nil, normalize(err, "failed to list roles")
	}
	return roles, nil
}

// normalize passes typed domain errors through untouched and wraps
// everything else as internal.
func normalize(err error, message string) error {
	if err == nil {
		return nil
	}
	var typed *appErrors.Error
	if errors.As(err, &typed) {
		return err
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}
