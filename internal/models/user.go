package models

import "time"

// RoleKind enumerates the roles a user can hold. A user may hold both at
// the same time.
type RoleKind string

const (
	RoleManager  RoleKind = "manager"
	RoleEmployee RoleKind = "employee"
)

// Valid reports whether the kind is one of the known roles.
func (k RoleKind) Valid() bool {
	return k == RoleManager || k == RoleEmployee
}

// User represents an application user stored in the users table. The
// password hash is produced by the external user-management service and
// stored opaque.
type User struct {
	ID           string    `db:"id" json:"id"`
	GivenName    string    `db:"given_name" json:"given_name"`
	FamilyName   string    `db:"family_name" json:"family_name"`
	Username     string    `db:"username" json:"username"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// UserRole is one role assignment. Every user keeps at least one row here
// at any transaction boundary.
type UserRole struct {
	ID     string   `db:"id" json:"id"`
	UserID string   `db:"user_id" json:"user_id"`
	Role   RoleKind `db:"role" json:"role"`
}
