package errors

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Field   string `json:"field,omitempty"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches errors by code so sentinel comparisons survive Clone and Wrap.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e != nil && t != nil && e.Code == t.Code
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors for the data-integrity rule set. Messages keep the
// wording the relational triggers used to raise.
var (
	ErrRoleRequired             = New("ROLE_REQUIRED", http.StatusConflict, "User must have at least one role!")
	ErrManagerRoleRequired      = New("MANAGER_ROLE_REQUIRED", http.StatusForbidden, "The course can only be created by a user with the manager role!")
	ErrEmployeeRoleRequired     = New("EMPLOYEE_ROLE_REQUIRED", http.StatusForbidden, "Only a user with the employee role can register for the courses!")
	ErrSelfEnrollmentForbidden  = New("SELF_ENROLLMENT_FORBIDDEN", http.StatusForbidden, "The manager cannot register for their own course!")
	ErrCourseNotProduced        = New("COURSE_NOT_PRODUCED", http.StatusConflict, "Cannot enroll in an unproduced course!")
	ErrContentTypeAmbiguous     = New("CONTENT_TYPE_AMBIGUOUS", http.StatusBadRequest, "The task_id and theory_id fields cannot be filled in at the same time!")
	ErrContentTypeMissing       = New("CONTENT_TYPE_MISSING", http.StatusBadRequest, "One of the task_id or theory_id fields must be filled in!")
	ErrDeadlineTooEarly         = New("DEADLINE_TOO_EARLY", http.StatusConflict, "course deadline cannot be earlier than latest content deadline")
	ErrImmutableAfterProduction = New("IMMUTABLE_AFTER_PRODUCTION", http.StatusConflict, "field cannot be updated after course is produced")
	ErrNotOwner                 = New("NOT_OWNER", http.StatusForbidden, "caller does not own this resource")
	ErrConstraintViolation      = New("CONSTRAINT_VIOLATION", http.StatusConflict, "concurrent modification conflict")
	ErrNotFound                 = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrUnauthorized             = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrForbidden                = New("FORBIDDEN", http.StatusForbidden, "forbidden")
	ErrValidation               = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInternal                 = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
)

// DeadlineTooEarly builds the deadline-ordering error carrying both the
// proposed and the blocking timestamp for diagnostics.
func DeadlineTooEarly(proposed, blocking time.Time) *Error {
	e := *ErrDeadlineTooEarly
	e.Field = "deadline"
	e.Message = fmt.Sprintf("Course deadline (%s) cannot be earlier than latest content deadline (%s)!",
		proposed.UTC().Format(time.RFC3339), blocking.UTC().Format(time.RFC3339))
	return &e
}

// ImmutableAfterProduction names the field whose write was rejected.
func ImmutableAfterProduction(field, message string) *Error {
	e := *ErrImmutableAfterProduction
	e.Field = field
	e.Message = message
	return &e
}

// NotFound names the missing entity kind.
func NotFound(kind string) *Error {
	e := *ErrNotFound
	e.Message = kind + " not found"
	return &e
}

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}
