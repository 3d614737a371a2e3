package models

import "time"

// ContentStatus tracks an employee's progress on one content item.
type ContentStatus string

const (
	StatusPending   ContentStatus = "pending"
	StatusIncorrect ContentStatus = "incorrect"
	StatusDone      ContentStatus = "done"
)

// Valid reports whether the status is one of the known values.
func (s ContentStatus) Valid() bool {
	return s == StatusPending || s == StatusIncorrect || s == StatusDone
}

// Enrollment associates one employee-role user with one produced course
// (course_employees table). is_completed is derived from the status rows
// and flips false→true exactly once.
type Enrollment struct {
	ID          string    `db:"id" json:"id"`
	CourseID    string    `db:"course_id" json:"course_id"`
	EmployeeID  string    `db:"employee_id" json:"employee_id"`
	IsCompleted bool      `db:"is_completed" json:"is_completed"`
	AssignedAt  time.Time `db:"assigned_at" json:"assigned_at"`
}

// EnrollmentContentStatus is one per (enrollment, content) pair, seeded as
// pending at enrollment time (course_employee_contents table).
type EnrollmentContentStatus struct {
	ID           string        `db:"id" json:"id"`
	EnrollmentID string        `db:"course_employee_id" json:"enrollment_id"`
	ContentID    string        `db:"content_id" json:"content_id"`
	Status       ContentStatus `db:"status" json:"status"`
	UpdatedAt    time.Time     `db:"updated_at" json:"updated_at"`
}
