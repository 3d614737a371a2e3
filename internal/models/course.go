package models

import "time"

// Course represents a course owned by exactly one manager-role user.
// A course starts as a draft and can be produced exactly once; most fields
// freeze at that point.
type Course struct {
	ID             string     `db:"id" json:"id"`
	Title          string     `db:"title" json:"title"`
	Description    string     `db:"description" json:"description"`
	Deadline       *time.Time `db:"deadline" json:"deadline,omitempty"`
	PassingPercent int        `db:"passing_percent" json:"passing_percent"`
	IsProduced     bool       `db:"is_produced" json:"is_produced"`
	ManagerID      string     `db:"manager_id" json:"manager_id"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
}

// CourseUpdate carries the fields of a course update request. Nil means
// "leave unchanged"; the lifecycle guard decides which non-nil fields are
// legal for the course's current state.
type CourseUpdate struct {
	Title          *string    `json:"title,omitempty"`
	Description    *string    `json:"description,omitempty"`
	Deadline       *time.Time `json:"deadline,omitempty"`
	PassingPercent *int       `json:"passing_percent,omitempty" validate:"omitempty,gte=0,lte=100"`
}

// Empty reports whether the update changes nothing.
func (u CourseUpdate) Empty() bool {
	return u.Title == nil && u.Description == nil && u.Deadline == nil && u.PassingPercent == nil
}
