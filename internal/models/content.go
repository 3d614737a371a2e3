package models

import "time"

// Content is one unit of course material wrapping exactly one of a task or
// a theory. The nullable foreign keys mirror the relational schema; the
// invariant checker guarantees the exactly-one property on every write.
type Content struct {
	ID        string     `db:"id" json:"id"`
	CourseID  string     `db:"course_id" json:"course_id"`
	Title     string     `db:"title" json:"title"`
	Deadline  *time.Time `db:"deadline" json:"deadline,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	TaskID    *string    `db:"task_id" json:"task_id,omitempty"`
	TheoryID  *string    `db:"theory_id" json:"theory_id,omitempty"`
}

// Task is the question/answer payload of a task content.
type Task struct {
	ID       string `db:"id" json:"id"`
	Question string `db:"question" json:"question"`
	Answer   string `db:"answer" json:"answer"`
}

// Theory is the free-text payload of a theory content.
type Theory struct {
	ID   string `db:"id" json:"id"`
	Text string `db:"text" json:"text"`
}

// ContentDetail joins a content row with its payload.
type ContentDetail struct {
	Content
	Task   *Task   `json:"task,omitempty"`
	Theory *Theory `json:"theory,omitempty"`
}

// ContentUpdate carries the fields of a content update request. Payload
// edits are legal only while the owning course is a draft.
type ContentUpdate struct {
	Title    *string    `json:"title,omitempty"`
	Deadline *time.Time `json:"deadline,omitempty"`
	Task     *Task      `json:"task,omitempty"`
	Theory   *Theory    `json:"theory,omitempty"`
}
