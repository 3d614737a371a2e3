package models

import "time"

// Comment is a user comment under a content item.
type Comment struct {
	ID        string    `db:"id" json:"id"`
	ContentID string    `db:"content_id" json:"content_id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Text      string    `db:"text" json:"text"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
