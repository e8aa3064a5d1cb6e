package models

import "time"

// Notification is an owner-facing message produced by review decisions.
type Notification struct {
	ID        string     `db:"id" json:"id"`
	UserID    string     `db:"user_id" json:"userId"`
	Title     string     `db:"title" json:"title"`
	Body      string     `db:"body" json:"body"`
	Read      bool       `db:"read" json:"read"`
	ReadAt    *time.Time `db:"read_at" json:"readAt,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"createdAt"`
}
