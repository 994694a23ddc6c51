package models

import (
	"time"
)

type Comment struct {
	ID        string     `json:"id" db:"id"`
	NoteID    string     `json:"note_id" db:"note_id"`
	AuthorID  string     `json:"author_id" db:"author_id"`
	ParentID  *string    `json:"parent_id,omitempty" db:"parent_id"` // NULL = top-level comment
	Content   string     `json:"content" db:"content"`
	Resolved  bool       `json:"resolved" db:"resolved"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}
