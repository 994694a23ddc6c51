package models

import (
	"time"
)

type Note struct {
	ID          string     `json:"id" db:"id"`
	WorkspaceID *string    `json:"workspace_id,omitempty" db:"workspace_id"` // NULL = personal note owned by its creator
	FolderID    *string    `json:"folder_id,omitempty" db:"folder_id"`       // NULL = workspace root
	CreatorID   string     `json:"creator_id" db:"creator_id"`
	Title       string     `json:"title" db:"title"`
	Content     string     `json:"content" db:"content"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}
