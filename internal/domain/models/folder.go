package models

import (
	"time"
)

type Folder struct {
	ID          string     `json:"id" db:"id"`
	WorkspaceID *string    `json:"workspace_id,omitempty" db:"workspace_id"` // NULL = legacy folder owned directly by its creator
	CreatorID   string     `json:"creator_id" db:"creator_id"`
	ParentID    *string    `json:"parent_id,omitempty" db:"parent_id"` // NULL = root level
	Name        string     `json:"name" db:"name"`
	IsPrivate   bool       `json:"is_private" db:"is_private"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

// FolderPermission grants a user a role on a specific folder subtree's
// entry point. Grants never exceed what the workspace role already allows.
type FolderPermission struct {
	FolderID  string    `json:"folder_id" db:"folder_id"`
	UserID    string    `json:"user_id" db:"user_id"`
	Role      string    `json:"role" db:"role"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
