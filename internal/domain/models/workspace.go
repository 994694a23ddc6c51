package models

import (
	"time"
)

type Workspace struct {
	ID         string     `json:"id" db:"id"`
	OwnerID    string     `json:"owner_id" db:"owner_id"`
	Name       string     `json:"name" db:"name"`
	IsPersonal bool       `json:"is_personal" db:"is_personal"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt  *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

// Membership is a (workspace, user, role) row. The workspace owner never has
// a membership row; OWNER is derived from Workspace.OwnerID.
type Membership struct {
	WorkspaceID string    `json:"workspace_id" db:"workspace_id"`
	UserID      string    `json:"user_id" db:"user_id"`
	Role        string    `json:"role" db:"role"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}
