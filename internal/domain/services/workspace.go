package services

import (
	"context"

	"quill/internal/domain/models"
)

// WorkspaceService handles workspace and membership business logic
type WorkspaceService interface {
	// CreateWorkspace creates a new workspace owned by the user
	CreateWorkspace(ctx context.Context, userID string, req *CreateWorkspaceRequest) (*models.Workspace, error)

	// GetWorkspace retrieves a workspace the user can access
	GetWorkspace(ctx context.Context, userID, workspaceID string) (*models.Workspace, error)

	// ListWorkspaces lists workspaces visible to the user (owned + member-of)
	ListWorkspaces(ctx context.Context, userID string) ([]models.Workspace, error)

	// UpdateWorkspace renames a workspace (management rights required)
	UpdateWorkspace(ctx context.Context, userID, workspaceID string, req *UpdateWorkspaceRequest) (*models.Workspace, error)

	// DeleteWorkspace soft-deletes a workspace. Personal workspaces are
	// never deletable; non-empty workspaces are a conflict.
	DeleteWorkspace(ctx context.Context, userID, workspaceID string) error

	// ListMembers lists a workspace's members (access required)
	ListMembers(ctx context.Context, userID, workspaceID string) ([]models.Membership, error)

	// AddMember adds a member. Personal workspaces reject this with the
	// workspace-personal-no-members error code; adding the owner is a
	// conflict.
	AddMember(ctx context.Context, userID, workspaceID string, req *AddMemberRequest) (*models.Membership, error)

	// UpdateMemberRole changes an existing member's role
	UpdateMemberRole(ctx context.Context, userID, workspaceID, memberID string, req *UpdateMemberRoleRequest) error

	// RemoveMember removes a member (managers, or the member themselves)
	RemoveMember(ctx context.Context, userID, workspaceID, memberID string) error
}

// CreateWorkspaceRequest represents a workspace creation request
type CreateWorkspaceRequest struct {
	Name       string `json:"name"`
	IsPersonal bool   `json:"is_personal"`
}

// UpdateWorkspaceRequest represents a workspace rename request
type UpdateWorkspaceRequest struct {
	Name string `json:"name"`
}

// AddMemberRequest represents a membership creation request
type AddMemberRequest struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

// UpdateMemberRoleRequest represents a membership role change
type UpdateMemberRoleRequest struct {
	Role string `json:"role"`
}
