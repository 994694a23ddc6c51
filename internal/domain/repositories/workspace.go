package repositories

import (
	"context"

	"quill/internal/domain/models"
)

// WorkspaceRepository defines data access operations for workspaces
type WorkspaceRepository interface {
	// Create creates a new workspace
	Create(ctx context.Context, workspace *models.Workspace) error

	// GetByID retrieves a workspace by ID (soft-deleted rows excluded)
	GetByID(ctx context.Context, id string) (*models.Workspace, error)

	// Update updates a workspace's mutable fields
	Update(ctx context.Context, workspace *models.Workspace) error

	// SoftDelete marks a workspace as deleted
	SoftDelete(ctx context.Context, id string) error

	// ListVisibleToUser lists workspaces the user owns or is a member of
	ListVisibleToUser(ctx context.Context, userID string) ([]models.Workspace, error)
}

// MembershipRepository defines data access operations for workspace members
type MembershipRepository interface {
	// Get retrieves the single membership row for (workspaceID, userID).
	// Returns (nil, nil) when the user is not a member.
	Get(ctx context.Context, workspaceID, userID string) (*models.Membership, error)

	// ListByWorkspace lists all members of a workspace
	ListByWorkspace(ctx context.Context, workspaceID string) ([]models.Membership, error)

	// Create adds a member to a workspace
	Create(ctx context.Context, membership *models.Membership) error

	// UpdateRole changes an existing member's role
	UpdateRole(ctx context.Context, workspaceID, userID, role string) error

	// Delete removes a member from a workspace
	Delete(ctx context.Context, workspaceID, userID string) error
}
