package repositories

import (
	"context"

	"quill/internal/domain/models"
)

// FolderRepository defines data access operations for folders
type FolderRepository interface {
	// Create creates a new folder
	Create(ctx context.Context, folder *models.Folder) error

	// GetByID retrieves a folder by ID (soft-deleted rows excluded)
	GetByID(ctx context.Context, id string) (*models.Folder, error)

	// Update updates a folder (rename, move, privacy)
	Update(ctx context.Context, folder *models.Folder) error

	// SoftDeleteMany marks the given folders as deleted
	SoftDeleteMany(ctx context.Context, ids []string) error

	// ListByWorkspace retrieves all folders in a workspace (flat list)
	ListByWorkspace(ctx context.Context, workspaceID string) ([]models.Folder, error)

	// ListChildIDs returns the IDs of the direct children of every folder in
	// the frontier, in a single query (one round-trip per tree level)
	ListChildIDs(ctx context.Context, parentIDs []string) ([]string, error)

	// ListChildren lists the immediate child folders of a parent
	// (nil parent = workspace root)
	ListChildren(ctx context.Context, workspaceID string, parentID *string) ([]models.Folder, error)
}

// FolderPermissionRepository defines data access for per-user folder grants
type FolderPermissionRepository interface {
	// Get retrieves the grant for (folderID, userID).
	// Returns (nil, nil) when no grant exists.
	Get(ctx context.Context, folderID, userID string) (*models.FolderPermission, error)

	// ListByFolder lists all grants on a folder
	ListByFolder(ctx context.Context, folderID string) ([]models.FolderPermission, error)

	// ListByUserInWorkspace lists the user's grants across a workspace's folders
	ListByUserInWorkspace(ctx context.Context, workspaceID, userID string) ([]models.FolderPermission, error)

	// Upsert creates or updates a grant
	Upsert(ctx context.Context, perm *models.FolderPermission) error

	// Delete removes a grant
	Delete(ctx context.Context, folderID, userID string) error
}
