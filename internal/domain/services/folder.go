package services

import (
	"context"

	"quill/internal/domain/models"
	"quill/internal/httputil"
)

// FolderService handles folder business logic
type FolderService interface {
	// CreateFolder creates a new folder
	CreateFolder(ctx context.Context, userID string, req *CreateFolderRequest) (*models.Folder, error)

	// GetFolder retrieves a folder the user can access
	GetFolder(ctx context.Context, userID, folderID string) (*models.Folder, error)

	// ListChildren lists the accessible child folders of a parent
	// (nil parent = workspace root)
	ListChildren(ctx context.Context, userID, workspaceID string, parentID *string) ([]models.Folder, error)

	// UpdateFolder renames or moves a folder. Moves that would create a
	// parent cycle are rejected.
	UpdateFolder(ctx context.Context, userID, folderID string, req *UpdateFolderRequest) (*models.Folder, error)

	// SetPrivacy toggles a folder's privacy flag (management rights required)
	SetPrivacy(ctx context.Context, userID, folderID string, isPrivate bool) (*models.Folder, error)

	// SetPermission creates or updates a per-user grant on a folder
	// (management rights required)
	SetPermission(ctx context.Context, userID, folderID string, req *SetFolderPermissionRequest) (*models.FolderPermission, error)

	// RemovePermission removes a per-user grant (management rights required)
	RemovePermission(ctx context.Context, userID, folderID, granteeID string) error

	// ListPermissions lists a folder's grants (management rights required)
	ListPermissions(ctx context.Context, userID, folderID string) ([]models.FolderPermission, error)

	// DeleteFolder soft-deletes a folder, its descendant folders and the
	// notes they contain, in a single transaction
	DeleteFolder(ctx context.Context, userID, folderID string) error
}

// CreateFolderRequest represents a folder creation request
type CreateFolderRequest struct {
	WorkspaceID string  `json:"workspace_id"`
	Name        string  `json:"name"`
	ParentID    *string `json:"parent_id,omitempty"`
	IsPrivate   bool    `json:"is_private"`
}

// UpdateFolderRequest represents a folder rename/move request.
// ParentID uses tri-state semantics: absent = don't move, null = move to
// root, value = move under that folder.
type UpdateFolderRequest struct {
	Name     *string                 `json:"name,omitempty"`
	ParentID httputil.OptionalString `json:"parent_id"`
}

// SetFolderPermissionRequest represents a folder grant request
type SetFolderPermissionRequest struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}
