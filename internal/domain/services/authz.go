package services

import (
	"context"

	"quill/internal/domain/models"
)

// Authorizer is the permission resolution engine's programmatic surface.
// Every other service delegates its authorization decisions here.
//
// All methods are pure reads against current relational state: results are
// never cached or persisted, so a decision always reflects the latest
// membership and grant rows. Resolution methods return RoleNone for
// "no access" and reserve errors for store failures (which propagate
// unchanged); boolean gates follow the same convention.
type Authorizer interface {
	// GetUserRoleInWorkspace resolves the user's role in a workspace:
	// OWNER for the owner, the membership role for members, RoleNone
	// otherwise. Personal workspaces resolve to RoleNone for everyone but
	// their owner, regardless of membership rows.
	GetUserRoleInWorkspace(ctx context.Context, userID, workspaceID string) (models.Role, error)

	// CanAccessWorkspace reports whether the user may view the workspace
	CanAccessWorkspace(ctx context.Context, userID, workspaceID string) (bool, error)

	// CanManageWorkspace reports whether the user may change workspace
	// settings and membership (OWNER or ADMIN)
	CanManageWorkspace(ctx context.Context, userID, workspaceID string) (bool, error)

	// CanEditNotes reports whether the user may create and modify notes
	// in the workspace (OWNER, ADMIN or EDITOR)
	CanEditNotes(ctx context.Context, userID, workspaceID string) (bool, error)

	// CanDeleteNotes reports whether the user may delete notes. Editors may
	// create and modify but not delete, so this matches CanManageWorkspace.
	CanDeleteNotes(ctx context.Context, userID, workspaceID string) (bool, error)

	// GetEffectiveFolderRole resolves the user's effective role on a folder,
	// combining workspace role, privacy flag, explicit grants and ancestor
	// inheritance
	GetEffectiveFolderRole(ctx context.Context, userID, folderID string) (models.Role, error)

	// CanAccessFolder reports whether the effective folder role is non-none
	CanAccessFolder(ctx context.Context, userID, folderID string) (bool, error)

	// CanEditFolder reports whether the effective folder role is at least
	// EDITOR
	CanEditFolder(ctx context.Context, userID, folderID string) (bool, error)

	// CanManageFolder reports whether the user may change the folder's
	// privacy and grants. Requires workspace management rights; folder
	// grants never confer management.
	CanManageFolder(ctx context.Context, userID, folderID string) (bool, error)

	// AccessibleFolderIDs returns the IDs of every folder in the workspace
	// the user can access, resolved in memory from a single folder load
	AccessibleFolderIDs(ctx context.Context, userID, workspaceID string) (map[string]struct{}, error)
}
