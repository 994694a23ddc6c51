package authz

import (
	"context"
	"fmt"
	"log/slog"

	"quill/internal/authz/matrix"
	"quill/internal/config"
	"quill/internal/domain/models"
	"quill/internal/domain/repositories"
	"quill/internal/domain/services"
)

// Resolver implements services.Authorizer on top of the relational store.
//
// Every resolution is a stateless pure read taking explicit (user, resource)
// arguments: nothing is cached between calls, so two concurrent checks run
// fully independently and each reflects the committed state at the time it
// runs. The resolver itself never raises Forbidden; it returns role-or-none
// and leaves the decision to raise to the calling service.
type Resolver struct {
	workspaces repositories.WorkspaceRepository
	members    repositories.MembershipRepository
	folders    repositories.FolderRepository
	grants     repositories.FolderPermissionRepository
	matrix     *matrix.Registry
	logger     *slog.Logger
}

// NewResolver creates the permission resolver
func NewResolver(
	workspaceRepo repositories.WorkspaceRepository,
	membershipRepo repositories.MembershipRepository,
	folderRepo repositories.FolderRepository,
	grantRepo repositories.FolderPermissionRepository,
	roleMatrix *matrix.Registry,
	logger *slog.Logger,
) services.Authorizer {
	return &Resolver{
		workspaces: workspaceRepo,
		members:    membershipRepo,
		folders:    folderRepo,
		grants:     grantRepo,
		matrix:     roleMatrix,
		logger:     logger,
	}
}

// GetUserRoleInWorkspace resolves the user's workspace role.
// Owner first, then the personal-workspace short-circuit, then membership:
// a personal workspace grants access only to its owner, even if a stray
// membership row exists.
func (r *Resolver) GetUserRoleInWorkspace(ctx context.Context, userID, workspaceID string) (models.Role, error) {
	workspace, err := r.workspaces.GetByID(ctx, workspaceID)
	if err != nil {
		return models.RoleNone, err
	}

	if workspace.OwnerID == userID {
		return models.RoleOwner, nil
	}

	if workspace.IsPersonal {
		return models.RoleNone, nil
	}

	membership, err := r.members.Get(ctx, workspaceID, userID)
	if err != nil {
		return models.RoleNone, fmt.Errorf("membership lookup: %w", err)
	}
	if membership == nil {
		return models.RoleNone, nil
	}

	role, err := models.ParseRole(membership.Role)
	if err != nil {
		return models.RoleNone, fmt.Errorf("workspace %s member %s: %w", workspaceID, userID, err)
	}

	return role, nil
}

// CanAccessWorkspace reports whether the user may view the workspace
func (r *Resolver) CanAccessWorkspace(ctx context.Context, userID, workspaceID string) (bool, error) {
	role, err := r.GetUserRoleInWorkspace(ctx, userID, workspaceID)
	if err != nil {
		return false, err
	}
	return r.matrix.Allows(role, matrix.ActionAccessWorkspace), nil
}

// CanManageWorkspace reports whether the user may change workspace settings
// and membership
func (r *Resolver) CanManageWorkspace(ctx context.Context, userID, workspaceID string) (bool, error) {
	role, err := r.GetUserRoleInWorkspace(ctx, userID, workspaceID)
	if err != nil {
		return false, err
	}
	return r.matrix.Allows(role, matrix.ActionManageWorkspace), nil
}

// CanEditNotes reports whether the user may create and modify notes in the
// workspace
func (r *Resolver) CanEditNotes(ctx context.Context, userID, workspaceID string) (bool, error) {
	role, err := r.GetUserRoleInWorkspace(ctx, userID, workspaceID)
	if err != nil {
		return false, err
	}
	return r.matrix.Allows(role, matrix.ActionEditNotes), nil
}

// CanDeleteNotes reports whether the user may delete notes. The matrix gives
// notes.delete to OWNER/ADMIN only: editors create and modify but never
// delete.
func (r *Resolver) CanDeleteNotes(ctx context.Context, userID, workspaceID string) (bool, error) {
	role, err := r.GetUserRoleInWorkspace(ctx, userID, workspaceID)
	if err != nil {
		return false, err
	}
	return r.matrix.Allows(role, matrix.ActionDeleteNotes), nil
}

// GetEffectiveFolderRole resolves the user's effective role on a folder:
//
//  1. Legacy folders without a workspace belong to their creator; others
//     need an explicit grant.
//  2. Workspace access is a strict prerequisite for any folder access.
//  3. Workspace OWNER/ADMIN bypass privacy and folder-level overrides.
//  4. A private folder requires an explicit grant, combined down to the
//     narrower of grant and workspace role.
//  5. An explicit grant on a public folder combines the same way.
//  6. Otherwise the role is inherited from the parent folder (an inherited
//     OWNER/ADMIN counts as ADMIN for the combination, since only a true
//     workspace owner/admin takes the bypass), falling back to the
//     workspace role at the root.
func (r *Resolver) GetEffectiveFolderRole(ctx context.Context, userID, folderID string) (models.Role, error) {
	return r.effectiveFolderRole(ctx, userID, folderID, 0)
}

func (r *Resolver) effectiveFolderRole(ctx context.Context, userID, folderID string, depth int) (models.Role, error) {
	if depth > config.MaxFolderDepth {
		return models.RoleNone, fmt.Errorf("folder %s: ancestry deeper than %d levels, parent chain is likely cyclic", folderID, config.MaxFolderDepth)
	}

	folder, err := r.folders.GetByID(ctx, folderID)
	if err != nil {
		return models.RoleNone, err
	}

	grant, err := r.grants.Get(ctx, folderID, userID)
	if err != nil {
		return models.RoleNone, fmt.Errorf("folder grant lookup: %w", err)
	}

	var grantRole models.Role
	if grant != nil {
		grantRole, err = models.ParseRole(grant.Role)
		if err != nil {
			return models.RoleNone, fmt.Errorf("folder %s grant for %s: %w", folderID, userID, err)
		}
	}

	// Legacy folder owned directly by a user
	if folder.WorkspaceID == nil {
		if folder.CreatorID == userID {
			return models.RoleOwner, nil
		}
		return grantRole, nil
	}

	workspaceRole, err := r.GetUserRoleInWorkspace(ctx, userID, *folder.WorkspaceID)
	if err != nil {
		return models.RoleNone, err
	}
	if workspaceRole == models.RoleNone {
		return models.RoleNone, nil
	}

	// Owners and workspace admins bypass privacy and folder overrides
	if workspaceRole == models.RoleOwner || workspaceRole == models.RoleAdmin {
		return workspaceRole, nil
	}

	if folder.IsPrivate {
		if grant == nil {
			return models.RoleNone, nil
		}
		return models.CombineRoles(workspaceRole, grantRole), nil
	}

	if grant != nil {
		return models.CombineRoles(workspaceRole, grantRole), nil
	}

	if folder.ParentID != nil {
		parentRole, err := r.effectiveFolderRole(ctx, userID, *folder.ParentID, depth+1)
		if err != nil {
			return models.RoleNone, err
		}
		// Inherited owner/admin is not the real bypass
		if parentRole == models.RoleOwner || parentRole == models.RoleAdmin {
			parentRole = models.RoleAdmin
		}
		return models.CombineRoles(workspaceRole, parentRole), nil
	}

	return workspaceRole, nil
}

// CanAccessFolder reports whether the user's effective folder role is
// non-none
func (r *Resolver) CanAccessFolder(ctx context.Context, userID, folderID string) (bool, error) {
	role, err := r.GetEffectiveFolderRole(ctx, userID, folderID)
	if err != nil {
		return false, err
	}
	return r.matrix.Allows(role, matrix.ActionAccessFolder), nil
}

// CanEditFolder reports whether the user's effective folder role is at least
// EDITOR
func (r *Resolver) CanEditFolder(ctx context.Context, userID, folderID string) (bool, error) {
	role, err := r.GetEffectiveFolderRole(ctx, userID, folderID)
	if err != nil {
		return false, err
	}
	return r.matrix.Allows(role, matrix.ActionEditFolder), nil
}

// CanManageFolder reports whether the user may change the folder's privacy
// and grants. This requires workspace-level management rights on the
// folder's workspace; explicit folder grants only ever confer read/edit.
func (r *Resolver) CanManageFolder(ctx context.Context, userID, folderID string) (bool, error) {
	folder, err := r.folders.GetByID(ctx, folderID)
	if err != nil {
		return false, err
	}

	// Legacy folder: only its creator manages it
	if folder.WorkspaceID == nil {
		if folder.CreatorID != userID {
			return false, nil
		}
		return r.matrix.Allows(models.RoleOwner, matrix.ActionManageFolder), nil
	}

	role, err := r.GetUserRoleInWorkspace(ctx, userID, *folder.WorkspaceID)
	if err != nil {
		return false, err
	}
	return r.matrix.Allows(role, matrix.ActionManageFolder), nil
}

// AccessibleFolderIDs resolves every folder in the workspace the user can
// access. All folders and the user's grants are loaded once and the
// resolution runs over the in-memory parent map, so the cost is two queries
// regardless of tree depth.
func (r *Resolver) AccessibleFolderIDs(ctx context.Context, userID, workspaceID string) (map[string]struct{}, error) {
	accessible := make(map[string]struct{})

	workspaceRole, err := r.GetUserRoleInWorkspace(ctx, userID, workspaceID)
	if err != nil {
		return nil, err
	}
	if workspaceRole == models.RoleNone {
		return accessible, nil
	}

	folders, err := r.folders.ListByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	if workspaceRole == models.RoleOwner || workspaceRole == models.RoleAdmin {
		for _, f := range folders {
			accessible[f.ID] = struct{}{}
		}
		return accessible, nil
	}

	grantRows, err := r.grants.ListByUserInWorkspace(ctx, workspaceID, userID)
	if err != nil {
		return nil, err
	}
	grantByFolder := make(map[string]models.Role, len(grantRows))
	for _, g := range grantRows {
		role, err := models.ParseRole(g.Role)
		if err != nil {
			return nil, fmt.Errorf("folder %s grant for %s: %w", g.FolderID, userID, err)
		}
		grantByFolder[g.FolderID] = role
	}

	byID := make(map[string]*models.Folder, len(folders))
	for i := range folders {
		byID[folders[i].ID] = &folders[i]
	}

	// Memoized in-memory mirror of the per-folder resolution (steps 4-6 of
	// GetEffectiveFolderRole; the bypass cases were handled above).
	resolved := make(map[string]models.Role, len(folders))
	visiting := make(map[string]struct{})

	var resolve func(id string) models.Role
	resolve = func(id string) models.Role {
		if role, ok := resolved[id]; ok {
			return role
		}
		folder, ok := byID[id]
		if !ok {
			return models.RoleNone
		}
		if _, ok := visiting[id]; ok {
			// cyclic parent chain: deny rather than loop
			return models.RoleNone
		}
		visiting[id] = struct{}{}
		defer delete(visiting, id)

		var role models.Role
		switch {
		case folder.IsPrivate:
			if grant, ok := grantByFolder[id]; ok {
				role = models.CombineRoles(workspaceRole, grant)
			} else {
				role = models.RoleNone
			}
		default:
			if grant, ok := grantByFolder[id]; ok {
				role = models.CombineRoles(workspaceRole, grant)
			} else if folder.ParentID != nil {
				role = models.CombineRoles(workspaceRole, resolve(*folder.ParentID))
			} else {
				role = workspaceRole
			}
		}

		resolved[id] = role
		return role
	}

	for _, f := range folders {
		if resolve(f.ID) != models.RoleNone {
			accessible[f.ID] = struct{}{}
		}
	}

	r.logger.Debug("accessible folders resolved",
		"workspace_id", workspaceID,
		"user_id", userID,
		"total", len(folders),
		"accessible", len(accessible),
	)

	return accessible, nil
}
