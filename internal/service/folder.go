package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"quill/internal/authz"
	"quill/internal/config"
	"quill/internal/domain"
	"quill/internal/domain/models"
	"quill/internal/domain/repositories"
	"quill/internal/domain/services"
)

type folderService struct {
	folderRepo repositories.FolderRepository
	grantRepo  repositories.FolderPermissionRepository
	noteRepo   repositories.NoteRepository
	txManager  repositories.TransactionManager
	authorizer services.Authorizer
	logger     *slog.Logger
}

// NewFolderService creates a new folder service
func NewFolderService(
	folderRepo repositories.FolderRepository,
	grantRepo repositories.FolderPermissionRepository,
	noteRepo repositories.NoteRepository,
	txManager repositories.TransactionManager,
	authorizer services.Authorizer,
	logger *slog.Logger,
) services.FolderService {
	return &folderService{
		folderRepo: folderRepo,
		grantRepo:  grantRepo,
		noteRepo:   noteRepo,
		txManager:  txManager,
		authorizer: authorizer,
		logger:     logger,
	}
}

// CreateFolder creates a new folder
func (s *folderService) CreateFolder(ctx context.Context, userID string, req *services.CreateFolderRequest) (*models.Folder, error) {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.WorkspaceID, validation.Required),
		validation.Field(&req.Name, validation.Required, validation.Length(1, config.MaxFolderNameLength)),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	// Creating inside a parent requires edit rights on that parent;
	// creating at the root requires note-edit rights on the workspace.
	if req.ParentID != nil {
		parent, err := s.folderRepo.GetByID(ctx, *req.ParentID)
		if err != nil {
			return nil, fmt.Errorf("parent folder: %w", err)
		}
		if parent.WorkspaceID == nil || *parent.WorkspaceID != req.WorkspaceID {
			return nil, fmt.Errorf("%w: parent folder belongs to a different workspace", domain.ErrValidation)
		}

		ok, err := s.authorizer.CanEditFolder(ctx, userID, *req.ParentID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, &domain.ForbiddenError{Message: fmt.Sprintf("folder %s cannot be edited by this user", *req.ParentID)}
		}
	} else {
		ok, err := s.authorizer.CanEditNotes(ctx, userID, req.WorkspaceID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, &domain.ForbiddenError{Message: fmt.Sprintf("workspace %s cannot be edited by this user", req.WorkspaceID)}
		}
	}

	// Marking a folder private is a permission change; managers only
	if req.IsPrivate {
		ok, err := s.authorizer.CanManageWorkspace(ctx, userID, req.WorkspaceID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, &domain.ForbiddenError{Message: "only workspace managers may create private folders"}
		}
	}

	name := strings.TrimSpace(req.Name)
	if err := s.checkSiblingName(ctx, req.WorkspaceID, req.ParentID, name, ""); err != nil {
		return nil, err
	}

	now := time.Now()
	folder := &models.Folder{
		WorkspaceID: &req.WorkspaceID,
		CreatorID:   userID,
		ParentID:    req.ParentID,
		Name:        name,
		IsPrivate:   req.IsPrivate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.folderRepo.Create(ctx, folder); err != nil {
		return nil, err
	}

	s.logger.Info("folder created",
		"id", folder.ID,
		"name", folder.Name,
		"workspace_id", req.WorkspaceID,
		"parent_id", folder.ParentID,
		"is_private", folder.IsPrivate,
	)

	return folder, nil
}

// GetFolder retrieves a folder the user can access
func (s *folderService) GetFolder(ctx context.Context, userID, folderID string) (*models.Folder, error) {
	ok, err := s.authorizer.CanAccessFolder(ctx, userID, folderID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &domain.ForbiddenError{Message: fmt.Sprintf("access denied to folder %s", folderID)}
	}

	return s.folderRepo.GetByID(ctx, folderID)
}

// ListChildren lists the accessible child folders of a parent
func (s *folderService) ListChildren(ctx context.Context, userID, workspaceID string, parentID *string) ([]models.Folder, error) {
	if parentID != nil {
		ok, err := s.authorizer.CanAccessFolder(ctx, userID, *parentID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, &domain.ForbiddenError{Message: fmt.Sprintf("access denied to folder %s", *parentID)}
		}
	} else {
		ok, err := s.authorizer.CanAccessWorkspace(ctx, userID, workspaceID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, &domain.ForbiddenError{Message: fmt.Sprintf("access denied to workspace %s", workspaceID)}
		}
	}

	children, err := s.folderRepo.ListChildren(ctx, workspaceID, parentID)
	if err != nil {
		return nil, err
	}

	// Private children without a grant must not appear in listings
	accessible, err := s.authorizer.AccessibleFolderIDs(ctx, userID, workspaceID)
	if err != nil {
		return nil, err
	}

	visible := make([]models.Folder, 0, len(children))
	for _, child := range children {
		if _, ok := accessible[child.ID]; ok {
			visible = append(visible, child)
		}
	}

	return visible, nil
}

// UpdateFolder renames or moves a folder
func (s *folderService) UpdateFolder(ctx context.Context, userID, folderID string, req *services.UpdateFolderRequest) (*models.Folder, error) {
	ok, err := s.authorizer.CanEditFolder(ctx, userID, folderID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &domain.ForbiddenError{Message: fmt.Sprintf("folder %s cannot be edited by this user", folderID)}
	}

	if req.Name != nil {
		if err := validation.Validate(*req.Name, validation.Required, validation.Length(1, config.MaxFolderNameLength)); err != nil {
			return nil, fmt.Errorf("%w: name %v", domain.ErrValidation, err)
		}
	}

	folder, err := s.folderRepo.GetByID(ctx, folderID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		folder.Name = strings.TrimSpace(*req.Name)
	}

	// Tri-state: only move the folder if the field was present in the request
	if req.ParentID.Present {
		if req.ParentID.Value != nil {
			parent, err := s.folderRepo.GetByID(ctx, *req.ParentID.Value)
			if err != nil {
				return nil, fmt.Errorf("parent folder: %w", err)
			}
			if folder.WorkspaceID == nil || parent.WorkspaceID == nil || *parent.WorkspaceID != *folder.WorkspaceID {
				return nil, fmt.Errorf("%w: parent folder belongs to a different workspace", domain.ErrValidation)
			}

			// A folder can never move into its own subtree
			if err := s.validateNoCircularReference(ctx, folderID, parent.ID); err != nil {
				return nil, err
			}

			folder.ParentID = &parent.ID
			s.logger.Debug("moving folder to new parent", "folder_id", folderID, "parent_id", parent.ID)
		} else {
			// null = move to workspace root
			folder.ParentID = nil
			s.logger.Debug("moving folder to root", "folder_id", folderID)
		}
	}

	if folder.WorkspaceID != nil && (req.Name != nil || req.ParentID.Present) {
		if err := s.checkSiblingName(ctx, *folder.WorkspaceID, folder.ParentID, folder.Name, folder.ID); err != nil {
			return nil, err
		}
	}

	folder.UpdatedAt = time.Now()

	if err := s.folderRepo.Update(ctx, folder); err != nil {
		return nil, err
	}

	s.logger.Info("folder updated",
		"id", folder.ID,
		"name", folder.Name,
		"parent_id", folder.ParentID,
	)

	return folder, nil
}

// SetPrivacy toggles a folder's privacy flag
func (s *folderService) SetPrivacy(ctx context.Context, userID, folderID string, isPrivate bool) (*models.Folder, error) {
	ok, err := s.authorizer.CanManageFolder(ctx, userID, folderID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &domain.ForbiddenError{Message: fmt.Sprintf("folder %s cannot be managed by this user", folderID)}
	}

	folder, err := s.folderRepo.GetByID(ctx, folderID)
	if err != nil {
		return nil, err
	}

	folder.IsPrivate = isPrivate
	folder.UpdatedAt = time.Now()

	if err := s.folderRepo.Update(ctx, folder); err != nil {
		return nil, err
	}

	s.logger.Info("folder privacy changed", "id", folderID, "is_private", isPrivate)

	return folder, nil
}

// SetPermission creates or updates a per-user grant on a folder
func (s *folderService) SetPermission(ctx context.Context, userID, folderID string, req *services.SetFolderPermissionRequest) (*models.FolderPermission, error) {
	ok, err := s.authorizer.CanManageFolder(ctx, userID, folderID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &domain.ForbiddenError{Message: fmt.Sprintf("folder %s cannot be managed by this user", folderID)}
	}

	if err := validateMemberRequest(req.UserID, req.Role); err != nil {
		return nil, err
	}

	now := time.Now()
	perm := &models.FolderPermission{
		FolderID:  folderID,
		UserID:    req.UserID,
		Role:      req.Role,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.grantRepo.Upsert(ctx, perm); err != nil {
		return nil, err
	}

	s.logger.Info("folder permission set",
		"folder_id", folderID,
		"user_id", req.UserID,
		"role", req.Role,
	)

	return perm, nil
}

// RemovePermission removes a per-user grant
func (s *folderService) RemovePermission(ctx context.Context, userID, folderID, granteeID string) error {
	ok, err := s.authorizer.CanManageFolder(ctx, userID, folderID)
	if err != nil {
		return err
	}
	if !ok {
		return &domain.ForbiddenError{Message: fmt.Sprintf("folder %s cannot be managed by this user", folderID)}
	}

	if err := s.grantRepo.Delete(ctx, folderID, granteeID); err != nil {
		return err
	}

	s.logger.Info("folder permission removed", "folder_id", folderID, "user_id", granteeID)

	return nil
}

// ListPermissions lists a folder's grants
func (s *folderService) ListPermissions(ctx context.Context, userID, folderID string) ([]models.FolderPermission, error) {
	ok, err := s.authorizer.CanManageFolder(ctx, userID, folderID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &domain.ForbiddenError{Message: fmt.Sprintf("folder %s cannot be managed by this user", folderID)}
	}

	return s.grantRepo.ListByFolder(ctx, folderID)
}

// DeleteFolder soft-deletes a folder, its descendant folders and the notes
// they contain, in a single transaction
func (s *folderService) DeleteFolder(ctx context.Context, userID, folderID string) error {
	ok, err := s.authorizer.CanManageFolder(ctx, userID, folderID)
	if err != nil {
		return err
	}
	if !ok {
		return &domain.ForbiddenError{Message: fmt.Sprintf("folder %s cannot be managed by this user", folderID)}
	}

	if _, err := s.folderRepo.GetByID(ctx, folderID); err != nil {
		return err
	}

	var deleted int
	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		descendants, err := authz.CollectDescendants(txCtx, []string{folderID}, s.folderRepo.ListChildIDs)
		if err != nil {
			return err
		}

		ids := make([]string, 0, len(descendants)+1)
		ids = append(ids, folderID)
		for id := range descendants {
			ids = append(ids, id)
		}

		if err := s.noteRepo.SoftDeleteByFolderIDs(txCtx, ids); err != nil {
			return err
		}
		if err := s.folderRepo.SoftDeleteMany(txCtx, ids); err != nil {
			return err
		}

		deleted = len(ids)
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("folder deleted", "id", folderID, "subtree_size", deleted)

	return nil
}

// checkSiblingName rejects duplicate names within the same parent
func (s *folderService) checkSiblingName(ctx context.Context, workspaceID string, parentID *string, name, selfID string) error {
	siblings, err := s.folderRepo.ListChildren(ctx, workspaceID, parentID)
	if err != nil {
		return fmt.Errorf("failed to check for duplicate names: %w", err)
	}
	for _, sibling := range siblings {
		if sibling.ID != selfID && sibling.Name == name {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("a folder named %q already exists in this location", name),
				ResourceType: "folder",
				ResourceID:   sibling.ID,
			}
		}
	}
	return nil
}

// validateNoCircularReference rejects moves that would make folderID an
// ancestor of itself. The walk is capped so corrupt data cannot loop it.
func (s *folderService) validateNoCircularReference(ctx context.Context, folderID, newParentID string) error {
	if folderID == newParentID {
		return fmt.Errorf("%w: cannot move folder to be its own parent", domain.ErrValidation)
	}

	currentID := newParentID
	for depth := 0; depth <= config.MaxFolderDepth; depth++ {
		parent, err := s.folderRepo.GetByID(ctx, currentID)
		if err != nil {
			return err
		}

		if parent.ParentID == nil {
			// Reached root, no circular reference
			return nil
		}

		if *parent.ParentID == folderID {
			return fmt.Errorf("%w: cannot move folder into its own subtree", domain.ErrValidation)
		}

		currentID = *parent.ParentID
	}

	return fmt.Errorf("folder ancestry deeper than %d levels, parent chain is likely cyclic", config.MaxFolderDepth)
}
