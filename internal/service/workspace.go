package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"quill/internal/config"
	"quill/internal/domain"
	"quill/internal/domain/models"
	"quill/internal/domain/repositories"
	"quill/internal/domain/services"
)

type workspaceService struct {
	workspaceRepo  repositories.WorkspaceRepository
	membershipRepo repositories.MembershipRepository
	noteRepo       repositories.NoteRepository
	authorizer     services.Authorizer
	logger         *slog.Logger
}

// NewWorkspaceService creates a new workspace service
func NewWorkspaceService(
	workspaceRepo repositories.WorkspaceRepository,
	membershipRepo repositories.MembershipRepository,
	noteRepo repositories.NoteRepository,
	authorizer services.Authorizer,
	logger *slog.Logger,
) services.WorkspaceService {
	return &workspaceService{
		workspaceRepo:  workspaceRepo,
		membershipRepo: membershipRepo,
		noteRepo:       noteRepo,
		authorizer:     authorizer,
		logger:         logger,
	}
}

// CreateWorkspace creates a new workspace owned by the user
func (s *workspaceService) CreateWorkspace(ctx context.Context, userID string, req *services.CreateWorkspaceRequest) (*models.Workspace, error) {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, config.MaxWorkspaceNameLength)),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	now := time.Now()
	workspace := &models.Workspace{
		OwnerID:    userID,
		Name:       strings.TrimSpace(req.Name),
		IsPersonal: req.IsPersonal,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.workspaceRepo.Create(ctx, workspace); err != nil {
		return nil, err
	}

	s.logger.Info("workspace created",
		"id", workspace.ID,
		"owner_id", userID,
		"is_personal", workspace.IsPersonal,
	)

	return workspace, nil
}

// GetWorkspace retrieves a workspace the user can access
func (s *workspaceService) GetWorkspace(ctx context.Context, userID, workspaceID string) (*models.Workspace, error) {
	ok, err := s.authorizer.CanAccessWorkspace(ctx, userID, workspaceID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &domain.ForbiddenError{Message: fmt.Sprintf("access denied to workspace %s", workspaceID)}
	}

	return s.workspaceRepo.GetByID(ctx, workspaceID)
}

// ListWorkspaces lists workspaces visible to the user
func (s *workspaceService) ListWorkspaces(ctx context.Context, userID string) ([]models.Workspace, error) {
	return s.workspaceRepo.ListVisibleToUser(ctx, userID)
}

// UpdateWorkspace renames a workspace
func (s *workspaceService) UpdateWorkspace(ctx context.Context, userID, workspaceID string, req *services.UpdateWorkspaceRequest) (*models.Workspace, error) {
	ok, err := s.authorizer.CanManageWorkspace(ctx, userID, workspaceID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &domain.ForbiddenError{Message: fmt.Sprintf("workspace %s cannot be managed by this user", workspaceID)}
	}

	if err := validation.ValidateStruct(req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, config.MaxWorkspaceNameLength)),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	workspace, err := s.workspaceRepo.GetByID(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	workspace.Name = strings.TrimSpace(req.Name)
	workspace.UpdatedAt = time.Now()

	if err := s.workspaceRepo.Update(ctx, workspace); err != nil {
		return nil, err
	}

	s.logger.Info("workspace updated", "id", workspaceID, "name", workspace.Name)

	return workspace, nil
}

// DeleteWorkspace soft-deletes a workspace. Personal workspaces are never
// deletable, regardless of note count; non-empty workspaces are a conflict.
func (s *workspaceService) DeleteWorkspace(ctx context.Context, userID, workspaceID string) error {
	workspace, err := s.workspaceRepo.GetByID(ctx, workspaceID)
	if err != nil {
		return err
	}

	if workspace.OwnerID != userID {
		return &domain.ForbiddenError{Message: "only the workspace owner may delete it"}
	}

	if workspace.IsPersonal {
		return &domain.ForbiddenError{
			Message: "personal workspaces cannot be deleted",
			Code:    domain.CodePersonalWorkspaceCannotDelete,
		}
	}

	count, err := s.noteRepo.CountByWorkspace(ctx, workspaceID)
	if err != nil {
		return err
	}
	if count > 0 {
		return &domain.ConflictError{
			Message:      fmt.Sprintf("workspace still contains %d notes", count),
			ResourceType: "workspace",
			ResourceID:   workspaceID,
		}
	}

	if err := s.workspaceRepo.SoftDelete(ctx, workspaceID); err != nil {
		return err
	}

	s.logger.Info("workspace deleted", "id", workspaceID, "owner_id", userID)

	return nil
}

// ListMembers lists a workspace's members
func (s *workspaceService) ListMembers(ctx context.Context, userID, workspaceID string) ([]models.Membership, error) {
	ok, err := s.authorizer.CanAccessWorkspace(ctx, userID, workspaceID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &domain.ForbiddenError{Message: fmt.Sprintf("access denied to workspace %s", workspaceID)}
	}

	return s.membershipRepo.ListByWorkspace(ctx, workspaceID)
}

// AddMember adds a member to a workspace. The personal-workspace check runs
// at this write boundary, not just at read time: personal workspaces never
// accept membership rows.
func (s *workspaceService) AddMember(ctx context.Context, userID, workspaceID string, req *services.AddMemberRequest) (*models.Membership, error) {
	workspace, err := s.workspaceRepo.GetByID(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	if workspace.IsPersonal {
		return nil, &domain.ForbiddenError{
			Message: "personal workspaces cannot have members",
			Code:    domain.CodePersonalWorkspaceNoMembers,
		}
	}

	ok, err := s.authorizer.CanManageWorkspace(ctx, userID, workspaceID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &domain.ForbiddenError{Message: fmt.Sprintf("workspace %s cannot be managed by this user", workspaceID)}
	}

	if err := validateMemberRequest(req.UserID, req.Role); err != nil {
		return nil, err
	}

	if req.UserID == workspace.OwnerID {
		return nil, &domain.ConflictError{
			Message:      "the workspace owner is not eligible for membership",
			ResourceType: "membership",
			ResourceID:   req.UserID,
		}
	}

	now := time.Now()
	membership := &models.Membership{
		WorkspaceID: workspaceID,
		UserID:      req.UserID,
		Role:        req.Role,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.membershipRepo.Create(ctx, membership); err != nil {
		return nil, err
	}

	s.logger.Info("member added",
		"workspace_id", workspaceID,
		"user_id", req.UserID,
		"role", req.Role,
	)

	return membership, nil
}

// UpdateMemberRole changes an existing member's role
func (s *workspaceService) UpdateMemberRole(ctx context.Context, userID, workspaceID, memberID string, req *services.UpdateMemberRoleRequest) error {
	ok, err := s.authorizer.CanManageWorkspace(ctx, userID, workspaceID)
	if err != nil {
		return err
	}
	if !ok {
		return &domain.ForbiddenError{Message: fmt.Sprintf("workspace %s cannot be managed by this user", workspaceID)}
	}

	if err := validateMemberRequest(memberID, req.Role); err != nil {
		return err
	}

	if err := s.membershipRepo.UpdateRole(ctx, workspaceID, memberID, req.Role); err != nil {
		return err
	}

	s.logger.Info("member role updated",
		"workspace_id", workspaceID,
		"user_id", memberID,
		"role", req.Role,
	)

	return nil
}

// RemoveMember removes a member. Managers may remove anyone; members may
// remove themselves (leave).
func (s *workspaceService) RemoveMember(ctx context.Context, userID, workspaceID, memberID string) error {
	if userID != memberID {
		ok, err := s.authorizer.CanManageWorkspace(ctx, userID, workspaceID)
		if err != nil {
			return err
		}
		if !ok {
			return &domain.ForbiddenError{Message: fmt.Sprintf("workspace %s cannot be managed by this user", workspaceID)}
		}
	}

	if err := s.membershipRepo.Delete(ctx, workspaceID, memberID); err != nil {
		return err
	}

	s.logger.Info("member removed", "workspace_id", workspaceID, "user_id", memberID)

	return nil
}

// validateMemberRequest checks a membership target and stored role.
// OWNER is derived from ownership and is never a valid stored role.
func validateMemberRequest(memberID, role string) error {
	err := validation.Errors{
		"user_id": validation.Validate(memberID, validation.Required),
		"role": validation.Validate(role,
			validation.Required,
			validation.In(
				models.RoleAdmin.String(),
				models.RoleEditor.String(),
				models.RoleViewer.String(),
			),
		),
	}.Filter()
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	return nil
}
