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

type noteService struct {
	noteRepo   repositories.NoteRepository
	folderRepo repositories.FolderRepository
	authorizer services.Authorizer
	logger     *slog.Logger
}

// NewNoteService creates a new note service
func NewNoteService(
	noteRepo repositories.NoteRepository,
	folderRepo repositories.FolderRepository,
	authorizer services.Authorizer,
	logger *slog.Logger,
) services.NoteService {
	return &noteService{
		noteRepo:   noteRepo,
		folderRepo: folderRepo,
		authorizer: authorizer,
		logger:     logger,
	}
}

// CreateNote creates a new note
func (s *noteService) CreateNote(ctx context.Context, userID string, req *services.CreateNoteRequest) (*models.Note, error) {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.Title, validation.Required, validation.Length(1, config.MaxNoteTitleLength)),
		validation.Field(&req.Content, validation.Length(0, config.MaxNoteContentLength)),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	if req.WorkspaceID == nil && req.FolderID != nil {
		return nil, fmt.Errorf("%w: personal notes cannot be placed in folders", domain.ErrValidation)
	}

	if req.FolderID != nil {
		folder, err := s.folderRepo.GetByID(ctx, *req.FolderID)
		if err != nil {
			return nil, fmt.Errorf("note folder: %w", err)
		}
		if folder.WorkspaceID == nil || *folder.WorkspaceID != *req.WorkspaceID {
			return nil, fmt.Errorf("%w: folder belongs to a different workspace", domain.ErrValidation)
		}

		ok, err := s.authorizer.CanEditFolder(ctx, userID, *req.FolderID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, &domain.ForbiddenError{Message: fmt.Sprintf("folder %s cannot be edited by this user", *req.FolderID)}
		}
	} else if req.WorkspaceID != nil {
		ok, err := s.authorizer.CanEditNotes(ctx, userID, *req.WorkspaceID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, &domain.ForbiddenError{Message: fmt.Sprintf("workspace %s cannot be edited by this user", *req.WorkspaceID)}
		}
	}

	now := time.Now()
	note := &models.Note{
		WorkspaceID: req.WorkspaceID,
		FolderID:    req.FolderID,
		CreatorID:   userID,
		Title:       strings.TrimSpace(req.Title),
		Content:     req.Content,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.noteRepo.Create(ctx, note); err != nil {
		return nil, err
	}

	s.logger.Info("note created",
		"id", note.ID,
		"workspace_id", note.WorkspaceID,
		"folder_id", note.FolderID,
		"creator_id", userID,
	)

	return note, nil
}

// GetNote retrieves a note the user can access
func (s *noteService) GetNote(ctx context.Context, userID, noteID string) (*models.Note, error) {
	note, err := s.noteRepo.GetByID(ctx, noteID)
	if err != nil {
		return nil, err
	}

	if err := s.checkNoteAccess(ctx, userID, note); err != nil {
		return nil, err
	}

	return note, nil
}

// ListNotes lists accessible notes in a workspace. When FolderID is set the
// listing covers the folder and its entire subtree.
func (s *noteService) ListNotes(ctx context.Context, userID string, req *services.ListNotesRequest) ([]models.Note, error) {
	ok, err := s.authorizer.CanAccessWorkspace(ctx, userID, req.WorkspaceID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &domain.ForbiddenError{Message: fmt.Sprintf("access denied to workspace %s", req.WorkspaceID)}
	}

	accessible, err := s.authorizer.AccessibleFolderIDs(ctx, userID, req.WorkspaceID)
	if err != nil {
		return nil, err
	}

	var scope []string
	if req.FolderID != nil {
		if _, ok := accessible[*req.FolderID]; !ok {
			return nil, &domain.ForbiddenError{Message: fmt.Sprintf("access denied to folder %s", *req.FolderID)}
		}

		// Expand the filter to the folder's full subtree, pruned to what
		// the user can actually see
		children, err := s.folderRepo.ListByWorkspace(ctx, req.WorkspaceID)
		if err != nil {
			return nil, err
		}
		byParent := make(map[string][]string)
		for _, f := range children {
			if f.ParentID != nil {
				byParent[*f.ParentID] = append(byParent[*f.ParentID], f.ID)
			}
		}
		scope = append(scope, *req.FolderID)
		frontier := []string{*req.FolderID}
		for len(frontier) > 0 {
			var next []string
			for _, id := range frontier {
				for _, child := range byParent[id] {
					if _, ok := accessible[child]; ok {
						scope = append(scope, child)
						next = append(next, child)
					}
				}
			}
			frontier = next
		}
	}

	notes, err := s.noteRepo.ListByWorkspace(ctx, req.WorkspaceID, scope)
	if err != nil {
		return nil, err
	}

	if req.FolderID != nil {
		return notes, nil
	}

	// Unscoped listing: keep root notes, drop notes in folders the user
	// cannot see
	visible := make([]models.Note, 0, len(notes))
	for _, note := range notes {
		if note.FolderID == nil {
			visible = append(visible, note)
			continue
		}
		if _, ok := accessible[*note.FolderID]; ok {
			visible = append(visible, note)
		}
	}

	return visible, nil
}

// UpdateNote updates a note's title, content or folder
func (s *noteService) UpdateNote(ctx context.Context, userID, noteID string, req *services.UpdateNoteRequest) (*models.Note, error) {
	note, err := s.noteRepo.GetByID(ctx, noteID)
	if err != nil {
		return nil, err
	}

	if err := s.checkNoteEdit(ctx, userID, note); err != nil {
		return nil, err
	}

	if req.Title != nil {
		if err := validation.Validate(*req.Title, validation.Required, validation.Length(1, config.MaxNoteTitleLength)); err != nil {
			return nil, fmt.Errorf("%w: title %v", domain.ErrValidation, err)
		}
		note.Title = strings.TrimSpace(*req.Title)
	}

	if req.Content != nil {
		if err := validation.Validate(*req.Content, validation.Length(0, config.MaxNoteContentLength)); err != nil {
			return nil, fmt.Errorf("%w: content %v", domain.ErrValidation, err)
		}
		note.Content = *req.Content
	}

	// Tri-state: only move the note if the field was present in the request
	if req.FolderID.Present {
		if note.WorkspaceID == nil && req.FolderID.Value != nil {
			return nil, fmt.Errorf("%w: personal notes cannot be placed in folders", domain.ErrValidation)
		}

		if req.FolderID.Value != nil {
			folder, err := s.folderRepo.GetByID(ctx, *req.FolderID.Value)
			if err != nil {
				return nil, fmt.Errorf("note folder: %w", err)
			}
			if folder.WorkspaceID == nil || note.WorkspaceID == nil || *folder.WorkspaceID != *note.WorkspaceID {
				return nil, fmt.Errorf("%w: folder belongs to a different workspace", domain.ErrValidation)
			}

			ok, err := s.authorizer.CanEditFolder(ctx, userID, folder.ID)
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, &domain.ForbiddenError{Message: fmt.Sprintf("folder %s cannot be edited by this user", folder.ID)}
			}

			note.FolderID = &folder.ID
		} else {
			note.FolderID = nil
		}
	}

	note.UpdatedAt = time.Now()

	if err := s.noteRepo.Update(ctx, note); err != nil {
		return nil, err
	}

	s.logger.Info("note updated", "id", noteID, "folder_id", note.FolderID)

	return note, nil
}

// DeleteNote soft-deletes a note. Deleting workspace notes requires
// management rights, not just edit rights.
func (s *noteService) DeleteNote(ctx context.Context, userID, noteID string) error {
	note, err := s.noteRepo.GetByID(ctx, noteID)
	if err != nil {
		return err
	}

	if note.WorkspaceID == nil {
		if note.CreatorID != userID {
			return &domain.ForbiddenError{Message: fmt.Sprintf("access denied to note %s", noteID)}
		}
	} else {
		ok, err := s.authorizer.CanDeleteNotes(ctx, userID, *note.WorkspaceID)
		if err != nil {
			return err
		}
		if !ok {
			return &domain.ForbiddenError{Message: fmt.Sprintf("note %s cannot be deleted by this user", noteID)}
		}
	}

	if err := s.noteRepo.SoftDelete(ctx, noteID); err != nil {
		return err
	}

	s.logger.Info("note deleted", "id", noteID, "user_id", userID)

	return nil
}

// checkNoteAccess verifies read access: personal notes are creator-only,
// folder notes follow the folder resolution, root notes follow workspace access
func (s *noteService) checkNoteAccess(ctx context.Context, userID string, note *models.Note) error {
	if note.WorkspaceID == nil {
		if note.CreatorID != userID {
			return &domain.ForbiddenError{Message: fmt.Sprintf("access denied to note %s", note.ID)}
		}
		return nil
	}

	if note.FolderID != nil {
		ok, err := s.authorizer.CanAccessFolder(ctx, userID, *note.FolderID)
		if err != nil {
			return err
		}
		if !ok {
			return &domain.ForbiddenError{Message: fmt.Sprintf("access denied to note %s", note.ID)}
		}
		return nil
	}

	ok, err := s.authorizer.CanAccessWorkspace(ctx, userID, *note.WorkspaceID)
	if err != nil {
		return err
	}
	if !ok {
		return &domain.ForbiddenError{Message: fmt.Sprintf("access denied to note %s", note.ID)}
	}
	return nil
}

// checkNoteEdit verifies write access with the same scoping as checkNoteAccess
func (s *noteService) checkNoteEdit(ctx context.Context, userID string, note *models.Note) error {
	if note.WorkspaceID == nil {
		if note.CreatorID != userID {
			return &domain.ForbiddenError{Message: fmt.Sprintf("access denied to note %s", note.ID)}
		}
		return nil
	}

	if note.FolderID != nil {
		ok, err := s.authorizer.CanEditFolder(ctx, userID, *note.FolderID)
		if err != nil {
			return err
		}
		if !ok {
			return &domain.ForbiddenError{Message: fmt.Sprintf("note %s cannot be edited by this user", note.ID)}
		}
		return nil
	}

	ok, err := s.authorizer.CanEditNotes(ctx, userID, *note.WorkspaceID)
	if err != nil {
		return err
	}
	if !ok {
		return &domain.ForbiddenError{Message: fmt.Sprintf("note %s cannot be edited by this user", note.ID)}
	}
	return nil
}
