package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"quill/internal/authz"
	"quill/internal/config"
	"quill/internal/domain"
	"quill/internal/domain/models"
	"quill/internal/domain/repositories"
	"quill/internal/domain/services"
)

type commentService struct {
	commentRepo repositories.CommentRepository
	noteRepo    repositories.NoteRepository
	txManager   repositories.TransactionManager
	authorizer  services.Authorizer
	logger      *slog.Logger
}

// NewCommentService creates a new comment service
func NewCommentService(
	commentRepo repositories.CommentRepository,
	noteRepo repositories.NoteRepository,
	txManager repositories.TransactionManager,
	authorizer services.Authorizer,
	logger *slog.Logger,
) services.CommentService {
	return &commentService{
		commentRepo: commentRepo,
		noteRepo:    noteRepo,
		txManager:   txManager,
		authorizer:  authorizer,
		logger:      logger,
	}
}

// CreateComment creates a comment (or a reply) on a note
func (s *commentService) CreateComment(ctx context.Context, userID string, req *services.CreateCommentRequest) (*models.Comment, error) {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.NoteID, validation.Required),
		validation.Field(&req.Content, validation.Required, validation.Length(1, config.MaxCommentLength)),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	note, err := s.noteRepo.GetByID(ctx, req.NoteID)
	if err != nil {
		return nil, err
	}

	if err := s.checkCommentAccess(ctx, userID, note); err != nil {
		return nil, err
	}

	if req.ParentID != nil {
		parent, err := s.commentRepo.GetByID(ctx, *req.ParentID)
		if err != nil {
			return nil, fmt.Errorf("reply target: %w", err)
		}
		if parent.NoteID != note.ID {
			return nil, fmt.Errorf("%w: reply target belongs to a different note", domain.ErrValidation)
		}
	}

	now := time.Now()
	comment := &models.Comment{
		NoteID:    note.ID,
		AuthorID:  userID,
		ParentID:  req.ParentID,
		Content:   req.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	s.logger.Info("comment created",
		"id", comment.ID,
		"note_id", note.ID,
		"author_id", userID,
		"parent_id", comment.ParentID,
	)

	return comment, nil
}

// ListComments lists live comments on a note, oldest first
func (s *commentService) ListComments(ctx context.Context, userID, noteID string) ([]models.Comment, error) {
	note, err := s.noteRepo.GetByID(ctx, noteID)
	if err != nil {
		return nil, err
	}

	if err := s.checkCommentAccess(ctx, userID, note); err != nil {
		return nil, err
	}

	return s.commentRepo.ListByNote(ctx, noteID)
}

// UpdateComment edits a comment's text. Author only.
func (s *commentService) UpdateComment(ctx context.Context, userID, commentID string, req *services.UpdateCommentRequest) (*models.Comment, error) {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.Content, validation.Required, validation.Length(1, config.MaxCommentLength)),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}

	if comment.AuthorID != userID {
		return nil, &domain.ForbiddenError{Message: "only the comment author may edit it"}
	}

	if err := s.commentRepo.UpdateContent(ctx, commentID, req.Content); err != nil {
		return nil, err
	}

	comment.Content = req.Content
	comment.UpdatedAt = time.Now()

	s.logger.Info("comment updated", "id", commentID, "author_id", userID)

	return comment, nil
}

// SetResolved toggles a comment's resolved flag. Resolution is an editorial
// act on the note, so it requires note-edit rights, not comment authorship.
func (s *commentService) SetResolved(ctx context.Context, userID, commentID string, resolved bool) (*models.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}

	note, err := s.noteRepo.GetByID(ctx, comment.NoteID)
	if err != nil {
		return nil, err
	}

	if err := s.checkNoteEditRights(ctx, userID, note); err != nil {
		return nil, err
	}

	if err := s.commentRepo.SetResolved(ctx, commentID, resolved); err != nil {
		return nil, err
	}

	comment.Resolved = resolved
	comment.UpdatedAt = time.Now()

	s.logger.Info("comment resolution changed", "id", commentID, "resolved", resolved, "user_id", userID)

	return comment, nil
}

// DeleteComment soft-deletes a comment and its entire reply subtree in one
// transaction. Allowed for the author or a workspace manager.
func (s *commentService) DeleteComment(ctx context.Context, userID, commentID string) error {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return err
	}

	if comment.AuthorID != userID {
		note, err := s.noteRepo.GetByID(ctx, comment.NoteID)
		if err != nil {
			return err
		}

		allowed := false
		if note.WorkspaceID != nil {
			allowed, err = s.authorizer.CanManageWorkspace(ctx, userID, *note.WorkspaceID)
			if err != nil {
				return err
			}
		} else {
			allowed = note.CreatorID == userID
		}
		if !allowed {
			return &domain.ForbiddenError{Message: "only the comment author or a workspace manager may delete it"}
		}
	}

	var deleted int
	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		replies, err := authz.CollectDescendants(txCtx, []string{commentID}, s.commentRepo.ListChildIDs)
		if err != nil {
			return err
		}

		ids := make([]string, 0, len(replies)+1)
		ids = append(ids, commentID)
		for id := range replies {
			ids = append(ids, id)
		}

		if err := s.commentRepo.SoftDeleteMany(txCtx, ids); err != nil {
			return err
		}

		deleted = len(ids)
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("comment deleted", "id", commentID, "thread_size", deleted, "user_id", userID)

	return nil
}

// checkCommentAccess verifies the user can read the note a comment lives on
func (s *commentService) checkCommentAccess(ctx context.Context, userID string, note *models.Note) error {
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

// checkNoteEditRights verifies the user can edit the note itself
func (s *commentService) checkNoteEditRights(ctx context.Context, userID string, note *models.Note) error {
	if note.WorkspaceID == nil {
		if note.CreatorID != userID {
			return &domain.ForbiddenError{Message: fmt.Sprintf("note %s cannot be edited by this user", note.ID)}
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
