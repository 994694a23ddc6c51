package services

import (
	"context"

	"quill/internal/domain/models"
)

// CommentService handles comment business logic
type CommentService interface {
	// CreateComment creates a comment (or a reply) on a note
	CreateComment(ctx context.Context, userID string, req *CreateCommentRequest) (*models.Comment, error)

	// ListComments lists live comments on a note, oldest first
	ListComments(ctx context.Context, userID, noteID string) ([]models.Comment, error)

	// UpdateComment edits a comment's text. Author only.
	UpdateComment(ctx context.Context, userID, commentID string, req *UpdateCommentRequest) (*models.Comment, error)

	// SetResolved toggles a comment's resolved flag. Requires note-edit
	// rights on the comment's note.
	SetResolved(ctx context.Context, userID, commentID string, resolved bool) (*models.Comment, error)

	// DeleteComment soft-deletes a comment and its entire reply subtree in
	// one transaction. Author or workspace manager.
	DeleteComment(ctx context.Context, userID, commentID string) error
}

// CreateCommentRequest represents a comment creation request
type CreateCommentRequest struct {
	NoteID   string  `json:"note_id"`
	ParentID *string `json:"parent_id,omitempty"` // reply target
	Content  string  `json:"content"`
}

// UpdateCommentRequest represents a comment edit request
type UpdateCommentRequest struct {
	Content string `json:"content"`
}
