package services

import (
	"context"

	"quill/internal/domain/models"
	"quill/internal/httputil"
)

// NoteService handles note business logic
type NoteService interface {
	// CreateNote creates a new note
	CreateNote(ctx context.Context, userID string, req *CreateNoteRequest) (*models.Note, error)

	// GetNote retrieves a note the user can access
	GetNote(ctx context.Context, userID, noteID string) (*models.Note, error)

	// ListNotes lists accessible notes in a workspace. When FolderID is set
	// the listing covers the folder and its entire subtree.
	ListNotes(ctx context.Context, userID string, req *ListNotesRequest) ([]models.Note, error)

	// UpdateNote updates a note's title, content or folder
	UpdateNote(ctx context.Context, userID, noteID string, req *UpdateNoteRequest) (*models.Note, error)

	// DeleteNote soft-deletes a note
	DeleteNote(ctx context.Context, userID, noteID string) error
}

// CreateNoteRequest represents a note creation request
type CreateNoteRequest struct {
	WorkspaceID *string `json:"workspace_id,omitempty"` // nil = personal note
	FolderID    *string `json:"folder_id,omitempty"`
	Title       string  `json:"title"`
	Content     string  `json:"content"`
}

// ListNotesRequest scopes a note listing
type ListNotesRequest struct {
	WorkspaceID string  `json:"workspace_id"`
	FolderID    *string `json:"folder_id,omitempty"` // expand to the folder's subtree
}

// UpdateNoteRequest represents a note update request.
// FolderID uses tri-state semantics: absent = don't move, null = move to
// workspace root, value = move into that folder.
type UpdateNoteRequest struct {
	Title    *string                 `json:"title,omitempty"`
	Content  *string                 `json:"content,omitempty"`
	FolderID httputil.OptionalString `json:"folder_id"`
}
