package repositories

import (
	"context"

	"quill/internal/domain/models"
)

// NoteRepository defines data access operations for notes
type NoteRepository interface {
	// Create creates a new note
	Create(ctx context.Context, note *models.Note) error

	// GetByID retrieves a note by ID (soft-deleted rows excluded)
	GetByID(ctx context.Context, id string) (*models.Note, error)

	// Update updates a note's mutable fields
	Update(ctx context.Context, note *models.Note) error

	// SoftDelete marks a note as deleted
	SoftDelete(ctx context.Context, id string) error

	// SoftDeleteByFolderIDs marks every note in the given folders as deleted
	SoftDeleteByFolderIDs(ctx context.Context, folderIDs []string) error

	// ListByWorkspace lists notes in a workspace, optionally restricted to a
	// set of folder IDs (the expanded subtree of a folder filter)
	ListByWorkspace(ctx context.Context, workspaceID string, folderIDs []string) ([]models.Note, error)

	// CountByWorkspace counts live notes in a workspace
	CountByWorkspace(ctx context.Context, workspaceID string) (int, error)
}
