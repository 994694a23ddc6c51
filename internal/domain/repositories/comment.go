package repositories

import (
	"context"

	"quill/internal/domain/models"
)

// CommentRepository defines data access operations for comments
type CommentRepository interface {
	// Create creates a new comment
	Create(ctx context.Context, comment *models.Comment) error

	// GetByID retrieves a comment by ID (soft-deleted rows excluded)
	GetByID(ctx context.Context, id string) (*models.Comment, error)

	// UpdateContent replaces a comment's text content
	UpdateContent(ctx context.Context, id, content string) error

	// SetResolved toggles a comment's resolved flag
	SetResolved(ctx context.Context, id string, resolved bool) error

	// ListByNote lists live comments on a note, oldest first
	ListByNote(ctx context.Context, noteID string) ([]models.Comment, error)

	// ListChildIDs returns the IDs of the direct replies of every comment in
	// the frontier, in a single query (one round-trip per tree level)
	ListChildIDs(ctx context.Context, parentIDs []string) ([]string, error)

	// SoftDeleteMany marks the given comments as deleted
	SoftDeleteMany(ctx context.Context, ids []string) error
}
