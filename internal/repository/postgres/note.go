package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"quill/internal/domain"
	"quill/internal/domain/models"
	"quill/internal/domain/repositories"
)

// PostgresNoteRepository implements the NoteRepository interface
type PostgresNoteRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewNoteRepository creates a new note repository
func NewNoteRepository(config *RepositoryConfig) repositories.NoteRepository {
	return &PostgresNoteRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Create creates a new note
func (r *PostgresNoteRepository) Create(ctx context.Context, note *models.Note) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (workspace_id, folder_id, creator_id, title, content, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`, r.tables.Notes)

	err := GetExecutor(ctx, r.pool).QueryRow(ctx, query,
		note.WorkspaceID,
		note.FolderID,
		note.CreatorID,
		note.Title,
		note.Content,
		note.CreatedAt,
		note.UpdatedAt,
	).Scan(&note.ID, &note.CreatedAt, &note.UpdatedAt)

	if err != nil {
		if isPgForeignKeyError(err) {
			return fmt.Errorf("note folder: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("create note: %w", err)
	}

	return nil
}

// GetByID retrieves a note by ID, excluding soft-deleted rows
func (r *PostgresNoteRepository) GetByID(ctx context.Context, id string) (*models.Note, error) {
	query := fmt.Sprintf(`
		SELECT id, workspace_id, folder_id, creator_id, title, content, created_at, updated_at
		FROM %s
		WHERE id = $1 AND deleted_at IS NULL
	`, r.tables.Notes)

	var note models.Note
	err := GetExecutor(ctx, r.pool).QueryRow(ctx, query, id).Scan(
		&note.ID,
		&note.WorkspaceID,
		&note.FolderID,
		&note.CreatorID,
		&note.Title,
		&note.Content,
		&note.CreatedAt,
		&note.UpdatedAt,
	)

	if err != nil {
		if isPgNoRowsError(err) {
			return nil, fmt.Errorf("note %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get note: %w", err)
	}

	return &note, nil
}

// Update updates a note's mutable fields
func (r *PostgresNoteRepository) Update(ctx context.Context, note *models.Note) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET folder_id = $1, title = $2, content = $3, updated_at = $4
		WHERE id = $5 AND deleted_at IS NULL
	`, r.tables.Notes)

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query,
		note.FolderID,
		note.Title,
		note.Content,
		note.UpdatedAt,
		note.ID,
	)
	if err != nil {
		return fmt.Errorf("update note: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("note %s: %w", note.ID, domain.ErrNotFound)
	}

	return nil
}

// SoftDelete marks a note as deleted
func (r *PostgresNoteRepository) SoftDelete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`, r.tables.Notes)

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("note %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// SoftDeleteByFolderIDs marks every note in the given folders as deleted
func (r *PostgresNoteRepository) SoftDeleteByFolderIDs(ctx context.Context, folderIDs []string) error {
	if len(folderIDs) == 0 {
		return nil
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET deleted_at = NOW(), updated_at = NOW()
		WHERE folder_id = ANY($1) AND deleted_at IS NULL
	`, r.tables.Notes)

	if _, err := GetExecutor(ctx, r.pool).Exec(ctx, query, folderIDs); err != nil {
		return fmt.Errorf("delete notes by folder: %w", err)
	}

	return nil
}

// ListByWorkspace lists notes in a workspace, optionally restricted to a set
// of folder IDs (the expanded subtree of a folder filter)
func (r *PostgresNoteRepository) ListByWorkspace(ctx context.Context, workspaceID string, folderIDs []string) ([]models.Note, error) {
	var query string
	var args []interface{}

	if folderIDs == nil {
		query = fmt.Sprintf(`
			SELECT id, workspace_id, folder_id, creator_id, title, content, created_at, updated_at
			FROM %s
			WHERE workspace_id = $1 AND deleted_at IS NULL
			ORDER BY updated_at DESC
		`, r.tables.Notes)
		args = append(args, workspaceID)
	} else {
		query = fmt.Sprintf(`
			SELECT id, workspace_id, folder_id, creator_id, title, content, created_at, updated_at
			FROM %s
			WHERE workspace_id = $1 AND folder_id = ANY($2) AND deleted_at IS NULL
			ORDER BY updated_at DESC
		`, r.tables.Notes)
		args = append(args, workspaceID, folderIDs)
	}

	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	var notes []models.Note
	for rows.Next() {
		var note models.Note
		err := rows.Scan(
			&note.ID,
			&note.WorkspaceID,
			&note.FolderID,
			&note.CreatorID,
			&note.Title,
			&note.Content,
			&note.CreatedAt,
			&note.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		notes = append(notes, note)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notes: %w", err)
	}

	return notes, nil
}

// CountByWorkspace counts live notes in a workspace
func (r *PostgresNoteRepository) CountByWorkspace(ctx context.Context, workspaceID string) (int, error) {
	query := fmt.Sprintf(`
		SELECT COUNT(*)
		FROM %s
		WHERE workspace_id = $1 AND deleted_at IS NULL
	`, r.tables.Notes)

	var count int
	if err := GetExecutor(ctx, r.pool).QueryRow(ctx, query, workspaceID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count notes: %w", err)
	}

	return count, nil
}
