package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"quill/internal/domain"
	"quill/internal/domain/models"
	"quill/internal/domain/repositories"
)

// PostgresFolderRepository implements the FolderRepository interface
type PostgresFolderRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewFolderRepository creates a new folder repository
func NewFolderRepository(config *RepositoryConfig) repositories.FolderRepository {
	return &PostgresFolderRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Create creates a new folder
func (r *PostgresFolderRepository) Create(ctx context.Context, folder *models.Folder) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (workspace_id, creator_id, parent_id, name, is_private, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`, r.tables.Folders)

	err := GetExecutor(ctx, r.pool).QueryRow(ctx, query,
		folder.WorkspaceID,
		folder.CreatorID,
		folder.ParentID,
		folder.Name,
		folder.IsPrivate,
		folder.CreatedAt,
		folder.UpdatedAt,
	).Scan(&folder.ID, &folder.CreatedAt, &folder.UpdatedAt)

	if err != nil {
		if isPgDuplicateError(err) {
			return fmt.Errorf("folder '%s': %w", folder.Name, domain.ErrConflict)
		}
		if isPgForeignKeyError(err) {
			return fmt.Errorf("folder parent: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("create folder: %w", err)
	}

	return nil
}

// GetByID retrieves a folder by ID, excluding soft-deleted rows
func (r *PostgresFolderRepository) GetByID(ctx context.Context, id string) (*models.Folder, error) {
	query := fmt.Sprintf(`
		SELECT id, workspace_id, creator_id, parent_id, name, is_private, created_at, updated_at
		FROM %s
		WHERE id = $1 AND deleted_at IS NULL
	`, r.tables.Folders)

	var folder models.Folder
	err := GetExecutor(ctx, r.pool).QueryRow(ctx, query, id).Scan(
		&folder.ID,
		&folder.WorkspaceID,
		&folder.CreatorID,
		&folder.ParentID,
		&folder.Name,
		&folder.IsPrivate,
		&folder.CreatedAt,
		&folder.UpdatedAt,
	)

	if err != nil {
		if isPgNoRowsError(err) {
			return nil, fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get folder: %w", err)
	}

	return &folder, nil
}

// Update updates a folder (rename, move, privacy)
func (r *PostgresFolderRepository) Update(ctx context.Context, folder *models.Folder) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET parent_id = $1, name = $2, is_private = $3, updated_at = $4
		WHERE id = $5 AND deleted_at IS NULL
	`, r.tables.Folders)

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query,
		folder.ParentID,
		folder.Name,
		folder.IsPrivate,
		folder.UpdatedAt,
		folder.ID,
	)

	if err != nil {
		if isPgDuplicateError(err) {
			return fmt.Errorf("folder '%s': %w", folder.Name, domain.ErrConflict)
		}
		return fmt.Errorf("update folder: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("folder %s: %w", folder.ID, domain.ErrNotFound)
	}

	return nil
}

// SoftDeleteMany marks the given folders as deleted
func (r *PostgresFolderRepository) SoftDeleteMany(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET deleted_at = NOW(), updated_at = NOW()
		WHERE id = ANY($1) AND deleted_at IS NULL
	`, r.tables.Folders)

	if _, err := GetExecutor(ctx, r.pool).Exec(ctx, query, ids); err != nil {
		return fmt.Errorf("delete folders: %w", err)
	}

	return nil
}

// ListByWorkspace retrieves all folders in a workspace (flat list)
func (r *PostgresFolderRepository) ListByWorkspace(ctx context.Context, workspaceID string) ([]models.Folder, error) {
	query := fmt.Sprintf(`
		SELECT id, workspace_id, creator_id, parent_id, name, is_private, created_at, updated_at
		FROM %s
		WHERE workspace_id = $1 AND deleted_at IS NULL
		ORDER BY created_at ASC
	`, r.tables.Folders)

	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}
	defer rows.Close()

	return scanFolders(rows)
}

// ListChildIDs returns the IDs of the direct children of every folder in the
// frontier. One query per tree level, regardless of frontier width.
func (r *PostgresFolderRepository) ListChildIDs(ctx context.Context, parentIDs []string) ([]string, error) {
	if len(parentIDs) == 0 {
		return nil, nil
	}

	query := fmt.Sprintf(`
		SELECT id
		FROM %s
		WHERE parent_id = ANY($1) AND deleted_at IS NULL
	`, r.tables.Folders)

	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query, parentIDs)
	if err != nil {
		return nil, fmt.Errorf("list child folder ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan folder id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate folder ids: %w", err)
	}

	return ids, nil
}

// ListChildren lists the immediate child folders of a parent
// (nil parent = workspace root)
func (r *PostgresFolderRepository) ListChildren(ctx context.Context, workspaceID string, parentID *string) ([]models.Folder, error) {
	var query string
	var args []interface{}

	if parentID == nil {
		query = fmt.Sprintf(`
			SELECT id, workspace_id, creator_id, parent_id, name, is_private, created_at, updated_at
			FROM %s
			WHERE workspace_id = $1 AND parent_id IS NULL AND deleted_at IS NULL
			ORDER BY name ASC
		`, r.tables.Folders)
		args = append(args, workspaceID)
	} else {
		query = fmt.Sprintf(`
			SELECT id, workspace_id, creator_id, parent_id, name, is_private, created_at, updated_at
			FROM %s
			WHERE workspace_id = $1 AND parent_id = $2 AND deleted_at IS NULL
			ORDER BY name ASC
		`, r.tables.Folders)
		args = append(args, workspaceID, *parentID)
	}

	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list folder children: %w", err)
	}
	defer rows.Close()

	return scanFolders(rows)
}

// scanFolders collects folder rows
func scanFolders(rows pgx.Rows) ([]models.Folder, error) {
	var folders []models.Folder
	for rows.Next() {
		var folder models.Folder
		err := rows.Scan(
			&folder.ID,
			&folder.WorkspaceID,
			&folder.CreatorID,
			&folder.ParentID,
			&folder.Name,
			&folder.IsPrivate,
			&folder.CreatedAt,
			&folder.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan folder: %w", err)
		}
		folders = append(folders, folder)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate folders: %w", err)
	}

	return folders, nil
}
