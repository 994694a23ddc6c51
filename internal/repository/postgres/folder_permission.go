package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"quill/internal/domain"
	"quill/internal/domain/models"
	"quill/internal/domain/repositories"
)

// PostgresFolderPermissionRepository implements the FolderPermissionRepository interface
type PostgresFolderPermissionRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewFolderPermissionRepository creates a new folder permission repository
func NewFolderPermissionRepository(config *RepositoryConfig) repositories.FolderPermissionRepository {
	return &PostgresFolderPermissionRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Get retrieves the grant for (folderID, userID).
// Returns (nil, nil) when no grant exists.
func (r *PostgresFolderPermissionRepository) Get(ctx context.Context, folderID, userID string) (*models.FolderPermission, error) {
	query := fmt.Sprintf(`
		SELECT folder_id, user_id, role, created_at, updated_at
		FROM %s
		WHERE folder_id = $1 AND user_id = $2
	`, r.tables.FolderPermissions)

	var perm models.FolderPermission
	err := GetExecutor(ctx, r.pool).QueryRow(ctx, query, folderID, userID).Scan(
		&perm.FolderID,
		&perm.UserID,
		&perm.Role,
		&perm.CreatedAt,
		&perm.UpdatedAt,
	)

	if err != nil {
		if isPgNoRowsError(err) {
			return nil, nil // No grant, not an error
		}
		return nil, fmt.Errorf("get folder permission: %w", err)
	}

	return &perm, nil
}

// ListByFolder lists all grants on a folder
func (r *PostgresFolderPermissionRepository) ListByFolder(ctx context.Context, folderID string) ([]models.FolderPermission, error) {
	query := fmt.Sprintf(`
		SELECT folder_id, user_id, role, created_at, updated_at
		FROM %s
		WHERE folder_id = $1
		ORDER BY created_at ASC
	`, r.tables.FolderPermissions)

	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query, folderID)
	if err != nil {
		return nil, fmt.Errorf("list folder permissions: %w", err)
	}
	defer rows.Close()

	var perms []models.FolderPermission
	for rows.Next() {
		var perm models.FolderPermission
		err := rows.Scan(
			&perm.FolderID,
			&perm.UserID,
			&perm.Role,
			&perm.CreatedAt,
			&perm.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan folder permission: %w", err)
		}
		perms = append(perms, perm)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate folder permissions: %w", err)
	}

	return perms, nil
}

// ListByUserInWorkspace lists the user's grants across a workspace's folders
func (r *PostgresFolderPermissionRepository) ListByUserInWorkspace(ctx context.Context, workspaceID, userID string) ([]models.FolderPermission, error) {
	query := fmt.Sprintf(`
		SELECT p.folder_id, p.user_id, p.role, p.created_at, p.updated_at
		FROM %s p
		JOIN %s f ON f.id = p.folder_id
		WHERE f.workspace_id = $1 AND p.user_id = $2 AND f.deleted_at IS NULL
	`, r.tables.FolderPermissions, r.tables.Folders)

	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query, workspaceID, userID)
	if err != nil {
		return nil, fmt.Errorf("list user folder permissions: %w", err)
	}
	defer rows.Close()

	var perms []models.FolderPermission
	for rows.Next() {
		var perm models.FolderPermission
		err := rows.Scan(
			&perm.FolderID,
			&perm.UserID,
			&perm.Role,
			&perm.CreatedAt,
			&perm.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan folder permission: %w", err)
		}
		perms = append(perms, perm)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate folder permissions: %w", err)
	}

	return perms, nil
}

// Upsert creates or updates a grant
func (r *PostgresFolderPermissionRepository) Upsert(ctx context.Context, perm *models.FolderPermission) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (folder_id, user_id, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (folder_id, user_id)
		DO UPDATE SET role = EXCLUDED.role, updated_at = EXCLUDED.updated_at
	`, r.tables.FolderPermissions)

	_, err := GetExecutor(ctx, r.pool).Exec(ctx, query,
		perm.FolderID,
		perm.UserID,
		perm.Role,
		perm.CreatedAt,
		perm.UpdatedAt,
	)

	if err != nil {
		if isPgForeignKeyError(err) {
			return fmt.Errorf("folder %s: %w", perm.FolderID, domain.ErrNotFound)
		}
		return fmt.Errorf("upsert folder permission: %w", err)
	}

	return nil
}

// Delete removes a grant
func (r *PostgresFolderPermissionRepository) Delete(ctx context.Context, folderID, userID string) error {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE folder_id = $1 AND user_id = $2
	`, r.tables.FolderPermissions)

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query, folderID, userID)
	if err != nil {
		return fmt.Errorf("delete folder permission: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("folder permission for %s: %w", userID, domain.ErrNotFound)
	}

	return nil
}
