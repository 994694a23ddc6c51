package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"quill/internal/domain"
	"quill/internal/domain/models"
	"quill/internal/domain/repositories"
)

// PostgresWorkspaceRepository implements the WorkspaceRepository interface
type PostgresWorkspaceRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewWorkspaceRepository creates a new workspace repository
func NewWorkspaceRepository(config *RepositoryConfig) repositories.WorkspaceRepository {
	return &PostgresWorkspaceRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Create creates a new workspace
func (r *PostgresWorkspaceRepository) Create(ctx context.Context, workspace *models.Workspace) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (owner_id, name, is_personal, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`, r.tables.Workspaces)

	err := GetExecutor(ctx, r.pool).QueryRow(ctx, query,
		workspace.OwnerID,
		workspace.Name,
		workspace.IsPersonal,
		workspace.CreatedAt,
		workspace.UpdatedAt,
	).Scan(&workspace.ID, &workspace.CreatedAt, &workspace.UpdatedAt)

	if err != nil {
		if isPgDuplicateError(err) {
			return fmt.Errorf("workspace '%s': %w", workspace.Name, domain.ErrConflict)
		}
		return fmt.Errorf("create workspace: %w", err)
	}

	return nil
}

// GetByID retrieves a workspace by ID, excluding soft-deleted rows
func (r *PostgresWorkspaceRepository) GetByID(ctx context.Context, id string) (*models.Workspace, error) {
	query := fmt.Sprintf(`
		SELECT id, owner_id, name, is_personal, created_at, updated_at
		FROM %s
		WHERE id = $1 AND deleted_at IS NULL
	`, r.tables.Workspaces)

	var workspace models.Workspace
	err := GetExecutor(ctx, r.pool).QueryRow(ctx, query, id).Scan(
		&workspace.ID,
		&workspace.OwnerID,
		&workspace.Name,
		&workspace.IsPersonal,
		&workspace.CreatedAt,
		&workspace.UpdatedAt,
	)

	if err != nil {
		if isPgNoRowsError(err) {
			return nil, fmt.Errorf("workspace %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get workspace: %w", err)
	}

	return &workspace, nil
}

// Update updates a workspace's mutable fields
func (r *PostgresWorkspaceRepository) Update(ctx context.Context, workspace *models.Workspace) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $1, updated_at = $2
		WHERE id = $3 AND deleted_at IS NULL
	`, r.tables.Workspaces)

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query,
		workspace.Name,
		workspace.UpdatedAt,
		workspace.ID,
	)
	if err != nil {
		return fmt.Errorf("update workspace: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("workspace %s: %w", workspace.ID, domain.ErrNotFound)
	}

	return nil
}

// SoftDelete marks a workspace as deleted
func (r *PostgresWorkspaceRepository) SoftDelete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`, r.tables.Workspaces)

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete workspace: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("workspace %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// ListVisibleToUser lists workspaces the user owns or is a member of,
// personal workspaces first
func (r *PostgresWorkspaceRepository) ListVisibleToUser(ctx context.Context, userID string) ([]models.Workspace, error) {
	query := fmt.Sprintf(`
		SELECT w.id, w.owner_id, w.name, w.is_personal, w.created_at, w.updated_at
		FROM %s w
		LEFT JOIN %s m ON m.workspace_id = w.id AND m.user_id = $1
		WHERE w.deleted_at IS NULL
		  AND (w.owner_id = $1 OR (m.user_id IS NOT NULL AND NOT w.is_personal))
		ORDER BY w.is_personal DESC, w.created_at ASC
	`, r.tables.Workspaces, r.tables.WorkspaceMembers)

	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list workspaces: %w", err)
	}
	defer rows.Close()

	var workspaces []models.Workspace
	for rows.Next() {
		var workspace models.Workspace
		err := rows.Scan(
			&workspace.ID,
			&workspace.OwnerID,
			&workspace.Name,
			&workspace.IsPersonal,
			&workspace.CreatedAt,
			&workspace.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan workspace: %w", err)
		}
		workspaces = append(workspaces, workspace)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate workspaces: %w", err)
	}

	return workspaces, nil
}
