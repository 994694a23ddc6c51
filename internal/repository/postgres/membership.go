package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"quill/internal/domain"
	"quill/internal/domain/models"
	"quill/internal/domain/repositories"
)

// PostgresMembershipRepository implements the MembershipRepository interface
type PostgresMembershipRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewMembershipRepository creates a new membership repository
func NewMembershipRepository(config *RepositoryConfig) repositories.MembershipRepository {
	return &PostgresMembershipRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Get retrieves the single membership row for (workspaceID, userID).
// Returns (nil, nil) when the user is not a member.
func (r *PostgresMembershipRepository) Get(ctx context.Context, workspaceID, userID string) (*models.Membership, error) {
	query := fmt.Sprintf(`
		SELECT workspace_id, user_id, role, created_at, updated_at
		FROM %s
		WHERE workspace_id = $1 AND user_id = $2
	`, r.tables.WorkspaceMembers)

	var membership models.Membership
	err := GetExecutor(ctx, r.pool).QueryRow(ctx, query, workspaceID, userID).Scan(
		&membership.WorkspaceID,
		&membership.UserID,
		&membership.Role,
		&membership.CreatedAt,
		&membership.UpdatedAt,
	)

	if err != nil {
		if isPgNoRowsError(err) {
			return nil, nil // Not a member, not an error
		}
		return nil, fmt.Errorf("get membership: %w", err)
	}

	return &membership, nil
}

// ListByWorkspace lists all members of a workspace
func (r *PostgresMembershipRepository) ListByWorkspace(ctx context.Context, workspaceID string) ([]models.Membership, error) {
	query := fmt.Sprintf(`
		SELECT workspace_id, user_id, role, created_at, updated_at
		FROM %s
		WHERE workspace_id = $1
		ORDER BY created_at ASC
	`, r.tables.WorkspaceMembers)

	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	var memberships []models.Membership
	for rows.Next() {
		var membership models.Membership
		err := rows.Scan(
			&membership.WorkspaceID,
			&membership.UserID,
			&membership.Role,
			&membership.CreatedAt,
			&membership.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan membership: %w", err)
		}
		memberships = append(memberships, membership)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate memberships: %w", err)
	}

	return memberships, nil
}

// Create adds a member to a workspace
func (r *PostgresMembershipRepository) Create(ctx context.Context, membership *models.Membership) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (workspace_id, user_id, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`, r.tables.WorkspaceMembers)

	_, err := GetExecutor(ctx, r.pool).Exec(ctx, query,
		membership.WorkspaceID,
		membership.UserID,
		membership.Role,
		membership.CreatedAt,
		membership.UpdatedAt,
	)

	if err != nil {
		if isPgDuplicateError(err) {
			return fmt.Errorf("member %s: %w", membership.UserID, domain.ErrConflict)
		}
		if isPgForeignKeyError(err) {
			return fmt.Errorf("workspace %s: %w", membership.WorkspaceID, domain.ErrNotFound)
		}
		return fmt.Errorf("create membership: %w", err)
	}

	return nil
}

// UpdateRole changes an existing member's role
func (r *PostgresMembershipRepository) UpdateRole(ctx context.Context, workspaceID, userID, role string) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET role = $1, updated_at = NOW()
		WHERE workspace_id = $2 AND user_id = $3
	`, r.tables.WorkspaceMembers)

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query, role, workspaceID, userID)
	if err != nil {
		return fmt.Errorf("update membership role: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("member %s: %w", userID, domain.ErrNotFound)
	}

	return nil
}

// Delete removes a member from a workspace
func (r *PostgresMembershipRepository) Delete(ctx context.Context, workspaceID, userID string) error {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE workspace_id = $1 AND user_id = $2
	`, r.tables.WorkspaceMembers)

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query, workspaceID, userID)
	if err != nil {
		return fmt.Errorf("delete membership: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("member %s: %w", userID, domain.ErrNotFound)
	}

	return nil
}
