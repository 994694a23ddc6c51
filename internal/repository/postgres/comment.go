package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"quill/internal/domain"
	"quill/internal/domain/models"
	"quill/internal/domain/repositories"
)

// PostgresCommentRepository implements the CommentRepository interface
type PostgresCommentRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewCommentRepository creates a new comment repository
func NewCommentRepository(config *RepositoryConfig) repositories.CommentRepository {
	return &PostgresCommentRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Create creates a new comment
func (r *PostgresCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (note_id, author_id, parent_id, content, resolved, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`, r.tables.Comments)

	err := GetExecutor(ctx, r.pool).QueryRow(ctx, query,
		comment.NoteID,
		comment.AuthorID,
		comment.ParentID,
		comment.Content,
		comment.Resolved,
		comment.CreatedAt,
		comment.UpdatedAt,
	).Scan(&comment.ID, &comment.CreatedAt, &comment.UpdatedAt)

	if err != nil {
		if isPgForeignKeyError(err) {
			return fmt.Errorf("comment target: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("create comment: %w", err)
	}

	return nil
}

// GetByID retrieves a comment by ID, excluding soft-deleted rows
func (r *PostgresCommentRepository) GetByID(ctx context.Context, id string) (*models.Comment, error) {
	query := fmt.Sprintf(`
		SELECT id, note_id, author_id, parent_id, content, resolved, created_at, updated_at
		FROM %s
		WHERE id = $1 AND deleted_at IS NULL
	`, r.tables.Comments)

	var comment models.Comment
	err := GetExecutor(ctx, r.pool).QueryRow(ctx, query, id).Scan(
		&comment.ID,
		&comment.NoteID,
		&comment.AuthorID,
		&comment.ParentID,
		&comment.Content,
		&comment.Resolved,
		&comment.CreatedAt,
		&comment.UpdatedAt,
	)

	if err != nil {
		if isPgNoRowsError(err) {
			return nil, fmt.Errorf("comment %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get comment: %w", err)
	}

	return &comment, nil
}

// UpdateContent replaces a comment's text content
func (r *PostgresCommentRepository) UpdateContent(ctx context.Context, id, content string) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET content = $1, updated_at = NOW()
		WHERE id = $2 AND deleted_at IS NULL
	`, r.tables.Comments)

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query, content, id)
	if err != nil {
		return fmt.Errorf("update comment: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("comment %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// SetResolved toggles a comment's resolved flag
func (r *PostgresCommentRepository) SetResolved(ctx context.Context, id string, resolved bool) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET resolved = $1, updated_at = NOW()
		WHERE id = $2 AND deleted_at IS NULL
	`, r.tables.Comments)

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query, resolved, id)
	if err != nil {
		return fmt.Errorf("resolve comment: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("comment %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// ListByNote lists live comments on a note, oldest first
func (r *PostgresCommentRepository) ListByNote(ctx context.Context, noteID string) ([]models.Comment, error) {
	query := fmt.Sprintf(`
		SELECT id, note_id, author_id, parent_id, content, resolved, created_at, updated_at
		FROM %s
		WHERE note_id = $1 AND deleted_at IS NULL
		ORDER BY created_at ASC
	`, r.tables.Comments)

	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query, noteID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	var comments []models.Comment
	for rows.Next() {
		var comment models.Comment
		err := rows.Scan(
			&comment.ID,
			&comment.NoteID,
			&comment.AuthorID,
			&comment.ParentID,
			&comment.Content,
			&comment.Resolved,
			&comment.CreatedAt,
			&comment.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, comment)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate comments: %w", err)
	}

	return comments, nil
}

// ListChildIDs returns the IDs of the direct replies of every comment in the
// frontier. One query per tree level, regardless of frontier width.
func (r *PostgresCommentRepository) ListChildIDs(ctx context.Context, parentIDs []string) ([]string, error) {
	if len(parentIDs) == 0 {
		return nil, nil
	}

	query := fmt.Sprintf(`
		SELECT id
		FROM %s
		WHERE parent_id = ANY($1) AND deleted_at IS NULL
	`, r.tables.Comments)

	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query, parentIDs)
	if err != nil {
		return nil, fmt.Errorf("list reply ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan reply id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reply ids: %w", err)
	}

	return ids, nil
}

// SoftDeleteMany marks the given comments as deleted
func (r *PostgresCommentRepository) SoftDeleteMany(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET deleted_at = NOW(), updated_at = NOW()
		WHERE id = ANY($1) AND deleted_at IS NULL
	`, r.tables.Comments)

	if _, err := GetExecutor(ctx, r.pool).Exec(ctx, query, ids); err != nil {
		return fmt.Errorf("delete comments: %w", err)
	}

	return nil
}
