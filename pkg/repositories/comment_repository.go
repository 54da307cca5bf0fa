package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/trackdesk-inc/trackdesk-engine/pkg/apperrors"
	"github.com/trackdesk-inc/trackdesk-engine/pkg/database"
	"github.com/trackdesk-inc/trackdesk-engine/pkg/models"
)

const commentColumns = `id, issue_id, author_id, description, created_at, updated_at`

// CommentRepository defines the interface for comment data access.
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	Get(ctx context.Context, id uuid.UUID) (*models.Comment, error)
	Update(ctx context.Context, comment *models.Comment) error
	Delete(ctx context.Context, id uuid.UUID) error
	// ListByIssue returns a page of the issue's comments ordered by creation
	// time.
	ListByIssue(ctx context.Context, issueID uuid.UUID, limit, offset int) ([]*models.Comment, error)
}

// commentRepository implements CommentRepository using PostgreSQL.
type commentRepository struct {
	db *database.DB
}

// NewCommentRepository creates a new comment repository.
func NewCommentRepository(db *database.DB) CommentRepository {
	return &commentRepository{db: db}
}

// Create inserts a new comment.
func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if comment.ID == uuid.Nil {
		comment.ID = uuid.New()
	}

	now := time.Now()
	comment.CreatedAt = now
	comment.UpdatedAt = now

	query := `
		INSERT INTO comments (id, issue_id, author_id, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.Exec(ctx, query,
		comment.ID,
		comment.IssueID,
		comment.AuthorID,
		comment.Description,
		comment.CreatedAt,
		comment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}

	return nil
}

// Get retrieves a comment by ID.
func (r *commentRepository) Get(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	query := `SELECT ` + commentColumns + ` FROM comments WHERE id = $1`
	return scanComment(r.db.QueryRow(ctx, query, id))
}

// Update updates a comment's description. The issue reference is immutable.
func (r *commentRepository) Update(ctx context.Context, comment *models.Comment) error {
	comment.UpdatedAt = time.Now()

	query := `UPDATE comments SET description = $2, updated_at = $3 WHERE id = $1`

	result, err := r.db.Exec(ctx, query, comment.ID, comment.Description, comment.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update comment: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

// Delete removes a comment by ID.
func (r *commentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

// ListByIssue returns a page of comments for the issue.
func (r *commentRepository) ListByIssue(ctx context.Context, issueID uuid.UUID, limit, offset int) ([]*models.Comment, error) {
	query := `SELECT ` + commentColumns + `
		FROM comments
		WHERE issue_id = $1
		ORDER BY created_at
		LIMIT $2 OFFSET $3`

	rows, err := r.db.Query(ctx, query, issueID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	var comments []*models.Comment
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, comment)
	}
	return comments, rows.Err()
}

func scanComment(row rowScanner) (*models.Comment, error) {
	var comment models.Comment
	err := row.Scan(
		&comment.ID,
		&comment.IssueID,
		&comment.AuthorID,
		&comment.Description,
		&comment.CreatedAt,
		&comment.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan comment: %w", err)
	}
	return &comment, nil
}

// Ensure commentRepository implements CommentRepository at compile time.
var _ CommentRepository = (*commentRepository)(nil)
