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

const issueColumns = `id, project_id, author_id, assigned_to, title, description, priority, tag, status, created_at, updated_at`

// IssueRepository defines the interface for issue data access.
type IssueRepository interface {
	Create(ctx context.Context, issue *models.Issue) error
	Get(ctx context.Context, id uuid.UUID) (*models.Issue, error)
	Update(ctx context.Context, issue *models.Issue) error
	// Delete removes an issue. Its comments go with it via cascade.
	Delete(ctx context.Context, id uuid.UUID) error
	// ListByProject returns a page of the project's issues ordered by
	// creation time.
	ListByProject(ctx context.Context, projectID uuid.UUID, limit, offset int) ([]*models.Issue, error)
}

// issueRepository implements IssueRepository using PostgreSQL.
type issueRepository struct {
	db *database.DB
}

// NewIssueRepository creates a new issue repository.
func NewIssueRepository(db *database.DB) IssueRepository {
	return &issueRepository{db: db}
}

// Create inserts a new issue, applying field defaults.
func (r *issueRepository) Create(ctx context.Context, issue *models.Issue) error {
	if issue.ID == uuid.Nil {
		issue.ID = uuid.New()
	}

	now := time.Now()
	issue.CreatedAt = now
	issue.UpdatedAt = now
	if issue.Title == "" {
		issue.Title = models.DefaultIssueTitle(now)
	}
	if issue.Priority == "" {
		issue.Priority = models.PriorityMedium
	}
	if issue.Tag == "" {
		issue.Tag = models.TagBug
	}
	if issue.Status == "" {
		issue.Status = models.StatusToDo
	}

	query := `
		INSERT INTO issues (id, project_id, author_id, assigned_to, title, description, priority, tag, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.db.Exec(ctx, query,
		issue.ID,
		issue.ProjectID,
		issue.AuthorID,
		issue.AssignedTo,
		issue.Title,
		issue.Description,
		issue.Priority,
		issue.Tag,
		issue.Status,
		issue.CreatedAt,
		issue.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create issue: %w", err)
	}

	return nil
}

// Get retrieves an issue by ID.
func (r *issueRepository) Get(ctx context.Context, id uuid.UUID) (*models.Issue, error) {
	query := `SELECT ` + issueColumns + ` FROM issues WHERE id = $1`

	issue, err := scanIssue(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}
	return issue, nil
}

// Update updates an issue's mutable fields. The project reference is
// immutable and never rewritten.
func (r *issueRepository) Update(ctx context.Context, issue *models.Issue) error {
	issue.UpdatedAt = time.Now()

	query := `
		UPDATE issues
		SET assigned_to = $2, title = $3, description = $4, priority = $5, tag = $6, status = $7, updated_at = $8
		WHERE id = $1`

	result, err := r.db.Exec(ctx, query,
		issue.ID,
		issue.AssignedTo,
		issue.Title,
		issue.Description,
		issue.Priority,
		issue.Tag,
		issue.Status,
		issue.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update issue: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

// Delete removes an issue by ID. Comments cascade.
func (r *issueRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM issues WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete issue: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

// ListByProject returns a page of issues for the project.
func (r *issueRepository) ListByProject(ctx context.Context, projectID uuid.UUID, limit, offset int) ([]*models.Issue, error) {
	query := `SELECT ` + issueColumns + `
		FROM issues
		WHERE project_id = $1
		ORDER BY created_at
		LIMIT $2 OFFSET $3`

	rows, err := r.db.Query(ctx, query, projectID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list issues: %w", err)
	}
	defer rows.Close()

	var issues []*models.Issue
	for rows.Next() {
		issue, err := scanIssue(rows)
		if err != nil {
			return nil, err
		}
		issues = append(issues, issue)
	}
	return issues, rows.Err()
}

func scanIssue(row rowScanner) (*models.Issue, error) {
	var issue models.Issue
	err := row.Scan(
		&issue.ID,
		&issue.ProjectID,
		&issue.AuthorID,
		&issue.AssignedTo,
		&issue.Title,
		&issue.Description,
		&issue.Priority,
		&issue.Tag,
		&issue.Status,
		&issue.CreatedAt,
		&issue.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan issue: %w", err)
	}
	return &issue, nil
}

// Ensure issueRepository implements IssueRepository at compile time.
var _ IssueRepository = (*issueRepository)(nil)
