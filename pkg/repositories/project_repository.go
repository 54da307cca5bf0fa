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

// ProjectRepository defines the interface for project data access.
type ProjectRepository interface {
	// Create inserts a project and adds the author to the contributor set in
	// the same transaction.
	Create(ctx context.Context, project *models.Project) error
	Get(ctx context.Context, id uuid.UUID) (*models.Project, error)
	List(ctx context.Context) ([]*models.Project, error)
	Update(ctx context.Context, project *models.Project) error
	// Delete removes a project. Its issues and their comments go with it via
	// cascade.
	Delete(ctx context.Context, id uuid.UUID) error

	// AddContributors inserts the given users into the contributor set.
	// IDs that do not resolve to an existing user are silently skipped;
	// duplicates are absorbed by the set semantics.
	AddContributors(ctx context.Context, projectID uuid.UUID, userIDs []uuid.UUID) error
	// RemoveContributors removes the given users from the contributor set.
	// Removing a non-member is a no-op.
	RemoveContributors(ctx context.Context, projectID uuid.UUID, userIDs []uuid.UUID) error
	// IsContributor reports current membership, re-read from the store.
	IsContributor(ctx context.Context, projectID, userID uuid.UUID) (bool, error)
}

// projectRepository implements ProjectRepository using PostgreSQL.
type projectRepository struct {
	db *database.DB
}

// NewProjectRepository creates a new project repository.
func NewProjectRepository(db *database.DB) ProjectRepository {
	return &projectRepository{db: db}
}

// Create inserts a new project and its author's contributor row atomically.
func (r *projectRepository) Create(ctx context.Context, project *models.Project) error {
	if project.ID == uuid.Nil {
		project.ID = uuid.New()
	}

	now := time.Now()
	project.CreatedAt = now
	project.UpdatedAt = now
	if project.Category == "" {
		project.Category = models.CategoryBackend
	}
	if project.Title == "" {
		project.Title = models.DefaultProjectTitle(now)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query := `
		INSERT INTO projects (id, title, description, category, author_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err = tx.Exec(ctx, query,
		project.ID,
		project.Title,
		project.Description,
		project.Category,
		project.AuthorID,
		project.CreatedAt,
		project.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO contributors (user_id, project_id, created_at) VALUES ($1, $2, $3)
		 ON CONFLICT (user_id, project_id) DO NOTHING`,
		project.AuthorID, project.ID, now)
	if err != nil {
		return fmt.Errorf("failed to add author as contributor: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	project.Contributors = []uuid.UUID{project.AuthorID}
	return nil
}

// Get retrieves a project by ID, including its contributor set.
func (r *projectRepository) Get(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	query := `
		SELECT id, title, description, category, author_id, created_at, updated_at
		FROM projects
		WHERE id = $1`

	var project models.Project
	err := r.db.QueryRow(ctx, query, id).Scan(
		&project.ID,
		&project.Title,
		&project.Description,
		&project.Category,
		&project.AuthorID,
		&project.CreatedAt,
		&project.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	contributors, err := r.contributorIDs(ctx, id)
	if err != nil {
		return nil, err
	}
	project.Contributors = contributors

	return &project, nil
}

// List retrieves all projects without loading contributor sets. List views
// only expose id, title, description, and category.
func (r *projectRepository) List(ctx context.Context) ([]*models.Project, error) {
	query := `
		SELECT id, title, description, category, author_id, created_at, updated_at
		FROM projects
		ORDER BY created_at`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []*models.Project
	for rows.Next() {
		var project models.Project
		err := rows.Scan(
			&project.ID,
			&project.Title,
			&project.Description,
			&project.Category,
			&project.AuthorID,
			&project.CreatedAt,
			&project.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, &project)
	}
	return projects, rows.Err()
}

// Update updates a project's mutable fields. The author is never rewritten.
func (r *projectRepository) Update(ctx context.Context, project *models.Project) error {
	project.UpdatedAt = time.Now()

	query := `
		UPDATE projects
		SET title = $2, description = $3, category = $4, updated_at = $5
		WHERE id = $1`

	result, err := r.db.Exec(ctx, query,
		project.ID,
		project.Title,
		project.Description,
		project.Category,
		project.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

// Delete removes a project by ID. Issues and comments cascade.
func (r *projectRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

// AddContributors adds users to the contributor set in one transaction.
// The join against users makes unknown IDs a silent skip rather than an error.
func (r *projectRepository) AddContributors(ctx context.Context, projectID uuid.UUID, userIDs []uuid.UUID) error {
	if len(userIDs) == 0 {
		return nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query := `
		INSERT INTO contributors (user_id, project_id, created_at)
		SELECT u.id, $1, $2
		FROM users u
		WHERE u.id = ANY($3)
		ON CONFLICT (user_id, project_id) DO NOTHING`

	if _, err := tx.Exec(ctx, query, projectID, time.Now(), userIDs); err != nil {
		return fmt.Errorf("failed to add contributors: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// RemoveContributors removes users from the contributor set in one transaction.
func (r *projectRepository) RemoveContributors(ctx context.Context, projectID uuid.UUID, userIDs []uuid.UUID) error {
	if len(userIDs) == 0 {
		return nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query := `DELETE FROM contributors WHERE project_id = $1 AND user_id = ANY($2)`
	if _, err := tx.Exec(ctx, query, projectID, userIDs); err != nil {
		return fmt.Errorf("failed to remove contributors: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// IsContributor reports whether the user is currently in the contributor set.
func (r *projectRepository) IsContributor(ctx context.Context, projectID, userID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM contributors WHERE project_id = $1 AND user_id = $2)`

	var exists bool
	if err := r.db.QueryRow(ctx, query, projectID, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check contributor membership: %w", err)
	}
	return exists, nil
}

func (r *projectRepository) contributorIDs(ctx context.Context, projectID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx,
		`SELECT user_id FROM contributors WHERE project_id = $1 ORDER BY created_at`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load contributors: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan contributor: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Ensure projectRepository implements ProjectRepository at compile time.
var _ ProjectRepository = (*projectRepository)(nil)
