// Package repositories implements PostgreSQL data access for trackdesk-engine.
package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/trackdesk-inc/trackdesk-engine/pkg/apperrors"
	"github.com/trackdesk-inc/trackdesk-engine/pkg/database"
	"github.com/trackdesk-inc/trackdesk-engine/pkg/models"
)

const userColumns = `id, username, password_hash, birth_date, can_be_contacted, can_data_be_shared, is_superuser, created_at, updated_at`

// UserRepository defines the interface for user data access.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	Update(ctx context.Context, user *models.User) error
	// GetOrCreateSentinel returns the placeholder "deleted" user, creating it
	// on first use.
	GetOrCreateSentinel(ctx context.Context) (*models.User, error)
	// RemoveAndRepoint deletes the user after repointing every reference
	// (project author, contributor rows, issue author/assignee, comment
	// author) to the sentinel user, all in one transaction.
	RemoveAndRepoint(ctx context.Context, id, sentinelID uuid.UUID) error
}

// userRepository implements UserRepository using PostgreSQL.
type userRepository struct {
	db *database.DB
}

// NewUserRepository creates a new user repository.
func NewUserRepository(db *database.DB) UserRepository {
	return &userRepository{db: db}
}

// Create inserts a new user. Returns ErrConflict when the username is taken.
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	query := `
		INSERT INTO users (id, username, password_hash, birth_date, can_be_contacted, can_data_be_shared, is_superuser, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.Exec(ctx, query,
		user.ID,
		user.Username,
		user.PasswordHash,
		user.BirthDate,
		user.CanBeContacted,
		user.CanDataBeShared,
		user.IsSuperuser,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrConflict
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by ID.
func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanOne(r.db.QueryRow(ctx, query, id))
}

// GetByUsername retrieves a user by username.
func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return r.scanOne(r.db.QueryRow(ctx, query, username))
}

// List retrieves all users ordered by creation time.
func (r *userRepository) List(ctx context.Context) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// Update persists changed profile fields of an existing user. The username
// and birth date are immutable and not written.
func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now()

	query := `
		UPDATE users
		SET password_hash = $2, can_be_contacted = $3, can_data_be_shared = $4, updated_at = $5
		WHERE id = $1`

	result, err := r.db.Exec(ctx, query,
		user.ID,
		user.PasswordHash,
		user.CanBeContacted,
		user.CanDataBeShared,
		user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

// GetOrCreateSentinel returns the "deleted" placeholder user.
func (r *userRepository) GetOrCreateSentinel(ctx context.Context) (*models.User, error) {
	user, err := r.GetByUsername(ctx, models.SentinelUsername)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	sentinel := &models.User{
		Username:     models.SentinelUsername,
		PasswordHash: "!", // unusable credential
		BirthDate:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := r.Create(ctx, sentinel); err != nil {
		// Lost a race with a concurrent get-or-create.
		if errors.Is(err, apperrors.ErrConflict) {
			return r.GetByUsername(ctx, models.SentinelUsername)
		}
		return nil, err
	}
	return sentinel, nil
}

// RemoveAndRepoint deletes a user inside a single transaction, repointing
// every foreign reference to the sentinel first so dependent records survive.
func (r *userRepository) RemoveAndRepoint(ctx context.Context, id, sentinelID uuid.UUID) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	statements := []string{
		`UPDATE projects SET author_id = $1 WHERE author_id = $2`,
		`UPDATE issues SET author_id = $1 WHERE author_id = $2`,
		`UPDATE issues SET assigned_to = $1 WHERE assigned_to = $2`,
		`UPDATE comments SET author_id = $1 WHERE author_id = $2`,
		// Contributor rows repoint to the sentinel as well, dropping any row
		// that would collide with an existing sentinel membership.
		`DELETE FROM contributors c
		 WHERE c.user_id = $2
		   AND EXISTS (SELECT 1 FROM contributors s WHERE s.user_id = $1 AND s.project_id = c.project_id)`,
		`UPDATE contributors SET user_id = $1 WHERE user_id = $2`,
	}
	for _, stmt := range statements {
		if _, err := tx.Exec(ctx, stmt, sentinelID, id); err != nil {
			return fmt.Errorf("failed to repoint references: %w", err)
		}
	}

	result, err := tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *userRepository) scanOne(row rowScanner) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.BirthDate,
		&user.CanBeContacted,
		&user.CanDataBeShared,
		&user.IsSuperuser,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return &user, nil
}

// isUniqueViolation reports whether err is a PostgreSQL unique constraint error.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// Ensure userRepository implements UserRepository at compile time.
var _ UserRepository = (*userRepository)(nil)
