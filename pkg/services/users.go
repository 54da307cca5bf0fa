package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/trackdesk-inc/trackdesk-engine/pkg/apperrors"
	"github.com/trackdesk-inc/trackdesk-engine/pkg/auth"
	"github.com/trackdesk-inc/trackdesk-engine/pkg/crypto"
	"github.com/trackdesk-inc/trackdesk-engine/pkg/models"
	"github.com/trackdesk-inc/trackdesk-engine/pkg/repositories"
)

// birthDateLayout is the wire format for birth dates.
const birthDateLayout = "2006-01-02"

// RegisterInput carries a registration request. Consent flags are pointers
// so "not submitted" is distinguishable from "false"; non-boolean JSON
// values are rejected before this struct is built.
type RegisterInput struct {
	Username        string
	Password        string
	BirthDate       string
	CanBeContacted  *bool
	CanDataBeShared *bool
}

// UpdateUserInput carries a partial profile update. Nil fields retain their
// prior value. The birth date is immutable after registration.
type UpdateUserInput struct {
	Password        *string
	CanBeContacted  *bool
	CanDataBeShared *bool
}

// UserService defines the identity operations.
type UserService interface {
	// Register creates a new account. Anonymous callers are allowed.
	Register(ctx context.Context, input *RegisterInput) (*models.User, error)

	// Authenticate verifies credentials and issues an access+refresh pair.
	Authenticate(ctx context.Context, username, password string) (*auth.TokenPair, error)

	List(ctx context.Context, actor *Actor) ([]*models.User, error)
	Get(ctx context.Context, actor *Actor, id uuid.UUID) (*models.User, error)

	// Update applies a partial update. Only the user themself or a superuser
	// may update; the underage consent override is re-applied against the
	// stored birth date.
	Update(ctx context.Context, actor *Actor, id uuid.UUID, input *UpdateUserInput) (*models.User, error)

	// Remove deletes the account, repointing everything it authored or was
	// assigned to at the sentinel user.
	Remove(ctx context.Context, actor *Actor, id uuid.UUID) error
}

// userService implements UserService.
type userService struct {
	users  repositories.UserRepository
	access AccessEngine
	hasher crypto.PasswordHasher
	tokens auth.TokenService
	logger *zap.Logger
	now    func() time.Time
}

// NewUserService creates a new user service with dependencies.
func NewUserService(users repositories.UserRepository, access AccessEngine, hasher crypto.PasswordHasher, tokens auth.TokenService, logger *zap.Logger) UserService {
	return &userService{
		users:  users,
		access: access,
		hasher: hasher,
		tokens: tokens,
		logger: logger,
		now:    time.Now,
	}
}

// Register validates the input, applies the underage consent override, and
// stores the new account with a hashed credential.
func (s *userService) Register(ctx context.Context, input *RegisterInput) (*models.User, error) {
	ve := &apperrors.ValidationError{}
	if input.Username == "" {
		ve.Add("username", "This field may not be blank.")
	}
	if input.Password == "" {
		ve.Add("password", "This field may not be blank.")
	}

	var birthDate time.Time
	if input.BirthDate == "" {
		ve.Add("birth_date", "This field is required.")
	} else {
		var err error
		birthDate, err = time.Parse(birthDateLayout, input.BirthDate)
		if err != nil {
			ve.Add("birth_date", "Date has wrong format. Use YYYY-MM-DD.")
		}
	}

	if ve.HasErrors() {
		return nil, ve
	}

	hashed, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     input.Username,
		PasswordHash: hashed,
		BirthDate:    birthDate,
	}
	if input.CanBeContacted != nil {
		user.CanBeContacted = *input.CanBeContacted
	}
	if input.CanDataBeShared != nil {
		user.CanDataBeShared = *input.CanDataBeShared
	}
	user.ApplyConsentPolicy(s.now())

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, apperrors.NewValidationError("username", "A user with that username already exists.")
		}
		return nil, err
	}

	s.logger.Info("User registered",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username))

	return user, nil
}

// Authenticate verifies the credential and issues tokens.
func (s *userService) Authenticate(ctx context.Context, username, password string) (*auth.TokenPair, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if err == apperrors.ErrNotFound {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if !s.hasher.Verify(user.PasswordHash, password) {
		return nil, apperrors.ErrInvalidCredentials
	}

	pair, err := s.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue tokens: %w", err)
	}
	return pair, nil
}

// List returns all users. Requires an authenticated caller.
func (s *userService) List(ctx context.Context, actor *Actor) ([]*models.User, error) {
	allowed, err := s.access.HasPermission(ctx, actor, ResourceUser, ActionList, nil)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, apperrors.ErrForbidden
	}
	return s.users.List(ctx)
}

// Get returns a user. Only the user themself or a superuser may retrieve.
func (s *userService) Get(ctx context.Context, actor *Actor, id uuid.UUID) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	allowed, err := s.access.HasObjectPermission(ctx, actor, ActionRetrieve, user)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, apperrors.ErrForbidden
	}
	return user, nil
}

// Update applies a partial profile update.
func (s *userService) Update(ctx context.Context, actor *Actor, id uuid.UUID, input *UpdateUserInput) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	allowed, err := s.access.HasObjectPermission(ctx, actor, ActionUpdate, user)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, apperrors.ErrForbidden
	}

	if input.Password != nil {
		if *input.Password == "" {
			return nil, apperrors.NewValidationError("password", "This field may not be blank.")
		}
		hashed, err := s.hasher.Hash(*input.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = hashed
	}
	if input.CanBeContacted != nil {
		user.CanBeContacted = *input.CanBeContacted
	}
	if input.CanDataBeShared != nil {
		user.CanDataBeShared = *input.CanDataBeShared
	}

	// The override always re-evaluates against the stored birth date.
	user.ApplyConsentPolicy(s.now())

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Remove deletes the account after repointing references to the sentinel.
func (s *userService) Remove(ctx context.Context, actor *Actor, id uuid.UUID) error {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return err
	}

	allowed, err := s.access.HasObjectPermission(ctx, actor, ActionDestroy, user)
	if err != nil {
		return err
	}
	if !allowed {
		return apperrors.ErrForbidden
	}

	sentinel, err := s.users.GetOrCreateSentinel(ctx)
	if err != nil {
		return fmt.Errorf("failed to resolve sentinel user: %w", err)
	}

	if err := s.users.RemoveAndRepoint(ctx, id, sentinel.ID); err != nil {
		return err
	}

	s.logger.Info("User removed",
		zap.String("user_id", id.String()),
		zap.String("sentinel_id", sentinel.ID.String()))
	return nil
}

// Ensure userService implements UserService at compile time.
var _ UserService = (*userService)(nil)
