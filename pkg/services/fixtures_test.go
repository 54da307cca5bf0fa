package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/trackdesk-inc/trackdesk-engine/pkg/auth"
	"github.com/trackdesk-inc/trackdesk-engine/pkg/crypto"
	"github.com/trackdesk-inc/trackdesk-engine/pkg/models"
)

// testEnv wires the full service stack over the in-memory store.
type testEnv struct {
	store    *memStore
	access   AccessEngine
	users    UserService
	projects ProjectService
	issues   IssueService
	comments CommentService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := newMemStore()
	logger := zap.NewNop()
	access := NewAccessEngine(store.projectRepo(), store.issueRepo())
	tokens := auth.NewTokenService("test-secret", "trackdesk-engine", 15*time.Minute, 24*time.Hour)
	hasher := crypto.NewPasswordHasher()

	return &testEnv{
		store:    store,
		access:   access,
		users:    NewUserService(store.userRepo(), access, hasher, tokens, logger),
		projects: NewProjectService(store.projectRepo(), store.issueRepo(), access, logger),
		issues:   NewIssueService(store.issueRepo(), store.commentRepo(), store.projectRepo(), access, logger),
		comments: NewCommentService(store.commentRepo(), access, logger),
	}
}

// register creates an adult account and returns it with its actor.
func (e *testEnv) register(t *testing.T, username string) (*models.User, *Actor) {
	t.Helper()

	user, err := e.users.Register(context.Background(), &RegisterInput{
		Username:  username,
		Password:  "s3cret-pass",
		BirthDate: "1990-06-15",
	})
	require.NoError(t, err)
	return user, actorFor(user)
}

// seedUser inserts a user directly into the store, bypassing registration.
func (e *testEnv) seedUser(t *testing.T, user *models.User) *models.User {
	t.Helper()

	if user.PasswordHash == "" {
		user.PasswordHash = "!"
	}
	require.NoError(t, e.store.userRepo().Create(context.Background(), user))
	return user
}

func actorFor(user *models.User) *Actor {
	return &Actor{ID: user.ID, IsSuperuser: user.IsSuperuser, Authenticated: true}
}

func anonymous() *Actor { return &Actor{} }

// underageBirthDate returns a birth date ten years back, safely under the
// consent age.
func underageBirthDate() string {
	return time.Now().AddDate(-10, 0, 0).Format("2006-01-02")
}

func boolPtr(v bool) *bool       { return &v }
func strPtr(v string) *string    { return &v }
func uuidPtr(v uuid.UUID) *uuid.UUID { return &v }
