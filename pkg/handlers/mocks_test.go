package handlers

import (
	"context"

	"github.com/google/uuid"

	"github.com/trackdesk-inc/trackdesk-engine/pkg/auth"
	"github.com/trackdesk-inc/trackdesk-engine/pkg/models"
	"github.com/trackdesk-inc/trackdesk-engine/pkg/services"
)

// mockUserService implements services.UserService with function fields so
// each test supplies only the behavior it exercises.
type mockUserService struct {
	registerFunc     func(ctx context.Context, input *services.RegisterInput) (*models.User, error)
	authenticateFunc func(ctx context.Context, username, password string) (*auth.TokenPair, error)
	listFunc         func(ctx context.Context, actor *services.Actor) ([]*models.User, error)
	getFunc          func(ctx context.Context, actor *services.Actor, id uuid.UUID) (*models.User, error)
	updateFunc       func(ctx context.Context, actor *services.Actor, id uuid.UUID, input *services.UpdateUserInput) (*models.User, error)
	removeFunc       func(ctx context.Context, actor *services.Actor, id uuid.UUID) error
}

func (m *mockUserService) Register(ctx context.Context, input *services.RegisterInput) (*models.User, error) {
	return m.registerFunc(ctx, input)
}

func (m *mockUserService) Authenticate(ctx context.Context, username, password string) (*auth.TokenPair, error) {
	return m.authenticateFunc(ctx, username, password)
}

func (m *mockUserService) List(ctx context.Context, actor *services.Actor) ([]*models.User, error) {
	return m.listFunc(ctx, actor)
}

func (m *mockUserService) Get(ctx context.Context, actor *services.Actor, id uuid.UUID) (*models.User, error) {
	return m.getFunc(ctx, actor, id)
}

func (m *mockUserService) Update(ctx context.Context, actor *services.Actor, id uuid.UUID, input *services.UpdateUserInput) (*models.User, error) {
	return m.updateFunc(ctx, actor, id, input)
}

func (m *mockUserService) Remove(ctx context.Context, actor *services.Actor, id uuid.UUID) error {
	return m.removeFunc(ctx, actor, id)
}

var _ services.UserService = (*mockUserService)(nil)

// mockProjectService implements services.ProjectService.
type mockProjectService struct {
	createFunc             func(ctx context.Context, actor *services.Actor, input *services.CreateProjectInput) (*models.Project, error)
	listFunc               func(ctx context.Context, actor *services.Actor) ([]*models.Project, error)
	getFunc                func(ctx context.Context, actor *services.Actor, id uuid.UUID) (*models.Project, error)
	updateFunc             func(ctx context.Context, actor *services.Actor, id uuid.UUID, input *services.UpdateProjectInput) (*models.Project, error)
	deleteFunc             func(ctx context.Context, actor *services.Actor, id uuid.UUID) error
	addContributorsFunc    func(ctx context.Context, actor *services.Actor, id uuid.UUID, userIDs []uuid.UUID) (*models.Project, error)
	removeContributorsFunc func(ctx context.Context, actor *services.Actor, id uuid.UUID, userIDs []uuid.UUID) (*models.Project, error)
	listIssuesFunc         func(ctx context.Context, actor *services.Actor, id uuid.UUID, limit, offset int) ([]*models.Issue, error)
}

func (m *mockProjectService) Create(ctx context.Context, actor *services.Actor, input *services.CreateProjectInput) (*models.Project, error) {
	return m.createFunc(ctx, actor, input)
}

func (m *mockProjectService) List(ctx context.Context, actor *services.Actor) ([]*models.Project, error) {
	return m.listFunc(ctx, actor)
}

func (m *mockProjectService) Get(ctx context.Context, actor *services.Actor, id uuid.UUID) (*models.Project, error) {
	return m.getFunc(ctx, actor, id)
}

func (m *mockProjectService) Update(ctx context.Context, actor *services.Actor, id uuid.UUID, input *services.UpdateProjectInput) (*models.Project, error) {
	return m.updateFunc(ctx, actor, id, input)
}

func (m *mockProjectService) Delete(ctx context.Context, actor *services.Actor, id uuid.UUID) error {
	return m.deleteFunc(ctx, actor, id)
}

func (m *mockProjectService) AddContributors(ctx context.Context, actor *services.Actor, id uuid.UUID, userIDs []uuid.UUID) (*models.Project, error) {
	return m.addContributorsFunc(ctx, actor, id, userIDs)
}

func (m *mockProjectService) RemoveContributors(ctx context.Context, actor *services.Actor, id uuid.UUID, userIDs []uuid.UUID) (*models.Project, error) {
	return m.removeContributorsFunc(ctx, actor, id, userIDs)
}

func (m *mockProjectService) ListIssues(ctx context.Context, actor *services.Actor, id uuid.UUID, limit, offset int) ([]*models.Issue, error) {
	return m.listIssuesFunc(ctx, actor, id, limit, offset)
}

var _ services.ProjectService = (*mockProjectService)(nil)

// mockIssueService implements services.IssueService.
type mockIssueService struct {
	createFunc       func(ctx context.Context, actor *services.Actor, input *services.CreateIssueInput) (*models.Issue, error)
	getFunc          func(ctx context.Context, actor *services.Actor, id uuid.UUID) (*models.Issue, error)
	updateFunc       func(ctx context.Context, actor *services.Actor, id uuid.UUID, input *services.UpdateIssueInput) (*models.Issue, error)
	deleteFunc       func(ctx context.Context, actor *services.Actor, id uuid.UUID) error
	listCommentsFunc func(ctx context.Context, actor *services.Actor, id uuid.UUID, limit, offset int) ([]*models.Comment, error)
}

func (m *mockIssueService) Create(ctx context.Context, actor *services.Actor, input *services.CreateIssueInput) (*models.Issue, error) {
	return m.createFunc(ctx, actor, input)
}

func (m *mockIssueService) Get(ctx context.Context, actor *services.Actor, id uuid.UUID) (*models.Issue, error) {
	return m.getFunc(ctx, actor, id)
}

func (m *mockIssueService) Update(ctx context.Context, actor *services.Actor, id uuid.UUID, input *services.UpdateIssueInput) (*models.Issue, error) {
	return m.updateFunc(ctx, actor, id, input)
}

func (m *mockIssueService) Delete(ctx context.Context, actor *services.Actor, id uuid.UUID) error {
	return m.deleteFunc(ctx, actor, id)
}

func (m *mockIssueService) ListComments(ctx context.Context, actor *services.Actor, id uuid.UUID, limit, offset int) ([]*models.Comment, error) {
	return m.listCommentsFunc(ctx, actor, id, limit, offset)
}

var _ services.IssueService = (*mockIssueService)(nil)

// mockCommentService implements services.CommentService.
type mockCommentService struct {
	createFunc func(ctx context.Context, actor *services.Actor, input *services.CreateCommentInput) (*models.Comment, error)
	getFunc    func(ctx context.Context, actor *services.Actor, id uuid.UUID) (*models.Comment, error)
	updateFunc func(ctx context.Context, actor *services.Actor, id uuid.UUID, input *services.UpdateCommentInput) (*models.Comment, error)
	deleteFunc func(ctx context.Context, actor *services.Actor, id uuid.UUID) error
}

func (m *mockCommentService) Create(ctx context.Context, actor *services.Actor, input *services.CreateCommentInput) (*models.Comment, error) {
	return m.createFunc(ctx, actor, input)
}

func (m *mockCommentService) Get(ctx context.Context, actor *services.Actor, id uuid.UUID) (*models.Comment, error) {
	return m.getFunc(ctx, actor, id)
}

func (m *mockCommentService) Update(ctx context.Context, actor *services.Actor, id uuid.UUID, input *services.UpdateCommentInput) (*models.Comment, error) {
	return m.updateFunc(ctx, actor, id, input)
}

func (m *mockCommentService) Delete(ctx context.Context, actor *services.Actor, id uuid.UUID) error {
	return m.deleteFunc(ctx, actor, id)
}

var _ services.CommentService = (*mockCommentService)(nil)
