package services

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/trackdesk-inc/trackdesk-engine/pkg/apperrors"
	"github.com/trackdesk-inc/trackdesk-engine/pkg/models"
	"github.com/trackdesk-inc/trackdesk-engine/pkg/repositories"
)

// CreateProjectInput carries a project creation request. Empty fields take
// their defaults. Contributor lists submitted inline at creation are ignored;
// only the author is auto-added.
type CreateProjectInput struct {
	Title       string
	Description string
	Category    string
}

// UpdateProjectInput carries a partial project update. Nil fields retain
// their prior value.
type UpdateProjectInput struct {
	Title       *string
	Description *string
	Category    *string
}

// ProjectService defines the project registry operations.
type ProjectService interface {
	Create(ctx context.Context, actor *Actor, input *CreateProjectInput) (*models.Project, error)
	List(ctx context.Context, actor *Actor) ([]*models.Project, error)
	Get(ctx context.Context, actor *Actor, id uuid.UUID) (*models.Project, error)
	Update(ctx context.Context, actor *Actor, id uuid.UUID, input *UpdateProjectInput) (*models.Project, error)
	Delete(ctx context.Context, actor *Actor, id uuid.UUID) error

	// AddContributors adds users to the project's contributor set. Only the
	// project author or a superuser may call this; unresolvable user IDs are
	// silently skipped. Returns the refreshed project.
	AddContributors(ctx context.Context, actor *Actor, id uuid.UUID, userIDs []uuid.UUID) (*models.Project, error)
	// RemoveContributors removes users from the set; removing a non-member
	// is a no-op.
	RemoveContributors(ctx context.Context, actor *Actor, id uuid.UUID, userIDs []uuid.UUID) (*models.Project, error)

	// ListIssues returns a page of the project's issues. Only the author or
	// a contributor may list them.
	ListIssues(ctx context.Context, actor *Actor, id uuid.UUID, limit, offset int) ([]*models.Issue, error)
}

// projectService implements ProjectService.
type projectService struct {
	projects repositories.ProjectRepository
	issues   repositories.IssueRepository
	access   AccessEngine
	logger   *zap.Logger
}

// NewProjectService creates a new project service with dependencies.
func NewProjectService(projects repositories.ProjectRepository, issues repositories.IssueRepository, access AccessEngine, logger *zap.Logger) ProjectService {
	return &projectService{
		projects: projects,
		issues:   issues,
		access:   access,
		logger:   logger,
	}
}

// Create creates a project with the caller as author and first contributor.
func (s *projectService) Create(ctx context.Context, actor *Actor, input *CreateProjectInput) (*models.Project, error) {
	allowed, err := s.access.HasPermission(ctx, actor, ResourceProject, ActionCreate, nil)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, apperrors.ErrForbidden
	}

	if input.Category != "" && !models.IsValidCategory(input.Category) {
		return nil, apperrors.NewValidationError("category", "Not a valid choice.")
	}

	project := &models.Project{
		Title:       input.Title,
		Description: input.Description,
		Category:    input.Category,
		AuthorID:    actor.ID,
	}
	if err := s.projects.Create(ctx, project); err != nil {
		return nil, err
	}

	s.logger.Info("Project created",
		zap.String("project_id", project.ID.String()),
		zap.String("author_id", actor.ID.String()))
	return project, nil
}

// List returns all projects for an authenticated caller.
func (s *projectService) List(ctx context.Context, actor *Actor) ([]*models.Project, error) {
	allowed, err := s.access.HasPermission(ctx, actor, ResourceProject, ActionList, nil)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, apperrors.ErrForbidden
	}
	return s.projects.List(ctx)
}

// Get returns a project to its author, a contributor, or a superuser.
func (s *projectService) Get(ctx context.Context, actor *Actor, id uuid.UUID) (*models.Project, error) {
	project, err := s.projects.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	allowed, err := s.access.HasObjectPermission(ctx, actor, ActionRetrieve, project)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, apperrors.ErrForbidden
	}
	return project, nil
}

// Update applies a partial update. Only the author or a superuser may update.
func (s *projectService) Update(ctx context.Context, actor *Actor, id uuid.UUID, input *UpdateProjectInput) (*models.Project, error) {
	project, err := s.projects.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	allowed, err := s.access.HasObjectPermission(ctx, actor, ActionUpdate, project)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, apperrors.ErrForbidden
	}

	if input.Title != nil {
		project.Title = *input.Title
	}
	if input.Description != nil {
		project.Description = *input.Description
	}
	if input.Category != nil {
		if !models.IsValidCategory(*input.Category) {
			return nil, apperrors.NewValidationError("category", "Not a valid choice.")
		}
		project.Category = *input.Category
	}

	if err := s.projects.Update(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

// Delete removes a project and, by cascade, its issues and their comments.
func (s *projectService) Delete(ctx context.Context, actor *Actor, id uuid.UUID) error {
	project, err := s.projects.Get(ctx, id)
	if err != nil {
		return err
	}

	allowed, err := s.access.HasObjectPermission(ctx, actor, ActionDestroy, project)
	if err != nil {
		return err
	}
	if !allowed {
		return apperrors.ErrForbidden
	}

	if err := s.projects.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("Project deleted", zap.String("project_id", id.String()))
	return nil
}

// AddContributors grows the contributor set. Author or superuser only.
func (s *projectService) AddContributors(ctx context.Context, actor *Actor, id uuid.UUID, userIDs []uuid.UUID) (*models.Project, error) {
	project, err := s.projects.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if !s.canManageContributors(actor, project) {
		return nil, apperrors.ErrForbidden
	}

	if err := s.projects.AddContributors(ctx, id, userIDs); err != nil {
		return nil, err
	}
	return s.projects.Get(ctx, id)
}

// RemoveContributors shrinks the contributor set. Author or superuser only.
func (s *projectService) RemoveContributors(ctx context.Context, actor *Actor, id uuid.UUID, userIDs []uuid.UUID) (*models.Project, error) {
	project, err := s.projects.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if !s.canManageContributors(actor, project) {
		return nil, apperrors.ErrForbidden
	}

	if err := s.projects.RemoveContributors(ctx, id, userIDs); err != nil {
		return nil, err
	}
	return s.projects.Get(ctx, id)
}

// ListIssues returns a page of the project's issues to its author or a
// contributor.
func (s *projectService) ListIssues(ctx context.Context, actor *Actor, id uuid.UUID, limit, offset int) ([]*models.Issue, error) {
	project, err := s.projects.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	member := project.AuthorID == actor.ID
	if !member {
		member, err = s.projects.IsContributor(ctx, id, actor.ID)
		if err != nil {
			return nil, err
		}
	}
	if !member {
		return nil, apperrors.ErrForbidden
	}

	return s.issues.ListByProject(ctx, id, limit, offset)
}

func (s *projectService) canManageContributors(actor *Actor, project *models.Project) bool {
	return actor.Authenticated && (project.AuthorID == actor.ID || actor.IsSuperuser)
}

// Ensure projectService implements ProjectService at compile time.
var _ ProjectService = (*projectService)(nil)
