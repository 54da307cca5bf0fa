package services

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/trackdesk-inc/trackdesk-engine/pkg/apperrors"
	"github.com/trackdesk-inc/trackdesk-engine/pkg/models"
	"github.com/trackdesk-inc/trackdesk-engine/pkg/repositories"
)

// CreateIssueInput carries an issue creation request. The author is always
// the caller, regardless of what the payload claimed.
type CreateIssueInput struct {
	ProjectID   uuid.UUID
	Title       string
	Description string
	AssignedTo  uuid.UUID
	Priority    string
	Tag         string
	Status      string
}

// UpdateIssueInput carries a partial issue update. Nil fields retain their
// prior value; the project reference cannot change.
type UpdateIssueInput struct {
	Title       *string
	Description *string
	AssignedTo  *uuid.UUID
	Priority    *string
	Tag         *string
	Status      *string
}

// IssueService defines the issue tracker operations.
type IssueService interface {
	// Create files an issue on a project. Only the project's author or a
	// current contributor may create; the assignee must be a contributor.
	Create(ctx context.Context, actor *Actor, input *CreateIssueInput) (*models.Issue, error)

	Get(ctx context.Context, actor *Actor, id uuid.UUID) (*models.Issue, error)
	Update(ctx context.Context, actor *Actor, id uuid.UUID, input *UpdateIssueInput) (*models.Issue, error)
	Delete(ctx context.Context, actor *Actor, id uuid.UUID) error

	// ListComments returns a page of the issue's comments to the issue
	// author or a contributor of its project.
	ListComments(ctx context.Context, actor *Actor, id uuid.UUID, limit, offset int) ([]*models.Comment, error)
}

// issueService implements IssueService.
type issueService struct {
	issues   repositories.IssueRepository
	comments repositories.CommentRepository
	projects repositories.ProjectRepository
	access   AccessEngine
	logger   *zap.Logger
}

// NewIssueService creates a new issue service with dependencies.
func NewIssueService(issues repositories.IssueRepository, comments repositories.CommentRepository, projects repositories.ProjectRepository, access AccessEngine, logger *zap.Logger) IssueService {
	return &issueService{
		issues:   issues,
		comments: comments,
		projects: projects,
		access:   access,
		logger:   logger,
	}
}

// Create files an issue after the membership pre-check. A payload naming a
// project that does not exist is a denial, not a server error.
func (s *issueService) Create(ctx context.Context, actor *Actor, input *CreateIssueInput) (*models.Issue, error) {
	allowed, err := s.access.HasPermission(ctx, actor, ResourceIssue, ActionCreate, &CreateRef{ProjectID: input.ProjectID})
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, apperrors.ErrForbidden
	}

	ve := &apperrors.ValidationError{}
	if input.Priority != "" && !models.IsValidPriority(input.Priority) {
		ve.Add("priority", "Not a valid choice.")
	}
	if input.Tag != "" && !models.IsValidTag(input.Tag) {
		ve.Add("tag", "Not a valid choice.")
	}
	if input.Status != "" && !models.IsValidStatus(input.Status) {
		ve.Add("status", "Not a valid choice.")
	}
	if input.AssignedTo == uuid.Nil {
		ve.Add("assigned_to", "This field is required.")
	}
	if ve.HasErrors() {
		return nil, ve
	}

	// The assignee must be a current contributor of the project.
	isContributor, err := s.projects.IsContributor(ctx, input.ProjectID, input.AssignedTo)
	if err != nil {
		return nil, err
	}
	if !isContributor {
		return nil, apperrors.NewValidationError("assigned_to", "Assignee must be a contributor of the project.")
	}

	issue := &models.Issue{
		ProjectID:   input.ProjectID,
		AuthorID:    actor.ID,
		AssignedTo:  input.AssignedTo,
		Title:       input.Title,
		Description: input.Description,
		Priority:    input.Priority,
		Tag:         input.Tag,
		Status:      input.Status,
	}
	if err := s.issues.Create(ctx, issue); err != nil {
		return nil, err
	}

	s.logger.Info("Issue created",
		zap.String("issue_id", issue.ID.String()),
		zap.String("project_id", issue.ProjectID.String()),
		zap.String("author_id", actor.ID.String()))
	return issue, nil
}

// Get returns an issue to its author, a project contributor, or a superuser.
func (s *issueService) Get(ctx context.Context, actor *Actor, id uuid.UUID) (*models.Issue, error) {
	issue, err := s.issues.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	allowed, err := s.access.HasObjectPermission(ctx, actor, ActionRetrieve, issue)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, apperrors.ErrForbidden
	}
	return issue, nil
}

// Update applies a partial update. Only the issue author or a superuser.
func (s *issueService) Update(ctx context.Context, actor *Actor, id uuid.UUID, input *UpdateIssueInput) (*models.Issue, error) {
	issue, err := s.issues.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	allowed, err := s.access.HasObjectPermission(ctx, actor, ActionUpdate, issue)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, apperrors.ErrForbidden
	}

	if input.Title != nil {
		issue.Title = *input.Title
	}
	if input.Description != nil {
		issue.Description = *input.Description
	}
	if input.AssignedTo != nil {
		isContributor, err := s.projects.IsContributor(ctx, issue.ProjectID, *input.AssignedTo)
		if err != nil {
			return nil, err
		}
		if !isContributor {
			return nil, apperrors.NewValidationError("assigned_to", "Assignee must be a contributor of the project.")
		}
		issue.AssignedTo = *input.AssignedTo
	}
	if input.Priority != nil {
		if !models.IsValidPriority(*input.Priority) {
			return nil, apperrors.NewValidationError("priority", "Not a valid choice.")
		}
		issue.Priority = *input.Priority
	}
	if input.Tag != nil {
		if !models.IsValidTag(*input.Tag) {
			return nil, apperrors.NewValidationError("tag", "Not a valid choice.")
		}
		issue.Tag = *input.Tag
	}
	if input.Status != nil {
		if !models.IsValidStatus(*input.Status) {
			return nil, apperrors.NewValidationError("status", "Not a valid choice.")
		}
		issue.Status = *input.Status
	}

	if err := s.issues.Update(ctx, issue); err != nil {
		return nil, err
	}
	return issue, nil
}

// Delete removes an issue and, by cascade, its comments.
func (s *issueService) Delete(ctx context.Context, actor *Actor, id uuid.UUID) error {
	issue, err := s.issues.Get(ctx, id)
	if err != nil {
		return err
	}

	allowed, err := s.access.HasObjectPermission(ctx, actor, ActionDestroy, issue)
	if err != nil {
		return err
	}
	if !allowed {
		return apperrors.ErrForbidden
	}

	if err := s.issues.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("Issue deleted", zap.String("issue_id", id.String()))
	return nil
}

// ListComments returns a page of the issue's comments.
func (s *issueService) ListComments(ctx context.Context, actor *Actor, id uuid.UUID, limit, offset int) ([]*models.Comment, error) {
	issue, err := s.issues.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	member := issue.AuthorID == actor.ID
	if !member {
		member, err = s.projects.IsContributor(ctx, issue.ProjectID, actor.ID)
		if err != nil {
			return nil, err
		}
	}
	if !member {
		return nil, apperrors.ErrForbidden
	}

	return s.comments.ListByIssue(ctx, id, limit, offset)
}

// Ensure issueService implements IssueService at compile time.
var _ IssueService = (*issueService)(nil)
