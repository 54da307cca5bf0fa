package services

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/trackdesk-inc/trackdesk-engine/pkg/apperrors"
	"github.com/trackdesk-inc/trackdesk-engine/pkg/models"
	"github.com/trackdesk-inc/trackdesk-engine/pkg/repositories"
)

// CreateCommentInput carries a comment creation request. The author is
// always the caller.
type CreateCommentInput struct {
	IssueID     uuid.UUID
	Description string
}

// UpdateCommentInput carries a partial comment update.
type UpdateCommentInput struct {
	Description *string
}

// CommentService defines the comment log operations.
type CommentService interface {
	// Create posts a comment on an issue. Only the issue's author or a
	// contributor of the issue's project may comment.
	Create(ctx context.Context, actor *Actor, input *CreateCommentInput) (*models.Comment, error)

	Get(ctx context.Context, actor *Actor, id uuid.UUID) (*models.Comment, error)
	Update(ctx context.Context, actor *Actor, id uuid.UUID, input *UpdateCommentInput) (*models.Comment, error)
	Delete(ctx context.Context, actor *Actor, id uuid.UUID) error
}

// commentService implements CommentService.
type commentService struct {
	comments repositories.CommentRepository
	access   AccessEngine
	logger   *zap.Logger
}

// NewCommentService creates a new comment service with dependencies.
func NewCommentService(comments repositories.CommentRepository, access AccessEngine, logger *zap.Logger) CommentService {
	return &commentService{
		comments: comments,
		access:   access,
		logger:   logger,
	}
}

// Create posts a comment after the membership pre-check. A payload naming an
// issue that does not exist is a denial.
func (s *commentService) Create(ctx context.Context, actor *Actor, input *CreateCommentInput) (*models.Comment, error) {
	allowed, err := s.access.HasPermission(ctx, actor, ResourceComment, ActionCreate, &CreateRef{IssueID: input.IssueID})
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, apperrors.ErrForbidden
	}

	comment := &models.Comment{
		IssueID:     input.IssueID,
		AuthorID:    actor.ID,
		Description: input.Description,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}

	s.logger.Info("Comment created",
		zap.String("comment_id", comment.ID.String()),
		zap.String("issue_id", comment.IssueID.String()),
		zap.String("author_id", actor.ID.String()))
	return comment, nil
}

// Get returns a comment to its author, a project contributor, or a superuser.
func (s *commentService) Get(ctx context.Context, actor *Actor, id uuid.UUID) (*models.Comment, error) {
	comment, err := s.comments.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	allowed, err := s.access.HasObjectPermission(ctx, actor, ActionRetrieve, comment)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, apperrors.ErrForbidden
	}
	return comment, nil
}

// Update applies a partial update. Only the comment author or a superuser.
func (s *commentService) Update(ctx context.Context, actor *Actor, id uuid.UUID, input *UpdateCommentInput) (*models.Comment, error) {
	comment, err := s.comments.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	allowed, err := s.access.HasObjectPermission(ctx, actor, ActionUpdate, comment)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, apperrors.ErrForbidden
	}

	if input.Description != nil {
		comment.Description = *input.Description
	}

	if err := s.comments.Update(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// Delete removes a comment. Only the comment author or a superuser.
func (s *commentService) Delete(ctx context.Context, actor *Actor, id uuid.UUID) error {
	comment, err := s.comments.Get(ctx, id)
	if err != nil {
		return err
	}

	allowed, err := s.access.HasObjectPermission(ctx, actor, ActionDestroy, comment)
	if err != nil {
		return err
	}
	if !allowed {
		return apperrors.ErrForbidden
	}

	if err := s.comments.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("Comment deleted", zap.String("comment_id", id.String()))
	return nil
}

// Ensure commentService implements CommentService at compile time.
var _ CommentService = (*commentService)(nil)
