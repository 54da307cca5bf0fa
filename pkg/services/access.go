// Package services implements the business rules of trackdesk-engine.
package services

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/trackdesk-inc/trackdesk-engine/pkg/apperrors"
	"github.com/trackdesk-inc/trackdesk-engine/pkg/auth"
	"github.com/trackdesk-inc/trackdesk-engine/pkg/models"
	"github.com/trackdesk-inc/trackdesk-engine/pkg/repositories"
)

// Actor is the authenticated (or anonymous) caller of an operation. It is
// resolved from request credentials and passed explicitly into every service
// call; there is no ambient current-user state.
type Actor struct {
	ID            uuid.UUID
	IsSuperuser   bool
	Authenticated bool
}

// ActorFromContext builds an Actor from the JWT claims placed in the context
// by the auth middleware. Without claims the actor is anonymous.
func ActorFromContext(ctx context.Context) *Actor {
	id := auth.GetUserIDFromContext(ctx)
	if id == uuid.Nil {
		return &Actor{}
	}

	return &Actor{
		ID:            id,
		IsSuperuser:   auth.IsSuperuserFromContext(ctx),
		Authenticated: true,
	}
}

// Resource identifies the resource type an action targets.
type Resource string

// Resource constants.
const (
	ResourceUser    Resource = "user"
	ResourceProject Resource = "project"
	ResourceIssue   Resource = "issue"
	ResourceComment Resource = "comment"
)

// Action identifies the operation being attempted.
type Action string

// Action constants.
const (
	ActionList     Action = "list"
	ActionCreate   Action = "create"
	ActionRetrieve Action = "retrieve"
	ActionUpdate   Action = "update"
	ActionDestroy  Action = "destroy"
)

// CreateRef carries the parent resource referenced by a create payload, so
// the collection-level check can resolve membership before any instance
// exists. ProjectID is set for issue creation, IssueID for comment creation.
type CreateRef struct {
	ProjectID uuid.UUID
	IssueID   uuid.UUID
}

// AccessEngine evaluates the per-resource, per-action permission matrix in
// two phases: a collection-level check before any instance is loaded, and an
// instance-level check once the target is resolved. Both phases re-read
// relationship data (contributor membership) from the store; nothing is
// cached across requests.
type AccessEngine interface {
	// HasPermission is the collection-level check. ref may be nil except for
	// creates that reference a parent resource.
	HasPermission(ctx context.Context, actor *Actor, resource Resource, action Action, ref *CreateRef) (bool, error)

	// HasObjectPermission is the instance-level check for retrieve, update,
	// and destroy. obj must be one of the domain model types.
	HasObjectPermission(ctx context.Context, actor *Actor, action Action, obj any) (bool, error)
}

// accessEngine implements AccessEngine against the project and issue stores.
type accessEngine struct {
	projects repositories.ProjectRepository
	issues   repositories.IssueRepository
}

// NewAccessEngine creates the access engine.
func NewAccessEngine(projects repositories.ProjectRepository, issues repositories.IssueRepository) AccessEngine {
	return &accessEngine{projects: projects, issues: issues}
}

// HasPermission evaluates the collection-level rule for the resource/action
// pair. A missing referenced parent resource is a denial, not an error.
func (e *accessEngine) HasPermission(ctx context.Context, actor *Actor, resource Resource, action Action, ref *CreateRef) (bool, error) {
	switch resource {
	case ResourceUser:
		// Registration is open to anonymous callers; everything else needs a
		// credential.
		if action == ActionCreate {
			return true, nil
		}
		return actor.Authenticated, nil

	case ResourceProject:
		switch action {
		case ActionList, ActionCreate, ActionRetrieve, ActionUpdate, ActionDestroy:
			return actor.Authenticated, nil
		}
		return false, nil

	case ResourceIssue:
		switch action {
		case ActionList:
			// Issues are never listable as a flat collection, even for
			// superusers.
			return false, nil
		case ActionCreate:
			if !actor.Authenticated || ref == nil {
				return false, nil
			}
			return e.isProjectMember(ctx, actor, ref.ProjectID)
		case ActionRetrieve, ActionUpdate, ActionDestroy:
			return actor.Authenticated, nil
		}
		return false, nil

	case ResourceComment:
		switch action {
		case ActionList:
			return false, nil
		case ActionCreate:
			if !actor.Authenticated || ref == nil {
				return false, nil
			}
			return e.isIssueParticipant(ctx, actor, ref.IssueID)
		case ActionRetrieve, ActionUpdate, ActionDestroy:
			return actor.Authenticated, nil
		}
		return false, nil
	}

	return false, nil
}

// HasObjectPermission evaluates the instance-level rule. Superusers bypass
// author/contributor checks here but never the collection-level ones.
func (e *accessEngine) HasObjectPermission(ctx context.Context, actor *Actor, action Action, obj any) (bool, error) {
	if !actor.Authenticated {
		return false, nil
	}

	switch target := obj.(type) {
	case *models.User:
		switch action {
		case ActionRetrieve, ActionUpdate, ActionDestroy:
			return target.ID == actor.ID || actor.IsSuperuser, nil
		}
		return false, nil

	case *models.Project:
		switch action {
		case ActionRetrieve:
			if target.AuthorID == actor.ID || actor.IsSuperuser {
				return true, nil
			}
			return e.projects.IsContributor(ctx, target.ID, actor.ID)
		case ActionUpdate, ActionDestroy:
			return target.AuthorID == actor.ID || actor.IsSuperuser, nil
		}
		return false, nil

	case *models.Issue:
		switch action {
		case ActionRetrieve:
			if target.AuthorID == actor.ID || actor.IsSuperuser {
				return true, nil
			}
			return e.projects.IsContributor(ctx, target.ProjectID, actor.ID)
		case ActionUpdate, ActionDestroy:
			return target.AuthorID == actor.ID || actor.IsSuperuser, nil
		}
		return false, nil

	case *models.Comment:
		switch action {
		case ActionRetrieve:
			if target.AuthorID == actor.ID || actor.IsSuperuser {
				return true, nil
			}
			return e.isCommentProjectMember(ctx, actor, target)
		case ActionUpdate, ActionDestroy:
			return target.AuthorID == actor.ID || actor.IsSuperuser, nil
		}
		return false, nil
	}

	return false, nil
}

// isProjectMember reports whether the actor is the project's author or a
// current contributor. A project that does not exist denies.
func (e *accessEngine) isProjectMember(ctx context.Context, actor *Actor, projectID uuid.UUID) (bool, error) {
	project, err := e.projects.Get(ctx, projectID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	if project.AuthorID == actor.ID {
		return true, nil
	}
	return e.projects.IsContributor(ctx, projectID, actor.ID)
}

// isIssueParticipant reports whether the actor is the issue's author or a
// contributor of the issue's project. A missing issue denies.
func (e *accessEngine) isIssueParticipant(ctx context.Context, actor *Actor, issueID uuid.UUID) (bool, error) {
	issue, err := e.issues.Get(ctx, issueID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	if issue.AuthorID == actor.ID {
		return true, nil
	}
	return e.projects.IsContributor(ctx, issue.ProjectID, actor.ID)
}

// isCommentProjectMember resolves the comment's issue to reach the project
// contributor set.
func (e *accessEngine) isCommentProjectMember(ctx context.Context, actor *Actor, comment *models.Comment) (bool, error) {
	issue, err := e.issues.Get(ctx, comment.IssueID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return e.projects.IsContributor(ctx, issue.ProjectID, actor.ID)
}

// Ensure accessEngine implements AccessEngine at compile time.
var _ AccessEngine = (*accessEngine)(nil)
