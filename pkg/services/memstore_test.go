package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/trackdesk-inc/trackdesk-engine/pkg/apperrors"
	"github.com/trackdesk-inc/trackdesk-engine/pkg/models"
	"github.com/trackdesk-inc/trackdesk-engine/pkg/repositories"
)

// memStore is an in-memory stand-in for the PostgreSQL repositories. It
// reproduces the store semantics the services rely on: unique usernames,
// contributor set behavior, cascade deletes, and sentinel repointing.
type memStore struct {
	users    map[uuid.UUID]*models.User
	projects map[uuid.UUID]*models.Project
	members  map[uuid.UUID][]uuid.UUID // projectID -> contributor user IDs
	issues   map[uuid.UUID]*models.Issue
	comments map[uuid.UUID]*models.Comment
}

func newMemStore() *memStore {
	return &memStore{
		users:    make(map[uuid.UUID]*models.User),
		projects: make(map[uuid.UUID]*models.Project),
		members:  make(map[uuid.UUID][]uuid.UUID),
		issues:   make(map[uuid.UUID]*models.Issue),
		comments: make(map[uuid.UUID]*models.Comment),
	}
}

func (s *memStore) userRepo() repositories.UserRepository       { return &memUsers{s} }
func (s *memStore) projectRepo() repositories.ProjectRepository { return &memProjects{s} }
func (s *memStore) issueRepo() repositories.IssueRepository     { return &memIssues{s} }
func (s *memStore) commentRepo() repositories.CommentRepository { return &memComments{s} }

func (s *memStore) hasMember(projectID, userID uuid.UUID) bool {
	for _, id := range s.members[projectID] {
		if id == userID {
			return true
		}
	}
	return false
}

type memUsers struct{ s *memStore }

func (r *memUsers) Create(_ context.Context, user *models.User) error {
	for _, existing := range r.s.users {
		if existing.Username == user.Username {
			return apperrors.ErrConflict
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	clone := *user
	r.s.users[user.ID] = &clone
	return nil
}

func (r *memUsers) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	user, ok := r.s.users[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	clone := *user
	return &clone, nil
}

func (r *memUsers) GetByUsername(_ context.Context, username string) (*models.User, error) {
	for _, user := range r.s.users {
		if user.Username == username {
			clone := *user
			return &clone, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *memUsers) List(_ context.Context) ([]*models.User, error) {
	users := make([]*models.User, 0, len(r.s.users))
	for _, user := range r.s.users {
		clone := *user
		users = append(users, &clone)
	}
	return users, nil
}

func (r *memUsers) Update(_ context.Context, user *models.User) error {
	stored, ok := r.s.users[user.ID]
	if !ok {
		return apperrors.ErrNotFound
	}
	stored.PasswordHash = user.PasswordHash
	stored.CanBeContacted = user.CanBeContacted
	stored.CanDataBeShared = user.CanDataBeShared
	stored.UpdatedAt = time.Now()
	return nil
}

func (r *memUsers) GetOrCreateSentinel(ctx context.Context) (*models.User, error) {
	if user, err := r.GetByUsername(ctx, models.SentinelUsername); err == nil {
		return user, nil
	}
	sentinel := &models.User{
		Username:     models.SentinelUsername,
		PasswordHash: "!",
		BirthDate:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := r.Create(ctx, sentinel); err != nil {
		return nil, err
	}
	return sentinel, nil
}

func (r *memUsers) RemoveAndRepoint(_ context.Context, id, sentinelID uuid.UUID) error {
	if _, ok := r.s.users[id]; !ok {
		return apperrors.ErrNotFound
	}
	for _, project := range r.s.projects {
		if project.AuthorID == id {
			project.AuthorID = sentinelID
		}
	}
	for _, issue := range r.s.issues {
		if issue.AuthorID == id {
			issue.AuthorID = sentinelID
		}
		if issue.AssignedTo == id {
			issue.AssignedTo = sentinelID
		}
	}
	for _, comment := range r.s.comments {
		if comment.AuthorID == id {
			comment.AuthorID = sentinelID
		}
	}
	for projectID, members := range r.s.members {
		repointed := members[:0]
		for _, userID := range members {
			if userID == id {
				userID = sentinelID
			}
			duplicate := false
			for _, existing := range repointed {
				if existing == userID {
					duplicate = true
					break
				}
			}
			if !duplicate {
				repointed = append(repointed, userID)
			}
		}
		r.s.members[projectID] = repointed
	}
	delete(r.s.users, id)
	return nil
}

type memProjects struct{ s *memStore }

func (r *memProjects) Create(_ context.Context, project *models.Project) error {
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
	clone := *project
	clone.Contributors = nil
	r.s.projects[project.ID] = &clone
	r.s.members[project.ID] = []uuid.UUID{project.AuthorID}
	project.Contributors = []uuid.UUID{project.AuthorID}
	return nil
}

func (r *memProjects) Get(_ context.Context, id uuid.UUID) (*models.Project, error) {
	project, ok := r.s.projects[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	clone := *project
	clone.Contributors = append([]uuid.UUID(nil), r.s.members[id]...)
	return &clone, nil
}

func (r *memProjects) List(_ context.Context) ([]*models.Project, error) {
	projects := make([]*models.Project, 0, len(r.s.projects))
	for _, project := range r.s.projects {
		clone := *project
		clone.Contributors = nil
		projects = append(projects, &clone)
	}
	return projects, nil
}

func (r *memProjects) Update(_ context.Context, project *models.Project) error {
	stored, ok := r.s.projects[project.ID]
	if !ok {
		return apperrors.ErrNotFound
	}
	stored.Title = project.Title
	stored.Description = project.Description
	stored.Category = project.Category
	stored.UpdatedAt = time.Now()
	return nil
}

func (r *memProjects) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.s.projects[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(r.s.projects, id)
	delete(r.s.members, id)
	for issueID, issue := range r.s.issues {
		if issue.ProjectID != id {
			continue
		}
		for commentID, comment := range r.s.comments {
			if comment.IssueID == issueID {
				delete(r.s.comments, commentID)
			}
		}
		delete(r.s.issues, issueID)
	}
	return nil
}

func (r *memProjects) AddContributors(_ context.Context, projectID uuid.UUID, userIDs []uuid.UUID) error {
	if _, ok := r.s.projects[projectID]; !ok {
		return apperrors.ErrNotFound
	}
	for _, userID := range userIDs {
		// Unknown users are silently skipped.
		if _, ok := r.s.users[userID]; !ok {
			continue
		}
		if !r.s.hasMember(projectID, userID) {
			r.s.members[projectID] = append(r.s.members[projectID], userID)
		}
	}
	return nil
}

func (r *memProjects) RemoveContributors(_ context.Context, projectID uuid.UUID, userIDs []uuid.UUID) error {
	remaining := r.s.members[projectID][:0]
	for _, member := range r.s.members[projectID] {
		removed := false
		for _, userID := range userIDs {
			if member == userID {
				removed = true
				break
			}
		}
		if !removed {
			remaining = append(remaining, member)
		}
	}
	r.s.members[projectID] = remaining
	return nil
}

func (r *memProjects) IsContributor(_ context.Context, projectID, userID uuid.UUID) (bool, error) {
	return r.s.hasMember(projectID, userID), nil
}

type memIssues struct{ s *memStore }

func (r *memIssues) Create(_ context.Context, issue *models.Issue) error {
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
	clone := *issue
	r.s.issues[issue.ID] = &clone
	return nil
}

func (r *memIssues) Get(_ context.Context, id uuid.UUID) (*models.Issue, error) {
	issue, ok := r.s.issues[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	clone := *issue
	return &clone, nil
}

func (r *memIssues) Update(_ context.Context, issue *models.Issue) error {
	stored, ok := r.s.issues[issue.ID]
	if !ok {
		return apperrors.ErrNotFound
	}
	stored.AssignedTo = issue.AssignedTo
	stored.Title = issue.Title
	stored.Description = issue.Description
	stored.Priority = issue.Priority
	stored.Tag = issue.Tag
	stored.Status = issue.Status
	stored.UpdatedAt = time.Now()
	return nil
}

func (r *memIssues) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.s.issues[id]; !ok {
		return apperrors.ErrNotFound
	}
	for commentID, comment := range r.s.comments {
		if comment.IssueID == id {
			delete(r.s.comments, commentID)
		}
	}
	delete(r.s.issues, id)
	return nil
}

func (r *memIssues) ListByProject(_ context.Context, projectID uuid.UUID, limit, offset int) ([]*models.Issue, error) {
	var issues []*models.Issue
	for _, issue := range r.s.issues {
		if issue.ProjectID == projectID {
			clone := *issue
			issues = append(issues, &clone)
		}
	}
	return paginate(issues, limit, offset), nil
}

type memComments struct{ s *memStore }

func (r *memComments) Create(_ context.Context, comment *models.Comment) error {
	if comment.ID == uuid.Nil {
		comment.ID = uuid.New()
	}
	now := time.Now()
	comment.CreatedAt = now
	comment.UpdatedAt = now
	clone := *comment
	r.s.comments[comment.ID] = &clone
	return nil
}

func (r *memComments) Get(_ context.Context, id uuid.UUID) (*models.Comment, error) {
	comment, ok := r.s.comments[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	clone := *comment
	return &clone, nil
}

func (r *memComments) Update(_ context.Context, comment *models.Comment) error {
	stored, ok := r.s.comments[comment.ID]
	if !ok {
		return apperrors.ErrNotFound
	}
	stored.Description = comment.Description
	stored.UpdatedAt = time.Now()
	return nil
}

func (r *memComments) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.s.comments[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(r.s.comments, id)
	return nil
}

func (r *memComments) ListByIssue(_ context.Context, issueID uuid.UUID, limit, offset int) ([]*models.Comment, error) {
	var comments []*models.Comment
	for _, comment := range r.s.comments {
		if comment.IssueID == issueID {
			clone := *comment
			comments = append(comments, &clone)
		}
	}
	return paginate(comments, limit, offset), nil
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
