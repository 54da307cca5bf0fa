package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/trackdesk-inc/trackdesk-engine/pkg/apperrors"
	"github.com/trackdesk-inc/trackdesk-engine/pkg/models"
	"github.com/trackdesk-inc/trackdesk-engine/pkg/services"
)

func TestProjectsHandler_Create(t *testing.T) {
	projectID := uuid.New()
	svc := &mockProjectService{
		createFunc: func(ctx context.Context, actor *services.Actor, input *services.CreateProjectInput) (*models.Project, error) {
			if input.Category != models.CategoryFrontend {
				t.Errorf("expected category '%s', got '%s'", models.CategoryFrontend, input.Category)
			}
			return &models.Project{ID: projectID, Title: input.Title, Category: input.Category}, nil
		},
	}
	handler := NewProjectsHandler(svc, zap.NewNop())

	body := `{"title":"Web UI","category":"front-end"}`
	req := httptest.NewRequest(http.MethodPost, "/api/projects", strings.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d", http.StatusCreated, rec.Code)
	}

	var response models.Project
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.ID != projectID {
		t.Errorf("expected project ID %s, got %s", projectID, response.ID)
	}
}

func TestProjectsHandler_List_HidesMembership(t *testing.T) {
	authorID := uuid.New()
	svc := &mockProjectService{
		listFunc: func(ctx context.Context, actor *services.Actor) ([]*models.Project, error) {
			return []*models.Project{{
				ID:           uuid.New(),
				Title:        "Payments",
				Category:     models.CategoryBackend,
				AuthorID:     authorID,
				Contributors: []uuid.UUID{authorID},
			}}, nil
		},
	}
	handler := NewProjectsHandler(svc, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/api/projects", nil)
	rec := httptest.NewRecorder()

	handler.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var response []map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(response) != 1 {
		t.Fatalf("expected 1 project, got %d", len(response))
	}
	if _, ok := response[0]["author"]; ok {
		t.Error("list view must not expose the author")
	}
	if _, ok := response[0]["contributors"]; ok {
		t.Error("list view must not expose contributors")
	}
	if response[0]["title"] != "Payments" {
		t.Errorf("expected title Payments, got %v", response[0]["title"])
	}
}

func TestProjectsHandler_Get_NotFound(t *testing.T) {
	svc := &mockProjectService{
		getFunc: func(ctx context.Context, actor *services.Actor, id uuid.UUID) (*models.Project, error) {
			return nil, apperrors.ErrNotFound
		},
	}
	handler := NewProjectsHandler(svc, zap.NewNop())

	id := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/api/projects/"+id, nil)
	req.SetPathValue("pid", id)
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestProjectsHandler_AddContributors(t *testing.T) {
	projectID := uuid.New()
	joeID := uuid.New()
	svc := &mockProjectService{
		addContributorsFunc: func(ctx context.Context, actor *services.Actor, id uuid.UUID, userIDs []uuid.UUID) (*models.Project, error) {
			if id != projectID {
				t.Errorf("expected project ID %s, got %s", projectID, id)
			}
			if len(userIDs) != 1 || userIDs[0] != joeID {
				t.Errorf("unexpected user IDs: %v", userIDs)
			}
			return &models.Project{ID: projectID, Contributors: []uuid.UUID{joeID}}, nil
		},
	}
	handler := NewProjectsHandler(svc, zap.NewNop())

	body, _ := json.Marshal(ContributorsRequest{ContributorIDs: []uuid.UUID{joeID}})
	req := httptest.NewRequest(http.MethodPost, "/api/projects/"+projectID.String()+"/add-contributors", strings.NewReader(string(body)))
	req.SetPathValue("pid", projectID.String())
	rec := httptest.NewRecorder()

	handler.AddContributors(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var response models.Project
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(response.Contributors) != 1 {
		t.Errorf("expected 1 contributor, got %d", len(response.Contributors))
	}
}

func TestProjectsHandler_RemoveContributors_Forbidden(t *testing.T) {
	svc := &mockProjectService{
		removeContributorsFunc: func(ctx context.Context, actor *services.Actor, id uuid.UUID, userIDs []uuid.UUID) (*models.Project, error) {
			return nil, apperrors.ErrForbidden
		},
	}
	handler := NewProjectsHandler(svc, zap.NewNop())

	id := uuid.NewString()
	req := httptest.NewRequest(http.MethodPost, "/api/projects/"+id+"/remove-contributors", strings.NewReader(`{"users":[]}`))
	req.SetPathValue("pid", id)
	rec := httptest.NewRecorder()

	handler.RemoveContributors(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("expected status %d, got %d", http.StatusForbidden, rec.Code)
	}
}

func TestProjectsHandler_ListIssues_Pagination(t *testing.T) {
	svc := &mockProjectService{
		listIssuesFunc: func(ctx context.Context, actor *services.Actor, id uuid.UUID, limit, offset int) ([]*models.Issue, error) {
			if limit != 5 {
				t.Errorf("expected limit 5, got %d", limit)
			}
			if offset != 10 {
				t.Errorf("expected offset 10, got %d", offset)
			}
			return []*models.Issue{}, nil
		},
	}
	handler := NewProjectsHandler(svc, zap.NewNop())

	id := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/api/projects/"+id+"/issues?limit=5&offset=10", nil)
	req.SetPathValue("pid", id)
	rec := httptest.NewRecorder()

	handler.ListIssues(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
}

func TestProjectsHandler_Delete(t *testing.T) {
	svc := &mockProjectService{
		deleteFunc: func(ctx context.Context, actor *services.Actor, id uuid.UUID) error {
			return nil
		},
	}
	handler := NewProjectsHandler(svc, zap.NewNop())

	id := uuid.NewString()
	req := httptest.NewRequest(http.MethodDelete, "/api/projects/"+id, nil)
	req.SetPathValue("pid", id)
	rec := httptest.NewRecorder()

	handler.Delete(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("expected status %d, got %d", http.StatusNoContent, rec.Code)
	}
}
