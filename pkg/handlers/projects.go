package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/trackdesk-inc/trackdesk-engine/pkg/auth"
	"github.com/trackdesk-inc/trackdesk-engine/pkg/models"
	"github.com/trackdesk-inc/trackdesk-engine/pkg/services"
)

// CreateProjectRequest is the project creation payload. All fields are
// optional; the service fills in defaults.
type CreateProjectRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// UpdateProjectRequest is the partial project update payload.
type UpdateProjectRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
}

// ContributorsRequest names the users to add to or remove from a project's
// contributor set.
type ContributorsRequest struct {
	ContributorIDs []uuid.UUID `json:"contributor_ids"`
}

// ProjectsHandler handles project HTTP requests.
type ProjectsHandler struct {
	projects services.ProjectService
	logger   *zap.Logger
}

// NewProjectsHandler creates a new projects handler.
func NewProjectsHandler(projects services.ProjectService, logger *zap.Logger) *ProjectsHandler {
	return &ProjectsHandler{projects: projects, logger: logger}
}

// RegisterRoutes registers the projects handler's routes on the given mux.
func (h *ProjectsHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("GET /api/projects", authMiddleware.RequireAuth(h.List))
	mux.HandleFunc("POST /api/projects", authMiddleware.RequireAuth(h.Create))
	mux.HandleFunc("GET /api/projects/{pid}", authMiddleware.RequireAuth(h.Get))
	mux.HandleFunc("PATCH /api/projects/{pid}", authMiddleware.RequireAuth(h.Update))
	mux.HandleFunc("DELETE /api/projects/{pid}", authMiddleware.RequireAuth(h.Delete))
	mux.HandleFunc("POST /api/projects/{pid}/add-contributors", authMiddleware.RequireAuth(h.AddContributors))
	mux.HandleFunc("POST /api/projects/{pid}/remove-contributors", authMiddleware.RequireAuth(h.RemoveContributors))
	mux.HandleFunc("GET /api/projects/{pid}/issues", authMiddleware.RequireAuth(h.ListIssues))
}

// Create handles POST /api/projects.
func (h *ProjectsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateProjectRequest
	if !DecodeJSON(w, r, h.logger, &req) {
		return
	}
	actor := services.ActorFromContext(r.Context())

	project, err := h.projects.Create(r.Context(), actor, &services.CreateProjectInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
	})
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusCreated, project); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// List handles GET /api/projects. The list view hides author and
// contributors; those are only on the detail view.
func (h *ProjectsHandler) List(w http.ResponseWriter, r *http.Request) {
	actor := services.ActorFromContext(r.Context())

	projects, err := h.projects.List(r.Context(), actor)
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	summaries := make([]*models.ProjectSummary, 0, len(projects))
	for _, p := range projects {
		summaries = append(summaries, p.Summary())
	}

	if err := WriteJSON(w, http.StatusOK, summaries); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Get handles GET /api/projects/{pid}.
func (h *ProjectsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseProjectID(w, r, h.logger)
	if !ok {
		return
	}
	actor := services.ActorFromContext(r.Context())

	project, err := h.projects.Get(r.Context(), actor, id)
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, project); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Update handles PATCH /api/projects/{pid}.
func (h *ProjectsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseProjectID(w, r, h.logger)
	if !ok {
		return
	}
	var req UpdateProjectRequest
	if !DecodeJSON(w, r, h.logger, &req) {
		return
	}
	actor := services.ActorFromContext(r.Context())

	project, err := h.projects.Update(r.Context(), actor, id, &services.UpdateProjectInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
	})
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, project); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Delete handles DELETE /api/projects/{pid}.
func (h *ProjectsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseProjectID(w, r, h.logger)
	if !ok {
		return
	}
	actor := services.ActorFromContext(r.Context())

	if err := h.projects.Delete(r.Context(), actor, id); err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AddContributors handles POST /api/projects/{pid}/add-contributors.
func (h *ProjectsHandler) AddContributors(w http.ResponseWriter, r *http.Request) {
	h.updateContributors(w, r, h.projects.AddContributors)
}

// RemoveContributors handles POST /api/projects/{pid}/remove-contributors.
func (h *ProjectsHandler) RemoveContributors(w http.ResponseWriter, r *http.Request) {
	h.updateContributors(w, r, h.projects.RemoveContributors)
}

// ListIssues handles GET /api/projects/{pid}/issues.
func (h *ProjectsHandler) ListIssues(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseProjectID(w, r, h.logger)
	if !ok {
		return
	}
	actor := services.ActorFromContext(r.Context())
	limit, offset := ParsePagination(r)

	issues, err := h.projects.ListIssues(r.Context(), actor, id, limit, offset)
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, issues); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

type contributorsOp func(ctx context.Context, actor *services.Actor, id uuid.UUID, userIDs []uuid.UUID) (*models.Project, error)

func (h *ProjectsHandler) updateContributors(w http.ResponseWriter, r *http.Request, op contributorsOp) {
	id, ok := ParseProjectID(w, r, h.logger)
	if !ok {
		return
	}
	var req ContributorsRequest
	if !DecodeJSON(w, r, h.logger, &req) {
		return
	}
	actor := services.ActorFromContext(r.Context())

	project, err := op(r.Context(), actor, id, req.ContributorIDs)
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, project); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
