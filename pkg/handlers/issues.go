package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/trackdesk-inc/trackdesk-engine/pkg/apperrors"
	"github.com/trackdesk-inc/trackdesk-engine/pkg/auth"
	"github.com/trackdesk-inc/trackdesk-engine/pkg/services"
)

// CreateIssueRequest is the issue creation payload. Any submitted author is
// ignored; the caller is always the author.
type CreateIssueRequest struct {
	ProjectID   uuid.UUID `json:"project_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	AssignedTo  uuid.UUID `json:"assigned_to"`
	Priority    string    `json:"priority"`
	Tag         string    `json:"tag"`
	Status      string    `json:"status"`
}

// UpdateIssueRequest is the partial issue update payload.
type UpdateIssueRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	AssignedTo  *uuid.UUID `json:"assigned_to"`
	Priority    *string    `json:"priority"`
	Tag         *string    `json:"tag"`
	Status      *string    `json:"status"`
}

// IssuesHandler handles issue HTTP requests.
type IssuesHandler struct {
	issues   services.IssueService
	comments services.CommentService
	logger   *zap.Logger
}

// NewIssuesHandler creates a new issues handler.
func NewIssuesHandler(issues services.IssueService, comments services.CommentService, logger *zap.Logger) *IssuesHandler {
	return &IssuesHandler{issues: issues, comments: comments, logger: logger}
}

// RegisterRoutes registers the issues handler's routes on the given mux.
// Issues are only reachable through their project or by ID; the flat list
// route exists solely to refuse access.
func (h *IssuesHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("GET /api/issues", authMiddleware.RequireAuth(h.List))
	mux.HandleFunc("POST /api/issues", authMiddleware.RequireAuth(h.Create))
	mux.HandleFunc("GET /api/issues/{iid}", authMiddleware.RequireAuth(h.Get))
	mux.HandleFunc("PATCH /api/issues/{iid}", authMiddleware.RequireAuth(h.Update))
	mux.HandleFunc("DELETE /api/issues/{iid}", authMiddleware.RequireAuth(h.Delete))
	mux.HandleFunc("GET /api/issues/{iid}/comments", authMiddleware.RequireAuth(h.ListComments))
	mux.HandleFunc("POST /api/issues/{iid}/comments", authMiddleware.RequireAuth(h.CreateComment))
}

// List handles GET /api/issues. Issues have no flat collection view, not
// even for superusers.
func (h *IssuesHandler) List(w http.ResponseWriter, r *http.Request) {
	WriteServiceError(w, h.logger, apperrors.ErrForbidden)
}

// Create handles POST /api/issues.
func (h *IssuesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateIssueRequest
	if !DecodeJSON(w, r, h.logger, &req) {
		return
	}
	actor := services.ActorFromContext(r.Context())

	issue, err := h.issues.Create(r.Context(), actor, &services.CreateIssueInput{
		ProjectID:   req.ProjectID,
		Title:       req.Title,
		Description: req.Description,
		AssignedTo:  req.AssignedTo,
		Priority:    req.Priority,
		Tag:         req.Tag,
		Status:      req.Status,
	})
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusCreated, issue); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Get handles GET /api/issues/{iid}.
func (h *IssuesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseIssueID(w, r, h.logger)
	if !ok {
		return
	}
	actor := services.ActorFromContext(r.Context())

	issue, err := h.issues.Get(r.Context(), actor, id)
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, issue); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Update handles PATCH /api/issues/{iid}.
func (h *IssuesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseIssueID(w, r, h.logger)
	if !ok {
		return
	}
	var req UpdateIssueRequest
	if !DecodeJSON(w, r, h.logger, &req) {
		return
	}
	actor := services.ActorFromContext(r.Context())

	issue, err := h.issues.Update(r.Context(), actor, id, &services.UpdateIssueInput{
		Title:       req.Title,
		Description: req.Description,
		AssignedTo:  req.AssignedTo,
		Priority:    req.Priority,
		Tag:         req.Tag,
		Status:      req.Status,
	})
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, issue); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Delete handles DELETE /api/issues/{iid}.
func (h *IssuesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseIssueID(w, r, h.logger)
	if !ok {
		return
	}
	actor := services.ActorFromContext(r.Context())

	if err := h.issues.Delete(r.Context(), actor, id); err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListComments handles GET /api/issues/{iid}/comments.
func (h *IssuesHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseIssueID(w, r, h.logger)
	if !ok {
		return
	}
	actor := services.ActorFromContext(r.Context())
	limit, offset := ParsePagination(r)

	comments, err := h.issues.ListComments(r.Context(), actor, id, limit, offset)
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, comments); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// CreateComment handles POST /api/issues/{iid}/comments. The issue comes
// from the path; any issue_id in the body is ignored.
func (h *IssuesHandler) CreateComment(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseIssueID(w, r, h.logger)
	if !ok {
		return
	}
	var req CreateCommentRequest
	if !DecodeJSON(w, r, h.logger, &req) {
		return
	}
	actor := services.ActorFromContext(r.Context())

	comment, err := h.comments.Create(r.Context(), actor, &services.CreateCommentInput{
		IssueID:     id,
		Description: req.Description,
	})
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusCreated, comment); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
