package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/trackdesk-inc/trackdesk-engine/pkg/apperrors"
	"github.com/trackdesk-inc/trackdesk-engine/pkg/auth"
	"github.com/trackdesk-inc/trackdesk-engine/pkg/services"
)

// CreateCommentRequest is the comment creation payload. On the nested issue
// route the issue comes from the path and IssueID here is ignored.
type CreateCommentRequest struct {
	IssueID     uuid.UUID `json:"issue_id"`
	Description string    `json:"description"`
}

// UpdateCommentRequest is the partial comment update payload.
type UpdateCommentRequest struct {
	Description *string `json:"description"`
}

// CommentsHandler handles comment HTTP requests. Listing lives under the
// issue routes; this handler covers creation and direct access by ID.
type CommentsHandler struct {
	comments services.CommentService
	logger   *zap.Logger
}

// NewCommentsHandler creates a new comments handler.
func NewCommentsHandler(comments services.CommentService, logger *zap.Logger) *CommentsHandler {
	return &CommentsHandler{comments: comments, logger: logger}
}

// RegisterRoutes registers the comments handler's routes on the given mux.
func (h *CommentsHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("GET /api/comments", authMiddleware.RequireAuth(h.List))
	mux.HandleFunc("POST /api/comments", authMiddleware.RequireAuth(h.Create))
	mux.HandleFunc("GET /api/comments/{cid}", authMiddleware.RequireAuth(h.Get))
	mux.HandleFunc("PATCH /api/comments/{cid}", authMiddleware.RequireAuth(h.Update))
	mux.HandleFunc("DELETE /api/comments/{cid}", authMiddleware.RequireAuth(h.Delete))
}

// List handles GET /api/comments. Comments have no flat collection view,
// not even for superusers.
func (h *CommentsHandler) List(w http.ResponseWriter, r *http.Request) {
	WriteServiceError(w, h.logger, apperrors.ErrForbidden)
}

// Create handles POST /api/comments.
func (h *CommentsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateCommentRequest
	if !DecodeJSON(w, r, h.logger, &req) {
		return
	}
	actor := services.ActorFromContext(r.Context())

	comment, err := h.comments.Create(r.Context(), actor, &services.CreateCommentInput{
		IssueID:     req.IssueID,
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

// Get handles GET /api/comments/{cid}.
func (h *CommentsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseCommentID(w, r, h.logger)
	if !ok {
		return
	}
	actor := services.ActorFromContext(r.Context())

	comment, err := h.comments.Get(r.Context(), actor, id)
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, comment); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Update handles PATCH /api/comments/{cid}.
func (h *CommentsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseCommentID(w, r, h.logger)
	if !ok {
		return
	}
	var req UpdateCommentRequest
	if !DecodeJSON(w, r, h.logger, &req) {
		return
	}
	actor := services.ActorFromContext(r.Context())

	comment, err := h.comments.Update(r.Context(), actor, id, &services.UpdateCommentInput{
		Description: req.Description,
	})
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, comment); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Delete handles DELETE /api/comments/{cid}.
func (h *CommentsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseCommentID(w, r, h.logger)
	if !ok {
		return
	}
	actor := services.ActorFromContext(r.Context())

	if err := h.comments.Delete(r.Context(), actor, id); err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
