package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/trackdesk-inc/trackdesk-engine/pkg/apperrors"
	"github.com/trackdesk-inc/trackdesk-engine/pkg/audit"
	"github.com/trackdesk-inc/trackdesk-engine/pkg/auth"
	"github.com/trackdesk-inc/trackdesk-engine/pkg/services"
)

// RegisterUserRequest is the registration payload. Consent flags are
// pointers so an absent flag and an explicit false are distinguishable; a
// non-boolean value fails JSON decoding and becomes a 400.
type RegisterUserRequest struct {
	Username        string `json:"username"`
	Password        string `json:"password"`
	BirthDate       string `json:"birth_date"`
	CanBeContacted  *bool  `json:"can_be_contacted"`
	CanDataBeShared *bool  `json:"can_data_be_shared"`
}

// UpdateUserRequest is the partial profile update payload.
type UpdateUserRequest struct {
	Password        *string `json:"password"`
	CanBeContacted  *bool   `json:"can_be_contacted"`
	CanDataBeShared *bool   `json:"can_data_be_shared"`
}

// UsersHandler handles user account HTTP requests.
type UsersHandler struct {
	users   services.UserService
	logger  *zap.Logger
	auditor *audit.SecurityAuditor
}

// NewUsersHandler creates a new users handler.
func NewUsersHandler(users services.UserService, logger *zap.Logger) *UsersHandler {
	return &UsersHandler{
		users:   users,
		logger:  logger,
		auditor: audit.NewSecurityAuditor(logger),
	}
}

// RegisterRoutes registers the users handler's routes on the given mux.
// Registration is open; everything else requires a credential.
func (h *UsersHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("POST /api/users", h.Register)
	mux.HandleFunc("GET /api/users", authMiddleware.RequireAuth(h.List))
	mux.HandleFunc("GET /api/users/{uid}", authMiddleware.RequireAuth(h.Get))
	mux.HandleFunc("PATCH /api/users/{uid}", authMiddleware.RequireAuth(h.Update))
	mux.HandleFunc("DELETE /api/users/{uid}", authMiddleware.RequireAuth(h.Delete))
}

// Register handles POST /api/users.
func (h *UsersHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterUserRequest
	if !DecodeJSON(w, r, h.logger, &req) {
		return
	}

	user, err := h.users.Register(r.Context(), &services.RegisterInput{
		Username:        req.Username,
		Password:        req.Password,
		BirthDate:       req.BirthDate,
		CanBeContacted:  req.CanBeContacted,
		CanDataBeShared: req.CanDataBeShared,
	})
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusCreated, user); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// List handles GET /api/users.
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	actor := services.ActorFromContext(r.Context())

	users, err := h.users.List(r.Context(), actor)
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, users); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Get handles GET /api/users/{uid}.
func (h *UsersHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseUserID(w, r, h.logger)
	if !ok {
		return
	}
	actor := services.ActorFromContext(r.Context())

	user, err := h.users.Get(r.Context(), actor, id)
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, user); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Update handles PATCH /api/users/{uid}.
func (h *UsersHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseUserID(w, r, h.logger)
	if !ok {
		return
	}
	var req UpdateUserRequest
	if !DecodeJSON(w, r, h.logger, &req) {
		return
	}
	actor := services.ActorFromContext(r.Context())

	user, err := h.users.Update(r.Context(), actor, id, &services.UpdateUserInput{
		Password:        req.Password,
		CanBeContacted:  req.CanBeContacted,
		CanDataBeShared: req.CanDataBeShared,
	})
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, user); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Delete handles DELETE /api/users/{uid}.
func (h *UsersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseUserID(w, r, h.logger)
	if !ok {
		return
	}
	actor := services.ActorFromContext(r.Context())

	if err := h.users.Remove(r.Context(), actor, id); err != nil {
		if errors.Is(err, apperrors.ErrForbidden) {
			h.auditor.LogPermissionDenied(actor.ID, id, "user", "destroy", r.RemoteAddr)
		}
		WriteServiceError(w, h.logger, err)
		return
	}

	h.auditor.LogAccountDeleted(actor.ID, id, r.RemoteAddr)
	w.WriteHeader(http.StatusNoContent)
}
