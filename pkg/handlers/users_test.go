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

func TestUsersHandler_Register(t *testing.T) {
	userID := uuid.New()
	svc := &mockUserService{
		registerFunc: func(ctx context.Context, input *services.RegisterInput) (*models.User, error) {
			if input.Username != "billy" {
				t.Errorf("expected username 'billy', got '%s'", input.Username)
			}
			if input.CanBeContacted == nil || !*input.CanBeContacted {
				t.Error("expected can_be_contacted to be submitted as true")
			}
			return &models.User{ID: userID, Username: input.Username}, nil
		},
	}
	handler := NewUsersHandler(svc, zap.NewNop())

	body := `{"username":"billy","password":"pw","birth_date":"1990-06-15","can_be_contacted":true}`
	req := httptest.NewRequest(http.MethodPost, "/api/users", strings.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Register(rec, req)

	if rec.Code != http.StatusCreated {
		t.Errorf("expected status %d, got %d", http.StatusCreated, rec.Code)
	}

	var response models.User
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.ID != userID {
		t.Errorf("expected user ID %s, got %s", userID, response.ID)
	}
}

func TestUsersHandler_Register_NonBooleanConsentFlag(t *testing.T) {
	svc := &mockUserService{
		registerFunc: func(ctx context.Context, input *services.RegisterInput) (*models.User, error) {
			t.Fatal("service must not be called on a malformed body")
			return nil, nil
		},
	}
	handler := NewUsersHandler(svc, zap.NewNop())

	body := `{"username":"billy","password":"pw","birth_date":"1990-06-15","can_be_contacted":"yes"}`
	req := httptest.NewRequest(http.MethodPost, "/api/users", strings.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Register(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestUsersHandler_Register_ValidationError(t *testing.T) {
	svc := &mockUserService{
		registerFunc: func(ctx context.Context, input *services.RegisterInput) (*models.User, error) {
			return nil, apperrors.NewValidationError("username", "This field may not be blank.")
		},
	}
	handler := NewUsersHandler(svc, zap.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/api/users", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()

	handler.Register(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}

	var fields map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&fields); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if fields["username"] != "This field may not be blank." {
		t.Errorf("unexpected field message: %q", fields["username"])
	}
}

func TestUsersHandler_Get_Forbidden(t *testing.T) {
	svc := &mockUserService{
		getFunc: func(ctx context.Context, actor *services.Actor, id uuid.UUID) (*models.User, error) {
			return nil, apperrors.ErrForbidden
		},
	}
	handler := NewUsersHandler(svc, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/api/users/"+uuid.NewString(), nil)
	req.SetPathValue("uid", uuid.NewString())
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("expected status %d, got %d", http.StatusForbidden, rec.Code)
	}
}

func TestUsersHandler_Get_InvalidID(t *testing.T) {
	handler := NewUsersHandler(&mockUserService{}, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/api/users/not-a-uuid", nil)
	req.SetPathValue("uid", "not-a-uuid")
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestUsersHandler_Delete(t *testing.T) {
	userID := uuid.New()
	called := false
	svc := &mockUserService{
		removeFunc: func(ctx context.Context, actor *services.Actor, id uuid.UUID) error {
			called = true
			if id != userID {
				t.Errorf("expected ID %s, got %s", userID, id)
			}
			return nil
		},
	}
	handler := NewUsersHandler(svc, zap.NewNop())

	req := httptest.NewRequest(http.MethodDelete, "/api/users/"+userID.String(), nil)
	req.SetPathValue("uid", userID.String())
	rec := httptest.NewRecorder()

	handler.Delete(rec, req)

	if !called {
		t.Fatal("expected Remove to be called")
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected status %d, got %d", http.StatusNoContent, rec.Code)
	}
}

func TestUsersHandler_Update_NotFound(t *testing.T) {
	svc := &mockUserService{
		updateFunc: func(ctx context.Context, actor *services.Actor, id uuid.UUID, input *services.UpdateUserInput) (*models.User, error) {
			return nil, apperrors.ErrNotFound
		},
	}
	handler := NewUsersHandler(svc, zap.NewNop())

	id := uuid.NewString()
	req := httptest.NewRequest(http.MethodPatch, "/api/users/"+id, strings.NewReader(`{"password":"new"}`))
	req.SetPathValue("uid", id)
	rec := httptest.NewRecorder()

	handler.Update(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}
