package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	authsvc "github.com/pulsedate/backend/internal/services/auth"
	interactionssvc "github.com/pulsedate/backend/internal/services/interactions"
)

func TestInteractionHandlerRequiresAuth(t *testing.T) {
	h := NewInteractionHandler(interactionssvc.NewService(interactionssvc.Dependencies{}))

	req := httptest.NewRequest(http.MethodPost, "/interactions", bytes.NewReader([]byte(`{"to_user_id":2,"is_like":true}`)))
	rec := httptest.NewRecorder()
	h.Create(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: got %d want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestInteractionHandlerRejectsSelfLike(t *testing.T) {
	h := NewInteractionHandler(interactionssvc.NewService(interactionssvc.Dependencies{}))

	rec := performInteractionRequest(t, h, 7, 7, true)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: got %d want %d", rec.Code, http.StatusBadRequest)
	}

	var payload struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Code != "SELF_INTERACTION" {
		t.Fatalf("unexpected error code: got %q want %q", payload.Code, "SELF_INTERACTION")
	}
}

func TestInteractionHandlerRejectsMissingTarget(t *testing.T) {
	h := NewInteractionHandler(interactionssvc.NewService(interactionssvc.Dependencies{}))

	rec := performInteractionRequest(t, h, 7, 0, true)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: got %d want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestInteractionHandlerRejectsUnknownFields(t *testing.T) {
	h := NewInteractionHandler(interactionssvc.NewService(interactionssvc.Dependencies{}))

	req := httptest.NewRequest(http.MethodPost, "/interactions", bytes.NewReader([]byte(`{"to_user_id":2,"bogus":1}`)))
	req = req.WithContext(authsvc.WithIdentity(req.Context(), authsvc.Identity{UserID: 7, SID: "sid"}))
	rec := httptest.NewRecorder()
	h.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: got %d want %d", rec.Code, http.StatusBadRequest)
	}
}

func performInteractionRequest(t *testing.T, h *InteractionHandler, userID, targetID int64, isLike bool) *httptest.ResponseRecorder {
	t.Helper()

	body, err := json.Marshal(map[string]any{
		"to_user_id": targetID,
		"is_like":    isLike,
	})
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/interactions", bytes.NewReader(body))
	req = req.WithContext(authsvc.WithIdentity(req.Context(), authsvc.Identity{UserID: userID, SID: "sid"}))
	rec := httptest.NewRecorder()
	h.Create(rec, req)
	return rec
}
