package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"kidpoints/internal/service"
)

func TestRespondWithServiceError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"not found", fmt.Errorf("%w: child 3", service.ErrNotFound), http.StatusNotFound},
		{"duplicate", fmt.Errorf("%w: already recorded", service.ErrDuplicate), http.StatusConflict},
		{"invalid state", fmt.Errorf("%w: not pending", service.ErrInvalidState), http.StatusConflict},
		{"denied", service.ErrDenied, http.StatusForbidden},
		{"not configured", service.ErrNotConfigured, http.StatusPreconditionFailed},
		{"invalid input", fmt.Errorf("%w: name is required", service.ErrInvalidInput), http.StatusBadRequest},
		{"asset failure", fmt.Errorf("%w: move failed", service.ErrAssetFailure), http.StatusBadGateway},
		{"store failure", errors.New("connection refused"), http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			respondWithServiceError(rec, tt.err)

			if rec.Code != tt.wantStatus {
				t.Errorf("Expected status %d, got %d", tt.wantStatus, rec.Code)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Expected JSON content type, got %q", ct)
			}
		})
	}
}

func TestRequireOwner(t *testing.T) {
	m := NewMiddleware(nil)

	handler := m.RequireOwner(func(w http.ResponseWriter, r *http.Request) {
		if got := ownerFromContext(r); got != 7 {
			t.Errorf("Expected owner 7 in context, got %d", got)
		}
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"valid owner", "7", http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"non-numeric", "abc", http.StatusUnauthorized},
		{"non-positive", "0", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/children", nil)
			if tt.header != "" {
				req.Header.Set("X-Owner-ID", tt.header)
			}
			rec := httptest.NewRecorder()
			handler(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("Expected status %d, got %d", tt.wantStatus, rec.Code)
			}
		})
	}
}

func TestRequireParentWithoutToken(t *testing.T) {
	m := NewMiddleware(nil)

	handler := m.RequireParent(func(w http.ResponseWriter, r *http.Request) {
		t.Error("Handler should not run without a parent token")
	})

	req := httptest.NewRequest(http.MethodPost, "/children", nil)
	req.Header.Set("X-Owner-ID", "7")
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("Expected status 403, got %d", rec.Code)
	}
}
