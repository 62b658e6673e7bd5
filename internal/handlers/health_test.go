package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type fakePinger struct {
	err error
}

func (p fakePinger) PingContext(context.Context) error { return p.err }

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name       string
		db         Pinger
		method     string
		wantStatus int
		wantState  string
	}{
		{"healthy", fakePinger{}, http.MethodGet, http.StatusOK, "healthy"},
		{"database down", fakePinger{err: errors.New("disk I/O error")}, http.MethodGet, http.StatusServiceUnavailable, "unhealthy"},
		{"no database", nil, http.MethodGet, http.StatusServiceUnavailable, "unhealthy"},
		{"method not allowed", fakePinger{}, http.MethodPost, http.StatusMethodNotAllowed, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewHealthHandler(tt.db)
			req := httptest.NewRequest(tt.method, "/api/v1/health", nil)
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %v, want %v", w.Code, tt.wantStatus)
			}
			if tt.wantState == "" {
				return
			}
			var resp HealthResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if resp.Status != tt.wantState {
				t.Errorf("status = %q, want %q", resp.Status, tt.wantState)
			}
		})
	}
}

func TestIndex(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()

	Index(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Index() status = %v, want %v", w.Code, http.StatusOK)
	}
	if resp := decodeResponse(t, w); resp.Status != statusSuccess {
		t.Errorf("Index() envelope status = %q", resp.Status)
	}
}
