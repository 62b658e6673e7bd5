package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/mock/gomock"

	"keepnotes/internal/service"
	"keepnotes/internal/service/mocks"
)

func TestNoteViewHandler(t *testing.T) {
	tests := []struct {
		name         string
		mockSetup    func(*mocks.MockNoteService)
		wantStatus   int
		wantContains []string
		wantMissing  []string
	}{
		{
			name: "renders markdown body",
			mockSetup: func(m *mocks.MockNoteService) {
				note := sampleNote()
				note.Body = "# Shopping\n\n- [x] milk\n- eggs\n\n<script>alert(1)</script>"
				note.Pinned = true
				m.EXPECT().Get(gomock.Any(), "note-1").Return(note, nil)
			},
			wantStatus:   http.StatusOK,
			wantContains: []string{"<h1 id=\"shopping\">Shopping</h1>", "<li>eggs</li>", "class=\"chip\">home<", "Pinned"},
			wantMissing:  []string{"<script>alert(1)</script>"},
		},
		{
			name: "untitled note",
			mockSetup: func(m *mocks.MockNoteService) {
				note := sampleNote()
				note.Title = ""
				m.EXPECT().Get(gomock.Any(), "note-1").Return(note, nil)
			},
			wantStatus:   http.StatusOK,
			wantContains: []string{"<title>Untitled note</title>"},
		},
		{
			name: "missing note",
			mockSetup: func(m *mocks.MockNoteService) {
				m.EXPECT().Get(gomock.Any(), "note-1").Return(nil, fmt.Errorf("get: %w", service.ErrNotFound))
			},
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockNoteService := mocks.NewMockNoteService(ctrl)
			tt.mockSetup(mockNoteService)

			r := chi.NewRouter()
			r.Method(http.MethodGet, "/notes/{id}/view", NewNoteViewHandler(mockNoteService))

			req := httptest.NewRequest(http.MethodGet, "/notes/note-1/view", nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %v, want %v", w.Code, tt.wantStatus)
			}
			body := w.Body.String()
			for _, s := range tt.wantContains {
				if !strings.Contains(body, s) {
					t.Errorf("body missing %q:\n%s", s, body)
				}
			}
			for _, s := range tt.wantMissing {
				if strings.Contains(body, s) {
					t.Errorf("body should not contain %q", s)
				}
			}
		})
	}
}
