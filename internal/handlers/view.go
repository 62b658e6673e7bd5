package handlers

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"

	"keepnotes/internal/contextutil"
	"keepnotes/internal/service"
)

// NoteViewHandler serves a note as a rendered HTML page. The body is treated
// as markdown; raw HTML inside it is not rendered.
type NoteViewHandler struct {
	notes    service.NoteService
	markdown goldmark.Markdown
	template *template.Template
}

// noteViewData holds template data for rendered note pages.
type noteViewData struct {
	Title    string
	Labels   []string
	Images   []string
	Pinned   bool
	Archived bool
	Trashed  bool
	Updated  string
	Content  template.HTML
}

var noteViewTemplate = template.Must(template.New("note").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>{{.Title}}</title>
  <style>
    body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', sans-serif; margin: 0 auto; padding: 2rem; max-width: 760px; line-height: 1.6; background: #f8fafc; color: #1e293b; }
    header { border-bottom: 1px solid #e2e8f0; margin-bottom: 1.5rem; padding-bottom: 1rem; }
    h1 { margin: 0 0 .5rem; }
    .chip { display: inline-block; background: #e0e7ff; color: #3730a3; border-radius: 999px; padding: 2px 10px; margin-right: 4px; font-size: .85rem; }
    .state { color: #64748b; font-size: .9rem; }
    article { background: #fff; border: 1px solid #e2e8f0; border-radius: 12px; padding: 1.5rem; }
    pre { background: #0f172a; color: #e2e8f0; padding: 1rem; border-radius: 8px; overflow-x: auto; }
    img { max-width: 100%; border-radius: 8px; margin-top: 1rem; }
  </style>
</head>
<body>
  <header>
    <h1>{{.Title}}</h1>
    <div>{{range .Labels}}<span class="chip">{{.}}</span>{{end}}</div>
    <p class="state">{{if .Pinned}}Pinned &middot; {{end}}{{if .Archived}}Archived &middot; {{end}}{{if .Trashed}}In trash &middot; {{end}}Edited {{.Updated}}</p>
  </header>
  <article>{{.Content}}</article>
  {{range .Images}}<img src="{{.}}" alt="">{{end}}
</body>
</html>`))

// NewNoteViewHandler creates a new NoteViewHandler.
func NewNoteViewHandler(notes service.NoteService) *NoteViewHandler {
	return &NoteViewHandler{
		notes: notes,
		markdown: goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
				extension.Typographer,
			),
			goldmark.WithParserOptions(
				parser.WithAutoHeadingID(),
			),
		),
		template: noteViewTemplate,
	}
}

// ServeHTTP renders the note with the id in the URL.
func (h *NoteViewHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)
	id := chi.URLParam(r, "id")

	note, err := h.notes.Get(ctx, id)
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to fetch note")
		return
	}

	content, err := h.render([]byte(note.Body))
	if err != nil {
		logger.ErrorContext(ctx, "failed to render markdown", "note_id", id, "error", err)
		http.Error(w, "failed to render note", http.StatusInternalServerError)
		return
	}

	title := strings.TrimSpace(note.Title)
	if title == "" {
		title = "Untitled note"
	}
	data := noteViewData{
		Title:    title,
		Labels:   note.LabelNames,
		Images:   note.Images,
		Pinned:   note.Pinned,
		Archived: note.Archived,
		Trashed:  !note.Active,
		Updated:  note.UpdatedAt.Format("2 Jan 2006 15:04"),
		Content:  template.HTML(content),
	}

	var page bytes.Buffer
	if err := h.template.Execute(&page, data); err != nil {
		logger.ErrorContext(ctx, "failed to execute note template", "note_id", id, "error", err)
		http.Error(w, "failed to render note", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(page.Bytes())
}

func (h *NoteViewHandler) render(body []byte) (string, error) {
	var buf bytes.Buffer
	if err := h.markdown.Convert(body, &buf); err != nil {
		return "", fmt.Errorf("convert markdown: %w", err)
	}
	return buf.String(), nil
}
