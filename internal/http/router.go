package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"keepnotes/internal/handlers"
	"keepnotes/internal/service"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	NoteService    service.NoteService
	LabelService   service.LabelService
	DB             handlers.Pinger
	AllowedOrigins []string
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(LoggerMiddleware)
	r.Use(RequestLogger)

	origins := deps.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(CORS(origins))

	noteHandler := handlers.NewNoteHandler(deps.NoteService)
	labelHandler := handlers.NewLabelHandler(deps.LabelService)
	viewHandler := handlers.NewNoteViewHandler(deps.NoteService)
	healthHandler := handlers.NewHealthHandler(deps.DB)

	r.Get("/", handlers.Index)

	r.Route("/api/v1", func(r chi.Router) {
		r.Method(http.MethodGet, "/health", healthHandler)

		r.Route("/notes", func(r chi.Router) {
			r.Post("/", noteHandler.Create)
			r.Get("/", noteHandler.List)
			r.Get("/search", noteHandler.Search)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", noteHandler.Get)
				r.Put("/", noteHandler.Update)
				r.Delete("/", noteHandler.Delete)
				r.Method(http.MethodGet, "/view", viewHandler)
				r.Put("/pin", noteHandler.Pin)
				r.Put("/archive", noteHandler.Archive)
				r.Put("/restore", noteHandler.Restore)
				r.Delete("/labels/{name}", noteHandler.RemoveLabel)
			})
		})

		r.Route("/labels", func(r chi.Router) {
			r.Get("/", labelHandler.List)
			r.Post("/", labelHandler.Create)
			r.Put("/{id}", labelHandler.Rename)
			r.Delete("/{id}", labelHandler.Delete)
			r.Get("/{id}/notes", labelHandler.Notes)
		})
	})

	return r
}
