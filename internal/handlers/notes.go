package handlers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"keepnotes/internal/contextutil"
	"keepnotes/internal/service"
	"keepnotes/internal/storage"
)

// NoteHandler handles HTTP requests for notes.
type NoteHandler struct {
	notes service.NoteService
}

// NewNoteHandler creates a new NoteHandler.
func NewNoteHandler(notes service.NoteService) *NoteHandler {
	return &NoteHandler{notes: notes}
}

func (r NoteRequest) toInput() service.NoteInput {
	return service.NoteInput{
		Title:                r.Title,
		Body:                 r.Notes,
		Labels:               r.Labels,
		Images:               r.Images,
		BackgroundColorIndex: r.BackgroundColorIndex,
		BackgroundImageIndex: r.BackgroundImageIndex,
	}
}

// Create handles POST /api/v1/notes.
func (h *NoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req NoteRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	note, err := h.notes.Create(ctx, req.toInput())
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to create note")
		return
	}
	writeSuccess(ctx, w, http.StatusCreated, "Note created successfully", toNoteResponse(note))
}

// List handles GET /api/v1/notes?trash=&pinned=&archived=.
func (h *NoteHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var filter service.StatusFilter
	var err error
	if filter.Trash, err = queryBool(r, "trash"); err != nil {
		writeError(ctx, w, http.StatusBadRequest, "Invalid query parameter", err.Error())
		return
	}
	if filter.Pinned, err = queryBool(r, "pinned"); err != nil {
		writeError(ctx, w, http.StatusBadRequest, "Invalid query parameter", err.Error())
		return
	}
	if filter.Archived, err = queryBool(r, "archived"); err != nil {
		writeError(ctx, w, http.StatusBadRequest, "Invalid query parameter", err.Error())
		return
	}

	notes, err := h.notes.ListByStatus(ctx, filter)
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to fetch notes")
		return
	}
	writeSuccess(ctx, w, http.StatusOK, "Notes fetched successfully", toNoteResponses(notes))
}

// Search handles GET /api/v1/notes/search?q=.
func (h *NoteHandler) Search(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	notes, err := h.notes.Search(ctx, r.URL.Query().Get("q"))
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to search notes")
		return
	}
	writeSuccess(ctx, w, http.StatusOK, "Notes fetched successfully", toNoteResponses(notes))
}

// Get handles GET /api/v1/notes/{id}.
func (h *NoteHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	note, err := h.notes.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to fetch note")
		return
	}
	writeSuccess(ctx, w, http.StatusOK, "Note fetched successfully", toNoteResponse(note))
}

// Update handles PUT /api/v1/notes/{id}.
func (h *NoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req NoteRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	note, err := h.notes.Update(ctx, chi.URLParam(r, "id"), req.toInput())
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to update note")
		return
	}
	writeSuccess(ctx, w, http.StatusOK, "Note updated successfully", toNoteResponse(note))
}

// Delete handles DELETE /api/v1/notes/{id}?permanent=.
func (h *NoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	permanent, err := queryBool(r, "permanent")
	if err != nil {
		writeError(ctx, w, http.StatusBadRequest, "Invalid query parameter", err.Error())
		return
	}

	if err := h.notes.Delete(ctx, id, permanent); err != nil {
		handleServiceError(ctx, w, err, "Failed to delete note")
		return
	}
	contextutil.LoggerFromContext(ctx).DebugContext(ctx, "note deleted", "note_id", id, "permanent", permanent)
	writeSuccess(ctx, w, http.StatusOK, "Note deleted successfully", nil)
}

// Pin handles PUT /api/v1/notes/{id}/pin?unpin=.
func (h *NoteHandler) Pin(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, "unpin", "Note pin status updated successfully", h.notes.Pin)
}

// Archive handles PUT /api/v1/notes/{id}/archive?unarchive=.
func (h *NoteHandler) Archive(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, "unarchive", "Note archive status updated successfully", h.notes.Archive)
}

// Restore handles PUT /api/v1/notes/{id}/restore.
func (h *NoteHandler) Restore(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	note, err := h.notes.Restore(ctx, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to restore note")
		return
	}
	writeSuccess(ctx, w, http.StatusOK, "Note restored successfully", toNoteResponse(note))
}

// RemoveLabel handles DELETE /api/v1/notes/{id}/labels/{name}.
func (h *NoteHandler) RemoveLabel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	name, err := pathParam(r, "name")
	if err != nil {
		writeError(ctx, w, http.StatusBadRequest, "Invalid label name", err.Error())
		return
	}

	note, err := h.notes.RemoveLabel(ctx, chi.URLParam(r, "id"), name)
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to remove label from note")
		return
	}
	writeSuccess(ctx, w, http.StatusOK, "Label removed from note successfully", toNoteResponse(note))
}

// pathParam returns the decoded value of a URL parameter. chi matches against
// r.URL.RawPath whenever the request carries one, leaving params escaped.
func pathParam(r *http.Request, key string) (string, error) {
	value := chi.URLParam(r, key)
	if r.URL.RawPath == "" {
		return value, nil
	}
	return url.PathUnescape(value)
}

type toggleFunc func(ctx context.Context, id string, undo bool) (*storage.Note, error)

func (h *NoteHandler) toggle(w http.ResponseWriter, r *http.Request, param, message string, fn toggleFunc) {
	ctx := r.Context()

	undo, err := queryBool(r, param)
	if err != nil {
		writeError(ctx, w, http.StatusBadRequest, "Invalid query parameter", err.Error())
		return
	}

	note, err := fn(ctx, chi.URLParam(r, "id"), undo)
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to update note")
		return
	}
	writeSuccess(ctx, w, http.StatusOK, message, toNoteResponse(note))
}

// queryBool parses an optional boolean query parameter. Missing means false.
func queryBool(r *http.Request, key string) (bool, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean, got %q", key, raw)
	}
	return v, nil
}
