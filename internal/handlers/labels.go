package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"keepnotes/internal/service"
)

// LabelHandler handles HTTP requests for labels.
type LabelHandler struct {
	labels service.LabelService
}

// NewLabelHandler creates a new LabelHandler.
func NewLabelHandler(labels service.LabelService) *LabelHandler {
	return &LabelHandler{labels: labels}
}

// List handles GET /api/v1/labels.
func (h *LabelHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	labels, err := h.labels.List(ctx)
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to fetch labels")
		return
	}
	resp := make([]LabelResponse, 0, len(labels))
	for i := range labels {
		resp = append(resp, toLabelResponse(&labels[i]))
	}
	writeSuccess(ctx, w, http.StatusOK, "Labels fetched successfully", resp)
}

// Create handles POST /api/v1/labels.
func (h *LabelHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req LabelRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	label, err := h.labels.Create(ctx, req.Name)
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to create label")
		return
	}
	writeSuccess(ctx, w, http.StatusCreated, "Label created successfully", toLabelResponse(label))
}

// Rename handles PUT /api/v1/labels/{id}.
func (h *LabelHandler) Rename(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req LabelRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	label, err := h.labels.Rename(ctx, chi.URLParam(r, "id"), req.Name)
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to update label")
		return
	}
	writeSuccess(ctx, w, http.StatusOK, "Label updated successfully", toLabelResponse(label))
}

// Delete handles DELETE /api/v1/labels/{id}.
func (h *LabelHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.labels.Delete(ctx, chi.URLParam(r, "id")); err != nil {
		handleServiceError(ctx, w, err, "Failed to delete label")
		return
	}
	writeSuccess(ctx, w, http.StatusOK, "Label deleted successfully", nil)
}

// Notes handles GET /api/v1/labels/{id}/notes.
func (h *LabelHandler) Notes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	notes, err := h.labels.Notes(ctx, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to fetch notes for label")
		return
	}
	writeSuccess(ctx, w, http.StatusOK, "Notes fetched successfully", toNoteResponses(notes))
}
