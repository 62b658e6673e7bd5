package handlers

import (
	"time"

	"keepnotes/internal/storage"
)

// NoteRequest is the body of note create and update requests.
//
// swagger:model NoteRequest
type NoteRequest struct {
	Title                string   `json:"title"`
	Notes                string   `json:"notes"`
	Labels               []string `json:"labels"`
	Images               []string `json:"images"`
	BackgroundColorIndex *int     `json:"background_color_index"`
	BackgroundImageIndex *int     `json:"background_image_index"`
}

// NoteResponse is a note as returned by the API.
//
// swagger:model NoteResponse
type NoteResponse struct {
	ID                   string    `json:"id"`
	Title                string    `json:"title"`
	Notes                string    `json:"notes"`
	LabelIDs             []string  `json:"label_ids"`
	Labels               []string  `json:"labels"`
	Images               []string  `json:"images"`
	BackgroundColorIndex *int      `json:"background_color_index,omitempty"`
	BackgroundImageIndex *int      `json:"background_image_index,omitempty"`
	Active               bool      `json:"active"`
	Pinned               bool      `json:"pinned"`
	Archived             bool      `json:"archived"`
	Order                int64     `json:"order"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// LabelRequest is the body of label create and rename requests.
//
// swagger:model LabelRequest
type LabelRequest struct {
	Name string `json:"label_name"`
}

// LabelResponse is a label as returned by the API.
//
// swagger:model LabelResponse
type LabelResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"label_name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toNoteResponse(n *storage.Note) NoteResponse {
	return NoteResponse{
		ID:                   n.ID,
		Title:                n.Title,
		Notes:                n.Body,
		LabelIDs:             nonNil(n.LabelIDs),
		Labels:               nonNil(n.LabelNames),
		Images:               nonNil(n.Images),
		BackgroundColorIndex: n.BackgroundColorIndex,
		BackgroundImageIndex: n.BackgroundImageIndex,
		Active:               n.Active,
		Pinned:               n.Pinned,
		Archived:             n.Archived,
		Order:                n.Order,
		CreatedAt:            n.CreatedAt,
		UpdatedAt:            n.UpdatedAt,
	}
}

func toNoteResponses(notes []storage.Note) []NoteResponse {
	out := make([]NoteResponse, 0, len(notes))
	for i := range notes {
		out = append(out, toNoteResponse(&notes[i]))
	}
	return out
}

func toLabelResponse(l *storage.Label) LabelResponse {
	return LabelResponse{ID: l.ID, Name: l.Name, CreatedAt: l.CreatedAt, UpdatedAt: l.UpdatedAt}
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
