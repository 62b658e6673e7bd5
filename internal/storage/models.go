package storage

import "time"

// Label is a first-class label document. Name is unique across all labels.
type Label struct {
	ID        string // UUID, immutable
	Name      string
	Version   int64 // Incremented on every write
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Note is a note document.
//
// LabelNames is a read-optimization cache over the label collection: it holds
// the names of the labels referenced by LabelIDs and is repaired by the label
// rename/delete cascades.
type Note struct {
	ID                   string // UUID, immutable
	Title                string
	Body                 string
	LabelIDs             []string
	LabelNames           []string
	Images               []string // External URLs
	BackgroundColorIndex *int
	BackgroundImageIndex *int
	Active               bool // false means the note is in the trash
	Pinned               bool
	Archived             bool
	Order                int64 // Display order, assigned on insert, never reused
	Version              int64 // Incremented on every write, including cascades
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// NoteFilter selects notes by status flags. Nil fields are not filtered.
type NoteFilter struct {
	Active   *bool
	Pinned   *bool
	Archived *bool
	// NewestFirst sorts by updated_at descending instead of display order.
	NewestFirst bool
}
