package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_note_service.go -package=mocks keepnotes/internal/service NoteService

import (
	"context"
	"errors"
	"net/url"
	"slices"
	"strings"

	"keepnotes/internal/storage"
)

// NoteInput carries the user-editable content of a note.
// Labels are label names; the matching label documents are created on demand.
type NoteInput struct {
	Title                string
	Body                 string
	Labels               []string
	Images               []string
	BackgroundColorIndex *int
	BackgroundImageIndex *int
}

// StatusFilter selects which notes ListByStatus returns.
// Trash and Pinned are mutually exclusive.
type StatusFilter struct {
	Trash    bool
	Pinned   bool
	Archived bool
}

// NoteService provides note writes, lifecycle transitions and note queries.
type NoteService interface {
	// Create validates and stores a new active note with the next display order.
	Create(ctx context.Context, input NoteInput) (*storage.Note, error)
	// Update replaces the content of a note and reconciles its labels.
	Update(ctx context.Context, id string, input NoteInput) (*storage.Note, error)
	// Get returns a single note.
	Get(ctx context.Context, id string) (*storage.Note, error)
	// RemoveLabel drops one label name (and its id) from a note.
	RemoveLabel(ctx context.Context, id, labelName string) (*storage.Note, error)
	// Delete moves a note to the trash, or removes it when permanent is set.
	Delete(ctx context.Context, id string, permanent bool) error
	// Pin sets pinned to !unpin.
	Pin(ctx context.Context, id string, unpin bool) (*storage.Note, error)
	// Archive sets archived to !unarchive.
	Archive(ctx context.Context, id string, unarchive bool) (*storage.Note, error)
	// Restore moves a trashed note back to the active notes.
	Restore(ctx context.Context, id string) (*storage.Note, error)
	// ListByStatus lists trashed, pinned, archived or (by default) active notes.
	ListByStatus(ctx context.Context, filter StatusFilter) ([]storage.Note, error)
	// Search matches text against title, body and label names of active notes.
	Search(ctx context.Context, text string) ([]storage.Note, error)
}

// noteService implements NoteService.
type noteService struct {
	settings
	notes  storage.NoteStore
	labels storage.LabelStore
}

// NewNoteService creates a new NoteService.
func NewNoteService(notes storage.NoteStore, labels storage.LabelStore, opts ...Option) NoteService {
	return &noteService{
		settings: newSettings(opts),
		notes:    notes,
		labels:   labels,
	}
}

// Create stores a new note. Unknown label names become new labels.
func (s *noteService) Create(ctx context.Context, input NoteInput) (*storage.Note, error) {
	logger := s.getLogger(ctx)

	names, err := validateInput(&input)
	if err != nil {
		logger.WarnContext(ctx, "invalid note", "error", err)
		return nil, err
	}

	note := &storage.Note{
		Title:                input.Title,
		Body:                 input.Body,
		LabelIDs:             []string{},
		LabelNames:           []string{},
		Images:               input.Images,
		BackgroundColorIndex: input.BackgroundColorIndex,
		BackgroundImageIndex: input.BackgroundImageIndex,
		Active:               true,
	}
	if err := s.reconcileLabels(ctx, note, names); err != nil {
		return nil, err
	}

	now := s.timestamp()
	note.CreatedAt = now
	note.UpdatedAt = now

	for attempt := 1; ; attempt++ {
		err := s.notes.Insert(ctx, note)
		if err == nil {
			break
		}
		if errors.Is(err, storage.ErrConflict) && attempt < s.retries {
			logger.DebugContext(ctx, "note order taken, retrying", "attempt", attempt)
			continue
		}
		logger.ErrorContext(ctx, "failed to create note", "error", err)
		return nil, storeError(err, "failed to create note")
	}

	logger.InfoContext(ctx, "note created", "note_id", note.ID, "order", note.Order, "labels", len(note.LabelIDs))
	return note, nil
}

// Update replaces title, body, images and presentation hints and reconciles
// the label set against input.Labels. Order and lifecycle flags are kept.
func (s *noteService) Update(ctx context.Context, id string, input NoteInput) (*storage.Note, error) {
	names, err := validateInput(&input)
	if err != nil {
		s.getLogger(ctx).WarnContext(ctx, "invalid note update", "note_id", id, "error", err)
		return nil, err
	}

	return s.mutateNote(ctx, id, "update", func(note *storage.Note) (bool, error) {
		if err := s.reconcileLabels(ctx, note, names); err != nil {
			return false, err
		}
		note.Title = input.Title
		note.Body = input.Body
		note.Images = input.Images
		note.BackgroundColorIndex = input.BackgroundColorIndex
		note.BackgroundImageIndex = input.BackgroundImageIndex
		return true, nil
	})
}

// Get returns a single note.
func (s *noteService) Get(ctx context.Context, id string) (*storage.Note, error) {
	note, err := s.notes.GetByID(ctx, id)
	if err != nil {
		s.logStoreError(ctx, "failed to get note", id, err)
		return nil, storeError(err, "failed to get note")
	}
	return note, nil
}

// RemoveLabel drops labelName from the note. A name the note does not carry
// leaves it untouched; a name with no label document is dropped on its own.
func (s *noteService) RemoveLabel(ctx context.Context, id, labelName string) (*storage.Note, error) {
	labelName = strings.TrimSpace(labelName)
	if labelName == "" {
		return nil, &ValidationError{Field: "label", Message: "cannot be empty"}
	}

	return s.mutateNote(ctx, id, "remove_label", func(note *storage.Note) (bool, error) {
		if !slices.Contains(note.LabelNames, labelName) {
			return false, nil
		}
		note.LabelNames = without(note.LabelNames, labelName)

		label, err := s.labels.GetByName(ctx, labelName)
		if errors.Is(err, storage.ErrNotFound) {
			return true, nil
		}
		if err != nil {
			return false, storeError(err, "failed to look up label")
		}
		note.LabelIDs = without(note.LabelIDs, label.ID)
		return true, nil
	})
}

// mutateNote runs a read-modify-write on one note guarded by its version,
// retrying when a concurrent writer (including a label cascade) got there first.
// apply reports whether it changed the note; unchanged notes are not written.
func (s *noteService) mutateNote(ctx context.Context, id, op string, apply func(note *storage.Note) (bool, error)) (*storage.Note, error) {
	logger := s.getLogger(ctx).With("note_id", id, "operation", op)

	for attempt := 1; ; attempt++ {
		note, err := s.notes.GetByID(ctx, id)
		if err != nil {
			s.logStoreError(ctx, "failed to load note", id, err)
			return nil, storeError(err, "failed to load note")
		}

		changed, err := apply(note)
		if err != nil {
			return nil, err
		}
		if !changed {
			return note, nil
		}

		note.UpdatedAt = s.timestamp()
		err = s.notes.Update(ctx, note)
		if err == nil {
			logger.InfoContext(ctx, "note updated")
			return note, nil
		}
		if errors.Is(err, storage.ErrVersionConflict) && attempt < s.retries {
			logger.DebugContext(ctx, "note modified concurrently, retrying", "attempt", attempt)
			continue
		}
		s.logStoreError(ctx, "failed to save note", id, err)
		return nil, storeError(err, "failed to save note")
	}
}

func (s *noteService) logStoreError(ctx context.Context, msg, id string, err error) {
	logger := s.getLogger(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		logger.WarnContext(ctx, msg, "note_id", id, "error", err)
		return
	}
	logger.ErrorContext(ctx, msg, "note_id", id, "error", err)
}

// validateInput checks the content rules and returns the cleaned label names.
func validateInput(input *NoteInput) ([]string, error) {
	if strings.TrimSpace(input.Title) == "" && strings.TrimSpace(input.Body) == "" {
		return nil, &ValidationError{Field: "title", Message: "either title or body must be present"}
	}
	for _, raw := range input.Images {
		u, err := url.Parse(raw)
		if err != nil || !u.IsAbs() || u.Host == "" {
			return nil, &ValidationError{Field: "images", Message: "invalid image URL " + raw}
		}
	}
	if input.Images == nil {
		input.Images = []string{}
	}
	return normalizeLabelNames(input.Labels), nil
}

// normalizeLabelNames trims names, drops blanks and duplicates and keeps the
// first-seen order.
func normalizeLabelNames(names []string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

func without(values []string, v string) []string {
	out := make([]string, 0, len(values))
	for _, x := range values {
		if x != v {
			out = append(out, x)
		}
	}
	return out
}
