package service

import (
	"context"
	"strings"

	"keepnotes/internal/storage"
)

// ListByStatus returns trashed, pinned or archived notes newest first, or the
// active notes in display order when no flag is set. Archived active notes are
// included in the default listing.
func (s *noteService) ListByStatus(ctx context.Context, filter StatusFilter) ([]storage.Note, error) {
	logger := s.getLogger(ctx)

	if filter.Trash && filter.Pinned {
		logger.WarnContext(ctx, "conflicting status filter", "trash", filter.Trash, "pinned", filter.Pinned)
		return nil, &ValidationError{Field: "trash", Message: "trash and pinned cannot be requested together"}
	}

	yes, no := true, false
	var storeFilter storage.NoteFilter
	switch {
	case filter.Trash:
		storeFilter = storage.NoteFilter{Active: &no, NewestFirst: true}
	case filter.Pinned:
		storeFilter = storage.NoteFilter{Pinned: &yes, NewestFirst: true}
	case filter.Archived:
		storeFilter = storage.NoteFilter{Archived: &yes, NewestFirst: true}
	default:
		storeFilter = storage.NoteFilter{Active: &yes}
	}

	notes, err := s.notes.List(ctx, storeFilter)
	if err != nil {
		logger.ErrorContext(ctx, "failed to list notes", "error", err)
		return nil, storeError(err, "failed to list notes")
	}
	return notes, nil
}

// Search returns active notes matching any word of text.
func (s *noteService) Search(ctx context.Context, text string) ([]storage.Note, error) {
	logger := s.getLogger(ctx)

	if strings.TrimSpace(text) == "" {
		return nil, &ValidationError{Field: "search_text", Message: "cannot be empty"}
	}

	notes, err := s.notes.Search(ctx, text)
	if err != nil {
		logger.ErrorContext(ctx, "failed to search notes", "error", err)
		return nil, storeError(err, "failed to search notes")
	}
	logger.DebugContext(ctx, "notes searched", "results", len(notes))
	return notes, nil
}
