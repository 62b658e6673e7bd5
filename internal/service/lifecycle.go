package service

import (
	"context"

	"keepnotes/internal/storage"
)

// Note lifecycle. active, pinned and archived are independent flags, each set
// to an explicit target value. Every transition writes the note and refreshes
// updated_at even when the flag already has the target value.

// Delete moves the note to the trash (active=false) or, when permanent is
// set, removes it. Pinned and archived are left as they are.
func (s *noteService) Delete(ctx context.Context, id string, permanent bool) error {
	if !permanent {
		_, err := s.mutateNote(ctx, id, "trash", func(note *storage.Note) (bool, error) {
			note.Active = false
			return true, nil
		})
		return err
	}

	if err := s.notes.Delete(ctx, id); err != nil {
		s.logStoreError(ctx, "failed to delete note", id, err)
		return storeError(err, "failed to delete note")
	}
	s.getLogger(ctx).InfoContext(ctx, "note deleted permanently", "note_id", id)
	return nil
}

// Pin sets pinned to !unpin.
func (s *noteService) Pin(ctx context.Context, id string, unpin bool) (*storage.Note, error) {
	return s.mutateNote(ctx, id, "pin", func(note *storage.Note) (bool, error) {
		note.Pinned = !unpin
		return true, nil
	})
}

// Archive sets archived to !unarchive.
func (s *noteService) Archive(ctx context.Context, id string, unarchive bool) (*storage.Note, error) {
	return s.mutateNote(ctx, id, "archive", func(note *storage.Note) (bool, error) {
		note.Archived = !unarchive
		return true, nil
	})
}

// Restore sets active back to true.
func (s *noteService) Restore(ctx context.Context, id string) (*storage.Note, error) {
	return s.mutateNote(ctx, id, "restore", func(note *storage.Note) (bool, error) {
		note.Active = true
		return true, nil
	})
}
