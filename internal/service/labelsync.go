package service

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"keepnotes/internal/storage"
)

// Label consistency.
//
// A note's LabelNames is a cache over the label collection: for every note at
// rest it holds exactly the names of the labels in LabelIDs. Note writes keep
// it in sync through reconcileLabels; label renames and deletes repair it in
// bulk through the cascades below.

// reconcileLabels moves the note's label set to target (already normalized).
// Names new to the note are resolved to labels, creating them when unknown.
// Names leaving the note drop their label's id; a name with no label document
// is simply dropped. Applying the same target twice is a no-op.
func (s *noteService) reconcileLabels(ctx context.Context, note *storage.Note, target []string) error {
	ids := slices.Clone(note.LabelIDs)
	if ids == nil {
		ids = []string{}
	}
	names := make([]string, 0, len(target))

	for _, name := range note.LabelNames {
		if slices.Contains(target, name) {
			if !slices.Contains(names, name) {
				names = append(names, name)
			}
			continue
		}
		label, err := s.labels.GetByName(ctx, name)
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			s.getLogger(ctx).ErrorContext(ctx, "failed to look up label", "label", name, "error", err)
			return storeError(err, "failed to look up label")
		}
		ids = without(ids, label.ID)
	}

	for _, name := range target {
		if slices.Contains(names, name) {
			continue
		}
		label, err := s.labelByName(ctx, name)
		if err != nil {
			return err
		}
		if !slices.Contains(ids, label.ID) {
			ids = append(ids, label.ID)
		}
		names = append(names, name)
	}

	note.LabelIDs = ids
	note.LabelNames = names
	return nil
}

// labelByName returns the label called name, creating it if needed.
// Losing a creation race to another writer resolves to the winner's label.
func (s *noteService) labelByName(ctx context.Context, name string) (*storage.Label, error) {
	logger := s.getLogger(ctx)

	label, err := s.labels.GetByName(ctx, name)
	if err == nil {
		return label, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		logger.ErrorContext(ctx, "failed to look up label", "label", name, "error", err)
		return nil, storeError(err, "failed to look up label")
	}

	now := s.timestamp()
	label = &storage.Label{Name: name, CreatedAt: now, UpdatedAt: now}
	err = s.labels.Create(ctx, label)
	if err == nil {
		logger.InfoContext(ctx, "label created", "label_id", label.ID, "label", name)
		return label, nil
	}
	if errors.Is(err, storage.ErrConflict) {
		label, err = s.labels.GetByName(ctx, name)
		if err == nil {
			return label, nil
		}
	}
	logger.ErrorContext(ctx, "failed to create label", "label", name, "error", err)
	return nil, storeError(err, "failed to create label")
}

// cascade applies a bulk note repair after a label write. Under
// CascadeBestEffort a failure is logged and swallowed.
func (s *labelService) cascade(ctx context.Context, op string, label *storage.Label, apply func() (int64, error)) error {
	logger := s.getLogger(ctx).With("operation", op, "label_id", label.ID, "label", label.Name)

	affected, err := apply()
	if err == nil {
		logger.InfoContext(ctx, "label cascade applied", "notes", affected)
		return nil
	}

	if s.policy == CascadeStrict {
		logger.ErrorContext(ctx, "label cascade failed", "error", err)
		return fmt.Errorf("%s of label %s: %w: %w: %w", op, label.ID, ErrCascadeFailed, ErrStoreUnavailable, err)
	}
	logger.ErrorContext(ctx, "label cascade failed, notes keep stale labels", "error", err)
	return nil
}
