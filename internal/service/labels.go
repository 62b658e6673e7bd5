package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_label_service.go -package=mocks keepnotes/internal/service LabelService

import (
	"context"
	"errors"
	"strings"

	"keepnotes/internal/storage"
)

// LabelService provides label operations. Rename and Delete repair every note
// referencing the label as part of the same call.
type LabelService interface {
	// Create adds a label. Returns ErrConflict if the name is taken.
	Create(ctx context.Context, name string) (*storage.Label, error)
	// List returns all labels ordered by name.
	List(ctx context.Context) ([]storage.Label, error)
	// Rename changes a label's name and the cached name on its notes.
	Rename(ctx context.Context, id, newName string) (*storage.Label, error)
	// Delete removes a label and strips it from its notes.
	Delete(ctx context.Context, id string) error
	// Notes returns every note referencing the label.
	Notes(ctx context.Context, id string) ([]storage.Note, error)
}

// labelService implements LabelService.
type labelService struct {
	settings
	labels storage.LabelStore
	notes  storage.NoteStore
}

// NewLabelService creates a new LabelService.
func NewLabelService(labels storage.LabelStore, notes storage.NoteStore, opts ...Option) LabelService {
	return &labelService{
		settings: newSettings(opts),
		labels:   labels,
		notes:    notes,
	}
}

// Create adds a label.
func (s *labelService) Create(ctx context.Context, name string) (*storage.Label, error) {
	logger := s.getLogger(ctx)

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &ValidationError{Field: "name", Message: "cannot be empty"}
	}

	now := s.timestamp()
	label := &storage.Label{Name: name, CreatedAt: now, UpdatedAt: now}
	if err := s.labels.Create(ctx, label); err != nil {
		logger.WarnContext(ctx, "failed to create label", "label", name, "error", err)
		return nil, storeError(err, "failed to create label")
	}
	logger.InfoContext(ctx, "label created", "label_id", label.ID, "label", name)
	return label, nil
}

// List returns all labels.
func (s *labelService) List(ctx context.Context) ([]storage.Label, error) {
	labels, err := s.labels.ListAll(ctx)
	if err != nil {
		s.getLogger(ctx).ErrorContext(ctx, "failed to list labels", "error", err)
		return nil, storeError(err, "failed to list labels")
	}
	return labels, nil
}

// Rename captures the label's current name, renames it under its version
// guard, then rewrites that previous name on every note carrying it.
func (s *labelService) Rename(ctx context.Context, id, newName string) (*storage.Label, error) {
	logger := s.getLogger(ctx)

	newName = strings.TrimSpace(newName)
	if newName == "" {
		return nil, &ValidationError{Field: "name", Message: "cannot be empty"}
	}

	for attempt := 1; ; attempt++ {
		label, err := s.labels.GetByID(ctx, id)
		if err != nil {
			s.logLabelError(ctx, "failed to load label", id, err)
			return nil, storeError(err, "failed to load label")
		}
		previous := label.Name

		at := s.timestamp()
		err = s.labels.Rename(ctx, id, label.Version, newName, at)
		if errors.Is(err, storage.ErrVersionConflict) && attempt < s.retries {
			logger.DebugContext(ctx, "label modified concurrently, retrying", "label_id", id, "attempt", attempt)
			continue
		}
		if err != nil {
			s.logLabelError(ctx, "failed to rename label", id, err)
			return nil, storeError(err, "failed to rename label")
		}

		label.Name = newName
		label.Version++
		label.UpdatedAt = at
		logger.InfoContext(ctx, "label renamed", "label_id", id, "from", previous, "to", newName)

		err = s.cascade(ctx, "rename", label, func() (int64, error) {
			return s.notes.ReplaceLabelName(ctx, previous, newName)
		})
		if err != nil {
			return nil, err
		}
		return label, nil
	}
}

// Delete captures the label, deletes it under its version guard, then strips
// its id and name from every note referencing it.
func (s *labelService) Delete(ctx context.Context, id string) error {
	logger := s.getLogger(ctx)

	for attempt := 1; ; attempt++ {
		label, err := s.labels.GetByID(ctx, id)
		if err != nil {
			s.logLabelError(ctx, "failed to load label", id, err)
			return storeError(err, "failed to load label")
		}

		err = s.labels.Delete(ctx, id, label.Version)
		if errors.Is(err, storage.ErrVersionConflict) && attempt < s.retries {
			logger.DebugContext(ctx, "label modified concurrently, retrying", "label_id", id, "attempt", attempt)
			continue
		}
		if err != nil {
			s.logLabelError(ctx, "failed to delete label", id, err)
			return storeError(err, "failed to delete label")
		}
		logger.InfoContext(ctx, "label deleted", "label_id", id, "label", label.Name)

		return s.cascade(ctx, "delete", label, func() (int64, error) {
			return s.notes.RemoveLabel(ctx, label.ID, label.Name)
		})
	}
}

// Notes returns every note referencing the label. An unknown label has no notes.
func (s *labelService) Notes(ctx context.Context, id string) ([]storage.Note, error) {
	notes, err := s.notes.ListByLabelID(ctx, id)
	if err != nil {
		s.getLogger(ctx).ErrorContext(ctx, "failed to list notes for label", "label_id", id, "error", err)
		return nil, storeError(err, "failed to list notes for label")
	}
	return notes, nil
}

func (s *labelService) logLabelError(ctx context.Context, msg, id string, err error) {
	logger := s.getLogger(ctx)
	if errors.Is(err, storage.ErrNotFound) || errors.Is(err, storage.ErrConflict) {
		logger.WarnContext(ctx, msg, "label_id", id, "error", err)
		return
	}
	logger.ErrorContext(ctx, msg, "label_id", id, "error", err)
}
