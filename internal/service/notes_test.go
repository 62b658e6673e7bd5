package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"keepnotes/internal/storage"
	"keepnotes/internal/storage/mocks"

	"go.uber.org/mock/gomock"
)

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func newMockedNoteService(t *testing.T, opts ...Option) (*noteService, *mocks.MockNoteStore, *mocks.MockLabelStore) {
	t.Helper()
	ctrl := gomock.NewController(t)
	notes := mocks.NewMockNoteStore(ctrl)
	labels := mocks.NewMockLabelStore(ctrl)
	opts = append([]Option{WithClock(fixedClock)}, opts...)
	svc := NewNoteService(notes, labels, opts...).(*noteService)
	return svc, notes, labels
}

func TestNoteService_Create(t *testing.T) {
	tests := []struct {
		name      string
		input     NoteInput
		mockSetup func(*mocks.MockNoteStore, *mocks.MockLabelStore)
		wantErr   error
		check     func(*testing.T, *storage.Note)
	}{
		{
			name:  "creates missing label",
			input: NoteInput{Title: "Groceries", Labels: []string{"home"}},
			mockSetup: func(n *mocks.MockNoteStore, l *mocks.MockLabelStore) {
				l.EXPECT().GetByName(gomock.Any(), "home").Return(nil, storage.ErrNotFound)
				l.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
					func(_ context.Context, label *storage.Label) error {
						label.ID = "label-1"
						return nil
					})
				n.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(
					func(_ context.Context, note *storage.Note) error {
						note.ID = "note-1"
						note.Order = 1
						return nil
					})
			},
			check: func(t *testing.T, note *storage.Note) {
				if len(note.LabelIDs) != 1 || note.LabelIDs[0] != "label-1" {
					t.Errorf("LabelIDs = %v, want [label-1]", note.LabelIDs)
				}
				if len(note.LabelNames) != 1 || note.LabelNames[0] != "home" {
					t.Errorf("LabelNames = %v, want [home]", note.LabelNames)
				}
				if !note.Active || note.Pinned || note.Archived {
					t.Errorf("flags = active:%v pinned:%v archived:%v", note.Active, note.Pinned, note.Archived)
				}
				if !note.CreatedAt.Equal(fixedNow) || !note.UpdatedAt.Equal(fixedNow) {
					t.Errorf("timestamps = %v/%v, want %v", note.CreatedAt, note.UpdatedAt, fixedNow)
				}
				if note.Images == nil {
					t.Error("Images should be an empty slice, not nil")
				}
			},
		},
		{
			name:  "reuses existing label and drops duplicates",
			input: NoteInput{Body: "milk", Labels: []string{" home ", "home", ""}},
			mockSetup: func(n *mocks.MockNoteStore, l *mocks.MockLabelStore) {
				l.EXPECT().GetByName(gomock.Any(), "home").Return(&storage.Label{ID: "label-1", Name: "home"}, nil)
				n.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil)
			},
			check: func(t *testing.T, note *storage.Note) {
				if len(note.LabelNames) != 1 {
					t.Errorf("LabelNames = %v, want one entry", note.LabelNames)
				}
			},
		},
		{
			name:  "label creation race resolves to winner",
			input: NoteInput{Title: "t", Labels: []string{"work"}},
			mockSetup: func(n *mocks.MockNoteStore, l *mocks.MockLabelStore) {
				gomock.InOrder(
					l.EXPECT().GetByName(gomock.Any(), "work").Return(nil, storage.ErrNotFound),
					l.EXPECT().Create(gomock.Any(), gomock.Any()).Return(storage.ErrConflict),
					l.EXPECT().GetByName(gomock.Any(), "work").Return(&storage.Label{ID: "winner", Name: "work"}, nil),
				)
				n.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil)
			},
			check: func(t *testing.T, note *storage.Note) {
				if note.LabelIDs[0] != "winner" {
					t.Errorf("LabelIDs = %v, want [winner]", note.LabelIDs)
				}
			},
		},
		{
			name:  "retries order conflict",
			input: NoteInput{Title: "t"},
			mockSetup: func(n *mocks.MockNoteStore, l *mocks.MockLabelStore) {
				gomock.InOrder(
					n.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(storage.ErrConflict),
					n.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil),
				)
			},
		},
		{
			name:      "empty title and body",
			input:     NoteInput{Title: "  ", Body: ""},
			mockSetup: func(n *mocks.MockNoteStore, l *mocks.MockLabelStore) {},
			wantErr:   ErrInvalidInput,
		},
		{
			name:      "relative image URL",
			input:     NoteInput{Title: "t", Images: []string{"/img/a.png"}},
			mockSetup: func(n *mocks.MockNoteStore, l *mocks.MockLabelStore) {},
			wantErr:   ErrInvalidInput,
		},
		{
			name:  "store failure",
			input: NoteInput{Title: "t"},
			mockSetup: func(n *mocks.MockNoteStore, l *mocks.MockLabelStore) {
				n.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(errors.New("disk I/O error"))
			},
			wantErr: ErrStoreUnavailable,
		},
		{
			name:  "label lookup failure",
			input: NoteInput{Title: "t", Labels: []string{"home"}},
			mockSetup: func(n *mocks.MockNoteStore, l *mocks.MockLabelStore) {
				l.EXPECT().GetByName(gomock.Any(), "home").Return(nil, errors.New("database is locked"))
			},
			wantErr: ErrStoreUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, notes, labels := newMockedNoteService(t)
			tt.mockSetup(notes, labels)

			got, err := svc.Create(context.Background(), tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Create() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Create() unexpected error = %v", err)
			}
			if tt.check != nil {
				tt.check(t, got)
			}
		})
	}
}

func TestNoteService_Create_GivesUpAfterRetries(t *testing.T) {
	svc, notes, _ := newMockedNoteService(t, WithWriteRetries(2))
	notes.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(storage.ErrConflict).Times(2)

	_, err := svc.Create(context.Background(), NoteInput{Title: "t"})
	if !errors.Is(err, ErrConflict) {
		t.Errorf("Create() error = %v, want ErrConflict", err)
	}
}

func TestNoteService_Update(t *testing.T) {
	current := func() *storage.Note {
		return &storage.Note{
			ID:         "note-1",
			Title:      "old",
			LabelIDs:   []string{"label-home"},
			LabelNames: []string{"home"},
			Active:     true,
			Pinned:     true,
			Order:      7,
			Version:    3,
		}
	}

	t.Run("swaps labels and keeps lifecycle", func(t *testing.T) {
		svc, notes, labels := newMockedNoteService(t)
		notes.EXPECT().GetByID(gomock.Any(), "note-1").Return(current(), nil)
		labels.EXPECT().GetByName(gomock.Any(), "home").Return(&storage.Label{ID: "label-home", Name: "home"}, nil)
		labels.EXPECT().GetByName(gomock.Any(), "work").Return(&storage.Label{ID: "label-work", Name: "work"}, nil)
		notes.EXPECT().Update(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, note *storage.Note) error {
				if note.Version != 3 {
					t.Errorf("Update() version = %d, want 3", note.Version)
				}
				note.Version++
				return nil
			})

		got, err := svc.Update(context.Background(), "note-1", NoteInput{Title: "new", Labels: []string{"work"}})
		if err != nil {
			t.Fatalf("Update() error = %v", err)
		}
		if got.Title != "new" || !got.Pinned || got.Order != 7 {
			t.Errorf("Update() = %+v", got)
		}
		if len(got.LabelIDs) != 1 || got.LabelIDs[0] != "label-work" {
			t.Errorf("LabelIDs = %v, want [label-work]", got.LabelIDs)
		}
		if len(got.LabelNames) != 1 || got.LabelNames[0] != "work" {
			t.Errorf("LabelNames = %v, want [work]", got.LabelNames)
		}
		if !got.UpdatedAt.Equal(fixedNow) {
			t.Errorf("UpdatedAt = %v, want %v", got.UpdatedAt, fixedNow)
		}
	})

	t.Run("retries after version conflict", func(t *testing.T) {
		svc, notes, _ := newMockedNoteService(t)
		notes.EXPECT().GetByID(gomock.Any(), "note-1").DoAndReturn(
			func(context.Context, string) (*storage.Note, error) { return current(), nil }).Times(2)
		gomock.InOrder(
			notes.EXPECT().Update(gomock.Any(), gomock.Any()).Return(storage.ErrVersionConflict),
			notes.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil),
		)

		if _, err := svc.Update(context.Background(), "note-1", NoteInput{Title: "x", Labels: []string{"home"}}); err != nil {
			t.Fatalf("Update() error = %v", err)
		}
	})

	t.Run("not found", func(t *testing.T) {
		svc, notes, _ := newMockedNoteService(t)
		notes.EXPECT().GetByID(gomock.Any(), "missing").Return(nil, storage.ErrNotFound)

		_, err := svc.Update(context.Background(), "missing", NoteInput{Title: "x"})
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("Update() error = %v, want ErrNotFound", err)
		}
	})
}

func TestNoteService_RemoveLabel(t *testing.T) {
	note := func() *storage.Note {
		return &storage.Note{
			ID:         "note-1",
			LabelIDs:   []string{"label-home", "label-work"},
			LabelNames: []string{"home", "work"},
			Version:    1,
		}
	}

	t.Run("drops id and name", func(t *testing.T) {
		svc, notes, labels := newMockedNoteService(t)
		notes.EXPECT().GetByID(gomock.Any(), "note-1").Return(note(), nil)
		labels.EXPECT().GetByName(gomock.Any(), "home").Return(&storage.Label{ID: "label-home", Name: "home"}, nil)
		notes.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)

		got, err := svc.RemoveLabel(context.Background(), "note-1", "home")
		if err != nil {
			t.Fatalf("RemoveLabel() error = %v", err)
		}
		if len(got.LabelIDs) != 1 || got.LabelIDs[0] != "label-work" {
			t.Errorf("LabelIDs = %v", got.LabelIDs)
		}
		if len(got.LabelNames) != 1 || got.LabelNames[0] != "work" {
			t.Errorf("LabelNames = %v", got.LabelNames)
		}
	})

	t.Run("name not on note writes nothing", func(t *testing.T) {
		svc, notes, _ := newMockedNoteService(t)
		notes.EXPECT().GetByID(gomock.Any(), "note-1").Return(note(), nil)

		got, err := svc.RemoveLabel(context.Background(), "note-1", "garden")
		if err != nil {
			t.Fatalf("RemoveLabel() error = %v", err)
		}
		if len(got.LabelNames) != 2 {
			t.Errorf("LabelNames = %v, want unchanged", got.LabelNames)
		}
	})

	t.Run("blank name", func(t *testing.T) {
		svc, _, _ := newMockedNoteService(t)
		_, err := svc.RemoveLabel(context.Background(), "note-1", " ")
		if !errors.Is(err, ErrInvalidInput) {
			t.Errorf("RemoveLabel() error = %v, want ErrInvalidInput", err)
		}
	})
}

func TestNoteService_Lifecycle(t *testing.T) {
	tests := []struct {
		name  string
		call  func(*noteService) (*storage.Note, error)
		start storage.Note
		want  storage.Note
	}{
		{
			name:  "pin",
			call:  func(s *noteService) (*storage.Note, error) { return s.Pin(context.Background(), "n", false) },
			start: storage.Note{Active: true},
			want:  storage.Note{Active: true, Pinned: true},
		},
		{
			name:  "pin already pinned still writes",
			call:  func(s *noteService) (*storage.Note, error) { return s.Pin(context.Background(), "n", false) },
			start: storage.Note{Active: true, Pinned: true},
			want:  storage.Note{Active: true, Pinned: true},
		},
		{
			name:  "unpin",
			call:  func(s *noteService) (*storage.Note, error) { return s.Pin(context.Background(), "n", true) },
			start: storage.Note{Active: true, Pinned: true},
			want:  storage.Note{Active: true},
		},
		{
			name:  "archive keeps pinned",
			call:  func(s *noteService) (*storage.Note, error) { return s.Archive(context.Background(), "n", false) },
			start: storage.Note{Active: true, Pinned: true},
			want:  storage.Note{Active: true, Pinned: true, Archived: true},
		},
		{
			name:  "unarchive",
			call:  func(s *noteService) (*storage.Note, error) { return s.Archive(context.Background(), "n", true) },
			start: storage.Note{Active: true, Archived: true},
			want:  storage.Note{Active: true},
		},
		{
			name:  "restore",
			call:  func(s *noteService) (*storage.Note, error) { return s.Restore(context.Background(), "n") },
			start: storage.Note{Active: false, Pinned: true},
			want:  storage.Note{Active: true, Pinned: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, notes, _ := newMockedNoteService(t)
			start := tt.start
			start.ID = "n"
			notes.EXPECT().GetByID(gomock.Any(), "n").Return(&start, nil)
			notes.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)

			got, err := tt.call(svc)
			if err != nil {
				t.Fatalf("unexpected error = %v", err)
			}
			if got.Active != tt.want.Active || got.Pinned != tt.want.Pinned || got.Archived != tt.want.Archived {
				t.Errorf("flags = active:%v pinned:%v archived:%v, want active:%v pinned:%v archived:%v",
					got.Active, got.Pinned, got.Archived, tt.want.Active, tt.want.Pinned, tt.want.Archived)
			}
			if !got.UpdatedAt.Equal(fixedNow) {
				t.Errorf("UpdatedAt = %v, want %v", got.UpdatedAt, fixedNow)
			}
		})
	}
}

func TestNoteService_Delete(t *testing.T) {
	t.Run("soft delete", func(t *testing.T) {
		svc, notes, _ := newMockedNoteService(t)
		notes.EXPECT().GetByID(gomock.Any(), "n").Return(&storage.Note{ID: "n", Active: true, Archived: true}, nil)
		notes.EXPECT().Update(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, note *storage.Note) error {
				if note.Active || !note.Archived {
					t.Errorf("Update() flags = active:%v archived:%v", note.Active, note.Archived)
				}
				return nil
			})

		if err := svc.Delete(context.Background(), "n", false); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
	})

	t.Run("permanent", func(t *testing.T) {
		svc, notes, _ := newMockedNoteService(t)
		notes.EXPECT().Delete(gomock.Any(), "n").Return(nil)

		if err := svc.Delete(context.Background(), "n", true); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
	})

	t.Run("permanent not found", func(t *testing.T) {
		svc, notes, _ := newMockedNoteService(t)
		notes.EXPECT().Delete(gomock.Any(), "n").Return(storage.ErrNotFound)

		if err := svc.Delete(context.Background(), "n", true); !errors.Is(err, ErrNotFound) {
			t.Errorf("Delete() error = %v, want ErrNotFound", err)
		}
	})
}

func TestNoteService_ListByStatus(t *testing.T) {
	yes, no := true, false
	tests := []struct {
		name       string
		filter     StatusFilter
		wantFilter *storage.NoteFilter
		wantErr    error
	}{
		{name: "default", filter: StatusFilter{}, wantFilter: &storage.NoteFilter{Active: &yes}},
		{name: "trash", filter: StatusFilter{Trash: true}, wantFilter: &storage.NoteFilter{Active: &no, NewestFirst: true}},
		{name: "pinned", filter: StatusFilter{Pinned: true}, wantFilter: &storage.NoteFilter{Pinned: &yes, NewestFirst: true}},
		{name: "archived", filter: StatusFilter{Archived: true}, wantFilter: &storage.NoteFilter{Archived: &yes, NewestFirst: true}},
		{name: "trash wins over archived", filter: StatusFilter{Trash: true, Archived: true}, wantFilter: &storage.NoteFilter{Active: &no, NewestFirst: true}},
		{name: "trash and pinned", filter: StatusFilter{Trash: true, Pinned: true}, wantErr: ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, notes, _ := newMockedNoteService(t)
			if tt.wantFilter != nil {
				notes.EXPECT().List(gomock.Any(), *tt.wantFilter).Return([]storage.Note{}, nil)
			}

			_, err := svc.ListByStatus(context.Background(), tt.filter)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("ListByStatus() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Errorf("ListByStatus() unexpected error = %v", err)
			}
		})
	}
}

func TestNoteService_Search(t *testing.T) {
	svc, notes, _ := newMockedNoteService(t)
	notes.EXPECT().Search(gomock.Any(), "milk eggs").Return([]storage.Note{{ID: "n"}}, nil)

	got, err := svc.Search(context.Background(), "milk eggs")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(got) != 1 {
		t.Errorf("Search() returned %d notes, want 1", len(got))
	}

	if _, err := svc.Search(context.Background(), "   "); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Search() blank error = %v, want ErrInvalidInput", err)
	}
}
