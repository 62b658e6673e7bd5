package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_note_store.go -package=mocks keepnotes/internal/storage NoteStore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NoteStore defines the interface for note storage operations.
type NoteStore interface {
	// Insert creates a new note, generating its ID if empty and assigning
	// the next display order. Returns ErrConflict if the order is already taken.
	Insert(ctx context.Context, note *Note) error
	// GetByID gets a note by ID. Returns ErrNotFound if not found.
	GetByID(ctx context.Context, id string) (*Note, error)
	// Update writes all mutable fields of the note if its version still matches.
	// Order and CreatedAt are never rewritten.
	// Returns ErrNotFound or ErrVersionConflict.
	Update(ctx context.Context, note *Note) error
	// Delete permanently removes a note. Returns ErrNotFound if not found.
	Delete(ctx context.Context, id string) error
	// List returns notes matching the filter.
	List(ctx context.Context, filter NoteFilter) ([]Note, error)
	// ListByLabelID returns all notes whose label IDs contain labelID.
	ListByLabelID(ctx context.Context, labelID string) ([]Note, error)
	// Search returns active notes whose title, body or label names match any
	// whitespace-separated term of text.
	Search(ctx context.Context, text string) ([]Note, error)
	// ReplaceLabelName swaps oldName for newName in the label names of every
	// note carrying oldName. Returns the number of notes updated.
	ReplaceLabelName(ctx context.Context, oldName, newName string) (int64, error)
	// RemoveLabel strips labelID and name from every note referencing labelID.
	// Returns the number of notes updated.
	RemoveLabel(ctx context.Context, labelID, name string) (int64, error)
}

// NoteRepo provides methods for note operations.
// It implements the NoteStore interface.
type NoteRepo struct {
	db *sql.DB
}

// NewNoteRepo creates a new NoteRepo.
func NewNoteRepo(db *sql.DB) *NoteRepo {
	return &NoteRepo{db: db}
}

const noteColumns = `id, title, body, label_ids, label_names, images,
	background_color_index, background_image_index, active, pinned, archived,
	order_num, version, created_at, updated_at`

// Insert creates a new note.
// The display order comes from the note_sequence counter, bumped past the
// current maximum inside the same transaction, so it is never reused.
func (r *NoteRepo) Insert(ctx context.Context, note *Note) error {
	if note.ID == "" {
		note.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if note.CreatedAt.IsZero() {
		note.CreatedAt = now
	}
	if note.UpdatedAt.IsZero() {
		note.UpdatedAt = note.CreatedAt
	}

	labelIDs, labelNames, images, err := encodeArrays(note)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var order int64
	err = tx.QueryRowContext(ctx,
		`UPDATE note_sequence
		 SET value = MAX(value, (SELECT COALESCE(MAX(order_num), 0) FROM notes)) + 1
		 WHERE name = 'note_order'
		 RETURNING value`,
	).Scan(&order)
	if err != nil {
		return fmt.Errorf("failed to allocate note order: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO notes (`+noteColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?, ?)`,
		note.ID, note.Title, note.Body, labelIDs, labelNames, images,
		nullableInt(note.BackgroundColorIndex), nullableInt(note.BackgroundImageIndex),
		note.Active, note.Pinned, note.Archived, order,
		formatTime(note.CreatedAt), formatTime(note.UpdatedAt),
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("note order %d: %w", order, ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("failed to insert note: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit note insert: %w", err)
	}

	note.Order = order
	note.Version = 1
	return nil
}

// GetByID gets a note by ID. Returns ErrNotFound if not found.
func (r *NoteRepo) GetByID(ctx context.Context, id string) (*Note, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+noteColumns+" FROM notes WHERE id = ?", id)
	return scanNote(row)
}

// Update writes all mutable fields of the note guarded by its version.
// On success note.Version is advanced to the stored value.
func (r *NoteRepo) Update(ctx context.Context, note *Note) error {
	labelIDs, labelNames, images, err := encodeArrays(note)
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE notes SET
			title = ?, body = ?, label_ids = ?, label_names = ?, images = ?,
			background_color_index = ?, background_image_index = ?,
			active = ?, pinned = ?, archived = ?, updated_at = ?, version = version + 1
		 WHERE id = ? AND version = ?`,
		note.Title, note.Body, labelIDs, labelNames, images,
		nullableInt(note.BackgroundColorIndex), nullableInt(note.BackgroundImageIndex),
		note.Active, note.Pinned, note.Archived, formatTime(note.UpdatedAt),
		note.ID, note.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to update note: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		if _, err := r.GetByID(ctx, note.ID); err != nil {
			return err
		}
		return ErrVersionConflict
	}

	note.Version++
	return nil
}

// Delete permanently removes a note. Returns ErrNotFound if not found.
func (r *NoteRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM notes WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns notes matching the filter, in display order unless
// filter.NewestFirst is set.
func (r *NoteRepo) List(ctx context.Context, filter NoteFilter) ([]Note, error) {
	var conds []string
	var args []any
	if filter.Active != nil {
		conds = append(conds, "active = ?")
		args = append(args, *filter.Active)
	}
	if filter.Pinned != nil {
		conds = append(conds, "pinned = ?")
		args = append(args, *filter.Pinned)
	}
	if filter.Archived != nil {
		conds = append(conds, "archived = ?")
		args = append(args, *filter.Archived)
	}

	query := "SELECT " + noteColumns + " FROM notes"
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	if filter.NewestFirst {
		query += " ORDER BY updated_at DESC, order_num DESC"
	} else {
		query += " ORDER BY order_num"
	}

	return r.queryNotes(ctx, query, args...)
}

// ListByLabelID returns all notes whose label IDs contain labelID, in display order.
func (r *NoteRepo) ListByLabelID(ctx context.Context, labelID string) ([]Note, error) {
	return r.queryNotes(ctx,
		`SELECT `+noteColumns+` FROM notes
		 WHERE EXISTS (SELECT 1 FROM json_each(notes.label_ids) WHERE json_each.value = ?)
		 ORDER BY order_num`,
		labelID,
	)
}

// Search returns active notes matching any term of text. Matching is a
// Unicode case-insensitive substring test over title, body and each label name.
func (r *NoteRepo) Search(ctx context.Context, text string) ([]Note, error) {
	terms := strings.Fields(text)
	if len(terms) == 0 {
		return []Note{}, nil
	}

	clauses := make([]string, 0, len(terms))
	args := make([]any, 0, len(terms)*3)
	for _, term := range terms {
		folded := casefold(term)
		clauses = append(clauses, `(instr(casefold(title), ?) > 0
			OR instr(casefold(body), ?) > 0
			OR EXISTS (SELECT 1 FROM json_each(notes.label_names) WHERE instr(casefold(json_each.value), ?) > 0))`)
		args = append(args, folded, folded, folded)
	}

	query := "SELECT " + noteColumns + " FROM notes WHERE active = 1 AND (" +
		strings.Join(clauses, " OR ") + ") ORDER BY order_num"
	return r.queryNotes(ctx, query, args...)
}

// ReplaceLabelName rewrites label_names in bulk. Other labels keep their
// position, a name already present is not duplicated and no other column
// except the version is touched.
func (r *NoteRepo) ReplaceLabelName(ctx context.Context, oldName, newName string) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE notes SET
			label_names = (
				SELECT json_group_array(DISTINCT CASE WHEN je.value = ? THEN ? ELSE je.value END)
				FROM json_each(notes.label_names) AS je
			),
			version = version + 1
		 WHERE EXISTS (SELECT 1 FROM json_each(notes.label_names) WHERE json_each.value = ?)`,
		oldName, newName, oldName,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to replace label name: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return affected, nil
}

// RemoveLabel strips a label from every note referencing its ID.
func (r *NoteRepo) RemoveLabel(ctx context.Context, labelID, name string) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE notes SET
			label_ids = (
				SELECT json_group_array(je.value) FROM json_each(notes.label_ids) AS je WHERE je.value <> ?
			),
			label_names = (
				SELECT json_group_array(je.value) FROM json_each(notes.label_names) AS je WHERE je.value <> ?
			),
			version = version + 1
		 WHERE EXISTS (SELECT 1 FROM json_each(notes.label_ids) WHERE json_each.value = ?)`,
		labelID, name, labelID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to remove label from notes: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return affected, nil
}

func (r *NoteRepo) queryNotes(ctx context.Context, query string, args ...any) ([]Note, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query notes: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	notes := []Note{}
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		notes = append(notes, *note)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return notes, nil
}

func scanNote(row rowScanner) (*Note, error) {
	var note Note
	var labelIDs, labelNames, images, createdAt, updatedAt string
	var colorIdx, imageIdx sql.NullInt64

	err := row.Scan(
		&note.ID, &note.Title, &note.Body, &labelIDs, &labelNames, &images,
		&colorIdx, &imageIdx, &note.Active, &note.Pinned, &note.Archived,
		&note.Order, &note.Version, &createdAt, &updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan note: %w", err)
	}

	if note.LabelIDs, err = decodeStrings(labelIDs); err != nil {
		return nil, err
	}
	if note.LabelNames, err = decodeStrings(labelNames); err != nil {
		return nil, err
	}
	if note.Images, err = decodeStrings(images); err != nil {
		return nil, err
	}
	if colorIdx.Valid {
		v := int(colorIdx.Int64)
		note.BackgroundColorIndex = &v
	}
	if imageIdx.Valid {
		v := int(imageIdx.Int64)
		note.BackgroundImageIndex = &v
	}
	if note.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if note.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &note, nil
}

func encodeArrays(note *Note) (labelIDs, labelNames, images string, err error) {
	if labelIDs, err = encodeStrings(note.LabelIDs); err != nil {
		return "", "", "", err
	}
	if labelNames, err = encodeStrings(note.LabelNames); err != nil {
		return "", "", "", err
	}
	if images, err = encodeStrings(note.Images); err != nil {
		return "", "", "", err
	}
	return labelIDs, labelNames, images, nil
}

func encodeStrings(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	data, err := json.Marshal(values)
	if err != nil {
		return "", fmt.Errorf("failed to encode array: %w", err)
	}
	return string(data), nil
}

func decodeStrings(raw string) ([]string, error) {
	values := []string{}
	if raw == "" {
		return values, nil
	}
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil, fmt.Errorf("failed to decode array: %w", err)
	}
	return values, nil
}

func nullableInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

