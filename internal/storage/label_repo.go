package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_label_store.go -package=mocks keepnotes/internal/storage LabelStore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// LabelStore defines the interface for label storage operations.
type LabelStore interface {
	// Create inserts a new label. A missing ID is generated.
	// Returns ErrConflict if a label with the same name exists.
	Create(ctx context.Context, label *Label) error
	// GetByID gets a label by ID. Returns ErrNotFound if not found.
	GetByID(ctx context.Context, id string) (*Label, error)
	// GetByName gets a label by its exact name. Returns ErrNotFound if not found.
	GetByName(ctx context.Context, name string) (*Label, error)
	// Rename changes the name of the label with the given ID and version.
	// Returns ErrNotFound, ErrConflict (name taken) or ErrVersionConflict.
	Rename(ctx context.Context, id string, version int64, newName string, at time.Time) error
	// Delete removes the label with the given ID and version.
	// Returns ErrNotFound or ErrVersionConflict.
	Delete(ctx context.Context, id string, version int64) error
	// ListAll returns all labels ordered by name.
	ListAll(ctx context.Context) ([]Label, error)
}

// LabelRepo provides methods for label operations.
// It implements the LabelStore interface.
type LabelRepo struct {
	db *sql.DB
}

// NewLabelRepo creates a new LabelRepo.
func NewLabelRepo(db *sql.DB) *LabelRepo {
	return &LabelRepo{db: db}
}

const labelColumns = "id, name, version, created_at, updated_at"

// Create inserts a new label.
func (r *LabelRepo) Create(ctx context.Context, label *Label) error {
	if label.ID == "" {
		label.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if label.CreatedAt.IsZero() {
		label.CreatedAt = now
	}
	if label.UpdatedAt.IsZero() {
		label.UpdatedAt = label.CreatedAt
	}
	label.Version = 1

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO labels (id, name, version, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
		label.ID, label.Name, label.Version, formatTime(label.CreatedAt), formatTime(label.UpdatedAt),
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("label %q: %w", label.Name, ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("failed to insert label: %w", err)
	}
	return nil
}

// GetByID gets a label by ID. Returns ErrNotFound if not found.
func (r *LabelRepo) GetByID(ctx context.Context, id string) (*Label, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+labelColumns+" FROM labels WHERE id = ?", id)
	return scanLabel(row)
}

// GetByName gets a label by its exact name. Returns ErrNotFound if not found.
func (r *LabelRepo) GetByName(ctx context.Context, name string) (*Label, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+labelColumns+" FROM labels WHERE name = ?", name)
	return scanLabel(row)
}

// Rename changes the label name if the stored version still matches.
// Renaming a label to its current name is accepted and bumps the version.
func (r *LabelRepo) Rename(ctx context.Context, id string, version int64, newName string, at time.Time) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE labels SET name = ?, updated_at = ?, version = version + 1 WHERE id = ? AND version = ?",
		newName, formatTime(at), id, version,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("label %q: %w", newName, ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("failed to rename label: %w", err)
	}
	return r.checkGuardedWrite(ctx, result, id)
}

// Delete removes the label if the stored version still matches.
func (r *LabelRepo) Delete(ctx context.Context, id string, version int64) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM labels WHERE id = ? AND version = ?", id, version)
	if err != nil {
		return fmt.Errorf("failed to delete label: %w", err)
	}
	return r.checkGuardedWrite(ctx, result, id)
}

// ListAll returns all labels ordered by name.
func (r *LabelRepo) ListAll(ctx context.Context) ([]Label, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+labelColumns+" FROM labels ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to query labels: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	labels := []Label{}
	for rows.Next() {
		label, err := scanLabel(rows)
		if err != nil {
			return nil, err
		}
		labels = append(labels, *label)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return labels, nil
}

// checkGuardedWrite tells a missing label apart from a stale version when a
// version-guarded statement affected no rows.
func (r *LabelRepo) checkGuardedWrite(ctx context.Context, result sql.Result, id string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected > 0 {
		return nil
	}
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return ErrVersionConflict
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanLabel(row rowScanner) (*Label, error) {
	var label Label
	var createdAt, updatedAt string
	err := row.Scan(&label.ID, &label.Name, &label.Version, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan label: %w", err)
	}
	if label.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if label.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &label, nil
}
