// internal/db/themes.go
package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/tentlabs/tentshop/internal/models"
)

var (
	// ErrNotFound is returned when no record matches, including mutations
	// filtered on is_custom that target a predefined record.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when an insert would duplicate a theme id.
	ErrConflict = errors.New("theme id already exists")
)

// DBTX is the subset of database/sql shared by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Queries is the document-store access layer: theme records stored as JSON
// documents plus the active-selection singleton.
type Queries struct {
	db DBTX
}

func NewQueries(db DBTX) *Queries {
	return &Queries{db: db}
}

// ThemeRecord is one raw row of the theme collection. DocID is the insertion
// order surrogate used as the deterministic tie-break during cleanup.
type ThemeRecord struct {
	DocID     int64
	ThemeID   string
	IsCustom  bool
	CreatedAt time.Time
	UpdatedAt time.Time
	Theme     models.Theme
}

const themeColumns = "doc_id, theme_id, is_custom, document, created_at, updated_at"

func scanThemeRecord(row interface{ Scan(...any) error }) (ThemeRecord, error) {
	var rec ThemeRecord
	var document []byte
	if err := row.Scan(&rec.DocID, &rec.ThemeID, &rec.IsCustom, &document, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return ThemeRecord{}, err
	}
	if err := json.Unmarshal(document, &rec.Theme); err != nil {
		return ThemeRecord{}, fmt.Errorf("decode theme document %d: %w", rec.DocID, err)
	}
	// Columns are authoritative for persistence-managed fields.
	rec.Theme.ID = rec.ThemeID
	rec.Theme.IsCustom = rec.IsCustom
	rec.Theme.CreatedAt = rec.CreatedAt
	rec.Theme.UpdatedAt = rec.UpdatedAt
	return rec, nil
}

func (q *Queries) listRecords(ctx context.Context, query string, args ...any) ([]ThemeRecord, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []ThemeRecord
	for rows.Next() {
		rec, err := scanThemeRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func themesOf(records []ThemeRecord) []models.Theme {
	themes := make([]models.Theme, 0, len(records))
	for _, rec := range records {
		themes = append(themes, rec.Theme)
	}
	return themes
}

// ListThemes returns every theme record, newest first.
func (q *Queries) ListThemes(ctx context.Context) ([]models.Theme, error) {
	records, err := q.listRecords(ctx,
		"SELECT "+themeColumns+" FROM theme_documents ORDER BY created_at DESC, doc_id DESC")
	if err != nil {
		return nil, err
	}
	return themesOf(records), nil
}

// ListCustomThemes returns user-created themes, newest first.
func (q *Queries) ListCustomThemes(ctx context.Context) ([]models.Theme, error) {
	records, err := q.listRecords(ctx,
		"SELECT "+themeColumns+" FROM theme_documents WHERE is_custom = 1 ORDER BY created_at DESC, doc_id DESC")
	if err != nil {
		return nil, err
	}
	return themesOf(records), nil
}

// ListThemeRecords returns every raw record in creation order (created_at,
// then doc_id), the scan order the cleanup reconciler relies on.
func (q *Queries) ListThemeRecords(ctx context.Context) ([]ThemeRecord, error) {
	return q.listRecords(ctx,
		"SELECT "+themeColumns+" FROM theme_documents ORDER BY created_at ASC, doc_id ASC")
}

// GetTheme returns the theme with the given id, or ErrNotFound. If duplicate
// records exist the earliest-inserted one wins; cleanup repairs the rest.
func (q *Queries) GetTheme(ctx context.Context, themeID string) (models.Theme, error) {
	row := q.db.QueryRowContext(ctx,
		"SELECT "+themeColumns+" FROM theme_documents WHERE theme_id = ? ORDER BY doc_id ASC LIMIT 1", themeID)
	rec, err := scanThemeRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Theme{}, ErrNotFound
		}
		return models.Theme{}, err
	}
	return rec.Theme, nil
}

// ThemeIDExists reports whether any record carries the given theme id.
func (q *Queries) ThemeIDExists(ctx context.Context, themeID string) (bool, error) {
	var n int64
	err := q.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM theme_documents WHERE theme_id = ?", themeID).Scan(&n)
	return n > 0, err
}

// InsertThemeIfAbsent inserts the theme unless a record with its id already
// exists. The insert-or-skip is a single statement, so concurrent writers
// cannot both insert. Returns false without error when the id was taken.
func (q *Queries) InsertThemeIfAbsent(ctx context.Context, theme models.Theme) (bool, error) {
	now := time.Now().UTC()
	theme.CreatedAt = now
	theme.UpdatedAt = now

	document, err := json.Marshal(theme)
	if err != nil {
		return false, fmt.Errorf("encode theme document: %w", err)
	}

	res, err := q.db.ExecContext(ctx, `
		INSERT INTO theme_documents (theme_id, is_custom, document, created_at, updated_at)
		SELECT ?, ?, ?, ?, ?
		WHERE NOT EXISTS (SELECT 1 FROM theme_documents WHERE theme_id = ?)`,
		theme.ID, theme.IsCustom, document, now, now, theme.ID)
	if err != nil {
		return false, err
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return inserted > 0, nil
}

// InsertTheme inserts the theme, failing with ErrConflict when the id exists.
func (q *Queries) InsertTheme(ctx context.Context, theme models.Theme) (models.Theme, error) {
	inserted, err := q.InsertThemeIfAbsent(ctx, theme)
	if err != nil {
		return models.Theme{}, err
	}
	if !inserted {
		return models.Theme{}, ErrConflict
	}
	return q.GetTheme(ctx, theme.ID)
}

// UpdateCustomTheme replaces the document of a custom theme. Predefined
// records never match the filter, so targeting one yields ErrNotFound.
func (q *Queries) UpdateCustomTheme(ctx context.Context, themeID string, theme models.Theme) (models.Theme, error) {
	theme.ID = themeID
	theme.IsCustom = true
	theme.UpdatedAt = time.Now().UTC()

	document, err := json.Marshal(theme)
	if err != nil {
		return models.Theme{}, fmt.Errorf("encode theme document: %w", err)
	}

	res, err := q.db.ExecContext(ctx, `
		UPDATE theme_documents SET document = ?, updated_at = ?
		WHERE theme_id = ? AND is_custom = 1`,
		document, theme.UpdatedAt, themeID)
	if err != nil {
		return models.Theme{}, err
	}
	updated, err := res.RowsAffected()
	if err != nil {
		return models.Theme{}, err
	}
	if updated == 0 {
		return models.Theme{}, ErrNotFound
	}
	return q.GetTheme(ctx, themeID)
}

// DeleteCustomTheme removes a custom theme and returns the deleted record.
// Predefined records never match the filter.
func (q *Queries) DeleteCustomTheme(ctx context.Context, themeID string) (models.Theme, error) {
	row := q.db.QueryRowContext(ctx,
		"SELECT "+themeColumns+" FROM theme_documents WHERE theme_id = ? AND is_custom = 1 ORDER BY doc_id ASC LIMIT 1",
		themeID)
	rec, err := scanThemeRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Theme{}, ErrNotFound
		}
		return models.Theme{}, err
	}

	if _, err := q.db.ExecContext(ctx,
		"DELETE FROM theme_documents WHERE theme_id = ? AND is_custom = 1", themeID); err != nil {
		return models.Theme{}, err
	}
	return rec.Theme, nil
}

// DeletePredefinedThemes clears every non-custom record, returning how many
// were removed. Seeding uses this to drop stale catalog versions.
func (q *Queries) DeletePredefinedThemes(ctx context.Context) (int64, error) {
	res, err := q.db.ExecContext(ctx, "DELETE FROM theme_documents WHERE is_custom = 0")
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteThemeRecord removes one record by its surrogate id.
func (q *Queries) DeleteThemeRecord(ctx context.Context, docID int64) error {
	res, err := q.db.ExecContext(ctx, "DELETE FROM theme_documents WHERE doc_id = ?", docID)
	if err != nil {
		return err
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if deleted == 0 {
		return ErrNotFound
	}
	return nil
}

func (q *Queries) CountThemes(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM theme_documents").Scan(&n)
	return n, err
}

func (q *Queries) CountCustomThemes(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM theme_documents WHERE is_custom = 1").Scan(&n)
	return n, err
}

func (q *Queries) CountPredefinedThemes(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM theme_documents WHERE is_custom = 0").Scan(&n)
	return n, err
}

// GetActiveSelection returns the singleton selection row, or ErrNotFound.
func (q *Queries) GetActiveSelection(ctx context.Context) (models.ActiveSelection, error) {
	var sel models.ActiveSelection
	err := q.db.QueryRowContext(ctx,
		"SELECT theme_id, mode, updated_at FROM active_selection WHERE id = 1").
		Scan(&sel.ThemeID, &sel.Mode, &sel.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ActiveSelection{}, ErrNotFound
	}
	if err != nil {
		return models.ActiveSelection{}, err
	}
	return sel, nil
}

// EnsureActiveSelection creates the singleton with the given defaults when it
// is absent and returns the row either way.
func (q *Queries) EnsureActiveSelection(ctx context.Context, themeID, mode string) (models.ActiveSelection, error) {
	if _, err := q.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO active_selection (id, theme_id, mode, updated_at)
		VALUES (1, ?, ?, ?)`,
		themeID, mode, time.Now().UTC()); err != nil {
		return models.ActiveSelection{}, err
	}
	return q.GetActiveSelection(ctx)
}

// UpsertActiveThemeID sets the active theme pointer in one round trip,
// creating the singleton with the default light mode when absent. The mode is
// preserved on update.
func (q *Queries) UpsertActiveThemeID(ctx context.Context, themeID string) (models.ActiveSelection, error) {
	if _, err := q.db.ExecContext(ctx, `
		INSERT INTO active_selection (id, theme_id, mode, updated_at)
		VALUES (1, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			theme_id = excluded.theme_id,
			updated_at = excluded.updated_at`,
		themeID, models.ModeLight, time.Now().UTC()); err != nil {
		return models.ActiveSelection{}, err
	}
	return q.GetActiveSelection(ctx)
}

// UpsertMode sets the active color mode in one round trip, creating the
// singleton pointing at the default theme when absent. The theme pointer is
// preserved on update.
func (q *Queries) UpsertMode(ctx context.Context, mode string) (models.ActiveSelection, error) {
	if _, err := q.db.ExecContext(ctx, `
		INSERT INTO active_selection (id, theme_id, mode, updated_at)
		VALUES (1, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			mode = excluded.mode,
			updated_at = excluded.updated_at`,
		models.DefaultThemeID, mode, time.Now().UTC()); err != nil {
		return models.ActiveSelection{}, err
	}
	return q.GetActiveSelection(ctx)
}

// UpsertActiveSelection replaces both the theme pointer and the mode in one
// round trip.
func (q *Queries) UpsertActiveSelection(ctx context.Context, themeID, mode string) (models.ActiveSelection, error) {
	if _, err := q.db.ExecContext(ctx, `
		INSERT INTO active_selection (id, theme_id, mode, updated_at)
		VALUES (1, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			theme_id = excluded.theme_id,
			mode = excluded.mode,
			updated_at = excluded.updated_at`,
		themeID, mode, time.Now().UTC()); err != nil {
		return models.ActiveSelection{}, err
	}
	return q.GetActiveSelection(ctx)
}
