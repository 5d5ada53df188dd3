package dreams

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/dreamsync/internal/client/models"
	"github.com/dmitrijs2005/dreamsync/internal/common"
	"github.com/dmitrijs2005/dreamsync/internal/dbx"
)

// Times are stored as fixed-width RFC 3339 text in UTC so they sort
// lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const selectColumns = `id, title, date, description, severity, archived, title_visible, public, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*models.DreamRecord, error) {
	var (
		r                 models.DreamRecord
		date, updatedAt   string
		archived, visible bool
		public            bool
	)
	if err := row.Scan(&r.ID, &r.Title, &date, &r.Description, &r.Severity, &archived, &visible, &public, &updatedAt); err != nil {
		return nil, err
	}
	var err error
	if r.Date, err = time.Parse(timeLayout, date); err != nil {
		return nil, fmt.Errorf("dream %s: bad date %q: %w", r.ID, date, err)
	}
	if r.UpdatedAt, err = time.Parse(timeLayout, updatedAt); err != nil {
		return nil, fmt.Errorf("dream %s: bad updated_at %q: %w", r.ID, updatedAt, err)
	}
	r.Archived, r.TitleVisible, r.Public = archived, visible, public
	return &r, nil
}

func (r *SQLiteRepository) Get(ctx context.Context, id string) (*models.DreamRecord, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM dreams WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get dream[%s]: %w", id, err)
	}
	return rec, nil
}

func (r *SQLiteRepository) List(ctx context.Context) ([]*models.DreamRecord, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+selectColumns+` FROM dreams ORDER BY date DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list dreams: %w", err)
	}
	defer rows.Close()

	result := make([]*models.DreamRecord, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan dream row: %w", err)
		}
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate dream rows: %w", err)
	}
	return result, nil
}

func (r *SQLiteRepository) Save(ctx context.Context, rec *models.DreamRecord) error {
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO dreams (`+selectColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			date = excluded.date,
			description = excluded.description,
			severity = excluded.severity,
			archived = excluded.archived,
			title_visible = excluded.title_visible,
			public = excluded.public,
			updated_at = excluded.updated_at
	`, rec.ID, rec.Title, rec.Date.UTC().Format(timeLayout), rec.Description, rec.Severity,
		rec.Archived, rec.TitleVisible, rec.Public, rec.UpdatedAt.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("failed to save dream[%s]: %w", rec.ID, err)
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM dreams WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete dream[%s]: %w", id, err)
	}
	return dbx.RequireRows(res)
}
