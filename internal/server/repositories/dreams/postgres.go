package dreams

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/dreamsync/internal/common"
	"github.com/dmitrijs2005/dreamsync/internal/dbx"
	"github.com/dmitrijs2005/dreamsync/internal/models"
	"github.com/lib/pq"
)

const columns = `doc_id, owner_id, dream_id, title, dreamed_at, description, severity,
	archived, title_visible, public, liked_by, shared_with, deleted, created_at, updated_at`

// PostgresRepository implements dream storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDream(s scanner) (*models.DreamDocument, error) {
	d := &models.DreamDocument{}
	var likedBy, sharedWith pq.StringArray
	err := s.Scan(&d.DocID, &d.OwnerID, &d.DreamID, &d.Title, &d.Date, &d.Description, &d.Severity,
		&d.Archived, &d.TitleVisible, &d.Public, &likedBy, &sharedWith, &d.Deleted, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	d.LikedBy = []string(likedBy)
	d.SharedWith = []string(sharedWith)
	d.Normalize()
	return d, nil
}

// Query builds a filtered, ordered SELECT for q.
func (r *PostgresRepository) Query(ctx context.Context, q models.DreamQuery) ([]*models.DreamDocument, error) {
	var sb strings.Builder
	args := []any{q.OwnerID}
	sb.WriteString(`SELECT ` + columns + ` FROM dreams WHERE owner_id = $1 AND deleted = FALSE`)
	if q.PublicOnly {
		sb.WriteString(` AND public = TRUE`)
	}
	if !q.From.IsZero() {
		args = append(args, q.From)
		fmt.Fprintf(&sb, ` AND dreamed_at >= $%d`, len(args))
	}
	if !q.To.IsZero() {
		args = append(args, q.To)
		fmt.Fprintf(&sb, ` AND dreamed_at < $%d`, len(args))
	}
	if q.Order == models.OrderDateDesc {
		sb.WriteString(` ORDER BY dreamed_at DESC`)
	} else {
		sb.WriteString(` ORDER BY created_at DESC`)
	}
	if q.Limit > 0 {
		args = append(args, q.Limit)
		fmt.Fprintf(&sb, ` LIMIT $%d`, len(args))
	}

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.DreamDocument, 0)
	for rows.Next() {
		d, err := scanDream(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

// Upsert inserts or updates by doc_id. A conflicting row owned by someone
// else is left untouched and common.ErrorPermissionDenied is returned.
func (r *PostgresRepository) Upsert(ctx context.Context, d *models.DreamDocument) (*models.DreamDocument, error) {
	query := `
		INSERT INTO dreams (doc_id, owner_id, dream_id, title, dreamed_at, description, severity,
			archived, title_visible, public, liked_by, shared_with)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (doc_id)
		DO UPDATE SET
			title = EXCLUDED.title,
			dreamed_at = EXCLUDED.dreamed_at,
			description = EXCLUDED.description,
			severity = EXCLUDED.severity,
			archived = EXCLUDED.archived,
			title_visible = EXCLUDED.title_visible,
			public = EXCLUDED.public,
			deleted = FALSE,
			updated_at = now()
			WHERE dreams.owner_id = EXCLUDED.owner_id
		RETURNING ` + columns

	row := r.db.QueryRowContext(ctx, query,
		d.DocID, d.OwnerID, d.DreamID, d.Title, d.Date, d.Description, d.Severity,
		d.Archived, d.TitleVisible, d.Public, pq.Array(models.Dedup(d.LikedBy)), pq.Array(models.Dedup(d.SharedWith)))

	stored, err := scanDream(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorPermissionDenied
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return stored, nil
}

func (r *PostgresRepository) MarkDeleted(ctx context.Context, ownerID, dreamID string) (int, error) {
	query := `
		UPDATE dreams SET deleted = TRUE, updated_at = now()
		WHERE owner_id = $1 AND dream_id = $2
	`
	res, err := r.db.ExecContext(ctx, query, ownerID, dreamID)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return int(n), nil
}

func (r *PostgresRepository) Get(ctx context.Context, ownerID, docID string) (*models.DreamDocument, error) {
	query := `SELECT ` + columns + ` FROM dreams WHERE owner_id = $1 AND doc_id = $2`

	d, err := scanDream(r.db.QueryRowContext(ctx, query, ownerID, docID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return d, nil
}

func (r *PostgresRepository) SetLike(ctx context.Context, ownerID, docID, userID string, liked bool) (*models.DreamDocument, error) {
	set := `array_remove(liked_by, $3)`
	if liked {
		set = `CASE WHEN $3 = ANY(liked_by) THEN liked_by ELSE array_append(liked_by, $3) END`
	}
	query := `UPDATE dreams SET liked_by = ` + set + `
		WHERE owner_id = $1 AND doc_id = $2
		RETURNING ` + columns

	d, err := scanDream(r.db.QueryRowContext(ctx, query, ownerID, docID, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return d, nil
}

func (r *PostgresRepository) DeleteByOwner(ctx context.Context, ownerID string) (int, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM dreams WHERE owner_id = $1`, ownerID)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return int(n), nil
}
