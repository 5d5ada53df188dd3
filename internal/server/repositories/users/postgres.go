package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/dreamsync/internal/common"
	"github.com/dmitrijs2005/dreamsync/internal/dbx"
	"github.com/dmitrijs2005/dreamsync/internal/models"
	"github.com/lib/pq"
)

const columns = `id, username, email, description, pfp, streak, score,
	friends, friend_requests, blocked, apps_used, phone_number, country_code,
	created_at, banned, ban_reason, banned_until`

// listColumns maps list names to array columns. Only these are ever
// interpolated into SQL.
var listColumns = map[models.UserList]string{
	models.ListFriends:        "friends",
	models.ListFriendRequests: "friend_requests",
	models.ListBlocked:        "blocked",
	models.ListAppsUsed:       "apps_used",
}

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(s scanner) (*models.UserProfile, error) {
	u := &models.UserProfile{}
	var friends, requests, blocked, apps pq.StringArray
	var createdAt, bannedUntil sql.NullTime
	err := s.Scan(&u.ID, &u.Username, &u.Email, &u.Description, &u.ProfilePictureURL, &u.Streak, &u.Score,
		&friends, &requests, &blocked, &apps, &u.PhoneNumber, &u.CountryCode,
		&createdAt, &u.Banned, &u.BanReason, &bannedUntil)
	if err != nil {
		return nil, err
	}
	u.Friends, u.FriendRequests, u.Blocked, u.AppsUsed = friends, requests, blocked, apps
	u.CreatedAt = nullTime(createdAt)
	u.BannedUntil = nullTime(bannedUntil)
	u.Normalize()
	return u, nil
}

func nullTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

func (r *PostgresRepository) queryOne(ctx context.Context, query string, args ...any) (*models.UserProfile, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return u, nil
}

func (r *PostgresRepository) queryMany(ctx context.Context, query string, args ...any) ([]*models.UserProfile, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.UserProfile, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.UserProfile, error) {
	return r.queryOne(ctx, `SELECT `+columns+` FROM users WHERE id = $1`, id)
}

func (r *PostgresRepository) GetByUsername(ctx context.Context, username string) (*models.UserProfile, error) {
	return r.queryOne(ctx, `SELECT `+columns+` FROM users WHERE username = $1 ORDER BY id LIMIT 1`, username)
}

func (r *PostgresRepository) Save(ctx context.Context, u *models.UserProfile) (*models.UserProfile, error) {
	query := `
		INSERT INTO users (id, username, email, description, pfp, streak, score, phone_number, country_code, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id)
		DO UPDATE SET
			username = EXCLUDED.username,
			email = EXCLUDED.email,
			description = EXCLUDED.description,
			pfp = EXCLUDED.pfp,
			streak = EXCLUDED.streak,
			score = EXCLUDED.score,
			phone_number = EXCLUDED.phone_number,
			country_code = EXCLUDED.country_code,
			created_at = COALESCE(users.created_at, EXCLUDED.created_at)
		RETURNING ` + columns

	return r.queryOne(ctx, query,
		u.ID, u.Username, u.Email, u.Description, u.ProfilePictureURL, u.Streak, u.Score,
		u.PhoneNumber, u.CountryCode, u.CreatedAt)
}

func (r *PostgresRepository) Update(ctx context.Context, id string, up models.ProfileUpdate) (*models.UserProfile, error) {
	if up.Empty() {
		return r.Get(ctx, id)
	}

	var sets []string
	args := []any{id}
	add := func(expr string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf(expr, len(args)))
	}
	if up.Username != nil {
		add("username = $%d", models.NormalizeUsername(*up.Username))
	}
	if up.Description != nil {
		add("description = $%d", *up.Description)
	}
	if up.ProfilePictureURL != nil {
		add("pfp = $%d", *up.ProfilePictureURL)
	}
	if up.Streak != nil {
		add("streak = $%d", *up.Streak)
	}
	if up.Score != nil {
		add("score = $%d", *up.Score)
	}
	if up.PhoneNumber != nil {
		add("phone_number = $%d", *up.PhoneNumber)
	}
	if up.CountryCode != nil {
		add("country_code = $%d", *up.CountryCode)
	}
	if up.CreatedAt != nil {
		add("created_at = COALESCE(created_at, $%d)", *up.CreatedAt)
	}

	query := `UPDATE users SET ` + strings.Join(sets, ", ") + ` WHERE id = $1 RETURNING ` + columns
	return r.queryOne(ctx, query, args...)
}

func listColumn(list models.UserList) (string, error) {
	col, ok := listColumns[list]
	if !ok {
		return "", fmt.Errorf("unknown list %q: %w", list, common.ErrorInvalidArgument)
	}
	return col, nil
}

func (r *PostgresRepository) AddToList(ctx context.Context, id string, list models.UserList, values ...string) error {
	col, err := listColumn(list)
	if err != nil {
		return err
	}
	query := fmt.Sprintf(`
		UPDATE users SET %[1]s = %[1]s || ARRAY(SELECT x FROM unnest($2::text[]) AS x WHERE x <> ALL(%[1]s))
		WHERE id = $1`, col)

	res, err := r.db.ExecContext(ctx, query, id, pq.Array(models.Dedup(values)))
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return dbx.RequireRows(res)
}

func (r *PostgresRepository) RemoveFromList(ctx context.Context, id string, list models.UserList, values ...string) error {
	col, err := listColumn(list)
	if err != nil {
		return err
	}
	query := fmt.Sprintf(`
		UPDATE users SET %[1]s = ARRAY(SELECT x FROM unnest(%[1]s) AS x WHERE x <> ALL($2::text[]))
		WHERE id = $1`, col)

	res, err := r.db.ExecContext(ctx, query, id, pq.Array(values))
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return dbx.RequireRows(res)
}

func (r *PostgresRepository) SearchByUsernamePrefix(ctx context.Context, prefix string, limit int) ([]*models.UserProfile, error) {
	query := `
		SELECT ` + columns + ` FROM users
		WHERE username COLLATE "C" >= $1 AND username COLLATE "C" < $2
		ORDER BY username COLLATE "C"
		LIMIT $3`
	return r.queryMany(ctx, query, prefix, models.UsernamePrefixUpper(prefix), limit)
}

func (r *PostgresRepository) FindByPhoneNumbers(ctx context.Context, phones []string) ([]*models.UserProfile, error) {
	if len(phones) > common.ContactsBatchSize {
		return nil, fmt.Errorf("%d phone numbers in one query: %w", len(phones), common.ErrorInvalidArgument)
	}
	if len(phones) == 0 {
		return []*models.UserProfile{}, nil
	}
	return r.queryMany(ctx, `SELECT `+columns+` FROM users WHERE phone_number = ANY($1)`, pq.Array(phones))
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return dbx.RequireRows(res)
}
