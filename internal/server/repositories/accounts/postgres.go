package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/dreamsync/internal/common"
	"github.com/dmitrijs2005/dreamsync/internal/dbx"
	"github.com/dmitrijs2005/dreamsync/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, a *models.Account) (*models.Account, error) {
	query := `
		INSERT INTO accounts (id, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`
	err := r.db.QueryRowContext(ctx, query, a.ID, a.Email, a.PasswordHash).Scan(&a.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return a, nil
}

func (r *PostgresRepository) getBy(ctx context.Context, column, value string) (*models.Account, error) {
	query := `SELECT id, email, password_hash, created_at FROM accounts WHERE ` + column + ` = $1`

	a := &models.Account{}
	err := r.db.QueryRowContext(ctx, query, value).Scan(&a.ID, &a.Email, &a.PasswordHash, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return a, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.Account, error) {
	return r.getBy(ctx, "id", id)
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	return r.getBy(ctx, "email", email)
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return dbx.RequireRows(res)
}

func (r *PostgresRepository) CreateRefreshToken(ctx context.Context, userID, token string, validity time.Duration) error {
	query := `
		INSERT INTO refresh_tokens (user_id, token, expires)
		VALUES ($1, $2, $3)
	`
	if _, err := r.db.ExecContext(ctx, query, userID, token, time.Now().Add(validity)); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	query := `SELECT user_id, token, expires FROM refresh_tokens WHERE token = $1`

	t := &models.RefreshToken{}
	if err := r.db.QueryRowContext(ctx, query, token).Scan(&t.UserID, &t.Token, &t.Expires); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}

func (r *PostgresRepository) DeleteRefreshToken(ctx context.Context, token string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE token = $1`, token); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
