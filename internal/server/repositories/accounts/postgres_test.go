package accounts

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/dreamsync/internal/common"
	"github.com/dmitrijs2005/dreamsync/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return NewPostgresRepository(db), mock, db
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`(?s)INSERT\s+INTO\s+accounts\s+\(id, email, password_hash\).*RETURNING created_at`).
		WithArgs("u1", "a@b.c", []byte("hash")).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(created))

	a, err := repo.Create(context.Background(), &models.Account{ID: "u1", Email: "a@b.c", PasswordHash: []byte("hash")})
	require.NoError(t, err)
	assert.Equal(t, created, a.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_DuplicateEmail(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT\s+INTO\s+accounts`).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	_, err := repo.Create(context.Background(), &models.Account{ID: "u1", Email: "a@b.c"})
	assert.ErrorIs(t, err, common.ErrorAlreadyExists)
}

func TestGetByEmail_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT id, email, password_hash, created_at FROM accounts WHERE email = \$1`).
		WithArgs("a@b.c").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByEmail(context.Background(), "a@b.c")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestGet_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM accounts WHERE id = \$1`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "password_hash", "created_at"}).
			AddRow("u1", "a@b.c", []byte("h"), time.Now()))

	a, err := repo.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "a@b.c", a.Email)
}

func TestDelete_Missing(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`DELETE FROM accounts WHERE id = \$1`).
		WithArgs("u1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.Delete(context.Background(), "u1"), common.ErrorNotFound)
}

func TestCreateRefreshToken(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`(?s)^\s*INSERT\s+INTO\s+refresh_tokens\b.*VALUES\s*\(\$1,\s*\$2,\s*\$3\)\s*$`).
		WithArgs("u1", "tok123", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.CreateRefreshToken(context.Background(), "u1", "tok123", 30*time.Minute))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateRefreshToken_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`INSERT\s+INTO\s+refresh_tokens`).
		WillReturnError(errors.New("db down"))

	err := repo.CreateRefreshToken(context.Background(), "u1", "tok123", time.Minute)
	assert.ErrorContains(t, err, "db error: db down")
}

func TestFindRefreshToken(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	exp := time.Now().Add(time.Hour)
	mock.ExpectQuery(`SELECT user_id, token, expires FROM refresh_tokens WHERE token = \$1`).
		WithArgs("tok").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "token", "expires"}).AddRow("u1", "tok", exp))
	mock.ExpectQuery(`FROM refresh_tokens`).
		WithArgs("gone").
		WillReturnError(sql.ErrNoRows)

	tok, err := repo.FindRefreshToken(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, "u1", tok.UserID)

	_, err = repo.FindRefreshToken(context.Background(), "gone")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestDeleteRefreshToken(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`DELETE FROM refresh_tokens WHERE token = \$1`).
		WithArgs("tok").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.DeleteRefreshToken(context.Background(), "tok"))
}
