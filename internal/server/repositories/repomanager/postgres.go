package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/dreamsync/internal/dbx"
	"github.com/dmitrijs2005/dreamsync/internal/server/migrations"
	"github.com/dmitrijs2005/dreamsync/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/dreamsync/internal/server/repositories/dreams"
	"github.com/dmitrijs2005/dreamsync/internal/server/repositories/users"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// PostgresRepositoryManager vends PostgreSQL-backed repositories bound to
// either the pool or a transaction.
type PostgresRepositoryManager struct {
	db *sql.DB
}

// OpenPostgres opens a pgx connection pool for dsn.
func OpenPostgres(dsn string) (*PostgresRepositoryManager, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	return NewPostgresRepositoryManager(db), nil
}

func NewPostgresRepositoryManager(db *sql.DB) *PostgresRepositoryManager {
	return &PostgresRepositoryManager{db: db}
}

func bind(db dbx.DBTX) Repositories {
	return Repositories{
		Dreams:   dreams.NewPostgresRepository(db),
		Users:    users.NewPostgresRepository(db),
		Accounts: accounts.NewPostgresRepository(db),
	}
}

func (m *PostgresRepositoryManager) Repositories() Repositories {
	return bind(m.db)
}

func (m *PostgresRepositoryManager) RunInTx(ctx context.Context, fn func(ctx context.Context, r Repositories) error) error {
	return dbx.WithTx(ctx, m.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return fn(ctx, bind(tx))
	})
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded migrations.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return gooseUpContext(ctx, m.db, ".")
}

func (m *PostgresRepositoryManager) Close() error {
	return m.db.Close()
}
