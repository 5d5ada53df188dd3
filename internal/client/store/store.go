// Package store opens the client's on-device SQLite database, applies the
// embedded migrations and hands out its repositories.
package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/dreamsync/internal/client/migrations"
	"github.com/dmitrijs2005/dreamsync/internal/client/repositories/dreams"
	"github.com/dmitrijs2005/dreamsync/internal/client/repositories/preferences"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

type Repositories struct {
	Preferences preferences.Repository
	Dreams      dreams.Repository

	db *sql.DB
}

// Close releases the database.
func (r *Repositories) Close() error {
	return r.db.Close()
}

func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	// Set the database dialect
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// InitDatabase opens dsn and migrates it. A failure here leaves the client
// without local storage and is fatal for the caller.
func InitDatabase(ctx context.Context, dsn string) (*Repositories, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// SQLite allows one writer; a single connection also keeps ":memory:"
	// databases shared.
	db.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("local store migrations: %w", err)
	}

	repos := &Repositories{
		Preferences: preferences.NewSQLiteRepository(db),
		Dreams:      dreams.NewSQLiteRepository(db),
		db:          db,
	}
	return repos, nil
}
