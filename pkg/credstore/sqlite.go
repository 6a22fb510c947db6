package credstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/movevote/movevote/pkg/credstore/migrations"

	"github.com/golang-migrate/migrate/v4"
	sqlitemigrate "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	_ "modernc.org/sqlite"
)

// SQLiteBackend persists credentials in a local SQLite file. This is the
// CLI-side analogue of a browser's origin-scoped storage: one file per
// user, surviving process restarts.
type SQLiteBackend struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the credentials database at path
// and applies any pending schema migrations.
func OpenSQLite(path string) (*SQLiteBackend, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("credstore: open %s: %w", path, err)
	}

	// The store is single-session by design, one connection avoids
	// SQLITE_BUSY on concurrent token writes.
	db.SetMaxOpenConns(1)

	b := &SQLiteBackend{db: db}
	if err := b.applyMigrations(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("credstore: migrate %s: %w", path, err)
	}

	return b, nil
}

// applyMigrations runs the embedded migration files against the database.
func (b *SQLiteBackend) applyMigrations() error {
	driver, err := sqlitemigrate.WithInstance(b.db, &sqlitemigrate.Config{})
	if err != nil {
		return err
	}

	src, err := iofs.New(migrations.Files, ".")
	if err != nil {
		return err
	}

	instance, err := migrate.NewWithInstance("iofs", src, "", driver)
	if err != nil {
		return err
	}

	if err := instance.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	return nil
}

func (b *SQLiteBackend) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := b.db.QueryRowContext(ctx,
		`SELECT value FROM credentials WHERE key = ?`, key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("credstore: get %s: %w", key, err)
	}
	return value, true, nil
}

func (b *SQLiteBackend) Set(ctx context.Context, key, value string) error {
	_, err := b.db.ExecContext(ctx,
		`INSERT INTO credentials (key, value, updated_at)
		 VALUES (?, ?, strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
		 ON CONFLICT (key) DO UPDATE SET
		   value = excluded.value,
		   updated_at = excluded.updated_at`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("credstore: set %s: %w", key, err)
	}
	return nil
}

func (b *SQLiteBackend) Delete(ctx context.Context, key string) error {
	_, err := b.db.ExecContext(ctx, `DELETE FROM credentials WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("credstore: delete %s: %w", key, err)
	}
	return nil
}

func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}
