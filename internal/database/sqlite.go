package database

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	_ "modernc.org/sqlite"
)

// NewSQLiteDB opens the SQLite file at path (":memory:" for a private
// in-memory database) and applies the embedded migrations.
func NewSQLiteDB(ctx context.Context, path string) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("connecting to sqlite: %w", err)
	}

	// One connection: SQLite serialises writers, and ":memory:" is per connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.ExecContext(ctx, `PRAGMA busy_timeout = 5000`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("configuring sqlite: %w", err)
	}

	if err := ApplySQLiteMigrations(db.DB); err != nil {
		_ = db.Close()
		return nil, err
	}

	slog.Info("sqlite store ready", "path", path)
	return db, nil
}

// SQLitePath extracts the file path from a "sqlite://" or "sqlite:" URL.
func SQLitePath(databaseURL string) string {
	path := strings.TrimPrefix(databaseURL, "sqlite://")
	return strings.TrimPrefix(path, "sqlite:")
}

// IsSQLiteURL reports whether databaseURL selects the SQLite store.
func IsSQLiteURL(databaseURL string) bool {
	return strings.HasPrefix(databaseURL, "sqlite:")
}

// sqliteTimeLayout is fixed width so that lexical order of the stored text
// equals chronological order.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z"

func formatSQLiteTime(t time.Time) string {
	return t.UTC().Format(sqliteTimeLayout)
}

func parseSQLiteTime(s string) (time.Time, error) {
	t, err := time.Parse(sqliteTimeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing created_at %q: %w", s, err)
	}
	return t, nil
}
