package database

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/kentzie123/LJA-Admin-Chat-Server/migrations"

	_ "github.com/golang-migrate/migrate/v4/database/postgres"
)

// MigrationResult reports the schema version after a migration run.
type MigrationResult struct {
	Version uint
	Dirty   bool
	Changed bool
}

// ApplyPostgresMigrations runs the embedded PostgreSQL migrations against databaseURL.
func ApplyPostgresMigrations(databaseURL string) (MigrationResult, error) {
	source, err := iofs.New(migrations.FS, "postgres")
	if err != nil {
		return MigrationResult{}, fmt.Errorf("opening embedded migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", source, databaseURL)
	if err != nil {
		return MigrationResult{}, fmt.Errorf("initialising migrations: %w", err)
	}
	defer m.Close()

	return runMigrations(m)
}

// ApplySQLiteMigrations runs the embedded SQLite migrations on an open
// database. The caller keeps ownership of db.
func ApplySQLiteMigrations(db *sql.DB) error {
	source, err := iofs.New(migrations.FS, "sqlite")
	if err != nil {
		return fmt.Errorf("opening embedded migrations: %w", err)
	}
	driver, err := sqlite.WithInstance(db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("creating sqlite migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("initialising migrations: %w", err)
	}
	// m.Close would close db as well; only the source is released here.
	defer source.Close()

	_, err = runMigrations(m)
	return err
}

func runMigrations(m *migrate.Migrate) (MigrationResult, error) {
	var result MigrationResult

	err := m.Up()
	switch {
	case errors.Is(err, migrate.ErrNoChange):
	case err != nil:
		return result, fmt.Errorf("applying migrations: %w", err)
	default:
		result.Changed = true
	}

	v, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return result, fmt.Errorf("reading migration version: %w", err)
	}
	result.Version, result.Dirty = v, dirty

	slog.Info("migrations checked", "version", v, "dirty", dirty, "changed", result.Changed)
	return result, nil
}
