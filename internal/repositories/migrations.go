package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// ErrMultiStatementsRequired is returned for a migration DSN without multiStatements=true
var ErrMultiStatementsRequired = errors.New("migration DSN must set multiStatements=true")

// MigrationsTable keeps the generator's schema version apart from the platform's own migrations
const MigrationsTable = "audio_schema_migrations"

// RunMigrations applies every pending migration found in dir over its own connection to dsn,
// which must allow multiple statements per query. An up-to-date schema is not an error.
func RunMigrations(dsn, dir string) error {
	if !strings.Contains(dsn, "multiStatements=true") {
		return ErrMultiStatementsRequired
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return fmt.Errorf("failed to open migration connection: %w", err)
	}
	defer db.Close()

	driver, err := mysql.WithInstance(db, &mysql.Config{
		MigrationsTable: MigrationsTable,
	})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("failed to resolve migrations path: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+filepath.ToSlash(abs), "mysql", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
