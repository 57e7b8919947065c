package database

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5" // pgx migrate driver
	_ "github.com/golang-migrate/migrate/v4/source/file"     // file:// migration source
)

// RunMigrations applies all pending migrations from sourceURL (for example
// "file://migrations") against the database at dsn. A no-op run is not an
// error.
func RunMigrations(sourceURL, dsn string) error {
	m, err := migrate.New(sourceURL, "pgx5://"+trimScheme(dsn))
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}
	return nil
}

// trimScheme strips the postgres:// prefix so the pgx migrate driver scheme
// can be substituted.
func trimScheme(dsn string) string {
	const prefix = "postgres://"
	if len(dsn) > len(prefix) && dsn[:len(prefix)] == prefix {
		return dsn[len(prefix):]
	}
	return dsn
}
