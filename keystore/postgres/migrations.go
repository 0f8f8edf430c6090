package postgres

import (
	"database/sql"
	"embed"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/pkg/errors"
)

//go:embed migrations/*.sql
var static embed.FS

// ApplyMigrations brings the backup schema up to date. It reports whether anything was applied.
func ApplyMigrations(db *sql.DB) (bool, error) {
	// the migrations table lives in the portmanager schema
	if _, err := db.Exec("CREATE SCHEMA IF NOT EXISTS portmanager;"); err != nil {
		return false, errors.Wrap(err, "could not create portmanager schema")
	}

	pgDriver, err := postgres.WithInstance(db, &postgres.Config{
		SchemaName:      "portmanager",
		MigrationsTable: "schema_migrations",
	})
	if err != nil {
		return false, errors.Wrap(err, "could not init postgres driver")
	}

	sourceDriver, err := iofs.New(static, "migrations")
	if err != nil {
		return false, errors.Wrap(err, "could not init embedded iofs")
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "postgres", pgDriver)
	if err != nil {
		return false, errors.Wrap(err, "could not initialize migrator")
	}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			return false, nil
		}
		return false, errors.Wrap(err, "could not run up migrations")
	}
	return true, nil
}
