package database

import (
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

const migrationsTable = "parcel_schema_migrations"

//go:embed migrations
var migrations embed.FS

func (s *SQLClient) migrate() error {
	var (
		driver migratedb.Driver
		err    error
	)
	switch s.driver {
	case DriverMySQL:
		driver, err = migratemysql.WithInstance(s.db, &migratemysql.Config{MigrationsTable: migrationsTable})
	case DriverSQLite:
		driver, err = migratesqlite.WithInstance(s.db, &migratesqlite.Config{MigrationsTable: migrationsTable})
	default:
		return fmt.Errorf("unsupported sql driver: %q", s.driver)
	}
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	source, err := iofs.New(migrations, "migrations/"+s.driver)
	if err != nil {
		return fmt.Errorf("could not open migrations: %w", err)
	}

	// m.Close is not called: it would close the shared db handle
	m, err := migrate.NewWithInstance("iofs", source, s.driver, driver)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if err = m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	version, dirty, _ := m.Version()
	s.log.With(
		slog.Uint64("version", uint64(version)),
		slog.Bool("dirty", dirty),
	).Debug("schema migrated")

	return nil
}
