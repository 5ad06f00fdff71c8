package iocache

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/huangsam/codetrend/schema"
)

//go:embed migrations
var migrationsFS embed.FS

// migrationResult describes what a migration run did.
type migrationResult struct {
	From    uint
	To      uint
	Changed bool
}

// MigrateStore runs database migrations for a SQL index store and reports the outcome.
// - If targetVersion < 0, it migrates to the latest version.
// - If targetVersion == 0, it rolls back all migrations (to initial state).
// - If targetVersion > 0, it migrates to the specified version.
func MigrateStore(backend schema.DatabaseBackend, cachePath, connStr string, targetVersion int) error {
	if backend == schema.FileBackend {
		return fmt.Errorf("migrations are not supported for the file backend")
	}

	res, err := runMigrations(backend, resolveDSN(backend, cachePath, connStr), targetVersion)
	if err != nil {
		return err
	}

	switch {
	case !res.Changed && targetVersion < 0:
		fmt.Println("No migration needed. Database is already at the latest version.")
	case !res.Changed:
		fmt.Printf("No migration needed. Database is already at version %d\n", targetVersion)
	case targetVersion == 0:
		fmt.Printf("Successfully rolled back from version %d to version 0\n", res.From)
	default:
		fmt.Printf("Successfully migrated from version %d to version %d\n", res.From, res.To)
	}
	return nil
}

// runMigrations opens a dedicated connection, applies migrations and closes it.
func runMigrations(backend schema.DatabaseBackend, dsn string, targetVersion int) (migrationResult, error) {
	var res migrationResult

	db, err := openDB(backend, dsn)
	if err != nil {
		return res, err
	}

	m, err := newMigrate(backend, db)
	if err != nil {
		_ = db.Close()
		return res, err
	}
	// Closing the migrate instance also closes db
	defer func() { _, _ = m.Close() }()

	currentVersion, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return res, fmt.Errorf("failed to get current migration version: %w", err)
	}
	if dirty {
		return res, fmt.Errorf("database is in a dirty state at version %d. Please fix manually or force version", currentVersion)
	}
	res.From = currentVersion

	switch {
	case targetVersion < 0:
		err = m.Up()
		if err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return res, fmt.Errorf("failed to migrate to latest version: %w", err)
		}
	case targetVersion == 0:
		err = m.Down()
		if err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return res, fmt.Errorf("failed to roll back to version 0: %w", err)
		}
	default:
		err = m.Migrate(uint(targetVersion))
		if err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return res, fmt.Errorf("failed to migrate to version %d: %w", targetVersion, err)
		}
	}

	res.Changed = !errors.Is(err, migrate.ErrNoChange)
	res.To, _, _ = m.Version()
	return res, nil
}

// newMigrate builds a migrate instance over the dialect's embedded migrations.
func newMigrate(backend schema.DatabaseBackend, db *sql.DB) (*migrate.Migrate, error) {
	var driver database.Driver
	var dialect string
	var err error

	switch backend {
	case schema.SQLiteBackend:
		dialect = "sqlite"
		driver, err = sqlite.WithInstance(db, &sqlite.Config{MigrationsTable: migrationsTable})
	case schema.MySQLBackend:
		dialect = "mysql"
		driver, err = mysql.WithInstance(db, &mysql.Config{MigrationsTable: migrationsTable})
	case schema.PostgreSQLBackend:
		dialect = "postgres"
		driver, err = postgres.WithInstance(db, &postgres.Config{MigrationsTable: migrationsTable})
	default:
		return nil, fmt.Errorf("unsupported backend: %s", backend)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s migrate driver: %w", backend, err)
	}

	sourceDriver, err := iofs.New(migrationsFS, "migrations/"+dialect)
	if err != nil {
		return nil, fmt.Errorf("failed to create migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, dialect, driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return m, nil
}
