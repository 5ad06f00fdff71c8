package iocache

import (
	"database/sql"
	"fmt"
	"os"
	"sync"

	"github.com/huangsam/codetrend/schema"
)

// Global Manager instance for main logic.
var (
	Manager   = &IndexStoreManager{}
	initOnce  sync.Once
	closeOnce sync.Once
)

// NewBackend opens the configured storage backend.
func NewBackend(backend schema.DatabaseBackend, cachePath, connStr string) (Backend, error) {
	switch backend {
	case schema.FileBackend, "":
		return NewFileBackend(cachePath)
	case schema.SQLiteBackend, schema.MySQLBackend, schema.PostgreSQLBackend:
		return NewSQLBackend(backend, cachePath, connStr)
	default:
		return nil, fmt.Errorf("unsupported store backend: %s. Must be file, sqlite, mysql or postgresql", backend)
	}
}

// InitStores initializes the global manager with the configured backend.
func InitStores(backend schema.DatabaseBackend, cachePath, connStr string) error {
	var initErr error

	initOnce.Do(func() {
		// This function body runs exactly once, even with concurrent calls.
		b, err := NewBackend(backend, cachePath, connStr)
		if err != nil {
			initErr = fmt.Errorf("failed to initialize index store: %w", err)
			return
		}

		Manager.Lock()
		defer Manager.Unlock()
		Manager.backend = b
		Manager.stores = make(map[string]*IndexStoreImpl)
	})

	// After once.Do, initErr will contain any error from the initialization block.
	return initErr
}

// CloseStores should be called on application shutdown.
func CloseStores() { // called in main defer
	closeOnce.Do(func() {
		_ = Manager.close()
	})
}

// ClearStore removes every stored revision for the specified backend.
// For the file backend, it removes each archiver directory below the cache path.
// For SQLite, it deletes the database file.
// For SQL backends (MySQL/PostgreSQL), it drops the index tables.
func ClearStore(backend schema.DatabaseBackend, cachePath, connStr string) error {
	switch backend {
	case schema.FileBackend:
		if cachePath == "" {
			return fmt.Errorf("cache path cannot be empty for the file backend")
		}
		fb := &FileBackend{root: cachePath}
		return fb.Clear()

	case schema.SQLiteBackend:
		dbFilePath := resolveDSN(backend, cachePath, connStr)
		// Remove the file; ignore if it doesn't exist
		if err := os.Remove(dbFilePath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove SQLite database file %s: %w", dbFilePath, err)
		}
		return nil

	case schema.MySQLBackend, schema.PostgreSQLBackend:
		return clearSQLTables(backend, connStr, blobsTable, revisionsTable, migrationsTable)

	default:
		return fmt.Errorf("unsupported store backend for clearing: %s", backend)
	}
}

// clearSQLTables connects to the SQL database and drops the tables if they exist.
func clearSQLTables(backend schema.DatabaseBackend, connStr string, tables ...string) error {
	name, err := driverName(backend)
	if err != nil {
		return err
	}
	db, err := sql.Open(name, connStr)
	if err != nil {
		return fmt.Errorf("failed to connect to %s database: %w", name, err)
	}
	defer func() { _ = db.Close() }()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping %s database: %w", name, err)
	}

	for _, table := range tables {
		if err := validateTableName(table); err != nil {
			return err
		}
		query := fmt.Sprintf("DROP TABLE IF EXISTS %s", quoteTableName(table, backend))
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("failed to drop table %s: %w", table, err)
		}
	}
	return nil
}
