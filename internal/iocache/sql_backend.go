package iocache

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql" // MySQL driver
	"github.com/huangsam/codetrend/schema"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	"github.com/klauspost/compress/zstd"
	_ "modernc.org/sqlite" // SQLite driver
)

// SQLBackend stores listings as rows and blobs as zstd-compressed payloads
// in a SQLite, MySQL or PostgreSQL database.
type SQLBackend struct {
	db      *sql.DB
	backend schema.DatabaseBackend
	dsn     string
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

var _ Backend = &SQLBackend{} // Compile-time check

// NewSQLBackend migrates the schema to the latest version and opens the store.
func NewSQLBackend(backend schema.DatabaseBackend, cachePath, connStr string) (*SQLBackend, error) {
	for _, table := range []string{revisionsTable, blobsTable, migrationsTable} {
		if err := validateTableName(table); err != nil {
			return nil, err
		}
	}

	dsn := resolveDSN(backend, cachePath, connStr)
	if backend == schema.SQLiteBackend && dsn != ":memory:" && !strings.HasPrefix(dsn, "file:") {
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory for %q: %w", dsn, err)
		}
	}

	if _, err := runMigrations(backend, dsn, -1); err != nil {
		return nil, err
	}

	db, err := openDB(backend, dsn)
	if err != nil {
		return nil, err
	}

	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &SQLBackend{
		db:      db,
		backend: backend,
		dsn:     dsn,
		encoder: encoder,
		decoder: decoder,
	}, nil
}

// Name implements the Backend interface.
func (b *SQLBackend) Name() schema.DatabaseBackend {
	return b.backend
}

// Location implements the Backend interface.
// Credentials in the connection string are never shown.
func (b *SQLBackend) Location() string {
	switch b.backend {
	case schema.MySQLBackend:
		cfg, err := mysql.ParseDSN(b.dsn)
		if err != nil {
			return "mysql"
		}
		return fmt.Sprintf("%s/%s", cfg.Addr, cfg.DBName)
	case schema.PostgreSQLBackend:
		cfg, err := pgconn.ParseConfig(b.dsn)
		if err != nil {
			return "postgresql"
		}
		return fmt.Sprintf("%s:%d/%s", cfg.Host, cfg.Port, cfg.Database)
	default:
		return b.dsn
	}
}

func (b *SQLBackend) table(name string) string {
	return quoteTableName(name, b.backend)
}

// ListingExists implements the Backend interface.
func (b *SQLBackend) ListingExists(archiver string) (bool, error) {
	query := rebind(b.backend, fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE archiver = ?", b.table(revisionsTable)))
	var count int
	if err := b.db.QueryRow(query, archiver).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

// ReadListing implements the Backend interface.
func (b *SQLBackend) ReadListing(archiver string) ([]schema.IndexedRevision, error) {
	query := rebind(b.backend, fmt.Sprintf(`SELECT rev_key, author_name, author_email, rev_date, message, collectors
		FROM %s WHERE archiver = ? ORDER BY seq`, b.table(revisionsTable)))
	rows, err := b.db.Query(query, archiver)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	revs := []schema.IndexedRevision{}
	for rows.Next() {
		var rev schema.IndexedRevision
		var collectors string
		if err := rows.Scan(&rev.Key, &rev.AuthorName, &rev.AuthorEmail, &rev.Date, &rev.Message, &collectors); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(collectors), &rev.Collectors); err != nil {
			return nil, fmt.Errorf("corrupt collector list for revision %s: %w", rev.Key, err)
		}
		revs = append(revs, rev)
	}
	return revs, rows.Err()
}

// WriteListing implements the Backend interface.
func (b *SQLBackend) WriteListing(archiver string, revs []schema.IndexedRevision) (err error) {
	tx, err := b.db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	deleteQuery := rebind(b.backend, fmt.Sprintf("DELETE FROM %s WHERE archiver = ?", b.table(revisionsTable)))
	if _, err = tx.Exec(deleteQuery, archiver); err != nil {
		return err
	}

	insertQuery := rebind(b.backend, fmt.Sprintf(`INSERT INTO %s
		(archiver, rev_key, seq, author_name, author_email, rev_date, message, collectors, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`, b.table(revisionsTable)))
	stmt, err := tx.Prepare(insertQuery)
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	now := time.Now().Unix()
	for i, rev := range revs {
		collectors, mErr := json.Marshal(rev.Collectors)
		if mErr != nil {
			err = mErr
			return err
		}
		if _, err = stmt.Exec(archiver, rev.Key, i, rev.AuthorName, rev.AuthorEmail, rev.Date, rev.Message, string(collectors), now); err != nil {
			return fmt.Errorf("failed to record revision %s: %w", rev.Key, err)
		}
	}
	return tx.Commit()
}

// BlobExists implements the Backend interface.
func (b *SQLBackend) BlobExists(archiver, key string) (bool, error) {
	query := rebind(b.backend, fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE archiver = ? AND rev_key = ?", b.table(blobsTable)))
	var count int
	if err := b.db.QueryRow(query, archiver, key).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

// WriteBlob implements the Backend interface.
func (b *SQLBackend) WriteBlob(archiver, key string, payload []byte) error {
	compressed := b.encoder.EncodeAll(payload, nil)
	_, err := b.db.Exec(b.getUpsertQuery(), archiver, key, compressed, len(payload), time.Now().Unix())
	return err
}

// getUpsertQuery returns the blob UPSERT query for the backend.
func (b *SQLBackend) getUpsertQuery() string {
	table := b.table(blobsTable)
	switch b.backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`INSERT INTO %s (archiver, rev_key, payload, raw_size, created_at) VALUES (?, ?, ?, ?, ?) AS new
			ON DUPLICATE KEY UPDATE payload = new.payload, raw_size = new.raw_size, created_at = new.created_at`, table)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`INSERT INTO %s (archiver, rev_key, payload, raw_size, created_at) VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (archiver, rev_key) DO UPDATE SET payload = EXCLUDED.payload, raw_size = EXCLUDED.raw_size, created_at = EXCLUDED.created_at`, table)

	default: // SQLite
		return fmt.Sprintf(`INSERT OR REPLACE INTO %s (archiver, rev_key, payload, raw_size, created_at) VALUES (?, ?, ?, ?, ?)`, table)
	}
}

// ReadBlob implements the Backend interface.
func (b *SQLBackend) ReadBlob(archiver, key string) ([]byte, error) {
	query := rebind(b.backend, fmt.Sprintf("SELECT payload FROM %s WHERE archiver = ? AND rev_key = ?", b.table(blobsTable)))
	var compressed []byte
	err := b.db.QueryRow(query, archiver, key).Scan(&compressed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: no stored results for %s", schema.ErrRevisionNotIndexed, key)
	}
	if err != nil {
		return nil, err
	}
	payload, err := b.decoder.DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress results of revision %s: %w", key, err)
	}
	return payload, nil
}

// Status implements the Backend interface.
func (b *SQLBackend) Status() (schema.StoreStatus, error) {
	status := schema.StoreStatus{
		Backend:   string(b.backend),
		Location:  b.Location(),
		Connected: b.db != nil,
		Archivers: map[string]int{},
	}
	if b.db == nil {
		return status, nil
	}

	rows, err := b.db.Query(fmt.Sprintf("SELECT archiver, COUNT(*) FROM %s GROUP BY archiver", b.table(revisionsTable)))
	if err != nil {
		return status, fmt.Errorf("failed to count revisions: %w", err)
	}
	for rows.Next() {
		var archiver string
		var count int
		if err := rows.Scan(&archiver, &count); err != nil {
			_ = rows.Close()
			return status, err
		}
		status.Archivers[archiver] = count
		status.TotalRevisions += count
	}
	_ = rows.Close()
	if err := rows.Err(); err != nil {
		return status, err
	}

	if err := b.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", b.table(blobsTable))).Scan(&status.TotalBlobs); err != nil {
		return status, fmt.Errorf("failed to count blobs: %w", err)
	}

	if status.TotalRevisions > 0 {
		var newest, oldest int64
		query := fmt.Sprintf("SELECT MAX(rev_date), MIN(rev_date) FROM %s", b.table(revisionsTable))
		if err := b.db.QueryRow(query).Scan(&newest, &oldest); err != nil {
			return status, fmt.Errorf("failed to get revision date range: %w", err)
		}
		status.NewestRevision = unixTime(newest)
		status.OldestRevision = unixTime(oldest)
	}

	var version int
	query := fmt.Sprintf("SELECT version FROM %s LIMIT 1", b.table(migrationsTable))
	if err := b.db.QueryRow(query).Scan(&version); err == nil {
		status.SchemaVersion = version
	}

	status.SizeBytes = b.sizeBytes(status.TotalBlobs)
	return status, nil
}

// sizeBytes estimates the storage used by both tables.
func (b *SQLBackend) sizeBytes(totalBlobs int) int64 {
	// Fallback rough estimate if the backend specific query fails
	estimate := int64(totalBlobs) * 4000
	var size int64

	switch b.backend {
	case schema.SQLiteBackend:
		sizeQuery := "SELECT page_count * page_size FROM pragma_page_count(), pragma_page_size()"
		if err := b.db.QueryRow(sizeQuery).Scan(&size); err != nil {
			return 0
		}
		return size

	case schema.MySQLBackend:
		cfg, err := mysql.ParseDSN(b.dsn)
		if err != nil || cfg.DBName == "" {
			return estimate
		}
		sizeQuery := "SELECT COALESCE(SUM(data_length + index_length), 0) FROM information_schema.tables WHERE table_schema = ? AND table_name IN (?, ?)"
		if err := b.db.QueryRow(sizeQuery, cfg.DBName, revisionsTable, blobsTable).Scan(&size); err != nil {
			return estimate
		}
		return size

	case schema.PostgreSQLBackend:
		sizeQuery := "SELECT pg_total_relation_size($1) + pg_total_relation_size($2)"
		if err := b.db.QueryRow(sizeQuery, revisionsTable, blobsTable).Scan(&size); err != nil {
			return estimate
		}
		return size

	default:
		return estimate
	}
}

// Close implements the Backend interface.
func (b *SQLBackend) Close() error {
	if b.decoder != nil {
		b.decoder.Close()
	}
	if b.encoder != nil {
		_ = b.encoder.Close()
	}
	if b.db != nil {
		return b.db.Close()
	}
	return nil
}
