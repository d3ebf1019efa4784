// Package store implements the document collection the catalog reads from.
//
// Records are kept as JSON documents in a single SQLite table. Lookups
// filter on top-level document fields with json_extract, so the collection
// stays schema-less like the ingestion format it mirrors.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"sgci.io/catalog/internal/logging"
	"sgci.io/catalog/internal/metrics"
	"sgci.io/catalog/models"
	"sgci.io/catalog/pkg/catalog"
)

const schema = `
CREATE TABLE IF NOT EXISTS resources (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	document TEXT NOT NULL CHECK (json_valid(document)),
	loaded_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_resources_id ON resources (json_extract(document, '$.id'));
CREATE INDEX IF NOT EXISTS idx_resources_name ON resources (json_extract(document, '$.name'));
CREATE INDEX IF NOT EXISTS idx_resources_type ON resources (json_extract(document, '$.resourceType'));
`

// fieldPaths maps queryable fields to their JSON path in a stored document.
var fieldPaths = map[catalog.Field]string{
	catalog.FieldID:           "$.id",
	catalog.FieldName:         "$.name",
	catalog.FieldResourceType: "$.resourceType",
}

// SQLiteStore is a document collection backed by SQLite.
type SQLiteStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// Open opens (or creates) the SQLite database at path and ensures the
// resources collection exists.
func Open(ctx context.Context, path string, logger *zap.Logger) (*SQLiteStore, error) {
	// WAL lets readers proceed while a load-data run replaces the collection.
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: failed to ping database: %v", models.ErrStoreUnavailable, err)
	}

	s := New(db, logger)
	if err := s.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("document store opened", zap.String("path", path))
	return s, nil
}

// New wraps an existing database handle. The caller owns the handle.
func New(db *sql.DB, logger *zap.Logger) *SQLiteStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SQLiteStore{db: db, logger: logger}
}

// EnsureSchema creates the resources table and its indexes if missing.
func (s *SQLiteStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// DB exposes the underlying handle for maintenance commands.
func (s *SQLiteStore) DB() *sql.DB {
	return s.db
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Ping verifies the database is reachable.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", models.ErrStoreUnavailable, err)
	}
	return nil
}

// Find returns a record for every row matching the filter, in insertion
// order. A row whose JSON is not an object is returned as a record carrying
// a models.ErrSchemaViolation instead of failing the scan.
//
// Any failure talking to the database, including context cancellation or
// deadline expiry, is reported as models.ErrStoreUnavailable.
func (s *SQLiteStore) Find(ctx context.Context, f catalog.Filter) ([]catalog.Record, error) {
	query, args, err := buildFindQuery(f)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	records, err := s.find(ctx, query, args)
	s.observe("find", start, err)
	if err != nil {
		return nil, err
	}

	return records, nil
}

func (s *SQLiteStore) find(ctx context.Context, query string, args []any) ([]catalog.Record, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, unavailable(ctx, err)
	}
	defer rows.Close()

	records := make([]catalog.Record, 0)
	for rows.Next() {
		var seq int64
		var raw string
		if err := rows.Scan(&seq, &raw); err != nil {
			return nil, unavailable(ctx, err)
		}

		doc, err := decodeDocument(raw)
		if err != nil {
			s.logger.Debug("stored row is not a document", zap.Int64("seq", seq), zap.Error(err))
			records = append(records, catalog.Record{
				Err: fmt.Errorf("%w: stored row %d is not a JSON object: %v", models.ErrSchemaViolation, seq, err),
			})
			continue
		}
		records = append(records, catalog.Record{Doc: doc})
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable(ctx, err)
	}

	return records, nil
}

// Count returns the number of stored documents.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	start := time.Now()
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM resources`).Scan(&n)
	if err != nil {
		err = unavailable(ctx, err)
	}
	s.observe("count", start, err)
	return n, err
}

// ReplaceAll atomically swaps the whole collection for docs. Readers see
// either the previous contents or the new ones, never a mix.
func (s *SQLiteStore) ReplaceAll(ctx context.Context, docs []catalog.Document) (int, error) {
	start := time.Now()
	n, err := s.replaceAll(ctx, docs)
	s.observe("replace_all", start, err)
	return n, err
}

func (s *SQLiteStore) replaceAll(ctx context.Context, docs []catalog.Document) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM resources`); err != nil {
		return 0, fmt.Errorf("failed to clear collection: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO resources (document, loaded_at) VALUES (?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().Unix()
	for i, doc := range docs {
		data, err := json.Marshal(doc)
		if err != nil {
			return 0, fmt.Errorf("failed to marshal document %d: %w", i, err)
		}
		if _, err := stmt.ExecContext(ctx, string(data), now); err != nil {
			return 0, fmt.Errorf("failed to insert document %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Info("replaced resource collection", zap.Int("documents", len(docs)))
	return len(docs), nil
}

// ReportPoolStats publishes connection pool gauges until ctx is done.
func (s *SQLiteStore) ReportPoolStats(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		s.recordPoolStats()
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *SQLiteStore) recordPoolStats() {
	stats := s.db.Stats()
	metrics.DBConnectionsOpen.Set(float64(stats.OpenConnections))
	metrics.DBConnectionsIdle.Set(float64(stats.Idle))
	metrics.DBConnectionsInUse.Set(float64(stats.InUse))
	metrics.DBConnectionsMaxOpen.Set(float64(stats.MaxOpenConnections))
}

// buildFindQuery renders a filter as a parameterized SELECT.
func buildFindQuery(f catalog.Filter) (string, []any, error) {
	var b strings.Builder
	b.WriteString(`SELECT seq, document FROM resources`)

	constraints := f.Constraints()
	args := make([]any, 0, len(constraints))
	for i, c := range constraints {
		path, ok := fieldPaths[c.Field]
		if !ok {
			return "", nil, fmt.Errorf("unsupported filter field %q", c.Field)
		}
		if i == 0 {
			b.WriteString(` WHERE `)
		} else {
			b.WriteString(` AND `)
		}
		fmt.Fprintf(&b, `json_extract(document, '%s') = ?`, path)
		args = append(args, c.Value)
	}

	b.WriteString(` ORDER BY seq`)
	return b.String(), args, nil
}

// decodeDocument parses a stored row, keeping numbers exact.
func decodeDocument(raw string) (catalog.Document, error) {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()

	var doc catalog.Document
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, errors.New("document is null")
	}
	return doc, nil
}

// unavailable classifies a database error as a store outage.
func unavailable(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%w: %v", models.ErrStoreUnavailable, ctxErr)
	}
	return fmt.Errorf("%w: %v", models.ErrStoreUnavailable, err)
}

func (s *SQLiteStore) observe(operation string, start time.Time, err error) {
	elapsed := time.Since(start)
	status := "success"
	if err != nil {
		status = "error"
		s.logger.Warn("store operation failed",
			zap.String(logging.FieldOperation, operation),
			logging.Duration(elapsed),
			zap.Error(err))
	}
	metrics.DBQueryDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
	metrics.DBQueriesTotal.WithLabelValues(operation, status).Inc()
}
