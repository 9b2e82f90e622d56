package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// now is the publish clock. Postgres keeps microseconds, so every backend
// does.
var now = func() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

type dialect struct {
	numbered  bool
	blob      string
	timestamp string
}

func dialectFor(driver string) (dialect, error) {
	switch driver {
	case DriverSQLite:
		return dialect{blob: "BLOB", timestamp: "TIMESTAMP"}, nil
	case DriverPostgres, DriverPgx:
		return dialect{numbered: true, blob: "BYTEA", timestamp: "TIMESTAMPTZ"}, nil
	}
	return dialect{}, fmt.Errorf("unknown sql driver %q", driver)
}

// rebind rewrites ? placeholders to $1, $2... for postgres
func (d dialect) rebind(query string) string {
	if !d.numbered {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// SQLStore keeps manifests in a database/sql database
type SQLStore struct {
	db    *sql.DB
	d     dialect
	retry RetryConfig
}

// OpenSQL opens driver at dsn and migrates the schema
func OpenSQL(ctx context.Context, driver, dsn string) (*SQLStore, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", driver, err)
	}
	if driver == DriverSQLite {
		// one writer at a time
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to %s store: %w", driver, err)
	}
	s, err := NewSQLStore(ctx, db, driver)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewSQLStore wraps an open database and migrates the schema
func NewSQLStore(ctx context.Context, db *sql.DB, driver string) (*SQLStore, error) {
	d, err := dialectFor(driver)
	if err != nil {
		return nil, err
	}
	if _, err := (&tracker{db: db, d: d}).migrate(ctx, migrations); err != nil {
		return nil, err
	}
	return &SQLStore{db: db, d: d, retry: DefaultRetryConfig()}, nil
}

// Publish implements Store
func (s *SQLStore) Publish(ctx context.Context, m Manifest) (*Record, bool, error) {
	if err := m.validate(); err != nil {
		return nil, false, err
	}

	var rec *Record
	var created bool
	err := withRetry(ctx, s.db, s.retry, func(tx *sql.Tx) error {
		latest, err := scanRecord(tx.QueryRowContext(ctx, s.d.rebind(
			`SELECT contract, version, fingerprint, source_hash, published_at FROM manifests
WHERE contract = ? ORDER BY version DESC LIMIT 1`), m.Contract), false)
		switch {
		case errors.Is(err, ErrNotFound):
			latest = &Record{}
		case err != nil:
			return err
		case latest.Fingerprint == m.Fingerprint:
			latest.Data = m.Data
			rec, created = latest, false
			return nil
		}

		rec = &Record{
			Contract:    m.Contract,
			Version:     latest.Version + 1,
			Fingerprint: m.Fingerprint,
			SourceHash:  m.SourceHash,
			PublishedAt: now(),
			Data:        m.Data,
		}
		_, err = tx.ExecContext(ctx, s.d.rebind(
			`INSERT INTO manifests (contract, version, fingerprint, source_hash, data, published_at)
VALUES (?, ?, ?, ?, ?, ?)`),
			rec.Contract, rec.Version, rec.Fingerprint, rec.SourceHash, rec.Data, rec.PublishedAt)
		created = err == nil
		return err
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to publish %s: %w", m.Contract, err)
	}
	return rec, created, nil
}

// Latest implements Store
func (s *SQLStore) Latest(ctx context.Context, contract string) (*Record, error) {
	rec, err := scanRecord(s.db.QueryRowContext(ctx, s.d.rebind(
		`SELECT contract, version, fingerprint, source_hash, published_at, data FROM manifests
WHERE contract = ? ORDER BY version DESC LIMIT 1`), contract), true)
	if errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, contract)
	}
	return rec, err
}

// Get implements Store
func (s *SQLStore) Get(ctx context.Context, contract string, version int64) (*Record, error) {
	rec, err := scanRecord(s.db.QueryRowContext(ctx, s.d.rebind(
		`SELECT contract, version, fingerprint, source_hash, published_at, data FROM manifests
WHERE contract = ? AND version = ?`), contract, version), true)
	if errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("%w: %s version %d", ErrNotFound, contract, version)
	}
	return rec, err
}

// History implements Store
func (s *SQLStore) History(ctx context.Context, contract string) ([]Record, error) {
	records, err := s.queryRecords(ctx, s.d.rebind(
		`SELECT contract, version, fingerprint, source_hash, published_at FROM manifests
WHERE contract = ? ORDER BY version ASC`), contract)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, contract)
	}
	return records, nil
}

// List implements Store
func (s *SQLStore) List(ctx context.Context) ([]Record, error) {
	return s.queryRecords(ctx,
		`SELECT m.contract, m.version, m.fingerprint, m.source_hash, m.published_at FROM manifests m
JOIN (SELECT contract, MAX(version) AS version FROM manifests GROUP BY contract) l
ON m.contract = l.contract AND m.version = l.version
ORDER BY m.contract ASC`)
}

// Close implements Store
func (s *SQLStore) Close() error {
	return s.db.Close()
}

func (s *SQLStore) queryRecords(ctx context.Context, query string, args ...interface{}) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query manifests: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows, false)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating manifests: %w", err)
	}
	return records, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(row scanner, withData bool) (*Record, error) {
	rec := &Record{}
	dest := []interface{}{&rec.Contract, &rec.Version, &rec.Fingerprint, &rec.SourceHash, &rec.PublishedAt}
	if withData {
		dest = append(dest, &rec.Data)
	}
	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan manifest: %w", err)
	}
	rec.PublishedAt = rec.PublishedAt.UTC()
	return rec, nil
}
