package store

import (
	"context"
	"database/sql"
	"fmt"
)

// migration is one schema change, applied once per database
type migration struct {
	Version int64
	Name    string
	Up      func(d dialect) string
}

// migrations is the schema history, in version order
var migrations = []migration{
	{
		Version: 1,
		Name:    "create_manifests",
		Up: func(d dialect) string {
			return `CREATE TABLE IF NOT EXISTS manifests (
	contract VARCHAR(255) NOT NULL,
	version BIGINT NOT NULL,
	fingerprint VARCHAR(128) NOT NULL,
	source_hash VARCHAR(128) NOT NULL DEFAULT '',
	data ` + d.blob + ` NOT NULL,
	published_at ` + d.timestamp + ` NOT NULL,
	PRIMARY KEY (contract, version)
)`
		},
	},
	{
		Version: 2,
		Name:    "index_manifests_fingerprint",
		Up: func(dialect) string {
			return `CREATE INDEX IF NOT EXISTS idx_manifests_fingerprint ON manifests(fingerprint)`
		},
	},
}

// tracker records applied migrations in schema_migrations
type tracker struct {
	db *sql.DB
	d  dialect
}

func (t *tracker) initialize(ctx context.Context) error {
	query := `CREATE TABLE IF NOT EXISTS schema_migrations (
	version BIGINT PRIMARY KEY,
	name VARCHAR(255) NOT NULL,
	applied_at ` + t.d.timestamp + ` NOT NULL
)`
	if _, err := t.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to initialize migrations table: %w", err)
	}
	return nil
}

func (t *tracker) applied(ctx context.Context) (map[int64]bool, error) {
	rows, err := t.db.QueryContext(ctx, `SELECT version FROM schema_migrations ORDER BY version ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[int64]bool)
	for rows.Next() {
		var v int64
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("failed to scan migration: %w", err)
		}
		applied[v] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating migrations: %w", err)
	}
	return applied, nil
}

// migrate applies every pending migration, each in its own transaction,
// and returns how many ran.
func (t *tracker) migrate(ctx context.Context, all []migration) (int, error) {
	if err := t.initialize(ctx); err != nil {
		return 0, err
	}
	applied, err := t.applied(ctx)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, m := range all {
		if applied[m.Version] {
			continue
		}
		err := withTransaction(ctx, t.db, func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, m.Up(t.d)); err != nil {
				return err
			}
			_, err := tx.ExecContext(ctx,
				t.d.rebind(`INSERT INTO schema_migrations (version, name, applied_at) VALUES (?, ?, ?)`),
				m.Version, m.Name, now())
			return err
		})
		if err != nil {
			return count, fmt.Errorf("migration %s failed: %w", m.Name, err)
		}
		count++
	}
	return count, nil
}
