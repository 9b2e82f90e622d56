// Package store persists published manifests by contract name. Every
// publish of a new fingerprint appends a version; republishing the latest
// fingerprint is a no-op.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNotFound is returned when no manifest matches the request
var ErrNotFound = errors.New("manifest not found")

// Record is one published manifest version
type Record struct {
	Contract    string    `json:"contract"`
	Version     int64     `json:"version"`
	Fingerprint string    `json:"fingerprint"`
	SourceHash  string    `json:"source_hash,omitempty"`
	PublishedAt time.Time `json:"published_at"`
	// Data is the manifest as published, plain or gzip. Listings leave it nil.
	Data []byte `json:"-"`
}

// Manifest is what a caller publishes
type Manifest struct {
	Contract    string
	Fingerprint string
	SourceHash  string
	Data        []byte
}

func (m Manifest) validate() error {
	if strings.TrimSpace(m.Contract) == "" {
		return fmt.Errorf("manifest has no contract name")
	}
	if m.Fingerprint == "" {
		return fmt.Errorf("manifest %s has no fingerprint", m.Contract)
	}
	if len(m.Data) == 0 {
		return fmt.Errorf("manifest %s is empty", m.Contract)
	}
	return nil
}

// Store is a versioned manifest repository
type Store interface {
	// Publish stores m as the next version of its contract. When the latest
	// version already has m's fingerprint that version is returned and
	// created is false.
	Publish(ctx context.Context, m Manifest) (rec *Record, created bool, err error)
	// Latest returns the newest version of contract, with data
	Latest(ctx context.Context, contract string) (*Record, error)
	// Get returns one version of contract, with data
	Get(ctx context.Context, contract string, version int64) (*Record, error)
	// History lists every version of contract, oldest first, without data
	History(ctx context.Context, contract string) ([]Record, error)
	// List returns the latest version of every contract by name, without data
	List(ctx context.Context) ([]Record, error)
	Close() error
}

// Drivers accepted by Open
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
	DriverPgx      = "pgx"
	DriverRedis    = "redis"
)

// Drivers lists every supported driver name
var Drivers = []string{DriverSQLite, DriverPostgres, DriverPgx, DriverRedis}

// Config selects and addresses a backend
type Config struct {
	Driver string
	// DSN is a file path for sqlite3, a connection URL for postgres and
	// pgx, and a redis:// URL for redis.
	DSN string
	// Prefix namespaces redis keys
	Prefix string
}

// DefaultPrefix namespaces redis keys when Config.Prefix is empty
const DefaultPrefix = "contractabi:"

// Open connects to the configured backend and prepares its schema
func Open(ctx context.Context, cfg Config) (Store, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("store dsn is required")
	}
	switch cfg.Driver {
	case DriverSQLite, DriverPostgres, DriverPgx:
		return OpenSQL(ctx, cfg.Driver, cfg.DSN)
	case DriverRedis:
		opts, err := redis.ParseURL(cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("invalid redis dsn: %w", err)
		}
		client := redis.NewClient(opts)
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		return NewRedisStore(client, cfg.Prefix), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q (expected one of %s)", cfg.Driver, strings.Join(Drivers, ", "))
	}
}
