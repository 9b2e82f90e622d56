package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

const (
	// DefaultMaxRetries bounds attempts for transactions that lose a race
	DefaultMaxRetries = 3
	// DefaultBaseBackoff is doubled on every retry
	DefaultBaseBackoff = 20 * time.Millisecond
)

// ErrConflict is returned when a transaction keeps losing races
var ErrConflict = errors.New("transaction conflict")

// RetryConfig configures retry behavior for transactions
type RetryConfig struct {
	MaxRetries  int
	BaseBackoff time.Duration
}

// DefaultRetryConfig returns the default retry configuration
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:  DefaultMaxRetries,
		BaseBackoff: DefaultBaseBackoff,
	}
}

// withTransaction runs fn in a transaction, committing on success and
// rolling back on error or panic.
func withTransaction(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("transaction failed: %w, rollback failed: %v", err, rbErr)
		}
		return err
	}
	return tx.Commit()
}

// withRetry reruns the transaction while it fails with a retryable error
func withRetry(ctx context.Context, db *sql.DB, cfg RetryConfig, fn func(tx *sql.Tx) error) error {
	var lastErr error
	for attempt := 0; attempt < cfg.MaxRetries; attempt++ {
		if ctx.Err() != nil {
			return fmt.Errorf("transaction cancelled before retry %d: %w", attempt, ctx.Err())
		}

		err := withTransaction(ctx, db, fn)
		if err == nil || !IsRetryableError(err) {
			return err
		}
		lastErr = err
		if attempt == cfg.MaxRetries-1 {
			break
		}

		backoff := cfg.BaseBackoff * time.Duration(1<<uint(attempt))
		select {
		case <-ctx.Done():
			return fmt.Errorf("transaction cancelled during retry: %w", ctx.Err())
		case <-time.After(backoff):
		}
	}
	return fmt.Errorf("%w: failed after %d attempts: %v", ErrConflict, cfg.MaxRetries, lastErr)
}

// IsRetryableError reports whether err is a deadlock, serialization
// failure, busy database or a lost race on the version key.
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return retryableSQLState(pgErr.Code)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return retryableSQLState(string(pqErr.Code))
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		switch {
		case liteErr.Code == sqlite3.ErrBusy, liteErr.Code == sqlite3.ErrLocked:
			return true
		case liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey, liteErr.ExtendedCode == sqlite3.ErrConstraintUnique:
			return true
		}
		return false
	}

	msg := strings.ToLower(err.Error())
	for _, s := range []string{"deadlock detected", "could not serialize access", "database is locked"} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

// retryableSQLState matches serialization_failure, deadlock_detected and
// unique_violation.
func retryableSQLState(code string) bool {
	switch code {
	case "40001", "40P01", "23505":
		return true
	}
	return false
}
