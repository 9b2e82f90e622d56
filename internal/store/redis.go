package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps manifests in redis. Per contract it holds a version
// counter and one hash per version; a set indexes contract names.
type RedisStore struct {
	client *redis.Client
	prefix string
	retry  RetryConfig
}

// NewRedisStore wraps an existing client
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &RedisStore{client: client, prefix: prefix, retry: DefaultRetryConfig()}
}

func (s *RedisStore) contractsKey() string { return s.prefix + "contracts" }

func (s *RedisStore) latestKey(contract string) string {
	return s.prefix + "manifest:" + contract + ":latest"
}

func (s *RedisStore) versionKey(contract string, version int64) string {
	return s.prefix + "manifest:" + contract + ":" + strconv.FormatInt(version, 10)
}

// Publish implements Store. The version counter is watched so concurrent
// publishers retry instead of overwriting each other.
func (s *RedisStore) Publish(ctx context.Context, m Manifest) (*Record, bool, error) {
	if err := m.validate(); err != nil {
		return nil, false, err
	}

	latestKey := s.latestKey(m.Contract)
	var rec *Record
	var created bool
	txf := func(tx *redis.Tx) error {
		version, err := tx.Get(ctx, latestKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if version > 0 {
			latest, err := s.read(ctx, tx, m.Contract, version, false)
			if err != nil {
				return err
			}
			if latest.Fingerprint == m.Fingerprint {
				latest.Data = m.Data
				rec, created = latest, false
				return nil
			}
		}

		next := &Record{
			Contract:    m.Contract,
			Version:     version + 1,
			Fingerprint: m.Fingerprint,
			SourceHash:  m.SourceHash,
			PublishedAt: now(),
			Data:        m.Data,
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, s.versionKey(m.Contract, next.Version),
				"fingerprint", next.Fingerprint,
				"source_hash", next.SourceHash,
				"published_at", next.PublishedAt.Format(time.RFC3339Nano),
				"data", next.Data,
			)
			pipe.Set(ctx, latestKey, next.Version, 0)
			pipe.SAdd(ctx, s.contractsKey(), m.Contract)
			return nil
		})
		if err != nil {
			return err
		}
		rec, created = next, true
		return nil
	}

	var err error
	for attempt := 0; attempt < s.retry.MaxRetries; attempt++ {
		err = s.client.Watch(ctx, txf, latestKey)
		if !errors.Is(err, redis.TxFailedErr) {
			break
		}
		select {
		case <-ctx.Done():
			return nil, false, ctx.Err()
		case <-time.After(s.retry.BaseBackoff * time.Duration(1<<uint(attempt))):
		}
	}
	if errors.Is(err, redis.TxFailedErr) {
		err = fmt.Errorf("%w: %v", ErrConflict, err)
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to publish %s: %w", m.Contract, err)
	}
	return rec, created, nil
}

// Latest implements Store
func (s *RedisStore) Latest(ctx context.Context, contract string) (*Record, error) {
	version, err := s.latestVersion(ctx, contract)
	if err != nil {
		return nil, err
	}
	return s.read(ctx, s.client, contract, version, true)
}

// Get implements Store
func (s *RedisStore) Get(ctx context.Context, contract string, version int64) (*Record, error) {
	rec, err := s.read(ctx, s.client, contract, version, true)
	if errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("%w: %s version %d", ErrNotFound, contract, version)
	}
	return rec, err
}

// History implements Store
func (s *RedisStore) History(ctx context.Context, contract string) ([]Record, error) {
	latest, err := s.latestVersion(ctx, contract)
	if err != nil {
		return nil, err
	}

	cmds := make([]*redis.SliceCmd, 0, latest)
	_, err = s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for v := int64(1); v <= latest; v++ {
			cmds = append(cmds, pipe.HMGet(ctx, s.versionKey(contract, v), "fingerprint", "source_hash", "published_at"))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read history of %s: %w", contract, err)
	}

	records := make([]Record, 0, len(cmds))
	for i, cmd := range cmds {
		rec, err := recordFromFields(contract, int64(i+1), cmd.Val())
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, nil
}

// List implements Store
func (s *RedisStore) List(ctx context.Context) ([]Record, error) {
	names, err := s.client.SMembers(ctx, s.contractsKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list contracts: %w", err)
	}
	sort.Strings(names)

	records := make([]Record, 0, len(names))
	for _, name := range names {
		version, err := s.latestVersion(ctx, name)
		if err != nil {
			return nil, err
		}
		rec, err := s.read(ctx, s.client, name, version, false)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, nil
}

// Close implements Store
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) latestVersion(ctx context.Context, contract string) (int64, error) {
	version, err := s.client.Get(ctx, s.latestKey(contract)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, fmt.Errorf("%w: %s", ErrNotFound, contract)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read latest version of %s: %w", contract, err)
	}
	return version, nil
}

// hashReader is satisfied by both *redis.Client and *redis.Tx
type hashReader interface {
	HMGet(ctx context.Context, key string, fields ...string) *redis.SliceCmd
}

func (s *RedisStore) read(ctx context.Context, c hashReader, contract string, version int64, withData bool) (*Record, error) {
	fields := []string{"fingerprint", "source_hash", "published_at"}
	if withData {
		fields = append(fields, "data")
	}
	vals, err := c.HMGet(ctx, s.versionKey(contract, version), fields...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s version %d: %w", contract, version, err)
	}
	rec, err := recordFromFields(contract, version, vals)
	if err != nil {
		return nil, err
	}
	if withData {
		data, _ := vals[3].(string)
		rec.Data = []byte(data)
	}
	return rec, nil
}

// recordFromFields decodes fingerprint, source_hash and published_at
func recordFromFields(contract string, version int64, vals []interface{}) (*Record, error) {
	fingerprint, ok := vals[0].(string)
	if !ok {
		return nil, ErrNotFound
	}
	sourceHash, _ := vals[1].(string)
	published, _ := vals[2].(string)
	at, err := time.Parse(time.RFC3339Nano, published)
	if err != nil {
		return nil, fmt.Errorf("corrupt record %s version %d: %w", contract, version, err)
	}
	return &Record{
		Contract:    contract,
		Version:     version,
		Fingerprint: fingerprint,
		SourceHash:  sourceHash,
		PublishedAt: at,
	}, nil
}
