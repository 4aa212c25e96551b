// Package redis provides Redis-backed stores and a run lock, letting
// multiple processes share one incremental-build state.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/aretw0/cairn/pkg/domain"
)

// Far enough for "no expiration" index scores.
const noExpiryScore = 4102444800 // 2100-01-01

// Option configures a Redis store.
type Option func(*options)

type options struct {
	prefix string
	ttl    time.Duration
}

// WithTTL sets the expiration for stored entries.
func WithTTL(ttl time.Duration) Option {
	return func(o *options) {
		o.ttl = ttl
	}
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(o *options) {
		o.prefix = prefix
	}
}

func buildOptions(defaultPrefix string, opts []Option) options {
	o := options{prefix: defaultPrefix}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// RecordStore implements ports.RecordStore using Redis.
type RecordStore struct {
	client *backend.Client
	opts   options
}

// NewRecordStore creates a record store from an existing client.
func NewRecordStore(client *backend.Client, opts ...Option) *RecordStore {
	return &RecordStore{
		client: client,
		opts:   buildOptions("cairn:record:", opts),
	}
}

func (s *RecordStore) key(name string) string { return s.opts.prefix + name }
func (s *RecordStore) indexKey() string       { return s.opts.prefix + "index" }

// Save persists the record to Redis.
func (s *RecordStore) Save(ctx context.Context, name string, record *domain.RunRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}
	return saveIndexed(ctx, s.client, s.key(name), s.indexKey(), name, data, s.opts.ttl)
}

// Load retrieves the record from Redis.
func (s *RecordStore) Load(ctx context.Context, name string) (*domain.RunRecord, error) {
	val, err := s.client.Get(ctx, s.key(name)).Result()
	if err != nil {
		if err == backend.Nil {
			return nil, domain.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	var record domain.RunRecord
	if err := json.Unmarshal([]byte(val), &record); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrRecordCorrupt, name, err)
	}
	return &record, nil
}

// Delete removes the record.
func (s *RecordStore) Delete(ctx context.Context, name string) error {
	return deleteIndexed(ctx, s.client, s.key(name), s.indexKey(), name)
}

// List returns all recorded target names.
func (s *RecordStore) List(ctx context.Context) ([]string, error) {
	return listIndexed(ctx, s.client, s.indexKey())
}

// ResultStore implements ports.ResultStore using Redis.
// Values are stored as JSON.
type ResultStore struct {
	client *backend.Client
	opts   options
}

// NewResultStore creates a result store from an existing client.
func NewResultStore(client *backend.Client, opts ...Option) *ResultStore {
	return &ResultStore{
		client: client,
		opts:   buildOptions("cairn:result:", opts),
	}
}

func (s *ResultStore) key(name string) string { return s.opts.prefix + name }
func (s *ResultStore) indexKey() string       { return s.opts.prefix + "index" }

// Put persists the value to Redis.
func (s *ResultStore) Put(ctx context.Context, name string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	return saveIndexed(ctx, s.client, s.key(name), s.indexKey(), name, data, s.opts.ttl)
}

// Get retrieves a stored value.
func (s *ResultStore) Get(ctx context.Context, name string) (any, error) {
	val, err := s.client.Get(ctx, s.key(name)).Result()
	if err != nil {
		if err == backend.Nil {
			return nil, domain.ErrResultNotFound
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	var value any
	if err := json.Unmarshal([]byte(val), &value); err != nil {
		return nil, fmt.Errorf("failed to unmarshal result %s: %w", name, err)
	}
	return value, nil
}

// Delete removes a stored value.
func (s *ResultStore) Delete(ctx context.Context, name string) error {
	return deleteIndexed(ctx, s.client, s.key(name), s.indexKey(), name)
}

// Clear removes all stored values.
func (s *ResultStore) Clear(ctx context.Context) error {
	names, err := s.List(ctx)
	if err != nil {
		return err
	}
	for _, name := range names {
		if err := s.Delete(ctx, name); err != nil {
			return err
		}
	}
	return nil
}

// List returns all stored result names.
func (s *ResultStore) List(ctx context.Context) ([]string, error) {
	return listIndexed(ctx, s.client, s.indexKey())
}

// saveIndexed writes the payload and adds the name to a ZSET index whose
// score encodes the expiration, enabling lazy pruning on List.
func saveIndexed(ctx context.Context, client *backend.Client, key, indexKey, name string, data []byte, ttl time.Duration) error {
	pipe := client.Pipeline()

	pipe.Set(ctx, key, data, ttl)

	score := float64(noExpiryScore)
	if ttl > 0 {
		score = float64(time.Now().Add(ttl).Unix())
	}
	pipe.ZAdd(ctx, indexKey, backend.Z{Score: score, Member: name})

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

func deleteIndexed(ctx context.Context, client *backend.Client, key, indexKey, name string) error {
	pipe := client.Pipeline()
	pipe.Del(ctx, key)
	pipe.ZRem(ctx, indexKey, name)
	_, err := pipe.Exec(ctx)
	return err
}

func listIndexed(ctx context.Context, client *backend.Client, indexKey string) ([]string, error) {
	// Lazy cleanup: drop expired names from the index first.
	now := float64(time.Now().Unix())
	if err := client.ZRemRangeByScore(ctx, indexKey, "-inf", fmt.Sprintf("%f", now)).Err(); err != nil {
		return nil, fmt.Errorf("failed to prune expired entries: %w", err)
	}

	names, err := client.ZRange(ctx, indexKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	return names, nil
}
