// Package redis provides a storage.Storage backed by Redis, letting several
// client processes share cached payloads.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ggoodman/mercapi-go/storage"
	"github.com/joeshaw/envdecode"
	"github.com/redis/go-redis/v9"
)

// Config for the Redis-backed Storage. Defaults can be loaded via envdecode.
type Config struct {
	// Addr like "localhost:6379". ENV: REDIS_ADDR
	Addr string `env:"REDIS_ADDR,default=localhost:6379"`
	// DB index. ENV: REDIS_DB
	DB int `env:"REDIS_DB,default=0"`
	// KeyPrefix for all keys. ENV: MERCAPI_CACHE_KEY_PREFIX
	KeyPrefix string `env:"MERCAPI_CACHE_KEY_PREFIX,default=mercapi:cache:"`
}

// Storage implements storage.Storage using Redis.
type Storage struct {
	client    *redis.Client
	keyPrefix string
}

type storedEntry struct {
	Payload   []byte     `json:"payload"`
	StoredAt  time.Time  `json:"stored_at"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// New wraps an existing client. keyPrefix defaults to "mercapi:cache:".
func New(client *redis.Client, keyPrefix string) (*Storage, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	if keyPrefix == "" {
		keyPrefix = "mercapi:cache:"
	}
	return &Storage{client: client, keyPrefix: keyPrefix}, nil
}

// Dial connects using cfg and verifies the server is reachable.
func Dial(ctx context.Context, cfg Config) (*Storage, error) {
	if cfg.Addr == "" {
		cfg.Addr = "localhost:6379"
	}
	cl := redis.NewClient(&redis.Options{Addr: cfg.Addr, DB: cfg.DB})
	if err := cl.Ping(ctx).Err(); err != nil {
		_ = cl.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return New(cl, cfg.KeyPrefix)
}

// DialFromEnv builds a Storage using envdecode to populate Config.
func DialFromEnv(ctx context.Context) (*Storage, error) {
	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("redis config: %w", err)
	}
	return Dial(ctx, cfg)
}

// Get returns the entry stored under key, if live.
func (s *Storage) Get(ctx context.Context, key string, opts ...storage.Option) (*storage.Entry, error) {
	k := s.buildKey(storage.Resolve(opts...).Namespace, key)

	val, err := s.client.Get(ctx, k).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get key %s: %w", k, err)
	}

	var se storedEntry
	if err := json.Unmarshal(val, &se); err != nil {
		return nil, fmt.Errorf("failed to unmarshal stored entry: %w", err)
	}
	e := &storage.Entry{Payload: se.Payload, StoredAt: se.StoredAt, ExpiresAt: se.ExpiresAt}
	if e.IsExpired() {
		s.client.Del(ctx, k)
		return nil, nil
	}
	return e, nil
}

// Set stores payload under key. A TTL is enforced by Redis as well as
// recorded in the entry.
func (s *Storage) Set(ctx context.Context, key string, payload []byte, opts ...storage.Option) error {
	o := storage.Resolve(opts...)
	k := s.buildKey(o.Namespace, key)

	now := time.Now()
	se := storedEntry{Payload: payload, StoredAt: now}
	var ttl time.Duration
	if o.TTL != nil {
		exp := now.Add(*o.TTL)
		se.ExpiresAt = &exp
		ttl = *o.TTL
	}

	b, err := json.Marshal(se)
	if err != nil {
		return fmt.Errorf("failed to marshal entry: %w", err)
	}
	if err := s.client.Set(ctx, k, b, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set key %s: %w", k, err)
	}
	return nil
}

// Delete removes one key or every key of a namespace.
func (s *Storage) Delete(ctx context.Context, opts ...storage.Option) error {
	o := storage.Resolve(opts...)

	if o.Key != nil {
		k := s.buildKey(o.Namespace, *o.Key)
		if err := s.client.Del(ctx, k).Err(); err != nil {
			return fmt.Errorf("failed to delete key %s: %w", k, err)
		}
		return nil
	}

	pattern := s.buildKey(o.Namespace, "*")
	keys, err := s.scanKeys(ctx, pattern)
	if err != nil {
		return fmt.Errorf("failed to scan keys for pattern %s: %w", pattern, err)
	}
	if len(keys) > 0 {
		if err := s.client.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("failed to delete keys: %w", err)
		}
	}
	return nil
}

// Close closes the Redis client.
func (s *Storage) Close() error {
	return s.client.Close()
}

func (s *Storage) buildKey(ns storage.Namespace, key string) string {
	return s.keyPrefix + storage.Prefix(ns) + key
}

func (s *Storage) scanKeys(ctx context.Context, pattern string) ([]string, error) {
	var keys []string
	var cursor uint64
	for {
		batch, next, err := s.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return nil, err
		}
		keys = append(keys, batch...)
		cursor = next
		if cursor == 0 {
			return keys, nil
		}
	}
}

var _ storage.Storage = (*Storage)(nil)
