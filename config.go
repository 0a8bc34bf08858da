package mercapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ggoodman/mercapi-go/storage"
	"github.com/ggoodman/mercapi-go/storage/memory"
	redisstore "github.com/ggoodman/mercapi-go/storage/redis"
	sqlitestore "github.com/ggoodman/mercapi-go/storage/sqlite"
	"github.com/joeshaw/envdecode"
)

// Cache backends selectable through Config.Cache.
const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheRedis  = "redis"
	CacheSQLite = "sqlite"
)

// Config is the environment-driven client configuration.
type Config struct {
	// BaseURL of the API. ENV: MERCAPI_BASE_URL
	BaseURL string `env:"MERCAPI_BASE_URL,default=https://api.mercari.jp"`
	// UserAgent override. ENV: MERCAPI_USER_AGENT
	UserAgent string `env:"MERCAPI_USER_AGENT"`
	// Timeout of a single request. ENV: MERCAPI_TIMEOUT
	Timeout time.Duration `env:"MERCAPI_TIMEOUT,default=30s"`

	// Cache backend: none, memory, redis or sqlite. ENV: MERCAPI_CACHE
	Cache string `env:"MERCAPI_CACHE,default=memory"`
	// CacheTTL of cached payloads. ENV: MERCAPI_CACHE_TTL
	CacheTTL time.Duration `env:"MERCAPI_CACHE_TTL,default=5m"`
	// CacheSize bounds the memory backend. ENV: MERCAPI_CACHE_SIZE
	CacheSize int `env:"MERCAPI_CACHE_SIZE,default=1024"`
	// SQLitePath of the sqlite backend. ENV: MERCAPI_SQLITE_PATH
	SQLitePath string `env:"MERCAPI_SQLITE_PATH,default=mercapi-cache.db"`

	Redis redisstore.Config
}

// ConfigFromEnv decodes a Config from the environment.
func ConfigFromEnv() (Config, error) {
	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

// NewFromEnv is NewFromConfig with ConfigFromEnv.
func NewFromEnv(ctx context.Context, opts ...Option) (*Client, error) {
	cfg, err := ConfigFromEnv()
	if err != nil {
		return nil, err
	}
	return NewFromConfig(ctx, cfg, opts...)
}

// NewFromConfig opens the configured cache and returns a Client using it.
// opts are applied after the configuration; when they supply a storage with
// WithStorage, no cache is opened from cfg. Close the client to release the
// cache.
func NewFromConfig(ctx context.Context, cfg Config, opts ...Option) (*Client, error) {
	var cache storage.Storage
	if !suppliesStorage(opts) {
		var err error
		if cache, err = openCache(ctx, cfg); err != nil {
			return nil, err
		}
	}

	base := []Option{WithUserAgent(cfg.UserAgent)}
	if cfg.BaseURL != "" {
		base = append(base, WithEndpoints(EndpointsFor(cfg.BaseURL)))
	}
	if cfg.Timeout > 0 {
		base = append(base, WithHTTPClient(&http.Client{Timeout: cfg.Timeout}))
	}
	if cache != nil {
		base = append(base, WithStorage(cache, cfg.CacheTTL))
	}

	c, err := New(append(base, opts...)...)
	if err != nil {
		if cache != nil {
			_ = cache.Close()
		}
		return nil, err
	}
	c.ownsCache = cache != nil && c.cache == cache
	return c, nil
}

func suppliesStorage(opts []Option) bool {
	var c Client
	for _, opt := range opts {
		opt(&c)
	}
	return c.cache != nil
}

func openCache(ctx context.Context, cfg Config) (storage.Storage, error) {
	switch cfg.Cache {
	case "", CacheNone:
		return nil, nil
	case CacheMemory:
		size := cfg.CacheSize
		if size <= 0 {
			size = 1024
		}
		return memory.New(size, time.Minute)
	case CacheRedis:
		return redisstore.Dial(ctx, cfg.Redis)
	case CacheSQLite:
		return sqlitestore.Open(ctx, cfg.SQLitePath)
	}
	return nil, fmt.Errorf("unknown cache backend %q", cfg.Cache)
}
