// Package storage defines the cache the API client keeps raw response
// payloads in. Backends live in the memory and redis subpackages.
package storage

import (
	"context"
	"time"
)

// Storage caches response payloads by key.
type Storage interface {
	// Get returns the entry stored under key, or nil if it does not exist or
	// has expired. An error is returned only for backend failures.
	Get(ctx context.Context, key string, opts ...Option) (*Entry, error)

	// Set stores payload under key.
	Set(ctx context.Context, key string, payload []byte, opts ...Option) error

	// Delete removes the key given with WithKey, or the whole namespace when
	// no key is given.
	Delete(ctx context.Context, opts ...Option) error

	// Close releases backend resources.
	Close() error
}

// Entry is a cached payload.
type Entry struct {
	Payload   []byte
	StoredAt  time.Time
	ExpiresAt *time.Time // nil = no expiration
}

// IsExpired reports whether the entry is past its expiration.
func (e *Entry) IsExpired() bool {
	return e.ExpiresAt != nil && time.Now().After(*e.ExpiresAt)
}

// Option configures a storage operation.
type Option func(*Options)

// Options holds the resolved options of one operation.
type Options struct {
	Namespace Namespace      // nil = global
	Key       *string        // Delete only
	TTL       *time.Duration // Set only
}

// Resolve applies opts to a fresh Options value.
func Resolve(opts ...Option) *Options {
	o := &Options{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Namespace partitions keys. Only types in this package implement it.
type Namespace interface {
	prefix() string
}

// EndpointNamespace groups payloads fetched from one API endpoint.
type EndpointNamespace struct {
	Endpoint string
}

func (n EndpointNamespace) prefix() string { return "endpoint:" + n.Endpoint + ":" }

// Prefix returns the key prefix of ns; nil maps to the global namespace.
func Prefix(ns Namespace) string {
	if ns == nil {
		return "global:"
	}
	return ns.prefix()
}

// WithEndpoint scopes the operation to the namespace of endpoint.
func WithEndpoint(endpoint string) Option {
	return func(o *Options) {
		o.Namespace = EndpointNamespace{Endpoint: endpoint}
	}
}

// WithKey names the key removed by Delete.
func WithKey(key string) Option {
	return func(o *Options) {
		o.Key = &key
	}
}

// WithTTL expires the stored entry after ttl.
func WithTTL(ttl time.Duration) Option {
	return func(o *Options) {
		o.TTL = &ttl
	}
}
