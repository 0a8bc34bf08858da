// Package memory provides an in-process storage.Storage bounded by an LRU
// (github.com/hashicorp/golang-lru/v2) with per-entry TTL.
package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ggoodman/mercapi-go/storage"
	lru "github.com/hashicorp/golang-lru/v2"
)

// Storage implements storage.Storage in memory.
type Storage struct {
	mu    sync.Mutex
	cache *lru.Cache[string, *storage.Entry]
	stop  chan struct{}
	once  sync.Once
}

// New returns a Storage holding at most maxEntries payloads. Expired entries
// are dropped on read and by a background sweep every sweepEvery (disabled
// when zero).
func New(maxEntries int, sweepEvery time.Duration) (*Storage, error) {
	cache, err := lru.New[string, *storage.Entry](maxEntries)
	if err != nil {
		return nil, fmt.Errorf("failed to create LRU cache: %w", err)
	}
	s := &Storage{cache: cache, stop: make(chan struct{})}
	if sweepEvery > 0 {
		go s.sweep(sweepEvery)
	}
	return s, nil
}

// Get returns the entry stored under key, if live.
func (s *Storage) Get(ctx context.Context, key string, opts ...storage.Option) (*storage.Entry, error) {
	k := storage.Prefix(storage.Resolve(opts...).Namespace) + key

	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.cache.Get(k)
	if !ok {
		return nil, nil
	}
	if e.IsExpired() {
		s.cache.Remove(k)
		return nil, nil
	}
	out := *e
	out.Payload = append([]byte(nil), e.Payload...)
	return &out, nil
}

// Set stores a copy of payload under key.
func (s *Storage) Set(ctx context.Context, key string, payload []byte, opts ...storage.Option) error {
	o := storage.Resolve(opts...)
	now := time.Now()
	e := &storage.Entry{
		Payload:  append([]byte(nil), payload...),
		StoredAt: now,
	}
	if o.TTL != nil {
		exp := now.Add(*o.TTL)
		e.ExpiresAt = &exp
	}

	s.mu.Lock()
	s.cache.Add(storage.Prefix(o.Namespace)+key, e)
	s.mu.Unlock()
	return nil
}

// Delete removes one key or a whole namespace.
func (s *Storage) Delete(ctx context.Context, opts ...storage.Option) error {
	o := storage.Resolve(opts...)
	prefix := storage.Prefix(o.Namespace)

	s.mu.Lock()
	defer s.mu.Unlock()
	if o.Key != nil {
		s.cache.Remove(prefix + *o.Key)
		return nil
	}
	// LRU has no prefix iteration.
	for _, k := range s.cache.Keys() {
		if strings.HasPrefix(k, prefix) {
			s.cache.Remove(k)
		}
	}
	return nil
}

// Close purges the cache and stops the sweeper.
func (s *Storage) Close() error {
	s.once.Do(func() { close(s.stop) })
	s.mu.Lock()
	s.cache.Purge()
	s.mu.Unlock()
	return nil
}

// Len reports the number of entries, expired or not.
func (s *Storage) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.Len()
}

func (s *Storage) sweep(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.mu.Lock()
			for _, k := range s.cache.Keys() {
				if e, ok := s.cache.Peek(k); ok && e.IsExpired() {
					s.cache.Remove(k)
				}
			}
			s.mu.Unlock()
		}
	}
}

var _ storage.Storage = (*Storage)(nil)
