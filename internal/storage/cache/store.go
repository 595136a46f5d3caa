// Package cache adds Redis read-aside caching in front of any dispatch.Store.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/tinywideclouds/go-local-notifications/pkg/dispatch"
	"github.com/tinywideclouds/go-local-notifications/pkg/notification"
)

// CacheClient defines the subset of Redis commands we need.
type CacheClient interface {
	// Get returns the value or an error if not found.
	Get(ctx context.Context, key string, dest interface{}) error
	// Set stores the value with a TTL.
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	// Del removes the keys.
	Del(ctx context.Context, keys ...string) error
}

// CachedStore is a decorator that caches settings and the pending list.
// Methods it does not override go straight to the wrapped store.
type CachedStore struct {
	dispatch.Store
	cache  CacheClient
	ttl    time.Duration
	prefix string
}

var _ dispatch.Store = (*CachedStore)(nil)

// NewCachedStore wraps realStore. app namespaces the cache keys.
func NewCachedStore(realStore dispatch.Store, cache CacheClient, ttl time.Duration, app string) *CachedStore {
	return &CachedStore{
		Store:  realStore,
		cache:  cache,
		ttl:    ttl,
		prefix: fmt.Sprintf("notify:center:%s", app),
	}
}

// --- READ PATHS (Read-Aside) ---

func (s *CachedStore) LoadSettings(ctx context.Context) (notification.Settings, error) {
	var cached notification.Settings
	if err := s.cache.Get(ctx, s.settingsKey(), &cached); err == nil {
		return cached, nil
	}

	fresh, err := s.Store.LoadSettings(ctx)
	if err != nil {
		return notification.Settings{}, err
	}
	// Caching is an optimization; if Redis is down we serve from the store.
	_ = s.cache.Set(ctx, s.settingsKey(), fresh, s.ttl)
	return fresh, nil
}

func (s *CachedStore) ListPending(ctx context.Context) ([]notification.Pending, error) {
	var cached []notification.Pending
	if err := s.cache.Get(ctx, s.pendingKey(), &cached); err == nil {
		return cached, nil
	}

	fresh, err := s.Store.ListPending(ctx)
	if err != nil {
		return nil, err
	}
	_ = s.cache.Set(ctx, s.pendingKey(), fresh, s.ttl)
	return fresh, nil
}

// --- WRITE PATHS (Invalidate-on-Write) ---

func (s *CachedStore) SaveSettings(ctx context.Context, settings notification.Settings) error {
	if err := s.Store.SaveSettings(ctx, settings); err != nil {
		return err
	}
	return s.cache.Del(ctx, s.settingsKey())
}

func (s *CachedStore) PutPending(ctx context.Context, p notification.Pending) error {
	if err := s.Store.PutPending(ctx, p); err != nil {
		return err
	}
	return s.cache.Del(ctx, s.pendingKey())
}

// RemovePending must clear the cache even for unknown identifiers, so a
// cancelled request never reappears from a stale list.
func (s *CachedStore) RemovePending(ctx context.Context, identifiers []string) error {
	if err := s.Store.RemovePending(ctx, identifiers); err != nil {
		return err
	}
	return s.cache.Del(ctx, s.pendingKey())
}

func (s *CachedStore) RemoveAllPending(ctx context.Context) error {
	if err := s.Store.RemoveAllPending(ctx); err != nil {
		return err
	}
	return s.cache.Del(ctx, s.pendingKey())
}

// --- Helpers ---

func (s *CachedStore) settingsKey() string { return s.prefix + ":settings" }
func (s *CachedStore) pendingKey() string  { return s.prefix + ":pending" }
