// Package memory provides a process-local dispatch.Store.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/tinywideclouds/go-local-notifications/pkg/dispatch"
	"github.com/tinywideclouds/go-local-notifications/pkg/notification"
)

// Store keeps center state in maps. Everything is lost with the process.
type Store struct {
	mu        sync.RWMutex
	settings  notification.Settings
	badge     int
	pending   map[string]notification.Pending
	delivered []notification.Delivered
}

var _ dispatch.Store = (*Store)(nil)

func NewStore() *Store {
	return &Store{pending: make(map[string]notification.Pending)}
}

func (s *Store) LoadSettings(_ context.Context) (notification.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings, nil
}

func (s *Store) SaveSettings(_ context.Context, settings notification.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = settings
	return nil
}

func (s *Store) LoadBadge(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.badge, nil
}

func (s *Store) SaveBadge(_ context.Context, n int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.badge = n
	return nil
}

func (s *Store) PutPending(_ context.Context, p notification.Pending) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[p.Request.Identifier] = p
	return nil
}

func (s *Store) RemovePending(_ context.Context, identifiers []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range identifiers {
		delete(s.pending, id)
	}
	return nil
}

func (s *Store) RemoveAllPending(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = make(map[string]notification.Pending)
	return nil
}

func (s *Store) ListPending(_ context.Context) ([]notification.Pending, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]notification.Pending, 0, len(s.pending))
	for _, p := range s.pending {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].FireAt.Equal(out[j].FireAt) {
			return out[i].Request.Identifier < out[j].Request.Identifier
		}
		return out[i].FireAt.Before(out[j].FireAt)
	})
	return out, nil
}

func (s *Store) PutDelivered(_ context.Context, d notification.Delivered) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delivered = append(s.delivered, d)
	return nil
}

func (s *Store) ListDelivered(_ context.Context) ([]notification.Delivered, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := append([]notification.Delivered(nil), s.delivered...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].DeliveredAt.Before(out[j].DeliveredAt) })
	return out, nil
}

func (s *Store) RemoveAllDelivered(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delivered = nil
	return nil
}
