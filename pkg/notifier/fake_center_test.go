package notifier_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/tinywideclouds/go-local-notifications/pkg/notification"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeCenter records every call so tests can assert on submissions.
type fakeCenter struct {
	mu sync.Mutex

	status      notification.AuthorizationStatus
	answer      bool
	authErr     error
	settingsErr error
	addErr      error
	badgeErr    error

	authRequests int
	submitted    []notification.Request
	pending      map[string]notification.Pending
	delivered    []notification.Delivered
	badge        int
	badgeWrites  []int
}

func newFakeCenter(status notification.AuthorizationStatus) *fakeCenter {
	return &fakeCenter{status: status, pending: make(map[string]notification.Pending)}
}

func (f *fakeCenter) RequestAuthorization(_ context.Context, _ notification.AuthorizationOptions) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.authRequests++
	if f.authErr != nil {
		return false, f.authErr
	}
	if f.status == notification.StatusNotDetermined {
		if f.answer {
			f.status = notification.StatusAuthorized
		} else {
			f.status = notification.StatusDenied
		}
	}
	return f.status == notification.StatusAuthorized, nil
}

func (f *fakeCenter) Settings(_ context.Context) (notification.Settings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.settingsErr != nil {
		return notification.Settings{}, f.settingsErr
	}
	return notification.Settings{AuthorizationStatus: f.status}, nil
}

func (f *fakeCenter) Add(_ context.Context, req notification.Request) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitted = append(f.submitted, req)
	if f.addErr != nil {
		return f.addErr
	}
	now := time.Now()
	f.pending[req.Identifier] = notification.Pending{Request: req, ScheduledAt: now, FireAt: now.Add(req.Trigger.DeliverAfter)}
	return nil
}

func (f *fakeCenter) RemovePending(_ context.Context, ids []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range ids {
		delete(f.pending, id)
	}
	return nil
}

func (f *fakeCenter) RemoveAllPending(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pending = make(map[string]notification.Pending)
	return nil
}

func (f *fakeCenter) Pending(_ context.Context) ([]notification.Pending, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]notification.Pending, 0, len(f.pending))
	for _, p := range f.pending {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeCenter) Delivered(_ context.Context) ([]notification.Delivered, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]notification.Delivered(nil), f.delivered...), nil
}

func (f *fakeCenter) RemoveAllDelivered(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.delivered = nil
	return nil
}

func (f *fakeCenter) BadgeCount(_ context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.badge, nil
}

func (f *fakeCenter) SetBadgeCount(_ context.Context, n int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.badgeErr != nil {
		return f.badgeErr
	}
	f.badge = n
	f.badgeWrites = append(f.badgeWrites, n)
	return nil
}

func (f *fakeCenter) submissions() []notification.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]notification.Request(nil), f.submitted...)
}
