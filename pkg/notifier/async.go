package notifier

import (
	"context"

	"github.com/tinywideclouds/go-local-notifications/pkg/executor"
	"github.com/tinywideclouds/go-local-notifications/pkg/notification"
)

// Async exposes the Notifier through completion callbacks. The platform call
// runs on its own goroutine and every callback is posted to exec, so UI code
// can touch its own state from inside the callback.
type Async struct {
	n    *Notifier
	exec executor.Executor
}

func NewAsync(n *Notifier, exec executor.Executor) *Async {
	return &Async{n: n, exec: exec}
}

func (a *Async) RequestAuthorization(ctx context.Context, completion func(granted bool, err error)) {
	go func() {
		granted, err := a.n.RequestAuthorization(ctx)
		a.post(func() {
			if completion != nil {
				completion(granted, err)
			}
		})
	}()
}

func (a *Async) CheckAuthorizationStatus(ctx context.Context, completion func(status notification.AuthorizationStatus, err error)) {
	go func() {
		status, err := a.n.AuthorizationStatus(ctx)
		a.post(func() {
			if completion != nil {
				completion(status, err)
			}
		})
	}()
}

// Schedule runs Notifier.Schedule off the caller's goroutine. completion may
// be nil for fire-and-forget use.
func (a *Async) Schedule(ctx context.Context, title, body string, completion func(identifier string, err error), opts ...ScheduleOption) {
	go func() {
		id, err := a.n.Schedule(ctx, title, body, opts...)
		a.post(func() {
			if completion != nil {
				completion(id, err)
			}
		})
	}()
}

func (a *Async) CancelPending(ctx context.Context, identifier string, completion func(err error)) {
	go func() {
		err := a.n.CancelPending(ctx, identifier)
		a.post(func() {
			if completion != nil {
				completion(err)
			}
		})
	}()
}

func (a *Async) CancelAllPending(ctx context.Context, completion func(err error)) {
	go func() {
		err := a.n.CancelAllPending(ctx)
		a.post(func() {
			if completion != nil {
				completion(err)
			}
		})
	}()
}

// ResetBadge runs entirely on the executor since the badge is on-screen state.
func (a *Async) ResetBadge(ctx context.Context, completion func(err error)) {
	a.post(func() {
		err := a.n.ResetBadge(ctx)
		if completion != nil {
			completion(err)
		}
	})
}

func (a *Async) post(fn func()) {
	a.exec.Post(fn)
}
