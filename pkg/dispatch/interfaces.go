// Package dispatch defines the contracts between the notifier facade and the
// platform that actually stores, fires and renders local notifications.
package dispatch

import (
	"context"

	"github.com/tinywideclouds/go-local-notifications/pkg/notification"
)

// Center is the platform notification service. It owns the authorization
// decision, the pending and delivered sets and the badge counter.
type Center interface {
	// RequestAuthorization asks the user once. Later calls return the
	// recorded decision without prompting again.
	RequestAuthorization(ctx context.Context, opts notification.AuthorizationOptions) (bool, error)
	Settings(ctx context.Context) (notification.Settings, error)

	// Add accepts a request for later delivery. A request with an identifier
	// that is already pending replaces it.
	Add(ctx context.Context, req notification.Request) error
	// RemovePending drops not-yet-fired requests. Unknown identifiers are ignored.
	RemovePending(ctx context.Context, identifiers []string) error
	RemoveAllPending(ctx context.Context) error
	Pending(ctx context.Context) ([]notification.Pending, error)

	Delivered(ctx context.Context) ([]notification.Delivered, error)
	RemoveAllDelivered(ctx context.Context) error

	BadgeCount(ctx context.Context) (int, error)
	SetBadgeCount(ctx context.Context, n int) error
}

// Store persists the center's state.
type Store interface {
	LoadSettings(ctx context.Context) (notification.Settings, error)
	SaveSettings(ctx context.Context, settings notification.Settings) error

	LoadBadge(ctx context.Context) (int, error)
	SaveBadge(ctx context.Context, n int) error

	// PutPending upserts by request identifier.
	PutPending(ctx context.Context, p notification.Pending) error
	// RemovePending deletes the given identifiers; missing ones are not an error.
	RemovePending(ctx context.Context, identifiers []string) error
	RemoveAllPending(ctx context.Context) error
	// ListPending returns pending requests ordered by FireAt.
	ListPending(ctx context.Context) ([]notification.Pending, error)

	PutDelivered(ctx context.Context, d notification.Delivered) error
	// ListDelivered returns delivered requests ordered by DeliveredAt.
	ListDelivered(ctx context.Context) ([]notification.Delivered, error)
	RemoveAllDelivered(ctx context.Context) error
}

// Deliverer renders a fired notification to the user.
type Deliverer interface {
	Deliver(ctx context.Context, req notification.Request) error
}

// Prompter asks the user whether the application may present notifications.
type Prompter interface {
	Prompt(ctx context.Context, opts notification.AuthorizationOptions) (bool, error)
}
