// Package notifier is the application-facing facade over a platform
// notification center. It enforces the authorization gate before anything is
// scheduled and returns structured results for every operation.
package notifier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/tinywideclouds/go-local-notifications/pkg/dispatch"
	"github.com/tinywideclouds/go-local-notifications/pkg/notification"
)

// DefaultDelay is used when Schedule is called without After.
const DefaultDelay = time.Second

// IDGenerator produces identifiers for requests scheduled without one.
type IDGenerator func() string

// Notifier is the long-lived notification service object. Build one at start
// up and hand it to everything that needs to notify the user.
type Notifier struct {
	center   dispatch.Center
	newID    IDGenerator
	badge    notification.BadgePolicy
	authOpts notification.AuthorizationOptions
	logger   *slog.Logger
}

// Option configures a Notifier.
type Option func(*Notifier)

// WithIDGenerator replaces the default UUID generator.
func WithIDGenerator(gen IDGenerator) Option {
	return func(n *Notifier) { n.newID = gen }
}

// WithBadgePolicy sets what a successful schedule does to the badge.
func WithBadgePolicy(p notification.BadgePolicy) Option {
	return func(n *Notifier) { n.badge = p }
}

// WithAuthorizationOptions sets the capabilities RequestAuthorization asks for.
func WithAuthorizationOptions(opts notification.AuthorizationOptions) Option {
	return func(n *Notifier) { n.authOpts = opts }
}

// New creates the facade over center.
func New(center dispatch.Center, logger *slog.Logger, opts ...Option) *Notifier {
	n := &Notifier{
		center:   center,
		newID:    uuid.NewString,
		badge:    notification.DefaultBadgePolicy(),
		authOpts: notification.DefaultAuthorizationOptions(),
		logger:   logger.With("component", "Notifier"),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// --- Authorization ---

// RequestAuthorization asks the center for permission to alert, play sounds
// and badge. If the user already answered, the stored answer comes back and
// no prompt is shown.
func (n *Notifier) RequestAuthorization(ctx context.Context) (bool, error) {
	granted, err := n.center.RequestAuthorization(ctx, n.authOpts)
	switch {
	case err != nil:
		n.logger.Error("Error requesting notification authorization", "err", err)
	case granted:
		n.logger.Info("Notification permission granted.")
	default:
		n.logger.Info("Notification permission denied.")
	}
	return granted, err
}

// AuthorizationStatus returns the current decision without side effects.
func (n *Notifier) AuthorizationStatus(ctx context.Context) (notification.AuthorizationStatus, error) {
	settings, err := n.center.Settings(ctx)
	if err != nil {
		return notification.StatusNotDetermined, err
	}
	return settings.AuthorizationStatus, nil
}

// --- Scheduling ---

type scheduleOptions struct {
	after      time.Duration
	identifier string
}

// ScheduleOption adjusts a single Schedule call.
type ScheduleOption func(*scheduleOptions)

// After delays delivery by d. Values under one second are raised to one second.
func After(d time.Duration) ScheduleOption {
	return func(o *scheduleOptions) { o.after = d }
}

// WithIdentifier sets the request identifier instead of generating one.
func WithIdentifier(id string) ScheduleOption {
	return func(o *scheduleOptions) { o.identifier = id }
}

// Schedule submits a one-shot local notification and returns its identifier.
//
// Nothing is submitted unless the center reports StatusAuthorized; in that
// case an *notification.AuthorizationError is returned. A rejection by the
// center comes back as *notification.SchedulingError; a failed status query
// is returned wrapped as is.
func (n *Notifier) Schedule(ctx context.Context, title, body string, opts ...ScheduleOption) (string, error) {
	o := scheduleOptions{after: DefaultDelay}
	for _, opt := range opts {
		opt(&o)
	}
	if o.identifier == "" {
		o.identifier = n.newID()
	}
	log := n.logger.With("identifier", o.identifier)

	// 1. Gate
	status, err := n.AuthorizationStatus(ctx)
	if err != nil {
		log.Error("Cannot schedule notification: status query failed", "err", err)
		return "", fmt.Errorf("failed to query authorization status: %w", err)
	}
	if status != notification.StatusAuthorized {
		log.Warn("Cannot schedule notification: Not authorized.", "status", status.String())
		return "", &notification.AuthorizationError{Status: status}
	}

	// 2. Badge
	n.applyBadgePolicy(ctx, log)

	// 3. Request
	req := notification.Request{
		Identifier: o.identifier,
		Content: notification.Content{
			Title: title,
			Body:  body,
			Sound: true,
		},
		Trigger: notification.Trigger{
			DeliverAfter: notification.ClampDelay(o.after),
			Repeats:      false,
		},
	}

	// 4. Submit
	if err := n.center.Add(ctx, req); err != nil {
		log.Error("Error scheduling notification", "err", err)
		return "", &notification.SchedulingError{Identifier: o.identifier, Err: err}
	}
	log.Info("Notification scheduled successfully", "title", title, "deliver_after", req.Trigger.DeliverAfter.String())
	return o.identifier, nil
}

// applyBadgePolicy is best effort; failures are logged and scheduling goes on.
func (n *Notifier) applyBadgePolicy(ctx context.Context, log *slog.Logger) {
	current := 0
	if n.badge.NeedsCurrent() {
		var err error
		if current, err = n.center.BadgeCount(ctx); err != nil {
			log.Warn("Failed to read badge count", "err", err)
			return
		}
	}
	next, ok := n.badge.Next(current)
	if !ok {
		return
	}
	if err := n.center.SetBadgeCount(ctx, next); err != nil {
		log.Warn("Failed to update badge count", "policy", n.badge.String(), "err", err)
	}
}

// --- Managing ---

// CancelPending removes one pending request. Unknown identifiers are a no-op.
func (n *Notifier) CancelPending(ctx context.Context, identifier string) error {
	if err := n.center.RemovePending(ctx, []string{identifier}); err != nil {
		n.logger.Error("Failed to cancel pending notification", "identifier", identifier, "err", err)
		return &notification.RemovalError{Identifiers: []string{identifier}, Err: err}
	}
	n.logger.Info("Cancelled pending notification", "identifier", identifier)
	return nil
}

// CancelAllPending removes every pending request.
func (n *Notifier) CancelAllPending(ctx context.Context) error {
	if err := n.center.RemoveAllPending(ctx); err != nil {
		n.logger.Error("Failed to cancel pending notifications", "err", err)
		return &notification.RemovalError{Err: err}
	}
	n.logger.Info("Cancelled all pending notifications.")
	return nil
}

// ResetBadge sets the badge counter to zero.
func (n *Notifier) ResetBadge(ctx context.Context) error {
	if err := n.center.SetBadgeCount(ctx, 0); err != nil {
		n.logger.Error("Failed to reset badge count", "err", err)
		return err
	}
	return nil
}

func (n *Notifier) BadgeCount(ctx context.Context) (int, error) {
	return n.center.BadgeCount(ctx)
}

func (n *Notifier) Pending(ctx context.Context) ([]notification.Pending, error) {
	return n.center.Pending(ctx)
}

func (n *Notifier) Delivered(ctx context.Context) ([]notification.Delivered, error) {
	return n.center.Delivered(ctx)
}

// RemoveAllDelivered clears the delivered list, e.g. alongside ResetBadge.
func (n *Notifier) RemoveAllDelivered(ctx context.Context) error {
	if err := n.center.RemoveAllDelivered(ctx); err != nil {
		n.logger.Error("Failed to remove delivered notifications", "err", err)
		return &notification.RemovalError{Err: err}
	}
	return nil
}

// IsNotAuthorized reports whether err came from the authorization gate.
func IsNotAuthorized(err error) bool {
	return errors.Is(err, notification.ErrNotAuthorized)
}
