// Package local implements dispatch.Center entirely on this machine: state in
// a dispatch.Store, timers on an injectable clock, alerts via a Deliverer.
package local

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/tinywideclouds/go-local-notifications/pkg/dispatch"
	"github.com/tinywideclouds/go-local-notifications/pkg/notification"
)

// Options tunes a Center.
type Options struct {
	// Clock is the clock used for FireAt, delivery timers and Watch. By
	// default it is the realtime clock; tests pass clockwork.NewFakeClock().
	Clock clockwork.Clock
}

// arming is one armed timer. Its address identifies it, so a fire racing a
// replace or remove can tell it is stale.
type arming struct {
	stop   chan struct{}
	fireAt time.Time
}

// Center is the on-device notification center.
type Center struct {
	store     dispatch.Store
	deliverer dispatch.Deliverer
	prompter  dispatch.Prompter
	clock     clockwork.Clock
	logger    *slog.Logger

	// authMu serializes prompting so the user is asked at most once.
	authMu sync.Mutex

	// mu guards armed and every pending/delivered transition in the store.
	mu    sync.Mutex
	armed map[string]*arming
	wg    sync.WaitGroup
}

var _ dispatch.Center = (*Center)(nil)

// NewCenter wires a center. It does not arm anything until Start or Add.
func NewCenter(store dispatch.Store, deliverer dispatch.Deliverer, prompter dispatch.Prompter, logger *slog.Logger, opts Options) *Center {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	return &Center{
		store:     store,
		deliverer: deliverer,
		prompter:  prompter,
		clock:     opts.Clock,
		logger:    logger.With("component", "LocalCenter"),
		armed:     make(map[string]*arming),
	}
}

// --- Lifecycle ---

// Start arms a timer for every request already in the store. Requests whose
// FireAt has passed fire immediately.
func (c *Center) Start(ctx context.Context) error {
	pending, err := c.store.ListPending(ctx)
	if err != nil {
		return fmt.Errorf("failed to load pending notifications: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	rehydrated := 0
	for _, p := range pending {
		if _, ok := c.armed[p.Request.Identifier]; ok {
			continue
		}
		c.armLocked(p)
		rehydrated++
	}
	c.logger.Info("Local notification center started", "rehydrated", rehydrated)
	return nil
}

// Stop disarms every timer and waits for in-flight deliveries. Pending
// requests stay in the store for the next Start.
func (c *Center) Stop() {
	c.mu.Lock()
	for id, a := range c.armed {
		close(a.stop)
		delete(c.armed, id)
	}
	c.mu.Unlock()

	c.wg.Wait()
	c.logger.Info("Local notification center stopped")
}

// Sync reconciles armed timers with the store. Requests added by another
// process sharing the store are armed, requests it replaced are re-armed at
// their new FireAt, and requests it removed are disarmed.
func (c *Center) Sync(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	pending, err := c.store.ListPending(ctx)
	if err != nil {
		return fmt.Errorf("failed to load pending notifications: %w", err)
	}

	seen := make(map[string]struct{}, len(pending))
	armed, disarmed := 0, 0
	for _, p := range pending {
		id := p.Request.Identifier
		seen[id] = struct{}{}
		if a, ok := c.armed[id]; ok {
			// Stores may keep less than nanosecond precision.
			if a.fireAt.Truncate(time.Millisecond).Equal(p.FireAt.Truncate(time.Millisecond)) {
				continue
			}
			c.disarmLocked(id)
		}
		c.armLocked(p)
		armed++
	}
	for id := range c.armed {
		if _, ok := seen[id]; !ok {
			c.disarmLocked(id)
			disarmed++
		}
	}
	if armed > 0 || disarmed > 0 {
		c.logger.Debug("Pending notifications resynced", "armed", armed, "disarmed", disarmed)
	}
	return nil
}

// Watch calls Sync every interval until ctx is done. A failed Sync is logged
// and retried on the next tick.
func (c *Center) Watch(ctx context.Context, interval time.Duration) {
	ticker := c.clock.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			if err := c.Sync(ctx); err != nil {
				c.logger.Warn("Failed to resync pending notifications", "err", err)
			}
		}
	}
}

// --- Authorization ---

func (c *Center) RequestAuthorization(ctx context.Context, opts notification.AuthorizationOptions) (bool, error) {
	c.authMu.Lock()
	defer c.authMu.Unlock()

	settings, err := c.store.LoadSettings(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to load settings: %w", err)
	}
	if settings.AuthorizationStatus != notification.StatusNotDetermined {
		return settings.AuthorizationStatus == notification.StatusAuthorized, nil
	}

	granted, err := c.prompter.Prompt(ctx, opts)
	if err != nil {
		return false, fmt.Errorf("authorization prompt failed: %w", err)
	}

	settings = notification.Settings{AuthorizationStatus: notification.StatusDenied, Options: opts}
	if granted {
		settings.AuthorizationStatus = notification.StatusAuthorized
	}
	if err := c.store.SaveSettings(ctx, settings); err != nil {
		return false, fmt.Errorf("failed to save settings: %w", err)
	}
	c.logger.Info("Authorization decided", "status", settings.AuthorizationStatus.String())
	return granted, nil
}

func (c *Center) Settings(ctx context.Context) (notification.Settings, error) {
	return c.store.LoadSettings(ctx)
}

// --- Pending ---

func (c *Center) Add(ctx context.Context, req notification.Request) error {
	switch {
	case req.Identifier == "":
		return notification.ErrMissingIdentifier
	case req.Trigger.DeliverAfter <= 0:
		return notification.ErrInvalidTrigger
	case req.Trigger.Repeats:
		return notification.ErrRepeatingUnsupported
	}

	now := c.clock.Now()
	p := notification.Pending{
		Request:     req,
		ScheduledAt: now,
		FireAt:      now.Add(req.Trigger.DeliverAfter),
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.store.PutPending(ctx, p); err != nil {
		return fmt.Errorf("failed to store pending notification: %w", err)
	}
	c.disarmLocked(req.Identifier)
	c.armLocked(p)
	c.logger.Debug("Pending notification added", "identifier", req.Identifier, "fire_at", p.FireAt)
	return nil
}

func (c *Center) RemovePending(ctx context.Context, identifiers []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.store.RemovePending(ctx, identifiers); err != nil {
		return fmt.Errorf("failed to remove pending notifications: %w", err)
	}
	for _, id := range identifiers {
		c.disarmLocked(id)
	}
	return nil
}

func (c *Center) RemoveAllPending(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.store.RemoveAllPending(ctx); err != nil {
		return fmt.Errorf("failed to remove pending notifications: %w", err)
	}
	for id := range c.armed {
		c.disarmLocked(id)
	}
	return nil
}

func (c *Center) Pending(ctx context.Context) ([]notification.Pending, error) {
	return c.store.ListPending(ctx)
}

// --- Delivered ---

func (c *Center) Delivered(ctx context.Context) ([]notification.Delivered, error) {
	return c.store.ListDelivered(ctx)
}

func (c *Center) RemoveAllDelivered(ctx context.Context) error {
	return c.store.RemoveAllDelivered(ctx)
}

// --- Badge ---

func (c *Center) BadgeCount(ctx context.Context) (int, error) {
	return c.store.LoadBadge(ctx)
}

func (c *Center) SetBadgeCount(ctx context.Context, n int) error {
	if n < 0 {
		return fmt.Errorf("badge count must not be negative, got %d", n)
	}
	return c.store.SaveBadge(ctx, n)
}

// --- Timers ---

// armLocked starts the goroutine that fires p. c.mu must be held.
func (c *Center) armLocked(p notification.Pending) {
	id := p.Request.Identifier
	a := &arming{stop: make(chan struct{}), fireAt: p.FireAt}
	c.armed[id] = a

	delay := p.FireAt.Sub(c.clock.Now())
	c.wg.Add(1)
	if delay <= 0 {
		go func() {
			defer c.wg.Done()
			c.fire(id, a)
		}()
		return
	}

	timer := c.clock.NewTimer(delay)
	go func() {
		defer c.wg.Done()
		defer timer.Stop()
		select {
		case <-timer.Chan():
			c.fire(id, a)
		case <-a.stop:
		}
	}()
}

// disarmLocked cancels the timer for id, if any. c.mu must be held.
func (c *Center) disarmLocked(id string) {
	if a, ok := c.armed[id]; ok {
		close(a.stop)
		delete(c.armed, id)
	}
}

// fire moves the request from pending to delivered and renders it. A request
// replaced or removed since a was armed is skipped.
func (c *Center) fire(id string, a *arming) {
	ctx := context.Background()
	log := c.logger.With("identifier", id)

	c.mu.Lock()
	if c.armed[id] != a {
		c.mu.Unlock()
		return
	}
	delete(c.armed, id)

	req, found, err := c.takePendingLocked(ctx, id)
	if err != nil {
		c.mu.Unlock()
		log.Error("Failed to take fired notification from the store", "err", err)
		return
	}
	if !found {
		c.mu.Unlock()
		return
	}

	settings, err := c.store.LoadSettings(ctx)
	if err != nil {
		c.mu.Unlock()
		log.Error("Failed to load settings for delivery", "err", err)
		return
	}
	if settings.AuthorizationStatus != notification.StatusAuthorized {
		c.mu.Unlock()
		log.Info("Notification fired without authorization; dropped", "status", settings.AuthorizationStatus.String())
		return
	}

	delivered := notification.Delivered{Request: req, DeliveredAt: c.clock.Now()}
	if err := c.store.PutDelivered(ctx, delivered); err != nil {
		log.Error("Failed to record delivered notification", "err", err)
	}
	c.mu.Unlock()

	if err := c.deliverer.Deliver(ctx, req); err != nil {
		log.Error("Failed to deliver notification", "err", err)
		return
	}
	log.Info("Notification delivered", "title", req.Content.Title)
}

func (c *Center) takePendingLocked(ctx context.Context, id string) (notification.Request, bool, error) {
	pending, err := c.store.ListPending(ctx)
	if err != nil {
		return notification.Request{}, false, err
	}
	for _, p := range pending {
		if p.Request.Identifier == id {
			if err := c.store.RemovePending(ctx, []string{id}); err != nil {
				return notification.Request{}, false, err
			}
			return p.Request, true, nil
		}
	}
	return notification.Request{}, false, nil
}
