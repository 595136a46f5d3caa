package commands

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tinywideclouds/go-local-notifications/internal/platform/console"
	"github.com/tinywideclouds/go-local-notifications/internal/platform/local"
	"github.com/tinywideclouds/go-local-notifications/internal/platform/prompt"
	"github.com/tinywideclouds/go-local-notifications/internal/storage/memory"
	"github.com/tinywideclouds/go-local-notifications/pkg/notification"
	"github.com/tinywideclouds/go-local-notifications/pkg/notifier"
	"github.com/urfave/cli/v3"
)

// syncBuffer collects what the center delivers from its own goroutines.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type testEnv struct {
	app   *App
	store *memory.Store
	out   *bytes.Buffer
	shown *syncBuffer
}

func (e *testEnv) eventuallyShown(t *testing.T, text string) {
	t.Helper()
	require.Eventually(t, func() bool { return strings.Contains(e.shown.String(), text) }, 2*time.Second, 10*time.Millisecond)
}

func newTestEnv(t *testing.T, status notification.AuthorizationStatus, answer bool) *testEnv {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	store := memory.NewStore()
	require.NoError(t, store.SaveSettings(context.Background(), notification.Settings{AuthorizationStatus: status}))

	shown := &syncBuffer{}
	center := local.NewCenter(store, console.NewDeliverer("Test", shown), prompt.Static(answer), logger, local.Options{})
	t.Cleanup(center.Stop)

	out := &bytes.Buffer{}
	return &testEnv{
		app: &App{
			Center:       center,
			Notifier:     notifier.New(center, logger),
			Out:          out,
			Clock:        clockwork.NewRealClock(),
			PollInterval: 10 * time.Millisecond,
		},
		store: store,
		out:   out,
		shown: shown,
	}
}

func (e *testEnv) run(t *testing.T, args ...string) error {
	t.Helper()
	return e.runContext(context.Background(), t, args...)
}

func (e *testEnv) runContext(ctx context.Context, t *testing.T, args ...string) error {
	t.Helper()
	e.out.Reset()
	root := &cli.Command{Name: "notifyctl", Writer: io.Discard}
	NewDemoCmd(e.app).Register(root)
	NewAuthorizationCmd(e.app).Register(root)
	NewScheduleCmd(e.app).Register(root)
	NewManageCmd(e.app).Register(root)
	NewWatchCmd(e.app).Register(root)
	return root.Run(ctx, append([]string{"notifyctl"}, args...))
}

func (e *testEnv) pending(t *testing.T) []notification.Pending {
	t.Helper()
	pending, err := e.store.ListPending(context.Background())
	require.NoError(t, err)
	return pending
}

func TestAuthorizationCommands(t *testing.T) {
	env := newTestEnv(t, notification.StatusNotDetermined, true)

	require.NoError(t, env.run(t, "status"))
	assert.Equal(t, "notDetermined\n", env.out.String())

	require.NoError(t, env.run(t, "authorize"))
	assert.Contains(t, env.out.String(), "granted")

	require.NoError(t, env.run(t, "status"))
	assert.Equal(t, "authorized\n", env.out.String())
}

func TestScheduleCommand(t *testing.T) {
	t.Run("denied is refused with a hint", func(t *testing.T) {
		env := newTestEnv(t, notification.StatusDenied, false)

		err := env.run(t, "schedule", "--title", "t", "--id", "b")
		require.Error(t, err)
		assert.ErrorIs(t, err, notification.ErrNotAuthorized)
		assert.Contains(t, err.Error(), "notifyctl authorize")
		assert.Empty(t, env.pending(t))
	})

	t.Run("authorized schedules", func(t *testing.T) {
		env := newTestEnv(t, notification.StatusAuthorized, true)

		require.NoError(t, env.run(t, "schedule", "--title", "hello", "--body", "world", "--after", "1m", "--id", "a"))
		assert.Equal(t, "a\n", env.out.String())

		pending := env.pending(t)
		require.Len(t, pending, 1)
		assert.Equal(t, "hello", pending[0].Request.Content.Title)
		assert.Equal(t, time.Minute, pending[0].Request.Trigger.DeliverAfter)
	})

	t.Run("wait blocks until delivery", func(t *testing.T) {
		env := newTestEnv(t, notification.StatusAuthorized, true)

		require.NoError(t, env.run(t, "schedule", "--title", "soon", "--after", "0s", "--id", "s", "--wait"))
		assert.Contains(t, env.out.String(), "Delivered s")
		assert.Empty(t, env.pending(t))
		env.eventuallyShown(t, "soon")
	})
}

func TestManageCommands(t *testing.T) {
	env := newTestEnv(t, notification.StatusAuthorized, true)

	require.NoError(t, env.run(t, "schedule", "--title", "one", "--after", "1h", "--id", "a"))
	require.NoError(t, env.run(t, "schedule", "--title", "two", "--after", "2h", "--id", "b"))

	require.NoError(t, env.run(t, "pending"))
	assert.Contains(t, env.out.String(), "one")
	assert.Contains(t, env.out.String(), "two")

	require.NoError(t, env.run(t, "cancel", "unknown"))
	assert.Len(t, env.pending(t), 2)

	require.NoError(t, env.run(t, "cancel", "a"))
	require.Len(t, env.pending(t), 1)

	assert.Error(t, env.run(t, "cancel"))

	require.NoError(t, env.run(t, "cancel-all"))
	assert.Empty(t, env.pending(t))

	require.NoError(t, env.run(t, "pending"))
	assert.Contains(t, env.out.String(), "No pending notifications")

	require.NoError(t, env.run(t, "badge"))
	assert.Equal(t, "1\n", env.out.String())

	require.NoError(t, env.run(t, "reset-badge"))
	require.NoError(t, env.run(t, "badge"))
	assert.Equal(t, "0\n", env.out.String())
}

func TestDemoCommand(t *testing.T) {
	t.Run("prompts, resets and schedules", func(t *testing.T) {
		env := newTestEnv(t, notification.StatusNotDetermined, true)
		require.NoError(t, env.store.SaveBadge(context.Background(), 9))

		require.NoError(t, env.run(t, "demo", "--no-wait"))

		out := env.out.String()
		assert.Contains(t, out, "permission granted")
		assert.Contains(t, out, "Badge reset")
		assert.Contains(t, out, "Scheduled \"Event Happened!\"")

		pending := env.pending(t)
		require.Len(t, pending, 1)
		assert.Equal(t, "Event Happened!", pending[0].Request.Content.Title)
		assert.Contains(t, pending[0].Request.Content.Body, "Something important occurred at")
		assert.Equal(t, 5*time.Second, pending[0].Request.Trigger.DeliverAfter)

		badge, err := env.store.LoadBadge(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, badge)
	})

	t.Run("denied schedules nothing", func(t *testing.T) {
		env := newTestEnv(t, notification.StatusNotDetermined, false)

		require.NoError(t, env.run(t, "demo", "--no-wait"))
		assert.Contains(t, env.out.String(), "denied")
		assert.Empty(t, env.pending(t))
	})

	t.Run("waits for delivery", func(t *testing.T) {
		env := newTestEnv(t, notification.StatusAuthorized, true)

		require.NoError(t, env.run(t, "demo", "--after", "1s"))
		assert.Contains(t, env.out.String(), "Delivered")
		env.eventuallyShown(t, "Event Happened!")
	})
}

func TestWaitFired_ContextCancelled(t *testing.T) {
	env := newTestEnv(t, notification.StatusAuthorized, true)
	require.NoError(t, env.run(t, "schedule", "--title", "t", "--after", "1h", "--id", "late"))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	err := waitFired(ctx, env.app.Notifier, "late", clockwork.NewRealClock(), 5*time.Millisecond)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestWatchCommand_PicksUpOtherProcesses(t *testing.T) {
	env := newTestEnv(t, notification.StatusAuthorized, true)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- env.runContext(ctx, t, "watch") }()

	// A separate schedule invocation: its own center on the shared store,
	// stopped as soon as the request is stored.
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	other := local.NewCenter(env.store, console.NewDeliverer("Test", io.Discard), prompt.Static(true), logger, local.Options{})
	err := other.Add(context.Background(), notification.Request{
		Identifier: "elsewhere",
		Content:    notification.Content{Title: "Scheduled elsewhere", Body: "b"},
		Trigger:    notification.Trigger{DeliverAfter: 200 * time.Millisecond},
	})
	require.NoError(t, err)
	other.Stop()

	env.eventuallyShown(t, "Scheduled elsewhere")
	assert.Empty(t, env.pending(t))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not return after cancel")
	}
}
