package notifier_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tinywideclouds/go-local-notifications/pkg/notification"
	"github.com/tinywideclouds/go-local-notifications/pkg/notifier"
)

func fixedID(id string) notifier.Option {
	return notifier.WithIDGenerator(func() string { return id })
}

func TestSchedule_ClampsDelay(t *testing.T) {
	ctx := context.Background()
	for _, after := range []time.Duration{-10 * time.Second, 0, 300 * time.Millisecond} {
		center := newFakeCenter(notification.StatusAuthorized)
		n := notifier.New(center, newTestLogger(), fixedID("clamped"))

		_, err := n.Schedule(ctx, "t", "b", notifier.After(after))
		require.NoError(t, err)

		subs := center.submissions()
		require.Len(t, subs, 1)
		assert.Equal(t, time.Second, subs[0].Trigger.DeliverAfter, "after=%s", after)
		assert.False(t, subs[0].Trigger.Repeats)
	}
}

func TestSchedule_DefaultsToOneSecond(t *testing.T) {
	center := newFakeCenter(notification.StatusAuthorized)
	n := notifier.New(center, newTestLogger(), fixedID("x"))

	_, err := n.Schedule(context.Background(), "t", "b")
	require.NoError(t, err)
	assert.Equal(t, time.Second, center.submissions()[0].Trigger.DeliverAfter)
}

func TestSchedule_AuthorizationGate(t *testing.T) {
	for _, status := range []notification.AuthorizationStatus{notification.StatusDenied, notification.StatusNotDetermined} {
		t.Run(status.String(), func(t *testing.T) {
			center := newFakeCenter(status)
			n := notifier.New(center, newTestLogger())

			id, err := n.Schedule(context.Background(), "t", "b", notifier.WithIdentifier("b"))

			require.Error(t, err)
			assert.Empty(t, id)
			assert.True(t, notifier.IsNotAuthorized(err))
			var authErr *notification.AuthorizationError
			require.ErrorAs(t, err, &authErr)
			assert.Equal(t, status, authErr.Status)

			assert.Empty(t, center.submissions(), "nothing may be submitted without authorization")
			assert.Empty(t, center.badgeWrites, "badge untouched when gated")
		})
	}
}

func TestSchedule_AuthorizeThenSchedule(t *testing.T) {
	ctx := context.Background()
	center := newFakeCenter(notification.StatusNotDetermined)
	center.answer = true
	n := notifier.New(center, newTestLogger())

	granted, err := n.RequestAuthorization(ctx)
	require.NoError(t, err)
	require.True(t, granted)

	id, err := n.Schedule(ctx, "Event Happened!", "body", notifier.WithIdentifier("a"), notifier.After(5*time.Second))
	require.NoError(t, err)
	assert.Equal(t, "a", id)

	pending, err := n.Pending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "a", pending[0].Request.Identifier)
	assert.GreaterOrEqual(t, pending[0].Request.Trigger.DeliverAfter, time.Second)
	assert.Equal(t, 5*time.Second, pending[0].Request.Trigger.DeliverAfter)
}

func TestSchedule_GeneratesIdentifier(t *testing.T) {
	center := newFakeCenter(notification.StatusAuthorized)
	n := notifier.New(center, newTestLogger(), fixedID("generated-1"))

	id, err := n.Schedule(context.Background(), "t", "b")
	require.NoError(t, err)
	assert.Equal(t, "generated-1", id)
	assert.Equal(t, "generated-1", center.submissions()[0].Identifier)
}

func TestSchedule_DefaultGeneratorIsUnique(t *testing.T) {
	center := newFakeCenter(notification.StatusAuthorized)
	n := notifier.New(center, newTestLogger())

	a, err := n.Schedule(context.Background(), "t", "b")
	require.NoError(t, err)
	b, err := n.Schedule(context.Background(), "t", "b")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestSchedule_CenterRejects(t *testing.T) {
	center := newFakeCenter(notification.StatusAuthorized)
	center.addErr = notification.ErrInvalidTrigger
	n := notifier.New(center, newTestLogger(), fixedID("bad"))

	_, err := n.Schedule(context.Background(), "t", "b")

	var schedErr *notification.SchedulingError
	require.ErrorAs(t, err, &schedErr)
	assert.Equal(t, "bad", schedErr.Identifier)
	assert.ErrorIs(t, err, notification.ErrInvalidTrigger)
}

func TestSchedule_StatusQueryFails(t *testing.T) {
	center := newFakeCenter(notification.StatusAuthorized)
	storeDown := errors.New("store down")
	center.settingsErr = storeDown
	n := notifier.New(center, newTestLogger(), fixedID("q"))

	_, err := n.Schedule(context.Background(), "t", "b")

	require.ErrorIs(t, err, storeDown)
	var schedErr *notification.SchedulingError
	assert.False(t, errors.As(err, &schedErr))
	assert.False(t, notifier.IsNotAuthorized(err))
	assert.Empty(t, center.submissions())
}

func TestSchedule_BadgePolicies(t *testing.T) {
	ctx := context.Background()

	t.Run("default sets badge to one on every schedule", func(t *testing.T) {
		center := newFakeCenter(notification.StatusAuthorized)
		center.badge = 4
		n := notifier.New(center, newTestLogger())

		for i := 0; i < 3; i++ {
			_, err := n.Schedule(ctx, "t", "b")
			require.NoError(t, err)
		}
		assert.Equal(t, []int{1, 1, 1}, center.badgeWrites)
	})

	t.Run("increment accumulates", func(t *testing.T) {
		center := newFakeCenter(notification.StatusAuthorized)
		center.badge = 4
		n := notifier.New(center, newTestLogger(), notifier.WithBadgePolicy(notification.BadgeIncrement()))

		for i := 0; i < 3; i++ {
			_, err := n.Schedule(ctx, "t", "b")
			require.NoError(t, err)
		}
		assert.Equal(t, []int{5, 6, 7}, center.badgeWrites)
	})

	t.Run("none leaves the badge", func(t *testing.T) {
		center := newFakeCenter(notification.StatusAuthorized)
		n := notifier.New(center, newTestLogger(), notifier.WithBadgePolicy(notification.BadgeNone()))

		_, err := n.Schedule(ctx, "t", "b")
		require.NoError(t, err)
		assert.Empty(t, center.badgeWrites)
	})

	t.Run("badge failure does not block scheduling", func(t *testing.T) {
		center := newFakeCenter(notification.StatusAuthorized)
		center.badgeErr = errors.New("badge unavailable")
		n := notifier.New(center, newTestLogger())

		_, err := n.Schedule(ctx, "t", "b")
		require.NoError(t, err)
		assert.Len(t, center.submissions(), 1)
	})
}

func TestCancelPending_UnknownIsNoop(t *testing.T) {
	ctx := context.Background()
	center := newFakeCenter(notification.StatusAuthorized)
	n := notifier.New(center, newTestLogger())

	_, err := n.Schedule(ctx, "t", "b", notifier.WithIdentifier("keep"))
	require.NoError(t, err)

	require.NoError(t, n.CancelPending(ctx, "does-not-exist"))

	pending, err := n.Pending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "keep", pending[0].Request.Identifier)
}

func TestCancelPending_RemovesOne(t *testing.T) {
	ctx := context.Background()
	center := newFakeCenter(notification.StatusAuthorized)
	n := notifier.New(center, newTestLogger())

	_, _ = n.Schedule(ctx, "t", "b", notifier.WithIdentifier("one"))
	_, _ = n.Schedule(ctx, "t", "b", notifier.WithIdentifier("two"))

	require.NoError(t, n.CancelPending(ctx, "one"))

	pending, err := n.Pending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "two", pending[0].Request.Identifier)
}

func TestCancelAllPending(t *testing.T) {
	ctx := context.Background()
	center := newFakeCenter(notification.StatusAuthorized)
	n := notifier.New(center, newTestLogger())

	require.NoError(t, n.CancelAllPending(ctx), "no-op when nothing is pending")

	for _, id := range []string{"a", "b", "c"} {
		_, err := n.Schedule(ctx, "t", "b", notifier.WithIdentifier(id))
		require.NoError(t, err)
	}
	require.NoError(t, n.CancelAllPending(ctx))

	pending, err := n.Pending(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestResetBadge(t *testing.T) {
	ctx := context.Background()
	for _, prior := range []int{0, 1, 42} {
		center := newFakeCenter(notification.StatusAuthorized)
		center.badge = prior
		n := notifier.New(center, newTestLogger())

		require.NoError(t, n.ResetBadge(ctx))

		count, err := n.BadgeCount(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, count, "prior=%d", prior)
	}
}

func TestRequestAuthorization_Idempotent(t *testing.T) {
	ctx := context.Background()
	center := newFakeCenter(notification.StatusDenied)
	center.answer = true
	n := notifier.New(center, newTestLogger())

	granted, err := n.RequestAuthorization(ctx)
	require.NoError(t, err)
	assert.False(t, granted, "an earlier denial is returned, not re-asked")

	status, err := n.AuthorizationStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, notification.StatusDenied, status)
}

func TestRequestAuthorization_Error(t *testing.T) {
	center := newFakeCenter(notification.StatusNotDetermined)
	center.authErr = errors.New("prompt failed")
	n := notifier.New(center, newTestLogger())

	granted, err := n.RequestAuthorization(context.Background())
	assert.Error(t, err)
	assert.False(t, granted)
}
