// Package storetest holds the behaviour every dispatch.Store must share.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tinywideclouds/go-local-notifications/pkg/dispatch"
	"github.com/tinywideclouds/go-local-notifications/pkg/notification"
)

// Run exercises newStore against the Store contract. newStore must return an
// empty store each time it is called.
func Run(t *testing.T, newStore func(t *testing.T) dispatch.Store) {
	t.Helper()
	base := time.Date(2025, 4, 5, 10, 0, 0, 0, time.UTC)

	pending := func(id string, after time.Duration) notification.Pending {
		return notification.Pending{
			Request: notification.Request{
				Identifier: id,
				Content:    notification.Content{Title: "title " + id, Body: "body " + id, Sound: true, UserInfo: map[string]string{"k": id}},
				Trigger:    notification.Trigger{DeliverAfter: after},
			},
			ScheduledAt: base,
			FireAt:      base.Add(after),
		}
	}

	t.Run("Empty store has defaults", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		settings, err := s.LoadSettings(ctx)
		require.NoError(t, err)
		assert.Equal(t, notification.StatusNotDetermined, settings.AuthorizationStatus)

		badge, err := s.LoadBadge(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, badge)

		list, err := s.ListPending(ctx)
		require.NoError(t, err)
		assert.Empty(t, list)

		delivered, err := s.ListDelivered(ctx)
		require.NoError(t, err)
		assert.Empty(t, delivered)
	})

	t.Run("Settings and badge round trip", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		want := notification.Settings{
			AuthorizationStatus: notification.StatusAuthorized,
			Options:             notification.DefaultAuthorizationOptions(),
		}
		require.NoError(t, s.SaveSettings(ctx, want))
		got, err := s.LoadSettings(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, got)

		require.NoError(t, s.SaveBadge(ctx, 3))
		require.NoError(t, s.SaveBadge(ctx, 0))
		badge, err := s.LoadBadge(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, badge)
	})

	t.Run("Pending upsert, order and removal", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		require.NoError(t, s.PutPending(ctx, pending("late", 10*time.Second)))
		require.NoError(t, s.PutPending(ctx, pending("early", 2*time.Second)))
		require.NoError(t, s.PutPending(ctx, pending("late", 5*time.Second)))

		list, err := s.ListPending(ctx)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "early", list[0].Request.Identifier)
		assert.Equal(t, "late", list[1].Request.Identifier)
		assert.Equal(t, 5*time.Second, list[1].Request.Trigger.DeliverAfter)
		assert.True(t, base.Add(5*time.Second).Equal(list[1].FireAt))
		assert.Equal(t, "title late", list[1].Request.Content.Title)
		assert.Equal(t, map[string]string{"k": "late"}, list[1].Request.Content.UserInfo)

		require.NoError(t, s.RemovePending(ctx, []string{"missing"}))
		list, err = s.ListPending(ctx)
		require.NoError(t, err)
		assert.Len(t, list, 2, "removing an unknown identifier changes nothing")

		require.NoError(t, s.RemovePending(ctx, []string{"early"}))
		list, err = s.ListPending(ctx)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "late", list[0].Request.Identifier)

		require.NoError(t, s.RemoveAllPending(ctx))
		list, err = s.ListPending(ctx)
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("Delivered list", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		first := notification.Delivered{Request: pending("one", time.Second).Request, DeliveredAt: base.Add(time.Second)}
		second := notification.Delivered{Request: pending("two", 2*time.Second).Request, DeliveredAt: base.Add(2 * time.Second)}
		require.NoError(t, s.PutDelivered(ctx, second))
		require.NoError(t, s.PutDelivered(ctx, first))

		list, err := s.ListDelivered(ctx)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "one", list[0].Request.Identifier)
		assert.Equal(t, "two", list[1].Request.Identifier)

		require.NoError(t, s.RemoveAllDelivered(ctx))
		list, err = s.ListDelivered(ctx)
		require.NoError(t, err)
		assert.Empty(t, list)
	})
}
