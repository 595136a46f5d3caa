package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tinywideclouds/go-local-notifications/internal/storage/sqlite"
	"github.com/tinywideclouds/go-local-notifications/internal/storage/storetest"
	"github.com/tinywideclouds/go-local-notifications/pkg/dispatch"
	"github.com/tinywideclouds/go-local-notifications/pkg/notification"
)

func TestStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) dispatch.Store {
		s, err := sqlite.Open(context.Background(), ":memory:")
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Close() })
		return s
	})
}

func TestStore_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "center.db")

	s, err := sqlite.Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, s.SaveSettings(ctx, notification.Settings{AuthorizationStatus: notification.StatusDenied}))
	require.NoError(t, s.SaveBadge(ctx, 2))
	require.NoError(t, s.Close())

	s, err = sqlite.Open(ctx, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	settings, err := s.LoadSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, notification.StatusDenied, settings.AuthorizationStatus)

	badge, err := s.LoadBadge(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, badge)
}
