package notificationservice

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"cloud.google.com/go/firestore"

	"github.com/tinywideclouds/go-local-notifications/internal/platform/console"
	"github.com/tinywideclouds/go-local-notifications/internal/platform/desktop"
	"github.com/tinywideclouds/go-local-notifications/internal/platform/local"
	"github.com/tinywideclouds/go-local-notifications/internal/platform/prompt"
	"github.com/tinywideclouds/go-local-notifications/internal/storage/cache"
	fsStore "github.com/tinywideclouds/go-local-notifications/internal/storage/firestore"
	"github.com/tinywideclouds/go-local-notifications/internal/storage/memory"
	"github.com/tinywideclouds/go-local-notifications/internal/storage/sqlite"
	"github.com/tinywideclouds/go-local-notifications/notificationservice/config"
	"github.com/tinywideclouds/go-local-notifications/pkg/dispatch"
)

// Components are the pieces a local center is assembled from.
type Components struct {
	Store     dispatch.Store
	Deliverer dispatch.Deliverer
	Prompter  dispatch.Prompter

	closers []func() error
}

// Close releases every client opened by BuildComponents, newest first.
func (c *Components) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}

// Center builds the local notification center over the components.
func (c *Components) Center(logger *slog.Logger, opts local.Options) *local.Center {
	return local.NewCenter(c.Store, c.Deliverer, c.Prompter, logger, opts)
}

// BuildComponents opens the configured store (optionally behind Redis), the
// deliverer and the prompter. Console output goes to out.
func BuildComponents(ctx context.Context, cfg *config.Config, out io.Writer, logger *slog.Logger) (*Components, error) {
	c := &Components{}

	store, err := c.buildStore(ctx, cfg, logger)
	if err != nil {
		_ = c.Close()
		return nil, err
	}
	c.Store = store

	switch cfg.Delivery.Driver {
	case config.DeliveryConsole:
		c.Deliverer = console.NewDeliverer(cfg.AppName, out)
	default:
		c.Deliverer = desktop.NewDeliverer(cfg.AppName, cfg.Delivery.IconPath, logger)
	}
	logger.Info("Deliverer initialized", "type", cfg.Delivery.Driver)

	c.Prompter, err = prompt.FromName(cfg.Authorization.Prompt, cfg.AppName)
	if err != nil {
		_ = c.Close()
		return nil, err
	}
	return c, nil
}

func (c *Components) buildStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (dispatch.Store, error) {
	var store dispatch.Store

	switch cfg.Store.Driver {
	case config.StoreSQLite:
		sqlStore, err := sqlite.Open(ctx, cfg.Store.SQLitePath)
		if err != nil {
			return nil, err
		}
		c.closers = append(c.closers, sqlStore.Close)
		store = sqlStore
	case config.StoreFirestore:
		fsClient, err := firestore.NewClient(ctx, cfg.ProjectID)
		if err != nil {
			return nil, fmt.Errorf("firestore client failed: %w", err)
		}
		c.closers = append(c.closers, fsClient.Close)
		store = fsStore.NewFirestoreStore(fsClient, cfg.AppName)
	default:
		store = memory.NewStore()
	}
	logger.Info("Store initialized", "type", cfg.Store.Driver)

	if cfg.Redis.Enabled {
		logger.Info("Initializing Redis Cache layer...", "addr", cfg.Redis.Addr)
		redisClient, err := cache.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		c.closers = append(c.closers, redisClient.Close)
		store = cache.NewCachedStore(store, redisClient, cfg.Redis.TTL, cfg.AppName)
		logger.Info("Store upgraded", "type", "redis_cached_"+cfg.Store.Driver)
	}
	return store, nil
}
