package notificationservice

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/tinywideclouds/go-microservice-base/pkg/microservice"
	"github.com/tinywideclouds/go-microservice-base/pkg/middleware"
	"github.com/tinywideclouds/go-local-notifications/internal/api"
	"github.com/tinywideclouds/go-local-notifications/internal/platform/local"
	"github.com/tinywideclouds/go-local-notifications/notificationservice/config"
	"github.com/tinywideclouds/go-local-notifications/pkg/notifier"
)

type Wrapper struct {
	*microservice.BaseServer
	center *local.Center
	logger *slog.Logger
}

// New assembles the service: the notification control API in front of a
// running local center.
func New(
	cfg *config.Config,
	center *local.Center,
	n *notifier.Notifier,
	logger *slog.Logger,
) (*Wrapper, error) {

	// 1. Base Server
	baseServer := microservice.NewBaseServer(logger, cfg.ListenAddr)

	// 2. API
	notificationAPI := api.NewNotificationAPI(n, logger)

	// Register Routes
	mux := baseServer.Mux()
	corsMiddleware := middleware.NewCorsMiddleware(cfg.CorsConfig, logger)

	handle := func(pattern string, handlerFunc http.HandlerFunc) {
		mux.Handle(pattern, corsMiddleware(handlerFunc))
	}

	// 1. Authorization
	handle("GET /api/v1/authorization", notificationAPI.GetAuthorization)
	handle("POST /api/v1/authorization", notificationAPI.RequestAuthorization)

	// 2. Pending
	handle("POST /api/v1/notifications", notificationAPI.Schedule)
	handle("GET /api/v1/notifications", notificationAPI.ListPending)
	handle("DELETE /api/v1/notifications", notificationAPI.CancelAllPending)
	handle("DELETE /api/v1/notifications/{id}", notificationAPI.CancelPending)

	// 3. Delivered
	handle("GET /api/v1/notifications/delivered", notificationAPI.ListDelivered)
	handle("DELETE /api/v1/notifications/delivered", notificationAPI.RemoveAllDelivered)

	// 4. Badge
	handle("GET /api/v1/badge", notificationAPI.GetBadge)
	handle("DELETE /api/v1/badge", notificationAPI.ResetBadge)

	// 5. Global OPTIONS for the API namespace (CORS preflight)
	mux.Handle("OPTIONS /api/v1/", corsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Just returns 200 OK with CORS headers handled by middleware
	})))

	return &Wrapper{
		BaseServer: baseServer,
		center:     center,
		logger:     logger,
	}, nil
}

func (w *Wrapper) Start(ctx context.Context) error {
	w.logger.Info("Local notification center starting...")
	if err := w.center.Start(ctx); err != nil {
		return fmt.Errorf("failed to start notification center: %w", err)
	}
	w.SetReady(true)
	w.logger.Info("Service is now ready.")
	return w.BaseServer.Start()
}

func (w *Wrapper) Shutdown(ctx context.Context) error {
	w.logger.Info("Shutting down service components...")
	var finalErr error
	if err := w.BaseServer.Shutdown(ctx); err != nil {
		w.logger.Error("HTTP server shutdown failed.", "err", err)
		finalErr = err
	}
	w.center.Stop()
	w.logger.Info("Service shutdown complete.")
	return finalErr
}
