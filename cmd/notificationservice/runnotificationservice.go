package main

import (
	"context"
	_ "embed"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tinywideclouds/go-local-notifications/internal/platform/local"
	"github.com/tinywideclouds/go-local-notifications/notificationservice"
	"github.com/tinywideclouds/go-local-notifications/notificationservice/config"
	"github.com/tinywideclouds/go-local-notifications/pkg/notifier"
)

//go:embed local.yaml
var configFile []byte

func main() {
	var logLevel slog.Level
	switch os.Getenv("LOG_LEVEL") {
	case "debug", "DEBUG":
		logLevel = slog.LevelDebug
	case "info", "INFO":
		logLevel = slog.LevelInfo
	case "warn", "WARN":
		logLevel = slog.LevelWarn
	case "error", "ERROR":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})).With("service", "go-local-notifications")
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Config Loading ---
	yamlCfg, err := config.ParseYaml(configFile)
	if err != nil {
		logger.Error("Failed to unmarshal embedded yaml config", "err", err)
		os.Exit(1)
	}
	baseCfg, _ := config.NewConfigFromYaml(yamlCfg, logger)
	cfg, err := config.UpdateConfigWithEnvOverrides(baseCfg, logger)
	if err != nil {
		logger.Error("Config failed", "err", err)
		os.Exit(1)
	}

	// --- Store, Deliverer, Prompter ---
	components, err := notificationservice.BuildComponents(ctx, cfg, os.Stdout, logger)
	if err != nil {
		logger.Error("Failed to build notification components", "err", err)
		os.Exit(1)
	}
	defer components.Close()

	// --- Center & Facade ---
	center := components.Center(logger, local.Options{})
	n := notifier.New(center, logger, notifier.WithBadgePolicy(cfg.BadgePolicy))

	service, err := notificationservice.New(cfg, center, n, logger)
	if err != nil {
		logger.Error("Service creation failed", "err", err)
		os.Exit(1)
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = service.Shutdown(shutdownCtx)
	}()

	logger.Info("Starting service...", "listen_addr", cfg.ListenAddr, "badge_policy", cfg.BadgePolicy.String())
	if err := service.Start(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Service shutdown with error", "err", err)
		os.Exit(1)
	}
}
