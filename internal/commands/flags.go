package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/tinywideclouds/go-local-notifications/internal/platform/local"
	"github.com/tinywideclouds/go-local-notifications/notificationservice"
	"github.com/tinywideclouds/go-local-notifications/notificationservice/config"
	"github.com/tinywideclouds/go-local-notifications/pkg/notifier"
)

type Flags struct {
	LogLevel   string
	ConfigPath string
}

// App holds what every command needs. It is allocated before flags are
// parsed and filled in by Open from the Before hook.
type App struct {
	Center   *local.Center
	Notifier *notifier.Notifier
	Out      io.Writer

	// Clock drives the center, --wait polling and watch resyncs;
	// PollInterval is the period of both.
	Clock        clockwork.Clock
	PollInterval time.Duration

	components *notificationservice.Components
}

// Open loads config, builds the center and starts it.
func (a *App) Open(ctx context.Context, flags *Flags, out io.Writer) error {
	logger := NewLogger(flags.LogLevel, os.Stderr)

	cfg, err := LoadConfig(flags.ConfigPath, logger)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	components, err := notificationservice.BuildComponents(ctx, cfg, out, logger)
	if err != nil {
		return fmt.Errorf("build components: %w", err)
	}

	clk := clockwork.NewRealClock()
	center := components.Center(logger, local.Options{Clock: clk})
	if err := center.Start(ctx); err != nil {
		_ = components.Close()
		return fmt.Errorf("start center: %w", err)
	}

	*a = App{
		Center:       center,
		Notifier:     notifier.New(center, logger, notifier.WithBadgePolicy(cfg.BadgePolicy)),
		Out:          out,
		Clock:        clk,
		PollInterval: 250 * time.Millisecond,
		components:   components,
	}
	return nil
}

// Close stops the center, letting in-flight deliveries finish, then releases
// the store.
func (a *App) Close() error {
	if a.Center != nil {
		a.Center.Stop()
	}
	if a.components != nil {
		return a.components.Close()
	}
	return nil
}

// LoadConfig reads path if it exists, applies CLI defaults and then env
// overrides. A missing file is not an error.
func LoadConfig(path string, logger *slog.Logger) (*config.Config, error) {
	yamlCfg := &config.YamlConfig{}
	if path != "" {
		loaded, err := config.LoadYamlFile(path)
		switch {
		case err == nil:
			yamlCfg = loaded
		case errors.Is(err, fs.ErrNotExist):
			logger.Debug("No config file, using defaults", "path", path)
		default:
			return nil, err
		}
	}

	if yamlCfg.StoreConfig.Driver == "" {
		yamlCfg.StoreConfig.Driver = config.StoreSQLite
		yamlCfg.StoreConfig.SQLitePath = filepath.Join(DefaultDataDir(), config.DefaultSQLitePath)
	}

	cfg, err := config.NewConfigFromYaml(yamlCfg, logger)
	if err != nil {
		return nil, err
	}
	cfg, err = config.UpdateConfigWithEnvOverrides(cfg, logger)
	if err != nil {
		return nil, err
	}
	if cfg.Store.Driver == config.StoreSQLite {
		if err := os.MkdirAll(filepath.Dir(cfg.Store.SQLitePath), 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}
	return cfg, nil
}

// NewLogger builds the CLI's stderr logger.
func NewLogger(level string, w io.Writer) *slog.Logger {
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: logLevel}))
}

// DefaultConfigPath returns the default config file path using XDG_CONFIG_HOME.
func DefaultConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, _ := os.UserHomeDir()
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "notifyctl", "config.yaml")
}

// DefaultDataDir returns the default data directory using XDG_DATA_HOME.
func DefaultDataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "notifyctl")
}
