package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/tinywideclouds/go-microservice-base/pkg/middleware"
	"github.com/tinywideclouds/go-local-notifications/pkg/notification"
)

const (
	StoreMemory    = "memory"
	StoreSQLite    = "sqlite"
	StoreFirestore = "firestore"

	DeliveryDesktop = "desktop"
	DeliveryConsole = "console"

	DefaultAppName    = "Local Notifications"
	DefaultSQLitePath = "notifications.db"
	DefaultRedisTTL   = 24 * time.Hour
)

type StoreConfig struct {
	Driver     string
	SQLitePath string
}

type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

type AuthorizationConfig struct {
	// Prompt is allow, deny or terminal.
	Prompt string
}

type BadgeConfig struct {
	Policy string
	Value  int
}

type DeliveryConfig struct {
	Driver   string
	IconPath string
}

// Config defines the *single*, authoritative configuration.
type Config struct {
	ProjectID  string
	ListenAddr string
	AppName    string

	CorsConfig    middleware.CorsConfig
	Store         StoreConfig
	Redis         RedisConfig
	Authorization AuthorizationConfig
	Badge         BadgeConfig
	Delivery      DeliveryConfig

	// BadgePolicy is resolved from Badge during validation.
	BadgePolicy notification.BadgePolicy
}

// UpdateConfigWithEnvOverrides applies environment variables and final validation.
func UpdateConfigWithEnvOverrides(cfg *Config, logger *slog.Logger) (*Config, error) {
	logger.Debug("Applying environment variable overrides...")

	// 1. Apply Environment Overrides
	override := func(key string, dst *string) {
		if val := os.Getenv(key); val != "" {
			logger.Debug("Overriding config value", "key", key, "source", "env")
			*dst = val
		}
	}
	override("PROJECT_ID", &cfg.ProjectID)
	override("APP_NAME", &cfg.AppName)
	override("STORE_DRIVER", &cfg.Store.Driver)
	override("SQLITE_PATH", &cfg.Store.SQLitePath)
	override("AUTH_PROMPT", &cfg.Authorization.Prompt)
	override("BADGE_POLICY", &cfg.Badge.Policy)
	override("DELIVERY_DRIVER", &cfg.Delivery.Driver)
	override("ICON_PATH", &cfg.Delivery.IconPath)

	if val := os.Getenv("PORT"); val != "" {
		logger.Debug("Overriding config value", "key", "PORT", "source", "env")
		cfg.ListenAddr = ":" + val
	}
	if val := os.Getenv("BADGE_VALUE"); val != "" {
		n, err := strconv.Atoi(val)
		if err != nil {
			return nil, fmt.Errorf("BADGE_VALUE must be an integer: %w", err)
		}
		cfg.Badge.Value = n
	}

	// Redis Overrides
	if val := os.Getenv("REDIS_ADDR"); val != "" {
		cfg.Redis.Addr = val
		cfg.Redis.Enabled = true
	}
	if val := os.Getenv("REDIS_PASSWORD"); val != "" {
		cfg.Redis.Password = val
	}
	if val := os.Getenv("REDIS_DB"); val != "" {
		if db, err := strconv.Atoi(val); err == nil {
			cfg.Redis.DB = db
		}
	}
	if val := os.Getenv("REDIS_TTL_SECONDS"); val != "" {
		if secs, err := strconv.Atoi(val); err == nil && secs > 0 {
			cfg.Redis.TTL = time.Duration(secs) * time.Second
		}
	}
	if val := os.Getenv("REDIS_ENABLED"); val != "" {
		enabled, _ := strconv.ParseBool(val)
		cfg.Redis.Enabled = enabled
	}

	// CORS Overrides
	if corsOrigins := os.Getenv("CORS_ALLOWED_ORIGINS"); corsOrigins != "" {
		logger.Debug("Overriding config value", "key", "CORS_ALLOWED_ORIGINS", "source", "env")
		rawOrigins := strings.Split(corsOrigins, ",")
		var cleanOrigins []string
		for _, o := range rawOrigins {
			if trimmed := strings.TrimSpace(o); trimmed != "" {
				cleanOrigins = append(cleanOrigins, trimmed)
			}
		}
		cfg.CorsConfig.AllowedOrigins = cleanOrigins
	}

	// 2. Final Validation
	if err := validate(cfg); err != nil {
		return nil, err
	}

	logger.Debug("Configuration finalized and validated successfully")
	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}
	if cfg.AppName == "" {
		cfg.AppName = DefaultAppName
	}

	cfg.Store.Driver = strings.ToLower(cfg.Store.Driver)
	switch cfg.Store.Driver {
	case "":
		cfg.Store.Driver = StoreMemory
	case StoreMemory:
	case StoreSQLite:
		if cfg.Store.SQLitePath == "" {
			cfg.Store.SQLitePath = DefaultSQLitePath
		}
	case StoreFirestore:
		if cfg.ProjectID == "" {
			return fmt.Errorf("project_id is required for the firestore store (set via YAML or PROJECT_ID env var)")
		}
	default:
		return fmt.Errorf("unknown store driver %q (want memory, sqlite or firestore)", cfg.Store.Driver)
	}

	if cfg.Redis.Enabled && cfg.Redis.Addr == "" {
		return fmt.Errorf("redis.addr is required when redis is enabled")
	}
	if cfg.Redis.TTL <= 0 {
		cfg.Redis.TTL = DefaultRedisTTL
	}

	cfg.Authorization.Prompt = strings.ToLower(cfg.Authorization.Prompt)
	switch cfg.Authorization.Prompt {
	case "":
		cfg.Authorization.Prompt = "terminal"
	case "allow", "deny", "terminal":
	default:
		return fmt.Errorf("unknown authorization prompt %q (want allow, deny or terminal)", cfg.Authorization.Prompt)
	}

	if cfg.Badge.Policy == "" {
		cfg.BadgePolicy = notification.DefaultBadgePolicy()
	} else {
		policy, err := notification.ParseBadgePolicy(cfg.Badge.Policy, cfg.Badge.Value)
		if err != nil {
			return err
		}
		cfg.BadgePolicy = policy
	}

	cfg.Delivery.Driver = strings.ToLower(cfg.Delivery.Driver)
	switch cfg.Delivery.Driver {
	case "":
		cfg.Delivery.Driver = DeliveryDesktop
	case DeliveryDesktop, DeliveryConsole:
	default:
		return fmt.Errorf("unknown delivery driver %q (want desktop or console)", cfg.Delivery.Driver)
	}
	return nil
}
