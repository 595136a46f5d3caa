package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/tinywideclouds/go-microservice-base/pkg/middleware"
	"gopkg.in/yaml.v3"
)

type YamlCorsConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	Role           string   `yaml:"role"`
}

type YamlStoreConfig struct {
	Driver     string `yaml:"driver"`
	SQLitePath string `yaml:"sqlite_path"`
}

type YamlRedisConfig struct {
	Addr       string `yaml:"addr"`
	Password   string `yaml:"password"`
	DB         int    `yaml:"db"`
	Enabled    bool   `yaml:"enabled"`
	TTLSeconds int    `yaml:"ttl_seconds"`
}

type YamlAuthorizationConfig struct {
	Prompt string `yaml:"prompt"`
}

type YamlBadgeConfig struct {
	Policy string `yaml:"policy"`
	Value  int    `yaml:"value"`
}

type YamlDeliveryConfig struct {
	Driver   string `yaml:"driver"`
	IconPath string `yaml:"icon_path"`
}

// YamlConfig is the structure that mirrors the raw config.yaml file.
type YamlConfig struct {
	ProjectID     string                  `yaml:"project_id"`
	ListenAddr    string                  `yaml:"listen_addr"`
	AppName       string                  `yaml:"app_name"`
	CorsConfig    YamlCorsConfig          `yaml:"cors"`
	StoreConfig   YamlStoreConfig         `yaml:"store"`
	RedisConfig   YamlRedisConfig         `yaml:"redis"`
	Authorization YamlAuthorizationConfig `yaml:"authorization"`
	Badge         YamlBadgeConfig         `yaml:"badge"`
	Delivery      YamlDeliveryConfig      `yaml:"delivery"`
}

// ParseYaml unmarshals raw YAML bytes.
func ParseYaml(data []byte) (*YamlConfig, error) {
	var yamlCfg YamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal yaml config: %w", err)
	}
	return &yamlCfg, nil
}

// LoadYamlFile reads and parses a config file from disk.
func LoadYamlFile(path string) (*YamlConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return ParseYaml(data)
}

// NewConfigFromYaml converts the YamlConfig into a clean, base Config struct.
func NewConfigFromYaml(baseCfg *YamlConfig, logger *slog.Logger) (*Config, error) {
	logger.Debug("Mapping YAML config to base config struct")

	cfg := &Config{
		ProjectID:  baseCfg.ProjectID,
		ListenAddr: baseCfg.ListenAddr,
		AppName:    baseCfg.AppName,
		CorsConfig: middleware.CorsConfig{
			AllowedOrigins: baseCfg.CorsConfig.AllowedOrigins,
			Role:           middleware.CorsRole(baseCfg.CorsConfig.Role),
		},
		Store: StoreConfig{
			Driver:     baseCfg.StoreConfig.Driver,
			SQLitePath: baseCfg.StoreConfig.SQLitePath,
		},
		Redis: RedisConfig{
			Addr:     baseCfg.RedisConfig.Addr,
			Password: baseCfg.RedisConfig.Password,
			DB:       baseCfg.RedisConfig.DB,
			Enabled:  baseCfg.RedisConfig.Enabled,
			TTL:      time.Duration(baseCfg.RedisConfig.TTLSeconds) * time.Second,
		},
		Authorization: AuthorizationConfig{Prompt: baseCfg.Authorization.Prompt},
		Badge: BadgeConfig{
			Policy: baseCfg.Badge.Policy,
			Value:  baseCfg.Badge.Value,
		},
		Delivery: DeliveryConfig{
			Driver:   baseCfg.Delivery.Driver,
			IconPath: baseCfg.Delivery.IconPath,
		},
	}

	logger.Debug("YAML config mapping complete",
		"app_name", cfg.AppName,
		"listen_addr", cfg.ListenAddr,
		"store", cfg.Store.Driver,
	)

	return cfg, nil
}
