package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tinywideclouds/go-microservice-base/pkg/middleware"
	"github.com/tinywideclouds/go-local-notifications/notificationservice/config"
)

const sampleYaml = `
project_id: yaml-project
listen_addr: ":9000"
app_name: Yaml App
cors:
  allowed_origins: ["http://yaml.com"]
  role: editor
store:
  driver: sqlite
  sqlite_path: /var/lib/notify.db
redis:
  enabled: true
  addr: redis:6379
  db: 2
  ttl_seconds: 120
authorization:
  prompt: allow
badge:
  policy: increment
delivery:
  driver: console
  icon_path: /usr/share/icons/app.png
`

func TestNewConfigFromYaml(t *testing.T) {
	logger := newTestLogger()

	t.Run("Success - maps all fields correctly", func(t *testing.T) {
		yamlCfg, err := config.ParseYaml([]byte(sampleYaml))
		require.NoError(t, err)

		cfg, err := config.NewConfigFromYaml(yamlCfg, logger)

		require.NoError(t, err)
		require.NotNil(t, cfg)

		// 1. Direct Field Mapping
		assert.Equal(t, "yaml-project", cfg.ProjectID)
		assert.Equal(t, ":9000", cfg.ListenAddr)
		assert.Equal(t, "Yaml App", cfg.AppName)
		assert.Equal(t, "sqlite", cfg.Store.Driver)
		assert.Equal(t, "/var/lib/notify.db", cfg.Store.SQLitePath)
		assert.Equal(t, "allow", cfg.Authorization.Prompt)
		assert.Equal(t, "increment", cfg.Badge.Policy)
		assert.Equal(t, "console", cfg.Delivery.Driver)
		assert.Equal(t, "/usr/share/icons/app.png", cfg.Delivery.IconPath)

		// 2. CORS
		assert.Equal(t, []string{"http://yaml.com"}, cfg.CorsConfig.AllowedOrigins)
		assert.Equal(t, middleware.CorsRoleEditor, cfg.CorsConfig.Role)

		// 3. Redis
		assert.True(t, cfg.Redis.Enabled)
		assert.Equal(t, "redis:6379", cfg.Redis.Addr)
		assert.Equal(t, 2, cfg.Redis.DB)
		assert.Equal(t, 2*time.Minute, cfg.Redis.TTL)
	})

	t.Run("Success - Handles missing optional fields gracefully", func(t *testing.T) {
		yamlCfg := &config.YamlConfig{AppName: "minimal"}

		cfg, err := config.NewConfigFromYaml(yamlCfg, logger)

		require.NoError(t, err)
		assert.Equal(t, "minimal", cfg.AppName)
		assert.Empty(t, cfg.ListenAddr)
		assert.Empty(t, cfg.Store.Driver)
		assert.Zero(t, cfg.Redis.TTL)
	})

	t.Run("Failure - invalid yaml", func(t *testing.T) {
		_, err := config.ParseYaml([]byte("store: [unterminated"))
		assert.Error(t, err)
	})
}

func TestLoadYamlFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYaml), 0o600))

	yamlCfg, err := config.LoadYamlFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Yaml App", yamlCfg.AppName)

	_, err = config.LoadYamlFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
