package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/restosync/internal/view"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// unsetEnv removes key for the duration of the test.
func unsetEnv(t *testing.T, key string) {
	t.Helper()
	prev, had := os.LookupEnv(key)
	require.NoError(t, os.Unsetenv(key))
	t.Cleanup(func() {
		if had {
			os.Setenv(key, prev)
		} else {
			os.Unsetenv(key)
		}
	})
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, view.Geometry{Width: 720, Height: 800}, cfg.Viewport)
	assert.Equal(t, view.Geometry{Width: 180, Height: 200}, cfg.Tile)
	assert.True(t, cfg.OfflineFallback)
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, "restosync.yaml", `
endpoint: http://feed.example:9000
db_path: /tmp/cache.db
schema_version: 1
http_timeout: 5s
offline_fallback: false
bottom_tolerance: 0
viewport:
  width: 1024
  height: 768
allowed_origins: [http://a.example, http://b.example]
log_level: debug
`)

	cfg, err := Load(path, writeFile(t, "empty.env", ""))
	require.NoError(t, err)

	assert.Equal(t, "http://feed.example:9000", cfg.Endpoint)
	assert.Equal(t, "/tmp/cache.db", cfg.DBPath)
	assert.Equal(t, 1, cfg.SchemaVersion)
	assert.Equal(t, 5*time.Second, cfg.HTTPTimeout)
	assert.False(t, cfg.OfflineFallback)
	assert.Zero(t, cfg.BottomTolerance)
	assert.Equal(t, view.Geometry{Width: 1024, Height: 768}, cfg.Viewport)
	assert.Equal(t, view.Geometry{Width: 180, Height: 200}, cfg.Tile, "unset fields keep defaults")
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	path := writeFile(t, "restosync.yaml", "endpoint: http://from-yaml\n")
	t.Setenv("RESTOSYNC_ENDPOINT", "http://from-env")
	t.Setenv("RESTOSYNC_TILE_WIDTH", "240")
	t.Setenv("RESTOSYNC_OFFLINE_FALLBACK", "false")
	t.Setenv("RESTOSYNC_ALLOWED_ORIGINS", " http://x.example , ,http://y.example")

	cfg, err := Load(path, writeFile(t, "empty.env", ""))
	require.NoError(t, err)

	assert.Equal(t, "http://from-env", cfg.Endpoint)
	assert.Equal(t, 240.0, cfg.Tile.Width)
	assert.False(t, cfg.OfflineFallback)
	assert.Equal(t, []string{"http://x.example", "http://y.example"}, cfg.AllowedOrigins)
}

func TestLoad_DotEnvFile(t *testing.T) {
	unsetEnv(t, "RESTOSYNC_LISTEN_ADDR")
	t.Setenv("RESTOSYNC_DB_PATH", "from-process.db")
	unsetEnv(t, "RESTOSYNC_HTTP_TIMEOUT")

	env := writeFile(t, ".env", "RESTOSYNC_LISTEN_ADDR=:9999\nRESTOSYNC_DB_PATH=from-dotenv.db\nRESTOSYNC_HTTP_TIMEOUT=2s\n")

	cfg, err := Load("", env)
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.ListenAddr)
	assert.Equal(t, "from-process.db", cfg.DBPath, "process env wins over .env")
	assert.Equal(t, 2*time.Second, cfg.HTTPTimeout)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("bad yaml", func(t *testing.T) {
		_, err := Load(writeFile(t, "bad.yaml", "viewport: [1, 2"), writeFile(t, "empty.env", ""))
		assert.ErrorContains(t, err, "parse config")
	})

	t.Run("unknown key", func(t *testing.T) {
		_, err := Load(writeFile(t, "typo.yaml", "endpont: http://feed.example\n"), writeFile(t, "empty.env", ""))
		assert.ErrorContains(t, err, "field endpont not found")
	})

	t.Run("empty file keeps defaults", func(t *testing.T) {
		cfg, err := Load(writeFile(t, "empty.yaml", ""), writeFile(t, "empty.env", ""))
		require.NoError(t, err)
		assert.Equal(t, Default().Endpoint, cfg.Endpoint)
	})

	t.Run("bad env number", func(t *testing.T) {
		t.Setenv("RESTOSYNC_VIEWPORT_WIDTH", "wide")
		_, err := Load("", writeFile(t, "empty.env", ""))
		assert.ErrorContains(t, err, "RESTOSYNC_VIEWPORT_WIDTH")
	})

	t.Run("missing env file", func(t *testing.T) {
		_, err := Load("", filepath.Join(t.TempDir(), "missing.env"))
		assert.ErrorContains(t, err, "load env files")
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"empty endpoint", func(c *Config) { c.Endpoint = "" }, "endpoint"},
		{"schema version zero", func(c *Config) { c.SchemaVersion = 0 }, "schema_version"},
		{"schema version too new", func(c *Config) { c.SchemaVersion = 99 }, "schema_version"},
		{"zero timeout", func(c *Config) { c.HTTPTimeout = 0 }, "http_timeout"},
		{"negative tolerance", func(c *Config) { c.BottomTolerance = -1 }, "bottom_tolerance"},
		{"zero viewport", func(c *Config) { c.Viewport.Height = 0 }, "viewport"},
		{"negative tile", func(c *Config) { c.Tile.Width = -5 }, "tile"},
		{"bad log level", func(c *Config) { c.LogLevel = "chatty" }, "log_level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.wantErr)
		})
	}
}

func TestSlogLevel(t *testing.T) {
	cfg := Default()
	cfg.LogLevel = "warn"
	l, err := cfg.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, "WARN", l.String())
}
