// Package config loads restosync settings from defaults, an optional YAML
// file, an optional .env file and RESTOSYNC_* environment variables, in
// that order of increasing precedence.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/roach88/restosync/internal/controller"
	"github.com/roach88/restosync/internal/remote"
	"github.com/roach88/restosync/internal/store"
	"github.com/roach88/restosync/internal/view"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "RESTOSYNC_"

// Config holds all restosync settings.
type Config struct {
	// Client side.
	Endpoint        string        `yaml:"endpoint"`
	DBPath          string        `yaml:"db_path"`
	SchemaVersion   int           `yaml:"schema_version"`
	HTTPTimeout     time.Duration `yaml:"http_timeout"`
	OfflineFallback bool          `yaml:"offline_fallback"`
	BottomTolerance float64       `yaml:"bottom_tolerance"`
	Viewport        view.Geometry `yaml:"viewport"`
	Tile            view.Geometry `yaml:"tile"`

	// Feed server.
	ListenAddr     string   `yaml:"listen_addr"`
	FeedFile       string   `yaml:"feed_file"`
	FeedDSN        string   `yaml:"feed_dsn"`
	AllowedOrigins []string `yaml:"allowed_origins"`

	LogLevel string `yaml:"log_level"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Endpoint:        "http://localhost:1337",
		DBPath:          "restaurants.db",
		SchemaVersion:   store.SchemaVersion,
		HTTPTimeout:     remote.DefaultTimeout,
		OfflineFallback: true,
		BottomTolerance: controller.DefaultBottomTolerance,
		Viewport:        controller.DefaultViewport,
		Tile:            controller.DefaultTile,
		ListenAddr:      ":1337",
		FeedFile:        "data/restaurants.json",
		AllowedOrigins:  []string{"http://localhost:8000"},
		LogLevel:        "info",
	}
}

// Load builds a Config. path names an optional YAML file; empty skips it.
// envFiles are loaded with godotenv without overriding variables already
// set; when none are given a .env in the working directory is tried.
// The result is validated.
func Load(path string, envFiles ...string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if len(envFiles) == 0 {
		if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load .env: %w", err)
		}
	} else if err := godotenv.Load(envFiles...); err != nil {
		return Config{}, fmt.Errorf("load env files: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	var errs []error
	str := func(key string, dst *string) {
		if v := getEnv(key); v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *float64) {
		if v := getEnv(key); v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
				return
			}
			*dst = f
		}
	}

	str("ENDPOINT", &c.Endpoint)
	str("DB_PATH", &c.DBPath)
	str("LISTEN_ADDR", &c.ListenAddr)
	str("FEED_FILE", &c.FeedFile)
	str("FEED_DSN", &c.FeedDSN)
	str("LOG_LEVEL", &c.LogLevel)

	if v := getEnv("SCHEMA_VERSION"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sSCHEMA_VERSION: %w", EnvPrefix, err))
		} else {
			c.SchemaVersion = n
		}
	}
	if v := getEnv("HTTP_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sHTTP_TIMEOUT: %w", EnvPrefix, err))
		} else {
			c.HTTPTimeout = d
		}
	}
	if v := getEnv("OFFLINE_FALLBACK"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sOFFLINE_FALLBACK: %w", EnvPrefix, err))
		} else {
			c.OfflineFallback = b
		}
	}
	num("BOTTOM_TOLERANCE", &c.BottomTolerance)
	num("VIEWPORT_WIDTH", &c.Viewport.Width)
	num("VIEWPORT_HEIGHT", &c.Viewport.Height)
	num("TILE_WIDTH", &c.Tile.Width)
	num("TILE_HEIGHT", &c.Tile.Height)

	if v := getEnv("ALLOWED_ORIGINS"); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		c.AllowedOrigins = origins
	}

	return errors.Join(errs...)
}

func getEnv(key string) string {
	return os.Getenv(EnvPrefix + key)
}

// Validate reports every invalid setting.
func (c Config) Validate() error {
	var errs []error
	if c.Endpoint == "" {
		errs = append(errs, errors.New("endpoint must not be empty"))
	}
	if c.SchemaVersion < 1 || c.SchemaVersion > store.SchemaVersion {
		errs = append(errs, fmt.Errorf("schema_version must be between 1 and %d, got %d", store.SchemaVersion, c.SchemaVersion))
	}
	if c.HTTPTimeout <= 0 {
		errs = append(errs, fmt.Errorf("http_timeout must be positive, got %s", c.HTTPTimeout))
	}
	if c.BottomTolerance < 0 {
		errs = append(errs, fmt.Errorf("bottom_tolerance must not be negative, got %g", c.BottomTolerance))
	}
	if c.Viewport.Width <= 0 || c.Viewport.Height <= 0 {
		errs = append(errs, fmt.Errorf("viewport must be positive, got %gx%g", c.Viewport.Width, c.Viewport.Height))
	}
	if c.Tile.Width <= 0 || c.Tile.Height <= 0 {
		errs = append(errs, fmt.Errorf("tile must be positive, got %gx%g", c.Tile.Width, c.Tile.Height))
	}
	if _, err := c.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// SlogLevel parses LogLevel.
func (c Config) SlogLevel() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("log_level: %w", err)
	}
	return l, nil
}
