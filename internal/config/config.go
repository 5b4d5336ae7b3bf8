package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds every persisted runtime setting.
type Config struct {
	Database  DatabaseConfig  `toml:"database"`
	Logging   LoggingConfig   `toml:"logging"`
	Server    ServerConfig    `toml:"server"`
	Dashboard DashboardConfig `toml:"dashboard"`
	Search    SearchConfig    `toml:"search"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

// LoggingConfig configures the runtime logger sinks.
type LoggingConfig struct {
	Level   string        `toml:"level"`
	DevFile DevFileConfig `toml:"dev_file"`
}

// DevFileConfig enables a logfmt file sink in dev mode.
type DevFileConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

type ServerConfig struct {
	HTTPBind        string `toml:"http_bind"`
	APIEndpoint     string `toml:"api_endpoint"`
	MCPEndpoint     string `toml:"mcp_endpoint"`
	MetricsEndpoint string `toml:"metrics_endpoint"`
}

type DashboardConfig struct {
	StalenessDays int `toml:"staleness_days"`
	MaxADResults  int `toml:"max_ad_results"`
}

// SearchConfig bounds search results and cache lifetimes. A zero TTL selects the
// service default and a negative TTL disables caching.
type SearchConfig struct {
	CacheTTLSeconds     int `toml:"cache_ttl_seconds"`
	SlowCacheTTLSeconds int `toml:"slow_cache_ttl_seconds"`
	MaxResults          int `toml:"max_results"`
}

var validLogLevels = []string{"debug", "info", "warn", "error", "fatal"}

func Default(dbPath string) Config {
	return Config{
		Database: DatabaseConfig{
			Path: dbPath,
		},
		Logging: LoggingConfig{
			Level: "info",
			DevFile: DevFileConfig{
				Enabled: true,
				Dir:     ".datatracker/log",
			},
		},
		Server: ServerConfig{
			HTTPBind:        "127.0.0.1:8080",
			APIEndpoint:     "/api/v1",
			MCPEndpoint:     "/mcp",
			MetricsEndpoint: "/metrics",
		},
		Dashboard: DashboardConfig{
			StalenessDays: 120,
			MaxADResults:  500,
		},
		Search: SearchConfig{
			CacheTTLSeconds:     300,
			SlowCacheTTLSeconds: 1800,
			MaxResults:          1000,
		},
	}
}

func Load(path string, defaults Config) (Config, error) {
	cfg := defaults
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if len(content) == 0 {
		return cfg, nil
	}

	if err := toml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode toml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	c.Database.Path = strings.TrimSpace(c.Database.Path)
	if c.Database.Path == "" {
		return errors.New("database path is required")
	}

	level := strings.TrimSpace(strings.ToLower(c.Logging.Level))
	if level != "" {
		valid := false
		for _, candidate := range validLogLevels {
			if level == candidate {
				valid = true
				break
			}
		}
		if !valid {
			return fmt.Errorf("invalid logging.level: %q", c.Logging.Level)
		}
	}

	endpoints := map[string]string{}
	for key, value := range map[string]string{
		"server.api_endpoint":     c.Server.APIEndpoint,
		"server.mcp_endpoint":     c.Server.MCPEndpoint,
		"server.metrics_endpoint": c.Server.MetricsEndpoint,
	} {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		if !strings.HasPrefix(value, "/") {
			return fmt.Errorf("%s must start with /: %q", key, value)
		}
		if other, ok := endpoints[value]; ok {
			return fmt.Errorf("%s collides with %s: %q", key, other, value)
		}
		endpoints[value] = key
	}

	if c.Dashboard.StalenessDays < 0 {
		return fmt.Errorf("dashboard.staleness_days must be >= 0")
	}
	if c.Dashboard.MaxADResults < 0 {
		return fmt.Errorf("dashboard.max_ad_results must be >= 0")
	}
	if c.Search.MaxResults < 0 {
		return fmt.Errorf("search.max_results must be >= 0")
	}
	return nil
}

// StalenessWindow returns the configured staleness window; zero selects the default.
func (c DashboardConfig) StalenessWindow() time.Duration {
	return time.Duration(c.StalenessDays) * 24 * time.Hour
}

// CacheTTL returns the search cache lifetime.
func (c SearchConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// SlowCacheTTL returns the cache lifetime for slow listings.
func (c SearchConfig) SlowCacheTTL() time.Duration {
	return time.Duration(c.SlowCacheTTLSeconds) * time.Second
}

func EnsureConfigDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
