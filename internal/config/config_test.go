package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default("/tmp/datatracker.db")
	if cfg.Database.Path != "/tmp/datatracker.db" {
		t.Fatalf("unexpected db path %q", cfg.Database.Path)
	}
	if cfg.Logging.Level != "info" {
		t.Fatalf("unexpected log level %q", cfg.Logging.Level)
	}
	if cfg.Server.APIEndpoint != "/api/v1" || cfg.Server.MCPEndpoint != "/mcp" {
		t.Fatalf("unexpected server endpoints %#v", cfg.Server)
	}
	if got := cfg.Dashboard.StalenessWindow(); got != 120*24*time.Hour {
		t.Fatalf("unexpected staleness window %s", got)
	}
	if got := cfg.Search.CacheTTL(); got != 5*time.Minute {
		t.Fatalf("unexpected cache ttl %s", got)
	}
	if got := cfg.Search.SlowCacheTTL(); got != 30*time.Minute {
		t.Fatalf("unexpected slow cache ttl %s", got)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	defaults := Default("/tmp/datatracker.db")
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"), defaults)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Database.Path != defaults.Database.Path {
		t.Fatalf("expected default db path, got %q", cfg.Database.Path)
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[database]
path = "/custom/datatracker.db"

[logging]
level = "debug"

[logging.dev_file]
enabled = false

[server]
http_bind = "0.0.0.0:9000"
mcp_endpoint = "/tools/mcp"

[dashboard]
staleness_days = 30

[search]
cache_ttl_seconds = -1
max_results = 50
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := Load(path, Default("/tmp/default.db"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Database.Path != "/custom/datatracker.db" {
		t.Fatalf("unexpected db path %q", cfg.Database.Path)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.DevFile.Enabled {
		t.Fatalf("unexpected logging config %#v", cfg.Logging)
	}
	if cfg.Logging.DevFile.Dir != ".datatracker/log" {
		t.Fatalf("expected default dev log dir retained, got %q", cfg.Logging.DevFile.Dir)
	}
	if cfg.Server.HTTPBind != "0.0.0.0:9000" || cfg.Server.MCPEndpoint != "/tools/mcp" || cfg.Server.APIEndpoint != "/api/v1" {
		t.Fatalf("unexpected server config %#v", cfg.Server)
	}
	if cfg.Dashboard.StalenessWindow() != 30*24*time.Hour || cfg.Dashboard.MaxADResults != 500 {
		t.Fatalf("unexpected dashboard config %#v", cfg.Dashboard)
	}
	if cfg.Search.CacheTTL() >= 0 || cfg.Search.MaxResults != 50 {
		t.Fatalf("unexpected search config %#v", cfg.Search)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"log level": `
[logging]
level = "loud"
`,
		"endpoint prefix": `
[server]
api_endpoint = "api"
`,
		"endpoint collision": `
[server]
api_endpoint = "/x"
mcp_endpoint = "/x"
`,
		"negative staleness": `
[dashboard]
staleness_days = -1
`,
		"negative max results": `
[search]
max_results = -5
`,
		"empty db path": `
[database]
path = "  "
`,
		"bad toml": `
[search
`,
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
				t.Fatalf("WriteFile() error = %v", err)
			}
			if _, err := Load(path, Default("/tmp/default.db")); err == nil {
				t.Fatal("expected Load() error")
			}
		})
	}
}

func TestLoadEmptyFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	cfg, err := Load(path, Default("/tmp/default.db"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Search.MaxResults != 1000 {
		t.Fatalf("unexpected max results %d", cfg.Search.MaxResults)
	}
}

func TestEnsureConfigDir(t *testing.T) {
	target := filepath.Join(t.TempDir(), "a", "b", "config.toml")
	if err := EnsureConfigDir(target); err != nil {
		t.Fatalf("EnsureConfigDir() error = %v", err)
	}
	if _, err := os.Stat(filepath.Dir(target)); err != nil {
		t.Fatalf("expected dir to exist, stat error %v", err)
	}
}
