package platform

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
)

// DefaultAppName names the config and data directories.
const DefaultAppName = "datatracker"

// Environment variables that override resolved paths and mode.
const (
	EnvConfigPath = "DATATRACKER_CONFIG"
	EnvDBPath     = "DATATRACKER_DB_PATH"
	EnvDevMode    = "DATATRACKER_DEV_MODE"
)

// Paths holds the resolved config file, data directory, and database locations.
type Paths struct {
	ConfigPath string
	DataDir    string
	DBPath     string
}

// Options selects the app directory name and dev-mode suffix.
type Options struct {
	AppName string
	DevMode bool
}

// Overrides reports which paths came from the environment.
type Overrides struct {
	Config bool
	DB     bool
}

// DefaultPaths returns the production paths for the default app name.
func DefaultPaths() (Paths, error) {
	return DefaultPathsWithOptions(Options{AppName: DefaultAppName})
}

// DefaultPathsWithOptions resolves paths for the current OS and user.
func DefaultPathsWithOptions(opts Options) (Paths, error) {
	appName := strings.TrimSpace(opts.AppName)
	if appName == "" {
		appName = DefaultAppName
	}
	if opts.DevMode {
		appName += "-dev"
	}

	configDir, err := os.UserConfigDir()
	if err != nil {
		return Paths{}, fmt.Errorf("user config dir: %w", err)
	}
	dataDir := configDir
	if runtime.GOOS == "linux" {
		home, homeErr := os.UserHomeDir()
		if homeErr != nil {
			return Paths{}, fmt.Errorf("user home dir: %w", homeErr)
		}
		dataDir = filepath.Join(home, ".local", "share")
	}
	if runtime.GOOS == "windows" {
		if v := strings.TrimSpace(os.Getenv("LOCALAPPDATA")); v != "" {
			dataDir = v
		}
	}

	env := map[string]string{
		"XDG_CONFIG_HOME": os.Getenv("XDG_CONFIG_HOME"),
		"XDG_DATA_HOME":   os.Getenv("XDG_DATA_HOME"),
		"APPDATA":         os.Getenv("APPDATA"),
		"LOCALAPPDATA":    os.Getenv("LOCALAPPDATA"),
	}
	return PathsFor(runtime.GOOS, env, configDir, dataDir, appName)
}

// PathsFor resolves paths for one OS from base dirs and XDG/APPDATA env values.
func PathsFor(goos string, env map[string]string, userConfigDir, userDataDir, appName string) (Paths, error) {
	if userConfigDir == "" || userDataDir == "" {
		return Paths{}, fmt.Errorf("empty base dirs")
	}
	appName = strings.TrimSpace(appName)
	if appName == "" {
		return Paths{}, fmt.Errorf("empty app name")
	}

	configBase := userConfigDir
	dataBase := userDataDir

	switch goos {
	case "linux":
		if v := env["XDG_CONFIG_HOME"]; v != "" {
			configBase = v
		}
		if v := env["XDG_DATA_HOME"]; v != "" {
			dataBase = v
		}
	case "windows":
		if v := env["APPDATA"]; v != "" {
			configBase = v
		}
		if v := env["LOCALAPPDATA"]; v != "" {
			dataBase = v
		}
	case "darwin":
		// Keep os.UserConfigDir/UserCacheDir defaults for macOS.
	default:
		// Fallback for other platforms.
	}

	appConfigDir := filepath.Join(configBase, appName)
	appDataDir := filepath.Join(dataBase, appName)
	dbName := appName + ".db"
	return Paths{
		ConfigPath: filepath.Join(appConfigDir, "config.toml"),
		DataDir:    appDataDir,
		DBPath:     filepath.Join(appDataDir, dbName),
	}, nil
}

// Resolve returns the OS default paths with DATATRACKER_* environment overrides applied.
func Resolve(opts Options, getenv func(string) string) (Paths, Overrides, error) {
	p, err := DefaultPathsWithOptions(opts)
	if err != nil {
		return Paths{}, Overrides{}, err
	}
	p, over := ApplyEnv(p, getenv)
	return p, over, nil
}

// ApplyEnv replaces config and database paths with non-empty environment values.
func ApplyEnv(p Paths, getenv func(string) string) (Paths, Overrides) {
	var out Overrides
	if getenv == nil {
		return p, out
	}
	if v := strings.TrimSpace(getenv(EnvConfigPath)); v != "" {
		p.ConfigPath = v
		out.Config = true
	}
	if v := strings.TrimSpace(getenv(EnvDBPath)); v != "" {
		p.DBPath = v
		out.DB = true
	}
	return p, out
}

// DevModeFromEnv parses the dev-mode switch; ok is false when unset or malformed.
func DevModeFromEnv(getenv func(string) string) (devMode bool, ok bool) {
	if getenv == nil {
		return false, false
	}
	raw := strings.TrimSpace(getenv(EnvDevMode))
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}
