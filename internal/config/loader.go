package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/example/inkboard/internal/theme"
)

// ThemeEnv overrides the configured theme name.
const ThemeEnv = "INKBOARD_THEME"

// Loader handles loading the configuration.
type Loader struct {
	Version      string // Build version, used to determine dev mode
	OverridePath string // Set at compile time or by -config
}

// NewLoader creates a new Loader.
func NewLoader(version string, overridePath string) *Loader {
	return &Loader{
		Version:      version,
		OverridePath: overridePath,
	}
}

// Load attempts to load the configuration.
func (l *Loader) Load() (*Config, error) {
	path := l.GetConfigPath()
	if path == "" {
		return New(), nil // No config file found, return defaults
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cfg, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// GetConfigPath returns the path to the configuration file, or empty string if not found.
func (l *Loader) GetConfigPath() string {
	if l.OverridePath != "" {
		if _, err := os.Stat(l.OverridePath); err == nil {
			return l.OverridePath
		}
	}

	// Local run directory (dev mode)
	if l.Version == "dev" {
		wd, _ := os.Getwd()
		localPath := filepath.Join(wd, ".inkboardrc")
		if _, err := os.Stat(localPath); err == nil {
			return localPath
		}
	}

	if p := l.UserConfigPath(); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// UserConfigPath is where Save writes by default.
func (l *Loader) UserConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "inkboard", "config.rc")
}

// Save writes cfg to path, or to UserConfigPath when path is empty.
func (l *Loader) Save(cfg *Config, path string) (string, error) {
	if path == "" {
		path = l.UserConfigPath()
	}
	if path == "" {
		return "", fmt.Errorf("no config path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	return path, os.WriteFile(path, []byte(cfg.String()), 0o644)
}

// ResolveTheme picks the theme named by flag, then the environment, then the
// config file, looking first in the config's [theme.NAME] sections.
func (c *Config) ResolveTheme(flag string, loader *theme.Loader) (*theme.Theme, error) {
	name := flag
	if name == "" {
		name = os.Getenv(ThemeEnv)
	}
	if name == "" {
		name = c.Theme
	}
	if t, ok := c.Themes[name]; ok {
		return t, nil
	}
	return loader.Load(name)
}
