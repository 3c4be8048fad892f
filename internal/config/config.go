// Package config loads application settings from a TOML file under the
// user's config directory, falling back to defaults when the file is absent.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/statisfy/statisfy/internal/constants"
)

// App contains top-level application settings.
type App struct {
	Scheme string `toml:"scheme"`
	Debug  bool   `toml:"debug"`
}

// Window contains the main window's initial geometry.
type Window struct {
	Title  string `toml:"title"`
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
}

// Notifications contains desktop notification settings.
type Notifications struct {
	Enabled bool `toml:"enabled"`
}

// Config is the full application configuration.
type Config struct {
	App           App           `toml:"app"`
	Window        Window        `toml:"window"`
	Notifications Notifications `toml:"notifications"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		App: App{
			Scheme: constants.DefaultScheme,
		},
		Window: Window{
			Title:  "Statisfy",
			Width:  1024,
			Height: 768,
		},
		Notifications: Notifications{
			Enabled: true,
		},
	}
}

// DefaultPath returns the standard config file location,
// ~/.config/statisfy/config.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".config", "statisfy", "config.toml"), nil
}

// Load reads the config file at path, or the default location when path is
// empty. A missing file is not an error: defaults are returned and exists is
// false. A present but unparsable file is an error.
func Load(path string) (cfg *Config, resolved string, exists bool, err error) {
	resolved = path
	if resolved == "" {
		resolved, err = DefaultPath()
		if err != nil {
			return nil, "", false, err
		}
	}

	cfg = Default()

	data, err := os.ReadFile(resolved)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, resolved, false, nil
		}
		return nil, resolved, false, fmt.Errorf("read config %s: %w", resolved, err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, resolved, true, fmt.Errorf("parse config %s: %w", resolved, err)
	}

	if cfg.App.Scheme == "" {
		cfg.App.Scheme = constants.DefaultScheme
	}
	if cfg.Window.Width <= 0 || cfg.Window.Height <= 0 {
		def := Default()
		cfg.Window.Width = def.Window.Width
		cfg.Window.Height = def.Window.Height
	}

	return cfg, resolved, true, nil
}
