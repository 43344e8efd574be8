// Package config loads and validates the kalkyl configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

type Config struct {
	Editor  EditorConfig  `toml:"editor"`
	Logging LoggingConfig `toml:"logging"`
	Session SessionConfig `toml:"session"`
}

type EditorConfig struct {
	// LazyLoadThreshold is the file size in bytes above which only the
	// first sheet is materialized on open. Zero disables lazy loading.
	LazyLoadThreshold    int64 `toml:"lazy_load_threshold"`
	ConfirmQuitOnUnsaved bool  `toml:"confirm_quit_on_unsaved"`
	InfoPanelHeight      int   `toml:"info_panel_height"`
}

type LoggingConfig struct {
	Level   string `toml:"level"` // debug | info | warn | error
	DevFile bool   `toml:"dev_file"`
	DevDir  string `toml:"dev_dir"`
}

type SessionConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

func Default(sessionPath string) Config {
	return Config{
		Editor: EditorConfig{
			LazyLoadThreshold:    1 << 20,
			ConfirmQuitOnUnsaved: true,
			InfoPanelHeight:      5,
		},
		Logging: LoggingConfig{
			Level:   "info",
			DevFile: false,
		},
		Session: SessionConfig{
			Enabled: true,
			Path:    sessionPath,
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
	if c.Editor.LazyLoadThreshold < 0 {
		return errors.New("editor.lazy_load_threshold must be >= 0")
	}
	if c.Editor.InfoPanelHeight < 1 {
		return errors.New("editor.info_panel_height must be >= 1")
	}

	switch strings.TrimSpace(strings.ToLower(c.Logging.Level)) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging.level: %q", c.Logging.Level)
	}

	if c.Session.Enabled && strings.TrimSpace(c.Session.Path) == "" {
		return errors.New("session.path is required when session.enabled is set")
	}

	return nil
}

func EnsureConfigDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
