package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

const (
	defaultLogLevel      = "warn"
	defaultBackend       = "file"
	defaultRenderStyle   = RenderStyleAuto
	defaultMaxInputBytes = 10 * 1024 * 1024
)

const (
	RenderStyleAuto  = "auto"
	RenderStyleDark  = "dark"
	RenderStyleLight = "light"
	RenderStylePlain = "plain"
)

type Config struct {
	Logging LoggingConfig `toml:"logging"`
	Storage StorageConfig `toml:"storage"`
	Render  RenderConfig  `toml:"render"`
	Input   InputConfig   `toml:"input"`
}

type LoggingConfig struct {
	Level string `toml:"level"`
}

type StorageConfig struct {
	Backend string `toml:"backend"`
}

type RenderConfig struct {
	Style string `toml:"style"`
	Width int    `toml:"width"`
}

type InputConfig struct {
	MaxBytes int64 `toml:"max_bytes"`
}

func DefaultConfig() Config {
	return Config{
		Logging: LoggingConfig{Level: defaultLogLevel},
		Storage: StorageConfig{Backend: defaultBackend},
		Render:  RenderConfig{Style: defaultRenderStyle},
		Input:   InputConfig{MaxBytes: defaultMaxInputBytes},
	}
}

// Load reads ConfigPath on top of the defaults. A missing or empty file
// yields the defaults.
func Load() (Config, error) {
	return loadConfigFromPath(ConfigPath())
}

func (c Config) LogLevel() string {
	level := strings.TrimSpace(c.Logging.Level)
	if level == "" {
		return defaultLogLevel
	}
	return level
}

func (c Config) StorageBackend() string {
	backend := strings.ToLower(strings.TrimSpace(c.Storage.Backend))
	if backend == "" {
		return defaultBackend
	}
	return backend
}

func (c Config) RenderStyle() string {
	switch style := strings.ToLower(strings.TrimSpace(c.Render.Style)); style {
	case RenderStyleDark, RenderStyleLight, RenderStylePlain:
		return style
	default:
		return RenderStyleAuto
	}
}

// RenderWidth is the configured wrap width; 0 means use the terminal width.
func (c Config) RenderWidth() int {
	if c.Render.Width < 0 {
		return 0
	}
	return c.Render.Width
}

func (c Config) MaxInputBytes() int64 {
	if c.Input.MaxBytes <= 0 {
		return defaultMaxInputBytes
	}
	return c.Input.MaxBytes
}

func loadConfigFromPath(path string) (Config, error) {
	cfg := DefaultConfig()
	if err := readTOML(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("load %s: %w", path, err)
	}
	return cfg, nil
}

func readTOML(path string, out any) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return errors.New("path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil
	}
	return toml.Unmarshal(data, out)
}
