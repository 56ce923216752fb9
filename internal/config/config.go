package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	MinGap          time.Duration `env:"TAPSYNC_MIN_GAP" envDefault:"100ms"`
	SmoothingWindow int           `env:"TAPSYNC_SMOOTHING_WINDOW" envDefault:"3"`
	Allocator       string        `env:"TAPSYNC_ALLOCATOR" envDefault:"passthrough"`
	ScaleThreshold  float64       `env:"TAPSYNC_SCALE_THRESHOLD" envDefault:"0.2"`

	SeekStep time.Duration `env:"TAPSYNC_SEEK_STEP" envDefault:"500ms"`
	KeyStart string        `env:"TAPSYNC_KEY_START" envDefault:"i"`
	KeyEnd   string        `env:"TAPSYNC_KEY_END" envDefault:"o"`
	KeyNext  string        `env:"TAPSYNC_KEY_NEXT" envDefault:"ArrowDown"`

	FPS int `env:"TAPSYNC_FPS" envDefault:"30"`

	DataDir  string `env:"TAPSYNC_DATA_DIR"`
	LogLevel string `env:"TAPSYNC_LOG_LEVEL" envDefault:"info"`
}

// Overrides holds CLI flag values that take priority over env vars.
type Overrides struct {
	EnvFile         string
	MinGap          *time.Duration // nil when the flag was not given; zero is valid
	SmoothingWindow int
	Allocator       string
	DataDir         string
	LogLevel        string
}

// Load reads configuration from .env file, environment variables, and CLI overrides.
// Priority: CLI flags > environment variables > .env file > struct defaults.
func Load(overrides Overrides) (*Config, error) {
	envFile := overrides.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if _, err := os.Stat(envFile); err == nil {
		_ = godotenv.Load(envFile)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	if overrides.MinGap != nil {
		cfg.MinGap = *overrides.MinGap
	}
	if overrides.SmoothingWindow > 0 {
		cfg.SmoothingWindow = overrides.SmoothingWindow
	}
	if overrides.Allocator != "" {
		cfg.Allocator = overrides.Allocator
	}
	if overrides.DataDir != "" {
		cfg.DataDir = overrides.DataDir
	}
	if overrides.LogLevel != "" {
		cfg.LogLevel = overrides.LogLevel
	}

	if cfg.DataDir == "" {
		cfg.DataDir = defaultDataDir()
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.MinGap < 0 {
		return fmt.Errorf("min gap must not be negative, got %v", c.MinGap)
	}
	if c.SmoothingWindow < 1 {
		return fmt.Errorf(
			"smoothing window must be at least 1, got %d",
			c.SmoothingWindow,
		)
	}
	switch c.Allocator {
	case "passthrough", "scale":
	default:
		return fmt.Errorf(
			"unknown allocator %q: use passthrough or scale",
			c.Allocator,
		)
	}
	if c.FPS <= 0 {
		return fmt.Errorf("fps must be positive, got %d", c.FPS)
	}
	return nil
}

func defaultDataDir() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "tapsync")
}
