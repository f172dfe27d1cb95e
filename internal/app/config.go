package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

const EnvPrefix = "PYDOJO_"

// Config controls runtime behavior for the CLI. Every field can be set from
// the environment with the PYDOJO_ prefix.
type Config struct {
	DataDir       string         `env:"DATA_DIR"`
	LogPath       string         `env:"LOG_PATH"`
	Debug         bool           `env:"DEBUG"`
	CurriculumDir string         `env:"CURRICULUM_DIR"`
	AdminPassword string         `env:"ADMIN_PASSWORD"`
	RequireLogin  bool           `env:"REQUIRE_LOGIN"`
	Timezone      string         `env:"TIMEZONE"`
	OutputFormat  string         `env:"OUTPUT_FORMAT"`
	Gameplay      GameplayConfig `envPrefix:"GAMEPLAY_"`
	UI            UIConfig       `envPrefix:"UI_"`
}

type GameplayConfig struct {
	HintAfterAttempts     int `env:"HINT_AFTER_ATTEMPTS"`
	MotivateAfterAttempts int `env:"MOTIVATE_AFTER_ATTEMPTS"`
	QuizTickMS            int `env:"QUIZ_TICK_MS"`
}

// UIConfig.StyleVariant left empty falls back to the saved theme setting,
// then to modern_arcade.
type UIConfig struct {
	StyleVariant string `env:"STYLE_VARIANT"`
	ASCIIOnly    bool   `env:"ASCII_ONLY"`
	Width        int    `env:"WIDTH"`
}

func DefaultConfig() Config {
	return Config{
		AdminPassword: "admin123",
		OutputFormat:  string(FormatText),
		Gameplay: GameplayConfig{
			HintAfterAttempts:     2,
			MotivateAfterAttempts: 3,
			QuizTickMS:            1000,
		},
	}
}

// LoadConfig overlays environ (os.Environ when nil) on the defaults and
// validates the result.
func LoadConfig(environ map[string]string) (Config, error) {
	cfg := DefaultConfig()
	opts := env.Options{Prefix: EnvPrefix}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	format, ok := parseOutputFormat(c.OutputFormat)
	if !ok {
		return fmt.Errorf("invalid output format %q", c.OutputFormat)
	}
	c.OutputFormat = string(format)

	if c.Gameplay.HintAfterAttempts <= 0 {
		c.Gameplay.HintAfterAttempts = 2
	}
	if c.Gameplay.MotivateAfterAttempts <= 0 {
		c.Gameplay.MotivateAfterAttempts = 3
	}
	if c.Gameplay.QuizTickMS <= 0 {
		c.Gameplay.QuizTickMS = 1000
	}

	switch c.UI.StyleVariant {
	case "", "modern_arcade", "cozy_clean", "retro_terminal":
	default:
		return fmt.Errorf("invalid ui style variant %q", c.UI.StyleVariant)
	}
	if c.UI.Width < 0 {
		return fmt.Errorf("invalid ui width %d", c.UI.Width)
	}

	if tz := strings.TrimSpace(c.Timezone); tz != "" {
		if _, err := time.LoadLocation(tz); err != nil {
			return fmt.Errorf("invalid timezone %q: %w", tz, err)
		}
	}

	if c.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return errors.New("cannot resolve user home directory")
		}
		c.DataDir = filepath.Join(home, ".local", "share", "pydojo")
	}
	return nil
}

// Location is the zone used to decide calendar days for streaks.
func (c Config) Location() *time.Location {
	if tz := strings.TrimSpace(c.Timezone); tz != "" {
		if loc, err := time.LoadLocation(tz); err == nil {
			return loc
		}
	}
	return time.Local
}
