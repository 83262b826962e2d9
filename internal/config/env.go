package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
)

// Settings are process settings read from the environment. Defaults are
// provided via struct tags.
type Settings struct {
	// LogLevel is debug, info, warn or error. ENV: FORMSYNC_LOG_LEVEL
	LogLevel string `env:"FORMSYNC_LOG_LEVEL,default=info"`
	// Color is auto, always or never. ENV: FORMSYNC_COLOR
	Color string `env:"FORMSYNC_COLOR,default=auto"`
	// Debounce delays reruns in watch mode. ENV: FORMSYNC_WATCH_DEBOUNCE
	Debounce time.Duration `env:"FORMSYNC_WATCH_DEBOUNCE,default=100ms"`
}

// LoadSettings decodes Settings from the environment.
func LoadSettings() (Settings, error) {
	var s Settings
	if err := envdecode.Decode(&s); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return Settings{}, fmt.Errorf("decoding environment: %w", err)
	}
	if _, err := s.Level(); err != nil {
		return Settings{}, err
	}
	if _, err := ParseColorMode(s.Color); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Level parses LogLevel.
func (s Settings) Level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log level %q: %w", s.LogLevel, err)
	}
	return lvl, nil
}

// ColorMode selects when output is colorized.
type ColorMode uint8

const (
	ColorAuto ColorMode = iota
	ColorAlways
	ColorNever
)

var colorModeNames = [...]string{"auto", "always", "never"}

// String returns the mode name.
func (m ColorMode) String() string {
	if int(m) < len(colorModeNames) {
		return colorModeNames[m]
	}
	return "unknown"
}

// ParseColorMode parses a mode name as printed by String.
func ParseColorMode(s string) (ColorMode, error) {
	for i, name := range colorModeNames {
		if strings.EqualFold(s, name) {
			return ColorMode(i), nil
		}
	}
	return ColorAuto, fmt.Errorf("unknown color mode %q", s)
}

// Colorize reports whether output should be colored given whether it goes
// to a terminal.
func (m ColorMode) Colorize(terminal bool) bool {
	switch m {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	default:
		return terminal
	}
}
