package logging

import (
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	EnvLogLevel   = "GOBENCODE_LOG_LEVEL"
	EnvLogNoColor = "GOBENCODE_LOG_NOCOLOR"
)

// Config controls the process-wide logger.
type Config struct {
	Level   zerolog.Level
	NoColor bool
	Out     io.Writer
}

var (
	configureOnce sync.Once
	root          zerolog.Logger
)

// Configure builds the root logger from defaults and environment overrides.
// Only the first call has any effect.
func Configure() {
	configureOnce.Do(func() {
		cfg := DefaultConfig()
		applyEnvOverrides(&cfg)
		root = New(cfg)
	})
}

// Logger returns a child of the root logger tagged with component.
func Logger(component string) zerolog.Logger {
	Configure()
	return root.With().Str("component", component).Logger()
}

func DefaultConfig() Config {
	return Config{
		Level: zerolog.WarnLevel,
		Out:   os.Stderr,
	}
}

// New builds a console logger from cfg. zerolog drops events below its
// global level, so that is lowered when cfg asks for more detail.
func New(cfg Config) zerolog.Logger {
	if cfg.Level < zerolog.GlobalLevel() {
		zerolog.SetGlobalLevel(cfg.Level)
	}
	out := cfg.Out
	if out == nil {
		out = os.Stderr
	}
	writer := zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.RFC3339,
		NoColor:    cfg.NoColor,
	}
	return zerolog.New(writer).Level(cfg.Level).With().Timestamp().Logger()
}

func applyEnvOverrides(cfg *Config) {
	if lvl, ok := parseLevel(os.Getenv(EnvLogLevel)); ok {
		cfg.Level = lvl
	}
	if v, ok := parseBool(os.Getenv(EnvLogNoColor)); ok {
		cfg.NoColor = v
	}
}

func parseLevel(raw string) (zerolog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return zerolog.WarnLevel, false
	case "trace":
		return zerolog.TraceLevel, true
	case "debug":
		return zerolog.DebugLevel, true
	case "info":
		return zerolog.InfoLevel, true
	case "warn", "warning":
		return zerolog.WarnLevel, true
	case "error":
		return zerolog.ErrorLevel, true
	case "disabled", "disable", "off", "none":
		return zerolog.Disabled, true
	default:
		return zerolog.WarnLevel, false
	}
}

func parseBool(raw string) (bool, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}
