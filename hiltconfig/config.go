// Package hiltconfig loads container settings from a YAML file.
//
//	start_timeout: 10s
//	shutdown_timeout: 30s
//	eager: true
//	logging:
//	  level: info
//	  format: json
package hiltconfig

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/danpasecinic/hilt"
)

type Config struct {
	StartTimeout    time.Duration `koanf:"start_timeout" validate:"gte=0"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gte=0"`
	Eager           bool          `koanf:"eager"`
	Logging         Logging       `koanf:"logging"`
}

type Logging struct {
	Level  string `koanf:"level" validate:"required,oneof=debug info warn error DEBUG INFO WARN ERROR"`
	Format string `koanf:"format" validate:"required,oneof=text json"`
}

func Default() *Config {
	return &Config{
		ShutdownTimeout: 30 * time.Second,
		Logging: Logging{
			Level:  "info",
			Format: "text",
		},
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load reads path over the defaults and validates the result.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to load container config from %q: %w", path, err)
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to parse container config from %q: %w", path, err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("container config validation failed for %q: %w", path, err)
	}

	return cfg, nil
}

func Validate(cfg *Config) error {
	return validate.Struct(cfg)
}

// Options converts cfg to container options. Logs go to w.
func (cfg *Config) Options(w io.Writer) []hilt.Option {
	opts := []hilt.Option{
		hilt.WithLogger(cfg.Logging.Logger(w)),
		hilt.WithStartTimeout(cfg.StartTimeout),
		hilt.WithShutdownTimeout(cfg.ShutdownTimeout),
	}
	if cfg.Eager {
		opts = append(opts, hilt.WithEager())
	}
	return opts
}

// New loads path and builds a container from it, logging to stderr.
func New(path string, extra ...hilt.Option) (*hilt.Container, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	return hilt.New(append(cfg.Options(os.Stderr), extra...)...), nil
}

func (l Logging) Logger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: l.level()}
	if strings.EqualFold(l.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func (l Logging) level() slog.Level {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
