// Package config loads stanad settings from TOML or YAML files.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/born-ml/stanmath/internal/arena"
	"github.com/born-ml/stanmath/internal/autodiff"
	"github.com/born-ml/stanmath/internal/parallel"
)

// EnvPath names the environment variable LoadFromEnv reads.
const EnvPath = "STANAD_CONFIG"

// ErrUnsupportedFormat is returned for files that are neither TOML nor YAML.
var ErrUnsupportedFormat = errors.New("config: unsupported file format")

// Config holds the complete configuration.
type Config struct {
	Tape     TapeConfig     `toml:"tape" yaml:"tape"`
	Parallel ParallelConfig `toml:"parallel" yaml:"parallel"`
	Optimize OptimizeConfig `toml:"optimize" yaml:"optimize"`
	Log      LogConfig      `toml:"log" yaml:"log"`
}

// TapeConfig holds tape memory settings.
type TapeConfig struct {
	Capacity int          `toml:"capacity" yaml:"capacity"`
	Arena    arena.Config `toml:"arena" yaml:"arena"`
}

// ParallelConfig holds worker settings for multi-point gradient evaluation.
type ParallelConfig struct {
	Workers      int `toml:"workers" yaml:"workers"` // 0 means one per CPU.
	MinChunkSize int `toml:"min_chunk_size" yaml:"min_chunk_size"`
}

// OptimizeConfig holds mode-finding settings.
type OptimizeConfig struct {
	Algorithm string  `toml:"algorithm" yaml:"algorithm"` // sgd or adam.
	LR        float64 `toml:"lr" yaml:"lr"`               // 0 selects the algorithm's default.
	MaxIters  int     `toml:"max_iters" yaml:"max_iters"`
	Tol       float64 `toml:"tol" yaml:"tol"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `toml:"level" yaml:"level"`   // debug, info, warn or error.
	Format string `toml:"format" yaml:"format"` // text or json.
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Tape: TapeConfig{
			Capacity: autodiff.DefaultConfig().Capacity,
			Arena:    arena.DefaultConfig(),
		},
		Parallel: ParallelConfig{
			Workers:      0,
			MinChunkSize: 1,
		},
		Optimize: OptimizeConfig{
			Algorithm: "adam",
			LR:        0.01,
			MaxIters:  5000,
			Tol:       1e-6,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads the file at path on top of the defaults. The format is chosen
// by extension: .toml, or .yaml/.yml.
func Load(path string) (*Config, error) {
	path = os.ExpandEnv(path)
	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if _, err := toml.Decode(string(content), cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(content, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromEnv loads the file named by STANAD_CONFIG, or returns the
// defaults when it is unset.
func LoadFromEnv() (*Config, error) {
	path := os.Getenv(EnvPath)
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}

// Validate checks that every setting is usable.
func (c *Config) Validate() error {
	if c.Tape.Capacity < 0 {
		return fmt.Errorf("config: tape.capacity must be >= 0, got %d", c.Tape.Capacity)
	}
	if err := c.Tape.Arena.Validate(); err != nil {
		return fmt.Errorf("config: tape.arena: %w", err)
	}
	if c.Parallel.Workers < 0 {
		return fmt.Errorf("config: parallel.workers must be >= 0, got %d", c.Parallel.Workers)
	}
	if c.Parallel.MinChunkSize < 1 {
		return fmt.Errorf("config: parallel.min_chunk_size must be >= 1, got %d", c.Parallel.MinChunkSize)
	}
	switch c.Optimize.Algorithm {
	case "sgd", "adam":
	default:
		return fmt.Errorf("config: optimize.algorithm must be sgd or adam, got %q", c.Optimize.Algorithm)
	}
	if c.Optimize.LR < 0 || c.Optimize.MaxIters < 0 || c.Optimize.Tol < 0 {
		return errors.New("config: optimize.lr, max_iters and tol must be >= 0")
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("config: log.format must be text or json, got %q", c.Log.Format)
	}
	return nil
}

// TapeOptions returns the autodiff configuration for new tapes.
func (c *Config) TapeOptions(logger *slog.Logger) autodiff.Config {
	return autodiff.Config{
		Arena:    c.Tape.Arena,
		Capacity: c.Tape.Capacity,
		Logger:   logger,
	}
}

// ParallelOptions returns the worker configuration.
func (c *Config) ParallelOptions() parallel.Config {
	workers := c.Parallel.Workers
	if workers == 0 {
		workers = runtime.NumCPU()
	}
	return parallel.Config{
		Enabled:      workers > 1,
		NumWorkers:   workers,
		MinChunkSize: c.Parallel.MinChunkSize,
	}
}

// Logger builds a logger writing to w. Verbose forces debug level.
func (c *Config) Logger(w io.Writer, verbose bool) *slog.Logger {
	level, err := parseLevel(c.Log.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return level, fmt.Errorf("config: log.level: %w", err)
	}
	return level, nil
}
