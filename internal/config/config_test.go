package config_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/stanmath/internal/arena"
	"github.com/born-ml/stanmath/internal/config"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefault_Valid(t *testing.T) {
	cfg := config.Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, arena.DefaultConfig(), cfg.Tape.Arena)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_TOML(t *testing.T) {
	path := writeFile(t, "stanad.toml", `
[tape]
capacity = 64

[tape.arena]
initial_slab_size = 128
growth_factor = 1.5

[parallel]
workers = 3

[optimize]
algorithm = "sgd"
max_iters = 50

[log]
level = "debug"
format = "json"
`)
	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 64, cfg.Tape.Capacity)
	assert.Equal(t, arena.Config{InitialSlabSize: 128, GrowthFactor: 1.5}, cfg.Tape.Arena)
	assert.Equal(t, 3, cfg.Parallel.Workers)
	assert.Equal(t, 1, cfg.Parallel.MinChunkSize, "unset keys keep defaults")
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "sgd", cfg.Optimize.Algorithm)
	assert.Equal(t, 50, cfg.Optimize.MaxIters)
	assert.Equal(t, 1e-6, cfg.Optimize.Tol)

	p := cfg.ParallelOptions()
	assert.True(t, p.Enabled)
	assert.Equal(t, 3, p.NumWorkers)

	opts := cfg.TapeOptions(nil)
	assert.Equal(t, 64, opts.Capacity)
	assert.Equal(t, 128, opts.Arena.InitialSlabSize)
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, "stanad.yml", `
tape:
  arena:
    initial_slab_size: 32
parallel:
  workers: 1
  min_chunk_size: 4
log:
  level: warn
`)
	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 32, cfg.Tape.Arena.InitialSlabSize)
	assert.Equal(t, arena.DefaultGrowthFactor, cfg.Tape.Arena.GrowthFactor)
	assert.Equal(t, 4, cfg.Parallel.MinChunkSize)
	assert.False(t, cfg.ParallelOptions().Enabled)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoad_Errors(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorContains(t, err, "config file not found")

	_, err = config.Load(writeFile(t, "stanad.json", `{}`))
	assert.ErrorIs(t, err, config.ErrUnsupportedFormat)

	_, err = config.Load(writeFile(t, "bad.toml", `[tape`))
	assert.ErrorContains(t, err, "failed to parse config")

	_, err = config.Load(writeFile(t, "bad.yaml", "tape:\n  arena:\n    growth_factor: 0.5\n"))
	assert.ErrorIs(t, err, arena.ErrInvalidConfig)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"negative capacity", func(c *config.Config) { c.Tape.Capacity = -1 }},
		{"zero slab", func(c *config.Config) { c.Tape.Arena.InitialSlabSize = 0 }},
		{"negative workers", func(c *config.Config) { c.Parallel.Workers = -2 }},
		{"zero chunk", func(c *config.Config) { c.Parallel.MinChunkSize = 0 }},
		{"bad algorithm", func(c *config.Config) { c.Optimize.Algorithm = "newton" }},
		{"negative tol", func(c *config.Config) { c.Optimize.Tol = -1 }},
		{"bad level", func(c *config.Config) { c.Log.Level = "loud" }},
		{"bad format", func(c *config.Config) { c.Log.Format = "xml" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv(config.EnvPath, "")
	cfg, err := config.LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)

	path := writeFile(t, "env.toml", "[log]\nlevel = \"error\"\n")
	t.Setenv(config.EnvPath, path)
	cfg, err = config.LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.Log.Level)
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.Default()

	cfg.Logger(&buf, false).Debug("hidden")
	assert.Empty(t, buf.String())

	cfg.Logger(&buf, true).Debug("shown", "k", 1)
	assert.Contains(t, buf.String(), "msg=shown")
	assert.Contains(t, buf.String(), "k=1")

	buf.Reset()
	cfg.Log.Format = "json"
	cfg.Logger(&buf, false).Info("hello")
	assert.Contains(t, buf.String(), `"msg":"hello"`)
}
