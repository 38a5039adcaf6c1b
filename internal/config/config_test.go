package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, ".", cfg.InputDir)
	assert.Equal(t, ".", cfg.OutputDir)
	assert.Equal(t, "png", cfg.Format)
	assert.Equal(t, "gonum", cfg.Backend)
	assert.Equal(t, 1, cfg.Jobs)
	assert.Equal(t, 0.0, cfg.Chart.KYMin)
	assert.Equal(t, 2.0, cfg.Chart.KYMax)
	assert.Equal(t, 6.4, cfg.Chart.WidthIn)
	assert.Equal(t, 4.8, cfg.Chart.HeightIn)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fluxplot.yaml")
	content := `
input_dir: runs/latest
format: svg
backend: gochart
jobs: 4
skip_generations: 10
layout:
  groups: 4
  averaged: true
chart:
  k_y_min: 0.8
  k_y_max: 1.2
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "runs/latest", cfg.InputDir)
	assert.Equal(t, ".", cfg.OutputDir) // untouched keys keep defaults
	assert.Equal(t, "svg", cfg.Format)
	assert.Equal(t, "gochart", cfg.Backend)
	assert.Equal(t, 4, cfg.Jobs)
	assert.Equal(t, 10, cfg.SkipGenerations)
	assert.Equal(t, LayoutConfig{Groups: 4, Averaged: true}, cfg.Layout)
	assert.Equal(t, 0.8, cfg.Chart.KYMin)
	assert.Equal(t, 6.4, cfg.Chart.WidthIn)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromFileErrors(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("jobs: [not a number"), 0o644))
	_, err = LoadFromFile(path)
	assert.Error(t, err)
}

func TestLoadEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fluxplot.yaml")
	require.NoError(t, os.WriteFile(path, []byte("format: svg\njobs: 2\n"), 0o644))

	t.Setenv("FLUXPLOT_FORMAT", "PNG")
	t.Setenv("FLUXPLOT_JOBS", "8")
	t.Setenv("FLUXPLOT_OUTPUT_DIR", "charts")
	t.Setenv("FLUXPLOT_LOG_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "png", cfg.Format)
	assert.Equal(t, 8, cfg.Jobs)
	assert.Equal(t, "charts", cfg.OutputDir)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadBadEnv(t *testing.T) {
	t.Setenv("FLUXPLOT_JOBS", "many")
	_, err := Load("")
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero jobs", func(c *Config) { c.Jobs = 0 }},
		{"negative skip", func(c *Config) { c.SkipGenerations = -1 }},
		{"negative groups", func(c *Config) { c.Layout.Groups = -2 }},
		{"zero width", func(c *Config) { c.Chart.WidthIn = 0 }},
		{"inverted k limits", func(c *Config) { c.Chart.KYMin, c.Chart.KYMax = 2, 0 }},
		{"unknown backend", func(c *Config) { c.Backend = "matplotlib" }},
		{"empty format", func(c *Config) { c.Format = "" }},
		{"unknown level", func(c *Config) { c.Logging.Level = "trace" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}
}
