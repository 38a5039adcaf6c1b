// Package config loads fluxplot settings from a YAML file and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("invalid configuration")

// Config contains all fluxplot settings.
type Config struct {
	// InputDir holds vars.csv, k_eff.csv and interface.csv.
	InputDir string `yaml:"input_dir"`

	// OutputDir receives the chart images.
	OutputDir string `yaml:"output_dir"`

	// Format is the image encoding: png, svg (and pdf, jpg, eps, tif with the gonum backend).
	Format string `yaml:"format"`

	// Backend selects the plotting library: "gonum" or "gochart".
	Backend string `yaml:"backend"`

	// Jobs is the number of charts rendered at once.
	Jobs int `yaml:"jobs"`

	// SkipGenerations drops leading inactive generations from the k statistics.
	SkipGenerations int `yaml:"skip_generations"`

	// PDF, when set, is the path of the summary report.
	PDF string `yaml:"pdf"`

	Layout  LayoutConfig  `yaml:"layout"`
	Chart   ChartConfig   `yaml:"chart"`
	Logging LoggingConfig `yaml:"logging"`
}

// LayoutConfig describes interface.csv. Groups 0 infers the layout from the row count.
type LayoutConfig struct {
	Groups   int  `yaml:"groups"`
	Averaged bool `yaml:"averaged"`
}

// ChartConfig holds figure size and the k_eff y-limits.
type ChartConfig struct {
	WidthIn  float64 `yaml:"width_in"`
	HeightIn float64 `yaml:"height_in"`
	KYMin    float64 `yaml:"k_y_min"`
	KYMax    float64 `yaml:"k_y_max"`
}

// LoggingConfig configures log verbosity: "info" (default) or "debug".
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		InputDir:  ".",
		OutputDir: ".",
		Format:    "png",
		Backend:   "gonum",
		Jobs:      1,
		Chart: ChartConfig{
			WidthIn:  6.4,
			HeightIn: 4.8,
			KYMin:    0,
			KYMax:    2,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load builds the configuration: defaults -> YAML file at path (if non-empty) -> environment.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		fileConfig, err := LoadFromFile(path)
		if err != nil {
			return nil, err
		}
		cfg = fileConfig
	}
	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromFile loads configuration from a specific YAML file on top of the defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Jobs < 1 {
		return fmt.Errorf("%w: jobs must be at least 1, got %d", ErrInvalid, c.Jobs)
	}
	if c.SkipGenerations < 0 {
		return fmt.Errorf("%w: skip_generations must be non-negative, got %d", ErrInvalid, c.SkipGenerations)
	}
	if c.Layout.Groups < 0 {
		return fmt.Errorf("%w: layout.groups must be non-negative, got %d", ErrInvalid, c.Layout.Groups)
	}
	if c.Chart.WidthIn <= 0 || c.Chart.HeightIn <= 0 {
		return fmt.Errorf("%w: chart size must be positive, got %gx%g", ErrInvalid, c.Chart.WidthIn, c.Chart.HeightIn)
	}
	if c.Chart.KYMin >= c.Chart.KYMax {
		return fmt.Errorf("%w: k_y_min (%g) must be below k_y_max (%g)", ErrInvalid, c.Chart.KYMin, c.Chart.KYMax)
	}

	validBackends := map[string]bool{"gonum": true, "gochart": true}
	if !validBackends[strings.ToLower(c.Backend)] {
		return fmt.Errorf("%w: backend %q (valid: gonum, gochart)", ErrInvalid, c.Backend)
	}
	if c.Format == "" {
		return fmt.Errorf("%w: format must be set", ErrInvalid)
	}

	validLevels := map[string]bool{"": true, "info": true, "debug": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("%w: log level %q (valid: info, debug)", ErrInvalid, c.Logging.Level)
	}
	return nil
}

// applyEnvOverrides applies FLUXPLOT_* environment variables to the config.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("FLUXPLOT_INPUT_DIR"); v != "" {
		cfg.InputDir = v
	}
	if v := os.Getenv("FLUXPLOT_OUTPUT_DIR"); v != "" {
		cfg.OutputDir = v
	}
	if v := os.Getenv("FLUXPLOT_FORMAT"); v != "" {
		cfg.Format = strings.ToLower(v)
	}
	if v := os.Getenv("FLUXPLOT_BACKEND"); v != "" {
		cfg.Backend = strings.ToLower(v)
	}
	if v := os.Getenv("FLUXPLOT_JOBS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: FLUXPLOT_JOBS=%q: %v", ErrInvalid, v, err)
		}
		cfg.Jobs = n
	}
	if v := os.Getenv("FLUXPLOT_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	return nil
}
