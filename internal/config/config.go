// Package config loads runtime settings from a YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ironsheep/bubble-region-mcp/internal/detection"
	"github.com/ironsheep/bubble-region-mcp/internal/imaging"
)

// Environment variables read by FromEnv.
const (
	EnvConfigPath = "BUBBLE_MCP_CONFIG"
	EnvLogLevel   = "BUBBLE_MCP_LOG_LEVEL"
)

// DefaultDisplayWidth is the preview width used when none is configured.
const DefaultDisplayWidth = 800

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds the settings shared by the MCP server and the CLI.
type Config struct {
	// DisplayWidth is the width in pixels of the preview a selection is drawn
	// on. The scale factor is DisplayWidth / original width.
	DisplayWidth int `yaml:"display_width"`

	// Preset names the base detection parameters ("marker" or "auto").
	Preset string `yaml:"preset"`

	// Detection overrides individual preset fields.
	Detection detection.Overrides `yaml:"detection"`

	Overlay imaging.OverlayStyle `yaml:"overlay"`

	// LogLevel is "info" or "debug".
	LogLevel string `yaml:"log_level"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		DisplayWidth: DefaultDisplayWidth,
		Preset:       detection.PresetMarker,
		Overlay:      imaging.DefaultOverlayStyle(),
		LogLevel:     "info",
	}
}

// Load reads a YAML file on top of Default. Keys missing from the file keep
// their default; keys present are validated as written.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML on top of Default and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromEnv loads the file named by BUBBLE_MCP_CONFIG, or the defaults when it
// is unset, then applies BUBBLE_MCP_LOG_LEVEL.
func FromEnv() (*Config, error) {
	cfg := Default()
	if path := os.Getenv(EnvConfigPath); path != "" {
		loaded, err := Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if level := os.Getenv(EnvLogLevel); level != "" {
		cfg.LogLevel = strings.ToLower(level)
		if err := Validate(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// Validate rejects values that would otherwise be silently replaced.
func Validate(cfg *Config) error {
	if cfg.DisplayWidth <= 0 {
		return fmt.Errorf("%w: display_width must be > 0, got %d", ErrInvalidConfig, cfg.DisplayWidth)
	}

	if _, err := cfg.Params(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	if err := cfg.Overlay.Validate(); err != nil {
		return fmt.Errorf("%w: overlay: %w", ErrInvalidConfig, err)
	}

	switch cfg.LogLevel {
	case "info", "debug":
	default:
		return fmt.Errorf("%w: log_level must be info or debug, got %q", ErrInvalidConfig, cfg.LogLevel)
	}

	return nil
}

// Params resolves the preset and overrides into detection parameters.
func (c *Config) Params() (detection.Params, error) {
	base, err := detection.PresetParams(c.Preset)
	if err != nil {
		return detection.Params{}, err
	}
	p := c.Detection.Apply(base)
	if err := p.Validate(); err != nil {
		return detection.Params{}, err
	}
	return p, nil
}

// Debug reports whether debug logging is enabled.
func (c *Config) Debug() bool {
	return c.LogLevel == "debug"
}
