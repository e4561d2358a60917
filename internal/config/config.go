// Package config provides configuration types and helpers for tracecompact.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/bimmerbailey/tracecompact/internal/output"
	"github.com/bimmerbailey/tracecompact/internal/redact"
	"github.com/bimmerbailey/tracecompact/internal/traceback"
)

// Default values for settings that have one.
const (
	DefaultFormat        = "text"
	DefaultColor         = "auto"
	DefaultRotateTimeout = "10s"
	DefaultHookTool      = "Bash"
)

// Config holds the application-wide configuration.
type Config struct {
	ProjectRoot     string          `mapstructure:"project_root"`
	MaxFrames       int             `mapstructure:"max_frames"`
	Format          string          `mapstructure:"format"`
	Color           string          `mapstructure:"color"`
	Verbose         bool            `mapstructure:"verbose"`
	LibraryPatterns []string        `mapstructure:"library_patterns"`
	TokenEncoding   string          `mapstructure:"token_encoding"`
	Redaction       RedactionConfig `mapstructure:"redaction"`
	Hook            HookConfig      `mapstructure:"hook"`
	Watch           WatchConfig     `mapstructure:"watch"`
}

// RedactionConfig holds configuration for secret redaction in summaries.
type RedactionConfig struct {
	// Enabled controls whether redaction is active
	Enabled bool `mapstructure:"enabled"`

	// Patterns specifies which redaction patterns to use
	// Available: ipv4, ipv6, email, api_key, aws_key, jwt, private_key, mac_address, credit_card, uuid
	Patterns []string `mapstructure:"patterns"`
}

// HookConfig holds settings for the agent hook adapter.
type HookConfig struct {
	// Tools lists the tool names whose output is compacted after use.
	Tools []string `mapstructure:"tools"`
}

// WatchConfig holds settings for following files.
type WatchConfig struct {
	RotateTimeout string `mapstructure:"rotate_timeout"` // e.g. "10s", "1m"
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("project_root", "")
	v.SetDefault("max_frames", traceback.DefaultMaxFrames)
	v.SetDefault("format", DefaultFormat)
	v.SetDefault("color", DefaultColor)
	v.SetDefault("verbose", false)
	v.SetDefault("library_patterns", traceback.DefaultLibrarySegments())
	v.SetDefault("token_encoding", "cl100k_base")
	v.SetDefault("redaction.enabled", false)
	v.SetDefault("redaction.patterns", redact.DefaultPatterns())
	v.SetDefault("hook.tools", []string{DefaultHookTool})
	v.SetDefault("watch.rotate_timeout", DefaultRotateTimeout)
}

// Load unmarshals and validates the configuration held by v.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports every invalid setting, joined into one error.
func (c *Config) Validate() error {
	var errs []error

	if c.MaxFrames < 0 {
		errs = append(errs, fmt.Errorf("max_frames: %w (got %d)", traceback.ErrNegativeMaxFrames, c.MaxFrames))
	}
	if _, err := output.ParseFormat(c.Format); err != nil {
		errs = append(errs, fmt.Errorf("format: %w", err))
	}
	if _, err := output.ParseColorMode(c.Color); err != nil {
		errs = append(errs, fmt.Errorf("color: %w", err))
	}
	if unknown := redact.Unknown(c.Redaction.Patterns); len(unknown) > 0 {
		errs = append(errs, fmt.Errorf("redaction.patterns: unknown pattern(s) %s (available: %s)",
			strings.Join(unknown, ", "), strings.Join(redact.PatternNames(), ", ")))
	}
	if c.Watch.RotateTimeout != "" {
		if _, err := ParseDuration(c.Watch.RotateTimeout); err != nil {
			errs = append(errs, fmt.Errorf("watch.rotate_timeout: %w", err))
		}
	}

	return errors.Join(errs...)
}

// TracebackConfig returns the core settings.
func (c *Config) TracebackConfig() traceback.Config {
	return traceback.Config{
		ProjectRoot: c.ProjectRoot,
		MaxFrames:   c.MaxFrames,
	}
}

// OutputFormat returns the parsed output format.
func (c *Config) OutputFormat() output.Format {
	f, _ := output.ParseFormat(c.Format)
	return f
}

// ColorMode returns the parsed color mode.
func (c *Config) ColorMode() output.ColorMode {
	m, _ := output.ParseColorMode(c.Color)
	return m
}

// RotateTimeout returns the parsed watch rotation timeout, or the default.
func (c *Config) RotateTimeout() time.Duration {
	d, err := ParseDuration(c.Watch.RotateTimeout)
	if err != nil || d <= 0 {
		return 10 * time.Second
	}
	return d
}

// CompactorOptions translates the configuration into compactor options.
func (c *Config) CompactorOptions() []traceback.Option {
	opts := []traceback.Option{
		traceback.WithProjectRoot(c.ProjectRoot),
		traceback.WithMaxFrames(c.MaxFrames),
	}
	if len(c.LibraryPatterns) > 0 {
		opts = append(opts, traceback.WithClassifier(traceback.NewSegmentClassifier(c.LibraryPatterns)))
	}
	if c.Redaction.Enabled {
		opts = append(opts, traceback.WithRedactor(redact.New(c.Redaction.Patterns)))
	}
	return opts
}

// TracksTool reports whether the hook adapter compacts output of tool.
func (c *Config) TracksTool(tool string) bool {
	for _, t := range c.Hook.Tools {
		if strings.EqualFold(t, tool) {
			return true
		}
	}
	return false
}
