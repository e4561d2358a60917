package config

import (
	"errors"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bimmerbailey/tracecompact/internal/output"
	"github.com/bimmerbailey/tracecompact/internal/redact"
	"github.com/bimmerbailey/tracecompact/internal/traceback"
)

func newViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	return v
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(newViper())
	require.NoError(t, err)

	assert.Equal(t, "", cfg.ProjectRoot)
	assert.Equal(t, traceback.DefaultMaxFrames, cfg.MaxFrames)
	assert.Equal(t, output.FormatText, cfg.OutputFormat())
	assert.Equal(t, output.ColorAuto, cfg.ColorMode())
	assert.Equal(t, traceback.DefaultLibrarySegments(), cfg.LibraryPatterns)
	assert.False(t, cfg.Redaction.Enabled)
	assert.Equal(t, redact.DefaultPatterns(), cfg.Redaction.Patterns)
	assert.Equal(t, []string{"Bash"}, cfg.Hook.Tools)
	assert.Equal(t, 10*time.Second, cfg.RotateTimeout())
}

func TestLoad_Overrides(t *testing.T) {
	v := newViper()
	v.Set("project_root", "/srv/app")
	v.Set("max_frames", 2)
	v.Set("format", "json")
	v.Set("color", "never")
	v.Set("redaction.enabled", true)
	v.Set("redaction.patterns", []string{"email"})
	v.Set("hook.tools", []string{"Bash", "Shell"})
	v.Set("watch.rotate_timeout", "1m")

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, traceback.Config{ProjectRoot: "/srv/app", MaxFrames: 2}, cfg.TracebackConfig())
	assert.Equal(t, output.FormatJSON, cfg.OutputFormat())
	assert.Equal(t, output.ColorNever, cfg.ColorMode())
	assert.True(t, cfg.Redaction.Enabled)
	assert.Equal(t, time.Minute, cfg.RotateTimeout())
	assert.True(t, cfg.TracksTool("shell"))
	assert.False(t, cfg.TracksTool("Read"))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"negative max frames", func(c *Config) { c.MaxFrames = -1 }, "max_frames"},
		{"unknown format", func(c *Config) { c.Format = "table" }, "format"},
		{"unknown color", func(c *Config) { c.Color = "rainbow" }, "color"},
		{"unknown redaction pattern", func(c *Config) { c.Redaction.Patterns = []string{"ssn"} }, "ssn"},
		{"bad rotate timeout", func(c *Config) { c.Watch.RotateTimeout = "later" }, "rotate_timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(newViper())
			require.NoError(t, err)

			tt.mutate(cfg)
			err = cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_NegativeMaxFramesIsSentinel(t *testing.T) {
	cfg := &Config{MaxFrames: -3}
	err := cfg.Validate()
	assert.True(t, errors.Is(err, traceback.ErrNegativeMaxFrames))
}

func TestLoad_RejectsInvalid(t *testing.T) {
	v := newViper()
	v.Set("max_frames", -1)
	_, err := Load(v)
	assert.ErrorIs(t, err, traceback.ErrNegativeMaxFrames)
}

func TestCompactorOptions(t *testing.T) {
	v := newViper()
	v.Set("project_root", "/srv/app")
	v.Set("max_frames", 1)
	v.Set("redaction.enabled", true)
	v.Set("redaction.patterns", []string{"ipv4"})
	cfg, err := Load(v)
	require.NoError(t, err)

	c, err := traceback.New(cfg.CompactorOptions()...)
	require.NoError(t, err)

	text := "Traceback (most recent call last):\n" +
		"  File \"/srv/app/db.py\", line 3, in connect\n" +
		"    sock.connect(\"10.0.0.7\")\n" +
		"ConnectionError: 10.0.0.7 refused"
	out := c.Transform(text)
	assert.NotContains(t, out, "10.0.0.7")
	assert.Contains(t, out, "- db.py:3 in connect")
}
