package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ":8555", cfg.Server.Listen)
	assert.Equal(t, 500.0, cfg.Stream.SamplingRateHz)
	assert.Equal(t, 4.0, cfg.Stream.WindowDurationSec)
	assert.Equal(t, 500, cfg.Stream.AnalysisIntervalMs)
	assert.Equal(t, 2.0, cfg.Welch.WindowSeconds)
	assert.Equal(t, 0.5, cfg.Welch.OverlapRatio)
	assert.Equal(t, "hann", cfg.Welch.Window)
	assert.Equal(t, 0.5, cfg.Filter.LowCutoffHz)
	assert.Equal(t, 50.0, cfg.Filter.HighCutoffHz)
	assert.Equal(t, 4, cfg.Filter.Order)
	assert.Equal(t, 100.0, cfg.Artifacts.AmplitudeThresholdUV)
	assert.Equal(t, 50.0, cfg.Artifacts.GradientThresholdUV)
	assert.Equal(t, 2.0, cfg.Artifacts.FrequencyRatio)
	assert.Equal(t, 0.5, cfg.Feedback.TargetZScore)
	assert.Equal(t, 0.2, cfg.Feedback.Hysteresis)

	require.NoError(t, cfg.Validate())
}

func TestLoadConfigOverridesAndDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := []byte(`
server:
  listen: ":9000"
stream:
  sampling_rate_hz: 250
welch:
  window_seconds: 1
  overlap_ratio: 0.75
filter:
  high_cutoff_hz: 45
`)
	require.NoError(t, os.WriteFile(path, body, 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Server.Listen)
	assert.Equal(t, 250.0, cfg.Stream.SamplingRateHz)
	assert.Equal(t, 1.0, cfg.Welch.WindowSeconds)
	assert.Equal(t, 0.75, cfg.Welch.OverlapRatio)
	assert.Equal(t, 45.0, cfg.Filter.HighCutoffHz)

	// Untouched sections still get defaults.
	assert.Equal(t, 4.0, cfg.Stream.WindowDurationSec)
	assert.Equal(t, "hann", cfg.Welch.Window)
	assert.Equal(t, "eegstream/metrics", cfg.MQTT.TopicPrefix)

	require.NoError(t, cfg.Validate())
}

func TestLoadConfigRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("stream: ["), 0o644))

	_, err := LoadConfig(path)
	require.Error(t, err)
}

func TestValidateRejectsBadConfigs(t *testing.T) {
	base := func() *Config {
		cfg := &Config{}
		cfg.applyDefaults()
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative sampling rate", func(c *Config) { c.Stream.SamplingRateHz = -1 }},
		{"window shorter than welch segment", func(c *Config) { c.Stream.WindowDurationSec = 1 }},
		{"unknown welch window", func(c *Config) { c.Welch.Window = "blackman" }},
		{"filter cutoff above nyquist", func(c *Config) { c.Filter.HighCutoffHz = 300 }},
		{"mqtt enabled without broker", func(c *Config) { c.MQTT.Enabled = true }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestValidateAllowsDisabledFilterAboveNyquist(t *testing.T) {
	cfg := &Config{}
	cfg.applyDefaults()
	cfg.Stream.SamplingRateHz = 80
	cfg.Filter.Disabled = true

	assert.NoError(t, cfg.Validate())
}
