package main

import (
	"fmt"
	"log"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/flowstate-bci/eegstream/eeg/artifact"
	"github.com/flowstate-bci/eegstream/eeg/spectral"
)

// Config represents the application configuration
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Stream     StreamConfig     `yaml:"stream"`
	Welch      WelchConfig      `yaml:"welch"`
	Filter     FilterConfig     `yaml:"filter"`
	Artifacts  ArtifactsConfig  `yaml:"artifacts"`
	Feedback   FeedbackConfig   `yaml:"feedback"`
	Prometheus PrometheusConfig `yaml:"prometheus"`
	MQTT       MQTTConfig       `yaml:"mqtt"`
	Simulator  SimulatorConfig  `yaml:"simulator"`
}

// ServerConfig contains web server settings
type ServerConfig struct {
	Listen     string `yaml:"listen"`
	EnableCORS bool   `yaml:"enable_cors"`
}

// StreamConfig describes the per-channel sample stream and analysis window
type StreamConfig struct {
	SamplingRateHz    float64 `yaml:"sampling_rate_hz"`
	WindowDurationSec float64 `yaml:"window_duration_sec"`
	// AnalysisIntervalMs controls how often buffered channels are re-analyzed
	AnalysisIntervalMs int `yaml:"analysis_interval_ms"`
}

// WelchConfig selects the spectral estimation parameters
type WelchConfig struct {
	WindowSeconds float64 `yaml:"window_seconds"`
	OverlapRatio  float64 `yaml:"overlap_ratio"`
	Window        string  `yaml:"window"`
}

// FilterConfig describes the bandpass pre-filter
type FilterConfig struct {
	Disabled     bool    `yaml:"disabled"`
	LowCutoffHz  float64 `yaml:"low_cutoff_hz"`
	HighCutoffHz float64 `yaml:"high_cutoff_hz"`
	Order        int     `yaml:"order"`
}

// ArtifactsConfig overrides the artifact detector thresholds
type ArtifactsConfig struct {
	AmplitudeThresholdUV float64 `yaml:"amplitude_threshold_uv"`
	GradientThresholdUV  float64 `yaml:"gradient_threshold_uv"`
	FrequencyRatio       float64 `yaml:"frequency_ratio_threshold"`
}

// FeedbackConfig holds the closed-loop decision parameters
type FeedbackConfig struct {
	TargetZScore float64 `yaml:"target_zscore"`
	Hysteresis   float64 `yaml:"hysteresis"`
}

// PrometheusConfig contains metrics exposure settings
type PrometheusConfig struct {
	Enabled bool `yaml:"enabled"`
}

// MQTTConfig contains optional MQTT publishing settings
type MQTTConfig struct {
	Enabled         bool   `yaml:"enabled"`
	Broker          string `yaml:"broker"` // e.g. tcp://localhost:1883
	Username        string `yaml:"username"`
	Password        string `yaml:"password"`
	TopicPrefix     string `yaml:"topic_prefix"`
	PublishInterval int    `yaml:"publish_interval"` // seconds
}

// SimulatorConfig enables the synthetic EEG source for development
type SimulatorConfig struct {
	Enabled bool `yaml:"enabled"`
	// Channels is the number of simulated device channels to run
	Channels int `yaml:"channels"`
	// PacketRateHz is how many packets per second each channel emits
	PacketRateHz float64 `yaml:"packet_rate_hz"`
}

// LoadConfig loads configuration from a YAML file. A missing file yields the
// defaults so the simulator path works out of the box.
func LoadConfig(filename string) (*Config, error) {
	config := &Config{}
	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			log.Printf("No config file at %s, using defaults", filename)
			config.applyDefaults()
			return config, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	config.applyDefaults()
	return config, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Listen == "" {
		c.Server.Listen = ":8555"
	}
	if c.Stream.SamplingRateHz == 0 {
		c.Stream.SamplingRateHz = 500
	}
	if c.Stream.WindowDurationSec == 0 {
		c.Stream.WindowDurationSec = 4
	}
	if c.Stream.AnalysisIntervalMs == 0 {
		c.Stream.AnalysisIntervalMs = 500
	}
	if c.Welch.WindowSeconds == 0 {
		c.Welch.WindowSeconds = 2
	}
	if c.Welch.OverlapRatio == 0 {
		c.Welch.OverlapRatio = 0.5
	}
	if c.Welch.Window == "" {
		c.Welch.Window = "hann"
	}
	if c.Filter.LowCutoffHz == 0 {
		c.Filter.LowCutoffHz = 0.5
	}
	if c.Filter.HighCutoffHz == 0 {
		c.Filter.HighCutoffHz = 50
	}
	if c.Filter.Order == 0 {
		c.Filter.Order = 4
	}
	if c.Artifacts.AmplitudeThresholdUV == 0 {
		c.Artifacts.AmplitudeThresholdUV = artifact.DefaultAmplitudeThresholdUV
	}
	if c.Artifacts.GradientThresholdUV == 0 {
		c.Artifacts.GradientThresholdUV = artifact.GradientThresholdUV
	}
	if c.Artifacts.FrequencyRatio == 0 {
		c.Artifacts.FrequencyRatio = artifact.FrequencyRatioArtifactThreshold
	}
	if c.Feedback.TargetZScore == 0 {
		c.Feedback.TargetZScore = 0.5
	}
	if c.Feedback.Hysteresis == 0 {
		c.Feedback.Hysteresis = 0.2
	}
	if c.MQTT.TopicPrefix == "" {
		c.MQTT.TopicPrefix = "eegstream/metrics"
	}
	if c.MQTT.PublishInterval == 0 {
		c.MQTT.PublishInterval = 10
	}
	if c.Simulator.Channels == 0 {
		c.Simulator.Channels = 1
	}
	if c.Simulator.PacketRateHz == 0 {
		c.Simulator.PacketRateHz = 10
	}
}

// Validate checks the cross-field constraints the core packages would only
// catch at stream time.
func (c *Config) Validate() error {
	if c.Stream.SamplingRateHz <= 0 {
		return fmt.Errorf("stream.sampling_rate_hz must be positive")
	}
	if c.Stream.WindowDurationSec < c.Welch.WindowSeconds {
		return fmt.Errorf("stream.window_duration_sec (%g) must cover at least one welch segment (%g s)",
			c.Stream.WindowDurationSec, c.Welch.WindowSeconds)
	}
	if _, ok := spectral.ParseWindowType(c.Welch.Window); !ok {
		return fmt.Errorf("welch.window must be one of hann, hamming, rectangular; got %q", c.Welch.Window)
	}
	if !c.Filter.Disabled && c.Filter.HighCutoffHz >= c.Stream.SamplingRateHz/2 {
		return fmt.Errorf("filter.high_cutoff_hz (%g) must be below nyquist (%g)",
			c.Filter.HighCutoffHz, c.Stream.SamplingRateHz/2)
	}
	if c.MQTT.Enabled && c.MQTT.Broker == "" {
		return fmt.Errorf("mqtt.broker is required when mqtt is enabled")
	}
	return nil
}
