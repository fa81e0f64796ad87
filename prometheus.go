package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/flowstate-bci/eegstream/eeg/pipeline"
)

// Per-channel analysis gauges plus ingest counters. All channel-scoped
// collectors carry a 'channel' label with the channel UUID.
var (
	channelsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "eegstream_channels_active",
			Help: "Number of active device channels",
		},
	)
	packetsIngested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eegstream_packets_ingested_total",
			Help: "Total device packets ingested by channel",
		},
		[]string{"channel"},
	)
	samplesIngested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eegstream_samples_ingested_total",
			Help: "Total samples ingested by channel",
		},
		[]string{"channel"},
	)
	thetaPowerGauge = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "eegstream_theta_power_uv2",
			Help: "Absolute theta band power (4-8 Hz) in uV^2",
		},
		[]string{"channel"},
	)
	alphaPowerGauge = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "eegstream_alpha_power_uv2",
			Help: "Absolute alpha band power (8-13 Hz) in uV^2",
		},
		[]string{"channel"},
	)
	betaPowerGauge = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "eegstream_beta_power_uv2",
			Help: "Absolute beta band power (13-30 Hz) in uV^2",
		},
		[]string{"channel"},
	)
	zScoreGauge = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "eegstream_theta_zscore",
			Help: "Theta power z-score against the calibrated baseline",
		},
		[]string{"channel"},
	)
	artifactPercentGauge = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "eegstream_artifact_percent",
			Help: "Percentage of the analysis window flagged as artifact",
		},
		[]string{"channel"},
	)
	signalQualityGauge = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "eegstream_signal_quality_score",
			Help: "Signal quality score from 0 (unusable) to 100 (clean)",
		},
		[]string{"channel"},
	)
	lastAnalysisGauge = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "eegstream_last_analysis_timestamp_ms",
			Help: "Window end timestamp of the last analysis in milliseconds",
		},
		[]string{"channel"},
	)
)

// updateChannelMetrics publishes one analysis result to the per-channel gauges.
func updateChannelMetrics(channelID string, m *pipeline.Metrics) {
	thetaPowerGauge.WithLabelValues(channelID).Set(m.ThetaPower)
	alphaPowerGauge.WithLabelValues(channelID).Set(m.AlphaPower)
	betaPowerGauge.WithLabelValues(channelID).Set(m.BetaPower)
	artifactPercentGauge.WithLabelValues(channelID).Set(m.SignalQuality.ArtifactPercentage)
	signalQualityGauge.WithLabelValues(channelID).Set(m.SignalQuality.Score)
	lastAnalysisGauge.WithLabelValues(channelID).Set(float64(m.Timestamp))
	if m.HasBaseline {
		zScoreGauge.WithLabelValues(channelID).Set(m.ZScore)
	}
}

// removeChannelMetrics drops a removed channel's label series so dead
// channels do not linger on the scrape endpoint.
func removeChannelMetrics(channelID string) {
	labels := prometheus.Labels{"channel": channelID}
	packetsIngested.Delete(labels)
	samplesIngested.Delete(labels)
	thetaPowerGauge.Delete(labels)
	alphaPowerGauge.Delete(labels)
	betaPowerGauge.Delete(labels)
	zScoreGauge.Delete(labels)
	artifactPercentGauge.Delete(labels)
	signalQualityGauge.Delete(labels)
	lastAnalysisGauge.Delete(labels)
}
