// Package eeg holds the shared domain types for the real-time EEG pipeline:
// device packets, the canonical frequency bands, the calibration baseline
// profile and the signal quality summary consumed by the session layer.
package eeg

// Packet is one burst of raw voltage samples from the device transport.
// Timestamp is milliseconds since epoch for the start of the burst;
// SequenceNumber is informational passthrough and is never validated here.
type Packet struct {
	Timestamp      int64     `json:"timestamp"`
	Samples        []float64 `json:"samples"`
	SequenceNumber uint32    `json:"sequence_number"`
}

// Band identifies one of the canonical EEG frequency bands.
type Band int

const (
	Delta Band = iota // 0.5-4 Hz
	Theta             // 4-8 Hz
	Alpha             // 8-13 Hz
	Beta              // 13-30 Hz
	Gamma             // 30-50 Hz
	// LowFrequency and HighFrequency are the aggregate bands used by the
	// frequency-ratio artifact detector.
	LowFrequency  // 4-30 Hz
	HighFrequency // 30-50 Hz
)

// Range returns the band boundaries in Hz.
func (b Band) Range() (low, high float64) {
	switch b {
	case Delta:
		return 0.5, 4
	case Theta:
		return 4, 8
	case Alpha:
		return 8, 13
	case Beta:
		return 13, 30
	case Gamma:
		return 30, 50
	case LowFrequency:
		return 4, 30
	case HighFrequency:
		return 30, 50
	}
	return 0, 0
}

// String returns the band name used in config files and API payloads.
func (b Band) String() string {
	switch b {
	case Delta:
		return "delta"
	case Theta:
		return "theta"
	case Alpha:
		return "alpha"
	case Beta:
		return "beta"
	case Gamma:
		return "gamma"
	case LowFrequency:
		return "low_frequency"
	case HighFrequency:
		return "high_frequency"
	}
	return "unknown"
}

// ParseBand maps a band name from the config/API boundary to its Band value.
func ParseBand(name string) (Band, bool) {
	switch name {
	case "delta":
		return Delta, true
	case "theta":
		return Theta, true
	case "alpha":
		return Alpha, true
	case "beta":
		return Beta, true
	case "gamma":
		return Gamma, true
	case "low_frequency":
		return LowFrequency, true
	case "high_frequency":
		return HighFrequency, true
	}
	return 0, false
}

// BaselineProfile is the immutable result of one calibration run. It is
// produced by the calibration workflow and read by the baseline normalizer.
// ThetaStd must be strictly positive before the profile is used; the
// normalization functions enforce this.
type BaselineProfile struct {
	ThetaMean            float64 `json:"theta_mean"`
	ThetaStd             float64 `json:"theta_std"`
	AlphaMean            float64 `json:"alpha_mean"`
	BetaMean             float64 `json:"beta_mean"`
	PeakThetaFreq        float64 `json:"peak_theta_freq"`
	OptimalFreq          float64 `json:"optimal_freq"`
	CalibrationTimestamp int64   `json:"calibration_timestamp"`
	QualityScore         float64 `json:"quality_score"`
}

// SignalQuality summarizes the three artifact detectors for one analysis
// window. Score and ArtifactPercentage are 0-100.
type SignalQuality struct {
	Score                float64 `json:"score"`
	ArtifactPercentage   float64 `json:"artifact_percentage"`
	HasAmplitudeArtifact bool    `json:"has_amplitude_artifact"`
	HasGradientArtifact  bool    `json:"has_gradient_artifact"`
	HasFrequencyArtifact bool    `json:"has_frequency_artifact"`
}

// Clean reports whether the window is free of all three artifact types.
func (q SignalQuality) Clean() bool {
	return !q.HasAmplitudeArtifact && !q.HasGradientArtifact && !q.HasFrequencyArtifact
}
