package artifact

import "github.com/flowstate-bci/eegstream/eeg"

// Thresholds bundles the three detector thresholds for one channel.
type Thresholds struct {
	AmplitudeUV         float64
	GradientUVPerSample float64
	FrequencyRatio      float64
}

// DefaultThresholds returns the contract defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{
		AmplitudeUV:         DefaultAmplitudeThresholdUV,
		GradientUVPerSample: GradientThresholdUV,
		FrequencyRatio:      FrequencyRatioArtifactThreshold,
	}
}

// Assess runs all three detectors on one analysis window and folds them into
// a 0-100 signal quality score. The score starts from the fraction of clean
// samples/transitions and takes a flat penalty for broadband EMG, which
// contaminates the whole window rather than individual samples.
func Assess(samples []float64, samplingRate float64, t Thresholds) eeg.SignalQuality {
	amp := DetectAmplitude(samples, t.AmplitudeUV)
	grad := DetectGradient(samples, t.GradientUVPerSample)
	freq := DetectFrequencyRatio(samples, samplingRate, t.FrequencyRatio)

	pct := amp.ArtifactPercentage
	if grad.ArtifactPercentage > pct {
		pct = grad.ArtifactPercentage
	}

	score := 100.0 - pct
	if freq.HasArtifact {
		score -= 25.0
	}
	if score < 0 {
		score = 0
	}

	return eeg.SignalQuality{
		Score:                score,
		ArtifactPercentage:   pct,
		HasAmplitudeArtifact: amp.HasArtifact,
		HasGradientArtifact:  grad.HasArtifact,
		HasFrequencyArtifact: freq.HasArtifact,
	}
}
