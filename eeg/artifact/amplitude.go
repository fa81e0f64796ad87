// Package artifact implements the three stateless contamination detectors:
// amplitude threshold (electrode pops, movement), gradient threshold (step
// transients) and frequency ratio (broadband EMG). All detectors treat
// degenerate input as clean rather than failing, since partial windows occur
// naturally during warm-up.
package artifact

import "github.com/flowstate-bci/eegstream/eeg"

// Contract thresholds. These are part of the observable interface shared
// with the calibration workflow and must not drift.
const (
	DefaultAmplitudeThresholdUV     = 100.0
	GradientThresholdUV             = 50.0
	FrequencyRatioArtifactThreshold = 2.0
)

// AmplitudeResult reports samples whose magnitude exceeds the threshold.
type AmplitudeResult struct {
	HasArtifact         bool    `json:"has_artifact"`
	ArtifactSampleCount int     `json:"artifact_sample_count"`
	TotalSampleCount    int     `json:"total_sample_count"`
	ArtifactPercentage  float64 `json:"artifact_percentage"`
	MaxAmplitude        float64 `json:"max_amplitude"`
	MinAmplitude        float64 `json:"min_amplitude"`
	ArtifactIndices     []int   `json:"artifact_indices"`
}

// DetectAmplitude flags every sample whose absolute value strictly exceeds
// thresholdUV. A sample exactly at the threshold is not an artifact. Empty
// input yields a zero result.
func DetectAmplitude(samples []float64, thresholdUV float64) AmplitudeResult {
	res := AmplitudeResult{
		TotalSampleCount: len(samples),
		ArtifactIndices:  []int{},
	}
	if len(samples) == 0 {
		return res
	}

	res.MaxAmplitude = samples[0]
	res.MinAmplitude = samples[0]
	for i, v := range samples {
		if v > res.MaxAmplitude {
			res.MaxAmplitude = v
		}
		if v < res.MinAmplitude {
			res.MinAmplitude = v
		}
		abs := v
		if abs < 0 {
			abs = -abs
		}
		if abs > thresholdUV {
			res.ArtifactIndices = append(res.ArtifactIndices, i)
		}
	}
	res.ArtifactSampleCount = len(res.ArtifactIndices)
	res.HasArtifact = res.ArtifactSampleCount > 0
	res.ArtifactPercentage = float64(res.ArtifactSampleCount) * 100.0 / float64(res.TotalSampleCount)
	return res
}

// DetectAmplitudeInPackets concatenates the packets' samples in order and
// runs the amplitude check; indices are relative to the concatenated array.
func DetectAmplitudeInPackets(packets []eeg.Packet, thresholdUV float64) AmplitudeResult {
	total := 0
	for _, p := range packets {
		total += len(p.Samples)
	}
	combined := make([]float64, 0, total)
	for _, p := range packets {
		combined = append(combined, p.Samples...)
	}
	return DetectAmplitude(combined, thresholdUV)
}

// ClampSamples returns a new slice with every sample clamped to
// [-thresholdUV, thresholdUV]. The input is never mutated.
func ClampSamples(samples []float64, thresholdUV float64) []float64 {
	out := make([]float64, len(samples))
	for i, v := range samples {
		switch {
		case v > thresholdUV:
			out[i] = thresholdUV
		case v < -thresholdUV:
			out[i] = -thresholdUV
		default:
			out[i] = v
		}
	}
	return out
}
