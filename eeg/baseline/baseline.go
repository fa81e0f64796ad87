// Package baseline converts absolute band power into a personally calibrated
// z-score and classifies it for the closed-loop feedback decision.
package baseline

import (
	"fmt"

	"github.com/flowstate-bci/eegstream/eeg"
	"github.com/flowstate-bci/eegstream/eeg/bandpower"
)

// DefaultHysteresis is the dead-zone half-width applied around the feedback
// target to prevent output oscillation.
const DefaultHysteresis = 0.2

// Zone categorizes a z-score for display and feedback.
type Zone string

const (
	ZoneLow      Zone = "low"      // z < -0.5
	ZoneBaseline Zone = "baseline" // -0.5 <= z < 0.5
	ZoneElevated Zone = "elevated" // 0.5 <= z < 1.5
	ZoneHigh     Zone = "high"     // z >= 1.5
)

// NormalizedBands holds per-band z-scores.
type NormalizedBands struct {
	Theta float64 `json:"theta"`
	Alpha float64 `json:"alpha"`
	Beta  float64 `json:"beta"`
}

// ThresholdCheck is the hysteresis decision for one z-score.
type ThresholdCheck struct {
	ExceedsThreshold bool `json:"exceeds_threshold"`
	WithinHysteresis bool `json:"within_hysteresis"`
}

// ZScore returns (value-mean)/std. A non-positive std is a calibration
// failure and is rejected.
func ZScore(value, mean, std float64) (float64, error) {
	if std <= 0 {
		return 0, fmt.Errorf("z-score: standard deviation must be positive, got %v", std)
	}
	return (value - mean) / std, nil
}

// NormalizeTheta z-scores live theta power against the calibrated baseline.
func NormalizeTheta(thetaPower float64, b eeg.BaselineProfile) (float64, error) {
	return ZScore(thetaPower, b.ThetaMean, b.ThetaStd)
}

// NormalizeAllBands z-scores all three bands. The baseline profile tracks
// variance for theta only, so alpha and beta are normalized against ThetaStd
// as a documented approximation.
func NormalizeAllBands(bp bandpower.BandPowers, b eeg.BaselineProfile) (NormalizedBands, error) {
	theta, err := ZScore(bp.Theta, b.ThetaMean, b.ThetaStd)
	if err != nil {
		return NormalizedBands{}, err
	}
	alpha, err := ZScore(bp.Alpha, b.AlphaMean, b.ThetaStd)
	if err != nil {
		return NormalizedBands{}, err
	}
	beta, err := ZScore(bp.Beta, b.BetaMean, b.ThetaStd)
	if err != nil {
		return NormalizedBands{}, err
	}
	return NormalizedBands{Theta: theta, Alpha: alpha, Beta: beta}, nil
}

// NormalizeArray z-scores each theta value in input order. The whole call
// fails when the baseline std is not positive.
func NormalizeArray(thetaValues []float64, b eeg.BaselineProfile) ([]float64, error) {
	if b.ThetaStd <= 0 {
		return nil, fmt.Errorf("z-score: standard deviation must be positive, got %v", b.ThetaStd)
	}
	out := make([]float64, len(thetaValues))
	for i, v := range thetaValues {
		out[i] = (v - b.ThetaMean) / b.ThetaStd
	}
	return out, nil
}

// WindowZScore z-scores the arithmetic mean of the window.
func WindowZScore(window []float64, b eeg.BaselineProfile) (float64, error) {
	if len(window) == 0 {
		return 0, fmt.Errorf("window z-score: empty window")
	}
	var mean float64
	for _, v := range window {
		mean += v
	}
	mean /= float64(len(window))
	return ZScore(mean, b.ThetaMean, b.ThetaStd)
}

// CheckThreshold implements the Schmitt-trigger band around the feedback
// target: the threshold counts as exceeded from target+hysteresis inclusive,
// and the dead zone spans [target-hysteresis, target+hysteresis).
func CheckThreshold(zscore, target, hysteresis float64) ThresholdCheck {
	return ThresholdCheck{
		ExceedsThreshold: zscore >= target+hysteresis,
		WithinHysteresis: zscore >= target-hysteresis && zscore < target+hysteresis,
	}
}

// CategorizeZone maps a z-score onto the half-open display zones.
func CategorizeZone(zscore float64) Zone {
	switch {
	case zscore < -0.5:
		return ZoneLow
	case zscore < 0.5:
		return ZoneBaseline
	case zscore < 1.5:
		return ZoneElevated
	default:
		return ZoneHigh
	}
}
