package pipeline

import (
	"fmt"

	"github.com/flowstate-bci/eegstream/eeg"
	"github.com/flowstate-bci/eegstream/eeg/bandpower"
)

// Calibrator accumulates per-epoch band powers during a baseline recording
// phase and turns them into an immutable BaselineProfile. The phase state
// machine deciding when to record lives in the calling workflow; this is
// only the statistics it invokes.
type Calibrator struct {
	epochs    []bandpower.BandPowers
	peakFreqs []float64
}

// NewCalibrator returns an empty calibrator.
func NewCalibrator() *Calibrator {
	return &Calibrator{}
}

// AddEpoch records one analysis epoch's band powers and theta peak
// frequency.
func (c *Calibrator) AddEpoch(powers bandpower.BandPowers, peakThetaFreq float64) {
	c.epochs = append(c.epochs, powers)
	c.peakFreqs = append(c.peakFreqs, peakThetaFreq)
}

// EpochCount returns the number of recorded epochs.
func (c *Calibrator) EpochCount() int {
	return len(c.epochs)
}

// Reset discards all recorded epochs.
func (c *Calibrator) Reset() {
	c.epochs = c.epochs[:0]
	c.peakFreqs = c.peakFreqs[:0]
}

// Finish computes the baseline profile. At least two epochs are required;
// with fewer there is no variance estimate and calibration must be treated
// as failed upstream.
func (c *Calibrator) Finish(timestampMs int64) (eeg.BaselineProfile, error) {
	if len(c.epochs) < 2 {
		return eeg.BaselineProfile{}, fmt.Errorf("calibration: need at least 2 epochs, got %d", len(c.epochs))
	}
	mean := bandpower.Mean(c.epochs)
	std := bandpower.Std(c.epochs)
	if std.Theta <= 0 {
		return eeg.BaselineProfile{}, fmt.Errorf("calibration: zero theta variance across %d epochs", len(c.epochs))
	}

	var peak float64
	for _, f := range c.peakFreqs {
		peak += f
	}
	peak /= float64(len(c.peakFreqs))

	return eeg.BaselineProfile{
		ThetaMean:            mean.Theta,
		ThetaStd:             std.Theta,
		AlphaMean:            mean.Alpha,
		BetaMean:             mean.Beta,
		PeakThetaFreq:        peak,
		OptimalFreq:          peak,
		CalibrationTimestamp: timestampMs,
		QualityScore:         calibrationQuality(mean.Theta, std.Theta),
	}, nil
}

// calibrationQuality scores baseline stability 0-100 from the coefficient of
// variation: a tight theta distribution makes later z-scores meaningful.
func calibrationQuality(mean, std float64) float64 {
	if mean <= 0 {
		return 0
	}
	cv := std / mean
	score := 100 * (1 - cv)
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}
