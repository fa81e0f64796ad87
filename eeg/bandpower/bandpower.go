// Package bandpower integrates power spectra over the canonical EEG bands
// and derives the relative powers, ratios and peak frequencies the feedback
// loop runs on.
package bandpower

import (
	"fmt"

	"github.com/flowstate-bci/eegstream/eeg"
	"github.com/flowstate-bci/eegstream/eeg/spectral"
)

// BandPowers holds absolute power in µV² for the three primary bands.
// Total is exactly Theta+Alpha+Beta.
type BandPowers struct {
	Theta float64 `json:"theta"`
	Alpha float64 `json:"alpha"`
	Beta  float64 `json:"beta"`
	Total float64 `json:"total"`
}

// RelativeBandPowers expresses each band as a fraction of Total, plus the
// pairwise ratios. All values are zero when Total is zero.
type RelativeBandPowers struct {
	Theta           float64 `json:"theta"`
	Alpha           float64 `json:"alpha"`
	Beta            float64 `json:"beta"`
	ThetaAlphaRatio float64 `json:"theta_alpha_ratio"`
	ThetaBetaRatio  float64 `json:"theta_beta_ratio"`
	AlphaBetaRatio  float64 `json:"alpha_beta_ratio"`
}

// BandMeasurement is the per-band summary derived from a Welch estimate.
type BandMeasurement struct {
	BandPower     float64 `json:"band_power"`
	PeakFrequency float64 `json:"peak_frequency"`
	PeakPower     float64 `json:"peak_power"`
	RelativePower float64 `json:"relative_power"`
}

// BandPower integrates power over [low,high] Hz by the trapezoidal rule.
// Zero in-band bins yield zero; a single in-band bin is approximated as
// power*resolution.
func BandPower(frequencies, power []float64, low, high float64) (float64, error) {
	if len(frequencies) != len(power) {
		return 0, fmt.Errorf("band power: frequency and power lengths differ (%d vs %d)", len(frequencies), len(power))
	}
	if len(frequencies) == 0 {
		return 0, fmt.Errorf("band power: empty spectrum")
	}
	if low >= high {
		return 0, fmt.Errorf("band power: invalid range [%g,%g]", low, high)
	}

	first, last := -1, -1
	for i, f := range frequencies {
		if f >= low && f <= high {
			if first < 0 {
				first = i
			}
			last = i
		}
	}
	if first < 0 {
		return 0, nil
	}
	if first == last {
		resolution := 1.0
		if len(frequencies) > 1 {
			resolution = frequencies[1] - frequencies[0]
		}
		return power[first] * resolution, nil
	}

	var total float64
	for i := first; i < last; i++ {
		df := frequencies[i+1] - frequencies[i]
		total += df * (power[i] + power[i+1]) / 2.0
	}
	return total, nil
}

// NamedBandPower integrates over one of the canonical bands.
func NamedBandPower(frequencies, power []float64, band eeg.Band) (float64, error) {
	low, high := band.Range()
	return BandPower(frequencies, power, low, high)
}

// AllBandPowers extracts theta, alpha and beta power; Total is their exact
// floating-point sum, never recomputed independently.
func AllBandPowers(frequencies, power []float64) (BandPowers, error) {
	theta, err := NamedBandPower(frequencies, power, eeg.Theta)
	if err != nil {
		return BandPowers{}, err
	}
	alpha, err := NamedBandPower(frequencies, power, eeg.Alpha)
	if err != nil {
		return BandPowers{}, err
	}
	beta, err := NamedBandPower(frequencies, power, eeg.Beta)
	if err != nil {
		return BandPowers{}, err
	}
	return BandPowers{
		Theta: theta,
		Alpha: alpha,
		Beta:  beta,
		Total: theta + alpha + beta,
	}, nil
}

// Relative divides each band power by the total. A zero total yields an
// all-zero result rather than propagating a division by zero.
func Relative(frequencies, power []float64) (RelativeBandPowers, error) {
	bp, err := AllBandPowers(frequencies, power)
	if err != nil {
		return RelativeBandPowers{}, err
	}
	var rel RelativeBandPowers
	if bp.Total > 0 {
		rel.Theta = bp.Theta / bp.Total
		rel.Alpha = bp.Alpha / bp.Total
		rel.Beta = bp.Beta / bp.Total
	}
	if bp.Alpha > 0 {
		rel.ThetaAlphaRatio = bp.Theta / bp.Alpha
	}
	if bp.Beta > 0 {
		rel.ThetaBetaRatio = bp.Theta / bp.Beta
		rel.AlphaBetaRatio = bp.Alpha / bp.Beta
	}
	return rel, nil
}

// PeakFrequency returns the frequency of maximum power within [low,high].
// Ties go to the lowest frequency; ok is false when no bin is in range.
func PeakFrequency(frequencies, power []float64, low, high float64) (freq float64, ok bool) {
	best := -1
	for i, f := range frequencies {
		if i >= len(power) {
			break
		}
		if f < low || f > high {
			continue
		}
		if best < 0 || power[i] > power[best] {
			best = i
		}
	}
	if best < 0 {
		return 0, false
	}
	return frequencies[best], true
}

// FromWelch summarizes one canonical band of a Welch estimate: absolute
// power, in-band peak, and power relative to the whole spectrum.
func FromWelch(res *spectral.WelchResult, band eeg.Band) (BandMeasurement, error) {
	if res == nil {
		return BandMeasurement{}, fmt.Errorf("band measurement: nil welch result")
	}
	low, high := band.Range()
	bp, err := BandPower(res.Frequencies, res.PSD, low, high)
	if err != nil {
		return BandMeasurement{}, err
	}
	m := BandMeasurement{BandPower: bp}

	if f, ok := PeakFrequency(res.Frequencies, res.PSD, low, high); ok {
		m.PeakFrequency = f
		for i, bf := range res.Frequencies {
			if bf == f {
				m.PeakPower = res.PSD[i]
				break
			}
		}
	}

	if len(res.Frequencies) > 1 {
		totalLow := res.Frequencies[0]
		totalHigh := res.Frequencies[len(res.Frequencies)-1]
		total, err := BandPower(res.Frequencies, res.PSD, totalLow, totalHigh)
		if err == nil && total > 0 {
			m.RelativePower = bp / total
		}
	}
	return m, nil
}
