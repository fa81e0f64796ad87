package bandpower_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowstate-bci/eegstream/eeg"
	"github.com/flowstate-bci/eegstream/eeg/bandpower"
	"github.com/flowstate-bci/eegstream/eeg/spectral"
)

// flatSpectrum builds an evenly spaced spectrum with constant power.
func flatSpectrum(n int, df, power float64) (freqs, psd []float64) {
	freqs = make([]float64, n)
	psd = make([]float64, n)
	for i := range freqs {
		freqs[i] = float64(i) * df
		psd[i] = power
	}
	return freqs, psd
}

func TestBandPowerValidation(t *testing.T) {
	freqs, psd := flatSpectrum(10, 1, 1)

	_, err := bandpower.BandPower(freqs, psd[:5], 4, 8)
	require.Error(t, err)

	_, err = bandpower.BandPower(nil, nil, 4, 8)
	require.Error(t, err)

	_, err = bandpower.BandPower(freqs, psd, 8, 4)
	require.Error(t, err)

	_, err = bandpower.BandPower(freqs, psd, 8, 8)
	require.Error(t, err)
}

func TestBandPowerBinCases(t *testing.T) {
	freqs, psd := flatSpectrum(101, 0.5, 2) // 0..50 Hz in 0.5 Hz steps

	// No bins in range.
	p, err := bandpower.BandPower(freqs, psd, 60, 70)
	require.NoError(t, err)
	assert.Equal(t, 0.0, p)

	// Exactly one bin: power * resolution.
	p, err = bandpower.BandPower(freqs, psd, 9.9, 10.1)
	require.NoError(t, err)
	assert.InDelta(t, 2*0.5, p, 1e-12)

	// Flat spectrum over theta: trapezoid equals power * width.
	p, err = bandpower.BandPower(freqs, psd, 4, 8)
	require.NoError(t, err)
	assert.InDelta(t, 2*4.0, p, 1e-9)
}

func TestAllBandPowersAdditivity(t *testing.T) {
	freqs, psd := flatSpectrum(101, 0.5, 3)
	// Make the spectrum uneven so the sum is not trivially round.
	for i := range psd {
		psd[i] += math.Sin(float64(i)) * 0.7
	}

	bp, err := bandpower.AllBandPowers(freqs, psd)
	require.NoError(t, err)
	assert.Equal(t, bp.Theta+bp.Alpha+bp.Beta, bp.Total)
}

func TestRelativeSumsToOne(t *testing.T) {
	freqs, psd := flatSpectrum(101, 0.5, 1.5)

	rel, err := bandpower.Relative(freqs, psd)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, rel.Theta+rel.Alpha+rel.Beta, 1e-9)
	assert.Greater(t, rel.ThetaAlphaRatio, 0.0)
}

func TestRelativeZeroTotal(t *testing.T) {
	freqs, psd := flatSpectrum(101, 0.5, 0)

	rel, err := bandpower.Relative(freqs, psd)
	require.NoError(t, err)
	assert.Zero(t, rel.Theta)
	assert.Zero(t, rel.Alpha)
	assert.Zero(t, rel.Beta)
	assert.Zero(t, rel.ThetaAlphaRatio)
	assert.Zero(t, rel.ThetaBetaRatio)
	assert.Zero(t, rel.AlphaBetaRatio)
}

func TestPeakFrequency(t *testing.T) {
	freqs, psd := flatSpectrum(101, 0.5, 1)
	psd[12] = 10 // 6 Hz
	psd[14] = 10 // 7 Hz, tie broken by lower frequency

	f, ok := bandpower.PeakFrequency(freqs, psd, 4, 8)
	require.True(t, ok)
	assert.Equal(t, 6.0, f)

	_, ok = bandpower.PeakFrequency(freqs, psd, 60, 70)
	assert.False(t, ok)
}

func TestNamedBandPower(t *testing.T) {
	freqs, psd := flatSpectrum(101, 0.5, 1)
	theta, err := bandpower.NamedBandPower(freqs, psd, eeg.Theta)
	require.NoError(t, err)
	gamma, err := bandpower.NamedBandPower(freqs, psd, eeg.Gamma)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, theta, 1e-9)
	assert.InDelta(t, 20.0, gamma, 1e-9)
}

func TestFromWelch(t *testing.T) {
	cfg := spectral.DefaultWelchConfig()
	fs := cfg.SamplingRate
	samples := make([]float64, int(fs*4))
	for i := range samples {
		ti := float64(i) / fs
		samples[i] = 20 * math.Sin(2*math.Pi*6*ti)
	}
	res, err := spectral.Welch(samples, cfg)
	require.NoError(t, err)

	m, err := bandpower.FromWelch(res, eeg.Theta)
	require.NoError(t, err)
	assert.InDelta(t, 6.0, m.PeakFrequency, 1.0)
	assert.Greater(t, m.BandPower, 0.0)
	assert.Greater(t, m.PeakPower, 0.0)
	assert.Greater(t, m.RelativePower, 0.5)
	assert.LessOrEqual(t, m.RelativePower, 1.0)

	_, err = bandpower.FromWelch(nil, eeg.Theta)
	require.Error(t, err)
}

func TestEpochStatistics(t *testing.T) {
	epochs := []bandpower.BandPowers{
		{Theta: 8, Alpha: 4, Beta: 2, Total: 14},
		{Theta: 10, Alpha: 5, Beta: 3, Total: 18},
		{Theta: 12, Alpha: 6, Beta: 4, Total: 22},
	}

	mean := bandpower.Mean(epochs)
	assert.InDelta(t, 10, mean.Theta, 1e-12)
	assert.InDelta(t, 5, mean.Alpha, 1e-12)

	std := bandpower.Std(epochs)
	assert.InDelta(t, 2, std.Theta, 1e-12) // sample std with n-1 divisor

	assert.Equal(t, bandpower.BandPowers{}, bandpower.Mean(nil))
	assert.Equal(t, bandpower.BandPowers{}, bandpower.Std(epochs[:1]))
}
