package spectral_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowstate-bci/eegstream/eeg/spectral"
)

func TestFFTRejectsBadLengths(t *testing.T) {
	err := spectral.FFT(make([]float64, 12), make([]float64, 12))
	require.Error(t, err)

	err = spectral.FFT(make([]float64, 8), make([]float64, 4))
	require.Error(t, err)

	err = spectral.FFT(nil, nil)
	require.Error(t, err)

	_, err = spectral.RFFT(make([]float64, 100))
	require.Error(t, err)
}

func TestFFTDCInput(t *testing.T) {
	const n = 16
	const v = 3.5
	re := make([]float64, n)
	im := make([]float64, n)
	for i := range re {
		re[i] = v
	}

	require.NoError(t, spectral.FFT(re, im))
	assert.InDelta(t, v*n, re[0], 1e-9)
	for i := 1; i < n; i++ {
		assert.InDelta(t, 0, re[i], 1e-9)
		assert.InDelta(t, 0, im[i], 1e-9)
	}
}

func TestFFTSinePeak(t *testing.T) {
	const n = 64
	const fs = 64.0
	re := make([]float64, n)
	im := make([]float64, n)
	for i := range re {
		re[i] = math.Sin(2 * math.Pi * 8 * float64(i) / fs)
	}

	require.NoError(t, spectral.FFT(re, im))
	power, err := spectral.PowerSpectrum(re, im)
	require.NoError(t, err)

	// An 8 Hz sine at 64 Hz sampling lands exactly on bin 8.
	best := 0
	for i := 1; i < n/2; i++ {
		if power[i] > power[best] {
			best = i
		}
	}
	assert.Equal(t, 8, best)
}

func TestRFFTBinCount(t *testing.T) {
	coeffs, err := spectral.RFFT(make([]float64, 32))
	require.NoError(t, err)
	assert.Len(t, coeffs, 17)
}

func TestFrequencyBins(t *testing.T) {
	bins := spectral.FrequencyBins(8, 400)
	require.Len(t, bins, 8)
	assert.Equal(t, 0.0, bins[0])
	assert.Equal(t, 50.0, bins[1])
	assert.Equal(t, 200.0, bins[4]) // Nyquist at bin n/2

	oneSided := spectral.OneSidedFrequencyBins(8, 400)
	require.Len(t, oneSided, 5)
	assert.Equal(t, 200.0, oneSided[4])
}

func TestNextPowerOfTwo(t *testing.T) {
	cases := map[int]int{0: 1, 1: 1, 2: 2, 3: 4, 500: 512, 1000: 1024, 1024: 1024}
	for in, want := range cases {
		assert.Equal(t, want, spectral.NextPowerOfTwo(in), "n=%d", in)
	}
}

func TestZeroPad(t *testing.T) {
	out := spectral.ZeroPad([]float64{1, 2, 3}, 6)
	assert.Equal(t, []float64{1, 2, 3, 0, 0, 0}, out)

	truncated := spectral.ZeroPad([]float64{1, 2, 3}, 2)
	assert.Equal(t, []float64{1, 2}, truncated)
}

func TestWindows(t *testing.T) {
	hann := spectral.Hann(9)
	assert.InDelta(t, 0, hann[0], 1e-12)
	assert.InDelta(t, 0, hann[8], 1e-12)
	assert.InDelta(t, 1, hann[4], 1e-12)

	hamming := spectral.Hamming(9)
	assert.InDelta(t, 0.08, hamming[0], 1e-12)
	assert.InDelta(t, 1, hamming[4], 1e-12)

	rect := spectral.Rectangular(4)
	assert.Equal(t, []float64{1, 1, 1, 1}, rect)
}

func TestWindowPower(t *testing.T) {
	n := 1024
	assert.InDelta(t, float64(n), spectral.WindowPower(spectral.Rectangular(n)), 1e-9)
	assert.InDelta(t, 0.375*float64(n), spectral.WindowPower(spectral.Hann(n)), float64(n)*0.005)
}
