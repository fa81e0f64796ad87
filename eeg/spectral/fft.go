// Package spectral converts time-domain sample windows into one-sided power
// spectra, either by direct FFT or by Welch's averaged periodogram. The FFT
// engine is gonum's dsp/fourier; the wrappers here pin the power-of-two
// contract and the bin layout the rest of the pipeline depends on.
package spectral

import (
	"fmt"

	"gonum.org/v1/gonum/dsp/fourier"
)

// FFT computes the in-place discrete Fourier transform of the complex signal
// held in the parallel re/im slices. The length must be a power of two;
// callers pad explicitly with ZeroPad/NextPowerOfTwo.
func FFT(re, im []float64) error {
	if len(re) != len(im) {
		return fmt.Errorf("fft: real and imaginary lengths differ (%d vs %d)", len(re), len(im))
	}
	n := len(re)
	if n == 0 {
		return fmt.Errorf("fft: empty input")
	}
	if n&(n-1) != 0 {
		return fmt.Errorf("fft: length %d is not a power of 2", n)
	}

	data := make([]complex128, n)
	for i := range data {
		data[i] = complex(re[i], im[i])
	}
	coeffs := fourier.NewCmplxFFT(n).Coefficients(nil, data)
	for i, c := range coeffs {
		re[i] = real(c)
		im[i] = imag(c)
	}
	return nil
}

// RFFT transforms a real signal and returns the N/2+1 non-redundant bins
// (DC through Nyquist). The length must be a power of two.
func RFFT(data []float64) ([]complex128, error) {
	n := len(data)
	if n == 0 {
		return nil, fmt.Errorf("rfft: empty input")
	}
	if n&(n-1) != 0 {
		return nil, fmt.Errorf("rfft: length %d is not a power of 2", n)
	}
	return fourier.NewFFT(n).Coefficients(nil, data), nil
}

// PowerSpectrum computes re²+im² elementwise.
func PowerSpectrum(re, im []float64) ([]float64, error) {
	if len(re) != len(im) {
		return nil, fmt.Errorf("power spectrum: real and imaginary lengths differ (%d vs %d)", len(re), len(im))
	}
	power := make([]float64, len(re))
	for i := range re {
		power[i] = re[i]*re[i] + im[i]*im[i]
	}
	return power, nil
}

// powerOfCoeffs computes |X|² for each coefficient.
func powerOfCoeffs(coeffs []complex128) []float64 {
	power := make([]float64, len(coeffs))
	for i, c := range coeffs {
		re, im := real(c), imag(c)
		power[i] = re*re + im*im
	}
	return power
}

// FrequencyBins returns the two-sided bin frequencies k*rate/n for k=0..n-1.
func FrequencyBins(n int, samplingRate float64) []float64 {
	bins := make([]float64, n)
	for k := range bins {
		bins[k] = float64(k) * samplingRate / float64(n)
	}
	return bins
}

// OneSidedFrequencyBins returns bin frequencies for k=0..n/2, DC to Nyquist.
func OneSidedFrequencyBins(n int, samplingRate float64) []float64 {
	bins := make([]float64, n/2+1)
	for k := range bins {
		bins[k] = float64(k) * samplingRate / float64(n)
	}
	return bins
}

// NextPowerOfTwo returns the smallest power of 2 >= n.
func NextPowerOfTwo(n int) int {
	if n <= 0 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n++
	return n
}

// ZeroPad returns data extended with zeros to targetLen, or truncated when
// targetLen is shorter. The input is never modified.
func ZeroPad(data []float64, targetLen int) []float64 {
	if targetLen < 0 {
		targetLen = 0
	}
	out := make([]float64, targetLen)
	copy(out, data)
	return out
}
