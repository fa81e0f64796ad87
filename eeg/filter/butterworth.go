// Package filter implements the digital Butterworth IIR bandpass used to
// strip DC drift and high-frequency EMG before spectral analysis. The design
// path is the classic analog prototype -> lowpass-to-bandpass transform ->
// bilinear transform, carried out in pole/zero form and expanded to
// transfer-function coefficients at the end.
package filter

import (
	"fmt"
	"math"
	"math/cmplx"
)

// Config describes one bandpass design.
type Config struct {
	LowCutoffHz    float64 `json:"low_cutoff_hz" yaml:"low_cutoff_hz"`
	HighCutoffHz   float64 `json:"high_cutoff_hz" yaml:"high_cutoff_hz"`
	SamplingRateHz float64 `json:"sampling_rate_hz" yaml:"sampling_rate_hz"`
	Order          int     `json:"order" yaml:"order"`
}

// DefaultConfig returns the standard EEG conditioning filter: 0.5-50 Hz,
// fourth order.
func DefaultConfig(samplingRateHz float64) Config {
	return Config{
		LowCutoffHz:    0.5,
		HighCutoffHz:   50,
		SamplingRateHz: samplingRateHz,
		Order:          4,
	}
}

// Coefficients are transfer-function numerator (B) and denominator (A)
// coefficients, normalized so A[0] == 1. A bandpass of order N carries
// 2N+1 coefficients on each side.
type Coefficients struct {
	B []float64
	A []float64
}

// Design computes bandpass Butterworth coefficients for the config.
func Design(cfg Config) (Coefficients, error) {
	if cfg.LowCutoffHz <= 0 || cfg.HighCutoffHz <= 0 {
		return Coefficients{}, fmt.Errorf("filter design: cutoffs must be positive, got [%g,%g]",
			cfg.LowCutoffHz, cfg.HighCutoffHz)
	}
	if cfg.LowCutoffHz >= cfg.HighCutoffHz {
		return Coefficients{}, fmt.Errorf("filter design: low cutoff %g must be below high cutoff %g",
			cfg.LowCutoffHz, cfg.HighCutoffHz)
	}
	nyquist := cfg.SamplingRateHz / 2
	if cfg.HighCutoffHz >= nyquist {
		return Coefficients{}, fmt.Errorf("filter design: high cutoff %g must be below nyquist %g",
			cfg.HighCutoffHz, nyquist)
	}
	if cfg.Order < 1 {
		return Coefficients{}, fmt.Errorf("filter design: order must be a positive integer, got %d", cfg.Order)
	}

	n := cfg.Order
	fs := cfg.SamplingRateHz

	// Prewarp the cutoffs so the bilinear transform lands them exactly.
	w1 := 2 * fs * math.Tan(math.Pi*cfg.LowCutoffHz/fs)
	w2 := 2 * fs * math.Tan(math.Pi*cfg.HighCutoffHz/fs)
	w0 := math.Sqrt(w1 * w2)
	bw := w2 - w1

	// Analog Butterworth prototype: n poles evenly spaced on the left half
	// of the unit circle, no finite zeros, unit gain.
	proto := make([]complex128, n)
	for k := 0; k < n; k++ {
		theta := math.Pi * float64(2*k+n+1) / float64(2*n)
		proto[k] = cmplx.Exp(complex(0, theta))
	}

	// Lowpass-to-bandpass: each prototype pole splits into a conjugate pair
	// around the center frequency; n zeros appear at s=0.
	poles := make([]complex128, 0, 2*n)
	for _, p := range proto {
		ps := p * complex(bw/2, 0)
		d := cmplx.Sqrt(ps*ps - complex(w0*w0, 0))
		poles = append(poles, ps+d, ps-d)
	}
	zeros := make([]complex128, n) // all at s=0
	gain := math.Pow(bw, float64(n))

	// Bilinear transform to the z-domain. The n-pole surplus maps to n
	// additional zeros at z=-1.
	fs2 := complex(2*fs, 0)
	zZeros := make([]complex128, 0, 2*n)
	num := complex(1, 0)
	den := complex(1, 0)
	for _, z := range zeros {
		zZeros = append(zZeros, (fs2+z)/(fs2-z))
		num *= fs2 - z
	}
	for i := 0; i < n; i++ {
		zZeros = append(zZeros, -1)
	}
	zPoles := make([]complex128, 0, 2*n)
	for _, p := range poles {
		zPoles = append(zPoles, (fs2+p)/(fs2-p))
		den *= fs2 - p
	}
	k := gain * real(num/den)

	b := polyFromRoots(zZeros)
	a := polyFromRoots(zPoles)
	coeffs := Coefficients{
		B: make([]float64, len(b)),
		A: make([]float64, len(a)),
	}
	for i, c := range b {
		coeffs.B[i] = k * real(c)
	}
	for i, c := range a {
		coeffs.A[i] = real(c)
	}
	// The roots come in conjugate pairs, so A is real and monic already;
	// normalize anyway to pin A[0] = 1 against rounding.
	a0 := coeffs.A[0]
	for i := range coeffs.B {
		coeffs.B[i] /= a0
	}
	for i := range coeffs.A {
		coeffs.A[i] /= a0
	}
	return coeffs, nil
}

// polyFromRoots expands prod(x - r_i) into monic polynomial coefficients,
// highest degree first.
func polyFromRoots(roots []complex128) []complex128 {
	coeffs := make([]complex128, 1, len(roots)+1)
	coeffs[0] = 1
	for _, r := range roots {
		next := make([]complex128, len(coeffs)+1)
		for i, c := range coeffs {
			next[i] += c
			next[i+1] -= c * r
		}
		coeffs = next
	}
	return coeffs
}

// Gain evaluates the transfer-function magnitude |H(e^jw)| at the given
// frequency. Used to verify stopband attenuation analytically.
func Gain(c Coefficients, freqHz, samplingRateHz float64) float64 {
	omega := 2 * math.Pi * freqHz / samplingRateHz
	var num, den complex128
	for i, b := range c.B {
		num += complex(b, 0) * cmplx.Exp(complex(0, -omega*float64(i)))
	}
	for i, a := range c.A {
		den += complex(a, 0) * cmplx.Exp(complex(0, -omega*float64(i)))
	}
	return cmplx.Abs(num / den)
}
