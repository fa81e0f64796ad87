package spectral

import "fmt"

// WelchConfig controls the averaged periodogram. Zero values fall back to
// the defaults via applyDefaults in the config layer; the core requires a
// fully populated config.
type WelchConfig struct {
	SamplingRate  float64
	WindowSeconds float64
	OverlapRatio  float64
	Window        WindowType
}

// DefaultWelchConfig is the contract default: 500 Hz, 2 s Hann segments with
// 50% overlap.
func DefaultWelchConfig() WelchConfig {
	return WelchConfig{
		SamplingRate:  500,
		WindowSeconds: 2,
		OverlapRatio:  0.5,
		Window:        WindowHann,
	}
}

// WelchResult is a one-sided power spectral density estimate.
type WelchResult struct {
	Frequencies         []float64 // Hz, ascending, DC to Nyquist
	PSD                 []float64 // µV²/Hz
	FrequencyResolution float64   // Hz per bin, samplingRate/nfft
	SegmentCount        int
}

// Welch computes the averaged, windowed, overlapping-segment periodogram.
// The input must cover at least one full segment; shorter input is an error
// so the caller can keep buffering.
func Welch(samples []float64, cfg WelchConfig) (*WelchResult, error) {
	if cfg.SamplingRate <= 0 {
		return nil, fmt.Errorf("welch: sampling rate must be positive, got %v", cfg.SamplingRate)
	}
	if cfg.WindowSeconds <= 0 {
		return nil, fmt.Errorf("welch: window seconds must be positive, got %v", cfg.WindowSeconds)
	}
	if cfg.OverlapRatio < 0 || cfg.OverlapRatio >= 1 {
		return nil, fmt.Errorf("welch: overlap ratio must be in [0,1), got %v", cfg.OverlapRatio)
	}

	segLen := int(cfg.WindowSeconds * cfg.SamplingRate)
	if segLen < 2 {
		return nil, fmt.Errorf("welch: segment length %d too small", segLen)
	}
	if len(samples) < segLen {
		return nil, fmt.Errorf("welch: need at least %d samples (%.3gs at %g Hz), got %d",
			segLen, cfg.WindowSeconds, cfg.SamplingRate, len(samples))
	}

	step := int(float64(segLen) * (1.0 - cfg.OverlapRatio))
	if step < 1 {
		step = 1
	}

	window := MakeWindow(cfg.Window, segLen)
	windowPower := WindowPower(window)
	nfft := NextPowerOfTwo(segLen)
	scale := 1.0 / (cfg.SamplingRate * windowPower)

	psd := make([]float64, nfft/2+1)
	segments := 0
	buf := make([]float64, nfft)
	for start := 0; start+segLen <= len(samples); start += step {
		for i := 0; i < segLen; i++ {
			buf[i] = samples[start+i] * window[i]
		}
		for i := segLen; i < nfft; i++ {
			buf[i] = 0
		}
		coeffs, err := RFFT(buf)
		if err != nil {
			return nil, err
		}
		power := powerOfCoeffs(coeffs)
		for k, p := range power {
			// One-sided spectrum: interior bins carry the mirrored
			// negative-frequency power as well.
			if k > 0 && k < len(power)-1 {
				p *= 2
			}
			psd[k] += p * scale
		}
		segments++
	}

	for k := range psd {
		psd[k] /= float64(segments)
	}

	return &WelchResult{
		Frequencies:         OneSidedFrequencyBins(nfft, cfg.SamplingRate),
		PSD:                 psd,
		FrequencyResolution: cfg.SamplingRate / float64(nfft),
		SegmentCount:        segments,
	}, nil
}
