package artifact

import (
	"github.com/flowstate-bci/eegstream/eeg"
	"github.com/flowstate-bci/eegstream/eeg/spectral"
)

// FrequencyRatioResult reports the high/low band power ratio. Broadband
// EMG contamination disproportionately elevates 30-50 Hz power relative to
// the neurophysiological 4-30 Hz band, so a high ratio flags muscle noise.
type FrequencyRatioResult struct {
	HighFrequencyPower float64 `json:"high_frequency_power"`
	LowFrequencyPower  float64 `json:"low_frequency_power"`
	Ratio              float64 `json:"ratio"`
	HasArtifact        bool    `json:"has_artifact"`
	Threshold          float64 `json:"threshold"`
}

// DetectFrequencyRatio computes the mean-power-per-bin ratio between the
// 30-50 Hz and 4-30 Hz bands. Inputs too short for spectral analysis, or
// sampling rates whose Nyquist does not cover the high band, yield a clean
// zero result rather than an error.
func DetectFrequencyRatio(samples []float64, samplingRate, threshold float64) FrequencyRatioResult {
	res := FrequencyRatioResult{Threshold: threshold}
	if len(samples) < 4 || samplingRate/2 < 50 {
		return res
	}

	// Remove DC so the mean does not leak into the low band.
	var mean float64
	for _, v := range samples {
		mean += v
	}
	mean /= float64(len(samples))
	centered := make([]float64, len(samples))
	for i, v := range samples {
		centered[i] = v - mean
	}

	nfft := spectral.NextPowerOfTwo(len(centered))
	coeffs, err := spectral.RFFT(spectral.ZeroPad(centered, nfft))
	if err != nil {
		return res
	}
	freqs := spectral.OneSidedFrequencyBins(nfft, samplingRate)

	lowLo, lowHi := eeg.LowFrequency.Range()
	highLo, highHi := eeg.HighFrequency.Range()
	var lowSum, highSum float64
	var lowBins, highBins int
	for i, c := range coeffs {
		p := real(c)*real(c) + imag(c)*imag(c)
		f := freqs[i]
		if f >= lowLo && f <= lowHi {
			lowSum += p
			lowBins++
		}
		if f >= highLo && f <= highHi {
			highSum += p
			highBins++
		}
	}
	if lowBins > 0 {
		res.LowFrequencyPower = lowSum / float64(lowBins)
	}
	if highBins > 0 {
		res.HighFrequencyPower = highSum / float64(highBins)
	}
	if res.LowFrequencyPower > 0 {
		res.Ratio = res.HighFrequencyPower / res.LowFrequencyPower
	}
	res.HasArtifact = res.Ratio > threshold
	return res
}
