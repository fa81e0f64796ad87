// Package pipeline wires one channel's buffer, conditioning filter, spectral
// estimator, artifact detectors and baseline normalizer into a single
// analysis path. One Pipeline instance corresponds to one device channel and
// must be driven from a single goroutine; the server layer owns any locking.
package pipeline

import (
	"fmt"

	"github.com/flowstate-bci/eegstream/eeg"
	"github.com/flowstate-bci/eegstream/eeg/artifact"
	"github.com/flowstate-bci/eegstream/eeg/bandpower"
	"github.com/flowstate-bci/eegstream/eeg/baseline"
	"github.com/flowstate-bci/eegstream/eeg/buffer"
	"github.com/flowstate-bci/eegstream/eeg/filter"
	"github.com/flowstate-bci/eegstream/eeg/spectral"
)

// Config assembles per-channel analysis parameters.
type Config struct {
	SamplingRateHz    float64
	WindowDurationSec float64
	Welch             spectral.WelchConfig
	Filter            filter.Config
	Thresholds        artifact.Thresholds
	// DisableFilter skips the bandpass stage, feeding raw buffered samples
	// to the spectral estimator.
	DisableFilter bool
	// TargetZScore and Hysteresis drive the feedback threshold decision
	// attached to Metrics once a baseline is installed.
	TargetZScore float64
	Hysteresis   float64
}

// DefaultConfig returns the standard 500 Hz, 4 second analysis setup.
func DefaultConfig() Config {
	welch := spectral.DefaultWelchConfig()
	return Config{
		SamplingRateHz:    welch.SamplingRate,
		WindowDurationSec: 4,
		Welch:             welch,
		Filter:            filter.DefaultConfig(welch.SamplingRate),
		Thresholds:        artifact.DefaultThresholds(),
		TargetZScore:      0.5,
		Hysteresis:        baseline.DefaultHysteresis,
	}
}

// Metrics is the per-window analysis output streamed to consumers.
type Metrics struct {
	Timestamp     int64                        `json:"timestamp"`
	ThetaPower    float64                      `json:"theta_power"`
	AlphaPower    float64                      `json:"alpha_power"`
	BetaPower     float64                      `json:"beta_power"`
	TotalPower    float64                      `json:"total_power"`
	PeakThetaFreq float64                      `json:"peak_theta_freq"`
	ZScore        float64                      `json:"z_score"`
	ThetaState    baseline.Zone                `json:"theta_state"`
	Threshold     baseline.ThresholdCheck      `json:"threshold"`
	HasBaseline   bool                         `json:"has_baseline"`
	SignalQuality eeg.SignalQuality            `json:"signal_quality"`
	Relative      bandpower.RelativeBandPowers `json:"relative"`
}

// Pipeline owns the streaming state for one channel.
type Pipeline struct {
	cfg      Config
	buf      *buffer.SlidingBuffer
	bandpass *filter.BandpassFilter
	profile  *eeg.BaselineProfile
}

// New builds a pipeline; the filter is designed up front so invalid configs
// fail at construction, not mid-stream.
func New(cfg Config) (*Pipeline, error) {
	buf, err := buffer.New(cfg.SamplingRateHz, cfg.WindowDurationSec)
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	p := &Pipeline{cfg: cfg, buf: buf}
	if !cfg.DisableFilter {
		fcfg := cfg.Filter
		if fcfg.SamplingRateHz == 0 {
			fcfg.SamplingRateHz = cfg.SamplingRateHz
		}
		p.bandpass, err = filter.New(fcfg)
		if err != nil {
			return nil, fmt.Errorf("pipeline: %w", err)
		}
	}
	return p, nil
}

// Ingest appends one device packet to the channel buffer.
func (p *Pipeline) Ingest(pkt eeg.Packet) {
	p.buf.AddPacket(pkt)
}

// Ready reports whether the buffer holds at least one Welch segment of data.
func (p *Pipeline) Ready() bool {
	segment := int(p.cfg.Welch.WindowSeconds * p.cfg.Welch.SamplingRate)
	return p.buf.HasEnoughSamples(segment)
}

// Buffer exposes the channel buffer for stats reporting.
func (p *Pipeline) Buffer() *buffer.SlidingBuffer {
	return p.buf
}

// SetBaseline installs a calibration profile. The profile must carry a
// strictly positive theta standard deviation.
func (p *Pipeline) SetBaseline(profile eeg.BaselineProfile) error {
	if profile.ThetaStd <= 0 {
		return fmt.Errorf("pipeline: baseline theta std must be positive, got %v", profile.ThetaStd)
	}
	installed := profile
	p.profile = &installed
	return nil
}

// Baseline returns the installed profile, if any.
func (p *Pipeline) Baseline() (eeg.BaselineProfile, bool) {
	if p.profile == nil {
		return eeg.BaselineProfile{}, false
	}
	return *p.profile, true
}

// Reset clears the buffer and filter state, e.g. on device reconnect.
func (p *Pipeline) Reset() {
	p.buf.Clear()
	if p.bandpass != nil {
		p.bandpass.Reset()
	}
}

// Analyze runs one full analysis pass over the current window: artifact
// detection on the raw samples, bandpass conditioning, Welch PSD, band
// powers and, when a baseline is installed, the theta z-score, zone and
// feedback threshold decision.
func (p *Pipeline) Analyze() (*Metrics, error) {
	snap := p.buf.Samples()
	if snap.SampleCount == 0 {
		return nil, fmt.Errorf("pipeline: no samples buffered")
	}

	// Artifacts are judged on the unfiltered window; the bandpass would
	// hide exactly the contamination we are looking for.
	quality := artifact.Assess(snap.Samples, p.cfg.SamplingRateHz, p.cfg.Thresholds)

	samples := snap.Samples
	if p.bandpass != nil {
		// Zero-phase conditioning of the analysis window. The streaming
		// Process path is reserved for future chunked operation; per-window
		// filtfilt avoids carrying filter transients between windows.
		filtered, err := filter.ApplyZeroPhase(samples, p.bandpass.Coefficients())
		if err != nil {
			return nil, fmt.Errorf("pipeline: %w", err)
		}
		samples = filtered
	}

	welch, err := spectral.Welch(samples, p.cfg.Welch)
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	powers, err := bandpower.AllBandPowers(welch.Frequencies, welch.PSD)
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	relative, err := bandpower.Relative(welch.Frequencies, welch.PSD)
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}

	m := &Metrics{
		Timestamp:     snap.EndTimestamp,
		ThetaPower:    powers.Theta,
		AlphaPower:    powers.Alpha,
		BetaPower:     powers.Beta,
		TotalPower:    powers.Total,
		SignalQuality: quality,
		Relative:      relative,
	}
	lo, hi := eeg.Theta.Range()
	if f, ok := bandpower.PeakFrequency(welch.Frequencies, welch.PSD, lo, hi); ok {
		m.PeakThetaFreq = f
	}

	if p.profile != nil {
		z, err := baseline.NormalizeTheta(powers.Theta, *p.profile)
		if err != nil {
			return nil, fmt.Errorf("pipeline: %w", err)
		}
		m.ZScore = z
		m.ThetaState = baseline.CategorizeZone(z)
		m.Threshold = baseline.CheckThreshold(z, p.cfg.TargetZScore, p.cfg.Hysteresis)
		m.HasBaseline = true
	}
	return m, nil
}
