package main

import (
	"context"
	"fmt"
	"log"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/flowstate-bci/eegstream/eeg"
)

// Simulation parameters. Theta band power drifts around the baseline mean so a
// freshly calibrated profile lands near these values.
const (
	simBaselineThetaMean = 10.0 // uV^2
	simBaselineThetaStd  = 2.0  // uV^2
	simAlphaAmplitudeUV  = 3.0
	simBetaAmplitudeUV   = 1.5
	simNoiseStdUV        = 1.0
	simArtifactChance    = 0.002 // per packet
	simArtifactPeakUV    = 180.0
)

// Simulator synthesizes EEG sample streams for development without hardware.
// It generates a sine mixture whose theta component follows a slowly drifting
// or forced power level, with background noise and occasional artifact bursts.
type Simulator struct {
	cfg    *SimulatorConfig
	stream *StreamConfig
	cm     *ChannelManager

	mu          sync.Mutex
	forcedState string // "" when drifting naturally
	driftPhase  float64

	rng      *rand.Rand
	channels []*simChannel
}

// simChannel keeps per-channel oscillator phases so samples stay continuous
// across packets.
type simChannel struct {
	ch         *Channel
	thetaPhase float64
	alphaPhase float64
	betaPhase  float64
	seq        uint32
}

// NewSimulator builds the synthetic source. Channels are created on Run.
func NewSimulator(cfg *SimulatorConfig, stream *StreamConfig, cm *ChannelManager) *Simulator {
	return &Simulator{
		cfg:        cfg,
		stream:     stream,
		cm:         cm,
		driftPhase: rand.Float64() * 2 * math.Pi,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// SetState forces the simulated theta level: low, normal or high. The value
// natural clears any forced state.
func (s *Simulator) SetState(state string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch state {
	case "low", "normal", "high":
		s.forcedState = state
		log.Printf("Simulator: forced state %s", state)
	case "natural", "":
		s.forcedState = ""
		log.Printf("Simulator: cleared forced state")
	default:
		return fmt.Errorf("simulator: invalid state %q, want low, normal, high or natural", state)
	}
	return nil
}

// Run creates the simulated channels and streams packets until the context is
// cancelled.
func (s *Simulator) Run(ctx context.Context) error {
	for i := 0; i < s.cfg.Channels; i++ {
		ch, err := s.cm.CreateChannel(fmt.Sprintf("sim-%d", i))
		if err != nil {
			return fmt.Errorf("simulator: %w", err)
		}
		s.channels = append(s.channels, &simChannel{ch: ch})
	}

	samplesPerPacket := int(s.stream.SamplingRateHz / s.cfg.PacketRateHz)
	if samplesPerPacket < 1 {
		samplesPerPacket = 1
	}
	interval := time.Duration(float64(time.Second) / s.cfg.PacketRateHz)
	log.Printf("Simulator: streaming %d channel(s) at %.0f packets/s, %d samples/packet",
		len(s.channels), s.cfg.PacketRateHz, samplesPerPacket)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Printf("Simulator: stopped")
			return nil
		case <-ticker.C:
			now := time.Now().UnixMilli()
			for _, sc := range s.channels {
				pkt := s.generatePacket(sc, now, samplesPerPacket)
				sc.ch.Ingest(pkt)
			}
		}
	}
}

// thetaAmplitude maps the current simulated theta band power to a sine
// amplitude. A sine of amplitude A carries A^2/2 of band power.
func (s *Simulator) thetaAmplitude() float64 {
	s.mu.Lock()
	forced := s.forcedState
	s.driftPhase += 0.02
	drift := 3.0 * math.Sin(s.driftPhase)
	s.mu.Unlock()

	var power float64
	switch forced {
	case "low":
		power = simBaselineThetaMean - 2*simBaselineThetaStd + s.rng.NormFloat64()*simBaselineThetaStd*0.1
	case "high":
		power = simBaselineThetaMean + 2*simBaselineThetaStd + s.rng.NormFloat64()*simBaselineThetaStd*0.1
	case "normal":
		power = simBaselineThetaMean + s.rng.NormFloat64()*simBaselineThetaStd*0.1
	default:
		power = simBaselineThetaMean + drift + s.rng.NormFloat64()*simBaselineThetaStd*0.3
	}
	if power < 0.1 {
		power = 0.1
	}
	return math.Sqrt(2 * power)
}

func (s *Simulator) generatePacket(sc *simChannel, timestamp int64, n int) eeg.Packet {
	thetaAmp := s.thetaAmplitude()
	dt := 1.0 / s.stream.SamplingRateHz
	burst := s.rng.Float64() < simArtifactChance

	samples := make([]float64, n)
	for i := range samples {
		sc.thetaPhase += 2 * math.Pi * 6 * dt
		sc.alphaPhase += 2 * math.Pi * 10 * dt
		sc.betaPhase += 2 * math.Pi * 20 * dt
		v := thetaAmp*math.Sin(sc.thetaPhase) +
			simAlphaAmplitudeUV*math.Sin(sc.alphaPhase) +
			simBetaAmplitudeUV*math.Sin(sc.betaPhase) +
			s.rng.NormFloat64()*simNoiseStdUV
		if burst && i < n/4 {
			// Electrode pop: a decaying high amplitude transient.
			v += simArtifactPeakUV * math.Exp(-float64(i)*0.1)
		}
		samples[i] = v
	}

	sc.seq++
	return eeg.Packet{
		Timestamp:      timestamp,
		Samples:        samples,
		SequenceNumber: sc.seq,
	}
}
