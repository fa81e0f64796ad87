package main

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/flowstate-bci/eegstream/eeg"
	"github.com/flowstate-bci/eegstream/eeg/artifact"
	"github.com/flowstate-bci/eegstream/eeg/bandpower"
	"github.com/flowstate-bci/eegstream/eeg/buffer"
	"github.com/flowstate-bci/eegstream/eeg/filter"
	"github.com/flowstate-bci/eegstream/eeg/pipeline"
	"github.com/flowstate-bci/eegstream/eeg/spectral"
)

// Channel is one device channel: its analysis pipeline, latest metrics and
// the set of websocket subscribers fanned out to on every analysis pass.
type Channel struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt int64  `json:"created_at"`

	mu          sync.Mutex
	pipe        *pipeline.Pipeline
	calibrator  *pipeline.Calibrator
	calibrating bool
	latest      *pipeline.Metrics
	subscribers map[chan pipeline.Metrics]bool
}

// ChannelInfo is the JSON shape returned by the channel listing API.
type ChannelInfo struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	CreatedAt   int64        `json:"created_at"`
	HasBaseline bool         `json:"has_baseline"`
	Calibrating bool         `json:"calibrating"`
	Buffer      buffer.Stats `json:"buffer"`
}

// ChannelManager owns all active channels and drives the periodic analysis
// loop that updates metrics, Prometheus gauges and websocket subscribers.
type ChannelManager struct {
	mu       sync.RWMutex
	channels map[string]*Channel
	config   *Config
	pipeCfg  pipeline.Config
	mqtt     *MQTTPublisher
}

// NewChannelManager builds the manager and the shared pipeline configuration
// derived from the server config.
func NewChannelManager(config *Config) (*ChannelManager, error) {
	window, _ := spectral.ParseWindowType(config.Welch.Window)
	pipeCfg := pipeline.Config{
		SamplingRateHz:    config.Stream.SamplingRateHz,
		WindowDurationSec: config.Stream.WindowDurationSec,
		Welch: spectral.WelchConfig{
			SamplingRate:  config.Stream.SamplingRateHz,
			WindowSeconds: config.Welch.WindowSeconds,
			OverlapRatio:  config.Welch.OverlapRatio,
			Window:        window,
		},
		Filter: filter.Config{
			LowCutoffHz:    config.Filter.LowCutoffHz,
			HighCutoffHz:   config.Filter.HighCutoffHz,
			SamplingRateHz: config.Stream.SamplingRateHz,
			Order:          config.Filter.Order,
		},
		Thresholds: artifact.Thresholds{
			AmplitudeUV:         config.Artifacts.AmplitudeThresholdUV,
			GradientUVPerSample: config.Artifacts.GradientThresholdUV,
			FrequencyRatio:      config.Artifacts.FrequencyRatio,
		},
		DisableFilter: config.Filter.Disabled,
		TargetZScore:  config.Feedback.TargetZScore,
		Hysteresis:    config.Feedback.Hysteresis,
	}
	// Fail fast on an undesignable filter before any channel exists.
	if _, err := pipeline.New(pipeCfg); err != nil {
		return nil, fmt.Errorf("channel manager: %w", err)
	}
	return &ChannelManager{
		channels: make(map[string]*Channel),
		config:   config,
		pipeCfg:  pipeCfg,
	}, nil
}

// SetMQTTPublisher attaches an optional MQTT publisher fed on every analysis.
func (cm *ChannelManager) SetMQTTPublisher(pub *MQTTPublisher) {
	cm.mqtt = pub
}

// CreateChannel registers a new device channel and returns it.
func (cm *ChannelManager) CreateChannel(name string) (*Channel, error) {
	pipe, err := pipeline.New(cm.pipeCfg)
	if err != nil {
		return nil, err
	}
	ch := &Channel{
		ID:          uuid.New().String(),
		Name:        name,
		CreatedAt:   time.Now().UnixMilli(),
		pipe:        pipe,
		calibrator:  pipeline.NewCalibrator(),
		subscribers: make(map[chan pipeline.Metrics]bool),
	}
	cm.mu.Lock()
	cm.channels[ch.ID] = ch
	cm.mu.Unlock()
	channelsActive.Inc()
	log.Printf("Channel %s (%s) created", ch.ID, name)
	return ch, nil
}

// RemoveChannel drops a channel and closes its subscriber channels.
func (cm *ChannelManager) RemoveChannel(id string) bool {
	cm.mu.Lock()
	ch, ok := cm.channels[id]
	if ok {
		delete(cm.channels, id)
	}
	cm.mu.Unlock()
	if !ok {
		return false
	}
	ch.mu.Lock()
	for sub := range ch.subscribers {
		close(sub)
	}
	ch.subscribers = nil
	ch.mu.Unlock()
	channelsActive.Dec()
	removeChannelMetrics(ch.ID)
	if cm.mqtt != nil {
		cm.mqtt.Forget(ch.ID)
	}
	log.Printf("Channel %s removed", id)
	return true
}

// GetChannel looks up a channel by ID.
func (cm *ChannelManager) GetChannel(id string) (*Channel, bool) {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	ch, ok := cm.channels[id]
	return ch, ok
}

// ListChannels returns a snapshot of every channel's public state.
func (cm *ChannelManager) ListChannels() []ChannelInfo {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	infos := make([]ChannelInfo, 0, len(cm.channels))
	for _, ch := range cm.channels {
		infos = append(infos, ch.Info())
	}
	return infos
}

// Run drives the periodic analysis loop until stop is closed.
func (cm *ChannelManager) Run(stop <-chan struct{}) {
	interval := time.Duration(cm.config.Stream.AnalysisIntervalMs) * time.Millisecond
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			cm.analyzeAll()
		}
	}
}

func (cm *ChannelManager) analyzeAll() {
	cm.mu.RLock()
	chans := make([]*Channel, 0, len(cm.channels))
	for _, ch := range cm.channels {
		chans = append(chans, ch)
	}
	cm.mu.RUnlock()
	for _, ch := range chans {
		ch.analyze(cm)
	}
}

// Info returns the channel's listing entry.
func (ch *Channel) Info() ChannelInfo {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	_, hasBaseline := ch.pipe.Baseline()
	return ChannelInfo{
		ID:          ch.ID,
		Name:        ch.Name,
		CreatedAt:   ch.CreatedAt,
		HasBaseline: hasBaseline,
		Calibrating: ch.calibrating,
		Buffer:      ch.pipe.Buffer().Stats(),
	}
}

// Ingest feeds one packet into the channel pipeline.
func (ch *Channel) Ingest(pkt eeg.Packet) {
	ch.mu.Lock()
	ch.pipe.Ingest(pkt)
	ch.mu.Unlock()
	packetsIngested.WithLabelValues(ch.ID).Inc()
	samplesIngested.WithLabelValues(ch.ID).Add(float64(len(pkt.Samples)))
}

// LatestMetrics returns the most recent analysis result, if any.
func (ch *Channel) LatestMetrics() (pipeline.Metrics, bool) {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	if ch.latest == nil {
		return pipeline.Metrics{}, false
	}
	return *ch.latest, true
}

// Baseline returns the installed calibration profile, if any.
func (ch *Channel) Baseline() (eeg.BaselineProfile, bool) {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	return ch.pipe.Baseline()
}

// SetBaseline installs a calibration profile on the channel.
func (ch *Channel) SetBaseline(profile eeg.BaselineProfile) error {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	return ch.pipe.SetBaseline(profile)
}

// StartCalibration begins collecting epochs for a new baseline profile.
func (ch *Channel) StartCalibration() {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	ch.calibrator.Reset()
	ch.calibrating = true
	log.Printf("Channel %s calibration started", ch.ID)
}

// FinishCalibration closes the epoch collection, installs the resulting
// profile and returns it.
func (ch *Channel) FinishCalibration() (eeg.BaselineProfile, error) {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	ch.calibrating = false
	profile, err := ch.calibrator.Finish(time.Now().UnixMilli())
	if err != nil {
		return eeg.BaselineProfile{}, err
	}
	if err := ch.pipe.SetBaseline(profile); err != nil {
		return eeg.BaselineProfile{}, err
	}
	log.Printf("Channel %s calibration finished: theta mean %.3f std %.3f quality %.1f",
		ch.ID, profile.ThetaMean, profile.ThetaStd, profile.QualityScore)
	return profile, nil
}

// Subscribe registers a metrics consumer. The returned channel is buffered;
// slow consumers drop updates instead of blocking the analysis loop.
func (ch *Channel) Subscribe() chan pipeline.Metrics {
	sub := make(chan pipeline.Metrics, 8)
	ch.mu.Lock()
	if ch.subscribers != nil {
		ch.subscribers[sub] = true
	}
	ch.mu.Unlock()
	return sub
}

// Unsubscribe removes a metrics consumer.
func (ch *Channel) Unsubscribe(sub chan pipeline.Metrics) {
	ch.mu.Lock()
	if ch.subscribers != nil {
		delete(ch.subscribers, sub)
	}
	ch.mu.Unlock()
}

// bandPowersOf rebuilds the absolute band powers from a metrics snapshot for
// calibration epoch collection.
func bandPowersOf(m *pipeline.Metrics) bandpower.BandPowers {
	return bandpower.BandPowers{
		Theta: m.ThetaPower,
		Alpha: m.AlphaPower,
		Beta:  m.BetaPower,
		Total: m.TotalPower,
	}
}

func (ch *Channel) analyze(cm *ChannelManager) {
	ch.mu.Lock()
	if !ch.pipe.Ready() {
		ch.mu.Unlock()
		return
	}
	metrics, err := ch.pipe.Analyze()
	if err != nil {
		ch.mu.Unlock()
		if DebugMode {
			log.Printf("Channel %s analysis failed: %v", ch.ID, err)
		}
		return
	}
	ch.latest = metrics
	if ch.calibrating && metrics.SignalQuality.Clean() {
		ch.calibrator.AddEpoch(bandPowersOf(metrics), metrics.PeakThetaFreq)
	}
	// Fan out while still holding the lock: RemoveChannel closes subscriber
	// channels under this same lock, so a send can never race a close. The
	// sends are non-blocking, keeping the hold bounded.
	for sub := range ch.subscribers {
		select {
		case sub <- *metrics:
		default:
		}
	}
	ch.mu.Unlock()

	updateChannelMetrics(ch.ID, metrics)
	if cm.mqtt != nil {
		cm.mqtt.Offer(ch.ID, *metrics)
	}
}
