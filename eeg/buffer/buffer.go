// Package buffer implements the fixed-capacity circular sample buffer that
// every analysis stage reads from. One SlidingBuffer corresponds to one
// logical device channel and is owned by a single producer; it performs no
// internal locking.
package buffer

import (
	"fmt"
	"math"

	"github.com/flowstate-bci/eegstream/eeg"
)

// SlidingBuffer is a ring buffer of voltage samples with parallel timestamps.
// Capacity is fixed at construction from the sampling rate and window
// duration; once full, each insert evicts the oldest sample.
type SlidingBuffer struct {
	samplingRate   float64
	windowDuration float64
	capacity       int

	values     []float64
	timestamps []int64
	head       int // next write position
	count      int

	totalSamples     uint64 // lifetime counter, survives eviction
	packetsProcessed uint64
}

// Snapshot is a chronological view of buffer contents at one instant.
type Snapshot struct {
	Samples        []float64
	SampleCount    int
	StartTimestamp int64
	EndTimestamp   int64
	Duration       float64 // seconds, (end-start)/1000
	IsFull         bool
}

// Stats reports buffer occupancy and lifetime throughput.
type Stats struct {
	CurrentSamples        int     `json:"current_samples"`
	MaxSamples            int     `json:"max_samples"`
	FillPercentage        float64 `json:"fill_percentage"`
	SamplingRate          float64 `json:"sampling_rate"`
	WindowDuration        float64 `json:"window_duration"`
	TotalSamplesProcessed uint64  `json:"total_samples_processed"`
	PacketsProcessed      uint64  `json:"packets_processed"`
	OldestTimestamp       int64   `json:"oldest_timestamp"`
	LatestTimestamp       int64   `json:"latest_timestamp"`
}

// New creates an empty buffer with capacity round(rate*duration).
func New(samplingRateHz, windowDurationSec float64) (*SlidingBuffer, error) {
	if samplingRateHz <= 0 {
		return nil, fmt.Errorf("sampling rate must be positive, got %v", samplingRateHz)
	}
	if windowDurationSec <= 0 {
		return nil, fmt.Errorf("window duration must be positive, got %v", windowDurationSec)
	}
	capacity := int(math.Round(samplingRateHz * windowDurationSec))
	if capacity < 1 {
		capacity = 1
	}
	return &SlidingBuffer{
		samplingRate:   samplingRateHz,
		windowDuration: windowDurationSec,
		capacity:       capacity,
		values:         make([]float64, capacity),
		timestamps:     make([]int64, capacity),
	}, nil
}

// AddSample appends one sample, evicting the oldest when full.
func (b *SlidingBuffer) AddSample(value float64, timestampMs int64) {
	b.values[b.head] = value
	b.timestamps[b.head] = timestampMs
	b.head = (b.head + 1) % b.capacity
	if b.count < b.capacity {
		b.count++
	}
	b.totalSamples++
}

// AddPacket appends every sample in the packet. All samples share the packet
// timestamp, matching BLE burst delivery where per-sample timing inside a
// burst is not resolvable.
func (b *SlidingBuffer) AddPacket(p eeg.Packet) {
	for _, v := range p.Samples {
		b.AddSample(v, p.Timestamp)
	}
	b.packetsProcessed++
}

// AddPackets applies AddPacket in order.
func (b *SlidingBuffer) AddPackets(packets []eeg.Packet) {
	for _, p := range packets {
		b.AddPacket(p)
	}
}

// index maps a chronological position (0 = oldest) to a storage index.
func (b *SlidingBuffer) index(i int) int {
	if b.count < b.capacity {
		return i
	}
	return (b.head + i) % b.capacity
}

// Samples returns the full current contents in chronological order. An empty
// buffer yields an empty slice with zero counts.
func (b *SlidingBuffer) Samples() Snapshot {
	return b.snapshot(b.count)
}

// Window returns the most recent durationSec worth of samples (the suffix of
// the buffer). IsFull reports whether the full requested duration was
// available; if the request exceeds available data, everything is returned
// and IsFull is false.
func (b *SlidingBuffer) Window(durationSec float64) Snapshot {
	want := int(math.Round(durationSec * b.samplingRate))
	if want < 0 {
		want = 0
	}
	satisfied := want <= b.count
	if !satisfied {
		want = b.count
	}
	s := b.snapshot(want)
	s.IsFull = satisfied && want > 0
	return s
}

// snapshot returns the last n samples in chronological order.
func (b *SlidingBuffer) snapshot(n int) Snapshot {
	s := Snapshot{Samples: make([]float64, n), SampleCount: n}
	if n == 0 {
		return s
	}
	skip := b.count - n
	for i := 0; i < n; i++ {
		s.Samples[i] = b.values[b.index(skip+i)]
	}
	s.StartTimestamp = b.timestamps[b.index(skip)]
	s.EndTimestamp = b.timestamps[b.index(b.count-1)]
	s.Duration = float64(s.EndTimestamp-s.StartTimestamp) / 1000.0
	s.IsFull = n == b.capacity && b.count == b.capacity
	return s
}

// RecentSamples returns the last n raw values, or fewer if the buffer holds
// less.
func (b *SlidingBuffer) RecentSamples(n int) []float64 {
	if n > b.count {
		n = b.count
	}
	if n <= 0 {
		return []float64{}
	}
	out := make([]float64, n)
	skip := b.count - n
	for i := 0; i < n; i++ {
		out[i] = b.values[b.index(skip+i)]
	}
	return out
}

// LatestSample returns the most recent value; ok is false when empty.
func (b *SlidingBuffer) LatestSample() (value float64, ok bool) {
	if b.count == 0 {
		return 0, false
	}
	return b.values[b.index(b.count-1)], true
}

// LatestTimestamp returns the most recent timestamp; ok is false when empty.
func (b *SlidingBuffer) LatestTimestamp() (ts int64, ok bool) {
	if b.count == 0 {
		return 0, false
	}
	return b.timestamps[b.index(b.count-1)], true
}

// Stats returns occupancy and throughput counters.
func (b *SlidingBuffer) Stats() Stats {
	st := Stats{
		CurrentSamples:        b.count,
		MaxSamples:            b.capacity,
		FillPercentage:        float64(b.count) * 100.0 / float64(b.capacity),
		SamplingRate:          b.samplingRate,
		WindowDuration:        b.windowDuration,
		TotalSamplesProcessed: b.totalSamples,
		PacketsProcessed:      b.packetsProcessed,
	}
	if b.count > 0 {
		st.OldestTimestamp = b.timestamps[b.index(0)]
		st.LatestTimestamp = b.timestamps[b.index(b.count-1)]
	}
	return st
}

// HasEnoughSamples reports whether at least min samples are buffered.
// A min of zero or less means a full buffer.
func (b *SlidingBuffer) HasEnoughSamples(min int) bool {
	if min <= 0 {
		min = b.capacity
	}
	return b.count >= min
}

// IsFull reports whether the buffer has reached capacity.
func (b *SlidingBuffer) IsFull() bool {
	return b.count == b.capacity
}

// Capacity returns the fixed sample capacity.
func (b *SlidingBuffer) Capacity() int {
	return b.capacity
}

// Count returns the current number of buffered samples.
func (b *SlidingBuffer) Count() int {
	return b.count
}

// SamplingRate returns the configured sampling rate in Hz.
func (b *SlidingBuffer) SamplingRate() float64 {
	return b.samplingRate
}

// Clear empties the buffer and resets the lifetime counters, keeping the
// configuration.
func (b *SlidingBuffer) Clear() {
	b.head = 0
	b.count = 0
	b.totalSamples = 0
	b.packetsProcessed = 0
}

// Reconfigure clears all samples and recomputes capacity for the new
// sampling rate and window duration.
func (b *SlidingBuffer) Reconfigure(samplingRateHz, windowDurationSec float64) error {
	fresh, err := New(samplingRateHz, windowDurationSec)
	if err != nil {
		return err
	}
	*b = *fresh
	return nil
}

// Clone returns an independent empty buffer with the same configuration.
func (b *SlidingBuffer) Clone() *SlidingBuffer {
	clone, _ := New(b.samplingRate, b.windowDuration)
	return clone
}
