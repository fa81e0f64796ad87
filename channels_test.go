package main

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowstate-bci/eegstream/eeg"
)

func newTestManager(t *testing.T) *ChannelManager {
	t.Helper()
	cfg := &Config{}
	cfg.applyDefaults()
	cfg.Stream.SamplingRateHz = 100
	cfg.Stream.WindowDurationSec = 2
	cfg.Welch.WindowSeconds = 1
	cfg.Filter.Disabled = true
	require.NoError(t, cfg.Validate())

	cm, err := NewChannelManager(cfg)
	require.NoError(t, err)
	return cm
}

func fillChannel(ch *Channel, seconds float64, rate float64) {
	n := int(seconds * rate)
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = 10 * math.Sin(2*math.Pi*6*float64(i)/rate)
	}
	ch.Ingest(eeg.Packet{Timestamp: 1000, Samples: samples, SequenceNumber: 1})
}

func TestRemoveChannelDuringAnalysisFanOut(t *testing.T) {
	cm := newTestManager(t)

	for i := 0; i < 25; i++ {
		ch, err := cm.CreateChannel("fanout")
		require.NoError(t, err)
		fillChannel(ch, 2, 100)

		sub := ch.Subscribe()

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				ch.analyze(cm)
			}
		}()
		go func() {
			defer wg.Done()
			cm.RemoveChannel(ch.ID)
		}()
		wg.Wait()

		// The subscriber channel must end up closed, with every delivered
		// update preceding the close.
		for range sub {
		}
		_, ok := cm.GetChannel(ch.ID)
		assert.False(t, ok)
	}
}

func TestSubscribeAfterRemovalIsInert(t *testing.T) {
	cm := newTestManager(t)

	ch, err := cm.CreateChannel("late")
	require.NoError(t, err)
	fillChannel(ch, 2, 100)
	require.True(t, cm.RemoveChannel(ch.ID))

	sub := ch.Subscribe()
	ch.analyze(cm)

	select {
	case m, open := <-sub:
		require.True(t, open, "unexpected close")
		t.Fatalf("unexpected metrics delivery after removal: %+v", m)
	default:
	}
	ch.Unsubscribe(sub)
}
