package buffer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowstate-bci/eegstream/eeg"
	"github.com/flowstate-bci/eegstream/eeg/buffer"
)

func TestNewComputesCapacity(t *testing.T) {
	b, err := buffer.New(250, 4)
	require.NoError(t, err)
	assert.Equal(t, 1000, b.Capacity())
	assert.Equal(t, 0, b.Count())
	assert.False(t, b.IsFull())

	_, err = buffer.New(0, 4)
	require.Error(t, err)
	_, err = buffer.New(250, -1)
	require.Error(t, err)
}

func TestRingInvariant(t *testing.T) {
	b, err := buffer.New(5, 1)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		b.AddSample(float64(i), int64(1000+i))
	}

	snap := b.Samples()
	assert.Equal(t, []float64{5, 6, 7, 8, 9}, snap.Samples)
	assert.Equal(t, 5, snap.SampleCount)
	assert.True(t, snap.IsFull)
	assert.Equal(t, int64(1005), snap.StartTimestamp)
	assert.Equal(t, int64(1009), snap.EndTimestamp)
}

func TestChronologicalOrderAcrossWrap(t *testing.T) {
	b, err := buffer.New(7, 1)
	require.NoError(t, err)

	// Wrap the ring several times; output must stay insertion ordered.
	for i := 0; i < 23; i++ {
		b.AddSample(float64(i), int64(i))
	}
	snap := b.Samples()
	for i := 1; i < len(snap.Samples); i++ {
		assert.Greater(t, snap.Samples[i], snap.Samples[i-1])
	}
	assert.Equal(t, []float64{16, 17, 18, 19, 20, 21, 22}, snap.Samples)
}

func TestWindowReturnsSuffix(t *testing.T) {
	b, err := buffer.New(10, 2)
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		b.AddSample(float64(i), int64(i*100))
	}

	w := b.Window(0.5) // 5 samples at 10 Hz
	assert.Equal(t, []float64{15, 16, 17, 18, 19}, w.Samples)
	assert.True(t, w.IsFull, "fully satisfied request")

	// Requesting more than available returns everything, flagged short.
	all := b.Window(100)
	assert.Equal(t, 20, all.SampleCount)
	assert.False(t, all.IsFull)
}

func TestWindowShortRequestFlag(t *testing.T) {
	b, err := buffer.New(10, 2)
	require.NoError(t, err)
	for i := 0; i < 8; i++ {
		b.AddSample(float64(i), int64(i*100))
	}

	// 0.8 s of 2 s held: a 1 s request cannot be satisfied.
	short := b.Window(1)
	assert.Equal(t, 8, short.SampleCount)
	assert.False(t, short.IsFull)

	exact := b.Window(0.8)
	assert.Equal(t, 8, exact.SampleCount)
	assert.True(t, exact.IsFull)

	empty := b.Window(0)
	assert.Equal(t, 0, empty.SampleCount)
	assert.False(t, empty.IsFull)
}

func TestEmptyBuffer(t *testing.T) {
	b, err := buffer.New(10, 1)
	require.NoError(t, err)

	snap := b.Samples()
	assert.Empty(t, snap.Samples)
	assert.Equal(t, 0, snap.SampleCount)
	assert.False(t, snap.IsFull)

	_, ok := b.LatestSample()
	assert.False(t, ok)
	_, ok = b.LatestTimestamp()
	assert.False(t, ok)
	assert.Empty(t, b.RecentSamples(5))
}

func TestPackets(t *testing.T) {
	b, err := buffer.New(100, 1)
	require.NoError(t, err)

	b.AddPackets([]eeg.Packet{
		{Timestamp: 1000, Samples: []float64{1, 2, 3}, SequenceNumber: 1},
		{Timestamp: 1012, Samples: []float64{4, 5}, SequenceNumber: 2},
		{Timestamp: 1020, Samples: nil, SequenceNumber: 3}, // zero-sample no-op
	})

	st := b.Stats()
	assert.Equal(t, uint64(3), st.PacketsProcessed)
	assert.Equal(t, uint64(5), st.TotalSamplesProcessed)
	assert.Equal(t, 5, st.CurrentSamples)
	assert.Equal(t, int64(1000), st.OldestTimestamp)
	assert.Equal(t, int64(1012), st.LatestTimestamp)

	v, ok := b.LatestSample()
	require.True(t, ok)
	assert.Equal(t, 5.0, v)
}

func TestLifetimeCounterSurvivesEviction(t *testing.T) {
	b, err := buffer.New(4, 1)
	require.NoError(t, err)
	for i := 0; i < 100; i++ {
		b.AddSample(1, int64(i))
	}
	st := b.Stats()
	assert.Equal(t, uint64(100), st.TotalSamplesProcessed)
	assert.Equal(t, 4, st.CurrentSamples)
	assert.Equal(t, 100.0, st.FillPercentage)
}

func TestCapacityOneRing(t *testing.T) {
	b, err := buffer.New(1, 1)
	require.NoError(t, err)
	b.AddSample(1, 10)
	b.AddSample(2, 20)
	snap := b.Samples()
	assert.Equal(t, []float64{2}, snap.Samples)
	assert.True(t, snap.IsFull)
}

func TestHasEnoughSamples(t *testing.T) {
	b, err := buffer.New(10, 1)
	require.NoError(t, err)
	for i := 0; i < 6; i++ {
		b.AddSample(0, int64(i))
	}
	assert.True(t, b.HasEnoughSamples(5))
	assert.False(t, b.HasEnoughSamples(7))
	// Default minimum is a full buffer.
	assert.False(t, b.HasEnoughSamples(0))
}

func TestClearAndReconfigure(t *testing.T) {
	b, err := buffer.New(10, 1)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		b.AddSample(float64(i), int64(i))
	}

	b.Clear()
	assert.Equal(t, 0, b.Count())
	assert.Equal(t, uint64(0), b.Stats().TotalSamplesProcessed)
	assert.Equal(t, 10, b.Capacity())

	require.NoError(t, b.Reconfigure(500, 2))
	assert.Equal(t, 1000, b.Capacity())
	assert.Equal(t, 0, b.Count())
	require.Error(t, b.Reconfigure(-1, 2))
}

func TestCloneIsEmptyAndIndependent(t *testing.T) {
	b, err := buffer.New(10, 1)
	require.NoError(t, err)
	b.AddSample(42, 1)

	c := b.Clone()
	assert.Equal(t, b.Capacity(), c.Capacity())
	assert.Equal(t, 0, c.Count())

	c.AddSample(7, 2)
	assert.Equal(t, 1, b.Count())
	v, _ := b.LatestSample()
	assert.Equal(t, 42.0, v)
}

func TestFarFutureTimestamps(t *testing.T) {
	b, err := buffer.New(2, 1)
	require.NoError(t, err)
	huge := int64(1) << 60
	b.AddSample(1, huge)
	b.AddSample(2, huge+500)
	snap := b.Samples()
	assert.Equal(t, 0.5, snap.Duration)
}
