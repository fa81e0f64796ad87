package baseline_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowstate-bci/eegstream/eeg"
	"github.com/flowstate-bci/eegstream/eeg/bandpower"
	"github.com/flowstate-bci/eegstream/eeg/baseline"
)

var profile = eeg.BaselineProfile{
	ThetaMean: 10,
	ThetaStd:  2,
	AlphaMean: 6,
	BetaMean:  3,
}

func TestZScoreRoundTrip(t *testing.T) {
	for _, k := range []float64{-3, -1.5, 0, 0.25, 1, 4} {
		z, err := baseline.ZScore(10+k*2, 10, 2)
		require.NoError(t, err)
		assert.InDelta(t, k, z, 1e-12)
	}
}

func TestZScoreRejectsNonPositiveStd(t *testing.T) {
	_, err := baseline.ZScore(1, 0, 0)
	require.Error(t, err)
	_, err = baseline.ZScore(1, 0, -2)
	require.Error(t, err)
}

func TestNormalizeTheta(t *testing.T) {
	z, err := baseline.NormalizeTheta(14, profile)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, z, 1e-12)

	bad := profile
	bad.ThetaStd = 0
	_, err = baseline.NormalizeTheta(14, bad)
	require.Error(t, err)
}

func TestNormalizeAllBandsUsesThetaStd(t *testing.T) {
	bp := bandpower.BandPowers{Theta: 12, Alpha: 8, Beta: 1}
	n, err := baseline.NormalizeAllBands(bp, profile)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, n.Theta, 1e-12)
	// Alpha and beta are normalized against the theta std; the baseline
	// does not track per-band variance.
	assert.InDelta(t, 1.0, n.Alpha, 1e-12)
	assert.InDelta(t, -1.0, n.Beta, 1e-12)
}

func TestNormalizeArray(t *testing.T) {
	out, err := baseline.NormalizeArray([]float64{8, 10, 12}, profile)
	require.NoError(t, err)
	assert.Equal(t, []float64{-1, 0, 1}, out)

	bad := profile
	bad.ThetaStd = -1
	_, err = baseline.NormalizeArray([]float64{8}, bad)
	require.Error(t, err)
}

func TestWindowZScore(t *testing.T) {
	z, err := baseline.WindowZScore([]float64{8, 10, 12, 14}, profile)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, z, 1e-12) // mean 11

	_, err = baseline.WindowZScore(nil, profile)
	require.Error(t, err)
}

func TestHysteresisBoundaries(t *testing.T) {
	const target, hyst = 1.0, baseline.DefaultHysteresis

	// Upper bound is inclusive for exceeds.
	check := baseline.CheckThreshold(target+hyst, target, hyst)
	assert.True(t, check.ExceedsThreshold)
	assert.False(t, check.WithinHysteresis)

	// Lower bound is inclusive for the dead zone.
	check = baseline.CheckThreshold(target-hyst, target, hyst)
	assert.False(t, check.ExceedsThreshold)
	assert.True(t, check.WithinHysteresis)

	check = baseline.CheckThreshold(target, target, hyst)
	assert.False(t, check.ExceedsThreshold)
	assert.True(t, check.WithinHysteresis)

	check = baseline.CheckThreshold(target-hyst-0.01, target, hyst)
	assert.False(t, check.ExceedsThreshold)
	assert.False(t, check.WithinHysteresis)
}

func TestCategorizeZone(t *testing.T) {
	cases := []struct {
		z    float64
		want baseline.Zone
	}{
		{-2, baseline.ZoneLow},
		{-0.51, baseline.ZoneLow},
		{-0.5, baseline.ZoneBaseline},
		{0, baseline.ZoneBaseline},
		{0.49, baseline.ZoneBaseline},
		{0.5, baseline.ZoneElevated},
		{1.49, baseline.ZoneElevated},
		{1.5, baseline.ZoneHigh},
		{3, baseline.ZoneHigh},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, baseline.CategorizeZone(tc.z), "z=%v", tc.z)
	}
}
