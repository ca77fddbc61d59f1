package pll_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxpenner/dectnrp-core/dectime"
	"github.com/maxpenner/dectnrp-core/pll"
)

func newTestLUT(t *testing.T) *dectime.LUT {
	t.Helper()
	lut, err := dectime.NewLUT(960_000)
	require.NoError(t, err)
	return lut
}

func TestProvideBeaconTime_DropsTooCloseSamples(t *testing.T) {
	lut := newTestLUT(t)
	period := lut.Duration(dectime.UnitMillisecond, 10)
	p := pll.New(lut, period)

	p.ProvideBeaconTime(0)
	p.ProvideBeaconTime(100) // far below distMinAccept (1s worth of samples)

	assert.Equal(t, int64(0), p.BeaconTimeLastKnown())
}

func TestWarpFactor_StartsUnwarped(t *testing.T) {
	lut := newTestLUT(t)
	period := lut.Duration(dectime.UnitMillisecond, 10)
	p := pll.New(lut, period)

	assert.InDelta(t, 0.0, p.WarpFactorPPM(), 1e-9)
	assert.Equal(t, int64(1000), pll.Warped(p, 1000))
}

// A beacon period on the order of dist_min_accept (one second) is required
// for consecutive beacons to ever clear the accept threshold; shorter
// periods require the caller to feed every Nth beacon instead.
func TestProvideBeaconTime_ConvergesOnKnownWarp(t *testing.T) {
	lut := newTestLUT(t)
	period := lut.Duration(dectime.UnitSecond, 1) // 960,000 samples
	p := pll.New(lut, period)

	const trueWarp = 1.00005 // 50 ppm fast
	beaconTime := int64(0)
	step := int64(float64(period.Samples) * trueWarp)

	for i := 0; i < 40; i++ {
		p.ProvideBeaconTime(beaconTime)
		beaconTime += step
	}

	assert.InDelta(t, 50.0, p.WarpFactorPPM(), 5.0)
}

func TestReset_RestoresUnwarpedState(t *testing.T) {
	lut := newTestLUT(t)
	period := lut.Duration(dectime.UnitSecond, 1)
	p := pll.New(lut, period)

	beaconTime := int64(0)
	for i := 0; i < 40; i++ {
		p.ProvideBeaconTime(beaconTime)
		beaconTime += period.Samples + period.Samples/1000
	}
	require.NotEqual(t, 0.0, p.WarpFactorPPM())

	p.Reset()

	assert.Equal(t, dectime.UndefinedEarly, p.BeaconTimeLastKnown())
	assert.InDelta(t, 0.0, p.WarpFactorPPM(), 1e-9)
}
