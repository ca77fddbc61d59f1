// Package ppx extrapolates the next pulse-per-X GPIO trigger edge from a
// warped periodic estimate, and reconciles that estimate against beacon
// arrival times observed on a (possibly different) raster.
//
// Grounded on lib/include/dectnrp/mac/ppx/ppx.hpp and
// lib/src/mac/ppx/ppx.cpp.
package ppx

import (
	"errors"
	"fmt"

	"github.com/maxpenner/dectnrp-core/dectime"
	"github.com/maxpenner/dectnrp-core/radio"
)

// ErrIllDefined is returned by New when the supplied durations violate the
// PPX/beacon-raster ordering the algorithm depends on.
var ErrIllDefined = errors.New("ppx: ill-defined parameters")

// ErrSyncLost is returned by ProvideBeaconTime when an observed beacon
// arrives further from the extrapolated raster than TimeDeviationMax
// allows.
var ErrSyncLost = errors.New("ppx: synchronization lost")

// ErrNotInitialized is returned when a rising edge is queried or
// reconciled before SetPPXRisingEdge has been called.
var ErrNotInitialized = errors.New("ppx: rising edge not initialized")

// PPX tracks a periodic hardware trigger (e.g. a 1PPS-style GPIO pulse)
// whose true period may drift from its nominal value, and keeps its
// estimate locked to an independently observed beacon raster.
type PPX struct {
	period           int64 // nominal ppx period, samples
	length           int64 // pulse width, samples
	timeAdvance      int64 // how far ahead of the edge to arm the GPIO, samples
	beaconPeriod     int64 // samples; period divides evenly
	timeDeviationMax int64 // samples

	periodWarped       int64 // current best estimate of the true period
	risingEdgeEstimate int64 // dectime.UndefinedEarly until initialized
}

// New constructs a PPX tracker. ppxLength and timeAdvance and beaconPeriod
// must each be strictly shorter than ppxPeriod, and ppxPeriod must be an
// exact multiple of beaconPeriod.
func New(ppxPeriod, ppxLength, timeAdvance, beaconPeriod, timeDeviationMax dectime.Duration) (*PPX, error) {
	if ppxLength.Samples >= ppxPeriod.Samples ||
		timeAdvance.Samples >= ppxPeriod.Samples ||
		beaconPeriod.Samples >= ppxPeriod.Samples {
		return nil, fmt.Errorf("%w: ppx_period must exceed length/time_advance/beacon_period", ErrIllDefined)
	}
	if beaconPeriod.Samples <= 0 || ppxPeriod.Samples%beaconPeriod.Samples != 0 {
		return nil, fmt.Errorf("%w: ppx_period must be a multiple of beacon_period", ErrIllDefined)
	}

	return &PPX{
		period:             ppxPeriod.Samples,
		length:             ppxLength.Samples,
		timeAdvance:        timeAdvance.Samples,
		beaconPeriod:       beaconPeriod.Samples,
		timeDeviationMax:   timeDeviationMax.Samples,
		periodWarped:       ppxPeriod.Samples,
		risingEdgeEstimate: dectime.UndefinedEarly,
	}, nil
}

// HasRisingEdge reports whether a rising edge estimate has been seeded.
func (p *PPX) HasRisingEdge() bool {
	return p.risingEdgeEstimate >= 0
}

// SetPPXRisingEdge seeds the very first rising edge estimate. It must be
// called exactly once, before any other method besides the accessors.
func (p *PPX) SetPPXRisingEdge(risingEdge int64) error {
	if p.HasRisingEdge() {
		return fmt.Errorf("%w: rising edge already initialized", ErrIllDefined)
	}
	if risingEdge <= 0 {
		return fmt.Errorf("%w: rising edge time must be positive", ErrIllDefined)
	}
	p.risingEdgeEstimate = risingEdge
	return nil
}

// ExtrapolateNextRisingEdge advances the estimate by one (warped) period.
func (p *PPX) ExtrapolateNextRisingEdge() {
	p.risingEdgeEstimate += p.periodWarped
}

// ProvideBeaconTime reconciles the extrapolated estimate against a beacon
// observed on the tracker's own beacon raster.
func (p *PPX) ProvideBeaconTime(beaconTime int64) error {
	return p.ProvideBeaconTimeOutOfRaster(beaconTime, p.beaconPeriod)
}

// ProvideBeaconTimeOutOfRaster reconciles the extrapolated estimate against
// a beacon observed on an independently supplied raster (used when a
// neighboring cell's beacon period differs from this tracker's own).
func (p *PPX) ProvideBeaconTimeOutOfRaster(beaconTime, beaconPeriodCustom int64) error {
	if !p.HasRisingEdge() {
		return ErrNotInitialized
	}

	deviation, err := determineOffset(p.risingEdgeEstimate, beaconPeriodCustom, beaconTime)
	if err != nil {
		return err
	}
	if abs64(deviation) > p.timeDeviationMax {
		return fmt.Errorf("%w: deviation=%d max=%d", ErrSyncLost, deviation, p.timeDeviationMax)
	}

	p.risingEdgeEstimate += deviation
	return nil
}

// GetPPXImminent returns the pulse configuration for the NEXT rising edge
// (one warped period beyond the current estimate) and its falling edge.
func (p *PPX) GetPPXImminent() (radio.PulseConfig, error) {
	if !p.HasRisingEdge() {
		return radio.PulseConfig{}, ErrNotInitialized
	}
	a := p.risingEdgeEstimate + p.periodWarped
	return radio.NewPulseConfig(a, a+p.length), nil
}

// PeriodSamples, LengthSamples and TimeAdvanceSamples expose the tracker's
// fixed (unwarped) configuration.
func (p *PPX) PeriodSamples() int64      { return p.period }
func (p *PPX) LengthSamples() int64      { return p.length }
func (p *PPX) TimeAdvanceSamples() int64 { return p.timeAdvance }

// PeriodWarped returns the tracker's current estimate of the true period.
func (p *PPX) PeriodWarped() int64 {
	return p.periodWarped
}

// SetPeriodWarped overwrites the warped period estimate, typically with a
// value derived from a pll.PLL tracking the same raster.
func (p *PPX) SetPeriodWarped(periodWarped int64) {
	p.periodWarped = periodWarped
}

// determineOffset returns how far timeToTest deviates from the closest
// instance of the raster rooted at ref; raster must be even (it is always a
// sample count derived from a symmetric duration in this system).
func determineOffset(ref, raster, timeToTest int64) (int64, error) {
	if raster%2 != 0 {
		return 0, fmt.Errorf("%w: raster must be even, got %d", ErrIllDefined, raster)
	}
	a := timeToTest - ref
	b := roundDiv(a, raster)
	c := ref + b*raster
	return timeToTest - c, nil
}

func roundDiv(a, b int64) int64 {
	if b == 0 {
		return 0
	}
	if (a < 0) != (b < 0) {
		return -((-a + b/2) / b)
	}
	return (a + b/2) / b
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
