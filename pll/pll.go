// Package pll tracks the clock drift between a termination point's local
// sample clock and a remote beacon raster, and lets callers warp durations
// and timestamps to compensate.
//
// Grounded on lib/include/dectnrp/mac/pll/{pll,pll_param}.hpp and
// lib/src/mac/pll/pll.cpp.
package pll

import (
	"math"
	"sync"

	"github.com/maxpenner/dectnrp-core/dectime"
	"github.com/maxpenner/dectnrp-core/ema"
)

// Tuning constants mirroring pll_param.hpp.
const (
	distMinAcceptMs          = 1000
	distMinMs                = 5000
	distMinToMaxBeaconPeriods = 8
	emaAlpha                 = 0.9
	ppmOutOfSync             = 150.0
)

// PLL estimates the warp factor (ratio of remote to local sample-clock rate)
// from a ring of observed beacon arrival times, and exposes it to warp
// durations expressed in the local time base.
type PLL struct {
	mu sync.Mutex

	beaconPeriodSamples int64

	distMinAccept int64 // minimum spacing to accept a new beacon sample
	distMin       int64 // minimum spacing to measure warp
	distMax       int64 // maximum spacing to still trust the measurement

	beaconTimeRing []int64 // ring buffer, UndefinedEarly where unfilled
	idx            int

	warpFactorEMA ema.EMA
}

// New constructs a PLL tracking a beacon raster with the given period,
// using lut's sample rate to convert the fixed millisecond tuning constants
// into sample counts.
func New(lut *dectime.LUT, beaconPeriod dectime.Duration) *PLL {
	sampRate := lut.SampleRate()

	p := &PLL{
		beaconPeriodSamples: beaconPeriod.Samples,
		distMinAccept:       sampRate * distMinAcceptMs / 1000,
		distMin:             sampRate * distMinMs / 1000,
	}
	p.distMax = p.distMin + beaconPeriod.Samples*distMinToMaxBeaconPeriods

	ringLen := int(p.distMin / p.distMinAccept)
	if ringLen < 1 {
		ringLen = 1
	}
	p.beaconTimeRing = make([]int64, ringLen)
	p.warpFactorEMA = ema.New(1.0, emaAlpha)
	p.reset()

	return p
}

func (p *PLL) prevIdx() int {
	if p.idx == 0 {
		return len(p.beaconTimeRing) - 1
	}
	return p.idx - 1
}

func (p *PLL) nextIdx() int {
	if p.idx == len(p.beaconTimeRing)-1 {
		return 0
	}
	return p.idx + 1
}

// BeaconTimeLastKnown returns the most recently accepted beacon time, or
// dectime.UndefinedEarly if none has been accepted yet.
func (p *PLL) BeaconTimeLastKnown() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.beaconTimeRing[p.prevIdx()]
}

// BeaconTimeOldestKnown returns the oldest beacon time still held in the
// ring, or dectime.UndefinedEarly if the ring is not yet full.
func (p *PLL) BeaconTimeOldestKnown() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.beaconTimeRing[p.idx]
}

// ProvideBeaconTime feeds a newly observed beacon arrival time (in the local
// sample time base) into the drift estimator. Beacons closer together than
// distMinAccept are silently dropped as duplicates/jitter; once the ring has
// wrapped at least once, a fresh warp-factor sample is folded into the EMA
// whenever the span to the oldest ring entry is within distMax.
func (p *PLL) ProvideBeaconTime(beaconTime int64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	lastKnown := p.beaconTimeRing[p.prevIdx()]
	if beaconTime-lastKnown < p.distMinAccept {
		return
	}

	p.beaconTimeRing[p.idx] = beaconTime

	if p.beaconTimeRing[p.nextIdx()] < 0 {
		p.idx = p.nextIdx()
		return
	}

	dist := p.beaconTimeRing[p.idx] - p.beaconTimeRing[p.nextIdx()]
	if dist > p.distMax {
		p.idx = p.nextIdx()
		return
	}

	p.idx = p.nextIdx()

	nBeaconPeriods := roundDiv(dist, p.beaconPeriodSamples)
	equivalentDist := nBeaconPeriods * p.beaconPeriodSamples
	warpFactorLatest := float64(dist) / float64(equivalentDist)

	p.warpFactorEMA.Update(warpFactorLatest)
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

// Reset clears the ring and warp-factor estimate back to an unwarped state.
func (p *PLL) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reset()
}

func (p *PLL) reset() {
	for i := range p.beaconTimeRing {
		p.beaconTimeRing[i] = dectime.UndefinedEarly
	}
	p.idx = 0
	p.warpFactorEMA.SetVal(1.0)
}

// Warped scales length by the current warp-factor estimate and rounds to
// the nearest integer.
func Warped(p *PLL, length int64) int64 {
	p.mu.Lock()
	factor := p.warpFactorEMA.Val()
	p.mu.Unlock()
	return int64(math.Round(float64(length) * factor))
}

// WarpFactorPPM converts the current warp-factor estimate into parts per
// million deviation from an ideal (unwarped) clock.
func (p *PLL) WarpFactorPPM() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return (p.warpFactorEMA.Val() - 1.0) * 1.0e6
}

// OutOfSyncPPM is the magnitude beyond which a warp-factor estimate is no
// longer trustworthy and callers should fall back to an unwarped clock.
const OutOfSyncPPM = ppmOutOfSync
