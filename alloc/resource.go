// Package alloc implements the non-overlapping UL/DL resource allocation
// within a beacon period and the transmit-opportunity search across it.
//
// Grounded on lib/include/dectnrp/mac/allocation/{resource,allocation,
// allocation_pt}.hpp and lib/src/mac/allocation/allocation_pt.cpp.
package alloc

import (
	"errors"
	"fmt"

	"github.com/maxpenner/dectnrp-core/dectime"
)

// Direction distinguishes uplink from downlink resources.
type Direction int

const (
	DirectionUL Direction = iota
	DirectionDL
)

// MaxResourcesPerDirection bounds the per-direction resource capacity.
const MaxResourcesPerDirection = 8

// ErrResourceOverflow is returned when a direction already holds
// MaxResourcesPerDirection resources.
var ErrResourceOverflow = errors.New("alloc: resource capacity exceeded")

// ErrResourceNotOrthogonal is returned when a new resource overlaps an
// existing one in the same direction, or falls outside the beacon period.
var ErrResourceNotOrthogonal = errors.New("alloc: resource not orthogonal or out of beacon period")

// Resource is a single (offset, length) sub-interval of a beacon period.
type Resource struct {
	Offset int64 // sample offset from the start of the beacon period
	Length int64 // length in samples, >= 1
}

// FirstSampleIndex returns the first sample index covered by r.
func (r Resource) FirstSampleIndex() int64 {
	return r.Offset
}

// LastSampleIndex returns the last sample index covered by r (inclusive).
func (r Resource) LastSampleIndex() int64 {
	return r.Offset + r.Length - 1
}

// IsPositiveLength reports whether the resource covers at least one sample.
func (r Resource) IsPositiveLength() bool {
	return r.Length >= 1
}

// IsWithinBeaconPeriod reports whether r fits entirely inside one beacon
// period of the given length in samples.
func (r Resource) IsWithinBeaconPeriod(beaconPeriodSamples int64) bool {
	return r.Offset >= 0 && r.LastSampleIndex() < beaconPeriodSamples
}

// Orthogonal reports whether r and other occupy disjoint sample ranges.
func (r Resource) Orthogonal(other Resource) bool {
	return r.LastSampleIndex() < other.FirstSampleIndex() ||
		other.LastSampleIndex() < r.FirstSampleIndex()
}

// IsLeq reports whether r starts at or before other (used to keep resource
// vectors ordered for diagnostics).
func (r Resource) IsLeq(other Resource) bool {
	return r.Offset <= other.Offset
}

// IsSeq reports whether r starts at or after other.
func (r Resource) IsSeq(other Resource) bool {
	return r.Offset >= other.Offset
}

func orthogonalToAll(vec []Resource, r Resource) bool {
	for _, existing := range vec {
		if !existing.Orthogonal(r) {
			return false
		}
	}
	return true
}

// Opportunity is a (time, length) pair at which a transmitter is permitted
// to send, as returned by Allocation.TxOpportunity.
type Opportunity struct {
	Time   int64
	Length int64
	Found  bool
}

// Allocation holds the UL/DL resource vectors for a single beacon period
// and the timing parameters needed to search for TX opportunities.
//
// Grounded on allocation_pt_t; the FT variant (allocation_ft_t in the
// original) is a strict subset that this type also serves, since the FT
// never needs AfterBeacon/AfterNow/Turnaround validity windows beyond what
// the PT algorithm already computes.
type Allocation struct {
	beaconPeriod int64 // samples

	afterBeacon int64 // validity window after a beacon, samples
	afterNow    int64 // validity window after now, samples
	turnaround  int64 // minimum guard before a TX opportunity, samples

	beaconLastKnown int64 // sample time of the last known beacon

	ul []Resource
	dl []Resource
}

// New constructs an empty Allocation for one beacon period.
func New(lut *dectime.LUT, beaconPeriod dectime.Duration, afterBeacon, afterNow dectime.Duration, turnaroundSamples int64) *Allocation {
	return &Allocation{
		beaconPeriod:    beaconPeriod.Samples,
		afterBeacon:     afterBeacon.Samples,
		afterNow:        afterNow.Samples,
		turnaround:      turnaroundSamples,
		beaconLastKnown: dectime.UndefinedEarly,
	}
}

// BeaconPeriod returns the beacon period in samples.
func (a *Allocation) BeaconPeriod() int64 {
	return a.beaconPeriod
}

// SetBeaconTimeLastKnown records the sample time of the most recently
// observed beacon.
func (a *Allocation) SetBeaconTimeLastKnown(t int64) {
	a.beaconLastKnown = t
}

// BeaconTimeLastKnown returns the last recorded beacon time.
func (a *Allocation) BeaconTimeLastKnown() int64 {
	return a.beaconLastKnown
}

func (a *Allocation) vecFor(dir Direction) []Resource {
	if dir == DirectionUL {
		return a.ul
	}
	return a.dl
}

// AddResource inserts r into the given direction's resource vector.
// Fails with ErrResourceOverflow past MaxResourcesPerDirection entries, and
// with ErrResourceNotOrthogonal if r is ill-formed, out of the beacon
// period, or overlaps an existing resource in the same direction.
func (a *Allocation) AddResource(dir Direction, r Resource) error {
	if !r.IsPositiveLength() || !r.IsWithinBeaconPeriod(a.beaconPeriod) {
		return fmt.Errorf("%w: offset=%d length=%d beacon_period=%d", ErrResourceNotOrthogonal, r.Offset, r.Length, a.beaconPeriod)
	}

	vec := a.vecFor(dir)
	if len(vec) >= MaxResourcesPerDirection {
		return fmt.Errorf("%w: direction=%d", ErrResourceOverflow, dir)
	}

	if !orthogonalToAll(vec, r) {
		return fmt.Errorf("%w: offset=%d length=%d", ErrResourceNotOrthogonal, r.Offset, r.Length)
	}

	if dir == DirectionUL {
		a.ul = append(a.ul, r)
	} else {
		a.dl = append(a.dl, r)
	}
	return nil
}

// TxOpportunity implements the following search:
//
//  1. lo = max(now + turnaround, txEarliest)
//  2. UL: hi = min(beaconLastKnown + afterBeacon, now + afterNow)
//     DL: hi = beaconLastKnown + beaconPeriod
//  3. no resources or lo > hi => not found
//  4. advance the beacon anchor A to the largest
//     beaconLastKnown + k*beaconPeriod <= lo
//  5. scan resources in insertion order, wrapping the anchor forward by one
//     beacon period after the last resource, until a resource's instance
//     falls in [lo, hi) or the instance reaches hi.
func (a *Allocation) TxOpportunity(dir Direction, now, txEarliest int64) Opportunity {
	lo := now + a.turnaround
	if txEarliest > lo {
		lo = txEarliest
	}

	var hi int64
	if dir == DirectionUL {
		hi = a.beaconLastKnown + a.afterBeacon
		if alt := now + a.afterNow; alt < hi {
			hi = alt
		}
	} else {
		hi = a.beaconLastKnown + a.beaconPeriod
	}

	vec := a.vecFor(dir)
	if len(vec) == 0 || lo > hi {
		return Opportunity{}
	}

	anchor := a.beaconLastKnown
	if lo > anchor {
		k := (lo - anchor) / a.beaconPeriod
		anchor += k * a.beaconPeriod
	}

	idx := 0
	for {
		r := vec[idx]
		d := anchor + r.Offset
		if d >= lo && d < hi {
			return Opportunity{Time: d, Length: r.Length, Found: true}
		}
		if d >= hi {
			return Opportunity{}
		}
		idx++
		if idx >= len(vec) {
			idx = 0
			anchor += a.beaconPeriod
		}
	}
}

// ClosestULOpportunity returns the earliest UL resource instance at or
// after reference, ignoring the afterBeacon/afterNow/turnaround validity
// windows — used by a PT to locate the next feedback slot right after
// receiving a downlink, per the original's
// get_tx_opportunity_ul_time_closest.
func (a *Allocation) ClosestULOpportunity(reference int64) (int64, bool) {
	if len(a.ul) == 0 {
		return 0, false
	}

	anchor := a.beaconLastKnown
	if reference > anchor {
		k := (reference - anchor) / a.beaconPeriod
		anchor += k * a.beaconPeriod
	}

	best := dectime.UndefinedLate
	found := false
	for pass := 0; pass < 2; pass++ {
		for _, r := range a.ul {
			d := anchor + r.Offset
			if d >= reference && d < best {
				best = d
				found = true
			}
		}
		if found {
			break
		}
		anchor += a.beaconPeriod
	}
	return best, found
}
