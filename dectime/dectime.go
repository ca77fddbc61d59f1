// Package dectime converts abstract DECT NR+ time units (slots, subslots,
// milliseconds, seconds) into sample counts at the runtime radio sample
// rate, and back to nanoseconds for logging.
//
// Grounded on lib/include/dectnrp/sections_part3/derivative/duration_lut.hpp
// and duration.hpp in the original C++ implementation; restructured to
// build a fixed lookup table once at startup instead of recomputing
// divisions on every call.
package dectime

import (
	"errors"
	"fmt"
)

// Unit is the tag carried by a Duration.
type Unit int

const (
	UnitMillisecond Unit = iota
	UnitSecond
	UnitSlot
	UnitSubslot1
	UnitSubslot2
	UnitSubslot4
	UnitSubslot8

	unitCardinality
)

func (u Unit) String() string {
	switch u {
	case UnitMillisecond:
		return "ms"
	case UnitSecond:
		return "s"
	case UnitSlot:
		return "slot"
	case UnitSubslot1:
		return "subslot_1"
	case UnitSubslot2:
		return "subslot_2"
	case UnitSubslot4:
		return "subslot_4"
	case UnitSubslot8:
		return "subslot_8"
	default:
		return "unknown"
	}
}

// divisor returns the value d such that one unit equals R/d samples.
func divisor(u Unit) int64 {
	switch u {
	case UnitMillisecond:
		return 1000
	case UnitSecond:
		return 1
	case UnitSlot:
		return 2400
	case UnitSubslot1:
		return 2400 * 1
	case UnitSubslot2:
		return 2400 * 2
	case UnitSubslot4:
		return 2400 * 4
	case UnitSubslot8:
		return 2400 * 8
	default:
		return 0
	}
}

// ErrUnitNotRepresentable is returned by NewLUT when the sample rate does
// not divide evenly by some unit's divisor.
var ErrUnitNotRepresentable = errors.New("dectime: unit not representable at this sample rate")

// UndefinedEarly is sufficiently negative that it precedes any legal time.
const UndefinedEarly int64 = -1 << 62

// UndefinedLate is the maximum representable time.
const UndefinedLate int64 = 1<<63 - 1

// Duration is a fully resolved time span: a unit tag, a multiplier, and the
// canonical sample count it represents at the LUT's sample rate.
type Duration struct {
	Unit    Unit
	Mult    uint32
	Samples int64
}

// LUT precomputes the sample count of one unit of each Unit at a fixed
// runtime sample rate.
type LUT struct {
	sampleRate int64
	perUnit    [unitCardinality]int64
}

// NewLUT builds the lookup table for sample rate r. Construction fails if r
// is not positive, or if r is not evenly divisible by any unit's divisor.
func NewLUT(r int64) (*LUT, error) {
	if r <= 0 {
		return nil, fmt.Errorf("dectime: sample rate must be positive, got %d", r)
	}

	lut := &LUT{sampleRate: r}

	for u := Unit(0); u < unitCardinality; u++ {
		d := divisor(u)
		if r%d != 0 {
			return nil, fmt.Errorf("%w: rate=%d unit=%s", ErrUnitNotRepresentable, r, u)
		}
		lut.perUnit[u] = r / d
	}

	return lut, nil
}

// SampleRate returns the sample rate the LUT was built for.
func (l *LUT) SampleRate() int64 {
	return l.sampleRate
}

// Duration builds a resolved Duration of mult units of u.
func (l *LUT) Duration(u Unit, mult uint32) Duration {
	return Duration{
		Unit:    u,
		Mult:    mult,
		Samples: l.perUnit[u] * int64(mult),
	}
}

// SamplesAtLastFullSecond rounds t down to the most recent full-second
// boundary.
func (l *LUT) SamplesAtLastFullSecond(t int64) int64 {
	m := t % l.sampleRate
	if m < 0 {
		m += l.sampleRate
	}
	return t - m
}

// SamplesAtNextFullSecond rounds t up to the next full-second boundary. If
// t already sits on a boundary, that same boundary is returned.
func (l *LUT) SamplesAtNextFullSecond(t int64) int64 {
	last := l.SamplesAtLastFullSecond(t)
	if last == t {
		return t
	}
	return last + l.sampleRate
}

// NsFromSamples converts a sample count to nanoseconds, truncating any
// remainder below one nanosecond.
func (l *LUT) NsFromSamples(n int64) int64 {
	whole := (n / l.sampleRate) * 1_000_000_000
	frac := (n % l.sampleRate) * 1_000_000_000 / l.sampleRate
	return whole + frac
}
