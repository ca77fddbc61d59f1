// Package cqi implements the constant SNR-to-MCS lookup table used to pick
// the highest modulation and coding scheme a link can sustain.
//
// Grounded on lib/include/dectnrp/phy/rx/rx_synced/cqi/cqi_lut.hpp and
// lib/src/phy/rx/rx_synced/cqi/cqi_lut.cpp.
package cqi

import (
	"errors"
	"fmt"
)

// MaxMCS is the highest MCS index this table covers.
const MaxMCS = 11

// requiredSNRdB[m] is the minimum SNR (dB) required to sustain MCS m.
var requiredSNRdB = [MaxMCS + 1]float64{
	-1, 1, 4, 7, 11, 14, 15, 17.5, 21, 24, 27, 30,
}

// ErrInvalidRange is returned by New when min/max fall outside [0, MaxMCS]
// or min > max.
var ErrInvalidRange = errors.New("cqi: invalid mcs range")

// LUT clamps MCS selection to a configured [min, max] range and applies a
// fixed SNR offset before lookup.
type LUT struct {
	min, max int
	snrOffsetDB float64
}

// New constructs a LUT restricted to MCS indices [min, max], applying
// snrOffsetDB (subtracted from every SNR measurement before lookup, e.g. to
// account for a required implementation margin).
func New(min, max int, snrOffsetDB float64) (*LUT, error) {
	if min < 0 || max > MaxMCS || min > max {
		return nil, fmt.Errorf("%w: min=%d max=%d", ErrInvalidRange, min, max)
	}
	return &LUT{min: min, max: max, snrOffsetDB: snrOffsetDB}, nil
}

// GetHighestMCSPossible returns the highest MCS index m in [min, max] such
// that requiredSNRdB[m] <= snr - snrOffsetDB, or -1 if none qualifies.
func (l *LUT) GetHighestMCSPossible(snrDB float64) int {
	effective := snrDB - l.snrOffsetDB
	for m := l.max; m >= l.min; m-- {
		if requiredSNRdB[m] <= effective {
			return m
		}
	}
	return -1
}

// ClampMCS clamps m into [min, max].
func (l *LUT) ClampMCS(m int) int {
	if m < l.min {
		return l.min
	}
	if m > l.max {
		return l.max
	}
	return m
}

// Min and Max return the configured MCS range.
func (l *LUT) Min() int { return l.min }
func (l *LUT) Max() int { return l.max }
