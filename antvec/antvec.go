// Package antvec implements a fixed-capacity vector of per-antenna float
// values with sum/max/min/index queries, used throughout the AGC and MIMO
// engines to carry one measurement per antenna without allocating.
//
// Grounded on lib/include/dectnrp/common/ant.hpp (class ant_t).
package antvec

import (
	"fmt"
	"strings"
)

// MaxAntennas is the largest antenna count any single vector can hold.
const MaxAntennas = 8

// Vec is a fixed-capacity array of antenna values; only the first N
// entries (set at construction) participate in any query.
type Vec struct {
	n   int
	ary [MaxAntennas]float64
}

// New returns a Vec sized for n antennas (0 <= n <= MaxAntennas), all zero.
func New(n int) Vec {
	if n < 0 || n > MaxAntennas {
		panic(fmt.Sprintf("antvec: nof_antennas %d out of range [0,%d]", n, MaxAntennas))
	}
	return Vec{n: n}
}

// NofAntennas returns the number of antennas this vector was sized for.
func (v *Vec) NofAntennas() int {
	return v.n
}

// At returns the value at idx.
func (v *Vec) At(idx int) float64 {
	return v.ary[idx]
}

// Set stores val at idx.
func (v *Vec) Set(idx int, val float64) {
	v.ary[idx] = val
}

// Fill sets every used entry to val.
func (v *Vec) Fill(val float64) {
	for i := 0; i < v.n; i++ {
		v.ary[i] = val
	}
}

func (v *Vec) requireNonEmpty() {
	if v.n < 1 {
		panic("antvec: query on vector with N < 1")
	}
}

// Sum returns the sum of the first N entries.
func (v *Vec) Sum() float64 {
	v.requireNonEmpty()
	var s float64
	for i := 0; i < v.n; i++ {
		s += v.ary[i]
	}
	return s
}

// Max returns the largest value among the first N entries.
func (v *Vec) Max() float64 {
	return v.ary[v.IndexOfMax()]
}

// IndexOfMax returns the index of the largest value among the first N
// entries, the lowest such index in case of ties.
func (v *Vec) IndexOfMax() int {
	v.requireNonEmpty()
	best := 0
	for i := 1; i < v.n; i++ {
		if v.ary[i] > v.ary[best] {
			best = i
		}
	}
	return best
}

// Min returns the smallest value among the first N entries.
func (v *Vec) Min() float64 {
	return v.ary[v.IndexOfMin()]
}

// IndexOfMin returns the index of the smallest value among the first N
// entries, the lowest such index in case of ties.
func (v *Vec) IndexOfMin() int {
	v.requireNonEmpty()
	best := 0
	for i := 1; i < v.n; i++ {
		if v.ary[i] < v.ary[best] {
			best = i
		}
	}
	return best
}

// HasAnyLarger reports whether any used entry exceeds threshold.
func (v *Vec) HasAnyLarger(threshold float64) bool {
	return v.CountLarger(threshold) > 0
}

// CountLarger returns the number of used entries strictly above threshold.
func (v *Vec) CountLarger(threshold float64) int {
	n := 0
	for i := 0; i < v.n; i++ {
		if v.ary[i] > threshold {
			n++
		}
	}
	return n
}

// String renders a short diagnostic list, e.g. "[0]=1.20 [1]=0.95".
func (v *Vec) String() string {
	var sb strings.Builder
	for i := 0; i < v.n; i++ {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "[%d]=%.2f", i, v.ary[i])
	}
	return sb.String()
}
