// Package ema implements a scalar exponential moving average, used by the
// PLL to smooth the beacon-to-beacon drift factor estimate.
//
// Grounded on lib/include/dectnrp/common/adt/ema.hpp (ema_t<T, F>).
package ema

import "fmt"

// EMA holds a running value and its smoothing factor alpha.
type EMA struct {
	val   float64
	alpha float64
}

// New returns an EMA seeded at val with smoothing factor alpha in [0, 1].
// Larger alpha weighs the existing value more heavily (slower to react).
func New(val, alpha float64) EMA {
	if alpha < 0.0 || alpha > 1.0 {
		panic(fmt.Sprintf("ema: alpha %f out of range [0,1]", alpha))
	}
	return EMA{val: val, alpha: alpha}
}

// Update folds in a new sample: v <- alpha*v + (1-alpha)*x, and returns the
// new value.
func (e *EMA) Update(x float64) float64 {
	e.val = e.alpha*e.val + (1.0-e.alpha)*x
	return e.val
}

// Val returns the current value.
func (e *EMA) Val() float64 {
	return e.val
}

// SetVal overwrites the current value without touching alpha.
func (e *EMA) SetVal(val float64) {
	e.val = val
}
