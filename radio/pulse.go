// Package radio declares the external hardware/synchronization contracts a
// termination point is driven through: the pulse-per-X (PPX) GPIO trigger
// window and the sample source/sink the worker pool reads and writes. This
// package holds only the boundary types; the actual radio front end lives
// outside this module and satisfies these contracts.
//
// Grounded on lib/include/dectnrp/radio/pulse_config.hpp.
package radio

import "github.com/maxpenner/dectnrp-core/dectime"

// PulseConfig names the rising/falling edge of a single PPX GPIO pulse in
// the local sample time base.
type PulseConfig struct {
	RisingEdge  int64
	FallingEdge int64
}

// NewPulseConfig builds a PulseConfig spanning [risingEdge, fallingEdge).
func NewPulseConfig(risingEdge, fallingEdge int64) PulseConfig {
	return PulseConfig{RisingEdge: risingEdge, FallingEdge: fallingEdge}
}

// IsDefined reports whether the pulse has a valid rising edge.
func (p PulseConfig) IsDefined() bool {
	return p.RisingEdge > dectime.UndefinedEarly
}
