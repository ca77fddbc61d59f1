// Package agc implements the software AGC shared by TX and RX gain loops:
// quantization of an arbitrary gain step to a configured multiple, a
// dead-band around zero, and clamping to a configured range.
//
// Grounded on lib/include/dectnrp/phy/agc/agc.hpp and
// lib/src/phy/agc/agc.cpp.
package agc

import (
	"errors"
	"fmt"
	"math"

	"github.com/maxpenner/dectnrp-core/antvec"
)

// OFDM amplitude reduction factors in linear scale, mirroring agc_t's
// named constants.
const (
	OFDMAmplitudeFactorMinus00dB = 1.0
	OFDMAmplitudeFactorMinus03dB = 0.707945784
	OFDMAmplitudeFactorMinus06dB = 0.501187233
	OFDMAmplitudeFactorMinus10dB = 0.316227766
	OFDMAmplitudeFactorMinus15dB = 0.177827941
	OFDMAmplitudeFactorMinus20dB = 0.1
)

// ErrInvalidConfig is returned by New{RX,TX} when Config violates one of
// its own invariants.
var ErrInvalidConfig = errors.New("agc: invalid configuration")

// Config holds the gain-step parameters shared by TX and RX AGC instances.
type Config struct {
	NofAntennas        int
	GainStepMultipleDB float64 // in [0.5, 5]
	GainStepMinDB      float64 // positive multiple of GainStepMultipleDB
	GainStepMaxDB      float64 // positive multiple of GainStepMultipleDB, >= GainStepMinDB
}

func (c Config) validate() error {
	if c.NofAntennas < 1 || c.NofAntennas > antvec.MaxAntennas {
		return fmt.Errorf("%w: nof_antennas=%d", ErrInvalidConfig, c.NofAntennas)
	}
	if c.GainStepMultipleDB < 0.5 || c.GainStepMultipleDB > 5.0 {
		return fmt.Errorf("%w: gain_step_multiple_dB=%f out of [0.5,5]", ErrInvalidConfig, c.GainStepMultipleDB)
	}
	if c.GainStepMaxDB < c.GainStepMinDB {
		return fmt.Errorf("%w: gain_step_max_dB < gain_step_min_dB", ErrInvalidConfig)
	}
	if !isPositiveMultiple(c.GainStepMinDB, c.GainStepMultipleDB) {
		return fmt.Errorf("%w: gain_step_min_dB is not a positive multiple of gain_step_multiple_dB", ErrInvalidConfig)
	}
	if !isPositiveMultiple(c.GainStepMaxDB, c.GainStepMultipleDB) {
		return fmt.Errorf("%w: gain_step_max_dB is not a positive multiple of gain_step_multiple_dB", ErrInvalidConfig)
	}
	return nil
}

func isPositiveMultiple(inp, multiple float64) bool {
	if inp <= 0.0 || multiple <= 0.0 {
		return false
	}
	q := inp / multiple
	return q == math.Round(q)
}

// base is embedded by RX and TX to share quantization logic.
type base struct {
	config Config
}

// QuantizeAndLimitGainStepDB rounds an arbitrary gain step to the nearest
// multiple of GainStepMultipleDB, zeroes it if within the GainStepMinDB
// dead-band, and clamps the result to +/-GainStepMaxDB.
func (b *base) QuantizeAndLimitGainStepDB(arbitraryGainStepDB float64) float64 {
	quantized := math.Round(arbitraryGainStepDB/b.config.GainStepMultipleDB) * b.config.GainStepMultipleDB

	if -b.config.GainStepMinDB <= quantized && quantized <= b.config.GainStepMinDB {
		return 0.0
	}
	if quantized > b.config.GainStepMaxDB {
		return b.config.GainStepMaxDB
	}
	if quantized < -b.config.GainStepMaxDB {
		return -b.config.GainStepMaxDB
	}
	return quantized
}

// QuantizeAndLimitGainStepDBVec applies QuantizeAndLimitGainStepDB
// per-antenna.
func (b *base) QuantizeAndLimitGainStepDBVec(arbitraryGainStepDB antvec.Vec) antvec.Vec {
	ret := antvec.New(arbitraryGainStepDB.NofAntennas())
	for i := 0; i < b.config.NofAntennas; i++ {
		ret.Set(i, b.QuantizeAndLimitGainStepDB(arbitraryGainStepDB.At(i)))
	}
	return ret
}
