package agc

import (
	"errors"
	"fmt"
	"math"

	"github.com/maxpenner/dectnrp-core/antvec"
)

// Mode selects how the RX AGC combines per-antenna measurements into gain
// steps.
type Mode int

const (
	// TuneIndividually computes an independent gain step per antenna.
	TuneIndividually Mode = iota
	// TuneCollectively applies the step computed from the strongest
	// antenna's measurement to every antenna.
	TuneCollectively
)

// RX is a software AGC that steers every antenna's RX gain toward a target
// RMS level, bounding how far any antenna's sensitivity may drift from the
// least sensitive one.
type RX struct {
	base

	mode                  Mode
	rmsTarget             float64
	sensitivityOffsetMaxDB float64
}

// NewRX constructs an RX AGC. rmsTarget must fall within the OFDM amplitude
// range [OFDMAmplitudeFactorMinus20dB, OFDMAmplitudeFactorMinus00dB], and
// sensitivityOffsetMaxDB must lie within [0, 20].
func NewRX(config Config, mode Mode, rmsTarget, sensitivityOffsetMaxDB float64) (*RX, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}
	if rmsTarget < OFDMAmplitudeFactorMinus20dB || rmsTarget > OFDMAmplitudeFactorMinus00dB {
		return nil, fmt.Errorf("%w: rms_target=%f out of range", ErrInvalidConfig, rmsTarget)
	}
	if sensitivityOffsetMaxDB < 0.0 || sensitivityOffsetMaxDB > 20.0 {
		return nil, fmt.Errorf("%w: sensitivity_offset_max_dB=%f out of [0,20]", ErrInvalidConfig, sensitivityOffsetMaxDB)
	}

	return &RX{
		base:                   base{config: config},
		mode:                   mode,
		rmsTarget:              rmsTarget,
		sensitivityOffsetMaxDB: sensitivityOffsetMaxDB,
	}, nil
}

// RMSTarget returns the RMS level this AGC is steering toward.
func (r *RX) RMSTarget() float64 {
	return r.rmsTarget
}

// SetMode switches between individual and collective tuning.
func (r *RX) SetMode(mode Mode) {
	r.mode = mode
}

var errAntennaCountMismatch = errors.New("agc: antenna count mismatch")

// GetGainStepDB returns the required per-antenna gain-step adjustment.
// A positive step means the radio hardware must increase the RX power at
// 0dBFS (become less sensitive); a negative step means it must decrease it
// (become more sensitive).
func (r *RX) GetGainStepDB(rxPowerAnt0dBFS, rmsMeasured antvec.Vec) (antvec.Vec, error) {
	if rxPowerAnt0dBFS.NofAntennas() != r.config.NofAntennas || rmsMeasured.NofAntennas() != r.config.NofAntennas {
		return antvec.Vec{}, errAntennaCountMismatch
	}

	a := rxPowerAnt0dBFS.Max()
	b := a - r.sensitivityOffsetMaxDB

	switch r.mode {
	case TuneIndividually:
		arbitrary := antvec.New(r.config.NofAntennas)
		for i := 0; i < r.config.NofAntennas; i++ {
			var c float64
			if rmsMeasured.At(i) > 0 {
				c = mag2dB(rmsMeasured.At(i) / r.rmsTarget)
			} else {
				c = a - rxPowerAnt0dBFS.At(i)
			}
			d := b - rxPowerAnt0dBFS.At(i)
			arbitrary.Set(i, math.Max(c, d))
		}
		return r.QuantizeAndLimitGainStepDBVec(arbitrary), nil

	case TuneCollectively:
		idxMax := rmsMeasured.IndexOfMax()
		c := mag2dB(rmsMeasured.At(idxMax) / r.rmsTarget)
		d := b - rxPowerAnt0dBFS.At(idxMax)
		equalStep := math.Max(c, d)

		arbitrary := antvec.New(r.config.NofAntennas)
		arbitrary.Fill(equalStep)
		return r.QuantizeAndLimitGainStepDBVec(arbitrary), nil
	}

	return antvec.Vec{}, fmt.Errorf("agc: unknown mode %d", r.mode)
}

// mag2dB converts a linear amplitude ratio to decibels.
func mag2dB(ratio float64) float64 {
	return 20.0 * math.Log10(ratio)
}
