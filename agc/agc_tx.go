package agc

import (
	"fmt"

	"github.com/maxpenner/dectnrp-core/antvec"
	"github.com/maxpenner/dectnrp-core/dectime"
)

// TX is a software AGC that steers this transmitter's gain so a remote
// receiver's measured RX power converges on a target dBm level. Gain
// changes are scheduled: a pending value takes effect only once its
// application time has elapsed, mirroring how an SDR front end applies
// gain changes at a specific future sample time rather than instantly.
type TX struct {
	base

	ofdmAmplitudeFactor float64
	rxDBmTarget         float64

	powerAnt0dBFS        float64
	powerAnt0dBFSPending float64
	pendingTime          int64
}

// NewTX constructs a TX AGC. ofdmAmplitudeFactor is the linear OFDM
// amplitude reduction applied before transmission (see the
// OFDMAmplitudeFactorMinus*dB constants); rxDBmTarget is the dBm level this
// AGC tries to achieve at the receiver.
func NewTX(config Config, ofdmAmplitudeFactor, rxDBmTarget float64) (*TX, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}
	return &TX{
		base:                base{config: config},
		ofdmAmplitudeFactor: ofdmAmplitudeFactor,
		rxDBmTarget:         rxDBmTarget,
		pendingTime:         dectime.UndefinedEarly,
	}, nil
}

// OFDMAmplitudeFactor returns the linear OFDM amplitude reduction applied
// before transmission.
func (tx *TX) OFDMAmplitudeFactor() float64 {
	return tx.ofdmAmplitudeFactor
}

// SetPowerAnt0dBFSPending schedules a new 0dBFS power calibration to take
// effect at pendingTime. Only one change may be pending at a time; calling
// this again before the previous one has taken effect overwrites it.
func (tx *TX) SetPowerAnt0dBFSPending(powerAnt0dBFSPending float64, pendingTime int64) {
	tx.powerAnt0dBFSPending = powerAnt0dBFSPending
	tx.pendingTime = pendingTime
}

// GetPowerAnt0dBFS returns the 0dBFS power calibration in effect at now,
// promoting a pending value to current if its scheduled time has passed.
func (tx *TX) GetPowerAnt0dBFS(now int64) float64 {
	if tx.pendingTime > dectime.UndefinedEarly && now >= tx.pendingTime {
		tx.powerAnt0dBFS = tx.powerAnt0dBFSPending
		tx.pendingTime = dectime.UndefinedEarly
	}
	return tx.powerAnt0dBFS
}

// GetGainStepDB computes the TX gain change required to drive the
// receiver's measured RX power toward rxDBmTarget. Returns 0 without error
// while a previously scheduled gain change is still pending, to avoid
// issuing overlapping commands the hardware cannot reconcile.
//
// txDBmOpposite is the TX power the remote announced it used for the
// signal this AGC is reacting to; txPowerAnt0dBFS is this transmitter's own
// current 0dBFS calibration at the time that signal was sent. Together they
// give the path loss the remote observed (txDBmOpposite - measuredRxDBm),
// which combined with rxDBmTarget yields the TX power this transmitter
// should have used; the gain step is the gap between that and what it
// actually used.
func (tx *TX) GetGainStepDB(now int64, txDBmOpposite, txPowerAnt0dBFS float64, rxPowerAnt0dBFS, rmsMeasured antvec.Vec) (float64, error) {
	if rxPowerAnt0dBFS.NofAntennas() != rmsMeasured.NofAntennas() {
		return 0, errAntennaCountMismatch
	}
	if rxPowerAnt0dBFS.NofAntennas() < 1 {
		return 0, fmt.Errorf("agc: empty antenna vector")
	}

	if tx.pendingTime > dectime.UndefinedEarly && now < tx.pendingTime {
		return 0, nil
	}

	idxMax := rxPowerAnt0dBFS.IndexOfMax()
	measuredRxDBm := rxPowerAnt0dBFS.At(idxMax)
	if rmsMeasured.At(idxMax) > 0 {
		measuredRxDBm += mag2dB(rmsMeasured.At(idxMax))
	}

	pathLoss := txDBmOpposite - measuredRxDBm
	txDBmRequired := tx.rxDBmTarget + pathLoss

	arbitrary := txDBmRequired - txPowerAnt0dBFS
	return tx.QuantizeAndLimitGainStepDB(arbitrary), nil
}
