// Package radio declares the contracts the MAC core consumes from the
// radio layer and the synchronization/FEC layer; neither is implemented
// here, both live outside this module's scope.
//
// Grounded on lib/include/dectnrp/radio/hw.hpp and
// lib/include/dectnrp/phy/rx/rx_synced/rx_synced.hpp: the method names and
// responsibilities mirror those headers' public surface, translated to Go
// interfaces consumed by tpoint firmware. The monotonic sample clock
// underlying get_rx_time_passed is, on Linux hosts, typically read via
// CLOCK_MONOTONIC_RAW; ClockGettimeNanos below gives callers outside this
// module's contract boundary the same access via golang.org/x/sys/unix
// rather than cgo.
package radio

import "golang.org/x/sys/unix"

// SettlingKind selects which minimum settling time HW.GetTminSamples
// reports.
type SettlingKind int

const (
	SettlingTurnaround SettlingKind = iota
	SettlingFreq
	SettlingGain
)

// BufferTx is an opaque transmit buffer handed out by a BufferTxPool for
// one packet's worth of IQ samples.
type BufferTx interface{}

// BufferRx is the streaming receive ring buffer: its notion of "now" is
// the sample count elapsed since streaming start.
type BufferRx interface {
	// GetRxTimePassed returns the current sample count since streaming
	// start.
	GetRxTimePassed() int64
	// WaitUntil blocks until GetRxTimePassed() >= t and returns the
	// actual time observed.
	WaitUntil(t int64) int64
}

// BufferTxPool hands out transmit buffers to be filled and scheduled.
type BufferTxPool interface {
	// GetBufferTxToFill returns a free buffer, or nil if none is
	// available.
	GetBufferTxToFill() BufferTx
}

// HW is the radio hardware control surface: frequency, gain, and
// scheduled-pulse commands, plus the settling times and PPS offset
// measurement firmware needs to schedule around.
type HW interface {
	SetCommandTime(t int64)
	SetTxPowerAnt0dBFSTc(dBm float64)
	SetRxPowerAnt0dBFSUniformTc(dBm float64)
	SetFreqTc(hz float64)
	SchedulePulseTc(rising, falling int64)
	// GetTminSamples returns the minimum settling time, in samples, for
	// the given kind of hardware reconfiguration.
	GetTminSamples(kind SettlingKind) int64
	// GetPPSToFullSecondMeasuredSamples returns the measured offset of
	// the hardware PPS pulse from the nearest full-second boundary.
	GetPPSToFullSecondMeasuredSamples() int64
}

// PCCReport is returned by RxSynced.DemodDecodRxPCC: the PLCF decoder's
// resulting state plus an SNR estimate for the chosen PCC candidate.
type PCCReport struct {
	SNRdB float64
	// PLCFDecoder is declared as `any` here to avoid an import cycle
	// back onto the plcf package from this external-contract boundary;
	// callers type-assert to *plcf.Decoder.
	PLCFDecoder any
}

// PDCReport is returned by RxSynced.DemodDecodRxPDC: CRC status, the
// decoded MAC-PDU bytes, an SNR estimate, and a MIMO channel report.
type PDCReport struct {
	CRCOK  bool
	MACPDU []byte
	SNRdB  float64
	// MIMOChannel is the per-subcarrier DRS channel estimate, declared
	// as `any` to avoid importing the mimo package's concrete
	// [][][]complex128 shape into this contract boundary.
	MIMOChannel any
}

// SyncReport carries the synchronization layer's findings for one
// detected packet, consumed by RxSynced.DemodDecodRxPCC.
type SyncReport struct {
	DetectionAntIdx int
	CoarsePeakTime  int64
	FinePeakTime    int64
}

// MaclowPhy bundles a SyncReport with its decoded PCCReport, the unit
// RxSynced.DemodDecodRxPDC consumes to proceed to the PDC.
type MaclowPhy struct {
	Sync SyncReport
	PCC  PCCReport
}

// ChScan is an instruction to measure RMS over the buffered IQ stream;
// its shape is owned by the synchronization layer.
type ChScan any

// TxDescriptor is an instruction to generate and schedule one TX packet;
// its shape is owned by the PHY transmit layer.
type TxDescriptor any

// RxSynced is the synchronization/FEC contract: demodulation and decoding
// of the control and data channels, handed a sync report or a PCC choice
// and returning the corresponding decoded report.
type RxSynced interface {
	DemodDecodRxPCC(sync SyncReport) PCCReport
	DemodDecodRxPDC(maclow MaclowPhy) PDCReport
}

// Tx generates packets deterministically and without heap allocation in
// the hot path, per the original's no-alloc packet generation contract.
type Tx interface {
	GenerateTxPacket(descriptor TxDescriptor, buffer BufferTx)
}

// ChScanner performs an in-place RMS measurement of the buffered IQ
// stream for one ChScan instruction.
type ChScanner interface {
	Scan(scan ChScan)
}

// ClockGettimeNanos reads CLOCK_MONOTONIC_RAW directly via
// golang.org/x/sys/unix, for callers outside the BufferRx contract (e.g.
// the worker pool's dispatch-latency timing) that need a cheap monotonic
// timestamp without going through a mock-friendly interface.
func ClockGettimeNanos() (int64, error) {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_MONOTONIC_RAW, &ts); err != nil {
		return 0, err
	}
	return ts.Nano(), nil
}
