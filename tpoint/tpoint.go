// Package tpoint assembles allocation, PLL, PPX, CQI, MIMO, HARQ, and the
// contact list into the FT and PT termination-point firmware: the
// single-threaded MAC state machine a worker pool baton invokes in job
// order.
//
// Grounded on lib/include/dectnrp/upper/tpoint.hpp and
// lib/include/dectnrp/upper/tpoint_state.hpp.
package tpoint

import (
	"github.com/maxpenner/dectnrp-core/plcf"
	"github.com/maxpenner/dectnrp-core/pool/irregular"
	"github.com/maxpenner/dectnrp-core/radio"
)

// Role distinguishes the fixed termination point (base station) from the
// portable termination point (client).
type Role int

const (
	RoleFT Role = iota
	RolePT
)

func (r Role) String() string {
	if r == RoleFT {
		return "FT"
	}
	return "PT"
}

// PacketPlan is the radio.TxDescriptor shape this package hands to the
// external packet generator: the packed PLCF bytes, the MAC PDU payload
// (empty for a beacon), and the long-ID of the intended unicast recipient
// (zero for a broadcast beacon).
type PacketPlan struct {
	PLCFBytes    []byte
	MACPDU       []byte
	TargetLongID uint32
}

// TxDescriptor pairs a radio.TxDescriptor with the HARQ process index it
// was built against, so the caller can finalize that entry once the
// packet has been generated and scheduled.
type TxDescriptor struct {
	Descriptor radio.TxDescriptor
	HARQIdx    int
}

// ChannelScanRequest asks the caller to run a channel scan via
// radio.ChScanner.
type ChannelScanRequest struct {
	Scan radio.ChScan
}

// Result is returned by every Firmware work_* method: the set of TX
// descriptors to issue, an optional channel-scan request, and an optional
// irregular wake-up request. No exceptions escape a work_* call; failures
// are absorbed into statistics and reflected as an empty or partial
// Result.
type Result struct {
	TX           []TxDescriptor
	ChanScan     *ChannelScanRequest
	Irregular    irregular.Report
	HasIrregular bool
}

// Firmware is the MAC callback contract: invoked single-threaded under
// the worker pool's baton, in strict FIFO order for jobs originating from
// the synchronizer. PCC/PDC callbacks take the packet's radio.SyncReport
// so firmware can derive timing (beacon arrival time, etc.) without the
// caller threading a separate timestamp argument.
type Firmware interface {
	WorkStart(now int64) Result
	WorkRegular(now int64) Result
	WorkIrregular(handle uint32, now int64) Result
	WorkPCC(sync radio.SyncReport, pcc radio.PCCReport, info plcf.Info, hasPLCF bool) Result
	WorkPDC(sync radio.SyncReport, pdc radio.PDCReport) Result
	WorkPDCError(sync radio.SyncReport) Result
	WorkApplication(longID uint32, payload []byte) Result
	WorkChannel(now int64, scan radio.ChScan) Result
	WorkStop() Result
}

// Stats counts the transient-link-error categories named in this system's
// error taxonomy for the MAC callback layer.
type Stats struct {
	PLCFAbsent uint64
	PCCCrcFail uint64
	PDCCrcFail uint64
	NoHarq     uint64
	TXIssued   uint64
}
