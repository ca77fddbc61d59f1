package tpoint

import (
	"github.com/charmbracelet/log"

	"github.com/maxpenner/dectnrp-core/alloc"
	"github.com/maxpenner/dectnrp-core/callback"
	"github.com/maxpenner/dectnrp-core/cqi"
	"github.com/maxpenner/dectnrp-core/dectime"
	"github.com/maxpenner/dectnrp-core/expiring"
	"github.com/maxpenner/dectnrp-core/harq"
	"github.com/maxpenner/dectnrp-core/mimo"
	"github.com/maxpenner/dectnrp-core/pll"
	"github.com/maxpenner/dectnrp-core/plcf"
	"github.com/maxpenner/dectnrp-core/ppx"
	"github.com/maxpenner/dectnrp-core/radio"
)

// mimoCSIValidityWindow bounds how long a MIMO CSI reconciled from one
// downlink PDC is trusted before a PT falls back to the single-stream
// default.
const mimoCSIValidityWindow int64 = 10_000_000

// feedbackFormatCycle is the round-robin CSI feedback-format plan a PT
// rotates through on successive uplink transmissions.
var feedbackFormatCycle = [...]plcf.FeedbackFormat{plcf.FeedbackFormat4, plcf.FeedbackFormat5}

// PT is the portable termination point (client) firmware: it tracks one
// FT's beacon raster and carries the uplink application tunnel.
//
// Grounded on the PT half of lib/include/dectnrp/upper/tpoint.hpp.
type PT struct {
	*phaseMachine

	longID      uint32
	ftNetworkID uint32
	ftShortID   uint32

	lut    *dectime.LUT
	alloc  *alloc.Allocation
	pll    *pll.PLL
	ppx    *ppx.PPX // nil if PPX tracking is disabled for this link
	cqiLUT *cqi.LUT

	mimoCSI expiring.Value[MIMOState]
	lastMCS int

	harqTx *harq.Pool

	txEarliest     int64
	feedbackCursor int
	pendingUL      [][]byte

	logCallbacks *callback.Scheduler

	stats Stats
}

// NewPT constructs a PT firmware in PhaseAssociation, awaiting its first
// beacon. px may be nil to disable PPX tracking for this link.
func NewPT(
	lut *dectime.LUT,
	a *alloc.Allocation,
	pl *pll.PLL,
	px *ppx.PPX,
	cqiLUT *cqi.LUT,
	harqTx *harq.Pool,
	longID, ftNetworkID, ftShortID uint32,
	leave LeaveCallback,
	logger *log.Logger,
) *PT {
	return &PT{
		phaseMachine: newPhaseMachine(PhaseAssociation, leave, logger),
		longID:       longID,
		ftNetworkID:  ftNetworkID,
		ftShortID:    ftShortID,
		lut:          lut,
		alloc:        a,
		pll:          pl,
		ppx:          px,
		cqiLUT:       cqiLUT,
		harqTx:       harqTx,
		mimoCSI:      expiring.Zero[MIMOState](),
		lastMCS:      cqiLUT.Min(),
		logCallbacks: callback.New(),
	}
}

// Stats returns a snapshot of the error-taxonomy counters this firmware
// has accumulated.
func (t *PT) Stats() Stats {
	return t.stats
}

// WorkStart enters PhaseAssociation; a PT has nothing further to do until
// its first PCC arrives.
func (t *PT) WorkStart(now int64) Result {
	t.transition(PhaseAssociation)
	return Result{}
}

// WorkPCC processes a decoded control-channel header. In PhaseAssociation
// the first valid PLCF from the target FT completes association and, if
// the PPX holds no rising edge yet and that beacon's arrival time is
// positive, seeds the PPX rising-edge estimate from that time; in
// PhaseSteady every beacon reconciles the PLL (and PPX, if enabled)
// against the observed arrival time.
//
// Excessive PLL drift or a PPX ErrSyncLost is treated as a recoverable
// link condition rather than a fatal assertion: this firmware degrades
// back to PhaseAssociation instead of panicking, so association can be
// reattempted against the next beacon.
func (t *PT) WorkPCC(sync radio.SyncReport, pcc radio.PCCReport, info plcf.Info, hasPLCF bool) Result {
	if !hasPLCF {
		t.stats.PLCFAbsent++
		return Result{}
	}

	switch t.phase {
	case PhaseAssociation:
		t.alloc.SetBeaconTimeLastKnown(sync.FinePeakTime)
		t.pll.ProvideBeaconTime(sync.FinePeakTime)
		if t.ppx != nil && !t.ppx.HasRisingEdge() && sync.FinePeakTime > 0 {
			_ = t.ppx.SetPPXRisingEdge(sync.FinePeakTime)
		}
		t.transition(PhaseSteady)

		firstFire := sync.FinePeakTime + t.lut.Duration(dectime.UnitMillisecond, statsLogFirstFireMs).Samples
		period := t.lut.Duration(dectime.UnitSecond, statsLogPeriodSeconds).Samples
		if _, err := t.logCallbacks.Add(t.logStats, firstFire, period); err != nil && t.logger != nil {
			t.logger.Warn("stats-log callback not registered", "err", err)
		}

		return Result{}

	case PhaseSteady:
		t.pll.ProvideBeaconTime(sync.FinePeakTime)
		if ppm := t.pll.WarpFactorPPM(); ppm > pll.OutOfSyncPPM || ppm < -pll.OutOfSyncPPM {
			if t.logger != nil {
				t.logger.Warn("pll drift out of range, degrading to association", "ppm", ppm)
			}
			t.pll.Reset()
			t.transition(PhaseAssociation)
			return Result{}
		}
		if t.ppx != nil {
			if err := t.ppx.ProvideBeaconTime(sync.FinePeakTime); err != nil {
				if t.logger != nil {
					t.logger.Warn("synchronization lost, degrading to association", "err", err)
				}
				t.transition(PhaseAssociation)
				return Result{}
			}
		}
		t.alloc.SetBeaconTimeLastKnown(sync.FinePeakTime)
		return Result{}

	default:
		return Result{}
	}
}

// WorkPDC reconciles a successfully decoded downlink data-channel packet:
// it derives the highest sustainable MCS from the reported SNR and, if a
// MIMO channel estimate was attached, the beamforming recommendation for
// the next uplink transmission.
func (t *PT) WorkPDC(sync radio.SyncReport, pdc radio.PDCReport) Result {
	t.lastMCS = t.cqiLUT.ClampMCS(t.cqiLUT.GetHighestMCSPossible(pdc.SNRdB))

	if ch, ok := pdc.MIMOChannel.([][][]complex128); ok {
		if idx, entry, err := mimo.Select(ch, mimo.MaxMin); err == nil {
			t.mimoCSI = expiring.New(MIMOState{CodebookIdx: idx, NSS: len(entry.Weights)}, sync.FinePeakTime+mimoCSIValidityWindow)
		}
	}

	return Result{}
}

// WorkPDCError records a downlink data-channel CRC failure.
func (t *PT) WorkPDCError(sync radio.SyncReport) Result {
	t.stats.PDCCrcFail++
	return Result{}
}

func (t *PT) nextFeedbackFormat() plcf.FeedbackFormat {
	f := feedbackFormatCycle[t.feedbackCursor%len(feedbackFormatCycle)]
	t.feedbackCursor++
	return f
}

// WorkApplication queues an uplink application payload, transmitting
// immediately if a TX opportunity is available now.
func (t *PT) WorkApplication(longID uint32, payload []byte) Result {
	oppTime, found := t.alloc.ClosestULOpportunity(t.txEarliest)
	if !found {
		t.pendingUL = append(t.pendingUL, payload)
		return Result{}
	}
	return t.buildULDescriptor(oppTime, payload)
}

// buildULDescriptor packs and schedules one uplink transmission at oppTime.
// ClosestULOpportunity names only a time, not a resource length (it ignores
// the afterBeacon/afterNow/turnaround validity windows TxOpportunity
// enforces), so txEarliest advances past oppTime by one sample rather than
// by a resource length.
func (t *PT) buildULDescriptor(oppTime int64, payload []byte) Result {
	csi := t.mimoCSI.GetOr(oppTime, MIMOState{NSS: 1})

	p := plcf.Type2Format1{
		PacketLengthType:   0,
		PacketLength:       1,
		ShortNetworkID:     t.ftNetworkID & 0xFF,
		ShortRadioDeviceID: t.ftShortID,
		TransmitPower:      0,
		DFMCS:              uint32(t.lastMCS),
		NSS:                uint32(maxInt(csi.NSS, 1)),
		Feedback:           t.nextFeedbackFormat(),
	}
	b, err := p.Pack()
	if err != nil {
		if t.logger != nil {
			t.logger.Warn("uplink plcf pack failed", "err", err)
		}
		return Result{}
	}

	idx, entry, err := t.harqTx.GetProcess(harq.Key{PLCFType: plcf.Type2, NetworkID: t.ftNetworkID, PacketSizes: uint32(len(payload))})
	if err != nil {
		t.stats.NoHarq++
		if t.logger != nil {
			t.logger.Warn("no harq process available for uplink", "err", err)
		}
		return Result{}
	}
	copy(entry.PLCF, b)

	t.txEarliest = oppTime + 1

	return Result{TX: []TxDescriptor{{
		Descriptor: PacketPlan{PLCFBytes: b, MACPDU: payload, TargetLongID: t.longID},
		HARQIdx:    idx,
	}}}
}

// WorkRegular drains any uplink payloads that missed their original TX
// opportunity, and runs any due periodic callbacks.
func (t *PT) WorkRegular(now int64) Result {
	t.logCallbacks.Run(now)

	if len(t.pendingUL) == 0 {
		return Result{}
	}

	var tx []TxDescriptor
	remaining := t.pendingUL[:0]
	for _, payload := range t.pendingUL {
		oppTime, found := t.alloc.ClosestULOpportunity(t.txEarliest)
		if !found {
			remaining = append(remaining, payload)
			continue
		}
		r := t.buildULDescriptor(oppTime, payload)
		tx = append(tx, r.TX...)
	}
	t.pendingUL = remaining
	return Result{TX: tx}
}

// logStats reports the current error-taxonomy counters, grounded on
// steady_rd_t's periodic worksub_callback_log.
func (t *PT) logStats(now int64) {
	if t.logger == nil {
		return
	}
	t.logger.Info("pt stats",
		"now", now,
		"no_harq", t.stats.NoHarq,
		"plcf_absent", t.stats.PLCFAbsent,
		"pdc_crc_fail", t.stats.PDCCrcFail,
	)
}

// WorkIrregular is unused by this PT design; all of its scheduling is
// driven by received PCC/PDC traffic and regular ticks.
func (t *PT) WorkIrregular(handle uint32, now int64) Result {
	return Result{}
}

// WorkChannel is unused by a PT; channel scans are an FT-only concern in
// this design.
func (t *PT) WorkChannel(now int64, scan radio.ChScan) Result {
	return Result{}
}

// WorkStop enters PhaseDissociation.
func (t *PT) WorkStop() Result {
	t.transition(PhaseDissociation)
	return Result{}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
