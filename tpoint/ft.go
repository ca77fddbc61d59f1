package tpoint

import (
	"github.com/charmbracelet/log"
	"github.com/golang/geo/s2"

	"github.com/maxpenner/dectnrp-core/alloc"
	"github.com/maxpenner/dectnrp-core/callback"
	"github.com/maxpenner/dectnrp-core/contact"
	"github.com/maxpenner/dectnrp-core/cqi"
	"github.com/maxpenner/dectnrp-core/dectime"
	"github.com/maxpenner/dectnrp-core/harq"
	"github.com/maxpenner/dectnrp-core/pll"
	"github.com/maxpenner/dectnrp-core/plcf"
	"github.com/maxpenner/dectnrp-core/pool/irregular"
	"github.com/maxpenner/dectnrp-core/radio"
)

// beaconIrregularHandle tags the one irregular callback a FT ever
// registers for itself: the next beacon-prepare wake-up.
const beaconIrregularHandle uint32 = 1

// statsLogPeriodSeconds is how often the regular stats-log callback fires,
// grounded on steady_rd_t::worksub_callback_log_period_sec.
const statsLogPeriodSeconds uint32 = 2

// statsLogFirstFireMs delays the first stats-log callback past channel-scan
// completion, grounded on the 500ms offset steady_ft_t::work_start_imminent
// adds before registering its own log callback.
const statsLogFirstFireMs uint32 = 500

// PeerState is the per-contact payload this system stores in a
// contact.List: the MIMO CSI last reconciled from an uplink PDC, and the
// MCS index the link is currently clamped to.
type PeerState struct {
	MIMOCSI MIMOState
	MCS     int
}

// MIMOState is the beamforming recommendation derived from a DRS channel
// estimate.
type MIMOState struct {
	CodebookIdx int
	NSS         int
}

type queuedUnicast struct {
	longID  uint32
	payload []byte
}

// FT is the fixed termination point (base station) firmware: it owns the
// beacon raster, the downlink allocation, and the contact list of
// associated peers.
//
// Grounded on the FT half of lib/include/dectnrp/upper/tpoint.hpp: the
// first beacon aligns to the next full second, and an irregular callback
// is scheduled at beacon_scheduled - beacon_prepare_duration to build and
// queue the following beacon ahead of time.
type FT struct {
	*phaseMachine

	networkID          uint32
	shortRadioDeviceID uint32
	location           s2.LatLng

	lut    *dectime.LUT
	alloc  *alloc.Allocation
	pll    *pll.PLL
	cqiLUT *cqi.LUT

	contacts *contact.List[PeerState]

	harqTx *harq.Pool

	beaconPrepareDuration int64
	beaconPeriod          int64
	beaconScheduled       int64

	txEarliest int64
	pendingDL  []queuedUnicast

	logCallbacks *callback.Scheduler

	stats Stats
}

// NewFT constructs a FT firmware in PhaseResource, awaiting WorkStart.
func NewFT(
	lut *dectime.LUT,
	a *alloc.Allocation,
	p *pll.PLL,
	cqiLUT *cqi.LUT,
	contacts *contact.List[PeerState],
	harqTx *harq.Pool,
	networkID, shortRadioDeviceID uint32,
	location s2.LatLng,
	beaconPrepareDuration dectime.Duration,
	leave LeaveCallback,
	logger *log.Logger,
) *FT {
	return &FT{
		phaseMachine:          newPhaseMachine(PhaseResource, leave, logger),
		networkID:             networkID,
		shortRadioDeviceID:    shortRadioDeviceID,
		location:              location,
		lut:                   lut,
		alloc:                 a,
		pll:                   p,
		cqiLUT:                cqiLUT,
		contacts:              contacts,
		harqTx:                harqTx,
		beaconPrepareDuration: beaconPrepareDuration.Samples,
		beaconPeriod:          a.BeaconPeriod(),
		logCallbacks:          callback.New(),
	}
}

// Location returns the beacon descriptor's coarse antenna-site location.
func (f *FT) Location() s2.LatLng {
	return f.location
}

// Stats returns a snapshot of the error-taxonomy counters this firmware
// has accumulated.
func (f *FT) Stats() Stats {
	return f.stats
}

// WorkStart enters PhaseResource and requests a channel scan to pick a
// clear operating frequency.
func (f *FT) WorkStart(now int64) Result {
	f.transition(PhaseResource)
	return Result{ChanScan: &ChannelScanRequest{}}
}

// WorkChannel consumes the completed channel scan: on success (PhaseResource
// only; a scan arriving in any other phase is ignored) it transitions to
// PhaseSteady and schedules the first beacon relative to now.
func (f *FT) WorkChannel(now int64, scan radio.ChScan) Result {
	if f.phase != PhaseResource {
		return Result{}
	}
	f.transition(PhaseSteady)

	firstFire := now + f.lut.Duration(dectime.UnitMillisecond, statsLogFirstFireMs).Samples
	period := f.lut.Duration(dectime.UnitSecond, statsLogPeriodSeconds).Samples
	if _, err := f.logCallbacks.Add(f.logStats, firstFire, period); err != nil && f.logger != nil {
		f.logger.Warn("stats-log callback not registered", "err", err)
	}

	return f.scheduleNextBeacon(now)
}

// logStats reports the current error-taxonomy counters, grounded on
// steady_ft_t's periodic worksub_callback_log.
func (f *FT) logStats(now int64) {
	if f.logger == nil {
		return
	}
	f.logger.Info("ft stats",
		"now", now,
		"no_harq", f.stats.NoHarq,
		"plcf_absent", f.stats.PLCFAbsent,
		"pdc_crc_fail", f.stats.PDCCrcFail,
	)
}

// scheduleNextBeacon aligns the next beacon to the next full second at or
// after reference and requests an irregular wake-up beacon_prepare_duration
// earlier.
func (f *FT) scheduleNextBeacon(reference int64) Result {
	f.beaconScheduled = f.lut.SamplesAtNextFullSecond(reference)
	prepareAt := f.beaconScheduled - f.beaconPrepareDuration
	return Result{
		Irregular:    irregular.Report{At: prepareAt, Handle: beaconIrregularHandle},
		HasIrregular: true,
	}
}

// WorkIrregular fires the scheduled beacon-prepare wake-up: it builds and
// queues the beacon packet, drains pending unicast downlink, updates the
// PLL from the FT's own clock, advances the allocation, and schedules the
// next beacon.
func (f *FT) WorkIrregular(handle uint32, now int64) Result {
	if f.phase != PhaseSteady || handle != beaconIrregularHandle {
		return Result{}
	}

	f.alloc.SetBeaconTimeLastKnown(f.beaconScheduled)
	f.pll.ProvideBeaconTime(f.beaconScheduled)

	var tx []TxDescriptor
	if d, ok := f.buildBeaconTX(); ok {
		tx = append(tx, d)
	}
	tx = append(tx, f.drainPendingUnicast(f.beaconScheduled)...)

	next := f.scheduleNextBeacon(f.beaconScheduled + f.beaconPeriod)
	next.TX = tx

	f.logCallbacks.Run(now)

	return next
}

func (f *FT) buildBeaconTX() (TxDescriptor, bool) {
	p := plcf.Type1Format0{
		PacketLengthType:   0,
		PacketLength:       1,
		ShortNetworkID:     f.networkID & 0xFF,
		ShortRadioDeviceID: f.shortRadioDeviceID,
		TransmitPower:      0,
		DFMCS:              0,
	}
	b, err := p.Pack()
	if err != nil {
		if f.logger != nil {
			f.logger.Warn("beacon plcf pack failed", "err", err)
		}
		return TxDescriptor{}, false
	}

	idx, entry, err := f.harqTx.GetProcess(harq.Key{PLCFType: plcf.Type1, NetworkID: f.networkID, PacketSizes: 0})
	if err != nil {
		f.stats.NoHarq++
		if f.logger != nil {
			f.logger.Warn("no harq process available for beacon", "err", err)
		}
		return TxDescriptor{}, false
	}
	copy(entry.PLCF, b)

	return TxDescriptor{Descriptor: PacketPlan{PLCFBytes: b}, HARQIdx: idx}, true
}

// WorkApplication queues a downlink application payload for the named
// peer and drains the queue from the scheduled beacon time; a payload that
// finds no downlink TX opportunity there stays queued for the next
// beacon-prepare wake-up or regular tick.
func (f *FT) WorkApplication(longID uint32, payload []byte) Result {
	f.pendingDL = append(f.pendingDL, queuedUnicast{longID: longID, payload: payload})
	return Result{TX: f.drainPendingUnicast(f.beaconScheduled)}
}

func (f *FT) drainPendingUnicast(now int64) []TxDescriptor {
	if len(f.pendingDL) == 0 {
		return nil
	}

	var out []TxDescriptor
	remaining := f.pendingDL[:0]
	for _, q := range f.pendingDL {
		opp := f.alloc.TxOpportunity(alloc.DirectionDL, now, f.txEarliest)
		if !opp.Found {
			remaining = append(remaining, q)
			continue
		}

		shortID, err := f.contacts.ShortIDFromLongID(q.longID)
		if err != nil {
			if f.logger != nil {
				f.logger.Warn("unicast downlink target unknown", "long_id", q.longID)
			}
			continue
		}

		p := plcf.Type1Format0{
			PacketLengthType:   0,
			PacketLength:       1,
			ShortNetworkID:     f.networkID & 0xFF,
			ShortRadioDeviceID: shortID,
			TransmitPower:      0,
			DFMCS:              uint32(f.peerMCS(q.longID)),
		}
		b, err := p.Pack()
		if err != nil {
			if f.logger != nil {
				f.logger.Warn("unicast downlink plcf pack failed", "err", err)
			}
			continue
		}

		idx, entry, err := f.harqTx.GetProcess(harq.Key{PLCFType: plcf.Type1, NetworkID: f.networkID, PacketSizes: uint32(len(q.payload))})
		if err != nil {
			f.stats.NoHarq++
			if f.logger != nil {
				f.logger.Warn("no harq process available for unicast downlink", "err", err)
			}
			remaining = append(remaining, q)
			continue
		}
		copy(entry.PLCF, b)

		f.txEarliest = opp.Time + opp.Length

		out = append(out, TxDescriptor{
			Descriptor: PacketPlan{PLCFBytes: b, MACPDU: q.payload, TargetLongID: q.longID},
			HARQIdx:    idx,
		})
	}
	f.pendingDL = remaining
	return out
}

func (f *FT) peerMCS(longID uint32) int {
	peer, ok := f.contacts.Get(longID)
	if !ok {
		return f.cqiLUT.Min()
	}
	return f.cqiLUT.ClampMCS(peer.MCS)
}

// WorkRegular advances pending downlink on the regular report tick; the FT
// has no per-regular-tick obligation beyond opportunistically draining the
// unicast queue.
func (f *FT) WorkRegular(now int64) Result {
	return Result{TX: f.drainPendingUnicast(now)}
}

// WorkPCC observes uplink PCC arrivals from an associated PT; MCS/MIMO
// selection logic lives in the PT's downlink-receive path instead, so the
// FT side here is limited to transient-error bookkeeping.
func (f *FT) WorkPCC(sync radio.SyncReport, pcc radio.PCCReport, info plcf.Info, hasPLCF bool) Result {
	if !hasPLCF {
		f.stats.PLCFAbsent++
	}
	return Result{}
}

// WorkPDC records an uplink data-channel delivery.
func (f *FT) WorkPDC(sync radio.SyncReport, pdc radio.PDCReport) Result {
	if !pdc.CRCOK {
		f.stats.PDCCrcFail++
	}
	return Result{}
}

// WorkPDCError records an uplink data-channel CRC failure.
func (f *FT) WorkPDCError(sync radio.SyncReport) Result {
	f.stats.PDCCrcFail++
	return Result{}
}

// WorkStop enters PhaseDissociation.
func (f *FT) WorkStop() Result {
	f.transition(PhaseDissociation)
	return Result{}
}
