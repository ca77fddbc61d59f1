package tpoint

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/maxpenner/dectnrp-core/harq"
	"github.com/maxpenner/dectnrp-core/plcf"
	"github.com/maxpenner/dectnrp-core/pool/irregular"
	"github.com/maxpenner/dectnrp-core/pool/worker"
	"github.com/maxpenner/dectnrp-core/radio"
	"github.com/maxpenner/dectnrp-core/telemetry"
)

// RegularPayload is the job.KindRegular payload: the regular-report time.
type RegularPayload struct {
	Now int64
}

// AppReportPayload is the job.KindAppReport payload: one application-tunnel
// payload destined for (FT) or originating from (PT) the named peer.
type AppReportPayload struct {
	LongID  uint32
	Payload []byte
}

// Adapter implements pool/worker.Firmware, bridging the generic job-kind
// dispatch a Worker performs to this package's Firmware contract: for a
// sync-report job it drives the external PCC/PDC demod/decode sequence,
// then issues every TX descriptor the MAC callback returned.
//
// Grounded on lib/src/phy/pool/worker_tx_rx.cpp's work() loop.
type Adapter struct {
	firmware Firmware
	rxSynced radio.RxSynced
	tx       radio.Tx
	txPool   radio.BufferTxPool
	chscan   radio.ChScanner

	harqTx *harq.Pool
	harqRx *harq.Pool

	networkID uint32

	logger *log.Logger

	telemetry         *telemetry.Writer
	telemetryWorkerID uint32

	stats Stats
}

// SetTelemetry attaches a diagnostic-record sink to this adapter: every
// WorkSync invocation thereafter appends one JSONL record tagged with
// workerID. Passing a nil writer disables telemetry again.
func (a *Adapter) SetTelemetry(w *telemetry.Writer, workerID uint32) {
	a.telemetry = w
	a.telemetryWorkerID = workerID
}

// NewAdapter constructs an Adapter. chscan may be nil for a PT, which
// never issues channel-scan requests. harqTx must be the same pool
// instance passed to firmware's constructor: the adapter finalizes TX
// HARQ entries by index after issuing them, and that index is only
// meaningful against the pool firmware reserved it from.
func NewAdapter(
	firmware Firmware,
	rxSynced radio.RxSynced,
	tx radio.Tx,
	txPool radio.BufferTxPool,
	chscan radio.ChScanner,
	harqTx, harqRx *harq.Pool,
	networkID uint32,
	logger *log.Logger,
) *Adapter {
	return &Adapter{
		firmware:  firmware,
		rxSynced:  rxSynced,
		tx:        tx,
		txPool:    txPool,
		chscan:    chscan,
		harqTx:    harqTx,
		harqRx:    harqRx,
		networkID: networkID,
		logger:    logger,
	}
}

// Stats returns a snapshot of the error-taxonomy counters accumulated
// across every MAC callback this adapter has driven.
func (a *Adapter) Stats() Stats {
	return a.stats
}

var _ worker.Firmware = (*Adapter)(nil)

// WorkStart drives the MAC's initial-rendezvous callback; it is invoked
// directly by the pool orchestrator (outside normal job dispatch, at the
// initial rendezvous suspension point), not via pool/worker.Firmware.
func (a *Adapter) WorkStart(now int64) worker.Result {
	return a.finish(now, a.firmware.WorkStart(now))
}

// WorkStop drives the MAC's shutdown callback, invoked directly by the
// pool orchestrator once cancellation has been requested.
func (a *Adapter) WorkStop(now int64) worker.Result {
	return a.finish(now, a.firmware.WorkStop())
}

func (a *Adapter) WorkRegular(payload any) worker.Result {
	p, _ := payload.(RegularPayload)
	return a.finish(p.Now, a.firmware.WorkRegular(p.Now))
}

func (a *Adapter) WorkIrregular(payload any) worker.Result {
	p, _ := payload.(irregular.Report)
	return a.finish(p.At, a.firmware.WorkIrregular(p.Handle, p.At))
}

func (a *Adapter) WorkAppReport(payload any) worker.Result {
	p, _ := payload.(AppReportPayload)
	return a.finish(0, a.firmware.WorkApplication(p.LongID, p.Payload))
}

// WorkSync implements the sync-report branch of the worker loop: demod
// the PCC, treat an absent or out-of-range PLCF as "no valid PLCF" (the
// MAC is invoked with hasPLCF=false rather than skipped), then — only if a
// receive HARQ process is available for the decoded PLCF's key — demod
// the PDC and invoke work_pdc or work_pdc_error depending on CRC, finally
// finalizing the RX HARQ entry.
func (a *Adapter) WorkSync(payload any) worker.Result {
	sync, _ := payload.(radio.SyncReport)

	pcc := a.rxSynced.DemodDecodRxPCC(sync)

	decoder, ok := pcc.PLCFDecoder.(*plcf.Decoder)
	if !ok {
		a.stats.PLCFAbsent++
		a.emitSyncTelemetry(sync, pcc, false, plcf.Info{}, nil)
		return a.finish(sync.FinePeakTime, a.firmware.WorkPCC(sync, pcc, plcf.Info{}, false))
	}

	mask := decoder.HasAnyPLCF()
	if mask == 0 {
		a.stats.PLCFAbsent++
		a.emitSyncTelemetry(sync, pcc, false, plcf.Info{}, nil)
		return a.finish(sync.FinePeakTime, a.firmware.WorkPCC(sync, pcc, plcf.Info{}, false))
	}

	plcfType := plcf.Type1
	if mask&plcf.Type2 != 0 {
		plcfType = plcf.Type2
	}
	info, _ := decoder.GetPLCFBase(plcfType)

	res := a.firmware.WorkPCC(sync, pcc, info, true)

	key := harq.Key{PLCFType: plcfType, NetworkID: a.networkID, PacketSizes: info.PacketLength}
	idx, _, err := a.harqRx.GetProcess(key)
	if err != nil {
		a.stats.NoHarq++
		a.emitSyncTelemetry(sync, pcc, true, info, nil)
		return a.finish(sync.FinePeakTime, res)
	}

	maclow := radio.MaclowPhy{Sync: sync, PCC: pcc}
	pdc := a.rxSynced.DemodDecodRxPDC(maclow)

	var macRes Result
	if pdc.CRCOK {
		macRes = a.firmware.WorkPDC(sync, pdc)
	} else {
		a.stats.PDCCrcFail++
		macRes = a.firmware.WorkPDCError(sync)
	}
	a.harqRx.Finalize(idx, harq.ResetAndTerminate)
	a.emitSyncTelemetry(sync, pcc, true, info, &pdc)

	res.TX = append(res.TX, macRes.TX...)
	if macRes.HasIrregular {
		res.Irregular = macRes.Irregular
		res.HasIrregular = true
	}
	if macRes.ChanScan != nil {
		res.ChanScan = macRes.ChanScan
	}

	return a.finish(sync.FinePeakTime, res)
}

// emitSyncTelemetry appends one diagnostic record per WorkSync invocation
// when a telemetry sink is attached; pdc is nil if the PDC stage was never
// reached (no PLCF, or no RX HARQ process available).
func (a *Adapter) emitSyncTelemetry(sync radio.SyncReport, pcc radio.PCCReport, hasPLCF bool, info plcf.Info, pdc *radio.PDCReport) {
	if a.telemetry == nil {
		return
	}

	syncFields := map[string]any{
		"detection_ant_idx": sync.DetectionAntIdx,
		"coarse_peak_time":  sync.CoarsePeakTime,
		"fine_peak_time":    sync.FinePeakTime,
	}
	phyFields := map[string]any{
		"pcc_snr_db": pcc.SNRdB,
	}
	macFields := map[string]any{
		"has_plcf": hasPLCF,
	}
	if hasPLCF {
		macFields["packet_length"] = info.PacketLength
	}
	if pdc != nil {
		phyFields["pdc_snr_db"] = pdc.SNRdB
		macFields["pdc_crc_ok"] = pdc.CRCOK
	}

	if err := a.telemetry.Write(a.telemetryWorkerID, time.Now(), syncFields, phyFields, macFields, nil); err != nil && a.logger != nil {
		a.logger.Warn("telemetry write failed", "err", err)
	}
}

// finish issues every TX descriptor in res, runs a requested channel scan
// synchronously (a simplification of the original's asynchronous
// non-FIFO-baton completion path — see DESIGN.md), and narrows res down
// to the irregular-report shape pool/worker.Worker forwards to the shared
// irregular queue.
func (a *Adapter) finish(now int64, res Result) worker.Result {
	a.processTX(res.TX)

	if res.ChanScan != nil && a.chscan != nil {
		a.chscan.Scan(res.ChanScan.Scan)
		chRes := a.firmware.WorkChannel(now, res.ChanScan.Scan)
		a.processTX(chRes.TX)
		if chRes.HasIrregular {
			res.Irregular = chRes.Irregular
			res.HasIrregular = true
		}
	}

	return worker.Result{Irregular: res.Irregular, HasIrregular: res.HasIrregular}
}

func (a *Adapter) processTX(descs []TxDescriptor) {
	for _, d := range descs {
		buf := a.txPool.GetBufferTxToFill()
		if buf == nil {
			if a.logger != nil {
				a.logger.Warn("no tx buffer available, dropping descriptor")
			}
			continue
		}
		a.tx.GenerateTxPacket(d.Descriptor, buf)
		a.harqTx.Finalize(d.HARQIdx, harq.ResetAndTerminate)
		a.stats.TXIssued++
	}
}
