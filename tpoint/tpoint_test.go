package tpoint_test

import (
	"github.com/maxpenner/dectnrp-core/radio"
)

// stubRxSynced returns a fixed PCCReport/PDCReport for every call,
// recording how many times each method fired.
type stubRxSynced struct {
	pcc radio.PCCReport
	pdc radio.PDCReport

	pccCalls int
	pdcCalls int
}

func (s *stubRxSynced) DemodDecodRxPCC(sync radio.SyncReport) radio.PCCReport {
	s.pccCalls++
	return s.pcc
}

func (s *stubRxSynced) DemodDecodRxPDC(maclow radio.MaclowPhy) radio.PDCReport {
	s.pdcCalls++
	return s.pdc
}

// stubTx records every descriptor handed to GenerateTxPacket.
type stubTx struct {
	generated []radio.TxDescriptor
}

func (s *stubTx) GenerateTxPacket(descriptor radio.TxDescriptor, buffer radio.BufferTx) {
	s.generated = append(s.generated, descriptor)
}

// stubBufferTxPool always returns the same sentinel buffer, unless
// exhausted is set, in which case it reports no buffer available.
type stubBufferTxPool struct {
	exhausted bool
}

func (s *stubBufferTxPool) GetBufferTxToFill() radio.BufferTx {
	if s.exhausted {
		return nil
	}
	return struct{}{}
}

// stubChScanner records every scan it was asked to run.
type stubChScanner struct {
	scans []radio.ChScan
}

func (s *stubChScanner) Scan(scan radio.ChScan) {
	s.scans = append(s.scans, scan)
}
