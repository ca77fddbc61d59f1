package main

import "github.com/maxpenner/dectnrp-core/radio"

// radioStub is the deployment-injection boundary this command idles
// against: a minimal, inert implementation of the four contracts
// radio.go declares (RxSynced, Tx, BufferTxPool, ChScanner) that this
// module does not implement itself (see the radio package doc comment).
// Constructing the Adapter against radioStub makes the job queue, baton,
// and worker pool reachable and running end to end without a real
// hardware or SDR binding; a deployment replaces radioStub with its own
// implementations of these four interfaces and passes those to
// tpoint.NewAdapter instead.
type radioStub struct{}

func (radioStub) DemodDecodRxPCC(sync radio.SyncReport) radio.PCCReport {
	return radio.PCCReport{}
}

func (radioStub) DemodDecodRxPDC(maclow radio.MaclowPhy) radio.PDCReport {
	return radio.PDCReport{}
}

func (radioStub) GenerateTxPacket(descriptor radio.TxDescriptor, buffer radio.BufferTx) {}

func (radioStub) GetBufferTxToFill() radio.BufferTx {
	return struct{}{}
}

func (radioStub) Scan(scan radio.ChScan) {}

var (
	_ radio.RxSynced     = radioStub{}
	_ radio.Tx           = radioStub{}
	_ radio.BufferTxPool = radioStub{}
	_ radio.ChScanner    = radioStub{}
)
