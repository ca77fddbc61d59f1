package tpoint_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxpenner/dectnrp-core/harq"
	"github.com/maxpenner/dectnrp-core/plcf"
	"github.com/maxpenner/dectnrp-core/pool/irregular"
	"github.com/maxpenner/dectnrp-core/radio"
	"github.com/maxpenner/dectnrp-core/tpoint"
)

func newTestAdapter(t *testing.T, fw tpoint.Firmware, rx *stubRxSynced, tx *stubTx, txPool *stubBufferTxPool, chscan *stubChScanner) *tpoint.Adapter {
	t.Helper()
	return tpoint.NewAdapter(fw, rx, tx, txPool, chscan, harq.NewPool(4, 256), harq.NewPool(4, 256), 1, nil)
}

func TestAdapter_WorkSync_AbsentPLCFInvokesWorkPCCWithFalse(t *testing.T) {
	ft := newTestFT(t, nil)
	ft.WorkChannel(0, nil)

	rx := &stubRxSynced{pcc: radio.PCCReport{PLCFDecoder: nil}}
	a := newTestAdapter(t, ft, rx, &stubTx{}, &stubBufferTxPool{}, nil)

	a.WorkSync(radio.SyncReport{FinePeakTime: 1_000})
	assert.Equal(t, 1, rx.pccCalls)
	assert.Equal(t, 0, rx.pdcCalls)
	assert.Equal(t, uint64(1), ft.Stats().PLCFAbsent)
}

func TestAdapter_WorkSync_NoHarqProcessSkipsPDC(t *testing.T) {
	ft := newTestFT(t, nil)
	ft.WorkChannel(0, nil)

	decoder := plcf.NewDecoder(plcf.Limits{PacketLengthMax: 16, MCSIndexMax: 11, NSSMax: 4})
	b, err := plcf.Type1Format0{PacketLength: 1, ShortRadioDeviceID: 1}.Pack()
	require.NoError(t, err)
	require.NoError(t, decoder.DecodeAndRDCCheck(plcf.Type1, b))

	rx := &stubRxSynced{pcc: radio.PCCReport{PLCFDecoder: decoder}}

	// Exhaust the RX HARQ pool so GetProcess fails for every key.
	rxPool := harq.NewPool(1, 256)
	_, _, err = rxPool.GetProcess(harq.Key{PLCFType: plcf.Type1, NetworkID: 99, PacketSizes: 999})
	require.NoError(t, err)

	a := tpoint.NewAdapter(ft, rx, &stubTx{}, &stubBufferTxPool{}, nil, harq.NewPool(4, 256), rxPool, 1, nil)

	a.WorkSync(radio.SyncReport{FinePeakTime: 1_000})
	assert.Equal(t, 1, rx.pccCalls)
	assert.Equal(t, 0, rx.pdcCalls)
	assert.Equal(t, uint64(1), a.Stats().NoHarq)
}

func TestAdapter_WorkSync_SuccessfulPDCFinalizesHarqAndRecordsNoCrcFail(t *testing.T) {
	ft := newTestFT(t, nil)
	ft.WorkChannel(0, nil)

	decoder := plcf.NewDecoder(plcf.Limits{PacketLengthMax: 16, MCSIndexMax: 11, NSSMax: 4})
	b, err := plcf.Type1Format0{PacketLength: 1, ShortRadioDeviceID: 1}.Pack()
	require.NoError(t, err)
	require.NoError(t, decoder.DecodeAndRDCCheck(plcf.Type1, b))

	rx := &stubRxSynced{
		pcc: radio.PCCReport{PLCFDecoder: decoder},
		pdc: radio.PDCReport{CRCOK: true, MACPDU: []byte("payload")},
	}

	a := newTestAdapter(t, ft, rx, &stubTx{}, &stubBufferTxPool{}, nil)

	a.WorkSync(radio.SyncReport{FinePeakTime: 1_000})
	assert.Equal(t, 1, rx.pccCalls)
	assert.Equal(t, 1, rx.pdcCalls)
	assert.Equal(t, uint64(0), ft.Stats().PDCCrcFail)
}

func TestAdapter_WorkSync_PDCCrcFailureIsCounted(t *testing.T) {
	ft := newTestFT(t, nil)
	ft.WorkChannel(0, nil)

	decoder := plcf.NewDecoder(plcf.Limits{PacketLengthMax: 16, MCSIndexMax: 11, NSSMax: 4})
	b, err := plcf.Type1Format0{PacketLength: 1, ShortRadioDeviceID: 1}.Pack()
	require.NoError(t, err)
	require.NoError(t, decoder.DecodeAndRDCCheck(plcf.Type1, b))

	rx := &stubRxSynced{
		pcc: radio.PCCReport{PLCFDecoder: decoder},
		pdc: radio.PDCReport{CRCOK: false},
	}

	a := newTestAdapter(t, ft, rx, &stubTx{}, &stubBufferTxPool{}, nil)

	a.WorkSync(radio.SyncReport{FinePeakTime: 1_000})
	assert.Equal(t, uint64(1), ft.Stats().PDCCrcFail)
}

func TestAdapter_WorkStart_IssuesChannelScanRequestThenWorkChannelCompletesIt(t *testing.T) {
	ft := newTestFT(t, nil)
	chscan := &stubChScanner{}
	a := newTestAdapter(t, ft, &stubRxSynced{}, &stubTx{}, &stubBufferTxPool{}, chscan)

	a.WorkStart(500)
	require.Len(t, chscan.scans, 1)
	assert.Equal(t, tpoint.PhaseSteady, ft.Phase())
}

func TestAdapter_ProcessTX_DropsDescriptorWhenBufferPoolExhausted(t *testing.T) {
	ft := newTestFT(t, nil)
	ft.WorkChannel(0, nil) // enter PhaseSteady, schedule the first beacon

	tx := &stubTx{}
	txPool := &stubBufferTxPool{exhausted: true}
	a := newTestAdapter(t, ft, &stubRxSynced{}, tx, txPool, nil)

	a.WorkIrregular(irregular.Report{At: 0, Handle: 1})
	assert.Empty(t, tx.generated)
	assert.Equal(t, uint64(0), a.Stats().TXIssued)
}
