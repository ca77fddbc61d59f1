package tpoint_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxpenner/dectnrp-core/plcf"
	"github.com/maxpenner/dectnrp-core/radio"
	"github.com/maxpenner/dectnrp-core/tpoint"
)

func TestPT_WorkPCC_AssociatesOnFirstValidPLCF(t *testing.T) {
	pt := newTestPT(t, nil)
	pt.WorkStart(0)

	res := pt.WorkPCC(syncReportAt(1_000), pccReport(), plcf.Info{}, true)
	assert.Equal(t, tpoint.PhaseSteady, pt.Phase())
	assert.Empty(t, res.TX)
}

func TestPT_WorkPCC_AbsentPLCFDoesNotAssociate(t *testing.T) {
	pt := newTestPT(t, nil)
	pt.WorkStart(0)

	pt.WorkPCC(syncReportAt(1_000), pccReport(), plcf.Info{}, false)
	assert.Equal(t, tpoint.PhaseAssociation, pt.Phase())
	assert.Equal(t, uint64(1), pt.Stats().PLCFAbsent)
}

func TestPT_WorkPCC_SteadyReconcilesPLLAndPPX(t *testing.T) {
	pt := newTestPT(t, nil)
	pt.WorkStart(0)
	pt.WorkPCC(syncReportAt(1_000), pccReport(), plcf.Info{}, true)
	require.Equal(t, tpoint.PhaseSteady, pt.Phase())

	// A second beacon 10ms (9_600 samples) later (one beacon period,
	// matching newTestPPX's configured beacon period) should reconcile
	// cleanly and stay in Steady.
	pt.WorkPCC(syncReportAt(1_000+9_600), pccReport(), plcf.Info{}, true)
	assert.Equal(t, tpoint.PhaseSteady, pt.Phase())
}

func TestPT_WorkPCC_DegradesToAssociationOnSyncLoss(t *testing.T) {
	pt := newTestPT(t, nil)
	pt.WorkStart(0)
	pt.WorkPCC(syncReportAt(1_000), pccReport(), plcf.Info{}, true)
	require.Equal(t, tpoint.PhaseSteady, pt.Phase())

	// A beacon arriving far outside the configured deviation window must
	// degrade the link back to PhaseAssociation rather than panicking.
	pt.WorkPCC(syncReportAt(50_000_000), pccReport(), plcf.Info{}, true)
	assert.Equal(t, tpoint.PhaseAssociation, pt.Phase())
}

func TestPT_WorkPDC_SelectsMCSFromSNR(t *testing.T) {
	pt := newTestPT(t, nil)
	pt.WorkStart(0)
	pt.WorkPCC(syncReportAt(0), pccReport(), plcf.Info{}, true)

	pt.WorkPDC(syncReportAt(0), radio.PDCReport{CRCOK: true, SNRdB: 30})
	res := pt.WorkApplication(1, []byte("x"))
	assert.Empty(t, res.TX) // no UL resource configured, stays queued

	// With an uplink resource the selected MCS shows up in the uplink PLCF:
	// 30 dB meets the table's top entry, MCS 11.
	pt2 := newTestPTWithULResource(t)
	pt2.WorkStart(0)
	pt2.WorkPCC(syncReportAt(0), pccReport(), plcf.Info{}, true)

	pt2.WorkPDC(syncReportAt(0), radio.PDCReport{CRCOK: true, SNRdB: 30})
	res2 := pt2.WorkApplication(1, []byte("x"))
	require.Len(t, res2.TX, 1)
	unpacked, err := plcf.UnpackType2Format1(res2.TX[0].Descriptor.(tpoint.PacketPlan).PLCFBytes)
	require.NoError(t, err)
	assert.Equal(t, uint32(11), unpacked.DFMCS)
}

func TestPT_WorkPDC_RecordsCRCFailure(t *testing.T) {
	pt := newTestPT(t, nil)
	pt.WorkPDCError(syncReportAt(0))
	assert.Equal(t, uint64(1), pt.Stats().PDCCrcFail)
}

func TestPT_WorkApplication_TransmitsWhenULOpportunityExists(t *testing.T) {
	pt := newTestPTWithULResource(t)
	pt.WorkStart(0)
	pt.WorkPCC(syncReportAt(0), pccReport(), plcf.Info{}, true)

	res := pt.WorkApplication(1, []byte("payload"))
	require.Len(t, res.TX, 1)
	assert.Equal(t, uint64(0), pt.Stats().NoHarq)
}

func TestPT_FeedbackFormatRotatesAcrossTransmissions(t *testing.T) {
	pt := newTestPTWithULResource(t)
	pt.WorkStart(0)
	pt.WorkPCC(syncReportAt(0), pccReport(), plcf.Info{}, true)

	res1 := pt.WorkApplication(1, []byte("a"))
	require.Len(t, res1.TX, 1)
	res2 := pt.WorkApplication(1, []byte("b"))
	require.Len(t, res2.TX, 1)

	pp1 := res1.TX[0].Descriptor.(tpoint.PacketPlan)
	pp2 := res2.TX[0].Descriptor.(tpoint.PacketPlan)
	unpacked1, err := plcf.UnpackType2Format1(pp1.PLCFBytes)
	require.NoError(t, err)
	unpacked2, err := plcf.UnpackType2Format1(pp2.PLCFBytes)
	require.NoError(t, err)

	assert.Equal(t, plcf.FeedbackFormat4, unpacked1.Feedback)
	assert.Equal(t, plcf.FeedbackFormat5, unpacked2.Feedback)
}

func TestPT_WorkStop_EntersDissociation(t *testing.T) {
	pt := newTestPT(t, nil)
	pt.WorkStop()
	assert.Equal(t, tpoint.PhaseDissociation, pt.Phase())
}
