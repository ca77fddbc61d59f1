package tpoint_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxpenner/dectnrp-core/contact"
	"github.com/maxpenner/dectnrp-core/tpoint"
)

func TestFT_WorkChannel_SchedulesFirstBeaconAndIgnoresWrongPhase(t *testing.T) {
	ft := newTestFT(t, nil)

	// A late/duplicate channel-scan completion outside PhaseResource must
	// be a no-op: this FT starts in PhaseResource already, so first move
	// it to PhaseSteady, then confirm a second WorkChannel call does
	// nothing.
	res := ft.WorkChannel(1_000_000, nil)
	assert.Equal(t, tpoint.PhaseSteady, ft.Phase())
	require.True(t, res.HasIrregular)
	assert.Equal(t, uint32(1), res.Irregular.Handle)
	assert.Greater(t, res.Irregular.At, int64(0))

	res2 := ft.WorkChannel(2_000_000, nil)
	assert.False(t, res2.HasIrregular)
}

func TestFT_WorkIrregular_BuildsBeaconAndReschedules(t *testing.T) {
	ft := newTestFT(t, nil)
	ft.WorkChannel(0, nil)

	res := ft.WorkIrregular(1, 995_000)
	require.Len(t, res.TX, 1)
	require.True(t, res.HasIrregular)
	assert.Equal(t, uint64(0), ft.Stats().NoHarq)
}

func TestFT_WorkIrregular_IgnoresWrongHandleOrPhase(t *testing.T) {
	ft := newTestFT(t, nil)
	// Still in PhaseResource: any irregular fire should be ignored.
	res := ft.WorkIrregular(1, 0)
	assert.Empty(t, res.TX)
	assert.False(t, res.HasIrregular)

	ft.WorkChannel(0, nil)
	res2 := ft.WorkIrregular(99, 0)
	assert.Empty(t, res2.TX)
	assert.False(t, res2.HasIrregular)
}

func TestFT_WorkApplication_QueuesWhenNoDLResourceConfigured(t *testing.T) {
	ft := newTestFT(t, nil)
	ft.WorkChannel(0, nil)

	// No downlink resource was ever added to this allocation, so no TX
	// opportunity is ever found and the payload stays queued.
	res := ft.WorkApplication(42, []byte("hello"))
	assert.Empty(t, res.TX)
}

func TestFT_WorkApplication_DeliversToKnownPeer(t *testing.T) {
	contacts := contact.New[tpoint.PeerState](4)
	require.NoError(t, contacts.Add(7, 3, 0, 0))

	ft2 := newTestFTWithContacts(t, contacts)
	ft2.WorkChannel(0, nil)

	// No beacon has gone out yet, so the allocation has no downlink
	// opportunity: the payload waits for the first beacon-prepare wake-up,
	// which sends the beacon and then the queued payload.
	queued := ft2.WorkApplication(7, []byte("hi"))
	assert.Empty(t, queued.TX)

	res := ft2.WorkIrregular(1, 0)
	require.Len(t, res.TX, 2)
	assert.Equal(t, uint32(7), res.TX[1].Descriptor.(tpoint.PacketPlan).TargetLongID)
	assert.Equal(t, uint64(0), ft2.Stats().NoHarq)
}

func TestFT_WorkPDC_CountsCRCFailure(t *testing.T) {
	ft := newTestFT(t, nil)
	ft.WorkPDC(syncReportAt(0), pdcReport(false))
	assert.Equal(t, uint64(1), ft.Stats().PDCCrcFail)
}

func TestFT_WorkStop_EntersDissociation(t *testing.T) {
	ft := newTestFT(t, nil)
	ft.WorkStop()
	assert.Equal(t, tpoint.PhaseDissociation, ft.Phase())
}
