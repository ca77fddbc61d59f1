package tpoint_test

import (
	"testing"

	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
	"github.com/stretchr/testify/require"

	"github.com/maxpenner/dectnrp-core/alloc"
	"github.com/maxpenner/dectnrp-core/contact"
	"github.com/maxpenner/dectnrp-core/cqi"
	"github.com/maxpenner/dectnrp-core/dectime"
	"github.com/maxpenner/dectnrp-core/harq"
	"github.com/maxpenner/dectnrp-core/pll"
	"github.com/maxpenner/dectnrp-core/ppx"
	"github.com/maxpenner/dectnrp-core/radio"
	"github.com/maxpenner/dectnrp-core/tpoint"
)

func newTestLUT(t *testing.T) *dectime.LUT {
	t.Helper()
	lut, err := dectime.NewLUT(960_000)
	require.NoError(t, err)
	return lut
}

func newTestAlloc(t *testing.T, lut *dectime.LUT) *alloc.Allocation {
	t.Helper()
	return alloc.New(
		lut,
		lut.Duration(dectime.UnitMillisecond, 10),
		lut.Duration(dectime.UnitMillisecond, 0),
		lut.Duration(dectime.UnitMillisecond, 0),
		0,
	)
}

func newTestPLL(t *testing.T, lut *dectime.LUT) *pll.PLL {
	t.Helper()
	return pll.New(lut, lut.Duration(dectime.UnitMillisecond, 10))
}

func newTestPPX(t *testing.T, lut *dectime.LUT) *ppx.PPX {
	t.Helper()
	p, err := ppx.New(
		lut.Duration(dectime.UnitMillisecond, 100),
		lut.Duration(dectime.UnitMillisecond, 1),
		lut.Duration(dectime.UnitMillisecond, 0),
		lut.Duration(dectime.UnitMillisecond, 10),
		lut.Duration(dectime.UnitMillisecond, 1),
	)
	require.NoError(t, err)
	return p
}

func newTestCQI(t *testing.T) *cqi.LUT {
	t.Helper()
	l, err := cqi.New(0, 11, 0)
	require.NoError(t, err)
	return l
}

func newTestFT(t *testing.T, leave tpoint.LeaveCallback) *tpoint.FT {
	t.Helper()
	lut := newTestLUT(t)
	return tpoint.NewFT(
		lut,
		newTestAlloc(t, lut),
		newTestPLL(t, lut),
		newTestCQI(t),
		contact.New[tpoint.PeerState](4),
		harq.NewPool(4, 256),
		1, 1,
		s2.LatLng{Lat: s1.Angle(0), Lng: s1.Angle(0)},
		lut.Duration(dectime.UnitMillisecond, 5),
		leave,
		nil,
	)
}

// newTestFTWithContacts builds a FT whose allocation carries one downlink
// resource, so a payload queued by WorkApplication finds a TX opportunity
// against the supplied contact list once a beacon has gone out.
func newTestFTWithContacts(t *testing.T, contacts *contact.List[tpoint.PeerState]) *tpoint.FT {
	t.Helper()
	lut := newTestLUT(t)
	a := newTestAlloc(t, lut)
	require.NoError(t, a.AddResource(alloc.DirectionDL, alloc.Resource{Offset: 1_000, Length: 500}))
	return tpoint.NewFT(
		lut,
		a,
		newTestPLL(t, lut),
		newTestCQI(t),
		contacts,
		harq.NewPool(4, 256),
		1, 1,
		s2.LatLng{Lat: s1.Angle(0), Lng: s1.Angle(0)},
		lut.Duration(dectime.UnitMillisecond, 5),
		nil,
		nil,
	)
}

func newTestPT(t *testing.T, leave tpoint.LeaveCallback) *tpoint.PT {
	t.Helper()
	lut := newTestLUT(t)
	return tpoint.NewPT(
		lut,
		newTestAlloc(t, lut),
		newTestPLL(t, lut),
		newTestPPX(t, lut),
		newTestCQI(t),
		harq.NewPool(4, 256),
		2, 1, 1,
		leave,
		nil,
	)
}

func syncReportAt(finePeakTime int64) radio.SyncReport {
	return radio.SyncReport{FinePeakTime: finePeakTime}
}

func pdcReport(crcOK bool) radio.PDCReport {
	return radio.PDCReport{CRCOK: crcOK}
}

func pccReport() radio.PCCReport {
	return radio.PCCReport{}
}

// newTestPTWithULResource builds a PT whose allocation carries one uplink
// resource, so WorkApplication can find a TX opportunity immediately.
func newTestPTWithULResource(t *testing.T) *tpoint.PT {
	t.Helper()
	lut := newTestLUT(t)
	a := newTestAlloc(t, lut)
	require.NoError(t, a.AddResource(alloc.DirectionUL, alloc.Resource{Offset: 1_000, Length: 500}))
	return tpoint.NewPT(
		lut,
		a,
		newTestPLL(t, lut),
		newTestPPX(t, lut),
		newTestCQI(t),
		harq.NewPool(4, 256),
		2, 1, 1,
		nil,
		nil,
	)
}
