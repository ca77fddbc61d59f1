package cqi_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxpenner/dectnrp-core/cqi"
)

func TestNew_RejectsInvalidRange(t *testing.T) {
	_, err := cqi.New(5, 2, 0)
	require.ErrorIs(t, err, cqi.ErrInvalidRange)

	_, err = cqi.New(0, cqi.MaxMCS+1, 0)
	require.ErrorIs(t, err, cqi.ErrInvalidRange)
}

func TestGetHighestMCSPossible_FullRange(t *testing.T) {
	l, err := cqi.New(0, cqi.MaxMCS, 0)
	require.NoError(t, err)

	assert.Equal(t, 11, l.GetHighestMCSPossible(30))
	assert.Equal(t, 10, l.GetHighestMCSPossible(29.9))
	assert.Equal(t, 0, l.GetHighestMCSPossible(-1))
	assert.Equal(t, -1, l.GetHighestMCSPossible(-2))
}

func TestGetHighestMCSPossible_RestrictedRangeAndOffset(t *testing.T) {
	l, err := cqi.New(2, 7, 3.0)
	require.NoError(t, err)

	// SNR 10dB, offset 3dB -> effective 7dB; required[3]=7 <= 7 qualifies,
	// and it's the highest such MCS at or below 7dB effective.
	assert.Equal(t, 3, l.GetHighestMCSPossible(10))

	// Never returns above max even if SNR would permit a higher MCS.
	assert.Equal(t, 7, l.GetHighestMCSPossible(100))
}

func TestClampMCS(t *testing.T) {
	l, err := cqi.New(2, 7, 0)
	require.NoError(t, err)

	assert.Equal(t, 2, l.ClampMCS(0))
	assert.Equal(t, 7, l.ClampMCS(11))
	assert.Equal(t, 5, l.ClampMCS(5))
}
