package callback_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxpenner/dectnrp-core/callback"
)

func TestRun_FiresDueCallbacksAndReschedules(t *testing.T) {
	s := callback.New()

	var calls []int64
	_, err := s.Add(func(now int64) { calls = append(calls, now) }, 100, 50)
	require.NoError(t, err)

	s.Run(99)
	assert.Empty(t, calls)

	s.Run(100)
	assert.Equal(t, []int64{100}, calls)

	next, ok := s.NextTime()
	require.True(t, ok)
	assert.Equal(t, int64(150), next)
}

func TestRun_CatchesUpMultiplePeriodsInOneRun(t *testing.T) {
	s := callback.New()

	calls := 0
	_, err := s.Add(func(now int64) { calls++ }, 0, 10)
	require.NoError(t, err)

	s.Run(35)
	assert.Equal(t, 1, calls)

	next, ok := s.NextTime()
	require.True(t, ok)
	assert.Greater(t, next, int64(35))
	assert.Equal(t, int64(40), next)
}

func TestAdd_RejectsNonPositivePeriod(t *testing.T) {
	s := callback.New()
	_, err := s.Add(func(int64) {}, 0, 0)
	assert.ErrorIs(t, err, callback.ErrInvalidPeriod)
}

func TestAdd_RejectsBeyondCapacity(t *testing.T) {
	s := callback.New()
	for i := 0; i < callback.MaxCallbacks; i++ {
		_, err := s.Add(func(int64) {}, 0, 1)
		require.NoError(t, err)
	}
	_, err := s.Add(func(int64) {}, 0, 1)
	assert.ErrorIs(t, err, callback.ErrFull)
}

func TestAddRemove_RejectedFromInsideCallback(t *testing.T) {
	s := callback.New()

	var innerErr error
	_, err := s.Add(func(now int64) {
		_, innerErr = s.Add(func(int64) {}, 0, 1)
	}, 0, 10)
	require.NoError(t, err)

	s.Run(0)
	assert.ErrorIs(t, innerErr, callback.ErrMutationDuringRun)
}

func TestRemove_FreesSlotForReuse(t *testing.T) {
	s := callback.New()
	h, err := s.Add(func(int64) {}, 0, 1)
	require.NoError(t, err)

	require.NoError(t, s.Remove(h))
	assert.Equal(t, 0, s.Len())

	_, err = s.Add(func(int64) {}, 0, 1)
	require.NoError(t, err)
}
