package irregular_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxpenner/dectnrp-core/pool/irregular"
)

func TestPush_TracksEarliestNextTime(t *testing.T) {
	q := irregular.New()
	assert.Equal(t, irregular.Undefined, q.GetNextTime())

	require.NoError(t, q.Push(irregular.Report{At: 500, Handle: 1}))
	require.NoError(t, q.Push(irregular.Report{At: 100, Handle: 2}))
	require.NoError(t, q.Push(irregular.Report{At: 900, Handle: 3}))

	assert.Equal(t, int64(100), q.GetNextTime())
}

func TestPop_ReturnsEarliestAndAdvancesNext(t *testing.T) {
	q := irregular.New()
	require.NoError(t, q.Push(irregular.Report{At: 500, Handle: 1}))
	require.NoError(t, q.Push(irregular.Report{At: 100, Handle: 2}))

	r := q.Pop()
	assert.Equal(t, int64(100), r.At)
	assert.Equal(t, uint32(2), r.Handle)

	assert.Equal(t, int64(500), q.GetNextTime())

	r = q.Pop()
	assert.Equal(t, uint32(1), r.Handle)
	assert.Equal(t, irregular.Undefined, q.GetNextTime())
}

func TestPush_FailsWhenFull(t *testing.T) {
	q := irregular.New()
	for i := 0; i < irregular.Capacity; i++ {
		require.NoError(t, q.Push(irregular.Report{At: int64(i), Handle: uint32(i)}))
	}

	err := q.Push(irregular.Report{At: 999, Handle: 99})
	assert.Error(t, err)
}

func TestPop_FreesSlotForReuse(t *testing.T) {
	q := irregular.New()
	for i := 0; i < irregular.Capacity; i++ {
		require.NoError(t, q.Push(irregular.Report{At: int64(i), Handle: uint32(i)}))
	}

	_ = q.Pop()
	require.NoError(t, q.Push(irregular.Report{At: 999, Handle: 99}))
}
