package job_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxpenner/dectnrp-core/pool/job"
)

func TestPushWaitForNewJobTo_DeliversInFIFOOrder(t *testing.T) {
	q := job.NewQueue(4)

	q.Push(job.Job{Kind: job.KindRegular, FIFOCnt: 1})
	q.Push(job.Job{Kind: job.KindIrregular, FIFOCnt: 2})

	j1, ok := q.WaitForNewJobTo(50 * time.Millisecond)
	require.True(t, ok)
	assert.Equal(t, uint64(1), j1.FIFOCnt)

	j2, ok := q.WaitForNewJobTo(50 * time.Millisecond)
	require.True(t, ok)
	assert.Equal(t, uint64(2), j2.FIFOCnt)
}

func TestWaitForNewJobTo_TimesOutOnEmptyQueue(t *testing.T) {
	q := job.NewQueue(1)

	_, ok := q.WaitForNewJobTo(10 * time.Millisecond)
	assert.False(t, ok)
}
