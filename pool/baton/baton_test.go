package baton_test

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/maxpenner/dectnrp-core/pool/baton"
)

func TestWaitToPassOn_EnforcesRoundRobinOrder(t *testing.T) {
	b := baton.New(3, 1000, 0)

	var order []uint32
	var mu sync.Mutex
	var wg sync.WaitGroup

	for id := uint32(0); id < 3; id++ {
		wg.Add(1)
		go func(id uint32) {
			defer wg.Done()
			ok := b.WaitTo(id)
			assert.True(t, ok)
			mu.Lock()
			order = append(order, id)
			mu.Unlock()
			b.PassOn(id)
		}(id)
	}

	wg.Wait()
	assert.Equal(t, []uint32{0, 1, 2}, order)
	assert.True(t, b.IsIDHolderTheSame(0))
}

func TestRegisterAndWaitForOthers_RunsCallbackOnceAndReleasesAll(t *testing.T) {
	b := baton.New(4, 1000, 0)

	var calls int32
	b.SetOnAllRegistered(func(now int64) {
		atomic.AddInt32(&calls, 1)
	})

	var wg sync.WaitGroup
	results := make([]int64, 4)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = b.RegisterAndWaitForOthers(int64(i * 10))
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	for _, r := range results {
		assert.Equal(t, int64(30), r)
	}
}

func TestIsSyncTimeUnique_RejectsCloseDuplicates(t *testing.T) {
	b := baton.New(1, 1000, 0)

	assert.True(t, b.IsSyncTimeUnique(0))
	assert.False(t, b.IsSyncTimeUnique(500))
	assert.True(t, b.IsSyncTimeUnique(1001))
}

func TestIsJobRegularDue_FiresEveryPeriod(t *testing.T) {
	b := baton.New(1, 1000, 3)

	assert.False(t, b.IsJobRegularDue())
	assert.False(t, b.IsJobRegularDue())
	assert.True(t, b.IsJobRegularDue())
	assert.False(t, b.IsJobRegularDue())
}

func TestIsJobRegularDue_DisabledWhenPeriodZero(t *testing.T) {
	b := baton.New(1, 1000, 0)
	for i := 0; i < 10; i++ {
		assert.False(t, b.IsJobRegularDue())
	}
}

func TestWaitTo_TimesOutWithoutMatchingID(t *testing.T) {
	b := baton.New(2, 1000, 0)
	// id_holder starts at 0; waiting for id 1 must eventually time out
	// and return false since nobody ever calls PassOn.
	start := time.Now()
	ok := b.WaitTo(1)
	assert.False(t, ok)
	assert.GreaterOrEqual(t, time.Since(start), baton.DefaultWaitTimeout)
}
