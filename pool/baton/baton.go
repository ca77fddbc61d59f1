// Package baton enforces at-most-one MAC-invoking worker thread at a
// time, passed around the worker pool in round-robin id order, plus a
// barrier for workers to rendezvous once per synchronization event.
//
// Grounded on lib/src/phy/pool/baton.cpp: register_and_wait_for_others_nto
// is a counting barrier releasing the caller holding id 0 to run a
// supplied callback once, wait_to/pass_on hand off an atomic id_holder in a
// ring of nof_workers, and is_sync_time_unique/is_job_regular_due are
// simple counters kept alongside the baton because they are consulted at
// the same synchronization points.
package baton

import (
	"sync"
	"sync/atomic"
	"time"
)

// DefaultWaitTimeout bounds how long WaitTo blocks before giving a caller
// the chance to check an external exit condition, matching the original's
// BATON_WAIT_TIMEOUT_MS role.
const DefaultWaitTimeout = 100 * time.Millisecond

// Baton coordinates nofWorkers worker goroutines so that exactly one of
// them at a time is permitted to invoke MAC callbacks, handed off in
// increasing id order (wrapping at nofWorkers).
type Baton struct {
	nofWorkers  uint32
	idHolder    atomic.Uint32
	waitTimeout time.Duration

	mu   sync.Mutex
	cond *sync.Cond

	registerMu      sync.Mutex
	registerCond    *sync.Cond
	registerCnt     uint32
	registerNow     int64
	registerGen     uint64
	registerResult  int64
	onAllRegistered func(now int64)

	syncTimeUniqueLimit int64
	syncTimeLast        int64

	rxJobRegularPeriod    uint32
	rxJobRegularPeriodCnt uint32
}

// New constructs a Baton for nofWorkers cooperating workers.
// syncTimeUniqueLimit bounds IsSyncTimeUnique's de-duplication window;
// rxJobRegularPeriod configures IsJobRegularDue (0 disables it).
func New(nofWorkers uint32, syncTimeUniqueLimit int64, rxJobRegularPeriod uint32) *Baton {
	b := &Baton{
		nofWorkers:          nofWorkers,
		waitTimeout:         DefaultWaitTimeout,
		syncTimeUniqueLimit: syncTimeUniqueLimit,
		syncTimeLast:        -syncTimeUniqueLimit - 1,
		rxJobRegularPeriod:  rxJobRegularPeriod,
	}
	b.cond = sync.NewCond(&b.mu)
	b.registerCond = sync.NewCond(&b.registerMu)
	return b
}

// SetOnAllRegistered installs the callback invoked, exactly once per
// rendezvous, by whichever goroutine is the last to call
// RegisterAndWaitForOthers. The callback runs under the baton's
// protection: no other registered goroutine proceeds until it returns.
func (b *Baton) SetOnAllRegistered(f func(now int64)) {
	b.onAllRegistered = f
}

// RegisterAndWaitForOthers blocks the caller until nofWorkers goroutines
// have called it for the current round, then returns the latest of the
// times observed across all of them. Exactly one caller per round (the
// one that completes the count) invokes the installed callback before any
// caller is released.
func (b *Baton) RegisterAndWaitForOthers(now int64) int64 {
	b.registerMu.Lock()
	defer b.registerMu.Unlock()

	gen := b.registerGen
	b.registerCnt++
	if b.registerNow < now {
		b.registerNow = now
	}

	if b.registerCnt == b.nofWorkers {
		if b.onAllRegistered != nil {
			b.onAllRegistered(b.registerNow)
		}
		b.registerResult = b.registerNow
		b.registerCnt = 0
		b.registerNow = 0
		b.registerGen++
		b.registerCond.Broadcast()
		return b.registerResult
	}

	for gen == b.registerGen {
		b.registerCond.Wait()
	}

	return b.registerResult
}

// IsIDHolderTheSame reports whether idCaller currently holds the baton.
func (b *Baton) IsIDHolderTheSame(idCaller uint32) bool {
	return b.idHolder.Load() == idCaller
}

// WaitTo blocks until idTarget holds the baton, waking periodically (every
// waitTimeout) to let the caller re-check external exit conditions.
// Returns false if it gave up due to timeout without the id ever matching
// within that wait; the caller must retry.
func (b *Baton) WaitTo(idTarget uint32) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	deadline := time.Now().Add(b.waitTimeout)
	for b.idHolder.Load() != idTarget {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return false
		}
		timer := time.AfterFunc(remaining, b.cond.Broadcast)
		b.cond.Wait()
		timer.Stop()
		if time.Now().After(deadline) {
			return b.idHolder.Load() == idTarget
		}
	}
	return true
}

// PassOn advances the baton from idCaller to the next id in the ring,
// waking any goroutine blocked in WaitTo.
func (b *Baton) PassOn(idCaller uint32) {
	b.mu.Lock()
	b.idHolder.Store((idCaller + 1) % b.nofWorkers)
	b.mu.Unlock()
	b.cond.Broadcast()
}

// IsSyncTimeUnique reports whether candidate is far enough past the last
// accepted sync time to be a new packet rather than a double detection,
// recording it as the new last accepted time if so.
func (b *Baton) IsSyncTimeUnique(candidate int64) bool {
	if candidate-b.syncTimeLast > b.syncTimeUniqueLimit {
		b.syncTimeLast = candidate
		return true
	}
	return false
}

// IsJobRegularDue increments an internal counter and reports true once
// every rxJobRegularPeriod calls, resetting afterward. Always false if
// rxJobRegularPeriod is 0.
func (b *Baton) IsJobRegularDue() bool {
	if b.rxJobRegularPeriod == 0 {
		return false
	}
	b.rxJobRegularPeriodCnt++
	if b.rxJobRegularPeriodCnt == b.rxJobRegularPeriod {
		b.rxJobRegularPeriodCnt = 0
		return true
	}
	return false
}
