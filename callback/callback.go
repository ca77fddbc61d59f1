// Package callback is a fixed-capacity scheduler of periodic callbacks,
// each due no earlier than a next-call time and rescheduled by a fixed
// period every time it fires.
//
// Grounded on lib/include/dectnrp/common/adt/callbacks.hpp's
// callbacks_t<R, Args...>: a fixed std::array<callback_entry_t,
// limits::max_callbacks> scanned for the first free slot on add_callback
// and for the earliest next-call time on run, guarded against mutation
// from inside a firing callback via an is_in_callback flag. Capacity is
// bounded at MaxCallbacks so that O(N) scan is cheap; firmware only ever
// tracks a handful of regular housekeeping ticks per instance (see
// tpoint.FT/PT's stats-log callback), never an unbounded set.
package callback

import "errors"

// MaxCallbacks bounds how many callbacks may be registered at once.
const MaxCallbacks = 4

// ErrFull is returned by Add when MaxCallbacks are already registered.
var ErrFull = errors.New("callback: scheduler full")

// ErrMutationDuringRun is returned by Add/Remove when called from inside
// a callback invoked by Run.
var ErrMutationDuringRun = errors.New("callback: cannot mutate scheduler from inside a callback")

// ErrInvalidPeriod is returned by Add when period is not positive.
var ErrInvalidPeriod = errors.New("callback: period must be positive")

type entry struct {
	fn       func(now int64)
	nextTime int64
	period   int64
	active   bool
}

// Scheduler holds up to MaxCallbacks periodic callbacks.
type Scheduler struct {
	entries [MaxCallbacks]entry
	inRun   bool
}

// New constructs an empty Scheduler.
func New() *Scheduler {
	return &Scheduler{}
}

// Add registers fn to first fire at nextTime and then every period
// thereafter. Returns a handle usable with Remove, or an error if the
// scheduler is full, period is not positive, or Add is called from
// inside a running callback.
func (s *Scheduler) Add(fn func(now int64), nextTime, period int64) (int, error) {
	if s.inRun {
		return -1, ErrMutationDuringRun
	}
	if period <= 0 {
		return -1, ErrInvalidPeriod
	}
	for i := range s.entries {
		if !s.entries[i].active {
			s.entries[i] = entry{fn: fn, nextTime: nextTime, period: period, active: true}
			return i, nil
		}
	}
	return -1, ErrFull
}

// Remove unregisters the callback at handle. Returns an error if called
// from inside a running callback.
func (s *Scheduler) Remove(handle int) error {
	if s.inRun {
		return ErrMutationDuringRun
	}
	if handle < 0 || handle >= MaxCallbacks {
		return nil
	}
	s.entries[handle] = entry{}
	return nil
}

// Run invokes every callback whose next-call time is at or before now,
// advancing each invoked callback's next-call time by its period
// (possibly by multiple periods if now has advanced far past next_time).
// Callbacks may not call Add/Remove on this Scheduler while Run is
// executing; doing so returns ErrMutationDuringRun from that call.
func (s *Scheduler) Run(now int64) {
	s.inRun = true
	defer func() { s.inRun = false }()

	for i := range s.entries {
		e := &s.entries[i]
		if !e.active {
			continue
		}
		if e.nextTime > now {
			continue
		}
		fn := e.fn
		fn(now)
		for e.nextTime <= now {
			e.nextTime += e.period
		}
	}
}

// NextTime returns the earliest next-call time among active callbacks,
// and false if none are registered.
func (s *Scheduler) NextTime() (int64, bool) {
	found := false
	var earliest int64
	for i := range s.entries {
		e := &s.entries[i]
		if !e.active {
			continue
		}
		if !found || e.nextTime < earliest {
			earliest = e.nextTime
			found = true
		}
	}
	return earliest, found
}

// Len returns the number of currently registered callbacks.
func (s *Scheduler) Len() int {
	n := 0
	for i := range s.entries {
		if s.entries[i].active {
			n++
		}
	}
	return n
}
