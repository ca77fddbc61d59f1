// Package worker runs the per-thread job dispatch loop: pop a Job, hold
// the baton in FIFO order of its counter, invoke the matching firmware
// callback, release the baton, then hand any irregular wake-up request
// the callback produced to the shared irregular queue.
//
// Grounded on lib/src/phy/pool/worker_tx_rx.cpp's work() loop: the
// TOKEN_LOCK_FIFO_OR_RETURN / token->unlock_fifo() bracket around each
// firmware dispatch is reproduced here as baton.WaitTo(fifoCnt-derived
// id) / PassOn, and the poll-with-timeout outer loop checking
// keep_running is reproduced with job.Queue.WaitForNewJobTo. Dispatch
// latency is timed against the same CLOCK_MONOTONIC_RAW source the
// original's get_rx_time_passed reads, via radio.ClockGettimeNanos.
package worker

import (
	"sync/atomic"
	"time"

	"github.com/maxpenner/dectnrp-core/pool/irregular"
	"github.com/maxpenner/dectnrp-core/pool/job"
	"github.com/maxpenner/dectnrp-core/radio"
)

// PollPeriod bounds how long the dispatch loop waits for a new job before
// re-checking KeepRunning.
const PollPeriod = 100 * time.Millisecond

// Result is what a firmware callback hands back to the worker: any
// transmit work has already been issued by the firmware itself (out of
// this package's scope), and this package is only responsible for
// forwarding an irregular wake-up request, if any, to the shared queue.
type Result struct {
	Irregular    irregular.Report
	HasIrregular bool
}

// Firmware is the set of callbacks a worker dispatches jobs to, matching
// the job Kinds exhaustively.
type Firmware interface {
	WorkRegular(payload any) Result
	WorkIrregular(payload any) Result
	WorkSync(payload any) Result
	WorkAppReport(payload any) Result
}

// Worker drains one job.Queue, serializing firmware invocation against
// sibling workers via a shared baton keyed by FIFO counter.
type Worker struct {
	ID          uint32
	queue       *job.Queue
	irregularQ  *irregular.Queue
	firmware    Firmware
	keepRunning atomic.Bool

	metrics *Metrics
	stats   Stats
}

// SetMetrics attaches Prometheus instrumentation; nil disables it. Not
// safe to call concurrently with Run/RunWithBaton.
func (w *Worker) SetMetrics(m *Metrics) {
	w.metrics = m
}

// Stats counts dispatched jobs per kind, mirroring the original's
// report_stop() counters.
type Stats struct {
	WorkRegular   uint64
	WorkIrregular uint64
	WorkSync      uint64
	WorkAppReport uint64
}

// New constructs a Worker. The caller starts it by calling Run in its own
// goroutine and stops it by calling Stop.
func New(id uint32, queue *job.Queue, irregularQ *irregular.Queue, firmware Firmware) *Worker {
	w := &Worker{ID: id, queue: queue, irregularQ: irregularQ, firmware: firmware}
	w.keepRunning.Store(true)
	return w
}

// Stop requests the dispatch loop to exit after draining any
// already-queued job wait.
func (w *Worker) Stop() {
	w.keepRunning.Store(false)
}

// Run drains jobs until Stop is called. dispatch performs the actual
// per-kind firmware call; callers needing FIFO ordering against sibling
// workers pass a lockFIFO/unlockFIFO pair bracketing each dispatch (see
// RunWithBaton).
func (w *Worker) Run() {
	for w.keepRunning.Load() {
		j, ok := w.queue.WaitForNewJobTo(PollPeriod)
		if !ok {
			continue
		}
		w.dispatch(j)
	}
}

// RunWithBaton drains jobs until Stop is called, bracketing each firmware
// dispatch with lockFIFO(j.FIFOCnt) / unlockFIFO() so that sibling workers
// invoke their own firmware callbacks in strict FIFO order of the jobs'
// counters, regardless of which worker happened to dequeue which job.
// lockFIFO must retry internally (typically baton.WaitTo in a loop)
// honoring KeepRunning so that RunWithBaton can exit promptly on Stop.
func (w *Worker) RunWithBaton(lockFIFO func(fifoCnt uint64) bool, unlockFIFO func()) {
	for w.keepRunning.Load() {
		j, ok := w.queue.WaitForNewJobTo(PollPeriod)
		if !ok {
			continue
		}
		if !lockFIFO(j.FIFOCnt) {
			if !w.keepRunning.Load() {
				return
			}
			continue
		}
		result := w.dispatchLocked(j)
		unlockFIFO()
		w.forward(result)
	}
}

func (w *Worker) dispatch(j job.Job) {
	result := w.dispatchLocked(j)
	w.forward(result)
}

// monotonicNanos reads CLOCK_MONOTONIC_RAW via radio.ClockGettimeNanos,
// falling back to the wall clock if the syscall is unavailable (e.g. on a
// non-Linux build host running tests).
func monotonicNanos() int64 {
	if t, err := radio.ClockGettimeNanos(); err == nil {
		return t
	}
	return time.Now().UnixNano()
}

func (w *Worker) dispatchLocked(j job.Job) Result {
	startNanos := monotonicNanos()

	var kind string
	var result Result
	switch j.Kind {
	case job.KindRegular:
		w.stats.WorkRegular++
		kind = "regular"
		result = w.firmware.WorkRegular(j.Payload)
	case job.KindIrregular:
		w.stats.WorkIrregular++
		kind = "irregular"
		result = w.firmware.WorkIrregular(j.Payload)
	case job.KindSync:
		w.stats.WorkSync++
		kind = "sync"
		result = w.firmware.WorkSync(j.Payload)
	case job.KindAppReport:
		w.stats.WorkAppReport++
		kind = "app_report"
		result = w.firmware.WorkAppReport(j.Payload)
	default:
		return Result{}
	}

	w.metrics.observe(kind, float64(monotonicNanos()-startNanos)/1e9)
	return result
}

func (w *Worker) forward(result Result) {
	if result.HasIrregular && w.irregularQ != nil {
		_ = w.irregularQ.Push(result.Irregular)
	}
}

// Stats returns a snapshot of per-kind dispatch counters.
func (w *Worker) Stats() Stats {
	return w.stats
}
