// Package job defines the tagged-variant work items dispatched to worker
// goroutines and a blocking, multi-producer/single-consumer queue of them,
// each carrying a monotonically increasing FIFO counter.
//
// Grounded on lib/src/phy/pool/worker_tx_rx.cpp's job dispatch loop (a
// std::variant matched exhaustively inside work()), translated to Go's
// idiomatic equivalent: a Kind tag plus a single payload field of
// interface type, rather than a tagged union.
package job

import "time"

// Kind tags which payload a Job carries.
type Kind int

const (
	KindRegular Kind = iota
	KindIrregular
	KindSync
	KindAppReport
)

// Job is one unit of work handed to a worker, tagged by Kind with a
// FIFO counter establishing the order in which MAC callbacks produced
// from synchronizer-originated jobs must be invoked.
type Job struct {
	Kind    Kind
	FIFOCnt uint64
	Payload any
}

// Queue is a bounded, blocking FIFO of Jobs. Multiple producers may push
// concurrently; a single worker goroutine pops in a loop bounded by a
// poll timeout so it can periodically re-check an external
// keep-running flag.
type Queue struct {
	ch chan Job
}

// NewQueue constructs a Queue buffering up to capacity pending jobs.
func NewQueue(capacity int) *Queue {
	return &Queue{ch: make(chan Job, capacity)}
}

// Push enqueues job. Blocks if the queue is at capacity.
func (q *Queue) Push(j Job) {
	q.ch <- j
}

// WaitForNewJobTo blocks up to timeout for a job to arrive. Returns the
// job and true if one arrived, or the zero Job and false on timeout.
func (q *Queue) WaitForNewJobTo(timeout time.Duration) (Job, bool) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case j := <-q.ch:
		return j, true
	case <-timer.C:
		return Job{}, false
	}
}

// Len returns the number of jobs currently buffered.
func (q *Queue) Len() int {
	return len(q.ch)
}
