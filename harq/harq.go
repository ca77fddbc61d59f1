// Package harq pools fixed-size TX/RX soft-buffer entries keyed by
// (PLCF-type, network-id, packet-sizes), handed out to at most one caller
// at a time and released by either discarding or retaining state for
// retransmission.
//
// Grounded on lib/src/phy/harq/buffer_tx.cpp: each entry owns byte buffers
// sized for the worst-case PLCF (plcf.Type2Len) and a caller-supplied
// worst-case transport block, plus a codeblock count used to scope the
// soft-buffer reset on reuse.
package harq

import (
	"errors"

	"github.com/rs/xid"

	"github.com/maxpenner/dectnrp-core/plcf"
)

// FinalizePolicy selects what happens to an entry's soft-buffer state when
// its owner is done with it.
type FinalizePolicy int

const (
	// ResetAndTerminate discards the entry's state entirely; the next
	// acquisition starts from a clean soft-buffer.
	ResetAndTerminate FinalizePolicy = iota
	// KeepRunning retains the soft-buffer so a subsequent retransmission
	// can continue combining codeblocks.
	KeepRunning
)

// Key identifies which logical HARQ process an entry is currently bound
// to. Two concurrent requests with the same key must never both succeed.
type Key struct {
	PLCFType    uint32
	NetworkID   uint32
	PacketSizes uint32 // N_TB byte count this process was reserved for
}

// Entry is one arena slot: a PLCF byte buffer, a transport-block byte
// buffer, and a count of codeblocks currently in use. Handle is a
// compact, sortable, globally unique id stamped once at construction and
// carried through telemetry so that a process's buffer activity can be
// correlated across log lines independent of its arena index, which is
// reused across unrelated processes over the pool's lifetime.
type Entry struct {
	PLCF   []byte
	TB     []byte
	Handle xid.ID

	nofCodeblocks uint32
	status        entryStatus
	key           Key
}

type entryStatus int

const (
	statusFree entryStatus = iota
	statusInUse
	// statusReserved holds a KeepRunning entry's soft-buffer content and
	// key binding between finalization and the retransmission's
	// GetProcess call, without counting against the free pool.
	statusReserved
)

func newEntry(tbByteMax uint32) *Entry {
	return &Entry{
		PLCF:   make([]byte, plcf.Type2Len),
		TB:     make([]byte, tbByteMax),
		Handle: xid.New(),
	}
}

func (e *Entry) reset() {
	e.nofCodeblocks = 0
	for i := range e.PLCF {
		e.PLCF[i] = 0
	}
	for i := range e.TB {
		e.TB[i] = 0
	}
}

// SetCodeblockCount records how many codeblocks this entry currently
// holds, scoping a future ResetAndTerminate's buffer clear.
func (e *Entry) SetCodeblockCount(n uint32) {
	e.nofCodeblocks = n
}

// ErrPoolExhausted is returned when no free entry with the requested key
// is available.
var ErrPoolExhausted = errors.New("harq: pool exhausted")

// Pool is a fixed-size arena of N entries, each tracked in-use via a
// bound Key. There is no implicit eviction: an entry stays bound until
// explicitly finalized.
type Pool struct {
	entries []*Entry
}

// NewPool constructs a pool of n entries, each sized for tbByteMax
// transport-block bytes.
func NewPool(n int, tbByteMax uint32) *Pool {
	p := &Pool{entries: make([]*Entry, n)}
	for i := range p.entries {
		p.entries[i] = newEntry(tbByteMax)
	}
	return p
}

// GetProcess returns an entry bound to key: a reserved entry carrying that
// exact key (a retransmission resuming its soft-buffer) takes priority
// over allocating a fresh free entry. Returns ErrPoolExhausted if neither
// exists. The returned index is the handle passed to Finalize.
func (p *Pool) GetProcess(key Key) (int, *Entry, error) {
	for i, e := range p.entries {
		if e.status == statusReserved && e.key == key {
			e.status = statusInUse
			return i, e, nil
		}
	}
	for i, e := range p.entries {
		if e.status == statusFree {
			e.status = statusInUse
			e.key = key
			return i, e, nil
		}
	}
	return -1, nil, ErrPoolExhausted
}

// Finalize releases the entry at idx according to policy.
// ResetAndTerminate clears its buffers, codeblock count, and key binding,
// freeing the slot for any future key; KeepRunning retains the soft-buffer
// and key binding so the same key's next GetProcess call resumes this
// entry.
func (p *Pool) Finalize(idx int, policy FinalizePolicy) {
	e := p.entries[idx]
	if policy == ResetAndTerminate {
		e.reset()
		e.key = Key{}
		e.status = statusFree
		return
	}
	e.status = statusReserved
}

// Len returns the number of entries in the arena.
func (p *Pool) Len() int {
	return len(p.entries)
}

// InUseCount returns how many entries are currently checked out via
// GetProcess.
func (p *Pool) InUseCount() int {
	n := 0
	for _, e := range p.entries {
		if e.status == statusInUse {
			n++
		}
	}
	return n
}
