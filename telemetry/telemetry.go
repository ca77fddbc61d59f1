// Package telemetry appends optional JSONL diagnostic records to a file:
// one JSON object per line, carrying a worker id, time since epoch, and
// per-layer diagnostic fields (sync, PHY, MAC, PLCF).
//
// Grounded on the teacher's tq.go/xmit.go use of
// github.com/lestrrat-go/strftime for a per-record timestamp string, and
// on runZeroInc-sockstats's per-record correlation-id tagging for the
// use of github.com/rs/xid here to give each telemetry session a
// sortable external handle.
package telemetry

import (
	"bufio"
	"encoding/json"
	"os"
	"sync"
	"time"

	"github.com/lestrrat-go/strftime"
	"github.com/rs/xid"
)

// TimestampLayout is the strftime format applied to every record's
// human-readable timestamp field.
const TimestampLayout = "%Y-%m-%dT%H:%M:%S"

// Record is one diagnostic line. Sync/PHY/MAC/PLCF are left as opaque
// maps so each layer can attach whatever fields are relevant to the
// event being recorded without this package knowing their shape.
type Record struct {
	Session       string         `json:"session"`
	WorkerID      uint32         `json:"worker_id"`
	TimeSinceEpoch int64         `json:"time_since_epoch_ns"`
	Timestamp     string         `json:"timestamp"`
	Sync          map[string]any `json:"sync,omitempty"`
	PHY           map[string]any `json:"phy,omitempty"`
	MAC           map[string]any `json:"mac,omitempty"`
	PLCF          map[string]any `json:"plcf,omitempty"`
}

// Writer appends Records to a file as newline-delimited JSON. Safe for
// concurrent use by multiple workers.
type Writer struct {
	session string

	mu  sync.Mutex
	f   *os.File
	buf *bufio.Writer
}

// NewWriter opens (creating if necessary, appending if it exists) path
// for JSONL telemetry output. Every record this Writer emits is tagged
// with a fresh session id distinguishing this process run from any
// other that appended to the same file.
func NewWriter(path string) (*Writer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}

	return &Writer{
		session: xid.New().String(),
		f:       f,
		buf:     bufio.NewWriter(f),
	}, nil
}

// Write formats now and appends one JSONL record. sync/phy/mac/plcf may
// be nil to omit that layer's fields from the line.
func (w *Writer) Write(workerID uint32, now time.Time, sync, phy, mac, plcf map[string]any) error {
	formattedTime, err := strftime.Format(TimestampLayout, now)
	if err != nil {
		return err
	}

	rec := Record{
		Session:        w.session,
		WorkerID:       workerID,
		TimeSinceEpoch: now.UnixNano(),
		Timestamp:      formattedTime,
		Sync:           sync,
		PHY:            phy,
		MAC:            mac,
		PLCF:           plcf,
	}

	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := w.buf.Write(b); err != nil {
		return err
	}
	return w.buf.WriteByte('\n')
}

// Flush pushes any buffered records to the underlying file.
func (w *Writer) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buf.Flush()
}

// Close flushes and closes the underlying file.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.buf.Flush(); err != nil {
		w.f.Close()
		return err
	}
	return w.f.Close()
}
