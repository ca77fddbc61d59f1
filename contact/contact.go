// Package contact tracks the set of known peer radio devices: their
// long/short identity pair, their server/client connection indices, and a
// per-contact payload attached by the caller.
//
// Grounded on lib/include/dectnrp/mac/{contact,contact_list}.hpp and
// lib/src/mac/contact_list.cpp.
package contact

import (
	"errors"

	"github.com/rs/xid"
)

// ErrDuplicateIdentity is returned by Add when the long-ID or short-ID
// already names a contact, or when either connection index is already
// bound to a different long-ID.
var ErrDuplicateIdentity = errors.New("contact: duplicate identity")

// ErrUnknown is returned by a lookup keyed on an identifier that names no
// contact.
var ErrUnknown = errors.New("contact: unknown identifier")

// List is a registry of contacts of type T, keyed by long radio device ID,
// with bidirectional lookups on short radio device ID and the two
// application connection indices. T is caller-defined per-contact state
// (e.g. sync report, allocation, MIMO CSI).
type List[T any] struct {
	longToShort      map[uint32]uint32
	shortToLong      map[uint32]uint32
	longToConnServer map[uint32]uint32
	connServerToLong map[uint32]uint32
	longToConnClient map[uint32]uint32
	connClientToLong map[uint32]uint32

	contacts map[uint32]T
	handles  map[uint32]xid.ID
}

// New constructs an empty List sized for capacity entries.
func New[T any](capacity int) *List[T] {
	return &List[T]{
		longToShort:      make(map[uint32]uint32, capacity),
		shortToLong:      make(map[uint32]uint32, capacity),
		longToConnServer: make(map[uint32]uint32, capacity),
		connServerToLong: make(map[uint32]uint32, capacity),
		longToConnClient: make(map[uint32]uint32, capacity),
		connClientToLong: make(map[uint32]uint32, capacity),
		contacts:         make(map[uint32]T, capacity),
		handles:          make(map[uint32]xid.ID, capacity),
	}
}

// Add reserves a new contact under longID, with the given short ID and
// server/client connection indices, and an initial zero-value payload. It
// fails with ErrDuplicateIdentity if any of the three bidirectional maps
// already contains either side of the new binding.
func (l *List[T]) Add(longID, shortID, connIdxServer, connIdxClient uint32) error {
	if _, ok := l.longToShort[longID]; ok {
		return ErrDuplicateIdentity
	}
	if _, ok := l.shortToLong[shortID]; ok {
		return ErrDuplicateIdentity
	}
	if _, ok := l.longToConnServer[longID]; ok {
		return ErrDuplicateIdentity
	}
	if _, ok := l.connServerToLong[connIdxServer]; ok {
		return ErrDuplicateIdentity
	}
	if _, ok := l.longToConnClient[longID]; ok {
		return ErrDuplicateIdentity
	}
	if _, ok := l.connClientToLong[connIdxClient]; ok {
		return ErrDuplicateIdentity
	}

	l.longToShort[longID] = shortID
	l.shortToLong[shortID] = longID
	l.longToConnServer[longID] = connIdxServer
	l.connServerToLong[connIdxServer] = longID
	l.longToConnClient[longID] = connIdxClient
	l.connClientToLong[connIdxClient] = longID

	var zero T
	l.contacts[longID] = zero
	l.handles[longID] = xid.New()

	return nil
}

// Handle returns the compact, sortable telemetry-correlation id stamped
// on longID at Add time.
func (l *List[T]) Handle(longID uint32) (xid.ID, error) {
	h, ok := l.handles[longID]
	if !ok {
		return xid.ID{}, ErrUnknown
	}
	return h, nil
}

// IsLongIDKnown reports whether longID names a contact.
func (l *List[T]) IsLongIDKnown(longID uint32) bool {
	_, ok := l.longToShort[longID]
	return ok
}

// IsShortIDKnown reports whether shortID names a contact.
func (l *List[T]) IsShortIDKnown(shortID uint32) bool {
	_, ok := l.shortToLong[shortID]
	return ok
}

// LongIDFromShortID returns the long ID bound to shortID.
func (l *List[T]) LongIDFromShortID(shortID uint32) (uint32, error) {
	v, ok := l.shortToLong[shortID]
	if !ok {
		return 0, ErrUnknown
	}
	return v, nil
}

// ShortIDFromLongID returns the short ID bound to longID.
func (l *List[T]) ShortIDFromLongID(longID uint32) (uint32, error) {
	v, ok := l.longToShort[longID]
	if !ok {
		return 0, ErrUnknown
	}
	return v, nil
}

// LongIDFromConnIdxServer returns the long ID bound to a server connection
// index.
func (l *List[T]) LongIDFromConnIdxServer(connIdxServer uint32) (uint32, error) {
	v, ok := l.connServerToLong[connIdxServer]
	if !ok {
		return 0, ErrUnknown
	}
	return v, nil
}

// ConnIdxClientFromLongID returns the client connection index bound to
// longID.
func (l *List[T]) ConnIdxClientFromLongID(longID uint32) (uint32, error) {
	v, ok := l.longToConnClient[longID]
	if !ok {
		return 0, ErrUnknown
	}
	return v, nil
}

// Get returns the payload for longID, and whether it exists.
func (l *List[T]) Get(longID uint32) (T, bool) {
	v, ok := l.contacts[longID]
	return v, ok
}

// Set overwrites the payload for longID. The caller must have already
// added longID via Add.
func (l *List[T]) Set(longID uint32, v T) {
	l.contacts[longID] = v
}

// Len returns the number of contacts currently registered.
func (l *List[T]) Len() int {
	return len(l.contacts)
}
