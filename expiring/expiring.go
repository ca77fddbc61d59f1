// Package expiring holds a value paired with a validity deadline, used by
// the contact list to cache MIMO CSI (MCS, codebook index, TM mode) that
// must not be trusted past a certain sample time.
//
// Grounded on lib/include/dectnrp/common/adt/expiring.hpp (expiring_t<T>).
package expiring

import "github.com/maxpenner/dectnrp-core/dectime"

// Value pairs a T with the sample time at which it stops being valid.
type Value[T any] struct {
	val  T
	time int64
}

// New returns a Value that is valid up to and including validUntil.
func New[T any](val T, validUntil int64) Value[T] {
	return Value[T]{val: val, time: validUntil}
}

// Zero returns a Value that is never valid.
func Zero[T any]() Value[T] {
	return Value[T]{time: dectime.UndefinedEarly}
}

// IsValid reports whether the value is still trustworthy at now.
func (v Value[T]) IsValid(now int64) bool {
	return now <= v.time
}

// Get returns the stored value regardless of validity; callers should
// check IsValid first.
func (v Value[T]) Get() T {
	return v.val
}

// GetOr returns the stored value if valid at now, else fallback.
func (v Value[T]) GetOr(now int64, fallback T) T {
	if v.IsValid(now) {
		return v.val
	}
	return fallback
}
