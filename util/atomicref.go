package util

import (
	"sync/atomic"
)

// AtomicRef is a generic version of atomic.Value, to hold object references atomically
type AtomicRef[T any] struct {
	pointer atomic.Pointer[T]
}

// Get retrieves the reference atomically. It may return nil.
func (ref *AtomicRef[T]) Get() *T {
	return ref.pointer.Load()
}

// Set stores the given reference atomically. The reference may be nil.
func (ref *AtomicRef[T]) Set(reference *T) {
	ref.pointer.Store(reference)
}
