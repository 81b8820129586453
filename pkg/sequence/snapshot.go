package sequence

import "sync/atomic"

// Store publishes immutable values of type T for wait-free consumption by
// the audio thread, per the snapshot discipline mandated in spec §5: the
// audio callback must never take a blocking lock to read the current
// SequenceSet or Config.
//
// Publish is control-path only. Load is the only call the audio thread
// makes; it never blocks and never allocates. Old values are simply left
// for the garbage collector once no goroutine holds a reference to them
// anymore, which satisfies the "reclaimed only after confirming the audio
// thread has observed the new one" requirement without hand-rolled
// epoch/hazard-pointer bookkeeping.
type Store[T any] struct {
	p atomic.Pointer[T]
}

// NewStore returns a Store already published with initial.
func NewStore[T any](initial *T) *Store[T] {
	s := &Store[T]{}
	s.p.Store(initial)
	return s
}

// Publish atomically swaps in a new immutable value. Callers must not
// mutate value after calling Publish.
func (s *Store[T]) Publish(value *T) {
	s.p.Store(value)
}

// Load returns the most recently published value. Safe to call from the
// audio thread.
func (s *Store[T]) Load() *T {
	return s.p.Load()
}
