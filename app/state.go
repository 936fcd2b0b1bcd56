package app

import (
	"sync"
)

// Slot is a one-shot rendezvous cell: an asynchronous loader fills it
// exactly once, and the owner takes the value exactly once. Later Fill
// calls are ignored so a misbehaving loader cannot replace a value that
// is already being consumed.
//
// Slot is safe for concurrent use. The zero value is an empty slot.
type Slot[T any] struct {
	mu  sync.Mutex
	val *T
}

// Fill stores the value if the slot is still empty.
func (s *Slot[T]) Fill(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.val == nil {
		s.val = &v
	}
}

// Filled reports whether the slot holds a value.
func (s *Slot[T]) Filled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.val != nil
}

// Take removes and returns the value. The second return is false while
// the slot is empty or after the value has been taken.
func (s *Slot[T]) Take() (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.val == nil {
		var zero T
		return zero, false
	}
	v := *s.val
	s.val = nil
	return v, true
}

// State is a Loading/Loaded machine over a loading phase L (typically a
// struct of Slots filled by independent goroutines) and a ready value R.
//
// TryAdvance polls the advance function until it reports the loading
// phase complete, then transitions once: the loading phase is dropped and
// every later call returns the ready value directly. The transition
// happens at most once, so the advance function can move resources out of
// the slots without double-consumption.
type State[L, R any] struct {
	mu      sync.Mutex
	loading *L
	loaded  *R
	advance func(*L) (R, bool)
}

// NewLoading creates a State in the loading phase. The advance function
// inspects the phase and, when everything it waits for has arrived,
// assembles and returns the ready value.
func NewLoading[L, R any](loading L, advance func(*L) (R, bool)) *State[L, R] {
	return &State[L, R]{loading: &loading, advance: advance}
}

// NewLoaded creates a State already in the ready phase.
func NewLoaded[L, R any](v R) *State[L, R] {
	return &State[L, R]{loaded: &v}
}

// TryAdvance returns the ready value once every pending resource has
// arrived, attempting the Loading to Loaded transition if it has not
// happened yet. It returns (nil, false) while still loading.
func (s *State[L, R]) TryAdvance() (*R, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded != nil {
		return s.loaded, true
	}
	v, ok := s.advance(s.loading)
	if !ok {
		return nil, false
	}
	s.loaded = &v
	s.loading = nil
	s.advance = nil
	return s.loaded, true
}

// Loaded returns the ready value without attempting a transition.
func (s *State[L, R]) Loaded() (*R, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded, s.loaded != nil
}
