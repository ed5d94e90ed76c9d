package store

import "sync"

// Store holds an immutable snapshot of T. Every transition replaces the
// snapshot wholesale; subscribers observe each new snapshot after the lock is
// released. T should be a value type whose reference members (maps, slices)
// are copied rather than mutated by Update functions.
type Store[T any] struct {
	mu     sync.RWMutex
	state  T
	nextID int
	subs   map[int]func(T)
}

// New seeds a Store with an initial snapshot.
func New[T any](initial T) *Store[T] {
	return &Store[T]{
		state: initial,
		subs:  make(map[int]func(T)),
	}
}

// Get returns the current snapshot.
func (s *Store[T]) Get() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Set replaces the snapshot.
func (s *Store[T]) Set(next T) {
	s.Update(func(T) T { return next })
}

// Update derives the next snapshot from the current one under the write lock
// and returns it. fn must not call back into the store.
func (s *Store[T]) Update(fn func(T) T) T {
	s.mu.Lock()
	s.state = fn(s.state)
	next := s.state
	subs := make([]func(T), 0, len(s.subs))
	for _, sub := range s.subs {
		subs = append(subs, sub)
	}
	s.mu.Unlock()

	for _, sub := range subs {
		sub(next)
	}
	return next
}

// Subscribe registers fn for future snapshots and returns a cancel function.
func (s *Store[T]) Subscribe(fn func(T)) func() {
	if fn == nil {
		return func() {}
	}
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}
