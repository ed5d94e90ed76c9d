package training

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

const fetchKey = "fetch"

// Resource caches the result of a list fetch until Refresh is called.
// Concurrent loads and refreshes share one fetch.
type Resource[T any] struct {
	group  singleflight.Group
	mu     sync.RWMutex
	fetch  func(context.Context) ([]T, error)
	data   []T
	err    error
	loaded bool
}

// NewResource wraps fetch.
func NewResource[T any](fetch func(context.Context) ([]T, error)) *Resource[T] {
	return &Resource[T]{fetch: fetch}
}

// Load fetches once; later calls return the cached result.
func (r *Resource[T]) Load(ctx context.Context) ([]T, error) {
	if data, ok, err := r.cached(); ok {
		return data, err
	}
	_, err, _ := r.group.Do(fetchKey, func() (any, error) {
		if _, ok, err := r.cached(); ok {
			return nil, err
		}
		return nil, r.store(r.fetch(ctx))
	})
	return r.Data(), err
}

// Refresh re-fetches and replaces the cached result. A failed fetch keeps the
// previous data and records the error.
func (r *Resource[T]) Refresh(ctx context.Context) ([]T, error) {
	_, err, _ := r.group.Do(fetchKey, func() (any, error) {
		return nil, r.store(r.fetch(ctx))
	})
	return r.Data(), err
}

func (r *Resource[T]) cached() ([]T, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.data, r.loaded, r.err
}

func (r *Resource[T]) store(data []T, err error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loaded = true
	r.err = err
	if err == nil {
		r.data = data
	}
	return err
}

// Data returns the cached records, or nil before the first load.
func (r *Resource[T]) Data() []T {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.data
}

// Err returns the error of the last fetch.
func (r *Resource[T]) Err() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.err
}
