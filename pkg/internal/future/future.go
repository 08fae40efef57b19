// Package future provides a value that is completed once, later.
package future

import (
	"context"
	"sync"
)

// Future holds a value of type T that is set once.
// Callbacks registered before completion run when it completes,
// callbacks registered afterwards run immediately.
// It is safe for concurrent use.
type Future[T any] struct {
	done chan struct{}

	mu        sync.Mutex // protects following fields
	value     T
	callbacks []func(T)
	completed bool
}

// New returns a new uncompleted Future.
func New[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// Completed returns a Future already completed with value.
func Completed[T any](value T) *Future[T] {
	return New[T]().Complete(value)
}

// ThenAccept registers a callback to be called with the value once completed.
func (f *Future[T]) ThenAccept(callback func(T)) {
	f.mu.Lock()
	if f.completed {
		v := f.value
		f.mu.Unlock()
		callback(v)
		return
	}
	f.callbacks = append(f.callbacks, callback)
	f.mu.Unlock()
}

// Complete sets the value and runs the registered callbacks.
// Only the first call has an effect.
func (f *Future[T]) Complete(value T) *Future[T] {
	f.mu.Lock()
	if f.completed {
		f.mu.Unlock()
		return f
	}
	f.value = value
	f.completed = true
	callbacks := f.callbacks
	f.callbacks = nil
	close(f.done)
	f.mu.Unlock()

	for _, fn := range callbacks {
		fn(value)
	}
	return f
}

// Done returns a channel closed once the Future is completed.
func (f *Future[T]) Done() <-chan struct{} { return f.done }

// Get blocks until the Future is completed or ctx is done.
func (f *Future[T]) Get(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		f.mu.Lock()
		defer f.mu.Unlock()
		return f.value, nil
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
