// Package window provides a fixed-capacity retention buffer that evicts the
// oldest item when full.
package window

import (
	"errors"
	"fmt"
	"sync"
)

// ErrInvalidCapacity is returned for a capacity below one
var ErrInvalidCapacity = errors.New("window capacity must be positive")

// Window keeps the most recent items in arrival order. Append is the only
// mutator; readers get copies through Snapshot.
type Window[T any] struct {
	mu    sync.RWMutex
	items []T
	head  int // index of the oldest item
	size  int
}

// New creates an empty window holding at most capacity items
func New[T any](capacity int) (*Window[T], error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidCapacity, capacity)
	}
	return &Window[T]{items: make([]T, capacity)}, nil
}

// Append inserts item at the tail, evicting the oldest item first when the
// window is full.
func (w *Window[T]) Append(item T) {
	w.mu.Lock()
	defer w.mu.Unlock()

	capacity := len(w.items)
	if w.size == capacity {
		w.items[w.head] = item
		w.head = (w.head + 1) % capacity
		return
	}
	w.items[(w.head+w.size)%capacity] = item
	w.size++
}

// Snapshot returns the retained items oldest first. The slice is a copy.
func (w *Window[T]) Snapshot() []T {
	w.mu.RLock()
	defer w.mu.RUnlock()

	out := make([]T, w.size)
	capacity := len(w.items)
	for i := 0; i < w.size; i++ {
		out[i] = w.items[(w.head+i)%capacity]
	}
	return out
}

func (w *Window[T]) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.size
}

func (w *Window[T]) Cap() int {
	return len(w.items)
}
