// Package cmdqueue is a bounded FIFO between control goroutines and the
// audio goroutine. Producers are serialized by a mutex that the consumer
// never touches, so Pop is wait-free.
package cmdqueue

import (
	"sync"
	"sync/atomic"
)

type Ring[T any] struct {
	mu   sync.Mutex // producers only
	buf  []T
	mask uint64
	head atomic.Uint64 // next slot to read, written by the consumer
	tail atomic.Uint64 // next slot to write, written by producers
}

// New returns a ring holding at least capacity items, rounded up to a power
// of two.
func New[T any](capacity int) *Ring[T] {
	size := 1
	for size < capacity {
		size <<= 1
	}
	return &Ring[T]{
		buf:  make([]T, size),
		mask: uint64(size - 1),
	}
}

// Push appends v and reports false if the ring is full.
func (r *Ring[T]) Push(v T) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	tail := r.tail.Load()
	if tail-r.head.Load() == uint64(len(r.buf)) {
		return false
	}
	r.buf[tail&r.mask] = v
	r.tail.Store(tail + 1)
	return true
}

// Pop removes the oldest item. Only one goroutine may call Pop at a time.
func (r *Ring[T]) Pop() (T, bool) {
	head := r.head.Load()
	if head == r.tail.Load() {
		var zero T
		return zero, false
	}
	v := r.buf[head&r.mask]
	r.head.Store(head + 1)
	return v, true
}

func (r *Ring[T]) Len() int {
	return int(r.tail.Load() - r.head.Load())
}

func (r *Ring[T]) Cap() int { return len(r.buf) }
