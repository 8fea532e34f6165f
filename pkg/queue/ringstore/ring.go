package ringstore

import (
	"github.com/vnykmshr/goexec/pkg/common/validation"
)

// Store is a fixed-capacity FIFO ring over a slot array. It performs no
// synchronization of its own: the owner must guard every call with its own
// critical section.
type Store[T any] struct {
	slots []T
	head  int
	tail  int
	size  int
}

// New creates a ring store with the given capacity.
// It panics if the capacity is not positive; use NewSafe to get an error instead.
func New[T any](capacity int) *Store[T] {
	s, err := NewSafe[T](capacity)
	if err != nil {
		panic(err)
	}
	return s
}

// NewSafe creates a ring store with the given capacity, returning an error
// for a non-positive capacity.
func NewSafe[T any](capacity int) (*Store[T], error) {
	if err := validation.ValidatePositive("ringstore", "capacity", capacity); err != nil {
		return nil, err
	}
	return &Store[T]{slots: make([]T, capacity)}, nil
}

// Put inserts item at the tail. It reports false when the store is full.
func (s *Store[T]) Put(item T) bool {
	if s.size == len(s.slots) {
		return false
	}
	s.slots[s.tail] = item
	s.tail = (s.tail + 1) % len(s.slots)
	s.size++
	return true
}

// Get removes and returns the item at the head.
// The second return value is false when the store is empty.
func (s *Store[T]) Get() (T, bool) {
	var zero T
	if s.size == 0 {
		return zero, false
	}
	item := s.slots[s.head]
	s.slots[s.head] = zero // release the reference held by the slot
	s.head = (s.head + 1) % len(s.slots)
	s.size--
	return item, true
}

// Peek returns the item at the head without removing it.
func (s *Store[T]) Peek() (T, bool) {
	var zero T
	if s.size == 0 {
		return zero, false
	}
	return s.slots[s.head], true
}

// Len returns the current number of stored items.
func (s *Store[T]) Len() int { return s.size }

// Cap returns the fixed capacity.
func (s *Store[T]) Cap() int { return len(s.slots) }

// Full reports whether the store is at capacity.
func (s *Store[T]) Full() bool { return s.size == len(s.slots) }

// Empty reports whether the store holds no items.
func (s *Store[T]) Empty() bool { return s.size == 0 }
