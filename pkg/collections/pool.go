// Package collections provides generic data structures for efficient data processing.
package collections

import (
	"sync"
)

// ============================================================================
// Generic Slice Pools - scratch buffers for word-building and factorisation
// ============================================================================

// SlicePool is a generic pool for slices of any type. FroidurePinEngine uses
// one to borrow scratch word buffers while walking the word tree to produce
// a factorisation, instead of allocating a fresh []Generator per call.
type SlicePool[T any] struct {
	pool       sync.Pool
	initialCap int
}

// NewSlicePool creates a new slice pool with the given initial capacity.
func NewSlicePool[T any](initialCap int) *SlicePool[T] {
	if initialCap <= 0 {
		initialCap = 256
	}
	return &SlicePool[T]{
		initialCap: initialCap,
		pool: sync.Pool{
			New: func() interface{} {
				s := make([]T, 0, initialCap)
				return &s
			},
		},
	}
}

// Get gets a slice from the pool.
func (p *SlicePool[T]) Get() *[]T {
	return p.pool.Get().(*[]T)
}

// Put returns a slice to the pool after clearing it.
func (p *SlicePool[T]) Put(s *[]T) {
	*s = (*s)[:0]
	p.pool.Put(s)
}

// GeneratorSlicePool is a pool for []uint32 scratch word buffers, the
// concrete instantiation FroidurePinEngine.Factorisation borrows from
// while walking the word tree.
var GeneratorSlicePool = NewSlicePool[uint32](64)

// GetGeneratorSlice gets a scratch word buffer from the pool.
func GetGeneratorSlice() *[]uint32 {
	return GeneratorSlicePool.Get()
}

// PutGeneratorSlice returns a scratch word buffer to the pool after clearing it.
func PutGeneratorSlice(s *[]uint32) {
	GeneratorSlicePool.Put(s)
}

// ============================================================================
// Stack - Generic LIFO data structure
// ============================================================================

// Stack is a generic LIFO stack. ToddCoxeterEngine uses one as the
// coincidence stack: pairs of coset indices identified as equal are pushed
// here and drained by identify() until empty.
type Stack[T any] struct {
	data []T
}

// NewStack creates a new stack with the given capacity.
func NewStack[T any](capacity int) *Stack[T] {
	return &Stack[T]{
		data: make([]T, 0, capacity),
	}
}

// Push pushes a value onto the stack.
func (s *Stack[T]) Push(v T) {
	s.data = append(s.data, v)
}

// Pop pops a value from the stack.
func (s *Stack[T]) Pop() (T, bool) {
	if len(s.data) == 0 {
		var zero T
		return zero, false
	}
	v := s.data[len(s.data)-1]
	s.data = s.data[:len(s.data)-1]
	return v, true
}

// Peek returns the top value without removing it.
func (s *Stack[T]) Peek() (T, bool) {
	if len(s.data) == 0 {
		var zero T
		return zero, false
	}
	return s.data[len(s.data)-1], true
}

// IsEmpty returns true if the stack is empty.
func (s *Stack[T]) IsEmpty() bool {
	return len(s.data) == 0
}

// Len returns the number of items in the stack.
func (s *Stack[T]) Len() int {
	return len(s.data)
}

// Clear clears the stack.
func (s *Stack[T]) Clear() {
	s.data = s.data[:0]
}
