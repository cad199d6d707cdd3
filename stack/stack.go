package stack

import (
	"github.com/wippyai/wasm-stack/errors"
)

// DefaultCapacity is the capacity used by New.
const DefaultCapacity = 100

var (
	// ErrOverflow matches errors returned by Push on a full stack.
	ErrOverflow = &errors.Error{Phase: errors.PhaseStack, Kind: errors.KindOverflow}
	// ErrUnderflow matches errors returned by Pop and Peek on an empty stack.
	ErrUnderflow = &errors.Error{Phase: errors.PhaseStack, Kind: errors.KindUnderflow}
)

// Stack is a last-in-first-out collection of int32 values bounded by a
// capacity fixed at construction. Not safe for concurrent use.
type Stack struct {
	elems  []int32
	length int
}

// New creates an empty stack with DefaultCapacity.
func New() *Stack {
	return &Stack{elems: make([]int32, DefaultCapacity)}
}

// NewWithCapacity creates an empty stack holding at most capacity values.
func NewWithCapacity(capacity int) (*Stack, error) {
	if capacity < 1 {
		return nil, errors.New(errors.PhaseConfig, errors.KindInvalidInput).
			Value(capacity).
			Detail("capacity must be positive, got %d", capacity).
			Build()
	}
	return &Stack{elems: make([]int32, capacity)}, nil
}

// Push appends v. A full stack is left unchanged and ErrOverflow is returned.
func (s *Stack) Push(v int32) error {
	if s.length == len(s.elems) {
		return errors.Overflow(len(s.elems))
	}
	s.elems[s.length] = v
	s.length++
	return nil
}

// Peek returns the top value without removing it.
func (s *Stack) Peek() (int32, error) {
	if s.length == 0 {
		return 0, errors.Underflow()
	}
	return s.elems[s.length-1], nil
}

// Pop removes and returns the top value.
// The vacated slot is zeroed so the value cannot be observed again.
func (s *Stack) Pop() (int32, error) {
	if s.length == 0 {
		return 0, errors.Underflow()
	}
	s.length--
	v := s.elems[s.length]
	s.elems[s.length] = 0
	return v, nil
}

// Len returns the number of values on the stack.
func (s *Stack) Len() int {
	return s.length
}

// Cap returns the fixed capacity.
func (s *Stack) Cap() int {
	return len(s.elems)
}

// IsEmpty reports whether a Pop or Peek would underflow.
func (s *Stack) IsEmpty() bool {
	return s.length == 0
}

// IsFull reports whether a Push would overflow.
func (s *Stack) IsFull() bool {
	return s.length == len(s.elems)
}
