// Package stack implements a fixed-capacity int32 stack.
//
// The buffer is allocated once at construction and never grows. Capacity
// violations are reported as ordinary errors and leave the stack unchanged:
//
//	s := stack.New() // capacity 100
//
//	if err := s.Push(5); errors.Is(err, stack.ErrOverflow) {
//	    // full
//	}
//
//	v, err := s.Pop()
//	if errors.Is(err, stack.ErrUnderflow) {
//	    // empty
//	}
//
// Stack has no internal locking. Callers that share an instance between
// goroutines must serialize Push, Pop and Peek themselves; the binding
// package does this per handle.
package stack
