package binding

import (
	stderrors "errors"

	"github.com/wippyai/wasm-stack/errors"
	"github.com/wippyai/wasm-stack/resource"
	"github.com/wippyai/wasm-stack/stack"
)

// Status is the i32 result code returned to guests.
type Status int32

const (
	StatusOK Status = iota
	StatusOverflow
	StatusUnderflow
	StatusBadArg
	StatusClosed
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusOverflow:
		return "overflow"
	case StatusUnderflow:
		return "underflow"
	case StatusBadArg:
		return "badarg"
	case StatusClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Message returns the human-readable text guests can copy with the
// message host function.
func (s Status) Message() string {
	switch s {
	case StatusOK:
		return ""
	case StatusOverflow:
		return errors.Overflow(0).Message()
	case StatusUnderflow:
		return errors.Underflow().Message()
	case StatusBadArg:
		return "Invalid stack handle."
	case StatusClosed:
		return "Stack binding is closed."
	default:
		return "Unknown status."
	}
}

// StatusOf maps an operation error to the status reported to guests.
func StatusOf(err error) Status {
	switch {
	case err == nil:
		return StatusOK
	case stderrors.Is(err, stack.ErrOverflow):
		return StatusOverflow
	case stderrors.Is(err, stack.ErrUnderflow):
		return StatusUnderflow
	case stderrors.Is(err, resource.ErrClosed):
		return StatusClosed
	default:
		return StatusBadArg
	}
}
