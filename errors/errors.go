package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseStack   Phase = "stack"   // core stack operations
	PhaseHost    Phase = "host"    // host binding and handle table
	PhaseConfig  Phase = "config"  // configuration validation
	PhaseLoad    Phase = "load"    // guest module loading
	PhaseRuntime Phase = "runtime" // guest calls
	PhaseParse   Phase = "parse"   // WIT text and CLI input parsing
)

// Kind categorizes the error
type Kind string

const (
	KindOverflow       Kind = "overflow"
	KindUnderflow      Kind = "underflow"
	KindInvalidHandle  Kind = "invalid_handle"
	KindClosed         Kind = "closed"
	KindInvalidInput   Kind = "invalid_input"
	KindInvalidData    Kind = "invalid_data"
	KindTypeMismatch   Kind = "type_mismatch"
	KindNotFound       Kind = "not_found"
	KindNotInitialized Kind = "not_initialized"
	KindRegistration   Kind = "registration"
	KindInstantiation  Kind = "instantiation"
)

// Error is the structured error type used throughout the module
type Error struct {
	Value   any
	Cause   error
	Phase   Phase
	Kind    Kind
	GoType  string
	WitType string
	Detail  string
	Path    []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.GoType != "" || e.WitType != "" {
		b.WriteString(": ")
		switch {
		case e.GoType != "" && e.WitType != "":
			b.WriteString("Go type ")
			b.WriteString(e.GoType)
			b.WriteString(", WIT type ")
			b.WriteString(e.WitType)
		case e.GoType != "":
			b.WriteString("Go type ")
			b.WriteString(e.GoType)
		default:
			b.WriteString("WIT type ")
			b.WriteString(e.WitType)
		}
	}

	if e.Detail != "" {
		if e.GoType != "" || e.WitType != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Message returns the human-readable detail without phase and kind decoration.
// Falls back to the kind when no detail was set.
func (e *Error) Message() string {
	if e.Detail != "" {
		return e.Detail
	}
	return string(e.Kind)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the field path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// GoType sets the Go type name
func (b *Builder) GoType(t string) *Builder {
	b.err.GoType = t
	return b
}

// WitType sets the WIT type name
func (b *Builder) WitType(t string) *Builder {
	b.err.WitType = t
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	err := b.err
	return &err
}

// Stack convenience constructors

// Overflow creates a stack-full error
func Overflow(capacity int) *Error {
	return &Error{
		Phase:  PhaseStack,
		Kind:   KindOverflow,
		Detail: "Stack is full.",
		Value:  capacity,
	}
}

// Underflow creates a stack-empty error
func Underflow() *Error {
	return &Error{
		Phase:  PhaseStack,
		Kind:   KindUnderflow,
		Detail: "Stack is empty.",
	}
}

// Host convenience constructors

// InvalidHandle creates an error for an unknown or released handle
func InvalidHandle(handle uint32) *Error {
	return &Error{
		Phase:  PhaseHost,
		Kind:   KindInvalidHandle,
		Detail: fmt.Sprintf("handle %d is not a live stack", handle),
		Value:  handle,
	}
}

// Closed creates an error for operations on a closed component
func Closed(component string) *Error {
	return &Error{
		Phase:  PhaseHost,
		Kind:   KindClosed,
		Detail: fmt.Sprintf("%s closed", component),
	}
}

// Registration creates a registration error
func Registration(module string, cause error) *Error {
	return &Error{
		Phase:  PhaseHost,
		Kind:   KindRegistration,
		Detail: fmt.Sprintf("register host module %q", module),
		Cause:  cause,
	}
}

// General convenience constructors

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// TypeMismatch creates a type mismatch error
func TypeMismatch(phase Phase, path []string, goType, witType string) *Error {
	return &Error{
		Phase:   phase,
		Kind:    KindTypeMismatch,
		Path:    path,
		GoType:  goType,
		WitType: witType,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// NotInitialized creates a not-initialized error for missing module/instance
func NotInitialized(phase Phase, component string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotInitialized,
		Detail: fmt.Sprintf("%s not initialized", component),
	}
}

// Instantiation creates an instantiation error
func Instantiation(cause error) *Error {
	return &Error{
		Phase:  PhaseRuntime,
		Kind:   KindInstantiation,
		Detail: "instantiate module",
		Cause:  cause,
	}
}

// Load creates a module loading error
func Load(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindInvalidData,
		Detail: detail,
		Cause:  cause,
	}
}

// ParseFailed creates a parsing error
func ParseFailed(what string, cause error) *Error {
	return &Error{
		Phase:  PhaseParse,
		Kind:   KindInvalidData,
		Detail: fmt.Sprintf("parse %s", what),
		Cause:  cause,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
