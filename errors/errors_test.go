package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:   PhaseRuntime,
				Kind:    KindTypeMismatch,
				Path:    []string{"push", "arg1"},
				GoType:  "string",
				WitType: "s32",
				Detail:  "cannot convert",
			},
			contains: []string{"[runtime]", "type_mismatch", "push.arg1", "string", "s32", "cannot convert"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseStack,
				Kind:  KindUnderflow,
			},
			contains: []string{"[stack]", "underflow"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseLoad,
				Kind:   KindInvalidData,
				Detail: "compile module",
				Cause:  errors.New("bad magic"),
			},
			contains: []string{"[load]", "invalid_data", "compile module", "caused by", "bad magic"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Message(t *testing.T) {
	if got := Overflow(100).Message(); got != "Stack is full." {
		t.Errorf("Overflow message = %q", got)
	}
	if got := Underflow().Message(); got != "Stack is empty." {
		t.Errorf("Underflow message = %q", got)
	}
	if got := (&Error{Phase: PhaseHost, Kind: KindClosed}).Message(); got != "closed" {
		t.Errorf("fallback message = %q, want kind", got)
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := Wrap(PhaseRuntime, KindInvalidData, cause, "call")

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is did not walk to cause")
	}
}

func TestError_Is(t *testing.T) {
	err := Overflow(3)

	if !err.Is(&Error{Phase: PhaseStack, Kind: KindOverflow}) {
		t.Error("Is should match same phase and kind")
	}
	if err.Is(&Error{Phase: PhaseHost, Kind: KindOverflow}) {
		t.Error("Is should not match different phase")
	}
	if err.Is(Underflow()) {
		t.Error("Is should not match different kind")
	}
	if errors.Is(err, errors.New("Stack is full.")) {
		t.Error("Is should not match plain errors with the same text")
	}

	var target *Error
	if !errors.As(err, &target) || target.Value != 3 {
		t.Errorf("errors.As = %+v", target)
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("root")
	b := New(PhaseRuntime, KindTypeMismatch).
		Path("push", "arg0").
		GoType("string").
		WitType("s32").
		Value("x").
		Cause(cause).
		Detail("expected %s, got %s", "s32", "string")
	err := b.Build()

	if err.Phase != PhaseRuntime {
		t.Errorf("Phase = %v, want %v", err.Phase, PhaseRuntime)
	}
	if err.Kind != KindTypeMismatch {
		t.Errorf("Kind = %v, want %v", err.Kind, KindTypeMismatch)
	}
	if strings.Join(err.Path, ".") != "push.arg0" {
		t.Errorf("Path = %v", err.Path)
	}
	if err.Detail != "expected s32, got string" {
		t.Errorf("Detail = %q", err.Detail)
	}
	if err.Cause != cause {
		t.Error("Cause not set")
	}

	// Build returns a copy; further builder calls do not leak into it.
	b.Detail("changed")
	if err.Detail == "changed" {
		t.Error("Build result aliased builder state")
	}
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		err   *Error
		phase Phase
		kind  Kind
	}{
		{Overflow(1), PhaseStack, KindOverflow},
		{Underflow(), PhaseStack, KindUnderflow},
		{InvalidHandle(9), PhaseHost, KindInvalidHandle},
		{Closed("binding"), PhaseHost, KindClosed},
		{Registration("stack", errors.New("dup")), PhaseHost, KindRegistration},
		{InvalidInput(PhaseConfig, "capacity"), PhaseConfig, KindInvalidInput},
		{TypeMismatch(PhaseRuntime, nil, "string", "s32"), PhaseRuntime, KindTypeMismatch},
		{NotFound(PhaseRuntime, "function", "run"), PhaseRuntime, KindNotFound},
		{NotInitialized(PhaseRuntime, "module"), PhaseRuntime, KindNotInitialized},
		{Instantiation(errors.New("x")), PhaseRuntime, KindInstantiation},
		{Load("compile", nil), PhaseLoad, KindInvalidData},
		{ParseFailed("wit", nil), PhaseParse, KindInvalidData},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			if tt.err.Phase != tt.phase || tt.err.Kind != tt.kind {
				t.Errorf("got [%s] %s, want [%s] %s", tt.err.Phase, tt.err.Kind, tt.phase, tt.kind)
			}
			if tt.err.Error() == "" {
				t.Error("empty message")
			}
		})
	}
}

func TestInvalidHandle_Detail(t *testing.T) {
	err := InvalidHandle(42)
	if !strings.Contains(err.Error(), "handle 42") {
		t.Errorf("Error() = %q", err.Error())
	}
	if err.Value != uint32(42) {
		t.Errorf("Value = %v", err.Value)
	}
}
