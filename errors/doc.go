// Package errors provides structured error types for the wasm-stack module.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// Two errors match under errors.Is when both Phase and Kind are equal, so callers
// test for a condition without comparing messages:
//
//	if errors.Is(err, stack.ErrOverflow) {
//	    // push rejected, stack unchanged
//	}
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseRuntime, errors.KindTypeMismatch).
//		Path("push", "arg1").
//		GoType("string").
//		WitType("s32").
//		Detail("cannot convert string to integer").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.Overflow(100)
//	err := errors.InvalidHandle(7)
//
// Message returns only the human-readable detail ("Stack is full."), which is
// what the host binding hands to guests.
package errors
