// Package wasmstack provides fixed-capacity integer stacks to Go code and to
// WebAssembly guests running on wazero.
//
// # Architecture Overview
//
//	wasmstack/
//	├── stack/           Fixed-capacity int32 stack (push, pop, peek)
//	├── resource/        Handle table with typed views and lifecycle observers
//	├── binding/         Stacks behind opaque handles; wazero host module "stack"
//	├── engine/          wazero runtime wrapper (compile, instantiate, call)
//	├── runtime/         High-level API: engine plus binding, WIT-typed guest calls
//	├── errors/          Structured error types
//	└── cmd/stack/       Command shell, TUI and guest runner
//
// # Quick Start
//
// Use a stack directly:
//
//	s := stack.New()
//	_ = s.Push(1)
//	v, err := s.Pop()
//
// Share stacks with guests:
//
//	rt, err := runtime.New(ctx)
//	if err != nil {
//	    return err
//	}
//	defer rt.Close(ctx)
//
//	mod, err := rt.LoadWASM(ctx, wasmBytes, witText)
//	inst, err := mod.Instantiate(ctx)
//	result, err := inst.Call(ctx, "run")
//
// Guests import the functions listed in package binding from the "stack"
// module. Every operation returns a status code; a failed push or pop never
// changes the stack.
package wasmstack
