// Package runtime loads core WebAssembly guests into an engine that already
// hosts the stack binding.
//
// # Quick Start
//
//	ctx := context.Background()
//	rt, err := runtime.New(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer rt.Close(ctx)
//
//	mod, err := rt.LoadWASM(ctx, wasmBytes, "export roundtrip: func(v: s32) -> s32;")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	inst, err := mod.Instantiate(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer inst.Close(ctx)
//
//	result, err := inst.Call(ctx, "roundtrip", int32(7))
//
// # Stacks From Go
//
// Runtime.Stacks returns the binding guests talk to. Handles are shared:
// a handle created by a guest can be used from Go and the other way around.
//
//	h, _ := rt.Stacks().Create()
//	_ = rt.Stacks().Push(h, 42)
//
// # Type Mapping
//
// Call lowers Go arguments and lifts results using WIT primitive types:
//
//	WIT Type   Go Type (result)   Accepted arguments
//	bool       bool               bool
//	s8..s64    int8..int64        any Go integer in range
//	u8..u64    uint8..uint64      any Go integer in range
//	f32, f64   float32, float64   float32, float64
//	char       rune               rune
//
// # Thread Safety
//
// Runtime and Module are safe for concurrent use. Instance is not; give each
// goroutine its own instance. The stack binding itself is safe for
// concurrent use across instances.
package runtime
