// Package binding exposes fixed-capacity stacks to Go callers and to
// WebAssembly guests.
//
// A Binding owns a resource table of stacks addressed by opaque handles.
// Go code calls Create, Push, Pop, Peek, Len and Drop directly. Guests reach
// the same operations through a wazero host module registered with
// Instantiate; every value crosses the boundary as i32:
//
//	new() -> handle                        0 on failure
//	push(handle, value) -> status
//	peek(handle) -> (value, status)
//	pop(handle) -> (value, status)
//	drop(handle) -> status
//	len(handle) -> length                  -1 for an invalid handle
//	message(status, ptr, cap) -> written
//
// Status codes are listed by Status. A non-zero status always leaves the
// stack unchanged.
package binding
