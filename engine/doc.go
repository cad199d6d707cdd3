// Package engine provides the low-level WebAssembly runtime wrapper.
//
// The engine package provides three main types:
//
//	WazeroEngine   - Owns a wazero runtime; host modules register into it
//	WazeroModule   - A compiled core module, can create instances
//	WazeroInstance - A running module instance with exports
//
// Host modules (such as the stack binding) must be registered in
// WazeroEngine.Runtime() before instantiating guests that import them;
// wazero resolves imports by module name at instantiation time.
package engine
