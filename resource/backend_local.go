package resource

import (
	"sync"

	"github.com/wippyai/wasm-stack/errors"
)

// ErrClosed matches errors returned after a backend or table has been closed.
var ErrClosed = &errors.Error{Phase: errors.PhaseHost, Kind: errors.KindClosed}

// LocalBackend is an in-memory resource backend.
// Freed slots are reused through a free list.
type LocalBackend struct {
	entries  []entry
	freeList []Handle
	mu       sync.RWMutex
	closed   bool
}

type entry struct {
	value  any
	typeID TypeID
	valid  bool
}

// NewLocalBackend creates a new in-memory backend.
func NewLocalBackend() *LocalBackend {
	return &LocalBackend{
		entries:  make([]entry, 0, 64),
		freeList: make([]Handle, 0, 16),
	}
}

// Create stores a value and returns a handle.
func (b *LocalBackend) Create(typeID TypeID, value any) (Handle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return 0, errors.Closed("resource backend")
	}

	e := entry{
		typeID: typeID,
		value:  value,
		valid:  true,
	}

	if len(b.freeList) > 0 {
		handle := b.freeList[len(b.freeList)-1]
		b.freeList = b.freeList[:len(b.freeList)-1]
		b.entries[handle-1] = e
		return handle, nil
	}

	b.entries = append(b.entries, e)
	return Handle(len(b.entries)), nil
}

// lookup returns the live entry for handle. Caller holds b.mu.
func (b *LocalBackend) lookup(handle Handle) (*entry, bool) {
	if handle == 0 || int(handle) > len(b.entries) {
		return nil, false
	}
	e := &b.entries[handle-1]
	if !e.valid {
		return nil, false
	}
	return e, true
}

// Get retrieves a value by handle.
func (b *LocalBackend) Get(handle Handle) (any, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	e, ok := b.lookup(handle)
	if !ok {
		return nil, false
	}
	return e.value, true
}

// TypeID returns the type ID for a handle.
func (b *LocalBackend) TypeID(handle Handle) (TypeID, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	e, ok := b.lookup(handle)
	if !ok {
		return 0, false
	}
	return e.typeID, true
}

// Drop removes a resource and returns its value.
// The Dropper hook, if any, is left to the caller.
func (b *LocalBackend) Drop(handle Handle) (any, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	e, ok := b.lookup(handle)
	if !ok {
		return nil, false
	}

	value := e.value
	e.valid = false
	e.value = nil
	b.freeList = append(b.freeList, handle)

	return value, true
}

// Close releases all resources, calling Drop on values that implement Dropper.
func (b *LocalBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true

	for i := range b.entries {
		if b.entries[i].valid {
			if d, ok := b.entries[i].value.(Dropper); ok {
				d.Drop()
			}
			b.entries[i].valid = false
			b.entries[i].value = nil
		}
	}

	b.entries = nil
	b.freeList = nil
	return nil
}

// Len returns the number of active resources.
func (b *LocalBackend) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return len(b.entries) - len(b.freeList)
}

// Each iterates over all active resources.
// fn must not call back into the backend.
func (b *LocalBackend) Each(fn func(Handle, TypeID, any) bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for i, e := range b.entries {
		if e.valid {
			if !fn(Handle(i+1), e.typeID, e.value) {
				break
			}
		}
	}
}
