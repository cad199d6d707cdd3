package resource

import (
	"sync"

	"github.com/wippyai/wasm-stack/errors"
)

// Table maps handles to values of registered resource types and notifies
// observers about lifecycle changes. Safe for concurrent use.
type Table struct {
	backend   Backend
	types     map[string]TypeID
	names     []string
	observers []Observer
	typesMu   sync.RWMutex
	obsMu     sync.RWMutex
	closed    bool
	closeMu   sync.RWMutex
}

// NewTable creates a table backed by a LocalBackend.
func NewTable() *Table {
	return &Table{
		backend: NewLocalBackend(),
		types:   make(map[string]TypeID),
	}
}

// OpenType registers a resource type by name and returns its ID.
// Opening an already registered name takes over the existing ID.
func (t *Table) OpenType(name string) (TypeID, error) {
	if name == "" {
		return 0, errors.InvalidInput(errors.PhaseHost, "resource type name cannot be empty")
	}

	t.typesMu.Lock()
	defer t.typesMu.Unlock()

	if id, ok := t.types[name]; ok {
		return id, nil
	}
	t.names = append(t.names, name)
	id := TypeID(len(t.names))
	t.types[name] = id
	return id, nil
}

// TypeName returns the registered name of a type ID.
func (t *Table) TypeName(id TypeID) (string, bool) {
	t.typesMu.RLock()
	defer t.typesMu.RUnlock()

	if id == 0 || int(id) > len(t.names) {
		return "", false
	}
	return t.names[id-1], true
}

// Insert adds a value and returns its handle.
// Close waits for in-flight inserts, so every created event is later
// matched by a dropped event.
func (t *Table) Insert(typeID TypeID, value any) (Handle, error) {
	t.closeMu.RLock()
	defer t.closeMu.RUnlock()
	if t.closed {
		return 0, errors.Closed("resource table")
	}

	handle, err := t.backend.Create(typeID, value)
	if err != nil {
		return 0, err
	}

	t.notify(Event{
		Type:   EventCreated,
		Handle: handle,
		TypeID: typeID,
		Value:  value,
	})

	return handle, nil
}

// Get retrieves a value by handle.
func (t *Table) Get(handle Handle) (any, bool) {
	return t.backend.Get(handle)
}

// GetTyped retrieves a value only if it matches the expected type.
func (t *Table) GetTyped(handle Handle, typeID TypeID) (any, bool) {
	actual, ok := t.backend.TypeID(handle)
	if !ok || actual != typeID {
		return nil, false
	}
	return t.backend.Get(handle)
}

// Remove drops a resource and returns (value, true) if found.
// Values implementing Dropper have Drop called before observers are notified.
func (t *Table) Remove(handle Handle) (any, bool) {
	typeID, _ := t.backend.TypeID(handle)
	value, ok := t.backend.Drop(handle)
	if !ok {
		return nil, false
	}

	if d, ok := value.(Dropper); ok {
		d.Drop()
	}

	t.notify(Event{
		Type:   EventDropped,
		Handle: handle,
		TypeID: typeID,
		Value:  value,
	})

	return value, true
}

// Subscribe adds an observer for lifecycle events.
func (t *Table) Subscribe(o Observer) {
	t.obsMu.Lock()
	defer t.obsMu.Unlock()
	t.observers = append(t.observers, o)
}

// Unsubscribe removes an observer. Observers must be comparable.
func (t *Table) Unsubscribe(o Observer) {
	t.obsMu.Lock()
	defer t.obsMu.Unlock()
	for i, obs := range t.observers {
		if obs == o {
			t.observers = append(t.observers[:i], t.observers[i+1:]...)
			return
		}
	}
}

// Len returns the number of active resources.
func (t *Table) Len() int {
	return t.backend.Len()
}

// Each iterates over active resources until fn returns false.
func (t *Table) Each(fn func(Handle, TypeID, any) bool) {
	t.backend.Each(fn)
}

// Clear drops all resources, notifying observers for each.
func (t *Table) Clear() {
	// Collect handles first to avoid holding the backend lock during Remove
	var handles []Handle
	t.backend.Each(func(h Handle, _ TypeID, _ any) bool {
		handles = append(handles, h)
		return true
	})
	for _, h := range handles {
		t.Remove(h)
	}
}

// Close drops all resources and stops accepting inserts.
func (t *Table) Close() error {
	t.closeMu.Lock()
	if t.closed {
		t.closeMu.Unlock()
		return nil
	}
	t.closed = true
	t.closeMu.Unlock()

	t.Clear()
	return t.backend.Close()
}

func (t *Table) notify(e Event) {
	t.obsMu.RLock()
	defer t.obsMu.RUnlock()
	for _, o := range t.observers {
		o.OnResourceEvent(e)
	}
}
