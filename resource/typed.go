package resource

// Typed provides type-safe access to resources of a single registered type.
type Typed[T any] struct {
	table  *Table
	typeID TypeID
}

// NewTyped opens the named resource type on table and returns a typed view.
func NewTyped[T any](table *Table, name string) (*Typed[T], error) {
	id, err := table.OpenType(name)
	if err != nil {
		return nil, err
	}
	return &Typed[T]{table: table, typeID: id}, nil
}

// TypeID returns the ID of the underlying resource type.
func (t *Typed[T]) TypeID() TypeID {
	return t.typeID
}

// Table returns the shared table.
func (t *Typed[T]) Table() *Table {
	return t.table
}

// Insert adds a value and returns its handle.
func (t *Typed[T]) Insert(value T) (Handle, error) {
	return t.table.Insert(t.typeID, value)
}

// Get retrieves a value by handle. Handles of other types are rejected.
func (t *Typed[T]) Get(handle Handle) (T, bool) {
	var zero T
	v, ok := t.table.GetTyped(handle, t.typeID)
	if !ok {
		return zero, false
	}
	typed, ok := v.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}

// Remove drops a resource of this type and returns its value.
func (t *Typed[T]) Remove(handle Handle) (T, bool) {
	var zero T
	if _, ok := t.Get(handle); !ok {
		return zero, false
	}
	v, ok := t.table.Remove(handle)
	if !ok {
		return zero, false
	}
	typed, _ := v.(T)
	return typed, true
}

// Len returns the number of live resources of this type.
func (t *Typed[T]) Len() int {
	n := 0
	t.Each(func(Handle, T) bool {
		n++
		return true
	})
	return n
}

// Each iterates over live resources of this type until fn returns false.
func (t *Typed[T]) Each(fn func(Handle, T) bool) {
	t.table.Each(func(h Handle, id TypeID, v any) bool {
		if id != t.typeID {
			return true
		}
		typed, ok := v.(T)
		if !ok {
			return true
		}
		return fn(h, typed)
	})
}
