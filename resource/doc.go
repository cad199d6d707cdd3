// Package resource provides opaque handle management for host-side values.
//
// Resources are host values that guests and Go callers reference only through
// an integer Handle. Handle 0 is never issued, so guests can use it as a
// failure sentinel.
//
// # Resource Types
//
// Each kind of resource is registered once by name and gets a TypeID.
// Re-opening a name returns the existing ID:
//
//	table := resource.NewTable()
//	id, err := table.OpenType("stack")
//
// # Handle Table
//
//	handle, err := table.Insert(id, value)
//	value, ok := table.GetTyped(handle, id)
//	value, ok = table.Remove(handle)
//
// Typed wraps a table for a single resource type:
//
//	stacks, err := resource.NewTyped[*Entry](table, "stack")
//	h, err := stacks.Insert(entry)
//	entry, ok := stacks.Get(h)
//
// # Observers
//
// Register observers to track resource lifecycle events:
//
//	table.Subscribe(resource.ObserverFunc(func(e resource.Event) {
//	    log.Printf("resource %d %s", e.Handle, e.Type)
//	}))
//
// # Memory Management
//
// Resources live until Remove is called or the table is closed. Values that
// implement Dropper have Drop called when they leave the table.
package resource
