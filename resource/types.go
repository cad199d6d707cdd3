package resource

// Handle is an opaque reference to a resource in a table.
// Handle 0 is reserved and always invalid.
type Handle uint32

// TypeID identifies a registered resource type.
type TypeID uint32

// EventType distinguishes resource lifecycle notifications.
type EventType uint8

const (
	EventCreated EventType = iota
	EventDropped
)

func (t EventType) String() string {
	switch t {
	case EventCreated:
		return "created"
	case EventDropped:
		return "dropped"
	default:
		return "unknown"
	}
}

// Event represents a resource lifecycle event.
type Event struct {
	Value  any
	Handle Handle
	TypeID TypeID
	Type   EventType
}

// Observer receives notifications about resource lifecycle events.
type Observer interface {
	OnResourceEvent(Event)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(Event)

func (f ObserverFunc) OnResourceEvent(e Event) {
	f(e)
}

// Backend provides the underlying storage mechanism for resources.
type Backend interface {
	// Create stores a value and returns a handle.
	Create(typeID TypeID, value any) (Handle, error)

	// Get retrieves a value by handle.
	Get(handle Handle) (any, bool)

	// TypeID returns the type a handle was created with.
	TypeID(handle Handle) (TypeID, bool)

	// Drop removes a resource and returns (value, true) if it was live.
	Drop(handle Handle) (any, bool)

	// Len returns the number of live resources.
	Len() int

	// Each iterates over live resources until fn returns false.
	Each(fn func(Handle, TypeID, any) bool)

	// Close releases all resources held by the backend.
	Close() error
}

// Dropper is optionally implemented by resource values that need cleanup.
type Dropper interface {
	Drop()
}
