package binding

import (
	"sort"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/wippyai/wasm-stack/errors"
	"github.com/wippyai/wasm-stack/resource"
	"github.com/wippyai/wasm-stack/stack"
)

// ResourceTypeName is the resource type stacks are registered under.
const ResourceTypeName = "stack"

// ErrInvalidHandle matches errors for unknown or released handles.
var ErrInvalidHandle = &errors.Error{Phase: errors.PhaseHost, Kind: errors.KindInvalidHandle}

// entry serializes access to one stack; the core stack has no locking.
type entry struct {
	s       *stack.Stack
	mu      sync.Mutex
	dropped bool
}

// Drop marks the entry released so in-flight callers holding it fail cleanly.
func (e *entry) Drop() {
	e.mu.Lock()
	e.dropped = true
	e.mu.Unlock()
}

// Stats summarizes stack lifecycle counters.
type Stats struct {
	Live     int
	Created  uint64
	Released uint64
}

// Binding owns the stacks handed out to Go callers and guests.
// Each handle is guarded by its own mutex; distinct handles never contend.
type Binding struct {
	log      *zap.Logger
	table    *resource.Table
	stacks   *resource.Typed[*entry]
	types    *TypeInfo
	cfg      Config
	created  atomic.Uint64
	released atomic.Uint64
}

// New validates cfg, registers the stack resource type and builds the
// type descriptors exported to guests.
func New(cfg Config) (*Binding, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log := cfg.Logger
	if log == nil {
		log = Logger()
	}

	table := resource.NewTable()
	stacks, err := resource.NewTyped[*entry](table, ResourceTypeName)
	if err != nil {
		return nil, err
	}

	b := &Binding{
		log:    log.With(zap.String("module", cfg.ModuleName)),
		table:  table,
		stacks: stacks,
		types:  newTypeInfo(),
		cfg:    cfg,
	}
	table.Subscribe(b)

	return b, nil
}

// Config returns the binding configuration.
func (b *Binding) Config() Config {
	return b.cfg
}

// Types returns the resource and function descriptors of the binding.
func (b *Binding) Types() *TypeInfo {
	return b.types
}

// OnResourceEvent implements resource.Observer.
func (b *Binding) OnResourceEvent(e resource.Event) {
	switch e.Type {
	case resource.EventCreated:
		b.created.Add(1)
	case resource.EventDropped:
		b.released.Add(1)
	}
	if ce := b.log.Check(zap.DebugLevel, "stack "+e.Type.String()); ce != nil {
		ce.Write(zap.Uint32("handle", uint32(e.Handle)))
	}
}

// Create allocates an empty stack and returns its handle.
func (b *Binding) Create() (resource.Handle, error) {
	s, err := stack.NewWithCapacity(b.cfg.Capacity)
	if err != nil {
		return 0, err
	}
	h, err := b.stacks.Insert(&entry{s: s})
	if err != nil {
		return 0, errors.Closed("stack binding")
	}
	return h, nil
}

// Push appends v to the stack behind h.
func (b *Binding) Push(h resource.Handle, v int32) error {
	return b.with(h, func(s *stack.Stack) error {
		return s.Push(v)
	})
}

// Peek returns the top of the stack behind h.
func (b *Binding) Peek(h resource.Handle) (int32, error) {
	var v int32
	err := b.with(h, func(s *stack.Stack) error {
		var err error
		v, err = s.Peek()
		return err
	})
	return v, err
}

// Pop removes and returns the top of the stack behind h.
func (b *Binding) Pop(h resource.Handle) (int32, error) {
	var v int32
	err := b.with(h, func(s *stack.Stack) error {
		var err error
		v, err = s.Pop()
		return err
	})
	return v, err
}

// Len returns the number of values on the stack behind h.
func (b *Binding) Len(h resource.Handle) (int, error) {
	var n int
	err := b.with(h, func(s *stack.Stack) error {
		n = s.Len()
		return nil
	})
	return n, err
}

// Drop releases the stack behind h. The handle becomes invalid and may be
// reissued by a later Create.
func (b *Binding) Drop(h resource.Handle) error {
	if _, ok := b.stacks.Remove(h); !ok {
		return errors.InvalidHandle(uint32(h))
	}
	return nil
}

// Handles returns the live handles in ascending order.
func (b *Binding) Handles() []resource.Handle {
	var hs []resource.Handle
	b.stacks.Each(func(h resource.Handle, _ *entry) bool {
		hs = append(hs, h)
		return true
	})
	sort.Slice(hs, func(i, j int) bool { return hs[i] < hs[j] })
	return hs
}

// Stats returns lifecycle counters.
func (b *Binding) Stats() Stats {
	return Stats{
		Live:     b.stacks.Len(),
		Created:  b.created.Load(),
		Released: b.released.Load(),
	}
}

// Close releases every stack. Later Create calls fail with a closed error.
func (b *Binding) Close() error {
	return b.table.Close()
}

func (b *Binding) with(h resource.Handle, fn func(*stack.Stack) error) error {
	e, ok := b.stacks.Get(h)
	if !ok {
		return errors.InvalidHandle(uint32(h))
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.dropped {
		return errors.InvalidHandle(uint32(h))
	}
	return fn(e.s)
}
