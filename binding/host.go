package binding

import (
	"context"
	"fmt"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/wasm-stack/errors"
	"github.com/wippyai/wasm-stack/resource"
)

// Instantiate registers the binding as a host module in rt under
// Config.ModuleName. Guests importing that module name can then be
// instantiated in rt. Registering the same name twice in one runtime fails.
func (b *Binding) Instantiate(ctx context.Context, rt wazero.Runtime) (api.Module, error) {
	name := b.cfg.ModuleName
	if rt.Module(name) != nil {
		return nil, errors.Registration(name, fmt.Errorf("module %q already instantiated", name))
	}

	handlers := b.handlers()
	builder := rt.NewHostModuleBuilder(name)
	for _, f := range b.types.Functions {
		fn, ok := handlers[f.Name]
		if !ok {
			return nil, errors.Registration(name, fmt.Errorf("no handler for %q", f.Name))
		}
		paramNames := make([]string, len(f.Params))
		for i, p := range f.Params {
			paramNames[i] = p.Name
		}
		builder.NewFunctionBuilder().
			WithGoModuleFunction(fn, f.CoreParams, f.CoreResults).
			WithParameterNames(paramNames...).
			Export(f.Name)
	}

	mod, err := builder.Instantiate(ctx)
	if err != nil {
		return nil, errors.Registration(name, err)
	}

	b.log.Info("host module registered",
		zap.Int("functions", len(b.types.Functions)),
		zap.Int("capacity", b.cfg.Capacity))
	return mod, nil
}

func (b *Binding) handlers() map[string]api.GoModuleFunc {
	return map[string]api.GoModuleFunc{
		"new":     b.hostNew,
		"push":    b.hostPush,
		"peek":    b.hostPeek,
		"pop":     b.hostPop,
		"drop":    b.hostDrop,
		"len":     b.hostLen,
		"message": b.hostMessage,
	}
}

// report converts err to a guest status, logging failures at debug level.
func (b *Binding) report(op string, h resource.Handle, err error) uint64 {
	st := StatusOf(err)
	if st != StatusOK {
		if ce := b.log.Check(zap.DebugLevel, "guest call failed"); ce != nil {
			ce.Write(
				zap.String("op", op),
				zap.Uint32("handle", uint32(h)),
				zap.Stringer("status", st),
				zap.Error(err))
		}
	}
	return api.EncodeI32(int32(st))
}

// new() -> handle; 0 on failure.
func (b *Binding) hostNew(_ context.Context, _ api.Module, stack []uint64) {
	h, err := b.Create()
	if err != nil {
		b.report("new", 0, err)
		stack[0] = api.EncodeU32(0)
		return
	}
	stack[0] = api.EncodeU32(uint32(h))
}

// push(handle, value) -> status
func (b *Binding) hostPush(_ context.Context, _ api.Module, stack []uint64) {
	h := resource.Handle(api.DecodeU32(stack[0]))
	v := api.DecodeI32(stack[1])
	stack[0] = b.report("push", h, b.Push(h, v))
}

// peek(handle) -> (value, status)
func (b *Binding) hostPeek(_ context.Context, _ api.Module, stack []uint64) {
	h := resource.Handle(api.DecodeU32(stack[0]))
	v, err := b.Peek(h)
	stack[0] = api.EncodeI32(v)
	stack[1] = b.report("peek", h, err)
}

// pop(handle) -> (value, status)
func (b *Binding) hostPop(_ context.Context, _ api.Module, stack []uint64) {
	h := resource.Handle(api.DecodeU32(stack[0]))
	v, err := b.Pop(h)
	stack[0] = api.EncodeI32(v)
	stack[1] = b.report("pop", h, err)
}

// drop(handle) -> status
func (b *Binding) hostDrop(_ context.Context, _ api.Module, stack []uint64) {
	h := resource.Handle(api.DecodeU32(stack[0]))
	stack[0] = b.report("drop", h, b.Drop(h))
}

// len(handle) -> length; -1 for invalid handles.
func (b *Binding) hostLen(_ context.Context, _ api.Module, stack []uint64) {
	h := resource.Handle(api.DecodeU32(stack[0]))
	n, err := b.Len(h)
	if err != nil {
		b.report("len", h, err)
		stack[0] = api.EncodeI32(-1)
		return
	}
	stack[0] = api.EncodeI32(int32(n))
}

// message(status, ptr, cap) -> written
// Copies the status message into the caller's memory, truncated to cap.
func (b *Binding) hostMessage(_ context.Context, mod api.Module, stack []uint64) {
	msg := Status(api.DecodeI32(stack[0])).Message()
	ptr := api.DecodeU32(stack[1])
	capacity := api.DecodeU32(stack[2])

	n := uint32(len(msg))
	if n > capacity {
		n = capacity
	}

	mem := mod.Memory()
	if mem == nil || n == 0 || !mem.Write(ptr, []byte(msg[:n])) {
		stack[0] = api.EncodeU32(0)
		return
	}
	stack[0] = api.EncodeU32(n)
}
