package runtime

import (
	"context"

	"github.com/tetratelabs/wazero/api"
	"go.bytecodealliance.org/wit"

	"github.com/wippyai/wasm-stack/engine"
	"github.com/wippyai/wasm-stack/errors"
)

// Instance is a running guest. Not safe for concurrent calls.
type Instance struct {
	module         *Module
	wazeroInstance *engine.WazeroInstance
}

// Call invokes an exported function using the signature declared in the
// module's WIT text. Use CallWithTypes for modules loaded without WIT.
//
// A function with no results returns nil, one result returns the value,
// and several results return []any.
func (i *Instance) Call(ctx context.Context, name string, args ...any) (any, error) {
	if i.module == nil {
		return nil, errors.NotInitialized(errors.PhaseRuntime, "module")
	}
	if i.module.witText == "" {
		return nil, errors.InvalidInput(errors.PhaseRuntime, "Call() requires WIT definitions; use CallWithTypes() for modules without WIT")
	}

	params, results, err := i.module.GetFunctionTypes(name)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseRuntime, errors.KindNotFound, err, "get function types from WIT")
	}
	return i.CallWithTypes(ctx, name, params, results, args...)
}

// CallWithTypes invokes an exported function with explicit WIT types.
// Only primitive WIT types are supported; resource handles travel as u32.
func (i *Instance) CallWithTypes(ctx context.Context, name string, params, results []wit.Type, args ...any) (any, error) {
	if len(args) != len(params) {
		return nil, errors.New(errors.PhaseRuntime, errors.KindInvalidInput).
			Path(name).
			Detail("expected %d arguments, got %d", len(params), len(args)).
			Build()
	}

	flat := make([]uint64, len(args))
	for idx, arg := range args {
		v, err := lowerValue(params[idx], arg, []string{name, paramName(idx)})
		if err != nil {
			return nil, err
		}
		flat[idx] = v
	}

	out, err := i.wazeroInstance.Call(ctx, name, flat...)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseRuntime, errors.KindInvalidData, err, "call "+name)
	}
	if len(out) != len(results) {
		return nil, errors.New(errors.PhaseRuntime, errors.KindTypeMismatch).
			Path(name).
			Detail("function returned %d values, WIT declares %d", len(out), len(results)).
			Build()
	}

	values := make([]any, len(out))
	for idx, raw := range out {
		v, err := liftValue(results[idx], raw, []string{name, "result"})
		if err != nil {
			return nil, err
		}
		values[idx] = v
	}

	switch len(values) {
	case 0:
		return nil, nil
	case 1:
		return values[0], nil
	default:
		return values, nil
	}
}

// CallRaw invokes an exported function with core values and no conversion.
func (i *Instance) CallRaw(ctx context.Context, name string, args ...uint64) ([]uint64, error) {
	return i.wazeroInstance.Call(ctx, name, args...)
}

// Memory returns the instance's exported memory, or nil.
func (i *Instance) Memory() api.Memory {
	return i.wazeroInstance.Module().Memory()
}

func (i *Instance) Close(ctx context.Context) error {
	return i.wazeroInstance.Close(ctx)
}
