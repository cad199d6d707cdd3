package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/tetratelabs/wazero/api"
	"go.bytecodealliance.org/wit"

	"github.com/wippyai/wasm-stack/binding"
	"github.com/wippyai/wasm-stack/engine"
	"github.com/wippyai/wasm-stack/errors"
	"github.com/wippyai/wasm-stack/runtime"
)

type guestOptions struct {
	wasmFile string
	witFile  string
	funcName string
	args     string
	list     bool

	// timeout bounds the guest call. It needs an engine created with
	// CloseOnContextDone.
	timeout time.Duration
}

// runGuest loads a core module linked against the stack host module and
// either lists its exports or calls one of them.
func runGuest(ctx context.Context, rt *runtime.Runtime, opts guestOptions, w io.Writer) error {
	data, err := os.ReadFile(opts.wasmFile)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	witText := ""
	if opts.witFile != "" {
		b, err := os.ReadFile(opts.witFile)
		if err != nil {
			return fmt.Errorf("read WIT: %w", err)
		}
		witText = string(b)
	}

	mod, err := rt.LoadWASM(ctx, data, witText)
	if err != nil {
		return err
	}
	defer mod.Close(ctx)

	fmt.Fprintf(w, "Module: %s\n", opts.wasmFile)
	fmt.Fprintf(w, "Imports stacks: %v\n", mod.UsesStacks())
	fmt.Fprintf(w, "\nExported functions:\n")
	for _, e := range mod.Exports() {
		desc := binding.FuncDesc{Name: e.Name, CoreParams: e.Params, CoreResults: e.Results}
		fmt.Fprintf(w, "  %s %s\n", e.Name, desc.CoreSignature())
	}

	if opts.list {
		return nil
	}

	funcName := opts.funcName
	if funcName == "" {
		funcName = pickEntry(mod.Exports())
		if funcName == "" {
			fmt.Fprintf(w, "\nNo function specified and no common entry point found.\n")
			fmt.Fprintf(w, "Use -func to specify a function to call.\n")
			return nil
		}
	}

	inst, err := mod.Instantiate(ctx)
	if err != nil {
		return err
	}
	defer inst.Close(ctx)

	var rawArgs []string
	if opts.args != "" {
		rawArgs = strings.Split(opts.args, ",")
	}

	var params, results []wit.Type
	if witText != "" {
		params, results, err = mod.GetFunctionTypes(funcName)
	} else {
		params, results, err = coreTypes(mod.Exports(), funcName)
	}
	if err != nil {
		return err
	}
	if len(rawArgs) != len(params) {
		return errors.New(errors.PhaseParse, errors.KindInvalidInput).
			Path(funcName).
			Detail("expected %d arguments, got %d", len(params), len(rawArgs)).
			Build()
	}

	args := make([]any, len(rawArgs))
	for i, s := range rawArgs {
		args[i], err = parseArg(strings.TrimSpace(s), params[i])
		if err != nil {
			return err
		}
	}

	callCtx := ctx
	if opts.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}

	fmt.Fprintf(w, "\nCalling %s(%s)...\n", funcName, strings.Join(rawArgs, ", "))
	result, err := inst.CallWithTypes(callCtx, funcName, params, results, args...)
	if err != nil {
		return fmt.Errorf("call %s: %w", funcName, err)
	}
	fmt.Fprintf(w, "Result: %v\n", result)

	st := rt.Stacks().Stats()
	fmt.Fprintf(w, "Stacks: live=%d created=%d released=%d\n", st.Live, st.Created, st.Released)
	return nil
}

func pickEntry(exports []runtime.Export) string {
	for _, name := range []string{"_start", "run", "main"} {
		for _, e := range exports {
			if e.Name == name {
				return name
			}
		}
	}
	if len(exports) == 1 {
		return exports[0].Name
	}
	return ""
}

// coreTypes derives WIT types from a core signature for modules loaded
// without WIT text: i32 is treated as s32, i64 as s64.
func coreTypes(exports []engine.FuncInfo, name string) (params, results []wit.Type, err error) {
	for _, e := range exports {
		if e.Name != name {
			continue
		}
		if params, err = witTypes(e.Params); err != nil {
			return nil, nil, err
		}
		if results, err = witTypes(e.Results); err != nil {
			return nil, nil, err
		}
		return params, results, nil
	}
	return nil, nil, errors.NotFound(errors.PhaseRuntime, "function", name)
}

func witTypes(vts []api.ValueType) ([]wit.Type, error) {
	out := make([]wit.Type, len(vts))
	for i, vt := range vts {
		switch vt {
		case api.ValueTypeI32:
			out[i] = wit.S32{}
		case api.ValueTypeI64:
			out[i] = wit.S64{}
		case api.ValueTypeF32:
			out[i] = wit.F32{}
		case api.ValueTypeF64:
			out[i] = wit.F64{}
		default:
			return nil, errors.New(errors.PhaseRuntime, errors.KindTypeMismatch).
				Detail("unsupported core type %s", api.ValueTypeName(vt)).
				Build()
		}
	}
	return out, nil
}

// parseArg converts command-line text to the Go value expected for t.
func parseArg(s string, t wit.Type) (any, error) {
	var (
		v   any
		err error
	)
	switch t.(type) {
	case wit.Bool:
		v, err = strconv.ParseBool(s)
	case wit.U8, wit.U16, wit.U32, wit.U64:
		v, err = strconv.ParseUint(s, 10, 64)
	case wit.S8, wit.S16, wit.S32, wit.S64:
		v, err = strconv.ParseInt(s, 10, 64)
	case wit.F32:
		var f float64
		f, err = strconv.ParseFloat(s, 32)
		v = float32(f)
	case wit.F64:
		v, err = strconv.ParseFloat(s, 64)
	case wit.Char:
		r := []rune(s)
		if len(r) != 1 {
			return nil, errors.InvalidInput(errors.PhaseParse, fmt.Sprintf("char argument %q must be one character", s))
		}
		v = r[0]
	default:
		return nil, errors.New(errors.PhaseParse, errors.KindTypeMismatch).
			WitType(binding.TypeString(t)).
			Detail("cannot parse argument %q", s).
			Build()
	}
	if err != nil {
		return nil, errors.ParseFailed("argument "+strconv.Quote(s), err)
	}
	return v, nil
}
