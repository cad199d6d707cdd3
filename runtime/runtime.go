package runtime

import (
	"bytes"
	"context"
	"slices"

	"go.uber.org/zap"

	"github.com/wippyai/wasm-stack/binding"
	"github.com/wippyai/wasm-stack/engine"
	"github.com/wippyai/wasm-stack/errors"
)

// Config holds configuration for runtime creation
type Config struct {
	Engine  engine.Config
	Binding binding.Config
}

// DefaultConfig returns a runtime with the default stack binding.
func DefaultConfig() Config {
	return Config{Binding: binding.DefaultConfig()}
}

// Runtime owns a wazero engine with the stack host module registered.
type Runtime struct {
	engine *engine.WazeroEngine
	stacks *binding.Binding
}

// New creates a runtime with DefaultConfig.
func New(ctx context.Context) (*Runtime, error) {
	return NewWithConfig(ctx, DefaultConfig())
}

// NewWithConfig creates the engine, the stack binding, and registers the
// binding as a host module.
func NewWithConfig(ctx context.Context, cfg Config) (*Runtime, error) {
	stacks, err := binding.New(cfg.Binding)
	if err != nil {
		return nil, err
	}

	eng, err := engine.NewWazeroEngineWithConfig(ctx, &cfg.Engine)
	if err != nil {
		_ = stacks.Close()
		return nil, errors.Load("create engine", err)
	}

	if _, err := stacks.Instantiate(ctx, eng.Runtime()); err != nil {
		_ = stacks.Close()
		_ = eng.Close(ctx)
		return nil, err
	}

	return &Runtime{
		engine: eng,
		stacks: stacks,
	}, nil
}

// Stacks returns the stack binding shared by Go callers and guests.
func (r *Runtime) Stacks() *binding.Binding {
	return r.stacks
}

// Close releases every stack and then the engine with all instances.
func (r *Runtime) Close(ctx context.Context) error {
	stacksErr := r.stacks.Close()
	if err := r.engine.Close(ctx); err != nil {
		return err
	}
	return stacksErr
}

var componentHeader = []byte{0x00, 0x61, 0x73, 0x6d, 0x0d, 0x00, 0x01, 0x00}

// LoadWASM loads a core WebAssembly module.
// witText provides function signatures for typed calls since core
// modules lack type metadata; it may be empty.
//
// Imports from the stack module are checked against the binding's exported
// signatures so mismatches fail here rather than at instantiation.
func (r *Runtime) LoadWASM(ctx context.Context, wasm []byte, witText string) (*Module, error) {
	if bytes.HasPrefix(wasm, componentHeader) {
		return nil, errors.InvalidInput(errors.PhaseLoad, "component binaries are not supported; provide a core module")
	}

	wazeroModule, err := r.engine.LoadModule(ctx, wasm)
	if err != nil {
		return nil, errors.Load("load module", err)
	}

	if err := r.checkImports(wazeroModule); err != nil {
		_ = wazeroModule.Close(ctx)
		return nil, err
	}

	Logger().Debug("module loaded",
		zap.Int("imports", len(wazeroModule.Imports())),
		zap.Bool("wit", witText != ""))

	return &Module{
		runtime:      r,
		wazeroModule: wazeroModule,
		witText:      witText,
	}, nil
}

func (r *Runtime) checkImports(m *engine.WazeroModule) error {
	name := r.stacks.Config().ModuleName
	types := r.stacks.Types()

	for _, imp := range m.Imports() {
		if imp.Module != name {
			continue
		}
		f, ok := types.Function(imp.Name)
		if !ok {
			return errors.NotFound(errors.PhaseLoad, "stack function", imp.Name)
		}
		if !slices.Equal(imp.Params, f.CoreParams) || !slices.Equal(imp.Results, f.CoreResults) {
			imported := binding.FuncDesc{CoreParams: imp.Params, CoreResults: imp.Results}
			return errors.New(errors.PhaseLoad, errors.KindTypeMismatch).
				Path(name, imp.Name).
				Detail("imported as %s, exported as %s", imported.CoreSignature(), f.CoreSignature()).
				Build()
		}
	}
	return nil
}
