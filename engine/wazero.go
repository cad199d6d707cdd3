package engine

import (
	"context"
	"fmt"
	"sort"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"
)

// WazeroEngine owns a wazero runtime shared by host modules and guests.
type WazeroEngine struct {
	runtime wazero.Runtime
}

// Config holds configuration for engine creation
type Config struct {
	// MemoryLimitPages sets the maximum memory per instance in pages (64KB each).
	// 0 means the wazero default (65536 pages = 4GB).
	MemoryLimitPages uint32

	// CloseOnContextDone makes guest calls observe context cancellation.
	CloseOnContextDone bool
}

// NewWazeroEngine creates a new wazero-based engine
func NewWazeroEngine(ctx context.Context) (*WazeroEngine, error) {
	return NewWazeroEngineWithConfig(ctx, nil)
}

// NewWazeroEngineWithConfig creates a new engine with custom configuration
func NewWazeroEngineWithConfig(ctx context.Context, cfg *Config) (*WazeroEngine, error) {
	runtimeCfg := wazero.NewRuntimeConfig()

	if cfg != nil {
		if cfg.MemoryLimitPages > 0 {
			runtimeCfg = runtimeCfg.WithMemoryLimitPages(cfg.MemoryLimitPages)
		}
		if cfg.CloseOnContextDone {
			runtimeCfg = runtimeCfg.WithCloseOnContextDone(true)
		}
	}

	runtime := wazero.NewRuntimeWithConfig(ctx, runtimeCfg)
	return &WazeroEngine{runtime: runtime}, nil
}

// Runtime returns the underlying wazero runtime for host module registration.
func (e *WazeroEngine) Runtime() wazero.Runtime {
	return e.runtime
}

// LoadModule compiles a core WebAssembly module.
func (e *WazeroEngine) LoadModule(ctx context.Context, wasmBytes []byte) (*WazeroModule, error) {
	compiled, err := e.runtime.CompileModule(ctx, wasmBytes)
	if err != nil {
		return nil, fmt.Errorf("compile failed: %w", err)
	}

	Logger().Debug("module compiled",
		zap.Int("imports", len(compiled.ImportedFunctions())),
		zap.Int("exports", len(compiled.ExportedFunctions())))

	return &WazeroModule{
		engine:   e,
		compiled: compiled,
	}, nil
}

// Close releases the runtime and every module instantiated in it.
func (e *WazeroEngine) Close(ctx context.Context) error {
	return e.runtime.Close(ctx)
}

// WazeroModule is a compiled guest module that can be instantiated repeatedly.
type WazeroModule struct {
	engine   *WazeroEngine
	compiled wazero.CompiledModule
}

// FuncInfo describes an imported or exported function of a compiled module.
type FuncInfo struct {
	Module  string // import module name, empty for exports
	Name    string
	Params  []api.ValueType
	Results []api.ValueType
}

// Imports lists the functions the module imports.
func (m *WazeroModule) Imports() []FuncInfo {
	defs := m.compiled.ImportedFunctions()
	out := make([]FuncInfo, 0, len(defs))
	for _, d := range defs {
		mod, name, _ := d.Import()
		out = append(out, FuncInfo{
			Module:  mod,
			Name:    name,
			Params:  d.ParamTypes(),
			Results: d.ResultTypes(),
		})
	}
	return out
}

// Exports lists the functions the module exports, sorted by name.
func (m *WazeroModule) Exports() []FuncInfo {
	defs := m.compiled.ExportedFunctions()
	out := make([]FuncInfo, 0, len(defs))
	for name, d := range defs {
		out = append(out, FuncInfo{
			Name:    name,
			Params:  d.ParamTypes(),
			Results: d.ResultTypes(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// InstanceConfig holds configuration for module instantiation
type InstanceConfig struct {
	// Name registers the instance under a module name. Empty names are
	// anonymous and may be instantiated any number of times.
	Name string
}

// Instantiate links the module against host modules already registered in
// the runtime and creates a running instance.
func (m *WazeroModule) Instantiate(ctx context.Context, cfg *InstanceConfig) (*WazeroInstance, error) {
	modCfg := wazero.NewModuleConfig().WithStartFunctions("_initialize")
	if cfg != nil {
		modCfg = modCfg.WithName(cfg.Name)
	} else {
		modCfg = modCfg.WithName("")
	}

	mod, err := m.engine.runtime.InstantiateModule(ctx, m.compiled, modCfg)
	if err != nil {
		return nil, fmt.Errorf("instantiate failed: %w", err)
	}

	return &WazeroInstance{module: mod}, nil
}

// Close releases the compiled module.
func (m *WazeroModule) Close(ctx context.Context) error {
	return m.compiled.Close(ctx)
}

// WazeroInstance is a running guest module.
type WazeroInstance struct {
	module api.Module
}

// Module returns the wazero module instance.
func (i *WazeroInstance) Module() api.Module {
	return i.module
}

// GetExportedFunction returns an exported function or nil.
func (i *WazeroInstance) GetExportedFunction(name string) api.Function {
	return i.module.ExportedFunction(name)
}

// Call invokes an exported function with raw core values.
func (i *WazeroInstance) Call(ctx context.Context, name string, args ...uint64) ([]uint64, error) {
	fn := i.module.ExportedFunction(name)
	if fn == nil {
		return nil, fmt.Errorf("function %q not exported", name)
	}
	if want := len(fn.Definition().ParamTypes()); want != len(args) {
		return nil, fmt.Errorf("function %q expects %d arguments, got %d", name, want, len(args))
	}
	return fn.Call(ctx, args...)
}

func (i *WazeroInstance) Close(ctx context.Context) error {
	return i.module.Close(ctx)
}
