package runtime

import (
	"context"
	"regexp"
	"strings"
	"sync"

	"go.bytecodealliance.org/wit"
	"go.uber.org/zap"

	"github.com/wippyai/wasm-stack/engine"
	"github.com/wippyai/wasm-stack/errors"
)

// Module is a compiled guest module whose stack imports have been checked.
type Module struct {
	funcTypesErr  error
	runtime       *Runtime
	wazeroModule  *engine.WazeroModule
	funcTypes     map[string]*funcSignature
	witText       string
	funcTypesOnce sync.Once
}

// Instantiate creates an anonymous instance linked against the runtime's
// stack host module. A module may be instantiated any number of times.
func (m *Module) Instantiate(ctx context.Context) (*Instance, error) {
	wazeroInstance, err := m.wazeroModule.Instantiate(ctx, nil)
	if err != nil {
		return nil, errors.Instantiation(err)
	}

	Logger().Debug("instance created")

	return &Instance{
		module:         m,
		wazeroInstance: wazeroInstance,
	}, nil
}

// Close releases the compiled module. Running instances are unaffected.
func (m *Module) Close(ctx context.Context) error {
	return m.wazeroModule.Close(ctx)
}

// Export describes an exported function by its core signature.
type Export = engine.FuncInfo

// Exports lists exported functions sorted by name.
func (m *Module) Exports() []Export {
	return m.wazeroModule.Exports()
}

// Imports lists imported functions in declaration order.
func (m *Module) Imports() []engine.FuncInfo {
	return m.wazeroModule.Imports()
}

// UsesStacks reports whether the module imports anything from the stack
// host module.
func (m *Module) UsesStacks() bool {
	name := m.runtime.stacks.Config().ModuleName
	for _, imp := range m.wazeroModule.Imports() {
		if imp.Module == name {
			return true
		}
	}
	return false
}

type funcSignature struct {
	params  []wit.Type
	results []wit.Type
}

// GetFunctionTypes returns WIT param and result types for a function.
// Parses witText lazily on first call.
func (m *Module) GetFunctionTypes(name string) ([]wit.Type, []wit.Type, error) {
	m.funcTypesOnce.Do(func() {
		m.funcTypes, m.funcTypesErr = parseWitFunctions(m.witText)
	})

	if m.funcTypesErr != nil {
		return nil, nil, m.funcTypesErr
	}

	sig, ok := m.funcTypes[name]
	if !ok {
		return nil, nil, errors.NotFound(errors.PhaseRuntime, "function", name)
	}

	if ce := Logger().Check(zap.DebugLevel, "function types resolved"); ce != nil {
		ce.Write(zap.String("function", name), zap.Int("params", len(sig.params)), zap.Int("results", len(sig.results)))
	}

	return sig.params, sig.results, nil
}

var witFuncPattern = regexp.MustCompile(`(?:export\s+)?([a-zA-Z_][a-zA-Z0-9_-]*)\s*:\s*func\s*\(([^)]*)\)(?:\s*->\s*([^;]+))?`)

// parseWitFunctions extracts function signatures of the form
// `[export] name: func(a: t, ...) [-> r | -> (r1, r2)];` from WIT text.
// Only the types wit.ParseType understands are accepted.
func parseWitFunctions(witText string) (map[string]*funcSignature, error) {
	funcs := make(map[string]*funcSignature)

	for _, match := range witFuncPattern.FindAllStringSubmatch(witText, -1) {
		name := match[1]
		sig := &funcSignature{}

		for _, p := range splitParams(match[2]) {
			typ := p
			if idx := strings.LastIndex(p, ":"); idx != -1 {
				typ = p[idx+1:]
			}
			t, err := parseWitType(typ)
			if err != nil {
				return nil, errors.ParseFailed("param type of "+name, err)
			}
			sig.params = append(sig.params, t)
		}

		result := strings.TrimSpace(match[3])
		if strings.HasPrefix(result, "(") && strings.HasSuffix(result, ")") {
			result = result[1 : len(result)-1]
		}
		for _, r := range splitParams(result) {
			t, err := parseWitType(r)
			if err != nil {
				return nil, errors.ParseFailed("result type of "+name, err)
			}
			sig.results = append(sig.results, t)
		}

		funcs[name] = sig
	}

	if len(funcs) == 0 {
		return nil, errors.InvalidInput(errors.PhaseParse, "no functions found in WIT text")
	}
	return funcs, nil
}

// splitParams splits a comma separated list, ignoring commas nested in
// parentheses or angle brackets.
func splitParams(s string) []string {
	var (
		result []string
		start  int
		depth  int
	)
	for i, ch := range s {
		switch ch {
		case '(', '<':
			depth++
		case ')', '>':
			depth--
		case ',':
			if depth == 0 {
				if part := strings.TrimSpace(s[start:i]); part != "" {
					result = append(result, part)
				}
				start = i + 1
			}
		}
	}
	if part := strings.TrimSpace(s[start:]); part != "" {
		result = append(result, part)
	}
	return result
}

func parseWitType(s string) (wit.Type, error) {
	return wit.ParseType(strings.TrimSpace(s))
}
