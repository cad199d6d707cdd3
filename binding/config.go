package binding

import (
	"go.uber.org/zap"

	"github.com/wippyai/wasm-stack/errors"
	"github.com/wippyai/wasm-stack/stack"
)

// DefaultModuleName is the import module name guests use for stack functions.
const DefaultModuleName = "stack"

// Config configures a Binding.
type Config struct {
	// Logger receives lifecycle and guest-facing failure logs.
	// nil falls back to the package logger.
	Logger *zap.Logger

	// ModuleName is the wazero host module name guests import from.
	ModuleName string

	// Capacity is the fixed capacity of every stack the binding creates.
	Capacity int
}

// DefaultConfig returns the default binding configuration.
func DefaultConfig() Config {
	return Config{
		ModuleName: DefaultModuleName,
		Capacity:   stack.DefaultCapacity,
	}
}

// Validate reports configuration errors.
func (c Config) Validate() error {
	if c.ModuleName == "" {
		return errors.InvalidInput(errors.PhaseConfig, "module name cannot be empty")
	}
	if c.Capacity < 1 {
		return errors.New(errors.PhaseConfig, errors.KindInvalidInput).
			Path("capacity").
			Value(c.Capacity).
			Detail("capacity must be positive, got %d", c.Capacity).
			Build()
	}
	return nil
}
