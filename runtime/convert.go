package runtime

import (
	"fmt"
	"math"
	"strconv"
	"unicode/utf8"

	"github.com/tetratelabs/wazero/api"
	"go.bytecodealliance.org/wit"

	"github.com/wippyai/wasm-stack/binding"
	"github.com/wippyai/wasm-stack/errors"
)

func paramName(i int) string {
	return "param" + strconv.Itoa(i)
}

// lowerValue converts a Go value to the core representation of t.
// Integer arguments may be given as any Go integer type as long as the value
// fits; this keeps literal arguments like Call(ctx, "f", 7) working.
func lowerValue(t wit.Type, v any, path []string) (uint64, error) {
	mismatch := func() error {
		return errors.TypeMismatch(errors.PhaseRuntime, path, fmt.Sprintf("%T", v), binding.TypeString(t))
	}

	switch t.(type) {
	case wit.Bool:
		b, ok := v.(bool)
		if !ok {
			return 0, mismatch()
		}
		if b {
			return 1, nil
		}
		return 0, nil
	case wit.F32:
		f, ok := toFloat(v)
		if !ok {
			return 0, mismatch()
		}
		return api.EncodeF32(float32(f)), nil
	case wit.F64:
		f, ok := toFloat(v)
		if !ok {
			return 0, mismatch()
		}
		return api.EncodeF64(f), nil
	case wit.Char:
		r, ok := v.(rune)
		if !ok || !utf8.ValidRune(r) {
			return 0, mismatch()
		}
		return api.EncodeU32(uint32(r)), nil
	}

	lo, hi, ok := intRange(t)
	if !ok {
		return 0, errors.New(errors.PhaseRuntime, errors.KindTypeMismatch).
			Path(path...).
			GoType(fmt.Sprintf("%T", v)).
			WitType(binding.TypeString(t)).
			Detail("only primitive types are supported").
			Build()
	}

	switch n := v.(type) {
	case uint64:
		if hi >= 0 && n > uint64(hi) {
			return 0, outOfRange(path, v, t)
		}
		if hi < 0 {
			return n, nil
		}
		return lowerInt(t, int64(n)), nil
	case uint:
		return lowerValue(t, uint64(n), path)
	}

	n, ok := toInt(v)
	if !ok {
		return 0, mismatch()
	}
	if n < lo || (hi >= 0 && n > hi) {
		return 0, outOfRange(path, v, t)
	}
	return lowerInt(t, n), nil
}

// intRange returns the inclusive bounds of an integer type. hi is -1 when
// the upper bound exceeds int64 (u64).
func intRange(t wit.Type) (lo, hi int64, ok bool) {
	switch t.(type) {
	case wit.S8:
		return math.MinInt8, math.MaxInt8, true
	case wit.U8:
		return 0, math.MaxUint8, true
	case wit.S16:
		return math.MinInt16, math.MaxInt16, true
	case wit.U16:
		return 0, math.MaxUint16, true
	case wit.S32:
		return math.MinInt32, math.MaxInt32, true
	case wit.U32:
		return 0, math.MaxUint32, true
	case wit.S64:
		return math.MinInt64, math.MaxInt64, true
	case wit.U64:
		return 0, -1, true
	}
	return 0, 0, false
}

func lowerInt(t wit.Type, n int64) uint64 {
	switch t.(type) {
	case wit.S64, wit.U64:
		return uint64(n)
	case wit.U8, wit.U16, wit.U32:
		return api.EncodeU32(uint32(n))
	default:
		return api.EncodeI32(int32(n))
	}
}

func toInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	}
	return 0, false
}

func toFloat(v any) (float64, bool) {
	switch f := v.(type) {
	case float32:
		return float64(f), true
	case float64:
		return f, true
	}
	return 0, false
}

func outOfRange(path []string, v any, t wit.Type) error {
	return errors.New(errors.PhaseRuntime, errors.KindInvalidInput).
		Path(path...).
		Value(v).
		GoType(fmt.Sprintf("%T", v)).
		WitType(binding.TypeString(t)).
		Detail("value %v out of range", v).
		Build()
}

// liftValue converts a core result to the Go type matching t.
func liftValue(t wit.Type, raw uint64, path []string) (any, error) {
	switch t.(type) {
	case wit.Bool:
		return raw != 0, nil
	case wit.U8:
		return uint8(raw), nil
	case wit.S8:
		return int8(raw), nil
	case wit.U16:
		return uint16(raw), nil
	case wit.S16:
		return int16(raw), nil
	case wit.U32:
		return api.DecodeU32(raw), nil
	case wit.S32:
		return api.DecodeI32(raw), nil
	case wit.U64:
		return raw, nil
	case wit.S64:
		return int64(raw), nil
	case wit.F32:
		return api.DecodeF32(raw), nil
	case wit.F64:
		return api.DecodeF64(raw), nil
	case wit.Char:
		r := rune(api.DecodeU32(raw))
		if !utf8.ValidRune(r) {
			return nil, errors.New(errors.PhaseRuntime, errors.KindInvalidData).
				Path(path...).
				Detail("invalid Unicode scalar value: 0x%X", raw).
				Build()
		}
		return r, nil
	}
	return nil, errors.New(errors.PhaseRuntime, errors.KindTypeMismatch).
		Path(path...).
		WitType(binding.TypeString(t)).
		Detail("only primitive types are supported").
		Build()
}
