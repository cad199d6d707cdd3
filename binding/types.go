package binding

import (
	"strings"

	"github.com/tetratelabs/wazero/api"
	"go.bytecodealliance.org/wit"
)

// TypeInfo describes the stack resource and the functions exported to
// guests, in WIT terms and as flattened core signatures.
type TypeInfo struct {
	Resource  *wit.TypeDef
	Own       *wit.TypeDef
	Borrow    *wit.TypeDef
	Error     *wit.TypeDef
	Functions []FuncDesc
}

// Param is a named WIT parameter.
type Param struct {
	Type wit.Type
	Name string
}

// FuncDesc describes one host function.
type FuncDesc struct {
	Result      wit.Type // nil for functions without a result
	Name        string
	Params      []Param
	CoreParams  []api.ValueType
	CoreResults []api.ValueType
}

// Function returns the descriptor for name.
func (ti *TypeInfo) Function(name string) (FuncDesc, bool) {
	for _, f := range ti.Functions {
		if f.Name == name {
			return f, true
		}
	}
	return FuncDesc{}, false
}

func newTypeInfo() *TypeInfo {
	name := ResourceTypeName
	errName := "stack-error"

	res := &wit.TypeDef{Name: &name, Kind: &wit.Resource{}}
	own := &wit.TypeDef{Kind: &wit.Own{Type: res}}
	borrow := &wit.TypeDef{Kind: &wit.Borrow{Type: res}}
	stackErr := &wit.TypeDef{
		Name: &errName,
		Kind: &wit.Enum{Cases: []wit.EnumCase{
			{Name: "overflow"},
			{Name: "underflow"},
			{Name: "badarg"},
			{Name: "closed"},
		}},
	}
	unitResult := &wit.TypeDef{Kind: &wit.Result{OK: nil, Err: stackErr}}
	valueResult := &wit.TypeDef{Kind: &wit.Result{OK: wit.S32{}, Err: stackErr}}

	i32 := api.ValueTypeI32
	self := Param{Name: "self", Type: borrow}

	return &TypeInfo{
		Resource: res,
		Own:      own,
		Borrow:   borrow,
		Error:    stackErr,
		Functions: []FuncDesc{
			{
				Name:        "new",
				Result:      own,
				CoreResults: []api.ValueType{i32},
			},
			{
				Name:        "push",
				Params:      []Param{self, {Name: "value", Type: wit.S32{}}},
				Result:      unitResult,
				CoreParams:  []api.ValueType{i32, i32},
				CoreResults: []api.ValueType{i32},
			},
			{
				Name:        "peek",
				Params:      []Param{self},
				Result:      valueResult,
				CoreParams:  []api.ValueType{i32},
				CoreResults: []api.ValueType{i32, i32},
			},
			{
				Name:        "pop",
				Params:      []Param{self},
				Result:      valueResult,
				CoreParams:  []api.ValueType{i32},
				CoreResults: []api.ValueType{i32, i32},
			},
			{
				Name:        "drop",
				Params:      []Param{{Name: "self", Type: own}},
				Result:      unitResult,
				CoreParams:  []api.ValueType{i32},
				CoreResults: []api.ValueType{i32},
			},
			{
				Name:        "len",
				Params:      []Param{self},
				Result:      wit.S32{},
				CoreParams:  []api.ValueType{i32},
				CoreResults: []api.ValueType{i32},
			},
			{
				Name: "message",
				Params: []Param{
					{Name: "status", Type: wit.S32{}},
					{Name: "ptr", Type: wit.U32{}},
					{Name: "cap", Type: wit.U32{}},
				},
				Result:      wit.U32{},
				CoreParams:  []api.ValueType{i32, i32, i32},
				CoreResults: []api.ValueType{i32},
			},
		},
	}
}

// String renders the function as a WIT declaration.
func (f FuncDesc) String() string {
	var b strings.Builder
	b.WriteString(f.Name)
	b.WriteString(": func(")
	for i, p := range f.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.Name)
		b.WriteString(": ")
		b.WriteString(TypeString(p.Type))
	}
	b.WriteByte(')')
	if f.Result != nil {
		b.WriteString(" -> ")
		b.WriteString(TypeString(f.Result))
	}
	return b.String()
}

// CoreSignature renders the flattened core signature, e.g. "(i32, i32) -> (i32)".
func (f FuncDesc) CoreSignature() string {
	return "(" + joinValueTypes(f.CoreParams) + ") -> (" + joinValueTypes(f.CoreResults) + ")"
}

func joinValueTypes(ts []api.ValueType) string {
	names := make([]string, len(ts))
	for i, t := range ts {
		names[i] = api.ValueTypeName(t)
	}
	return strings.Join(names, ", ")
}

// TypeString renders a WIT type the way it is written in WIT source.
func TypeString(t wit.Type) string {
	switch v := t.(type) {
	case nil:
		return "_"
	case wit.Bool:
		return "bool"
	case wit.U8:
		return "u8"
	case wit.S8:
		return "s8"
	case wit.U16:
		return "u16"
	case wit.S16:
		return "s16"
	case wit.U32:
		return "u32"
	case wit.S32:
		return "s32"
	case wit.U64:
		return "u64"
	case wit.S64:
		return "s64"
	case wit.F32:
		return "f32"
	case wit.F64:
		return "f64"
	case wit.Char:
		return "char"
	case wit.String:
		return "string"
	case *wit.TypeDef:
		if v.Name != nil {
			return *v.Name
		}
		switch k := v.Kind.(type) {
		case *wit.Own:
			return "own<" + TypeString(k.Type) + ">"
		case *wit.Borrow:
			return "borrow<" + TypeString(k.Type) + ">"
		case *wit.Result:
			if k.OK == nil && k.Err == nil {
				return "result"
			}
			return "result<" + TypeString(k.OK) + ", " + TypeString(k.Err) + ">"
		}
		return "typedef"
	default:
		return "unknown"
	}
}
