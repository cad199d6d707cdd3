// Package guest assembles small core WebAssembly modules that import host
// functions. It is used to exercise host modules without checked-in binaries.
package guest

import (
	"github.com/tetratelabs/wazero/api"
)

// Builder builds a core module: function imports first, then local
// functions with hand-written bodies, an optional memory, and exports.
type Builder struct {
	types     []funcType
	imports   []importFunc
	funcs     []localFunc
	memExport string
	memPages  uint32
	hasMemory bool
}

type funcType struct {
	params  []api.ValueType
	results []api.ValueType
}

type importFunc struct {
	module string
	name   string
	typ    uint32
}

type localFunc struct {
	export string
	locals []api.ValueType
	body   []byte
	typ    uint32
}

// New creates an empty module builder.
func New() *Builder {
	return &Builder{}
}

// Import adds a function import and returns its function index.
// All imports must be added before any local function.
func (b *Builder) Import(module, name string, params, results []api.ValueType) uint32 {
	if len(b.funcs) > 0 {
		panic("guest: imports must precede local functions")
	}
	b.imports = append(b.imports, importFunc{
		module: module,
		name:   name,
		typ:    b.typeIndex(params, results),
	})
	return uint32(len(b.imports) - 1)
}

// Func adds a local function exported under export and returns its index.
// body holds instructions without the trailing end opcode.
func (b *Builder) Func(export string, params, results, locals []api.ValueType, body ...[]byte) uint32 {
	var code []byte
	for _, instr := range body {
		code = append(code, instr...)
	}
	b.funcs = append(b.funcs, localFunc{
		export: export,
		locals: locals,
		body:   code,
		typ:    b.typeIndex(params, results),
	})
	return uint32(len(b.imports) + len(b.funcs) - 1)
}

// Memory declares a linear memory of pages 64KiB pages, exported as name.
func (b *Builder) Memory(pages uint32, name string) {
	b.hasMemory = true
	b.memPages = pages
	b.memExport = name
}

func (b *Builder) typeIndex(params, results []api.ValueType) uint32 {
	for i, t := range b.types {
		if equalTypes(t.params, params) && equalTypes(t.results, results) {
			return uint32(i)
		}
	}
	b.types = append(b.types, funcType{params: params, results: results})
	return uint32(len(b.types) - 1)
}

func equalTypes(a, b []api.ValueType) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Build generates the WASM module bytes.
func (b *Builder) Build() []byte {
	var wasm []byte

	// Magic and version
	wasm = append(wasm, 0x00, 0x61, 0x73, 0x6d)
	wasm = append(wasm, 0x01, 0x00, 0x00, 0x00)

	wasm = appendSection(wasm, 0x01, b.buildTypeSection())
	if len(b.imports) > 0 {
		wasm = appendSection(wasm, 0x02, b.buildImportSection())
	}
	if len(b.funcs) > 0 {
		wasm = appendSection(wasm, 0x03, b.buildFuncSection())
	}
	if b.hasMemory {
		wasm = appendSection(wasm, 0x05, b.buildMemorySection())
	}
	wasm = appendSection(wasm, 0x07, b.buildExportSection())
	if len(b.funcs) > 0 {
		wasm = appendSection(wasm, 0x0a, b.buildCodeSection())
	}

	return wasm
}

func appendSection(wasm []byte, id byte, section []byte) []byte {
	wasm = append(wasm, id)
	wasm = append(wasm, EncodeULEB128(uint32(len(section)))...)
	return append(wasm, section...)
}

func appendName(buf []byte, name string) []byte {
	buf = append(buf, EncodeULEB128(uint32(len(name)))...)
	return append(buf, name...)
}

func (b *Builder) buildTypeSection() []byte {
	section := EncodeULEB128(uint32(len(b.types)))
	for _, t := range b.types {
		section = append(section, 0x60)
		section = append(section, EncodeULEB128(uint32(len(t.params)))...)
		section = append(section, t.params...)
		section = append(section, EncodeULEB128(uint32(len(t.results)))...)
		section = append(section, t.results...)
	}
	return section
}

func (b *Builder) buildImportSection() []byte {
	section := EncodeULEB128(uint32(len(b.imports)))
	for _, imp := range b.imports {
		section = appendName(section, imp.module)
		section = appendName(section, imp.name)
		section = append(section, 0x00)
		section = append(section, EncodeULEB128(imp.typ)...)
	}
	return section
}

func (b *Builder) buildFuncSection() []byte {
	section := EncodeULEB128(uint32(len(b.funcs)))
	for _, f := range b.funcs {
		section = append(section, EncodeULEB128(f.typ)...)
	}
	return section
}

func (b *Builder) buildMemorySection() []byte {
	section := []byte{0x01, 0x00}
	return append(section, EncodeULEB128(b.memPages)...)
}

func (b *Builder) buildExportSection() []byte {
	count := 0
	for _, f := range b.funcs {
		if f.export != "" {
			count++
		}
	}
	if b.hasMemory && b.memExport != "" {
		count++
	}

	section := EncodeULEB128(uint32(count))
	for i, f := range b.funcs {
		if f.export == "" {
			continue
		}
		section = appendName(section, f.export)
		section = append(section, 0x00)
		section = append(section, EncodeULEB128(uint32(len(b.imports)+i))...)
	}
	if b.hasMemory && b.memExport != "" {
		section = appendName(section, b.memExport)
		section = append(section, 0x02, 0x00)
	}
	return section
}

func (b *Builder) buildCodeSection() []byte {
	section := EncodeULEB128(uint32(len(b.funcs)))
	for _, f := range b.funcs {
		var body []byte

		// Locals are run-length encoded by type
		var groups [][2]uint32
		for _, l := range f.locals {
			if n := len(groups); n > 0 && groups[n-1][1] == uint32(l) {
				groups[n-1][0]++
				continue
			}
			groups = append(groups, [2]uint32{1, uint32(l)})
		}
		body = append(body, EncodeULEB128(uint32(len(groups)))...)
		for _, g := range groups {
			body = append(body, EncodeULEB128(g[0])...)
			body = append(body, byte(g[1]))
		}

		body = append(body, f.body...)
		body = append(body, 0x0b)

		section = append(section, EncodeULEB128(uint32(len(body)))...)
		section = append(section, body...)
	}
	return section
}
