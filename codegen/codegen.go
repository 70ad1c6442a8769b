// Package codegen implements minicc's two register-level code generators.
//
// Both back-ends (arm64.go, amd64.go) share the accumulator-plus-spill
// expression discipline, the fixed 256-byte frame, the 8-byte slot-per-local
// scheme, and the string-literal interning table described in spec §4.4;
// this file holds exactly that shared, target-independent bookkeeping so
// each back-end only has to open-code the instructions that actually differ
// per ISA.
package codegen

import (
	"fmt"

	"github.com/minicc/minicc/ast"
	"github.com/minicc/minicc/diagnostics"
	"github.com/minicc/minicc/symtab"
)

const frameSize = 256

// StringTable interns string literals in encounter order; a literal's index
// is also its emitted label suffix (spec §3 "String literals").
type StringTable struct {
	order []string
	index map[string]int
}

func NewStringTable() *StringTable {
	return &StringTable{index: make(map[string]int)}
}

// Intern returns the stable index for s, assigning a new one on first sight.
func (st *StringTable) Intern(s string) int {
	if i, ok := st.index[s]; ok {
		return i
	}
	i := len(st.order)
	st.order = append(st.order, s)
	st.index[s] = i
	return i
}

func (st *StringTable) Entries() []string {
	return st.order
}

// registerGlobals adds every global declaration to tab exactly once, in
// program order, ahead of any function's symbols — the re-add-first-per-
// compile step spec §3/§4.3 describes.
func registerGlobals(tab *symtab.Table, prog *ast.Program) {
	for _, g := range prog.Globals {
		tab.Add(symtab.Symbol{
			Name:      g.Name,
			Class:     symtab.Global,
			IsArray:   g.IsArray,
			ArraySize: g.ArraySize,
		})
	}
}

func undefinedVarError(name string, line, col int) error {
	return diagnostics.New(diagnostics.Semantic, line, col, fmt.Sprintf("reference to undefined variable '%s'", name))
}

// literalIntValue extracts the int64 of a global initializer. spec §3 says
// global initializers (if present) are constant integer literals; anything
// else is simply not supported and is treated as zero.
func literalIntValue(n ast.Node) int64 {
	if lit, ok := n.(*ast.NumberLiteral); ok {
		return lit.Value
	}
	return 0
}
