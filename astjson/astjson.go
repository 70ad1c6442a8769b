// Package astjson serializes a parsed AST to a structured JSON document.
//
// This mirrors minicc.c's hand-written ast_to_json/print_indent/
// print_json_string rather than a generic encoding/json walk, because field
// order and the [] vs null convention for empty/missing children are part of
// the wire contract (spec §4.8), not an implementation detail a generic
// marshaler would preserve.
package astjson

import (
	"fmt"
	"strings"

	"github.com/minicc/minicc/ast"
)

// Marshal renders prog as an indented JSON document.
func Marshal(prog *ast.Program) string {
	var b strings.Builder
	writeProgram(&b, prog, 0)
	return b.String()
}

func indent(b *strings.Builder, depth int) {
	for i := 0; i < depth; i++ {
		b.WriteString("  ")
	}
}

func escapeString(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func jstring(s string) string {
	return `"` + escapeString(s) + `"`
}

type field struct {
	key string
	val string // pre-rendered JSON value, or "" meaning: write raw via writeNode
}

func writeObjectOpen(b *strings.Builder, typ string, depth int) {
	b.WriteString("{\n")
	indent(b, depth+1)
	fmt.Fprintf(b, "%q: %s", "type", jstring(typ))
}

func writeObjectClose(b *strings.Builder, depth int) {
	b.WriteString("\n")
	indent(b, depth)
	b.WriteString("}")
}

func writeRawField(b *strings.Builder, depth int, key, rawValue string) {
	b.WriteString(",\n")
	indent(b, depth+1)
	fmt.Fprintf(b, "%q: %s", key, rawValue)
}

func nodeTypeName(n ast.Node) string {
	switch n.(type) {
	case *ast.NumberLiteral:
		return "NumberLiteral"
	case *ast.StringLiteral:
		return "StringLiteral"
	case *ast.VariableRef:
		return "VariableRef"
	case *ast.BinaryOp:
		return "BinaryOp"
	case *ast.UnaryOp:
		return "UnaryOp"
	case *ast.Assignment:
		return "Assignment"
	case *ast.Call:
		return "FunctionCall"
	case *ast.ArrayAccess:
		return "ArrayAccess"
	case *ast.AddressOf:
		return "AddressOf"
	case *ast.If:
		return "If"
	case *ast.While:
		return "While"
	case *ast.For:
		return "For"
	case *ast.Return:
		return "Return"
	case *ast.Block:
		return "Block"
	case *ast.VariableDecl:
		return "VariableDecl"
	case *ast.FunctionDecl:
		return "FunctionDecl"
	default:
		return "Unknown"
	}
}

func compoundOpString(op ast.CompoundOp) string {
	switch op {
	case ast.OpPlus:
		return "+="
	case ast.OpMinus:
		return "-="
	default:
		return "="
	}
}

func writeNodeValue(b *strings.Builder, n ast.Node, depth int) string {
	var sb strings.Builder
	writeNode(&sb, n, depth)
	_ = b
	return sb.String()
}

// writeNode dispatches on the node's concrete type, emitting the
// node-kind-specific field set named in spec §4.8.
func writeNode(b *strings.Builder, n ast.Node, depth int) {
	if n == nil {
		b.WriteString("null")
		return
	}

	typ := nodeTypeName(n)
	writeObjectOpen(b, typ, depth)

	switch v := n.(type) {
	case *ast.NumberLiteral:
		writeRawField(b, depth, "value", fmt.Sprintf("%d", v.Value))

	case *ast.StringLiteral:
		writeRawField(b, depth, "value", jstring(v.Value))

	case *ast.VariableRef:
		writeRawField(b, depth, "name", jstring(v.Name))

	case *ast.BinaryOp:
		writeRawField(b, depth, "operator", jstring(v.Operator))
		writeRawField(b, depth, "left", writeNodeValue(b, v.Left, depth+1))
		writeRawField(b, depth, "right", writeNodeValue(b, v.Right, depth+1))

	case *ast.UnaryOp:
		writeRawField(b, depth, "operator", jstring(v.Operator))
		writeRawField(b, depth, "operand", writeNodeValue(b, v.Operand, depth+1))

	case *ast.Assignment:
		writeRawField(b, depth, "operator", jstring(compoundOpString(v.Op)))
		writeRawField(b, depth, "left", writeNodeValue(b, v.Left, depth+1))
		writeRawField(b, depth, "right", writeNodeValue(b, v.Right, depth+1))

	case *ast.Call:
		writeRawField(b, depth, "name", jstring(v.Callee))
		writeRawField(b, depth, "arguments", writeNodeList(v.Args, depth+1))

	case *ast.ArrayAccess:
		writeRawField(b, depth, "name", jstring(v.Array))
		writeRawField(b, depth, "index", writeNodeValue(b, v.Index, depth+1))

	case *ast.AddressOf:
		writeRawField(b, depth, "name", jstring(v.Name))

	case *ast.If:
		writeRawField(b, depth, "condition", writeNodeValue(b, v.Condition, depth+1))
		writeRawField(b, depth, "then", writeNodeValue(b, v.Then, depth+1))
		writeRawField(b, depth, "else", writeNodeValue(b, v.Else, depth+1))

	case *ast.While:
		writeRawField(b, depth, "condition", writeNodeValue(b, v.Condition, depth+1))
		writeRawField(b, depth, "body", writeNodeValue(b, v.Body, depth+1))

	case *ast.For:
		writeRawField(b, depth, "init", writeNodeValue(b, v.Init, depth+1))
		writeRawField(b, depth, "condition", writeNodeValue(b, v.Condition, depth+1))
		writeRawField(b, depth, "update", writeNodeValue(b, v.Update, depth+1))
		writeRawField(b, depth, "body", writeNodeValue(b, v.Body, depth+1))

	case *ast.Return:
		writeRawField(b, depth, "value", writeNodeValue(b, v.Value, depth+1))

	case *ast.Block:
		writeRawField(b, depth, "statements", writeNodeList(v.Statements, depth+1))

	case *ast.VariableDecl:
		writeRawField(b, depth, "name", jstring(v.Name))
		writeRawField(b, depth, "isArray", fmt.Sprintf("%t", v.IsArray))
		writeRawField(b, depth, "arraySize", fmt.Sprintf("%d", v.ArraySize))
		writeRawField(b, depth, "initializer", writeNodeValue(b, v.Initializer, depth+1))

	case *ast.FunctionDecl:
		writeRawField(b, depth, "name", jstring(v.Name))
		writeRawField(b, depth, "returnType", jstring(returnTypeString(v.IsVoid)))
		writeRawField(b, depth, "parameters", writeStringList(v.Params, depth+1))
		writeRawField(b, depth, "body", writeNodeValue(b, v.Body, depth+1))
	}

	writeObjectClose(b, depth)
}

func returnTypeString(isVoid bool) string {
	if isVoid {
		return "void"
	}
	return "int"
}

func writeNodeList(nodes []ast.Node, depth int) string {
	if len(nodes) == 0 {
		return "[]"
	}
	var b strings.Builder
	b.WriteString("[\n")
	for i, n := range nodes {
		indent(&b, depth+1)
		writeNode(&b, n, depth+1)
		if i != len(nodes)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	indent(&b, depth)
	b.WriteString("]")
	return b.String()
}

func writeStringList(items []string, depth int) string {
	if len(items) == 0 {
		return "[]"
	}
	var b strings.Builder
	b.WriteString("[\n")
	for i, s := range items {
		indent(&b, depth+1)
		b.WriteString(jstring(s))
		if i != len(items)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	indent(&b, depth)
	b.WriteString("]")
	return b.String()
}

func writeProgram(b *strings.Builder, prog *ast.Program, depth int) {
	b.WriteString("{\n")
	indent(b, depth+1)
	fmt.Fprintf(b, "%q: %s", "type", jstring("Program"))

	var globals []ast.Node
	for _, g := range prog.Globals {
		globals = append(globals, g)
	}
	writeRawField(b, depth, "globals", writeNodeList(globals, depth+1))

	var funcs []ast.Node
	for _, f := range prog.Functions {
		funcs = append(funcs, f)
	}
	writeRawField(b, depth, "functions", writeNodeList(funcs, depth+1))

	writeObjectClose(b, depth)
}
