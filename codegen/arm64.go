package codegen

import (
	"fmt"
	"strings"

	"github.com/minicc/minicc/ast"
	"github.com/minicc/minicc/symtab"
	"github.com/minicc/minicc/target"
)

// arm64Gen emits AArch64 assembly under the AAPCS64 procedure call standard
// (spec §4.5). Values live in the low 32 bits of w0/w1; addresses use the
// full 64-bit x-register form.
type arm64Gen struct {
	text     strings.Builder
	data     strings.Builder
	rodata   strings.Builder
	strs     *StringTable
	tab      *symtab.Table
	t        target.Target
	labelN   int
	stackOff int
	curRet   string
}

// GenerateARM64 emits a complete assembly listing for prog under target t.
func GenerateARM64(prog *ast.Program, t target.Target) (string, error) {
	g := &arm64Gen{strs: NewStringTable(), tab: symtab.New(), t: t}

	registerGlobals(g.tab, prog)

	g.text.WriteString(g.t.TextSection() + "\n")
	for _, fn := range prog.Functions {
		if err := g.genFunc(fn); err != nil {
			return "", err
		}
	}

	g.data.WriteString(g.t.DataSection() + "\n")
	for _, gl := range prog.Globals {
		g.genGlobalStorage(gl)
	}

	g.rodata.WriteString(g.t.RODataSection() + "\n")
	for i, s := range g.strs.Entries() {
		fmt.Fprintf(&g.rodata, "%sstr%d:\n", g.t.SymbolPrefix(), i)
		fmt.Fprintf(&g.rodata, "    .asciz \"%s\"\n", s)
	}

	return g.text.String() + g.data.String() + g.rodata.String(), nil
}

// emitGlobalAddr leaves the absolute address of label in reg. macOS uses the
// local @PAGE/@PAGEOFF form; ELF/Linux has no equivalent directive pair, so
// the address is fetched through the GOT via :got:/:got_lo12: (spec §4.5).
func (g *arm64Gen) emitGlobalAddr(reg, label string) {
	if g.t.OS == target.Linux {
		g.emit("adrp %s, :got:%s", reg, label)
		g.emit("ldr %s, [%s, :got_lo12:%s]", reg, reg, label)
		return
	}
	g.emit("adrp %s, %s@PAGE", reg, label)
	g.emit("add %s, %s, %s@PAGEOFF", reg, reg, label)
}

func (g *arm64Gen) newLabel() string {
	g.labelN++
	return fmt.Sprintf("L%d", g.labelN)
}

func (g *arm64Gen) genGlobalStorage(gl *ast.VariableDecl) {
	name := g.t.SymbolPrefix() + gl.Name
	fmt.Fprintf(&g.data, "    .globl %s\n", name)
	fmt.Fprintf(&g.data, "%s:\n", name)
	if gl.IsArray {
		fmt.Fprintf(&g.data, "    .zero %d\n", gl.ArraySize*4)
		return
	}
	fmt.Fprintf(&g.data, "    .long %d\n", literalIntValue(gl.Initializer))
}

func (g *arm64Gen) emit(format string, args ...any) {
	g.text.WriteString("    ")
	fmt.Fprintf(&g.text, format, args...)
	g.text.WriteString("\n")
}

func (g *arm64Gen) label(name string) {
	fmt.Fprintf(&g.text, "%s:\n", name)
}

var armParamRegs = []string{"w0", "w1", "w2", "w3", "w4", "w5", "w6", "w7"}

func (g *arm64Gen) genFunc(fn *ast.FunctionDecl) error {
	fname := g.t.SymbolPrefix() + fn.Name
	fmt.Fprintf(&g.text, "    .globl %s\n", fname)
	g.label(fname)
	g.emit("stp x29, x30, [sp, #-16]!")
	g.emit("mov x29, sp")
	g.emit("sub sp, sp, #%d", frameSize)

	savedLen := g.tab.Len()
	g.stackOff = 8 * len(fn.Params)

	for i, p := range fn.Params {
		off := 8 * (i + 1)
		if i < len(armParamRegs) {
			g.emit("str %s, [x29, #-%d]", armParamRegs[i], off)
		}
		g.tab.Add(symtab.Symbol{Name: p, Class: symtab.Param, ParamIndex: i, Offset: off})
	}

	retLabel := g.newLabel()
	g.curRet = retLabel
	if err := g.genStmt(fn.Body); err != nil {
		return err
	}

	g.label(retLabel)
	g.emit("mov sp, x29")
	g.emit("ldp x29, x30, [sp], #16")
	g.emit("ret")

	g.tab.Truncate(savedLen)
	return nil
}

func (g *arm64Gen) genStmt(n ast.Node) error {
	switch s := n.(type) {
	case *ast.Block:
		for _, st := range s.Statements {
			if err := g.genStmt(st); err != nil {
				return err
			}
		}
	case *ast.VariableDecl:
		g.stackOff += 8
		off := g.stackOff
		if s.IsArray {
			g.stackOff += int(s.ArraySize-1) * 4
		}
		g.tab.Add(symtab.Symbol{Name: s.Name, Class: symtab.Local, Offset: off, IsArray: s.IsArray, ArraySize: s.ArraySize})
		if s.Initializer != nil && !s.IsArray {
			if err := g.genExpr(s.Initializer); err != nil {
				return err
			}
			g.emit("str w0, [x29, #-%d]", off)
		}
	case *ast.If:
		if err := g.genExpr(s.Condition); err != nil {
			return err
		}
		elseL := g.newLabel()
		endL := g.newLabel()
		g.emit("cbz w0, %s", elseL)
		if err := g.genStmt(s.Then); err != nil {
			return err
		}
		g.emit("b %s", endL)
		g.label(elseL)
		if s.Else != nil {
			if err := g.genStmt(s.Else); err != nil {
				return err
			}
		}
		g.label(endL)
	case *ast.While:
		topL := g.newLabel()
		endL := g.newLabel()
		g.label(topL)
		if err := g.genExpr(s.Condition); err != nil {
			return err
		}
		g.emit("cbz w0, %s", endL)
		if err := g.genStmt(s.Body); err != nil {
			return err
		}
		g.emit("b %s", topL)
		g.label(endL)
	case *ast.For:
		if s.Init != nil {
			if err := g.genStmt(s.Init); err != nil {
				return err
			}
		}
		topL := g.newLabel()
		endL := g.newLabel()
		g.label(topL)
		if s.Condition != nil {
			if err := g.genExpr(s.Condition); err != nil {
				return err
			}
			g.emit("cbz w0, %s", endL)
		}
		if err := g.genStmt(s.Body); err != nil {
			return err
		}
		if s.Update != nil {
			if err := g.genExpr(s.Update); err != nil {
				return err
			}
		}
		g.emit("b %s", topL)
		g.label(endL)
	case *ast.Return:
		if s.Value != nil {
			if err := g.genExpr(s.Value); err != nil {
				return err
			}
		}
		g.emit("b %s", g.curRet)
	default:
		if expr, ok := n.(ast.Node); ok {
			if err := g.genExpr(expr); err != nil {
				return err
			}
		}
	}
	return nil
}

func (g *arm64Gen) push() {
	g.emit("sub sp, sp, #16")
	g.emit("str x0, [sp]")
}

func (g *arm64Gen) popInto(reg string) {
	g.emit("ldr %s, [sp]", reg)
	g.emit("add sp, sp, #16")
}

func (g *arm64Gen) genExpr(n ast.Node) error {
	switch e := n.(type) {
	case *ast.NumberLiteral:
		v := e.Value
		if v >= 0 && v <= 0xFFFF {
			g.emit("mov w0, #%d", v)
		} else {
			g.emit("mov w0, #%d", v&0xFFFF)
			g.emit("movk w0, #%d, lsl #16", (v>>16)&0xFFFF)
		}

	case *ast.StringLiteral:
		idx := g.strs.Intern(e.Value)
		label := fmt.Sprintf("%sstr%d", g.t.SymbolPrefix(), idx)
		g.emitGlobalAddr("x0", label)

	case *ast.VariableRef:
		if err := g.loadVar(e.Name, e.Line, e.Col); err != nil {
			return err
		}

	case *ast.AddressOf:
		if err := g.loadAddr(e.Name, 0, 0); err != nil {
			return err
		}

	case *ast.ArrayAccess:
		if err := g.loadArrayElem(e); err != nil {
			return err
		}

	case *ast.UnaryOp:
		if err := g.genExpr(e.Operand); err != nil {
			return err
		}
		switch e.Operator {
		case "-":
			g.emit("neg w0, w0")
		case "!":
			g.emit("cmp w0, #0")
			g.emit("cset w0, eq")
		}

	case *ast.BinaryOp:
		if err := g.genBinary(e); err != nil {
			return err
		}

	case *ast.Assignment:
		if err := g.genAssign(e); err != nil {
			return err
		}

	case *ast.Call:
		if err := g.genCall(e); err != nil {
			return err
		}

	default:
		return fmt.Errorf("codegen(arm64): unhandled expression node %T", n)
	}
	return nil
}

func (g *arm64Gen) genBinary(e *ast.BinaryOp) error {
	if e.Operator == "&&" || e.Operator == "||" {
		return g.genShortCircuit(e)
	}

	if err := g.genExpr(e.Left); err != nil {
		return err
	}
	g.push()
	if err := g.genExpr(e.Right); err != nil {
		return err
	}
	g.popInto("x1")

	switch e.Operator {
	case "+":
		g.emit("add w0, w1, w0")
	case "-":
		g.emit("sub w0, w1, w0")
	case "*":
		g.emit("mul w0, w1, w0")
	case "/":
		g.emit("sdiv w0, w1, w0")
	case "%":
		g.emit("sdiv w2, w1, w0")
		g.emit("msub w0, w2, w0, w1")
	case "==":
		g.emit("cmp w1, w0")
		g.emit("cset w0, eq")
	case "!=":
		g.emit("cmp w1, w0")
		g.emit("cset w0, ne")
	case "<":
		g.emit("cmp w1, w0")
		g.emit("cset w0, lt")
	case ">":
		g.emit("cmp w1, w0")
		g.emit("cset w0, gt")
	case "<=":
		g.emit("cmp w1, w0")
		g.emit("cset w0, le")
	case ">=":
		g.emit("cmp w1, w0")
		g.emit("cset w0, ge")
	default:
		return fmt.Errorf("codegen(arm64): unhandled operator %q", e.Operator)
	}
	return nil
}

// genShortCircuit evaluates the left operand and skips the right one when
// the left alone determines the result; otherwise it evaluates the right
// operand too. Either way the accumulator ends up normalized to 0/1.
func (g *arm64Gen) genShortCircuit(e *ast.BinaryOp) error {
	shortL := g.newLabel()
	endL := g.newLabel()

	if err := g.genExpr(e.Left); err != nil {
		return err
	}
	if e.Operator == "&&" {
		g.emit("cbz w0, %s", shortL)
	} else {
		g.emit("cbnz w0, %s", shortL)
	}
	if err := g.genExpr(e.Right); err != nil {
		return err
	}
	g.emit("cmp w0, #0")
	g.emit("cset w0, ne")
	g.emit("b %s", endL)
	g.label(shortL)
	if e.Operator == "&&" {
		g.emit("mov w0, #0")
	} else {
		g.emit("mov w0, #1")
	}
	g.label(endL)
	return nil
}

func (g *arm64Gen) loadVar(name string, line, col int) error {
	sym := g.tab.Find(name)
	if sym == nil {
		return undefinedVarError(name, line, col)
	}
	switch sym.Class {
	case symtab.Global:
		label := g.t.SymbolPrefix() + name
		g.emitGlobalAddr("x1", label)
		g.emit("ldr w0, [x1]")
	default:
		g.emit("ldr w0, [x29, #-%d]", sym.Offset)
	}
	return nil
}

func (g *arm64Gen) loadAddr(name string, line, col int) error {
	sym := g.tab.Find(name)
	if sym == nil {
		return undefinedVarError(name, line, col)
	}
	switch sym.Class {
	case symtab.Global:
		label := g.t.SymbolPrefix() + name
		g.emitGlobalAddr("x0", label)
	default:
		g.emit("sub x0, x29, #%d", sym.Offset)
	}
	return nil
}

// arrayBaseAddr leaves the array's base address (x29-relative or global) in x1.
func (g *arm64Gen) arrayBaseAddr(sym *symtab.Symbol) {
	if sym.Class == symtab.Global {
		label := g.t.SymbolPrefix() + sym.Name
		g.emitGlobalAddr("x1", label)
	} else {
		g.emit("sub x1, x29, #%d", sym.Offset)
	}
}

func (g *arm64Gen) loadArrayElem(e *ast.ArrayAccess) error {
	sym := g.tab.Find(e.Array)
	if sym == nil {
		return undefinedVarError(e.Array, e.Line, e.Col)
	}
	if err := g.genExpr(e.Index); err != nil {
		return err
	}
	g.emit("sxtw x0, w0")
	g.push()
	g.arrayBaseAddr(sym)
	g.popInto("x0")
	g.emit("ldr w0, [x1, x0, lsl #2]")
	return nil
}

func (g *arm64Gen) genAssign(a *ast.Assignment) error {
	switch left := a.Left.(type) {
	case *ast.VariableRef:
		sym := g.tab.Find(left.Name)
		if sym == nil {
			return undefinedVarError(left.Name, left.Line, left.Col)
		}
		if a.Op != ast.OpPlain {
			if err := g.loadVar(left.Name, left.Line, left.Col); err != nil {
				return err
			}
			g.push()
			if err := g.genExpr(a.Right); err != nil {
				return err
			}
			g.popInto("x1")
			if a.Op == ast.OpPlus {
				g.emit("add w0, w1, w0")
			} else {
				g.emit("sub w0, w1, w0")
			}
		} else {
			if err := g.genExpr(a.Right); err != nil {
				return err
			}
		}
		g.storeVar(sym)
		return nil

	case *ast.ArrayAccess:
		sym := g.tab.Find(left.Array)
		if sym == nil {
			return undefinedVarError(left.Array, left.Line, left.Col)
		}
		// Evaluate the index once, compute the element address, then the
		// value — preserving the single-evaluation contract for array
		// l-values (spec §9).
		if err := g.genExpr(left.Index); err != nil {
			return err
		}
		g.emit("sxtw x0, w0")
		g.push()
		g.arrayBaseAddr(sym)
		g.popInto("x0")
		g.emit("add x2, x1, x0, lsl #2") // x2 = element address
		g.push2(func() { g.emit("str x2, [sp]") })

		if a.Op != ast.OpPlain {
			g.emit("ldr w1, [x2]")
			g.push2(func() { g.emit("str x1, [sp]") })
			if err := g.genExpr(a.Right); err != nil {
				return err
			}
			g.popInto("x1")
			if a.Op == ast.OpPlus {
				g.emit("add w0, w1, w0")
			} else {
				g.emit("sub w0, w1, w0")
			}
		} else {
			if err := g.genExpr(a.Right); err != nil {
				return err
			}
		}
		g.popInto("x2")
		g.emit("str w0, [x2]")
		return nil

	default:
		return fmt.Errorf("codegen(arm64): invalid assignment target %T", a.Left)
	}
}

// push2 is push() generalized to a caller-supplied store instruction, used
// where the pushed value is already sitting in a register other than x0.
func (g *arm64Gen) push2(store func()) {
	g.emit("sub sp, sp, #16")
	store()
}

func (g *arm64Gen) storeVar(sym *symtab.Symbol) {
	switch sym.Class {
	case symtab.Global:
		label := g.t.SymbolPrefix() + sym.Name
		g.push()
		g.emitGlobalAddr("x1", label)
		g.popInto("x0")
		g.emit("str w0, [x1]")
	default:
		g.emit("str w0, [x29, #-%d]", sym.Offset)
	}
}

var armArgRegs = []string{"w0", "w1", "w2", "w3", "w4", "w5", "w6", "w7"}

func (g *arm64Gen) genCall(c *ast.Call) error {
	for _, arg := range c.Args {
		if err := g.genExpr(arg); err != nil {
			return err
		}
		g.push()
	}
	for i := len(c.Args) - 1; i >= 0; i-- {
		if i < len(armArgRegs) {
			g.popInto("x" + armArgRegs[i][1:])
		} else {
			g.popInto("x8")
		}
	}
	g.emit("bl %s%s", g.t.SymbolPrefix(), c.Callee)
	return nil
}
