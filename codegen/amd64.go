package codegen

import (
	"fmt"
	"strings"

	"github.com/minicc/minicc/ast"
	"github.com/minicc/minicc/symtab"
	"github.com/minicc/minicc/target"
)

// amd64Gen emits x86-64 assembly under the SysV AMD64 ABI (spec §4.6).
// Values live in %eax/%ecx; addresses use the 64-bit register forms.
type amd64Gen struct {
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

// GenerateAMD64 emits a complete assembly listing for prog under target t.
func GenerateAMD64(prog *ast.Program, t target.Target) (string, error) {
	g := &amd64Gen{strs: NewStringTable(), tab: symtab.New(), t: t}

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

func (g *amd64Gen) newLabel() string {
	g.labelN++
	return fmt.Sprintf("L%d", g.labelN)
}

func (g *amd64Gen) genGlobalStorage(gl *ast.VariableDecl) {
	name := g.t.SymbolPrefix() + gl.Name
	fmt.Fprintf(&g.data, "    .globl %s\n", name)
	fmt.Fprintf(&g.data, "%s:\n", name)
	if gl.IsArray {
		fmt.Fprintf(&g.data, "    .zero %d\n", gl.ArraySize*4)
		return
	}
	fmt.Fprintf(&g.data, "    .long %d\n", literalIntValue(gl.Initializer))
}

func (g *amd64Gen) emit(format string, args ...any) {
	g.text.WriteString("    ")
	fmt.Fprintf(&g.text, format, args...)
	g.text.WriteString("\n")
}

func (g *amd64Gen) label(name string) {
	fmt.Fprintf(&g.text, "%s:\n", name)
}

var amdParamRegs32 = []string{"edi", "esi", "edx", "ecx", "r8d", "r9d"}

func (g *amd64Gen) genFunc(fn *ast.FunctionDecl) error {
	fname := g.t.SymbolPrefix() + fn.Name
	fmt.Fprintf(&g.text, "    .globl %s\n", fname)
	g.label(fname)
	g.emit("pushq %%rbp")
	g.emit("movq %%rsp, %%rbp")
	g.emit("subq $%d, %%rsp", frameSize)

	savedLen := g.tab.Len()
	g.stackOff = 8 * len(fn.Params)

	for i, p := range fn.Params {
		off := 8 * (i + 1)
		if i < len(amdParamRegs32) {
			g.emit("movl %%%s, -%d(%%rbp)", amdParamRegs32[i], off)
		}
		g.tab.Add(symtab.Symbol{Name: p, Class: symtab.Param, ParamIndex: i, Offset: off})
	}

	retLabel := g.newLabel()
	g.curRet = retLabel
	if err := g.genStmt(fn.Body); err != nil {
		return err
	}

	g.label(retLabel)
	g.emit("movq %%rbp, %%rsp")
	g.emit("popq %%rbp")
	g.emit("ret")

	g.tab.Truncate(savedLen)
	return nil
}

func (g *amd64Gen) genStmt(n ast.Node) error {
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
			g.emit("movl %%eax, -%d(%%rbp)", off)
		}
	case *ast.If:
		if err := g.genExpr(s.Condition); err != nil {
			return err
		}
		elseL := g.newLabel()
		endL := g.newLabel()
		g.emit("testl %%eax, %%eax")
		g.emit("je %s", elseL)
		if err := g.genStmt(s.Then); err != nil {
			return err
		}
		g.emit("jmp %s", endL)
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
		g.emit("testl %%eax, %%eax")
		g.emit("je %s", endL)
		if err := g.genStmt(s.Body); err != nil {
			return err
		}
		g.emit("jmp %s", topL)
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
			g.emit("testl %%eax, %%eax")
			g.emit("je %s", endL)
		}
		if err := g.genStmt(s.Body); err != nil {
			return err
		}
		if s.Update != nil {
			if err := g.genExpr(s.Update); err != nil {
				return err
			}
		}
		g.emit("jmp %s", topL)
		g.label(endL)
	case *ast.Return:
		if s.Value != nil {
			if err := g.genExpr(s.Value); err != nil {
				return err
			}
		}
		g.emit("jmp %s", g.curRet)
	default:
		if err := g.genExpr(n); err != nil {
			return err
		}
	}
	return nil
}

func (g *amd64Gen) push() {
	g.emit("pushq %%rax")
}

func (g *amd64Gen) popInto(reg string) {
	g.emit("popq %%%s", reg)
}

func (g *amd64Gen) genExpr(n ast.Node) error {
	switch e := n.(type) {
	case *ast.NumberLiteral:
		g.emit("movl $%d, %%eax", e.Value)

	case *ast.StringLiteral:
		idx := g.strs.Intern(e.Value)
		label := fmt.Sprintf("%sstr%d", g.t.SymbolPrefix(), idx)
		g.emit("leaq %s(%%rip), %%rax", label)

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
			g.emit("negl %%eax")
		case "!":
			g.emit("testl %%eax, %%eax")
			g.emit("sete %%al")
			g.emit("movzbl %%al, %%eax")
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
		return fmt.Errorf("codegen(amd64): unhandled expression node %T", n)
	}
	return nil
}

func (g *amd64Gen) genBinary(e *ast.BinaryOp) error {
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
	g.emit("movl %%eax, %%ecx") // right operand into %ecx
	g.popInto("rax")            // left operand back into %eax

	switch e.Operator {
	case "+":
		g.emit("addl %%ecx, %%eax")
	case "-":
		g.emit("subl %%ecx, %%eax")
	case "*":
		g.emit("imull %%ecx, %%eax")
	case "/":
		g.emit("cltd")
		g.emit("idivl %%ecx")
	case "%":
		g.emit("cltd")
		g.emit("idivl %%ecx")
		g.emit("movl %%edx, %%eax")
	case "==":
		g.emit("cmpl %%ecx, %%eax")
		g.emit("sete %%al")
		g.emit("movzbl %%al, %%eax")
	case "!=":
		g.emit("cmpl %%ecx, %%eax")
		g.emit("setne %%al")
		g.emit("movzbl %%al, %%eax")
	case "<":
		g.emit("cmpl %%ecx, %%eax")
		g.emit("setl %%al")
		g.emit("movzbl %%al, %%eax")
	case ">":
		g.emit("cmpl %%ecx, %%eax")
		g.emit("setg %%al")
		g.emit("movzbl %%al, %%eax")
	case "<=":
		g.emit("cmpl %%ecx, %%eax")
		g.emit("setle %%al")
		g.emit("movzbl %%al, %%eax")
	case ">=":
		g.emit("cmpl %%ecx, %%eax")
		g.emit("setge %%al")
		g.emit("movzbl %%al, %%eax")
	default:
		return fmt.Errorf("codegen(amd64): unhandled operator %q", e.Operator)
	}
	return nil
}

func (g *amd64Gen) genShortCircuit(e *ast.BinaryOp) error {
	shortL := g.newLabel()
	endL := g.newLabel()

	if err := g.genExpr(e.Left); err != nil {
		return err
	}
	g.emit("testl %%eax, %%eax")
	if e.Operator == "&&" {
		g.emit("je %s", shortL)
	} else {
		g.emit("jne %s", shortL)
	}
	if err := g.genExpr(e.Right); err != nil {
		return err
	}
	g.emit("testl %%eax, %%eax")
	g.emit("setne %%al")
	g.emit("movzbl %%al, %%eax")
	g.emit("jmp %s", endL)
	g.label(shortL)
	if e.Operator == "&&" {
		g.emit("movl $0, %%eax")
	} else {
		g.emit("movl $1, %%eax")
	}
	g.label(endL)
	return nil
}

func (g *amd64Gen) loadVar(name string, line, col int) error {
	sym := g.tab.Find(name)
	if sym == nil {
		return undefinedVarError(name, line, col)
	}
	switch sym.Class {
	case symtab.Global:
		label := g.t.SymbolPrefix() + name
		g.emit("movl %s(%%rip), %%eax", label)
	default:
		g.emit("movl -%d(%%rbp), %%eax", sym.Offset)
	}
	return nil
}

func (g *amd64Gen) loadAddr(name string, line, col int) error {
	sym := g.tab.Find(name)
	if sym == nil {
		return undefinedVarError(name, line, col)
	}
	switch sym.Class {
	case symtab.Global:
		label := g.t.SymbolPrefix() + name
		g.emit("leaq %s(%%rip), %%rax", label)
	default:
		g.emit("leaq -%d(%%rbp), %%rax", sym.Offset)
	}
	return nil
}

func (g *amd64Gen) arrayBaseAddr(sym *symtab.Symbol) {
	if sym.Class == symtab.Global {
		label := g.t.SymbolPrefix() + sym.Name
		g.emit("leaq %s(%%rip), %%rcx", label)
	} else {
		g.emit("leaq -%d(%%rbp), %%rcx", sym.Offset)
	}
}

func (g *amd64Gen) loadArrayElem(e *ast.ArrayAccess) error {
	sym := g.tab.Find(e.Array)
	if sym == nil {
		return undefinedVarError(e.Array, e.Line, e.Col)
	}
	if err := g.genExpr(e.Index); err != nil {
		return err
	}
	g.push()
	g.arrayBaseAddr(sym)
	g.popInto("rax")
	g.emit("movl (%%rcx,%%rax,4), %%eax")
	return nil
}

func (g *amd64Gen) genAssign(a *ast.Assignment) error {
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
			g.emit("movl %%eax, %%ecx")
			g.popInto("rax")
			if a.Op == ast.OpPlus {
				g.emit("addl %%ecx, %%eax")
			} else {
				g.emit("subl %%ecx, %%eax")
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
		if err := g.genExpr(left.Index); err != nil {
			return err
		}
		g.push()
		g.arrayBaseAddr(sym)
		g.popInto("rax")
		g.emit("leaq (%%rcx,%%rax,4), %%rcx") // %rcx = element address
		g.emit("pushq %%rcx")

		if a.Op != ast.OpPlain {
			g.emit("movl (%%rcx), %%edx")
			g.emit("pushq %%rdx")
			if err := g.genExpr(a.Right); err != nil {
				return err
			}
			g.emit("movl %%eax, %%ecx")
			g.popInto("rdx")
			if a.Op == ast.OpPlus {
				g.emit("addl %%ecx, %%edx")
			} else {
				g.emit("subl %%ecx, %%edx")
			}
			g.emit("movl %%edx, %%eax")
		} else {
			if err := g.genExpr(a.Right); err != nil {
				return err
			}
		}
		g.popInto("rcx")
		g.emit("movl %%eax, (%%rcx)")
		return nil

	default:
		return fmt.Errorf("codegen(amd64): invalid assignment target %T", a.Left)
	}
}

func (g *amd64Gen) storeVar(sym *symtab.Symbol) {
	switch sym.Class {
	case symtab.Global:
		label := g.t.SymbolPrefix() + sym.Name
		g.emit("movl %%eax, %s(%%rip)", label)
	default:
		g.emit("movl %%eax, -%d(%%rbp)", sym.Offset)
	}
}

func (g *amd64Gen) genCall(c *ast.Call) error {
	for _, arg := range c.Args {
		if err := g.genExpr(arg); err != nil {
			return err
		}
		g.push()
	}
	for i := len(c.Args) - 1; i >= 0; i-- {
		if i < len(amdParamRegs32) {
			g.popInto(amd64QWordReg(amdParamRegs32[i]))
		} else {
			g.popInto("r10")
		}
	}

	// 16-byte stack alignment at the call site (spec §4.6): save %rbx,
	// mask %rsp, zero %eax for the variadic-argument-count convention,
	// call, then restore.
	g.emit("pushq %%rbx")
	g.emit("movq %%rsp, %%rbx")
	g.emit("andq $-16, %%rsp")
	g.emit("xorl %%eax, %%eax")
	g.emit("callq %s%s", g.t.SymbolPrefix(), c.Callee)
	g.emit("movq %%rbx, %%rsp")
	g.emit("popq %%rbx")
	return nil
}

// amd64QWordReg maps a 32-bit SysV argument register name to its 64-bit form.
func amd64QWordReg(r32 string) string {
	switch r32 {
	case "edi":
		return "rdi"
	case "esi":
		return "rsi"
	case "edx":
		return "rdx"
	case "ecx":
		return "rcx"
	case "r8d":
		return "r8"
	case "r9d":
		return "r9"
	default:
		return r32
	}
}
