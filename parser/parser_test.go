package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minicc/minicc/ast"
)

func TestParse_PrecedenceMultiplicationBindsTighter(t *testing.T) {
	prog, err := Parse(`int main() { return 1 + 2 * 3; }`)
	require.NoError(t, err)

	ret := prog.Functions[0].Body.Statements[0].(*ast.Return)
	bin := ret.Value.(*ast.BinaryOp)
	assert.Equal(t, "+", bin.Operator)
	assert.IsType(t, &ast.NumberLiteral{}, bin.Left)
	mul := bin.Right.(*ast.BinaryOp)
	assert.Equal(t, "*", mul.Operator)
}

func TestParse_AssignmentIsRightAssociative(t *testing.T) {
	prog, err := Parse(`int main() { int a; int b; int c; a = b = c; return 0; }`)
	require.NoError(t, err)

	stmt := prog.Functions[0].Body.Statements[3].(*ast.Assignment)
	assert.Equal(t, "a", stmt.Left.(*ast.VariableRef).Name)
	inner := stmt.Right.(*ast.Assignment)
	assert.Equal(t, "b", inner.Left.(*ast.VariableRef).Name)
}

func TestParse_TopLevelDisambiguatesFuncFromVar(t *testing.T) {
	prog, err := Parse(`int global_var = 42; int add(int a, int b) { return a + b; }`)
	require.NoError(t, err)

	require.Len(t, prog.Globals, 1)
	assert.Equal(t, "global_var", prog.Globals[0].Name)
	require.Len(t, prog.Functions, 1)
	assert.Equal(t, "add", prog.Functions[0].Name)
	assert.Equal(t, []string{"a", "b"}, prog.Functions[0].Params)
}

func TestParse_PrefixIncrementDesugarsToAssignment(t *testing.T) {
	prog, err := Parse(`int main() { int x; ++x; return x; }`)
	require.NoError(t, err)

	stmt := prog.Functions[0].Body.Statements[1].(*ast.Assignment)
	assert.Equal(t, ast.OpPlain, stmt.Op)
	sum := stmt.Right.(*ast.BinaryOp)
	assert.Equal(t, "+", sum.Operator)
	assert.Equal(t, int64(1), sum.Right.(*ast.NumberLiteral).Value)
}

func TestParse_CompoundAssignmentKeepsMarker(t *testing.T) {
	prog, err := Parse(`int main() { int x; x += 5; return x; }`)
	require.NoError(t, err)

	stmt := prog.Functions[0].Body.Statements[1].(*ast.Assignment)
	assert.Equal(t, ast.OpPlus, stmt.Op)
	assert.IsType(t, &ast.NumberLiteral{}, stmt.Right)
}

func TestParse_ArrayDeclarationAndAccess(t *testing.T) {
	prog, err := Parse(`int a[5]; int main() { a[0] = 10; return a[0]; }`)
	require.NoError(t, err)

	require.Len(t, prog.Globals, 1)
	assert.True(t, prog.Globals[0].IsArray)
	assert.Equal(t, int64(5), prog.Globals[0].ArraySize)
}

func TestParse_VariableRefCarriesSourcePosition(t *testing.T) {
	prog, err := Parse("int main() {\n  return undeclared;\n}")
	require.NoError(t, err)

	ret := prog.Functions[0].Body.Statements[0].(*ast.Return)
	ref := ret.Value.(*ast.VariableRef)
	assert.Equal(t, 2, ref.Line)
	assert.Equal(t, 10, ref.Col)
}

func TestParse_LogicalOperatorsHaveDistinctLevels(t *testing.T) {
	prog, err := Parse(`int main() { return 1 || 2 && 3; }`)
	require.NoError(t, err)

	ret := prog.Functions[0].Body.Statements[0].(*ast.Return)
	or := ret.Value.(*ast.BinaryOp)
	assert.Equal(t, "||", or.Operator)
	and := or.Right.(*ast.BinaryOp)
	assert.Equal(t, "&&", and.Operator)
}

func TestParse_UnexpectedTokenIsFatal(t *testing.T) {
	_, err := Parse(`int main() { return ; }`)
	assert.NoError(t, err) // `return ;` is valid: empty return value

	_, err = Parse(`int main() { + 1; }`)
	assert.Error(t, err)
}

func TestParse_ForLoopWithDeclaration(t *testing.T) {
	prog, err := Parse(`int main() { for (int i = 0; i < 10; i = i + 1) { } return 0; }`)
	require.NoError(t, err)

	forStmt := prog.Functions[0].Body.Statements[0].(*ast.For)
	decl := forStmt.Init.(*ast.VariableDecl)
	assert.Equal(t, "i", decl.Name)
}
