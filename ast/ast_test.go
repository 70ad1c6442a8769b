package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNodeKinds_ImplementNode(t *testing.T) {
	var nodes = []Node{
		&NumberLiteral{},
		&StringLiteral{},
		&VariableRef{},
		&BinaryOp{},
		&UnaryOp{},
		&Assignment{},
		&Call{},
		&ArrayAccess{},
		&AddressOf{},
		&If{},
		&While{},
		&For{},
		&Return{},
		&Block{},
		&VariableDecl{},
		&FunctionDecl{},
		&Program{},
	}
	assert.Len(t, nodes, 17)
}

func TestVariableRefAndArrayAccess_CarrySourcePosition(t *testing.T) {
	ref := &VariableRef{Name: "x", Line: 3, Col: 14}
	assert.Equal(t, 3, ref.Line)
	assert.Equal(t, 14, ref.Col)

	acc := &ArrayAccess{Array: "a", Index: &NumberLiteral{Value: 0}, Line: 5, Col: 2}
	assert.Equal(t, 5, acc.Line)
	assert.Equal(t, 2, acc.Col)
}
