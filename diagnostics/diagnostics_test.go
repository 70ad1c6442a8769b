package diagnostics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiagnostic_ErrorFormatMatchesSpec(t *testing.T) {
	d := New(Semantic, 3, 14, "reference to undefined variable 'x'")
	assert.Equal(t, "Error at line 3, col 14: reference to undefined variable 'x'", d.Error())
}

func TestCategory_String(t *testing.T) {
	assert.Equal(t, "lexical", Lexical.String())
	assert.Equal(t, "syntactic", Syntactic.String())
	assert.Equal(t, "semantic", Semantic.String())
	assert.Equal(t, "unknown", Category(99).String())
}
