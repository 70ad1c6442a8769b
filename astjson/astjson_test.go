package astjson

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minicc/minicc/parser"
)

func TestMarshal_ProgramShape(t *testing.T) {
	prog, err := parser.Parse(`int main() { return 0; }`)
	require.NoError(t, err)

	out := Marshal(prog)
	assert.True(t, strings.HasPrefix(out, "{\n"))
	assert.Contains(t, out, `"type": "Program"`)
	assert.Contains(t, out, `"globals": []`)
	assert.Contains(t, out, `"type": "FunctionDecl"`)
	assert.Contains(t, out, `"returnType": "int"`)
}

func TestMarshal_EmptyElseIsNull(t *testing.T) {
	prog, err := parser.Parse(`int main() { if (1) return 1; return 0; }`)
	require.NoError(t, err)

	out := Marshal(prog)
	assert.Contains(t, out, `"else": null`)
}

func TestMarshal_BinaryOpFields(t *testing.T) {
	prog, err := parser.Parse(`int main() { return 1 + 2; }`)
	require.NoError(t, err)

	out := Marshal(prog)
	assert.Contains(t, out, `"type": "BinaryOp"`)
	assert.Contains(t, out, `"operator": "+"`)
}

func TestMarshal_StringEscaping(t *testing.T) {
	prog, err := parser.Parse(`int main() { int x; x = 0; return x; }`)
	require.NoError(t, err)
	_ = Marshal(prog)

	escaped := escapeString("a\"b\\c\nd")
	assert.Equal(t, `a\"b\\c\nd`, escaped)
}
