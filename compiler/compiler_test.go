package compiler

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minicc/minicc/target"
)

func writeSource(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "prog.mc")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
	return path
}

func TestCompileFile_DumpASTSkipsCodegen(t *testing.T) {
	path := writeSource(t, `int main() { return 0; }`)

	opts := DefaultOptions()
	opts.DumpAST = true
	c := New(opts)

	err := c.CompileFile(path)
	require.NoError(t, err)
	assert.Equal(t, 0, c.Stats.AssemblyBytes)
}

func TestCompileFile_PrintAsmWritesAssemblyFile(t *testing.T) {
	path := writeSource(t, `int main() { return 42; }`)
	dir := filepath.Dir(path)
	outPath := filepath.Join(dir, "out")

	opts := DefaultOptions()
	opts.OutPath = outPath
	opts.PrintAsm = true
	tgt := target.Target{Arch: target.ARM64, OS: target.Linux}
	opts.Target = &tgt
	c := New(opts)

	err := c.CompileFile(path)
	require.NoError(t, err)

	asmBytes, err := os.ReadFile(outPath + ".s")
	require.NoError(t, err)
	assert.Contains(t, string(asmBytes), "main:")
}

func TestCompileFile_UnreadableInputIsError(t *testing.T) {
	opts := DefaultOptions()
	c := New(opts)
	err := c.CompileFile(filepath.Join(t.TempDir(), "missing.mc"))
	assert.Error(t, err)
}

func TestCompileFile_RecordsRealTokenizationStats(t *testing.T) {
	path := writeSource(t, `int main() { return 0; }`)

	opts := DefaultOptions()
	opts.DumpAST = true
	c := New(opts)

	err := c.CompileFile(path)
	require.NoError(t, err)
	assert.Equal(t, 9, c.Stats.TokenCount)
	assert.GreaterOrEqual(t, c.Stats.TokenizeTime.Nanoseconds(), int64(0))
}

func TestCompileFile_SemanticErrorSurfaces(t *testing.T) {
	path := writeSource(t, `int main() { return undeclared; }`)

	opts := DefaultOptions()
	opts.PrintAsm = true
	tgt := target.Target{Arch: target.AMD64, OS: target.Linux}
	opts.Target = &tgt
	c := New(opts)

	err := c.CompileFile(path)
	assert.Error(t, err)
}
