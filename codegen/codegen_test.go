package codegen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minicc/minicc/parser"
	"github.com/minicc/minicc/target"
)

const factorialSrc = `
int factorial(int n) {
    if (n <= 1) return 1;
    return n * factorial(n - 1);
}
int main() {
    return factorial(5);
}
`

func TestGenerateARM64_EmitsSections(t *testing.T) {
	prog, err := parser.Parse(factorialSrc)
	require.NoError(t, err)

	asm, err := GenerateARM64(prog, target.Target{Arch: target.ARM64, OS: target.MacOS})
	require.NoError(t, err)

	assert.Contains(t, asm, ".section __TEXT,__text")
	assert.Contains(t, asm, ".section __DATA,__data")
	assert.Contains(t, asm, ".section __TEXT,__cstring")
	assert.Contains(t, asm, "_factorial:")
	assert.Contains(t, asm, "bl _factorial")
	assert.Contains(t, asm, "mul w0, w1, w0")
}

func TestGenerateARM64_LinuxHasNoUnderscorePrefix(t *testing.T) {
	prog, err := parser.Parse(factorialSrc)
	require.NoError(t, err)

	asm, err := GenerateARM64(prog, target.Target{Arch: target.ARM64, OS: target.Linux})
	require.NoError(t, err)

	assert.Contains(t, asm, ".text")
	assert.Contains(t, asm, "factorial:")
	assert.NotContains(t, asm, "_factorial:")
}

func TestGenerateAMD64_EmitsSections(t *testing.T) {
	prog, err := parser.Parse(factorialSrc)
	require.NoError(t, err)

	asm, err := GenerateAMD64(prog, target.Target{Arch: target.AMD64, OS: target.Linux})
	require.NoError(t, err)

	assert.Contains(t, asm, ".text")
	assert.Contains(t, asm, ".data")
	assert.Contains(t, asm, ".rodata")
	assert.Contains(t, asm, "factorial:")
	assert.Contains(t, asm, "callq factorial")
}

func TestGenerateAMD64_CallAlignsStack(t *testing.T) {
	src := `int main() { printf("hi\n"); return 0; }`
	prog, err := parser.Parse(src)
	require.NoError(t, err)

	asm, err := GenerateAMD64(prog, target.Target{Arch: target.AMD64, OS: target.MacOS})
	require.NoError(t, err)

	assert.True(t, strings.Contains(asm, "andq $-16, %rsp"))
	assert.True(t, strings.Contains(asm, "xorl %eax, %eax"))
	assert.Contains(t, asm, "callq _printf")
}

func TestGenerateARM64_UndefinedVariableIsSemanticError(t *testing.T) {
	src := `int main() { return undeclared; }`
	prog, err := parser.Parse(src)
	require.NoError(t, err)

	_, err = GenerateARM64(prog, target.Target{Arch: target.ARM64, OS: target.Linux})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 1, col 21")
}

func TestGlobalArray_ReservesFourBytesPerElement(t *testing.T) {
	src := `int a[5]; int main() { a[0] = 10; return a[0]; }`
	prog, err := parser.Parse(src)
	require.NoError(t, err)

	asm, err := GenerateARM64(prog, target.Target{Arch: target.ARM64, OS: target.Linux})
	require.NoError(t, err)
	assert.Contains(t, asm, ".zero 20")
}

func TestGenerateARM64_GlobalAddressingDiffersByOS(t *testing.T) {
	src := `int g; int main() { g = 1; return g; }`
	prog, err := parser.Parse(src)
	require.NoError(t, err)

	linuxAsm, err := GenerateARM64(prog, target.Target{Arch: target.ARM64, OS: target.Linux})
	require.NoError(t, err)
	assert.Contains(t, linuxAsm, "adrp x1, :got:g")
	assert.Contains(t, linuxAsm, "ldr x1, [x1, :got_lo12:g]")
	assert.NotContains(t, linuxAsm, "@PAGE")

	macAsm, err := GenerateARM64(prog, target.Target{Arch: target.ARM64, OS: target.MacOS})
	require.NoError(t, err)
	assert.Contains(t, macAsm, "adrp x1, _g@PAGE")
	assert.Contains(t, macAsm, "add x1, x1, _g@PAGEOFF")
	assert.NotContains(t, macAsm, ":got:")
}
