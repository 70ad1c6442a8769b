package compiler

import "github.com/minicc/minicc/target"

// Options mirrors the CLI surface named in spec §6 (external collaborator):
// <input>, -o <path>, -S, --dump-ast, plus the ambient verbosity/statistics
// flags grounded on j-alexander3375-Lotus/src/flags.go's CompilerOptions.
type Options struct {
	OutPath    string
	PrintAsm   bool // -S: stop after assembly, don't invoke the toolchain
	DumpAST    bool // --dump-ast: emit AST JSON, skip codegen entirely
	Verbose    bool
	ShowStats  bool
	TimingInfo bool

	// Target, when set, overrides Host() detection (spec §6's "free to
	// expose this as an explicit runtime flag" allowance).
	Target *target.Target
}

// DefaultOptions returns the zero-configuration option set: compile to
// a.out for the host target.
func DefaultOptions() *Options {
	return &Options{OutPath: "a.out"}
}
