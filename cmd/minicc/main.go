// Command minicc is the batch driver: <input> -o <path> -S --dump-ast,
// matching minicc.c's main() argument handling (spec §6's CLI surface,
// explicitly out of core scope but still needed as working glue code).
//
// Diagnostics and summaries are rendered through github.com/fatih/color,
// gated on a real terminal via github.com/mattn/go-isatty and wrapped for
// Windows consoles via github.com/mattn/go-colorable — the same color-role
// convention akashmaji946-go-mix/repl/repl.go uses (red = error, cyan =
// informational), adapted from a REPL banner to a batch compiler's output.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"

	"github.com/minicc/minicc/compiler"
	"github.com/minicc/minicc/config"
	"github.com/minicc/minicc/diagnostics"
	"github.com/minicc/minicc/target"
)

var (
	stdout = os.Stdout
	stderr = os.Stderr

	errorColor = color.New(color.FgRed, color.Bold)
	infoColor  = color.New(color.FgCyan)
)

func init() {
	if isatty.IsTerminal(os.Stdout.Fd()) {
		stdout = colorable.NewColorableStdout()
	} else {
		color.NoColor = true
	}
	if isatty.IsTerminal(os.Stderr.Fd()) {
		stderr = colorable.NewColorableStderr()
	}
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("minicc", flag.ContinueOnError)
	outPath := fs.String("o", "a.out", "output path")
	printAsm := fs.Bool("S", false, "emit assembly only, skip linking")
	dumpAST := fs.Bool("dump-ast", false, "emit the parsed AST as JSON and stop")
	verbose := fs.Bool("v", false, "verbose logging")
	showStats := fs.Bool("stat", false, "print compilation statistics")
	timing := fs.Bool("timing", false, "print phase timings")
	targetFlag := fs.String("target", "", "override target as arch/os, e.g. arm64/darwin")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(stderr, "usage: minicc [flags] <input.mc>")
		return 2
	}
	inputPath := fs.Arg(0)

	cfg, err := config.Load(filepath.Join(filepath.Dir(inputPath), ".miniccrc.yaml"))
	if err != nil {
		errorColor.Fprintf(stderr, "failed to read config: %v\n", err)
		return 1
	}

	opts := compiler.DefaultOptions()
	applyConfigDefaults(opts, cfg)
	applyFlagOverrides(fs, opts, *outPath, *printAsm, *dumpAST, *verbose, *showStats, *timing)

	if *targetFlag != "" {
		tgt, ok := target.Parse(*targetFlag)
		if !ok {
			errorColor.Fprintf(stderr, "unknown target %q\n", *targetFlag)
			return 2
		}
		opts.Target = &tgt
	} else if cfg.Target != "" {
		if tgt, ok := target.Parse(cfg.Target); ok {
			opts.Target = &tgt
		}
	}

	c := compiler.New(opts)
	if err := c.CompileFile(inputPath); err != nil {
		renderError(err)
		return 1
	}

	if opts.Verbose {
		infoColor.Fprintf(stdout, "done: %s\n", opts.OutPath)
	}
	return 0
}

func applyConfigDefaults(opts *compiler.Options, cfg *config.Config) {
	if cfg.OutPath != "" {
		opts.OutPath = cfg.OutPath
	}
	opts.Verbose = cfg.Verbose
	opts.ShowStats = cfg.ShowStats
	opts.TimingInfo = cfg.TimingInfo
}

func applyFlagOverrides(fs *flag.FlagSet, opts *compiler.Options, outPath string, printAsm, dumpAST, verbose, showStats, timing bool) {
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "o":
			opts.OutPath = outPath
		case "v":
			opts.Verbose = verbose
		case "stat":
			opts.ShowStats = showStats
		case "timing":
			opts.TimingInfo = timing
		}
	})
	opts.PrintAsm = printAsm
	opts.DumpAST = dumpAST
}

// renderError prints diagnostics in the "Error at line L, col C: message"
// form (spec §7) when the error is a *diagnostics.Diagnostic, and as a plain
// wrapped error (I/O, toolchain) otherwise.
func renderError(err error) {
	if d, ok := err.(*diagnostics.Diagnostic); ok {
		errorColor.Fprintln(stderr, d.Error())
		return
	}
	errorColor.Fprintf(stderr, "%v\n", err)
}
