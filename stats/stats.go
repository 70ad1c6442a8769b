// Package stats tracks per-compilation timing and size metrics.
//
// Generalized from j-alexander3375-Lotus/src/stats.go's CompilationStats,
// which measured a tokenize→codegen→assemble→link pipeline; minicc's
// pipeline has no assemble/link phase of its own (that's the external
// toolchain, spec §6), so the measured phases become tokenize, parse,
// codegen, and (when --dump-ast is used) JSON serialization instead.
package stats

import (
	"fmt"
	"io"
	"time"
)

// CompilationStats accumulates timings and counts across one CompileFile call.
type CompilationStats struct {
	SourceFile  string
	SourceBytes int
	SourceLines int

	TokenizeTime time.Duration
	TokenCount   int

	ParseTime time.Duration

	CodegenTime   time.Duration
	AssemblyLines int
	AssemblyBytes int

	JSONTime  time.Duration
	JSONBytes int

	TotalTime time.Duration

	start time.Time
}

// New creates a CompilationStats for sourceFile and starts its total timer.
func New(sourceFile string) *CompilationStats {
	return &CompilationStats{SourceFile: sourceFile, start: time.Now()}
}

func (s *CompilationStats) RecordTokenization(d time.Duration, tokenCount int) {
	s.TokenizeTime = d
	s.TokenCount = tokenCount
}

func (s *CompilationStats) RecordParse(d time.Duration) {
	s.ParseTime = d
}

func (s *CompilationStats) RecordCodegen(d time.Duration, lines, bytes int) {
	s.CodegenTime = d
	s.AssemblyLines = lines
	s.AssemblyBytes = bytes
}

func (s *CompilationStats) RecordJSON(d time.Duration, bytes int) {
	s.JSONTime = d
	s.JSONBytes = bytes
}

// Finalize stops the total timer. Call once, after the last phase runs.
func (s *CompilationStats) Finalize() {
	s.TotalTime = time.Since(s.start)
}

// Print writes a human-readable summary to w.
func (s *CompilationStats) Print(w io.Writer) {
	fmt.Fprintf(w, "=== Timing ===\n")
	fmt.Fprintf(w, "  Tokenize: %v (%d tokens)\n", s.TokenizeTime, s.TokenCount)
	fmt.Fprintf(w, "  Parse:    %v\n", s.ParseTime)
	if s.CodegenTime > 0 {
		fmt.Fprintf(w, "  Codegen:  %v (%d lines, %d bytes)\n", s.CodegenTime, s.AssemblyLines, s.AssemblyBytes)
	}
	if s.JSONTime > 0 {
		fmt.Fprintf(w, "  JSON:     %v (%d bytes)\n", s.JSONTime, s.JSONBytes)
	}
	fmt.Fprintf(w, "  Total:    %v\n", s.TotalTime)
}
