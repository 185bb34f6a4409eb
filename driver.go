package lox

import (
	"io"
	"os"
	"strings"
)

// Session is the pipeline driver: it owns one interpreter, one diagnostics
// sink and the shared depth map, and runs source chunks through
// lex → parse → resolve → interpret with the short-circuit rule that a
// stage does not run after the previous one reported an error. Stage
// working state is per-chunk; interpreter globals persist, which is what
// makes the REPL accumulate definitions.
type Session struct {
	ip   *Interpreter
	diag *Diagnostics
}

// NewSession wires a driver writing program output to out and diagnostics
// to errOut (nil defaults to stdout/stderr).
func NewSession(out, errOut io.Writer) *Session {
	diag := NewDiagnostics(errOut)
	return &Session{
		ip:   NewInterpreter(out, diag),
		diag: diag,
	}
}

// Interpreter exposes the evaluator for embedders (native registration,
// globals access).
func (s *Session) Interpreter() *Interpreter { return s.ip }

// Run executes one chunk. Diagnostics are flushed to the sink whether the
// chunk succeeded, diagnosed or panicked; the return value reports success.
func (s *Session) Run(src string) (ok bool) {
	s.diag.Reset()
	defer func() {
		ok = !s.diag.HadError()
		s.diag.Flush()
	}()
	s.runPipeline(src)
	return
}

// RunFile reads path as UTF-8 and interprets it.
func (s *Session) RunFile(path string) (bool, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}
	return s.Run(string(src)), nil
}

// RunREPL executes one interactive chunk. When the raw input fails to parse
// and does not end with ';' or '}', the chunk is retried wrapped as
// "print <input>;". A retry that fails to parse reports the original
// diagnostics, not its own.
func (s *Session) RunREPL(input string) (ok bool) {
	s.diag.Reset()
	defer func() {
		ok = !s.diag.HadError()
		s.diag.Flush()
	}()

	stmts, parsed := s.frontend(input, s.diag)
	if parsed {
		s.backend(stmts)
		return
	}

	trimmed := strings.TrimRight(input, " \t\r\n")
	if strings.HasSuffix(trimmed, ";") || strings.HasSuffix(trimmed, "}") {
		return
	}

	scratch := NewDiagnostics(io.Discard)
	wrapped := "print " + input + ";"
	stmts, parsed = s.frontend(wrapped, scratch)
	if !parsed {
		// report the original errors, not the retry's
		return
	}

	s.diag.Reset()
	s.backend(stmts)
	return
}

// frontend runs lex and parse, reporting whether both were clean.
func (s *Session) frontend(src string, diag *Diagnostics) ([]Stmt, bool) {
	tokens := NewLexer(src, diag).ScanTokens()
	if diag.HadError() {
		return nil, false
	}
	stmts := NewParser(tokens, diag).Parse()
	if diag.HadError() {
		return nil, false
	}
	return stmts, true
}

// backend resolves and, when clean, interprets.
func (s *Session) backend(stmts []Stmt) {
	NewResolver(s.diag, s.ip.Locals()).Resolve(stmts)
	if s.diag.HadError() {
		return
	}
	s.ip.Interpret(stmts)
}

func (s *Session) runPipeline(src string) {
	stmts, parsed := s.frontend(src, s.diag)
	if !parsed {
		return
	}
	s.backend(stmts)
}
