package lox

import (
	"fmt"
	"io"
	"os"
)

// Diagnostics accumulates compile-time and runtime messages for one run.
// Stages append; the driver flushes the batch to the sink after each chunk.
// Warnings never set the error flag.
type Diagnostics struct {
	sink     io.Writer
	records  []string
	hadError bool
}

// NewDiagnostics returns a sink writing to w; nil defaults to stderr.
func NewDiagnostics(w io.Writer) *Diagnostics {
	if w == nil {
		w = os.Stderr
	}
	return &Diagnostics{sink: w}
}

// Error records a compile-time diagnostic as "[line N]: <message>".
func (d *Diagnostics) Error(line int, msg string) {
	d.records = append(d.records, fmt.Sprintf("[line %d]: %s", line, msg))
	d.hadError = true
}

// ErrorAt records a diagnostic anchored at a token.
func (d *Diagnostics) ErrorAt(tok Token, msg string) {
	d.Error(tok.Line, msg)
}

// Warn records a non-fatal diagnostic as "[line N] Warning: <message>".
func (d *Diagnostics) Warn(line int, msg string) {
	d.records = append(d.records, fmt.Sprintf("[line %d] Warning: %s", line, msg))
}

// Runtime records a runtime error with its (truncated) call stack.
func (d *Diagnostics) Runtime(err *RuntimeError) {
	d.records = append(d.records, fmt.Sprintf("[line %d] %s", err.Line, err.Stack()))
	d.hadError = true
}

// HadError reports whether any error (not warning) was recorded since the
// last Reset.
func (d *Diagnostics) HadError() bool { return d.hadError }

// Records returns the accumulated messages without flushing them.
func (d *Diagnostics) Records() []string { return d.records }

// Flush writes all accumulated messages to the sink and resets the state.
func (d *Diagnostics) Flush() {
	for _, r := range d.records {
		fmt.Fprintln(d.sink, r)
	}
	d.Reset()
}

// Reset drops accumulated messages and clears the error flag.
func (d *Diagnostics) Reset() {
	d.records = nil
	d.hadError = false
}
