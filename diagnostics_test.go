package lox

import (
	"bytes"
	"strings"
	"testing"
)

func Test_Diagnostics_Formats(t *testing.T) {
	var sink bytes.Buffer
	d := NewDiagnostics(&sink)

	d.Error(3, "Unexpected character '@'")
	d.Warn(4, "Unused variable 'x'")
	if !d.HadError() {
		t.Fatalf("errors must set the flag")
	}

	d.Flush()
	got := sink.String()
	if !strings.Contains(got, "[line 3]: Unexpected character '@'") {
		t.Fatalf("bad error format: %q", got)
	}
	if !strings.Contains(got, "[line 4] Warning: Unused variable 'x'") {
		t.Fatalf("bad warning format: %q", got)
	}
	if d.HadError() {
		t.Fatalf("flush must reset the flag")
	}
}

func Test_Diagnostics_WarningsAreNonFatal(t *testing.T) {
	d := NewDiagnostics(nil)
	d.Warn(1, "something")
	if d.HadError() {
		t.Fatalf("warnings must not set the error flag")
	}
}

func Test_Diagnostics_RuntimeFormat(t *testing.T) {
	var sink bytes.Buffer
	d := NewDiagnostics(&sink)
	d.Runtime(&RuntimeError{
		Line: 7,
		Msg:  "Value is not callable",
		Frames: []StackFrame{
			{Name: "outer", Line: 2},
			{Name: "inner", Line: 5},
		},
	})
	d.Flush()
	got := sink.String()
	if !strings.HasPrefix(got, "[line 7] Value is not callable") {
		t.Fatalf("bad runtime format: %q", got)
	}
	if !strings.Contains(got, "at inner [line 5]") || !strings.Contains(got, "at outer [line 2]") {
		t.Fatalf("missing frames: %q", got)
	}
}

func Test_RuntimeError_StackTruncation(t *testing.T) {
	frames := []StackFrame{
		{Name: "f4", Line: 1},
		{Name: "f3", Line: 2},
		{Name: "f2", Line: 3},
		{Name: "f1", Line: 4},
	}
	e := &RuntimeError{Line: 9, Msg: "boom", Frames: frames}
	stack := e.Stack()
	if strings.Count(stack, "at ") != 3 {
		t.Fatalf("want three frames, got %q", stack)
	}
	if strings.Contains(stack, "f4") {
		t.Fatalf("bottom frame should be dropped: %q", stack)
	}
	if !strings.Contains(stack, "f1") {
		t.Fatalf("innermost frame must survive: %q", stack)
	}
}
