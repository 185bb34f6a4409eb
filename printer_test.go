package lox

import (
	"io"
	"testing"
)

// reprint parses, formats, reparses and formats again; stable output means
// the printed form reproduces the parsed structure.
func reprint(t *testing.T, src string) string {
	t.Helper()
	diag := NewDiagnostics(io.Discard)
	tokens := NewLexer(src, diag).ScanTokens()
	stmts := NewParser(tokens, diag).Parse()
	if diag.HadError() {
		t.Fatalf("parse error for %q: %v", src, diag.Records())
	}
	first := FormatProgram(stmts)

	tokens = NewLexer(first, diag).ScanTokens()
	stmts = NewParser(tokens, diag).Parse()
	if diag.HadError() {
		t.Fatalf("printed form failed to reparse:\n%s\n%v", first, diag.Records())
	}
	second := FormatProgram(stmts)
	if first != second {
		t.Fatalf("printing is not stable:\nfirst:\n%s\nsecond:\n%s", first, second)
	}
	return first
}

func Test_Printer_RoundTrip(t *testing.T) {
	sources := []string{
		`print 1 + 2 * 3;`,
		`print (1 + 2) * 3;`,
		`print 2 ** 3 ** 2;`,
		`print -x.y;`,
		`print a or b and c;`,
		`print (1, 2, 3);`,
		`var a = 1; a = a + 1;`,
		`var b;`,
		`{ var a = 1; print a; }`,
		`if (a > 1) print "big"; else print "small";`,
		`while (i < 10) i = i + 1;`,
		`for (var i = 0; i < 5; i = i + 1) { if (i == 2) continue; print i; }`,
		`for (;;) break;`,
		`fun add(a, b) { return a + b; }`,
		`var f = fun (x) { return x; };`,
		`var g = fun named(x) { return named(x); };`,
		`class A { init(v) { this.v = v; } size { return this.v; } static make() { return A(1); } }`,
		`class B < A { m() { return super.m(); } }`,
		`print delete o.a;`,
		`print "hi" + 'there';`,
		`o.a = 1, o.b = nil;`,
	}
	for _, src := range sources {
		reprint(t, src)
	}
}

func Test_Printer_ExprForms(t *testing.T) {
	diag := NewDiagnostics(io.Discard)
	tokens := NewLexer(`1 + 2 * 3;`, diag).ScanTokens()
	stmts := NewParser(tokens, diag).Parse()
	got := FormatExpr(stmts[0].(*ExprStmt).Expression)
	if got != "1 + 2 * 3" {
		t.Fatalf("want %q, got %q", "1 + 2 * 3", got)
	}
}

func Test_Stringify_Primitives(t *testing.T) {
	cases := []struct {
		v    Value
		want string
	}{
		{Nil, "nil"},
		{Bool(true), "true"},
		{Bool(false), "false"},
		{Num(3), "3"},
		{Num(2.5), "2.5"},
		{Str("s"), "s"},
	}
	for _, c := range cases {
		if got := Stringify(c.v); got != c.want {
			t.Fatalf("Stringify(%v): want %q, got %q", c.v, c.want, got)
		}
	}
}
