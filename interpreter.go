package lox

import (
	"io"
	"os"
)

// Interpreter is the tree-walking evaluator. It owns the globals frame, a
// current-environment pointer, and the resolver-populated depth map keyed on
// expression node identity. One interpreter walks one AST at a time; it is
// single-threaded and not reentrant.
//
// Runtime errors unwind the walker as rtErr panics and are converted to
// diagnostics at Interpret; the return/break/continue escape signals ride
// the same mechanism but are consumed at the function-call boundary and the
// loop body and never reach the surface.
type Interpreter struct {
	globals *Env
	env     *Env
	locals  map[Expr]int
	diag    *Diagnostics
	out     io.Writer

	frames []StackFrame
}

// NewInterpreter returns an interpreter with the core builtins (type, time,
// str) installed in globals. Print output goes to out; nil defaults to
// stdout.
func NewInterpreter(out io.Writer, diag *Diagnostics) *Interpreter {
	if out == nil {
		out = os.Stdout
	}
	ip := &Interpreter{
		globals: NewEnv(nil),
		locals:  map[Expr]int{},
		diag:    diag,
		out:     out,
	}
	ip.env = ip.globals
	registerCoreBuiltins(ip)
	return ip
}

// Globals exposes the root frame so embedders can inspect or seed it.
func (ip *Interpreter) Globals() *Env { return ip.globals }

// Locals is the resolver-to-evaluator depth map. The driver hands it to each
// resolver pass; in the REPL it accumulates across chunks because the AST
// nodes stay alive.
func (ip *Interpreter) Locals() map[Expr]int { return ip.locals }

// Interpret walks the program. A runtime error ends execution and lands in
// the diagnostics sink with its call stack; escape signals reaching this
// point indicate an interpreter bug and are re-raised.
func (ip *Interpreter) Interpret(stmts []Stmt) {
	defer func() {
		if r := recover(); r != nil {
			e, ok := r.(rtErr)
			if !ok {
				panic(r)
			}
			ip.diag.Runtime(&RuntimeError{Line: e.line, Msg: e.msg, Frames: e.frames})
			ip.frames = ip.frames[:0]
		}
	}()
	for _, s := range stmts {
		ip.execute(s)
	}
}

// err raises a runtime error from the walker, capturing the active call
// stack before the unwinding tears it down.
func (ip *Interpreter) err(line int, msg string) {
	panic(rtErr{
		line:   line,
		msg:    msg,
		frames: append([]StackFrame(nil), ip.frames...),
	})
}
