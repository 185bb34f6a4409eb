package lox

import "fmt"

// Resolver is the single pre-evaluation pass that assigns every variable,
// this and super reference its lexical scope depth, and performs the static
// checks that do not need runtime values. Depths land in an external map
// keyed on expression node identity, shared with the interpreter. The pass
// runs to completion even after errors so one run surfaces all of them.
type Resolver struct {
	diag   *Diagnostics
	locals map[Expr]int
	scopes []map[string]*localVar

	currentFn    funcKind
	currentClass classKind
	loopDepth    int
}

type funcKind int

const (
	funcNone funcKind = iota
	funcFunction
	funcMethod
	funcInitializer
	funcStatic
)

type classKind int

const (
	classNone classKind = iota
	classPlain
	classSub
)

// localVar tracks one declared name inside a scope. defined flips once the
// initializer has been resolved; used feeds the unused-variable warning.
type localVar struct {
	name    Token
	defined bool
	used    bool
}

// break and continue share one diagnostic.
const loopJumpMsg = "'break' and 'continue' may only be used inside a loop"

// NewResolver creates a resolver writing depths into locals, which the
// caller shares with its interpreter.
func NewResolver(diag *Diagnostics, locals map[Expr]int) *Resolver {
	return &Resolver{diag: diag, locals: locals}
}

// Resolve processes a whole program.
func (r *Resolver) Resolve(stmts []Stmt) {
	for _, s := range stmts {
		r.resolveStmt(s)
	}
}

// ----- scope stack -----

func (r *Resolver) beginScope() {
	r.scopes = append(r.scopes, map[string]*localVar{})
}

// endScope pops the innermost scope, warning about every name that was
// declared but never read. Synthetic this/super frames are created pre-used
// and never warn.
func (r *Resolver) endScope() {
	top := r.scopes[len(r.scopes)-1]
	r.scopes = r.scopes[:len(r.scopes)-1]
	for name, v := range top {
		if !v.used {
			r.diag.Warn(v.name.Line, fmt.Sprintf("Unused variable '%s'", name))
		}
	}
}

func (r *Resolver) declare(name Token) {
	if len(r.scopes) == 0 {
		return
	}
	top := r.scopes[len(r.scopes)-1]
	if _, ok := top[name.Lexeme]; ok {
		r.diag.ErrorAt(name, "Variable with this name already declared in this scope")
	}
	top[name.Lexeme] = &localVar{name: name}
}

func (r *Resolver) define(name Token) {
	if len(r.scopes) == 0 {
		return
	}
	if v, ok := r.scopes[len(r.scopes)-1][name.Lexeme]; ok {
		v.defined = true
	}
}

// defineSynthetic installs an implicit frame name (this, super) that never
// participates in unused warnings.
func (r *Resolver) defineSynthetic(name string) {
	r.scopes[len(r.scopes)-1][name] = &localVar{defined: true, used: true}
}

// resolveLocal records the hop count from the innermost scope to the one
// defining name, or leaves the expression unrecorded for globals. Reads mark
// the variable used; writes alone do not.
func (r *Resolver) resolveLocal(expr Expr, name Token, read bool) {
	for i := len(r.scopes) - 1; i >= 0; i-- {
		if v, ok := r.scopes[i][name.Lexeme]; ok {
			if read {
				v.used = true
			}
			r.locals[expr] = len(r.scopes) - 1 - i
			return
		}
	}
	// not found: global by name at runtime
}

// ----- statements -----

func (r *Resolver) resolveStmt(s Stmt) {
	switch st := s.(type) {
	case *ExprStmt:
		r.resolveExpr(st.Expression)

	case *PrintStmt:
		r.resolveExpr(st.Expression)

	case *VarStmt:
		r.declare(st.Name)
		if st.Init != nil {
			r.resolveExpr(st.Init)
		}
		r.define(st.Name)

	case *BlockStmt:
		r.beginScope()
		r.Resolve(st.Statements)
		r.endScope()

	case *IfStmt:
		r.resolveExpr(st.Cond)
		r.resolveStmt(st.Then)
		if st.Else != nil {
			r.resolveStmt(st.Else)
		}

	case *LoopStmt:
		// each loop opens its own scope: init variables are visible to
		// condition, update and body, not to code after the loop
		r.beginScope()
		if st.Init != nil {
			r.resolveStmt(st.Init)
		}
		r.resolveExpr(st.Cond)
		if st.Update != nil {
			r.resolveExpr(st.Update)
		}
		r.loopDepth++
		r.resolveStmt(st.Body)
		r.loopDepth--
		r.endScope()

	case *BreakStmt:
		if r.loopDepth == 0 {
			r.diag.ErrorAt(st.Keyword, loopJumpMsg)
		}

	case *ContinueStmt:
		if r.loopDepth == 0 {
			r.diag.ErrorAt(st.Keyword, loopJumpMsg)
		}

	case *FunctionStmt:
		r.declare(st.Name)
		r.define(st.Name)
		r.resolveFunction(st.Fn, funcFunction)

	case *ReturnStmt:
		if r.currentFn == funcNone {
			r.diag.ErrorAt(st.Keyword, "Cannot return from top-level code")
		}
		if st.Value != nil {
			if r.currentFn == funcInitializer {
				r.diag.ErrorAt(st.Keyword, "Cannot return a value from an initializer")
			}
			r.resolveExpr(st.Value)
		}

	case *ClassStmt:
		r.resolveClass(st)

	default:
		panic(fmt.Sprintf("lox: resolver: unknown statement %T", s))
	}
}

func (r *Resolver) resolveClass(st *ClassStmt) {
	enclosing := r.currentClass
	r.currentClass = classPlain

	r.declare(st.Name)
	r.define(st.Name)

	if st.Superclass != nil {
		if st.Superclass.Name.Lexeme == st.Name.Lexeme {
			r.diag.ErrorAt(st.Superclass.Name, "A class cannot inherit from itself")
		}
		r.currentClass = classSub
		r.resolveExpr(st.Superclass)

		r.beginScope()
		r.defineSynthetic("super")
	}

	// static methods are ordinary functions without this; they still see
	// the super frame when one exists
	for _, m := range st.Statics {
		r.resolveFunction(m.Fn, funcStatic)
	}

	r.beginScope()
	r.defineSynthetic("this")
	for _, m := range st.Methods {
		kind := funcMethod
		if m.Name.Lexeme == "init" {
			kind = funcInitializer
		}
		r.resolveFunction(m.Fn, kind)
	}
	r.endScope()

	if st.Superclass != nil {
		r.endScope()
	}

	r.currentClass = enclosing
}

// resolveFunction resolves params and body in a fresh scope. The loop depth
// resets so a break inside the body cannot bind a loop outside it.
func (r *Resolver) resolveFunction(fn *FunctionExpr, kind funcKind) {
	enclosingFn := r.currentFn
	enclosingLoop := r.loopDepth
	r.currentFn = kind
	r.loopDepth = 0

	r.beginScope()
	for _, param := range fn.Params {
		r.declare(param)
		r.define(param)
	}
	r.Resolve(fn.Body)
	r.endScope()

	r.currentFn = enclosingFn
	r.loopDepth = enclosingLoop
}

// ----- expressions -----

func (r *Resolver) resolveExpr(e Expr) {
	switch ex := e.(type) {
	case *LiteralExpr:
		// nothing to do

	case *UnaryExpr:
		r.resolveExpr(ex.Right)

	case *BinaryExpr:
		r.resolveExpr(ex.Left)
		r.resolveExpr(ex.Right)

	case *LogicalExpr:
		r.resolveExpr(ex.Left)
		r.resolveExpr(ex.Right)

	case *GroupingExpr:
		r.resolveExpr(ex.Inner)

	case *VariableExpr:
		if len(r.scopes) > 0 {
			if v, ok := r.scopes[len(r.scopes)-1][ex.Name.Lexeme]; ok && !v.defined {
				r.diag.ErrorAt(ex.Name, "Cannot read local variable in its own initializer")
			}
		}
		r.resolveLocal(ex, ex.Name, true)

	case *AssignExpr:
		r.resolveExpr(ex.Value)
		r.resolveLocal(ex, ex.Name, false)

	case *CallExpr:
		r.resolveExpr(ex.Callee)
		for _, a := range ex.Args {
			r.resolveExpr(a)
		}

	case *FunctionExpr:
		r.resolveFunction(ex, funcFunction)

	case *GetExpr:
		r.resolveExpr(ex.Object)

	case *SetExpr:
		r.resolveExpr(ex.Object)
		r.resolveExpr(ex.Value)

	case *DeleteExpr:
		r.resolveExpr(ex.Object)

	case *ThisExpr:
		if r.currentClass == classNone {
			r.diag.ErrorAt(ex.Keyword, "Cannot use 'this' outside of a class")
			return
		}
		r.resolveLocal(ex, ex.Keyword, true)

	case *SuperExpr:
		switch r.currentClass {
		case classNone:
			r.diag.ErrorAt(ex.Keyword, "Cannot use 'super' outside of a class")
			return
		case classPlain:
			r.diag.ErrorAt(ex.Keyword, "Cannot use 'super' in a class with no superclass")
			return
		}
		r.resolveLocal(ex, ex.Keyword, true)

	case *CommaExpr:
		for _, sub := range ex.Exprs {
			r.resolveExpr(sub)
		}

	default:
		panic(fmt.Sprintf("lox: resolver: unknown expression %T", e))
	}
}
