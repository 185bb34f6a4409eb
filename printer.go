package lox

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Stringify renders a value for print and the str builtin.
//
// nil → "nil"; positive infinity → "inf"; booleans and numbers use the
// default decimal form; a string is itself; a class is "<class NAME>"; a
// function is "<fn NAME>", "<getter NAME>" or "<native fn NAME>"; an
// instance lists its fields and then its methods.
func Stringify(v Value) string {
	switch v.Tag {
	case VTNil:
		return "nil"
	case VTBool:
		return strconv.FormatBool(v.Data.(bool))
	case VTNum:
		f := v.Data.(float64)
		if math.IsInf(f, 1) {
			return "inf"
		}
		return strconv.FormatFloat(f, 'g', -1, 64)
	case VTStr:
		return v.Data.(string)
	case VTFun:
		return stringifyFunction(v.Data.(*Function))
	case VTClass:
		return fmt.Sprintf("<class %s>", v.Data.(*Class).Name)
	case VTInstance:
		return stringifyInstance(v.Data.(*Instance))
	default:
		return "unknown"
	}
}

func stringifyFunction(f *Function) string {
	name := f.Name
	if name == "" {
		name = "anonymous"
	}
	switch {
	case f.Native != nil:
		return fmt.Sprintf("<native fn %s>", name)
	case f.IsGetter():
		return fmt.Sprintf("<getter %s>", name)
	default:
		return fmt.Sprintf("<fn %s>", name)
	}
}

// stringifyInstance renders "NAME { field: value, ... }": fields in
// insertion order, then methods walking the class chain in declaration
// order. Inherited methods appear; init and shadowed entries do not.
func stringifyInstance(inst *Instance) string {
	var entries []string
	seen := map[string]bool{}

	for _, k := range inst.Fields.keys {
		v, _ := inst.Fields.get(k)
		entries = append(entries, fmt.Sprintf("%s: %s", k, Stringify(v)))
		seen[k] = true
	}
	for c := inst.Class; c != nil; c = c.Super {
		for _, name := range c.MethodOrder {
			if seen[name] {
				continue
			}
			seen[name] = true
			entries = append(entries, fmt.Sprintf("%s: %s", name, stringifyFunction(c.Methods[name])))
		}
	}

	if len(entries) == 0 {
		return inst.Class.Name + " {}"
	}
	return fmt.Sprintf("%s { %s }", inst.Class.Name, strings.Join(entries, ", "))
}

// ----- AST printer -----

// FormatProgram renders statements back to source. Reparsing the output of a
// parse yields a structurally equal program, and formatting is idempotent.
type astPrinter struct {
	b     strings.Builder
	depth int
}

func FormatProgram(stmts []Stmt) string {
	p := &astPrinter{}
	for _, s := range stmts {
		p.stmt(s)
	}
	return p.b.String()
}

// FormatExpr renders one expression to source form.
func FormatExpr(e Expr) string {
	p := &astPrinter{}
	p.expr(e)
	return p.b.String()
}

func (p *astPrinter) write(s string) { p.b.WriteString(s) }

func (p *astPrinter) line(s string) {
	p.pad()
	p.write(s)
	p.write("\n")
}

func (p *astPrinter) pad() {
	for i := 0; i < p.depth; i++ {
		p.write("  ")
	}
}

func (p *astPrinter) stmt(s Stmt) {
	switch st := s.(type) {
	case *ExprStmt:
		p.pad()
		p.expr(st.Expression)
		p.write(";\n")

	case *PrintStmt:
		p.pad()
		p.write("print ")
		p.expr(st.Expression)
		p.write(";\n")

	case *VarStmt:
		p.pad()
		p.write("var " + st.Name.Lexeme)
		if st.Init != nil {
			p.write(" = ")
			p.expr(st.Init)
		}
		p.write(";\n")

	case *BlockStmt:
		p.line("{")
		p.depth++
		for _, inner := range st.Statements {
			p.stmt(inner)
		}
		p.depth--
		p.line("}")

	case *IfStmt:
		p.pad()
		p.write("if (")
		p.expr(st.Cond)
		p.write(")\n")
		p.nested(st.Then)
		if st.Else != nil {
			p.line("else")
			p.nested(st.Else)
		}

	case *LoopStmt:
		p.pad()
		if st.Init == nil && st.Update == nil {
			p.write("while (")
			p.expr(st.Cond)
			p.write(")\n")
		} else {
			p.write("for (")
			p.forClauses(st)
			p.write(")\n")
		}
		p.nested(st.Body)

	case *BreakStmt:
		p.line("break;")

	case *ContinueStmt:
		p.line("continue;")

	case *FunctionStmt:
		p.pad()
		p.write("fun ")
		p.function(st.Fn, st.Name.Lexeme)
		p.write("\n")

	case *ReturnStmt:
		p.pad()
		p.write("return")
		if st.Value != nil {
			p.write(" ")
			p.expr(st.Value)
		}
		p.write(";\n")

	case *ClassStmt:
		p.pad()
		p.write("class " + st.Name.Lexeme)
		if st.Superclass != nil {
			p.write(" < " + st.Superclass.Name.Lexeme)
		}
		p.write(" {\n")
		p.depth++
		for _, m := range st.Statics {
			p.pad()
			p.write("static ")
			p.function(m.Fn, m.Name.Lexeme)
			p.write("\n")
		}
		for _, m := range st.Methods {
			p.pad()
			p.function(m.Fn, m.Name.Lexeme)
			p.write("\n")
		}
		p.depth--
		p.line("}")

	default:
		panic(fmt.Sprintf("lox: printer: unknown statement %T", s))
	}
}

// nested prints a statement one level in; blocks keep their own braces.
func (p *astPrinter) nested(s Stmt) {
	if _, ok := s.(*BlockStmt); ok {
		p.stmt(s)
		return
	}
	p.depth++
	p.stmt(s)
	p.depth--
}

func (p *astPrinter) forClauses(st *LoopStmt) {
	switch init := st.Init.(type) {
	case nil:
		p.write("; ")
	case *VarStmt:
		p.write("var " + init.Name.Lexeme)
		if init.Init != nil {
			p.write(" = ")
			p.expr(init.Init)
		}
		p.write("; ")
	case *ExprStmt:
		p.expr(init.Expression)
		p.write("; ")
	}
	p.expr(st.Cond)
	p.write(";")
	if st.Update != nil {
		p.write(" ")
		p.expr(st.Update)
	}
}

// function prints "name(params) { body }"; a getter has no parameter list.
func (p *astPrinter) function(fn *FunctionExpr, name string) {
	p.write(name)
	if !fn.IsGetter {
		p.write("(")
		for i, param := range fn.Params {
			if i > 0 {
				p.write(", ")
			}
			p.write(param.Lexeme)
		}
		p.write(")")
	}
	p.write(" {\n")
	p.depth++
	for _, s := range fn.Body {
		p.stmt(s)
	}
	p.depth--
	p.pad()
	p.write("}")
}

func (p *astPrinter) expr(e Expr) {
	switch ex := e.(type) {
	case *LiteralExpr:
		p.literal(ex.Value)

	case *GroupingExpr:
		p.write("(")
		p.expr(ex.Inner)
		p.write(")")

	case *UnaryExpr:
		p.write(ex.Op.Lexeme)
		p.expr(ex.Right)

	case *BinaryExpr:
		p.expr(ex.Left)
		p.write(" " + ex.Op.Lexeme + " ")
		p.expr(ex.Right)

	case *LogicalExpr:
		p.expr(ex.Left)
		p.write(" " + ex.Op.Lexeme + " ")
		p.expr(ex.Right)

	case *CommaExpr:
		for i, sub := range ex.Exprs {
			if i > 0 {
				p.write(", ")
			}
			p.expr(sub)
		}

	case *VariableExpr:
		p.write(ex.Name.Lexeme)

	case *AssignExpr:
		p.write(ex.Name.Lexeme + " = ")
		p.expr(ex.Value)

	case *CallExpr:
		p.expr(ex.Callee)
		p.write("(")
		for i, a := range ex.Args {
			if i > 0 {
				p.write(", ")
			}
			p.expr(a)
		}
		p.write(")")

	case *FunctionExpr:
		p.write("fun")
		if ex.Name != "" {
			p.write(" " + ex.Name)
		}
		p.write("(")
		for i, param := range ex.Params {
			if i > 0 {
				p.write(", ")
			}
			p.write(param.Lexeme)
		}
		p.write(") {\n")
		p.depth++
		for _, s := range ex.Body {
			p.stmt(s)
		}
		p.depth--
		p.pad()
		p.write("}")

	case *GetExpr:
		p.expr(ex.Object)
		p.write("." + ex.Name.Lexeme)

	case *SetExpr:
		p.expr(ex.Object)
		p.write("." + ex.Name.Lexeme + " = ")
		p.expr(ex.Value)

	case *DeleteExpr:
		p.write("delete ")
		p.expr(ex.Object)
		p.write("." + ex.Name.Lexeme)

	case *ThisExpr:
		p.write("this")

	case *SuperExpr:
		p.write("super." + ex.Member.Lexeme)

	default:
		panic(fmt.Sprintf("lox: printer: unknown expression %T", e))
	}
}

func (p *astPrinter) literal(v Value) {
	switch v.Tag {
	case VTStr:
		p.write(`"` + v.Data.(string) + `"`)
	case VTNum:
		// plain decimal digits: the lexer has no exponent notation
		p.write(strconv.FormatFloat(v.Data.(float64), 'f', -1, 64))
	default:
		p.write(Stringify(v))
	}
}
