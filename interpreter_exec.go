package lox

import (
	"fmt"
	"math"
)

// ----- statements -----

func (ip *Interpreter) execute(s Stmt) {
	switch st := s.(type) {
	case *ExprStmt:
		ip.eval(st.Expression)

	case *PrintStmt:
		v := ip.eval(st.Expression)
		fmt.Fprintln(ip.out, Stringify(v))

	case *VarStmt:
		if st.Init == nil {
			ip.env.Declare(st.Name.Lexeme)
		} else {
			ip.env.Define(st.Name.Lexeme, ip.eval(st.Init))
		}

	case *BlockStmt:
		ip.executeBlock(st.Statements, NewEnv(ip.env))

	case *IfStmt:
		if Truthy(ip.eval(st.Cond)) {
			ip.execute(st.Then)
		} else if st.Else != nil {
			ip.execute(st.Else)
		}

	case *LoopStmt:
		ip.execLoop(st)

	case *BreakStmt:
		panic(breakSignal{})

	case *ContinueStmt:
		panic(continueSignal{})

	case *FunctionStmt:
		fn := &Function{Name: st.Name.Lexeme, Decl: st.Fn, Closure: ip.env}
		ip.env.Define(st.Name.Lexeme, FunVal(fn))

	case *ReturnStmt:
		value := Nil
		if st.Value != nil {
			value = ip.eval(st.Value)
		}
		panic(returnSignal{value: value})

	case *ClassStmt:
		ip.execClass(st)

	default:
		panic(fmt.Sprintf("lox: interpreter: unknown statement %T", s))
	}
}

// executeBlock runs stmts with env as the current frame, restoring the
// previous frame even when a signal or runtime error unwinds through.
func (ip *Interpreter) executeBlock(stmts []Stmt, env *Env) {
	prev := ip.env
	ip.env = env
	defer func() { ip.env = prev }()
	for _, s := range stmts {
		ip.execute(s)
	}
}

// execLoop opens one scope for the whole loop, mirroring the resolver: init
// variables are visible to condition, update and body. The update clause
// runs on normal iteration end and on continue; break skips it.
func (ip *Interpreter) execLoop(st *LoopStmt) {
	prev := ip.env
	ip.env = NewEnv(prev)
	defer func() { ip.env = prev }()

	if st.Init != nil {
		ip.execute(st.Init)
	}
	for Truthy(ip.eval(st.Cond)) {
		if ip.runLoopBody(st.Body) {
			break
		}
		if st.Update != nil {
			ip.eval(st.Update)
		}
	}
}

// runLoopBody executes one iteration, absorbing the loop escape signals.
// It reports whether the loop should terminate.
func (ip *Interpreter) runLoopBody(body Stmt) (brk bool) {
	defer func() {
		if r := recover(); r != nil {
			switch r.(type) {
			case breakSignal:
				brk = true
			case continueSignal:
				// fall through to the update clause
			default:
				panic(r)
			}
		}
	}()
	ip.execute(body)
	return false
}

// execClass evaluates a class declaration:
//  1. the superclass expression must evaluate to a class;
//  2. the class name is defined bound to nil so methods can resolve it;
//  3. with a superclass, methods close over an extra frame defining super;
//  4. the method map is built, "init" extracted;
//  5. static methods land in the class's own field bag;
//  6. the class object is assigned to the declared name.
func (ip *Interpreter) execClass(st *ClassStmt) {
	var super *Class
	if st.Superclass != nil {
		sv := ip.eval(st.Superclass)
		if sv.Tag != VTClass {
			ip.err(st.Superclass.Name.Line, "Superclass must be a class")
		}
		super = sv.Data.(*Class)
	}

	ip.env.Define(st.Name.Lexeme, Nil)

	methodEnv := ip.env
	if super != nil {
		methodEnv = NewEnv(ip.env)
		methodEnv.Define("super", ClassVal(super))
	}

	var init *Function
	methods := map[string]*Function{}
	var order []string
	for _, m := range st.Methods {
		fn := &Function{
			Name:    m.Name.Lexeme,
			Decl:    m.Fn,
			Closure: methodEnv,
			IsInit:  m.Name.Lexeme == "init",
		}
		if fn.IsInit {
			init = fn
			continue
		}
		methods[m.Name.Lexeme] = fn
		order = append(order, m.Name.Lexeme)
	}

	class := &Class{
		Name:        st.Name.Lexeme,
		Super:       super,
		Init:        init,
		Methods:     methods,
		MethodOrder: order,
		Fields:      newFieldBag(),
	}
	for _, m := range st.Statics {
		fn := &Function{Name: m.Name.Lexeme, Decl: m.Fn, Closure: methodEnv}
		class.Fields.set(m.Name.Lexeme, FunVal(fn))
	}

	if err := ip.env.Assign(st.Name.Lexeme, ClassVal(class)); err != nil {
		panic(fmt.Sprintf("lox: class name '%s' vanished during declaration", st.Name.Lexeme))
	}
}

// ----- expressions -----

func (ip *Interpreter) eval(e Expr) Value {
	switch ex := e.(type) {
	case *LiteralExpr:
		return ex.Value

	case *GroupingExpr:
		return ip.eval(ex.Inner)

	case *UnaryExpr:
		return ip.evalUnary(ex)

	case *BinaryExpr:
		return ip.evalBinary(ex)

	case *LogicalExpr:
		left := ip.eval(ex.Left)
		if ex.Op.Type == OR {
			if Truthy(left) {
				return left
			}
		} else if !Truthy(left) {
			return left
		}
		return ip.eval(ex.Right)

	case *CommaExpr:
		var last Value
		for _, sub := range ex.Exprs {
			last = ip.eval(sub)
		}
		return last

	case *VariableExpr:
		return ip.lookUpVariable(ex.Name, ex)

	case *AssignExpr:
		value := ip.eval(ex.Value)
		if depth, ok := ip.locals[ex]; ok {
			ip.env.AssignAt(depth, ex.Name.Lexeme, value)
		} else if err := ip.globals.Assign(ex.Name.Lexeme, value); err != nil {
			ip.err(ex.Name.Line, err.Error())
		}
		return value

	case *CallExpr:
		return ip.evalCall(ex)

	case *FunctionExpr:
		return FunVal(&Function{Name: ex.Name, Decl: ex, Closure: ip.env})

	case *GetExpr:
		return ip.evalGet(ex)

	case *SetExpr:
		return ip.evalSet(ex)

	case *DeleteExpr:
		return ip.evalDelete(ex)

	case *ThisExpr:
		return ip.lookUpVariable(ex.Keyword, ex)

	case *SuperExpr:
		return ip.evalSuper(ex)

	default:
		panic(fmt.Sprintf("lox: interpreter: unknown expression %T", e))
	}
}

func (ip *Interpreter) lookUpVariable(name Token, expr Expr) Value {
	if depth, ok := ip.locals[expr]; ok {
		v, err := ip.env.GetAt(depth, name.Lexeme)
		if err != nil {
			ip.err(name.Line, err.Error())
		}
		return v
	}
	v, err := ip.globals.Get(name.Lexeme)
	if err != nil {
		ip.err(name.Line, err.Error())
	}
	return v
}

func (ip *Interpreter) evalUnary(ex *UnaryExpr) Value {
	right := ip.eval(ex.Right)
	switch ex.Op.Type {
	case MINUS:
		if right.Tag != VTNum {
			ip.err(ex.Op.Line, "Operand must be a number")
		}
		return Num(-right.Data.(float64))
	case BANG:
		return Bool(!Truthy(right))
	}
	panic(fmt.Sprintf("lox: interpreter: unknown unary operator %s", ex.Op.Lexeme))
}

func (ip *Interpreter) evalBinary(ex *BinaryExpr) Value {
	left := ip.eval(ex.Left)
	right := ip.eval(ex.Right)
	line := ex.Op.Line

	num := func(v Value) float64 {
		if v.Tag != VTNum {
			ip.err(line, "Operand must be a number")
		}
		return v.Data.(float64)
	}

	switch ex.Op.Type {
	case PLUS:
		if left.Tag == VTNum && right.Tag == VTNum {
			return Num(left.Data.(float64) + right.Data.(float64))
		}
		if left.Tag == VTStr && right.Tag == VTStr {
			return Str(left.Data.(string) + right.Data.(string))
		}
		ip.err(line, "Operands must both be a number or a string")
	case MINUS:
		return Num(num(left) - num(right))
	case STAR:
		return Num(num(left) * num(right))
	case SLASH:
		return Num(num(left) / num(right))
	case PERCENT:
		return Num(math.Mod(num(left), num(right)))
	case POWER:
		return Num(math.Pow(num(left), num(right)))
	case LESS:
		return Bool(num(left) < num(right))
	case LESS_EQ:
		return Bool(num(left) <= num(right))
	case GREATER:
		return Bool(num(left) > num(right))
	case GREATER_EQ:
		return Bool(num(left) >= num(right))
	case EQ:
		return Bool(ValuesEqual(left, right))
	case BANG_EQ:
		return Bool(!ValuesEqual(left, right))
	}
	panic(fmt.Sprintf("lox: interpreter: unknown binary operator %s", ex.Op.Lexeme))
}

func (ip *Interpreter) evalCall(ex *CallExpr) Value {
	callee := ip.eval(ex.Callee)

	args := make([]Value, 0, len(ex.Args))
	for _, a := range ex.Args {
		args = append(args, ip.eval(a))
	}

	line := ex.Paren.Line
	switch callee.Tag {
	case VTFun:
		f := callee.Data.(*Function)
		ip.checkArity(f.Arity(), len(args), line)
		return ip.invoke(f, args, line)
	case VTClass:
		c := callee.Data.(*Class)
		ip.checkArity(c.Arity(), len(args), line)
		return ip.construct(c, args, line)
	default:
		ip.err(line, "Value is not callable")
		return Nil
	}
}

func (ip *Interpreter) checkArity(want, got, line int) {
	if want != got {
		ip.err(line, fmt.Sprintf("Expected %d args but got %d", want, got))
	}
}

// invoke calls a function value with checked arity. Natives get a single
// invocation; user functions run their body in a fresh frame chained to the
// captured closure.
func (ip *Interpreter) invoke(f *Function, args []Value, line int) Value {
	name := f.Name
	if name == "" {
		name = "anonymous"
	}
	ip.frames = append(ip.frames, StackFrame{Name: name, Line: line})
	defer func() { ip.frames = ip.frames[:len(ip.frames)-1] }()

	if f.Native != nil {
		// bound native methods receive the instance as args[0]
		if f.Closure != nil {
			if this, ok := f.Closure.GetUncheckedAt(0, "this"); ok {
				args = append([]Value{this}, args...)
			}
		}
		return f.Native(ip, args)
	}

	env := NewEnv(f.Closure)
	for i, p := range f.Decl.Params {
		env.Define(p.Lexeme, args[i])
	}
	return ip.runFunctionBody(f, env)
}

// runFunctionBody executes the body, consuming the return signal. Reaching
// the end without return yields nil; an init method always yields this.
func (ip *Interpreter) runFunctionBody(f *Function, env *Env) (result Value) {
	result = Nil
	defer func() {
		if r := recover(); r != nil {
			rs, ok := r.(returnSignal)
			if !ok {
				panic(r)
			}
			result = rs.value
		}
		if f.IsInit {
			if this, ok := f.Closure.GetUncheckedAt(0, "this"); ok {
				result = this
			}
		}
	}()
	ip.executeBlock(f.Decl.Body, env)
	return
}

// construct instantiates a class: a bare instance, then init bound and run
// with the provided args.
func (ip *Interpreter) construct(c *Class, args []Value, line int) Value {
	inst := InstanceVal(NewInstance(c))
	if init := c.Initializer(); init != nil {
		ip.invoke(init.Bind(inst), args, line)
	}
	return inst
}

// evalGet implements property access. On an instance: field, then bound
// method, with getters called on the spot. On a class: the static bag with
// superclass fallback.
func (ip *Interpreter) evalGet(ex *GetExpr) Value {
	obj := ip.eval(ex.Object)
	name := ex.Name.Lexeme
	line := ex.Name.Line

	switch obj.Tag {
	case VTInstance:
		inst := obj.Data.(*Instance)
		if v, ok := inst.Fields.get(name); ok {
			return v
		}
		if m := inst.Class.FindMethod(name); m != nil {
			bound := m.Bind(obj)
			if bound.IsGetter() {
				return ip.invoke(bound, nil, line)
			}
			return FunVal(bound)
		}
		ip.err(line, fmt.Sprintf("Undefined property '%s'", name))
	case VTClass:
		c := obj.Data.(*Class)
		if v, ok := c.FindStatic(name); ok {
			return v
		}
		ip.err(line, fmt.Sprintf("Undefined property '%s'", name))
	default:
		ip.err(line, "Value is not a class instance")
	}
	return Nil
}

// evalSet writes a field. Writes are local: neither instances nor classes
// walk the superclass chain.
func (ip *Interpreter) evalSet(ex *SetExpr) Value {
	obj := ip.eval(ex.Object)
	value := ip.eval(ex.Value)

	switch obj.Tag {
	case VTInstance:
		obj.Data.(*Instance).Fields.set(ex.Name.Lexeme, value)
	case VTClass:
		obj.Data.(*Class).Fields.set(ex.Name.Lexeme, value)
	default:
		ip.err(ex.Name.Line, "Value is not a class instance")
	}
	return value
}

// evalDelete removes a field from an instance or a class bag and yields
// whether anything was removed.
func (ip *Interpreter) evalDelete(ex *DeleteExpr) Value {
	obj := ip.eval(ex.Object)
	switch obj.Tag {
	case VTInstance:
		return Bool(obj.Data.(*Instance).Fields.delete(ex.Name.Lexeme))
	case VTClass:
		return Bool(obj.Data.(*Class).Fields.delete(ex.Name.Lexeme))
	default:
		ip.err(ex.Name.Line, "Value is not a class instance")
	}
	return Nil
}

// evalSuper dispatches through the superclass. The super frame sits at the
// recorded depth; the instance, when there is one, in the this frame one hop
// closer. With no instance the call site is a static method, and the lookup
// falls back to the superclass's static bag.
func (ip *Interpreter) evalSuper(ex *SuperExpr) Value {
	depth, ok := ip.locals[ex]
	if !ok {
		panic("lox: 'super' reference was not resolved")
	}
	superV, ok := ip.env.GetUncheckedAt(depth, "super")
	if !ok {
		panic("lox: 'super' frame missing at recorded depth")
	}
	sc := superV.Data.(*Class)
	name := ex.Member.Lexeme
	line := ex.Member.Line

	if this, ok := ip.env.GetUncheckedAt(depth-1, "this"); ok {
		m := sc.FindMethod(name)
		if m == nil && name == "init" {
			// init is extracted from the method map; super.init still works
			m = sc.Initializer()
		}
		if m == nil {
			ip.err(line, fmt.Sprintf("Undefined property '%s'", name))
		}
		bound := m.Bind(this)
		if bound.IsGetter() {
			return ip.invoke(bound, nil, line)
		}
		return FunVal(bound)
	}

	v, found := sc.FindStatic(name)
	if !found {
		ip.err(line, fmt.Sprintf("Undefined property '%s'", name))
	}
	return v
}
