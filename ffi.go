package lox

// Host embedding surface: native functions and native classes registered by
// name into the globals frame. A native is invoked with its evaluated
// arguments and returns a value (the zero Value is nil). Bound native
// methods receive the instance as args[0]; each call invokes the host
// callable exactly once.

// RegisterNative installs a host function as a global.
func (ip *Interpreter) RegisterNative(name string, arity int, impl NativeImpl) {
	ip.globals.Define(name, FunVal(&Function{
		Name:        name,
		Native:      impl,
		NativeArity: arity,
	}))
}

// NativeMethod describes one method of a native class.
type NativeMethod struct {
	Name   string
	Arity  int
	Getter bool
	Impl   NativeImpl
}

// NativeClassSpec declares a native class: instance methods (getter-tagged),
// an optional init, and static members.
type NativeClassSpec struct {
	Name    string
	Init    *NativeMethod
	Methods []NativeMethod
	Statics map[string]Value
}

// RegisterNativeClass builds a class from spec, installs it as a global and
// returns it. Instances of native classes behave like user instances: field
// bag first, then the method map.
func (ip *Interpreter) RegisterNativeClass(spec NativeClassSpec) *Class {
	class := &Class{
		Name:    spec.Name,
		Methods: map[string]*Function{},
		Fields:  newFieldBag(),
	}

	if spec.Init != nil {
		class.Init = &Function{
			Name:        "init",
			Native:      spec.Init.Impl,
			NativeArity: spec.Init.Arity,
			IsInit:      true,
		}
	}
	for _, m := range spec.Methods {
		class.Methods[m.Name] = &Function{
			Name:         m.Name,
			Native:       m.Impl,
			NativeArity:  m.Arity,
			NativeGetter: m.Getter,
		}
		class.MethodOrder = append(class.MethodOrder, m.Name)
	}
	for name, v := range spec.Statics {
		class.Fields.set(name, v)
	}

	ip.globals.Define(spec.Name, ClassVal(class))
	return class
}
