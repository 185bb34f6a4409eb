package lox

import "time"

// registerCoreBuiltins installs the three always-present globals.
func registerCoreBuiltins(ip *Interpreter) {
	ip.RegisterNative("type", 1, func(_ *Interpreter, args []Value) Value {
		return Str(TypeTag(args[0]))
	})

	ip.RegisterNative("time", 0, func(_ *Interpreter, _ []Value) Value {
		return Num(float64(time.Now().UnixMilli()))
	})

	ip.RegisterNative("str", 1, func(_ *Interpreter, args []Value) Value {
		return Str(Stringify(args[0]))
	})
}
