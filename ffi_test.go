package lox

import (
	"bytes"
	"strings"
	"testing"
)

func Test_FFI_RegisterNative(t *testing.T) {
	var out, errOut bytes.Buffer
	s := NewSession(&out, &errOut)
	s.Interpreter().RegisterNative("double", 1, func(_ *Interpreter, args []Value) Value {
		return Num(args[0].Data.(float64) * 2)
	})

	if !s.Run("print double(21);") {
		t.Fatalf("run failed: %s", errOut.String())
	}
	if out.String() != "42\n" {
		t.Fatalf("want 42, got %q", out.String())
	}
}

func Test_FFI_NativeReturningZeroValueIsNil(t *testing.T) {
	var out, errOut bytes.Buffer
	s := NewSession(&out, &errOut)
	s.Interpreter().RegisterNative("noop", 0, func(_ *Interpreter, _ []Value) Value {
		return Value{}
	})
	s.Run("print noop();")
	if out.String() != "nil\n" {
		t.Fatalf("want nil, got %q", out.String())
	}
}

func Test_FFI_NativeArityChecked(t *testing.T) {
	var out, errOut bytes.Buffer
	s := NewSession(&out, &errOut)
	s.Interpreter().RegisterNative("one", 1, func(_ *Interpreter, args []Value) Value {
		return args[0]
	})
	s.Run("one(1, 2);")
	if !strings.Contains(errOut.String(), "Expected 1 args but got 2") {
		t.Fatalf("want arity error, got %q", errOut.String())
	}
}

func Test_FFI_NativeClass(t *testing.T) {
	var out, errOut bytes.Buffer
	s := NewSession(&out, &errOut)
	s.Interpreter().RegisterNativeClass(NativeClassSpec{
		Name: "Box",
		Init: &NativeMethod{
			Arity: 1,
			Impl: func(_ *Interpreter, args []Value) Value {
				inst := args[0].Data.(*Instance)
				inst.Fields.set("value", args[1])
				return Value{}
			},
		},
		Methods: []NativeMethod{
			{
				Name:  "get",
				Arity: 0,
				Impl: func(_ *Interpreter, args []Value) Value {
					inst := args[0].Data.(*Instance)
					v, _ := inst.Fields.get("value")
					return v
				},
			},
			{
				Name:   "empty",
				Getter: true,
				Impl: func(_ *Interpreter, args []Value) Value {
					inst := args[0].Data.(*Instance)
					_, ok := inst.Fields.get("value")
					return Bool(!ok)
				},
			},
		},
		Statics: map[string]Value{
			"kind": Str("box"),
		},
	})

	src := `
		var b = Box(7);
		print b.get();
		print b.empty;
		print Box.kind;
	`
	if !s.Run(src) {
		t.Fatalf("run failed: %s", errOut.String())
	}
	if out.String() != "7\nfalse\nbox\n" {
		t.Fatalf("unexpected output: %q", out.String())
	}
}

func Test_FFI_BoundNativeCalledOnce(t *testing.T) {
	var out, errOut bytes.Buffer
	s := NewSession(&out, &errOut)
	calls := 0
	s.Interpreter().RegisterNativeClass(NativeClassSpec{
		Name: "C",
		Methods: []NativeMethod{
			{
				Name:  "tick",
				Arity: 0,
				Impl: func(_ *Interpreter, _ []Value) Value {
					calls++
					return Value{}
				},
			},
		},
	})
	if !s.Run("C().tick();") {
		t.Fatalf("run failed: %s", errOut.String())
	}
	if calls != 1 {
		t.Fatalf("bound native must be invoked exactly once per call, got %d", calls)
	}
}

func Test_FFI_GlobalsAccess(t *testing.T) {
	var out, errOut bytes.Buffer
	s := NewSession(&out, &errOut)
	s.Interpreter().Globals().Define("answer", Num(42))
	s.Run("print answer;")
	if out.String() != "42\n" {
		t.Fatalf("want 42, got %q", out.String())
	}
}
