package lox

import (
	"strings"
	"testing"
)

func Test_Env_DefineGet(t *testing.T) {
	env := NewEnv(nil)
	env.Define("a", Num(1))
	v, err := env.Get("a")
	if err != nil || v.Data.(float64) != 1 {
		t.Fatalf("want 1, got %v (%v)", v, err)
	}
}

func Test_Env_UndefinedVsUninitialized(t *testing.T) {
	env := NewEnv(nil)
	if _, err := env.Get("a"); err == nil || !strings.Contains(err.Error(), "Undefined variable 'a'") {
		t.Fatalf("want undefined error, got %v", err)
	}
	env.Declare("a")
	if _, err := env.Get("a"); err == nil || !strings.Contains(err.Error(), "Uninitialized variable 'a'") {
		t.Fatalf("want uninitialized error, got %v", err)
	}
	env.Define("a", Nil)
	if v, err := env.Get("a"); err != nil || v.Tag != VTNil {
		t.Fatalf("nil is a real value, got %v (%v)", v, err)
	}
}

func Test_Env_AssignDoesNotWalk(t *testing.T) {
	root := NewEnv(nil)
	root.Define("a", Num(1))
	child := NewEnv(root)
	if err := child.Assign("a", Num(2)); err == nil {
		t.Fatalf("assign must not walk to the parent")
	}
}

func Test_Env_DepthAddressing(t *testing.T) {
	root := NewEnv(nil)
	root.Define("x", Str("root"))
	mid := NewEnv(root)
	mid.Define("x", Str("mid"))
	leaf := NewEnv(mid)

	if v, _ := leaf.GetAt(1, "x"); v.Data.(string) != "mid" {
		t.Fatalf("depth 1 should hit mid, got %v", v)
	}
	if v, _ := leaf.GetAt(2, "x"); v.Data.(string) != "root" {
		t.Fatalf("depth 2 should hit root, got %v", v)
	}

	leaf.AssignAt(2, "x", Str("patched"))
	if v, _ := root.Get("x"); v.Data.(string) != "patched" {
		t.Fatalf("assignAt should write the root frame, got %v", v)
	}
}

func Test_Env_GetAtMissingSlotAborts(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("a missing slot at a resolved depth must abort")
		}
	}()
	NewEnv(nil).GetAt(0, "ghost")
}

func Test_Env_GetUncheckedAt(t *testing.T) {
	env := NewEnv(nil)
	if _, ok := env.GetUncheckedAt(0, "ghost"); ok {
		t.Fatalf("missing slot should be absent, not an error")
	}
	env.Declare("half")
	if _, ok := env.GetUncheckedAt(0, "half"); ok {
		t.Fatalf("declared-but-unset slot should read as absent")
	}
	env.Define("whole", Bool(true))
	if v, ok := env.GetUncheckedAt(0, "whole"); !ok || !v.Data.(bool) {
		t.Fatalf("want true, got %v", v)
	}
}
