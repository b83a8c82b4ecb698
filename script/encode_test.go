package script

import (
	"testing"

	lua "github.com/yuin/gopher-lua"
)

func TestSnakeCase(t *testing.T) {
	cases := map[string]string{
		"A":         "a",
		"DeltaTime": "delta_time",
		"X2":        "x2",
		"Target":    "target",
	}
	for in, want := range cases {
		if got := snakeCase(in); got != want {
			t.Errorf("snakeCase(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestEventConstructor_RejectsCyclicValue(t *testing.T) {
	_, m := newTestManager(t)
	RegisterEvent[Collision](m, "Collision")

	err := m.State().DoString(`
		local bridge = require("bridge")
		local cyclic = {}
		cyclic._entity_id = cyclic
		bridge.events.Collision(cyclic, cyclic)
	`)
	if err == nil {
		t.Fatal("expected an argument error for a value carrying no entity id")
	}
}

func TestGoToLua(t *testing.T) {
	_, m := newTestManager(t)
	l := m.State()

	if got := goToLua(l, 3.5); got != lua.LNumber(3.5) {
		t.Errorf("expected LNumber(3.5), got %v", got)
	}
	if got := goToLua(l, "hi"); got != lua.LString("hi") {
		t.Errorf("expected LString, got %v", got)
	}
	if got := goToLua(l, true); got != lua.LTrue {
		t.Errorf("expected LTrue, got %v", got)
	}
	if got := goToLua(l, nil); got != lua.LNil {
		t.Errorf("expected LNil, got %v", got)
	}

	tbl, ok := goToLua(l, []any{1, "two"}).(*lua.LTable)
	if !ok {
		t.Fatal("expected a table for a slice")
	}
	if tbl.RawGetInt(2) != lua.LString("two") {
		t.Errorf("expected element at index 2, got %v", tbl.RawGetInt(2))
	}
}
