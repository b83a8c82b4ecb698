package script

import (
	"testing"

	lua "github.com/yuin/gopher-lua"
)

func TestBridge_EntityOfRejectsNonEntityValues(t *testing.T) {
	_, m := newTestManager(t)
	l := m.State()

	cases := []struct {
		name string
		v    lua.LValue
	}{
		{"string", lua.LString("not an entity")},
		{"number", lua.LNumber(7)},
		{"plain userdata", l.NewUserData()},
		{"table without id", l.NewTable()},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, ok := m.Bridge().EntityOf(l, tc.v); ok {
				t.Fatalf("expected %s to resolve to no entity", tc.name)
			}
		})
	}
}

func TestBridge_EntityOfCyclicTable(t *testing.T) {
	_, m := newTestManager(t)
	l := m.State()

	tbl := l.NewTable()
	l.SetField(tbl, "_entity_id", tbl)
	if _, ok := m.Bridge().EntityOf(l, tbl); ok {
		t.Fatal("expected a self-referential table to resolve to no entity")
	}

	nested := l.NewTable()
	inner := l.NewTable()
	e := m.store.Create()
	l.SetField(inner, "_entity_id", newIDValue(l, e))
	l.SetField(nested, "_entity_id", inner)
	if _, ok := m.Bridge().EntityOf(l, nested); ok {
		t.Fatal("expected an id nested behind a second table to be rejected")
	}
}
