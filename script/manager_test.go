package script

import (
	stderrors "errors"
	"reflect"
	"testing"

	lua "github.com/yuin/gopher-lua"

	"github.com/lunarc/script-bridge/ecs"
	"github.com/lunarc/script-bridge/errors"
)

// Collision is the event type exercised by the proxy tests. Entity fields
// are delivered to handlers as the materialized script objects.
type Collision struct {
	A ecs.Entity
	B ecs.Entity
}

func newTestManager(t *testing.T) (*ecs.Store, *Manager) {
	t.Helper()
	bus := ecs.NewEventBus()
	store := ecs.NewStore(bus)
	m := NewManager(store)
	m.AddSearchPath("testdata")
	m.LogTo(func(string) {}, func(string) {})
	if err := m.Configure(bus); err != nil {
		t.Fatalf("configure: %v", err)
	}
	t.Cleanup(func() {
		if err := m.Close(); err != nil {
			t.Errorf("close: %v", err)
		}
	})
	return store, m
}

func numField(t *testing.T, m *Manager, obj *lua.LTable, key string) float64 {
	t.Helper()
	v := m.State().GetField(obj, key)
	n, ok := v.(lua.LNumber)
	if !ok {
		t.Fatalf("expected field %q to be a number, got %s", key, v.Type())
	}
	return float64(n)
}

func TestManager_SharedRuntime(t *testing.T) {
	_, m1 := newTestManager(t)
	_, m2 := newTestManager(t)

	if m1.State() != m2.State() {
		t.Fatal("expected managers to share one runtime state")
	}
}

func TestManager_AttachScriptMaterializes(t *testing.T) {
	store, m := newTestManager(t)

	e := store.Create()
	c, err := m.AttachScript(e, "ticker", "Ticker")
	if err != nil {
		t.Fatalf("attach script: %v", err)
	}
	if !c.Materialized() {
		t.Fatal("expected component to be materialized")
	}
	if m.Bridge().ScriptValue(e) != c.Object {
		t.Fatal("expected bridge to map entity to the materialized object")
	}
	got, ok := m.Bridge().EntityOf(m.State(), c.Object)
	if !ok || got != e {
		t.Fatalf("expected object to map back to %s, got %s (ok=%v)", e, got, ok)
	}
}

func TestManager_UpdateInvokesHooks(t *testing.T) {
	store, m := newTestManager(t)

	e := store.Create()
	c, err := m.AttachScript(e, "ticker", "Ticker")
	if err != nil {
		t.Fatalf("attach script: %v", err)
	}
	if err := m.Update(0.1); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := m.Update(0.25); err != nil {
		t.Fatalf("update: %v", err)
	}
	if got := numField(t, m, c.Object, "frames"); got != 2 {
		t.Fatalf("expected 2 frames, got %v", got)
	}
	if got := numField(t, m, c.Object, "last_dt"); got != 0.25 {
		t.Fatalf("expected last_dt 0.25, got %v", got)
	}
}

func TestManager_ConstructorArguments(t *testing.T) {
	store, m := newTestManager(t)

	e := store.Create()
	c, err := m.AttachScript(e, "shape", "Shape", 4.0, 5.0)
	if err != nil {
		t.Fatalf("attach script: %v", err)
	}
	if got := numField(t, m, c.Object, "x"); got != 4 {
		t.Fatalf("expected x=4, got %v", got)
	}
	if got := numField(t, m, c.Object, "y"); got != 5 {
		t.Fatalf("expected y=5, got %v", got)
	}
}

func TestManager_MaterializationErrors(t *testing.T) {
	store, m := newTestManager(t)

	cases := []struct {
		name   string
		module string
		class  string
		want   *errors.Error
	}{
		{"missing module", "no_such_module", "Thing",
			errors.New(errors.PhaseMaterialize, errors.KindModuleNotFound).Build()},
		{"module load failure", "broken", "Thing",
			errors.New(errors.PhaseMaterialize, errors.KindScriptError).Build()},
		{"missing class", "ticker", "NoSuchClass",
			errors.New(errors.PhaseMaterialize, errors.KindClassNotFound).Build()},
		{"missing factory", "bare", "Bare",
			errors.New(errors.PhaseMaterialize, errors.KindFactoryMissing).Build()},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := store.Create()
			_, err := m.AttachScript(e, tc.module, tc.class)
			if err == nil {
				t.Fatal("expected an error")
			}
			if !stderrors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			c, ok := ecs.Get[Component](store, e)
			if !ok {
				t.Fatal("expected component to remain attached")
			}
			if c.Materialized() {
				t.Fatal("expected component to stay unmaterialized")
			}
		})
	}
}

func TestManager_CollisionProxy(t *testing.T) {
	store, m := newTestManager(t)
	RegisterEvent[Collision](m, "Collision")
	proxy := AddBroadcastProxy[Collision](m, store.Bus(), "on_collision")

	e1 := store.Create()
	c1, err := m.AttachScript(e1, "collider", "Collider")
	if err != nil {
		t.Fatalf("attach collider: %v", err)
	}
	e2 := store.Create()
	c2, err := m.AttachScript(e2, "collider", "Collider")
	if err != nil {
		t.Fatalf("attach collider: %v", err)
	}
	deaf := store.Create()
	if _, err := m.AttachScript(deaf, "collider", "Deaf"); err != nil {
		t.Fatalf("attach deaf: %v", err)
	}

	if got := len(proxy.Receivers()); got != 2 {
		t.Fatalf("expected 2 receivers, got %d", got)
	}
	if err := Emit(m, store.Bus(), Collision{A: e1, B: e2}); err != nil {
		t.Fatalf("emit: %v", err)
	}
	if got := numField(t, m, c1.Object, "collisions"); got != 1 {
		t.Fatalf("expected 1 collision on first collider, got %v", got)
	}
	if got := numField(t, m, c2.Object, "collisions"); got != 1 {
		t.Fatalf("expected 1 collision on second collider, got %v", got)
	}
	if m.State().GetField(c1.Object, "last_a") != lua.LValue(c1.Object) {
		t.Fatal("expected event field a to carry the first collider's object")
	}
	if m.State().GetField(c1.Object, "last_b") != lua.LValue(c2.Object) {
		t.Fatal("expected event field b to carry the second collider's object")
	}
}

func TestManager_DestroyPurgesReceivers(t *testing.T) {
	store, m := newTestManager(t)
	RegisterEvent[Collision](m, "Collision")
	proxy := AddBroadcastProxy[Collision](m, store.Bus(), "on_collision")

	e1 := store.Create()
	if _, err := m.AttachScript(e1, "collider", "Collider"); err != nil {
		t.Fatalf("attach collider: %v", err)
	}
	e2 := store.Create()
	c2, err := m.AttachScript(e2, "collider", "Collider")
	if err != nil {
		t.Fatalf("attach collider: %v", err)
	}

	store.Destroy(e1)
	if got := len(proxy.Receivers()); got != 1 {
		t.Fatalf("expected 1 receiver after destroy, got %d", got)
	}
	if err := Emit(m, store.Bus(), Collision{A: e2, B: e2}); err != nil {
		t.Fatalf("emit: %v", err)
	}
	if got := numField(t, m, c2.Object, "collisions"); got != 1 {
		t.Fatalf("expected surviving collider to receive 1 collision, got %v", got)
	}
}

func TestManager_DispatchFailureSurfaces(t *testing.T) {
	store, m := newTestManager(t)
	RegisterEvent[Collision](m, "Collision")
	AddBroadcastProxy[Collision](m, store.Bus(), "on_collision")

	e := store.Create()
	if _, err := m.AttachScript(e, "collider", "BadCollider"); err != nil {
		t.Fatalf("attach: %v", err)
	}
	err := Emit(m, store.Bus(), Collision{A: e, B: e})
	if err == nil {
		t.Fatal("expected handler failure to surface")
	}
	want := errors.New(errors.PhaseDispatch, errors.KindScriptError).Build()
	if !stderrors.Is(err, want) {
		t.Fatalf("expected %v, got %v", want, err)
	}
}

func TestManager_UpdateFailureAbortsPass(t *testing.T) {
	store, m := newTestManager(t)

	bad := store.Create()
	if _, err := m.AttachScript(bad, "exploder", "Exploder"); err != nil {
		t.Fatalf("attach exploder: %v", err)
	}
	good := store.Create()
	c, err := m.AttachScript(good, "ticker", "Ticker")
	if err != nil {
		t.Fatalf("attach ticker: %v", err)
	}

	err = m.Update(0.1)
	if err == nil {
		t.Fatal("expected update to fail")
	}
	want := errors.New(errors.PhaseUpdate, errors.KindScriptError).Build()
	if !stderrors.Is(err, want) {
		t.Fatalf("expected %v, got %v", want, err)
	}
	if got := numField(t, m, c.Object, "frames"); got != 0 {
		t.Fatalf("expected the pass to abort before the ticker, got %v frames", got)
	}
}

func TestManager_ScriptSideSpawn(t *testing.T) {
	store, m := newTestManager(t)
	RegisterEvent[Collision](m, "Collision")
	proxy := AddBroadcastProxy[Collision](m, store.Bus(), "on_collision")

	if err := m.State().DoString(`spawned = require("spawner").spawn(2)`); err != nil {
		t.Fatalf("spawn from script: %v", err)
	}
	if got := store.Len(); got != 2 {
		t.Fatalf("expected 2 live entities, got %d", got)
	}
	if got := len(proxy.Receivers()); got != 2 {
		t.Fatalf("expected both spawned colliders as receivers, got %d", got)
	}

	spawned, ok := m.State().GetGlobal("spawned").(*lua.LTable)
	if !ok {
		t.Fatal("expected spawned to be a table")
	}
	first, ok := spawned.RawGetInt(1).(*lua.LTable)
	if !ok {
		t.Fatal("expected a script object at index 1")
	}
	e, ok := m.Bridge().EntityOf(m.State(), first)
	if !ok || !store.Alive(e) {
		t.Fatalf("expected spawned object to map to a live entity, got %s (ok=%v)", e, ok)
	}
	c, ok := ecs.Get[Component](store, e)
	if !ok || !c.Materialized() {
		t.Fatal("expected spawned entity to carry a materialized component")
	}
}

func TestManager_ScriptSideEmit(t *testing.T) {
	store, m := newTestManager(t)
	RegisterEvent[Collision](m, "Collision")
	AddBroadcastProxy[Collision](m, store.Bus(), "on_collision")

	e1 := store.Create()
	c1, err := m.AttachScript(e1, "collider", "Collider")
	if err != nil {
		t.Fatalf("attach: %v", err)
	}
	e2 := store.Create()
	c2, err := m.AttachScript(e2, "collider", "Collider")
	if err != nil {
		t.Fatalf("attach: %v", err)
	}

	m.State().SetGlobal("obj_a", c1.Object)
	m.State().SetGlobal("obj_b", c2.Object)
	if err := m.State().DoString(`require("spawner").collide(obj_a, obj_b)`); err != nil {
		t.Fatalf("collide from script: %v", err)
	}
	if got := numField(t, m, c1.Object, "collisions"); got != 1 {
		t.Fatalf("expected 1 collision, got %v", got)
	}
	if m.State().GetField(c2.Object, "last_b") != lua.LValue(c2.Object) {
		t.Fatal("expected script-built event to resolve entity fields")
	}
}

func TestManager_ScriptSideAttach(t *testing.T) {
	store, m := newTestManager(t)
	RegisterEvent[Collision](m, "Collision")
	proxy := AddBroadcastProxy[Collision](m, store.Bus(), "on_collision")

	e := store.Create()
	m.State().SetGlobal("eid", newIDValue(m.State(), e))
	if err := m.State().DoString(`adopted = require("spawner").adopt(eid)`); err != nil {
		t.Fatalf("adopt from script: %v", err)
	}

	if m.Bridge().ScriptValue(e) != m.State().GetGlobal("adopted") {
		t.Fatal("expected the adopted object to be registered for the entity")
	}
	if got := len(proxy.Receivers()); got != 1 {
		t.Fatalf("expected adopted entity as receiver, got %d", got)
	}
	c, ok := ecs.Get[Component](store, e)
	if !ok || !c.Materialized() {
		t.Fatal("expected a materialized component on the adopted entity")
	}
}

func TestManager_PrintRedirection(t *testing.T) {
	bus := ecs.NewEventBus()
	store := ecs.NewStore(bus)
	m := NewManager(store)
	m.AddSearchPath("testdata")

	var lines []string
	m.LogTo(func(line string) { lines = append(lines, line) }, func(string) {})
	if err := m.Configure(bus); err != nil {
		t.Fatalf("configure: %v", err)
	}

	e := store.Create()
	if _, err := m.AttachScript(e, "printer", "Printer", "hello"); err != nil {
		t.Fatalf("attach: %v", err)
	}
	if err := m.Update(0.1); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := m.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	want := []string{"hello", "ab", "c"}
	if !reflect.DeepEqual(lines, want) {
		t.Fatalf("expected %v, got %v", want, lines)
	}
}

func TestManager_UpdateBeforeConfigure(t *testing.T) {
	bus := ecs.NewEventBus()
	store := ecs.NewStore(bus)
	m := NewManager(store)

	err := m.Update(0.1)
	want := errors.New(errors.PhaseUpdate, errors.KindNotConfigured).Build()
	if !stderrors.Is(err, want) {
		t.Fatalf("expected %v, got %v", want, err)
	}
}

func TestBridge_ScriptValueUnknownEntityPanics(t *testing.T) {
	_, m := newTestManager(t)

	defer func() {
		if recover() == nil {
			t.Fatal("expected ScriptValue to panic for an unknown entity")
		}
	}()
	m.Bridge().ScriptValue(ecs.Entity{Index: 999, Version: 1})
}
