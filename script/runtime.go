package script

import (
	_ "embed"
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/lunarc/script-bridge/ecs"
)

//go:embed entity.lua
var entityPrelude string

// idTypeName is the metatable key for entity identifier userdata.
const idTypeName = "ecs.entity_id"

// binding is the store/bus pair the native module operates against. Exactly
// one manager holds the binding at a time; Configure installs it and Close
// releases it.
type binding struct {
	store *ecs.Store
	bus   *ecs.EventBus
	mgr   *Manager
}

// runtimeState is the process-wide interpreter. The runtime is created on
// first use and never finalized: repeated init/teardown of an embedded
// interpreter is a well-known source of leaked module state, so the state
// lives until process exit. No locking is performed; all script execution
// is assumed to happen on a single goroutine.
type runtimeState struct {
	initialized bool
	l           *lua.LState
	events      *lua.LTable
	binding     *binding
	streamOwner *Manager
}

var shared runtimeState

// acquireRuntime returns the shared interpreter, creating and configuring it
// on first call. Later calls return the same state unchanged, so constructing
// any number of managers never re-registers the native bindings.
func acquireRuntime() *lua.LState {
	if shared.initialized {
		return shared.l
	}
	l := lua.NewState(lua.Options{SkipOpenLibs: true})
	for _, lib := range []struct {
		name string
		open lua.LGFunction
	}{
		{lua.LoadLibName, lua.OpenPackage}, // must be first
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		if err := l.CallByParam(lua.P{
			Fn:      l.NewFunction(lib.open),
			NRet:    0,
			Protect: true,
		}, lua.LString(lib.name)); err != nil {
			panic(fmt.Sprintf("script: open %q library: %v", lib.name, err))
		}
	}
	registerIDType(l)
	shared.events = l.NewTable()
	l.PreloadModule("bridge", loadBridgeModule)
	l.PreloadModule("entity", loadEntityPrelude)
	shared.l = l
	shared.initialized = true
	Logger().Debug("script runtime initialized")
	return l
}

// currentBinding returns the active store/bus binding, raising a script
// error when no manager is configured.
func currentBinding(l *lua.LState) *binding {
	if shared.binding == nil {
		l.RaiseError("bridge is not bound to an entity store; configure a manager first")
	}
	return shared.binding
}

// loadEntityPrelude compiles and runs the embedded prelude, leaving its
// module table as the loader result.
func loadEntityPrelude(l *lua.LState) int {
	fn, err := l.LoadString(entityPrelude)
	if err != nil {
		l.RaiseError("entity prelude: %v", err)
	}
	l.Push(fn)
	l.Call(0, 1)
	return 1
}

func registerIDType(l *lua.LState) {
	mt := l.NewTypeMetatable(idTypeName)
	l.SetField(mt, "__index", l.NewFunction(idIndex))
	l.SetField(mt, "__tostring", l.NewFunction(idToString))
	l.SetField(mt, "__eq", l.NewFunction(idEq))
}

// newIDValue wraps an entity identifier in userdata carrying the id
// metatable.
func newIDValue(l *lua.LState, e ecs.Entity) *lua.LUserData {
	ud := l.NewUserData()
	ud.Value = e
	l.SetMetatable(ud, l.GetTypeMetatable(idTypeName))
	return ud
}

// checkID extracts the entity identifier from the userdata at the given
// stack position, raising an argument error on any other value.
func checkID(l *lua.LState, n int) ecs.Entity {
	ud := l.CheckUserData(n)
	e, ok := ud.Value.(ecs.Entity)
	if !ok {
		l.ArgError(n, "entity id expected")
	}
	return e
}

func idIndex(l *lua.LState) int {
	e := checkID(l, 1)
	switch l.CheckString(2) {
	case "id":
		// Lua numbers hold 53 bits: the packed id is exact only while
		// version stays below 2^21. index and version are always exact.
		l.Push(lua.LNumber(e.ID()))
	case "index":
		l.Push(lua.LNumber(e.Index))
	case "version":
		l.Push(lua.LNumber(e.Version))
	default:
		l.Push(lua.LNil)
	}
	return 1
}

func idToString(l *lua.LState) int {
	e := checkID(l, 1)
	l.Push(lua.LString(fmt.Sprintf("<Entity::Id %d.%d>", e.Index, e.Version)))
	return 1
}

func idEq(l *lua.LState) int {
	a := checkID(l, 1)
	b := checkID(l, 2)
	l.Push(lua.LBool(a == b))
	return 1
}
