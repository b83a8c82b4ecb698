package script

import (
	"reflect"

	lua "github.com/yuin/gopher-lua"

	"github.com/lunarc/script-bridge/ecs"
)

// loadBridgeModule is the loader for the native "bridge" module. The module
// exposes entity lifecycle and event emission to scripts:
//
//	spawn(obj)        create an entity carrying obj, return its id
//	destroy(id)       destroy the entity
//	component(obj)    wrap obj as an attachable component value
//	attach(id, comp)  attach a component value to an entity
//	emit(event)       publish a constructed event on the bound bus
//	events            table of registered event constructors
func loadBridgeModule(l *lua.LState) int {
	mod := l.NewTable()
	l.SetFuncs(mod, map[string]lua.LGFunction{
		"spawn":     bridgeSpawn,
		"destroy":   bridgeDestroy,
		"component": bridgeComponent,
		"attach":    bridgeAttach,
		"emit":      bridgeEmit,
	})
	l.SetField(mod, "events", shared.events)
	l.Push(mod)
	return 1
}

// bridgeSpawn creates a native entity whose script component is already
// materialized around obj. The component-added notification fires before
// spawn returns, so proxies see the new object immediately.
func bridgeSpawn(l *lua.LState) int {
	obj := l.CheckTable(1)
	b := currentBinding(l)
	e := b.store.Create()
	ecs.Attach(b.store, e, FromObject(obj))
	l.Push(newIDValue(l, e))
	return 1
}

func bridgeDestroy(l *lua.LState) int {
	e := checkID(l, 1)
	b := currentBinding(l)
	b.store.Destroy(e)
	return 0
}

// bridgeComponent wraps a script object as a component value for attach.
// This is the script-side route to adding behavior to an entity created
// elsewhere.
func bridgeComponent(l *lua.LState) int {
	obj := l.CheckTable(1)
	ud := l.NewUserData()
	c := FromObject(obj)
	ud.Value = &c
	l.Push(ud)
	return 1
}

func bridgeAttach(l *lua.LState) int {
	e := checkID(l, 1)
	ud := l.CheckUserData(2)
	c, ok := ud.Value.(*Component)
	if !ok {
		l.ArgError(2, "component expected")
	}
	b := currentBinding(l)
	ecs.Attach(b.store, e, *c)
	return 0
}

// bridgeEmit publishes an event built by one of the registered constructors.
// A handler failure during dispatch is re-raised into the calling script.
func bridgeEmit(l *lua.LState) int {
	ud := l.CheckUserData(1)
	b := currentBinding(l)
	m := b.mgr
	et, ok := m.events[reflect.TypeOf(ud.Value)]
	if !ok {
		l.ArgError(1, "unregistered event type")
	}
	m.dispatchErr = nil
	et.publish(b.bus, ud.Value)
	if err := m.dispatchErr; err != nil {
		m.dispatchErr = nil
		l.RaiseError("%s", err.Error())
	}
	return 0
}
