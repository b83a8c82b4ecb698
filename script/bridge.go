package script

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	scriptbridge "github.com/lunarc/script-bridge"
	"github.com/lunarc/script-bridge/ecs"
)

// Bridge maintains the bidirectional mapping between native entities and
// their materialized script objects. Entries are added when a component
// materializes and removed when the entity is destroyed.
type Bridge struct {
	objects map[ecs.Entity]*lua.LTable
}

func newBridge() *Bridge {
	return &Bridge{objects: make(map[ecs.Entity]*lua.LTable)}
}

func (b *Bridge) register(e ecs.Entity, obj *lua.LTable) {
	b.objects[e] = obj
}

func (b *Bridge) drop(e ecs.Entity) {
	delete(b.objects, e)
}

// ScriptValue returns the script object materialized for e. Asking for an
// entity with no materialized script component is a programming error and
// panics.
func (b *Bridge) ScriptValue(e ecs.Entity) *lua.LTable {
	obj, ok := b.objects[e]
	if !ok {
		panic(fmt.Sprintf("script: entity %s has no materialized script component", e))
	}
	return obj
}

// EntityOf recovers the native entity behind a script value. It accepts
// either an id userdata or a script object carrying one, and reports false
// for anything else.
func (b *Bridge) EntityOf(l *lua.LState, v lua.LValue) (ecs.Entity, bool) {
	return entityOf(l, v)
}

func entityOf(l *lua.LState, v lua.LValue) (ecs.Entity, bool) {
	switch sv := v.(type) {
	case *lua.LUserData:
		e, ok := sv.Value.(ecs.Entity)
		return e, ok
	case *lua.LTable:
		// _entity_id must hold the id userdata directly; nested tables
		// are not followed.
		ud, ok := l.GetField(sv, "_entity_id").(*lua.LUserData)
		if !ok {
			return ecs.Nil, false
		}
		e, ok := ud.Value.(ecs.Entity)
		return e, ok
	default:
		return ecs.Nil, false
	}
}

// tableCaps answers capability queries against a script object, following
// the object's metatable chain so handlers declared on classes are visible.
type tableCaps struct {
	l   *lua.LState
	obj *lua.LTable
}

func (c tableCaps) Has(name string) bool {
	return c.l.GetField(c.obj, name) != lua.LNil
}

// ObjectCapabilities wraps a script object in a capability predicate.
func ObjectCapabilities(l *lua.LState, obj *lua.LTable) scriptbridge.Capabilities {
	return tableCaps{l: l, obj: obj}
}
