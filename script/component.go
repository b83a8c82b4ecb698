package script

import (
	lua "github.com/yuin/gopher-lua"
)

// Component attaches a scripted behavior to an entity. It exists in one of
// two states: unmaterialized, holding only the module path, class name and
// constructor arguments needed to build the script object later, or
// materialized, holding the live script object itself.
//
// Materialization happens exactly once, inside the manager's component-added
// notification, and is irreversible for the component's lifetime.
type Component struct {
	// Object is the live script-side object, nil until materialized.
	Object *lua.LTable

	// Module, Class and Args describe how to build the object. They are
	// only meaningful while Object is nil.
	Module string
	Class  string
	Args   []any
}

// NewComponent returns an unmaterialized component that the manager will
// materialize by loading module, resolving class and invoking its entity
// factory with args.
func NewComponent(module, class string, args ...any) Component {
	return Component{Module: module, Class: class, Args: args}
}

// FromObject returns a component already materialized around an object that
// was constructed script-side.
func FromObject(obj *lua.LTable) Component {
	return Component{Object: obj}
}

// Materialized reports whether the component holds a live script object.
func (c *Component) Materialized() bool {
	return c.Object != nil
}
