// Package ecs provides the native entity store and typed event bus the
// script bridge attaches to.
package ecs

import "fmt"

// Entity is an opaque handle to a native entity: an index into the store
// plus a version used to detect stale handles. Equality is structural.
// The zero value is never issued by a store and acts as the nil handle.
type Entity struct {
	Index   uint32 // slot in the store
	Version uint32 // bumped on every destroy of the slot
}

// Nil is the invalid entity handle.
var Nil = Entity{}

// ID packs the handle into a single 64-bit identifier, version in the
// high bits.
func (e Entity) ID() uint64 {
	return uint64(e.Index) | uint64(e.Version)<<32
}

// IsNil reports whether the handle is the invalid handle.
func (e Entity) IsNil() bool {
	return e == Nil
}

func (e Entity) String() string {
	return fmt.Sprintf("%d.%d", e.Index, e.Version)
}
