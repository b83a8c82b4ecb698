// Package ecs provides the native side of the simulation: a versioned
// entity store with per-type component pools and a synchronous typed
// event bus.
//
// # Entities
//
// An Entity is a handle, not an object: an index into the store plus a
// version that invalidates stale handles when the index is recycled.
// Handles compare with ==; Alive reports whether a handle is current.
//
// # Components
//
// Components are plain Go values attached per entity through the generic
// helpers:
//
//	pos := ecs.Attach(store, e, Position{X: 1})
//	pos, ok := ecs.Get[Position](store, e)
//	ecs.Each(store, func(e ecs.Entity, p *Position) bool { ... })
//
// Component pointers stay valid for the lifetime of the attachment, even
// as other entities attach and detach.
//
// # Events
//
// The bus delivers events synchronously, in subscription order, on the
// publishing goroutine. The store publishes EntityCreated, EntityDestroyed
// and ComponentAdded lifecycle events on its bus; EntityDestroyed fires
// while the entity's components are still readable.
//
// The package assumes a single driving goroutine and performs no locking.
package ecs
