package ecs

import "reflect"

// EventBus is a synchronous, type-safe event bus. Systems subscribe to
// concrete event types and publishers deliver to every handler of that type
// in subscription order, on the publishing goroutine.
//
// The bus assumes a single driving thread; it performs no locking.
type EventBus struct {
	typeIDs  map[reflect.Type]int
	handlers [][]any
}

// NewEventBus creates an empty bus.
func NewEventBus() *EventBus {
	return &EventBus{typeIDs: make(map[reflect.Type]int)}
}

// Subscribe registers handler for events of type T. Handlers fire in the
// order they were subscribed.
func Subscribe[T any](bus *EventBus, handler func(T)) {
	id := bus.typeID(reflect.TypeFor[T]())
	bus.handlers[id] = append(bus.handlers[id], handler)
}

// Publish delivers event to every handler subscribed for T, synchronously.
func Publish[T any](bus *EventBus, event T) {
	id, ok := bus.typeIDs[reflect.TypeFor[T]()]
	if !ok {
		return
	}
	for _, h := range bus.handlers[id] {
		h.(func(T))(event)
	}
}

func (bus *EventBus) typeID(t reflect.Type) int {
	if id, ok := bus.typeIDs[t]; ok {
		return id
	}
	id := len(bus.handlers)
	bus.typeIDs[t] = id
	bus.handlers = append(bus.handlers, nil)
	return id
}

// Lifecycle events published by Store.

// EntityCreated is published after a new entity handle is issued.
type EntityCreated struct {
	Entity Entity
}

// EntityDestroyed is published before the entity's components are removed
// and its handle invalidated; the handle is still valid inside handlers.
type EntityDestroyed struct {
	Entity Entity
}

// ComponentAdded is published after a component of type T is attached.
type ComponentAdded[T any] struct {
	Entity    Entity
	Component *T
}
