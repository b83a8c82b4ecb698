package ecs

import (
	"fmt"
	"reflect"
)

// Store owns entity handles and per-type component pools. Entities are
// recycled through a free list; a destroyed slot's version is bumped so
// stale handles never alias a new entity.
//
// Component access is generic: Attach, Get, Remove and Each are free
// functions so pools stay strongly typed without per-type registration.
type Store struct {
	bus      *EventBus
	versions []uint32
	alive    []bool
	free     []uint32
	pools    map[reflect.Type]componentPool
	count    int
}

type componentPool interface {
	removeEntity(e Entity)
}

// NewStore creates an empty store publishing lifecycle events on bus.
func NewStore(bus *EventBus) *Store {
	return &Store{
		bus:   bus,
		pools: make(map[reflect.Type]componentPool),
	}
}

// Bus returns the event bus the store publishes lifecycle events on.
func (s *Store) Bus() *EventBus {
	return s.bus
}

// Create issues a new entity handle, recycling destroyed slots first.
func (s *Store) Create() Entity {
	var idx uint32
	if n := len(s.free); n > 0 {
		idx = s.free[n-1]
		s.free = s.free[:n-1]
	} else {
		idx = uint32(len(s.versions))
		s.versions = append(s.versions, 1)
		s.alive = append(s.alive, false)
	}
	s.alive[idx] = true
	s.count++
	e := Entity{Index: idx, Version: s.versions[idx]}
	Publish(s.bus, EntityCreated{Entity: e})
	return e
}

// Destroy invalidates the handle, publishes EntityDestroyed while the
// handle is still live, then strips the entity's components. Destroying a
// dead or stale handle is a no-op.
func (s *Store) Destroy(e Entity) {
	if !s.Alive(e) {
		return
	}
	Publish(s.bus, EntityDestroyed{Entity: e})
	for _, p := range s.pools {
		p.removeEntity(e)
	}
	s.alive[e.Index] = false
	s.versions[e.Index]++
	s.free = append(s.free, e.Index)
	s.count--
}

// Alive reports whether the handle refers to a live entity.
func (s *Store) Alive(e Entity) bool {
	return int(e.Index) < len(s.versions) &&
		s.alive[e.Index] &&
		s.versions[e.Index] == e.Version
}

// Len returns the number of live entities.
func (s *Store) Len() int {
	return s.count
}

// pool is a sparse-set component pool. Values are boxed so component
// pointers stay valid across growth, including growth triggered from
// inside iteration callbacks.
type pool[T any] struct {
	dense  []*T
	owners []Entity
	slots  map[uint32]int
}

func (p *pool[T]) removeEntity(e Entity) {
	i, ok := p.slots[e.Index]
	if !ok || p.owners[i] != e {
		return
	}
	last := len(p.dense) - 1
	p.dense[i] = p.dense[last]
	p.owners[i] = p.owners[last]
	p.slots[p.owners[i].Index] = i
	p.dense = p.dense[:last]
	p.owners = p.owners[:last]
	delete(p.slots, e.Index)
}

func poolFor[T any](s *Store) *pool[T] {
	t := reflect.TypeFor[T]()
	if p, ok := s.pools[t]; ok {
		return p.(*pool[T])
	}
	p := &pool[T]{slots: make(map[uint32]int)}
	s.pools[t] = p
	return p
}

// Attach adds a component of type T to the entity and publishes
// ComponentAdded[T]. At most one component per type per entity; attaching
// twice replaces the value in place without a second notification.
// Attaching to a dead handle panics: it is a caller bug, not a runtime
// condition.
func Attach[T any](s *Store, e Entity, v T) *T {
	if !s.Alive(e) {
		panic(fmt.Sprintf("ecs: attach to dead entity %s", e))
	}
	p := poolFor[T](s)
	if i, ok := p.slots[e.Index]; ok && p.owners[i] == e {
		*p.dense[i] = v
		return p.dense[i]
	}
	boxed := &v
	p.slots[e.Index] = len(p.dense)
	p.dense = append(p.dense, boxed)
	p.owners = append(p.owners, e)
	Publish(s.bus, ComponentAdded[T]{Entity: e, Component: boxed})
	return boxed
}

// Get retrieves the entity's component of type T.
func Get[T any](s *Store, e Entity) (*T, bool) {
	if !s.Alive(e) {
		return nil, false
	}
	p := poolFor[T](s)
	i, ok := p.slots[e.Index]
	if !ok || p.owners[i] != e {
		return nil, false
	}
	return p.dense[i], true
}

// Remove detaches the entity's component of type T, reporting whether one
// was present.
func Remove[T any](s *Store, e Entity) bool {
	if !s.Alive(e) {
		return false
	}
	p := poolFor[T](s)
	i, ok := p.slots[e.Index]
	if !ok || p.owners[i] != e {
		return false
	}
	p.removeEntity(e)
	return true
}

// Each calls fn for every entity holding a component of type T, in
// attachment order, until fn returns false. The snapshot taken up front
// keeps the pass stable when callbacks attach or destroy entities.
func Each[T any](s *Store, fn func(Entity, *T) bool) {
	p := poolFor[T](s)
	owners := make([]Entity, len(p.owners))
	copy(owners, p.owners)
	for _, e := range owners {
		c, ok := Get[T](s, e)
		if !ok {
			continue
		}
		if !fn(e, c) {
			return
		}
	}
}
