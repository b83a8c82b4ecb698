package script

import (
	lua "github.com/yuin/gopher-lua"

	scriptbridge "github.com/lunarc/script-bridge"
	"github.com/lunarc/script-bridge/ecs"
	"github.com/lunarc/script-bridge/errors"
)

// Proxy routes one native event type to interested script objects. A proxy
// accepts a receiver when the object's capabilities include the proxy's
// handler name, and keeps the receiver until the entity is destroyed.
type Proxy interface {
	// HandlerName is the method the proxy invokes on its receivers.
	HandlerName() string
	// CanReceive reports whether an object with the given capabilities
	// should receive this proxy's events.
	CanReceive(caps scriptbridge.Capabilities) bool

	AddReceiver(e ecs.Entity)
	DeleteReceiver(e ecs.Entity)
	Receivers() []ecs.Entity
}

// Deliverer is a proxy that can deliver events of type E.
type Deliverer[E any] interface {
	Proxy
	Deliver(d *Delivery, ev E) error
}

// ProxyBase implements receiver bookkeeping and the default capability test
// for proxies. Embed it and implement Deliver to define routing.
type ProxyBase struct {
	handler   string
	receivers []ecs.Entity
}

func NewProxyBase(handler string) ProxyBase {
	return ProxyBase{handler: handler}
}

func (p *ProxyBase) HandlerName() string { return p.handler }

func (p *ProxyBase) CanReceive(caps scriptbridge.Capabilities) bool {
	return caps.Has(p.handler)
}

func (p *ProxyBase) AddReceiver(e ecs.Entity) {
	p.receivers = append(p.receivers, e)
}

func (p *ProxyBase) DeleteReceiver(e ecs.Entity) {
	for i, r := range p.receivers {
		if r == e {
			p.receivers = append(p.receivers[:i], p.receivers[i+1:]...)
			return
		}
	}
}

// Receivers returns the current receiver set. The slice is a view; callers
// must not retain it across proxy mutations.
func (p *ProxyBase) Receivers() []ecs.Entity { return p.receivers }

// Delivery gives proxies access to the manager's interpreter and identity
// bridge for the duration of one event dispatch.
type Delivery struct {
	m *Manager
}

// Encode renders ev once for delivery to multiple receivers.
func (d *Delivery) Encode(ev any) lua.LValue {
	return d.m.encodeEvent(ev)
}

// Invoke calls the named handler on the script object of e with an
// already-encoded event value. A handler failure is reported to the error
// stream, cleared from the interpreter, and returned.
func (d *Delivery) Invoke(e ecs.Entity, handler string, ev lua.LValue) error {
	obj := d.m.bridge.ScriptValue(e)
	fn := d.m.state.GetField(obj, handler)
	if fn == lua.LNil {
		return errors.NotFound(errors.PhaseDispatch, "handler", handler)
	}
	if err := d.m.state.CallByParam(lua.P{
		Fn:      fn,
		NRet:    0,
		Protect: true,
	}, obj, ev); err != nil {
		d.m.reportScriptError(err)
		return errors.Script(errors.PhaseDispatch, err, handler)
	}
	return nil
}

// BroadcastProxy delivers every event of type E to every receiver, with no
// per-event filtering. It is the common case for scene-wide notifications.
type BroadcastProxy[E any] struct {
	ProxyBase
}

func NewBroadcastProxy[E any](handler string) *BroadcastProxy[E] {
	return &BroadcastProxy[E]{ProxyBase: NewProxyBase(handler)}
}

func (p *BroadcastProxy[E]) Deliver(d *Delivery, ev E) error {
	if len(p.receivers) == 0 {
		return nil
	}
	val := d.Encode(ev)
	for _, e := range p.Receivers() {
		if err := d.Invoke(e, p.HandlerName(), val); err != nil {
			return err
		}
	}
	return nil
}

// AddEventProxy registers a proxy with the manager and subscribes it to the
// event bus for E. New receivers accumulate as matching components
// materialize; delivery failures abort the remaining receivers for that
// event and surface through Emit.
func AddEventProxy[E any](m *Manager, bus *ecs.EventBus, p Deliverer[E]) {
	m.proxies = append(m.proxies, p)
	ecs.Subscribe(bus, func(ev E) {
		if err := p.Deliver(&Delivery{m: m}, ev); err != nil && m.dispatchErr == nil {
			m.dispatchErr = err
		}
	})
}

// AddBroadcastProxy registers a broadcast proxy for E invoking handler.
func AddBroadcastProxy[E any](m *Manager, bus *ecs.EventBus, handler string) *BroadcastProxy[E] {
	p := NewBroadcastProxy[E](handler)
	AddEventProxy[E](m, bus, p)
	return p
}

// Emit publishes ev on the bus and surfaces the first handler failure the
// dispatch produced, if any.
func Emit[E any](m *Manager, bus *ecs.EventBus, ev E) error {
	m.dispatchErr = nil
	ecs.Publish(bus, ev)
	err := m.dispatchErr
	m.dispatchErr = nil
	return err
}
