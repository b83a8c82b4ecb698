package script

import (
	"fmt"
	"os"
	"reflect"
	"strings"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	scriptbridge "github.com/lunarc/script-bridge"
	"github.com/lunarc/script-bridge/ecs"
	"github.com/lunarc/script-bridge/errors"
)

// Manager drives scripted behaviors for one entity store. It materializes
// script components as they are attached, routes native events to script
// handlers through registered proxies, and runs every scripted entity's
// update hook once per frame.
//
// Managers share the process-wide interpreter; the one that most recently
// called Configure owns the native binding.
type Manager struct {
	store  *ecs.Store
	state  *lua.LState
	bridge *Bridge

	searchPaths []string
	stdout      scriptbridge.LineFunc
	stderr      scriptbridge.LineFunc
	outRedir    *Redirector
	errRedir    *Redirector

	proxies []Proxy
	events  map[reflect.Type]*eventType

	configured  bool
	bridgeErr   error
	dispatchErr error
}

// NewManager returns a manager for store. The shared runtime is initialized
// on first construction; constructing further managers reuses it.
func NewManager(store *ecs.Store) *Manager {
	l := acquireRuntime()
	return &Manager{
		store:  store,
		state:  l,
		bridge: newBridge(),
		stdout: func(line string) { fmt.Fprintln(os.Stdout, "script stdout: "+line) },
		stderr: func(line string) { fmt.Fprintln(os.Stderr, "script stderr: "+line) },
		events: make(map[reflect.Type]*eventType),
	}
}

// State exposes the shared interpreter, primarily for tests and advanced
// embedding.
func (m *Manager) State() *lua.LState { return m.state }

// Bridge returns the entity/object identity bridge.
func (m *Manager) Bridge() *Bridge { return m.bridge }

// AddSearchPath records a directory to prepend to the module search path at
// Configure time. Paths added later are searched earlier.
func (m *Manager) AddSearchPath(path string) {
	m.searchPaths = append(m.searchPaths, path)
}

// AddSearchPaths records several directories in order.
func (m *Manager) AddSearchPaths(paths []string) {
	m.searchPaths = append(m.searchPaths, paths...)
}

// SearchPaths returns the recorded directories in the order they were added.
func (m *Manager) SearchPaths() []string { return m.searchPaths }

// LogTo replaces the stream sinks used when Configure installs the output
// redirectors. Calling it after Configure affects only a later Configure.
func (m *Manager) LogTo(stdout, stderr scriptbridge.LineFunc) {
	if stdout != nil {
		m.stdout = stdout
	}
	if stderr != nil {
		m.stderr = stderr
	}
}

// Configure binds the manager to the event bus and completes runtime setup:
// it subscribes the component and lifecycle notifications, installs the
// output redirectors, prepends the recorded search paths, and hands the
// store/bus pair to the native bindings. It is required before any script
// runs.
func (m *Manager) Configure(bus *ecs.EventBus) error {
	ecs.Subscribe(bus, m.onComponentAdded)
	ecs.Subscribe(bus, m.onEntityDestroyed)

	m.outRedir = NewRedirector(m.stdout)
	m.errRedir = NewRedirector(m.stderr)
	installStreams(m.state, m.outRedir, m.errRedir)
	shared.streamOwner = m

	if err := m.prependSearchPaths(); err != nil {
		return err
	}

	shared.binding = &binding{store: m.store, bus: bus, mgr: m}
	m.configured = true
	Logger().Debug("script manager configured",
		zap.Strings("search_paths", m.searchPaths))
	return nil
}

func (m *Manager) prependSearchPaths() error {
	pkg := m.state.GetGlobal("package")
	tbl, ok := pkg.(*lua.LTable)
	if !ok {
		return errors.NotConfigured(errors.PhaseConfigure, "package library")
	}
	prefix := ""
	for _, dir := range m.searchPaths {
		// Each directory goes to the front, so the last one added wins.
		prefix = dir + string(os.PathSeparator) + "?.lua;" + prefix
	}
	old := lua.LVAsString(m.state.GetField(tbl, "path"))
	m.state.SetField(tbl, "path", lua.LString(prefix+old))
	return nil
}

// onComponentAdded materializes freshly attached script components and
// offers them to every registered proxy. Materialization failures are
// recorded for AttachScript and Err to surface; the component stays
// unmaterialized.
func (m *Manager) onComponentAdded(ev ecs.ComponentAdded[Component]) {
	if err := m.materialize(ev.Entity, ev.Component); err != nil {
		if m.bridgeErr == nil {
			m.bridgeErr = err
		}
		return
	}
	caps := ObjectCapabilities(m.state, ev.Component.Object)
	for _, p := range m.proxies {
		if p.CanReceive(caps) {
			p.AddReceiver(ev.Entity)
		}
	}
}

// onEntityDestroyed purges the entity from every proxy and from the
// identity bridge.
func (m *Manager) onEntityDestroyed(ev ecs.EntityDestroyed) {
	for _, p := range m.proxies {
		p.DeleteReceiver(ev.Entity)
	}
	m.bridge.drop(ev.Entity)
}

// materialize turns an unmaterialized component into a live script object:
// load the module, resolve the class, and invoke its entity factory with
// the entity id and the recorded constructor arguments. A component that
// already carries an object is only registered with the bridge.
func (m *Manager) materialize(e ecs.Entity, c *Component) error {
	if c.Object != nil {
		m.bridge.register(e, c.Object)
		return nil
	}
	l := m.state
	if err := l.CallByParam(lua.P{
		Fn:      l.GetGlobal("require"),
		NRet:    1,
		Protect: true,
	}, lua.LString(c.Module)); err != nil {
		m.reportScriptError(err)
		if isModuleNotFound(err) {
			return errors.ModuleNotFound(c.Module, err)
		}
		return errors.Script(errors.PhaseMaterialize, err, c.Module)
	}
	modv := l.Get(-1)
	l.Pop(1)
	mod, ok := modv.(*lua.LTable)
	if !ok {
		return errors.TypeMismatch(errors.PhaseMaterialize,
			[]string{c.Module}, "table", modv.Type().String())
	}
	clsv := l.GetField(mod, c.Class)
	cls, ok := clsv.(*lua.LTable)
	if !ok {
		return errors.ClassNotFound(c.Module, c.Class)
	}
	factory := l.GetField(cls, "_from_entity")
	if factory == lua.LNil {
		return errors.FactoryMissing(c.Module, c.Class, "_from_entity")
	}
	args := make([]lua.LValue, 0, len(c.Args)+2)
	args = append(args, cls, newIDValue(l, e))
	for _, a := range c.Args {
		args = append(args, goToLua(l, a))
	}
	if err := l.CallByParam(lua.P{
		Fn:      factory,
		NRet:    1,
		Protect: true,
	}, args...); err != nil {
		m.reportScriptError(err)
		return errors.Script(errors.PhaseMaterialize, err, c.Module+"."+c.Class)
	}
	objv := l.Get(-1)
	l.Pop(1)
	obj, ok := objv.(*lua.LTable)
	if !ok {
		return errors.TypeMismatch(errors.PhaseMaterialize,
			[]string{c.Module, c.Class}, "table", objv.Type().String())
	}
	c.Object = obj
	m.bridge.register(e, obj)
	Logger().Debug("script component materialized",
		zap.Stringer("entity", e),
		zap.String("module", c.Module),
		zap.String("class", c.Class))
	return nil
}

// AttachScript attaches an unmaterialized script component to e and surfaces
// any materialization failure from the resulting notification. On failure
// the component remains attached but unmaterialized.
func (m *Manager) AttachScript(e ecs.Entity, module, class string, args ...any) (*Component, error) {
	m.bridgeErr = nil
	c := ecs.Attach(m.store, e, NewComponent(module, class, args...))
	if err := m.bridgeErr; err != nil {
		m.bridgeErr = nil
		return nil, err
	}
	return c, nil
}

// Err returns and clears the last bridge error recorded by a notification
// handler. Callers attaching components directly through the store use it
// to observe materialization failures.
func (m *Manager) Err() error {
	err := m.bridgeErr
	m.bridgeErr = nil
	return err
}

// Update runs one frame: every materialized script object's update hook is
// invoked with dt. The first hook failure is reported to the error stream,
// cleared, and returned, and aborts the remainder of the pass.
func (m *Manager) Update(dt float64) error {
	if !m.configured {
		return errors.NotConfigured(errors.PhaseUpdate, "manager")
	}
	var failed error
	ecs.Each(m.store, func(e ecs.Entity, c *Component) bool {
		if c.Object == nil {
			return true
		}
		fn := m.state.GetField(c.Object, "update")
		if fn == lua.LNil {
			return true
		}
		if err := m.state.CallByParam(lua.P{
			Fn:      fn,
			NRet:    0,
			Protect: true,
		}, c.Object, lua.LNumber(dt)); err != nil {
			m.reportScriptError(err)
			failed = errors.Script(errors.PhaseUpdate, err, e.String())
			return false
		}
		return true
	})
	return failed
}

// Close releases the manager's hold on the shared runtime: the native
// binding and stream redirection are detached (when owned by this manager)
// and a collection cycle reclaims released script objects. The runtime
// itself stays alive for the rest of the process.
func (m *Manager) Close() error {
	if shared.binding != nil && shared.binding.mgr == m {
		shared.binding = nil
	}
	if shared.streamOwner == m {
		m.outRedir.Flush()
		m.errRedir.Flush()
		detachStreams(m.state)
		shared.streamOwner = nil
	}
	m.configured = false
	if err := m.state.DoString("collectgarbage()"); err != nil {
		return errors.Script(errors.PhaseShutdown, err, "collectgarbage")
	}
	return nil
}

// reportScriptError writes a script failure diagnostic, including the stack
// trace when one is available, to the error stream.
func (m *Manager) reportScriptError(err error) {
	var text string
	if apiErr, ok := err.(*lua.ApiError); ok {
		text = apiErr.Object.String()
		if apiErr.StackTrace != "" {
			text += "\n" + apiErr.StackTrace
		}
	} else {
		text = err.Error()
	}
	if m.errRedir != nil {
		m.errRedir.Write(text + "\n")
		return
	}
	for _, line := range strings.Split(text, "\n") {
		m.stderr(line)
	}
}

// isModuleNotFound reports whether a require failure means the module could
// not be resolved, as opposed to a module that errored while loading.
func isModuleNotFound(err error) bool {
	apiErr, ok := err.(*lua.ApiError)
	if !ok {
		return false
	}
	msg := apiErr.Object.String()
	return strings.Contains(msg, "module") && strings.Contains(msg, "not found")
}

// installStreams points the runtime's print function and io.stdout/io.stderr
// handles at the given redirectors.
func installStreams(l *lua.LState, out, errR *Redirector) {
	l.SetGlobal("print", l.NewFunction(func(l *lua.LState) int {
		top := l.GetTop()
		parts := make([]string, top)
		for i := 1; i <= top; i++ {
			parts[i-1] = l.ToStringMeta(l.Get(i)).String()
		}
		out.Write(strings.Join(parts, "\t") + "\n")
		return 0
	}))
	io := l.NewTable()
	l.SetField(io, "stdout", newStreamHandle(l, out))
	l.SetField(io, "stderr", newStreamHandle(l, errR))
	l.SetGlobal("io", io)
}

// detachStreams restores a plain print writing to the process stdout and
// removes the stream handles.
func detachStreams(l *lua.LState) {
	l.SetGlobal("print", l.NewFunction(func(l *lua.LState) int {
		top := l.GetTop()
		parts := make([]string, top)
		for i := 1; i <= top; i++ {
			parts[i-1] = l.ToStringMeta(l.Get(i)).String()
		}
		fmt.Fprintln(os.Stdout, strings.Join(parts, "\t"))
		return 0
	}))
	l.SetGlobal("io", lua.LNil)
}

// newStreamHandle builds a file-like table whose write method feeds the
// redirector. Strings and numbers are accepted, matching the usual io
// contract.
func newStreamHandle(l *lua.LState, r *Redirector) *lua.LTable {
	h := l.NewTable()
	l.SetField(h, "write", l.NewFunction(func(l *lua.LState) int {
		top := l.GetTop()
		for i := 2; i <= top; i++ {
			v := l.Get(i)
			switch v.Type() {
			case lua.LTString, lua.LTNumber:
				r.Write(lua.LVAsString(v))
			default:
				l.ArgError(i, "string or number expected")
			}
		}
		l.Push(l.Get(1))
		return 1
	}))
	l.SetField(h, "flush", l.NewFunction(func(l *lua.LState) int {
		r.Flush()
		l.Push(l.Get(1))
		return 1
	}))
	return h
}
