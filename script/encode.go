package script

import (
	"fmt"
	"reflect"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/lunarc/script-bridge/ecs"
)

// eventType describes one registered native event: its script-facing name
// and a publish thunk that recovers the concrete type for the bus.
type eventType struct {
	name    string
	typ     reflect.Type
	publish func(bus *ecs.EventBus, ev any)
}

// RegisterEvent exposes native event type E to scripts under name. Scripts
// construct instances with bridge.events.<name>(field values in declaration
// order) and publish them with bridge.emit.
func RegisterEvent[E any](m *Manager, name string) {
	et := &eventType{
		name: name,
		typ:  reflect.TypeFor[E](),
		publish: func(bus *ecs.EventBus, ev any) {
			ecs.Publish(bus, ev.(E))
		},
	}
	m.events[et.typ] = et
	shared.l.SetField(shared.events, name, makeEventConstructor(shared.l, et))
}

// makeEventConstructor builds the script-side constructor for an event
// type. Positional arguments fill the event's exported fields in order.
func makeEventConstructor(l *lua.LState, et *eventType) *lua.LFunction {
	return l.NewFunction(func(l *lua.LState) int {
		v := reflect.New(et.typ).Elem()
		n := l.GetTop()
		for i := 0; i < v.NumField() && i < n; i++ {
			if err := setEventField(l, v.Field(i), l.Get(i+1)); err != nil {
				l.ArgError(i+1, fmt.Sprintf("%s.%s: %v", et.name, et.typ.Field(i).Name, err))
			}
		}
		ud := l.NewUserData()
		ud.Value = v.Interface()
		l.Push(ud)
		return 1
	})
}

func setEventField(l *lua.LState, field reflect.Value, arg lua.LValue) error {
	if field.Type() == reflect.TypeFor[ecs.Entity]() {
		e, ok := entityOf(l, arg)
		if !ok {
			return fmt.Errorf("entity or entity id expected, got %s", arg.Type())
		}
		field.Set(reflect.ValueOf(e))
		return nil
	}
	switch field.Kind() {
	case reflect.Float32, reflect.Float64:
		n, ok := arg.(lua.LNumber)
		if !ok {
			return fmt.Errorf("number expected, got %s", arg.Type())
		}
		field.SetFloat(float64(n))
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, ok := arg.(lua.LNumber)
		if !ok {
			return fmt.Errorf("number expected, got %s", arg.Type())
		}
		field.SetInt(int64(n))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, ok := arg.(lua.LNumber)
		if !ok {
			return fmt.Errorf("number expected, got %s", arg.Type())
		}
		field.SetUint(uint64(n))
	case reflect.String:
		field.SetString(lua.LVAsString(arg))
	case reflect.Bool:
		field.SetBool(lua.LVAsBool(arg))
	default:
		return fmt.Errorf("unsupported field type %s", field.Type())
	}
	return nil
}

// encodeEvent renders a native event as a table for handler delivery.
// Exported struct fields become snake_case keys; entity-typed fields are
// replaced by the script objects materialized for them.
func (m *Manager) encodeEvent(ev any) lua.LValue {
	rv := reflect.ValueOf(ev)
	if rv.Kind() != reflect.Struct {
		return goToLua(m.state, ev)
	}
	tbl := m.state.NewTable()
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		if !f.IsExported() {
			continue
		}
		var val lua.LValue
		if e, ok := rv.Field(i).Interface().(ecs.Entity); ok {
			val = m.bridge.ScriptValue(e)
		} else {
			val = goToLua(m.state, rv.Field(i).Interface())
		}
		m.state.SetField(tbl, snakeCase(f.Name), val)
	}
	return tbl
}

// goToLua converts a plain Go value to its script representation.
func goToLua(l *lua.LState, v any) lua.LValue {
	switch gv := v.(type) {
	case nil:
		return lua.LNil
	case bool:
		return lua.LBool(gv)
	case int:
		return lua.LNumber(gv)
	case int32:
		return lua.LNumber(gv)
	case int64:
		return lua.LNumber(gv)
	case uint32:
		return lua.LNumber(gv)
	case float32:
		return lua.LNumber(gv)
	case float64:
		return lua.LNumber(gv)
	case string:
		return lua.LString(gv)
	case ecs.Entity:
		return newIDValue(l, gv)
	case lua.LValue:
		return gv
	case []any:
		tbl := l.NewTable()
		for _, el := range gv {
			tbl.Append(goToLua(l, el))
		}
		return tbl
	case map[string]any:
		tbl := l.NewTable()
		for k, el := range gv {
			l.SetField(tbl, k, goToLua(l, el))
		}
		return tbl
	default:
		return lua.LString(fmt.Sprintf("%v", gv))
	}
}

func snakeCase(name string) string {
	var b strings.Builder
	for i, r := range name {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r + ('a' - 'A'))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
