package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in the bridge lifecycle the error occurred
type Phase string

const (
	PhaseConfigure   Phase = "configure"   // runtime binding and stream setup
	PhaseMaterialize Phase = "materialize" // lazy script object construction
	PhaseUpdate      Phase = "update"      // per-frame update pass
	PhaseDispatch    Phase = "dispatch"    // event delivery to script handlers
	PhaseEmit        Phase = "emit"        // script-originated event emission
	PhaseShutdown    Phase = "shutdown"    // manager teardown
)

// Kind categorizes the error
type Kind string

const (
	KindModuleNotFound Kind = "module_not_found"
	KindClassNotFound  Kind = "class_not_found"
	KindFactoryMissing Kind = "factory_missing"
	KindScriptError    Kind = "script_error"
	KindNotConfigured  Kind = "not_configured"
	KindNotFound       Kind = "not_found"
	KindTypeMismatch   Kind = "type_mismatch"
	KindInvalidInput   Kind = "invalid_input"
)

// Error is the structured error type used throughout the bridge
type Error struct {
	Cause  error
	Phase  Phase
	Kind   Kind
	Detail string
	Path   []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the lookup path (module, class, attribute)
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// ModuleNotFound creates an unresolved-module error
func ModuleNotFound(module string, cause error) *Error {
	return &Error{
		Phase:  PhaseMaterialize,
		Kind:   KindModuleNotFound,
		Path:   []string{module},
		Detail: fmt.Sprintf("module %q did not resolve to a table", module),
		Cause:  cause,
	}
}

// ClassNotFound creates an unresolved-class error
func ClassNotFound(module, class string) *Error {
	return &Error{
		Phase:  PhaseMaterialize,
		Kind:   KindClassNotFound,
		Path:   []string{module, class},
		Detail: fmt.Sprintf("module %q has no class %q", module, class),
	}
}

// FactoryMissing creates a missing factory entry point error
func FactoryMissing(module, class, factory string) *Error {
	return &Error{
		Phase:  PhaseMaterialize,
		Kind:   KindFactoryMissing,
		Path:   []string{module, class, factory},
		Detail: fmt.Sprintf("class %s.%s has no callable %q", module, class, factory),
	}
}

// Script wraps a raised script error for the given phase
func Script(phase Phase, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindScriptError,
		Detail: detail,
		Cause:  cause,
	}
}

// NotConfigured creates a not-configured error for unbound native services
func NotConfigured(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotConfigured,
		Detail: fmt.Sprintf("%s not bound; call Configure first", what),
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// TypeMismatch creates a type mismatch error
func TypeMismatch(phase Phase, path []string, want, got string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindTypeMismatch,
		Path:   path,
		Detail: fmt.Sprintf("want %s, got %s", want, got),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}
