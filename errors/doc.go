// Package errors provides structured error types for the script bridge.
//
// Errors are categorized by Phase (where in the bridge lifecycle the error
// occurred) and Kind (error category). The Error type includes the lookup
// path (module, class, attribute) and the cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseMaterialize, errors.KindScriptError).
//		Path("player", "Player").
//		Detail("constructor raised").
//		Cause(luaErr).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.ClassNotFound("player", "Player")
//	err := errors.Script(errors.PhaseUpdate, luaErr, "update raised")
//
// All errors implement the standard error interface and support errors.Is/As;
// two *Error values match when Phase and Kind agree.
package errors
