// Package script bridges a native entity store to scripted behaviors
// running in an embedded interpreter.
//
// # Manager
//
// Manager is the entry point. It watches the store for script components,
// materializes them into live script objects, routes native events to
// script handlers through proxies, and drives per-frame updates:
//
//	store := ecs.NewStore()
//	mgr := script.NewManager(store)
//	mgr.AddSearchPath("scripts")
//	if err := mgr.Configure(store.Bus()); err != nil { ... }
//	script.RegisterEvent[Collision](mgr, "Collision")
//	script.AddBroadcastProxy[Collision](mgr, store.Bus(), "on_collision")
//	for running {
//		if err := mgr.Update(dt); err != nil { ... }
//	}
//
// # Shared Runtime
//
// All managers share one interpreter that is created on first use and never
// finalized; see the package root documentation for the lifecycle rules.
// Native bindings are registered exactly once regardless of how many
// managers exist.
//
// # Script Components
//
// A Component is either a recipe (module, class, constructor arguments)
// that the manager materializes when the component is attached, or a live
// object created script-side. Both end up registered with the Bridge, which
// keeps the entity/object identity mapping.
//
// # Event Proxies
//
// Proxies route native events to script handlers by capability: an object
// receives a proxy's events when it defines the proxy's handler method.
// BroadcastProxy delivers to every receiver; custom routing implements
// Deliverer directly.
package script
