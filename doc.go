// Package scriptbridge bridges a native entity-component simulation with
// behavior written in embedded Lua scripts.
//
// Entities live in a native store and events travel on a native typed bus;
// an entity may carry a script component whose update logic and event
// handlers are Lua code. This library is the bridge between the two worlds:
// object-identity mapping, lazy cross-runtime construction, capability-based
// event routing, and one-time lifecycle management of the process-wide
// interpreter.
//
// # Architecture Overview
//
// The library is organized into a small number of packages:
//
//	scriptbridge/        Root package with shared Capabilities and LineFunc types
//	├── ecs/             Native entity store and typed event bus
//	├── script/          The bridge: runtime manager, proxies, identity bridge
//	├── errors/          Structured error types for diagnostics
//	└── cmd/scenerun/    CLI and interactive TUI scene runner
//
// # Quick Start
//
// Attach a scripted behavior to an entity and drive it per frame:
//
//	store := ecs.NewStore(bus)
//	mgr := script.NewManager(store)
//	mgr.AddSearchPath("scripts")
//	script.AddBroadcastProxy[Collision](mgr, bus, "on_collision")
//	if err := mgr.Configure(bus); err != nil {
//	    log.Fatal(err)
//	}
//
//	e := store.Create()
//	if _, err := mgr.AttachScript(e, "player", "Player", 4.0, 5.0); err != nil {
//	    log.Fatal(err)
//	}
//
//	for running {
//	    if err := mgr.Update(dt); err != nil {
//	        log.Fatal(err)
//	    }
//	}
//
// On the Lua side, behavior is a class deriving from the entity prelude:
//
//	local entity = require("entity")
//
//	local Player = entity.class("Player")
//
//	function Player:init(x, y)
//	    self.x, self.y = x, y
//	end
//
//	function Player:update(dt)
//	    self.x = self.x + dt
//	end
//
//	function Player:on_collision(ev)
//	    self.hit = true
//	end
//
//	return { Player = Player }
//
// # Runtime Lifecycle
//
// Exactly one Lua interpreter exists per process, created by the first
// Manager and shared by all subsequent ones. No Manager ever finalizes it:
// closing a manager unbinds its store and bus, detaches the redirected
// output streams and requests a garbage-collection pass, nothing more.
// Safe interpreter finalization is not guaranteed by the host runtime and
// is explicitly unsupported.
//
// # Thread Safety
//
// The bridge assumes a single driving thread. All script invocations
// (materialization, update, event delivery) run synchronously on the caller
// and cannot be interrupted.
package scriptbridge
