// Package chat implements the message delivery and conversation-lifecycle
// engine behind the MidiLand support widget.
//
// The package is organized around a single shared mutable resource, the Store,
// which owns the ordered message log. Every other component (delivery engine,
// session lifecycle controller, typing orchestrator) mutates conversation
// state exclusively through id-keyed Store primitives and observes it through
// published state-transition events. Collaborators with real latency
// (Transport, Responder) are injected interfaces so the engine is
// deterministic and testable without I/O.
package chat
