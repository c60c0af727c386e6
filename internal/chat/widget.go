package chat

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"
)

// Config assembles the collaborators for one widget conversation. Transport,
// IDs and Clock default to production implementations when nil; Responder
// and Seeder have no sensible default and are required.
type Config struct {
	Log       *slog.Logger
	Transport Transport
	Responder Responder
	IDs       IDGenerator
	Clock     Clock
	Seeder    Seeder

	// TypingDelay is the simulated composing window before a reply.
	// Non-positive means DefaultTypingDelay.
	TypingDelay time.Duration

	// EventQueueSize bounds each subscriber queue.
	EventQueueSize int
}

// Widget bundles the store, delivery engine and session lifecycle for a
// single visitor conversation, seeded with the greeting.
type Widget struct {
	store   *Store
	engine  *Engine
	session *Session

	eventQueueSize int
}

// NewWidget wires a conversation from its collaborators and seeds the
// greeting.
func NewWidget(cfg Config) (*Widget, error) {
	if cfg.Responder == nil {
		return nil, errors.New("chat: config requires a Responder")
	}
	if cfg.Seeder == nil {
		return nil, errors.New("chat: config requires a Seeder")
	}

	log := cfg.Log
	if log == nil {
		log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}

	store := NewStore()
	orch := NewOrchestrator(log, store, cfg.Responder, cfg.IDs, cfg.Clock, cfg.TypingDelay)
	engine := NewEngine(log, store, cfg.Transport, orch, cfg.IDs, cfg.Clock)
	session := NewSession(log, store, cfg.Seeder, cfg.IDs, cfg.Clock)

	session.SeedGreeting()

	return &Widget{
		store:          store,
		engine:         engine,
		session:        session,
		eventQueueSize: cfg.EventQueueSize,
	}, nil
}

// Send appends a pending user message and starts delivery.
func (w *Widget) Send(ctx context.Context, text string) (string, error) {
	return w.engine.Send(ctx, text)
}

// Retry re-attempts a failed message; no-op unless its status is failed.
func (w *Widget) Retry(ctx context.Context, id string) bool {
	return w.engine.Retry(ctx, id)
}

// PromptClear appends the clear-confirmation prompt.
func (w *Widget) PromptClear() error { return w.session.PromptClear() }

// ConfirmClear clears the conversation back to a fresh greeting.
func (w *Widget) ConfirmClear() bool { return w.session.Confirm() }

// CancelClear removes the pending confirmation prompt.
func (w *Widget) CancelClear() bool { return w.session.Cancel() }

// Close handles the widget being closed: a pending confirmation is
// implicitly cancelled, history is kept, and in-flight deliveries are left
// to resolve into no-ops.
func (w *Widget) Close() { w.session.OnWidgetClose() }

// Snapshot returns a copy of the conversation log.
func (w *Widget) Snapshot() []Message { return w.store.Snapshot() }

// Composing reports whether the bot is composing a reply.
func (w *Widget) Composing() bool { return w.store.Composing() }

// AwaitingConfirmation reports whether a clear confirmation is pending.
func (w *Widget) AwaitingConfirmation() bool { return w.store.AwaitingConfirmation() }

// Subscribe registers a state-transition event receiver.
func (w *Widget) Subscribe() *Subscription { return w.store.Subscribe(w.eventQueueSize) }
