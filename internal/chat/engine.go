package chat

import (
	"context"
	"log/slog"
	"os"
	"strings"
)

// Engine drives user messages through the delivery protocol:
// pending -> sent -> read, or pending -> failed with user-initiated retry.
// Send is fire-and-forget; completion is observed through Store events.
type Engine struct {
	log       *slog.Logger
	store     *Store
	transport Transport
	ids       IDGenerator
	clock     Clock
	orch      *Orchestrator
}

// NewEngine constructs a delivery engine. Nil collaborators fall back to
// production defaults (simulated transport, ULID ids, system clock).
func NewEngine(log *slog.Logger, store *Store, transport Transport, orch *Orchestrator, ids IDGenerator, clock Clock) *Engine {
	if log == nil {
		log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	if transport == nil {
		transport = &SimulatedTransport{}
	}
	if ids == nil {
		ids = ULIDGenerator{}
	}
	if clock == nil {
		clock = SystemClock{}
	}

	return &Engine{
		log:       log,
		store:     store,
		transport: transport,
		ids:       ids,
		clock:     clock,
		orch:      orch,
	}
}

// Send appends a pending user message and starts its delivery. It returns
// the allocated message id. The text must be non-empty after trimming and
// the conversation must not be gated; violations refuse the send with no
// state change.
//
// The append happens synchronously, before any network suspension, so the
// visible log order always matches the order the visitor produced the
// messages, not the order acknowledgments arrive.
func (e *Engine) Send(ctx context.Context, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyText
	}

	now := e.clock.Now()
	id, err := e.ids.NewID(now)
	if err != nil {
		return "", err
	}

	msg := UserMessage{
		MsgID:  id,
		Body:   text,
		SentAt: now,
		Status: StatusPending,
	}
	if err := e.store.AppendUser(msg); err != nil {
		return "", err
	}

	e.log.Info("widget.send", "message_id", id, "chars", len([]rune(text)))

	// Closing the widget or clearing the conversation must not abort an
	// in-flight delivery; its eventual resolution becomes a no-op instead.
	go e.deliver(context.WithoutCancel(ctx), msg)

	return id, nil
}

// Retry re-attempts delivery of a failed message. It is a no-op unless the
// message exists and its current status is failed, which prevents racing a
// concurrent in-flight delivery. The same id re-enters the same deliver
// path; no duplicate log entry is ever created.
func (e *Engine) Retry(ctx context.Context, id string) bool {
	msg, ok := e.store.MarkRetrying(id)
	if !ok {
		return false
	}

	e.log.Info("widget.retry", "message_id", id)

	go e.deliver(context.WithoutCancel(ctx), msg)
	return true
}

// deliver is shared by the initial send and retry. The message is already
// pending when it enters; the reset below is a defensive no-op that also
// catches a log reset that happened before the goroutine was scheduled.
func (e *Engine) deliver(ctx context.Context, msg UserMessage) {
	if !e.store.SetStatus(msg.MsgID, StatusPending) {
		e.log.Debug("delivery.stale", "message_id", msg.MsgID)
		return
	}

	if err := e.transport.Deliver(ctx, msg); err != nil {
		// Recoverable and per-message: surfaced as failed with a retry
		// affordance, never fatal to the conversation.
		e.log.Info("delivery.fail", "message_id", msg.MsgID, "err", err)
		e.store.SetStatus(msg.MsgID, StatusFailed)
		return
	}

	if !e.store.SetStatus(msg.MsgID, StatusSent) {
		// The log was reset while the send was in flight. The late
		// acknowledgment is rendered irrelevant, not an error.
		e.log.Debug("delivery.stale", "message_id", msg.MsgID)
		return
	}

	e.log.Info("delivery.sent", "message_id", msg.MsgID)

	if e.orch != nil {
		e.orch.Begin(ctx, msg)
	}
}
