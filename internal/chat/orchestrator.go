package chat

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// DefaultTypingDelay models the assistant "typing" interval between a
// successful send and the reply insertion. Tuning parameter.
const DefaultTypingDelay = 2 * time.Second

// Orchestrator models the suspended interval between a successfully sent
// user message and the bot reply. The reply append and the read flip on the
// originating message are applied as one atomic Store update.
type Orchestrator struct {
	log       *slog.Logger
	store     *Store
	responder Responder
	ids       IDGenerator
	clock     Clock
	delay     time.Duration
}

// NewOrchestrator constructs a typing/response orchestrator. A non-positive
// delay falls back to DefaultTypingDelay; pass a tiny delay in tests.
func NewOrchestrator(log *slog.Logger, store *Store, responder Responder, ids IDGenerator, clock Clock, delay time.Duration) *Orchestrator {
	if log == nil {
		log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	if ids == nil {
		ids = ULIDGenerator{}
	}
	if clock == nil {
		clock = SystemClock{}
	}
	if delay <= 0 {
		delay = DefaultTypingDelay
	}

	return &Orchestrator{
		log:       log,
		store:     store,
		responder: responder,
		ids:       ids,
		clock:     clock,
		delay:     delay,
	}
}

// Begin raises the composing indicator, waits the typing window, obtains the
// reply, and applies it atomically together with marking the originating
// message read. It blocks its caller (the delivery goroutine); it is not
// cancellable once started.
func (o *Orchestrator) Begin(ctx context.Context, origin UserMessage) {
	o.store.BeginComposing()

	timer := time.NewTimer(o.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		// Only reachable with a cancellable caller context; the engine
		// always hands us a non-cancellable one.
	case <-timer.C:
	}

	reply, err := o.responder.Reply(ctx, origin.Body)
	if err != nil {
		// Responder failure is folded into the originating message: the
		// visitor sees a failed send with the usual retry affordance.
		o.log.Warn("responder.fail", "message_id", origin.MsgID, "err", err)
		o.store.EndComposing()
		o.store.SetStatus(origin.MsgID, StatusFailed)
		return
	}

	now := o.clock.Now()
	replyID, err := o.ids.NewID(now)
	if err != nil {
		o.log.Error("responder.id.fail", "message_id", origin.MsgID, "err", err)
		o.store.EndComposing()
		o.store.SetStatus(origin.MsgID, StatusFailed)
		return
	}

	bot := BotMessage{MsgID: replyID, Body: reply, SentAt: now}
	if !o.store.ApplyReply(origin.MsgID, bot) {
		// Conversation was cleared while composing; drop the reply.
		o.log.Debug("reply.stale", "message_id", origin.MsgID)
		return
	}

	o.log.Info("reply.sent", "message_id", origin.MsgID, "reply_id", replyID)
}
