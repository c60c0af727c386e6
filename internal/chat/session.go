package chat

import (
	"errors"
	"log/slog"
	"os"
	"time"
)

// Seeder produces the greeting texts that seed a fresh conversation, in
// append order. The reference seeder emits a time-of-day greeting plus an
// intro line.
type Seeder func(now time.Time) []string

// Session implements the two-step "clear conversation" protocol. Clearing is
// destructive, so it must never be triggerable by a single accidental
// action: a confirmation prompt is appended first, and its presence in the
// Store is the very gate that suppresses ordinary input until resolved.
type Session struct {
	log   *slog.Logger
	store *Store
	ids   IDGenerator
	clock Clock
	seed  Seeder
}

// NewSession constructs a session lifecycle controller.
func NewSession(log *slog.Logger, store *Store, seed Seeder, ids IDGenerator, clock Clock) *Session {
	if log == nil {
		log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	if ids == nil {
		ids = ULIDGenerator{}
	}
	if clock == nil {
		clock = SystemClock{}
	}
	if seed == nil {
		seed = func(time.Time) []string { return nil }
	}

	return &Session{
		log:   log,
		store: store,
		ids:   ids,
		clock: clock,
		seed:  seed,
	}
}

// SeedGreeting replaces the log with the greeting messages. Used once at
// widget creation; Confirm reuses the same seed for the fresh conversation.
func (s *Session) SeedGreeting() {
	s.store.Reset(s.seedMessages())
}

// PromptClear appends the clear-confirmation prompt. A second prompt while
// one is pending is a no-op.
func (s *Session) PromptClear() error {
	now := s.clock.Now()
	id, err := s.ids.NewID(now)
	if err != nil {
		return err
	}

	if err := s.store.AppendConfirm(ConfirmPrompt{MsgID: id, SentAt: now}); err != nil {
		if errors.Is(err, ErrConfirmPending) {
			return nil
		}
		return err
	}

	s.log.Info("session.clear.prompt", "prompt_id", id)
	return nil
}

// Confirm performs the destructive clear: the log is replaced by a fresh
// greeting. Confirming with no pending prompt is a no-op; it reports
// whether the clear happened.
func (s *Session) Confirm() bool {
	if !s.store.ConfirmReset(s.seedMessages()) {
		return false
	}
	s.log.Info("session.clear.confirm")
	return true
}

// Cancel removes the pending confirmation prompt, leaving the rest of the
// log untouched. No-op when nothing is pending.
func (s *Session) Cancel() bool {
	if s.store.RemoveConfirmations() == 0 {
		return false
	}
	s.log.Info("session.clear.cancel")
	return true
}

// OnWidgetClose implicitly cancels any pending confirmation without
// altering message history.
func (s *Session) OnWidgetClose() {
	if s.store.RemoveConfirmations() > 0 {
		s.log.Info("session.clear.cancel", "reason", "widget_close")
	}
}

func (s *Session) seedMessages() []Message {
	now := s.clock.Now()

	texts := s.seed(now)
	seed := make([]Message, 0, len(texts))
	for _, text := range texts {
		id, err := s.ids.NewID(now)
		if err != nil {
			s.log.Error("session.seed.id.fail", "err", err)
			continue
		}
		seed = append(seed, BotMessage{MsgID: id, Body: text, SentAt: now})
	}
	return seed
}
