package chat

import "sync"

// Store owns the ordered conversation log and is the only shared mutable
// resource in the engine. All mutation primitives are atomic and id-keyed:
// a completion that arrives for a message the log no longer contains is a
// safe no-op, never an error and never a resurrection.
//
// Concurrency guarantees:
//   - Every mutation runs under one lock; observers can never see a half
//     applied transition (in particular, the bot-reply append and the
//     "mark originating message read" flip are a single update).
//   - Event publication preserves mutation order and never blocks
//     (drops under backpressure, like the gateway's broadcast fanout).
type Store struct {
	mu        sync.Mutex
	msgs      []Message
	composing int
	subs      map[*Subscription]struct{}
}

// NewStore constructs an empty Store.
func NewStore() *Store {
	return &Store{
		subs: make(map[*Subscription]struct{}),
	}
}

// Subscribe registers an event receiver with a bounded queue.
func (s *Store) Subscribe(queueSize int) *Subscription {
	if queueSize <= 0 {
		queueSize = 64
	}
	sub := &Subscription{
		C:     make(chan Event, queueSize),
		store: s,
	}

	s.mu.Lock()
	s.subs[sub] = struct{}{}
	s.mu.Unlock()

	return sub
}

func (s *Store) unsubscribe(sub *Subscription) {
	s.mu.Lock()
	delete(s.subs, sub)
	s.mu.Unlock()
}

// publishLocked fans out an event to all subscribers. Callers must hold mu.
func (s *Store) publishLocked(ev Event) {
	for sub := range s.subs {
		select {
		case sub.C <- ev:
		default:
			// Drop rather than block a mutation on a slow consumer.
		}
	}
}

// Snapshot returns a copy of the current log.
func (s *Store) Snapshot() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.msgs...)
}

// AwaitingConfirmation reports whether a clear-confirmation prompt is
// pending. This derivation IS the input gate: no separate flag exists that
// could diverge from the log.
func (s *Store) AwaitingConfirmation() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.awaitingLocked()
}

func (s *Store) awaitingLocked() bool {
	for _, m := range s.msgs {
		if _, ok := m.(ConfirmPrompt); ok {
			return true
		}
	}
	return false
}

// Composing reports whether the bot is between a successful send and the
// corresponding reply insertion.
func (s *Store) Composing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.composing > 0
}

// AppendUser appends a visitor message. The message always enters the log
// with status pending regardless of the value supplied. Returns ErrGated
// while a clear confirmation is pending or the bot is composing.
func (s *Store) AppendUser(m UserMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.awaitingLocked() || s.composing > 0 {
		return ErrGated
	}

	m.Status = StatusPending
	s.msgs = append(s.msgs, m)
	s.publishLocked(Event{Kind: EventMessageAppended, Message: m})
	return nil
}

// AppendBot appends an assistant message.
func (s *Store) AppendBot(m BotMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.msgs = append(s.msgs, m)
	s.publishLocked(Event{Kind: EventMessageAppended, Message: m})
}

// AppendConfirm appends the clear-confirmation prompt. At most one prompt
// may exist; a duplicate request returns ErrConfirmPending and leaves the
// log untouched.
func (s *Store) AppendConfirm(m ConfirmPrompt) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.awaitingLocked() {
		return ErrConfirmPending
	}

	s.msgs = append(s.msgs, m)
	s.publishLocked(Event{Kind: EventConfirmPending, Message: m})
	return nil
}

// SetStatus applies a delivery-status transition to the user message with
// the given id. It reports whether the transition was applied. Missing ids
// and illegal transitions are silent no-ops: a late completion for a message
// that was cleared away must not resurrect state.
func (s *Store) SetStatus(id string, to Status) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setStatusLocked(id, to)
}

func (s *Store) setStatusLocked(id string, to Status) bool {
	for i, m := range s.msgs {
		um, ok := m.(UserMessage)
		if !ok || um.MsgID != id {
			continue
		}
		if !validTransition(um.Status, to) {
			return false
		}
		if um.Status == to {
			return true
		}
		um.Status = to
		s.msgs[i] = um
		s.publishLocked(Event{Kind: EventStatusChanged, MessageID: id, Status: to})
		return true
	}
	return false
}

// StatusOf returns the delivery status of the user message with the given
// id, or false when no such user message exists.
func (s *Store) StatusOf(id string) (Status, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range s.msgs {
		if um, ok := m.(UserMessage); ok && um.MsgID == id {
			return um.Status, true
		}
	}
	return "", false
}

// MarkRetrying atomically claims a failed user message for a retry attempt:
// it requires the current status to be failed and flips it back to pending.
// Exactly one of several concurrent retry calls for the same id can win,
// which keeps retry idempotent (same id, never a duplicate delivery).
func (s *Store) MarkRetrying(id string) (UserMessage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, m := range s.msgs {
		um, ok := m.(UserMessage)
		if !ok || um.MsgID != id {
			continue
		}
		if um.Status != StatusFailed {
			return UserMessage{}, false
		}
		um.Status = StatusPending
		s.msgs[i] = um
		s.publishLocked(Event{Kind: EventStatusChanged, MessageID: id, Status: StatusPending})
		return um, true
	}
	return UserMessage{}, false
}

// RemoveConfirmations deletes every pending confirmation prompt and returns
// how many were removed. Used on cancel and on widget close.
func (s *Store) RemoveConfirmations() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.msgs[:0]
	removed := 0
	for _, m := range s.msgs {
		if _, ok := m.(ConfirmPrompt); ok {
			removed++
			continue
		}
		kept = append(kept, m)
	}
	s.msgs = kept

	if removed > 0 {
		s.publishLocked(Event{Kind: EventConfirmCleared})
	}
	return removed
}

// Reset replaces the entire log with the seed messages. Any in-flight
// delivery for a replaced message resolves into a no-op afterwards.
func (s *Store) Reset(seed []Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.msgs = append([]Message(nil), seed...)
	s.publishLocked(Event{Kind: EventReset, Log: append([]Message(nil), s.msgs...)})
}

// ConfirmReset atomically checks that a confirmation prompt is pending and,
// if so, replaces the log with the seed messages. Confirming without a
// pending prompt is a no-op; it reports whether the reset happened.
func (s *Store) ConfirmReset(seed []Message) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.awaitingLocked() {
		return false
	}

	s.msgs = append([]Message(nil), seed...)
	s.publishLocked(Event{Kind: EventReset, Log: append([]Message(nil), s.msgs...)})
	return true
}

// BeginComposing raises the composing indicator. Indicators nest so that
// overlapping in-flight replies cannot flicker the typing state off early.
func (s *Store) BeginComposing() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.composing++
	if s.composing == 1 {
		s.publishLocked(Event{Kind: EventTyping, Typing: true})
	}
}

// EndComposing lowers the composing indicator.
func (s *Store) EndComposing() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.endComposingLocked()
}

func (s *Store) endComposingLocked() {
	if s.composing == 0 {
		return
	}
	s.composing--
	if s.composing == 0 {
		s.publishLocked(Event{Kind: EventTyping, Typing: false})
	}
}

// ApplyReply atomically marks the originating user message read, appends the
// bot reply, and lowers the composing indicator. An observer can never see
// the reply without the read flip or vice versa.
//
// When the originating message no longer exists or is not in status sent
// (the conversation was cleared while the reply was being composed), the
// reply is dropped entirely and only the composing indicator is lowered.
// It reports whether the reply was applied.
func (s *Store) ApplyReply(originID string, reply BotMessage) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.setStatusLocked(originID, StatusRead) {
		s.endComposingLocked()
		return false
	}

	s.msgs = append(s.msgs, reply)
	s.publishLocked(Event{Kind: EventMessageAppended, Message: reply})
	s.endComposingLocked()
	return true
}
