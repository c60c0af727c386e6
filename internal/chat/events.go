package chat

// EventKind discriminates state-transition events published by the Store.
type EventKind string

// Event kinds.
const (
	// EventMessageAppended fires when any message enters the log.
	EventMessageAppended EventKind = "message_appended"
	// EventStatusChanged fires when a user message changes delivery status.
	EventStatusChanged EventKind = "status_changed"
	// EventTyping fires when the composing indicator flips.
	EventTyping EventKind = "typing"
	// EventConfirmPending fires when the clear-confirmation prompt appears.
	EventConfirmPending EventKind = "confirm_pending"
	// EventConfirmCleared fires when pending confirmations are removed.
	EventConfirmCleared EventKind = "confirm_cleared"
	// EventReset fires when the log is replaced wholesale (confirmed clear).
	EventReset EventKind = "reset"
)

// Event is a discrete state transition observed on the Store. Consumers
// receive events in the exact order the mutations were applied.
type Event struct {
	Kind EventKind

	// Message is set for EventMessageAppended and EventConfirmPending.
	Message Message

	// MessageID and Status are set for EventStatusChanged.
	MessageID string
	Status    Status

	// Typing is set for EventTyping.
	Typing bool

	// Log is a snapshot of the fresh log, set for EventReset.
	Log []Message
}

// Subscription is a receiver of Store events.
//
// Design notes (mirrors the widget gateway's fanout contract):
//   - C is never closed by the Store, so publishers stay panic-safe.
//   - Publishing never blocks; events are dropped under backpressure.
//     Consumers that fall behind must resynchronize from a Snapshot.
type Subscription struct {
	C chan Event

	store *Store
}

// Close detaches the subscription from its Store. Idempotent.
func (s *Subscription) Close() {
	if s == nil || s.store == nil {
		return
	}
	s.store.unsubscribe(s)
	s.store = nil
}
