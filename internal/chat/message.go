package chat

import "time"

// Sender identifies who authored a message.
type Sender string

// Sender values.
const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Status is the delivery lifecycle state of a user message.
type Status string

// Delivery statuses. Transitions are enforced by the Store:
// pending -> sent -> read, pending -> failed, sent -> failed (responder
// failure), and failed -> pending via an explicit retry of the same id.
const (
	StatusPending Status = "pending"
	StatusSent    Status = "sent"
	StatusRead    Status = "read"
	StatusFailed  Status = "failed"
)

// Message is the unit of conversation. It is a sealed tagged union:
// UserMessage carries a delivery status, BotMessage never does, and
// ConfirmPrompt is the ephemeral clear-confirmation marker. Messages are
// immutable values; the Store replaces entries wholesale on status change.
type Message interface {
	ID() string
	Text() string
	At() time.Time
	Sender() Sender

	// sealed restricts implementations to this package.
	sealed()
}

// UserMessage is a visitor-authored message tracked through the delivery
// state machine.
type UserMessage struct {
	MsgID  string
	Body   string
	SentAt time.Time
	Status Status
}

func (m UserMessage) ID() string     { return m.MsgID }
func (m UserMessage) Text() string   { return m.Body }
func (m UserMessage) At() time.Time  { return m.SentAt }
func (m UserMessage) Sender() Sender { return SenderUser }
func (UserMessage) sealed()          {}

// BotMessage is an assistant-authored message. It has no delivery status:
// it is delivered to the UI the instant it is appended.
type BotMessage struct {
	MsgID  string
	Body   string
	SentAt time.Time
}

func (m BotMessage) ID() string     { return m.MsgID }
func (m BotMessage) Text() string   { return m.Body }
func (m BotMessage) At() time.Time  { return m.SentAt }
func (m BotMessage) Sender() Sender { return SenderBot }
func (BotMessage) sealed()          {}

// ConfirmPrompt is the ephemeral "clear this conversation?" prompt. At most
// one exists in a log at any time; it is removed on cancel, confirm, or
// widget close.
type ConfirmPrompt struct {
	MsgID  string
	SentAt time.Time
}

func (m ConfirmPrompt) ID() string    { return m.MsgID }
func (ConfirmPrompt) Text() string    { return "" }
func (m ConfirmPrompt) At() time.Time { return m.SentAt }
func (ConfirmPrompt) Sender() Sender  { return SenderBot }
func (ConfirmPrompt) sealed()         {}

// validTransition reports whether a user message may move from to next.
// Equal states are accepted as an idempotent no-op so that the shared
// deliver path can reset a just-appended message to pending.
func validTransition(from, to Status) bool {
	if from == to {
		return true
	}
	switch from {
	case StatusPending:
		return to == StatusSent || to == StatusFailed
	case StatusSent:
		return to == StatusRead || to == StatusFailed
	case StatusFailed:
		return to == StatusPending
	default:
		return false
	}
}
