// Package v1 defines the MidiLand Widget Protocol v1 contract.
//
// This package is intentionally stable and dependency-light.
// It is shared between the server and embedding frontends to keep the wire
// protocol authoritative.
package v1

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Version is the protocol version identifier embedded into every envelope.
const Version = "v1"

// Type constants (wire-stable).
const (
	// TypeHello starts a session handshake (client -> server).
	TypeHello = "hello"
	// TypeHelloAck acknowledges the session handshake (server -> client).
	TypeHelloAck = "hello_ack"

	// TypeWidgetOpen opens (or re-opens) the chat widget (client -> server).
	TypeWidgetOpen = "widget_open"
	// TypeWidgetClose closes the chat widget (client -> server).
	// Closing implicitly cancels a pending clear confirmation.
	TypeWidgetClose = "widget_close"

	// TypeMessageSend requests sending a new user message (client -> server).
	TypeMessageSend = "message_send"
	// TypeMessageRetry re-attempts delivery of a failed message (client -> server).
	TypeMessageRetry = "message_retry"

	// TypeClearPrompt asks for the in-conversation clear confirmation (client -> server).
	TypeClearPrompt = "clear_prompt"
	// TypeClearConfirm confirms clearing the conversation (client -> server).
	TypeClearConfirm = "clear_confirm"
	// TypeClearCancel cancels a pending clear confirmation (client -> server).
	TypeClearCancel = "clear_cancel"

	// TypeWidgetState carries a full conversation snapshot (server -> client).
	TypeWidgetState = "widget_state"
	// TypeMessageNew announces an appended message (server -> client).
	TypeMessageNew = "message_new"
	// TypeMessageStatus announces a delivery-status change (server -> client).
	TypeMessageStatus = "message_status"
	// TypeTyping announces the bot composing indicator (server -> client).
	TypeTyping = "typing"
	// TypeConfirmPending announces that a clear confirmation is pending (server -> client).
	TypeConfirmPending = "confirm_pending"
	// TypeConfirmCleared announces that a pending confirmation was removed (server -> client).
	TypeConfirmCleared = "confirm_cleared"

	// TypeError is a generic error envelope (server -> client).
	TypeError = "error"
)

// Sender values (wire-stable).
const (
	SenderUser = "user"
	SenderBot  = "bot"
)

// Delivery status values (wire-stable). Only user messages carry a status.
const (
	StatusPending = "pending"
	StatusSent    = "sent"
	StatusRead    = "read"
	StatusFailed  = "failed"
)

// Envelope is the canonical wire wrapper.
type Envelope struct {
	V       string          `json:"v"`
	Type    string          `json:"type"`
	ID      string          `json:"id,omitempty"`
	TS      time.Time       `json:"ts,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Validate performs strict structural validation for an Envelope.
func (e Envelope) Validate() error {
	if strings.TrimSpace(e.V) == "" {
		return errors.New("missing field: v")
	}
	if e.V != Version {
		return fmt.Errorf("unsupported protocol version: %q", e.V)
	}
	if strings.TrimSpace(e.Type) == "" {
		return errors.New("missing field: type")
	}

	switch e.Type {
	case TypeHello,
		TypeHelloAck,
		TypeWidgetOpen,
		TypeWidgetClose,
		TypeMessageSend,
		TypeMessageRetry,
		TypeClearPrompt,
		TypeClearConfirm,
		TypeClearCancel,
		TypeWidgetState,
		TypeMessageNew,
		TypeMessageStatus,
		TypeTyping,
		TypeConfirmPending,
		TypeConfirmCleared,
		TypeError:
		return nil
	default:
		return fmt.Errorf("unknown type: %q", e.Type)
	}
}

// ---- Payloads ----

// HelloPayload is sent by the client to initiate a session.
type HelloPayload struct{}

// HelloAckPayload carries the server-assigned session id.
type HelloAckPayload struct {
	SessionID string `json:"session_id"`
}

// WidgetOpenPayload opens the widget. VisitorName personalizes the greeting
// and may be empty for anonymous visitors.
type WidgetOpenPayload struct {
	VisitorName string `json:"visitor_name,omitempty"`
}

// WidgetClosePayload closes the widget.
type WidgetClosePayload struct{}

// MessageSendPayload requests sending a user message.
type MessageSendPayload struct {
	Text string `json:"text"`
}

// MessageRetryPayload re-attempts delivery of a previously failed message.
type MessageRetryPayload struct {
	MessageID string `json:"message_id"`
}

// MessagePayload is the wire form of a single conversation message.
// Status is present only for user messages; IsConfirmation marks the
// ephemeral clear-confirmation prompt.
type MessagePayload struct {
	MessageID      string    `json:"message_id"`
	Sender         string    `json:"sender"`
	Text           string    `json:"text"`
	TS             time.Time `json:"ts"`
	Status         string    `json:"status,omitempty"`
	IsConfirmation bool      `json:"is_confirmation,omitempty"`
}

// WidgetStatePayload is a full conversation snapshot, sent on open and after
// a confirmed clear.
type WidgetStatePayload struct {
	Messages             []MessagePayload `json:"messages"`
	Typing               bool             `json:"typing"`
	AwaitingConfirmation bool             `json:"awaiting_confirmation"`
}

// MessageNewPayload announces a newly appended message.
type MessageNewPayload struct {
	Message MessagePayload `json:"message"`
}

// MessageStatusPayload announces a delivery-status change for a user message.
type MessageStatusPayload struct {
	MessageID string `json:"message_id"`
	Status    string `json:"status"`
}

// TypingPayload announces the bot composing indicator.
type TypingPayload struct {
	Active bool `json:"active"`
}

// ConfirmPendingPayload announces a pending clear confirmation.
type ConfirmPendingPayload struct {
	MessageID string `json:"message_id"`
}

// ConfirmClearedPayload announces removal of a pending confirmation.
type ConfirmClearedPayload struct{}

// ErrorPayload is a generic error response payload.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
