package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/oklog/ulid/v2"

	v1 "github.com/AlvinoWJ/midiland-dev/contracts/widget/v1"
	"github.com/AlvinoWJ/midiland-dev/internal/chat"
)

func newEnvelope(typ string, payload json.RawMessage, ts time.Time) v1.Envelope {
	return v1.Envelope{
		V:       v1.Version,
		Type:    typ,
		ID:      ulid.Make().String(),
		TS:      ts,
		Payload: payload,
	}
}

func readEnvelope(ctx context.Context, conn *websocket.Conn) (v1.Envelope, error) {
	mt, data, err := conn.Read(ctx)
	if err != nil {
		return v1.Envelope{}, err
	}
	if mt != websocket.MessageText && mt != websocket.MessageBinary {
		return v1.Envelope{}, fmt.Errorf("unsupported message type: %v", mt)
	}
	var env v1.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return v1.Envelope{}, errBadJSON
	}
	return env, nil
}

func writeEnvelope(parent context.Context, conn *websocket.Conn, env v1.Envelope, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	b, err := json.Marshal(env)
	if err != nil {
		return err
	}
	return conn.Write(ctx, websocket.MessageText, b)
}

// ---- read error classification ----

var errBadJSON = errors.New("invalid JSON")

type readErrKind uint8

const (
	readErrUnknown readErrKind = iota
	readErrClose
	readErrCtxDone
	readErrConnClosed
	readErrBadJSON
)

func classifyReadErr(err error) readErrKind {
	switch {
	case websocket.CloseStatus(err) != -1:
		return readErrClose
	case errors.Is(err, errBadJSON):
		return readErrBadJSON
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		return readErrCtxDone
	case errors.Is(err, net.ErrClosed) || errors.Is(err, io.EOF):
		return readErrConnClosed
	default:
		return readErrUnknown
	}
}

// ---- wire translation ----

func messagePayload(m chat.Message) v1.MessagePayload {
	p := v1.MessagePayload{
		MessageID: m.ID(),
		Text:      m.Text(),
		TS:        m.At(),
	}

	switch msg := m.(type) {
	case chat.UserMessage:
		p.Sender = v1.SenderUser
		p.Status = string(msg.Status)
	case chat.BotMessage:
		p.Sender = v1.SenderBot
	case chat.ConfirmPrompt:
		p.Sender = v1.SenderBot
		p.IsConfirmation = true
	}
	return p
}

func messagePayloads(msgs []chat.Message) []v1.MessagePayload {
	out := make([]v1.MessagePayload, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, messagePayload(m))
	}
	return out
}

func statePayload(msgs []chat.Message, typing, awaiting bool) json.RawMessage {
	b, _ := json.Marshal(v1.WidgetStatePayload{
		Messages:             messagePayloads(msgs),
		Typing:               typing,
		AwaitingConfirmation: awaiting,
	})
	return b
}

// eventEnvelope translates a store event into its wire form. The second
// return value is false for events with no wire representation.
func eventEnvelope(ev chat.Event, now time.Time) (v1.Envelope, bool) {
	switch ev.Kind {
	case chat.EventMessageAppended:
		b, _ := json.Marshal(v1.MessageNewPayload{Message: messagePayload(ev.Message)})
		return newEnvelope(v1.TypeMessageNew, b, now), true

	case chat.EventStatusChanged:
		b, _ := json.Marshal(v1.MessageStatusPayload{
			MessageID: ev.MessageID,
			Status:    string(ev.Status),
		})
		return newEnvelope(v1.TypeMessageStatus, b, now), true

	case chat.EventTyping:
		b, _ := json.Marshal(v1.TypingPayload{Active: ev.Typing})
		return newEnvelope(v1.TypeTyping, b, now), true

	case chat.EventConfirmPending:
		b, _ := json.Marshal(v1.ConfirmPendingPayload{MessageID: ev.Message.ID()})
		return newEnvelope(v1.TypeConfirmPending, b, now), true

	case chat.EventConfirmCleared:
		b, _ := json.Marshal(v1.ConfirmClearedPayload{})
		return newEnvelope(v1.TypeConfirmCleared, b, now), true

	case chat.EventReset:
		// A confirmed clear is easiest for clients to apply as a snapshot.
		return newEnvelope(v1.TypeWidgetState, statePayload(ev.Log, false, false), now), true

	default:
		return v1.Envelope{}, false
	}
}

// observeEvent feeds the delivery metrics from the event stream, so counters
// agree exactly with what subscribers were told.
func observeEvent(ev chat.Event) {
	switch ev.Kind {
	case chat.EventMessageAppended:
		switch ev.Message.(type) {
		case chat.UserMessage:
			metricMessagesSent.Inc()
		case chat.BotMessage:
			metricBotReplies.Inc()
		}
	case chat.EventStatusChanged:
		if ev.Status != chat.StatusPending {
			metricDeliveries.WithLabelValues(string(ev.Status)).Inc()
		}
	case chat.EventReset:
		metricConversationClears.Inc()
	}
}

func trimmedOrigins(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, o := range raw {
		if s := strings.TrimSpace(o); s != "" {
			out = append(out, s)
		}
	}
	return out
}
