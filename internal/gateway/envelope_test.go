package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"testing"
	"time"

	v1 "github.com/AlvinoWJ/midiland-dev/contracts/widget/v1"
	"github.com/AlvinoWJ/midiland-dev/internal/chat"
)

func TestMessagePayload(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		msg  chat.Message
		want v1.MessagePayload
	}{
		{
			"user message carries status",
			chat.UserMessage{MsgID: "u1", Body: "halo", SentAt: at, Status: chat.StatusSent},
			v1.MessagePayload{MessageID: "u1", Sender: v1.SenderUser, Text: "halo", TS: at, Status: v1.StatusSent},
		},
		{
			"bot message has no status",
			chat.BotMessage{MsgID: "b1", Body: "hai", SentAt: at},
			v1.MessagePayload{MessageID: "b1", Sender: v1.SenderBot, Text: "hai", TS: at},
		},
		{
			"confirm prompt is flagged",
			chat.ConfirmPrompt{MsgID: "c1", SentAt: at},
			v1.MessagePayload{MessageID: "c1", Sender: v1.SenderBot, TS: at, IsConfirmation: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := messagePayload(tt.msg); got != tt.want {
				t.Fatalf("messagePayload = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestEventEnvelope(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)
	at := now.Add(-time.Second)

	tests := []struct {
		name     string
		ev       chat.Event
		wantType string
		wantOK   bool
	}{
		{
			"appended message",
			chat.Event{Kind: chat.EventMessageAppended, Message: chat.UserMessage{MsgID: "u1", Body: "halo", SentAt: at}},
			v1.TypeMessageNew, true,
		},
		{
			"status change",
			chat.Event{Kind: chat.EventStatusChanged, MessageID: "u1", Status: chat.StatusSent},
			v1.TypeMessageStatus, true,
		},
		{
			"typing on",
			chat.Event{Kind: chat.EventTyping, Typing: true},
			v1.TypeTyping, true,
		},
		{
			"confirm pending",
			chat.Event{Kind: chat.EventConfirmPending, Message: chat.ConfirmPrompt{MsgID: "c1", SentAt: at}},
			v1.TypeConfirmPending, true,
		},
		{
			"confirm cleared",
			chat.Event{Kind: chat.EventConfirmCleared},
			v1.TypeConfirmCleared, true,
		},
		{
			"reset becomes a snapshot",
			chat.Event{Kind: chat.EventReset, Log: []chat.Message{chat.BotMessage{MsgID: "g1", Body: "greet", SentAt: at}}},
			v1.TypeWidgetState, true,
		},
		{
			"unknown kind has no wire form",
			chat.Event{Kind: chat.EventKind("mystery")},
			"", false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env, ok := eventEnvelope(tt.ev, now)
			if ok != tt.wantOK {
				t.Fatalf("eventEnvelope ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if env.Type != tt.wantType {
				t.Fatalf("type = %q, want %q", env.Type, tt.wantType)
			}
			if env.V != v1.Version || env.ID == "" || !env.TS.Equal(now) {
				t.Fatalf("envelope header incomplete: %+v", env)
			}
			if err := env.Validate(); err != nil {
				t.Fatalf("Validate: %v", err)
			}
		})
	}
}

func TestEventEnvelopeStatusPayload(t *testing.T) {
	t.Parallel()

	env, ok := eventEnvelope(chat.Event{Kind: chat.EventStatusChanged, MessageID: "u1", Status: chat.StatusRead}, time.Now().UTC())
	if !ok {
		t.Fatal("eventEnvelope should translate a status change")
	}

	var p v1.MessageStatusPayload
	if err := json.Unmarshal(env.Payload, &p); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if p.MessageID != "u1" || p.Status != v1.StatusRead {
		t.Fatalf("payload = %+v", p)
	}
}

func TestStatePayload(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)
	msgs := []chat.Message{
		chat.BotMessage{MsgID: "g1", Body: "greet", SentAt: at},
		chat.UserMessage{MsgID: "u1", Body: "halo", SentAt: at, Status: chat.StatusRead},
	}

	var p v1.WidgetStatePayload
	if err := json.Unmarshal(statePayload(msgs, true, false), &p); err != nil {
		t.Fatalf("unmarshal state payload: %v", err)
	}

	if len(p.Messages) != 2 {
		t.Fatalf("messages = %d, want 2", len(p.Messages))
	}
	if !p.Typing || p.AwaitingConfirmation {
		t.Fatalf("flags = typing %v awaiting %v", p.Typing, p.AwaitingConfirmation)
	}
	if p.Messages[1].Status != v1.StatusRead {
		t.Fatalf("messages[1].status = %q, want read", p.Messages[1].Status)
	}
}

func TestClassifyReadErr(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want readErrKind
	}{
		{"bad json", errBadJSON, readErrBadJSON},
		{"context canceled", context.Canceled, readErrCtxDone},
		{"deadline", context.DeadlineExceeded, readErrCtxDone},
		{"net closed", net.ErrClosed, readErrConnClosed},
		{"eof", io.EOF, readErrConnClosed},
		{"other", errors.New("weird"), readErrUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := classifyReadErr(tt.err); got != tt.want {
				t.Fatalf("classifyReadErr = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTrimmedOrigins(t *testing.T) {
	t.Parallel()

	got := trimmedOrigins([]string{" https://a.example ", "", "  ", "http://b.example"})
	want := []string{"https://a.example", "http://b.example"}

	if len(got) != len(want) {
		t.Fatalf("trimmedOrigins = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("trimmedOrigins[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
