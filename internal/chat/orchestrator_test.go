package chat

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestOrchestratorAppliesReply(t *testing.T) {
	t.Parallel()

	store := NewStore()
	if err := store.AppendUser(UserMessage{MsgID: "u1", Body: "halo"}); err != nil {
		t.Fatalf("AppendUser: %v", err)
	}
	store.SetStatus("u1", StatusSent)

	orch := NewOrchestrator(discardLogger(), store, stubResponder{reply: "halo juga"}, &seqIDs{}, fixedClock{t: time.Unix(0, 0)}, time.Millisecond)
	orch.Begin(context.Background(), UserMessage{MsgID: "u1", Body: "halo"})

	if got, _ := store.StatusOf("u1"); got != StatusRead {
		t.Fatalf("origin status = %q, want read", got)
	}
	log := store.Snapshot()
	if len(log) != 2 || log[1].Text() != "halo juga" {
		t.Fatalf("log = %v, want origin plus reply", log)
	}
	if store.Composing() {
		t.Fatal("composing must be lowered after Begin returns")
	}
}

func TestOrchestratorResponderFailure(t *testing.T) {
	t.Parallel()

	store := NewStore()
	if err := store.AppendUser(UserMessage{MsgID: "u1", Body: "halo"}); err != nil {
		t.Fatalf("AppendUser: %v", err)
	}
	store.SetStatus("u1", StatusSent)

	orch := NewOrchestrator(discardLogger(), store, stubResponder{err: errors.New("boom")}, &seqIDs{}, fixedClock{t: time.Unix(0, 0)}, time.Millisecond)
	orch.Begin(context.Background(), UserMessage{MsgID: "u1", Body: "halo"})

	// The failure is folded into the originating message so the visitor
	// gets the usual retry affordance.
	if got, _ := store.StatusOf("u1"); got != StatusFailed {
		t.Fatalf("origin status = %q, want failed", got)
	}
	if got := len(store.Snapshot()); got != 1 {
		t.Fatalf("log length = %d, want 1 (no reply appended)", got)
	}
	if store.Composing() {
		t.Fatal("composing must be lowered on responder failure")
	}
}

func TestOrchestratorDropsReplyAfterClear(t *testing.T) {
	t.Parallel()

	store := NewStore()
	if err := store.AppendUser(UserMessage{MsgID: "u1", Body: "halo"}); err != nil {
		t.Fatalf("AppendUser: %v", err)
	}
	store.SetStatus("u1", StatusSent)

	resp := &blockingResponder{release: make(chan struct{}), reply: "late"}
	orch := NewOrchestrator(discardLogger(), store, resp, &seqIDs{}, fixedClock{t: time.Unix(0, 0)}, time.Millisecond)

	done := make(chan struct{})
	go func() {
		orch.Begin(context.Background(), UserMessage{MsgID: "u1", Body: "halo"})
		close(done)
	}()

	waitFor(t, "composing raised", store.Composing)

	// Clear the conversation while the reply is being composed.
	seed := []Message{BotMessage{MsgID: "g1", Body: "greet"}}
	store.Reset(seed)
	close(resp.release)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Begin did not return")
	}

	// The late reply must be dropped entirely.
	log := store.Snapshot()
	if len(log) != 1 || log[0].ID() != "g1" {
		t.Fatalf("log = %v, want just the fresh seed", log)
	}
	if store.Composing() {
		t.Fatal("composing must be lowered after the dropped reply")
	}
}

func TestOrchestratorComposingWindow(t *testing.T) {
	t.Parallel()

	store := NewStore()
	if err := store.AppendUser(UserMessage{MsgID: "u1", Body: "halo"}); err != nil {
		t.Fatalf("AppendUser: %v", err)
	}
	store.SetStatus("u1", StatusSent)

	resp := &blockingResponder{release: make(chan struct{}), reply: "reply"}
	orch := NewOrchestrator(discardLogger(), store, resp, &seqIDs{}, fixedClock{t: time.Unix(0, 0)}, time.Millisecond)

	done := make(chan struct{})
	go func() {
		orch.Begin(context.Background(), UserMessage{MsgID: "u1", Body: "halo"})
		close(done)
	}()

	// Input stays gated for the whole composing window.
	waitFor(t, "composing raised", store.Composing)
	if err := store.AppendUser(UserMessage{MsgID: "u2", Body: "again"}); !errors.Is(err, ErrGated) {
		t.Fatalf("AppendUser while composing = %v, want ErrGated", err)
	}

	close(resp.release)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Begin did not return")
	}

	if store.Composing() {
		t.Fatal("composing must be lowered")
	}
	if err := store.AppendUser(UserMessage{MsgID: "u3", Body: "again"}); err != nil {
		t.Fatalf("AppendUser after composing: %v", err)
	}
}
