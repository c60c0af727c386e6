package chat

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"
)

// Shared test doubles for the chat engine tests.

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// seqIDs issues deterministic ids: id-001, id-002, ...
type seqIDs struct {
	mu sync.Mutex
	n  int
}

func (g *seqIDs) NewID(time.Time) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("id-%03d", g.n), nil
}

// fixedClock always reports the same instant.
type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

// instantTransport resolves immediately with a fixed outcome.
type instantTransport struct{ err error }

func (t instantTransport) Deliver(context.Context, UserMessage) error { return t.err }

// manualTransport hands each delivery to the test, which resolves it in any
// order it likes.
type manualTransport struct {
	reqs chan deliverReq
}

type deliverReq struct {
	msg    UserMessage
	result chan error
}

func newManualTransport() *manualTransport {
	return &manualTransport{reqs: make(chan deliverReq, 16)}
}

func (t *manualTransport) Deliver(_ context.Context, msg UserMessage) error {
	res := make(chan error)
	t.reqs <- deliverReq{msg: msg, result: res}
	return <-res
}

// next blocks until a delivery for the given id arrives.
func (t *manualTransport) next(tb testing.TB, id string) deliverReq {
	tb.Helper()
	select {
	case req := <-t.reqs:
		if req.msg.MsgID != id {
			tb.Fatalf("next delivery = %q, want %q", req.msg.MsgID, id)
		}
		return req
	case <-time.After(2 * time.Second):
		tb.Fatalf("timed out waiting for delivery of %q", id)
		return deliverReq{}
	}
}

// stubResponder returns a canned reply or error.
type stubResponder struct {
	reply string
	err   error
}

func (r stubResponder) Reply(context.Context, string) (string, error) { return r.reply, r.err }

// blockingResponder holds the reply until released.
type blockingResponder struct {
	release chan struct{}
	reply   string
}

func (r *blockingResponder) Reply(context.Context, string) (string, error) {
	<-r.release
	return r.reply, nil
}

func seedTwo(time.Time) []string {
	return []string{"Selamat Pagi!", "Halo! Saya asisten virtual."}
}

// waitFor polls cond until it holds or the deadline expires.
func waitFor(tb testing.TB, what string, cond func() bool) {
	tb.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	tb.Fatalf("timed out waiting for %s", what)
}

func waitStatus(tb testing.TB, s *Store, id string, want Status) {
	tb.Helper()
	waitFor(tb, fmt.Sprintf("message %s status %s", id, want), func() bool {
		got, ok := s.StatusOf(id)
		return ok && got == want
	})
}

// nextEvent receives one event or fails the test.
func nextEvent(tb testing.TB, sub *Subscription) Event {
	tb.Helper()
	select {
	case ev := <-sub.C:
		return ev
	case <-time.After(2 * time.Second):
		tb.Fatal("timed out waiting for event")
		return Event{}
	}
}
