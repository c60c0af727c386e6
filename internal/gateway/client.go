package gateway

import (
	"sync"

	v1 "github.com/AlvinoWJ/midiland-dev/contracts/widget/v1"
)

// client represents one connected widget session on the wire.
//
// Design notes:
//   - Send is intentionally NOT closed, so the event pump can never panic on a
//     concurrent enqueue during teardown.
//   - done signals all per-connection goroutines to stop.
//   - close is idempotent.
type client struct {
	sessionID string
	send      chan v1.Envelope

	done      chan struct{}
	closeOnce sync.Once
}

func newClient(sessionID string, sendQueueSize int) *client {
	if sendQueueSize <= 0 {
		sendQueueSize = 64
	}
	return &client{
		sessionID: sessionID,
		send:      make(chan v1.Envelope, sendQueueSize),
		done:      make(chan struct{}),
	}
}

// Done returns a channel closed when the client is shutting down.
func (c *client) Done() <-chan struct{} { return c.done }

// Close signals the client goroutines to stop (idempotent). It does NOT
// close send; see the type comment.
func (c *client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}
