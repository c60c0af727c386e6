package chat

import "context"

// Responder produces the assistant reply text for a user message. The
// reference implementation is a pure keyword matcher that always succeeds;
// the engine nevertheless tolerates failure by folding it into the
// originating message's failed status, so a network-backed responder can be
// substituted without changing the engine.
type Responder interface {
	Reply(ctx context.Context, text string) (string, error)
}
