package chat

import "errors"

// Core errors. Protocol violations (retry of a non-failed message,
// confirm/cancel with no pending prompt, stale completions) are deliberately
// NOT errors: they resolve as silent no-ops so the rendering layer stays free
// of defensive checks. The sentinels below exist for callers that want to
// distinguish a refused send from an accepted one; the gateway treats them as
// benign and surfaces nothing beyond the disabled-input affordance.
var (
	// ErrEmptyText rejects a send whose text is empty after trimming.
	ErrEmptyText = errors.New("chat: empty message text")

	// ErrGated rejects a send while the conversation is gated, either by a
	// pending clear confirmation or by the bot composing a reply.
	ErrGated = errors.New("chat: conversation input is gated")

	// ErrConfirmPending rejects a second clear prompt while one is pending.
	ErrConfirmPending = errors.New("chat: clear confirmation already pending")
)
