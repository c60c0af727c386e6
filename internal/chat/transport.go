package chat

import (
	"context"
	"errors"
	"time"
)

// ErrDeliveryFailed is the distinguishable delivery-failure outcome.
// It carries no payload beyond "failed".
var ErrDeliveryFailed = errors.New("chat: delivery failed")

// Transport delivers one user message to the backend. The contract:
// Deliver completes exactly once, after an unspecified but finite delay;
// failure is reported as an ordinary error value, never a panic. The engine
// does not observe or control the latency.
type Transport interface {
	Deliver(ctx context.Context, msg UserMessage) error
}

// DefaultTransportLatency mirrors the reference widget's simulated network
// round trip. Tuning parameter, not a protocol requirement.
const DefaultTransportLatency = 1500 * time.Millisecond

// SimulatedTransport is the reference Transport: it waits a fixed latency
// and fails when the static failure flag is set or the connectivity probe
// reports offline.
type SimulatedTransport struct {
	// Latency before the outcome resolves. Zero means DefaultTransportLatency.
	Latency time.Duration

	// SimulateFailure forces every delivery to fail.
	SimulateFailure bool

	// Online is an optional connectivity probe. Nil means always online.
	Online func() bool
}

// Deliver resolves after the configured latency.
func (t *SimulatedTransport) Deliver(ctx context.Context, _ UserMessage) error {
	latency := t.Latency
	if latency <= 0 {
		latency = DefaultTransportLatency
	}

	timer := time.NewTimer(latency)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
	}

	if t.SimulateFailure {
		return ErrDeliveryFailed
	}
	if t.Online != nil && !t.Online() {
		return ErrDeliveryFailed
	}
	return nil
}
