// Package gateway exposes the chat widget operations over WebSocket.
//
// One connection carries exactly one widget session. The gateway enforces
// origin policy, subprotocol selection, rate limits and heartbeats, routes
// validated envelopes to the widget engine, and pumps the engine's
// state-transition events back to the client.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"
	"github.com/oklog/ulid/v2"

	v1 "github.com/AlvinoWJ/midiland-dev/contracts/widget/v1"
	"github.com/AlvinoWJ/midiland-dev/internal/chat"
)

// SubprotocolV1 is the negotiated websocket subprotocol.
const SubprotocolV1 = "midiland.widget.v1"

// WidgetFactory builds a widget conversation for a connecting visitor.
type WidgetFactory func(visitorName string) (*chat.Widget, error)

// Config tunes a Gateway. Zero values fall back to secure defaults:
// origin required, localhost-only allowlist.
type Config struct {
	// OriginRequired rejects requests without an Origin header.
	OriginRequired bool
	// AllowedOrigins is the origin allowlist ("*" honored but discouraged).
	AllowedOrigins []string
	// DevInsecure skips TLS verification checks in websocket.Accept (dev only).
	DevInsecure bool

	WriteTimeout    time.Duration
	ReadIdleTimeout time.Duration
	SendQueueSize   int

	HeartbeatInterval time.Duration
	HeartbeatTimeout  time.Duration

	RateEvents int
	RateWindow time.Duration
}

// Gateway is the WebSocket entrypoint for the chat widget.
type Gateway struct {
	log       *slog.Logger
	cfg       Config
	newWidget WidgetFactory

	// Derived for websocket.Accept origin checks: Accept authorizes
	// same-host origins by default, but cross-origin requires host patterns.
	originPatterns []string
}

// New constructs a gateway with secure defaults.
func New(log *slog.Logger, cfg Config, factory WidgetFactory) *Gateway {
	if log == nil {
		log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}

	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"http://localhost", "http://127.0.0.1"}
	}
	cfg.AllowedOrigins = trimmedOrigins(cfg.AllowedOrigins)

	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = defaultWriteTimeout
	}
	if cfg.ReadIdleTimeout <= 0 {
		cfg.ReadIdleTimeout = defaultReadIdle
	}
	if cfg.SendQueueSize < minSendQueueSize {
		cfg.SendQueueSize = defaultSendQueueSize
	}
	if cfg.HeartbeatInterval <= 0 {
		cfg.HeartbeatInterval = defaultHeartbeatInterval
	}
	if cfg.HeartbeatTimeout <= 0 {
		cfg.HeartbeatTimeout = defaultHeartbeatTimeout
	}
	if cfg.RateEvents <= 0 {
		cfg.RateEvents = defaultRateEvents
	}
	if cfg.RateWindow <= 0 {
		cfg.RateWindow = defaultRateWindow
	}

	return &Gateway{
		log:            log,
		cfg:            cfg,
		newWidget:      factory,
		originPatterns: originPatterns(cfg.AllowedOrigins),
	}
}

// ServeHTTP adapter so the gateway can be mounted as an http.Handler.
func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	g.HandleWS(w, r)
}

// HandleWS upgrades an HTTP request to a WebSocket session and runs the
// widget loop.
func (g *Gateway) HandleWS(w http.ResponseWriter, r *http.Request) {
	if err := g.enforceOrigin(r); err != nil {
		g.log.Info("ws.reject.origin", "err", err, "origin", r.Header.Get("Origin"), "remote", r.RemoteAddr)
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		Subprotocols:       []string{SubprotocolV1},
		OriginPatterns:     g.originPatterns,
		InsecureSkipVerify: g.cfg.DevInsecure,
	})
	if err != nil {
		g.log.Error("ws.accept.fail", "err", err)
		return
	}
	defer func() { _ = conn.Close(websocket.StatusNormalClosure, "bye") }()

	if sp := conn.Subprotocol(); sp != SubprotocolV1 {
		g.log.Info("ws.reject.subprotocol", "got", sp, "want", SubprotocolV1)
		_ = conn.Close(websocket.StatusProtocolError, "subprotocol required")
		return
	}

	conn.SetReadLimit(maxFrameBytes)

	sessionID := ulid.Make().String()
	cl := newClient(sessionID, g.cfg.SendQueueSize)

	metricActiveSessions.Inc()
	defer metricActiveSessions.Dec()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// wdg is written by the read loop on widget_open and read by shutdown,
	// which the writer and heartbeat goroutines invoke concurrently.
	var (
		closeOnce sync.Once
		wdg       atomic.Pointer[chat.Widget]
	)

	// shutdown is idempotent. It does NOT close cl.send; membership in the
	// event pump is torn down via cl.Done and ctx.
	shutdown := func(code websocket.StatusCode, reason string) {
		closeOnce.Do(func() {
			if w := wdg.Load(); w != nil {
				w.Close()
			}
			cl.Close()
			_ = conn.Close(code, reason)
			cancel()
		})
	}

	rl := newRateLimiter(g.cfg.RateEvents, g.cfg.RateWindow)

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)

		for {
			select {
			case <-ctx.Done():
				return
			case <-cl.Done():
				return
			case env := <-cl.send:
				if err := writeEnvelope(ctx, conn, env, g.cfg.WriteTimeout); err != nil {
					g.log.Info("ws.write.fail", "session_id", sessionID, "close_status", websocket.CloseStatus(err), "err", err)
					shutdown(websocket.StatusAbnormalClosure, "write failed")
					return
				}
			}
		}
	}()

	heartbeatDone := make(chan struct{})
	go func() {
		defer close(heartbeatDone)

		t := time.NewTicker(g.cfg.HeartbeatInterval)
		defer t.Stop()

		failures := 0
		for {
			select {
			case <-ctx.Done():
				return
			case <-cl.Done():
				return
			case <-t.C:
				hbCtx, hbCancel := context.WithTimeout(ctx, g.cfg.HeartbeatTimeout)
				err := conn.Ping(hbCtx)
				hbCancel()

				if err != nil {
					failures++
					g.log.Info("ws.ping.fail", "session_id", sessionID, "failures", failures, "err", err)
					if failures >= maxPingFailures {
						shutdown(websocket.StatusGoingAway, "heartbeat failed")
						return
					}
					continue
				}
				failures = 0
			}
		}
	}()

readLoop:
	for {
		readCtx, readCancel := context.WithTimeout(ctx, g.cfg.ReadIdleTimeout)
		env, err := readEnvelope(readCtx, conn)
		readCancel()

		if err != nil {
			switch classifyReadErr(err) {
			case readErrClose:
				shutdown(websocket.StatusNormalClosure, "peer closed")
				break readLoop
			case readErrCtxDone:
				shutdown(websocket.StatusNormalClosure, "context done")
				break readLoop
			case readErrConnClosed:
				shutdown(websocket.StatusAbnormalClosure, "conn closed")
				break readLoop
			case readErrBadJSON:
				g.trySendError(ctx, cl, "bad_json", "invalid JSON")
				continue readLoop
			default:
				g.log.Info("ws.read.fail", "session_id", sessionID, "err", err)
				shutdown(websocket.StatusAbnormalClosure, "read failed")
				break readLoop
			}
		}

		now := time.Now().UTC()
		if !rl.allow(now) {
			g.trySendError(ctx, cl, "rate_limited", "too many events")
			shutdown(websocket.StatusPolicyViolation, "rate limited")
			break readLoop
		}

		if err := env.Validate(); err != nil {
			g.trySendError(ctx, cl, "bad_envelope", err.Error())
			continue readLoop
		}

		switch env.Type {
		case v1.TypeHello:
			g.onHello(ctx, cl, now)

		case v1.TypeWidgetOpen:
			opened, err := g.onOpen(ctx, cl, wdg.Load(), env, now)
			if err != nil {
				g.trySendError(ctx, cl, "open_failed", err.Error())
				continue readLoop
			}
			wdg.Store(opened)

		case v1.TypeWidgetClose:
			if w := wdg.Load(); w != nil {
				w.Close()
				g.log.Info("widget.close", "session_id", sessionID)
			}

		case v1.TypeMessageSend:
			w := wdg.Load()
			if w == nil {
				g.trySendError(ctx, cl, "not_open", "open the widget first")
				continue readLoop
			}
			g.onSend(ctx, cl, w, env, sessionID)

		case v1.TypeMessageRetry:
			w := wdg.Load()
			if w == nil {
				g.trySendError(ctx, cl, "not_open", "open the widget first")
				continue readLoop
			}
			g.onRetry(ctx, cl, w, env, sessionID)

		case v1.TypeClearPrompt:
			w := wdg.Load()
			if w == nil {
				g.trySendError(ctx, cl, "not_open", "open the widget first")
				continue readLoop
			}
			if err := w.PromptClear(); err != nil {
				g.trySendError(ctx, cl, "prompt_failed", err.Error())
			}

		case v1.TypeClearConfirm:
			if w := wdg.Load(); w != nil {
				w.ConfirmClear()
			}

		case v1.TypeClearCancel:
			if w := wdg.Load(); w != nil {
				w.CancelClear()
			}

		default:
			g.trySendError(ctx, cl, "unsupported", fmt.Sprintf("unsupported type: %s", env.Type))
		}
	}

	shutdown(websocket.StatusNormalClosure, "bye")
	<-writerDone

	select {
	case <-heartbeatDone:
	case <-time.After(closeGrace):
	}
}

// ---- handlers ----

func (g *Gateway) onHello(ctx context.Context, cl *client, now time.Time) {
	b, _ := json.Marshal(v1.HelloAckPayload{SessionID: cl.sessionID})
	g.enqueue(ctx, cl, newEnvelope(v1.TypeHelloAck, b, now))
}

// onOpen creates the widget session on first open and resynchronizes the
// client with a full snapshot on every open.
func (g *Gateway) onOpen(ctx context.Context, cl *client, wdg *chat.Widget, env v1.Envelope, now time.Time) (*chat.Widget, error) {
	var p v1.WidgetOpenPayload
	if len(env.Payload) > 0 {
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return wdg, fmt.Errorf("invalid payload: %w", err)
		}
	}

	if wdg == nil {
		created, err := g.newWidget(strings.TrimSpace(p.VisitorName))
		if err != nil {
			return nil, fmt.Errorf("create widget: %w", err)
		}
		wdg = created

		sub := wdg.Subscribe()
		go g.pumpEvents(ctx, cl, sub)

		g.log.Info("widget.open", "session_id", cl.sessionID, "named_visitor", p.VisitorName != "")
	}

	snap := statePayload(wdg.Snapshot(), wdg.Composing(), wdg.AwaitingConfirmation())
	g.enqueue(ctx, cl, newEnvelope(v1.TypeWidgetState, snap, now))
	return wdg, nil
}

func (g *Gateway) onSend(ctx context.Context, cl *client, wdg *chat.Widget, env v1.Envelope, sessionID string) {
	var p v1.MessageSendPayload
	if err := json.Unmarshal(env.Payload, &p); err != nil {
		g.trySendError(ctx, cl, "bad_payload", "invalid payload")
		return
	}

	if len([]rune(p.Text)) > maxMessageChars {
		g.trySendError(ctx, cl, "too_long", fmt.Sprintf("message too long: max=%d chars", maxMessageChars))
		return
	}

	if _, err := wdg.Send(ctx, p.Text); err != nil {
		// Empty or gated sends are refused with no state change and no
		// error envelope; the input affordance is disabled client-side.
		g.log.Debug("widget.send.refused", "session_id", sessionID, "reason", err)
	}
}

func (g *Gateway) onRetry(ctx context.Context, cl *client, wdg *chat.Widget, env v1.Envelope, sessionID string) {
	var p v1.MessageRetryPayload
	if err := json.Unmarshal(env.Payload, &p); err != nil {
		g.trySendError(ctx, cl, "bad_payload", "invalid payload")
		return
	}

	if wdg.Retry(ctx, p.MessageID) {
		metricRetries.Inc()
		return
	}
	g.log.Debug("widget.retry.refused", "session_id", sessionID, "message_id", p.MessageID)
}

// pumpEvents forwards store events to the wire for the lifetime of the
// connection. The subscription outlives widget_close on purpose: the
// conversation keeps resolving while the window is hidden.
func (g *Gateway) pumpEvents(ctx context.Context, cl *client, sub *chat.Subscription) {
	defer sub.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case <-cl.Done():
			return
		case ev := <-sub.C:
			observeEvent(ev)
			if env, ok := eventEnvelope(ev, time.Now().UTC()); ok {
				g.enqueue(ctx, cl, env)
			}
		}
	}
}

// ---- send helpers ----

func (g *Gateway) trySendError(ctx context.Context, cl *client, code, msg string) {
	b, _ := json.Marshal(v1.ErrorPayload{Code: code, Message: msg})
	g.enqueue(ctx, cl, newEnvelope(v1.TypeError, b, time.Now().UTC()))
}

func (g *Gateway) enqueue(ctx context.Context, cl *client, env v1.Envelope) bool {
	select {
	case <-ctx.Done():
		return false
	case <-cl.Done():
		return false
	case cl.send <- env:
		return true
	default:
		return false
	}
}

// ---- origin policy ----

func (g *Gateway) enforceOrigin(r *http.Request) error {
	origin := strings.TrimSpace(r.Header.Get("Origin"))
	if origin == "" {
		if g.cfg.OriginRequired {
			return fmt.Errorf("missing origin")
		}
		return nil
	}

	originHost := originHostOnly(origin)

	for _, a := range g.cfg.AllowedOrigins {
		if a == "*" {
			// Strongly discouraged, but honored if explicitly configured.
			return nil
		}
		if origin == a {
			return nil
		}
		// Host match fallback (ignores port/scheme).
		if originHost != "" && originHost == originHostOnly(a) {
			return nil
		}
	}

	return fmt.Errorf("origin not allowed: %s", origin)
}

func originHostOnly(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	if strings.Contains(s, "://") {
		u, err := url.Parse(s)
		if err != nil {
			return ""
		}
		s = u.Host
		if s == "" {
			return ""
		}
	}

	if host, _, err := net.SplitHostPort(s); err == nil {
		return strings.ToLower(host)
	}
	return strings.ToLower(s)
}

// originPatterns derives websocket.Accept host patterns from the allowlist
// so both origin layers agree.
func originPatterns(allowed []string) []string {
	seen := make(map[string]struct{}, len(allowed))
	for _, a := range allowed {
		h := originHostOnly(a)
		if h == "" || h == "*" {
			continue
		}
		seen[h] = struct{}{}
	}

	out := make([]string, 0, len(seen))
	for h := range seen {
		out = append(out, h)
	}
	sort.Strings(out)
	return out
}
