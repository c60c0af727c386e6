// Package app wires configuration, logging, the HTTP server and the widget
// gateway into a runnable midichat service.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/AlvinoWJ/midiland-dev/internal/chat"
	"github.com/AlvinoWJ/midiland-dev/internal/gateway"
	"github.com/AlvinoWJ/midiland-dev/internal/responder"
)

const shutdownGrace = 10 * time.Second

// App is the assembled midichat service.
type App struct {
	cfg     Config
	log     *slog.Logger
	gateway *gateway.Gateway
}

// New assembles the service from config: the reply table, the per-session
// widget factory and the websocket gateway.
func New(cfg Config, log *slog.Logger) (*App, error) {
	rules := responder.DefaultRules()
	fallback := ""
	if cfg.ResponderRules != "" {
		f, err := responder.LoadRulesFile(cfg.ResponderRules)
		if err != nil {
			return nil, fmt.Errorf("load responder rules: %w", err)
		}
		rules = f.Rules
		fallback = f.Fallback
		log.Info("responder.rules.loaded", "path", cfg.ResponderRules, "rules", len(rules))
	}
	reply := responder.NewKeyword(rules, fallback)

	factory := func(visitorName string) (*chat.Widget, error) {
		return chat.NewWidget(chat.Config{
			Log: log,
			Transport: &chat.SimulatedTransport{
				Latency:         cfg.TransportLatency,
				SimulateFailure: cfg.SimulateFailure,
			},
			Responder:   reply,
			Seeder:      responder.Greeting(visitorName),
			TypingDelay: cfg.TypingDelay,
		})
	}

	gw := gateway.New(log, gateway.Config{
		OriginRequired:    cfg.OriginRequired,
		AllowedOrigins:    cfg.AllowedOrigins,
		DevInsecure:       cfg.DevInsecure,
		WriteTimeout:      cfg.WSWriteTimeout,
		ReadIdleTimeout:   cfg.WSReadIdleTimeout,
		SendQueueSize:     cfg.WSSendQueue,
		HeartbeatInterval: cfg.HeartbeatInterval,
		HeartbeatTimeout:  cfg.HeartbeatTimeout,
		RateEvents:        cfg.RateEvents,
		RateWindow:        cfg.RateWindow,
	}, factory)

	return &App{cfg: cfg, log: log, gateway: gw}, nil
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.cfg.HTTPAddr,
		Handler:           a.routes(),
		ReadHeaderTimeout: a.cfg.ReadHeaderTimeout,
		ReadTimeout:       a.cfg.ReadTimeout,
		WriteTimeout:      a.cfg.WriteTimeout,
		IdleTimeout:       a.cfg.IdleTimeout,
		MaxHeaderBytes:    a.cfg.MaxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("http.listen", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.log.Info("http.shutdown")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		_ = srv.Close()
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}
