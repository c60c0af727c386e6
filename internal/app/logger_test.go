package app

import (
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLogLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"loud", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := parseLogLevel(tt.in); got != tt.want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestPrettyHandlerOutput(t *testing.T) {
	t.Parallel()

	var buf strings.Builder
	h := newPrettyHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}, false)
	log := slog.New(h)

	log.Info("widget.open", "session_id", "s1", "named_visitor", true, "reason", "peer closed")

	out := buf.String()
	for _, want := range []string{
		"lvl=[INFO]",
		"msg=widget.open",
		"session_id=s1",
		"named_visitor=true",
		`reason="peer closed"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Errorf("output %q contains ANSI codes with color disabled", out)
	}
}

func TestPrettyHandlerLevelGate(t *testing.T) {
	t.Parallel()

	var buf strings.Builder
	h := newPrettyHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}, false)

	if h.Enabled(context.Background(), slog.LevelInfo) {
		t.Fatal("info must be gated at warn level")
	}
	if !h.Enabled(context.Background(), slog.LevelError) {
		t.Fatal("error must pass at warn level")
	}
}

func TestPrettyHandlerGroupsAndAttrs(t *testing.T) {
	t.Parallel()

	var buf strings.Builder
	h := newPrettyHandler(&buf, nil, false)
	log := slog.New(h).With("svc", "midichat").WithGroup("ws").With("session_id", "s1")

	log.Info("connected")

	out := buf.String()
	if !strings.Contains(out, "svc=midichat") {
		t.Errorf("output %q missing base attr", out)
	}
	if !strings.Contains(out, "ws.session_id=s1") {
		t.Errorf("output %q missing grouped attr", out)
	}
}
