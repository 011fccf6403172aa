package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLoggerAddsComponent(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelInfo, Component: ComponentLedger, Output: &buf})

	l.Info("Movement appended", FieldOperation, OpAppend)
	out := buf.String()
	if !strings.Contains(out, "component=ledger") || !strings.Contains(out, "operation=append") {
		t.Fatalf("missing fields in %q", out)
	}

	buf.Reset()
	l.Debug("hidden")
	if buf.Len() != 0 {
		t.Fatalf("debug must be filtered at info level, got %q", buf.String())
	}
}

func TestFromContext(t *testing.T) {
	if got := FromContext(context.Background()); got.Component() != "unknown" {
		t.Fatalf("expected fallback logger, got %q", got.Component())
	}
	l := New(Config{Component: ComponentHTTP, Output: &bytes.Buffer{}})
	ctx := WithContext(context.Background(), l)
	if FromContext(ctx) != l {
		t.Fatalf("expected logger from context")
	}
}

func TestStructuredLoggerInvalidInput(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(New(Config{Component: ComponentForm, Output: &buf}))
	sl.LogInvalidInput(context.Background(), errors.New("empty description"), "Despesa")

	out := buf.String()
	for _, want := range []string{"level=WARN", "error_type=validation_error", "kind=Despesa"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in %q", want, out)
		}
	}
}
