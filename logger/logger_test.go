package logger

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestFromContext(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	l := zap.New(core).Sugar()

	ctx := WithContext(context.Background(), l)
	FromContext(ctx).Warnw("quote unavailable", "symbol", "TCS.NS")

	if got := logs.Len(); got != 1 {
		t.Fatalf("logged %d entries, want 1", got)
	}
	entry := logs.All()[0]
	if entry.Message != "quote unavailable" {
		t.Errorf("Message = %q, want %q", entry.Message, "quote unavailable")
	}
	if got := entry.ContextMap()["symbol"]; got != "TCS.NS" {
		t.Errorf("symbol = %v, want TCS.NS", got)
	}
}

func TestFromContextWithoutLogger(t *testing.T) {
	l := FromContext(context.Background())
	if l == nil {
		t.Fatal("FromContext() = nil, want a no-op logger")
	}
	l.Warn("dropped") // must not panic
}

func TestNew(t *testing.T) {
	for _, env := range []string{"dev", "prod", ""} {
		if New(env) == nil {
			t.Errorf("New(%q) = nil", env)
		}
	}
}
