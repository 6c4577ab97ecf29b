package pubsub

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestLogging_ForwardsAndLogs(t *testing.T) {
	ctx := context.Background()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	ps := NewLogging(NewMemory(), logger)

	sub, err := ps.Subscribe(ctx, "t")
	if err != nil {
		t.Fatalf("Subscribe() error: %v", err)
	}
	defer sub.Close()

	if err := ps.Broadcast(ctx, "t", json.RawMessage(`1`)); err != nil {
		t.Fatalf("Broadcast() error: %v", err)
	}
	if got := string(recvOne(t, sub)); got != "1" {
		t.Errorf("payload = %s, want 1", got)
	}

	out := buf.String()
	if !strings.Contains(out, "pubsub: subscribe") || !strings.Contains(out, "pubsub: broadcast") {
		t.Errorf("missing debug log lines, got:\n%s", out)
	}
}
