package logger

import (
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestInit(t *testing.T) {
	logger := Init("test-service", slog.LevelInfo)
	if logger == nil {
		t.Fatal("expected non-nil logger")
	}
}

func TestPassID_RoundTrip(t *testing.T) {
	ctx := context.Background()

	// No pass ID set
	if pid := PassID(ctx); pid != "" {
		t.Errorf("expected empty pass id, got %q", pid)
	}

	// Set and retrieve
	ctx = WithPassID(ctx, "pass-7-1700000000")
	if pid := PassID(ctx); pid != "pass-7-1700000000" {
		t.Errorf("expected 'pass-7-1700000000', got %q", pid)
	}
}

func TestGeneratePassID(t *testing.T) {
	ts := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	pid := GeneratePassID(42, ts)

	if pid == "" {
		t.Fatal("expected non-empty pass id")
	}
	if !strings.HasPrefix(pid, "pass-42-") {
		t.Errorf("expected pass id to start with 'pass-42-', got %s", pid)
	}
}

func TestLogWithPass(t *testing.T) {
	ctx := context.Background()

	// No pass ID
	attrs := LogWithPass(ctx)
	if attrs != nil {
		t.Errorf("expected nil attrs when no pass id, got %v", attrs)
	}

	// With pass ID set
	ctx = WithPassID(ctx, "pass-1-123")
	attrs = LogWithPass(ctx)
	if len(attrs) == 0 {
		t.Fatal("expected non-empty attrs with pass id set")
	}
}
