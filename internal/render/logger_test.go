package render

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestSetLogger(t *testing.T) {
	t.Cleanup(func() { SetLogger(nil) })
	if logger().Enabled(context.Background(), slog.LevelError) {
		t.Fatal("default logger is enabled")
	}

	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	logger().Warn("stroke skipped", "id", "stroke-1")
	if !strings.Contains(buf.String(), "stroke skipped") {
		t.Fatalf("log output %q", buf.String())
	}

	SetLogger(nil)
	if logger() == nil || logger().Enabled(context.Background(), slog.LevelError) {
		t.Fatal("nil did not restore the silent logger")
	}
}
