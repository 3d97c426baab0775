package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("invalid json line %q: %v", line, err)
		}
		out = append(out, m)
	}
	return out
}

func TestLoggerInit(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize text logger: %v", err)
	}
	if Get() == nil {
		t.Fatal("logger is nil after initialization")
	}

	if err := Init(WithFormat(FormatJSON)); err != nil {
		t.Fatalf("failed to initialize json logger: %v", err)
	}
	defer func() {
		if err := Sync(); err != nil {
			t.Errorf("failed to sync logger: %v", err)
		}
	}()
	if Get() == nil {
		t.Fatal("logger is nil after initialization")
	}

	if err := Init(WithFormat("xml")); err == nil {
		t.Fatal("expected error for unknown format")
	}
	if err := Init(WithLevel("loud")); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestLoggerJSONFields(t *testing.T) {
	var buf bytes.Buffer
	if err := Init(WithFormat(FormatJSON), WithOutput(&buf)); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}

	id := uuid.New()
	Get().Info(context.Background(), "period closed",
		String("k", "v"),
		Int("results", 3),
		Float64("tau", 0.5),
		Bool("ok", true),
		Duration("took", 2*time.Millisecond),
		Stringer("player", id),
		Error(errors.New("boom")),
	)

	lines := decodeLines(t, &buf)
	if len(lines) != 1 {
		t.Fatalf("expected 1 record, got %d", len(lines))
	}
	rec := lines[0]
	if rec["msg"] != "period closed" {
		t.Errorf("unexpected msg %v", rec["msg"])
	}
	if rec["k"] != "v" || rec["results"] != float64(3) || rec["tau"] != 0.5 || rec["ok"] != true {
		t.Errorf("unexpected fields %v", rec)
	}
	if rec["player"] != id.String() {
		t.Errorf("stringer not rendered: %v", rec["player"])
	}
	if rec["error"] != "boom" {
		t.Errorf("error not rendered: %v", rec["error"])
	}
	if src, _ := rec["source"].(string); !strings.Contains(src, "logger_test.go:") {
		t.Errorf("source should point at the caller, got %q", src)
	}
}

func TestLoggerNamedAndWith(t *testing.T) {
	var buf bytes.Buffer
	if err := Init(WithFormat(FormatJSON), WithOutput(&buf)); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}

	Named("app").With(String("component", "service")).Info(context.Background(), "hello", Int("n", 1))

	rec := decodeLines(t, &buf)[0]
	group, ok := rec["app"].(map[string]any)
	if !ok {
		t.Fatalf("expected group app, got %v", rec)
	}
	if group["component"] != "service" || group["n"] != float64(1) {
		t.Errorf("unexpected group fields %v", group)
	}
}

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	if err := Init(WithFormat(FormatJSON), WithOutput(&buf), WithLevel("warn")); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	ctx := context.Background()

	Get().Info(ctx, "dropped")
	Get().Debug(ctx, "dropped")
	Get().Warn(ctx, "kept")
	Get().Error(ctx, "kept")
	if n := len(decodeLines(t, &buf)); n != 2 {
		t.Fatalf("expected 2 records at warn, got %d", n)
	}

	buf.Reset()
	if err := SetLevelString("DEBUG"); err != nil {
		t.Fatalf("SetLevelString: %v", err)
	}
	Get().Debug(ctx, "kept")
	if n := len(decodeLines(t, &buf)); n != 1 {
		t.Fatalf("expected debug record, got %d", n)
	}
	if err := SetLevelString("info"); err != nil {
		t.Fatalf("SetLevelString: %v", err)
	}
}
