package observe

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func decodeLogLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()

	var entries []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("unmarshal log line %q: %v", line, err)
		}
		entries = append(entries, entry)
	}
	return entries
}

func TestLoggerJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("info", &buf)

	logger.Info(context.Background(), "cache warmed",
		Field{Key: "op", Value: "set"},
		Field{Key: "entries", Value: 42},
	)

	entries := decodeLogLines(t, &buf)
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}

	entry := entries[0]
	if entry["level"] != "info" {
		t.Errorf("level = %v", entry["level"])
	}
	if entry["msg"] != "cache warmed" {
		t.Errorf("msg = %v", entry["msg"])
	}
	if entry["op"] != "set" {
		t.Errorf("op = %v", entry["op"])
	}
	if entry["entries"] != float64(42) {
		t.Errorf("entries = %v", entry["entries"])
	}
	if _, ok := entry["timestamp"]; !ok {
		t.Error("missing timestamp")
	}
}

func TestLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("warn", &buf)

	ctx := context.Background()
	logger.Debug(ctx, "debug msg")
	logger.Info(ctx, "info msg")
	logger.Warn(ctx, "warn msg")
	logger.Error(ctx, "error msg")

	entries := decodeLogLines(t, &buf)
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0]["level"] != "warn" || entries[1]["level"] != "error" {
		t.Errorf("levels = %v, %v", entries[0]["level"], entries[1]["level"])
	}
}

func TestLoggerRedaction(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("debug", &buf)

	logger.Info(context.Background(), "store configured",
		Field{Key: "payload", Value: "sensitive cached text"},
		Field{Key: "password", Value: "hunter2"},
		Field{Key: "redis_url", Value: "redis://:secret@localhost:6379"},
		Field{Key: "address", Value: "localhost:6379"},
	)

	entries := decodeLogLines(t, &buf)
	entry := entries[0]

	for _, key := range []string{"payload", "password", "redis_url"} {
		if entry[key] != "[REDACTED]" {
			t.Errorf("%s = %v, want [REDACTED]", key, entry[key])
		}
	}
	if entry["address"] != "localhost:6379" {
		t.Errorf("address = %v, should not be redacted", entry["address"])
	}
	if strings.Contains(buf.String(), "hunter2") {
		t.Error("credential leaked into log stream")
	}
}

func TestLoggerWithCache(t *testing.T) {
	var buf bytes.Buffer
	base := NewLoggerWithWriter("info", &buf)

	logger := base.WithCache(CacheMeta{Name: "responses", Preset: "ai-production"})
	logger.Info(context.Background(), "hit")

	entries := decodeLogLines(t, &buf)
	entry := entries[0]
	if entry["cache.name"] != "responses" {
		t.Errorf("cache.name = %v", entry["cache.name"])
	}
	if entry["cache.preset"] != "ai-production" {
		t.Errorf("cache.preset = %v", entry["cache.preset"])
	}

	// The base logger stays untouched.
	buf.Reset()
	base.Info(context.Background(), "plain")
	entries = decodeLogLines(t, &buf)
	if _, ok := entries[0]["cache.name"]; ok {
		t.Error("WithCache mutated the base logger")
	}
}

func TestLoggerWithCacheNoPreset(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("info", &buf).WithCache(CacheMeta{Name: "sessions"})
	logger.Info(context.Background(), "hit")

	entry := decodeLogLines(t, &buf)[0]
	if entry["cache.name"] != "sessions" {
		t.Errorf("cache.name = %v", entry["cache.name"])
	}
	if _, ok := entry["cache.preset"]; ok {
		t.Error("empty preset should be omitted")
	}
}
