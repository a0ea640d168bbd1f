package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/samvad-hq/inference-console/internal/config"
)

func TestLoggerWritesJSONWithObjectField(t *testing.T) {
	var buf bytes.Buffer
	log, err := initWithWriter(&config.Config{AppName: "test", Env: "ci", LogLevel: "debug"}, &buf)
	if err != nil {
		t.Fatalf("init: %v", err)
	}

	log.DebugObj("call finished", "call", map[string]any{"operation": "health", "ok": true})

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	if entry["msg"] != "call finished" || entry["app"] != "test" {
		t.Fatalf("unexpected entry %v", entry)
	}
	call, ok := entry["call"].(map[string]any)
	if !ok || call["operation"] != "health" {
		t.Fatalf("missing structured field: %v", entry)
	}
	if _, ok := entry["ts"]; !ok {
		t.Fatalf("expected ts key")
	}
}

func TestLoggerRespectsLevelAndErrors(t *testing.T) {
	var buf bytes.Buffer
	log, _ := initWithWriter(&config.Config{LogLevel: "warn"}, &buf)

	log.InfoObj("hidden", "k", 1)
	log.WarnObj("shown", "error", errors.New("boom"))

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info should be filtered at warn level: %s", out)
	}
	if !strings.Contains(out, `"error":"boom"`) {
		t.Fatalf("error field not rendered: %s", out)
	}
}

func TestParseLevelFallsBackToInfo(t *testing.T) {
	if parseLevel("loud").String() != "info" {
		t.Fatalf("unexpected fallback level")
	}
}
