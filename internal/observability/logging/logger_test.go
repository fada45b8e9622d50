package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestLoggerEmitsServiceField(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLoggerTo(&buf, "edo-orchestrator", "info")

	logger.Info("document_loaded", "document_id", int64(42))

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("unmarshal log line: %v", err)
	}
	if record["service"] != "edo-orchestrator" {
		t.Fatalf("service = %v", record["service"])
	}
	if record["msg"] != "document_loaded" {
		t.Fatalf("msg = %v", record["msg"])
	}
	if record["document_id"] != float64(42) {
		t.Fatalf("document_id = %v", record["document_id"])
	}
}

func TestLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLoggerTo(&buf, "edo-orchestrator", "warn")

	logger.Debug("hidden")
	logger.Info("hidden too")
	if buf.Len() != 0 {
		t.Fatalf("info must be filtered at warn level: %s", buf.String())
	}

	logger.Warn("visible")
	if buf.Len() == 0 {
		t.Fatalf("warn must pass")
	}
}

func TestParseLevelFallsBackToInfo(t *testing.T) {
	if parseLevel("nonsense") != slog.LevelInfo {
		t.Fatalf("unknown level must default to info")
	}
	if parseLevel("ERROR") != slog.LevelError {
		t.Fatalf("level parsing must be case-insensitive")
	}
}
