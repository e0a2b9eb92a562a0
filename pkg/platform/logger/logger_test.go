package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(&buf, Config{Format: "json", Level: zapcore.InfoLevel})
	if err != nil {
		t.Fatalf("Failed to build logger: %v", err)
	}

	log.Debug("hidden")
	log.Info("order created", zap.String("company_id", "acme"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("Expected 1 log line, got %d: %q", len(lines), buf.String())
	}

	var entry map[string]interface{}
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("Expected JSON log line: %v", err)
	}
	if entry["company_id"] != "acme" {
		t.Errorf("Expected company_id acme, got %v", entry["company_id"])
	}
}

func TestNew_UnknownFormat(t *testing.T) {
	if _, err := New(&bytes.Buffer{}, Config{Format: "xml"}); err == nil {
		t.Error("Expected error for unknown format, got none")
	}
}

func TestParseLevel(t *testing.T) {
	l, err := ParseLevel("debug")
	if err != nil {
		t.Fatalf("Failed to parse level: %v", err)
	}
	if l != zapcore.DebugLevel {
		t.Errorf("Expected debug level, got %v", l)
	}

	if _, err := ParseLevel("loud"); err == nil {
		t.Error("Expected error for unknown level, got none")
	}
}
