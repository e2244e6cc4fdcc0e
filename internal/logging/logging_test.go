package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	logger, closeFn, err := New(WithWriter(&buf), WithFields(map[string]any{"session": "abc"}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Info("generation ready")
	closeFn()

	var line map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line); err != nil {
		t.Fatalf("expected JSON line, got %q: %v", buf.String(), err)
	}
	if line["msg"] != "generation ready" {
		t.Errorf("unexpected msg %v", line["msg"])
	}
	if line["session"] != "abc" {
		t.Errorf("missing session field: %v", line)
	}
}

func TestLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	logger, closeFn, err := New(WithWriter(&buf), WithLevel("warn"))
	if err != nil {
		t.Fatal(err)
	}
	logger.Info("hidden")
	logger.Warn("shown")
	closeFn()

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info line should be filtered at warn level")
	}
	if !strings.Contains(out, "shown") {
		t.Error("warn line missing")
	}
}

func TestWithFileCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "plasmagen.log")
	logger, closeFn, err := New(WithFile(path))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Info("to file")
	closeFn()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "to file") {
		t.Errorf("log file missing entry: %q", data)
	}
}

func TestOrNop(t *testing.T) {
	if OrNop(nil) == nil {
		t.Fatal("OrNop(nil) returned nil")
	}
}
