package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewWritesStructuredLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "app.log")

	log, f, err := New(path, "debug")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	log.Info().Str("doc", "doc-abcd1234").Msg("saved")
	if err := f.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	line := string(data)
	for _, want := range []string{`"level":"info"`, `"doc":"doc-abcd1234"`, `"message":"saved"`, `"time"`} {
		if !strings.Contains(line, want) {
			t.Errorf("log line missing %s: %s", want, line)
		}
	}
}

func TestNewFiltersBelowLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")

	log, f, err := New(path, "warn")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	log.Debug().Msg("hidden")
	log.Warn().Msg("shown")
	f.Close()

	data, _ := os.ReadFile(path)
	if strings.Contains(string(data), "hidden") {
		t.Error("debug line written despite warn level")
	}
	if !strings.Contains(string(data), "shown") {
		t.Error("warn line missing")
	}
}

func TestParseLevelFallsBackToInfo(t *testing.T) {
	for _, in := range []string{"", "verbose", "  INFO  "} {
		if got := parseLevel(in); got.String() != "info" {
			t.Errorf("parseLevel(%q) = %v, want info", in, got)
		}
	}
	if got := parseLevel("Error"); got.String() != "error" {
		t.Errorf("parseLevel(Error) = %v, want error", got)
	}
}
