package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

// runCLI executes the root command with args and returns captured stdout.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func decodeData(t *testing.T, out string) map[string]any {
	t.Helper()
	var envelope struct {
		Data map[string]any `json:"data"`
	}
	if err := json.Unmarshal([]byte(out), &envelope); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	return envelope.Data
}

func decodeDataList(t *testing.T, out string) []map[string]any {
	t.Helper()
	var envelope struct {
		Data []map[string]any `json:"data"`
	}
	if err := json.Unmarshal([]byte(out), &envelope); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	return envelope.Data
}

func setupCLI(t *testing.T) {
	t.Helper()
	t.Setenv("MDCAL_CONFIG_DIR", t.TempDir())
	t.Setenv("MDCAL_BACKEND", "files")
	t.Setenv("MDCAL_DIR", "")
	t.Setenv("MDCAL_LOG", "")
}

func mustCreate(t *testing.T, args ...string) string {
	t.Helper()
	out, err := runCLI(t, append([]string{"new"}, args...)...)
	if err != nil {
		t.Fatalf("new: %v\n%s", err, out)
	}
	id, _ := decodeData(t, out)["id"].(string)
	if id == "" {
		t.Fatalf("create output missing id: %s", out)
	}
	return id
}

func TestNewShowRoundTrip(t *testing.T) {
	setupCLI(t)

	id := mustCreate(t, "--title", "Trip", "--content", "pack bags", "--start", "2025-06-02", "--end", "2025-06-11", "--status", "ready")

	out, err := runCLI(t, "show", id)
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	doc := decodeData(t, out)
	if doc["title"] != "Trip" || doc["content"] != "pack bags" || doc["status"] != "ready" {
		t.Fatalf("unexpected document: %v", doc)
	}

	raw, err := runCLI(t, "show", id, "--raw")
	if err != nil {
		t.Fatalf("show --raw: %v", err)
	}
	if raw != "pack bags" {
		t.Fatalf("raw body = %q", raw)
	}
}

func TestShowUnknownIDFails(t *testing.T) {
	setupCLI(t)
	if _, err := runCLI(t, "show", "doc-missing1"); err == nil {
		t.Fatal("expected error for unknown id")
	}
}

func TestListSortedByUpdated(t *testing.T) {
	setupCLI(t)

	mustCreate(t, "--title", "first", "--content", "a")
	time.Sleep(5 * time.Millisecond) // distinct updatedAt stamps
	second := mustCreate(t, "--title", "second", "--content", "b")

	out, err := runCLI(t, "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	sums := decodeDataList(t, out)
	if len(sums) != 2 {
		t.Fatalf("%d summaries, want 2", len(sums))
	}
	if sums[0]["id"] != second {
		t.Fatalf("expected most recently updated first, got %v", sums[0]["id"])
	}
	if _, hasContent := sums[0]["content"]; hasContent {
		t.Fatal("summaries must not carry the body")
	}
}

func TestSearchMatchesTitleAndBody(t *testing.T) {
	setupCLI(t)

	mustCreate(t, "--title", "Groceries", "--content", "milk and eggs")
	mustCreate(t, "--title", "Workout", "--content", "leg day")

	out, err := runCLI(t, "search", "MILK")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	docs := decodeDataList(t, out)
	if len(docs) != 1 || docs[0]["title"] != "Groceries" {
		t.Fatalf("unexpected search result: %v", docs)
	}
}

func TestUpdateOnlyTouchesGivenFields(t *testing.T) {
	setupCLI(t)

	id := mustCreate(t, "--title", "A", "--content", "x")
	out, err := runCLI(t, "update", id, "--title", "B")
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	doc := decodeData(t, out)
	if doc["title"] != "B" || doc["content"] != "x" {
		t.Fatalf("partial update touched other fields: %v", doc)
	}

	if _, err := runCLI(t, "update", id); err == nil {
		t.Fatal("update with no flags should fail")
	}
	if _, err := runCLI(t, "update", "doc-missing1", "--title", "Z"); err == nil {
		t.Fatal("update of unknown id should fail")
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	setupCLI(t)

	id := mustCreate(t, "--content", "bye")
	if _, err := runCLI(t, "delete", id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := runCLI(t, "delete", id); err != nil {
		t.Fatalf("second delete: %v", err)
	}
	if _, err := runCLI(t, "show", id); err == nil {
		t.Fatal("deleted document still visible")
	}
}

func TestCalendarPlansSegments(t *testing.T) {
	setupCLI(t)

	mustCreate(t, "--title", "Conference", "--start", "2025-06-02", "--end", "2025-06-11")

	out, err := runCLI(t, "calendar", "2025-06")
	if err != nil {
		t.Fatalf("calendar: %v", err)
	}
	data := decodeData(t, out)
	if data["year"] != float64(2025) || data["month"] != float64(6) {
		t.Fatalf("wrong month: %v %v", data["year"], data["month"])
	}
	weeks, _ := data["weeks"].([]any)
	if len(weeks) == 0 {
		t.Fatal("no weeks in calendar output")
	}

	countSegments := 0
	for _, w := range weeks {
		week, _ := w.(map[string]any)
		segs, _ := week["segments"].([]any)
		countSegments += len(segs)
	}
	// Jun 2 - Jun 11 touches two displayed weeks.
	if countSegments != 2 {
		t.Fatalf("%d segments, want 2\n%s", countSegments, out)
	}
}

func TestCalendarRejectsBadMonth(t *testing.T) {
	setupCLI(t)
	if _, err := runCLI(t, "calendar", "June-2025"); err == nil {
		t.Fatal("expected error for malformed month")
	}
}

func TestConfigFolderRoundTrip(t *testing.T) {
	setupCLI(t)

	dir := t.TempDir()
	out, err := runCLI(t, "config", "folder", dir)
	if err != nil {
		t.Fatalf("config folder set: %v", err)
	}
	if got := decodeData(t, out)["resolved"]; got != dir {
		t.Fatalf("resolved = %v, want %v", got, dir)
	}

	out, err = runCLI(t, "config", "folder")
	if err != nil {
		t.Fatalf("config folder get: %v", err)
	}
	if got := decodeData(t, out)["documentsFolder"]; got != dir {
		t.Fatalf("documentsFolder = %v", got)
	}
}

func TestConfigBackendRoundTrip(t *testing.T) {
	setupCLI(t)

	if out, err := runCLI(t, "config", "backend", "files"); err != nil {
		t.Fatalf("set backend: %v\n%s", err, out)
	}
	out, err := runCLI(t, "config", "backend")
	if err != nil {
		t.Fatalf("get backend: %v", err)
	}
	if got := decodeData(t, out)["backend"]; got != "files" {
		t.Fatalf("backend = %v", got)
	}
	if _, err := runCLI(t, "config", "backend", "mongo"); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestNewRejectsBadDate(t *testing.T) {
	setupCLI(t)
	out, err := runCLI(t, "new", "--start", "02-06-2025")
	if err == nil {
		t.Fatalf("expected date parse error, got: %s", out)
	}
	if !strings.Contains(out, "YYYY-MM-DD") {
		t.Fatalf("error should explain the format: %s", out)
	}
}
