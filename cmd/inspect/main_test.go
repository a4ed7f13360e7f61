package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danielpatrickdp/splitshift/internal/history"
	"github.com/danielpatrickdp/splitshift/internal/logging"
)

func seedStore(t *testing.T) (*history.Store, string) {
	t.Helper()
	s, err := history.NewStore(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	rec, err := s.BeginRun(3, 5, 7)
	if err != nil {
		t.Fatalf("BeginRun: %v", err)
	}
	if err := s.FinishDecrypt(rec.RunID, "brute_force", 6, 0, "metadata file not found"); err != nil {
		t.Fatalf("FinishDecrypt: %v", err)
	}
	if err := s.FinishVerify(rec.RunID, false); err != nil {
		t.Fatalf("FinishVerify: %v", err)
	}
	for _, e := range []logging.Entry{
		{RunID: rec.RunID, Stage: logging.StageEncrypt, Outcome: "ok", DetailJSON: `{"chars":7}`},
		{RunID: rec.RunID, Stage: logging.StageDecrypt, Outcome: "fallback"},
		{RunID: rec.RunID, Stage: logging.StageVerify, Outcome: "mismatch"},
	} {
		if err := logging.LogEvent(s.DB(), e); err != nil {
			t.Fatalf("LogEvent: %v", err)
		}
	}
	return s, rec.RunID
}

func TestListTable(t *testing.T) {
	s, runID := seedStore(t)
	var buf bytes.Buffer
	if err := runListMode(&buf, s, 10, false); err != nil {
		t.Fatalf("runListMode: %v", err)
	}
	out := buf.String()
	for _, want := range []string{shortID(runID), "3,5", "brute_force", "mismatch"} {
		if !strings.Contains(out, want) {
			t.Errorf("list output missing %q:\n%s", want, out)
		}
	}
}

func TestDetailJSONFiltersStage(t *testing.T) {
	s, runID := seedStore(t)
	var buf bytes.Buffer
	if err := runDetailMode(&buf, s, runID, logging.StageEncrypt, true); err != nil {
		t.Fatalf("runDetailMode: %v", err)
	}

	var got detailOutput
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v\n%s", err, buf.String())
	}
	if got.RunID != runID || got.Warning != "metadata file not found" {
		t.Errorf("unexpected run: %+v", got)
	}
	if len(got.Events) != 1 || got.Events[0].Stage != "encrypt" {
		t.Fatalf("events = %+v, want only encrypt", got.Events)
	}
	var detail bytes.Buffer
	if err := json.Compact(&detail, got.Events[0].Detail); err != nil {
		t.Fatalf("compact: %v", err)
	}
	if detail.String() != `{"chars":7}` {
		t.Errorf("detail = %s", detail.String())
	}
}

func TestDetailUnknownRun(t *testing.T) {
	s, _ := seedStore(t)
	if err := runDetailMode(&bytes.Buffer{}, s, "missing", "", false); err == nil {
		t.Fatal("expected error for unknown run")
	}
}
