package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/danielpatrickdp/splitshift/internal/cipher"
	"github.com/danielpatrickdp/splitshift/internal/replay"
)

func TestExportAppendsAndReplaces(t *testing.T) {
	dir := t.TempDir()
	text := filepath.Join(dir, "in.txt")
	out := filepath.Join(dir, "fixture.json")
	if err := os.WriteFile(text, []byte("abc xyz"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := run(text, "first", cipher.ShiftPair{Shift1: 3, Shift2: 5}, out, "export test"); err != nil {
		t.Fatalf("run: %v", err)
	}
	if err := run(text, "second", cipher.ShiftPair{Shift1: 1, Shift2: 1}, out, ""); err != nil {
		t.Fatalf("run: %v", err)
	}
	if err := run(text, "first", cipher.ShiftPair{Shift1: 3, Shift2: 5}, out, ""); err != nil {
		t.Fatalf("run: %v", err)
	}

	f, err := replay.LoadFixture(out)
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}
	if f.Description != "export test" {
		t.Errorf("description = %q", f.Description)
	}
	if len(f.Cases) != 2 {
		t.Fatalf("expected 2 cases, got %d", len(f.Cases))
	}
	first := f.Cases[0]
	if first.ExpectedCipher != "pqr pqr" || first.ExpectedRecovered != "abc abc" || len(first.ExpectedAmbiguities) != 6 {
		t.Errorf("unexpected first case: %+v", first)
	}
	for _, r := range mustReplay(t, f) {
		if !r.Passed() {
			t.Errorf("case %s failed: %v", r.Name, r.Failures)
		}
	}
}

func TestExportDefaultsNameToFileName(t *testing.T) {
	dir := t.TempDir()
	text := filepath.Join(dir, "pangram.txt")
	out := filepath.Join(dir, "fixture.json")
	if err := os.WriteFile(text, []byte("Hello"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := run(text, "", cipher.ShiftPair{Shift1: 3, Shift2: 5}, out, ""); err != nil {
		t.Fatalf("run: %v", err)
	}
	f, err := replay.LoadFixture(out)
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}
	if len(f.Cases) != 1 || f.Cases[0].Name != "pangram.txt" {
		t.Fatalf("cases = %+v, want one named pangram.txt", f.Cases)
	}
}

func TestExportRejectsInvalidUTF8(t *testing.T) {
	dir := t.TempDir()
	text := filepath.Join(dir, "bad.txt")
	if err := os.WriteFile(text, []byte("caf\xe9"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := run(text, "", cipher.ShiftPair{}, filepath.Join(dir, "f.json"), ""); err == nil {
		t.Fatal("expected error for invalid UTF-8 text")
	}
}

func TestExportMissingText(t *testing.T) {
	dir := t.TempDir()
	err := run(filepath.Join(dir, "nope.txt"), "x", cipher.ShiftPair{}, filepath.Join(dir, "f.json"), "")
	if err == nil {
		t.Fatal("expected error for missing text")
	}
}

func mustReplay(t *testing.T, f *replay.Fixture) []replay.Result {
	t.Helper()
	results := make([]replay.Result, len(f.Cases))
	for i, c := range f.ReplayCases() {
		results[i] = replay.ReplayCase(c)
	}
	return results
}
