package replay

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"

	"github.com/danielpatrickdp/splitshift/internal/cipher"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// #region fixture-tests

// TestFixture_Regression replays the regression vectors and requires every
// case to pass, including the exact ambiguity lists.
func TestFixture_Regression(t *testing.T) {
	f, err := LoadFixture(filepath.Join("testdata", "regression.json"))
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}
	cases := f.ReplayCases()
	if len(cases) != 7 {
		t.Fatalf("expected 7 cases, got %d", len(cases))
	}

	results, err := Replay(context.Background(), cases, 3)
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	for i, r := range results {
		if r.Name != cases[i].Name {
			t.Errorf("result %d: name %s, want %s (order not preserved)", i, r.Name, cases[i].Name)
		}
		if !r.Passed() {
			t.Errorf("case %s failed:\n%s", r.Name, strings.Join(r.Failures, "\n"))
		}
	}

	s := Summarize(results)
	if s.Total != 7 || s.Passed != 7 || s.Failed != 0 {
		t.Fatalf("unexpected summary %+v", s)
	}
	if s.Ambiguous != 4 {
		t.Errorf("expected 4 ambiguous cases, got %d", s.Ambiguous)
	}
}

func TestFixture_EmptyAmbiguitiesAreChecked(t *testing.T) {
	f, err := LoadFixture(filepath.Join("testdata", "regression.json"))
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}
	c := f.Cases[0].ToCase()
	if c.Name != "hello_world" || !c.CheckAmbiguities {
		t.Fatalf("expected hello_world with an explicit empty ambiguity list, got %+v", c)
	}
}

func TestLoadFixture_Missing(t *testing.T) {
	if _, err := LoadFixture(filepath.Join("testdata", "nope.json")); err == nil {
		t.Fatal("expected error for missing fixture")
	}
}

// TestRecordCase_MatchesRegression re-records every regression case and
// writes the result back out; both must reproduce the checked-in fixture.
func TestRecordCase_MatchesRegression(t *testing.T) {
	f, err := LoadFixture(filepath.Join("testdata", "regression.json"))
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}

	recorded := &Fixture{Description: f.Description}
	for _, fc := range f.Cases {
		got := RecordCase(fc.Name, fc.Text, cipher.ShiftPair{Shift1: fc.Shift1, Shift2: fc.Shift2})
		if diff := cmp.Diff(fc, got); diff != "" {
			t.Errorf("case %s (-fixture +recorded):\n%s", fc.Name, diff)
		}
		recorded.Cases = append(recorded.Cases, got)
	}

	path := filepath.Join(t.TempDir(), "fixture.json")
	if err := WriteFixture(path, recorded); err != nil {
		t.Fatalf("WriteFixture: %v", err)
	}
	back, err := LoadFixture(path)
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}
	if diff := cmp.Diff(f, back); diff != "" {
		t.Errorf("written fixture differs (-want +got):\n%s", diff)
	}
}

// #endregion fixture-tests

// #region case-tests

func TestReplayCase_DetectsWrongExpectations(t *testing.T) {
	r := ReplayCase(Case{
		Name:             "wrong",
		Text:             "abc xyz",
		Pair:             cipher.ShiftPair{Shift1: 3, Shift2: 5},
		ExpectedCipher:   "abc xyz",
		CheckAmbiguities: true,
	})
	if r.Passed() {
		t.Fatal("expected failures")
	}
	if len(r.Failures) != 2 {
		t.Fatalf("expected cipher and ambiguity failures, got %v", r.Failures)
	}
	if r.Ambiguities != 6 {
		t.Errorf("expected 6 ambiguities, got %d", r.Ambiguities)
	}
}

func TestReplayCase_UnreachableCounted(t *testing.T) {
	// Under 13,13 every lowercase letter encodes into n-z, where each cipher
	// letter has two preimages.
	r := ReplayCase(Case{Name: "ok", Text: "hello", Pair: cipher.ShiftPair{Shift1: 13, Shift2: 13}})
	if !r.Passed() {
		t.Fatalf("unexpected failures: %v", r.Failures)
	}
	if r.Unreachable != 0 || r.Ambiguities != 5 {
		t.Fatalf("unexpected counts %+v", r)
	}
}

func TestReplay_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cases := []Case{{Name: "a", Text: "a"}, {Name: "b", Text: "b"}}
	_, err := Replay(ctx, cases, 1)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

// #endregion case-tests
