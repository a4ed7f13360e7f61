// Package replay runs recorded text/shift cases through the cipher and checks
// every invariant the encode, decode and recovery paths promise.
package replay

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"golang.org/x/sync/errgroup"

	"github.com/danielpatrickdp/splitshift/internal/cipher"
)

// #region types

// Case is a single replayable input.
type Case struct {
	Name                string
	Text                string
	Pair                cipher.ShiftPair
	ExpectedCipher      string
	ExpectedRecovered   string
	ExpectedAmbiguities []cipher.Ambiguity
	CheckAmbiguities    bool
}

// Result is the outcome of replaying one Case.
type Result struct {
	Name        string
	Failures    []string
	Ambiguities int
	Unreachable int
}

// Passed reports whether every check held.
func (r Result) Passed() bool { return len(r.Failures) == 0 }

// Summary provides aggregate stats from a replay run.
type Summary struct {
	Total     int
	Passed    int
	Failed    int
	Ambiguous int // cases whose recovery flagged at least one position
}

// #endregion types

// #region replay-case

// ReplayCase checks one case: expected cipher, metadata length, exact round
// trip, recovery determinism and soundness, and expected ambiguities.
func ReplayCase(c Case) Result {
	res := Result{Name: c.Name}
	fail := func(format string, args ...any) {
		res.Failures = append(res.Failures, fmt.Sprintf(format, args...))
	}

	enc, meta := cipher.Encode(c.Text, c.Pair)
	if c.ExpectedCipher != "" && enc != c.ExpectedCipher {
		fail("cipher = %q, want %q", enc, c.ExpectedCipher)
	}
	if n := utf8.RuneCountInString(c.Text); len(meta) != n {
		fail("metadata length %d, text has %d runes", len(meta), n)
	}
	if dec := cipher.DecodeWithMetadata(enc, meta, c.Pair); dec != c.Text {
		fail("metadata round trip = %q", dec)
	}

	rec := cipher.Recover(enc, c.Pair)
	res.Ambiguities = len(rec.Ambiguities)
	res.Unreachable = len(rec.Unreachable())
	if again := cipher.Recover(enc, c.Pair); !cmp.Equal(rec, again) {
		fail("recovery is not deterministic")
	}

	flagged := make(map[int]bool, len(rec.Ambiguities))
	for _, a := range rec.Ambiguities {
		flagged[a.Position] = true
	}
	want, got := []rune(c.Text), []rune(rec.Text)
	if len(want) != len(got) {
		fail("recovered length %d, want %d", len(got), len(want))
	} else {
		for i := range want {
			if !flagged[i] && want[i] != got[i] {
				fail("unflagged position %d recovered %q, want %q", i, got[i], want[i])
				break
			}
		}
	}

	if c.ExpectedRecovered != "" && rec.Text != c.ExpectedRecovered {
		fail("recovered = %q, want %q", rec.Text, c.ExpectedRecovered)
	}
	if c.CheckAmbiguities {
		if diff := cmp.Diff(c.ExpectedAmbiguities, rec.Ambiguities, cmpopts.EquateEmpty()); diff != "" {
			fail("ambiguities (-want +got):\n%s", diff)
		}
	}
	return res
}

// #endregion replay-case

// #region replay

// Replay runs all cases with at most limit in flight. Results keep the order
// of cases. It only fails when ctx is cancelled.
func Replay(ctx context.Context, cases []Case, limit int) ([]Result, error) {
	results := make([]Result, len(cases))
	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, c := range cases {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = ReplayCase(c)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("replay: %w", err)
	}
	return results, nil
}

// Summarize computes aggregate stats from replay results.
func Summarize(results []Result) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		if r.Passed() {
			s.Passed++
		} else {
			s.Failed++
		}
		if r.Ambiguities > 0 {
			s.Ambiguous++
		}
	}
	return s
}

// #endregion replay
