package cipher

import (
	"fmt"
	"strings"
)

// #region types

// Ambiguity is a position the brute force search could not pin to a single
// plaintext rune. Candidates are in alphabetical order and empty when no
// letter of the cipher rune's case encodes to it.
type Ambiguity struct {
	Position   int    `json:"position"`
	Cipher     rune   `json:"cipher"`
	Candidates []rune `json:"candidates"`
}

// Unreachable reports a position with no candidate at all.
func (a Ambiguity) Unreachable() bool { return len(a.Candidates) == 0 }

func (a Ambiguity) String() string {
	cands := make([]string, len(a.Candidates))
	for i, c := range a.Candidates {
		cands[i] = fmt.Sprintf("%q", c)
	}
	return fmt.Sprintf("%d: %q -> [%s]", a.Position, a.Cipher, strings.Join(cands, ", "))
}

// Recovery is the best-effort output of Recover. Positions listed in
// Ambiguities must not be trusted.
type Recovery struct {
	Text        string
	Ambiguities []Ambiguity
}

// Ties returns the positions with more than one candidate.
func (r Recovery) Ties() []Ambiguity {
	var out []Ambiguity
	for _, a := range r.Ambiguities {
		if !a.Unreachable() {
			out = append(out, a)
		}
	}
	return out
}

// Unreachable returns the positions with no candidate.
func (r Recovery) Unreachable() []Ambiguity {
	var out []Ambiguity
	for _, a := range r.Ambiguities {
		if a.Unreachable() {
			out = append(out, a)
		}
	}
	return out
}

// #endregion types

// #region preimages

// preimages maps every cipher letter of one case to the plaintext letters
// that encode to it. Letters are visited in order so each list is sorted.
type preimages [alphabetSize][]rune

func buildPreimages(base rune, p ShiftPair) *preimages {
	var t preimages
	for i := 0; i < alphabetSize; i++ {
		plain := base + rune(i)
		enc := Forward(plain, Classify(plain), p)
		t[enc-base] = append(t[enc-base], plain)
	}
	return &t
}

// #endregion preimages

// #region recover

// Recover reconstructs plaintext without metadata. Case survives the forward
// transform but the half of the alphabet does not, so each cipher letter is
// matched against every letter of its case. A single match is used as is;
// otherwise the first candidate (or the cipher rune when there is none) is
// emitted and the position is recorded as an Ambiguity.
func Recover(cipherText string, p ShiftPair) Recovery {
	lower := buildPreimages('a', p)
	upper := buildPreimages('A', p)

	var b strings.Builder
	b.Grow(len(cipherText))
	var ambiguities []Ambiguity

	pos := 0
	for _, r := range cipherText {
		var cands []rune
		switch {
		case isLower(r):
			cands = lower[r-'a']
		case isUpper(r):
			cands = upper[r-'A']
		default:
			b.WriteRune(r)
			pos++
			continue
		}

		if len(cands) == 1 {
			b.WriteRune(cands[0])
		} else {
			if len(cands) > 0 {
				b.WriteRune(cands[0])
			} else {
				b.WriteRune(r)
			}
			ambiguities = append(ambiguities, Ambiguity{
				Position:   pos,
				Cipher:     r,
				Candidates: append([]rune(nil), cands...),
			})
		}
		pos++
	}

	return Recovery{Text: b.String(), Ambiguities: ambiguities}
}

// #endregion recover
