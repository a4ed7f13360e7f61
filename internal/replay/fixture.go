package replay

import (
	"encoding/json"
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/danielpatrickdp/splitshift/internal/cipher"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture.
type Fixture struct {
	Description string        `json:"description"`
	Cases       []FixtureCase `json:"cases"`
}

// FixtureCase is one text/shift pair with its expected outputs. Omitted
// expectations are not checked; an empty expected_ambiguities list asserts
// that brute force recovery is exact.
type FixtureCase struct {
	Name                string             `json:"name"`
	Text                string             `json:"text"`
	Shift1              int                `json:"shift1"`
	Shift2              int                `json:"shift2"`
	ExpectedCipher      string             `json:"expected_cipher,omitempty"`
	ExpectedRecovered   string             `json:"expected_recovered,omitempty"`
	ExpectedAmbiguities []FixtureAmbiguity `json:"expected_ambiguities"`
}

// FixtureAmbiguity mirrors cipher.Ambiguity with strings for readability:
// candidates are listed as one string, e.g. "ax".
type FixtureAmbiguity struct {
	Position   int    `json:"position"`
	Cipher     string `json:"cipher"`
	Candidates string `json:"candidates"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return &f, nil
}

// ToCase converts a FixtureCase to a domain Case.
func (fc *FixtureCase) ToCase() Case {
	c := Case{
		Name:              fc.Name,
		Text:              fc.Text,
		Pair:              cipher.ShiftPair{Shift1: fc.Shift1, Shift2: fc.Shift2},
		ExpectedCipher:    fc.ExpectedCipher,
		ExpectedRecovered: fc.ExpectedRecovered,
	}
	if fc.ExpectedAmbiguities != nil {
		c.CheckAmbiguities = true
		c.ExpectedAmbiguities = make([]cipher.Ambiguity, len(fc.ExpectedAmbiguities))
		for i, a := range fc.ExpectedAmbiguities {
			r, _ := utf8.DecodeRuneInString(a.Cipher)
			var cands []rune
			if a.Candidates != "" {
				cands = []rune(a.Candidates)
			}
			c.ExpectedAmbiguities[i] = cipher.Ambiguity{Position: a.Position, Cipher: r, Candidates: cands}
		}
	}
	return c
}

// RecordCase captures what the cipher currently produces for text under p.
// The ambiguity list is never nil, so a recorded case always checks it.
func RecordCase(name, text string, p cipher.ShiftPair) FixtureCase {
	enc, _ := cipher.Encode(text, p)
	rec := cipher.Recover(enc, p)
	fc := FixtureCase{
		Name:                name,
		Text:                text,
		Shift1:              p.Shift1,
		Shift2:              p.Shift2,
		ExpectedCipher:      enc,
		ExpectedRecovered:   rec.Text,
		ExpectedAmbiguities: make([]FixtureAmbiguity, 0, len(rec.Ambiguities)),
	}
	for _, a := range rec.Ambiguities {
		fc.ExpectedAmbiguities = append(fc.ExpectedAmbiguities, FixtureAmbiguity{
			Position:   a.Position,
			Cipher:     string(a.Cipher),
			Candidates: string(a.Candidates),
		})
	}
	return fc
}

// ReplayCases converts every fixture case.
func (f *Fixture) ReplayCases() []Case {
	out := make([]Case, len(f.Cases))
	for i := range f.Cases {
		out[i] = f.Cases[i].ToCase()
	}
	return out
}

// #endregion fixture-loader

// #region fixture-writer

// WriteFixture writes f as indented JSON.
func WriteFixture(path string, f *Fixture) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal fixture: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write fixture %s: %w", path, err)
	}
	return nil
}

// #endregion fixture-writer
