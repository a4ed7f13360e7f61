// Package cipher implements the split-half shift substitution: every ASCII
// letter is shifted by an amount that depends on its case and on which half
// of the alphabet it falls in. The class of each rune is the only information
// the forward transform loses, so it is returned alongside the cipher text as
// Metadata.
package cipher

import (
	"strings"
	"unicode/utf8"
)

// #region encode

// Encode transforms text rune by rune and returns the cipher text with one
// metadata tag per source rune. text must be valid UTF-8; invalid bytes decode
// as U+FFFD and do not round trip.
func Encode(text string, p ShiftPair) (string, Metadata) {
	var b strings.Builder
	b.Grow(len(text))
	meta := make(Metadata, 0, utf8.RuneCountInString(text))
	for _, r := range text {
		k := Classify(r)
		b.WriteRune(Forward(r, k, p))
		meta = append(meta, k)
	}
	return b.String(), meta
}

// #endregion encode

// #region decode

// DecodeWithMetadata inverts Encode using the recorded classes. Callers check
// the metadata with CheckMetadata first; runes past the end of meta are
// treated as Other.
func DecodeWithMetadata(cipherText string, meta Metadata, p ShiftPair) string {
	var b strings.Builder
	b.Grow(len(cipherText))
	i := 0
	for _, r := range cipherText {
		k := Other
		if i < len(meta) {
			k = meta[i]
		}
		b.WriteRune(Inverse(r, k, p))
		i++
	}
	return b.String()
}

// #endregion decode

// #region decrypt

// Mode names the path Decrypt took.
type Mode string

const (
	ModeMetadata   Mode = "metadata"
	ModeBruteForce Mode = "brute_force"
)

// Decryption is the outcome of Decrypt. Ambiguities is always empty on the
// metadata path. Warning carries the metadata problem that forced the brute
// force path, if any.
type Decryption struct {
	Text        string
	Mode        Mode
	Ambiguities []Ambiguity
	Warning     error
}

// Decrypt picks the decode path once: metadata that loaded without error and
// matches the cipher text length is used directly, anything else falls back
// to Recover.
func Decrypt(cipherText string, meta Metadata, metaErr error, p ShiftPair) Decryption {
	if metaErr == nil {
		metaErr = CheckMetadata(meta, cipherText)
	}
	if metaErr == nil {
		return Decryption{
			Text: DecodeWithMetadata(cipherText, meta, p),
			Mode: ModeMetadata,
		}
	}
	rec := Recover(cipherText, p)
	return Decryption{
		Text:        rec.Text,
		Mode:        ModeBruteForce,
		Ambiguities: rec.Ambiguities,
		Warning:     metaErr,
	}
}

// #endregion decrypt
