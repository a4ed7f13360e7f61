// Package verify compares an original text with its recovered counterpart and
// renders a bounded unified diff when they differ.
package verify

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// #region types

// Options bounds the diff report.
type Options struct {
	FromName string
	ToName   string
	Context  int // lines of context around each change
	MaxLines int // cap on rendered diff lines; <= 0 uses the default
	MaxBytes int // cap on rendered diff bytes; <= 0 uses the default
}

// DefaultOptions returns three lines of context, a 200 line cap and a
// 16 KiB byte cap.
func DefaultOptions() Options {
	return Options{
		FromName: "original",
		ToName:   "recovered",
		Context:  3,
		MaxLines: 200,
		MaxBytes: 16 << 10,
	}
}

// Outcome is the result of Verify. On a mismatch Position is the first
// differing rune index; Want or Got is empty when that text ended first.
type Outcome struct {
	Match     bool
	Position  int
	Line      int
	Column    int
	Want      string
	Got       string
	Diff      string
	Truncated bool
}

func (o Outcome) String() string {
	if o.Match {
		return "match"
	}
	return fmt.Sprintf("mismatch at position %d (line %d, column %d): want %s, got %s",
		o.Position, o.Line, o.Column, quoteOrEOF(o.Want), quoteOrEOF(o.Got))
}

func quoteOrEOF(s string) string {
	if s == "" {
		return "EOF"
	}
	return fmt.Sprintf("%q", s)
}

// #endregion types

// #region verify

// Verify compares original and recovered.
func Verify(original, recovered string, opts Options) Outcome {
	if original == recovered {
		return Outcome{Match: true}
	}
	out := firstDifference(original, recovered)
	out.Diff, out.Truncated = unifiedDiff(original, recovered, opts)
	return out
}

func firstDifference(a, b string) Outcome {
	ra, rb := []rune(a), []rune(b)
	i := diffmatchpatch.New().DiffCommonPrefix(a, b)
	out := Outcome{Position: i, Line: 1, Column: 1}
	for _, r := range ra[:i] {
		if r == '\n' {
			out.Line++
			out.Column = 1
		} else {
			out.Column++
		}
	}
	if i < len(ra) {
		out.Want = string(ra[i])
	}
	if i < len(rb) {
		out.Got = string(rb[i])
	}
	return out
}

// #endregion verify

// #region diff

const truncatedMarker = "... (diff truncated) ..."

// unifiedDiff renders a line diff with opts.Context lines of context, cut to
// opts.MaxLines lines and opts.MaxBytes bytes.
func unifiedDiff(a, b string, opts Options) (string, bool) {
	ctx := opts.Context
	if ctx < 0 {
		ctx = 0
	}
	text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(a),
		B:        difflib.SplitLines(b),
		FromFile: opts.FromName,
		ToFile:   opts.ToName,
		Context:  ctx,
	})
	if err != nil {
		return fmt.Sprintf("diff unavailable: %v", err), false
	}
	return bound(strings.Split(strings.TrimSuffix(text, "\n"), "\n"), opts)
}

// bound keeps whole lines while both caps allow, cuts the first line that
// overflows the byte cap at a rune boundary, then appends the marker.
func bound(lines []string, opts Options) (string, bool) {
	def := DefaultOptions()
	maxLines, maxBytes := opts.MaxLines, opts.MaxBytes
	if maxLines <= 0 {
		maxLines = def.MaxLines
	}
	if maxBytes <= 0 {
		maxBytes = def.MaxBytes
	}

	var b strings.Builder
	for i, line := range lines {
		if i == maxLines {
			b.WriteString(truncatedMarker)
			return b.String(), true
		}
		if b.Len()+len(line)+1 > maxBytes {
			b.WriteString(cutRunes(line, maxBytes-b.Len()-1))
			b.WriteString("\n" + truncatedMarker)
			return b.String(), true
		}
		b.WriteString(line)
		if i < len(lines)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String(), false
}

// cutRunes returns the longest prefix of s no longer than n bytes that ends
// on a rune boundary.
func cutRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// #endregion diff
