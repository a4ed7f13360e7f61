package verify

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyMatch(t *testing.T) {
	out := Verify("abc", "abc", DefaultOptions())
	assert.True(t, out.Match)
	assert.Empty(t, out.Diff)
	assert.Equal(t, "match", out.String())
}

func TestVerifyMismatchPosition(t *testing.T) {
	out := Verify("abc", "abd", DefaultOptions())
	require.False(t, out.Match)
	assert.Equal(t, 2, out.Position)
	assert.Equal(t, 1, out.Line)
	assert.Equal(t, 3, out.Column)
	assert.Equal(t, "c", out.Want)
	assert.Equal(t, "d", out.Got)
	assert.Contains(t, out.Diff, "--- original\n+++ recovered\n")
	assert.Contains(t, out.Diff, "@@ -1 +1 @@")
	assert.Contains(t, out.Diff, "\n-abc")
	assert.Contains(t, out.Diff, "\n+abd")
	assert.False(t, out.Truncated)
	assert.Equal(t, `mismatch at position 2 (line 1, column 3): want "c", got "d"`, out.String())
}

func TestVerifyPrefix(t *testing.T) {
	out := Verify("abc\ndef", "abc\nde", DefaultOptions())
	require.False(t, out.Match)
	assert.Equal(t, 6, out.Position)
	assert.Equal(t, 2, out.Line)
	assert.Equal(t, 3, out.Column)
	assert.Equal(t, "f", out.Want)
	assert.Empty(t, out.Got)
	assert.Contains(t, out.String(), "got EOF")
}

func TestVerifyRunePositions(t *testing.T) {
	out := Verify("café au lait", "café au laid", DefaultOptions())
	require.False(t, out.Match)
	assert.Equal(t, 11, out.Position)
}

func numbered(n int, upperAt map[int]bool) string {
	var b strings.Builder
	for i := 1; i <= n; i++ {
		line := fmt.Sprintf("line %d", i)
		if upperAt[i] {
			line = strings.ToUpper(line)
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

func TestVerifyDiffContext(t *testing.T) {
	a := numbered(20, nil)
	b := numbered(20, map[int]bool{10: true})
	out := Verify(a, b, DefaultOptions())
	require.False(t, out.Match)
	assert.Contains(t, out.Diff, "@@ -7,7 +7,7 @@")
	assert.Contains(t, out.Diff, "\n-line 10")
	assert.Contains(t, out.Diff, "\n+LINE 10")
	assert.Contains(t, out.Diff, "\n line 7")
	assert.Contains(t, out.Diff, "\n line 13")
	assert.NotContains(t, out.Diff, " line 6\n")
	assert.NotContains(t, out.Diff, " line 14")
}

func TestVerifySeparateHunks(t *testing.T) {
	a := numbered(40, nil)
	b := numbered(40, map[int]bool{5: true, 30: true})
	out := Verify(a, b, DefaultOptions())
	assert.Equal(t, 2, strings.Count(out.Diff, "@@ -"))
}

func TestVerifyDiffTruncated(t *testing.T) {
	upper := make(map[int]bool)
	for i := 1; i <= 300; i++ {
		if i%2 == 0 {
			upper[i] = true
		}
	}
	opts := DefaultOptions()
	opts.MaxLines = 50
	out := Verify(numbered(300, nil), numbered(300, upper), opts)
	require.False(t, out.Match)
	assert.True(t, out.Truncated)
	assert.Equal(t, 50, strings.Count(out.Diff, "\n"))
	assert.True(t, strings.HasSuffix(out.Diff, "... (diff truncated) ..."))
}

func zeroBased(n, changed int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		if i == changed {
			b.WriteString("changed\n")
			continue
		}
		fmt.Fprintf(&b, "line %d\n", i)
	}
	return b.String()
}

func TestVerifyDiffShowsChangedLine(t *testing.T) {
	out := Verify(zeroBased(30, -1), zeroBased(30, 15), DefaultOptions())
	require.False(t, out.Match)
	assert.Equal(t, 16, out.Line)
	want := strings.Join([]string{
		"--- original",
		"+++ recovered",
		"@@ -13,7 +13,7 @@",
		" line 12",
		" line 13",
		" line 14",
		"-line 15",
		"+changed",
		" line 16",
		" line 17",
		" line 18",
	}, "\n")
	assert.Equal(t, want, out.Diff)
	assert.False(t, out.Truncated)
}

func TestVerifyDiffLongInput(t *testing.T) {
	out := Verify(zeroBased(3000, -1), zeroBased(3000, 1500), DefaultOptions())
	require.False(t, out.Match)
	assert.Contains(t, out.Diff, "@@ -1498,7 +1498,7 @@")
	assert.Contains(t, out.Diff, "\n-line 1500\n+changed\n")
	assert.Equal(t, 1, strings.Count(out.Diff, "@@ -"))
}

func TestVerifyDiffByteCap(t *testing.T) {
	long := strings.Repeat("a", 1_000_000)
	out := Verify(long+"b", long+"c", DefaultOptions())
	require.False(t, out.Match)
	assert.Equal(t, 1_000_000, out.Position)
	assert.True(t, out.Truncated)
	assert.LessOrEqual(t, len(out.Diff), DefaultOptions().MaxBytes+len(truncatedMarker)+1)
	assert.True(t, strings.HasSuffix(out.Diff, "\n"+truncatedMarker))
}

func TestVerifyByteCapKeepsRunes(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxBytes = 60
	out := Verify(strings.Repeat("é", 100), strings.Repeat("è", 100), opts)
	require.True(t, out.Truncated)
	assert.True(t, utf8.ValidString(out.Diff))
}

func TestVerifyNonPositiveCapsUseDefaults(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxLines = 0
	opts.MaxBytes = 0
	long := strings.Repeat("x", 100_000)
	out := Verify(long, long+"y", opts)
	assert.True(t, out.Truncated)
	assert.LessOrEqual(t, len(out.Diff), DefaultOptions().MaxBytes+len(truncatedMarker)+1)
}
