package pipeline

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/danielpatrickdp/splitshift/internal/cipher"
	"github.com/danielpatrickdp/splitshift/internal/history"
	"github.com/danielpatrickdp/splitshift/internal/logging"
	"github.com/danielpatrickdp/splitshift/internal/workspace"
)

// #region helpers

type fixture struct {
	ws    workspace.Workspace
	log   *zap.Logger
	logs  *observer.ObservedLogs
	store *history.Store
}

func setup(t *testing.T, source string) fixture {
	t.Helper()
	ws := workspace.New(t.TempDir())
	if source != "" {
		require.NoError(t, ws.WriteSource(source))
	}
	store, err := history.NewStore(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	core, logs := observer.New(zapcore.DebugLevel)
	return fixture{ws: ws, log: zap.New(core), logs: logs, store: store}
}

func (f fixture) runner() *Runner {
	return NewRunner(f.ws, f.log, f.store, DefaultOptions())
}

// #endregion helpers

func TestRunRoundTrip(t *testing.T) {
	f := setup(t, "Hello, World! 123")
	ws, store, r := f.ws, f.store, f.runner()

	rep, err := r.Run(cipher.ShiftPair{Shift1: 3, Shift2: 5})
	require.NoError(t, err)
	assert.Equal(t, "Etaag, Vgjas! 123", rep.Encrypt.Cipher)
	assert.Equal(t, 17, rep.Encrypt.Chars)
	assert.Equal(t, cipher.ModeMetadata, rep.Decrypt.Mode)
	assert.Empty(t, rep.Decrypt.Ambiguities)
	assert.True(t, rep.Verify.Match)

	dec, err := ws.ReadDecrypted()
	require.NoError(t, err)
	assert.Equal(t, "Hello, World! 123", dec)

	run, err := store.GetRun(r.RunID())
	require.NoError(t, err)
	assert.Equal(t, "metadata", run.Mode)
	require.NotNil(t, run.Verified)
	assert.True(t, *run.Verified)

	events, err := logging.ListEvents(store.DB(), r.RunID())
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, logging.StageEncrypt, events[0].Stage)
	assert.Equal(t, "ok", events[2].Outcome)
}

func TestRunMissingSource(t *testing.T) {
	f := setup(t, "")
	ws, r := f.ws, f.runner()

	_, err := r.Run(cipher.ShiftPair{Shift1: 1, Shift2: 1})
	require.Error(t, err)
	assert.True(t, errors.Is(err, workspace.ErrMissingSource))

	_, statErr := os.Stat(ws.Path(ws.EncFile))
	assert.True(t, os.IsNotExist(statErr), "no cipher file should be written")
	_, statErr = os.Stat(ws.Path(ws.MetaFile))
	assert.True(t, os.IsNotExist(statErr), "no metadata file should be written")
	assert.Empty(t, r.RunID())
}

func TestRunRejectsInvalidUTF8Source(t *testing.T) {
	f := setup(t, "")
	ws, r := f.ws, f.runner()
	require.NoError(t, os.WriteFile(ws.Path(ws.RawFile), []byte("caf\xe9 ok"), 0o644))

	_, err := r.Run(cipher.ShiftPair{Shift1: 3, Shift2: 5})
	require.Error(t, err)
	assert.ErrorIs(t, err, workspace.ErrInvalidEncoding)

	_, statErr := os.Stat(ws.Path(ws.EncFile))
	assert.True(t, os.IsNotExist(statErr), "no cipher file should be written")
}

func TestDecryptFallsBackWithoutMetadata(t *testing.T) {
	f := setup(t, "abc xyz")
	ws, logs, store, r := f.ws, f.logs, f.store, f.runner()
	p := cipher.ShiftPair{Shift1: 3, Shift2: 5}

	_, err := r.Encrypt(p)
	require.NoError(t, err)
	require.NoError(t, os.Remove(ws.Path(ws.MetaFile)))

	res, err := r.Decrypt(p)
	require.NoError(t, err)
	assert.Equal(t, cipher.ModeBruteForce, res.Mode)
	assert.True(t, errors.Is(res.Warning, workspace.ErrMetadataMissing))
	assert.Equal(t, "abc abc", res.Text)
	assert.Len(t, res.Ambiguities, 6)

	warned := logs.FilterMessage("metadata unusable, attempting brute-force fallback").Len()
	assert.Equal(t, 1, warned)
	assert.Equal(t, 6, logs.FilterMessage("ambiguous position").Len())

	out, err := r.Verify()
	require.NoError(t, err)
	assert.False(t, out.Match)
	assert.Equal(t, 4, out.Position)
	assert.Equal(t, "x", out.Want)
	assert.Equal(t, "a", out.Got)

	run, err := store.GetRun(r.RunID())
	require.NoError(t, err)
	assert.Equal(t, "brute_force", run.Mode)
	assert.Equal(t, 6, run.Ambiguities)
	assert.Equal(t, 0, run.Unreachable)
	assert.Contains(t, run.Warning, "metadata file not found")
	require.NotNil(t, run.Verified)
	assert.False(t, *run.Verified)

	events, err := logging.ListEvents(store.DB(), r.RunID())
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, "ambiguous", events[1].Outcome)
	assert.Equal(t, "mismatch", events[2].Outcome)
}

func TestDecryptFallsBackOnCorruptMetadata(t *testing.T) {
	f := setup(t, "Hello")
	ws := f.ws
	r := NewRunner(ws, f.log, nil, DefaultOptions())
	p := cipher.ShiftPair{}

	_, err := r.Encrypt(p)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(ws.Path(ws.MetaFile), []byte(`["U1","L1"]`), 0o644))

	res, err := r.Decrypt(p)
	require.NoError(t, err)
	assert.Equal(t, cipher.ModeBruteForce, res.Mode)
	assert.True(t, errors.Is(res.Warning, cipher.ErrInvalidMetadata))
	assert.Equal(t, "Hello", res.Text)
	assert.Empty(t, r.RunID())

	out, err := r.Verify()
	require.NoError(t, err)
	assert.True(t, out.Match)
}

func TestDecryptMissingCipher(t *testing.T) {
	r := setup(t, "x").runner()
	_, err := r.Decrypt(cipher.ShiftPair{})
	assert.True(t, errors.Is(err, workspace.ErrMissingCipher))
}

func TestDecryptStandaloneBeginsRun(t *testing.T) {
	f := setup(t, "")
	ws, store := f.ws, f.store
	p := cipher.ShiftPair{Shift1: 2, Shift2: 2}
	enc, meta := cipher.Encode("standalone", p)
	require.NoError(t, ws.WriteCipher(enc, meta))

	r := f.runner()
	res, err := r.Decrypt(p)
	require.NoError(t, err)
	assert.Equal(t, "standalone", res.Text)
	require.NotEmpty(t, res.RunID)

	run, err := store.GetRun(res.RunID)
	require.NoError(t, err)
	assert.Equal(t, 10, run.SourceLen)
}

func TestFormatAmbiguities(t *testing.T) {
	rec := cipher.Recover("pqr pqr", cipher.ShiftPair{Shift1: 3, Shift2: 5})
	out := FormatAmbiguities(rec.Ambiguities, 2)
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, `  0: 'p' -> ['a', 'x']`, lines[0])
	assert.Equal(t, "  ... and 4 more ambiguous positions.", lines[2])
	assert.Empty(t, FormatAmbiguities(nil, 20))
}
