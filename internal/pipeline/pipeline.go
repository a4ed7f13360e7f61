// Package pipeline runs the encrypt, decrypt and verify stages over a
// workspace, logging each stage and recording it in the run history when a
// store is configured.
package pipeline

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/danielpatrickdp/splitshift/internal/cipher"
	"github.com/danielpatrickdp/splitshift/internal/history"
	"github.com/danielpatrickdp/splitshift/internal/logging"
	"github.com/danielpatrickdp/splitshift/internal/verify"
	"github.com/danielpatrickdp/splitshift/internal/workspace"
)

// #region types

// EncryptResult describes a finished encrypt stage.
type EncryptResult struct {
	RunID  string
	Chars  int
	Cipher string
}

// DecryptResult describes a finished decrypt stage.
type DecryptResult struct {
	RunID string
	cipher.Decryption
}

// Report bundles the three stages of Run.
type Report struct {
	Encrypt EncryptResult
	Decrypt DecryptResult
	Verify  verify.Outcome
}

// Options tune reporting.
type Options struct {
	Verify           verify.Options
	AmbiguityPreview int
}

// DefaultOptions mirrors config.Default.
func DefaultOptions() Options {
	return Options{Verify: verify.DefaultOptions(), AmbiguityPreview: 20}
}

// #endregion types

// #region runner

// Runner drives one run at a time; it is not safe for concurrent use.
type Runner struct {
	ws    workspace.Workspace
	log   *zap.Logger
	store *history.Store // optional
	opts  Options
	runID string
}

// NewRunner creates a runner. store may be nil to disable history.
func NewRunner(ws workspace.Workspace, logger *zap.Logger, store *history.Store, opts Options) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{ws: ws, log: logger, store: store, opts: opts}
}

// RunID returns the current run id, empty when history is disabled or no
// stage has run yet.
func (r *Runner) RunID() string { return r.runID }

// #endregion runner

// #region encrypt

// Encrypt reads the source, encodes it and writes cipher text and metadata.
// A missing source aborts the stage before anything is written.
func (r *Runner) Encrypt(p cipher.ShiftPair) (EncryptResult, error) {
	raw, err := r.ws.ReadSource()
	if err != nil {
		r.log.Error("encryption failed", zap.Error(err))
		return EncryptResult{}, fmt.Errorf("encrypt: %w", err)
	}

	enc, meta := cipher.Encode(raw, p)
	chars := utf8.RuneCountInString(raw)
	r.beginRun(p, chars)

	if err := r.ws.WriteCipher(enc, meta); err != nil {
		r.event(logging.StageEncrypt, "error", map[string]string{"error": err.Error()})
		return EncryptResult{}, fmt.Errorf("encrypt: %w", err)
	}

	r.log.Info("encrypted",
		zap.String("cipher_file", r.ws.Path(r.ws.EncFile)),
		zap.String("meta_file", r.ws.Path(r.ws.MetaFile)),
		zap.Int("chars", chars))
	r.event(logging.StageEncrypt, "ok", map[string]int{"chars": chars})

	return EncryptResult{RunID: r.runID, Chars: chars, Cipher: enc}, nil
}

// #endregion encrypt

// #region decrypt

// Decrypt reads the cipher text, decodes it with its metadata when usable and
// falls back to brute force otherwise, then writes the decrypted text. Only a
// missing or unreadable cipher text or a failed write is an error.
func (r *Runner) Decrypt(p cipher.ShiftPair) (DecryptResult, error) {
	enc, err := r.ws.ReadCipher()
	if err != nil {
		r.log.Error("decryption failed", zap.Error(err))
		return DecryptResult{}, fmt.Errorf("decrypt: %w", err)
	}

	meta, metaErr := r.ws.ReadMetadata(enc)
	if metaErr != nil {
		r.log.Warn("metadata unusable, attempting brute-force fallback", zap.Error(metaErr))
	}
	if r.runID == "" {
		r.beginRun(p, utf8.RuneCountInString(enc))
	}

	d := cipher.Decrypt(enc, meta, metaErr, p)
	rec := cipher.Recovery{Text: d.Text, Ambiguities: d.Ambiguities}
	ties, unreachable := rec.Ties(), rec.Unreachable()
	if len(d.Ambiguities) > 0 {
		r.log.Warn("brute-force decryption produced ambiguous positions",
			zap.Int("ties", len(ties)),
			zap.Int("unreachable", len(unreachable)))
		r.logPreview(d.Ambiguities)
	}

	if err := r.ws.WriteDecrypted(d.Text); err != nil {
		r.event(logging.StageDecrypt, "error", map[string]string{"error": err.Error()})
		return DecryptResult{}, fmt.Errorf("decrypt: %w", err)
	}
	r.log.Info("decrypted",
		zap.String("file", r.ws.Path(r.ws.DecFile)),
		zap.String("mode", string(d.Mode)))

	warning := ""
	if d.Warning != nil {
		warning = d.Warning.Error()
	}
	if r.store != nil && r.runID != "" {
		if err := r.store.FinishDecrypt(r.runID, string(d.Mode), len(ties), len(unreachable), warning); err != nil {
			r.log.Warn("history update failed", zap.Error(err))
		}
	}
	r.event(logging.StageDecrypt, decryptOutcome(d), logging.DecryptDetail{
		Mode:        string(d.Mode),
		Warning:     warning,
		Ties:        len(ties),
		Unreachable: len(unreachable),
		Preview:     previewEntries(d.Ambiguities, r.opts.AmbiguityPreview),
	})

	return DecryptResult{RunID: r.runID, Decryption: d}, nil
}

func decryptOutcome(d cipher.Decryption) string {
	switch {
	case len(d.Ambiguities) > 0:
		return "ambiguous"
	case d.Mode == cipher.ModeBruteForce:
		return "fallback"
	default:
		return "ok"
	}
}

func (r *Runner) logPreview(amb []cipher.Ambiguity) {
	n := previewLen(amb, r.opts.AmbiguityPreview)
	for _, a := range amb[:n] {
		r.log.Info("ambiguous position",
			zap.Int("position", a.Position),
			zap.String("cipher", string(a.Cipher)),
			zap.String("candidates", string(a.Candidates)))
	}
	if rest := len(amb) - n; rest > 0 {
		r.log.Info(fmt.Sprintf("... and %d more ambiguous positions", rest))
	}
}

func previewLen(amb []cipher.Ambiguity, limit int) int {
	return max(min(len(amb), limit), 0)
}

func previewEntries(amb []cipher.Ambiguity, limit int) []logging.AmbiguityEntry {
	n := previewLen(amb, limit)
	out := make([]logging.AmbiguityEntry, n)
	for i, a := range amb[:n] {
		out[i] = logging.AmbiguityEntry{
			Position:   a.Position,
			Cipher:     string(a.Cipher),
			Candidates: string(a.Candidates),
		}
	}
	return out
}

// #endregion decrypt

// #region verify

// Verify compares the source with the decrypted text. A mismatch is an
// outcome, not an error.
func (r *Runner) Verify() (verify.Outcome, error) {
	raw, err := r.ws.ReadSource()
	if err != nil {
		return verify.Outcome{}, fmt.Errorf("verify: %w", err)
	}
	dec, err := r.ws.ReadDecrypted()
	if err != nil {
		return verify.Outcome{}, fmt.Errorf("verify: %w", err)
	}

	out := verify.Verify(raw, dec, r.opts.Verify)
	if out.Match {
		r.log.Info("decrypted text matches the original")
	} else {
		r.log.Warn("decrypted text does not match the original",
			zap.Int("position", out.Position),
			zap.String("want", out.Want),
			zap.String("got", out.Got),
			zap.Bool("diff_truncated", out.Truncated))
	}

	if r.store != nil && r.runID != "" {
		if err := r.store.FinishVerify(r.runID, out.Match); err != nil {
			r.log.Warn("history update failed", zap.Error(err))
		}
	}
	outcome := "ok"
	if !out.Match {
		outcome = "mismatch"
	}
	r.event(logging.StageVerify, outcome, logging.VerifyDetail{
		Match:    out.Match,
		Position: out.Position,
		Want:     out.Want,
		Got:      out.Got,
	})
	return out, nil
}

// #endregion verify

// #region run

// Run executes encrypt, decrypt and verify in order. A stage error stops the
// later stages; the report holds whatever completed.
func (r *Runner) Run(p cipher.ShiftPair) (Report, error) {
	r.runID = ""
	var rep Report
	var err error
	if rep.Encrypt, err = r.Encrypt(p); err != nil {
		return rep, err
	}
	if rep.Decrypt, err = r.Decrypt(p); err != nil {
		return rep, err
	}
	if rep.Verify, err = r.Verify(); err != nil {
		return rep, err
	}
	return rep, nil
}

// #endregion run

// #region history

func (r *Runner) beginRun(p cipher.ShiftPair, chars int) {
	if r.store == nil {
		return
	}
	rec, err := r.store.BeginRun(p.Shift1, p.Shift2, chars)
	if err != nil {
		r.log.Warn("history unavailable", zap.Error(err))
		return
	}
	r.runID = rec.RunID
	r.log.Debug("run started", zap.String("run_id", r.runID))
}

func (r *Runner) event(stage logging.Stage, outcome string, detail any) {
	if r.store == nil || r.runID == "" {
		return
	}
	entry := logging.Entry{RunID: r.runID, Stage: stage, Outcome: outcome}
	if detail != nil {
		if b, err := json.Marshal(detail); err == nil {
			entry.DetailJSON = string(b)
		}
	}
	if err := logging.LogEvent(r.store.DB(), entry); err != nil {
		r.log.Warn("event log failed", zap.Error(err))
	}
}

// #endregion history

// #region formatting

// FormatAmbiguities renders up to limit ambiguities, one per line, followed
// by a count of the rest.
func FormatAmbiguities(amb []cipher.Ambiguity, limit int) string {
	var b strings.Builder
	n := previewLen(amb, limit)
	for _, a := range amb[:n] {
		b.WriteString("  " + a.String() + "\n")
	}
	if rest := len(amb) - n; rest > 0 {
		fmt.Fprintf(&b, "  ... and %d more ambiguous positions.\n", rest)
	}
	return b.String()
}

// #endregion formatting
