package history

import "time"

// #region run-record
// RunRecord is one encrypt/decrypt/verify run.
type RunRecord struct {
	RunID       string
	Shift1      int
	Shift2      int
	SourceLen   int
	Mode        string // "metadata" | "brute_force"
	Ambiguities int    // ties
	Unreachable int
	Verified    *bool // nil until the verify stage ran
	Warning     string
	CreatedAt   time.Time
}
// #endregion run-record
