package logging

import "time"

// #region stage
// Stage names a step of a run.
type Stage string

const (
	StageEncrypt Stage = "encrypt"
	StageDecrypt Stage = "decrypt"
	StageVerify  Stage = "verify"
)
// #endregion stage

// #region event-entry
// Entry is a single row in the run_events table.
type Entry struct {
	RunID      string
	Stage      Stage
	Outcome    string // "ok" | "fallback" | "ambiguous" | "mismatch" | "error"
	DetailJSON string
	CreatedAt  time.Time
}
// #endregion event-entry

// #region decrypt-detail
// DecryptDetail is serialized into run_events.detail_json for decrypt events.
type DecryptDetail struct {
	Mode        string           `json:"mode"`
	Warning     string           `json:"warning,omitempty"`
	Ties        int              `json:"ties"`
	Unreachable int              `json:"unreachable"`
	Preview     []AmbiguityEntry `json:"preview,omitempty"`
}

// AmbiguityEntry is the JSON form of one ambiguous position.
type AmbiguityEntry struct {
	Position   int    `json:"position"`
	Cipher     string `json:"cipher"`
	Candidates string `json:"candidates"`
}

// VerifyDetail is serialized into run_events.detail_json for verify events.
type VerifyDetail struct {
	Match    bool   `json:"match"`
	Position int    `json:"position,omitempty"`
	Want     string `json:"want,omitempty"`
	Got      string `json:"got,omitempty"`
}
// #endregion decrypt-detail
