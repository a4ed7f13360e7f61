package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/danielpatrickdp/splitshift/internal/history"
	"github.com/danielpatrickdp/splitshift/internal/logging"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to the splitshift history db")
	last := flag.Int("last", 20, "show N most recent runs")
	runID := flag.String("run", "", "show single run detail")
	stage := flag.String("stage", "", "filter run events to one stage (encrypt, decrypt, verify)")
	jsonOut := flag.Bool("json", false, "output as JSON instead of table")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect --db path/to/history.db [--last N] [--run id] [--stage name] [--json]")
		os.Exit(2)
	}

	store, err := history.NewStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	if *runID != "" {
		err = runDetailMode(os.Stdout, store, *runID, logging.Stage(*stage), *jsonOut)
	} else {
		err = runListMode(os.Stdout, store, *last, *jsonOut)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region list-mode

type listRow struct {
	RunID       string `json:"run_id"`
	Shift1      int    `json:"shift1"`
	Shift2      int    `json:"shift2"`
	Chars       int    `json:"chars"`
	Mode        string `json:"mode"`
	Ambiguities int    `json:"ambiguities"`
	Unreachable int    `json:"unreachable"`
	Verified    *bool  `json:"verified,omitempty"`
	CreatedAt   string `json:"created_at"`
}

func toRow(rec history.RunRecord) listRow {
	return listRow{
		RunID:       rec.RunID,
		Shift1:      rec.Shift1,
		Shift2:      rec.Shift2,
		Chars:       rec.SourceLen,
		Mode:        rec.Mode,
		Ambiguities: rec.Ambiguities,
		Unreachable: rec.Unreachable,
		Verified:    rec.Verified,
		CreatedAt:   rec.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

func runListMode(w io.Writer, store *history.Store, last int, jsonOut bool) error {
	runs, err := store.ListRuns(last)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(os.Stderr, "no runs found")
		return nil
	}

	// store returns newest first; print chronologically
	rows := make([]listRow, len(runs))
	for i, rec := range runs {
		rows[len(runs)-1-i] = toRow(rec)
	}

	if jsonOut {
		return printJSON(w, rows)
	}
	printListTable(w, rows)
	return nil
}

func printListTable(w io.Writer, rows []listRow) {
	fmt.Fprintf(w, "%-12s  %9s  %6s  %-11s  %5s  %5s  %-8s  %s\n",
		"Run", "Shifts", "Chars", "Mode", "Ties", "Unrch", "Verified", "Time")
	fmt.Fprintf(w, "%-12s+-%9s+-%6s+-%-11s+-%5s+-%5s+-%-8s+-%s\n",
		"------------", "---------", "------", "-----------", "-----", "-----", "--------", "--------------------")

	for _, r := range rows {
		fmt.Fprintf(w, "%-12s  %9s  %6d  %-11s  %5d  %5d  %-8s  %s\n",
			shortID(r.RunID), fmt.Sprintf("%d,%d", r.Shift1, r.Shift2), r.Chars,
			orDash(r.Mode), r.Ambiguities, r.Unreachable, verifiedLabel(r.Verified), r.CreatedAt)
	}
}

// #endregion list-mode

// #region detail-mode

type detailOutput struct {
	listRow
	Warning string        `json:"warning,omitempty"`
	Events  []eventOutput `json:"events"`
}

type eventOutput struct {
	Stage     string          `json:"stage"`
	Outcome   string          `json:"outcome"`
	Detail    json.RawMessage `json:"detail,omitempty"`
	CreatedAt string          `json:"created_at"`
}

func runDetailMode(w io.Writer, store *history.Store, runID string, stage logging.Stage, jsonOut bool) error {
	rec, err := store.GetRun(runID)
	if err != nil {
		return err
	}
	events, err := logging.ListEvents(store.DB(), runID)
	if err != nil {
		return err
	}

	out := detailOutput{listRow: toRow(rec), Warning: rec.Warning, Events: []eventOutput{}}
	for _, e := range events {
		if stage != "" && e.Stage != stage {
			continue
		}
		ev := eventOutput{
			Stage:     string(e.Stage),
			Outcome:   e.Outcome,
			CreatedAt: e.CreatedAt.Format("2006-01-02T15:04:05Z"),
		}
		if e.DetailJSON != "" {
			ev.Detail = json.RawMessage(e.DetailJSON)
		}
		out.Events = append(out.Events, ev)
	}

	if jsonOut {
		return printJSON(w, out)
	}

	fmt.Fprintf(w, "Run:         %s\n", out.RunID)
	fmt.Fprintf(w, "Created:     %s\n", out.CreatedAt)
	fmt.Fprintf(w, "Shifts:      %d, %d\n", out.Shift1, out.Shift2)
	fmt.Fprintf(w, "Chars:       %d\n", out.Chars)
	fmt.Fprintf(w, "Mode:        %s\n", orDash(out.Mode))
	fmt.Fprintf(w, "Ties:        %d\n", out.Ambiguities)
	fmt.Fprintf(w, "Unreachable: %d\n", out.Unreachable)
	fmt.Fprintf(w, "Verified:    %s\n", verifiedLabel(out.Verified))
	if out.Warning != "" {
		fmt.Fprintf(w, "Warning:     %s\n", out.Warning)
	}

	fmt.Fprintf(w, "\nEvents:\n")
	for _, ev := range out.Events {
		fmt.Fprintf(w, "  %-8s %-10s %s\n", ev.Stage, ev.Outcome, ev.Detail)
	}
	return nil
}

// #endregion detail-mode

// #region output

func verifiedLabel(v *bool) string {
	switch {
	case v == nil:
		return "-"
	case *v:
		return "match"
	default:
		return "mismatch"
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func printJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// #endregion output
