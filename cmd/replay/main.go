package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/danielpatrickdp/splitshift/internal/replay"
)

// #region main

func main() {
	fixturePath := flag.String("fixture", "", "path to fixture JSON")
	parallel := flag.Int("parallel", runtime.NumCPU(), "max cases replayed concurrently")
	flag.Parse()

	if *fixturePath == "" {
		fmt.Fprintln(os.Stderr, "usage: replay --fixture path/to/fixture.json [--parallel N]")
		os.Exit(2)
	}
	os.Exit(runFixtureMode(os.Stdout, *fixturePath, *parallel))
}

// #endregion main

// #region output

func runFixtureMode(w io.Writer, path string, parallel int) int {
	f, err := replay.LoadFixture(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load fixture: %v\n", err)
		return 2
	}

	results, err := replay.Replay(context.Background(), f.ReplayCases(), parallel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "replay: %v\n", err)
		return 2
	}
	return printResults(w, results)
}

// printResults outputs a result table and returns the exit code.
func printResults(w io.Writer, results []replay.Result) int {
	fmt.Fprintf(w, "%-20s| %6s| %6s| %s\n", "Case", "Ties", "Unrch", "Result")
	fmt.Fprintf(w, "%-20s+%-7s+%-7s+%s\n",
		"--------------------", "-------", "-------", "------")

	for _, r := range results {
		status := "OK"
		if !r.Passed() {
			status = "FAIL"
		}
		fmt.Fprintf(w, "%-20s| %6d| %6d| %s\n", r.Name, r.Ambiguities-r.Unreachable, r.Unreachable, status)
		for _, f := range r.Failures {
			fmt.Fprintf(w, "    %s\n", f)
		}
	}

	s := replay.Summarize(results)
	fmt.Fprintf(w, "\nSummary: %d total, %d passed, %d failed, %d ambiguous\n",
		s.Total, s.Passed, s.Failed, s.Ambiguous)

	if s.Failed > 0 {
		return 1
	}
	return 0
}

// #endregion output
