package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/danielpatrickdp/histogrammer/go-engine/internal/replay"
	"github.com/danielpatrickdp/histogrammer/go-engine/internal/session"
	"github.com/danielpatrickdp/histogrammer/go-engine/internal/setup"
)

// #region main

func main() {
	eventsPath := flag.String("events", "", "path to a record file (stream mode)")
	setupPath := flag.String("setup", "", "setup YAML applied before the stream (stream mode)")
	fixturePath := flag.String("fixture", "", "path to fixture JSON (fixture mode)")
	flag.Parse()

	if (*eventsPath == "" && *fixturePath == "") || (*eventsPath != "" && *fixturePath != "") {
		fmt.Fprintln(os.Stderr, "usage: replay --events path/to/run.evt [--setup setup.yaml]")
		fmt.Fprintln(os.Stderr, "       replay --fixture path/to/fixture.json")
		os.Exit(2)
	}

	var exitCode int
	if *fixturePath != "" {
		exitCode = runFixtureMode(*fixturePath)
	} else {
		exitCode = runStreamMode(*eventsPath, *setupPath)
	}
	os.Exit(exitCode)
}

// #endregion main

// #region stream-mode

func runStreamMode(eventsPath, setupPath string) int {
	sess, err := session.New(session.Config{Source: "replay"}, nil, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "session: %v\n", err)
		return 2
	}
	if setupPath != "" {
		f, err := setup.Load(setupPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			return 2
		}
		if err := f.Apply(sess); err != nil {
			fmt.Fprintf(os.Stderr, "apply setup: %v\n", err)
			return 2
		}
	}

	in, err := os.Open(eventsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open events: %v\n", err)
		return 2
	}
	defer in.Close()

	sum, err := replay.Replay(context.Background(), in, sess)
	printSummary(sum)
	sums := make(map[string]float64)
	for _, info := range sess.ListSpectra() {
		sums[info.Name] = info.Sum
	}
	printSums(sums, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "replay stopped: %v\n", err)
		return 1
	}
	return 0
}

// #endregion stream-mode

// #region fixture-mode

func runFixtureMode(path string) int {
	f, err := replay.LoadFixture(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 2
	}
	sess, err := session.New(session.Config{Source: "fixture"}, nil, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "session: %v\n", err)
		return 2
	}

	if f.Description != "" {
		fmt.Printf("Fixture: %s\n\n", f.Description)
	}
	res, err := replay.RunFixture(context.Background(), f, sess)
	if err != nil {
		fmt.Fprintf(os.Stderr, "run fixture: %v\n", err)
		return 2
	}
	printSummary(res.Summary)
	printSums(res.Sums, f.ExpectedSums)

	if len(res.Mismatches) > 0 {
		fmt.Printf("\n%d spectrum sum(s) differ from the fixture\n", len(res.Mismatches))
		return 1
	}
	fmt.Println("\nAll spectrum sums match.")
	return 0
}

// #endregion fixture-mode

// #region output

func printSummary(s replay.Summary) {
	fmt.Printf("Events: %d | Increments: %d | Parameters defined: %d | Unknown records: %d\n",
		s.Events, s.Accepted, s.Defined, s.Unknown)

	types := make([]string, 0, len(s.Items))
	for name := range s.Items {
		types = append(types, name)
	}
	sort.Strings(types)
	for _, name := range types {
		fmt.Printf("  %-24s %8d\n", name, s.Items[name])
	}

	if len(s.Variables) > 0 {
		names := make([]string, 0, len(s.Variables))
		for name := range s.Variables {
			names = append(names, name)
		}
		sort.Strings(names)
		fmt.Println("Variables:")
		for _, name := range names {
			v := s.Variables[name]
			fmt.Printf("  %-24s %12g %s\n", name, v.Value, v.Units)
		}
	}
	fmt.Println()
}

func printSums(got, want map[string]float64) {
	names := make([]string, 0, len(got))
	for name := range got {
		names = append(names, name)
	}
	for name := range want {
		if _, ok := got[name]; !ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	if want == nil {
		fmt.Printf("%-24s  %12s\n", "Spectrum", "Sum")
		fmt.Printf("%-24s+-%12s\n", "------------------------", "------------")
		for _, name := range names {
			fmt.Printf("%-24s  %12g\n", name, got[name])
		}
		return
	}

	fmt.Printf("%-24s  %12s  %12s  %s\n", "Spectrum", "Sum", "Expected", "Match")
	fmt.Printf("%-24s+-%12s+-%12s+-%s\n", "------------------------", "------------", "------------", "-----")
	for _, name := range names {
		g, hasGot := got[name]
		w, hasWant := want[name]
		gotStr, wantStr, match := "-", "-", "-"
		if hasGot {
			gotStr = fmt.Sprintf("%g", g)
		}
		if hasWant {
			wantStr = fmt.Sprintf("%g", w)
			if hasGot && g == w {
				match = "ok"
			} else {
				match = "DIFF"
			}
		}
		fmt.Printf("%-24s  %12s  %12s  %s\n", name, gotStr, wantStr, match)
	}
}

// #endregion output
