package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/danielpatrickdp/histogrammer/go-engine/internal/journal"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to histogrammer.db")
	last := flag.Int("last", 20, "show N most recent runs")
	run := flag.String("run", "", "show single run detail with its admin log")
	ops := flag.Int("ops", 50, "admin log rows to show in detail mode")
	jsonOut := flag.Bool("json", false, "output as JSON instead of table")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect --db path/to/histogrammer.db [--last N] [--run id|active] [--ops N] [--json]")
		os.Exit(2)
	}

	store, err := journal.NewStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	if *run != "" {
		err = runDetailMode(store, *run, *ops, *jsonOut)
	} else {
		err = runListMode(store, *last, *jsonOut)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region list-mode

type listRow struct {
	RunID      string  `json:"run_id"`
	Source     string  `json:"source"`
	StartedAt  string  `json:"started_at"`
	FinishedAt string  `json:"finished_at,omitempty"`
	Events     uint64  `json:"events"`
	Accepted   uint64  `json:"accepted"`
	Spectra    int     `json:"spectra"`
	Counts     float64 `json:"counts"`
}

func runListMode(store *journal.Store, last int, jsonOut bool) error {
	runs, err := store.ListRuns(last)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(os.Stderr, "no runs found")
		return nil
	}

	// Store returns newest first; reverse for chronological output.
	rows := make([]listRow, len(runs))
	for i, r := range runs {
		lr := listRow{
			RunID:     r.RunID,
			Source:    r.Source,
			StartedAt: formatTime(r.StartedAt),
			Events:    r.Stats.Events,
			Accepted:  r.Stats.Accepted,
			Spectra:   len(r.Stats.Spectra),
		}
		if !r.FinishedAt.IsZero() {
			lr.FinishedAt = formatTime(r.FinishedAt)
		}
		for _, c := range r.Stats.Spectra {
			lr.Counts += c
		}
		rows[len(runs)-1-i] = lr
	}

	if jsonOut {
		return printJSON(rows)
	}

	fmt.Printf("%-12s  %-16s  %10s  %10s  %7s  %12s  %-20s  %s\n",
		"Run", "Source", "Events", "Accepted", "Spectra", "Counts", "Started", "Finished")
	fmt.Printf("%-12s+-%-16s+-%10s+-%10s+-%7s+-%12s+-%-20s+-%s\n",
		"------------", "----------------", "----------", "----------", "-------", "------------",
		"--------------------", "--------------------")
	for _, r := range rows {
		finished := "open"
		if r.FinishedAt != "" {
			finished = r.FinishedAt
		}
		fmt.Printf("%-12s  %-16s  %10d  %10d  %7d  %12g  %-20s  %s\n",
			shortID(r.RunID), r.Source, r.Events, r.Accepted, r.Spectra, r.Counts, r.StartedAt, finished)
	}
	return nil
}

// #endregion list-mode

// #region detail-mode

type detailOutput struct {
	Run        listRow            `json:"run"`
	Items      map[string]uint64  `json:"items,omitempty"`
	Spectra    map[string]float64 `json:"spectra,omitempty"`
	Operations []operationRow     `json:"operations"`
}

type operationRow struct {
	Operation string          `json:"operation"`
	Target    string          `json:"target,omitempty"`
	Outcome   string          `json:"outcome"`
	Error     string          `json:"error,omitempty"`
	Detail    json.RawMessage `json:"detail,omitempty"`
	CreatedAt string          `json:"created_at"`
}

func runDetailMode(store *journal.Store, runID string, limit int, jsonOut bool) error {
	var (
		r   journal.Run
		err error
	)
	if runID == "active" {
		r, err = store.ActiveRun()
	} else {
		r, err = store.GetRun(runID)
	}
	if err != nil {
		return fmt.Errorf("get run %s: %w", runID, err)
	}

	entries, err := store.Operations(r.RunID, limit)
	if err != nil {
		return fmt.Errorf("admin log: %w", err)
	}

	out := detailOutput{
		Run: listRow{
			RunID:     r.RunID,
			Source:    r.Source,
			StartedAt: formatTime(r.StartedAt),
			Events:    r.Stats.Events,
			Accepted:  r.Stats.Accepted,
			Spectra:   len(r.Stats.Spectra),
		},
		Items:      r.Stats.Items,
		Spectra:    r.Stats.Spectra,
		Operations: make([]operationRow, len(entries)),
	}
	if !r.FinishedAt.IsZero() {
		out.Run.FinishedAt = formatTime(r.FinishedAt)
	}
	for i, e := range entries {
		row := operationRow{
			Operation: e.Operation,
			Target:    e.Target,
			Outcome:   e.Outcome,
			Error:     e.Error,
			CreatedAt: formatTime(e.CreatedAt),
		}
		if e.DetailJSON != "" && json.Valid([]byte(e.DetailJSON)) {
			row.Detail = json.RawMessage(e.DetailJSON)
		}
		out.Operations[i] = row
	}

	if jsonOut {
		return printJSON(out)
	}

	fmt.Printf("Run:      %s\n", out.Run.RunID)
	fmt.Printf("Source:   %s\n", out.Run.Source)
	fmt.Printf("Started:  %s\n", out.Run.StartedAt)
	if out.Run.FinishedAt != "" {
		fmt.Printf("Finished: %s\n", out.Run.FinishedAt)
	} else {
		fmt.Println("Finished: (open)")
	}
	fmt.Printf("Events:   %d (%d spectrum increments)\n", out.Run.Events, out.Run.Accepted)

	if len(out.Items) > 0 {
		fmt.Println("\nRecords:")
		for _, name := range sortedKeys(out.Items) {
			fmt.Printf("  %-24s %10d\n", name, out.Items[name])
		}
	}
	if len(out.Spectra) > 0 {
		fmt.Println("\nSpectra:")
		for _, name := range sortedKeys(out.Spectra) {
			fmt.Printf("  %-24s %12g\n", name, out.Spectra[name])
		}
	}

	fmt.Printf("\nAdmin log (%d):\n", len(out.Operations))
	for _, op := range out.Operations {
		line := fmt.Sprintf("  %s  %-18s %-20s %s", op.CreatedAt, op.Operation, op.Target, op.Outcome)
		if op.Error != "" {
			line += ": " + op.Error
		}
		fmt.Println(line)
	}
	return nil
}

// #endregion detail-mode

// #region helpers

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func formatTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05Z")
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// #endregion helpers
