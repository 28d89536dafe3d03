package journal

import "time"

// #region run
// Run is one analysis session: from engine start (or replay start) until
// the session closes.
type Run struct {
	RunID      string
	Source     string // "histod" | "replay:<path>" | ...
	StartedAt  time.Time
	FinishedAt time.Time // zero while the run is open
	Stats      RunStats
}

// RunStats is the counters recorded when a run finishes.
type RunStats struct {
	Events   uint64             `json:"events"`
	Accepted uint64             `json:"accepted"`
	Items    map[string]uint64  `json:"items,omitempty"`   // record counts by type name
	Spectra  map[string]float64 `json:"spectra,omitempty"` // spectrum name -> total counts
}

// #endregion run

// #region operation-entry
// OperationEntry is a single row in the admin_log table.
type OperationEntry struct {
	RunID      string
	Operation  string // "define_parameter" | "define_condition" | "create_spectrum" | ...
	Target     string // entity name the operation acted on
	DetailJSON string
	Outcome    string // "ok" | "error"
	Error      string
	CreatedAt  time.Time
}

// #endregion operation-entry
