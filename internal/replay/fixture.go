package replay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/danielpatrickdp/histogrammer/go-engine/internal/engine"
	"github.com/danielpatrickdp/histogrammer/go-engine/internal/ringitem"
	"github.com/danielpatrickdp/histogrammer/go-engine/internal/setup"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture: a setup,
// the records of a short run, and the spectrum sums the run must produce.
type Fixture struct {
	Description  string                         `json:"description"`
	Setup        setup.File                     `json:"setup"`
	Definitions  []ringitem.ParameterDefinition `json:"definitions"`
	Variables    []ringitem.Variable            `json:"variables,omitempty"`
	Events       []ringitem.ParameterData       `json:"events"`
	ExpectedSums map[string]float64             `json:"expected_sums"`
}

// Target is what a fixture is run against. *session.Session satisfies it.
type Target interface {
	setup.Target
	Sink
	ListSpectra() []engine.SpectrumInfo
}

// Mismatch is a spectrum whose sum differs from the fixture's expectation.
type Mismatch struct {
	Spectrum string
	Want     float64
	Got      float64
	Missing  bool
}

// FixtureResult is the outcome of RunFixture.
type FixtureResult struct {
	Summary    Summary
	Sums       map[string]float64
	Mismatches []Mismatch
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return &f, nil
}

// Save writes f as indented JSON.
func (f *Fixture) Save(path string) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal fixture: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write fixture %s: %w", path, err)
	}
	return nil
}

// Stream encodes the fixture's records as a ring-item stream: definitions
// first, then variables, then one data record per event.
func (f *Fixture) Stream() ([]byte, error) {
	var buf bytes.Buffer
	wr := ringitem.NewWriter(&buf)
	items := make([]*ringitem.Item, 0, len(f.Events)+2)
	if len(f.Definitions) > 0 {
		items = append(items, ringitem.EncodeParameterDefinitions(f.Definitions))
	}
	if len(f.Variables) > 0 {
		items = append(items, ringitem.EncodeVariableValues(f.Variables))
	}
	for _, ev := range f.Events {
		items = append(items, ringitem.EncodeParameterData(ev))
	}
	for _, it := range items {
		if err := wr.Write(it); err != nil {
			return nil, err
		}
	}
	if err := wr.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// #endregion fixture-loader

// #region fixture-run

// RunFixture applies the fixture's setup to t, replays its records and
// compares the resulting spectrum sums against the expectation.
func RunFixture(ctx context.Context, f *Fixture, t Target) (FixtureResult, error) {
	var res FixtureResult
	if err := f.Setup.Apply(t); err != nil {
		return res, fmt.Errorf("apply setup: %w", err)
	}
	stream, err := f.Stream()
	if err != nil {
		return res, fmt.Errorf("encode records: %w", err)
	}
	res.Summary, err = Replay(ctx, bytes.NewReader(stream), t)
	if err != nil {
		return res, err
	}

	res.Sums = make(map[string]float64)
	for _, info := range t.ListSpectra() {
		res.Sums[info.Name] = info.Sum
	}
	res.Mismatches = Compare(f.ExpectedSums, res.Sums)
	return res, nil
}

// Compare reports every expected spectrum whose sum differs, sorted by name.
func Compare(want, got map[string]float64) []Mismatch {
	names := make([]string, 0, len(want))
	for name := range want {
		names = append(names, name)
	}
	sort.Strings(names)

	var out []Mismatch
	for _, name := range names {
		g, ok := got[name]
		if !ok {
			out = append(out, Mismatch{Spectrum: name, Want: want[name], Missing: true})
			continue
		}
		if g != want[name] {
			out = append(out, Mismatch{Spectrum: name, Want: want[name], Got: g})
		}
	}
	return out
}

// #endregion fixture-run
