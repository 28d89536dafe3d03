package session

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/danielpatrickdp/histogrammer/go-engine/internal/conditions"
	"github.com/danielpatrickdp/histogrammer/go-engine/internal/engine"
	"github.com/danielpatrickdp/histogrammer/go-engine/internal/journal"
	"github.com/danielpatrickdp/histogrammer/go-engine/internal/metrics"
	"github.com/danielpatrickdp/histogrammer/go-engine/internal/parameters"
)

// #region config
// Config identifies the run a session records.
type Config struct {
	Source string // written to the run ledger
}

// DefaultConfig returns the config used by the analyzer daemon.
func DefaultConfig() Config {
	return Config{Source: "histod"}
}

// #endregion config

// #region session
// Session serializes access to an engine so administrative operations are
// exclusive with event processing, and records every operation.
// Journal and metrics are both optional.
type Session struct {
	mu      sync.Mutex
	en      *engine.Engine
	store   *journal.Store
	metrics *metrics.Metrics

	runID    string
	accepted uint64
	items    map[string]uint64
	closed   bool
}

// New starts a session over a fresh engine. With a store the run is opened
// in the ledger and the ledger's id is used; otherwise a local id is made.
func New(cfg Config, store *journal.Store, m *metrics.Metrics) (*Session, error) {
	s := &Session{
		en:      engine.New(),
		store:   store,
		metrics: m,
		items:   make(map[string]uint64),
	}
	if store != nil {
		run, err := store.StartRun(cfg.Source)
		if err != nil {
			return nil, fmt.Errorf("start run: %w", err)
		}
		s.runID = run.RunID
	} else {
		s.runID = uuid.New().String()
	}
	return s, nil
}

// RunID identifies this session in the ledger.
func (s *Session) RunID() string {
	return s.runID
}

// #endregion session

// #region admin
func (s *Session) DefineParameter(def engine.ParameterDef) (uint32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, err := s.en.DefineParameter(def)
	s.record("define_parameter", def.Name, def, err)
	return id, err
}

func (s *Session) UpdateParameter(def engine.ParameterDef) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.en.UpdateParameter(def)
	s.record("update_parameter", def.Name, def, err)
	return err
}

func (s *Session) DefineCondition(def engine.ConditionDef) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	replaced, err := s.en.DefineCondition(def)
	s.record("define_condition", def.Name, def, err)
	return replaced, err
}

func (s *Session) ExtendCondition(name string, deps ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.en.ExtendCondition(name, deps...)
	s.record("extend_condition", name, deps, err)
	return err
}

func (s *Session) DeleteCondition(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.en.DeleteCondition(name)
	s.record("delete_condition", name, nil, err)
	return err
}

func (s *Session) CreateSpectrum(def engine.SpectrumDef) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.en.CreateSpectrum(def)
	s.record("create_spectrum", def.Name, def, err)
	return err
}

func (s *Session) DeleteSpectrum(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.en.DeleteSpectrum(name)
	s.record("delete_spectrum", name, nil, err)
	return err
}

func (s *Session) ApplyGate(spectrum, condition string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.en.ApplyGate(spectrum, condition)
	s.record("apply_gate", spectrum, map[string]string{"condition": condition}, err)
	return err
}

func (s *Session) Ungate(spectrum string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.en.Ungate(spectrum)
	s.record("ungate", spectrum, nil, err)
	return err
}

func (s *Session) ClearSpectra(names ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.en.ClearSpectra(names...)
	s.record("clear_spectra", "", names, err)
	return err
}

// record writes the operation to the journal and metrics. Journal failures
// are logged, never returned: the operation itself already happened.
func (s *Session) record(op, target string, detail any, opErr error) {
	s.metrics.AdminOperation(op, opErr)
	s.metrics.DictionarySizes(s.en.Parameters().Len(), s.en.Conditions().Len(), s.en.Spectra().Len())
	if s.store == nil {
		return
	}
	entry := journal.OperationEntry{
		RunID:     s.runID,
		Operation: op,
		Target:    target,
		Outcome:   "ok",
	}
	if detail != nil {
		if bs, err := json.Marshal(detail); err == nil {
			entry.DetailJSON = string(bs)
		}
	}
	if opErr != nil {
		entry.Outcome = "error"
		entry.Error = opErr.Error()
	}
	if err := journal.LogOperation(s.store.DB(), entry); err != nil {
		log.Printf("[session] journal %s: %v", op, err)
	}
}

// #endregion admin

// #region listings
func (s *Session) ListParameters() []engine.ParameterInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.en.ListParameters()
}

func (s *Session) ListConditions() []conditions.Description {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.en.ListConditions()
}

func (s *Session) ListSpectra() []engine.SpectrumInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.en.ListSpectra()
}

func (s *Session) Contents(name string) (engine.Contents, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.en.Contents(name)
}

func (s *Session) EventsProcessed() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.en.EventsProcessed()
}

// #endregion listings

// #region processing
// ProcessEvent dispatches one event.
func (s *Session) ProcessEvent(e parameters.Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	start := time.Now()
	n := s.en.ProcessEvent(e)
	s.accepted += uint64(n)
	s.metrics.Event(n, time.Since(start))
	return n
}

// MapRecordParameters seeds parameters from a definition record.
func (s *Session) MapRecordParameters(defs []engine.RecordParameter) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	added, err := s.en.MapRecordParameters(defs)
	s.record("map_record_parameters", "", map[string]int{"definitions": len(defs), "added": added}, err)
	return added, err
}

// ProcessRecordEvent translates and dispatches one data record.
func (s *Session) ProcessRecordEvent(raw []parameters.EventParameter) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	start := time.Now()
	n := s.en.ProcessRecordEvent(raw)
	s.accepted += uint64(n)
	s.metrics.Event(n, time.Since(start))
	return n
}

// CountItem tallies a record read from a stream, by type name.
func (s *Session) CountItem(typeName string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[typeName]++
	s.metrics.Record(typeName)
}

// #endregion processing

// #region close
// Stats snapshots the counters that Close stores in the ledger.
func (s *Session) Stats() journal.RunStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statsLocked()
}

func (s *Session) statsLocked() journal.RunStats {
	st := journal.RunStats{
		Events:   s.en.EventsProcessed(),
		Accepted: s.accepted,
		Items:    make(map[string]uint64, len(s.items)),
		Spectra:  make(map[string]float64),
	}
	for k, v := range s.items {
		st.Items[k] = v
	}
	for _, info := range s.en.ListSpectra() {
		st.Spectra[info.Name] = info.Sum
	}
	return st
}

// Close finishes the run in the ledger. It is safe to call more than once.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if s.store == nil {
		return nil
	}
	return s.store.FinishRun(s.runID, s.statsLocked())
}

// #endregion close
