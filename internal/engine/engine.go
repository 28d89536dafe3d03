package engine

import (
	"errors"
	"fmt"

	"github.com/danielpatrickdp/histogrammer/go-engine/internal/conditions"
	"github.com/danielpatrickdp/histogrammer/go-engine/internal/parameters"
	"github.com/danielpatrickdp/histogrammer/go-engine/internal/spectra"
)

// #region engine
// Engine owns the parameter, condition and spectrum dictionaries and runs
// the per-event dispatch. It is not safe for concurrent use; callers that
// mix setup with processing serialize access (see internal/session).
type Engine struct {
	params *parameters.Dictionary
	conds  *conditions.Dictionary
	specs  *spectra.Dictionary
	flat   *parameters.FlatEvent

	events    uint64
	recordIDs map[uint32]uint32
	scratch   parameters.Event
}

// New returns an empty engine.
func New() *Engine {
	return &Engine{
		params:    parameters.NewDictionary(),
		conds:     conditions.NewDictionary(),
		specs:     spectra.NewDictionary(),
		flat:      parameters.NewFlatEvent(0),
		recordIDs: make(map[uint32]uint32),
	}
}

// Parameters, Conditions and Spectra expose the dictionaries for callers
// that build objects directly.
func (en *Engine) Parameters() *parameters.Dictionary { return en.params }
func (en *Engine) Conditions() *conditions.Dictionary { return en.conds }
func (en *Engine) Spectra() *spectra.Dictionary       { return en.specs }

// #endregion engine

// #region dispatch
// ProcessEvent flattens e, resets every condition cache and offers the
// event to every spectrum. It returns how many spectra accepted the event.
// Ids that no registered parameter carries are dropped.
func (en *Engine) ProcessEvent(e parameters.Event) int {
	en.flat.Reserve(en.params.MaxID())
	en.flat.Load(e)
	en.conds.InvalidateAll()
	accepted := 0
	en.specs.Each(func(s spectra.Spectrum) {
		if spectra.HandleEvent(s, en.flat) {
			accepted++
		}
	})
	en.events++
	return accepted
}

// EventsProcessed counts ProcessEvent calls since creation.
func (en *Engine) EventsProcessed() uint64 {
	return en.events
}

// #endregion dispatch

// #region parameters
// DefineParameter registers a parameter and applies its metadata.
func (en *Engine) DefineParameter(def ParameterDef) (uint32, error) {
	if err := checkMetadata(def); err != nil {
		return 0, err
	}
	id, err := en.params.Add(def.Name)
	if err != nil {
		return 0, err
	}
	p, _ := en.params.LookupID(id)
	applyMetadata(p, def)
	return id, nil
}

// UpdateParameter replaces the metadata of an existing parameter. Existing
// spectra keep the axes they were built with.
func (en *Engine) UpdateParameter(def ParameterDef) error {
	p, ok := en.params.Lookup(def.Name)
	if !ok {
		return &spectra.UnknownParameterError{Name: def.Name}
	}
	if err := checkMetadata(def); err != nil {
		return err
	}
	applyMetadata(p, def)
	return nil
}

// checkMetadata rejects a range given by only one of its limits.
func checkMetadata(def ParameterDef) error {
	if (def.Low == nil) != (def.High == nil) {
		return &InvalidDefinitionError{Name: def.Name, Reason: "low and high must be given together"}
	}
	return nil
}

func applyMetadata(p *parameters.Parameter, def ParameterDef) {
	if def.Low != nil && def.High != nil {
		p.SetLimits(*def.Low, *def.High)
	}
	if def.Bins != nil {
		p.SetBins(*def.Bins)
	}
	if def.Description != "" {
		p.SetDescription(def.Description)
	}
}

// ListParameters returns every parameter in id order.
func (en *Engine) ListParameters() []ParameterInfo {
	all := en.params.All()
	out := make([]ParameterInfo, len(all))
	for i, p := range all {
		low, high := p.Limits()
		out[i] = ParameterInfo{
			ID:          p.ID,
			Name:        p.Name,
			Low:         low,
			High:        high,
			Bins:        p.Bins(),
			Description: p.Description,
		}
	}
	return out
}

// #endregion parameters

// #region conditions
// DefineCondition creates or redefines the condition named def.Name.
// Redefinition replaces the binding only: spectra and compounds holding the
// previous condition see it as deleted. It reports whether a previous
// binding was replaced.
func (en *Engine) DefineCondition(def ConditionDef) (bool, error) {
	c, err := en.buildCondition(def)
	if err != nil {
		return false, err
	}
	_, prev := en.conds.Insert(def.Name, c)
	return prev != nil, nil
}

// ExtendCondition adds dependencies to an existing And or Or.
func (en *Engine) ExtendCondition(name string, deps ...string) error {
	h, ok := en.conds.Acquire(name)
	if !ok {
		return &NoSuchConditionError{Name: name}
	}
	defer h.Release()
	comp, ok := h.Condition().(conditions.Compound)
	if !ok {
		return &InvalidDefinitionError{Name: name, Reason: "not a compound condition"}
	}
	if _, isNot := comp.(*conditions.Not); isNot {
		return &InvalidDefinitionError{Name: name, Reason: "not takes a single dependency"}
	}
	handles, err := en.dependencyHandles(deps)
	if err != nil {
		return err
	}
	defer releaseAll(handles)
	for i, dh := range handles {
		if err := comp.AddCondition(dh); err != nil {
			var ce *conditions.CycleError
			if errors.As(err, &ce) {
				ce.Dependency = deps[i]
			}
			return fmt.Errorf("extend %s: %w", name, err)
		}
	}
	return nil
}

// DeleteCondition unbinds name. Gates and compounds that used it become false.
func (en *Engine) DeleteCondition(name string) error {
	if !en.conds.Remove(name) {
		return &NoSuchConditionError{Name: name}
	}
	return nil
}

// ListConditions describes every bound condition, sorted by name.
func (en *Engine) ListConditions() []conditions.Description {
	names := en.conds.Names()
	out := make([]conditions.Description, 0, len(names))
	for _, n := range names {
		if d, ok := en.conds.Describe(n); ok {
			out = append(out, d)
		}
	}
	return out
}

func (en *Engine) buildCondition(def ConditionDef) (conditions.Condition, error) {
	switch def.Kind {
	case conditions.KindTrue:
		return &conditions.True{}, nil
	case conditions.KindFalse:
		return &conditions.False{}, nil
	case conditions.KindCut:
		ids, err := en.conditionParameters(def, 1)
		if err != nil {
			return nil, err
		}
		return conditions.NewCut(ids[0], def.Low, def.High), nil
	case conditions.KindContour, conditions.KindBand:
		ids, err := en.conditionParameters(def, 2)
		if err != nil {
			return nil, err
		}
		var c conditions.Condition
		if def.Kind == conditions.KindContour {
			c, err = conditions.NewContour(ids[0], ids[1], def.Points)
		} else {
			c, err = conditions.NewBand(ids[0], ids[1], def.Points)
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", def.Name, err)
		}
		return c, nil
	case conditions.KindNot:
		if len(def.Dependencies) != 1 {
			return nil, &InvalidDefinitionError{Name: def.Name, Reason: "not takes exactly one dependency"}
		}
		hs, err := en.dependencyHandles(def.Dependencies)
		if err != nil {
			return nil, err
		}
		defer releaseAll(hs)
		return conditions.NewNot(hs[0]), nil
	case conditions.KindAnd, conditions.KindOr:
		hs, err := en.dependencyHandles(def.Dependencies)
		if err != nil {
			return nil, err
		}
		defer releaseAll(hs)
		var comp conditions.Compound
		if def.Kind == conditions.KindAnd {
			comp = conditions.NewAnd()
		} else {
			comp = conditions.NewOr()
		}
		for _, h := range hs {
			if err := comp.AddCondition(h); err != nil {
				return nil, fmt.Errorf("%s: %w", def.Name, err)
			}
		}
		return comp, nil
	}
	return nil, &InvalidDefinitionError{Name: def.Name, Reason: fmt.Sprintf("unknown condition kind %q", def.Kind)}
}

func (en *Engine) conditionParameters(def ConditionDef, n int) ([]uint32, error) {
	if len(def.Parameters) != n {
		return nil, &InvalidDefinitionError{
			Name:   def.Name,
			Reason: fmt.Sprintf("%s takes %d parameter(s), got %d", def.Kind, n, len(def.Parameters)),
		}
	}
	ids := make([]uint32, n)
	for i, pn := range def.Parameters {
		p, ok := en.params.Lookup(pn)
		if !ok {
			return nil, &spectra.UnknownParameterError{Name: pn}
		}
		ids[i] = p.ID
	}
	return ids, nil
}

// dependencyHandles acquires the named conditions. The caller releases them
// with releaseAll once the compound holds its weak references.
func (en *Engine) dependencyHandles(names []string) ([]*conditions.Handle, error) {
	hs := make([]*conditions.Handle, 0, len(names))
	for _, n := range names {
		h, ok := en.conds.Acquire(n)
		if !ok {
			releaseAll(hs)
			return nil, &spectra.NoSuchGateError{Name: n}
		}
		hs = append(hs, h)
	}
	return hs, nil
}

func releaseAll(hs []*conditions.Handle) {
	for _, h := range hs {
		h.Release()
	}
}

// #endregion conditions

// #region spectra
// CreateSpectrum builds a spectrum from def and registers it. A non-empty
// def.Gate is applied after construction; a failed gate leaves nothing
// registered.
func (en *Engine) CreateSpectrum(def SpectrumDef) error {
	if _, exists := en.specs.Get(def.Name); exists {
		return &spectra.DuplicateSpectrumError{Name: def.Name}
	}
	s, err := en.buildSpectrum(def)
	if err != nil {
		return err
	}
	if def.Gate != "" {
		if err := s.ApplyGate(def.Gate, en.conds); err != nil {
			return err
		}
	}
	return en.specs.Add(s)
}

// DeleteSpectrum removes a spectrum and its contents.
func (en *Engine) DeleteSpectrum(name string) error {
	if !en.specs.Remove(name) {
		return &NoSuchSpectrumError{Name: name}
	}
	return nil
}

// ApplyGate gates spectrum on condition.
func (en *Engine) ApplyGate(spectrum, condition string) error {
	s, ok := en.specs.Get(spectrum)
	if !ok {
		return &NoSuchSpectrumError{Name: spectrum}
	}
	return s.ApplyGate(condition, en.conds)
}

// Ungate removes the gate from spectrum.
func (en *Engine) Ungate(spectrum string) error {
	s, ok := en.specs.Get(spectrum)
	if !ok {
		return &NoSuchSpectrumError{Name: spectrum}
	}
	s.Ungate()
	return nil
}

// ClearSpectra zeroes the named spectra, or every spectrum when no names
// are given. Names are checked before anything is cleared.
func (en *Engine) ClearSpectra(names ...string) error {
	if len(names) == 0 {
		en.specs.ClearAll()
		return nil
	}
	targets := make([]spectra.Spectrum, len(names))
	for i, n := range names {
		s, ok := en.specs.Get(n)
		if !ok {
			return &NoSuchSpectrumError{Name: n}
		}
		targets[i] = s
	}
	for _, s := range targets {
		s.Clear()
	}
	return nil
}

// Spectrum returns a spectrum by name.
func (en *Engine) Spectrum(name string) (spectra.Spectrum, bool) {
	return en.specs.Get(name)
}

// ListSpectra describes every spectrum, sorted by name.
func (en *Engine) ListSpectra() []SpectrumInfo {
	names := en.specs.Names()
	out := make([]SpectrumInfo, 0, len(names))
	for _, n := range names {
		s, _ := en.specs.Get(n)
		info := SpectrumInfo{Name: n, Kind: s.Kind(), Parameters: s.Parameters()}
		info.Gate, _ = s.GateName()
		if h, ok := s.Histogram1D(); ok {
			info.X = h.Axis()
			info.Sum = h.Sum()
		} else if h, ok := s.Histogram2D(); ok {
			x, y := h.Axes()
			info.X, info.Y = x, &y
			info.Sum = h.Sum()
		}
		out = append(out, info)
	}
	return out
}

// Contents copies the channels of a spectrum.
func (en *Engine) Contents(name string) (Contents, error) {
	s, ok := en.specs.Get(name)
	if !ok {
		return Contents{}, &NoSuchSpectrumError{Name: name}
	}
	c := Contents{Name: name}
	if h, ok := s.Histogram1D(); ok {
		c.X = h.Axis()
		c.Counts = h.Counts()
	} else if h, ok := s.Histogram2D(); ok {
		x, y := h.Axes()
		c.X, c.Y = x, &y
		c.Counts = h.Counts()
	}
	return c, nil
}

func (en *Engine) buildSpectrum(def SpectrumDef) (spectra.Spectrum, error) {
	xov, yov := def.X.override(), def.Y.override()
	switch def.Kind {
	case spectra.KindOneD:
		if len(def.Parameters) != 1 {
			return nil, &InvalidDefinitionError{Name: def.Name, Reason: "1d takes exactly one parameter"}
		}
		return spectra.NewOneD(def.Name, def.Parameters[0], en.params, xov)
	case spectra.KindTwoD:
		if len(def.Parameters) != 2 {
			return nil, &InvalidDefinitionError{Name: def.Name, Reason: "2d takes exactly two parameters"}
		}
		return spectra.NewTwoD(def.Name, def.Parameters[0], def.Parameters[1], en.params, xov, yov)
	case spectra.KindSummary:
		return spectra.NewSummary(def.Name, def.Parameters, en.params, yov)
	case spectra.KindPGamma:
		return spectra.NewPGamma(def.Name, def.XParameters, def.YParameters, en.params, xov, yov)
	case spectra.KindMulti1D:
		return spectra.NewMulti1D(def.Name, def.Parameters, en.params, xov)
	case spectra.KindMulti2D:
		return spectra.NewMulti2D(def.Name, def.Parameters, en.params, xov, yov)
	case spectra.KindTwoDSum:
		return spectra.NewTwoDSum(def.Name, def.XParameters, def.YParameters, en.params, xov, yov)
	}
	return nil, &InvalidDefinitionError{Name: def.Name, Reason: fmt.Sprintf("unknown spectrum kind %q", def.Kind)}
}

// #endregion spectra
