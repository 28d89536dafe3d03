package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielpatrickdp/histogrammer/go-engine/internal/conditions"
	"github.com/danielpatrickdp/histogrammer/go-engine/internal/parameters"
	"github.com/danielpatrickdp/histogrammer/go-engine/internal/spectra"
)

// #region helpers
type countingTrue struct {
	calls int
}

func (c *countingTrue) Evaluate(*parameters.FlatEvent) bool { c.calls++; return true }
func (c *countingTrue) CachedValue() (bool, bool)           { return false, false }
func (c *countingTrue) InvalidateCache()                    {}

func f64(v float64) *float64 { return &v }
func u32(v uint32) *uint32   { return &v }

func newEngine(t *testing.T, names ...string) *Engine {
	t.Helper()
	en := New()
	for _, n := range names {
		_, err := en.DefineParameter(ParameterDef{Name: n, Low: f64(0), High: f64(1024), Bins: u32(1024)})
		require.NoError(t, err)
	}
	return en
}

func event(pairs ...float64) parameters.Event {
	var e parameters.Event
	for i := 0; i+1 < len(pairs); i += 2 {
		e.Push(parameters.EventParameter{ID: uint32(pairs[i]), Value: pairs[i+1]})
	}
	return e
}

func sum(t *testing.T, en *Engine, name string) float64 {
	t.Helper()
	for _, s := range en.ListSpectra() {
		if s.Name == name {
			return s.Sum
		}
	}
	t.Fatalf("spectrum %s not listed", name)
	return 0
}

// #endregion helpers

// #region dispatch-tests
func TestProcessEvent_OneD(t *testing.T) {
	en := newEngine(t, "p")
	require.NoError(t, en.CreateSpectrum(SpectrumDef{Name: "s1", Kind: spectra.KindOneD, Parameters: []string{"p"}}))

	for _, v := range []float64{10, 10, 20, 1030} {
		en.ProcessEvent(event(1, v))
	}

	s, ok := en.Spectrum("s1")
	require.True(t, ok)
	h, _ := s.Histogram1D()
	assert.Equal(t, 2.0, h.At(10))
	assert.Equal(t, 1.0, h.At(20))
	assert.Equal(t, 1.0, h.Get(h.Axis().Overflow()))
	assert.Equal(t, uint64(4), en.EventsProcessed())
}

func TestProcessEvent_ShortCircuitAnd(t *testing.T) {
	en := New()
	spy := &countingTrue{}
	en.Conditions().Insert("T", spy)
	_, err := en.DefineCondition(ConditionDef{Name: "F", Kind: conditions.KindFalse})
	require.NoError(t, err)
	_, err = en.DefineCondition(ConditionDef{Name: "C", Kind: conditions.KindAnd, Dependencies: []string{"F", "T"}})
	require.NoError(t, err)

	_, err = en.DefineParameter(ParameterDef{Name: "p", Low: f64(0), High: f64(10), Bins: u32(10)})
	require.NoError(t, err)
	require.NoError(t, en.CreateSpectrum(SpectrumDef{Name: "s", Kind: spectra.KindOneD, Parameters: []string{"p"}, Gate: "C"}))

	accepted := en.ProcessEvent(event(1, 5))
	assert.Zero(t, accepted)
	assert.Zero(t, spy.calls)
	assert.Zero(t, sum(t, en, "s"))
}

func TestProcessEvent_CacheResetBetweenEvents(t *testing.T) {
	en := newEngine(t, "p")
	_, err := en.DefineCondition(ConditionDef{Name: "window", Kind: conditions.KindCut, Parameters: []string{"p"}, Low: 10, High: 20})
	require.NoError(t, err)
	require.NoError(t, en.CreateSpectrum(SpectrumDef{Name: "a", Kind: spectra.KindOneD, Parameters: []string{"p"}, Gate: "window"}))
	require.NoError(t, en.CreateSpectrum(SpectrumDef{Name: "b", Kind: spectra.KindOneD, Parameters: []string{"p"}, Gate: "window"}))

	en.ProcessEvent(event(1, 15))
	en.ProcessEvent(event(1, 50))
	en.ProcessEvent(event(1, 12))

	assert.Equal(t, 2.0, sum(t, en, "a"))
	assert.Equal(t, 2.0, sum(t, en, "b"))
}

// #endregion dispatch-tests

// #region condition-tests
func TestDefineCondition_RedefineBreaksGates(t *testing.T) {
	en := newEngine(t, "p")
	_, err := en.DefineCondition(ConditionDef{Name: "c", Kind: conditions.KindTrue})
	require.NoError(t, err)
	_, err = en.DefineCondition(ConditionDef{Name: "nc", Kind: conditions.KindNot, Dependencies: []string{"c"}})
	require.NoError(t, err)
	require.NoError(t, en.CreateSpectrum(SpectrumDef{Name: "s", Kind: spectra.KindOneD, Parameters: []string{"p"}, Gate: "nc"}))

	replaced, err := en.DefineCondition(ConditionDef{Name: "c", Kind: conditions.KindFalse})
	require.NoError(t, err)
	assert.True(t, replaced)

	en.ProcessEvent(event(1, 5))
	assert.Zero(t, sum(t, en, "s"), "Not over a deleted condition is false")

	// Re-applying the gate by name picks up the current binding.
	_, err = en.DefineCondition(ConditionDef{Name: "nc", Kind: conditions.KindNot, Dependencies: []string{"c"}})
	require.NoError(t, err)
	require.NoError(t, en.ApplyGate("s", "nc"))
	en.ProcessEvent(event(1, 5))
	assert.Equal(t, 1.0, sum(t, en, "s"))
}

func TestDefineCondition_Errors(t *testing.T) {
	en := newEngine(t, "x", "y")

	_, err := en.DefineCondition(ConditionDef{Name: "a", Kind: conditions.KindAnd, Dependencies: []string{"missing"}})
	var nsg *spectra.NoSuchGateError
	require.ErrorAs(t, err, &nsg)
	assert.Equal(t, "missing", nsg.Name)

	_, err = en.DefineCondition(ConditionDef{Name: "c", Kind: conditions.KindCut, Parameters: []string{"ghost"}})
	var unknown *spectra.UnknownParameterError
	require.ErrorAs(t, err, &unknown)

	_, err = en.DefineCondition(ConditionDef{Name: "c", Kind: conditions.KindCut, Parameters: []string{"x", "y"}})
	var invalid *InvalidDefinitionError
	require.ErrorAs(t, err, &invalid)

	_, err = en.DefineCondition(ConditionDef{Name: "k", Kind: conditions.KindContour, Parameters: []string{"x", "y"},
		Points: []conditions.Point{{X: 0, Y: 0}, {X: 1, Y: 1}}})
	require.ErrorIs(t, err, conditions.ErrTooFewPoints)

	_, err = en.DefineCondition(ConditionDef{Name: "z", Kind: "slice"})
	require.ErrorAs(t, err, &invalid)
	assert.Empty(t, en.ListConditions())
}

func TestExtendCondition(t *testing.T) {
	en := New()
	for _, def := range []ConditionDef{
		{Name: "t", Kind: conditions.KindTrue},
		{Name: "f", Kind: conditions.KindFalse},
		{Name: "any", Kind: conditions.KindOr},
		{Name: "all", Kind: conditions.KindAnd, Dependencies: []string{"any"}},
	} {
		_, err := en.DefineCondition(def)
		require.NoError(t, err)
	}

	require.NoError(t, en.ExtendCondition("any", "f", "t"))
	c, _ := en.Conditions().Lookup("all")
	assert.True(t, conditions.Check(c.Condition(), parameters.NewFlatEvent(0)))

	err := en.ExtendCondition("any", "all")
	var ce *conditions.CycleError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "all", ce.Dependency)

	var invalid *InvalidDefinitionError
	require.ErrorAs(t, en.ExtendCondition("t", "f"), &invalid)
	var nsc *NoSuchConditionError
	require.ErrorAs(t, en.ExtendCondition("nope", "f"), &nsc)
}

func TestAcquiredConditionOutlivesRedefinition(t *testing.T) {
	en := newEngine(t, "p")
	_, err := en.DefineCondition(ConditionDef{Name: "w", Kind: conditions.KindCut, Parameters: []string{"p"}, Low: 10, High: 20})
	require.NoError(t, err)

	h, ok := en.Conditions().Acquire("w")
	require.True(t, ok)
	_, err = en.DefineCondition(ConditionDef{Name: "w", Kind: conditions.KindTrue})
	require.NoError(t, err)
	require.True(t, h.Alive())

	en.ProcessEvent(event(1, 15))
	assert.True(t, h.Condition().Evaluate(en.flat))
	en.ProcessEvent(event(1, 50))
	_, cached := h.Condition().CachedValue()
	assert.False(t, cached, "acquired condition keeps its cache reset per event")

	h.Release()
	assert.False(t, h.Alive())
	_, ok = en.Conditions().Acquire("nope")
	assert.False(t, ok)
}

func TestCompoundDefinitionReleasesDependencies(t *testing.T) {
	en := newEngine(t, "p")
	_, err := en.DefineCondition(ConditionDef{Name: "a", Kind: conditions.KindTrue})
	require.NoError(t, err)
	_, err = en.DefineCondition(ConditionDef{Name: "b", Kind: conditions.KindFalse})
	require.NoError(t, err)
	_, err = en.DefineCondition(ConditionDef{Name: "any", Kind: conditions.KindOr, Dependencies: []string{"a"}})
	require.NoError(t, err)
	require.NoError(t, en.ExtendCondition("any", "b"))
	_, err = en.DefineCondition(ConditionDef{Name: "na", Kind: conditions.KindNot, Dependencies: []string{"a"}})
	require.NoError(t, err)
	// A failed definition drops what it acquired before the missing name.
	_, err = en.DefineCondition(ConditionDef{Name: "bad", Kind: conditions.KindAnd, Dependencies: []string{"b", "missing"}})
	require.Error(t, err)

	a, _ := en.Conditions().Lookup("a")
	b, _ := en.Conditions().Lookup("b")
	require.NoError(t, en.DeleteCondition("a"))
	require.NoError(t, en.DeleteCondition("b"))
	assert.False(t, a.Alive())
	assert.False(t, b.Alive())
}

func TestListConditions(t *testing.T) {
	en := newEngine(t, "x")
	_, err := en.DefineCondition(ConditionDef{Name: "cut", Kind: conditions.KindCut, Parameters: []string{"x"}, Low: 1, High: 2})
	require.NoError(t, err)
	_, err = en.DefineCondition(ConditionDef{Name: "neg", Kind: conditions.KindNot, Dependencies: []string{"cut"}})
	require.NoError(t, err)

	list := en.ListConditions()
	require.Len(t, list, 2)
	assert.Equal(t, "cut", list[0].Name)
	assert.Equal(t, conditions.KindCut, list[0].Kind)
	assert.Equal(t, []string{"cut"}, list[1].Dependencies)

	require.NoError(t, en.DeleteCondition("cut"))
	list = en.ListConditions()
	require.Len(t, list, 1)
	assert.Equal(t, []string{""}, list[0].Dependencies)

	var nsc *NoSuchConditionError
	assert.ErrorAs(t, en.DeleteCondition("cut"), &nsc)
}

// #endregion condition-tests

// #region spectrum-tests
func TestCreateSpectrum_Errors(t *testing.T) {
	en := newEngine(t, "p")
	require.NoError(t, en.CreateSpectrum(SpectrumDef{Name: "s", Kind: spectra.KindOneD, Parameters: []string{"p"}}))

	var dup *spectra.DuplicateSpectrumError
	assert.ErrorAs(t, en.CreateSpectrum(SpectrumDef{Name: "s", Kind: spectra.KindOneD, Parameters: []string{"p"}}), &dup)

	var nsg *spectra.NoSuchGateError
	assert.ErrorAs(t, en.CreateSpectrum(SpectrumDef{Name: "g", Kind: spectra.KindOneD, Parameters: []string{"p"}, Gate: "none"}), &nsg)
	_, exists := en.Spectrum("g")
	assert.False(t, exists)

	var invalid *InvalidDefinitionError
	assert.ErrorAs(t, en.CreateSpectrum(SpectrumDef{Name: "t", Kind: spectra.KindTwoD, Parameters: []string{"p"}}), &invalid)
	assert.ErrorAs(t, en.CreateSpectrum(SpectrumDef{Name: "u", Kind: "cube"}), &invalid)

	var unknown *spectra.UnknownParameterError
	assert.ErrorAs(t, en.CreateSpectrum(SpectrumDef{Name: "v", Kind: spectra.KindSummary, Parameters: []string{"p", "q"}}), &unknown)
}

func TestCreateSpectrum_AxisOverrides(t *testing.T) {
	en := newEngine(t, "a", "b")
	require.NoError(t, en.CreateSpectrum(SpectrumDef{
		Name: "pg", Kind: spectra.KindPGamma,
		XParameters: []string{"a"}, YParameters: []string{"b"},
		X: &AxisDef{Bins: u32(16)},
		Y: &AxisDef{Low: f64(-5), High: f64(5), Bins: u32(10)},
	}))
	list := en.ListSpectra()
	require.Len(t, list, 1)
	assert.Equal(t, spectra.Axis{Low: 0, High: 1024, Bins: 16}, list[0].X)
	require.NotNil(t, list[0].Y)
	assert.Equal(t, spectra.Axis{Low: -5, High: 5, Bins: 10}, *list[0].Y)
	assert.Equal(t, []string{"a", "b"}, list[0].Parameters)
}

func TestGateAndClear(t *testing.T) {
	en := newEngine(t, "p")
	require.NoError(t, en.CreateSpectrum(SpectrumDef{Name: "a", Kind: spectra.KindOneD, Parameters: []string{"p"}}))
	require.NoError(t, en.CreateSpectrum(SpectrumDef{Name: "b", Kind: spectra.KindOneD, Parameters: []string{"p"}}))
	_, err := en.DefineCondition(ConditionDef{Name: "never", Kind: conditions.KindFalse})
	require.NoError(t, err)

	require.NoError(t, en.ApplyGate("a", "never"))
	en.ProcessEvent(event(1, 1))
	assert.Zero(t, sum(t, en, "a"))
	assert.Equal(t, 1.0, sum(t, en, "b"))

	require.NoError(t, en.Ungate("a"))
	en.ProcessEvent(event(1, 1))
	assert.Equal(t, 1.0, sum(t, en, "a"))

	var nss *NoSuchSpectrumError
	assert.ErrorAs(t, en.ClearSpectra("b", "zz"), &nss)
	assert.Equal(t, 2.0, sum(t, en, "b"), "nothing cleared when a name is unknown")

	require.NoError(t, en.ClearSpectra("b"))
	assert.Zero(t, sum(t, en, "b"))
	assert.Equal(t, 1.0, sum(t, en, "a"))

	require.NoError(t, en.ClearSpectra())
	assert.Zero(t, sum(t, en, "a"))

	assert.ErrorAs(t, en.ApplyGate("zz", "never"), &nss)
	assert.ErrorAs(t, en.Ungate("zz"), &nss)
	require.NoError(t, en.DeleteSpectrum("a"))
	assert.ErrorAs(t, en.DeleteSpectrum("a"), &nss)
}

func TestContents(t *testing.T) {
	en := newEngine(t, "x", "y")
	require.NoError(t, en.CreateSpectrum(SpectrumDef{
		Name: "xy", Kind: spectra.KindTwoD, Parameters: []string{"x", "y"},
		X: &AxisDef{Bins: u32(4)}, Y: &AxisDef{Bins: u32(2)},
	}))
	en.ProcessEvent(event(1, 0, 2, 1000))

	c, err := en.Contents("xy")
	require.NoError(t, err)
	require.NotNil(t, c.Y)
	assert.Len(t, c.Counts, 6*4)
	// x channel 1, y channel 2
	assert.Equal(t, 1.0, c.Counts[1*4+2])

	_, err = en.Contents("nope")
	var nss *NoSuchSpectrumError
	assert.ErrorAs(t, err, &nss)
}

// #endregion spectrum-tests

// #region parameter-tests
func TestParameters(t *testing.T) {
	en := newEngine(t, "a")
	_, err := en.DefineParameter(ParameterDef{Name: "a"})
	var dup *parameters.DuplicateNameError
	require.ErrorAs(t, err, &dup)

	require.NoError(t, en.UpdateParameter(ParameterDef{Name: "a", Bins: u32(8), Description: "energy"}))
	list := en.ListParameters()
	require.Len(t, list, 1)
	assert.Equal(t, uint32(8), *list[0].Bins)
	assert.Equal(t, "energy", list[0].Description)

	var unknown *spectra.UnknownParameterError
	assert.ErrorAs(t, en.UpdateParameter(ParameterDef{Name: "b"}), &unknown)
}

func TestParameters_HalfRange(t *testing.T) {
	en := newEngine(t, "a")
	var invalid *InvalidDefinitionError

	_, err := en.DefineParameter(ParameterDef{Name: "lonely", Low: f64(1)})
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "lonely", invalid.Name)
	_, ok := en.Parameters().Lookup("lonely")
	assert.False(t, ok, "a rejected definition must not register the name")

	require.ErrorAs(t, en.UpdateParameter(ParameterDef{Name: "a", High: f64(5)}), &invalid)
	low, high := en.ListParameters()[0].Low, en.ListParameters()[0].High
	require.NotNil(t, low)
	require.NotNil(t, high)
	assert.Equal(t, 1024.0, *high, "limits must be left untouched")
}

func TestProcessEvent_DropsUnregisteredIDs(t *testing.T) {
	en := newEngine(t, "a")
	require.NoError(t, en.CreateSpectrum(SpectrumDef{Name: "a", Kind: spectra.KindOneD, Parameters: []string{"a"}}))

	assert.Equal(t, 1, en.ProcessEvent(event(1<<27, 5, 1, 5)))
	assert.Equal(t, 1.0, sum(t, en, "a"))
	assert.Equal(t, 2, en.flat.Size())

	// Parameters added directly to the registry are covered by the next event.
	id, err := en.Parameters().Add("late")
	require.NoError(t, err)
	require.NoError(t, en.UpdateParameter(ParameterDef{Name: "late", Low: f64(0), High: f64(10), Bins: u32(10)}))
	require.NoError(t, en.CreateSpectrum(SpectrumDef{Name: "late", Kind: spectra.KindOneD, Parameters: []string{"late"}}))
	en.ProcessEvent(parameters.Event{{ID: id, Value: 3}})
	assert.Equal(t, 1.0, sum(t, en, "late"))
}

func TestRecordIngest(t *testing.T) {
	en := newEngine(t, "existing")
	added, err := en.MapRecordParameters([]RecordParameter{{ID: 7, Name: "existing"}, {ID: 9, Name: "fresh"}})
	require.NoError(t, err)
	assert.Equal(t, 1, added)

	fresh, ok := en.Parameters().Lookup("fresh")
	require.True(t, ok)
	assert.Equal(t, uint32(2), fresh.ID)

	var ev parameters.Event
	en.TranslateEvent([]parameters.EventParameter{{ID: 7, Value: 1}, {ID: 9, Value: 2}, {ID: 100, Value: 3}}, &ev)
	assert.Equal(t, parameters.Event{{ID: 1, Value: 1}, {ID: 2, Value: 2}}, ev)

	require.NoError(t, en.UpdateParameter(ParameterDef{Name: "fresh", Low: f64(0), High: f64(4), Bins: u32(4)}))
	require.NoError(t, en.CreateSpectrum(SpectrumDef{Name: "f", Kind: spectra.KindOneD, Parameters: []string{"fresh"}}))
	assert.Equal(t, 1, en.ProcessRecordEvent([]parameters.EventParameter{{ID: 9, Value: 2}}))
	assert.Equal(t, 1.0, sum(t, en, "f"))
}

// #endregion parameter-tests
