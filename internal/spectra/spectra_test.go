package spectra

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielpatrickdp/histogrammer/go-engine/internal/conditions"
	"github.com/danielpatrickdp/histogrammer/go-engine/internal/parameters"
)

// #region helpers
func params(t *testing.T, names ...string) *parameters.Dictionary {
	t.Helper()
	d := parameters.NewDictionary()
	for _, n := range names {
		if _, err := d.Add(n); err != nil {
			t.Fatalf("add %s: %v", n, err)
		}
	}
	return d
}

func withLimits(t *testing.T, d *parameters.Dictionary, low, high float64, bins uint32, names ...string) {
	t.Helper()
	for _, n := range names {
		p, ok := d.Lookup(n)
		if !ok {
			t.Fatalf("parameter %s missing", n)
		}
		p.SetLimits(low, high)
		p.SetBins(bins)
	}
}

func load(f *parameters.FlatEvent, pairs ...float64) *parameters.FlatEvent {
	var e parameters.Event
	for i := 0; i+1 < len(pairs); i += 2 {
		e.Push(parameters.EventParameter{ID: uint32(pairs[i]), Value: pairs[i+1]})
	}
	f.Load(e)
	return f
}

func u32(v uint32) *uint32   { return &v }
func f64(v float64) *float64 { return &v }

// #endregion helpers

// #region axis-tests
func TestAxis_Index(t *testing.T) {
	a := Axis{Low: 0, High: 10, Bins: 10}
	cases := []struct {
		v    float64
		want int
	}{
		{-0.1, 0},
		{0, 1},
		{0.99, 1},
		{9.99, 10},
		{10, 11},
		{1e9, 11},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, a.Index(c.v), "index of %g", c.v)
	}
	assert.Equal(t, 12, a.Channels())
	assert.Equal(t, 11, a.Overflow())
}

// #endregion axis-tests

// #region oned-tests
func TestOneD_Ungated(t *testing.T) {
	d := params(t, "p")
	withLimits(t, d, 0, 1024, 1024, "p")

	s, err := NewOneD("s1", "p", d, AxisOverride{})
	require.NoError(t, err)

	f := parameters.NewFlatEvent(d.MaxID())
	for _, v := range []float64{10, 10, 20, 1030} {
		HandleEvent(s, load(f, 1, v))
	}

	h, ok := s.Histogram1D()
	require.True(t, ok)
	assert.Equal(t, 2.0, h.At(10))
	assert.Equal(t, 1.0, h.At(20))
	assert.Equal(t, 1.0, h.Get(h.Axis().Overflow()))
	assert.Equal(t, 4.0, h.Sum())
}

func TestOneD_MissingParameterSkipsEvent(t *testing.T) {
	d := params(t, "a", "b")
	withLimits(t, d, 0, 10, 10, "a", "b")
	s, err := NewOneD("s", "a", d, AxisOverride{})
	require.NoError(t, err)

	f := parameters.NewFlatEvent(d.MaxID())
	HandleEvent(s, load(f, 2, 5))
	h, _ := s.Histogram1D()
	assert.Zero(t, h.Sum())
}

func TestOneD_OverrideWins(t *testing.T) {
	d := params(t, "p")
	withLimits(t, d, 0, 1024, 1024, "p")
	s, err := NewOneD("s", "p", d, AxisOverride{Bins: u32(64)})
	require.NoError(t, err)
	h, _ := s.Histogram1D()
	assert.Equal(t, Axis{Low: 0, High: 1024, Bins: 64}, h.Axis())
}

func TestOneD_Errors(t *testing.T) {
	d := params(t, "p")

	_, err := NewOneD("s", "nope", d, AxisOverride{})
	var unknown *UnknownParameterError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "nope", unknown.Name)

	_, err = NewOneD("s", "p", d, AxisOverride{})
	var undefined *AxisUndefinedError
	require.ErrorAs(t, err, &undefined)
	assert.Equal(t, "x-low", undefined.Axis)

	_, err = NewOneD("s", "p", d, AxisOverride{Low: f64(0), High: f64(1)})
	require.ErrorAs(t, err, &undefined)
	assert.Equal(t, "x-bins", undefined.Axis)

	_, err = NewOneD("s", "p", d, Override(5, 5, 10))
	var invalid *InvalidAxisError
	assert.ErrorAs(t, err, &invalid)
}

func TestOneD_TooManyBins(t *testing.T) {
	d := params(t, "p")
	_, err := NewOneD("s", "p", d, Override(0, 1, 4_000_000_000))
	var invalid *InvalidAxisError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "x", invalid.Axis)
}

// #endregion oned-tests

// #region twod-tests
func TestTwoD(t *testing.T) {
	d := params(t, "x", "y")
	withLimits(t, d, 0, 100, 100, "x")
	withLimits(t, d, 0, 10, 10, "y")

	s, err := NewTwoD("xy", "x", "y", d, AxisOverride{}, AxisOverride{})
	require.NoError(t, err)

	f := parameters.NewFlatEvent(d.MaxID())
	HandleEvent(s, load(f, 1, 50, 2, 5))
	HandleEvent(s, load(f, 1, 50))

	h, ok := s.Histogram2D()
	require.True(t, ok)
	assert.Equal(t, 1.0, h.At(50, 5))
	assert.Equal(t, 1.0, h.Sum())

	_, ok = s.Histogram1D()
	assert.False(t, ok)
}

func TestTwoD_YAxisUndefined(t *testing.T) {
	d := params(t, "x", "y")
	withLimits(t, d, 0, 100, 100, "x")
	_, err := NewTwoD("xy", "x", "y", d, AxisOverride{}, AxisOverride{})
	var undefined *AxisUndefinedError
	require.ErrorAs(t, err, &undefined)
	assert.Equal(t, "y-low", undefined.Axis)
}

func TestTwoD_GridTooLarge(t *testing.T) {
	d := params(t, "x", "y")
	withLimits(t, d, 0, 10, 10, "x", "y")
	big := Override(0, 1, 4_000_000_000)
	var invalid *InvalidAxisError

	_, err := NewTwoD("xy", "x", "y", d, big, big)
	assert.ErrorAs(t, err, &invalid)

	// Each axis fits on its own, the grid does not.
	wide := Override(0, 1, 1<<13)
	_, err = NewTwoD("xy", "x", "y", d, wide, wide)
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "y", invalid.Axis)

	_, err = NewPGamma("pg", []string{"x"}, []string{"y"}, d, wide, wide)
	assert.ErrorAs(t, err, &invalid)
	_, err = NewMulti2D("m", []string{"x", "y"}, d, wide, wide)
	assert.ErrorAs(t, err, &invalid)
	_, err = NewSummary("s", []string{"x", "y"}, d, Override(0, 1, MaxChannels/4))
	assert.ErrorAs(t, err, &invalid)
}

// #endregion twod-tests

// #region summary-tests
func TestSummary_Defaults(t *testing.T) {
	names := []string{"p0", "p1", "p2", "p3", "p4", "p5", "p6", "p7", "p8", "p9"}
	d := params(t, names...)
	withLimits(t, d, 0, 1023, 1024, names...)

	s, err := NewSummary("sum", names, d, AxisOverride{})
	require.NoError(t, err)

	h, _ := s.Histogram2D()
	x, y := h.Axes()
	assert.Equal(t, Axis{Low: 0, High: 1023, Bins: 1024}, y)
	assert.Equal(t, 12, x.Channels())
}

func TestSummary_MixedMetadata(t *testing.T) {
	d := params(t, "a", "b", "c")
	withLimits(t, d, -10, 50, 100, "a")
	withLimits(t, d, 0, 200, 400, "b")
	// c carries no metadata and is skipped when defaulting.

	s, err := NewSummary("sum", []string{"a", "b", "c"}, d, AxisOverride{})
	require.NoError(t, err)
	h, _ := s.Histogram2D()
	_, y := h.Axes()
	assert.Equal(t, Axis{Low: -10, High: 200, Bins: 400}, y)
}

func TestSummary_Increment(t *testing.T) {
	d := params(t, "a", "b", "c")
	withLimits(t, d, 0, 10, 10, "a", "b", "c")
	s, err := NewSummary("sum", []string{"a", "b", "c"}, d, AxisOverride{})
	require.NoError(t, err)

	f := parameters.NewFlatEvent(d.MaxID())
	HandleEvent(s, load(f, 1, 1, 3, 7))

	h, _ := s.Histogram2D()
	assert.Equal(t, 1.0, h.At(0, 1))
	assert.Equal(t, 1.0, h.At(2, 7))
	assert.Equal(t, 2.0, h.Sum())
}

func TestSummary_AxisUndefined(t *testing.T) {
	d := params(t, "a", "b")
	_, err := NewSummary("sum", []string{"a", "b"}, d, AxisOverride{})
	var undefined *AxisUndefinedError
	require.ErrorAs(t, err, &undefined)
	assert.Equal(t, "y-low", undefined.Axis)
}

func TestSummary_UnknownBeforeAxis(t *testing.T) {
	d := params(t, "a")
	_, err := NewSummary("sum", []string{"a", "ghost"}, d, AxisOverride{})
	var unknown *UnknownParameterError
	assert.ErrorAs(t, err, &unknown)
}

func TestSummary_NoParameters(t *testing.T) {
	d := params(t)
	_, err := NewSummary("sum", nil, d, Override(0, 1, 1))
	assert.True(t, errors.Is(err, ErrNoParameters))
}

// #endregion summary-tests

// #region pgamma-tests
func TestPGamma_Combinatorics(t *testing.T) {
	d := params(t, "p0", "p1", "p2", "p3", "p4", "p5", "p6", "p7")
	withLimits(t, d, 0, 1024, 1024, "p0", "p1", "p5", "p6", "p7")

	s, err := NewPGamma("pg", []string{"p0", "p1"}, []string{"p5", "p6", "p7"}, d, AxisOverride{}, AxisOverride{})
	require.NoError(t, err)

	id := func(n string) float64 {
		p, _ := d.Lookup(n)
		return float64(p.ID)
	}
	f := parameters.NewFlatEvent(d.MaxID())
	HandleEvent(s, load(f,
		id("p0"), 0, id("p1"), 10,
		id("p5"), 100, id("p6"), 110, id("p7"), 120))

	h, _ := s.Histogram2D()
	assert.Equal(t, 6, h.NonZero())
	for _, x := range []float64{0, 10} {
		for _, y := range []float64{100, 110, 120} {
			assert.Equal(t, 1.0, h.At(x, y), "(%g, %g)", x, y)
		}
	}
	assert.Equal(t, []string{"p0", "p1"}, s.XParameters())
	assert.Equal(t, []string{"p5", "p6", "p7"}, s.YParameters())
}

func TestPGamma_AxisOrder(t *testing.T) {
	d := params(t, "a", "b")
	_, err := NewPGamma("pg", []string{"a"}, []string{"b"}, d, Override(0, 1, 1), AxisOverride{High: f64(1)})
	var undefined *AxisUndefinedError
	require.ErrorAs(t, err, &undefined)
	assert.Equal(t, "y-low", undefined.Axis)
}

// #endregion pgamma-tests

// #region multi-tests
func TestMulti1D(t *testing.T) {
	d := params(t, "a", "b", "c")
	withLimits(t, d, 0, 10, 10, "a", "b", "c")
	s, err := NewMulti1D("m", []string{"a", "b", "c"}, d, AxisOverride{})
	require.NoError(t, err)

	f := parameters.NewFlatEvent(d.MaxID())
	HandleEvent(s, load(f, 1, 2, 2, 2, 3, 9))
	h, _ := s.Histogram1D()
	assert.Equal(t, 2.0, h.At(2))
	assert.Equal(t, 1.0, h.At(9))
}

func TestMulti2D_UnorderedPairs(t *testing.T) {
	d := params(t, "a", "b", "c")
	withLimits(t, d, 0, 10, 10, "a", "b", "c")
	s, err := NewMulti2D("m", []string{"a", "b", "c"}, d, AxisOverride{}, AxisOverride{})
	require.NoError(t, err)

	f := parameters.NewFlatEvent(d.MaxID())
	HandleEvent(s, load(f, 1, 1, 2, 2, 3, 3))
	h, _ := s.Histogram2D()
	assert.Equal(t, 3.0, h.Sum())
	assert.Equal(t, 1.0, h.At(1, 2))
	assert.Equal(t, 1.0, h.At(1, 3))
	assert.Equal(t, 1.0, h.At(2, 3))
	assert.Zero(t, h.At(2, 1))
}

func TestMulti2D_NeedsTwoParameters(t *testing.T) {
	d := params(t, "a")
	withLimits(t, d, 0, 10, 10, "a")
	_, err := NewMulti2D("m", []string{"a"}, d, AxisOverride{}, AxisOverride{})
	assert.ErrorIs(t, err, ErrTooFewParameters)
	_, err = NewMulti2D("m", nil, d, AxisOverride{}, AxisOverride{})
	assert.ErrorIs(t, err, ErrTooFewParameters)
}

func TestTwoDSum(t *testing.T) {
	d := params(t, "x0", "x1", "y0", "y1")
	withLimits(t, d, 0, 10, 10, "x0", "x1", "y0", "y1")

	_, err := NewTwoDSum("s", []string{"x0", "x1"}, []string{"y0"}, d, AxisOverride{}, AxisOverride{})
	assert.True(t, errors.Is(err, ErrMismatchedPairs))

	s, err := NewTwoDSum("s", []string{"x0", "x1"}, []string{"y0", "y1"}, d, AxisOverride{}, AxisOverride{})
	require.NoError(t, err)
	f := parameters.NewFlatEvent(d.MaxID())
	HandleEvent(s, load(f, 1, 1, 2, 2, 3, 5, 4, 6))
	h, _ := s.Histogram2D()
	assert.Equal(t, 2.0, h.Sum())
	assert.Equal(t, 1.0, h.At(1, 5))
	assert.Equal(t, 1.0, h.At(2, 6))
	assert.Zero(t, h.At(1, 6))
}

// #endregion multi-tests

// #region gate-tests
func TestGate(t *testing.T) {
	d := params(t, "p")
	withLimits(t, d, 0, 100, 100, "p")
	cdict := conditions.NewDictionary()
	cdict.Insert("window", conditions.NewCut(1, 10, 20))

	s, err := NewOneD("s", "p", d, AxisOverride{})
	require.NoError(t, err)

	var nsg *NoSuchGateError
	require.ErrorAs(t, s.ApplyGate("missing", cdict), &nsg)
	_, gated := s.GateName()
	assert.False(t, gated)

	require.NoError(t, s.ApplyGate("window", cdict))
	name, gated := s.GateName()
	assert.True(t, gated)
	assert.Equal(t, "window", name)

	f := parameters.NewFlatEvent(d.MaxID())
	for _, v := range []float64{5, 15, 25} {
		cdict.InvalidateAll()
		HandleEvent(s, load(f, 1, v))
	}
	h, _ := s.Histogram1D()
	assert.Equal(t, 1.0, h.Sum())
	assert.Equal(t, 1.0, h.At(15))

	s.Ungate()
	cdict.InvalidateAll()
	HandleEvent(s, load(f, 1, 5))
	assert.Equal(t, 2.0, h.Sum())
}

func TestGate_DeletedConditionBlocks(t *testing.T) {
	d := params(t, "p")
	withLimits(t, d, 0, 100, 100, "p")
	cdict := conditions.NewDictionary()
	cdict.Insert("all", &conditions.True{})

	s, err := NewOneD("s", "p", d, AxisOverride{})
	require.NoError(t, err)
	require.NoError(t, s.ApplyGate("all", cdict))

	cdict.Insert("all", &conditions.True{})
	f := parameters.NewFlatEvent(d.MaxID())
	HandleEvent(s, load(f, 1, 5))
	h, _ := s.Histogram1D()
	assert.Zero(t, h.Sum(), "a gate on a rebound name keeps the old, destroyed condition")
}

// #endregion gate-tests

// #region dictionary-tests
func TestDictionary(t *testing.T) {
	d := params(t, "p")
	withLimits(t, d, 0, 10, 10, "p")
	sd := NewDictionary()

	a, err := NewOneD("a", "p", d, AxisOverride{})
	require.NoError(t, err)
	b, err := NewOneD("b", "p", d, AxisOverride{})
	require.NoError(t, err)
	require.NoError(t, sd.Add(b))
	require.NoError(t, sd.Add(a))

	var dup *DuplicateSpectrumError
	require.ErrorAs(t, sd.Add(a), &dup)
	assert.Equal(t, []string{"a", "b"}, sd.Names())

	f := parameters.NewFlatEvent(d.MaxID())
	load(f, 1, 3)
	sd.Each(func(s Spectrum) { HandleEvent(s, f) })
	ha, _ := a.Histogram1D()
	assert.Equal(t, 1.0, ha.Sum())

	sd.ClearAll()
	assert.Zero(t, ha.Sum())

	assert.True(t, sd.Remove("a"))
	assert.False(t, sd.Remove("a"))
	assert.Equal(t, 1, sd.Len())
	_, ok := sd.Get("b")
	assert.True(t, ok)
}

// #endregion dictionary-tests
