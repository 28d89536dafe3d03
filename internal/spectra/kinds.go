package spectra

import (
	"github.com/danielpatrickdp/histogrammer/go-engine/internal/parameters"
)

// #region oned
// OneD histograms a single parameter.
type OneD struct {
	base
	id   uint32
	hist *Histogram1D
}

// NewOneD builds a 1-D spectrum on param; the axis defaults to the
// parameter's metadata.
func NewOneD(name, param string, pdict *parameters.Dictionary, ov AxisOverride) (*OneD, error) {
	ids, err := resolve([]string{param}, pdict)
	if err != nil {
		return nil, err
	}
	axis, err := defaultAxis("x", ids, pdict, ov)
	if err != nil {
		return nil, err
	}
	return &OneD{
		base: base{name: name, kind: KindOneD, params: []string{param}},
		id:   ids[0],
		hist: NewHistogram1D(axis),
	}, nil
}

func (s *OneD) Increment(e *parameters.FlatEvent) {
	if v, ok := e.Get(s.id); ok {
		s.hist.Fill(v)
	}
}

func (s *OneD) Clear()                            { s.hist.Clear() }
func (s *OneD) Histogram1D() (*Histogram1D, bool) { return s.hist, true }
func (s *OneD) Histogram2D() (*Histogram2D, bool) { return nil, false }

// #endregion oned

// #region twod
// TwoD histograms one parameter against another.
type TwoD struct {
	base
	xid, yid uint32
	hist     *Histogram2D
}

// NewTwoD builds a 2-D spectrum; each axis defaults from its own parameter.
func NewTwoD(name, xparam, yparam string, pdict *parameters.Dictionary, xov, yov AxisOverride) (*TwoD, error) {
	ids, err := resolve([]string{xparam, yparam}, pdict)
	if err != nil {
		return nil, err
	}
	x, err := defaultAxis("x", ids[:1], pdict, xov)
	if err != nil {
		return nil, err
	}
	y, err := defaultAxis("y", ids[1:], pdict, yov)
	if err != nil {
		return nil, err
	}
	if err := checkPlane(x, y); err != nil {
		return nil, err
	}
	return &TwoD{
		base: base{name: name, kind: KindTwoD, params: []string{xparam, yparam}},
		xid:  ids[0],
		yid:  ids[1],
		hist: NewHistogram2D(x, y),
	}, nil
}

func (s *TwoD) Increment(e *parameters.FlatEvent) {
	x, okx := e.Get(s.xid)
	y, oky := e.Get(s.yid)
	if okx && oky {
		s.hist.Fill(x, y)
	}
}

func (s *TwoD) Clear()                            { s.hist.Clear() }
func (s *TwoD) Histogram1D() (*Histogram1D, bool) { return nil, false }
func (s *TwoD) Histogram2D() (*Histogram2D, bool) { return s.hist, true }

// #endregion twod

// #region summary
// Summary is a strip of 1-D spectra side by side: x is the index of the
// parameter in the list, y its value.
type Summary struct {
	base
	ids  []uint32
	hist *Histogram2D
}

// NewSummary builds a summary spectrum. Only the y axis can be overridden;
// the x axis has one channel per parameter.
func NewSummary(name string, params []string, pdict *parameters.Dictionary, yov AxisOverride) (*Summary, error) {
	if len(params) == 0 {
		return nil, ErrNoParameters
	}
	ids, err := resolve(params, pdict)
	if err != nil {
		return nil, err
	}
	y, err := defaultAxis("y", ids, pdict, yov)
	if err != nil {
		return nil, err
	}
	n := len(ids)
	x := Axis{Low: 0, High: float64(n), Bins: uint32(n)}
	if err := checkPlane(x, y); err != nil {
		return nil, err
	}
	return &Summary{
		base: base{name: name, kind: KindSummary, params: append([]string(nil), params...)},
		ids:  ids,
		hist: NewHistogram2D(x, y),
	}, nil
}

func (s *Summary) Increment(e *parameters.FlatEvent) {
	for i, id := range s.ids {
		if v, ok := e.Get(id); ok {
			s.hist.Fill(float64(i), v)
		}
	}
}

func (s *Summary) Clear()                            { s.hist.Clear() }
func (s *Summary) Histogram1D() (*Histogram1D, bool) { return nil, false }
func (s *Summary) Histogram2D() (*Histogram2D, bool) { return s.hist, true }

// #endregion summary

// #region pgamma
// PGamma is the particle-gamma coincidence spectrum: every present (x, y)
// pair drawn from two independent parameter lists is incremented.
type PGamma struct {
	base
	xids, yids []uint32
	hist       *Histogram2D
}

// NewPGamma builds a particle-gamma spectrum. Each axis defaults from its
// own parameter list. All names are checked before any axis.
func NewPGamma(name string, xparams, yparams []string, pdict *parameters.Dictionary, xov, yov AxisOverride) (*PGamma, error) {
	if len(xparams) == 0 || len(yparams) == 0 {
		return nil, ErrNoParameters
	}
	xids, yids, x, y, err := twoAxes(xparams, yparams, pdict, xov, yov)
	if err != nil {
		return nil, err
	}
	return &PGamma{
		base: base{name: name, kind: KindPGamma, params: joinNames(xparams, yparams)},
		xids: xids,
		yids: yids,
		hist: NewHistogram2D(x, y),
	}, nil
}

func (s *PGamma) Increment(e *parameters.FlatEvent) {
	for _, xid := range s.xids {
		x, ok := e.Get(xid)
		if !ok {
			continue
		}
		for _, yid := range s.yids {
			if y, ok := e.Get(yid); ok {
				s.hist.Fill(x, y)
			}
		}
	}
}

func (s *PGamma) Clear()                            { s.hist.Clear() }
func (s *PGamma) Histogram1D() (*Histogram1D, bool) { return nil, false }
func (s *PGamma) Histogram2D() (*Histogram2D, bool) { return s.hist, true }

// XParameters and YParameters split the bound names by axis.
func (s *PGamma) XParameters() []string { return append([]string(nil), s.params[:len(s.xids)]...) }
func (s *PGamma) YParameters() []string { return append([]string(nil), s.params[len(s.xids):]...) }

// #endregion pgamma

// #region multi1d
// Multi1D increments one shared axis once for every present parameter.
type Multi1D struct {
	base
	ids  []uint32
	hist *Histogram1D
}

// NewMulti1D builds a multiply incremented 1-D spectrum.
func NewMulti1D(name string, params []string, pdict *parameters.Dictionary, ov AxisOverride) (*Multi1D, error) {
	if len(params) == 0 {
		return nil, ErrNoParameters
	}
	ids, err := resolve(params, pdict)
	if err != nil {
		return nil, err
	}
	axis, err := defaultAxis("x", ids, pdict, ov)
	if err != nil {
		return nil, err
	}
	return &Multi1D{
		base: base{name: name, kind: KindMulti1D, params: append([]string(nil), params...)},
		ids:  ids,
		hist: NewHistogram1D(axis),
	}, nil
}

func (s *Multi1D) Increment(e *parameters.FlatEvent) {
	for _, id := range s.ids {
		if v, ok := e.Get(id); ok {
			s.hist.Fill(v)
		}
	}
}

func (s *Multi1D) Clear()                            { s.hist.Clear() }
func (s *Multi1D) Histogram1D() (*Histogram1D, bool) { return s.hist, true }
func (s *Multi1D) Histogram2D() (*Histogram2D, bool) { return nil, false }

// #endregion multi1d

// #region multi2d
// Multi2D increments every unordered pair of present parameters once, with
// the earlier parameter of the list on x.
type Multi2D struct {
	base
	ids  []uint32
	hist *Histogram2D
}

// NewMulti2D builds a multiply incremented 2-D spectrum. Both axes default
// from the full parameter list.
func NewMulti2D(name string, params []string, pdict *parameters.Dictionary, xov, yov AxisOverride) (*Multi2D, error) {
	if len(params) < 2 {
		return nil, ErrTooFewParameters
	}
	ids, err := resolve(params, pdict)
	if err != nil {
		return nil, err
	}
	x, err := defaultAxis("x", ids, pdict, xov)
	if err != nil {
		return nil, err
	}
	y, err := defaultAxis("y", ids, pdict, yov)
	if err != nil {
		return nil, err
	}
	if err := checkPlane(x, y); err != nil {
		return nil, err
	}
	return &Multi2D{
		base: base{name: name, kind: KindMulti2D, params: append([]string(nil), params...)},
		ids:  ids,
		hist: NewHistogram2D(x, y),
	}, nil
}

func (s *Multi2D) Increment(e *parameters.FlatEvent) {
	for i, xid := range s.ids {
		x, ok := e.Get(xid)
		if !ok {
			continue
		}
		for _, yid := range s.ids[i+1:] {
			if y, ok := e.Get(yid); ok {
				s.hist.Fill(x, y)
			}
		}
	}
}

func (s *Multi2D) Clear()                            { s.hist.Clear() }
func (s *Multi2D) Histogram1D() (*Histogram1D, bool) { return nil, false }
func (s *Multi2D) Histogram2D() (*Histogram2D, bool) { return s.hist, true }

// #endregion multi2d

// #region twodsum
// TwoDSum is the sum of the 2-D spectra (x_i, y_i) for paired lists.
type TwoDSum struct {
	base
	xids, yids []uint32
	hist       *Histogram2D
}

// NewTwoDSum builds a 2-D sum spectrum; the lists must have equal length.
func NewTwoDSum(name string, xparams, yparams []string, pdict *parameters.Dictionary, xov, yov AxisOverride) (*TwoDSum, error) {
	if len(xparams) == 0 {
		return nil, ErrNoParameters
	}
	if len(xparams) != len(yparams) {
		return nil, ErrMismatchedPairs
	}
	xids, yids, x, y, err := twoAxes(xparams, yparams, pdict, xov, yov)
	if err != nil {
		return nil, err
	}
	return &TwoDSum{
		base: base{name: name, kind: KindTwoDSum, params: joinNames(xparams, yparams)},
		xids: xids,
		yids: yids,
		hist: NewHistogram2D(x, y),
	}, nil
}

func (s *TwoDSum) Increment(e *parameters.FlatEvent) {
	for i, xid := range s.xids {
		x, okx := e.Get(xid)
		y, oky := e.Get(s.yids[i])
		if okx && oky {
			s.hist.Fill(x, y)
		}
	}
}

func (s *TwoDSum) Clear()                            { s.hist.Clear() }
func (s *TwoDSum) Histogram1D() (*Histogram1D, bool) { return nil, false }
func (s *TwoDSum) Histogram2D() (*Histogram2D, bool) { return s.hist, true }

// #endregion twodsum

// #region helpers
func twoAxes(xparams, yparams []string, pdict *parameters.Dictionary, xov, yov AxisOverride) (xids, yids []uint32, x, y Axis, err error) {
	if xids, err = resolve(xparams, pdict); err != nil {
		return
	}
	if yids, err = resolve(yparams, pdict); err != nil {
		return
	}
	if x, err = defaultAxis("x", xids, pdict, xov); err != nil {
		return
	}
	if y, err = defaultAxis("y", yids, pdict, yov); err != nil {
		return
	}
	err = checkPlane(x, y)
	return
}

func joinNames(a, b []string) []string {
	out := make([]string, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}

// #endregion helpers
