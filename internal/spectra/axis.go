package spectra

import "github.com/danielpatrickdp/histogrammer/go-engine/internal/parameters"

// #region resolve
// resolve maps parameter names to ids, failing on the first unknown name.
func resolve(names []string, pdict *parameters.Dictionary) ([]uint32, error) {
	ids := make([]uint32, len(names))
	for i, n := range names {
		p, ok := pdict.Lookup(n)
		if !ok {
			return nil, &UnknownParameterError{Name: n}
		}
		ids[i] = p.ID
	}
	return ids, nil
}

// #endregion resolve

// #region defaulting
// defaultAxis derives an axis for the parameter set: the smallest low, the
// largest high and the largest bin hint, ignoring parameters that do not
// carry the value. Overrides win. prefix is "x" or "y" and names the axis
// in errors.
func defaultAxis(prefix string, ids []uint32, pdict *parameters.Dictionary, ov AxisOverride) (Axis, error) {
	var low, high *float64
	var bins *uint32
	for _, id := range ids {
		p, ok := pdict.LookupID(id)
		if !ok {
			continue
		}
		l, h := p.Limits()
		low = optMin(low, l)
		high = optMax(high, h)
		bins = optMax(bins, p.Bins())
	}
	if ov.Low != nil {
		low = ov.Low
	}
	if ov.High != nil {
		high = ov.High
	}
	if ov.Bins != nil {
		bins = ov.Bins
	}

	switch {
	case low == nil:
		return Axis{}, &AxisUndefinedError{Axis: prefix + "-low"}
	case high == nil:
		return Axis{}, &AxisUndefinedError{Axis: prefix + "-high"}
	case bins == nil:
		return Axis{}, &AxisUndefinedError{Axis: prefix + "-bins"}
	}
	a := Axis{Low: *low, High: *high, Bins: *bins}
	if !a.valid() {
		return Axis{}, &InvalidAxisError{Axis: prefix, Spec: a}
	}
	return a, nil
}

// checkPlane rejects a 2-D grid with more than MaxChannels channels.
func checkPlane(x, y Axis) error {
	if x.Channels() > MaxChannels/y.Channels() {
		return &InvalidAxisError{Axis: "y", Spec: y}
	}
	return nil
}

type ordered interface {
	~float64 | ~uint32
}

func optMin[T ordered](a, b *T) *T {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	case *b < *a:
		return b
	}
	return a
}

func optMax[T ordered](a, b *T) *T {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	case *b > *a:
		return b
	}
	return a
}

// #endregion defaulting
