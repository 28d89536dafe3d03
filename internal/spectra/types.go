package spectra

import (
	"errors"
	"fmt"

	"github.com/danielpatrickdp/histogrammer/go-engine/internal/conditions"
	"github.com/danielpatrickdp/histogrammer/go-engine/internal/parameters"
)

// #region spectrum
// Spectrum is a named histogram with an optional gate and a rule that turns
// an event into channel increments.
type Spectrum interface {
	Name() string
	Kind() Kind
	// Parameters lists the bound parameter names; for two-list kinds the x
	// names come first.
	Parameters() []string

	CheckGate(e *parameters.FlatEvent) bool
	Increment(e *parameters.FlatEvent)

	ApplyGate(name string, dict *conditions.Dictionary) error
	Ungate()
	GateName() (string, bool)

	Clear()
	Histogram1D() (*Histogram1D, bool)
	Histogram2D() (*Histogram2D, bool)
}

// HandleEvent is the per-event rule shared by every kind: increment only
// when the gate, if any, is satisfied. It reports whether s accepted e.
func HandleEvent(s Spectrum, e *parameters.FlatEvent) bool {
	if !s.CheckGate(e) {
		return false
	}
	s.Increment(e)
	return true
}

// #endregion spectrum

// #region kind
// Kind names a spectrum type.
type Kind string

const (
	KindOneD    Kind = "1d"
	KindTwoD    Kind = "2d"
	KindSummary Kind = "summary"
	KindPGamma  Kind = "pgamma"
	KindMulti1D Kind = "multi1d"
	KindMulti2D Kind = "multi2d"
	KindTwoDSum Kind = "2dsum"
)

// #endregion kind

// #region axis-override
// AxisOverride carries caller-supplied axis settings; nil fields are taken
// from parameter metadata.
type AxisOverride struct {
	Low  *float64
	High *float64
	Bins *uint32
}

// Override builds a fully specified AxisOverride.
func Override(low, high float64, bins uint32) AxisOverride {
	return AxisOverride{Low: &low, High: &high, Bins: &bins}
}

// #endregion axis-override

// #region errors
var (
	// ErrNoParameters is returned when a multi-parameter kind gets none.
	ErrNoParameters = errors.New("at least one parameter is required")
	// ErrTooFewParameters is returned when a pair-filling kind gets fewer than two.
	ErrTooFewParameters = errors.New("at least two parameters are required")
	// ErrMismatchedPairs is returned when x and y lists must pair up but differ in length.
	ErrMismatchedPairs = errors.New("x and y parameter lists differ in length")
)

// UnknownParameterError is returned when a spectrum names an undefined parameter.
type UnknownParameterError struct {
	Name string
}

func (e *UnknownParameterError) Error() string {
	return fmt.Sprintf("parameter %q is not defined", e.Name)
}

// AxisUndefinedError is returned when an axis coordinate is neither given
// nor derivable from parameter metadata. Axis is one of x-low, x-high,
// x-bins, y-low, y-high, y-bins.
type AxisUndefinedError struct {
	Axis string
}

func (e *AxisUndefinedError) Error() string {
	return fmt.Sprintf("%s cannot be defaulted from the parameters", e.Axis)
}

// InvalidAxisError is returned for an axis with no bins or an empty range.
type InvalidAxisError struct {
	Axis string
	Spec Axis
}

func (e *InvalidAxisError) Error() string {
	return fmt.Sprintf("%s axis [%g, %g) with %d bins is not usable", e.Axis, e.Spec.Low, e.Spec.High, e.Spec.Bins)
}

// NoSuchGateError is returned when a gate names an undefined condition.
type NoSuchGateError struct {
	Name string
}

func (e *NoSuchGateError) Error() string {
	return fmt.Sprintf("no condition named %q", e.Name)
}

// DuplicateSpectrumError is returned when a spectrum name is already taken.
type DuplicateSpectrumError struct {
	Name string
}

func (e *DuplicateSpectrumError) Error() string {
	return fmt.Sprintf("spectrum %q already exists", e.Name)
}

// #endregion errors
