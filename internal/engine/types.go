package engine

import (
	"fmt"

	"github.com/danielpatrickdp/histogrammer/go-engine/internal/conditions"
	"github.com/danielpatrickdp/histogrammer/go-engine/internal/spectra"
)

// #region definitions
// ParameterDef describes a parameter to register. Nil metadata is left unset.
type ParameterDef struct {
	Name        string   `json:"name" yaml:"name"`
	Low         *float64 `json:"low,omitempty" yaml:"low,omitempty"`
	High        *float64 `json:"high,omitempty" yaml:"high,omitempty"`
	Bins        *uint32  `json:"bins,omitempty" yaml:"bins,omitempty"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
}

// ConditionDef describes a condition by kind. Parameters are names;
// Dependencies name other conditions and are only used by compounds.
type ConditionDef struct {
	Name         string             `json:"name" yaml:"name"`
	Kind         conditions.Kind    `json:"kind" yaml:"kind"`
	Parameters   []string           `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	Low          float64            `json:"low,omitempty" yaml:"low,omitempty"`
	High         float64            `json:"high,omitempty" yaml:"high,omitempty"`
	Points       []conditions.Point `json:"points,omitempty" yaml:"points,omitempty"`
	Dependencies []string           `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
}

// AxisDef carries the optional axis overrides of a spectrum.
type AxisDef struct {
	Low  *float64 `json:"low,omitempty" yaml:"low,omitempty"`
	High *float64 `json:"high,omitempty" yaml:"high,omitempty"`
	Bins *uint32  `json:"bins,omitempty" yaml:"bins,omitempty"`
}

func (a *AxisDef) override() spectra.AxisOverride {
	if a == nil {
		return spectra.AxisOverride{}
	}
	return spectra.AxisOverride{Low: a.Low, High: a.High, Bins: a.Bins}
}

// SpectrumDef describes a spectrum. Single-list kinds use Parameters;
// pgamma and 2dsum use XParameters and YParameters; 2d takes exactly two
// Parameters, x first.
type SpectrumDef struct {
	Name        string       `json:"name" yaml:"name"`
	Kind        spectra.Kind `json:"kind" yaml:"kind"`
	Parameters  []string     `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	XParameters []string     `json:"x_parameters,omitempty" yaml:"x_parameters,omitempty"`
	YParameters []string     `json:"y_parameters,omitempty" yaml:"y_parameters,omitempty"`
	X           *AxisDef     `json:"x,omitempty" yaml:"x,omitempty"`
	Y           *AxisDef     `json:"y,omitempty" yaml:"y,omitempty"`
	Gate        string       `json:"gate,omitempty" yaml:"gate,omitempty"`
}

// #endregion definitions

// #region listings
// ParameterInfo is the listing view of a parameter.
type ParameterInfo struct {
	ID          uint32   `json:"id"`
	Name        string   `json:"name"`
	Low         *float64 `json:"low,omitempty"`
	High        *float64 `json:"high,omitempty"`
	Bins        *uint32  `json:"bins,omitempty"`
	Description string   `json:"description,omitempty"`
}

// SpectrumInfo is the listing view of a spectrum. Y is nil for 1-D kinds.
type SpectrumInfo struct {
	Name       string        `json:"name"`
	Kind       spectra.Kind  `json:"kind"`
	Parameters []string      `json:"parameters"`
	Gate       string        `json:"gate,omitempty"`
	X          spectra.Axis  `json:"x"`
	Y          *spectra.Axis `json:"y,omitempty"`
	Sum        float64       `json:"sum"`
}

// Contents is a copy of a spectrum's channels, overflow channels included.
// 2-D contents are x-major.
type Contents struct {
	Name   string        `json:"name"`
	X      spectra.Axis  `json:"x"`
	Y      *spectra.Axis `json:"y,omitempty"`
	Counts []float64     `json:"counts"`
}

// RecordParameter is one entry of a parameter-definition record.
type RecordParameter struct {
	ID   uint32
	Name string
}

// #endregion listings

// #region errors
// NoSuchConditionError is returned when a condition name is not bound.
type NoSuchConditionError struct {
	Name string
}

func (e *NoSuchConditionError) Error() string {
	return fmt.Sprintf("no condition named %q", e.Name)
}

// NoSuchSpectrumError is returned when a spectrum name is not defined.
type NoSuchSpectrumError struct {
	Name string
}

func (e *NoSuchSpectrumError) Error() string {
	return fmt.Sprintf("no spectrum named %q", e.Name)
}

// InvalidDefinitionError is returned for a definition whose shape does not
// fit its kind (wrong parameter count, unknown kind, compound extended with
// the wrong type).
type InvalidDefinitionError struct {
	Name   string
	Reason string
}

func (e *InvalidDefinitionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Name, e.Reason)
}

// #endregion errors
