package setup

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/danielpatrickdp/histogrammer/go-engine/internal/engine"
)

// #region file
// File is an analysis setup: parameters, conditions and spectra to define,
// plus gates to apply once everything exists. Entries are applied in file
// order, so a compound must come after the conditions it names.
type File struct {
	Parameters []engine.ParameterDef `json:"parameters,omitempty" yaml:"parameters"`
	Conditions []engine.ConditionDef `json:"conditions,omitempty" yaml:"conditions"`
	Spectra    []engine.SpectrumDef  `json:"spectra,omitempty" yaml:"spectra"`
	Gates      []GateDef             `json:"gates,omitempty" yaml:"gates"`
}

// GateDef applies a condition to a spectrum.
type GateDef struct {
	Spectrum  string `json:"spectrum" yaml:"spectrum"`
	Condition string `json:"condition" yaml:"condition"`
}

// #endregion file

// #region target
// Target is anything that accepts definitions: an engine or a session.
type Target interface {
	DefineParameter(def engine.ParameterDef) (uint32, error)
	DefineCondition(def engine.ConditionDef) (bool, error)
	CreateSpectrum(def engine.SpectrumDef) error
	ApplyGate(spectrum, condition string) error
}

// #endregion target

// #region load
// Load reads and parses a setup file.
func Load(path string) (*File, error) {
	bs, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read setup: %w", err)
	}
	f, err := Parse(bs)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Parse decodes a setup document. Unknown keys are rejected.
func Parse(bs []byte) (*File, error) {
	dec := yaml.NewDecoder(bytes.NewReader(bs))
	dec.KnownFields(true)
	var f File
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("parse setup: %w", err)
	}
	return &f, nil
}

// #endregion load

// #region apply
// Apply defines everything in f on t and stops at the first failure.
func (f *File) Apply(t Target) error {
	for _, p := range f.Parameters {
		if _, err := t.DefineParameter(p); err != nil {
			return fmt.Errorf("parameter %s: %w", p.Name, err)
		}
	}
	for _, c := range f.Conditions {
		if _, err := t.DefineCondition(c); err != nil {
			return fmt.Errorf("condition %s: %w", c.Name, err)
		}
	}
	for _, s := range f.Spectra {
		if err := t.CreateSpectrum(s); err != nil {
			return fmt.Errorf("spectrum %s: %w", s.Name, err)
		}
	}
	for _, g := range f.Gates {
		if err := t.ApplyGate(g.Spectrum, g.Condition); err != nil {
			return fmt.Errorf("gate %s on %s: %w", g.Condition, g.Spectrum, err)
		}
	}
	return nil
}

// Marshal renders f back to YAML.
func (f *File) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		return nil, fmt.Errorf("encode setup: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode setup: %w", err)
	}
	return buf.Bytes(), nil
}

// #endregion apply
