package spectra

import (
	"github.com/danielpatrickdp/histogrammer/go-engine/internal/conditions"
	"github.com/danielpatrickdp/histogrammer/go-engine/internal/parameters"
)

// #region gate
// Gate is the optional condition applied to a spectrum. It holds the
// condition weakly: deleting or rebinding the condition leaves the gate
// false rather than dangling.
type Gate struct {
	name string
	cond conditions.Weak
	set  bool
}

// Set looks name up in dict and gates on it.
func (g *Gate) Set(name string, dict *conditions.Dictionary) error {
	h, ok := dict.Lookup(name)
	if !ok || !h.Alive() {
		return &NoSuchGateError{Name: name}
	}
	g.name = name
	g.cond = h.Downgrade()
	g.set = true
	return nil
}

// Unset removes the gate; the spectrum then accepts every event.
func (g *Gate) Unset() {
	*g = Gate{}
}

// Check is true when ungated, otherwise the checked value of the condition.
func (g *Gate) Check(e *parameters.FlatEvent) bool {
	if !g.set {
		return true
	}
	c, ok := g.cond.Upgrade()
	if !ok {
		return false
	}
	return conditions.Check(c, e)
}

// Name reports the gate's condition name, if gated.
func (g *Gate) Name() (string, bool) {
	return g.name, g.set
}

// #endregion gate

// #region base
// base carries what every spectrum kind shares.
type base struct {
	name   string
	kind   Kind
	params []string
	gate   Gate
}

func (b *base) Name() string { return b.name }
func (b *base) Kind() Kind   { return b.kind }

func (b *base) Parameters() []string {
	return append([]string(nil), b.params...)
}

func (b *base) CheckGate(e *parameters.FlatEvent) bool {
	return b.gate.Check(e)
}

func (b *base) ApplyGate(name string, dict *conditions.Dictionary) error {
	return b.gate.Set(name, dict)
}

func (b *base) Ungate() {
	b.gate.Unset()
}

func (b *base) GateName() (string, bool) {
	return b.gate.Name()
}

// #endregion base
