package conditions

import "github.com/danielpatrickdp/histogrammer/go-engine/internal/parameters"

// Compound conditions hold weak references to their dependents. A dependent
// that no longer upgrades has been deleted and counts as false. Evaluation
// short-circuits and the result is cached, so a sub-condition shared by
// several compounds is evaluated at most once per event.

// #region dependency-list
type dependencyList struct {
	cache
	deps []Weak
}

func (l *dependencyList) add(owner Condition, h *Handle) error {
	if err := checkAddable(owner, h); err != nil {
		return err
	}
	l.deps = append(l.deps, h.Downgrade())
	return nil
}

func (l *dependencyList) clear() {
	l.deps = nil
	l.InvalidateCache()
}

func (l *dependencyList) dependencies() []Weak {
	return l.deps
}

// #endregion dependency-list

// #region not
// Not inverts a single dependent. A deleted dependent makes Not false, not
// true: a deleted gate is false wherever it appears.
type Not struct {
	cache
	dep Weak
}

// NewNot builds the negation of h.
func NewNot(h *Handle) *Not {
	return &Not{dep: h.Downgrade()}
}

func (n *Not) Evaluate(e *parameters.FlatEvent) bool {
	d, ok := n.dep.Upgrade()
	if !ok {
		return n.store(false)
	}
	return n.store(!Check(d, e))
}

// AddCondition replaces the dependent.
func (n *Not) AddCondition(h *Handle) error {
	if err := checkAddable(n, h); err != nil {
		return err
	}
	n.dep = h.Downgrade()
	n.InvalidateCache()
	return nil
}

// Clear drops the dependent, leaving Not permanently false.
func (n *Not) Clear() {
	n.dep = Weak{}
	n.InvalidateCache()
}

func (n *Not) dependencies() []Weak {
	if n.dep.h == nil {
		return nil
	}
	return []Weak{n.dep}
}

func (n *Not) Describe() Description {
	return Description{Kind: KindNot}
}

// #endregion not

// #region and
// And is true when every dependent is true. The first false or deleted
// dependent stops evaluation.
type And struct {
	dependencyList
}

// NewAnd builds an empty And; an empty And is true.
func NewAnd() *And {
	return &And{}
}

func (a *And) Evaluate(e *parameters.FlatEvent) bool {
	for _, w := range a.deps {
		d, ok := w.Upgrade()
		if !ok || !Check(d, e) {
			return a.store(false)
		}
	}
	return a.store(true)
}

// AddCondition appends a dependent.
func (a *And) AddCondition(h *Handle) error {
	return a.add(a, h)
}

// Clear removes all dependents.
func (a *And) Clear() {
	a.clear()
}

func (a *And) Describe() Description {
	return Description{Kind: KindAnd}
}

// #endregion and

// #region or
// Or is true when any dependent is true. Deleted dependents are skipped.
type Or struct {
	dependencyList
}

// NewOr builds an empty Or; an empty Or is false.
func NewOr() *Or {
	return &Or{}
}

func (o *Or) Evaluate(e *parameters.FlatEvent) bool {
	for _, w := range o.deps {
		if d, ok := w.Upgrade(); ok && Check(d, e) {
			return o.store(true)
		}
	}
	return o.store(false)
}

// AddCondition appends a dependent.
func (o *Or) AddCondition(h *Handle) error {
	return o.add(o, h)
}

// Clear removes all dependents.
func (o *Or) Clear() {
	o.clear()
}

func (o *Or) Describe() Description {
	return Description{Kind: KindOr}
}

// #endregion or

// #region cycle-check
// Compound is implemented by Not, And and Or.
type Compound interface {
	Condition
	AddCondition(h *Handle) error
	Clear()
	dependencies() []Weak
}

// checkAddable refuses dead handles and any handle from which owner is
// reachable, since adding it would close a cycle.
func checkAddable(owner Condition, h *Handle) error {
	c, ok := h.Downgrade().Upgrade()
	if !ok {
		return ErrDestroyed
	}
	if reaches(c, owner, make(map[Condition]bool)) {
		return &CycleError{}
	}
	return nil
}

func reaches(from, target Condition, seen map[Condition]bool) bool {
	if from == target {
		return true
	}
	if seen[from] {
		return false
	}
	seen[from] = true
	comp, ok := from.(Compound)
	if !ok {
		return false
	}
	for _, w := range comp.dependencies() {
		if d, ok := w.Upgrade(); ok && reaches(d, target, seen) {
			return true
		}
	}
	return false
}

// #endregion cycle-check
