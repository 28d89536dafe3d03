package conditions

import (
	"errors"
	"fmt"

	"github.com/danielpatrickdp/histogrammer/go-engine/internal/parameters"
)

// #region condition
// Condition is a boolean predicate over a flattened event. Conditions that
// cache must store the result of Evaluate so that CachedValue reports it
// until InvalidateCache is called. A cache is only meaningful for the event
// currently being processed; the engine invalidates every cache between
// events.
type Condition interface {
	Evaluate(e *parameters.FlatEvent) bool
	CachedValue() (value bool, ok bool)
	InvalidateCache()
}

// Check returns the cached value when there is one and evaluates otherwise.
// This is how conditions should be consulted.
func Check(c Condition, e *parameters.FlatEvent) bool {
	if v, ok := c.CachedValue(); ok {
		return v
	}
	return c.Evaluate(e)
}

// #endregion condition

// #region cache
// cache is embedded by caching conditions.
type cache struct {
	value bool
	valid bool
}

func (c *cache) CachedValue() (bool, bool) {
	return c.value, c.valid
}

func (c *cache) InvalidateCache() {
	c.valid = false
}

func (c *cache) store(v bool) bool {
	c.value = v
	c.valid = true
	return v
}

// uncached is embedded by constant conditions.
type uncached struct{}

func (uncached) CachedValue() (bool, bool) { return false, false }
func (uncached) InvalidateCache()          {}

// #endregion cache

// #region handles
// Handle is the strong, reference-counted container for a condition. The
// dictionary owns one reference; anyone else that must keep a condition
// alive takes one with Dictionary.Acquire or Retain and later calls Release. When the count drops to zero the
// condition is destroyed and every Weak to it stops upgrading.
//
// Handles are not safe for concurrent use; the engine is single threaded.
type Handle struct {
	cond Condition
	refs int
}

// NewHandle wraps c with a reference count of one.
func NewHandle(c Condition) *Handle {
	return &Handle{cond: c, refs: 1}
}

// Retain adds a strong reference. Retaining a destroyed handle does not
// bring it back.
func (h *Handle) Retain() *Handle {
	if h.refs > 0 {
		h.refs++
	}
	return h
}

// Release drops a strong reference.
func (h *Handle) Release() {
	if h.refs == 0 {
		return
	}
	h.refs--
	if h.refs == 0 {
		h.cond = nil
	}
}

// Condition returns the wrapped condition, or nil once destroyed.
func (h *Handle) Condition() Condition {
	return h.cond
}

// Alive reports whether any strong reference remains.
func (h *Handle) Alive() bool {
	return h.cond != nil
}

// Downgrade makes a weak reference that does not keep the condition alive.
func (h *Handle) Downgrade() Weak {
	return Weak{h: h}
}

// Weak refers to a condition without owning it.
type Weak struct {
	h *Handle
}

// Upgrade returns the condition if it still exists.
func (w Weak) Upgrade() (Condition, bool) {
	if w.h == nil || w.h.cond == nil {
		return nil, false
	}
	return w.h.cond, true
}

// #endregion handles

// #region description
// Kind names a condition type in listings.
type Kind string

const (
	KindTrue    Kind = "true"
	KindFalse   Kind = "false"
	KindCut     Kind = "cut"
	KindContour Kind = "contour"
	KindBand    Kind = "band"
	KindNot     Kind = "not"
	KindAnd     Kind = "and"
	KindOr      Kind = "or"
)

// Point is a vertex of a contour or band.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Description is the listing view of a condition.
type Description struct {
	Name         string   `json:"name"`
	Kind         Kind     `json:"kind"`
	Parameters   []uint32 `json:"parameters,omitempty"`
	Low          float64  `json:"low,omitempty"`
	High         float64  `json:"high,omitempty"`
	Points       []Point  `json:"points,omitempty"`
	Dependencies []string `json:"dependencies,omitempty"` // names; "" for a deleted dependency
}

// Describer is implemented by every condition in this package.
type Describer interface {
	Describe() Description
}

// #endregion description

// #region errors
var (
	// ErrTooFewPoints is returned when a contour or band has too few vertices.
	ErrTooFewPoints = errors.New("too few points")
	// ErrDestroyed is returned when a dead handle is added to a compound.
	ErrDestroyed = errors.New("condition has been deleted")
)

// CycleError is returned when adding a dependency would make a compound
// condition depend on itself.
type CycleError struct {
	Dependency string
}

func (e *CycleError) Error() string {
	if e.Dependency == "" {
		return "dependency would create a cycle"
	}
	return fmt.Sprintf("dependency %q would create a cycle", e.Dependency)
}

// #endregion errors
