package conditions

import (
	"fmt"

	"github.com/danielpatrickdp/histogrammer/go-engine/internal/parameters"
)

// #region constants
// True is satisfied by every event.
type True struct{ uncached }

func (*True) Evaluate(*parameters.FlatEvent) bool { return true }
func (*True) Describe() Description              { return Description{Kind: KindTrue} }

// False is satisfied by no event.
type False struct{ uncached }

func (*False) Evaluate(*parameters.FlatEvent) bool { return false }
func (*False) Describe() Description              { return Description{Kind: KindFalse} }

// #endregion constants

// #region cut
// Cut is true when its parameter is present and inside [Low, High].
type Cut struct {
	cache
	ParameterID uint32
	Low, High   float64
}

// NewCut builds a cut on one parameter.
func NewCut(id uint32, low, high float64) *Cut {
	return &Cut{ParameterID: id, Low: low, High: high}
}

func (c *Cut) Evaluate(e *parameters.FlatEvent) bool {
	v, ok := e.Get(c.ParameterID)
	return c.store(ok && v >= c.Low && v <= c.High)
}

func (c *Cut) Describe() Description {
	return Description{
		Kind:       KindCut,
		Parameters: []uint32{c.ParameterID},
		Low:        c.Low,
		High:       c.High,
	}
}

// #endregion cut

// #region contour
// Contour is true when the (x, y) point of an event lies inside a closed
// polygon. The even-odd crossing rule is used: points on left or bottom
// edges are inside, points on right or top edges are outside.
type Contour struct {
	cache
	XID, YID uint32
	Points   []Point
}

// NewContour requires at least three vertices. The polygon closes itself.
func NewContour(xid, yid uint32, pts []Point) (*Contour, error) {
	if len(pts) < 3 {
		return nil, fmt.Errorf("contour needs 3 points, got %d: %w", len(pts), ErrTooFewPoints)
	}
	return &Contour{XID: xid, YID: yid, Points: append([]Point(nil), pts...)}, nil
}

func (c *Contour) Evaluate(e *parameters.FlatEvent) bool {
	x, okx := e.Get(c.XID)
	y, oky := e.Get(c.YID)
	if !okx || !oky {
		return c.store(false)
	}
	return c.store(insidePolygon(c.Points, x, y))
}

func (c *Contour) Describe() Description {
	return Description{
		Kind:       KindContour,
		Parameters: []uint32{c.XID, c.YID},
		Points:     append([]Point(nil), c.Points...),
	}
}

// insidePolygon counts edge crossings of a ray cast toward +x. An edge is
// counted when it straddles y with its lower end inclusive, which is what
// makes bottom edges inside and top edges outside; the strict x comparison
// does the same for left and right.
func insidePolygon(pts []Point, x, y float64) bool {
	inside := false
	j := len(pts) - 1
	for i := range pts {
		pi, pj := pts[i], pts[j]
		if (pi.Y > y) != (pj.Y > y) {
			xCross := (pj.X-pi.X)*(y-pi.Y)/(pj.Y-pi.Y) + pi.X
			if x < xCross {
				inside = !inside
			}
		}
		j = i
	}
	return inside
}

// #endregion contour

// #region band
// Band is true when the point lies on or below an open polyline and within
// its x extent.
type Band struct {
	cache
	XID, YID uint32
	Points   []Point
}

// NewBand requires at least two vertices.
func NewBand(xid, yid uint32, pts []Point) (*Band, error) {
	if len(pts) < 2 {
		return nil, fmt.Errorf("band needs 2 points, got %d: %w", len(pts), ErrTooFewPoints)
	}
	return &Band{XID: xid, YID: yid, Points: append([]Point(nil), pts...)}, nil
}

func (b *Band) Evaluate(e *parameters.FlatEvent) bool {
	x, okx := e.Get(b.XID)
	y, oky := e.Get(b.YID)
	if !okx || !oky {
		return b.store(false)
	}
	return b.store(belowPolyline(b.Points, x, y))
}

func (b *Band) Describe() Description {
	return Description{
		Kind:       KindBand,
		Parameters: []uint32{b.XID, b.YID},
		Points:     append([]Point(nil), b.Points...),
	}
}

func belowPolyline(pts []Point, x, y float64) bool {
	for i := 0; i+1 < len(pts); i++ {
		a, b := pts[i], pts[i+1]
		lo, hi := a, b
		if lo.X > hi.X {
			lo, hi = hi, lo
		}
		if x < lo.X || x > hi.X {
			continue
		}
		lineY := lo.Y
		if hi.X != lo.X {
			lineY = lo.Y + (x-lo.X)*(hi.Y-lo.Y)/(hi.X-lo.X)
		} else if hi.Y > lineY {
			lineY = hi.Y
		}
		return y <= lineY
	}
	return false
}

// #endregion band
