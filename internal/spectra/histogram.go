package spectra

import "math"

// #region axis
// Axis is a uniform binning of [Low, High) into Bins channels plus one
// underflow channel (index 0) and one overflow channel (index Bins+1).
type Axis struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
	Bins uint32  `json:"bins"`
}

// Index maps v to a channel. Values below Low land in underflow; values at
// or above High, and NaN, land in overflow.
func (a Axis) Index(v float64) int {
	if v < a.Low {
		return 0
	}
	if v >= a.High || math.IsNaN(v) {
		return int(a.Bins) + 1
	}
	i := int(math.Floor((v - a.Low) / (a.High - a.Low) * float64(a.Bins)))
	if i < 0 {
		i = 0
	}
	if i > int(a.Bins)-1 {
		i = int(a.Bins) - 1
	}
	return i + 1
}

// MaxChannels bounds the channel count of one histogram, overflow channels
// included, for both 1-D axes and 2-D grids.
const MaxChannels = 1 << 24

// Channels is the channel count including the two overflow channels.
func (a Axis) Channels() int {
	return int(a.Bins) + 2
}

// Underflow and Overflow are the indices of the out-of-range channels.
func (a Axis) Underflow() int { return 0 }
func (a Axis) Overflow() int  { return int(a.Bins) + 1 }

func (a Axis) valid() bool {
	return a.Bins > 0 && a.High > a.Low && a.Channels() <= MaxChannels
}

// #endregion axis

// #region histogram-1d
// Histogram1D holds the channel sums of a one-dimensional spectrum.
type Histogram1D struct {
	axis   Axis
	counts []float64
}

// NewHistogram1D allocates an empty histogram over axis.
func NewHistogram1D(axis Axis) *Histogram1D {
	return &Histogram1D{axis: axis, counts: make([]float64, axis.Channels())}
}

// Fill adds one count at v.
func (h *Histogram1D) Fill(v float64) {
	h.counts[h.axis.Index(v)]++
}

// Get returns the sum in channel i (0 is underflow).
func (h *Histogram1D) Get(i int) float64 {
	if i < 0 || i >= len(h.counts) {
		return 0
	}
	return h.counts[i]
}

// At returns the sum in the channel containing v.
func (h *Histogram1D) At(v float64) float64 {
	return h.counts[h.axis.Index(v)]
}

// Sum totals every channel, overflows included.
func (h *Histogram1D) Sum() float64 {
	var s float64
	for _, c := range h.counts {
		s += c
	}
	return s
}

// Clear zeroes every channel.
func (h *Histogram1D) Clear() {
	clear(h.counts)
}

// Axis returns the binning.
func (h *Histogram1D) Axis() Axis {
	return h.axis
}

// Counts returns a copy of the channel sums.
func (h *Histogram1D) Counts() []float64 {
	return append([]float64(nil), h.counts...)
}

// #endregion histogram-1d

// #region histogram-2d
// Histogram2D holds the channel sums of a two-dimensional spectrum, stored
// x-major with each axis carrying its own overflow channels.
type Histogram2D struct {
	x, y   Axis
	counts []float64
}

// NewHistogram2D allocates an empty histogram over the two axes.
func NewHistogram2D(x, y Axis) *Histogram2D {
	return &Histogram2D{x: x, y: y, counts: make([]float64, x.Channels()*y.Channels())}
}

// Fill adds one count at (x, y).
func (h *Histogram2D) Fill(x, y float64) {
	h.counts[h.offset(h.x.Index(x), h.y.Index(y))]++
}

// Get returns the sum in channel (xi, yi).
func (h *Histogram2D) Get(xi, yi int) float64 {
	if xi < 0 || xi >= h.x.Channels() || yi < 0 || yi >= h.y.Channels() {
		return 0
	}
	return h.counts[h.offset(xi, yi)]
}

// At returns the sum in the channel containing (x, y).
func (h *Histogram2D) At(x, y float64) float64 {
	return h.counts[h.offset(h.x.Index(x), h.y.Index(y))]
}

// Sum totals every channel, overflows included.
func (h *Histogram2D) Sum() float64 {
	var s float64
	for _, c := range h.counts {
		s += c
	}
	return s
}

// NonZero counts channels with a non-zero sum.
func (h *Histogram2D) NonZero() int {
	n := 0
	for _, c := range h.counts {
		if c != 0 {
			n++
		}
	}
	return n
}

// Clear zeroes every channel.
func (h *Histogram2D) Clear() {
	clear(h.counts)
}

// Counts returns a copy of the channel sums, x-major.
func (h *Histogram2D) Counts() []float64 {
	return append([]float64(nil), h.counts...)
}

// Axes returns the x and y binning.
func (h *Histogram2D) Axes() (Axis, Axis) {
	return h.x, h.y
}

func (h *Histogram2D) offset(xi, yi int) int {
	return xi*h.y.Channels() + yi
}

// #endregion histogram-2d
