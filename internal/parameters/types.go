package parameters

import "fmt"

// #region parameter
// Parameter is a named measured quantity. The ID is the stable external
// handle; the axis metadata only supplies defaults when spectra are built.
type Parameter struct {
	ID          uint32
	Name        string
	Description string

	low  *float64
	high *float64
	bins *uint32
}

// SetLimits sets the default axis limits. low < high is the caller's problem.
func (p *Parameter) SetLimits(low, high float64) {
	p.low = &low
	p.high = &high
}

// SetBins sets the default bin count hint.
func (p *Parameter) SetBins(n uint32) {
	p.bins = &n
}

// SetDescription replaces the free-form description.
func (p *Parameter) SetDescription(s string) {
	p.Description = s
}

// Limits returns copies of the default low/high limits; nil means unset.
func (p *Parameter) Limits() (low, high *float64) {
	if p.low != nil {
		l := *p.low
		low = &l
	}
	if p.high != nil {
		h := *p.high
		high = &h
	}
	return low, high
}

// Bins returns a copy of the default bin hint; nil means unset.
func (p *Parameter) Bins() *uint32 {
	if p.bins == nil {
		return nil
	}
	b := *p.bins
	return &b
}

// #endregion parameter

// #region event
// EventParameter is one (id, value) pair of the sparse wire form.
type EventParameter struct {
	ID    uint32
	Value float64
}

// Event is an ordered list of parameter values. Duplicate ids are allowed;
// the last one wins when the event is flattened.
type Event []EventParameter

// Push appends a parameter value.
func (e *Event) Push(p EventParameter) {
	*e = append(*e, p)
}

// Clear empties the event keeping its capacity.
func (e *Event) Clear() {
	*e = (*e)[:0]
}

// Len is the number of pushed values, duplicates included.
func (e Event) Len() int {
	return len(e)
}

// #endregion event

// #region errors
// DuplicateNameError is returned when a parameter name is registered twice.
type DuplicateNameError struct {
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("parameter %q is already defined", e.Name)
}

// #endregion errors
