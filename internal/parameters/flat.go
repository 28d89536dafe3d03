package parameters

// #region flat-event
// FlatEvent is the dense, id-indexed view of the current event. Each slot
// carries the generation it was written in; a slot is present only when its
// tag matches the current generation, so loading a new event never has to
// touch slots left over from the previous one.
//
// The view covers ids 0..maxID. Ids above maxID cannot belong to a
// registered parameter, so Load ignores them instead of growing the view.
type FlatEvent struct {
	values     []float64
	tags       []uint64
	generation uint64
}

// NewFlatEvent sizes the dense view for ids up to maxID.
func NewFlatEvent(maxID uint32) *FlatEvent {
	n := int(maxID) + 1
	return &FlatEvent{
		values:     make([]float64, n),
		tags:       make([]uint64, n),
		generation: 1,
	}
}

// Reserve extends the view to cover ids up to maxID. It never shrinks.
func (f *FlatEvent) Reserve(maxID uint32) {
	n := int(maxID) + 1
	if n <= len(f.values) {
		return
	}
	values := make([]float64, n)
	tags := make([]uint64, n)
	copy(values, f.values)
	copy(tags, f.tags)
	f.values = values
	f.tags = tags
}

// Load replaces the contents with e. Later duplicates of an id overwrite
// earlier ones. Ids outside the view are dropped.
func (f *FlatEvent) Load(e Event) {
	f.generation++
	for _, p := range e {
		if int(p.ID) >= len(f.values) {
			continue
		}
		f.values[p.ID] = p.Value
		f.tags[p.ID] = f.generation
	}
}

// Get returns the value for id and whether it was present in the event.
func (f *FlatEvent) Get(id uint32) (float64, bool) {
	if int(id) >= len(f.tags) || f.tags[id] != f.generation {
		return 0, false
	}
	return f.values[id], true
}

// Size is the number of addressable slots (max id + 1).
func (f *FlatEvent) Size() int {
	return len(f.values)
}

// #endregion flat-event
