package conditions

import "sort"

// #region dictionary
// Dictionary binds names to strong condition handles. Rebinding a name
// releases the old handle; holders of weak references to the old condition
// are not rewired and see it as deleted once nothing else retains it.
type Dictionary struct {
	entries map[string]*Handle
	// retired holds replaced or removed handles that something else still
	// retains, so their caches are still reset between events.
	retired []*Handle
}

// NewDictionary returns an empty dictionary.
func NewDictionary() *Dictionary {
	return &Dictionary{entries: make(map[string]*Handle)}
}

// Insert binds name to c and returns the new handle together with the
// condition previously bound to the name (nil if there was none).
func (d *Dictionary) Insert(name string, c Condition) (*Handle, Condition) {
	var prev Condition
	if old, ok := d.entries[name]; ok {
		prev = old.Condition()
		d.retire(old)
	}
	h := NewHandle(c)
	d.entries[name] = h
	return h, prev
}

// Lookup returns the handle bound to name. The handle is borrowed: callers
// that need to keep the condition alive use Acquire instead.
func (d *Dictionary) Lookup(name string) (*Handle, bool) {
	h, ok := d.entries[name]
	return h, ok
}

// Acquire is Lookup with a strong reference taken for the caller. The
// condition stays alive, and its cache keeps being reset by InvalidateAll,
// until the caller calls Release, even if the name is rebound or removed
// in the meantime.
func (d *Dictionary) Acquire(name string) (*Handle, bool) {
	h, ok := d.entries[name]
	if !ok || !h.Alive() {
		return nil, false
	}
	return h.Retain(), true
}

// Remove unbinds name and releases the dictionary's reference.
func (d *Dictionary) Remove(name string) bool {
	h, ok := d.entries[name]
	if !ok {
		return false
	}
	delete(d.entries, name)
	d.retire(h)
	return true
}

// InvalidateAll resets the cache of every live condition. The engine calls
// this once per event, before any spectrum looks at its gate.
func (d *Dictionary) InvalidateAll() {
	for _, h := range d.entries {
		if c := h.Condition(); c != nil {
			c.InvalidateCache()
		}
	}
	if len(d.retired) == 0 {
		return
	}
	live := d.retired[:0]
	for _, h := range d.retired {
		if c := h.Condition(); c != nil {
			c.InvalidateCache()
			live = append(live, h)
		}
	}
	for i := len(live); i < len(d.retired); i++ {
		d.retired[i] = nil
	}
	d.retired = live
}

// Names returns the bound names, sorted.
func (d *Dictionary) Names() []string {
	names := make([]string, 0, len(d.entries))
	for n := range d.entries {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of bound names.
func (d *Dictionary) Len() int {
	return len(d.entries)
}

// Describe lists the condition bound to name. Dependencies of compounds are
// reported by the name currently bound to the same handle.
func (d *Dictionary) Describe(name string) (Description, bool) {
	h, ok := d.entries[name]
	if !ok || !h.Alive() {
		return Description{}, false
	}
	var desc Description
	if ds, ok := h.Condition().(Describer); ok {
		desc = ds.Describe()
	}
	desc.Name = name
	if comp, ok := h.Condition().(Compound); ok {
		for _, w := range comp.dependencies() {
			desc.Dependencies = append(desc.Dependencies, d.nameOf(w))
		}
	}
	return desc, true
}

func (d *Dictionary) nameOf(w Weak) string {
	if _, ok := w.Upgrade(); !ok {
		return ""
	}
	for n, h := range d.entries {
		if h == w.h {
			return n
		}
	}
	return ""
}

func (d *Dictionary) retire(h *Handle) {
	h.Release()
	if h.Alive() {
		d.retired = append(d.retired, h)
	}
}

// #endregion dictionary
