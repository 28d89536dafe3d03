package spectra

import "sort"

// #region dictionary
// Dictionary holds the spectra of an engine by name.
type Dictionary struct {
	entries map[string]Spectrum
}

// NewDictionary returns an empty dictionary.
func NewDictionary() *Dictionary {
	return &Dictionary{entries: make(map[string]Spectrum)}
}

// Add registers s under its own name.
func (d *Dictionary) Add(s Spectrum) error {
	if _, exists := d.entries[s.Name()]; exists {
		return &DuplicateSpectrumError{Name: s.Name()}
	}
	d.entries[s.Name()] = s
	return nil
}

// Get finds a spectrum by name.
func (d *Dictionary) Get(name string) (Spectrum, bool) {
	s, ok := d.entries[name]
	return s, ok
}

// Remove deletes a spectrum, reporting whether it existed.
func (d *Dictionary) Remove(name string) bool {
	if _, ok := d.entries[name]; !ok {
		return false
	}
	delete(d.entries, name)
	return true
}

// Names returns the spectrum names, sorted.
func (d *Dictionary) Names() []string {
	names := make([]string, 0, len(d.entries))
	for n := range d.entries {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of spectra.
func (d *Dictionary) Len() int {
	return len(d.entries)
}

// Each calls fn for every spectrum in no particular order.
func (d *Dictionary) Each(fn func(Spectrum)) {
	for _, s := range d.entries {
		fn(s)
	}
}

// ClearAll zeroes every spectrum.
func (d *Dictionary) ClearAll() {
	for _, s := range d.entries {
		s.Clear()
	}
}

// #endregion dictionary
