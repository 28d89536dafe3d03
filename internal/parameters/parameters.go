package parameters

import "sort"

// #region dictionary
// Dictionary maps parameter names and ids to parameters. Ids are assigned
// from a running counter starting at 1 and are never reused; parameters are
// never removed.
type Dictionary struct {
	byName map[string]*Parameter
	byID   map[uint32]*Parameter
	nextID uint32
}

// NewDictionary returns an empty registry.
func NewDictionary() *Dictionary {
	return &Dictionary{
		byName: make(map[string]*Parameter),
		byID:   make(map[uint32]*Parameter),
		nextID: 1,
	}
}

// Add registers name and returns its new id.
func (d *Dictionary) Add(name string) (uint32, error) {
	if _, exists := d.byName[name]; exists {
		return 0, &DuplicateNameError{Name: name}
	}
	p := &Parameter{ID: d.nextID, Name: name}
	d.nextID++
	d.byName[name] = p
	d.byID[p.ID] = p
	return p.ID, nil
}

// Lookup finds a parameter by name.
func (d *Dictionary) Lookup(name string) (*Parameter, bool) {
	p, ok := d.byName[name]
	return p, ok
}

// LookupID finds a parameter by id.
func (d *Dictionary) LookupID(id uint32) (*Parameter, bool) {
	p, ok := d.byID[id]
	return p, ok
}

// Len returns the number of registered parameters.
func (d *Dictionary) Len() int {
	return len(d.byName)
}

// Names returns the parameter names in id order.
func (d *Dictionary) Names() []string {
	params := d.All()
	names := make([]string, len(params))
	for i, p := range params {
		names[i] = p.Name
	}
	return names
}

// All returns the parameters in id order.
func (d *Dictionary) All() []*Parameter {
	params := make([]*Parameter, 0, len(d.byID))
	for _, p := range d.byID {
		params = append(params, p)
	}
	sort.Slice(params, func(i, j int) bool { return params[i].ID < params[j].ID })
	return params
}

// MaxID is the largest id handed out so far (0 when empty).
func (d *Dictionary) MaxID() uint32 {
	return d.nextID - 1
}

// #endregion dictionary
