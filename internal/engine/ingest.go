package engine

import "github.com/danielpatrickdp/histogrammer/go-engine/internal/parameters"

// #region record-mapping
// MapRecordParameters seeds the registry from a parameter-definition record.
// Names already registered keep their id; new names are added. Record ids
// are remembered so later data records can be translated. It returns the
// number of parameters that were newly registered.
func (en *Engine) MapRecordParameters(defs []RecordParameter) (int, error) {
	added := 0
	for _, d := range defs {
		p, ok := en.params.Lookup(d.Name)
		if !ok {
			id, err := en.params.Add(d.Name)
			if err != nil {
				return added, err
			}
			p, _ = en.params.LookupID(id)
			added++
		}
		en.recordIDs[d.ID] = p.ID
	}
	return added, nil
}

// TranslateEvent rewrites the record ids of a data record into registry
// ids. Values whose record id was never defined are dropped.
func (en *Engine) TranslateEvent(raw []parameters.EventParameter, dst *parameters.Event) {
	dst.Clear()
	for _, ep := range raw {
		id, ok := en.recordIDs[ep.ID]
		if !ok {
			continue
		}
		dst.Push(parameters.EventParameter{ID: id, Value: ep.Value})
	}
}

// ProcessRecordEvent translates and dispatches one data record.
func (en *Engine) ProcessRecordEvent(raw []parameters.EventParameter) int {
	en.TranslateEvent(raw, &en.scratch)
	return en.ProcessEvent(en.scratch)
}

// #endregion record-mapping
