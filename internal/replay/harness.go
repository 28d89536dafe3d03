package replay

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/danielpatrickdp/histogrammer/go-engine/internal/engine"
	"github.com/danielpatrickdp/histogrammer/go-engine/internal/parameters"
	"github.com/danielpatrickdp/histogrammer/go-engine/internal/ringitem"
)

// #region types
// Sink receives the records of a stream. *session.Session satisfies it.
type Sink interface {
	MapRecordParameters(defs []engine.RecordParameter) (int, error)
	ProcessRecordEvent(raw []parameters.EventParameter) int
	CountItem(typeName string)
}

// Summary provides aggregate stats from a replay run.
type Summary struct {
	Items      map[string]uint64
	Events     uint64
	Accepted   uint64 // spectra incremented, summed over events
	Defined    int    // parameters newly registered by definition records
	Unknown    uint64 // records of a type the analyzer does not consume
	Variables  map[string]ringitem.Variable
	LastSerial uint64 // trigger number of the last data record
}

func newSummary() Summary {
	return Summary{
		Items:     make(map[string]uint64),
		Variables: make(map[string]ringitem.Variable),
	}
}

// #endregion types

// #region replay
// Replay reads records from r until end of stream and feeds them to sink:
// definitions map record ids, data records are dispatched, variables are
// remembered by name. Other record types are counted and skipped. The
// context is checked between records.
func Replay(ctx context.Context, r io.Reader, sink Sink) (Summary, error) {
	sum := newSummary()
	rd := ringitem.NewReader(r)
	var raw []parameters.EventParameter

	for {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		it, err := rd.Next()
		if errors.Is(err, io.EOF) {
			return sum, nil
		}
		if err != nil {
			return sum, fmt.Errorf("record %d: %w", itemCount(sum), err)
		}

		name := ringitem.TypeName(it.Type)
		sum.Items[name]++
		sink.CountItem(name)

		switch it.Type {
		case ringitem.TypeParameterDefinitions:
			defs, err := ringitem.DecodeParameterDefinitions(it)
			if err != nil {
				return sum, err
			}
			mapped := make([]engine.RecordParameter, len(defs))
			for i, d := range defs {
				mapped[i] = engine.RecordParameter{ID: d.ID, Name: d.Name}
			}
			n, err := sink.MapRecordParameters(mapped)
			sum.Defined += n
			if err != nil {
				return sum, fmt.Errorf("map parameters: %w", err)
			}

		case ringitem.TypeVariableValues:
			vars, err := ringitem.DecodeVariableValues(it)
			if err != nil {
				return sum, err
			}
			for _, v := range vars {
				sum.Variables[v.Name] = v
			}

		case ringitem.TypeParameterData:
			data, err := ringitem.DecodeParameterData(it)
			if err != nil {
				return sum, err
			}
			raw = raw[:0]
			for _, v := range data.Values {
				raw = append(raw, parameters.EventParameter{ID: v.ID, Value: v.Value})
			}
			sum.Accepted += uint64(sink.ProcessRecordEvent(raw))
			sum.Events++
			sum.LastSerial = data.Trigger

		default:
			sum.Unknown++
		}
	}
}

func itemCount(s Summary) uint64 {
	var n uint64
	for _, c := range s.Items {
		n += c
	}
	return n
}

// #endregion replay
