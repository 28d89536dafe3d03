package ringitem

import (
	"bytes"
	"math"
)

// #region decode
// DecodeParameterDefinitions reads a parameter-definition record: a count
// followed by (id, NUL-terminated name) entries.
func DecodeParameterDefinitions(it *Item) ([]ParameterDefinition, error) {
	if it.Type != TypeParameterDefinitions {
		return nil, &WrongTypeError{Want: TypeParameterDefinitions, Got: it.Type}
	}
	c := cursor{b: it.Body}
	n, ok := c.u32()
	if !ok {
		return nil, ErrTruncated
	}
	defs := make([]ParameterDefinition, 0, c.capFor(n, 4+1))
	for i := uint32(0); i < n; i++ {
		id, ok := c.u32()
		if !ok {
			return nil, ErrTruncated
		}
		name, ok := c.cstring()
		if !ok {
			return nil, ErrTruncated
		}
		defs = append(defs, ParameterDefinition{ID: id, Name: name})
	}
	return defs, nil
}

// DecodeVariableValues reads a variable-values record: a count followed by
// (value, fixed-width units, NUL-terminated name) entries.
func DecodeVariableValues(it *Item) ([]Variable, error) {
	if it.Type != TypeVariableValues {
		return nil, &WrongTypeError{Want: TypeVariableValues, Got: it.Type}
	}
	c := cursor{b: it.Body}
	n, ok := c.u32()
	if !ok {
		return nil, ErrTruncated
	}
	vars := make([]Variable, 0, c.capFor(n, 8+unitsSize+1))
	for i := uint32(0); i < n; i++ {
		v, ok := c.f64()
		if !ok {
			return nil, ErrTruncated
		}
		units, ok := c.fixed(unitsSize)
		if !ok {
			return nil, ErrTruncated
		}
		name, ok := c.cstring()
		if !ok {
			return nil, ErrTruncated
		}
		vars = append(vars, Variable{Name: name, Value: v, Units: units})
	}
	return vars, nil
}

// DecodeParameterData reads one event: trigger number, count, then
// (id, value) pairs.
func DecodeParameterData(it *Item) (ParameterData, error) {
	if it.Type != TypeParameterData {
		return ParameterData{}, &WrongTypeError{Want: TypeParameterData, Got: it.Type}
	}
	c := cursor{b: it.Body}
	trig, ok := c.u64()
	if !ok {
		return ParameterData{}, ErrTruncated
	}
	n, ok := c.u32()
	if !ok {
		return ParameterData{}, ErrTruncated
	}
	d := ParameterData{Trigger: trig, Values: make([]ParameterValue, 0, c.capFor(n, 4+8))}
	for i := uint32(0); i < n; i++ {
		id, ok := c.u32()
		if !ok {
			return ParameterData{}, ErrTruncated
		}
		v, ok := c.f64()
		if !ok {
			return ParameterData{}, ErrTruncated
		}
		d.Values = append(d.Values, ParameterValue{ID: id, Value: v})
	}
	return d, nil
}

// #endregion decode

// #region encode
// EncodeParameterDefinitions builds a parameter-definition record.
func EncodeParameterDefinitions(defs []ParameterDefinition) *Item {
	var b bytes.Buffer
	putU32(&b, uint32(len(defs)))
	for _, d := range defs {
		putU32(&b, d.ID)
		b.WriteString(d.Name)
		b.WriteByte(0)
	}
	return &Item{Type: TypeParameterDefinitions, Body: b.Bytes()}
}

// EncodeVariableValues builds a variable-values record. Units longer than
// the fixed field are truncated.
func EncodeVariableValues(vars []Variable) *Item {
	var b bytes.Buffer
	putU32(&b, uint32(len(vars)))
	for _, v := range vars {
		putU64(&b, math.Float64bits(v.Value))
		var units [unitsSize]byte
		copy(units[:unitsSize-1], v.Units)
		b.Write(units[:])
		b.WriteString(v.Name)
		b.WriteByte(0)
	}
	return &Item{Type: TypeVariableValues, Body: b.Bytes()}
}

// EncodeParameterData builds a data record.
func EncodeParameterData(d ParameterData) *Item {
	var b bytes.Buffer
	putU64(&b, d.Trigger)
	putU32(&b, uint32(len(d.Values)))
	for _, v := range d.Values {
		putU32(&b, v.ID)
		putU64(&b, math.Float64bits(v.Value))
	}
	return &Item{Type: TypeParameterData, Body: b.Bytes()}
}

func putU32(b *bytes.Buffer, v uint32) {
	var buf [4]byte
	order.PutUint32(buf[:], v)
	b.Write(buf[:])
}

func putU64(b *bytes.Buffer, v uint64) {
	var buf [8]byte
	order.PutUint64(buf[:], v)
	b.Write(buf[:])
}

// #endregion encode

// #region cursor
type cursor struct {
	b   []byte
	off int
}

func (c *cursor) take(n int) ([]byte, bool) {
	if c.off+n > len(c.b) {
		return nil, false
	}
	p := c.b[c.off : c.off+n]
	c.off += n
	return p, true
}

// capFor bounds a slice capacity for n entries of at least entrySize bytes
// by what is left in the body, so a corrupt count cannot force a large
// allocation.
func (c *cursor) capFor(n uint32, entrySize int) int {
	return min(int(n), (len(c.b)-c.off)/entrySize)
}

func (c *cursor) u32() (uint32, bool) {
	p, ok := c.take(4)
	if !ok {
		return 0, false
	}
	return order.Uint32(p), true
}

func (c *cursor) u64() (uint64, bool) {
	p, ok := c.take(8)
	if !ok {
		return 0, false
	}
	return order.Uint64(p), true
}

func (c *cursor) f64() (float64, bool) {
	u, ok := c.u64()
	return math.Float64frombits(u), ok
}

func (c *cursor) cstring() (string, bool) {
	i := bytes.IndexByte(c.b[c.off:], 0)
	if i < 0 {
		return "", false
	}
	s := string(c.b[c.off : c.off+i])
	c.off += i + 1
	return s, true
}

func (c *cursor) fixed(n int) (string, bool) {
	p, ok := c.take(n)
	if !ok {
		return "", false
	}
	if i := bytes.IndexByte(p, 0); i >= 0 {
		p = p[:i]
	}
	return string(p), true
}

// #endregion cursor
