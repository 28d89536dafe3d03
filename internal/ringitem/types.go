package ringitem

import (
	"errors"
	"fmt"
)

// #region type-ids
// Record type ids consumed by the analysis pipeline.
const (
	TypeParameterDefinitions uint32 = 32768
	TypeVariableValues       uint32 = 32769
	TypeParameterData        uint32 = 32770
)

// TypeName labels a record type for summaries.
func TypeName(t uint32) string {
	switch t {
	case TypeParameterDefinitions:
		return "parameter_definitions"
	case TypeVariableValues:
		return "variable_values"
	case TypeParameterData:
		return "parameter_data"
	}
	return fmt.Sprintf("type_%d", t)
}

// #endregion type-ids

// #region layout
const (
	headerSize = 12
	// bodyHeaderBytes is the size of the optional body header in the payload.
	bodyHeaderBytes = 16
	// noBodyHeader is the body_header_size field value of an item without a
	// body header: the field counts itself.
	noBodyHeader = 4
	// unitsSize is the fixed width of a variable's units string.
	unitsSize = 32
)

// MaxItemSize is the largest item the reader accepts, header included.
const MaxItemSize = 1 << 24

// #endregion layout

// #region body-header
// BodyHeader is the optional event-builder header of a record.
type BodyHeader struct {
	Timestamp   uint64 `json:"timestamp"`
	SourceID    uint32 `json:"source_id"`
	BarrierType uint32 `json:"barrier_type"`
}

// #endregion body-header

// #region typed-items
// ParameterDefinition binds a record-local id to a parameter name.
type ParameterDefinition struct {
	ID   uint32 `json:"id"`
	Name string `json:"name"`
}

// Variable is one steering variable with its units.
type Variable struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Units string  `json:"units"`
}

// ParameterValue is one (id, value) pair of a data record.
type ParameterValue struct {
	ID    uint32  `json:"id"`
	Value float64 `json:"value"`
}

// ParameterData is the payload of one analyzed event.
type ParameterData struct {
	Trigger uint64           `json:"trigger"`
	Values  []ParameterValue `json:"values"`
}

// #endregion typed-items

// #region errors
var (
	// ErrShortHeader is returned when the stream ends inside a header.
	ErrShortHeader = errors.New("ring item header truncated")
	// ErrInvalidHeader is returned when the size field is smaller than the header.
	ErrInvalidHeader = errors.New("invalid ring item header")
	// ErrTruncated is returned when a body or payload ends early.
	ErrTruncated = errors.New("ring item body truncated")
	// ErrItemTooLarge is returned when the size field exceeds MaxItemSize.
	ErrItemTooLarge = errors.New("ring item too large")
)

// WrongTypeError is returned when decoding an item as the wrong record type.
type WrongTypeError struct {
	Want, Got uint32
}

func (e *WrongTypeError) Error() string {
	return fmt.Sprintf("ring item type %d, want %d", e.Got, e.Want)
}

// #endregion errors
