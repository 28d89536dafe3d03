package adminrpc

import (
	"encoding/json"
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/danielpatrickdp/histogrammer/go-engine/internal/conditions"
	"github.com/danielpatrickdp/histogrammer/go-engine/internal/engine"
	"github.com/danielpatrickdp/histogrammer/go-engine/internal/parameters"
	"github.com/danielpatrickdp/histogrammer/go-engine/internal/spectra"
)

// #region struct-codec
// toStruct converts a JSON-tagged Go value into a protobuf Struct.
func toStruct(v any) (*structpb.Struct, error) {
	st := &structpb.Struct{}
	if v == nil {
		return st, nil
	}
	bs, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}
	if err := protojson.Unmarshal(bs, st); err != nil {
		return nil, fmt.Errorf("to struct: %w", err)
	}
	return st, nil
}

// fromStruct fills v from a protobuf Struct.
func fromStruct(st *structpb.Struct, v any) error {
	if v == nil {
		return nil
	}
	bs, err := protojson.Marshal(st)
	if err != nil {
		return fmt.Errorf("from struct: %w", err)
	}
	if err := json.Unmarshal(bs, v); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	return nil
}

// #endregion struct-codec

// #region status-mapping
// toStatus maps domain errors onto gRPC status codes.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	return status.Error(codeFor(err), err.Error())
}

func codeFor(err error) codes.Code {
	var (
		dupParam    *parameters.DuplicateNameError
		dupSpec     *spectra.DuplicateSpectrumError
		unknown     *spectra.UnknownParameterError
		noGate      *spectra.NoSuchGateError
		noCond      *engine.NoSuchConditionError
		noSpec      *engine.NoSuchSpectrumError
		undefined   *spectra.AxisUndefinedError
		invalidAxis *spectra.InvalidAxisError
		invalidDef  *engine.InvalidDefinitionError
		cycle       *conditions.CycleError
	)
	switch {
	case errors.As(err, &dupParam), errors.As(err, &dupSpec):
		return codes.AlreadyExists
	case errors.As(err, &unknown), errors.As(err, &noGate), errors.As(err, &noCond), errors.As(err, &noSpec):
		return codes.NotFound
	case errors.As(err, &undefined), errors.As(err, &invalidAxis), errors.As(err, &invalidDef),
		errors.Is(err, spectra.ErrNoParameters), errors.Is(err, spectra.ErrTooFewParameters),
		errors.Is(err, spectra.ErrMismatchedPairs),
		errors.Is(err, conditions.ErrTooFewPoints):
		return codes.InvalidArgument
	case errors.As(err, &cycle), errors.Is(err, conditions.ErrDestroyed):
		return codes.FailedPrecondition
	}
	return codes.Internal
}

// #endregion status-mapping
