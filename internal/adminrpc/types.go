package adminrpc

import (
	"github.com/danielpatrickdp/histogrammer/go-engine/internal/conditions"
	"github.com/danielpatrickdp/histogrammer/go-engine/internal/engine"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "histogrammer.admin.v1.Admin"

// #region requests
// Requests and responses travel as google.protobuf.Struct; these are their
// JSON shapes.

type NameRequest struct {
	Name string `json:"name"`
}

type ExtendRequest struct {
	Name         string   `json:"name"`
	Dependencies []string `json:"dependencies"`
}

type GateRequest struct {
	Spectrum  string `json:"spectrum"`
	Condition string `json:"condition,omitempty"`
}

type ClearRequest struct {
	Names []string `json:"names,omitempty"`
}

// #endregion requests

// #region responses
type DefineParameterResponse struct {
	ID uint32 `json:"id"`
}

type DefineConditionResponse struct {
	Replaced bool `json:"replaced"`
}

type ParametersResponse struct {
	Parameters []engine.ParameterInfo `json:"parameters"`
}

type ConditionsResponse struct {
	Conditions []conditions.Description `json:"conditions"`
}

type SpectraResponse struct {
	Spectra []engine.SpectrumInfo `json:"spectra"`
}

// StatusResponse reports the session the server is bound to.
type StatusResponse struct {
	RunID  string `json:"run_id"`
	Events uint64 `json:"events"`
}

// #endregion responses
