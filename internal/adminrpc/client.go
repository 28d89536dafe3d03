package adminrpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/danielpatrickdp/histogrammer/go-engine/internal/conditions"
	"github.com/danielpatrickdp/histogrammer/go-engine/internal/engine"
)

// #region client-struct
// Client talks to a running analyzer's admin service.
type Client struct {
	conn *grpc.ClientConn
	cc   grpc.ClientConnInterface
}

// #endregion client-struct

// #region constructor
// NewClient connects to the admin service at addr.
func NewClient(addr string, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("grpc dial %s: %w", addr, err)
	}
	return &Client{conn: conn, cc: conn}, nil
}

// NewClientWithConn wraps an existing connection; Close is then a no-op.
func NewClientWithConn(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// Close shuts down the gRPC connection.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// #endregion constructor

// #region invoke
func (c *Client) invoke(ctx context.Context, method string, in, out any) error {
	req, err := toStruct(in)
	if err != nil {
		return fmt.Errorf("%s request: %w", method, err)
	}
	resp := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, req, resp); err != nil {
		return fmt.Errorf("%s rpc: %w", method, err)
	}
	if err := fromStruct(resp, out); err != nil {
		return fmt.Errorf("%s response: %w", method, err)
	}
	return nil
}

// #endregion invoke

// #region parameters
func (c *Client) DefineParameter(ctx context.Context, def engine.ParameterDef) (uint32, error) {
	var resp DefineParameterResponse
	if err := c.invoke(ctx, "DefineParameter", def, &resp); err != nil {
		return 0, err
	}
	return resp.ID, nil
}

func (c *Client) UpdateParameter(ctx context.Context, def engine.ParameterDef) error {
	return c.invoke(ctx, "UpdateParameter", def, nil)
}

func (c *Client) ListParameters(ctx context.Context) ([]engine.ParameterInfo, error) {
	var resp ParametersResponse
	if err := c.invoke(ctx, "ListParameters", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Parameters, nil
}

// #endregion parameters

// #region conditions
func (c *Client) DefineCondition(ctx context.Context, def engine.ConditionDef) (bool, error) {
	var resp DefineConditionResponse
	if err := c.invoke(ctx, "DefineCondition", def, &resp); err != nil {
		return false, err
	}
	return resp.Replaced, nil
}

func (c *Client) ExtendCondition(ctx context.Context, name string, deps ...string) error {
	return c.invoke(ctx, "ExtendCondition", ExtendRequest{Name: name, Dependencies: deps}, nil)
}

func (c *Client) DeleteCondition(ctx context.Context, name string) error {
	return c.invoke(ctx, "DeleteCondition", NameRequest{Name: name}, nil)
}

func (c *Client) ListConditions(ctx context.Context) ([]conditions.Description, error) {
	var resp ConditionsResponse
	if err := c.invoke(ctx, "ListConditions", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Conditions, nil
}

// #endregion conditions

// #region spectra
func (c *Client) CreateSpectrum(ctx context.Context, def engine.SpectrumDef) error {
	return c.invoke(ctx, "CreateSpectrum", def, nil)
}

func (c *Client) DeleteSpectrum(ctx context.Context, name string) error {
	return c.invoke(ctx, "DeleteSpectrum", NameRequest{Name: name}, nil)
}

func (c *Client) ApplyGate(ctx context.Context, spectrum, condition string) error {
	return c.invoke(ctx, "ApplyGate", GateRequest{Spectrum: spectrum, Condition: condition}, nil)
}

func (c *Client) Ungate(ctx context.Context, spectrum string) error {
	return c.invoke(ctx, "Ungate", GateRequest{Spectrum: spectrum}, nil)
}

func (c *Client) ClearSpectra(ctx context.Context, names ...string) error {
	return c.invoke(ctx, "ClearSpectra", ClearRequest{Names: names}, nil)
}

func (c *Client) ListSpectra(ctx context.Context) ([]engine.SpectrumInfo, error) {
	var resp SpectraResponse
	if err := c.invoke(ctx, "ListSpectra", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Spectra, nil
}

func (c *Client) GetContents(ctx context.Context, name string) (engine.Contents, error) {
	var resp engine.Contents
	if err := c.invoke(ctx, "GetContents", NameRequest{Name: name}, &resp); err != nil {
		return engine.Contents{}, err
	}
	return resp, nil
}

// Status reports the server's run id and event count.
func (c *Client) Status(ctx context.Context) (StatusResponse, error) {
	var resp StatusResponse
	if err := c.invoke(ctx, "Status", nil, &resp); err != nil {
		return StatusResponse{}, err
	}
	return resp, nil
}

// #endregion spectra
