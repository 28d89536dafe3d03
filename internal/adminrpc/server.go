package adminrpc

import (
	"context"
	"path"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/danielpatrickdp/histogrammer/go-engine/internal/engine"
	"github.com/danielpatrickdp/histogrammer/go-engine/internal/metrics"
	"github.com/danielpatrickdp/histogrammer/go-engine/internal/session"
)

// #region server
// AdminServer is the administrative surface served over gRPC.
type AdminServer interface {
	DefineParameter(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateParameter(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DefineCondition(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ExtendCondition(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteCondition(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CreateSpectrum(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteSpectrum(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ApplyGate(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Ungate(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ClearSpectra(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListParameters(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListConditions(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListSpectra(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetContents(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Status(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// Server implements AdminServer over a session.
type Server struct {
	sess *session.Session
}

// NewServer binds a server to sess.
func NewServer(sess *session.Session) *Server {
	return &Server{sess: sess}
}

// Register attaches the admin service to gs.
func Register(gs *grpc.Server, srv AdminServer) {
	gs.RegisterService(&serviceDesc, srv)
}

// #endregion server

// #region handlers
func (s *Server) DefineParameter(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var def engine.ParameterDef
	if err := decode(in, &def); err != nil {
		return nil, err
	}
	id, err := s.sess.DefineParameter(def)
	if err != nil {
		return nil, toStatus(err)
	}
	return encode(DefineParameterResponse{ID: id})
}

func (s *Server) UpdateParameter(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var def engine.ParameterDef
	if err := decode(in, &def); err != nil {
		return nil, err
	}
	return encode(nil, s.sess.UpdateParameter(def))
}

func (s *Server) DefineCondition(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var def engine.ConditionDef
	if err := decode(in, &def); err != nil {
		return nil, err
	}
	replaced, err := s.sess.DefineCondition(def)
	if err != nil {
		return nil, toStatus(err)
	}
	return encode(DefineConditionResponse{Replaced: replaced})
}

func (s *Server) ExtendCondition(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req ExtendRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	return encode(nil, s.sess.ExtendCondition(req.Name, req.Dependencies...))
}

func (s *Server) DeleteCondition(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req NameRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	return encode(nil, s.sess.DeleteCondition(req.Name))
}

func (s *Server) CreateSpectrum(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var def engine.SpectrumDef
	if err := decode(in, &def); err != nil {
		return nil, err
	}
	return encode(nil, s.sess.CreateSpectrum(def))
}

func (s *Server) DeleteSpectrum(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req NameRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	return encode(nil, s.sess.DeleteSpectrum(req.Name))
}

func (s *Server) ApplyGate(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req GateRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	return encode(nil, s.sess.ApplyGate(req.Spectrum, req.Condition))
}

func (s *Server) Ungate(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req GateRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	return encode(nil, s.sess.Ungate(req.Spectrum))
}

func (s *Server) ClearSpectra(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req ClearRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	return encode(nil, s.sess.ClearSpectra(req.Names...))
}

func (s *Server) ListParameters(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return encode(ParametersResponse{Parameters: s.sess.ListParameters()})
}

func (s *Server) ListConditions(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return encode(ConditionsResponse{Conditions: s.sess.ListConditions()})
}

func (s *Server) ListSpectra(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return encode(SpectraResponse{Spectra: s.sess.ListSpectra()})
}

func (s *Server) GetContents(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req NameRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	c, err := s.sess.Contents(req.Name)
	if err != nil {
		return nil, toStatus(err)
	}
	return encode(c)
}

func (s *Server) Status(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return encode(StatusResponse{RunID: s.sess.RunID(), Events: s.sess.EventsProcessed()})
}

func decode(in *structpb.Struct, v any) error {
	if err := fromStruct(in, v); err != nil {
		return status.Error(codes.InvalidArgument, err.Error())
	}
	return nil
}

// encode builds the response; a non-nil opErr (at most one) wins.
func encode(v any, opErr ...error) (*structpb.Struct, error) {
	for _, err := range opErr {
		if err != nil {
			return nil, toStatus(err)
		}
	}
	st, err := toStruct(v)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return st, nil
}

// #endregion handlers

// #region interceptor
// MetricsInterceptor counts every admin RPC by method and status code.
func MetricsInterceptor(m *metrics.Metrics) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		m.RPC(path.Base(info.FullMethod), status.Code(err).String(), time.Since(start))
		return resp, err
	}
}

// #endregion interceptor

// #region service-desc
type adminCall func(AdminServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unary(name string, call adminCall) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(AdminServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/" + name}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(AdminServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AdminServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("DefineParameter", AdminServer.DefineParameter),
		unary("UpdateParameter", AdminServer.UpdateParameter),
		unary("DefineCondition", AdminServer.DefineCondition),
		unary("ExtendCondition", AdminServer.ExtendCondition),
		unary("DeleteCondition", AdminServer.DeleteCondition),
		unary("CreateSpectrum", AdminServer.CreateSpectrum),
		unary("DeleteSpectrum", AdminServer.DeleteSpectrum),
		unary("ApplyGate", AdminServer.ApplyGate),
		unary("Ungate", AdminServer.Ungate),
		unary("ClearSpectra", AdminServer.ClearSpectra),
		unary("ListParameters", AdminServer.ListParameters),
		unary("ListConditions", AdminServer.ListConditions),
		unary("ListSpectra", AdminServer.ListSpectra),
		unary("GetContents", AdminServer.GetContents),
		unary("Status", AdminServer.Status),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "histogrammer/admin/v1/admin.proto",
}

// #endregion service-desc
