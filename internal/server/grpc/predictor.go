// Package grpc exposes the prediction service over gRPC.
//
// The service uses protobuf well-known types so no generated code is needed:
//
//	service Predictor {
//	  rpc Predict(google.protobuf.Struct) returns (google.protobuf.DoubleValue);
//	}
//
// The request struct has the same shape as the HTTP body: {"features": [...]}.
package grpc

import (
	"context"
	"errors"
	"log/slog"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/ekisa-team/estimo/internal/model"
	"github.com/ekisa-team/estimo/internal/service"
)

const (
	// ServiceName is the fully qualified gRPC service name.
	ServiceName = "estimo.v1.Predictor"

	// PredictMethod is the full method name of Predict.
	PredictMethod = "/" + ServiceName + "/Predict"
)

// PredictorServer is the server API for the Predictor service.
type PredictorServer interface {
	Predict(ctx context.Context, req *structpb.Struct) (*wrapperspb.DoubleValue, error)
}

// ServiceDesc describes the Predictor service.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*PredictorServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Predict",
			Handler:    predictHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "estimo/v1/predictor.proto",
}

func predictHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PredictorServer).Predict(ctx, in)
	}

	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: PredictMethod,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(PredictorServer).Predict(ctx, req.(*structpb.Struct))
	}

	return interceptor(ctx, in, info, handler)
}

// Register registers the Predictor service on s.
func Register(s grpc.ServiceRegistrar, srv PredictorServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// Server implements PredictorServer on top of the prediction service.
type Server struct {
	service *service.Predict
}

// NewServer creates a new Server.
func NewServer(svc *service.Predict) *Server {
	return &Server{service: svc}
}

// Predict handles one prediction request.
func (s *Server) Predict(ctx context.Context, req *structpb.Struct) (*wrapperspb.DoubleValue, error) {
	features, err := s.service.FromValue(req.AsMap())
	if err != nil {
		return nil, toStatus(err)
	}

	y, err := s.service.Predict(ctx, features)
	if err != nil {
		return nil, toStatus(err)
	}

	return wrapperspb.Double(y), nil
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, service.ErrInvalidPayload), errors.Is(err, service.ErrDimensionOrType):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, model.ErrUnavailable):
		return status.Error(codes.Unavailable, err.Error())
	default:
		slog.Error("gRPC prediction failed", "error", err)
		return status.Error(codes.Internal, err.Error())
	}
}
