// Package grpcapi implements the calculator gRPC service. Requests and
// responses use the protobuf well-known wrapper messages, so clients need no
// generated code:
//
//	service calc.v1.Calculator {
//	  rpc Evaluate(google.protobuf.StringValue) returns (google.protobuf.Int64Value);
//	}
package grpcapi

import (
	"context"
	"fmt"
	"net"
	"strings"

	"github.com/rs/zerolog"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/lemonberrylabs/calc/pkg/expr"
	"github.com/lemonberrylabs/calc/pkg/store"
	"github.com/lemonberrylabs/calc/pkg/types"
)

const (
	serviceName    = "calc.v1.Calculator"
	evaluateMethod = "/" + serviceName + "/Evaluate"

	// errorDomain is the ErrorInfo domain attached to evaluation failures.
	errorDomain = "calc.lemonberrylabs.dev"
)

// CalculatorServer is the server API for the Calculator service.
type CalculatorServer interface {
	Evaluate(context.Context, *wrapperspb.StringValue) (*wrapperspb.Int64Value, error)
}

var calculatorServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*CalculatorServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Evaluate", Handler: evaluateHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "calc/v1/calculator.proto",
}

func evaluateHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CalculatorServer).Evaluate(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: evaluateMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(CalculatorServer).Evaluate(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

// Server implements the Calculator gRPC service.
type Server struct {
	store     *store.Store
	logger    zerolog.Logger
	maxLength int
	grpc      *grpc.Server
}

// New creates a new gRPC server recording evaluations in s.
func New(s *store.Store, maxLength int, logger zerolog.Logger) *Server {
	srv := &Server{
		store:     s,
		logger:    logger,
		maxLength: maxLength,
	}

	gs := grpc.NewServer(grpc.UnaryInterceptor(srv.logCalls))
	gs.RegisterService(&calculatorServiceDesc, srv)
	srv.grpc = gs

	return srv
}

// Serve starts listening on the given address and serves gRPC requests.
func (s *Server) Serve(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("grpc listen: %w", err)
	}
	return s.grpc.Serve(lis)
}

// GracefulStop gracefully stops the gRPC server.
func (s *Server) GracefulStop() {
	s.grpc.GracefulStop()
}

func (s *Server) logCalls(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	resp, err := handler(ctx, req)
	s.logger.Debug().Str("method", info.FullMethod).Str("code", status.Code(err).String()).Msg("rpc")
	return resp, err
}

// Evaluate evaluates a single-line expression.
func (s *Server) Evaluate(ctx context.Context, req *wrapperspb.StringValue) (*wrapperspb.Int64Value, error) {
	src := req.GetValue()
	if strings.TrimSpace(src) == "" {
		return nil, status.Error(codes.InvalidArgument, "expression is required")
	}
	if strings.ContainsAny(src, "\n\x00") {
		return nil, status.Error(codes.InvalidArgument, "expression must be a single line")
	}
	if len(src) > s.maxLength {
		return nil, status.Errorf(codes.InvalidArgument, "expression exceeds maximum length of %d characters", s.maxLength)
	}

	value, _, err := expr.EvalString(src)
	if err != nil {
		code := codes.InvalidArgument
		if types.IsClass(err, types.TagRuntimeError) {
			code = codes.OutOfRange
			ev := s.store.RecordFailure("grpc", src, err)
			s.logger.Info().Str("evaluation", ev.Name).Err(err).Msg("evaluation failed")
		}
		return nil, statusFromError(code, err)
	}

	ev := s.store.RecordSuccess("grpc", src, value)
	s.logger.Info().Str("evaluation", ev.Name).Int64("result", value).Msg("evaluation succeeded")
	return wrapperspb.Int64(value), nil
}

// statusFromError builds a status whose ErrorInfo details carry the error tags.
func statusFromError(code codes.Code, err error) error {
	st := status.New(code, err.Error())
	e, ok := types.AsError(err)
	if !ok {
		return st.Err()
	}

	info := &errdetails.ErrorInfo{
		Reason:   e.Tags[len(e.Tags)-1],
		Domain:   errorDomain,
		Metadata: map[string]string{"class": e.Class()},
	}
	if e.Column > 0 {
		info.Metadata["column"] = fmt.Sprint(e.Column)
	}
	detailed, derr := st.WithDetails(info)
	if derr != nil {
		return st.Err()
	}
	return detailed.Err()
}
