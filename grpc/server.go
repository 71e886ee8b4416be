package satvmgrpc

import (
	"context"
	"net"

	"google.golang.org/grpc"

	"github.com/satvm/satvm"
	"github.com/satvm/satvm/invoice"
	"github.com/satvm/satvm/types"
)

// Compile-time interface check.
var _ EngineServiceServer = (*GRPCServer)(nil)

// GRPCServer exposes an execution engine over gRPC. No type
// conversion is needed — domain types are serialized directly via
// cramberry.
type GRPCServer struct {
	engine  satvm.Engine
	decoder invoice.Decoder
}

// NewGRPCServer creates a gRPC server around the given engine. The
// decoder serves the DecodeInvoice RPC and is typically the same one
// the engine pays with.
func NewGRPCServer(engine satvm.Engine, dec invoice.Decoder) *GRPCServer {
	return &GRPCServer{engine: engine, decoder: dec}
}

// Register adds the engine service to a gRPC server.
func (s *GRPCServer) Register(gs *grpc.Server) {
	RegisterEngineServiceServer(gs, s)
}

// Serve starts the gRPC server on the given listener.
func (s *GRPCServer) Serve(lis net.Listener, opts ...grpc.ServerOption) error {
	gs := grpc.NewServer(opts...)
	s.Register(gs)
	return gs.Serve(lis)
}

func (s *GRPCServer) Execute(ctx context.Context, req *types.CallRequest) (*types.ExecutionResult, error) {
	res, err := s.engine.Execute(ctx, *req)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (s *GRPCServer) DecodeInvoice(_ context.Context, req *DecodeInvoiceRequest) (*types.DecodedInvoice, error) {
	inv, err := s.decoder.Decode(req.Bolt11)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}
