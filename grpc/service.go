package satvmgrpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"

	"github.com/satvm/satvm/types"
)

const serviceName = "github.com/satvm/satvm.v1.EngineService"

// EngineServiceServer is the server-side interface for the engine
// gRPC service.
type EngineServiceServer interface {
	Execute(context.Context, *types.CallRequest) (*types.ExecutionResult, error)
	DecodeInvoice(context.Context, *DecodeInvoiceRequest) (*types.DecodedInvoice, error)
}

// RegisterEngineServiceServer registers the EngineServiceServer on a
// gRPC server.
func RegisterEngineServiceServer(s *grpc.Server, srv EngineServiceServer) {
	s.RegisterService(&serviceDesc, srv)
}

// --- Handler functions ---

func handlerExecute(srv any, ctx context.Context, dec func(any) error, _ grpc.UnaryServerInterceptor) (any, error) {
	req := new(types.CallRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	return srv.(EngineServiceServer).Execute(ctx, req)
}

func handlerDecodeInvoice(srv any, ctx context.Context, dec func(any) error, _ grpc.UnaryServerInterceptor) (any, error) {
	req := new(DecodeInvoiceRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	return srv.(EngineServiceServer).DecodeInvoice(ctx, req)
}

// fullMethod builds the full gRPC method path.
func fullMethod(method string) string {
	return fmt.Sprintf("/%s/%s", serviceName, method)
}

// serviceDesc is the manual gRPC service descriptor for the engine.
var serviceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*EngineServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Execute", Handler: handlerExecute},
		{MethodName: "DecodeInvoice", Handler: handlerDecodeInvoice},
	},
	Metadata: "github.com/satvm/satvm/v1/service.cram",
}
