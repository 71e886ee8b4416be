package satvmgrpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"

	"github.com/satvm/satvm"
	"github.com/satvm/satvm/types"
)

// Compile-time interface check.
var _ satvm.Connection = (*Client)(nil)

// Client implements satvm.Connection for a remote engine over gRPC
// using cramberry serialization. No protobuf types or conversion
// layer required.
type Client struct {
	cc *grpc.ClientConn
}

// Dial connects to a remote execution engine.
func Dial(ctx context.Context, addr string, opts ...grpc.DialOption) (*Client, error) {
	opts = append(opts, grpc.WithDefaultCallOptions(
		grpc.ForceCodec(CramberryCodec{}),
	))
	cc, err := grpc.DialContext(ctx, addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("satvm client: dial %s: %w", addr, err)
	}
	return &Client{cc: cc}, nil
}

func (c *Client) Close() error {
	return c.cc.Close()
}

// Execute runs one contract call on the remote engine. Script faults
// travel inside the result; only transport and host-side misuse
// errors surface here.
func (c *Client) Execute(ctx context.Context, req types.CallRequest) (types.ExecutionResult, error) {
	resp := new(types.ExecutionResult)
	if err := c.cc.Invoke(ctx, fullMethod("Execute"), &req, resp); err != nil {
		return types.ExecutionResult{}, err
	}
	return *resp, nil
}

// DecodeInvoice decodes a payment request with the remote engine's
// codec.
func (c *Client) DecodeInvoice(ctx context.Context, bolt11 string) (types.DecodedInvoice, error) {
	req := &DecodeInvoiceRequest{Bolt11: bolt11}
	resp := new(types.DecodedInvoice)
	if err := c.cc.Invoke(ctx, fullMethod("DecodeInvoice"), req, resp); err != nil {
		return types.DecodedInvoice{}, err
	}
	return *resp, nil
}
