package satvmgrpc

// Transport-specific wrapper types for RPC methods whose interface
// signatures don't map to a single request/response struct.
// These are used only for gRPC serialization boundaries.

// DecodeInvoiceRequest wraps the parameter for Engine.DecodeInvoice.
type DecodeInvoiceRequest struct {
	Bolt11 string `cramberry:"1"`
}
