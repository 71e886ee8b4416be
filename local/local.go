// Package local provides a zero-copy, in-process engine connection.
//
// For callers compiled into the same binary as the engine, this
// adapter satisfies satvm.Connection directly on a sandbox.Engine,
// with no serialization overhead.
package local

import (
	"context"

	"github.com/satvm/satvm"
	"github.com/satvm/satvm/sandbox"
	"github.com/satvm/satvm/types"
)

// Compile-time interface check.
var _ satvm.Connection = (*Connection)(nil)

// Connection wraps a local sandbox engine.
type Connection struct {
	engine *sandbox.Engine
}

// NewConnection creates an in-process connection around the given
// engine.
func NewConnection(engine *sandbox.Engine) *Connection {
	return &Connection{engine: engine}
}

func (c *Connection) Execute(ctx context.Context, req types.CallRequest) (types.ExecutionResult, error) {
	return c.engine.Execute(ctx, req)
}

func (c *Connection) DecodeInvoice(ctx context.Context, bolt11 string) (types.DecodedInvoice, error) {
	return c.engine.DecodeInvoice(ctx, bolt11)
}

func (c *Connection) Close() error { return nil }

// Engine returns the underlying engine for advanced use cases.
func (c *Connection) Engine() *sandbox.Engine {
	return c.engine
}
