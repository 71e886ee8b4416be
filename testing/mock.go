// Package satvmtest provides test utilities for working with the
// contract execution engine: a mock invoice codec, a configurable
// mock engine, a test harness, and a compliance test suite for
// Connection implementations.
package satvmtest

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/tidwall/gjson"

	"github.com/satvm/satvm"
	"github.com/satvm/satvm/invoice"
	"github.com/satvm/satvm/types"
)

// Compile-time interface checks.
var (
	_ invoice.Decoder  = (*MockDecoder)(nil)
	_ satvm.Engine     = (*MockEngine)(nil)
	_ satvm.Connection = (*MockEngine)(nil)
)

// mockPrefix marks a mock payment request. What follows is a plain
// JSON document instead of bech32 material, so tests can mint
// invoices with any fields they need.
const mockPrefix = "lnmock1"

// Invoice builds a mock payment request for the given amount, payment
// hash and payee.
func Invoice(msats int64, hash, payee string) string {
	return fmt.Sprintf(`%s{"msat":%d,"hash":%q,"payee":%q}`, mockPrefix, msats, hash, payee)
}

// MockDecoder decodes mock payment requests built with Invoice.
// Strings without the mock prefix fail with InvalidInvoiceError,
// matching the contract of the real codec.
type MockDecoder struct {
	// DecodeFn overrides decoding entirely when set.
	DecodeFn func(string) (types.DecodedInvoice, error)

	DecodeCalls atomic.Int64
}

func (m *MockDecoder) Decode(bolt11 string) (types.DecodedInvoice, error) {
	m.DecodeCalls.Add(1)
	if m.DecodeFn != nil {
		return m.DecodeFn(bolt11)
	}

	if !strings.HasPrefix(bolt11, mockPrefix) {
		return types.DecodedInvoice{}, satvm.NewInvalidInvoiceError(bolt11, "missing mock prefix")
	}
	doc := bolt11[len(mockPrefix):]
	if !gjson.Valid(doc) {
		return types.DecodedInvoice{}, satvm.NewInvalidInvoiceError(bolt11, "malformed invoice body")
	}
	return types.DecodedInvoice{
		AmountMilliSats: gjson.Get(doc, "msat").Int(),
		PaymentHash:     gjson.Get(doc, "hash").String(),
		PayeeNodeID:     gjson.Get(doc, "payee").String(),
		CreatedAt:       gjson.Get(doc, "created_at").Int(),
		ExpirySeconds:   gjson.Get(doc, "expiry").Int(),
	}, nil
}

// MockEngine is a configurable engine for transport and integration
// testing. All methods are configurable via function fields;
// unconfigured methods return sensible defaults. It satisfies both
// Engine and Connection.
type MockEngine struct {
	// ExecuteFn overrides Execute. The default echoes the prior state
	// back as the result state with no fault.
	ExecuteFn func(context.Context, types.CallRequest) (types.ExecutionResult, error)

	// DecodeInvoiceFn overrides DecodeInvoice. The default is mock
	// invoice decoding.
	DecodeInvoiceFn func(context.Context, string) (types.DecodedInvoice, error)

	// Call counters (atomic for concurrent access).
	ExecuteCalls       atomic.Int64
	DecodeInvoiceCalls atomic.Int64

	decoder MockDecoder
}

func (m *MockEngine) Execute(ctx context.Context, req types.CallRequest) (types.ExecutionResult, error) {
	m.ExecuteCalls.Add(1)
	if m.ExecuteFn != nil {
		return m.ExecuteFn(ctx, req)
	}
	return types.ExecutionResult{StateAfter: req.PriorState}, nil
}

func (m *MockEngine) DecodeInvoice(ctx context.Context, bolt11 string) (types.DecodedInvoice, error) {
	m.DecodeInvoiceCalls.Add(1)
	if m.DecodeInvoiceFn != nil {
		return m.DecodeInvoiceFn(ctx, bolt11)
	}
	return m.decoder.Decode(bolt11)
}

func (m *MockEngine) Close() error { return nil }
