// Package satvm defines the boundary of a sandboxed smart-contract
// execution engine: untrusted Lua script text paired with a persistent
// state value, invoked by named method, payload, and an attached
// payment amount.
//
// The core [Engine] interface is the call boundary. All side effects
// available to a script — payments, network stubs, hashing,
// diagnostics — are mediated through the fixed [Host] capability
// surface, injected by construction rather than discovered
// dynamically.
//
// The engine decides, under policy, whether a simulated payment would
// be authorized and tallies the amounts; it never performs real
// payments or real network calls.
package satvm

import (
	"context"

	"github.com/satvm/satvm/types"
)

// Engine executes contract calls.
//
// Execute runs one call to completion, fault, or quota exhaustion and
// returns a uniformly shaped result. Script-level faults never surface
// as the error return: they are converted into the result's Error and
// Fault fields, with any payments accepted before the fault preserved.
// The error return is reserved for host-side misuse (malformed
// request, undecodable prior state).
//
// Implementations must be safe for concurrent use: every call gets its
// own sandbox instance and accumulators.
type Engine interface {
	Execute(ctx context.Context, req types.CallRequest) (types.ExecutionResult, error)
}

// Host is the fixed set of capabilities exposed into the sandbox, one
// method per operation. Implementations are call-scoped: the payment
// ledger and running total reset with every CallRequest.
//
// All methods must be total over their sandboxed input domain:
// malformed input is reported as a rejection or empty result, never a
// crash. The one exception is an undecodable invoice passed to Pay,
// which is surfaced as a controlled fault since it indicates a
// scripting bug rather than a policy rejection.
type Host interface {
	// Pay decodes the invoice, evaluates the filter, and on acceptance
	// records the payment and returns its amount in millisatoshis. On
	// policy rejection it returns 0 plus a human-readable reason and
	// records nothing. A non-nil error is a controlled fault the
	// sandbox raises into the script.
	Pay(invoice string, filter *types.PaymentFilter) (msats int64, reason string, err error)

	// GetText and GetJSON are sandboxed stand-ins for HTTP GET. The
	// in-core defaults perform no network access and return "" and an
	// empty mapping respectively.
	GetText(url string, headers map[string]interface{}) string
	GetJSON(url string, headers map[string]interface{}) interface{}

	// SHA256 returns the hex-encoded digest of the preimage.
	SHA256(preimage string) string

	// Print is a diagnostic sink. Contract logic must never depend on
	// its effects.
	Print(args ...interface{})

	// Payments returns the ordered, append-only ledger of payments
	// accepted so far in this call.
	Payments() []types.PaymentRecord

	// TotalPaid returns the millisatoshi sum over Payments.
	TotalPaid() int64
}

// Connection is a transport-agnostic handle on an engine. Both the
// gRPC client and the in-process adapter implement this.
type Connection interface {
	Engine

	// DecodeInvoice decodes a payment request without running any
	// script, using the engine's configured codec.
	DecodeInvoice(ctx context.Context, invoice string) (types.DecodedInvoice, error)

	// Close terminates the connection.
	Close() error
}
