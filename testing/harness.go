package satvmtest

import (
	"context"
	"testing"

	"github.com/satvm/satvm"
	"github.com/satvm/satvm/types"
)

// Harness drives a Connection from tests, turning host-side errors
// into test failures so that call sites stay focused on contract
// behavior.
type Harness struct {
	t    *testing.T
	conn satvm.Connection
}

// NewHarness creates a test harness around the given connection.
func NewHarness(t *testing.T, conn satvm.Connection) *Harness {
	t.Helper()
	return &Harness{t: t, conn: conn}
}

// Connection returns the underlying connection for direct access.
func (h *Harness) Connection() satvm.Connection {
	return h.conn
}

// Call runs one contract call. Host-side errors fail the test;
// script faults are returned inside the result for inspection.
func (h *Harness) Call(req types.CallRequest) types.ExecutionResult {
	h.t.Helper()
	res, err := h.conn.Execute(context.Background(), req)
	if err != nil {
		h.t.Fatalf("Execute (method=%s) failed: %v", req.Method, err)
	}
	return res
}

// MustComplete runs a call and asserts it ran to completion.
func (h *Harness) MustComplete(req types.CallRequest) types.ExecutionResult {
	h.t.Helper()
	res := h.Call(req)
	if res.Fault != types.FaultNone {
		h.t.Fatalf("call %s faulted (%s): %s", req.Method, res.Fault, res.Error)
	}
	return res
}

// MustFault runs a call and asserts it faulted with the given kind.
func (h *Harness) MustFault(req types.CallRequest, kind types.FaultKind) types.ExecutionResult {
	h.t.Helper()
	res := h.Call(req)
	if res.Fault != kind {
		h.t.Fatalf("call %s: expected %s fault, got %s: %s",
			req.Method, kind, res.Fault, res.Error)
	}
	return res
}

// Init constructs a contract and returns its initial state.
func (h *Harness) Init(script, payload string) types.JSON {
	h.t.Helper()
	res := h.MustComplete(MakeRequest(script, "", types.InitMethod, payload))
	return res.StateAfter
}

// DecodeInvoice decodes a payment request, failing the test on error.
func (h *Harness) DecodeInvoice(bolt11 string) types.DecodedInvoice {
	h.t.Helper()
	inv, err := h.conn.DecodeInvoice(context.Background(), bolt11)
	if err != nil {
		h.t.Fatalf("DecodeInvoice failed: %v", err)
	}
	return inv
}

// ExpectState asserts semantic equality between a result state and an
// expected JSON document.
func (h *Harness) ExpectState(res types.ExecutionResult, want string) {
	h.t.Helper()
	if !res.StateAfter.Equal(types.JSON(want)) {
		h.t.Errorf("state mismatch: expected %s, got %s", want, res.StateAfter)
	}
}

// ExpectReturned asserts semantic equality between a result's
// returned value and an expected JSON document.
func (h *Harness) ExpectReturned(res types.ExecutionResult, want string) {
	h.t.Helper()
	if !res.ReturnedValue.Equal(types.JSON(want)) {
		h.t.Errorf("returned value mismatch: expected %s, got %s", want, res.ReturnedValue)
	}
}

// --- Helper Factories ---

// MakeRequest builds a CallRequest from JSON literals. Empty state
// and payload strings mean absent.
func MakeRequest(script, state, method, payload string) types.CallRequest {
	req := types.CallRequest{
		Script: script,
		Method: method,
	}
	if state != "" {
		req.PriorState = types.JSON(state)
	}
	if payload != "" {
		req.Payload = types.JSON(payload)
	}
	return req
}
