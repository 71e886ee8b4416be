package types

import "fmt"

// InitMethod is the reserved method name denoting contract
// construction. A call to InitMethod has no prior state; the method's
// return value becomes the contract's initial state.
const InitMethod = "__init__"

// CallRequest describes one invocation of a contract method. It is
// constructed per call and discarded afterwards; the engine never
// retains it.
type CallRequest struct {
	// Script is the full Lua source of the contract.
	Script string `cramberry:"1"`

	// PriorState is the contract state produced by the previous call,
	// or absent for an InitMethod call. The engine treats it as opaque
	// structured data.
	PriorState JSON `cramberry:"2"`

	// Method is the contract method to invoke.
	Method string `cramberry:"3"`

	// Payload is the caller-supplied argument mapping, bound as the
	// `payload` global inside the sandbox. Absent means empty.
	Payload JSON `cramberry:"4"`

	// AttachedAmountSats is the payment attached to the call, in
	// satoshis, bound as the `satoshis` global. Must be >= 0.
	AttachedAmountSats int64 `cramberry:"5"`

	// FundsMilliSats is the contract's available balance in
	// millisatoshis. Only consulted when the engine runs with funds
	// tracking enabled; the spendable budget of the call is then
	// FundsMilliSats + AttachedAmountSats*1000.
	FundsMilliSats int64 `cramberry:"6"`
}

// Validate checks the structural invariants of the request.
func (r CallRequest) Validate() error {
	if r.Script == "" {
		return fmt.Errorf("empty contract script")
	}
	if r.Method == "" {
		return fmt.Errorf("empty method name")
	}
	if r.AttachedAmountSats < 0 {
		return fmt.Errorf("negative attached amount: %d sats", r.AttachedAmountSats)
	}
	return nil
}
