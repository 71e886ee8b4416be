package types

// FaultKind classifies how a call faulted.
type FaultKind uint8

const (
	// FaultNone: the call completed.
	FaultNone FaultKind = iota
	// FaultQuota: the script exhausted its step budget.
	FaultQuota
	// FaultInvalidInvoice: the script passed an undecodable payment
	// request to `pay`. Surfaced as a fault because it indicates a
	// scripting bug, not a policy rejection.
	FaultInvalidInvoice
	// FaultRuntime: any other interpreter-level error.
	FaultRuntime
)

func (k FaultKind) String() string {
	switch k {
	case FaultNone:
		return "none"
	case FaultQuota:
		return "quota"
	case FaultInvalidInvoice:
		return "invalid-invoice"
	case FaultRuntime:
		return "runtime"
	default:
		return "unknown"
	}
}

// PaymentRecord is one payment the contract authorized during a call:
// the raw invoice string plus its resolved amount.
type PaymentRecord struct {
	Invoice         string `cramberry:"1" json:"invoice"`
	AmountMilliSats int64  `cramberry:"2" json:"amount_msat"`
}

// ExecutionResult is the single, uniformly shaped outcome of a call.
//
// On success Error is empty and StateAfter/ReturnedValue are set. On
// fault StateAfter and ReturnedValue are absent, Error carries the
// annotated fault text, and PaymentsDone/TotalPaidMilliSats still
// reflect every payment accepted before the fault — the engine never
// rolls back already-recorded payments from the same call.
type ExecutionResult struct {
	StateAfter         JSON            `cramberry:"1" json:"state_after"`
	ReturnedValue      JSON            `cramberry:"2" json:"returned_value"`
	PaymentsDone       []PaymentRecord `cramberry:"3" json:"payments_done"`
	TotalPaidMilliSats int64           `cramberry:"4" json:"total_paid_msat"`
	Error              string          `cramberry:"5" json:"error"`
	Fault              FaultKind       `cramberry:"6" json:"fault,omitempty"`
}

// Completed reports whether the call ran to completion.
func (r ExecutionResult) Completed() bool { return r.Error == "" }
