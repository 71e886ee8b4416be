package types

// DecodedInvoice is the engine's view of a payment request. It is a
// pure function of the invoice string: same input, same output, no
// network involved.
type DecodedInvoice struct {
	// AmountMilliSats is the requested amount normalized to
	// millisatoshis regardless of the invoice's native denomination.
	// Zero for amountless invoices.
	AmountMilliSats int64 `cramberry:"1" json:"amount_msat"`

	// PaymentHash is the hex-encoded payment hash.
	PaymentHash string `cramberry:"2" json:"payment_hash"`

	// PayeeNodeID is the hex-encoded public key of the payee node,
	// taken from the invoice or recovered from its signature.
	PayeeNodeID string `cramberry:"3" json:"payee"`

	// CreatedAt is the invoice timestamp (unix seconds).
	CreatedAt int64 `cramberry:"4" json:"created_at"`

	// ExpirySeconds is the invoice validity window after CreatedAt.
	ExpirySeconds int64 `cramberry:"5" json:"expiry"`
}

// PaymentFilter is the constraint set a script may pass to `pay`.
// Absent fields are not checked. Amounts are in millisatoshis, the
// engine's canonical unit.
type PaymentFilter struct {
	Max   *int64 `cramberry:"1" json:"max,omitempty"`
	Exact *int64 `cramberry:"2" json:"exact,omitempty"`
	Hash  string `cramberry:"3" json:"hash,omitempty"`
	Payee string `cramberry:"4" json:"payee,omitempty"`
}

// FilterFromMap builds a PaymentFilter from the loose mapping a Lua
// script passes to `pay`. Unknown keys and mistyped values are
// ignored; numbers arrive from the interpreter as floats.
func FilterFromMap(m map[string]interface{}) *PaymentFilter {
	if m == nil {
		return nil
	}
	f := &PaymentFilter{}
	if v, ok := toInt64(m["max"]); ok {
		f.Max = &v
	}
	if v, ok := toInt64(m["exact"]); ok {
		f.Exact = &v
	}
	if s, ok := m["hash"].(string); ok {
		f.Hash = s
	}
	if s, ok := m["payee"].(string); ok {
		f.Payee = s
	}
	return f
}

func toInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case float64:
		return int64(n), true
	case int64:
		return n, true
	case int:
		return int64(n), true
	}
	return 0, false
}
