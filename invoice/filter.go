package invoice

import "github.com/satvm/satvm/types"

// Rejection explains why a requested payment was refused by a filter.
// The field named is always the first one violated in evaluation
// order; callers may rely on that.
type Rejection struct {
	Field  string
	Reason string
}

func (r *Rejection) String() string { return r.Reason }

// Evaluate applies a filter to a decoded invoice. Checks run in fixed
// order — max, exact, hash, payee — and the first failing check wins.
// Absent fields are not checked; a nil filter accepts everything.
//
// On acceptance the invoice amount (millisatoshis) is returned with a
// nil Rejection. On rejection the amount is 0.
func Evaluate(inv types.DecodedInvoice, f *types.PaymentFilter) (int64, *Rejection) {
	if f != nil {
		if f.Max != nil && inv.AmountMilliSats > *f.Max {
			return 0, &Rejection{Field: "max", Reason: "max doesn't match"}
		}
		if f.Exact != nil && inv.AmountMilliSats != *f.Exact {
			return 0, &Rejection{Field: "exact", Reason: "exact doesn't match"}
		}
		if f.Hash != "" && inv.PaymentHash != f.Hash {
			return 0, &Rejection{Field: "hash", Reason: "hash doesn't match"}
		}
		if f.Payee != "" && inv.PayeeNodeID != f.Payee {
			return 0, &Rejection{Field: "payee", Reason: "payee doesn't match"}
		}
	}
	return inv.AmountMilliSats, nil
}
