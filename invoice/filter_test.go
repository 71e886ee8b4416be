package invoice

import (
	"testing"

	"github.com/satvm/satvm/types"
)

func i64(v int64) *int64 { return &v }

func TestEvaluate(t *testing.T) {
	inv := types.DecodedInvoice{
		AmountMilliSats: 5000,
		PaymentHash:     "h1",
		PayeeNodeID:     "p1",
	}

	cases := []struct {
		name   string
		filter *types.PaymentFilter
		msats  int64
		field  string // "" means accepted
	}{
		{"nil_filter", nil, 5000, ""},
		{"empty_filter", &types.PaymentFilter{}, 5000, ""},
		{"max_ok", &types.PaymentFilter{Max: i64(5000)}, 5000, ""},
		{"max_violated", &types.PaymentFilter{Max: i64(4999)}, 0, "max"},
		{"exact_ok", &types.PaymentFilter{Exact: i64(5000)}, 5000, ""},
		{"exact_violated", &types.PaymentFilter{Exact: i64(6000)}, 0, "exact"},
		{"hash_ok", &types.PaymentFilter{Hash: "h1"}, 5000, ""},
		{"hash_violated", &types.PaymentFilter{Hash: "h2"}, 0, "hash"},
		{"payee_ok", &types.PaymentFilter{Payee: "p1"}, 5000, ""},
		{"payee_violated", &types.PaymentFilter{Payee: "p2"}, 0, "payee"},
		{"all_ok", &types.PaymentFilter{
			Max: i64(9000), Exact: i64(5000), Hash: "h1", Payee: "p1",
		}, 5000, ""},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			msats, rej := Evaluate(inv, c.filter)
			if msats != c.msats {
				t.Errorf("expected %d msat, got %d", c.msats, msats)
			}
			if c.field == "" {
				if rej != nil {
					t.Fatalf("unexpected rejection: %s", rej)
				}
				return
			}
			if rej == nil {
				t.Fatal("expected rejection")
			}
			if rej.Field != c.field {
				t.Errorf("expected field %q violated, got %q", c.field, rej.Field)
			}
		})
	}
}

// Evaluation order is part of the contract: with several fields
// violated, the reported rejection is the first in max, exact, hash,
// payee order.
func TestEvaluateOrder(t *testing.T) {
	inv := types.DecodedInvoice{AmountMilliSats: 5000, PaymentHash: "h1", PayeeNodeID: "p1"}

	cases := []struct {
		name   string
		filter *types.PaymentFilter
		field  string
	}{
		{"max_before_exact", &types.PaymentFilter{Max: i64(100), Exact: i64(9)}, "max"},
		{"max_before_payee", &types.PaymentFilter{Max: i64(100), Payee: "p2"}, "max"},
		{"exact_before_hash", &types.PaymentFilter{Exact: i64(9), Hash: "h2"}, "exact"},
		{"hash_before_payee", &types.PaymentFilter{Hash: "h2", Payee: "p2"}, "hash"},
		{"all_violated", &types.PaymentFilter{
			Max: i64(1), Exact: i64(2), Hash: "h2", Payee: "p2",
		}, "max"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, rej := Evaluate(inv, c.filter)
			if rej == nil {
				t.Fatal("expected rejection")
			}
			if rej.Field != c.field {
				t.Errorf("expected %q reported first, got %q", c.field, rej.Field)
			}
		})
	}
}

func TestFilterFromMap(t *testing.T) {
	f := types.FilterFromMap(map[string]interface{}{
		"max":   float64(5000), // numbers arrive from Lua as floats
		"hash":  "h1",
		"payee": "p1",
		"bogus": "ignored",
	})
	if f.Max == nil || *f.Max != 5000 {
		t.Errorf("expected max 5000, got %v", f.Max)
	}
	if f.Exact != nil {
		t.Errorf("expected exact unset, got %v", *f.Exact)
	}
	if f.Hash != "h1" || f.Payee != "p1" {
		t.Errorf("unexpected filter: %+v", f)
	}

	if types.FilterFromMap(nil) != nil {
		t.Error("expected nil filter for nil map")
	}
}
