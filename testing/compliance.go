package satvmtest

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/satvm/satvm"
	"github.com/satvm/satvm/invoice"
	"github.com/satvm/satvm/types"
)

// RunComplianceSuite runs a standard behavior suite against a
// Connection implementation: local engine, gRPC client, or anything
// else claiming the interface.
//
// The factory must return a fresh connection per test, wired to the
// given invoice decoder and running with a bounded step quota.
func RunComplianceSuite(t *testing.T, factory func(invoice.Decoder) satvm.Connection) {
	t.Helper()

	newHarness := func(t *testing.T) *Harness {
		conn := factory(&MockDecoder{})
		t.Cleanup(func() { conn.Close() })
		return NewHarness(t, conn)
	}

	t.Run("simple_call_completes", func(t *testing.T) {
		h := newHarness(t)
		res := h.MustComplete(MakeRequest(`
function add ()
  state.total = state.total + payload.n
  return state.total
end
`, `{"total": 3}`, "add", `{"n": 4}`))
		h.ExpectState(res, `{"total": 7}`)
		h.ExpectReturned(res, `7`)
	})

	t.Run("init_returns_initial_state", func(t *testing.T) {
		h := newHarness(t)
		state := h.Init(`
function __init__ ()
  return { items={}, open=true }
end
`, "")
		if !state.Present() {
			t.Fatal("expected initial state")
		}
	})

	t.Run("state_round_trips", func(t *testing.T) {
		h := newHarness(t)
		script := `
function bump ()
  state.count = state.count + 1
  return state.count
end

function __init__ ()
  return { count=0 }
end
`
		state := h.Init(script, "")
		for i := 1; i <= 3; i++ {
			res := h.MustComplete(types.CallRequest{
				Script:     script,
				PriorState: state,
				Method:     "bump",
			})
			state = res.StateAfter
		}
		if !state.Equal(types.JSON(`{"count": 3}`)) {
			t.Errorf("expected count 3, got %s", state)
		}
	})

	t.Run("runaway_script_faults", func(t *testing.T) {
		h := newHarness(t)
		res := h.MustFault(MakeRequest(`
function spin ()
  while true do end
end
`, "", "spin", ""), types.FaultQuota)
		if !strings.Contains(res.Error, "quota exceeded") {
			t.Errorf("fault text missing quota marker: %q", res.Error)
		}
	})

	t.Run("runtime_fault_reported", func(t *testing.T) {
		h := newHarness(t)
		h.MustFault(MakeRequest(`
function broken ()
  return nil + 1
end
`, "", "broken", ""), types.FaultRuntime)
	})

	t.Run("payment_recorded", func(t *testing.T) {
		h := newHarness(t)
		inv := Invoice(2500, "h1", "p1")
		res := h.MustComplete(MakeRequest(`
function settle ()
  return ln.pay(payload.invoice, { exact=2500 })
end
`, "", "settle", `{"invoice": "`+inv+`"}`))

		if len(res.PaymentsDone) != 1 {
			t.Fatalf("expected 1 payment, got %d", len(res.PaymentsDone))
		}
		if res.PaymentsDone[0].Invoice != inv || res.PaymentsDone[0].AmountMilliSats != 2500 {
			t.Errorf("unexpected ledger entry: %+v", res.PaymentsDone[0])
		}
		if res.TotalPaidMilliSats != 2500 {
			t.Errorf("expected total 2500, got %d", res.TotalPaidMilliSats)
		}
	})

	t.Run("rejected_payment_reports_reason", func(t *testing.T) {
		h := newHarness(t)
		inv := Invoice(9000, "h1", "p1")
		res := h.MustComplete(MakeRequest(`
function settle ()
  local msats, reason = ln.pay(payload.invoice, { max=1000 })
  return reason
end
`, "", "settle", `{"invoice": "`+inv+`"}`))

		h.ExpectReturned(res, `"max doesn't match"`)
		if len(res.PaymentsDone) != 0 {
			t.Errorf("rejected payment reached the ledger: %+v", res.PaymentsDone)
		}
	})

	t.Run("invalid_invoice_faults", func(t *testing.T) {
		h := newHarness(t)
		h.MustFault(MakeRequest(`
function settle ()
  ln.pay("not an invoice")
end
`, "", "settle", ""), types.FaultInvalidInvoice)
	})

	t.Run("payments_survive_fault", func(t *testing.T) {
		h := newHarness(t)
		inv := Invoice(700, "h1", "p1")
		res := h.MustFault(MakeRequest(`
function drain ()
  ln.pay(payload.invoice)
  while true do end
end
`, "", "drain", `{"invoice": "`+inv+`"}`), types.FaultQuota)

		if len(res.PaymentsDone) != 1 || res.TotalPaidMilliSats != 700 {
			t.Errorf("payments before the fault not preserved: %+v", res.PaymentsDone)
		}
	})

	t.Run("reserved_methods_rejected", func(t *testing.T) {
		h := newHarness(t)
		_, err := h.Connection().Execute(context.Background(),
			MakeRequest(`function f () end`, "", "__private", ""))
		if err == nil {
			t.Error("reserved method name accepted")
		}
	})

	t.Run("decode_invoice", func(t *testing.T) {
		h := newHarness(t)
		inv := h.DecodeInvoice(Invoice(1234, "hh", "pp"))
		if inv.AmountMilliSats != 1234 || inv.PaymentHash != "hh" || inv.PayeeNodeID != "pp" {
			t.Errorf("unexpected decode: %+v", inv)
		}
	})

	t.Run("concurrent_calls_isolated", func(t *testing.T) {
		h := newHarness(t)
		script := `
function echo ()
  return payload.n
end
`
		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func(n string) {
				defer wg.Done()
				res, err := h.Connection().Execute(context.Background(),
					MakeRequest(script, "", "echo", `{"n": `+n+`}`))
				if err != nil {
					t.Errorf("concurrent Execute failed: %v", err)
					return
				}
				if !res.ReturnedValue.Equal(types.JSON(n)) {
					t.Errorf("expected %s, got %s", n, res.ReturnedValue)
				}
			}(string(rune('1' + i)))
		}
		wg.Wait()
	})
}
