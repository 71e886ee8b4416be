package crowdfund

import (
	"strings"
	"testing"

	"github.com/satvm/satvm/local"
	"github.com/satvm/satvm/sandbox"
	satvmtest "github.com/satvm/satvm/testing"
	"github.com/satvm/satvm/types"
)

func newHarness(t *testing.T) *satvmtest.Harness {
	t.Helper()
	engine := sandbox.New(sandbox.WithDecoder(&satvmtest.MockDecoder{}))
	return satvmtest.NewHarness(t, local.NewConnection(engine))
}

func TestCrowdfundCampaign(t *testing.T) {
	h := newHarness(t)

	state := h.MustComplete(InitRequest(10_000)).StateAfter

	// Two pledges of 4 and 8 sats reach the 10k msat goal.
	state = h.MustComplete(PledgeRequest(state, 4)).StateAfter
	res := h.MustComplete(PledgeRequest(state, 8))
	state = res.StateAfter
	h.ExpectReturned(res, `12000`)

	res = h.MustComplete(ProgressRequest(state))
	h.ExpectReturned(res, `{"goal": 10000, "pledged": 12000, "supporters": 2}`)

	// Payout drains the pledged amount.
	inv := satvmtest.Invoice(12_000, "payhash", "beneficiary")
	res = h.MustComplete(PayoutRequest(state, inv))
	h.ExpectReturned(res, `12000`)
	h.ExpectState(res, `{"goal": 10000, "pledged": 0, "supporters": 2}`)

	if len(res.PaymentsDone) != 1 || res.PaymentsDone[0].Invoice != inv {
		t.Fatalf("expected the payout in the ledger, got %+v", res.PaymentsDone)
	}
	if res.TotalPaidMilliSats != 12_000 {
		t.Errorf("expected 12000 msat paid, got %d", res.TotalPaidMilliSats)
	}
}

func TestCrowdfundPledgeNeedsSats(t *testing.T) {
	h := newHarness(t)
	state := h.MustComplete(InitRequest(1000)).StateAfter

	res := h.MustFault(PledgeRequest(state, 0), types.FaultRuntime)
	if !strings.Contains(res.Error, "attached satoshis") {
		t.Errorf("unexpected fault text: %q", res.Error)
	}
}

func TestCrowdfundPayoutBeforeGoal(t *testing.T) {
	h := newHarness(t)
	state := h.MustComplete(InitRequest(10_000)).StateAfter
	state = h.MustComplete(PledgeRequest(state, 3)).StateAfter

	res := h.MustFault(PayoutRequest(state, satvmtest.Invoice(3000, "h", "p")), types.FaultRuntime)
	if !strings.Contains(res.Error, "goal not reached") {
		t.Errorf("unexpected fault text: %q", res.Error)
	}
	if len(res.PaymentsDone) != 0 {
		t.Errorf("no payment should have happened: %+v", res.PaymentsDone)
	}
}

func TestCrowdfundPayoutOverdraw(t *testing.T) {
	h := newHarness(t)
	state := h.MustComplete(InitRequest(5000)).StateAfter
	state = h.MustComplete(PledgeRequest(state, 6)).StateAfter

	// Invoice asks for more than was pledged; the max filter rejects
	// it and the contract surfaces the reason as a fault.
	res := h.MustFault(PayoutRequest(state, satvmtest.Invoice(9000, "h", "p")), types.FaultRuntime)
	if !strings.Contains(res.Error, "max doesn't match") {
		t.Errorf("unexpected fault text: %q", res.Error)
	}
	if len(res.PaymentsDone) != 0 {
		t.Errorf("rejected payout reached the ledger: %+v", res.PaymentsDone)
	}
}
