// Package crowdfund carries an example contract that collects pledges
// attached to calls and pays a beneficiary invoice once a goal is
// reached. It demonstrates attached amounts, the payment capability
// and payment filters.
//
// All amounts in the contract state are millisatoshis.
package crowdfund

import (
	_ "embed"
	"fmt"

	"github.com/satvm/satvm/types"
)

// Script is the full Lua source of the crowdfunding contract.
//
//go:embed contract.lua
var Script string

// InitRequest builds the construction call for a campaign with the
// given goal in millisatoshis.
func InitRequest(goalMilliSats int64) types.CallRequest {
	return types.CallRequest{
		Script:  Script,
		Method:  types.InitMethod,
		Payload: types.JSON(fmt.Sprintf(`{"goal": %d}`, goalMilliSats)),
	}
}

// PledgeRequest builds a pledge call attaching the given satoshis.
func PledgeRequest(state types.JSON, sats int64) types.CallRequest {
	return types.CallRequest{
		Script:             Script,
		PriorState:         state,
		Method:             "pledge",
		AttachedAmountSats: sats,
	}
}

// ProgressRequest builds a read-only progress call.
func ProgressRequest(state types.JSON) types.CallRequest {
	return types.CallRequest{
		Script:     Script,
		PriorState: state,
		Method:     "progress",
	}
}

// PayoutRequest builds a payout call paying the given invoice.
func PayoutRequest(state types.JSON, bolt11 string) types.CallRequest {
	return types.CallRequest{
		Script:     Script,
		PriorState: state,
		Method:     "payout",
		Payload:    types.JSON(fmt.Sprintf(`{"invoice": %q}`, bolt11)),
	}
}
