// Package counter carries a minimal example contract: a counter that
// increments by a payload-supplied step. It demonstrates contract
// construction, state round-tripping and return values with no
// payment capabilities.
package counter

import (
	_ "embed"
	"fmt"

	"github.com/satvm/satvm/types"
)

// Script is the full Lua source of the counter contract.
//
//go:embed contract.lua
var Script string

// InitRequest builds the construction call.
func InitRequest() types.CallRequest {
	return types.CallRequest{
		Script: Script,
		Method: types.InitMethod,
	}
}

// IncrementRequest builds an increment call against the given state.
func IncrementRequest(state types.JSON, by int64) types.CallRequest {
	return types.CallRequest{
		Script:     Script,
		PriorState: state,
		Method:     "increment",
		Payload:    types.JSON(fmt.Sprintf(`{"by": %d}`, by)),
	}
}

// ReadRequest builds a read-only call against the given state.
func ReadRequest(state types.JSON) types.CallRequest {
	return types.CallRequest{
		Script:     Script,
		PriorState: state,
		Method:     "read",
	}
}
