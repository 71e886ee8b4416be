package sandbox

import (
	"github.com/aarzilli/golua/lua"
	"github.com/fiatjaf/lunatico"

	"github.com/satvm/satvm/host"
	"github.com/satvm/satvm/types"
)

// bindGlobals injects the call-scoped values and the capability set
// into the Lua state under fixed names. The prelude regroups the
// capabilities into the ln/http/util namespaces the scripts see.
func bindGlobals(
	L *lua.State,
	bridge *host.Bridge,
	priorState interface{},
	payload map[string]interface{},
	satoshis int64,
) {
	lunatico.SetGlobals(L, map[string]interface{}{
		"state":    priorState,
		"payload":  payload,
		"satoshis": satoshis,

		"lnpay": func(bolt11 string, filters ...map[string]interface{}) (int64, string) {
			var filter *types.PaymentFilter
			if len(filters) > 0 {
				filter = types.FilterFromMap(filters[0])
			}
			msats, reason, err := bridge.Pay(bolt11, filter)
			if err != nil {
				// Scripting bug, not a policy decision: raise into
				// the script as a controlled fault.
				L.RaiseError(err.Error())
				return 0, ""
			}
			return msats, reason
		},

		"httpgettext": func(url string, headers ...map[string]interface{}) string {
			return bridge.GetText(url, firstHeader(headers))
		},
		"httpgetjson": func(url string, headers ...map[string]interface{}) interface{} {
			return bridge.GetJSON(url, firstHeader(headers))
		},

		"sha256": bridge.SHA256,
		"print":  bridge.Print,
	})
}

func firstHeader(headers []map[string]interface{}) map[string]interface{} {
	if len(headers) == 0 {
		return nil
	}
	return headers[0]
}
