package sandbox

import (
	_ "embed"
	"fmt"
)

// preludeSource is read-only and shared by all calls; composition
// happens per call into a fresh string.
//
//go:embed sandbox.lua
var preludeSource string

// quotaMarker is the error text raised by the prelude's step hook.
// The executor classifies faults containing it as quota exhaustion.
const quotaMarker = "quota exceeded"

// callTemplate wires the per-call capability set into the sandbox
// environment, wraps the submitted script inside call(), and invokes
// the requested method under quota. The trailing reassignment captures
// a script that rebinds `state` instead of mutating it.
const callTemplate = `
%s

custom_env = {
  print=print,
  http={
    gettext=httpgettext,
    getjson=httpgetjson
  },
  util={
    sha256=sha256
  },
  ln={pay=lnpay},
  payload=payload,
  state=state,
  satoshis=satoshis
}

for k, v in pairs(custom_env) do
  sandbox_env[k] = v
end

function call ()
%s

  return %s()
end

ret = run(sandbox_env, call, %d)
state = sandbox_env.state
`

func composeCode(script, method string, quota int) string {
	return fmt.Sprintf(callTemplate, preludeSource, script, method, quota)
}
