// Package sandbox assembles restricted Lua execution environments and
// runs contract calls inside them under a deterministic step quota.
//
// Each call gets its own interpreter state, capability bridge and
// accumulators, so independent calls may run in parallel. The quota is
// the sole cancellation mechanism: it is enforced by the interpreter's
// instruction counting, keeping results reproducible across hosts.
package sandbox

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/aarzilli/golua/lua"
	"github.com/fiatjaf/lunatico"
	"github.com/rs/zerolog"

	"github.com/satvm/satvm"
	"github.com/satvm/satvm/host"
	"github.com/satvm/satvm/invoice"
	"github.com/satvm/satvm/types"
)

// DefaultQuota is the default step budget per call. One step is a
// fixed slice of interpreter work (see sandbox.lua), not wall-clock
// time.
const DefaultQuota = 50

// Compile-time interface check.
var _ satvm.Engine = (*Engine)(nil)

// Engine executes contract calls in sandboxed Lua. The zero-configured
// engine decodes BOLT11 invoices, runs with DefaultQuota and performs
// no network access. An Engine holds no mutable state between calls
// and is safe for concurrent use.
type Engine struct {
	quota      int
	decoder    invoice.Decoder
	log        zerolog.Logger
	request    host.RequestFunc
	trackFunds bool
	locator    *FaultLocator
}

// Option configures an Engine.
type Option func(*Engine)

// WithQuota sets the step budget per call.
func WithQuota(steps int) Option {
	return func(e *Engine) { e.quota = steps }
}

// WithDecoder swaps the invoice codec.
func WithDecoder(dec invoice.Decoder) Option {
	return func(e *Engine) { e.decoder = dec }
}

// WithLogger sets the diagnostic logger.
func WithLogger(log zerolog.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// WithHTTPTransport installs a real transport behind the http.*
// capabilities. Without it they are no-op stubs returning "" and an
// empty mapping.
func WithHTTPTransport(fn host.RequestFunc) Option {
	return func(e *Engine) { e.request = fn }
}

// WithFundsTracking makes `pay` honor the call's funds budget
// (CallRequest.FundsMilliSats plus the attached amount) and fault the
// script when a payment would exceed it.
func WithFundsTracking() Option {
	return func(e *Engine) { e.trackFunds = true }
}

// WithFaultLocator swaps the backend-specific fault location pattern
// used to annotate errors with source context.
func WithFaultLocator(l *FaultLocator) Option {
	return func(e *Engine) { e.locator = l }
}

// New creates an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		quota:   DefaultQuota,
		decoder: invoice.Default,
		log:     zerolog.Nop(),
		locator: LuaLocator,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Decoder returns the engine's invoice codec.
func (e *Engine) Decoder() invoice.Decoder { return e.decoder }

var reMethodName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Execute runs one contract call to completion, fault, or quota
// exhaustion.
//
// Script-level faults are reported inside the result: Error carries
// the annotated fault text, Fault its classification, and the payment
// accumulators reflect everything accepted before the fault. The error
// return is reserved for host-side misuse.
func (e *Engine) Execute(ctx context.Context, req types.CallRequest) (types.ExecutionResult, error) {
	var res types.ExecutionResult

	if err := ctx.Err(); err != nil {
		return res, err
	}
	if err := req.Validate(); err != nil {
		return res, fmt.Errorf("satvm: invalid call request: %w", err)
	}
	if err := validateMethod(req.Method); err != nil {
		return res, err
	}

	var priorState interface{}
	if err := req.PriorState.Unmarshal(&priorState); err != nil {
		return res, fmt.Errorf("satvm: decoding prior state: %w", err)
	}
	payload := map[string]interface{}{}
	if err := req.Payload.Unmarshal(&payload); err != nil {
		return res, fmt.Errorf("satvm: decoding payload: %w", err)
	}

	bridgeOpts := []host.Option{host.WithLogger(e.log)}
	if e.request != nil {
		bridgeOpts = append(bridgeOpts, host.WithRequestFunc(e.request))
	}
	if e.trackFunds {
		bridgeOpts = append(bridgeOpts,
			host.WithFundsBudget(req.FundsMilliSats+req.AttachedAmountSats*1000))
	}
	bridge := host.New(e.decoder, bridgeOpts...)

	L := lua.NewState()
	defer L.Close()
	L.OpenLibs()

	bindGlobals(L, bridge, priorState, payload, req.AttachedAmountSats)
	code := composeCode(req.Script, req.Method, e.quota)

	guard := newCallGuard()
	guard.begin()

	e.log.Debug().
		Str("method", req.Method).
		Int64("satoshis", req.AttachedAmountSats).
		Int("quota", e.quota).
		Msg("running call")

	runErr := L.DoString(code)

	// Payments accepted before a fault are preserved: the engine
	// never rolls back the ledger of the same call.
	res.PaymentsDone = bridge.Payments()
	res.TotalPaidMilliSats = bridge.TotalPaid()

	if runErr != nil {
		guard.fault()
		res.Fault = classifyFault(runErr.Error())
		res.Error = e.locator.Annotate(runErr.Error(), code)
		e.log.Debug().
			Err(e.faultError(res)).
			Str("phase", guard.Phase()).
			Str("fault", res.Fault.String()).
			Msg("call faulted")
		return res, nil
	}

	globals := lunatico.GetGlobals(L, "ret", "state")
	stateAfter := globals["state"]
	returned := globals["ret"]

	// Contract construction: there is no prior state to mutate, so
	// the method's return value is the initial state.
	if req.Method == types.InitMethod {
		stateAfter = returned
	}

	var err error
	if res.StateAfter, err = types.MarshalValue(stateAfter); err != nil {
		return res, fmt.Errorf("satvm: encoding state: %w", err)
	}
	if res.ReturnedValue, err = types.MarshalValue(returned); err != nil {
		return res, fmt.Errorf("satvm: encoding returned value: %w", err)
	}

	guard.complete()
	return res, nil
}

// DecodeInvoice decodes a payment request with the engine's codec,
// without running any script.
func (e *Engine) DecodeInvoice(_ context.Context, bolt11 string) (types.DecodedInvoice, error) {
	return e.decoder.Decode(bolt11)
}

func validateMethod(method string) error {
	if !reMethodName.MatchString(method) {
		return fmt.Errorf("satvm: invalid method name %q", method)
	}
	if strings.HasPrefix(method, "__") && method != types.InitMethod {
		return fmt.Errorf("satvm: reserved method name %q", method)
	}
	return nil
}

// faultError rebuilds the typed fault error for a faulted result.
func (e *Engine) faultError(res types.ExecutionResult) error {
	switch res.Fault {
	case types.FaultQuota:
		return &satvm.QuotaError{Budget: e.quota, Message: res.Error}
	case types.FaultInvalidInvoice:
		return satvm.NewInvalidInvoiceError("", res.Error)
	default:
		return &satvm.RuntimeError{Message: res.Error}
	}
}

// classifyFault maps an interpreter fault message onto the fault
// taxonomy. The quota and invoice markers are controlled by this
// module, so matching on them is stable.
func classifyFault(msg string) types.FaultKind {
	switch {
	case strings.Contains(msg, quotaMarker):
		return types.FaultQuota
	case strings.Contains(msg, "invalid invoice:"):
		return types.FaultInvalidInvoice
	default:
		return types.FaultRuntime
	}
}
