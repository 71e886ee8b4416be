// Package host implements the capability bridge: the fixed set of
// host functions exposed into the sandbox. Each bridge is scoped to a
// single call and records the call's side effects — the ordered
// payment ledger and the running millisatoshi total — in itself.
//
// The bridge contains no interpreter state, so every capability can be
// tested in isolation from the Lua backend.
package host

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/satvm/satvm"
	"github.com/satvm/satvm/invoice"
	"github.com/satvm/satvm/types"
)

// Compile-time interface check.
var _ satvm.Host = (*Bridge)(nil)

// RequestFunc performs one HTTP request on behalf of a contract. The
// engine core never installs one: network access is an external
// collaborator's concern, gated by explicit policy.
type RequestFunc func(*http.Request) (*http.Response, error)

// Bridge is the call-scoped capability set. A Bridge must not be
// reused across calls; construct a fresh one per CallRequest.
type Bridge struct {
	decoder invoice.Decoder
	request RequestFunc
	log     zerolog.Logger

	// fundsBudget is the payment ceiling in millisatoshis;
	// negative means no ceiling.
	fundsBudget int64

	payments []types.PaymentRecord
	total    int64
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithRequestFunc installs an HTTP transport for the http.* stubs.
// Without it they are no-ops returning "" and an empty mapping.
func WithRequestFunc(fn RequestFunc) Option {
	return func(b *Bridge) { b.request = fn }
}

// WithLogger sets the diagnostic logger. Defaults to a no-op logger.
func WithLogger(log zerolog.Logger) Option {
	return func(b *Bridge) { b.log = log }
}

// WithFundsBudget caps the total this call may pay, in millisatoshis.
func WithFundsBudget(msats int64) Option {
	return func(b *Bridge) { b.fundsBudget = msats }
}

// New creates a capability bridge for one call.
func New(dec invoice.Decoder, opts ...Option) *Bridge {
	b := &Bridge{
		decoder:     dec,
		log:         zerolog.Nop(),
		fundsBudget: -1,
		// Non-nil from the start so an empty ledger serializes as []
		// rather than null.
		payments: []types.PaymentRecord{},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Pay decodes the invoice and evaluates the filter against it. On
// acceptance the payment is appended to the ledger and its amount in
// millisatoshis returned. On policy rejection it returns 0 and the
// reason, recording nothing. An undecodable invoice or an exceeded
// funds budget is returned as an error: a controlled fault for the
// executor to raise, since it indicates a scripting bug rather than a
// policy decision.
func (b *Bridge) Pay(bolt11 string, filter *types.PaymentFilter) (int64, string, error) {
	decoded, err := b.decoder.Decode(bolt11)
	if err != nil {
		b.log.Debug().Err(err).Str("bolt11", bolt11).Msg("failed to decode invoice")
		return 0, "", fmt.Errorf("pay: %w", err)
	}

	msats, rejection := invoice.Evaluate(decoded, filter)
	if rejection != nil {
		b.log.Debug().
			Str("bolt11", bolt11).
			Str("field", rejection.Field).
			Msg("payment rejected by filter")
		return 0, rejection.Reason, nil
	}

	if b.fundsBudget >= 0 && b.total+msats > b.fundsBudget {
		return 0, "", fmt.Errorf("contract doesn't have enough funds")
	}

	b.payments = append(b.payments, types.PaymentRecord{
		Invoice:         bolt11,
		AmountMilliSats: msats,
	})
	b.total += msats

	b.log.Debug().
		Int64("msats", msats).
		Str("bolt11", bolt11).
		Msg("contract payment authorized")
	return msats, "", nil
}

// GetText performs a GET and returns the response body as text. With
// no transport installed it logs the would-be request and returns "".
// Transport failures also degrade to "": capabilities are total over
// their input domain.
func (b *Bridge) GetText(url string, headers map[string]interface{}) string {
	body := b.get(url, headers)
	return string(body)
}

// GetJSON performs a GET and returns the decoded response body. With
// no transport installed, or on any failure, it returns an empty
// mapping.
func (b *Bridge) GetJSON(url string, headers map[string]interface{}) interface{} {
	body := b.get(url, headers)
	var value interface{}
	if err := json.Unmarshal(body, &value); err != nil {
		return map[string]interface{}{}
	}
	return value
}

func (b *Bridge) get(url string, headers map[string]interface{}) []byte {
	if b.request == nil {
		b.log.Debug().Str("url", url).Msg("http call from contract suppressed")
		return nil
	}

	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return nil
	}
	for k, v := range headers {
		if sv, ok := v.(string); ok {
			req.Header.Set(k, sv)
		}
	}

	resp, err := b.request(req)
	if err != nil {
		b.log.Debug().Err(err).Str("url", url).Msg("http call from contract failed")
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil
	}
	return body
}

// SHA256 returns the hex-encoded digest of the preimage.
func (b *Bridge) SHA256(preimage string) string {
	sum := sha256.Sum256([]byte(preimage))
	return hex.EncodeToString(sum[:])
}

// Print writes the arguments to the diagnostic log.
func (b *Bridge) Print(args ...interface{}) {
	b.log.Debug().Interface("args", args).Msg("printed from contract")
}

// Payments returns the ordered ledger of payments accepted so far.
func (b *Bridge) Payments() []types.PaymentRecord {
	return b.payments
}

// TotalPaid returns the millisatoshi sum over Payments.
func (b *Bridge) TotalPaid() int64 {
	return b.total
}
