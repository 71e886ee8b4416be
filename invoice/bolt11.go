// Package invoice decodes payment requests and evaluates payment
// filters against them. Decoding is pure: same invoice string, same
// result, no I/O.
package invoice

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2/ecdsa"

	"github.com/satvm/satvm"
	"github.com/satvm/satvm/types"
)

// Decoder turns a payment-request string into its decoded form. The
// engine takes a Decoder by injection so deployments can swap the
// codec (or tests can stub it) without touching the capability
// surface.
type Decoder interface {
	Decode(invoice string) (types.DecodedInvoice, error)
}

// DecoderFunc adapts a plain function to the Decoder interface.
type DecoderFunc func(string) (types.DecodedInvoice, error)

func (f DecoderFunc) Decode(invoice string) (types.DecodedInvoice, error) {
	return f(invoice)
}

// Default is the BOLT11 decoder.
var Default Decoder = DecoderFunc(Decode)

// tagged field types per BOLT11
const (
	tagPaymentHash = 1  // p
	tagExpiry      = 6  // x
	tagPayeeNode   = 19 // n
)

const defaultExpirySeconds = 3600

// Decode decodes a BOLT11 payment request. The amount is normalized
// to millisatoshis; the payee node id comes from the `n` tagged field
// when present, otherwise it is recovered from the invoice signature.
// Failures are reported as *satvm.InvalidInvoiceError.
func Decode(bolt11 string) (types.DecodedInvoice, error) {
	var inv types.DecodedInvoice

	hrp, data, err := bech32Decode(bolt11)
	if err != nil {
		return inv, satvm.NewInvalidInvoiceError(bolt11, err.Error())
	}
	if !strings.HasPrefix(hrp, "ln") {
		return inv, satvm.NewInvalidInvoiceError(bolt11, "not a payment request")
	}

	msats, err := hrpAmountMilliSats(hrp[2:])
	if err != nil {
		return inv, satvm.NewInvalidInvoiceError(bolt11, err.Error())
	}

	// 7 words of timestamp, tagged fields, 104 words of signature.
	if len(data) < 7+104 {
		return inv, satvm.NewInvalidInvoiceError(bolt11, "data part too short")
	}
	var createdAt int64
	for _, w := range data[:7] {
		createdAt = createdAt<<5 | int64(w)
	}
	sigWords := data[len(data)-104:]
	fields := data[7 : len(data)-104]

	var payHash, payeeKey []byte
	expiry := int64(defaultExpirySeconds)
	for len(fields) > 0 {
		if len(fields) < 3 {
			return inv, satvm.NewInvalidInvoiceError(bolt11, "truncated tagged field")
		}
		typ := fields[0]
		dlen := int(fields[1])<<5 | int(fields[2])
		if len(fields) < 3+dlen {
			return inv, satvm.NewInvalidInvoiceError(bolt11, "truncated tagged field")
		}
		fdata := fields[3 : 3+dlen]

		switch typ {
		case tagPaymentHash:
			// Skip fields of unexpected length, per BOLT11.
			if dlen == 52 {
				if b, err := convertBits(fdata, 5, 8, true); err == nil {
					payHash = b[:32]
				}
			}
		case tagPayeeNode:
			if dlen == 53 {
				if b, err := convertBits(fdata, 5, 8, true); err == nil {
					payeeKey = b[:33]
				}
			}
		case tagExpiry:
			expiry = 0
			for _, w := range fdata {
				expiry = expiry<<5 | int64(w)
			}
		}
		fields = fields[3+dlen:]
	}

	if payHash == nil {
		return inv, satvm.NewInvalidInvoiceError(bolt11, "missing payment hash")
	}

	if payeeKey == nil {
		sig, err := convertBits(sigWords, 5, 8, false)
		if err != nil {
			return inv, satvm.NewInvalidInvoiceError(bolt11, "malformed signature: "+err.Error())
		}
		payeeKey, err = recoverPayee(hrp, data[:len(data)-104], sig)
		if err != nil {
			return inv, satvm.NewInvalidInvoiceError(bolt11, "cannot recover payee: "+err.Error())
		}
	}

	inv = types.DecodedInvoice{
		AmountMilliSats: msats,
		PaymentHash:     hex.EncodeToString(payHash),
		PayeeNodeID:     hex.EncodeToString(payeeKey),
		CreatedAt:       createdAt,
		ExpirySeconds:   expiry,
	}
	return inv, nil
}

// recoverPayee recovers the payee public key from the 65-byte invoice
// signature (64 bytes r||s plus a trailing recovery id), taken over
// sha256(hrp || data).
func recoverPayee(hrp string, dataWords, sig []byte) ([]byte, error) {
	if len(sig) != 65 {
		return nil, fmt.Errorf("signature must be 65 bytes, got %d", len(sig))
	}
	if sig[64] > 3 {
		return nil, fmt.Errorf("recovery id %d out of range", sig[64])
	}

	msg, err := convertBits(dataWords, 5, 8, true)
	if err != nil {
		return nil, err
	}
	hash := sha256.Sum256(append([]byte(hrp), msg...))

	// RecoverCompact wants the header byte first; BOLT11 puts the
	// recovery id last.
	compact := make([]byte, 65)
	compact[0] = 27 + 4 + sig[64]
	copy(compact[1:], sig[:64])

	pub, _, err := ecdsa.RecoverCompact(compact, hash[:])
	if err != nil {
		return nil, err
	}
	return pub.SerializeCompressed(), nil
}

// millisatoshis per whole unit, by HRP amount multiplier
const (
	msatPerBTC   = 100_000_000_000
	msatPerMilli = 100_000_000
	msatPerMicro = 100_000
	msatPerNano  = 100
)

// hrpAmountMilliSats parses the amount portion of the human-readable
// part (currency prefix already includes no digits, e.g. "bc2500u"
// arrives here as-is after the "ln"). An absent amount yields 0.
func hrpAmountMilliSats(s string) (int64, error) {
	i := 0
	for i < len(s) && (s[i] < '0' || s[i] > '9') {
		i++
	}
	if i == len(s) {
		return 0, nil // amountless invoice
	}

	j := i
	var num int64
	for j < len(s) && s[j] >= '0' && s[j] <= '9' {
		d := int64(s[j] - '0')
		if num > (1<<62)/10 {
			return 0, fmt.Errorf("amount overflow")
		}
		num = num*10 + d
		j++
	}

	if j == len(s) {
		if num > (1<<62)/msatPerBTC {
			return 0, fmt.Errorf("amount overflow")
		}
		return num * msatPerBTC, nil
	}
	if j != len(s)-1 {
		return 0, fmt.Errorf("malformed amount %q", s[i:])
	}

	switch s[j] {
	case 'm':
		if num > (1<<62)/msatPerMilli {
			return 0, fmt.Errorf("amount overflow")
		}
		return num * msatPerMilli, nil
	case 'u':
		if num > (1<<62)/msatPerMicro {
			return 0, fmt.Errorf("amount overflow")
		}
		return num * msatPerMicro, nil
	case 'n':
		if num > (1<<62)/msatPerNano {
			return 0, fmt.Errorf("amount overflow")
		}
		return num * msatPerNano, nil
	case 'p':
		if num%10 != 0 {
			return 0, fmt.Errorf("amount %q has sub-millisatoshi precision", s[i:])
		}
		return num / 10, nil
	}
	return 0, fmt.Errorf("unknown amount multiplier %q", s[j])
}
