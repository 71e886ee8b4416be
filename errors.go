package satvm

import (
	"errors"
	"fmt"
)

// InvalidInvoiceError reports a payment-request string that could not
// be decoded.
type InvalidInvoiceError struct {
	Invoice string
	Reason  string
}

func (e *InvalidInvoiceError) Error() string {
	return fmt.Sprintf("invalid invoice: %s", e.Reason)
}

// NewInvalidInvoiceError creates a new InvalidInvoiceError.
func NewInvalidInvoiceError(invoice, reason string) *InvalidInvoiceError {
	return &InvalidInvoiceError{Invoice: invoice, Reason: reason}
}

// IsInvalidInvoice checks whether an error is an InvalidInvoiceError
// and returns it.
func IsInvalidInvoice(err error) (*InvalidInvoiceError, bool) {
	var e *InvalidInvoiceError
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// QuotaError signals that a script exhausted its step budget.
type QuotaError struct {
	Budget  int
	Message string
}

func (e *QuotaError) Error() string {
	return fmt.Sprintf("quota exceeded (budget %d steps): %s", e.Budget, e.Message)
}

// IsQuota checks whether an error is a QuotaError and returns it.
func IsQuota(err error) (*QuotaError, bool) {
	var e *QuotaError
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// RuntimeError is any interpreter-level error other than quota
// exhaustion: type errors, undefined references, explicit error()
// calls from the script.
type RuntimeError struct {
	Message string
}

func (e *RuntimeError) Error() string { return e.Message }

// IsRuntime checks whether an error is a RuntimeError and returns it.
func IsRuntime(err error) (*RuntimeError, bool) {
	var e *RuntimeError
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
