package communicator

import (
	"errors"
)

var (
	// ErrConfiguration is returned by the constructors when a setting is
	// missing or a certificate cannot be resolved
	ErrConfiguration = errors.New("invalid configuration")

	// ErrTransport marks failures of the exchange itself: rejected HTTP
	// requests, schema-invalid messages and invalid response signatures
	ErrTransport = errors.New("transport error")
)

// Fixed messages reported for transport failures
const (
	msgRequestSchema     = "Request XML schema is not valid."
	msgResponseSchema    = "Response XML schema is not valid."
	msgResponseSignature = "Response XML signature is not valid."
	msgHTTPFailed        = "Http request failed"
)

// Error is a failure raised while exchanging a message. Msg is what callers
// see as the error message; Err, when set, becomes the error details.
type Error struct {
	Kind error
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	return e.Msg
}

// Detail returns the underlying cause, if any.
func (e *Error) Detail() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func transportError(msg string, err error) *Error {
	return &Error{Kind: ErrTransport, Msg: msg, Err: err}
}
