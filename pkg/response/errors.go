package response

import (
	"errors"
	"fmt"
)

var (
	// ErrParseFault is returned when a payload matches none of the expected shapes
	ErrParseFault = errors.New("response could not be parsed")

	ErrMissingAcceptanceReport = fmt.Errorf("%w: no acceptance report present for status Success", ErrParseFault)
	ErrUnknownToken            = fmt.Errorf("%w: unknown code", ErrParseFault)
	ErrEmptyResponse           = fmt.Errorf("%w: empty payload", ErrParseFault)
)

// Error is the cause carried by a fault outcome. Err is the failure of the
// first decoding attempt.
type Error struct {
	Kind error
	Err  error
}

func (e *Error) Error() string {
	return e.Kind.Error()
}

// Detail returns the underlying decoding failure, if any.
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

func fault(kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}
