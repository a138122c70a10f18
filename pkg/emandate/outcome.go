package emandate

// OutcomeKind discriminates an Outcome.
type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota
	OutcomeBusinessError
	OutcomeFault
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeBusinessError:
		return "business_error"
	default:
		return "fault"
	}
}

// Outcome is the result of parsing one acquirer answer. Exactly one of Value,
// Business or Cause is meaningful, selected by Kind. Raw holds the payload
// whenever one was received and is nil otherwise.
type Outcome[T any] struct {
	Kind     OutcomeKind
	Value    T
	Business *ErrorInfo
	Cause    error
	Raw      []byte
}

// Success wraps a parsed result.
func Success[T any](value T, raw []byte) Outcome[T] {
	return Outcome[T]{Kind: OutcomeSuccess, Value: value, Raw: raw}
}

// BusinessError wraps a structured error returned by the acquirer.
func BusinessError[T any](info *ErrorInfo, raw []byte) Outcome[T] {
	return Outcome[T]{Kind: OutcomeBusinessError, Business: info, Raw: raw}
}

// Fault wraps a failure to obtain or recognize an answer. raw may be nil.
func Fault[T any](cause error, raw []byte) Outcome[T] {
	return Outcome[T]{Kind: OutcomeFault, Cause: cause, Raw: raw}
}

// IsError reports whether the outcome is not a success.
func (o Outcome[T]) IsError() bool {
	return o.Kind != OutcomeSuccess
}

// ErrorInfo returns the error description for a business error or a fault,
// and nil for a success.
func (o Outcome[T]) ErrorInfo() *ErrorInfo {
	switch o.Kind {
	case OutcomeBusinessError:
		return o.Business
	case OutcomeFault:
		return NewErrorInfo(o.Cause)
	default:
		return nil
	}
}

// RawMessage returns the raw payload as a string.
func (o Outcome[T]) RawMessage() string {
	return string(o.Raw)
}
