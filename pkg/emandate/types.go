package emandate

import "fmt"

// Instrumentation selects the mandate scheme.
type Instrumentation int

const (
	// Core is the consumer scheme
	Core Instrumentation = iota
	// B2B is the business-to-business scheme
	B2B
)

func (i Instrumentation) String() string {
	switch i {
	case Core:
		return "Core"
	case B2B:
		return "B2B"
	default:
		return fmt.Sprintf("Instrumentation(%d)", int(i))
	}
}

// MarshalText renders the scheme name
func (i Instrumentation) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}

// SequenceType tells whether a mandate allows recurring or a single collection.
type SequenceType int

const (
	// Rcur allows recurring collections
	Rcur SequenceType = iota
	// Ooff allows a single collection
	Ooff
)

func (s SequenceType) String() string {
	switch s {
	case Rcur:
		return "Rcur"
	case Ooff:
		return "Ooff"
	default:
		return fmt.Sprintf("SequenceType(%d)", int(s))
	}
}

func (s SequenceType) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Operation names one of the protocol exchanges.
type Operation string

const (
	OperationDirectory  Operation = "directory"
	OperationNewMandate Operation = "new-mandate"
	OperationStatus     Operation = "status"
	OperationAmend      Operation = "amend"
	OperationCancel     Operation = "cancel"
)

// Transaction statuses reported by the acquirer
const (
	StatusOpen      = "Open"
	StatusPending   = "Pending"
	StatusSuccess   = "Success"
	StatusFailure   = "Failure"
	StatusExpired   = "Expired"
	StatusCancelled = "Cancelled"
)

// IsFinal reports whether no further status change is expected.
func IsFinal(status string) bool {
	switch status {
	case StatusSuccess, StatusFailure, StatusExpired, StatusCancelled:
		return true
	}
	return false
}
