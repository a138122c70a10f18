package emandate

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ErrorInfo describes a failed operation. For an error returned by the
// acquirer all five fields come from the error payload; for a local failure
// only ErrorMessage and ErrorDetails are set.
type ErrorInfo struct {
	ErrorCode       string
	ErrorMessage    string
	ErrorDetails    string
	SuggestedAction string
	ConsumerMessage string
}

// NewErrorInfo converts a local failure into an ErrorInfo. ErrorDetails
// carries the cause when err exposes one.
func NewErrorInfo(err error) *ErrorInfo {
	if err == nil {
		return nil
	}
	info := &ErrorInfo{ErrorMessage: err.Error()}
	var d interface{ Detail() string }
	if errors.As(err, &d) {
		info.ErrorDetails = d.Detail()
	} else if inner := errors.Unwrap(err); inner != nil {
		info.ErrorDetails = inner.Error()
	}
	return info
}

// DebtorBank is one issuer row of a flattened directory.
type DebtorBank struct {
	DebtorBankCountry string
	DebtorBankID      string
	DebtorBankName    string
}

// DirectoryResponse lists the debtor banks that support eMandates.
type DirectoryResponse struct {
	IsError                bool
	Error                  *ErrorInfo
	DirectoryDateTimestamp time.Time
	DebtorBanks            []DebtorBank
	RawMessage             string
}

// TransactionResponse is the answer to a new, amend or cancel request.
type TransactionResponse struct {
	IsError bool
	Error   *ErrorInfo
	// IssuerAuthenticationURL is where the debtor must be redirected
	IssuerAuthenticationURL        string
	TransactionID                  string
	TransactionCreateDateTimestamp time.Time
	RawMessage                     string
}

// NewMandateResponse is returned by NewMandate.
type NewMandateResponse = TransactionResponse

// AmendmentResponse is returned by Amend.
type AmendmentResponse = TransactionResponse

// CancellationResponse is returned by Cancel.
type CancellationResponse = TransactionResponse

// StatusResponse is returned by Status.
type StatusResponse struct {
	IsError       bool
	Error         *ErrorInfo
	TransactionID string
	// Status is one of the Status* constants
	Status string
	// StatusDateTimestamp is nil when the acquirer did not send one
	StatusDateTimestamp *time.Time
	// AcceptanceReport is set when Status is StatusSuccess
	AcceptanceReport *AcceptanceReport
	RawMessage       string
}

// AcceptanceReport is the debtor bank's signed answer on a mandate.
type AcceptanceReport struct {
	MessageID string
	DateTime  time.Time
	// ValidationReference is the authorisation reference of the debtor bank
	ValidationReference string
	OriginalMessageID   string
	MessageNameID       string
	AcceptedResult      bool
	OriginalMandateID   string
	MandateRequestID    string
	ServiceLevelCode    string
	LocalInstrumentCode Instrumentation
	SequenceType        SequenceType
	// MaxAmount is zero when the report carries none
	MaxAmount           decimal.Decimal
	EMandateReason      string
	CreditorID          string
	SchemeName          string
	CreditorName        string
	CreditorCountry     string
	CreditorAddressLine []string
	CreditorTradeName   string
	DebtorAccountName   string
	DebtorReference     string
	DebtorIBAN          string
	DebtorBankID        string
	DebtorSignerName    string
	RawMessage          string
}
