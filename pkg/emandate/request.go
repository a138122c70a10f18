package emandate

import (
	"time"

	"github.com/shopspring/decimal"
)

// NewMandateRequest asks the debtor to sign a new mandate.
//
// ExpirationPeriod bounds how long the transaction stays open and may not
// exceed 7 days; zero leaves the choice to the acquirer. MaxAmount is only
// allowed under B2B.
type NewMandateRequest struct {
	EntranceCode     string           // returned to the merchant on the return URL
	Language         string           // ISO 639-1 code used on the issuer pages
	ExpirationPeriod time.Duration    // zero means acquirer default
	MessageID        string           // generated when empty
	DebtorBankID     string           // BIC of the debtor bank chosen from the directory
	EMandateID       string           // creditor-issued mandate identifier
	SequenceType     SequenceType     // recurring or one-off
	EMandateReason   string           // optional
	DebtorReference  string           // identifies the debtor at the creditor, optional
	PurchaseID       string           // optional
	MaxAmount        *decimal.Decimal // B2B only
}

// AmendmentRequest changes an existing mandate. OriginalIBAN and
// OriginalDebtorBankID identify the mandate as it was before the change.
type AmendmentRequest struct {
	EntranceCode         string
	Language             string
	ExpirationPeriod     time.Duration
	MessageID            string
	EMandateID           string
	EMandateReason       string
	DebtorReference      string
	DebtorBankID         string
	PurchaseID           string
	SequenceType         SequenceType
	OriginalIBAN         string
	OriginalDebtorBankID string
}

// CancellationRequest cancels an existing B2B mandate.
type CancellationRequest struct {
	EntranceCode     string
	Language         string
	ExpirationPeriod time.Duration
	MessageID        string
	EMandateID       string
	EMandateReason   string
	DebtorReference  string
	DebtorBankID     string
	PurchaseID       string
	SequenceType     SequenceType
	MaxAmount        *decimal.Decimal
	OriginalIBAN     string
}

// StatusRequest queries the state of a transaction.
type StatusRequest struct {
	TransactionID string
}
