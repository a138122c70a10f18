package message

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"time"

	"github.com/sirosfoundation/go-emandates/pkg/emandate"
)

// Merchant identifies the creditor towards the acquirer
type Merchant struct {
	ContractID    string
	ContractSubID uint
	ReturnURL     string
}

// Builder turns requests into iDx messages for one instrument
type Builder struct {
	instrument emandate.Instrumentation
	merchant   Merchant
	now        func() time.Time
	newID      func() string
}

// Option represents a functional option for Builder
type Option func(*Builder)

// WithClock sets the source of creation timestamps
func WithClock(now func() time.Time) Option {
	return func(b *Builder) {
		b.now = now
	}
}

// WithMessageIDGenerator sets the generator used for requests without a MessageID
func WithMessageIDGenerator(gen func() string) Option {
	return func(b *Builder) {
		b.newID = gen
	}
}

// NewBuilder creates a Builder. The instrument alone decides the product
// identifier and the local instrument code.
func NewBuilder(instrument emandate.Instrumentation, merchant Merchant, opts ...Option) *Builder {
	b := &Builder{
		instrument: instrument,
		merchant:   merchant,
		now:        time.Now,
		newID:      NewMessageID,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Instrument returns the instrument the builder was created for
func (b *Builder) Instrument() emandate.Instrumentation {
	return b.instrument
}

// Build dispatches on the operation. req must be the matching request value
// and is ignored for the directory.
func (b *Builder) Build(op emandate.Operation, req any) ([]byte, error) {
	switch op {
	case emandate.OperationDirectory:
		return b.DirectoryRequest()
	case emandate.OperationNewMandate:
		if r, ok := req.(emandate.NewMandateRequest); ok {
			return b.NewMandateRequest(r)
		}
	case emandate.OperationAmend:
		if r, ok := req.(emandate.AmendmentRequest); ok {
			return b.AmendmentRequest(r)
		}
	case emandate.OperationCancel:
		if r, ok := req.(emandate.CancellationRequest); ok {
			return b.CancellationRequest(r)
		}
	case emandate.OperationStatus:
		if r, ok := req.(emandate.StatusRequest); ok {
			return b.StatusRequest(r)
		}
	default:
		return nil, fmt.Errorf("unknown operation %q", op)
	}
	return nil, fmt.Errorf("unexpected request type %T for operation %s", req, op)
}

// DirectoryRequest builds a DirectoryReq
func (b *Builder) DirectoryRequest() ([]byte, error) {
	return encodeEnvelope(&DirectoryReq{
		Version:             Version,
		ProductID:           ProductID(b.instrument),
		CreateDateTimestamp: NewDateTime(b.now()),
		Merchant:            b.merchantRef(false),
	})
}

// StatusRequest builds an AcquirerStatusReq
func (b *Builder) StatusRequest(req emandate.StatusRequest) ([]byte, error) {
	if req.TransactionID == "" {
		return nil, fmt.Errorf("%w: TransactionID", ErrMissingField)
	}
	return encodeEnvelope(&AcquirerStatusReq{
		Version:             Version,
		ProductID:           ProductID(b.instrument),
		CreateDateTimestamp: NewDateTime(b.now()),
		Merchant:            b.merchantRef(false),
		Transaction:         StatusTransaction{TransactionID: req.TransactionID},
	})
}

// NewMandateRequest builds an AcquirerTrxReq carrying a pain.009 document
func (b *Builder) NewMandateRequest(req emandate.NewMandateRequest) ([]byte, error) {
	if err := checkTransaction(req.EntranceCode, req.Language, req.DebtorBankID, req.ExpirationPeriod); err != nil {
		return nil, err
	}
	doc, err := b.NewMandateDocument(req)
	if err != nil {
		return nil, err
	}
	return b.transactionRequest(req.DebtorBankID, req.EntranceCode, req.Language, req.ExpirationPeriod, doc)
}

// AmendmentRequest builds an AcquirerTrxReq carrying a pain.010 document
func (b *Builder) AmendmentRequest(req emandate.AmendmentRequest) ([]byte, error) {
	if err := checkTransaction(req.EntranceCode, req.Language, req.DebtorBankID, req.ExpirationPeriod); err != nil {
		return nil, err
	}
	doc, err := b.AmendmentDocument(req)
	if err != nil {
		return nil, err
	}
	return b.transactionRequest(req.DebtorBankID, req.EntranceCode, req.Language, req.ExpirationPeriod, doc)
}

// CancellationRequest builds an AcquirerTrxReq carrying a pain.011 document
func (b *Builder) CancellationRequest(req emandate.CancellationRequest) ([]byte, error) {
	if err := checkTransaction(req.EntranceCode, req.Language, req.DebtorBankID, req.ExpirationPeriod); err != nil {
		return nil, err
	}
	doc, err := b.CancellationDocument(req)
	if err != nil {
		return nil, err
	}
	return b.transactionRequest(req.DebtorBankID, req.EntranceCode, req.Language, req.ExpirationPeriod, doc)
}

// NewMandateDocument builds the pain.009 document of a new mandate request
func (b *Builder) NewMandateDocument(req emandate.NewMandateRequest) ([]byte, error) {
	if err := CheckMaxAmount(b.instrument, req.MaxAmount); err != nil {
		return nil, err
	}
	if req.EMandateID == "" {
		return nil, fmt.Errorf("%w: EMandateID", ErrMissingField)
	}

	mndt := b.mandate(req.EMandateID, req.SequenceType, req.EMandateReason, req.DebtorReference, req.PurchaseID)
	mndt.DbtrAgt = agent(req.DebtorBankID)
	if req.MaxAmount != nil {
		mndt.MaxAmt = &Amount{Ccy: CurrencyEUR, Value: FormatAmount(*req.MaxAmount)}
	}

	return encodeDocument(&InitiationDocument{
		MndtInitnReq: MandateInitiation{
			GrpHdr: b.groupHeader(req.MessageID),
			Mndt:   []Mandate{*mndt},
		},
	})
}

// AmendmentDocument builds the pain.010 document of an amendment request
func (b *Builder) AmendmentDocument(req emandate.AmendmentRequest) ([]byte, error) {
	if req.EMandateID == "" {
		return nil, fmt.Errorf("%w: EMandateID", ErrMissingField)
	}

	mndt := b.mandate(req.EMandateID, req.SequenceType, req.EMandateReason, req.DebtorReference, req.PurchaseID)
	mndt.DbtrAgt = agent(req.DebtorBankID)

	return encodeDocument(&AmendmentDocument{
		MndtAmdmntReq: MandateAmendment{
			GrpHdr: b.groupHeader(req.MessageID),
			UndrlygAmdmntDtls: []AmendmentDetails{{
				AmdmntRsn: ReasonInfo{Rsn: ReasonCode{Cd: ReasonCodeByCreditor}},
				Mndt:      *mndt,
				OrgnlMndt: OriginalMandate{OrgnlMndt: &Mandate{
					MndtID:   req.EMandateID,
					Cdtr:     &Party{},
					Dbtr:     &Party{},
					DbtrAcct: &Account{ID: AccountID{IBAN: req.OriginalIBAN}},
					DbtrAgt:  agent(req.OriginalDebtorBankID),
				}},
			}},
		},
	})
}

// CancellationDocument builds the pain.011 document of a cancellation request
func (b *Builder) CancellationDocument(req emandate.CancellationRequest) ([]byte, error) {
	if err := CheckMaxAmount(b.instrument, req.MaxAmount); err != nil {
		return nil, err
	}
	if req.EMandateID == "" {
		return nil, fmt.Errorf("%w: EMandateID", ErrMissingField)
	}

	mndt := b.mandate(req.EMandateID, req.SequenceType, req.EMandateReason, req.DebtorReference, req.PurchaseID)
	mndt.DbtrAcct = &Account{ID: AccountID{IBAN: req.OriginalIBAN}}
	mndt.DbtrAgt = agent(req.DebtorBankID)
	if req.MaxAmount != nil {
		mndt.MaxAmt = &Amount{Ccy: CurrencyEUR, Value: FormatAmount(*req.MaxAmount)}
	}

	return encodeDocument(&CancellationDocument{
		MndtCxlReq: MandateCancellation{
			GrpHdr: b.groupHeader(req.MessageID),
			UndrlygCxlDtls: []CancellationDetails{{
				CxlRsn:    ReasonInfo{Rsn: ReasonCode{Cd: ReasonCodeByCreditor}},
				OrgnlMndt: OriginalMandate{OrgnlMndt: mndt},
			}},
		},
	})
}

func (b *Builder) transactionRequest(issuerID, entranceCode, language string, expiration time.Duration, doc []byte) ([]byte, error) {
	trx := TrxTransaction{
		EntranceCode: entranceCode,
		Language:     language,
		Container:    Container{Inner: string(doc)},
	}
	if expiration > 0 {
		trx.ExpirationPeriod = FormatDuration(expiration)
	}
	return encodeEnvelope(&AcquirerTrxReq{
		Version:             Version,
		ProductID:           ProductID(b.instrument),
		CreateDateTimestamp: NewDateTime(b.now()),
		Issuer:              IssuerRef{IssuerID: issuerID},
		Merchant:            b.merchantRef(true),
		Transaction:         trx,
	})
}

func (b *Builder) merchantRef(withReturnURL bool) MerchantRef {
	ref := MerchantRef{
		MerchantID: b.merchant.ContractID,
		SubID:      strconv.FormatUint(uint64(b.merchant.ContractSubID), 10),
	}
	if withReturnURL {
		ref.MerchantReturnURL = b.merchant.ReturnURL
	}
	return ref
}

func (b *Builder) groupHeader(messageID string) GroupHeader {
	if messageID == "" {
		messageID = b.newID()
	}
	return GroupHeader{MsgID: messageID, CreDtTm: NewDateTime(b.now())}
}

// mandate fills the parts common to pain.009, pain.010 and pain.011
func (b *Builder) mandate(id string, seq emandate.SequenceType, reason, debtorRef, purchaseID string) *Mandate {
	m := &Mandate{
		MndtID:    id,
		MndtReqID: MandateRequestIDNotProvided,
		Tp: &MandateType{
			SvcLvl:    Code{Cd: ServiceLevelSEPA},
			LclInstrm: Code{Cd: LocalInstrumentCode(b.instrument)},
		},
		Ocrncs: &Occurrences{SeqTp: SequenceTypeCode(seq)},
		Cdtr:   &Party{},
		Dbtr:   &Party{},
	}
	if reason != "" {
		m.Rsn = &ReasonCode{Prtry: reason}
	}
	if debtorRef != "" {
		m.Dbtr.ID = &PartyID{PrvtID: &GenericIdentifications{
			Othr: []GenericIdentification{{ID: debtorRef}},
		}}
	}
	if purchaseID != "" {
		m.RfrdDoc = &ReferredDocument{Tp: ReferredDocumentType{CdOrPrtry: ReasonCode{Prtry: purchaseID}}}
	}
	return m
}

func agent(bic string) *Agent {
	return &Agent{FinInstnID: FinancialInstitution{BICFI: bic}}
}

func checkTransaction(entranceCode, language, debtorBankID string, expiration time.Duration) error {
	if err := CheckExpirationPeriod(expiration); err != nil {
		return err
	}
	switch {
	case entranceCode == "":
		return fmt.Errorf("%w: EntranceCode", ErrMissingField)
	case language == "":
		return fmt.Errorf("%w: Language", ErrMissingField)
	case debtorBankID == "":
		return fmt.Errorf("%w: DebtorBankID", ErrMissingField)
	}
	return nil
}

// Encode marshals an iDx message and normalizes its dates. It is the
// counterpart of the builder for acquirer-side messages.
func Encode(v any) ([]byte, error) {
	return encodeEnvelope(v)
}

// EncodeDocument marshals a pain document and normalizes its dates.
func EncodeDocument(v any) ([]byte, error) {
	return encodeDocument(v)
}

func encodeDocument(v any) ([]byte, error) {
	out, err := xml.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshaling document: %w", err)
	}
	return NormalizeDates(out, PainDateFields)
}

func encodeEnvelope(v any) ([]byte, error) {
	out, err := xml.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshaling message: %w", err)
	}
	out = append([]byte(`<?xml version="1.0" encoding="UTF-8"?>`), out...)
	return NormalizeDates(out, IDxDateFields)
}
