package message

import (
	"encoding/xml"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sirosfoundation/go-emandates/pkg/emandate"
)

var testClock = time.Date(2024, 3, 5, 10, 20, 30, 123456789, time.FixedZone("CET", 3600))

var testMerchant = Merchant{
	ContractID:    "0020000387",
	ContractSubID: 1,
	ReturnURL:     "https://merchant.example.com/return",
}

var (
	dateFieldPattern = regexp.MustCompile(`<(createDateTimestamp|CreDtTm)>([^<]*)<`)
	canonicalDate    = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}\.\d{3}Z$`)
)

func newTestBuilder(inst emandate.Instrumentation) *Builder {
	return NewBuilder(inst, testMerchant,
		WithClock(func() time.Time { return testClock }),
		WithMessageIDGenerator(func() string { return "0123456789abcdef" }),
	)
}

func newMandateRequest() emandate.NewMandateRequest {
	return emandate.NewMandateRequest{
		EntranceCode:    "entrance-1",
		Language:        "nl",
		DebtorBankID:    "INGBNL2A",
		EMandateID:      "mandate-123",
		SequenceType:    emandate.Rcur,
		EMandateReason:  "subscription",
		DebtorReference: "debtor-42",
		PurchaseID:      "purchase-7",
	}
}

func amount(t *testing.T, s string) *decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return &d
}

func assertCanonicalDates(t *testing.T, data []byte) {
	t.Helper()
	matches := dateFieldPattern.FindAllSubmatch(data, -1)
	require.NotEmpty(t, matches, "document should contain date fields")
	for _, m := range matches {
		assert.Regexp(t, canonicalDate, string(m[2]), "date field %s", m[1])
	}
}

func decodeTrxReq(t *testing.T, data []byte) AcquirerTrxReq {
	t.Helper()
	var req AcquirerTrxReq
	require.NoError(t, xml.Unmarshal(data, &req))
	return req
}

func TestBuilder_DirectoryRequest(t *testing.T) {
	data, err := newTestBuilder(emandate.Core).DirectoryRequest()
	require.NoError(t, err)

	s := string(data)
	assert.True(t, strings.HasPrefix(s, "<?xml"), "request should start with an XML declaration")
	assert.Contains(t, s, `productID="NL:BVN:eMandatesCore:1.0"`)
	assert.Contains(t, s, `version="1.0.0"`)
	assert.Contains(t, s, "<createDateTimestamp>2024-03-05T09:20:30.123Z</createDateTimestamp>")
	assert.Contains(t, s, "<merchantID>0020000387</merchantID>")
	assert.Contains(t, s, "<subID>1</subID>")
	assert.NotContains(t, s, "merchantReturnURL")
}

func TestBuilder_ProductIDFollowsInstrument(t *testing.T) {
	data, err := newTestBuilder(emandate.B2B).DirectoryRequest()
	require.NoError(t, err)
	assert.Contains(t, string(data), `productID="NL:BVN:eMandatesB2B:1.0"`)
}

func TestBuilder_NewMandateRequest(t *testing.T) {
	req := newMandateRequest()
	req.ExpirationPeriod = time.Hour

	data, err := newTestBuilder(emandate.Core).NewMandateRequest(req)
	require.NoError(t, err)
	assertCanonicalDates(t, data)

	trx := decodeTrxReq(t, data)
	assert.Equal(t, "INGBNL2A", trx.Issuer.IssuerID)
	assert.Equal(t, "https://merchant.example.com/return", trx.Merchant.MerchantReturnURL)
	assert.Equal(t, "entrance-1", trx.Transaction.EntranceCode)
	assert.Equal(t, "PT1H", trx.Transaction.ExpirationPeriod)
	assert.Equal(t, "nl", trx.Transaction.Language)

	var doc InitiationDocument
	require.NoError(t, xml.Unmarshal([]byte(trx.Transaction.Container.Inner), &doc))
	assert.Equal(t, NsPain009, doc.XMLName.Space)
	assert.Equal(t, "0123456789abcdef", doc.MndtInitnReq.GrpHdr.MsgID)
	assert.True(t, doc.MndtInitnReq.GrpHdr.CreDtTm.Equal(testClock.Truncate(time.Millisecond)))

	require.Len(t, doc.MndtInitnReq.Mndt, 1)
	m := doc.MndtInitnReq.Mndt[0]
	assert.Equal(t, "mandate-123", m.MndtID)
	assert.Equal(t, MandateRequestIDNotProvided, m.MndtReqID)
	require.NotNil(t, m.Tp)
	assert.Equal(t, "SEPA", m.Tp.SvcLvl.Cd)
	assert.Equal(t, "CORE", m.Tp.LclInstrm.Cd)
	require.NotNil(t, m.Ocrncs)
	assert.Equal(t, "RCUR", m.Ocrncs.SeqTp)
	assert.Nil(t, m.MaxAmt)
	require.NotNil(t, m.Rsn)
	assert.Equal(t, "subscription", m.Rsn.Prtry)
	require.NotNil(t, m.Dbtr.FirstOther())
	assert.Equal(t, "debtor-42", m.Dbtr.FirstOther().ID)
	require.NotNil(t, m.DbtrAgt)
	assert.Equal(t, "INGBNL2A", m.DbtrAgt.FinInstnID.BICFI)
	require.NotNil(t, m.RfrdDoc)
	assert.Equal(t, "purchase-7", m.RfrdDoc.Tp.CdOrPrtry.Prtry)
}

func TestBuilder_NewMandateRequest_KeepsMessageID(t *testing.T) {
	req := newMandateRequest()
	req.MessageID = "my-message"

	doc, err := newTestBuilder(emandate.Core).NewMandateDocument(req)
	require.NoError(t, err)
	assert.Contains(t, string(doc), "<MsgId>my-message</MsgId>")
}

func TestBuilder_NewMandateRequest_OptionalFieldsOmitted(t *testing.T) {
	req := emandate.NewMandateRequest{
		EntranceCode: "e",
		Language:     "en",
		DebtorBankID: "RABONL2U",
		EMandateID:   "m",
		SequenceType: emandate.Ooff,
	}
	data, err := newTestBuilder(emandate.Core).NewMandateRequest(req)
	require.NoError(t, err)

	s := string(data)
	assert.NotContains(t, s, "expirationPeriod")
	assert.NotContains(t, s, "<Rsn>")
	assert.NotContains(t, s, "RfrdDoc")
	assert.Contains(t, s, "<SeqTp>OOFF</SeqTp>")
}

func TestBuilder_MaxAmountRejectedForCore(t *testing.T) {
	req := newMandateRequest()
	req.MaxAmount = amount(t, "100")

	_, err := newTestBuilder(emandate.Core).NewMandateRequest(req)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMaxAmountNotAllowed)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestBuilder_MaxAmountRulesForB2B(t *testing.T) {
	tests := []struct {
		value   string
		wantErr error
	}{
		{"100", nil},
		{"100.5", nil},
		{"100.55", nil},
		{"123456789.12", nil},
		{"99999999999", nil},
		{"0", ErrMaxAmountZero},
		{"0.00", ErrMaxAmountZero},
		{"1.234", ErrMaxAmountPrecision},
		{"1234567890.12", ErrMaxAmountDigits},
		{"123456789012", ErrMaxAmountDigits},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			req := newMandateRequest()
			req.MaxAmount = amount(t, tt.value)

			data, err := newTestBuilder(emandate.B2B).NewMandateRequest(req)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, data, "no document may be produced on failure")
				return
			}
			require.NoError(t, err)
			assert.Contains(t, string(data), `<MaxAmt Ccy="EUR">`)
		})
	}
}

func TestBuilder_ExpirationPeriodLimit(t *testing.T) {
	b := newTestBuilder(emandate.B2B)

	nm := newMandateRequest()
	nm.ExpirationPeriod = 7*24*time.Hour + time.Second
	_, err := b.NewMandateRequest(nm)
	assert.ErrorIs(t, err, ErrExpirationPeriod)

	am := emandate.AmendmentRequest{EntranceCode: "e", Language: "nl", DebtorBankID: "X", EMandateID: "m", ExpirationPeriod: 8 * 24 * time.Hour}
	_, err = b.AmendmentRequest(am)
	assert.ErrorIs(t, err, ErrExpirationPeriod)

	cr := emandate.CancellationRequest{EntranceCode: "e", Language: "nl", DebtorBankID: "X", EMandateID: "m", ExpirationPeriod: 30 * 24 * time.Hour}
	_, err = b.CancellationRequest(cr)
	assert.ErrorIs(t, err, ErrExpirationPeriod)

	nm.ExpirationPeriod = 7 * 24 * time.Hour
	data, err := b.NewMandateRequest(nm)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<expirationPeriod>P7D</expirationPeriod>")
}

func TestBuilder_AmendmentRequest(t *testing.T) {
	req := emandate.AmendmentRequest{
		EntranceCode:         "entrance-2",
		Language:             "nl",
		EMandateID:           "mandate-123",
		DebtorBankID:         "RABONL2U",
		SequenceType:         emandate.Ooff,
		OriginalIBAN:         "NL44RABO0123456789",
		OriginalDebtorBankID: "INGBNL2A",
	}
	data, err := newTestBuilder(emandate.Core).AmendmentRequest(req)
	require.NoError(t, err)
	assertCanonicalDates(t, data)

	trx := decodeTrxReq(t, data)
	assert.Equal(t, "RABONL2U", trx.Issuer.IssuerID)

	var doc AmendmentDocument
	require.NoError(t, xml.Unmarshal([]byte(trx.Transaction.Container.Inner), &doc))
	require.Len(t, doc.MndtAmdmntReq.UndrlygAmdmntDtls, 1)
	dtls := doc.MndtAmdmntReq.UndrlygAmdmntDtls[0]

	assert.Equal(t, "MD16", dtls.AmdmntRsn.Rsn.Cd)
	assert.Nil(t, dtls.Mndt.MaxAmt)
	assert.Equal(t, "OOFF", dtls.Mndt.Ocrncs.SeqTp)
	assert.Equal(t, "RABONL2U", dtls.Mndt.DbtrAgt.FinInstnID.BICFI)

	orig := dtls.OrgnlMndt.OrgnlMndt
	require.NotNil(t, orig)
	assert.Equal(t, "mandate-123", orig.MndtID)
	assert.Equal(t, "NL44RABO0123456789", orig.DbtrAcct.ID.IBAN)
	assert.Equal(t, "INGBNL2A", orig.DbtrAgt.FinInstnID.BICFI)
}

func TestBuilder_CancellationRequest(t *testing.T) {
	req := emandate.CancellationRequest{
		EntranceCode: "entrance-3",
		Language:     "en",
		EMandateID:   "mandate-123",
		DebtorBankID: "INGBNL2A",
		SequenceType: emandate.Rcur,
		MaxAmount:    amount(t, "250"),
		OriginalIBAN: "NL44RABO0123456789",
	}
	data, err := newTestBuilder(emandate.B2B).CancellationRequest(req)
	require.NoError(t, err)

	trx := decodeTrxReq(t, data)
	var doc CancellationDocument
	require.NoError(t, xml.Unmarshal([]byte(trx.Transaction.Container.Inner), &doc))
	require.Len(t, doc.MndtCxlReq.UndrlygCxlDtls, 1)
	dtls := doc.MndtCxlReq.UndrlygCxlDtls[0]

	assert.Equal(t, "MD16", dtls.CxlRsn.Rsn.Cd)
	orig := dtls.OrgnlMndt.OrgnlMndt
	require.NotNil(t, orig)
	assert.Equal(t, "B2B", orig.Tp.LclInstrm.Cd)
	require.NotNil(t, orig.MaxAmt)
	assert.Equal(t, "EUR", orig.MaxAmt.Ccy)
	assert.Equal(t, "250.00", orig.MaxAmt.Value)
	assert.Equal(t, "NL44RABO0123456789", orig.DbtrAcct.ID.IBAN)
	assert.Equal(t, "INGBNL2A", orig.DbtrAgt.FinInstnID.BICFI)
}

func TestBuilder_StatusRequest(t *testing.T) {
	b := newTestBuilder(emandate.Core)

	_, err := b.StatusRequest(emandate.StatusRequest{})
	assert.ErrorIs(t, err, ErrMissingField)

	data, err := b.StatusRequest(emandate.StatusRequest{TransactionID: "1234567890123456"})
	require.NoError(t, err)

	var req AcquirerStatusReq
	require.NoError(t, xml.Unmarshal(data, &req))
	assert.Equal(t, "1234567890123456", req.Transaction.TransactionID)
	assert.Equal(t, ProductIDCore, req.ProductID)
}

func TestBuilder_RequiredFields(t *testing.T) {
	b := newTestBuilder(emandate.Core)

	req := newMandateRequest()
	req.EntranceCode = ""
	_, err := b.NewMandateRequest(req)
	assert.ErrorIs(t, err, ErrMissingField)

	req = newMandateRequest()
	req.EMandateID = ""
	_, err = b.NewMandateRequest(req)
	assert.ErrorIs(t, err, ErrMissingField)
}

func TestBuilder_Build(t *testing.T) {
	b := newTestBuilder(emandate.Core)

	data, err := b.Build(emandate.OperationNewMandate, newMandateRequest())
	require.NoError(t, err)
	assert.Contains(t, string(data), "AcquirerTrxReq")

	data, err = b.Build(emandate.OperationDirectory, nil)
	require.NoError(t, err)
	assert.Contains(t, string(data), "DirectoryReq")

	_, err = b.Build(emandate.OperationStatus, newMandateRequest())
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrValidation))

	_, err = b.Build(emandate.Operation("refund"), nil)
	require.Error(t, err)
}

func TestNewMessageID(t *testing.T) {
	a := NewMessageID()
	b := NewMessageID()
	assert.Regexp(t, `^[0-9a-f]{16}$`, a)
	assert.NotEqual(t, a, b)
}
