package response

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sirosfoundation/go-emandates/pkg/emandate"
	"github.com/sirosfoundation/go-emandates/pkg/message"
)

func otherID(id, scheme string) *message.PartyID {
	g := message.GenericIdentification{ID: id}
	if scheme != "" {
		g.SchmeNm = &message.ReasonCode{Prtry: scheme}
	}
	return &message.PartyID{PrvtID: &message.GenericIdentifications{Othr: []message.GenericIdentification{g}}}
}

// acceptanceDocument renders an accepted B2B report. mutate may adjust it first.
func acceptanceDocument(t *testing.T, mutate func(*message.AcceptanceDocument)) string {
	t.Helper()
	created := message.NewDateTime(testTime)
	doc := &message.AcceptanceDocument{
		MndtAccptncRpt: message.MandateAcceptance{
			GrpHdr: message.GroupHeader{
				MsgID:   "acc-msg-1",
				CreDtTm: created,
				Authstn: []message.Authorisation{{Prtry: "validation-ref-9"}},
			},
			UndrlygAccptncDtls: []message.AcceptanceDetails{{
				OrgnlMsgInf: message.OriginalMessageInfo{MsgID: "0123456789abcdef", MsgNmID: "pain.009", CreDtTm: &created},
				AccptncRslt: message.AcceptanceResult{Accptd: true},
				OrgnlMndt: message.OriginalMandate{OrgnlMndt: &message.Mandate{
					MndtID:    "mandate-123",
					MndtReqID: "NOTPROVIDED",
					Tp: &message.MandateType{
						SvcLvl:    message.Code{Cd: "SEPA"},
						LclInstrm: message.Code{Cd: "B2B"},
					},
					Ocrncs:      &message.Occurrences{SeqTp: "OOFF"},
					MaxAmt:      &message.Amount{Ccy: "EUR", Value: "1500.50"},
					Rsn:         &message.ReasonCode{Prtry: "subscription"},
					CdtrSchmeID: &message.Party{ID: otherID("NL97ZZZ123456780000", "SEPA")},
					Cdtr: &message.Party{
						Nm: "Merchant BV",
						PstlAdr: &message.PostalAddress{
							Ctry:    "NL",
							AdrLine: []string{"Main Street 1", "1000 AA Amsterdam"},
						},
					},
					UltmtCdtr: &message.Party{Nm: "Merchant Shop"},
					Dbtr:      &message.Party{Nm: "J. Debtor", ID: otherID("debtor-42", "")},
					DbtrAcct:  &message.Account{ID: message.AccountID{IBAN: "NL44RABO0123456789"}},
					DbtrAgt:   &message.Agent{FinInstnID: message.FinancialInstitution{BICFI: "RABONL2U"}},
					UltmtDbtr: &message.Party{Nm: "J. Signer"},
				}},
			}},
		},
	}
	if mutate != nil {
		mutate(doc)
	}
	out, err := message.EncodeDocument(doc)
	require.NoError(t, err)
	return strings.TrimSpace(string(out))
}

func TestParseAcceptanceReport(t *testing.T) {
	doc := acceptanceDocument(t, nil)

	report, err := ParseAcceptanceReport(doc)
	require.NoError(t, err)

	assert.Equal(t, "acc-msg-1", report.MessageID)
	assert.Equal(t, testTime, report.DateTime)
	assert.Equal(t, "validation-ref-9", report.ValidationReference)
	assert.Equal(t, "0123456789abcdef", report.OriginalMessageID)
	assert.Equal(t, "pain.009", report.MessageNameID)
	assert.True(t, report.AcceptedResult)
	assert.Equal(t, "mandate-123", report.OriginalMandateID)
	assert.Equal(t, "NOTPROVIDED", report.MandateRequestID)
	assert.Equal(t, "SEPA", report.ServiceLevelCode)
	assert.Equal(t, emandate.B2B, report.LocalInstrumentCode)
	assert.Equal(t, emandate.Ooff, report.SequenceType)
	assert.True(t, decimal.RequireFromString("1500.50").Equal(report.MaxAmount))
	assert.Equal(t, "subscription", report.EMandateReason)
	assert.Equal(t, "NL97ZZZ123456780000", report.CreditorID)
	assert.Equal(t, "SEPA", report.SchemeName)
	assert.Equal(t, "Merchant BV", report.CreditorName)
	assert.Equal(t, "NL", report.CreditorCountry)
	assert.Equal(t, []string{"Main Street 1", "1000 AA Amsterdam"}, report.CreditorAddressLine)
	assert.Equal(t, "Merchant Shop", report.CreditorTradeName)
	assert.Equal(t, "J. Debtor", report.DebtorAccountName)
	assert.Equal(t, "debtor-42", report.DebtorReference)
	assert.Equal(t, "NL44RABO0123456789", report.DebtorIBAN)
	assert.Equal(t, "RABONL2U", report.DebtorBankID)
	assert.Equal(t, "J. Signer", report.DebtorSignerName)
	assert.Equal(t, doc, report.RawMessage)
}

func TestParseAcceptanceReport_Optional(t *testing.T) {
	doc := acceptanceDocument(t, func(d *message.AcceptanceDocument) {
		d.MndtAccptncRpt.GrpHdr.Authstn = nil
		m := d.MndtAccptncRpt.UndrlygAccptncDtls[0].OrgnlMndt.OrgnlMndt
		m.Tp.LclInstrm.Cd = "CORE"
		m.Ocrncs.SeqTp = "RCUR"
		m.MaxAmt = nil
		m.Rsn = nil
		m.UltmtCdtr = nil
		m.Dbtr.ID = nil
		d.MndtAccptncRpt.UndrlygAccptncDtls[0].AccptncRslt = message.AcceptanceResult{
			Accptd:  false,
			RjctRsn: &message.ReasonCode{Cd: "MS02"},
		}
	})

	report, err := ParseAcceptanceReport(doc)
	require.NoError(t, err)
	assert.False(t, report.AcceptedResult)
	assert.Equal(t, emandate.Core, report.LocalInstrumentCode)
	assert.Equal(t, emandate.Rcur, report.SequenceType)
	assert.True(t, report.MaxAmount.IsZero())
	assert.Empty(t, report.ValidationReference)
	assert.Empty(t, report.EMandateReason)
	assert.Empty(t, report.CreditorTradeName)
	assert.Empty(t, report.DebtorReference)
}

func TestParseAcceptanceReport_UnknownTokens(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*message.Mandate)
		want   string
	}{
		{"instrument", func(m *message.Mandate) { m.Tp.LclInstrm.Cd = "COR1" }, "COR1"},
		{"sequence", func(m *message.Mandate) { m.Ocrncs.SeqTp = "FRST" }, "FRST"},
		{"missing type", func(m *message.Mandate) { m.Tp = nil }, `""`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := acceptanceDocument(t, func(d *message.AcceptanceDocument) {
				tt.mutate(d.MndtAccptncRpt.UndrlygAccptncDtls[0].OrgnlMndt.OrgnlMndt)
			})
			_, err := ParseAcceptanceReport(doc)
			assert.ErrorIs(t, err, ErrUnknownToken)
			assert.ErrorIs(t, err, ErrParseFault)

			var perr *Error
			require.ErrorAs(t, err, &perr)
			assert.Contains(t, perr.Detail(), tt.want)
		})
	}
}

func TestParseAcceptanceReport_Malformed(t *testing.T) {
	for name, doc := range map[string]string{
		"not xml":         "<Document",
		"wrong namespace": `<Document xmlns="urn:iso:std:iso:20022:tech:xsd:pain.009.001.04"/>`,
		"no details":      `<Document xmlns="urn:iso:std:iso:20022:tech:xsd:pain.012.001.04"><MndtAccptncRpt/></Document>`,
		"no mandate": `<Document xmlns="urn:iso:std:iso:20022:tech:xsd:pain.012.001.04"><MndtAccptncRpt>` +
			`<UndrlygAccptncDtls><OrgnlMndt><OrgnlMndtId>m-1</OrgnlMndtId></OrgnlMndt></UndrlygAccptncDtls>` +
			`</MndtAccptncRpt></Document>`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseAcceptanceReport(doc)
			assert.ErrorIs(t, err, ErrParseFault)
		})
	}
}

func TestStatus_UnknownTokenIsFault(t *testing.T) {
	doc := acceptanceDocument(t, func(d *message.AcceptanceDocument) {
		d.MndtAccptncRpt.UndrlygAccptncDtls[0].OrgnlMndt.OrgnlMndt.Ocrncs.SeqTp = "LAST"
	})
	out := ParseStatus(encode(t, statusRes(emandate.StatusSuccess, &message.Container{Inner: doc})))
	assert.Equal(t, emandate.OutcomeFault, out.Kind)
	assert.ErrorIs(t, out.Cause, ErrUnknownToken)
}
