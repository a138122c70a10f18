package response

import (
	"encoding/xml"
	"errors"
	"fmt"

	"github.com/sirosfoundation/go-emandates/pkg/emandate"
	"github.com/sirosfoundation/go-emandates/pkg/message"
)

// ParseAcceptanceReport decodes a pain.012 document. Only the first
// UndrlygAccptncDtls entry is read.
func ParseAcceptanceReport(doc string) (*emandate.AcceptanceReport, error) {
	var d message.AcceptanceDocument
	if err := xml.Unmarshal([]byte(doc), &d); err != nil {
		return nil, fault(ErrParseFault, fmt.Errorf("acceptance report: %w", err))
	}
	rpt := d.MndtAccptncRpt
	if len(rpt.UndrlygAccptncDtls) == 0 {
		return nil, fault(ErrParseFault, errors.New("acceptance report: no acceptance details"))
	}
	dtls := rpt.UndrlygAccptncDtls[0]
	m := dtls.OrgnlMndt.OrgnlMndt
	if m == nil {
		return nil, fault(ErrParseFault, errors.New("acceptance report: original mandate is missing"))
	}

	out := &emandate.AcceptanceReport{
		MessageID:         rpt.GrpHdr.MsgID,
		DateTime:          rpt.GrpHdr.CreDtTm.Time,
		OriginalMessageID: dtls.OrgnlMsgInf.MsgID,
		MessageNameID:     dtls.OrgnlMsgInf.MsgNmID,
		AcceptedResult:    dtls.AccptncRslt.Accptd,
		OriginalMandateID: m.MndtID,
		MandateRequestID:  m.MndtReqID,
		EMandateReason:    reasonText(m.Rsn),
		RawMessage:        doc,
	}
	if len(rpt.GrpHdr.Authstn) > 0 {
		a := rpt.GrpHdr.Authstn[0]
		out.ValidationReference = reasonText(&message.ReasonCode{Cd: a.Cd, Prtry: a.Prtry})
	}

	var lclInstrm, seqTp string
	if m.Tp != nil {
		out.ServiceLevelCode = m.Tp.SvcLvl.Cd
		lclInstrm = m.Tp.LclInstrm.Cd
	}
	if m.Ocrncs != nil {
		seqTp = m.Ocrncs.SeqTp
	}
	inst, ok := message.ParseLocalInstrumentCode(lclInstrm)
	if !ok {
		return nil, fault(ErrUnknownToken, fmt.Errorf("local instrument %q", lclInstrm))
	}
	seq, ok := message.ParseSequenceTypeCode(seqTp)
	if !ok {
		return nil, fault(ErrUnknownToken, fmt.Errorf("sequence type %q", seqTp))
	}
	out.LocalInstrumentCode, out.SequenceType = inst, seq

	if m.MaxAmt != nil {
		amt, err := message.ParseAmount(m.MaxAmt.Value)
		if err != nil {
			return nil, fault(ErrParseFault, fmt.Errorf("acceptance report MaxAmt: %w", err))
		}
		out.MaxAmount = amt
	}

	if id := m.CdtrSchmeID.FirstOther(); id != nil {
		out.CreditorID = id.ID
		out.SchemeName = reasonText(id.SchmeNm)
	}
	if m.Cdtr != nil {
		out.CreditorName = m.Cdtr.Nm
		if m.Cdtr.PstlAdr != nil {
			out.CreditorCountry = m.Cdtr.PstlAdr.Ctry
			out.CreditorAddressLine = m.Cdtr.PstlAdr.AdrLine
		}
	}
	if m.UltmtCdtr != nil {
		out.CreditorTradeName = m.UltmtCdtr.Nm
	}
	if m.Dbtr != nil {
		out.DebtorAccountName = m.Dbtr.Nm
	}
	if id := m.Dbtr.FirstOther(); id != nil {
		out.DebtorReference = id.ID
	}
	if m.DbtrAcct != nil {
		out.DebtorIBAN = m.DbtrAcct.ID.IBAN
	}
	if m.DbtrAgt != nil {
		out.DebtorBankID = m.DbtrAgt.FinInstnID.BICFI
	}
	if m.UltmtDbtr != nil {
		out.DebtorSignerName = m.UltmtDbtr.Nm
	}
	return out, nil
}

// reasonText returns whichever side of a code/proprietary choice is set
func reasonText(r *message.ReasonCode) string {
	switch {
	case r == nil:
		return ""
	case r.Cd != "":
		return r.Cd
	default:
		return r.Prtry
	}
}
