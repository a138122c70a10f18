package message

import (
	"encoding/xml"
)

// InitiationDocument is a pain.009 mandate initiation request
type InitiationDocument struct {
	XMLName      xml.Name          `xml:"urn:iso:std:iso:20022:tech:xsd:pain.009.001.04 Document"`
	MndtInitnReq MandateInitiation `xml:"MndtInitnReq"`
}

// MandateInitiation is the body of a pain.009 document
type MandateInitiation struct {
	GrpHdr GroupHeader `xml:"GrpHdr"`
	Mndt   []Mandate   `xml:"Mndt"`
}

// AmendmentDocument is a pain.010 mandate amendment request
type AmendmentDocument struct {
	XMLName       xml.Name         `xml:"urn:iso:std:iso:20022:tech:xsd:pain.010.001.04 Document"`
	MndtAmdmntReq MandateAmendment `xml:"MndtAmdmntReq"`
}

// MandateAmendment is the body of a pain.010 document
type MandateAmendment struct {
	GrpHdr            GroupHeader        `xml:"GrpHdr"`
	UndrlygAmdmntDtls []AmendmentDetails `xml:"UndrlygAmdmntDtls"`
}

// AmendmentDetails pairs the changed mandate with the original one
type AmendmentDetails struct {
	AmdmntRsn ReasonInfo      `xml:"AmdmntRsn"`
	Mndt      Mandate         `xml:"Mndt"`
	OrgnlMndt OriginalMandate `xml:"OrgnlMndt"`
}

// CancellationDocument is a pain.011 mandate cancellation request
type CancellationDocument struct {
	XMLName    xml.Name            `xml:"urn:iso:std:iso:20022:tech:xsd:pain.011.001.04 Document"`
	MndtCxlReq MandateCancellation `xml:"MndtCxlReq"`
}

// MandateCancellation is the body of a pain.011 document
type MandateCancellation struct {
	GrpHdr         GroupHeader           `xml:"GrpHdr"`
	UndrlygCxlDtls []CancellationDetails `xml:"UndrlygCxlDtls"`
}

// CancellationDetails identifies the mandate being cancelled
type CancellationDetails struct {
	CxlRsn    ReasonInfo      `xml:"CxlRsn"`
	OrgnlMndt OriginalMandate `xml:"OrgnlMndt"`
}

// AcceptanceDocument is a pain.012 mandate acceptance report
type AcceptanceDocument struct {
	XMLName        xml.Name          `xml:"urn:iso:std:iso:20022:tech:xsd:pain.012.001.04 Document"`
	MndtAccptncRpt MandateAcceptance `xml:"MndtAccptncRpt"`
}

// MandateAcceptance is the body of a pain.012 document
type MandateAcceptance struct {
	GrpHdr             GroupHeader         `xml:"GrpHdr"`
	UndrlygAccptncDtls []AcceptanceDetails `xml:"UndrlygAccptncDtls"`
	SplmtryData        []SupplementaryData `xml:"SplmtryData,omitempty"`
}

// AcceptanceDetails carries the debtor bank's verdict on one mandate
type AcceptanceDetails struct {
	OrgnlMsgInf OriginalMessageInfo `xml:"OrgnlMsgInf"`
	AccptncRslt AcceptanceResult    `xml:"AccptncRslt"`
	OrgnlMndt   OriginalMandate     `xml:"OrgnlMndt"`
}

// OriginalMessageInfo refers to the request that started the transaction
type OriginalMessageInfo struct {
	MsgID   string    `xml:"MsgId"`
	MsgNmID string    `xml:"MsgNmId"`
	CreDtTm *DateTime `xml:"CreDtTm,omitempty"`
}

// AcceptanceResult tells whether the debtor accepted the mandate
type AcceptanceResult struct {
	Accptd  bool        `xml:"Accptd"`
	RjctRsn *ReasonCode `xml:"RjctRsn,omitempty"`
}

// SupplementaryData wraps the eMandate signature of an acceptance report
type SupplementaryData struct {
	Envlp Container `xml:"Envlp"`
}

// GroupHeader is shared by all mandate documents
type GroupHeader struct {
	MsgID   string          `xml:"MsgId"`
	CreDtTm DateTime        `xml:"CreDtTm"`
	Authstn []Authorisation `xml:"Authstn,omitempty"`
}

// Authorisation holds the validation reference of the debtor bank
type Authorisation struct {
	Cd    string `xml:"Cd,omitempty"`
	Prtry string `xml:"Prtry,omitempty"`
}

// OriginalMandate refers to a mandate by id or by its full content
type OriginalMandate struct {
	OrgnlMndtID string   `xml:"OrgnlMndtId,omitempty"`
	OrgnlMndt   *Mandate `xml:"OrgnlMndt,omitempty"`
}

// ReasonInfo carries the amendment or cancellation reason
type ReasonInfo struct {
	Rsn ReasonCode `xml:"Rsn"`
}

// ReasonCode is a coded or proprietary reason
type ReasonCode struct {
	Cd    string `xml:"Cd,omitempty"`
	Prtry string `xml:"Prtry,omitempty"`
}

// Mandate is the mandate structure shared by pain.009 to pain.012
type Mandate struct {
	MndtID      string            `xml:"MndtId"`
	MndtReqID   string            `xml:"MndtReqId,omitempty"`
	Tp          *MandateType      `xml:"Tp,omitempty"`
	Ocrncs      *Occurrences      `xml:"Ocrncs,omitempty"`
	MaxAmt      *Amount           `xml:"MaxAmt,omitempty"`
	Rsn         *ReasonCode       `xml:"Rsn,omitempty"`
	CdtrSchmeID *Party            `xml:"CdtrSchmeId,omitempty"`
	Cdtr        *Party            `xml:"Cdtr"`
	UltmtCdtr   *Party            `xml:"UltmtCdtr,omitempty"`
	Dbtr        *Party            `xml:"Dbtr"`
	DbtrAcct    *Account          `xml:"DbtrAcct,omitempty"`
	DbtrAgt     *Agent            `xml:"DbtrAgt,omitempty"`
	UltmtDbtr   *Party            `xml:"UltmtDbtr,omitempty"`
	RfrdDoc     *ReferredDocument `xml:"RfrdDoc,omitempty"`
}

// MandateType holds the service level and local instrument
type MandateType struct {
	SvcLvl    Code `xml:"SvcLvl"`
	LclInstrm Code `xml:"LclInstrm"`
}

// Code is a single coded value
type Code struct {
	Cd string `xml:"Cd"`
}

// Occurrences holds the sequence type
type Occurrences struct {
	SeqTp string `xml:"SeqTp"`
}

// Amount is a currency amount
type Amount struct {
	Ccy   string `xml:"Ccy,attr"`
	Value string `xml:",chardata"`
}

// Party identifies a creditor or debtor
type Party struct {
	Nm      string         `xml:"Nm,omitempty"`
	PstlAdr *PostalAddress `xml:"PstlAdr,omitempty"`
	ID      *PartyID       `xml:"Id,omitempty"`
}

// PostalAddress of a party
type PostalAddress struct {
	Ctry    string   `xml:"Ctry,omitempty"`
	AdrLine []string `xml:"AdrLine,omitempty"`
}

// PartyID is either an organisation or a private identification
type PartyID struct {
	OrgID  *GenericIdentifications `xml:"OrgId,omitempty"`
	PrvtID *GenericIdentifications `xml:"PrvtId,omitempty"`
}

// GenericIdentifications lists generic identifiers
type GenericIdentifications struct {
	Othr []GenericIdentification `xml:"Othr"`
}

// GenericIdentification is an identifier with an optional scheme
type GenericIdentification struct {
	ID      string      `xml:"Id"`
	SchmeNm *ReasonCode `xml:"SchmeNm,omitempty"`
}

// Account identifies a debtor account by IBAN
type Account struct {
	ID AccountID `xml:"Id"`
}

// AccountID holds the IBAN
type AccountID struct {
	IBAN string `xml:"IBAN"`
}

// Agent identifies a bank by BIC
type Agent struct {
	FinInstnID FinancialInstitution `xml:"FinInstnId"`
}

// FinancialInstitution holds the BIC
type FinancialInstitution struct {
	BICFI string `xml:"BICFI"`
}

// ReferredDocument carries the purchase id
type ReferredDocument struct {
	Tp ReferredDocumentType `xml:"Tp"`
}

// ReferredDocumentType wraps the document type choice
type ReferredDocumentType struct {
	CdOrPrtry ReasonCode `xml:"CdOrPrtry"`
}

// FirstOther returns the first generic identifier of a party, if any.
func (p *Party) FirstOther() *GenericIdentification {
	if p == nil || p.ID == nil {
		return nil
	}
	for _, ids := range []*GenericIdentifications{p.ID.PrvtID, p.ID.OrgID} {
		if ids != nil && len(ids.Othr) > 0 {
			return &ids.Othr[0]
		}
	}
	return nil
}
