package message

import (
	"github.com/sirosfoundation/go-emandates/pkg/emandate"
)

// Namespace constants for the iDx envelope and the ISO 20022 mandate documents
const (
	NsIDx     = "http://www.betaalvereniging.nl/iDx/messages/Merchant-Acquirer/1.0.0"
	NsPain009 = "urn:iso:std:iso:20022:tech:xsd:pain.009.001.04"
	NsPain010 = "urn:iso:std:iso:20022:tech:xsd:pain.010.001.04"
	NsPain011 = "urn:iso:std:iso:20022:tech:xsd:pain.011.001.04"
	NsPain012 = "urn:iso:std:iso:20022:tech:xsd:pain.012.001.04"
	NsDS      = "http://www.w3.org/2000/09/xmldsig#"
)

// Product identifiers placed on every iDx message
const (
	ProductIDCore = "NL:BVN:eMandatesCore:1.0"
	ProductIDB2B  = "NL:BVN:eMandatesB2B:1.0"
	Version       = "1.0.0"
)

// Fixed values in the mandate documents
const (
	MandateRequestIDNotProvided = "NOTPROVIDED"
	ServiceLevelSEPA            = "SEPA"
	ReasonCodeByCreditor        = "MD16"
	CurrencyEUR                 = "EUR"
)

// ProductID returns the product identifier for an instrument.
func ProductID(inst emandate.Instrumentation) string {
	if inst == emandate.B2B {
		return ProductIDB2B
	}
	return ProductIDCore
}

var (
	instrumentTokens = map[emandate.Instrumentation]string{
		emandate.Core: "CORE",
		emandate.B2B:  "B2B",
	}
	instrumentsByToken = map[string]emandate.Instrumentation{
		"CORE": emandate.Core,
		"B2B":  emandate.B2B,
	}
	sequenceTokens = map[emandate.SequenceType]string{
		emandate.Rcur: "RCUR",
		emandate.Ooff: "OOFF",
	}
	sequencesByToken = map[string]emandate.SequenceType{
		"RCUR": emandate.Rcur,
		"OOFF": emandate.Ooff,
	}
)

// LocalInstrumentCode returns the LclInstrm token for an instrument.
func LocalInstrumentCode(inst emandate.Instrumentation) string {
	return instrumentTokens[inst]
}

// ParseLocalInstrumentCode maps a LclInstrm token back to an instrument.
func ParseLocalInstrumentCode(token string) (emandate.Instrumentation, bool) {
	inst, ok := instrumentsByToken[token]
	return inst, ok
}

// SequenceTypeCode returns the SeqTp token for a sequence type.
func SequenceTypeCode(seq emandate.SequenceType) string {
	return sequenceTokens[seq]
}

// ParseSequenceTypeCode maps a SeqTp token back to a sequence type.
func ParseSequenceTypeCode(token string) (emandate.SequenceType, bool) {
	seq, ok := sequencesByToken[token]
	return seq, ok
}
