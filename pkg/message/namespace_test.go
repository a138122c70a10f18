package message

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sirosfoundation/go-emandates/pkg/emandate"
)

func TestProductID(t *testing.T) {
	assert.Equal(t, "NL:BVN:eMandatesCore:1.0", ProductID(emandate.Core))
	assert.Equal(t, "NL:BVN:eMandatesB2B:1.0", ProductID(emandate.B2B))
}

func TestLocalInstrumentCode_BothDirections(t *testing.T) {
	for _, inst := range []emandate.Instrumentation{emandate.Core, emandate.B2B} {
		token := LocalInstrumentCode(inst)
		got, ok := ParseLocalInstrumentCode(token)
		assert.True(t, ok, "token %q should be known", token)
		assert.Equal(t, inst, got)
	}
	assert.Equal(t, "CORE", LocalInstrumentCode(emandate.Core))

	_, ok := ParseLocalInstrumentCode("COR1")
	assert.False(t, ok, "unknown token must not map to an instrument")
}

func TestSequenceTypeCode_BothDirections(t *testing.T) {
	for _, seq := range []emandate.SequenceType{emandate.Rcur, emandate.Ooff} {
		token := SequenceTypeCode(seq)
		got, ok := ParseSequenceTypeCode(token)
		assert.True(t, ok, "token %q should be known", token)
		assert.Equal(t, seq, got)
	}
	assert.Equal(t, "OOFF", SequenceTypeCode(emandate.Ooff))

	_, ok := ParseSequenceTypeCode("FRST")
	assert.False(t, ok)
}

func TestNamespaces(t *testing.T) {
	for _, ns := range []string{NsPain009, NsPain010, NsPain011, NsPain012} {
		assert.Contains(t, ns, "urn:iso:std:iso:20022:tech:xsd:pain.01")
		assert.Contains(t, ns, ".001.04")
	}
	assert.Contains(t, NsIDx, "Merchant-Acquirer/1.0.0")
}
