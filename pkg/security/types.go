package security

import (
	"crypto"
	"crypto/rsa"
	"crypto/x509"
	"fmt"

	dsig "github.com/russellhaering/goxmldsig"
)

// Algorithm URIs used by eMandates signatures
const (
	AlgorithmRSASHA256 = dsig.RSASHA256SignatureMethod
	AlgorithmSHA256    = "http://www.w3.org/2001/04/xmlenc#sha256"
	AlgorithmExcC14N   = string(dsig.CanonicalXML10ExclusiveAlgorithmId)
	AlgorithmEnveloped = string(dsig.EnvelopedSignatureAltorithmId)
)

// Namespaces
const (
	NSXMLDSig = dsig.Namespace
	NSPain012 = "urn:iso:std:iso:20022:tech:xsd:pain.012.001.04"
)

const (
	keyNameTag          = "KeyName"
	acceptanceRootTag   = "Document"
	acceptanceReportTag = "MndtAccptncRpt"
	supplementaryTag    = "SplmtryData"
	envelopeTag         = "Envlp"
	acceptedTag         = "Accptd"
)

// Credential is a certificate together with the key that signs for it.
// Key is nil for certificates that are only used to verify.
type Credential struct {
	Certificate *x509.Certificate
	Key         crypto.Signer
}

// Fingerprint returns the fingerprint of the credential's certificate
func (c *Credential) Fingerprint() string {
	return Fingerprint(c.Certificate)
}

// signingReady reports why the credential cannot sign with rsa-sha256, if it cannot
func (c *Credential) signingReady() error {
	if c == nil || c.Certificate == nil {
		return fmt.Errorf("certificate is required")
	}
	if c.Key == nil {
		return fmt.Errorf("private key is required for %s", c.Fingerprint())
	}
	if _, ok := c.Certificate.PublicKey.(*rsa.PublicKey); !ok {
		return fmt.Errorf("certificate %s does not contain an RSA public key", c.Fingerprint())
	}
	return nil
}

// Scope selects which element a signature covers
type Scope int

const (
	// ScopeRoot signs the document root and appends the signature as its last child
	ScopeRoot Scope = iota
	// ScopeAcceptanceReport signs a pain.012 Document and places the signature in
	// MndtAccptncRpt/SplmtryData/Envlp
	ScopeAcceptanceReport
)

func (s Scope) String() string {
	switch s {
	case ScopeRoot:
		return "root"
	case ScopeAcceptanceReport:
		return "acceptance-report"
	default:
		return fmt.Sprintf("scope(%d)", int(s))
	}
}

// SignatureTarget says where a signature goes and how the signer is identified.
// With EmbedCertificate the KeyInfo carries the full certificate, otherwise only
// its fingerprint as KeyName.
type SignatureTarget struct {
	Scope            Scope
	EmbedCertificate bool
}

var (
	// EnvelopeTarget is used for iDx messages
	EnvelopeTarget = SignatureTarget{Scope: ScopeRoot}
	// AcceptanceReportTarget is used for the eMandate signature on a pain.012 report
	AcceptanceReportTarget = SignatureTarget{Scope: ScopeAcceptanceReport, EmbedCertificate: true}
)
