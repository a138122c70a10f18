package security

import (
	"bytes"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/beevik/etree"
	dsig "github.com/russellhaering/goxmldsig"
	"github.com/russellhaering/goxmldsig/etreeutils"
)

// Verification describes a document whose signatures all checked out
type Verification struct {
	// Signer is the trusted certificate that made the outer signature
	Signer *x509.Certificate
	// Nested is the certificate embedded in the acceptance report signature, if any
	Nested *x509.Certificate
	// Checks counts the independent signature checks performed
	Checks int
}

// Verifier checks outer envelope signatures against a TrustSet, and nested
// acceptance report signatures against the certificate they embed.
type Verifier struct {
	trust TrustSet
	opts  *options
}

// NewVerifier creates a verifier. The trust set needs at least a primary certificate.
func NewVerifier(trust TrustSet, opts ...Option) (*Verifier, error) {
	if trust.Primary == nil {
		return nil, fmt.Errorf("primary certificate is required")
	}
	return &Verifier{trust: trust, opts: newOptions(opts)}, nil
}

// Trust returns the verifier's trust set
func (v *Verifier) Trust() TrustSet {
	return v.trust
}

// Verify parses data and verifies its signatures
func (v *Verifier) Verify(data []byte) (*Verification, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedXML, err)
	}
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("%w: empty document", ErrMalformedXML)
	}
	return v.VerifyElement(root)
}

// VerifyElement verifies the signatures found below root. The last signature
// in document order is the outer one and covers root. When exactly two are
// present the first is the nested acceptance report signature and is checked
// as well.
func (v *Verifier) VerifyElement(root *etree.Element) (*Verification, error) {
	sigs, err := signatures(root)
	if err != nil {
		return nil, err
	}
	if len(sigs) == 0 {
		return nil, ErrNoSignature
	}

	outer := sigs[len(sigs)-1]
	parts, err := parseSignature(outer)
	if err != nil {
		return nil, err
	}
	cert, err := v.resolve(parts)
	if err != nil {
		return nil, err
	}
	if err := v.check(root, outer, parts, cert); err != nil {
		return nil, err
	}
	result := &Verification{Signer: cert, Checks: 1}

	if len(sigs) == 2 {
		nested, err := v.verifyNested(sigs[0])
		if err != nil {
			return nil, fmt.Errorf("acceptance report: %w", err)
		}
		result.Nested = nested
		result.Checks++
	}

	v.opts.logger.Debug("signature verified",
		"root", root.Tag,
		"signatures", len(sigs),
		"fingerprint", Fingerprint(cert))
	return result, nil
}

// verifyNested checks an acceptance report signature with the certificate it
// carries. That certificate is not matched against the trust set.
func (v *Verifier) verifyNested(sig *etree.Element) (*x509.Certificate, error) {
	var target *etree.Element
	for el := sig.Parent(); el != nil; el = el.Parent() {
		if el.Tag == acceptanceRootTag && el.NamespaceURI() == NSPain012 {
			target = el
			break
		}
	}
	if target == nil {
		return nil, fmt.Errorf("%w: signature is not inside a %s document", ErrSignatureMismatch, NSPain012)
	}
	parts, err := parseSignature(sig)
	if err != nil {
		return nil, err
	}
	if parts.cert == nil {
		return nil, fmt.Errorf("%w: nested signature carries no certificate", ErrUnresolvedSigner)
	}
	if err := v.check(target, sig, parts, parts.cert); err != nil {
		return nil, err
	}
	return parts.cert, nil
}

// resolve finds the trusted certificate a signature claims to be made with,
// trying the primary certificate before the alternate
func (v *Verifier) resolve(p *signatureParts) (*x509.Certificate, error) {
	claimed := p.keyName
	if claimed == "" && p.cert != nil {
		claimed = Fingerprint(p.cert)
	}
	if claimed == "" {
		return nil, fmt.Errorf("%w: signature names no key", ErrUnresolvedSigner)
	}
	if FingerprintsEqual(Fingerprint(v.trust.Primary), claimed) {
		return v.trust.Primary, nil
	}
	if v.trust.Alternate != nil && FingerprintsEqual(Fingerprint(v.trust.Alternate), claimed) {
		v.opts.logger.Debug("using alternate acquirer certificate", "fingerprint", claimed)
		return v.trust.Alternate, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnresolvedSigner, claimed)
}

func (v *Verifier) check(target, sig *etree.Element, p *signatureParts, cert *x509.Certificate) error {
	path := pathTo(target, sig)
	if path == nil {
		return fmt.Errorf("%w: signature is outside its target", ErrSignatureMismatch)
	}
	content, err := canonicalize(v.opts.canonicalizer, target, path)
	if err != nil {
		return err
	}
	digest := sha256.Sum256(content)
	if !bytes.Equal(digest[:], p.digest) {
		return ErrDigestMismatch
	}

	signedInfo, err := canonicalize(v.opts.canonicalizer, p.signedInfo, nil)
	if err != nil {
		return err
	}
	if err := cert.CheckSignature(x509.SHA256WithRSA, signedInfo, p.value); err != nil {
		return fmt.Errorf("%w: %v", ErrSignatureMismatch, err)
	}
	return nil
}

// signatureParts holds the pieces of a Signature element needed for checking
type signatureParts struct {
	signedInfo *etree.Element
	digest     []byte
	value      []byte
	keyName    string
	cert       *x509.Certificate
}

func signatures(root *etree.Element) ([]*etree.Element, error) {
	var sigs []*etree.Element
	ctx, err := etreeutils.NSBuildParentContext(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedXML, err)
	}
	err = etreeutils.NSFindIterateCtx(ctx, root, NSXMLDSig, dsig.SignatureTag, func(_ etreeutils.NSContext, el *etree.Element) error {
		sigs = append(sigs, el)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedXML, err)
	}
	return sigs, nil
}

func parseSignature(sig *etree.Element) (*signatureParts, error) {
	p := &signatureParts{signedInfo: childNS(sig, NSXMLDSig, dsig.SignedInfoTag)}
	if p.signedInfo == nil {
		return nil, fmt.Errorf("%w: signature has no SignedInfo", ErrMalformedXML)
	}

	if alg := algorithmOf(p.signedInfo, dsig.CanonicalizationMethodTag); alg != AlgorithmExcC14N {
		return nil, fmt.Errorf("%w: unsupported canonicalization %q", ErrSignatureMismatch, alg)
	}
	if alg := algorithmOf(p.signedInfo, dsig.SignatureMethodTag); alg != AlgorithmRSASHA256 {
		return nil, fmt.Errorf("%w: unsupported signature method %q", ErrSignatureMismatch, alg)
	}

	ref := childNS(p.signedInfo, NSXMLDSig, dsig.ReferenceTag)
	if ref == nil {
		return nil, fmt.Errorf("%w: signature has no Reference", ErrMalformedXML)
	}
	if uri := ref.SelectAttrValue(dsig.URIAttr, ""); uri != "" {
		return nil, fmt.Errorf("%w: unsupported reference %q", ErrSignatureMismatch, uri)
	}
	if alg := algorithmOf(ref, dsig.DigestMethodTag); alg != AlgorithmSHA256 {
		return nil, fmt.Errorf("%w: unsupported digest method %q", ErrSignatureMismatch, alg)
	}
	if transforms := childNS(ref, NSXMLDSig, dsig.TransformsTag); transforms != nil {
		for _, t := range transforms.ChildElements() {
			if alg := t.SelectAttrValue(dsig.AlgorithmAttr, ""); alg != AlgorithmEnveloped && alg != AlgorithmExcC14N {
				return nil, fmt.Errorf("%w: unsupported transform %q", ErrSignatureMismatch, alg)
			}
		}
	}

	var err error
	if p.digest, err = decodeBase64(childNS(ref, NSXMLDSig, dsig.DigestValueTag)); err != nil {
		return nil, fmt.Errorf("%w: DigestValue: %v", ErrMalformedXML, err)
	}
	if p.value, err = decodeBase64(childNS(sig, NSXMLDSig, dsig.SignatureValueTag)); err != nil {
		return nil, fmt.Errorf("%w: SignatureValue: %v", ErrMalformedXML, err)
	}

	if keyInfo := childNS(sig, NSXMLDSig, dsig.KeyInfoTag); keyInfo != nil {
		if name := childNS(keyInfo, NSXMLDSig, keyNameTag); name != nil {
			p.keyName = strings.TrimSpace(name.Text())
		}
		if data := childNS(keyInfo, NSXMLDSig, dsig.X509DataTag); data != nil {
			der, err := decodeBase64(childNS(data, NSXMLDSig, dsig.X509CertificateTag))
			if err != nil {
				return nil, fmt.Errorf("%w: X509Certificate: %v", ErrUnresolvedSigner, err)
			}
			if p.cert, err = x509.ParseCertificate(der); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrUnresolvedSigner, err)
			}
		}
	}
	return p, nil
}

func algorithmOf(parent *etree.Element, tag string) string {
	el := childNS(parent, NSXMLDSig, tag)
	if el == nil {
		return ""
	}
	return el.SelectAttrValue(dsig.AlgorithmAttr, "")
}

func decodeBase64(el *etree.Element) ([]byte, error) {
	if el == nil {
		return nil, fmt.Errorf("element missing")
	}
	text := strings.Join(strings.Fields(el.Text()), "")
	if text == "" {
		return nil, fmt.Errorf("empty value")
	}
	return base64.StdEncoding.DecodeString(text)
}
