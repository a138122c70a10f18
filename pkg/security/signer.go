package security

import (
	"crypto"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/beevik/etree"
	dsig "github.com/russellhaering/goxmldsig"
	"github.com/russellhaering/goxmldsig/etreeutils"
)

// Signer creates enveloped rsa-sha256 signatures over exclusive c14n.
// It holds no per-call state and is safe for concurrent use.
type Signer struct {
	cred *Credential
	opts *options
}

// NewSigner creates a signer for an RSA credential
func NewSigner(cred *Credential, opts ...Option) (*Signer, error) {
	if err := cred.signingReady(); err != nil {
		return nil, err
	}
	return &Signer{cred: cred, opts: newOptions(opts)}, nil
}

// Credential returns the signing credential
func (s *Signer) Credential() *Credential {
	return s.cred
}

// Sign parses data, adds a signature for target and serializes the result
func (s *Signer) Sign(data []byte, target SignatureTarget) ([]byte, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedXML, err)
	}
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("%w: empty document", ErrMalformedXML)
	}
	if err := s.SignElement(root, target); err != nil {
		return nil, err
	}
	return doc.WriteToBytes()
}

// SignElement adds a signature inside the tree rooted at root
func (s *Signer) SignElement(root *etree.Element, target SignatureTarget) error {
	var signed, parent *etree.Element
	prefix := ""

	switch target.Scope {
	case ScopeRoot:
		signed, parent = root, root
	case ScopeAcceptanceReport:
		doc := findAcceptanceDocument(root)
		if doc == nil {
			return fmt.Errorf("no %s document below %s", NSPain012, root.Tag)
		}
		if !Eligible(doc) {
			return ErrNotEligible
		}
		envlp, err := ensureEnvelope(doc)
		if err != nil {
			return err
		}
		signed, parent, prefix = doc, envlp, doc.Space
	default:
		return fmt.Errorf("unknown signature scope %s", target.Scope)
	}

	content, err := canonicalize(s.opts.canonicalizer, signed, nil)
	if err != nil {
		return err
	}
	digest := sha256.Sum256(content)

	sig, signedInfo, value := s.buildSignature(digest[:], target.EmbedCertificate)
	bindPrefix(sig, prefix)
	parent.AddChild(sig)

	canonical, err := canonicalize(s.opts.canonicalizer, signedInfo, nil)
	if err != nil {
		parent.RemoveChild(sig)
		return err
	}
	hashed := sha256.Sum256(canonical)
	signature, err := s.cred.Key.Sign(rand.Reader, hashed[:], crypto.SHA256)
	if err != nil {
		parent.RemoveChild(sig)
		return fmt.Errorf("failed to sign: %w", err)
	}
	value.SetText(base64.StdEncoding.EncodeToString(signature))

	s.opts.logger.Debug("signed document",
		"root", root.Tag,
		"scope", target.Scope.String(),
		"fingerprint", s.cred.Fingerprint())
	return nil
}

// buildSignature creates an unprefixed Signature element whose SignatureValue
// is still empty
func (s *Signer) buildSignature(digest []byte, embedCert bool) (sig, signedInfo, value *etree.Element) {
	sig = etree.NewElement(dsig.SignatureTag)
	sig.CreateAttr("xmlns", NSXMLDSig)

	signedInfo = sig.CreateElement(dsig.SignedInfoTag)
	signedInfo.CreateElement(dsig.CanonicalizationMethodTag).
		CreateAttr(dsig.AlgorithmAttr, string(s.opts.canonicalizer.Algorithm()))
	signedInfo.CreateElement(dsig.SignatureMethodTag).
		CreateAttr(dsig.AlgorithmAttr, AlgorithmRSASHA256)

	ref := signedInfo.CreateElement(dsig.ReferenceTag)
	ref.CreateAttr(dsig.URIAttr, "")
	transforms := ref.CreateElement(dsig.TransformsTag)
	transforms.CreateElement(dsig.TransformTag).CreateAttr(dsig.AlgorithmAttr, AlgorithmEnveloped)
	transforms.CreateElement(dsig.TransformTag).CreateAttr(dsig.AlgorithmAttr, AlgorithmExcC14N)
	ref.CreateElement(dsig.DigestMethodTag).CreateAttr(dsig.AlgorithmAttr, AlgorithmSHA256)
	ref.CreateElement(dsig.DigestValueTag).SetText(base64.StdEncoding.EncodeToString(digest))

	value = sig.CreateElement(dsig.SignatureValueTag)

	keyInfo := sig.CreateElement(dsig.KeyInfoTag)
	if embedCert {
		keyInfo.CreateElement(dsig.X509DataTag).
			CreateElement(dsig.X509CertificateTag).
			SetText(base64.StdEncoding.EncodeToString(s.cred.Certificate.Raw))
	} else {
		keyInfo.CreateElement(keyNameTag).SetText(s.cred.Fingerprint())
	}
	return sig, signedInfo, value
}

// bindPrefix moves every element of sig onto prefix and binds that prefix to
// the dsig namespace. It must run before SignedInfo is canonicalized.
func bindPrefix(sig *etree.Element, prefix string) {
	if prefix == "" {
		return
	}
	sig.RemoveAttr("xmlns")
	sig.CreateAttr("xmlns:"+prefix, NSXMLDSig)

	var walk func(el *etree.Element)
	walk = func(el *etree.Element) {
		el.Space = prefix
		for _, child := range el.ChildElements() {
			walk(child)
		}
	}
	walk(sig)
}

// Eligible reports whether an acceptance report may carry the eMandate
// signature: its first Accptd element must read true.
func Eligible(doc *etree.Element) bool {
	accepted := findFirst(doc, NSPain012, acceptedTag)
	if accepted == nil {
		return false
	}
	v := strings.TrimSpace(accepted.Text())
	return v == "true" || v == "1"
}

func findAcceptanceDocument(root *etree.Element) *etree.Element {
	if root.Tag == acceptanceRootTag && root.NamespaceURI() == NSPain012 {
		return root
	}
	return findFirst(root, NSPain012, acceptanceRootTag)
}

// findFirst returns the first element below el, in document order, with the
// given namespace and tag
func findFirst(el *etree.Element, space, tag string) *etree.Element {
	var found *etree.Element
	visit := func(_ etreeutils.NSContext, match *etree.Element) error {
		found = match
		return etreeutils.ErrTraversalHalted
	}
	ctx, err := etreeutils.NSBuildParentContext(el)
	if err != nil {
		return nil
	}
	if err := etreeutils.NSFindIterateCtx(ctx, el, space, tag, visit); err != nil {
		return nil
	}
	return found
}

// ensureEnvelope returns MndtAccptncRpt/SplmtryData/Envlp, appending the
// missing containers as last children
func ensureEnvelope(doc *etree.Element) (*etree.Element, error) {
	report := childNS(doc, NSPain012, acceptanceReportTag)
	if report == nil {
		return nil, fmt.Errorf("%w: %s has no %s", ErrMalformedXML, doc.Tag, acceptanceReportTag)
	}
	supp := childNS(report, NSPain012, supplementaryTag)
	if supp == nil {
		supp = report.CreateElement(qualified(report.Space, supplementaryTag))
	}
	envlp := childNS(supp, NSPain012, envelopeTag)
	if envlp == nil {
		envlp = supp.CreateElement(qualified(report.Space, envelopeTag))
	}
	return envlp, nil
}

func childNS(el *etree.Element, space, tag string) *etree.Element {
	for _, child := range el.ChildElements() {
		if child.Tag == tag && child.NamespaceURI() == space {
			return child
		}
	}
	return nil
}

func qualified(prefix, tag string) string {
	if prefix == "" {
		return tag
	}
	return prefix + ":" + tag
}
